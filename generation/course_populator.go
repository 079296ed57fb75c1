package generation

import (
	"fmt"
	"math"
	"math/rand"
	"sort"
	"time"

	"github.com/go-gl/mathgl/mgl64"

	"ebiten-rally/data"
	"ebiten-rally/ecs"
	"ebiten-rally/geom"
	"ebiten-rally/spawners"
)

// PopulationOptions defines how a course is dressed with props
type PopulationOptions struct {
	BarrierTemplate string   // Placed along both edges; empty skips barriers
	BarrierSpacing  float64  // Gap between barriers along an edge
	EdgeMargin      float64  // Distance between the track edge and the barrier line
	InfieldProps    int      // Weighted props scattered inside the loop
	DropHeight      float64  // Props spawn this high and settle under gravity
	PreferredTags   []string // Tags that triple a template's spawn weight
	ExcludeTags     []string // Templates carrying any of these never spawn
}

// DefaultPopulationOptions lines the course with cones and drops a few props in the infield
func DefaultPopulationOptions() PopulationOptions {
	return PopulationOptions{
		BarrierTemplate: "cone",
		BarrierSpacing:  8,
		EdgeMargin:      1,
		InfieldProps:    8,
		DropHeight:      1,
		ExcludeTags:     []string{"static", "barrier"},
	}
}

// CoursePopulator handles spawning props around a course
type CoursePopulator struct {
	entitySpawner   *spawners.EntitySpawner
	templateManager *data.EntityTemplateManager
	rng             *rand.Rand
	logMessage      func(string)
}

// NewCoursePopulator creates a new course populator
func NewCoursePopulator(entitySpawner *spawners.EntitySpawner, templateManager *data.EntityTemplateManager, logFunc func(string)) *CoursePopulator {
	if logFunc == nil {
		logFunc = func(string) {}
	}
	return &CoursePopulator{
		entitySpawner:   entitySpawner,
		templateManager: templateManager,
		rng:             rand.New(rand.NewSource(time.Now().UnixNano())),
		logMessage:      logFunc,
	}
}

// SetSeed allows setting a specific seed for reproducible generation
func (p *CoursePopulator) SetSeed(seed int64) {
	p.rng = rand.New(rand.NewSource(seed))
}

// Populate places barriers and infield props, returning everything it spawned
func (p *CoursePopulator) Populate(course *Course, options PopulationOptions) []*ecs.GameObject {
	var placed []*ecs.GameObject
	if options.BarrierTemplate != "" {
		placed = append(placed, p.placeBarriers(course, options)...)
	}
	barriers := len(placed)
	placed = append(placed, p.placeInfield(course, options)...)

	p.logMessage(fmt.Sprintf("Placed %d barriers and %d props", barriers, len(placed)-barriers))
	return placed
}

// placeBarriers walks each segment and drops a barrier on both edges every BarrierSpacing.
// Spots that land on the track, as happens on the inside of tight bends, are skipped.
func (p *CoursePopulator) placeBarriers(course *Course, options PopulationOptions) []*ecs.GameObject {
	spacing := options.BarrierSpacing
	if spacing <= 0 {
		spacing = 8
	}
	offset := course.Width/2 + options.EdgeMargin

	var placed []*ecs.GameObject
	for i := range course.Waypoints {
		a, b := course.Segment(i)
		dir := b.Sub(a)
		dir[1] = 0
		length := dir.Len()
		if length == 0 {
			continue
		}
		dir = dir.Mul(1 / length)
		right := mgl64.Vec3{-dir.Z(), 0, dir.X()}

		count := int(math.Floor(length / spacing))
		for k := 0; k < count; k++ {
			along := a.Add(dir.Mul(float64(k) * spacing))
			for _, side := range []float64{-1, 1} {
				pos := along.Add(right.Mul(side * offset))
				if course.OnTrack(pos) {
					continue
				}
				at := geom.At(pos.X(), pos.Y()+options.DropHeight, pos.Z())
				at.Rotation = facing(dir)
				barrier, err := p.entitySpawner.CreateProp(options.BarrierTemplate, at)
				if err != nil {
					// Missing template; every other barrier would fail the same way
					p.logMessage(err.Error())
					return placed
				}
				placed = append(placed, barrier)
			}
		}
	}
	return placed
}

// placeInfield scatters weighted props between the track and the loop's center
func (p *CoursePopulator) placeInfield(course *Course, options PopulationOptions) []*ecs.GameObject {
	table := spawners.NewPropTable(p.getEligibleProps(options))
	var placed []*ecs.GameObject
	for i := 0; i < options.InfieldProps; i++ {
		id := table.Pick(p.rng)
		if id == "" {
			break
		}
		pos, ok := p.findInfieldPosition(course, options)
		if !ok {
			continue
		}
		at := geom.At(pos.X(), pos.Y()+options.DropHeight, pos.Z())
		at.Rotation = mgl64.QuatRotate(p.rng.Float64()*2*math.Pi, mgl64.Vec3{0, 1, 0})
		prop, err := p.entitySpawner.CreateProp(id, at)
		if err != nil {
			p.logMessage(err.Error())
			continue
		}
		placed = append(placed, prop)
	}
	return placed
}

// findInfieldPosition picks a point between a random waypoint and the center, clear of the track
func (p *CoursePopulator) findInfieldPosition(course *Course, options PopulationOptions) (mgl64.Vec3, bool) {
	clearance := course.Width/2 + options.EdgeMargin
	for attempt := 0; attempt < 10; attempt++ {
		w := course.Waypoints[p.rng.Intn(len(course.Waypoints))]
		t := 0.2 + 0.6*p.rng.Float64()
		pos := w.Add(course.Center.Sub(w).Mul(t))
		if _, d := course.Nearest(pos); d > clearance {
			return pos, true
		}
	}
	return mgl64.Vec3{}, false
}

// getEligibleProps returns weighted templates allowed by the options, sorted for reproducible picks
func (p *CoursePopulator) getEligibleProps(options PopulationOptions) []spawners.PropTableEntry {
	var entries []spawners.PropTableEntry
	for id, template := range p.templateManager.Templates {
		if template.SpawnWeight <= 0 || hasAnyTag(template.Tags, options.ExcludeTags) {
			continue
		}
		weight := template.SpawnWeight
		if hasAnyTag(template.Tags, options.PreferredTags) {
			weight *= 3
		}
		entries = append(entries, spawners.PropTableEntry{TemplateID: id, Weight: weight})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].TemplateID < entries[j].TemplateID })
	return entries
}

func hasAnyTag(tags, wanted []string) bool {
	for _, tag := range tags {
		for _, w := range wanted {
			if tag == w {
				return true
			}
		}
	}
	return false
}
