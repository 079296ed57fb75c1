package generation

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ebiten-rally/data"
	"ebiten-rally/ecs"
	"ebiten-rally/physics"
	"ebiten-rally/spawners"
)

func newPopulator(t *testing.T) (*CoursePopulator, *ecs.Scene, *[]string) {
	t.Helper()
	templates := data.NewEntityTemplateManager()
	require.NoError(t, templates.LoadBuiltin())
	scene := ecs.NewScene("test", ecs.WithPhysics(physics.NewWorld()))
	var messages []string
	logFunc := func(msg string) { messages = append(messages, msg) }
	p := NewCoursePopulator(spawners.NewEntitySpawner(scene, templates, nil, logFunc), templates, logFunc)
	p.SetSeed(5)
	return p, scene, &messages
}

func roundCourse(t *testing.T) *Course {
	t.Helper()
	gen := NewCourseGenerator(nil)
	cfg := CourseConfiguration{Size: SizeSmall, Points: 8, Width: 10}
	course, err := gen.Generate(cfg)
	require.NoError(t, err)
	return course
}

func TestPopulateLinesTheTrack(t *testing.T) {
	p, scene, messages := newPopulator(t)
	course := roundCourse(t)

	placed := p.Populate(course, DefaultPopulationOptions())
	require.NotEmpty(t, placed)
	assert.Equal(t, len(placed), scene.Len())

	barriers, props := 0, 0
	for _, obj := range placed {
		assert.False(t, course.OnTrack(obj.Position()), "%s placed on the track", obj.Name())
		assert.True(t, obj.OwnsBody())
		if obj.HasTag("barrier") {
			barriers++
			continue
		}
		props++
		assert.False(t, obj.HasTag("static"))
		assert.Less(t, obj.Position().Sub(course.Center).Len(), SizeSmall.Radius())
	}
	assert.Greater(t, barriers, len(course.Waypoints), "at least one barrier per segment")
	assert.Positive(t, props)
	assert.LessOrEqual(t, props, DefaultPopulationOptions().InfieldProps)
	assert.Contains(t, (*messages)[len(*messages)-1], "barriers")
}

func TestPopulateIsReproducible(t *testing.T) {
	course := roundCourse(t)
	positions := func() []mgl64.Vec3 {
		p, _, _ := newPopulator(t)
		var out []mgl64.Vec3
		for _, obj := range p.Populate(course, DefaultPopulationOptions()) {
			out = append(out, obj.Position())
		}
		return out
	}
	assert.Equal(t, positions(), positions())
}

func TestPopulateMissingBarrier(t *testing.T) {
	p, _, messages := newPopulator(t)
	options := DefaultPopulationOptions()
	options.BarrierTemplate = "tyre-wall"
	options.InfieldProps = 0

	placed := p.Populate(roundCourse(t), options)

	assert.Empty(t, placed)
	require.Len(t, *messages, 2, "one failure, then the summary")
	assert.Contains(t, (*messages)[0], "tyre-wall")
}

func TestEligiblePropsHonourTags(t *testing.T) {
	p, _, _ := newPopulator(t)
	options := PopulationOptions{PreferredTags: []string{"breakable"}, ExcludeTags: []string{"barrier"}}

	weights := map[string]int{}
	for _, e := range p.getEligibleProps(options) {
		weights[e.TemplateID] = e.Weight
	}

	assert.NotContains(t, weights, "cone")
	assert.NotContains(t, weights, "ground", "zero weight")
	assert.Equal(t, 9, weights["crate"], "breakable crates are preferred")
	assert.Equal(t, 2, weights["barrel"])
}
