// Package generation builds race courses: a closed loop of waypoints and the props that line it
package generation

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"strings"
	"time"

	"github.com/go-gl/mathgl/mgl64"

	"ebiten-rally/geom"
)

// CourseSize defines the size category of a course
type CourseSize int

const (
	SizeSmall  CourseSize = iota // Fits on one screen at default zoom
	SizeNormal                   // A few screens across
	SizeLarge                    // Long straights, room for a field of cars
)

// ParseCourseSize maps "small", "normal" or "large" to a size; anything else is SizeNormal
func ParseCourseSize(s string) CourseSize {
	switch strings.ToLower(s) {
	case "small":
		return SizeSmall
	case "large":
		return SizeLarge
	}
	return SizeNormal
}

// Radius returns the base radius of the loop in world units
func (s CourseSize) Radius() float64 {
	switch s {
	case SizeSmall:
		return 30
	case SizeLarge:
		return 80
	}
	return 50
}

// CourseConfiguration defines how a course is generated
type CourseConfiguration struct {
	Size      CourseSize
	Points    int        // Waypoints around the loop, at least 4
	Roughness float64    // Radial jitter as a fraction of the radius, 0 to 0.5
	Stretch   float64    // X radius over Z radius; 0 means round
	Smoothing int        // Neighbour-averaging passes over the jittered radii
	Width     float64    // Track width
	Center    mgl64.Vec3 // Middle of the loop
}

// DefaultCourseConfiguration returns a medium oval with gentle bends
func DefaultCourseConfiguration() CourseConfiguration {
	return CourseConfiguration{
		Size:      SizeNormal,
		Points:    12,
		Roughness: 0.25,
		Stretch:   1.5,
		Smoothing: 2,
		Width:     10,
	}
}

// Validate reports the first problem with the configuration
func (c CourseConfiguration) Validate() error {
	switch {
	case c.Points < 4:
		return fmt.Errorf("course needs at least 4 points, got %d", c.Points)
	case c.Roughness < 0 || c.Roughness > 0.5:
		return fmt.Errorf("course roughness %.2f outside [0, 0.5]", c.Roughness)
	case c.Stretch < 0:
		return errors.New("course stretch must not be negative")
	case c.Width <= 0:
		return fmt.Errorf("course width must be positive, got %.2f", c.Width)
	}
	return nil
}

// Course is a closed loop of waypoints on the ground plane
type Course struct {
	Waypoints []mgl64.Vec3
	Width     float64
	Center    mgl64.Vec3
}

// Segment returns the ends of segment i; the last segment closes the loop
func (c *Course) Segment(i int) (mgl64.Vec3, mgl64.Vec3) {
	n := len(c.Waypoints)
	i = ((i % n) + n) % n
	return c.Waypoints[i], c.Waypoints[(i+1)%n]
}

// Length returns the distance around the loop
func (c *Course) Length() float64 {
	total := 0.0
	for i := range c.Waypoints {
		a, b := c.Segment(i)
		total += b.Sub(a).Len()
	}
	return total
}

// Nearest returns the segment closest to p and the distance to it, ignoring height
func (c *Course) Nearest(p mgl64.Vec3) (int, float64) {
	p[1] = 0
	best, bestDist := 0, math.Inf(1)
	for i := range c.Waypoints {
		a, b := c.Segment(i)
		a[1], b[1] = 0, 0
		if d := distanceToSegment(p, a, b); d < bestDist {
			best, bestDist = i, d
		}
	}
	return best, bestDist
}

// OnTrack reports whether p lies within the track surface
func (c *Course) OnTrack(p mgl64.Vec3) bool {
	_, d := c.Nearest(p)
	return d <= c.Width/2
}

// Start returns the start line at height, facing the second waypoint
func (c *Course) Start(height float64) geom.Transform {
	a, b := c.Segment(0)
	t := geom.At(a.X(), a.Y()+height, a.Z())
	t.Rotation = facing(b.Sub(a))
	return t
}

// Grid returns starting slot slot: two abreast, rows six units apart behind the line
func (c *Course) Grid(slot int, height float64) geom.Transform {
	t := c.Start(height)
	side := -1.0
	if slot%2 == 1 {
		side = 1
	}
	row := float64(slot / 2)
	t.Position = t.Position.
		Add(t.Right().Mul(side * c.Width / 4)).
		Sub(t.Forward().Mul(row * 6))
	return t
}

// CourseGenerator builds courses from a seeded random source
type CourseGenerator struct {
	rng        *rand.Rand
	logMessage func(string)
}

// NewCourseGenerator creates a generator seeded from the clock
func NewCourseGenerator(logFunc func(string)) *CourseGenerator {
	if logFunc == nil {
		logFunc = func(string) {}
	}
	return &CourseGenerator{
		rng:        rand.New(rand.NewSource(time.Now().UnixNano())),
		logMessage: logFunc,
	}
}

// SetSeed allows setting a specific seed for reproducible generation
func (g *CourseGenerator) SetSeed(seed int64) {
	g.rng = rand.New(rand.NewSource(seed))
}

// Generate creates a closed loop: evenly spaced angles around an ellipse, each
// pushed in or out by a random amount, then smoothed so bends stay drivable
func (g *CourseGenerator) Generate(cfg CourseConfiguration) (*Course, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	stretch := cfg.Stretch
	if stretch == 0 {
		stretch = 1
	}

	radii := make([]float64, cfg.Points)
	for i := range radii {
		radii[i] = 1 + cfg.Roughness*(2*g.rng.Float64()-1)
	}
	for pass := 0; pass < cfg.Smoothing; pass++ {
		radii = smooth(radii)
	}

	base := cfg.Size.Radius()
	waypoints := make([]mgl64.Vec3, cfg.Points)
	for i, r := range radii {
		angle := 2 * math.Pi * float64(i) / float64(cfg.Points)
		waypoints[i] = cfg.Center.Add(mgl64.Vec3{
			math.Cos(angle) * base * stretch * r,
			0,
			math.Sin(angle) * base * r,
		})
	}

	course := &Course{Waypoints: waypoints, Width: cfg.Width, Center: cfg.Center}
	g.logMessage(fmt.Sprintf("Course laid out: %d bends, %.0fm a lap", cfg.Points, course.Length()))
	return course, nil
}

// smooth returns one pass of weighted neighbour averaging around the loop
func smooth(radii []float64) []float64 {
	n := len(radii)
	out := make([]float64, n)
	for i := range radii {
		out[i] = (radii[(i+n-1)%n] + 2*radii[i] + radii[(i+1)%n]) / 4
	}
	return out
}

// facing returns the yaw rotation pointing the forward axis along dir
func facing(dir mgl64.Vec3) mgl64.Quat {
	return mgl64.QuatRotate(math.Atan2(-dir.X(), -dir.Z()), mgl64.Vec3{0, 1, 0})
}

func distanceToSegment(p, a, b mgl64.Vec3) float64 {
	ab := b.Sub(a)
	lenSq := ab.Dot(ab)
	if lenSq == 0 {
		return p.Sub(a).Len()
	}
	t := math.Max(0, math.Min(1, p.Sub(a).Dot(ab)/lenSq))
	return p.Sub(a.Add(ab.Mul(t))).Len()
}
