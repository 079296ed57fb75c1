package physics

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// ShapeKind identifies the collision primitive of a body
type ShapeKind int

const (
	ShapeBox ShapeKind = iota
	ShapeSphere
	ShapeCylinder
	ShapePlane
)

func (k ShapeKind) String() string {
	switch k {
	case ShapeBox:
		return "box"
	case ShapeSphere:
		return "sphere"
	case ShapeCylinder:
		return "cylinder"
	case ShapePlane:
		return "plane"
	}
	return fmt.Sprintf("shape(%d)", int(k))
}

// Shape is a collision primitive in body-local space
type Shape interface {
	Kind() ShapeKind
	// inertia returns the diagonal of the local inertia tensor for the given mass
	inertia(mass float64) mgl64.Vec3
	// radius bounds the shape around its origin; planes are unbounded
	radius() float64
	validate() error
}

// Box is a cuboid centred on the body origin
type Box struct {
	HalfExtents mgl64.Vec3
}

// Sphere is a ball centred on the body origin
type Sphere struct {
	Radius float64
}

// Cylinder is centred on the body origin with its axis along local +Y
type Cylinder struct {
	Radius     float64
	HalfHeight float64
}

// Plane is an infinite static half-space whose surface passes through the body
// origin with its normal along local +Y
type Plane struct{}

func (Box) Kind() ShapeKind      { return ShapeBox }
func (Sphere) Kind() ShapeKind   { return ShapeSphere }
func (Cylinder) Kind() ShapeKind { return ShapeCylinder }
func (Plane) Kind() ShapeKind    { return ShapePlane }

func (s Box) inertia(m float64) mgl64.Vec3 {
	x, y, z := s.HalfExtents.X(), s.HalfExtents.Y(), s.HalfExtents.Z()
	return mgl64.Vec3{
		m / 3 * (y*y + z*z),
		m / 3 * (x*x + z*z),
		m / 3 * (x*x + y*y),
	}
}

func (s Sphere) inertia(m float64) mgl64.Vec3 {
	i := 2.0 / 5.0 * m * s.Radius * s.Radius
	return mgl64.Vec3{i, i, i}
}

func (s Cylinder) inertia(m float64) mgl64.Vec3 {
	r2 := s.Radius * s.Radius
	h := 2 * s.HalfHeight
	side := m / 12 * (3*r2 + h*h)
	return mgl64.Vec3{side, m / 2 * r2, side}
}

func (Plane) inertia(float64) mgl64.Vec3 { return mgl64.Vec3{} }

func (s Box) radius() float64      { return s.HalfExtents.Len() }
func (s Sphere) radius() float64   { return s.Radius }
func (s Cylinder) radius() float64 { return math.Hypot(s.Radius, s.HalfHeight) }
func (Plane) radius() float64      { return math.Inf(1) }

func (s Box) validate() error {
	for i, v := range s.HalfExtents {
		if !positiveFinite(v) {
			return fmt.Errorf("%w: box half extent %d is %v", ErrInvalidShape, i, v)
		}
	}
	return nil
}

func (s Sphere) validate() error {
	if !positiveFinite(s.Radius) {
		return fmt.Errorf("%w: sphere radius is %v", ErrInvalidShape, s.Radius)
	}
	return nil
}

func (s Cylinder) validate() error {
	if !positiveFinite(s.Radius) {
		return fmt.Errorf("%w: cylinder radius is %v", ErrInvalidShape, s.Radius)
	}
	if !positiveFinite(s.HalfHeight) {
		return fmt.Errorf("%w: cylinder half height is %v", ErrInvalidShape, s.HalfHeight)
	}
	return nil
}

func (Plane) validate() error { return nil }

func positiveFinite(v float64) bool {
	return v > 0 && !math.IsInf(v, 0) && !math.IsNaN(v)
}

func finiteVec(v mgl64.Vec3) bool {
	for _, c := range v {
		if math.IsInf(c, 0) || math.IsNaN(c) {
			return false
		}
	}
	return true
}
