// Package view holds the render-side handles for entities. It has no graphics
// dependency so scenes can be built and tested headless; package render draws it.
package view

import (
	"image/color"

	"github.com/go-gl/mathgl/mgl64"

	"ebiten-rally/geom"
)

// Kind is the outline a sprite is drawn with
type Kind int

const (
	KindBox Kind = iota
	KindCircle
	KindWheel
	KindGround
)

// Sprite is a top-down drawable that implements ecs.Mesh
type Sprite struct {
	Kind        Kind
	HalfExtents mgl64.Vec3 // Boxes and wheels, in local space
	Radius      float64    // Circles
	Color       color.RGBA
	Layer       int // Higher layers draw on top

	transform geom.Transform
	disposed  bool
}

// SetTransform implements ecs.Mesh
func (s *Sprite) SetTransform(t geom.Transform) {
	s.transform = t
}

// Dispose implements ecs.Mesh
func (s *Sprite) Dispose() {
	s.disposed = true
}

// Transform returns the last transform pushed by the owning entity
func (s *Sprite) Transform() geom.Transform {
	return s.transform
}

// Disposed reports whether the owning entity released the sprite
func (s *Sprite) Disposed() bool {
	return s.disposed
}

// Footprint returns the sprite's outline corners projected onto the ground plane
func (s *Sprite) Footprint() []mgl64.Vec3 {
	t := s.transform
	if s.Kind == KindWheel {
		// Wheels spin around local Y, so build the outline from the axle alone:
		// HalfExtents.Y is half the width and HalfExtents.X the radius
		axle := t.Up()
		axle[1] = 0
		if axle.Len() < 1e-9 {
			axle = mgl64.Vec3{1, 0, 0}
		}
		axle = axle.Normalize()
		roll := mgl64.Vec3{0, 1, 0}.Cross(axle)
		a := axle.Mul(s.HalfExtents.Y())
		r := roll.Mul(s.HalfExtents.X())
		return []mgl64.Vec3{
			flat(t.Position.Sub(a).Sub(r)),
			flat(t.Position.Add(a).Sub(r)),
			flat(t.Position.Add(a).Add(r)),
			flat(t.Position.Sub(a).Add(r)),
		}
	}
	he := s.HalfExtents
	local := []mgl64.Vec3{
		{-he.X(), 0, -he.Z()},
		{he.X(), 0, -he.Z()},
		{he.X(), 0, he.Z()},
		{-he.X(), 0, he.Z()},
	}
	out := make([]mgl64.Vec3, len(local))
	for i, p := range local {
		out[i] = flat(t.TransformPoint(p))
	}
	return out
}

func flat(p mgl64.Vec3) mgl64.Vec3 {
	p[1] = 0
	return p
}
