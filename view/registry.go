package view

import (
	"fmt"
	"image/color"
	"sort"
	"strings"

	"github.com/go-gl/mathgl/mgl64"

	"ebiten-rally/ecs"
)

// Registry creates sprites and keeps the live ones for drawing
type Registry struct {
	sprites []*Sprite
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{}
}

func (r *Registry) add(s *Sprite) *Sprite {
	r.sprites = append(r.sprites, s)
	return s
}

// Box creates a box sprite
func (r *Registry) Box(halfExtents mgl64.Vec3, tint string) ecs.Mesh {
	return r.add(&Sprite{Kind: KindBox, HalfExtents: halfExtents, Color: ParseColor(tint), Layer: 1})
}

// Sphere creates a circle sprite
func (r *Registry) Sphere(radius float64, tint string) ecs.Mesh {
	return r.add(&Sprite{Kind: KindCircle, Radius: radius, Color: ParseColor(tint), Layer: 1})
}

// Cylinder creates a wheel sprite
func (r *Registry) Cylinder(radius, halfHeight float64, tint string) ecs.Mesh {
	return r.add(&Sprite{Kind: KindWheel, HalfExtents: mgl64.Vec3{radius, halfHeight, radius}, Color: ParseColor(tint), Layer: 2})
}

// Plane creates a ground sprite
func (r *Registry) Plane(tint string) ecs.Mesh {
	return r.add(&Sprite{Kind: KindGround, Color: ParseColor(tint)})
}

// Live drops disposed sprites and returns the rest ordered by layer
func (r *Registry) Live() []*Sprite {
	kept := r.sprites[:0]
	for _, s := range r.sprites {
		if !s.disposed {
			kept = append(kept, s)
		}
	}
	// Clear the tail so disposed sprites can be collected
	for i := len(kept); i < len(r.sprites); i++ {
		r.sprites[i] = nil
	}
	r.sprites = kept

	out := make([]*Sprite, len(kept))
	copy(out, kept)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Layer < out[j].Layer })
	return out
}

// Len returns the number of sprites not yet collected by Live
func (r *Registry) Len() int {
	return len(r.sprites)
}

// ParseColor reads "#rrggbb" or "#rrggbbaa". Anything else is light gray.
func ParseColor(s string) color.RGBA {
	c := color.RGBA{200, 200, 200, 255}
	s = strings.TrimPrefix(s, "#")
	switch len(s) {
	case 6:
		if _, err := fmt.Sscanf(s, "%02x%02x%02x", &c.R, &c.G, &c.B); err != nil {
			return color.RGBA{200, 200, 200, 255}
		}
	case 8:
		if _, err := fmt.Sscanf(s, "%02x%02x%02x%02x", &c.R, &c.G, &c.B, &c.A); err != nil {
			return color.RGBA{200, 200, 200, 255}
		}
	}
	return c
}
