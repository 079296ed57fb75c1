package ecs

import (
	"math"
	"sort"

	"github.com/go-gl/mathgl/mgl64"

	"ebiten-rally/physics"
)

// Queries are full scans in insertion order unless noted.

// Find returns the first object with the given name
func (s *Scene) Find(name string) *GameObject {
	for _, obj := range s.order {
		if obj.name == name {
			return obj
		}
	}
	return nil
}

// FindAll returns every object with the given name
func (s *Scene) FindAll(name string) []*GameObject {
	var out []*GameObject
	for _, obj := range s.order {
		if obj.name == name {
			out = append(out, obj)
		}
	}
	return out
}

// FindWithTag returns the first object carrying tag
func (s *Scene) FindWithTag(tag string) *GameObject {
	tagged, exists := s.entityTags[tag]
	if !exists {
		return nil
	}
	for _, obj := range s.order {
		if tagged[obj.id] {
			return obj
		}
	}
	return nil
}

// FindGameObjectsWithTag returns every object carrying tag
func (s *Scene) FindGameObjectsWithTag(tag string) []*GameObject {
	tagged, exists := s.entityTags[tag]
	if !exists {
		return nil
	}
	out := make([]*GameObject, 0, len(tagged))
	for _, obj := range s.order {
		if tagged[obj.id] {
			out = append(out, obj)
		}
	}
	return out
}

func hasAll(e *Entity, ids []ComponentID) bool {
	for _, id := range ids {
		if _, ok := e.components[id]; !ok {
			return false
		}
	}
	return true
}

// FindWithComponents returns the first object that has every listed component
func (s *Scene) FindWithComponents(ids ...ComponentID) *GameObject {
	for _, obj := range s.order {
		if hasAll(obj.Entity, ids) {
			return obj
		}
	}
	return nil
}

// FindAllWithComponents returns every object that has all listed components
func (s *Scene) FindAllWithComponents(ids ...ComponentID) []*GameObject {
	var out []*GameObject
	for _, obj := range s.order {
		if hasAll(obj.Entity, ids) {
			out = append(out, obj)
		}
	}
	return out
}

// FindObjectOfType returns the first component of type T in the scene and its owner
func FindObjectOfType[T Component](s *Scene) (T, *GameObject) {
	id := ComponentIDOf[T]()
	for _, obj := range s.order {
		if entry, ok := obj.components[id]; ok {
			if c, ok := entry.value.(T); ok {
				return c, obj
			}
		}
	}
	var zero T
	return zero, nil
}

// FindObjectsOfType returns every component of type T in the scene
func FindObjectsOfType[T Component](s *Scene) []T {
	id := ComponentIDOf[T]()
	var out []T
	for _, obj := range s.order {
		if entry, ok := obj.components[id]; ok {
			if c, ok := entry.value.(T); ok {
				out = append(out, c)
			}
		}
	}
	return out
}

// FindWithinRadius returns objects whose position lies within radius of center,
// nearest first. Equal distances keep insertion order.
func (s *Scene) FindWithinRadius(center mgl64.Vec3, radius float64) []*GameObject {
	type hit struct {
		obj  *GameObject
		dist float64
	}
	var hits []hit
	for _, obj := range s.order {
		d := obj.transform.Position.Sub(center).Len()
		if d <= radius {
			hits = append(hits, hit{obj, d})
		}
	}
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].dist < hits[j].dist })
	out := make([]*GameObject, len(hits))
	for i, h := range hits {
		out[i] = h.obj
	}
	return out
}

// FindClosest returns the object nearest to point. An empty tag matches everything.
func (s *Scene) FindClosest(point mgl64.Vec3, tag string) *GameObject {
	var best *GameObject
	bestDist := math.Inf(1)
	for _, obj := range s.order {
		if tag != "" && !obj.tags[tag] {
			continue
		}
		if d := obj.transform.Position.Sub(point).Len(); d < bestDist {
			best, bestDist = obj, d
		}
	}
	return best
}

// FindByBody returns the object bound to the body, owned or not
func (s *Scene) FindByBody(h physics.BodyHandle) *GameObject {
	if h.IsNil() {
		return nil
	}
	for _, obj := range s.order {
		if obj.body == h {
			return obj
		}
	}
	return nil
}
