package ecs

import (
	"github.com/rs/zerolog"

	"ebiten-rally/input"
	"ebiten-rally/physics"
)

// Scene owns the registry of game objects and drives their lifecycle
type Scene struct {
	name    string
	objects map[EntityID]*GameObject
	// order preserves insertion order for iteration and queries
	order []*GameObject
	// Systems run after every object has been updated
	systems []System
	// Tag-based entity lookup for quick access
	entityTags map[string]map[EntityID]bool
	// Event manager for system communication
	events *EventManager

	physics *physics.World
	input   input.State
	log     zerolog.Logger

	frame   uint64
	elapsed float64
}

// SceneOption configures a Scene
type SceneOption func(*Scene)

// WithPhysics gives the scene a physics world to expose through Frame
func WithPhysics(w *physics.World) SceneOption {
	return func(s *Scene) { s.physics = w }
}

// WithLogger sets the scene logger
func WithLogger(log zerolog.Logger) SceneOption {
	return func(s *Scene) { s.log = log }
}

// NewScene creates an empty scene
func NewScene(name string, opts ...SceneOption) *Scene {
	s := &Scene{
		name:       name,
		objects:    make(map[EntityID]*GameObject),
		entityTags: make(map[string]map[EntityID]bool),
		events:     NewEventManager(),
		input:      input.None{},
		log:        zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Name returns the scene name
func (s *Scene) Name() string { return s.name }

// Physics returns the scene's physics world, or nil
func (s *Scene) Physics() *physics.World { return s.physics }

// SetInput sets the input state handed to hooks through Frame
func (s *Scene) SetInput(state input.State) {
	if state == nil {
		state = input.None{}
	}
	s.input = state
}

// Input returns the current input state
func (s *Scene) Input() input.State { return s.input }

// SetLogger replaces the scene logger
func (s *Scene) SetLogger(log zerolog.Logger) { s.log = log }

// Logger returns the scene logger
func (s *Scene) Logger() *zerolog.Logger { return &s.log }

// FrameNumber returns how many times Update has run
func (s *Scene) FrameNumber() uint64 { return s.frame }

// Len returns the number of registered objects
func (s *Scene) Len() int { return len(s.order) }

// AddEntity registers obj and its children, applying any tags to obj. Returns
// false if obj is destroyed or belongs to another scene.
func (s *Scene) AddEntity(obj *GameObject, tags ...string) bool {
	if obj == nil {
		return false
	}
	if obj.state == Destroyed {
		s.log.Warn().Str("entity", obj.name).Msg("Cannot add destroyed object to scene")
		return false
	}
	if obj.scene != nil && obj.scene != s {
		s.log.Warn().Str("entity", obj.name).Str("scene", obj.scene.name).Msg("Object belongs to another scene")
		return false
	}
	for _, tag := range tags {
		obj.tags[tag] = true
	}
	if obj.scene != s {
		obj.scene = s
		s.objects[obj.id] = obj
		s.order = append(s.order, obj)
		for tag := range obj.tags {
			s.indexTag(tag, obj.id)
		}
		obj.eachHook("OnAddedToScene", func(v any) {
			if l, ok := v.(SceneListener); ok {
				l.OnAddedToScene(s)
			}
		})
		s.events.Emit(EntityAddedEvent{ID: obj.id, Name: obj.name})
	} else {
		for _, tag := range tags {
			s.indexTag(tag, obj.id)
		}
	}
	for _, child := range obj.Children() {
		s.AddEntity(child)
	}
	return true
}

// RemoveEntity unregisters obj and its children without destroying them
func (s *Scene) RemoveEntity(obj *GameObject) bool {
	if obj == nil || obj.scene != s {
		return false
	}
	for _, child := range obj.Children() {
		s.RemoveEntity(child)
	}
	obj.eachHook("OnRemovedFromScene", func(v any) {
		if l, ok := v.(SceneListener); ok {
			l.OnRemovedFromScene(s)
		}
	})
	for tag := range obj.tags {
		s.unindexTag(tag, obj.id)
	}
	delete(s.objects, obj.id)
	for i, o := range s.order {
		if o == obj {
			s.order = append(s.order[:i:i], s.order[i+1:]...)
			break
		}
	}
	obj.scene = nil
	obj.log = s.log
	s.events.Emit(EntityRemovedEvent{ID: obj.id, Name: obj.name})
	return true
}

func (s *Scene) indexTag(tag string, id EntityID) {
	if _, exists := s.entityTags[tag]; !exists {
		s.entityTags[tag] = make(map[EntityID]bool)
	}
	s.entityTags[tag][id] = true
}

func (s *Scene) unindexTag(tag string, id EntityID) {
	delete(s.entityTags[tag], id)
	if len(s.entityTags[tag]) == 0 {
		delete(s.entityTags, tag)
	}
}

// Get returns an object by its ID
func (s *Scene) Get(id EntityID) *GameObject {
	return s.objects[id]
}

// Objects returns all registered objects in insertion order
func (s *Scene) Objects() []*GameObject {
	out := make([]*GameObject, len(s.order))
	copy(out, s.order)
	return out
}

// Contains reports whether obj is registered here
func (s *Scene) Contains(obj *GameObject) bool {
	return obj != nil && obj.scene == s
}

// AddSystem adds a system to the scene
func (s *Scene) AddSystem(system System) {
	s.systems = append(s.systems, system)
}

// Systems returns all systems registered in the scene
func (s *Scene) Systems() []System {
	return s.systems
}

// Events returns the scene's event manager
func (s *Scene) Events() *EventManager {
	return s.events
}

// EmitEvent is a convenience method to emit an event
func (s *Scene) EmitEvent(event Event) {
	s.events.Emit(event)
}

func (s *Scene) newFrame(dt float64) *Frame {
	return &Frame{
		Scene:       s,
		Physics:     s.physics,
		Input:       s.input,
		DeltaTime:   dt,
		ElapsedTime: s.elapsed,
		Number:      s.frame,
	}
}

// Update advances every registered object one frame, then runs the systems.
// It is the only thing that moves objects through Awake and Start.
func (s *Scene) Update(dt, elapsed float64) {
	s.frame++
	s.elapsed = elapsed
	f := s.newFrame(dt)
	// Objects added during this pass are first visited next frame
	for _, obj := range s.Objects() {
		if obj.scene != s {
			continue
		}
		obj.update(f)
	}
	for _, system := range s.systems {
		system.Update(s, dt)
	}
}

// FixedUpdate runs FixedUpdate on every started, active object
func (s *Scene) FixedUpdate(step float64) {
	f := s.newFrame(step)
	for _, obj := range s.Objects() {
		if obj.scene != s {
			continue
		}
		obj.fixedUpdate(f)
	}
}

// Clear destroys every registered object
func (s *Scene) Clear() {
	for _, obj := range s.Objects() {
		obj.Destroy()
	}
}
