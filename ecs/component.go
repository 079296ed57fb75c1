package ecs

import (
	"fmt"
	"reflect"
	"sync"
)

// ComponentID is a dense index assigned to each component type on first use
type ComponentID uint

// Component is any value attached to an entity. Behaviour is opted into by
// implementing the hook interfaces below.
type Component interface{}

// Hook interfaces. A component implements only the ones it needs.
type (
	// Attacher is told synchronously when it is attached to an entity
	Attacher interface{ OnAttach(e *Entity) }
	// Detacher is told when it is removed from an entity
	Detacher interface{ OnDetach(e *Entity) }
	// Awaker runs once, on the owning object's first update
	Awaker interface{ Awake() }
	// Starter runs once, after every Awake of the owning object
	Starter interface{ Start() }
	// Updater runs every frame while the owner is enabled
	Updater interface{ Update(f *Frame) }
	// FixedUpdater runs once per fixed physics step while the owner is enabled
	FixedUpdater interface{ FixedUpdate(f *Frame) }
	// Enabler is told when the owner is re-enabled
	Enabler interface{ OnEnable() }
	// Disabler is told when the owner is disabled
	Disabler interface{ OnDisable() }
	// Destroyer runs once when the owner is destroyed
	Destroyer interface{ OnDestroy() }
	// SceneListener is told when the owner joins or leaves a scene
	SceneListener interface {
		OnAddedToScene(s *Scene)
		OnRemovedFromScene(s *Scene)
	}
)

// Base can be embedded in a component to get a back-reference to its entity.
// A component embedding Base can only ever be bound to one entity.
type Base struct {
	entity *Entity
}

// Entity returns the entity this component is bound to
func (b *Base) Entity() *Entity {
	return b.entity
}

func (b *Base) boundTo() *Entity { return b.entity }
func (b *Base) bindTo(e *Entity) { b.entity = e }

type binder interface {
	boundTo() *Entity
	bindTo(e *Entity)
}

// componentRegistry maps Go types to dense component IDs
var componentRegistry = struct {
	sync.Mutex
	ids   map[reflect.Type]ComponentID
	types []reflect.Type
}{ids: make(map[reflect.Type]ComponentID)}

// ComponentIDOf returns the ID for component type T, assigning one if needed
func ComponentIDOf[T Component]() ComponentID {
	return componentIDFor(reflect.TypeOf((*T)(nil)).Elem())
}

func componentIDFor(t reflect.Type) ComponentID {
	componentRegistry.Lock()
	defer componentRegistry.Unlock()
	if id, ok := componentRegistry.ids[t]; ok {
		return id
	}
	id := ComponentID(len(componentRegistry.types))
	componentRegistry.ids[t] = id
	componentRegistry.types = append(componentRegistry.types, t)
	return id
}

// ComponentName returns a readable name for a component ID
func ComponentName(id ComponentID) string {
	componentRegistry.Lock()
	defer componentRegistry.Unlock()
	if int(id) >= len(componentRegistry.types) {
		return fmt.Sprintf("component(%d)", id)
	}
	return componentRegistry.types[id].String()
}

// componentEntry tracks one attached component and its lifecycle bookkeeping
type componentEntry struct {
	id        ComponentID
	value     Component
	active    bool
	awoken    bool
	started   bool
	destroyed bool
	removed   bool
}

// Holder is anything that carries an entity: *Entity and *GameObject
type Holder interface {
	base() *Entity
}

// entityOf tolerates a nil holder, including a typed nil such as a failed lookup's *GameObject
func entityOf(h Holder) *Entity {
	if h == nil {
		return nil
	}
	return h.base()
}

// AddComponent attaches c under its type. If a component of that type is already
// present it is returned unchanged with false, and c is never attached.
func AddComponent[T Component](h Holder, c T) (T, bool) {
	return addComponent(entityOf(h), ComponentIDOf[T](), func() T { return c })
}

// AddComponentValue attaches c under its dynamic type, for callers that only hold a
// Component such as template loaders. It matches AddComponent[T] for the same concrete type.
func AddComponentValue(h Holder, c Component) (Component, bool) {
	if c == nil {
		return nil, false
	}
	return addComponent(entityOf(h), componentIDFor(reflect.TypeOf(c)), func() Component { return c })
}

// AddComponentFunc is AddComponent with a factory that only runs when the type is absent
func AddComponentFunc[T Component](h Holder, factory func() T) (T, bool) {
	return addComponent(entityOf(h), ComponentIDOf[T](), factory)
}

func addComponent[T Component](e *Entity, id ComponentID, factory func() T) (T, bool) {
	var zero T
	if e == nil {
		return zero, false
	}
	if entry, ok := e.components[id]; ok {
		e.logger().Warn().Str("entity", e.name).Str("component", ComponentName(id)).Msg("Component already present, keeping existing")
		existing, _ := entry.value.(T)
		return existing, false
	}
	if e.object != nil && e.object.state == Destroyed {
		e.logger().Warn().Str("entity", e.name).Str("component", ComponentName(id)).Msg("Cannot add component to destroyed object")
		return zero, false
	}
	c := factory()
	if b, ok := any(c).(binder); ok {
		if owner := b.boundTo(); owner != nil && owner != e {
			e.logger().Warn().Str("entity", e.name).Str("owner", owner.name).Str("component", ComponentName(id)).Msg("Component is bound to another entity")
			return zero, false
		}
		b.bindTo(e)
	}
	entry := &componentEntry{id: id, value: c, active: true}
	e.components[id] = entry
	e.order = append(e.order, entry)
	if a, ok := any(c).(Attacher); ok {
		safeCall(e.logger(), e.name, "OnAttach", func() { a.OnAttach(e) })
	}

	// Late additions catch up with the owning object's lifecycle
	if obj := e.object; obj != nil {
		if obj.state >= Awoken {
			e.awakeEntry(entry)
		}
		if obj.state >= Started {
			e.startEntry(entry)
		}
	}
	return c, true
}

// GetComponent returns the component of type T
func GetComponent[T Component](h Holder) (T, bool) {
	var zero T
	e := entityOf(h)
	if e == nil {
		return zero, false
	}
	entry, ok := e.components[ComponentIDOf[T]()]
	if !ok {
		return zero, false
	}
	c, ok := entry.value.(T)
	return c, ok
}

// HasComponent reports whether a component of type T is attached
func HasComponent[T Component](h Holder) bool {
	e := entityOf(h)
	if e == nil {
		return false
	}
	_, ok := e.components[ComponentIDOf[T]()]
	return ok
}

// RemoveComponent detaches the component of type T. OnDestroy is not fired;
// that only happens when the owning object is destroyed.
func RemoveComponent[T Component](h Holder) bool {
	e := entityOf(h)
	if e == nil {
		return false
	}
	return e.removeComponent(ComponentIDOf[T]())
}
