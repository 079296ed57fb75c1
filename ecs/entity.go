package ecs

import (
	"sync/atomic"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/rs/zerolog"

	"ebiten-rally/geom"
	"ebiten-rally/physics"
)

// EntityID is a unique identifier for an entity
type EntityID uint64

var nextEntityID uint64 = 0

// NewEntityID generates a new unique entity ID
func NewEntityID() EntityID {
	return EntityID(atomic.AddUint64(&nextEntityID, 1))
}

// Mesh is the render collaborator's handle for an entity's visual
type Mesh interface {
	SetTransform(t geom.Transform)
	Dispose()
}

// Entity is an addressable world object with identity, transform, tags and components
type Entity struct {
	id   EntityID
	name string
	// Tags can be used for quick identification (e.g., "player", "enemy")
	tags      map[string]bool
	transform geom.Transform

	components map[ComponentID]*componentEntry
	order      []*componentEntry

	world    *physics.World
	body     physics.BodyHandle
	ownsBody bool
	mesh     Mesh

	// CustomData travels with serialized records
	CustomData map[string]any

	scene  *Scene
	object *GameObject
	log    zerolog.Logger
}

// NewEntity creates a new entity at the origin
func NewEntity(name string) *Entity {
	return &Entity{
		id:         NewEntityID(),
		name:       name,
		tags:       make(map[string]bool),
		transform:  geom.Identity(),
		components: make(map[ComponentID]*componentEntry),
		CustomData: make(map[string]any),
		log:        zerolog.Nop(),
	}
}

func (e *Entity) base() *Entity { return e }

// ID returns the immutable entity ID
func (e *Entity) ID() EntityID { return e.id }

// Name returns the display name
func (e *Entity) Name() string { return e.name }

// SetName renames the entity
func (e *Entity) SetName(name string) { e.name = name }

// GameObject returns the object wrapping this entity, or nil for a bare entity
func (e *Entity) GameObject() *GameObject { return e.object }

// Scene returns the scene the entity is registered in, or nil
func (e *Entity) Scene() *Scene { return e.scene }

// SetLogger sets the logger used while the entity is outside a scene
func (e *Entity) SetLogger(log zerolog.Logger) { e.log = log }

// Logger returns the scene logger, or the entity's own while outside a scene
func (e *Entity) Logger() *zerolog.Logger { return e.logger() }

func (e *Entity) logger() *zerolog.Logger {
	if e.scene != nil {
		return &e.scene.log
	}
	return &e.log
}

// AddTag adds a tag to the entity
func (e *Entity) AddTag(tag string) {
	e.tags[tag] = true
	if e.scene != nil {
		e.scene.indexTag(tag, e.id)
	}
}

// HasTag checks if the entity has a specific tag
func (e *Entity) HasTag(tag string) bool {
	return e.tags[tag]
}

// RemoveTag removes a tag from the entity
func (e *Entity) RemoveTag(tag string) {
	delete(e.tags, tag)
	if e.scene != nil {
		e.scene.unindexTag(tag, e.id)
	}
}

// Tags returns the entity's tags in no particular order
func (e *Entity) Tags() []string {
	tags := make([]string, 0, len(e.tags))
	for tag := range e.tags {
		tags = append(tags, tag)
	}
	return tags
}

// Transform returns the current transform
func (e *Entity) Transform() geom.Transform { return e.transform }

// SetTransform replaces the transform. For a physics-bound entity the body
// overwrites this on the next update; use Teleport to move the body too.
func (e *Entity) SetTransform(t geom.Transform) { e.transform = t }

// SetPosition moves the entity
func (e *Entity) SetPosition(p mgl64.Vec3) { e.transform.Position = p }

// SetRotation rotates the entity
func (e *Entity) SetRotation(q mgl64.Quat) { e.transform.Rotation = q }

// SetScale scales the entity
func (e *Entity) SetScale(s mgl64.Vec3) { e.transform.Scale = s }

// Position returns the world position
func (e *Entity) Position() mgl64.Vec3 { return e.transform.Position }

// Teleport sets the transform and moves a bound body along with it
func (e *Entity) Teleport(t geom.Transform) {
	e.transform = t
	if e.world != nil {
		e.world.SetPose(e.body, t.Position, t.Rotation)
	}
}

// Body returns the bound body handle, or the nil handle
func (e *Entity) Body() physics.BodyHandle { return e.body }

// PhysicsWorld returns the world the bound body lives in
func (e *Entity) PhysicsWorld() *physics.World { return e.world }

// OwnsBody reports whether the body is released with the entity
func (e *Entity) OwnsBody() bool { return e.ownsBody }

// BindBody implements physics.Bindable
func (e *Entity) BindBody(w *physics.World, h physics.BodyHandle, owned bool) {
	e.world, e.body, e.ownsBody = w, h, owned
}

// AttachBody follows a body the entity does not own, such as a vehicle wheel
func (e *Entity) AttachBody(w *physics.World, h physics.BodyHandle) bool {
	if !e.body.IsNil() {
		e.logger().Warn().Str("entity", e.name).Stringer("body", e.body).Msg("Entity already has a body")
		return false
	}
	if w.Body(h) == nil {
		e.logger().Warn().Str("entity", e.name).Stringer("body", h).Msg("Cannot attach unknown body")
		return false
	}
	e.BindBody(w, h, false)
	e.SyncFromBody()
	return true
}

// DetachBody drops the binding, releasing the body if the entity owns it
func (e *Entity) DetachBody() {
	if e.world != nil && e.ownsBody {
		e.world.RemoveBody(e.body)
	}
	e.world, e.body, e.ownsBody = nil, physics.BodyHandle{}, false
}

// SyncFromBody copies the bound body's pose into the transform. Scale is kept.
func (e *Entity) SyncFromBody() {
	if e.world == nil {
		return
	}
	b := e.world.Body(e.body)
	if b == nil {
		// Body was removed behind our back; forget the stale handle
		e.world, e.body, e.ownsBody = nil, physics.BodyHandle{}, false
		return
	}
	e.transform.Position = b.Position()
	e.transform.Rotation = b.Orientation()
}

// Mesh returns the render handle
func (e *Entity) Mesh() Mesh { return e.mesh }

// SetMesh assigns the render handle, disposing any previous one
func (e *Entity) SetMesh(m Mesh) {
	if e.mesh != nil && e.mesh != m {
		e.mesh.Dispose()
	}
	e.mesh = m
	if m != nil {
		m.SetTransform(e.transform)
	}
}

// ComponentIDs returns the attached component IDs in attach order
func (e *Entity) ComponentIDs() []ComponentID {
	ids := make([]ComponentID, 0, len(e.order))
	for _, entry := range e.order {
		ids = append(ids, entry.id)
	}
	return ids
}

// HasComponentID reports whether a component with the given ID is attached
func (e *Entity) HasComponentID(id ComponentID) bool {
	_, ok := e.components[id]
	return ok
}

// ComponentByID returns the component attached under id
func (e *Entity) ComponentByID(id ComponentID) (Component, bool) {
	entry, ok := e.components[id]
	if !ok {
		return nil, false
	}
	return entry.value, true
}

// SetComponentActive toggles whether a component receives updates
func (e *Entity) SetComponentActive(id ComponentID, active bool) {
	if entry, ok := e.components[id]; ok {
		entry.active = active
	}
}

// ComponentActive reports whether a component receives updates
func (e *Entity) ComponentActive(id ComponentID) bool {
	entry, ok := e.components[id]
	return ok && entry.active
}

func (e *Entity) removeComponent(id ComponentID) bool {
	entry, ok := e.components[id]
	if !ok {
		return false
	}
	delete(e.components, id)
	for i, other := range e.order {
		if other == entry {
			e.order = append(e.order[:i:i], e.order[i+1:]...)
			break
		}
	}
	entry.removed = true
	e.detachEntry(entry)
	return true
}

func (e *Entity) detachEntry(entry *componentEntry) {
	if d, ok := entry.value.(Detacher); ok {
		safeCall(e.logger(), e.name, "OnDetach", func() { d.OnDetach(e) })
	}
	if b, ok := entry.value.(binder); ok && b.boundTo() == e {
		b.bindTo(nil)
	}
}

// entries returns a snapshot so hooks may add or remove components while we iterate
func (e *Entity) entries() []*componentEntry {
	out := make([]*componentEntry, len(e.order))
	copy(out, e.order)
	return out
}

func (e *Entity) awakeEntry(entry *componentEntry) {
	if entry.awoken || entry.removed {
		return
	}
	entry.awoken = true
	if a, ok := entry.value.(Awaker); ok {
		safeCall(e.logger(), e.name, "Awake", a.Awake)
	}
}

func (e *Entity) startEntry(entry *componentEntry) {
	if entry.started || entry.removed {
		return
	}
	entry.started = true
	if s, ok := entry.value.(Starter); ok {
		safeCall(e.logger(), e.name, "Start", s.Start)
	}
}

// update follows the body, updates active components in attach order, then pushes the
// transform into the mesh so purely physical or scripted motion is always drawn
func (e *Entity) update(f *Frame) {
	e.SyncFromBody()
	for _, entry := range e.entries() {
		if entry.removed || !entry.active {
			continue
		}
		if u, ok := entry.value.(Updater); ok {
			safeCall(e.logger(), e.name, "Update", func() { u.Update(f) })
		}
	}
	e.pushMesh()
}

// followBody is update without the component hooks
func (e *Entity) followBody() {
	e.SyncFromBody()
	e.pushMesh()
}

func (e *Entity) pushMesh() {
	if e.mesh != nil {
		e.mesh.SetTransform(e.transform)
	}
}

func (e *Entity) fixedUpdate(f *Frame) {
	for _, entry := range e.entries() {
		if entry.removed || !entry.active {
			continue
		}
		if u, ok := entry.value.(FixedUpdater); ok {
			safeCall(e.logger(), e.name, "FixedUpdate", func() { u.FixedUpdate(f) })
		}
	}
}

// release detaches every component, releases an owned body and disposes the mesh
func (e *Entity) release() {
	for _, entry := range e.entries() {
		delete(e.components, entry.id)
		entry.removed = true
		e.detachEntry(entry)
	}
	e.order = nil
	e.DetachBody()
	if e.mesh != nil {
		mesh := e.mesh
		e.mesh = nil
		safeCall(e.logger(), e.name, "Dispose", mesh.Dispose)
	}
}
