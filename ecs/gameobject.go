package ecs

// Behaviour is the object's own script. It may implement any of the component
// hook interfaces and is always called before the components.
type Behaviour interface{}

// GameObject wraps an Entity with a lifecycle, an enabled flag and a hierarchy
type GameObject struct {
	*Entity
	state     LifecycleState
	enabled   bool
	behaviour Behaviour
	parent    *GameObject
	children  []*GameObject
}

// NewGameObject creates an enabled, unborn game object
func NewGameObject(name string) *GameObject {
	obj := &GameObject{
		Entity:  NewEntity(name),
		enabled: true,
	}
	obj.Entity.object = obj
	return obj
}

// SetBehaviour sets the object's own script
func (g *GameObject) SetBehaviour(b Behaviour) {
	g.behaviour = b
}

// Behaviour returns the object's own script
func (g *GameObject) Behaviour() Behaviour {
	return g.behaviour
}

// State returns the lifecycle state
func (g *GameObject) State() LifecycleState {
	return g.state
}

// Destroyed reports whether Destroy has run
func (g *GameObject) Destroyed() bool {
	return g.state == Destroyed
}

// Enabled returns the object's own enabled flag
func (g *GameObject) Enabled() bool {
	return g.enabled
}

// ActiveInHierarchy reports whether the object and all its ancestors are enabled
func (g *GameObject) ActiveInHierarchy() bool {
	for o := g; o != nil; o = o.parent {
		if !o.enabled {
			return false
		}
	}
	return g.state != Destroyed
}

// SetEnabled toggles the object. OnEnable/OnDisable fire once per actual change.
func (g *GameObject) SetEnabled(enabled bool) {
	if g.state == Destroyed || g.enabled == enabled {
		return
	}
	g.enabled = enabled
	if enabled {
		g.eachHook("OnEnable", func(v any) {
			if h, ok := v.(Enabler); ok {
				h.OnEnable()
			}
		})
	} else {
		g.eachHook("OnDisable", func(v any) {
			if h, ok := v.(Disabler); ok {
				h.OnDisable()
			}
		})
	}
}

// eachHook calls fn with the behaviour and then every attached component
func (g *GameObject) eachHook(hook string, fn func(v any)) {
	log := g.logger()
	if g.behaviour != nil {
		safeCall(log, g.name, hook, func() { fn(g.behaviour) })
	}
	for _, entry := range g.entries() {
		if entry.removed {
			continue
		}
		safeCall(log, g.name, hook, func() { fn(entry.value) })
	}
}

func (g *GameObject) advance(to LifecycleState) bool {
	next, ok := nextState(g.state, to)
	g.state = next
	return ok
}

func (g *GameObject) base() *Entity {
	if g == nil {
		return nil
	}
	return g.Entity
}

// awake runs Awake on the behaviour and then every component. Every Awake of the
// object completes before any Start.
func (g *GameObject) awake() {
	if !g.advance(Awoken) {
		return
	}
	if a, ok := g.behaviour.(Awaker); ok {
		safeCall(g.logger(), g.name, "Awake", a.Awake)
	}
	for _, entry := range g.entries() {
		g.awakeEntry(entry)
	}
}

func (g *GameObject) start() {
	if !g.advance(Started) {
		return
	}
	if s, ok := g.behaviour.(Starter); ok {
		safeCall(g.logger(), g.name, "Start", s.Start)
	}
	for _, entry := range g.entries() {
		g.startEntry(entry)
	}
}

// update is driven by the Scene only. Lifecycle catch-up happens even while
// disabled; per-frame hooks do not. A disabled object still follows its body.
func (g *GameObject) update(f *Frame) {
	if g.state == Destroyed {
		return
	}
	if g.state == Unborn {
		g.awake()
	}
	if g.state == Awoken {
		g.start()
	}
	if g.state != Started {
		return
	}
	if !g.ActiveInHierarchy() {
		g.Entity.followBody()
		return
	}
	if u, ok := g.behaviour.(Updater); ok {
		safeCall(g.logger(), g.name, "Update", func() { u.Update(f) })
	}
	if g.state == Destroyed {
		return
	}
	g.Entity.update(f)
}

func (g *GameObject) fixedUpdate(f *Frame) {
	if g.state != Started || !g.ActiveInHierarchy() {
		return
	}
	if u, ok := g.behaviour.(FixedUpdater); ok {
		safeCall(g.logger(), g.name, "FixedUpdate", func() { u.FixedUpdate(f) })
	}
	if g.state == Destroyed {
		return
	}
	g.Entity.fixedUpdate(f)
}

// Destroy tears the object down: OnDestroy on self then components, children
// destroyed, unparented, removed from its scene, resources released. Safe to call twice.
// OnDestroy only reaches hooks whose Awake ran; an object destroyed before its first
// update gets OnDetach alone.
func (g *GameObject) Destroy() {
	born := g.state != Unborn
	if !g.advance(Destroyed) {
		return
	}
	log := g.logger()
	if d, ok := g.behaviour.(Destroyer); ok && born {
		safeCall(log, g.name, "OnDestroy", d.OnDestroy)
	}
	for _, entry := range g.entries() {
		if entry.destroyed || entry.removed {
			continue
		}
		entry.destroyed = true
		// OnDestroy pairs with Awake; components that never woke get only OnDetach
		if !entry.awoken {
			continue
		}
		if d, ok := entry.value.(Destroyer); ok {
			safeCall(log, g.name, "OnDestroy", d.OnDestroy)
		}
	}

	children := make([]*GameObject, len(g.children))
	copy(children, g.children)
	for _, child := range children {
		child.Destroy()
	}
	g.SetParent(nil)

	scene := g.scene
	if scene != nil {
		scene.RemoveEntity(g)
	}
	g.release()
	if scene != nil {
		scene.events.Emit(EntityDestroyedEvent{ID: g.id, Name: g.name})
	}
}

// Parent returns the parent object, or nil
func (g *GameObject) Parent() *GameObject {
	return g.parent
}

// Children returns a copy of the child list
func (g *GameObject) Children() []*GameObject {
	out := make([]*GameObject, len(g.children))
	copy(out, g.children)
	return out
}

// SetParent reparents the object; nil detaches it. Returns false for cycles or
// destroyed objects.
func (g *GameObject) SetParent(parent *GameObject) bool {
	if parent == g.parent {
		return true
	}
	if parent != nil {
		if g.state == Destroyed || parent.state == Destroyed {
			g.logger().Warn().Str("entity", g.name).Msg("Cannot parent destroyed object")
			return false
		}
		for p := parent; p != nil; p = p.parent {
			if p == g {
				g.logger().Warn().Str("entity", g.name).Str("parent", parent.name).Msg("Refusing to create hierarchy cycle")
				return false
			}
		}
	}
	if old := g.parent; old != nil {
		for i, c := range old.children {
			if c == g {
				old.children = append(old.children[:i:i], old.children[i+1:]...)
				break
			}
		}
	}
	g.parent = parent
	if parent != nil {
		parent.children = append(parent.children, g)
	}
	return true
}
