package physics

import (
	"errors"
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/rs/zerolog"

	"ebiten-rally/geom"
)

var (
	// ErrInvalidShape is returned for malformed shape dimensions
	ErrInvalidShape = errors.New("physics: invalid shape")
	// ErrInvalidMass is returned for negative or non-finite masses
	ErrInvalidMass = errors.New("physics: invalid mass")
	// ErrInvalidPose is returned for non-finite positions or velocities
	ErrInvalidPose = errors.New("physics: invalid pose")
	// ErrAlreadyBound is returned when an entity already carries a body
	ErrAlreadyBound = errors.New("physics: target already has a body")
)

// Settings are the solver knobs of a World
type Settings struct {
	Gravity          mgl64.Vec3 `mapstructure:"gravity"`
	FixedTimeStep    float64    `mapstructure:"fixedTimeStep"`
	MaxSubSteps      int        `mapstructure:"maxSubSteps"`
	SolverIterations int        `mapstructure:"solverIterations"`
	// Baumgarte is the fraction of positional error corrected per sub-step
	Baumgarte float64 `mapstructure:"baumgarte"`
	// Slop is the penetration depth tolerated without correction
	Slop            float64  `mapstructure:"slop"`
	DefaultMaterial Material `mapstructure:"defaultMaterial"`
}

// DefaultSettings returns earth gravity and a 60 Hz fixed step
func DefaultSettings() Settings {
	return Settings{
		Gravity:          mgl64.Vec3{0, -9.82, 0},
		FixedTimeStep:    1.0 / 60.0,
		MaxSubSteps:      3,
		SolverIterations: 10,
		Baumgarte:        0.2,
		Slop:             0.005,
		DefaultMaterial:  Material{Friction: 0.3, Restitution: 0},
	}
}

// Option configures a World
type Option func(*World)

// WithSettings replaces the default settings; zero fields keep their defaults
func WithSettings(s Settings) Option {
	return func(w *World) {
		def := DefaultSettings()
		if s.FixedTimeStep <= 0 {
			s.FixedTimeStep = def.FixedTimeStep
		}
		if s.MaxSubSteps <= 0 {
			s.MaxSubSteps = def.MaxSubSteps
		}
		if s.SolverIterations <= 0 {
			s.SolverIterations = def.SolverIterations
		}
		if s.Baumgarte <= 0 {
			s.Baumgarte = def.Baumgarte
		}
		if s.Slop <= 0 {
			s.Slop = def.Slop
		}
		w.settings = s
	}
}

// WithLogger sets the logger used for usage warnings
func WithLogger(log zerolog.Logger) Option {
	return func(w *World) {
		w.log = log
	}
}

// ContactListener is told about each pair of bodies that starts touching
type ContactListener func(Contact)

// Bindable is a gameplay object that can carry a body, such as an ecs.Entity
type Bindable interface {
	Transform() geom.Transform
	Body() BodyHandle
	BindBody(w *World, h BodyHandle, owned bool)
}

// World owns every body and constraint and advances the simulation
type World struct {
	settings Settings
	log      zerolog.Logger

	bodies    arena
	joints    []*hingeJoint
	vehicles  []*VehicleRig
	noCollide map[pairKey]int

	contacts     []contact
	touching     map[pairKey]bool
	listeners    []ContactListener
	accumulator  float64
	time         float64
	stepsTotal   uint64
	lastSubSteps int
}

// NewWorld creates an empty world
func NewWorld(opts ...Option) *World {
	w := &World{
		settings:  DefaultSettings(),
		log:       zerolog.Nop(),
		noCollide: make(map[pairKey]int),
		touching:  make(map[pairKey]bool),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Settings returns the active settings
func (w *World) Settings() Settings { return w.settings }

// SetGravity changes gravity for subsequent steps
func (w *World) SetGravity(g mgl64.Vec3) { w.settings.Gravity = g }

// Time returns the simulated time in seconds
func (w *World) Time() float64 { return w.time }

// BodyCount returns the number of live bodies
func (w *World) BodyCount() int { return w.bodies.live }

// LastSubSteps returns how many fixed sub-steps the previous Step ran
func (w *World) LastSubSteps() int { return w.lastSubSteps }

// OnContact registers a listener for new contacts
func (w *World) OnContact(fn ContactListener) {
	w.listeners = append(w.listeners, fn)
}

// Body resolves a handle; nil for the nil handle or a removed body
func (w *World) Body(h BodyHandle) *Body {
	return w.bodies.get(h)
}

// Bodies returns every live body in slot order
func (w *World) Bodies() []*Body {
	out := make([]*Body, 0, w.bodies.live)
	w.bodies.each(func(b *Body) { out = append(out, b) })
	return out
}

// CreateBox creates a box body
func (w *World) CreateBox(halfExtents mgl64.Vec3, spec BodySpec) (BodyHandle, error) {
	spec.Shape = Box{HalfExtents: halfExtents}
	return w.CreateBody(spec)
}

// CreateSphere creates a sphere body
func (w *World) CreateSphere(radius float64, spec BodySpec) (BodyHandle, error) {
	spec.Shape = Sphere{Radius: radius}
	return w.CreateBody(spec)
}

// CreateCylinder creates a cylinder body whose axis is the local +Y axis
func (w *World) CreateCylinder(radius, halfHeight float64, spec BodySpec) (BodyHandle, error) {
	spec.Shape = Cylinder{Radius: radius, HalfHeight: halfHeight}
	return w.CreateBody(spec)
}

// CreatePlane creates a static ground plane through spec.Position with its normal along the rotated +Y axis
func (w *World) CreatePlane(spec BodySpec) (BodyHandle, error) {
	spec.Shape = Plane{}
	return w.CreateBody(spec)
}

// CreateBody validates spec and registers a world-owned body.
// Malformed specs are rejected before anything is registered.
func (w *World) CreateBody(spec BodySpec) (BodyHandle, error) {
	if err := w.validate(spec); err != nil {
		return BodyHandle{}, err
	}
	b := newBody(spec, w.settings.DefaultMaterial)
	b.owner = OwnerWorld
	b.handle = w.bodies.insert(b)
	w.log.Debug().Str("shape", spec.Shape.Kind().String()).Float64("mass", spec.Mass).Stringer("body", b.handle).Msg("Body created")
	return b.handle, nil
}

func (w *World) validate(spec BodySpec) error {
	if spec.Shape == nil {
		return fmt.Errorf("%w: no shape", ErrInvalidShape)
	}
	if err := spec.Shape.validate(); err != nil {
		return err
	}
	if spec.Mass < 0 || math.IsNaN(spec.Mass) || math.IsInf(spec.Mass, 0) {
		return fmt.Errorf("%w: %v", ErrInvalidMass, spec.Mass)
	}
	if spec.Shape.Kind() == ShapePlane && spec.Mass != 0 {
		return fmt.Errorf("%w: planes must be static", ErrInvalidShape)
	}
	if !finiteVec(spec.Position) || !finiteVec(spec.Velocity) || !finiteVec(spec.AngularVelocity) {
		return ErrInvalidPose
	}
	if spec.LinearDamping < 0 || spec.LinearDamping > 1 || spec.AngularDamping < 0 || spec.AngularDamping > 1 {
		return fmt.Errorf("%w: damping must be within [0, 1]", ErrInvalidShape)
	}
	return nil
}

// RemoveBody releases a body and every joint attached to it. Stale handles are ignored.
func (w *World) RemoveBody(h BodyHandle) bool {
	b := w.bodies.remove(h)
	if b == nil {
		return false
	}
	joints := w.joints[:0]
	for _, j := range w.joints {
		if j.a == h || j.b == h {
			w.allowCollision(j.a, j.b)
			continue
		}
		joints = append(joints, j)
	}
	w.joints = joints
	for key := range w.touching {
		if key.has(h) {
			delete(w.touching, key)
		}
	}
	for key := range w.noCollide {
		if key.has(h) {
			delete(w.noCollide, key)
		}
	}
	return true
}

// AddToEntity creates an entity-owned body at the target's current transform and binds it.
// From then on the body is the source of truth for the target's position and rotation.
func (w *World) AddToEntity(target Bindable, spec BodySpec) (BodyHandle, error) {
	if existing := target.Body(); !existing.IsNil() && w.Body(existing) != nil {
		return existing, ErrAlreadyBound
	}
	t := target.Transform()
	spec.Position = t.Position
	spec.Orientation = t.Rotation
	h, err := w.CreateBody(spec)
	if err != nil {
		return BodyHandle{}, err
	}
	w.bodies.get(h).owner = OwnerEntity
	target.BindBody(w, h, true)
	return h, nil
}

// ApplyForce accumulates a force until the next Step. With a world point the force also produces torque.
func (w *World) ApplyForce(h BodyHandle, force mgl64.Vec3, worldPoint ...mgl64.Vec3) {
	b := w.dynamicBody(h, "ApplyForce")
	if b == nil {
		return
	}
	b.force = b.force.Add(force)
	if len(worldPoint) > 0 {
		r := worldPoint[0].Sub(b.position)
		b.torque = b.torque.Add(r.Cross(force))
	}
}

// ApplyTorque accumulates a torque until the next Step
func (w *World) ApplyTorque(h BodyHandle, torque mgl64.Vec3) {
	if b := w.dynamicBody(h, "ApplyTorque"); b != nil {
		b.torque = b.torque.Add(torque)
	}
}

// ApplyImpulse changes velocity immediately
func (w *World) ApplyImpulse(h BodyHandle, impulse mgl64.Vec3, worldPoint ...mgl64.Vec3) {
	b := w.dynamicBody(h, "ApplyImpulse")
	if b == nil {
		return
	}
	var r mgl64.Vec3
	if len(worldPoint) > 0 {
		r = worldPoint[0].Sub(b.position)
	}
	b.applyImpulseAt(impulse, r)
}

// dynamicBody resolves h for a force-like call; static bodies and stale handles yield nil
func (w *World) dynamicBody(h BodyHandle, op string) *Body {
	b := w.bodies.get(h)
	if b == nil {
		w.log.Warn().Stringer("body", h).Str("op", op).Msg("Unknown body")
		return nil
	}
	if !b.IsDynamic() {
		return nil
	}
	return b
}

// SetPose teleports a body. Velocities are kept.
func (w *World) SetPose(h BodyHandle, position mgl64.Vec3, orientation mgl64.Quat) {
	b := w.bodies.get(h)
	if b == nil {
		return
	}
	b.position = position
	b.orientation = normalizeQuat(orientation)
	b.updateInertia()
}

// SetVelocity sets linear velocity. Mass-0 bodies accept it and move kinematically.
func (w *World) SetVelocity(h BodyHandle, v mgl64.Vec3) {
	if b := w.bodies.get(h); b != nil {
		b.velocity = v
	}
}

// SetAngularVelocity sets angular velocity
func (w *World) SetAngularVelocity(h BodyHandle, v mgl64.Vec3) {
	if b := w.bodies.get(h); b != nil {
		b.angularVelocity = v
	}
}

// Step advances the simulation by dt using fixed sub-steps and returns how many ran.
// At most MaxSubSteps run per call; leftover time beyond that is dropped.
func (w *World) Step(dt float64) int {
	w.lastSubSteps = 0
	if dt <= 0 || math.IsNaN(dt) || math.IsInf(dt, 0) {
		return 0
	}
	h := w.settings.FixedTimeStep
	limit := h * float64(w.settings.MaxSubSteps)
	w.accumulator += dt
	if w.accumulator > limit {
		w.accumulator = limit
	}

	steps := 0
	// Small tolerance so dt == h always runs exactly one sub-step
	for w.accumulator >= h-1e-9 && steps < w.settings.MaxSubSteps {
		w.subStep(h)
		w.accumulator -= h
		steps++
	}
	if w.accumulator < 0 {
		w.accumulator = 0
	}
	if steps > 0 {
		w.bodies.each(func(b *Body) {
			b.force = mgl64.Vec3{}
			b.torque = mgl64.Vec3{}
		})
	}
	w.lastSubSteps = steps
	return steps
}

func (w *World) subStep(h float64) {
	g := w.settings.Gravity

	// Integrate forces into velocities
	w.bodies.each(func(b *Body) {
		if !b.IsDynamic() {
			return
		}
		b.updateInertia()
		b.velocity = b.velocity.Add(g.Add(b.force.Mul(b.invMass)).Mul(h))
		b.angularVelocity = b.angularVelocity.Add(b.invInertiaW.Mul3x1(b.torque).Mul(h))
	})
	for _, v := range w.vehicles {
		v.applyWheelTorques(h)
	}
	w.bodies.each(func(b *Body) {
		if !b.IsDynamic() {
			return
		}
		b.velocity = b.velocity.Mul(dampFactor(b.linearDamping, h))
		b.angularVelocity = b.angularVelocity.Mul(dampFactor(b.angularDamping, h))
	})

	// Constraints
	w.contacts = w.detectContacts(w.contacts[:0])
	w.prepareContacts(h)
	for _, j := range w.joints {
		j.prepare(w, h)
	}
	for i := 0; i < w.settings.SolverIterations; i++ {
		for _, j := range w.joints {
			j.solve()
		}
		for k := range w.contacts {
			w.contacts[k].solve()
		}
	}

	// Integrate positions
	w.bodies.each(func(b *Body) {
		if b.shape.Kind() == ShapePlane {
			return
		}
		b.position = b.position.Add(b.velocity.Mul(h))
		if b.angularVelocity.LenSqr() > 0 {
			spin := mgl64.Quat{W: 0, V: b.angularVelocity.Mul(0.5 * h)}
			b.orientation = b.orientation.Add(spin.Mul(b.orientation)).Normalize()
		}
		b.updateInertia()
	})

	w.time += h
	w.stepsTotal++
	w.reportContacts()
}

// reportContacts tells listeners about pairs that were not touching in the previous sub-step
func (w *World) reportContacts() {
	now := make(map[pairKey]bool, len(w.contacts))
	for _, c := range w.contacts {
		key := makePairKey(c.a.handle, c.b.handle)
		if now[key] {
			continue
		}
		now[key] = true
		if !w.touching[key] {
			for _, fn := range w.listeners {
				fn(c.public())
			}
		}
	}
	w.touching = now
}

// pairKey is an unordered pair of bodies
type pairKey struct {
	lo, hi BodyHandle
}

func makePairKey(a, b BodyHandle) pairKey {
	if b.index < a.index {
		a, b = b, a
	}
	return pairKey{lo: a, hi: b}
}

func (k pairKey) has(h BodyHandle) bool {
	return k.lo == h || k.hi == h
}

func (w *World) ignoreCollision(a, b BodyHandle) {
	w.noCollide[makePairKey(a, b)]++
}

func (w *World) allowCollision(a, b BodyHandle) {
	key := makePairKey(a, b)
	if w.noCollide[key] <= 1 {
		delete(w.noCollide, key)
		return
	}
	w.noCollide[key]--
}
