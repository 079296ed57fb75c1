package physics

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ebiten-rally/geom"
)

const tick = 1.0 / 60.0

func zeroGravity() Option {
	s := DefaultSettings()
	s.Gravity = mgl64.Vec3{}
	return WithSettings(s)
}

func stepN(w *World, n int) {
	for i := 0; i < n; i++ {
		w.Step(tick)
	}
}

func TestArenaHandles(t *testing.T) {
	w := NewWorld()
	a, err := w.CreateSphere(1, BodySpec{Mass: 1})
	require.NoError(t, err)
	assert.False(t, a.IsNil())
	assert.NotNil(t, w.Body(a))
	assert.Equal(t, 1, w.BodyCount())

	assert.True(t, w.RemoveBody(a))
	assert.Nil(t, w.Body(a), "removed handle must not resolve")
	assert.False(t, w.RemoveBody(a), "second removal is a no-op")

	b, err := w.CreateSphere(1, BodySpec{Mass: 1})
	require.NoError(t, err)
	assert.Equal(t, a.index, b.index, "slot is reused")
	assert.NotEqual(t, a, b)
	assert.Nil(t, w.Body(a), "stale handle does not alias the new body")
	assert.NotNil(t, w.Body(b))

	assert.Nil(t, w.Body(BodyHandle{}))
}

func TestCreateRejectsMalformedSpecs(t *testing.T) {
	cases := []struct {
		name   string
		create func(w *World) error
		want   error
	}{
		{"zero radius", func(w *World) error { _, err := w.CreateSphere(0, BodySpec{Mass: 1}); return err }, ErrInvalidShape},
		{"nan radius", func(w *World) error { _, err := w.CreateSphere(math.NaN(), BodySpec{Mass: 1}); return err }, ErrInvalidShape},
		{"negative extent", func(w *World) error {
			_, err := w.CreateBox(mgl64.Vec3{1, -1, 1}, BodySpec{Mass: 1})
			return err
		}, ErrInvalidShape},
		{"flat cylinder", func(w *World) error { _, err := w.CreateCylinder(1, 0, BodySpec{Mass: 1}); return err }, ErrInvalidShape},
		{"negative mass", func(w *World) error { _, err := w.CreateSphere(1, BodySpec{Mass: -1}); return err }, ErrInvalidMass},
		{"dynamic plane", func(w *World) error { _, err := w.CreatePlane(BodySpec{Mass: 1}); return err }, ErrInvalidShape},
		{"infinite position", func(w *World) error {
			_, err := w.CreateSphere(1, BodySpec{Mass: 1, Position: mgl64.Vec3{math.Inf(1), 0, 0}})
			return err
		}, ErrInvalidPose},
		{"no shape", func(w *World) error { _, err := w.CreateBody(BodySpec{Mass: 1}); return err }, ErrInvalidShape},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := NewWorld()
			err := tc.create(w)
			assert.ErrorIs(t, err, tc.want)
			assert.Equal(t, 0, w.BodyCount(), "nothing is registered on failure")
		})
	}
}

func TestStaticBodyIgnoresForces(t *testing.T) {
	w := NewWorld()
	h, err := w.CreateBox(mgl64.Vec3{1, 1, 1}, BodySpec{Mass: 0, Position: mgl64.Vec3{3, 4, 5}})
	require.NoError(t, err)

	w.ApplyForce(h, mgl64.Vec3{1000, 0, 0})
	w.ApplyImpulse(h, mgl64.Vec3{0, 1000, 0}, mgl64.Vec3{3, 5, 5})
	w.ApplyTorque(h, mgl64.Vec3{0, 0, 50})
	stepN(w, 30)

	b := w.Body(h)
	assert.Equal(t, mgl64.Vec3{3, 4, 5}, b.Position())
	assert.Equal(t, mgl64.Vec3{}, b.Velocity())
	assert.True(t, b.Orientation().ApproxEqual(mgl64.QuatIdent()))
}

func TestSubStepping(t *testing.T) {
	w := NewWorld()
	assert.Equal(t, 1, w.Step(tick))
	assert.Equal(t, 0, w.Step(tick/2))
	assert.Equal(t, 1, w.Step(tick/2))
	assert.Equal(t, 3, w.Step(1.0), "catch-up is capped")
	assert.Equal(t, 0, w.Step(tick/3), "excess time is dropped after a stall")
	assert.Equal(t, 0, w.Step(0))
	assert.Equal(t, 0, w.Step(-1))
	assert.Equal(t, 0, w.Step(math.NaN()))
}

func TestForceAccumulatesUntilNextStep(t *testing.T) {
	w := NewWorld(zeroGravity())
	h, err := w.CreateSphere(0.5, BodySpec{Mass: 2})
	require.NoError(t, err)

	w.ApplyForce(h, mgl64.Vec3{6, 0, 0})
	w.ApplyForce(h, mgl64.Vec3{6, 0, 0})
	w.Step(tick)
	v := w.Body(h).Velocity()
	assert.InDelta(t, 12.0/2.0*tick, v.X(), 1e-9)

	// Forces were consumed by the step
	w.Step(tick)
	assert.InDelta(t, v.X(), w.Body(h).Velocity().X(), 1e-9)
}

func TestForceKeptWhenNoSubStepRuns(t *testing.T) {
	w := NewWorld(zeroGravity())
	h, err := w.CreateSphere(0.5, BodySpec{Mass: 1})
	require.NoError(t, err)

	w.ApplyForce(h, mgl64.Vec3{0, 0, 60})
	assert.Equal(t, 0, w.Step(tick/4))
	assert.Equal(t, 1, w.Step(tick))
	assert.InDelta(t, 1.0, w.Body(h).Velocity().Z(), 1e-9)
}

func TestImpulseIsInstant(t *testing.T) {
	w := NewWorld(zeroGravity())
	h, err := w.CreateSphere(0.5, BodySpec{Mass: 4})
	require.NoError(t, err)

	w.ApplyImpulse(h, mgl64.Vec3{0, 8, 0})
	assert.InDelta(t, 2.0, w.Body(h).Velocity().Y(), 1e-12)

	// Off-centre impulse also spins the body
	w.ApplyImpulse(h, mgl64.Vec3{1, 0, 0}, mgl64.Vec3{0, 0.5, 0})
	assert.NotZero(t, w.Body(h).AngularVelocity().Len())
}

func TestDampingSlowsBodies(t *testing.T) {
	w := NewWorld(zeroGravity())
	h, err := w.CreateSphere(0.5, BodySpec{Mass: 1, Velocity: mgl64.Vec3{10, 0, 0}, LinearDamping: 0.5})
	require.NoError(t, err)
	stepN(w, 60)
	assert.InDelta(t, 5.0, w.Body(h).Velocity().X(), 1e-6)
}

func TestSphereRestsOnPlane(t *testing.T) {
	w := NewWorld()
	_, err := w.CreatePlane(BodySpec{})
	require.NoError(t, err)
	h, err := w.CreateSphere(0.5, BodySpec{Mass: 1, Position: mgl64.Vec3{0, 3, 0}})
	require.NoError(t, err)

	stepN(w, 240)
	b := w.Body(h)
	assert.InDelta(t, 0.5, b.Position().Y(), 0.03)
	assert.InDelta(t, 0, b.Velocity().Len(), 0.1)
}

func TestBoxRestsOnPlane(t *testing.T) {
	w := NewWorld()
	_, err := w.CreatePlane(BodySpec{})
	require.NoError(t, err)
	h, err := w.CreateBox(mgl64.Vec3{0.5, 0.25, 0.5}, BodySpec{Mass: 3, Position: mgl64.Vec3{0, 1, 0}})
	require.NoError(t, err)

	stepN(w, 240)
	b := w.Body(h)
	assert.InDelta(t, 0.25, b.Position().Y(), 0.03)
	assert.True(t, b.Orientation().ApproxEqualThreshold(mgl64.QuatIdent(), 0.05), "box stays flat: %v", b.Orientation())
}

func TestSphereLandsOnStaticBox(t *testing.T) {
	w := NewWorld()
	_, err := w.CreateBox(mgl64.Vec3{2, 0.5, 2}, BodySpec{})
	require.NoError(t, err)
	h, err := w.CreateSphere(0.5, BodySpec{Mass: 1, Position: mgl64.Vec3{0, 3, 0}})
	require.NoError(t, err)

	stepN(w, 240)
	assert.InDelta(t, 1.0, w.Body(h).Position().Y(), 0.03)
}

func TestSpheresPushApart(t *testing.T) {
	w := NewWorld(zeroGravity())
	a, err := w.CreateSphere(1, BodySpec{Mass: 1, Position: mgl64.Vec3{-0.9, 0, 0}})
	require.NoError(t, err)
	b, err := w.CreateSphere(1, BodySpec{Mass: 1, Position: mgl64.Vec3{0.9, 0, 0}})
	require.NoError(t, err)

	stepN(w, 60)
	assert.Less(t, w.Body(a).Position().X(), -0.9)
	assert.Greater(t, w.Body(b).Position().X(), 0.9)
}

func TestContactListenerFiresOnce(t *testing.T) {
	w := NewWorld()
	ground, err := w.CreatePlane(BodySpec{})
	require.NoError(t, err)
	ball, err := w.CreateSphere(0.5, BodySpec{Mass: 1, Position: mgl64.Vec3{0, 1, 0}})
	require.NoError(t, err)

	var got []Contact
	w.OnContact(func(c Contact) { got = append(got, c) })
	stepN(w, 120)

	require.Len(t, got, 1)
	c := got[0]
	assert.ElementsMatch(t, []BodyHandle{ground, ball}, []BodyHandle{c.A, c.B})
	// Normal points from B to A
	if c.A == ball {
		assert.Greater(t, c.Normal.Y(), 0.9)
	} else {
		assert.Less(t, c.Normal.Y(), -0.9)
	}
}

type fakeTarget struct {
	transform geom.Transform
	world     *World
	body      BodyHandle
	owned     bool
}

func (f *fakeTarget) Transform() geom.Transform { return f.transform }
func (f *fakeTarget) Body() BodyHandle          { return f.body }
func (f *fakeTarget) BindBody(w *World, h BodyHandle, owned bool) {
	f.world, f.body, f.owned = w, h, owned
}

func TestAddToEntity(t *testing.T) {
	w := NewWorld()
	target := &fakeTarget{transform: geom.At(1, 2, 3)}
	target.transform.Rotation = mgl64.QuatRotate(0.5, mgl64.Vec3{0, 1, 0})

	h, err := w.AddToEntity(target, BodySpec{Shape: Sphere{Radius: 0.5}, Mass: 1, Position: mgl64.Vec3{9, 9, 9}})
	require.NoError(t, err)
	assert.Equal(t, h, target.body)
	assert.True(t, target.owned)
	assert.Same(t, w, target.world)

	b := w.Body(h)
	assert.Equal(t, OwnerEntity, b.Owner())
	assert.Equal(t, mgl64.Vec3{1, 2, 3}, b.Position(), "body starts at the entity transform")
	assert.True(t, b.Orientation().ApproxEqual(target.transform.Rotation))

	again, err := w.AddToEntity(target, BodySpec{Shape: Sphere{Radius: 0.5}, Mass: 1})
	assert.ErrorIs(t, err, ErrAlreadyBound)
	assert.Equal(t, h, again)
	assert.Equal(t, 1, w.BodyCount())

	_, err = w.AddToEntity(&fakeTarget{transform: geom.Identity()}, BodySpec{Shape: Sphere{Radius: -1}, Mass: 1})
	assert.ErrorIs(t, err, ErrInvalidShape)
}

func TestSetPoseTeleports(t *testing.T) {
	w := NewWorld(zeroGravity())
	h, err := w.CreateBox(mgl64.Vec3{1, 1, 1}, BodySpec{Mass: 1})
	require.NoError(t, err)
	q := mgl64.QuatRotate(1, mgl64.Vec3{0, 0, 1})
	w.SetPose(h, mgl64.Vec3{5, 0, 0}, q)
	assert.Equal(t, mgl64.Vec3{5, 0, 0}, w.Body(h).Position())
	assert.True(t, w.Body(h).Orientation().ApproxEqual(q))
}

func TestKinematicBodyMovesWithVelocity(t *testing.T) {
	w := NewWorld()
	h, err := w.CreateBox(mgl64.Vec3{1, 1, 1}, BodySpec{})
	require.NoError(t, err)
	w.SetVelocity(h, mgl64.Vec3{6, 0, 0})
	stepN(w, 10)
	assert.InDelta(t, 1.0, w.Body(h).Position().X(), 1e-9)
	assert.Zero(t, w.Body(h).Position().Y(), "gravity does not act on mass-0 bodies")
}
