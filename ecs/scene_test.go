package ecs

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ebiten-rally/geom"
	"ebiten-rally/input"
	"ebiten-rally/physics"
)

func TestAddRemoveEntityIsIdempotent(t *testing.T) {
	var journal []string
	scene := NewScene("test")
	obj := NewGameObject("obj")
	AddComponent(obj, newRecorder("r", &journal))

	var added, removed int
	scene.Events().Subscribe(EntityAdded, func(Event) { added++ })
	scene.Events().Subscribe(EntityRemoved, func(Event) { removed++ })

	assert.True(t, scene.AddEntity(obj))
	assert.True(t, scene.AddEntity(obj))
	assert.Equal(t, 1, scene.Len())
	assert.Same(t, scene, obj.Scene())

	assert.True(t, scene.RemoveEntity(obj))
	assert.False(t, scene.RemoveEntity(obj))
	assert.Zero(t, scene.Len())
	assert.Nil(t, obj.Scene())

	assert.Equal(t, 1, added)
	assert.Equal(t, 1, removed)
	assert.Equal(t, 1, count(journal, "r.OnAddedToScene"))
	assert.Equal(t, 1, count(journal, "r.OnRemovedFromScene"))
	assert.False(t, obj.Destroyed(), "removal does not destroy")
}

func TestObjectCannotJoinTwoScenes(t *testing.T) {
	a := NewScene("a")
	b := NewScene("b")
	obj := NewGameObject("obj")
	a.AddEntity(obj)

	assert.False(t, b.AddEntity(obj))
	assert.Zero(t, b.Len())
}

func TestDestroyPublishesEvent(t *testing.T) {
	scene := NewScene("test")
	obj := NewGameObject("obj")
	scene.AddEntity(obj)

	var got []EntityID
	scene.Events().Subscribe(EntityDestroyed, func(e Event) {
		got = append(got, e.(EntityDestroyedEvent).ID)
	})
	obj.Destroy()

	assert.Equal(t, []EntityID{obj.ID()}, got)
}

func TestUnsubscribe(t *testing.T) {
	em := NewEventManager()
	calls := 0
	id := em.Subscribe(EntityAdded, func(Event) { calls++ })
	em.Subscribe(EntityAdded, func(Event) { calls += 10 })

	em.Unsubscribe(EntityAdded, id)
	em.Emit(EntityAddedEvent{})

	assert.Equal(t, 10, calls)
}

type spawner struct {
	Base
	spawned *GameObject
}

func (s *spawner) Update(f *Frame) {
	if s.spawned == nil {
		s.spawned = NewGameObject("spawned")
		f.Scene.AddEntity(s.spawned)
	}
}

func TestObjectsAddedDuringUpdateWaitForNextFrame(t *testing.T) {
	scene := NewScene("test")
	obj := NewGameObject("spawner")
	sp, _ := AddComponent(obj, &spawner{})
	scene.AddEntity(obj)

	scene.Update(0.016, 0.016)
	require.NotNil(t, sp.spawned)
	assert.Equal(t, Unborn, sp.spawned.State())

	scene.Update(0.016, 0.032)
	assert.Equal(t, Started, sp.spawned.State())
}

type reader struct {
	throttle float64
	frame    uint64
	elapsed  float64
}

func (r *reader) Update(f *Frame) {
	r.throttle = f.Input.Axis(input.ActionThrottle)
	r.frame = f.Number
	r.elapsed = f.ElapsedTime
}

func TestFrameCarriesInputAndTime(t *testing.T) {
	scene := NewScene("test")
	obj := NewGameObject("reader")
	r, _ := AddComponent(obj, &reader{})
	scene.AddEntity(obj)

	snap := input.NewSnapshot()
	snap.SetAxis(input.ActionThrottle, 0.5)
	scene.SetInput(snap)
	scene.Update(0.016, 1.5)

	assert.Equal(t, 0.5, r.throttle)
	assert.Equal(t, uint64(1), r.frame)
	assert.Equal(t, 1.5, r.elapsed)
}

func TestSystemsRunAfterObjects(t *testing.T) {
	var journal []string
	scene := NewScene("test")
	obj := NewGameObject("obj")
	AddComponent(obj, newRecorder("r", &journal))
	scene.AddEntity(obj)
	scene.AddSystem(SystemFunc(func(*Scene, float64) { journal = append(journal, "system") }))

	scene.Update(0.016, 0.016)

	assert.Less(t, index(journal, "r.Update"), index(journal, "system"))
}

func TestPhysicsBoundTransformFollowsBody(t *testing.T) {
	world := physics.NewWorld()
	scene := NewScene("test", WithPhysics(world))
	ball := NewGameObject("ball")
	ball.SetPosition(mgl64.Vec3{0, 10, 0})
	_, err := world.AddToEntity(ball, physics.BodySpec{Shape: physics.Sphere{Radius: 0.5}, Mass: 1})
	require.NoError(t, err)
	scene.AddEntity(ball)

	for i := 0; i < 30; i++ {
		world.Step(1.0 / 60)
		scene.Update(1.0/60, float64(i)/60)
	}

	body := world.Body(ball.Body())
	require.NotNil(t, body)
	assert.Less(t, ball.Position().Y(), 10.0)
	assert.True(t, body.Position().ApproxEqual(ball.Position()))
	assert.True(t, body.Orientation().ApproxEqual(ball.Transform().Rotation))

	// Gameplay writes are overwritten by the next sync
	ball.SetPosition(mgl64.Vec3{100, 100, 100})
	scene.Update(1.0/60, 0.5)
	assert.True(t, body.Position().ApproxEqual(ball.Position()))
}

func TestDisabledBoundObjectFollowsBody(t *testing.T) {
	var journal []string
	world := physics.NewWorld()
	scene := NewScene("test", WithPhysics(world))
	parent := NewGameObject("trailer")
	ball := NewGameObject("ball")
	ball.SetPosition(mgl64.Vec3{0, 10, 0})
	_, err := world.AddToEntity(ball, physics.BodySpec{Shape: physics.Sphere{Radius: 0.5}, Mass: 1})
	require.NoError(t, err)
	AddComponent(ball, newRecorder("r", &journal))
	mesh := &fakeMesh{}
	ball.SetMesh(mesh)
	require.True(t, ball.SetParent(parent))
	scene.AddEntity(parent)
	scene.Update(1.0/60, 0)

	ball.SetEnabled(false)
	for i := 0; i < 30; i++ {
		world.Step(1.0 / 60)
		scene.Update(1.0/60, float64(i)/60)
	}

	body := world.Body(ball.Body())
	require.NotNil(t, body)
	assert.Less(t, body.Position().Y(), 10.0)
	assert.True(t, body.Position().ApproxEqual(ball.Position()))
	assert.True(t, body.Position().ApproxEqual(mesh.last.Position))
	assert.Equal(t, 1, count(journal, "r.Update"), "hooks stay suspended")

	// A disabled parent suspends hooks but not the pose either
	ball.SetEnabled(true)
	parent.SetEnabled(false)
	world.Step(1.0 / 60)
	scene.Update(1.0/60, 0.6)
	assert.True(t, body.Position().ApproxEqual(ball.Position()))
	assert.True(t, body.Position().ApproxEqual(mesh.last.Position))
	assert.Equal(t, 1, count(journal, "r.Update"))

	found := scene.FindWithinRadius(body.Position(), 0.1)
	require.Len(t, found, 1)
	assert.Same(t, ball, found[0])
}

func TestTeleportMovesBody(t *testing.T) {
	world := physics.NewWorld()
	obj := NewGameObject("crate")
	_, err := world.AddToEntity(obj, physics.BodySpec{Shape: physics.Box{HalfExtents: mgl64.Vec3{1, 1, 1}}, Mass: 2})
	require.NoError(t, err)

	obj.Teleport(geom.At(3, 4, 5))

	assert.Equal(t, mgl64.Vec3{3, 4, 5}, world.Body(obj.Body()).Position())
}

func TestDestroyReleasesOwnedBodyOnly(t *testing.T) {
	world := physics.NewWorld()
	owner := NewGameObject("owner")
	_, err := world.AddToEntity(owner, physics.BodySpec{Shape: physics.Sphere{Radius: 1}, Mass: 1})
	require.NoError(t, err)

	shared, err := world.CreateSphere(1, physics.BodySpec{Mass: 1})
	require.NoError(t, err)
	follower := NewGameObject("follower")
	require.True(t, follower.AttachBody(world, shared))
	assert.False(t, follower.OwnsBody())

	ownedHandle := owner.Body()
	owner.Destroy()
	follower.Destroy()

	assert.Nil(t, world.Body(ownedHandle))
	assert.NotNil(t, world.Body(shared))
}

func TestAttachBodyRefusesSecondBody(t *testing.T) {
	world := physics.NewWorld()
	a, _ := world.CreateSphere(1, physics.BodySpec{Mass: 1})
	b, _ := world.CreateSphere(1, physics.BodySpec{Mass: 1})
	obj := NewGameObject("obj")

	assert.True(t, obj.AttachBody(world, a))
	assert.False(t, obj.AttachBody(world, b))
	assert.Equal(t, a, obj.Body())
}

func TestSyncForgetsRemovedBody(t *testing.T) {
	world := physics.NewWorld()
	obj := NewGameObject("obj")
	h, _ := world.AddToEntity(obj, physics.BodySpec{Shape: physics.Sphere{Radius: 1}, Mass: 1})

	world.RemoveBody(h)
	obj.SyncFromBody()

	assert.True(t, obj.Body().IsNil())
}
