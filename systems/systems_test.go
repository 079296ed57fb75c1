package systems

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ebiten-rally/components"
	"ebiten-rally/ecs"
	"ebiten-rally/physics"
)

func TestCameraFollowsTarget(t *testing.T) {
	scene := ecs.NewScene("test")
	car := ecs.NewGameObject("car")
	car.SetPosition(mgl64.Vec3{10, 0, -5})
	scene.AddEntity(car)

	camObj := ecs.NewGameObject("camera")
	cam, _ := ecs.AddComponent(camObj, components.NewCamera(car.ID()))
	cam.Smoothing = 0
	scene.AddEntity(camObj)

	moves := 0
	scene.Events().Subscribe(EventCameraUpdate, func(ecs.Event) { moves++ })
	scene.AddSystem(NewCameraSystem())

	scene.Update(0.016, 0.016)
	assert.Equal(t, mgl64.Vec3{10, 0, -5}, cam.Position)
	assert.Equal(t, 1, moves)

	scene.Update(0.016, 0.032)
	assert.Equal(t, 1, moves, "no event when the camera holds still")
}

func TestCameraSmoothingApproaches(t *testing.T) {
	scene := ecs.NewScene("test")
	car := ecs.NewGameObject("car")
	car.SetPosition(mgl64.Vec3{10, 0, 0})
	scene.AddEntity(car)
	camObj := ecs.NewGameObject("camera")
	cam, _ := ecs.AddComponent(camObj, components.NewCamera(car.ID()))
	scene.AddEntity(camObj)
	scene.AddSystem(NewCameraSystem())

	scene.Update(0.1, 0.1)
	first := cam.Position.X()
	assert.InDelta(t, 10*(1-math.Exp(-0.5)), first, 1e-9)

	for i := 0; i < 100; i++ {
		scene.Update(0.1, 0.1)
	}
	assert.InDelta(t, 10, cam.Position.X(), 1e-3)
}

func TestKillPlaneDestroysFallenObjects(t *testing.T) {
	scene := ecs.NewScene("test")
	crate := ecs.NewGameObject("crate")
	crate.SetPosition(mgl64.Vec3{0, -60, 0})
	scene.AddEntity(crate)
	safe := ecs.NewGameObject("safe")
	scene.AddEntity(safe)

	var fell []FellOutEvent
	scene.Events().Subscribe(EventFellOut, func(e ecs.Event) { fell = append(fell, e.(FellOutEvent)) })
	scene.AddSystem(NewKillPlaneSystem(-50, mgl64.Vec3{}))

	scene.Update(0.016, 0.016)

	assert.True(t, crate.Destroyed())
	assert.False(t, safe.Destroyed())
	require.Len(t, fell, 1)
	assert.False(t, fell[0].Respawned)
}

func TestKillPlaneRespawnsPlayerCar(t *testing.T) {
	world := physics.NewWorld()
	scene := ecs.NewScene("test", ecs.WithPhysics(world))
	car := ecs.NewGameObject("car")
	car.SetPosition(mgl64.Vec3{0, -60, 0})
	chassis, err := world.AddToEntity(car, physics.BodySpec{Shape: physics.Box{HalfExtents: mgl64.Vec3{1, 0.25, 2}}, Mass: 5})
	require.NoError(t, err)
	rig, err := world.CreateVehicle(physics.VehicleSpec{Chassis: chassis, Wheels: []physics.WheelSpec{
		{Offset: mgl64.Vec3{0, -0.25, -1}, Axis: mgl64.Vec3{-1, 0, 0}, Radius: 0.5, HalfWidth: 0.1, Mass: 1},
	}})
	require.NoError(t, err)
	ecs.AddComponent(car, components.NewVehicle(world, rig))
	scene.AddEntity(car, "player")
	scene.AddSystem(NewKillPlaneSystem(-50, mgl64.Vec3{0, 2, 0}))

	scene.Update(0.016, 0.016)

	assert.False(t, car.Destroyed())
	assert.InDelta(t, 3, car.Position().Y(), 1e-9, "spawn height plus reset lift")
	assert.InDelta(t, 3, world.Body(chassis).Position().Y(), 1e-9)
}

func TestImpactDamagesHealth(t *testing.T) {
	world := physics.NewWorld()
	scene := ecs.NewScene("test", ecs.WithPhysics(world))
	a := ecs.NewGameObject("a")
	ha, _ := ecs.AddComponent(a, components.NewHealth(100))
	_, err := world.AddToEntity(a, physics.BodySpec{Shape: physics.Sphere{Radius: 1}, Mass: 1, Velocity: mgl64.Vec3{-10, 0, 0}})
	require.NoError(t, err)
	b := ecs.NewGameObject("b")
	hb, _ := ecs.AddComponent(b, components.NewHealth(100))
	_, err = world.AddToEntity(b, physics.BodySpec{Shape: physics.Sphere{Radius: 1}, Mass: 1})
	require.NoError(t, err)
	scene.AddEntity(a)
	scene.AddEntity(b)

	log := NewMessageLog(10)
	scene.AddSystem(NewImpactSystem(2, 1))
	scene.AddSystem(NewEventLogSystem(log))
	scene.Update(0.016, 0.016)

	scene.EmitEvent(ecs.CollisionEvent{A: a, B: b, BodyA: a.Body(), BodyB: b.Body(), Normal: mgl64.Vec3{1, 0, 0}})

	assert.Equal(t, 92, ha.Current)
	assert.Equal(t, 92, hb.Current)
	require.Len(t, log.Messages, 1)
	assert.Equal(t, MessageTypeImpact, log.Messages[0].Type)
	assert.Contains(t, log.Messages[0].Text, "a hit b")
}

func TestSoftContactIsHarmless(t *testing.T) {
	world := physics.NewWorld()
	scene := ecs.NewScene("test", ecs.WithPhysics(world))
	a := ecs.NewGameObject("a")
	ha, _ := ecs.AddComponent(a, components.NewHealth(100))
	_, err := world.AddToEntity(a, physics.BodySpec{Shape: physics.Sphere{Radius: 1}, Mass: 1, Velocity: mgl64.Vec3{0, -1, 0}})
	require.NoError(t, err)
	ground, _ := world.CreatePlane(physics.BodySpec{})
	scene.AddEntity(a)
	impacts := NewImpactSystem(2, 1)
	scene.AddSystem(impacts)
	scene.Update(0.016, 0.016)

	scene.EmitEvent(ecs.CollisionEvent{A: a, BodyA: a.Body(), BodyB: ground, Normal: mgl64.Vec3{0, 1, 0}})
	assert.Equal(t, 100, ha.Current)

	impacts.Close()
	world.SetVelocity(a.Body(), mgl64.Vec3{0, -50, 0})
	scene.EmitEvent(ecs.CollisionEvent{A: a, BodyA: a.Body(), BodyB: ground, Normal: mgl64.Vec3{0, 1, 0}})
	assert.Equal(t, 100, ha.Current, "closed systems stop listening")
}

func TestEventLogRecordsRaceEvents(t *testing.T) {
	scene := ecs.NewScene("test")
	log := NewMessageLog(10)
	scene.AddSystem(NewEventLogSystem(log))
	scene.Update(0.016, 0.016)

	scene.EmitEvent(components.DeathEvent{Name: "crate"})
	scene.EmitEvent(components.ExpiredEvent{Name: "smoke"})
	scene.EmitEvent(FellOutEvent{Name: "car", Respawned: true})
	scene.EmitEvent(components.LapEvent{Name: "car", Lap: 1, Time: 41.5})
	scene.EmitEvent(components.LapEvent{Name: "car", Lap: 2, Time: 40, Best: 40, Finished: true})

	recent := log.RecentMessages(5)
	require.Len(t, recent, 5)
	assert.Equal(t, "car finished! Best lap 40.00s", recent[0].Text)
	assert.Equal(t, "car lap 1: 41.50s", recent[1].Text)
	assert.Equal(t, "car fell off and was put back", recent[2].Text)
	assert.Equal(t, MessageTypeSystem, recent[3].Type)
	assert.Equal(t, "crate was wrecked!", recent[4].Text)
}

func TestMessageLogTruncates(t *testing.T) {
	log := NewMessageLog(2)
	log.Add("one")
	log.Add("two")
	log.AddAlert("three")

	require.Len(t, log.Messages, 2)
	assert.Equal(t, "two", log.Messages[0].Text)
	assert.Equal(t, MessageTypeAlert, log.RecentMessages(1)[0].Type)
	assert.Len(t, log.RecentMessages(10), 2)

	log.Clear()
	assert.Empty(t, log.Messages)
}

func TestImpactUsesMeasuredSpeed(t *testing.T) {
	scene := ecs.NewScene("test")
	a := ecs.NewGameObject("crate")
	health, _ := ecs.AddComponent(a, components.NewHealth(50))
	scene.AddEntity(a)
	scene.AddSystem(NewImpactSystem(2, 2))
	scene.Update(0.016, 0.016)

	// No physics world: the speed carried by the event is all there is
	scene.EmitEvent(ecs.CollisionEvent{A: a, Normal: mgl64.Vec3{0, 1, 0}, Speed: 7})
	assert.Equal(t, 40, health.Current)

	scene.EmitEvent(ecs.CollisionEvent{A: a, Normal: mgl64.Vec3{0, 1, 0}})
	assert.Equal(t, 40, health.Current, "no speed and no bodies means no damage")
}
