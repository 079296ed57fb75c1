package spawners

import (
	"math/rand"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ebiten-rally/components"
	"ebiten-rally/data"
	"ebiten-rally/ecs"
	"ebiten-rally/geom"
	"ebiten-rally/physics"
	"ebiten-rally/view"
)

func newSpawner(t *testing.T) (*EntitySpawner, *view.Registry, *[]string) {
	t.Helper()
	templates := data.NewEntityTemplateManager()
	require.NoError(t, templates.LoadBuiltin())
	scene := ecs.NewScene("test", ecs.WithPhysics(physics.NewWorld()))
	sprites := view.NewRegistry()
	var messages []string
	s := NewEntitySpawner(scene, templates, sprites, func(msg string) { messages = append(messages, msg) })
	return s, sprites, &messages
}

func TestCreateGroundAndProps(t *testing.T) {
	s, sprites, _ := newSpawner(t)
	ground, err := s.CreateGround()
	require.NoError(t, err)
	assert.True(t, ground.HasTag("ground"))

	crate, err := s.CreateProp("crate", geom.At(0, 3, 0))
	require.NoError(t, err)
	assert.Equal(t, 2, s.world.BodyCount())
	assert.True(t, crate.OwnsBody())
	assert.Equal(t, "crate", crate.CustomData["template"])

	health, ok := ecs.GetComponent[*components.Health](crate)
	require.True(t, ok, "template components are attached")
	assert.Equal(t, 30, health.Current)

	assert.Equal(t, 2, sprites.Len())
	assert.Len(t, s.Scene().FindGameObjectsWithTag("breakable"), 1)

	_, err = s.CreateProp("piano", geom.Identity())
	assert.Error(t, err)
}

func TestCreatePlayerCar(t *testing.T) {
	s, sprites, messages := newSpawner(t)
	_, err := s.CreateGround()
	require.NoError(t, err)

	car, err := s.CreatePlayerCar("rally", geom.At(0, 0.75, 0))
	require.NoError(t, err)
	assert.True(t, car.HasTag("player"))
	assert.Len(t, car.Children(), 4)
	assert.Equal(t, 6, s.world.BodyCount(), "ground, chassis and four wheels")
	assert.Equal(t, 6, sprites.Len())
	assert.NotEmpty(t, *messages)

	vehicle, ok := ecs.GetComponent[*components.Vehicle](car)
	require.True(t, ok)
	require.Len(t, vehicle.Wheels, 4)
	for _, wheel := range vehicle.Wheels {
		assert.True(t, s.Scene().Contains(wheel), "wheels join the scene with the car")
		assert.False(t, wheel.OwnsBody())
	}
	drive, ok := ecs.GetComponent[*components.Drive](car)
	require.True(t, ok)
	assert.Equal(t, 20.0, drive.MaxForce)
	assert.Equal(t, 15.0, drive.BrakeForce)

	// Wheels follow their bodies once the scene runs
	s.world.Step(1.0 / 60)
	s.Scene().Update(1.0/60, 1.0/60)
	wheelBody := s.world.Body(vehicle.Wheels[0].Body())
	assert.Equal(t, wheelBody.Position(), vehicle.Wheels[0].Position())

	car.Destroy()
	assert.Equal(t, 1, s.world.BodyCount(), "only the ground survives")
	assert.True(t, vehicle.Rig.Removed())
	for _, wheel := range vehicle.Wheels {
		assert.True(t, wheel.Destroyed())
	}
	assert.Len(t, sprites.Live(), 1)
}

func TestCreateAICarAndCamera(t *testing.T) {
	s, _, _ := newSpawner(t)
	car, err := s.CreateAICar("rally", geom.At(0, 1, 0), mgl64.Vec3{0, 0, -20}, mgl64.Vec3{20, 0, -20})
	require.NoError(t, err)
	assert.True(t, car.HasTag("ai"))
	auto, ok := ecs.GetComponent[*components.AutoDrive](car)
	require.True(t, ok)
	assert.Len(t, auto.Waypoints, 2)
	assert.Equal(t, 15.0, auto.Force)

	camera := s.CreateCamera(car)
	cam, ok := ecs.GetComponent[*components.Camera](camera)
	require.True(t, ok)
	assert.Equal(t, car.ID(), cam.Target)
	assert.Equal(t, car.Position(), cam.Position)

	_, err = s.CreatePlayerCar("tank", geom.Identity())
	assert.Error(t, err)
}

func TestCarNeedsPhysics(t *testing.T) {
	templates := data.NewEntityTemplateManager()
	require.NoError(t, templates.LoadBuiltin())
	s := NewEntitySpawner(ecs.NewScene("bare"), templates, nil, nil)
	_, err := s.CreatePlayerCar("rally", geom.Identity())
	assert.Error(t, err)

	// Props still spawn, just without a body or mesh
	ball, err := s.CreateProp("ball", geom.At(1, 2, 3))
	require.NoError(t, err)
	assert.True(t, ball.Body().IsNil())
	assert.Nil(t, ball.Mesh())
}

func TestPropTable(t *testing.T) {
	table := NewPropTable([]PropTableEntry{{TemplateID: "crate", Weight: 3}, {TemplateID: "ball", Weight: 1}})
	rng := rand.New(rand.NewSource(7))
	counts := map[string]int{}
	for i := 0; i < 4000; i++ {
		counts[table.Pick(rng)]++
	}
	assert.InDelta(t, 3000, counts["crate"], 200)
	assert.InDelta(t, 1000, counts["ball"], 200)

	assert.Empty(t, NewPropTable(nil).Pick(rng))
}
