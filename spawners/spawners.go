package spawners

import (
	"fmt"
	"sort"
	"strings"

	"github.com/go-gl/mathgl/mgl64"

	"ebiten-rally/components"
	"ebiten-rally/data"
	"ebiten-rally/ecs"
	"ebiten-rally/geom"
	"ebiten-rally/physics"
)

// MeshFactory creates render handles for spawned objects
type MeshFactory interface {
	Box(halfExtents mgl64.Vec3, tint string) ecs.Mesh
	Sphere(radius float64, tint string) ecs.Mesh
	Cylinder(radius, halfHeight float64, tint string) ecs.Mesh
	Plane(tint string) ecs.Mesh
}

// EntitySpawner manages the creation of game objects from templates
type EntitySpawner struct {
	scene           *ecs.Scene
	world           *physics.World
	templateManager *data.EntityTemplateManager
	meshes          MeshFactory  // Nil when running headless
	logMessage      func(string) // Function for logging messages
}

// NewEntitySpawner creates a new entity spawner. Bodies go into the scene's physics world.
func NewEntitySpawner(scene *ecs.Scene, templateManager *data.EntityTemplateManager, meshes MeshFactory, logFunc func(string)) *EntitySpawner {
	if logFunc == nil {
		logFunc = func(string) {}
	}
	return &EntitySpawner{
		scene:           scene,
		world:           scene.Physics(),
		templateManager: templateManager,
		meshes:          meshes,
		logMessage:      logFunc,
	}
}

// Scene returns the scene objects are spawned into
func (s *EntitySpawner) Scene() *ecs.Scene { return s.scene }

// CreateGround creates the static ground plane
func (s *EntitySpawner) CreateGround() (*ecs.GameObject, error) {
	if _, ok := s.templateManager.GetTemplate("ground"); ok {
		return s.CreateProp("ground", geom.Identity())
	}

	ground := ecs.NewGameObject("Ground")
	if s.world != nil {
		if _, err := s.world.AddToEntity(ground, physics.BodySpec{Shape: physics.Plane{}}); err != nil {
			return nil, err
		}
	}
	if s.meshes != nil {
		ground.SetMesh(s.meshes.Plane("#2c3a2c"))
	}
	s.scene.AddEntity(ground, "ground", "static")
	return ground, nil
}

// CreateProp creates a prop from its template at the given transform
func (s *EntitySpawner) CreateProp(templateID string, at geom.Transform) (*ecs.GameObject, error) {
	template, exists := s.templateManager.GetTemplate(templateID)
	if !exists {
		return nil, fmt.Errorf("no prop template found with ID '%s'", templateID)
	}

	obj := ecs.NewGameObject(template.Name)
	obj.SetTransform(at)
	for _, tag := range template.Tags {
		obj.AddTag(tag)
	}
	obj.CustomData["template"] = template.ID

	if template.Body != nil && s.world != nil {
		spec, err := template.Body.Spec()
		if err != nil {
			return nil, fmt.Errorf("prop '%s': %w", templateID, err)
		}
		if _, err := s.world.AddToEntity(obj, spec); err != nil {
			return nil, fmt.Errorf("prop '%s': %w", templateID, err)
		}
	}
	if template.Body != nil {
		obj.SetMesh(s.meshFor(template.Body, template.Color))
	}

	if err := attachComponents(obj, template.Components); err != nil {
		obj.Destroy()
		return nil, fmt.Errorf("prop '%s': %w", templateID, err)
	}

	s.scene.AddEntity(obj)
	return obj, nil
}

func (s *EntitySpawner) meshFor(body *data.BodyTemplate, tint string) ecs.Mesh {
	if s.meshes == nil {
		return nil
	}
	switch strings.ToLower(body.Shape) {
	case "box":
		return s.meshes.Box(mgl64.Vec3(body.HalfExtents), tint)
	case "sphere":
		return s.meshes.Sphere(body.Radius, tint)
	case "cylinder":
		return s.meshes.Cylinder(body.Radius, body.HalfHeight, tint)
	case "plane":
		return s.meshes.Plane(tint)
	}
	return nil
}

// CreatePlayerCar creates a car driven by keyboard input and tags it "player"
func (s *EntitySpawner) CreatePlayerCar(templateID string, at geom.Transform) (*ecs.GameObject, error) {
	car, template, err := s.createCar(templateID, at)
	if err != nil {
		return nil, err
	}
	drive := components.NewDrive(template.EngineForce)
	if template.BrakeForce > 0 {
		drive.BrakeForce = template.BrakeForce
	}
	drive.DriveWheels = append([]int(nil), template.DriveWheels...)
	drive.SteerWheels = append([]int(nil), template.SteerWheels...)
	ecs.AddComponent(car, drive)

	s.scene.AddEntity(car, "player")
	s.logMessage(fmt.Sprintf("%s is ready", car.Name()))
	return car, nil
}

// CreateAICar creates a car that follows waypoints on its own
func (s *EntitySpawner) CreateAICar(templateID string, at geom.Transform, waypoints ...mgl64.Vec3) (*ecs.GameObject, error) {
	car, template, err := s.createCar(templateID, at)
	if err != nil {
		return nil, err
	}
	auto := components.NewAutoDrive(template.EngineForce*0.75, waypoints...)
	auto.DriveWheels = append([]int(nil), template.DriveWheels...)
	auto.SteerWheels = append([]int(nil), template.SteerWheels...)
	ecs.AddComponent(car, auto)

	s.scene.AddEntity(car, "ai")
	return car, nil
}

// createCar builds the chassis object, its rig and one child object per wheel.
// The car is not yet in the scene.
func (s *EntitySpawner) createCar(templateID string, at geom.Transform) (*ecs.GameObject, *data.VehicleTemplate, error) {
	template, exists := s.templateManager.GetVehicleTemplate(templateID)
	if !exists {
		return nil, nil, fmt.Errorf("no vehicle template found with ID '%s'", templateID)
	}
	if s.world == nil {
		return nil, nil, fmt.Errorf("vehicle '%s' needs a physics world", templateID)
	}

	car := ecs.NewGameObject(template.Name)
	car.SetTransform(at)
	for _, tag := range template.Tags {
		car.AddTag(tag)
	}
	car.CustomData["template"] = template.ID

	spec, err := template.Chassis.Spec()
	if err != nil {
		return nil, nil, fmt.Errorf("vehicle '%s': %w", templateID, err)
	}
	chassis, err := s.world.AddToEntity(car, spec)
	if err != nil {
		return nil, nil, fmt.Errorf("vehicle '%s': %w", templateID, err)
	}
	rig, err := s.world.CreateVehicle(template.Spec(chassis))
	if err != nil {
		car.Destroy()
		return nil, nil, fmt.Errorf("vehicle '%s': %w", templateID, err)
	}
	car.SetMesh(s.meshFor(&template.Chassis, template.Color))

	vehicle := components.NewVehicle(s.world, rig)
	for i := 0; i < rig.WheelCount(); i++ {
		wt := template.Wheels[i]
		wheel := ecs.NewGameObject(fmt.Sprintf("%s wheel %d", template.Name, i))
		wheel.AddTag("wheel")
		wheel.AttachBody(s.world, rig.Wheel(i).Body())
		if s.meshes != nil {
			wheel.SetMesh(s.meshes.Cylinder(wt.Radius, wt.HalfWidth, template.WheelColor))
		}
		wheel.SetParent(car)
		vehicle.Wheels = append(vehicle.Wheels, wheel)
	}
	ecs.AddComponent(car, vehicle)

	if err := attachComponents(car, template.Components); err != nil {
		car.Destroy()
		return nil, nil, fmt.Errorf("vehicle '%s': %w", templateID, err)
	}
	return car, template, nil
}

// CreateCamera creates the camera following target
func (s *EntitySpawner) CreateCamera(target *ecs.GameObject) *ecs.GameObject {
	camera := ecs.NewGameObject("Camera")
	cam := components.NewCamera(0)
	if target != nil {
		cam.Target = target.ID()
		cam.Position = target.Position()
	}
	ecs.AddComponent(camera, cam)
	s.scene.AddEntity(camera, "camera")
	return camera
}

// attachComponents adds template components in name order so failures are reproducible
func attachComponents(obj *ecs.GameObject, specs map[string]map[string]interface{}) error {
	names := make([]string, 0, len(specs))
	for name := range specs {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if _, err := components.AttachByName(obj, name, specs[name]); err != nil {
			return err
		}
	}
	return nil
}
