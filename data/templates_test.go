package data

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ebiten-rally/physics"
)

func TestLoadBuiltin(t *testing.T) {
	m := NewEntityTemplateManager()
	require.NoError(t, m.LoadBuiltin())

	for _, id := range []string{"ground", "crate", "ball", "barrel", "cone"} {
		_, ok := m.GetTemplate(id)
		assert.True(t, ok, "missing prop template %s", id)
	}
	car, ok := m.GetVehicleTemplate("rally")
	require.True(t, ok)
	assert.Len(t, car.Wheels, 4)
	assert.Equal(t, []int{2, 3}, car.DriveWheels)

	crate, _ := m.GetTemplate("crate")
	spec, err := crate.Body.Spec()
	require.NoError(t, err)
	assert.Equal(t, physics.ShapeBox, spec.Shape.Kind())
	require.NotNil(t, spec.Material)
	assert.Equal(t, 0.5, spec.Material.Friction)
}

func TestVehicleSpecFromTemplate(t *testing.T) {
	m := NewEntityTemplateManager()
	require.NoError(t, m.LoadBuiltin())
	car, _ := m.GetVehicleTemplate("rally")

	w := physics.NewWorld()
	spec, err := car.Chassis.Spec()
	require.NoError(t, err)
	chassis, err := w.CreateBody(spec)
	require.NoError(t, err)

	rig, err := w.CreateVehicle(car.Spec(chassis))
	require.NoError(t, err)
	assert.Equal(t, 4, rig.WheelCount())
	assert.InDelta(t, 0.3927, rig.MaxSteer(), 1e-9)
}

func TestValidateTemplate(t *testing.T) {
	m := NewEntityTemplateManager()

	assert.Error(t, m.LoadTemplate([]byte(`{"name": "nameless"}`)))
	assert.Error(t, m.LoadTemplate([]byte(`{"id": "blob", "body": {"shape": "blob"}}`)))
	assert.Error(t, m.LoadTemplate([]byte(`not json`)))

	require.NoError(t, m.LoadTemplate([]byte(`{"id": "cone"}`)))
	cone, ok := m.GetTemplate("cone")
	require.True(t, ok)
	assert.Equal(t, "cone", cone.Name, "name defaults to the ID")
}

func TestValidateVehicleTemplate(t *testing.T) {
	wheel := WheelTemplate{Radius: 0.5, HalfWidth: 0.1, Mass: 1}
	valid := func() *VehicleTemplate {
		return &VehicleTemplate{
			ID:      "kart",
			Chassis: BodyTemplate{Shape: "box", HalfExtents: [3]float64{1, 0.2, 1}, Mass: 2},
			Wheels:  []WheelTemplate{wheel, wheel},
		}
	}

	v := valid()
	require.NoError(t, ValidateVehicleTemplate(v))
	assert.Equal(t, [3]float64{-1, 0, 0}, v.Axle, "axle defaults to -X")

	v = valid()
	v.Wheels = nil
	assert.Error(t, ValidateVehicleTemplate(v))

	v = valid()
	v.DriveWheels = []int{2}
	assert.Error(t, ValidateVehicleTemplate(v))

	v = valid()
	v.Chassis.Shape = ""
	assert.Error(t, ValidateVehicleTemplate(v))
}

func TestLoadTemplatesFromDirectory(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "vehicles"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "cone.json"),
		[]byte(`{"id": "cone", "body": {"shape": "sphere", "radius": 0.3, "mass": 0.5}}`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "vehicles", "kart.json"),
		[]byte(`{"id": "kart", "chassis": {"shape": "box", "halfExtents": [1, 0.2, 1], "mass": 2},
		"wheels": [{"offset": [0, -0.2, 0], "radius": 0.3, "halfWidth": 0.1, "mass": 1}]}`), 0o644))

	m := NewEntityTemplateManager()
	require.NoError(t, m.LoadTemplatesFromDirectory(dir))
	assert.Len(t, m.Templates, 1)
	assert.Len(t, m.VehicleTemplates, 1)

	assert.Error(t, m.LoadTemplatesFromDirectory(filepath.Join(dir, "missing")))

	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.json"), []byte(`{`), 0o644))
	assert.Error(t, NewEntityTemplateManager().LoadTemplatesFromDirectory(dir))
}
