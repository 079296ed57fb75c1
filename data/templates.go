package data

import (
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path"
	"strings"

	"github.com/go-gl/mathgl/mgl64"

	"ebiten-rally/physics"
)

//go:embed templates
var builtin embed.FS

// BodyTemplate describes the rigid body behind an entity
type BodyTemplate struct {
	Shape          string     `json:"shape"`       // "box", "sphere", "cylinder" or "plane"
	HalfExtents    [3]float64 `json:"halfExtents"` // Boxes only
	Radius         float64    `json:"radius"`      // Spheres and cylinders
	HalfHeight     float64    `json:"halfHeight"`  // Cylinders only
	Mass           float64    `json:"mass"`        // 0 for static bodies
	Friction       *float64   `json:"friction"`    // Nil keeps the world default
	Restitution    float64    `json:"restitution"`
	LinearDamping  float64    `json:"linearDamping"`
	AngularDamping float64    `json:"angularDamping"`
}

// ShapeValue builds the physics shape
func (b BodyTemplate) ShapeValue() (physics.Shape, error) {
	switch strings.ToLower(b.Shape) {
	case "box":
		return physics.Box{HalfExtents: mgl64.Vec3(b.HalfExtents)}, nil
	case "sphere":
		return physics.Sphere{Radius: b.Radius}, nil
	case "cylinder":
		return physics.Cylinder{Radius: b.Radius, HalfHeight: b.HalfHeight}, nil
	case "plane":
		return physics.Plane{}, nil
	}
	return nil, fmt.Errorf("unknown shape %q", b.Shape)
}

// Spec converts the template into a body spec at the origin
func (b BodyTemplate) Spec() (physics.BodySpec, error) {
	shape, err := b.ShapeValue()
	if err != nil {
		return physics.BodySpec{}, err
	}
	spec := physics.BodySpec{
		Shape:          shape,
		Mass:           b.Mass,
		LinearDamping:  b.LinearDamping,
		AngularDamping: b.AngularDamping,
	}
	if b.Friction != nil || b.Restitution != 0 {
		m := physics.DefaultSettings().DefaultMaterial
		if b.Friction != nil {
			m.Friction = *b.Friction
		}
		m.Restitution = b.Restitution
		spec.Material = &m
	}
	return spec, nil
}

// EntityTemplate represents a template for creating props (crates, balls, ground)
type EntityTemplate struct {
	// Basic info
	ID          string `json:"id"`          // Unique identifier
	Name        string `json:"name"`        // Display name
	Description string `json:"description"` // Description text

	// Visual appearance
	Color string `json:"color"` // Color in hex format (e.g. "#00FF00")

	Body *BodyTemplate `json:"body"` // Nil for objects without physics

	// Behavior
	Tags        []string                          `json:"tags"`        // Tags for categorization (e.g. "prop", "hazard")
	Components  map[string]map[string]interface{} `json:"components"`  // Component name to property overrides
	SpawnWeight int                               `json:"spawnWeight"` // Relative chance of spawning (higher = more common)
}

// WheelTemplate places one wheel on a vehicle
type WheelTemplate struct {
	Offset         [3]float64 `json:"offset"`
	Radius         float64    `json:"radius"`
	HalfWidth      float64    `json:"halfWidth"`
	Mass           float64    `json:"mass"`
	Friction       *float64   `json:"friction"`
	AngularDamping float64    `json:"angularDamping"`
}

// VehicleTemplate defines a car: chassis body, wheels and drive layout
type VehicleTemplate struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Color       string          `json:"color"`
	WheelColor  string          `json:"wheelColor"`
	Tags        []string        `json:"tags"`
	Chassis     BodyTemplate    `json:"chassis"`
	Axle        [3]float64      `json:"axle"` // Wheel axle in chassis space
	Wheels      []WheelTemplate `json:"wheels"`
	MaxSteer    float64         `json:"maxSteer"` // Radians
	EngineForce float64         `json:"engineForce"`
	BrakeForce  float64         `json:"brakeForce"`
	DriveWheels []int           `json:"driveWheels"`
	SteerWheels []int           `json:"steerWheels"`

	Components map[string]map[string]interface{} `json:"components"`
}

// Spec converts the template into a vehicle spec for the given chassis
func (v *VehicleTemplate) Spec(chassis physics.BodyHandle) physics.VehicleSpec {
	spec := physics.VehicleSpec{Chassis: chassis, MaxSteer: v.MaxSteer}
	for _, w := range v.Wheels {
		ws := physics.WheelSpec{
			Offset:         mgl64.Vec3(w.Offset),
			Axis:           mgl64.Vec3(v.Axle),
			Radius:         w.Radius,
			HalfWidth:      w.HalfWidth,
			Mass:           w.Mass,
			AngularDamping: w.AngularDamping,
		}
		if w.Friction != nil {
			m := physics.DefaultSettings().DefaultMaterial
			m.Friction = *w.Friction
			ws.Material = &m
		}
		spec.Wheels = append(spec.Wheels, ws)
	}
	return spec
}

// EntityTemplateManager manages all entity templates
type EntityTemplateManager struct {
	Templates        map[string]*EntityTemplate
	VehicleTemplates map[string]*VehicleTemplate
}

// NewEntityTemplateManager creates a new template manager
func NewEntityTemplateManager() *EntityTemplateManager {
	return &EntityTemplateManager{
		Templates:        make(map[string]*EntityTemplate),
		VehicleTemplates: make(map[string]*VehicleTemplate),
	}
}

// LoadBuiltin loads the templates shipped with the binary
func (m *EntityTemplateManager) LoadBuiltin() error {
	sub, err := fs.Sub(builtin, "templates")
	if err != nil {
		return err
	}
	return m.LoadFS(sub)
}

// LoadTemplatesFromDirectory loads every template under dirPath. Files under a
// "vehicles" directory are vehicle templates; everything else is a prop.
func (m *EntityTemplateManager) LoadTemplatesFromDirectory(dirPath string) error {
	if _, err := os.Stat(dirPath); err != nil {
		return fmt.Errorf("failed to read template directory: %w", err)
	}
	return m.LoadFS(os.DirFS(dirPath))
}

// LoadFS loads every JSON template in fsys
func (m *EntityTemplateManager) LoadFS(fsys fs.FS) error {
	return fs.WalkDir(fsys, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || path.Ext(p) != ".json" {
			return nil
		}

		data, err := fs.ReadFile(fsys, p)
		if err != nil {
			return err
		}
		if strings.Contains(p, "vehicles/") {
			err = m.LoadVehicleTemplate(data)
		} else {
			err = m.LoadTemplate(data)
		}
		if err != nil {
			return fmt.Errorf("failed to load template from %s: %w", p, err)
		}
		return nil
	})
}

// LoadTemplate parses a single prop template
func (m *EntityTemplateManager) LoadTemplate(data []byte) error {
	var template EntityTemplate
	if err := json.Unmarshal(data, &template); err != nil {
		return err
	}

	// Validate required fields
	if err := ValidateTemplate(&template); err != nil {
		return err
	}

	// Add to templates map
	m.Templates[template.ID] = &template
	return nil
}

// LoadVehicleTemplate parses a single vehicle template
func (m *EntityTemplateManager) LoadVehicleTemplate(data []byte) error {
	var template VehicleTemplate
	if err := json.Unmarshal(data, &template); err != nil {
		return err
	}

	// Validate required fields
	if err := ValidateVehicleTemplate(&template); err != nil {
		return err
	}

	m.VehicleTemplates[template.ID] = &template
	return nil
}

// GetTemplate returns a template by ID
func (m *EntityTemplateManager) GetTemplate(id string) (*EntityTemplate, bool) {
	template, ok := m.Templates[id]
	return template, ok
}

// GetVehicleTemplate returns a vehicle template by ID
func (m *EntityTemplateManager) GetVehicleTemplate(id string) (*VehicleTemplate, bool) {
	template, ok := m.VehicleTemplates[id]
	return template, ok
}

// ValidateTemplate ensures that the prop template has all required fields
func ValidateTemplate(template *EntityTemplate) error {
	if template.ID == "" {
		return fmt.Errorf("template ID cannot be empty")
	}
	if template.Name == "" {
		template.Name = template.ID
	}
	if template.Body != nil {
		if _, err := template.Body.Spec(); err != nil {
			return fmt.Errorf("template '%s': %w", template.ID, err)
		}
	}
	return nil
}

// ValidateVehicleTemplate ensures that the vehicle template is drivable
func ValidateVehicleTemplate(template *VehicleTemplate) error {
	if template.ID == "" {
		return fmt.Errorf("vehicle template missing ID")
	}
	if template.Name == "" {
		template.Name = template.ID
	}
	if len(template.Wheels) == 0 {
		return fmt.Errorf("vehicle template '%s' has no wheels", template.ID)
	}
	if mgl64.Vec3(template.Axle).Len() == 0 {
		template.Axle = [3]float64{-1, 0, 0}
	}
	if _, err := template.Chassis.Spec(); err != nil {
		return fmt.Errorf("vehicle template '%s' chassis: %w", template.ID, err)
	}
	for _, group := range [][]int{template.DriveWheels, template.SteerWheels} {
		for _, i := range group {
			if i < 0 || i >= len(template.Wheels) {
				return fmt.Errorf("vehicle template '%s' references wheel %d of %d", template.ID, i, len(template.Wheels))
			}
		}
	}
	return nil
}
