package components

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/go-viper/mapstructure/v2"

	"ebiten-rally/ecs"
)

// componentFactories maps template component names to constructors
var componentFactories = map[string]func() ecs.Component{
	"Health":    func() ecs.Component { return &Health{} },
	"Lifetime":  func() ecs.Component { return &Lifetime{} },
	"Drive":     func() ecs.Component { return NewDrive(0) },
	"AutoDrive": func() ecs.Component { return NewAutoDrive(0) },
	"Camera":    func() ecs.Component { return NewCamera(0) },
	"LapTimer":  func() ecs.Component { return NewLapTimer(0) },
}

// NewComponentByName creates a component from its template name.
// The lookup is case-insensitive.
func NewComponentByName(name string) (ecs.Component, bool) {
	// Try exact match first
	if factory, exists := componentFactories[name]; exists {
		return factory(), true
	}

	// Try case-insensitive match
	name = strings.ToLower(name)
	for compName, factory := range componentFactories {
		if strings.ToLower(compName) == name {
			return factory(), true
		}
	}

	return nil, false
}

// AttachByName creates the named component, decodes properties into it and attaches it to obj.
// Property names match exported fields case-insensitively; unknown names are an error.
func AttachByName(obj *ecs.GameObject, name string, properties map[string]interface{}) (ecs.Component, error) {
	comp, ok := NewComponentByName(name)
	if !ok {
		return nil, fmt.Errorf("unknown component: %s", name)
	}
	if len(properties) > 0 {
		if err := decodeProperties(properties, comp); err != nil {
			return nil, fmt.Errorf("component %s: %w", name, err)
		}
	}
	if _, added := ecs.AddComponentValue(obj, comp); !added {
		return nil, fmt.Errorf("component %s not attached to %s", name, obj.Name())
	}
	return comp, nil
}

// decodeProperties writes template properties onto the component's fields
func decodeProperties(properties map[string]interface{}, comp ecs.Component) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           comp,
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		DecodeHook:       vec3Hook,
	})
	if err != nil {
		return err
	}
	return decoder.Decode(properties)
}

var vec3Type = reflect.TypeOf(mgl64.Vec3{})

// vec3Hook decodes [x, y, z] lists and {"x":, "y":, "z":} maps into mgl64.Vec3
func vec3Hook(from, to reflect.Type, data interface{}) (interface{}, error) {
	if to != vec3Type {
		return data, nil
	}
	var v mgl64.Vec3
	switch raw := data.(type) {
	case []interface{}:
		if len(raw) != 3 {
			return nil, fmt.Errorf("vector needs 3 components, got %d", len(raw))
		}
		for i, c := range raw {
			f, err := toFloat(c)
			if err != nil {
				return nil, err
			}
			v[i] = f
		}
	case map[string]interface{}:
		for i, axis := range []string{"x", "y", "z"} {
			c, ok := raw[axis]
			if !ok {
				c, ok = raw[strings.ToUpper(axis)]
			}
			if !ok {
				continue
			}
			f, err := toFloat(c)
			if err != nil {
				return nil, err
			}
			v[i] = f
		}
	default:
		return data, nil
	}
	return v, nil
}

func toFloat(c interface{}) (float64, error) {
	switch n := c.(type) {
	case float64:
		return n, nil
	case float32:
		return float64(n), nil
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	}
	return 0, fmt.Errorf("vector component %v is not a number", c)
}
