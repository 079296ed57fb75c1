package ecs

// System defines an interface for scene-wide logic that runs after every object update
type System interface {
	// Update is called each frame to process entities
	Update(scene *Scene, dt float64)
}

// SystemFunc adapts a function to a System
type SystemFunc func(scene *Scene, dt float64)

// Update implements System
func (f SystemFunc) Update(scene *Scene, dt float64) { f(scene, dt) }
