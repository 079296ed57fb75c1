package systems

import (
	"math"

	"ebiten-rally/components"
	"ebiten-rally/ecs"
)

// CameraSystem moves every Camera towards its target
type CameraSystem struct {
}

// NewCameraSystem creates a new camera system
func NewCameraSystem() *CameraSystem {
	return &CameraSystem{}
}

// Update updates the camera position to follow the target entity
func (s *CameraSystem) Update(scene *ecs.Scene, dt float64) {
	for _, camera := range ecs.FindObjectsOfType[*components.Camera](scene) {
		// Only update if the camera has a target
		if camera.Target == 0 {
			continue
		}
		target := scene.Get(camera.Target)
		if target == nil {
			continue
		}

		old := camera.Position
		goal := target.Position().Add(camera.Offset)
		if camera.Smoothing <= 0 {
			camera.Position = goal
		} else {
			// Frame-rate independent exponential approach
			k := 1 - math.Exp(-camera.Smoothing*dt)
			camera.Position = old.Add(goal.Sub(old).Mul(k))
		}

		// If the camera position changed, emit an event
		if !old.ApproxEqual(camera.Position) {
			var cameraID ecs.EntityID
			if e := camera.Entity(); e != nil {
				cameraID = e.ID()
			}
			scene.EmitEvent(CameraUpdateEvent{
				CameraID: cameraID,
				Position: camera.Position,
				TargetID: camera.Target,
			})
		}
	}
}
