package components

import (
	"github.com/go-gl/mathgl/mgl64"

	"ebiten-rally/ecs"
)

// Camera tracks the viewport position for the renderer
type Camera struct {
	ecs.Base
	Target    ecs.EntityID // Entity the camera follows (usually the player car)
	Offset    mgl64.Vec3   // Added to the target position
	Smoothing float64      // Fraction of the remaining distance closed per second; 0 snaps
	Zoom      float64      // Pixels per world unit
	Position  mgl64.Vec3   // Current look-at point in the world
}

// NewCamera creates a camera that follows the specified target
func NewCamera(target ecs.EntityID) *Camera {
	return &Camera{
		Target:    target,
		Smoothing: 5,
		Zoom:      16,
	}
}
