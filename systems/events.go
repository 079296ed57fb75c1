package systems

import (
	"github.com/go-gl/mathgl/mgl64"

	"ebiten-rally/ecs"
)

// Event type constants
const (
	EventCameraUpdate ecs.EventType = "camera_update"
	EventFellOut      ecs.EventType = "fell_out"
	EventImpact       ecs.EventType = "impact"
)

// CameraUpdateEvent is emitted when a camera moves
type CameraUpdateEvent struct {
	CameraID ecs.EntityID
	Position mgl64.Vec3
	TargetID ecs.EntityID
}

// Type returns the event type
func (e CameraUpdateEvent) Type() ecs.EventType {
	return EventCameraUpdate
}

// FellOutEvent is emitted when an object drops below the kill plane
type FellOutEvent struct {
	EntityID  ecs.EntityID
	Name      string
	Position  mgl64.Vec3
	Respawned bool // True if the object was put back instead of destroyed
}

// Type returns the event type
func (e FellOutEvent) Type() ecs.EventType {
	return EventFellOut
}

// ImpactEvent is emitted when a collision is hard enough to cause damage
type ImpactEvent struct {
	EntityID1 ecs.EntityID // First entity involved in the impact
	EntityID2 ecs.EntityID // Second entity, zero for static scenery
	Speed     float64      // Closing speed along the contact normal
	Damage    int
}

// Type returns the event type
func (e ImpactEvent) Type() ecs.EventType {
	return EventImpact
}
