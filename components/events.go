package components

import (
	"ebiten-rally/ecs"
)

// Event type constants
const (
	EventDamage  ecs.EventType = "damage"
	EventDeath   ecs.EventType = "death"
	EventExpired ecs.EventType = "expired"
	EventLap     ecs.EventType = "lap"
)

// DamageEvent is emitted when an entity's health changes
type DamageEvent struct {
	EntityID ecs.EntityID
	Amount   int // Positive for damage, negative for healing
	Health   int // Health after the change
}

// Type returns the event type
func (e DamageEvent) Type() ecs.EventType {
	return EventDamage
}

// DeathEvent is emitted when an entity's health reaches zero
type DeathEvent struct {
	EntityID ecs.EntityID
	Name     string
}

// Type returns the event type
func (e DeathEvent) Type() ecs.EventType {
	return EventDeath
}

// ExpiredEvent is emitted when a Lifetime runs out
type ExpiredEvent struct {
	EntityID ecs.EntityID
	Name     string
}

// Type returns the event type
func (e ExpiredEvent) Type() ecs.EventType {
	return EventExpired
}

// LapEvent is emitted when a LapTimer completes a lap
type LapEvent struct {
	EntityID ecs.EntityID
	Name     string
	Lap      int     // Laps completed so far
	Time     float64 // Seconds for this lap
	Best     float64
	Finished bool
}

// Type returns the event type
func (e LapEvent) Type() ecs.EventType {
	return EventLap
}

// emit publishes through the owner's scene, if any
func emit(e *ecs.Entity, event ecs.Event) {
	if e == nil || e.Scene() == nil {
		return
	}
	e.Scene().EmitEvent(event)
}
