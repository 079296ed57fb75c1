package ecs

import (
	"github.com/go-gl/mathgl/mgl64"

	"ebiten-rally/physics"
)

// EventType identifies different types of events
type EventType string

// Event interface that all events must implement
type Event interface {
	Type() EventType
}

// EventHandler is a function that processes events
type EventHandler func(Event)

// SubscriptionID identifies a handler so it can be unsubscribed
type SubscriptionID uint64

type subscription struct {
	id      SubscriptionID
	handler EventHandler
}

// EventManager manages event subscriptions and dispatches
type EventManager struct {
	subscribers map[EventType][]subscription
	nextID      SubscriptionID
}

// NewEventManager creates a new event manager
func NewEventManager() *EventManager {
	return &EventManager{
		subscribers: make(map[EventType][]subscription),
	}
}

// Subscribe registers a handler for a specific event type
func (em *EventManager) Subscribe(eventType EventType, handler EventHandler) SubscriptionID {
	em.nextID++
	em.subscribers[eventType] = append(em.subscribers[eventType], subscription{id: em.nextID, handler: handler})
	return em.nextID
}

// Unsubscribe removes a handler for a specific event type
func (em *EventManager) Unsubscribe(eventType EventType, id SubscriptionID) {
	subs, exists := em.subscribers[eventType]
	if !exists {
		return
	}

	kept := make([]subscription, 0, len(subs))
	for _, s := range subs {
		if s.id != id {
			kept = append(kept, s)
		}
	}

	if len(kept) == 0 {
		delete(em.subscribers, eventType)
	} else {
		em.subscribers[eventType] = kept
	}
}

// Emit dispatches an event to all subscribed handlers
func (em *EventManager) Emit(event Event) {
	subs, exists := em.subscribers[event.Type()]
	if !exists {
		return
	}

	// Handlers may subscribe or unsubscribe while we dispatch
	snapshot := make([]subscription, len(subs))
	copy(snapshot, subs)
	for _, s := range snapshot {
		s.handler(event)
	}
}

// Scene event types
const (
	EntityAdded     EventType = "entity_added"
	EntityRemoved   EventType = "entity_removed"
	EntityDestroyed EventType = "entity_destroyed"
	Collision       EventType = "collision"
)

// EntityAddedEvent is published when an object joins a scene
type EntityAddedEvent struct {
	ID   EntityID
	Name string
}

// Type implements Event
func (EntityAddedEvent) Type() EventType { return EntityAdded }

// EntityRemovedEvent is published when an object leaves a scene
type EntityRemovedEvent struct {
	ID   EntityID
	Name string
}

// Type implements Event
func (EntityRemovedEvent) Type() EventType { return EntityRemoved }

// EntityDestroyedEvent is published after an object in a scene is destroyed
type EntityDestroyedEvent struct {
	ID   EntityID
	Name string
}

// Type implements Event
func (EntityDestroyedEvent) Type() EventType { return EntityDestroyed }

// CollisionEvent reports a new contact between two bodies. A or B is nil when the
// body belongs to no object in the scene.
type CollisionEvent struct {
	A, B   *GameObject
	BodyA  physics.BodyHandle
	BodyB  physics.BodyHandle
	Point  mgl64.Vec3
	Normal mgl64.Vec3
	Depth  float64
	// Speed is the closing speed along the normal before the contact was resolved
	Speed float64
	// Impulse is the normal impulse applied to separate the pair
	Impulse float64
}

// Type implements Event
func (CollisionEvent) Type() EventType { return Collision }
