package systems

import (
	"ebiten-rally/components"
	"ebiten-rally/ecs"
	"ebiten-rally/physics"
)

// ImpactSystem turns hard collisions into Health damage
type ImpactSystem struct {
	// MinSpeed is the closing speed below which contacts are harmless
	MinSpeed float64
	// DamagePerSpeed scales closing speed above MinSpeed into damage points
	DamagePerSpeed float64
	initialized    bool
	subscription   ecs.SubscriptionID
	scene          *ecs.Scene
}

// NewImpactSystem creates a new impact system
func NewImpactSystem(minSpeed, damagePerSpeed float64) *ImpactSystem {
	return &ImpactSystem{MinSpeed: minSpeed, DamagePerSpeed: damagePerSpeed}
}

// Initialize sets up event listeners
func (s *ImpactSystem) Initialize(scene *ecs.Scene) {
	if s.initialized {
		return
	}

	// Subscribe to collision events
	s.subscription = scene.Events().Subscribe(ecs.Collision, func(event ecs.Event) {
		s.handleCollision(scene, event.(ecs.CollisionEvent))
	})

	s.scene = scene
	s.initialized = true
}

// Close stops listening for collisions
func (s *ImpactSystem) Close() {
	if s.initialized {
		s.scene.Events().Unsubscribe(ecs.Collision, s.subscription)
		s.initialized = false
	}
}

// Update registers with event system if not already initialized
func (s *ImpactSystem) Update(scene *ecs.Scene, dt float64) {
	if !s.initialized {
		s.Initialize(scene)
	}
}

// handleCollision processes a collision event
func (s *ImpactSystem) handleCollision(scene *ecs.Scene, event ecs.CollisionEvent) {
	speed := event.Speed
	if speed == 0 {
		speed = closingSpeed(scene.Physics(), event)
	}
	if speed <= s.MinSpeed {
		return
	}
	damage := int((speed - s.MinSpeed) * s.DamagePerSpeed)
	if damage <= 0 {
		return
	}

	impact := ImpactEvent{Speed: speed, Damage: damage}
	if event.A != nil {
		impact.EntityID1 = event.A.ID()
	}
	if event.B != nil {
		impact.EntityID2 = event.B.ID()
	}
	scene.EmitEvent(impact)

	for _, obj := range []*ecs.GameObject{event.A, event.B} {
		if obj == nil || obj.Destroyed() {
			continue
		}
		if health, ok := ecs.GetComponent[*components.Health](obj); ok {
			health.Damage(damage)
		}
	}
}

// closingSpeed measures the current relative speed along the normal, for events
// raised without a solver-measured speed
func closingSpeed(world *physics.World, event ecs.CollisionEvent) float64 {
	if world == nil {
		return 0
	}
	a := world.Body(event.BodyA)
	b := world.Body(event.BodyB)
	if a == nil || b == nil {
		return 0
	}
	// The normal points from B to A
	speed := -a.Velocity().Sub(b.Velocity()).Dot(event.Normal)
	if speed < 0 {
		speed = -speed
	}
	return speed
}
