package systems

import (
	"fmt"

	"ebiten-rally/components"
	"ebiten-rally/ecs"
)

// EventLogSystem writes notable scene events into a MessageLog for the HUD
type EventLogSystem struct {
	Log         *MessageLog
	initialized bool
}

// NewEventLogSystem creates a new event log system
func NewEventLogSystem(log *MessageLog) *EventLogSystem {
	return &EventLogSystem{Log: log}
}

// Initialize sets up event listeners
func (s *EventLogSystem) Initialize(scene *ecs.Scene) {
	if s.initialized {
		return
	}
	events := scene.Events()

	events.Subscribe(components.EventDeath, func(event ecs.Event) {
		death := event.(components.DeathEvent)
		s.Log.AddAlert(fmt.Sprintf("%s was wrecked!", death.Name))
	})
	events.Subscribe(components.EventExpired, func(event ecs.Event) {
		expired := event.(components.ExpiredEvent)
		s.Log.AddColored(fmt.Sprintf("%s expired", expired.Name), MessageTypeSystem)
	})
	events.Subscribe(components.EventLap, func(event ecs.Event) {
		lap := event.(components.LapEvent)
		if lap.Finished {
			s.Log.AddColored(fmt.Sprintf("%s finished! Best lap %.2fs", lap.Name, lap.Best), MessageTypeSystem)
			return
		}
		s.Log.AddColored(fmt.Sprintf("%s lap %d: %.2fs", lap.Name, lap.Lap, lap.Time), MessageTypeSystem)
	})
	events.Subscribe(EventFellOut, func(event ecs.Event) {
		fell := event.(FellOutEvent)
		if fell.Respawned {
			s.Log.AddAlert(fmt.Sprintf("%s fell off and was put back", fell.Name))
		} else {
			s.Log.Add(fmt.Sprintf("%s fell off the world", fell.Name))
		}
	})
	events.Subscribe(EventImpact, func(event ecs.Event) {
		impact := event.(ImpactEvent)
		s.Log.AddColored(fmt.Sprintf("%s hit %s at %.1f m/s (%d damage)",
			entityName(scene, impact.EntityID1), entityName(scene, impact.EntityID2), impact.Speed, impact.Damage), MessageTypeImpact)
	})

	s.initialized = true
}

// Update registers with event system if not already initialized
func (s *EventLogSystem) Update(scene *ecs.Scene, dt float64) {
	if !s.initialized {
		s.Initialize(scene)
	}
}

func entityName(scene *ecs.Scene, id ecs.EntityID) string {
	if id == 0 {
		return "the ground"
	}
	if obj := scene.Get(id); obj != nil {
		return obj.Name()
	}
	return fmt.Sprintf("entity %d", id)
}
