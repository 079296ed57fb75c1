package components

import (
	"ebiten-rally/ecs"
)

// Health tracks hit points. At zero the owner is destroyed unless KeepOnDeath is set.
type Health struct {
	ecs.Base
	Current     int
	Max         int
	KeepOnDeath bool
	dead        bool
}

// NewHealth creates a health component at full strength
func NewHealth(max int) *Health {
	return &Health{Current: max, Max: max}
}

// Awake fills in whichever of Current and Max was left unset
func (h *Health) Awake() {
	if h.Current == 0 && h.Max > 0 {
		h.Current = h.Max
	}
	if h.Max < h.Current {
		h.Max = h.Current
	}
}

// Dead reports whether health has run out
func (h *Health) Dead() bool {
	return h.dead
}

// Damage subtracts amount and returns the remaining health
func (h *Health) Damage(amount int) int {
	if h.dead || amount == 0 {
		return h.Current
	}
	h.Current -= amount
	if h.Current < 0 {
		h.Current = 0
	}
	if h.Max > 0 && h.Current > h.Max {
		h.Current = h.Max
	}
	e := h.Entity()
	if e != nil {
		emit(e, DamageEvent{EntityID: e.ID(), Amount: amount, Health: h.Current})
	}
	if h.Current == 0 {
		h.dead = true
		if e != nil {
			emit(e, DeathEvent{EntityID: e.ID(), Name: e.Name()})
			if obj := e.GameObject(); obj != nil && !h.KeepOnDeath {
				obj.Destroy()
			}
		}
	}
	return h.Current
}

// Heal adds amount, capped at Max
func (h *Health) Heal(amount int) int {
	return h.Damage(-amount)
}
