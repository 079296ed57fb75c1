package ecs

import (
	"fmt"

	"github.com/rs/zerolog"
)

// LifecycleState is where a game object is in its life
type LifecycleState int

const (
	// Unborn objects have not had their first update yet
	Unborn LifecycleState = iota
	// Awoken objects have run Awake on themselves and their components
	Awoken
	// Started objects have run Start and receive per-frame updates
	Started
	// Destroyed objects are inert
	Destroyed
)

func (s LifecycleState) String() string {
	switch s {
	case Unborn:
		return "unborn"
	case Awoken:
		return "awoken"
	case Started:
		return "started"
	case Destroyed:
		return "destroyed"
	}
	return fmt.Sprintf("LifecycleState(%d)", int(s))
}

// nextState returns the state reached by a lifecycle event. Destroyed is terminal
// and states never move backwards.
func nextState(from, to LifecycleState) (LifecycleState, bool) {
	if from == Destroyed || to <= from {
		return from, false
	}
	if to == Destroyed {
		return Destroyed, true
	}
	if to != from+1 {
		return from, false
	}
	return to, true
}

// safeCall runs a user hook and turns a panic into an error log so one bad
// component cannot take down the frame
func safeCall(log *zerolog.Logger, entity, hook string, fn func()) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			ok = false
			log.Error().
				Str("entity", entity).
				Str("hook", hook).
				Interface("panic", r).
				Msg("Hook panicked")
		}
	}()
	fn()
	return true
}
