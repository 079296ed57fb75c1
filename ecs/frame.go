package ecs

import (
	"ebiten-rally/input"
	"ebiten-rally/physics"
)

// Frame is the per-tick context handed to every hook. It replaces global state.
type Frame struct {
	Scene   *Scene
	Physics *physics.World
	Input   input.State
	// DeltaTime is seconds since the previous frame; for FixedUpdate it is the fixed step
	DeltaTime   float64
	ElapsedTime float64
	Number      uint64
}
