package components

import (
	"github.com/go-gl/mathgl/mgl64"

	"ebiten-rally/ecs"
)

// LapTimer counts laps by checking off Checkpoints in order on the ground plane.
// Checkpoint 0 is the start line; a lap is complete when the owner returns to it
// after visiting every other checkpoint.
type LapTimer struct {
	ecs.Base
	Checkpoints []mgl64.Vec3
	Radius      float64
	Laps        int // Laps to finish; 0 races forever

	Completed int
	Current   float64 // Seconds into the current lap
	Best      float64 // Fastest finished lap, 0 until one is finished

	next int
}

// NewLapTimer creates a timer that finishes after laps laps
func NewLapTimer(laps int, checkpoints ...mgl64.Vec3) *LapTimer {
	return &LapTimer{
		Checkpoints: checkpoints,
		Radius:      6,
		Laps:        laps,
		next:        1,
	}
}

// Finished reports whether the target lap count has been reached
func (l *LapTimer) Finished() bool {
	return l.Laps > 0 && l.Completed >= l.Laps
}

// NextCheckpoint returns the index of the checkpoint to reach next
func (l *LapTimer) NextCheckpoint() int {
	if len(l.Checkpoints) == 0 {
		return 0
	}
	return l.next % len(l.Checkpoints)
}

// Update advances the clock and checks the next checkpoint
func (l *LapTimer) Update(f *ecs.Frame) {
	if len(l.Checkpoints) == 0 || l.Finished() {
		return
	}
	l.Current += f.DeltaTime

	e := l.Entity()
	offset := l.Checkpoints[l.NextCheckpoint()].Sub(e.Transform().Position)
	offset[1] = 0
	if offset.Len() > l.Radius {
		return
	}

	if l.NextCheckpoint() == 0 {
		l.Completed++
		lap := l.Current
		if l.Best == 0 || lap < l.Best {
			l.Best = lap
		}
		l.Current = 0
		emit(e, LapEvent{EntityID: e.ID(), Name: e.Name(), Lap: l.Completed, Time: lap, Best: l.Best, Finished: l.Finished()})
	}
	l.next = (l.NextCheckpoint() + 1) % len(l.Checkpoints)
}
