package components

import (
	"ebiten-rally/ecs"
)

// Lifetime destroys its owner after Duration seconds of enabled updates
type Lifetime struct {
	ecs.Base
	Duration float64
	elapsed  float64
}

// NewLifetime creates a lifetime of d seconds
func NewLifetime(d float64) *Lifetime {
	return &Lifetime{Duration: d}
}

// Remaining returns the seconds left
func (l *Lifetime) Remaining() float64 {
	if r := l.Duration - l.elapsed; r > 0 {
		return r
	}
	return 0
}

// Update counts down and destroys the owner when time is up
func (l *Lifetime) Update(f *ecs.Frame) {
	l.elapsed += f.DeltaTime
	if l.elapsed < l.Duration {
		return
	}
	e := l.Entity()
	emit(e, ExpiredEvent{EntityID: e.ID(), Name: e.Name()})
	if obj := e.GameObject(); obj != nil {
		obj.Destroy()
	}
}
