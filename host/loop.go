// Package host drives a scene and its physics world one frame at a time.
//
// Each Tick polls input, runs scene FixedUpdate and one physics sub-step per
// elapsed fixed step, hands new contacts to the scene as collision events, then
// runs the per-frame scene Update (objects, then systems such as the camera).
package host

import (
	"math"

	"github.com/rs/zerolog"

	"ebiten-rally/ecs"
	"ebiten-rally/input"
	"ebiten-rally/physics"
)

// Loop is the frame-stepped tick loop
type Loop struct {
	scene  *ecs.Scene
	world  *physics.World
	poller input.Poller
	log    zerolog.Logger

	step        float64
	maxSteps    int
	accumulator float64
	elapsed     float64
	paused      bool
	frames      uint64

	// Contacts reported during a physics step, emitted once the step is over
	pending []physics.Contact
}

// Option configures a Loop
type Option func(*Loop)

// WithLogger sets the loop logger
func WithLogger(log zerolog.Logger) Option {
	return func(l *Loop) { l.log = log }
}

// WithFixedStep overrides the fixed step and the per-tick step limit. Without a
// physics world the defaults are 60 Hz and 3 steps. With one, the world's own fixed
// step always wins so each World.Step call runs exactly one sub-step.
func WithFixedStep(step float64, maxSteps int) Option {
	return func(l *Loop) {
		if step > 0 {
			l.step = step
		}
		if maxSteps > 0 {
			l.maxSteps = maxSteps
		}
	}
}

// NewLoop creates a loop over scene and its physics world. A nil poller means no input.
func NewLoop(scene *ecs.Scene, poller input.Poller, opts ...Option) *Loop {
	if poller == nil {
		poller = input.Static{}
	}
	def := physics.DefaultSettings()
	l := &Loop{
		scene:    scene,
		world:    scene.Physics(),
		poller:   poller,
		log:      zerolog.Nop(),
		step:     def.FixedTimeStep,
		maxSteps: def.MaxSubSteps,
	}
	if l.world != nil {
		s := l.world.Settings()
		l.step, l.maxSteps = s.FixedTimeStep, s.MaxSubSteps
		l.world.OnContact(func(c physics.Contact) {
			l.pending = append(l.pending, c)
		})
	}
	for _, opt := range opts {
		opt(l)
	}
	if l.world != nil {
		if h := l.world.Settings().FixedTimeStep; l.step != h {
			l.log.Warn().Float64("step", l.step).Float64("world_step", h).Msg("Fixed step must match the physics world, using the world's")
			l.step = h
		}
	}
	return l
}

// Scene returns the driven scene
func (l *Loop) Scene() *ecs.Scene { return l.scene }

// Paused reports whether simulation is suspended
func (l *Loop) Paused() bool { return l.paused }

// SetPaused suspends or resumes simulation. Input is still polled while paused.
func (l *Loop) SetPaused(paused bool) {
	if l.paused != paused {
		l.paused = paused
		l.log.Info().Bool("paused", paused).Msg("Simulation pause toggled")
	}
}

// Elapsed returns simulated seconds, excluding paused time
func (l *Loop) Elapsed() float64 { return l.elapsed }

// Frames returns how many unpaused ticks have run
func (l *Loop) Frames() uint64 { return l.frames }

// Tick advances one frame of dt seconds and returns how many fixed steps ran
func (l *Loop) Tick(dt float64) int {
	if dt < 0 || math.IsNaN(dt) || math.IsInf(dt, 0) {
		l.log.Warn().Float64("dt", dt).Msg("Ignoring invalid frame time")
		return 0
	}

	state := l.poller.Poll()
	if state == nil {
		state = input.None{}
	}
	l.scene.SetInput(state)
	if state.JustPressed(input.ActionPause) {
		l.SetPaused(!l.paused)
	}
	if l.paused {
		return 0
	}

	// Clamp so a long hitch cannot queue up more steps than one tick may run
	l.accumulator = math.Min(l.accumulator+dt, l.step*float64(l.maxSteps))
	steps := 0
	for l.accumulator >= l.step-1e-9 && steps < l.maxSteps {
		l.scene.FixedUpdate(l.step)
		if l.world != nil {
			l.world.Step(l.step)
		}
		l.flushContacts()
		l.accumulator -= l.step
		steps++
	}
	if l.accumulator < 0 {
		l.accumulator = 0
	}

	l.elapsed += dt
	l.frames++
	l.scene.Update(dt, l.elapsed)
	return steps
}

// flushContacts emits queued contacts as collision events. Handlers may destroy
// objects, which is only safe once the physics step has returned.
func (l *Loop) flushContacts() {
	if len(l.pending) == 0 {
		return
	}
	contacts := l.pending
	l.pending = nil
	for _, c := range contacts {
		// Bodies removed by an earlier handler no longer resolve
		if l.world.Body(c.A) == nil || l.world.Body(c.B) == nil {
			continue
		}
		l.scene.EmitEvent(ecs.CollisionEvent{
			A:       l.scene.FindByBody(c.A),
			B:       l.scene.FindByBody(c.B),
			BodyA:   c.A,
			BodyB:   c.B,
			Point:   c.Point,
			Normal:  c.Normal,
			Depth:   c.Depth,
			Speed:   c.Speed,
			Impulse: c.Impulse,
		})
	}
}
