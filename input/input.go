// Package input defines the input collaborator consumed by components.
// Devices are polled by the host; components only ever see a State.
package input

// Action names understood by the bundled components
const (
	ActionThrottle = "throttle"
	ActionBrake    = "brake"
	ActionSteer    = "steer"
	ActionReset    = "reset"
	ActionPause    = "pause"
)

// State is a read-only view of the input for the current frame
type State interface {
	// Axis returns a value in [-1, 1] for the named axis
	Axis(name string) float64
	// Pressed reports whether the action is held this frame
	Pressed(action string) bool
	// JustPressed reports whether the action went down this frame
	JustPressed(action string) bool
}

// Poller produces a fresh State once per tick
type Poller interface {
	Poll() State
}

// None is a State with nothing pressed
type None struct{}

func (None) Axis(string) float64     { return 0 }
func (None) Pressed(string) bool     { return false }
func (None) JustPressed(string) bool { return false }
