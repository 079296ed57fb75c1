package input

// Snapshot is a plain map-backed State, filled by a device poller or by tests
type Snapshot struct {
	axes    map[string]float64
	held    map[string]bool
	pressed map[string]bool
}

// NewSnapshot creates an empty snapshot
func NewSnapshot() *Snapshot {
	return &Snapshot{
		axes:    make(map[string]float64),
		held:    make(map[string]bool),
		pressed: make(map[string]bool),
	}
}

// SetAxis stores an axis value, clamped to [-1, 1]
func (s *Snapshot) SetAxis(name string, v float64) {
	if v > 1 {
		v = 1
	} else if v < -1 {
		v = -1
	}
	s.axes[name] = v
}

// SetPressed marks an action as held; justPressed marks the down edge
func (s *Snapshot) SetPressed(action string, held, justPressed bool) {
	s.held[action] = held
	s.pressed[action] = justPressed
}

// Axis implements State
func (s *Snapshot) Axis(name string) float64 {
	return s.axes[name]
}

// Pressed implements State
func (s *Snapshot) Pressed(action string) bool {
	return s.held[action]
}

// JustPressed implements State
func (s *Snapshot) JustPressed(action string) bool {
	return s.pressed[action]
}

// Static is a Poller that always returns the same state
type Static struct {
	State State
}

// Poll implements Poller
func (p Static) Poll() State {
	if p.State == nil {
		return None{}
	}
	return p.State
}
