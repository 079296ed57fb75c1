package input

// Binding maps one physical key (by name) onto an action or an axis direction
type Binding struct {
	Key    string
	Action string
	// Scale is added to the axis when the key is held; 0 means the binding is a button
	Scale float64
}

// Bindings is an ordered binding table
type Bindings []Binding

// DefaultBindings returns the keyboard layout used by the demo car
func DefaultBindings() Bindings {
	return Bindings{
		// Arrow keys
		{Key: "ArrowUp", Action: ActionThrottle, Scale: 1},
		{Key: "ArrowDown", Action: ActionThrottle, Scale: -1},
		{Key: "ArrowLeft", Action: ActionSteer, Scale: 1},
		{Key: "ArrowRight", Action: ActionSteer, Scale: -1},

		// WASD
		{Key: "W", Action: ActionThrottle, Scale: 1},
		{Key: "S", Action: ActionThrottle, Scale: -1},
		{Key: "A", Action: ActionSteer, Scale: 1},
		{Key: "D", Action: ActionSteer, Scale: -1},

		{Key: "Space", Action: ActionBrake},
		{Key: "R", Action: ActionReset},
		{Key: "P", Action: ActionPause},
	}
}

// Keys returns the distinct key names in binding order
func (b Bindings) Keys() []string {
	seen := make(map[string]bool)
	keys := make([]string, 0, len(b))
	for _, binding := range b {
		if !seen[binding.Key] {
			seen[binding.Key] = true
			keys = append(keys, binding.Key)
		}
	}
	return keys
}

// Resolve builds a Snapshot from the keys currently held and the keys that went down this frame
func (b Bindings) Resolve(held, justPressed func(key string) bool) *Snapshot {
	snap := NewSnapshot()
	axes := make(map[string]float64)
	for _, binding := range b {
		down := held(binding.Key)
		if binding.Scale != 0 {
			if down {
				axes[binding.Action] += binding.Scale
			}
			continue
		}
		// A button stays held if any of its keys is held
		edge := justPressed(binding.Key)
		snap.SetPressed(binding.Action, down || snap.Pressed(binding.Action), edge || snap.JustPressed(binding.Action))
	}
	for name, v := range axes {
		snap.SetAxis(name, v)
	}
	return snap
}
