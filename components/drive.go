package components

import (
	"ebiten-rally/ecs"
	"ebiten-rally/input"
)

// Drive turns player input into wheel forces on the owner's Vehicle.
// By default the rear wheels drive and the front wheels steer.
type Drive struct {
	ecs.Base
	MaxForce    float64
	BrakeForce  float64
	DriveWheels []int
	SteerWheels []int

	vehicle *Vehicle
}

// NewDrive creates a rear-drive, front-steer controller for a four-wheel rig
// ordered front-left, front-right, rear-left, rear-right
func NewDrive(maxForce float64) *Drive {
	return &Drive{
		MaxForce:    maxForce,
		BrakeForce:  maxForce,
		DriveWheels: []int{2, 3},
		SteerWheels: []int{0, 1},
	}
}

// Start finds the Vehicle to drive
func (d *Drive) Start() {
	v, ok := ecs.GetComponent[*Vehicle](d.Entity())
	if !ok {
		d.Entity().Logger().Warn().Str("entity", d.Entity().Name()).Msg("Drive without Vehicle component")
		return
	}
	d.vehicle = v
}

// FixedUpdate applies throttle, brake and steering every physics step
func (d *Drive) FixedUpdate(f *ecs.Frame) {
	if d.vehicle == nil {
		return
	}
	steer := f.Input.Axis(input.ActionSteer) * d.vehicle.Rig.MaxSteer()
	if f.Input.Pressed(input.ActionBrake) {
		d.vehicle.Apply(0, nil, steer, d.SteerWheels)
		d.vehicle.Brake(d.BrakeForce, allWheels(d.vehicle))
		return
	}
	force := f.Input.Axis(input.ActionThrottle) * d.MaxForce
	d.vehicle.Apply(force, d.DriveWheels, steer, d.SteerWheels)
}

// Update handles one-shot actions, which must not be missed between physics steps
func (d *Drive) Update(f *ecs.Frame) {
	if d.vehicle != nil && f.Input.JustPressed(input.ActionReset) {
		d.vehicle.Reset()
	}
}

func allWheels(v *Vehicle) []int {
	n := v.Rig.WheelCount()
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out
}
