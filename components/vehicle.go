package components

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"ebiten-rally/ecs"
	"ebiten-rally/physics"
)

// Vehicle ties a vehicle rig to the chassis object. Removing the component or
// destroying the object removes the rig.
type Vehicle struct {
	ecs.Base
	Rig    *physics.VehicleRig
	World  *physics.World
	Wheels []*ecs.GameObject // Child objects following each wheel body, may be empty
	// ResetLift is how far above its current position the chassis is put on Reset
	ResetLift float64
}

// NewVehicle wraps a rig created in w
func NewVehicle(w *physics.World, rig *physics.VehicleRig) *Vehicle {
	return &Vehicle{Rig: rig, World: w, ResetLift: 1}
}

// OnDetach releases the wheel bodies and hinges. Detach runs even for objects
// destroyed before their first update, which never see OnDestroy.
func (v *Vehicle) OnDetach(*ecs.Entity) {
	if v.World != nil && v.Rig != nil {
		v.World.RemoveVehicle(v.Rig)
	}
}

// Speed returns the forward chassis speed in m/s
func (v *Vehicle) Speed() float64 {
	if v.Rig == nil {
		return 0
	}
	return v.Rig.Speed()
}

// Apply sets drive force on driveWheels and a steering angle on steerWheels
func (v *Vehicle) Apply(force float64, driveWheels []int, steer float64, steerWheels []int) {
	if v.Rig == nil || v.Rig.Removed() {
		return
	}
	for _, i := range driveWheels {
		v.Rig.SetWheelForce(force, i)
	}
	for _, i := range steerWheels {
		v.Rig.SetSteeringValue(steer, i)
	}
}

// Brake applies torque against each wheel's spin, up to force
func (v *Vehicle) Brake(force float64, wheels []int) {
	if v.Rig == nil || v.Rig.Removed() {
		return
	}
	for _, i := range wheels {
		speed := v.Rig.WheelSpeed(i)
		v.Rig.SetWheelForce(-force*math.Max(-1, math.Min(1, speed)), i)
	}
}

// Reset puts the car back on its wheels above where it is now, keeping only its heading
func (v *Vehicle) Reset() {
	e := v.Entity()
	if e == nil || v.Rig == nil {
		return
	}
	t := e.Transform()
	upright := mgl64.QuatRotate(t.Yaw(), mgl64.Vec3{0, 1, 0})
	v.Rig.Reset(t.Position.Add(mgl64.Vec3{0, v.ResetLift, 0}), upright)
	e.SyncFromBody()
}
