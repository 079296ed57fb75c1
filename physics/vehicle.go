package physics

import (
	"errors"
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"ebiten-rally/geom"
)

var (
	// ErrMissingChassis is returned when the chassis handle does not resolve to a body
	ErrMissingChassis = errors.New("physics: vehicle chassis body not found")
	// ErrNoWheels is returned for a vehicle spec without wheels
	ErrNoWheels = errors.New("physics: vehicle needs at least one wheel")
)

// chassisUp is the local axis steering rotates around
var chassisUp = mgl64.Vec3{0, 1, 0}

// WheelSpec places one wheel relative to the chassis
type WheelSpec struct {
	// Offset is the hinge pivot in chassis-local space
	Offset mgl64.Vec3
	// Axis is the axle direction in chassis-local space; positive wheel force spins the
	// wheel counter-clockwise around it
	Axis           mgl64.Vec3
	Radius         float64
	HalfWidth      float64
	Mass           float64
	LinearDamping  float64
	AngularDamping float64
	Material       *Material
}

// VehicleSpec describes a rig to assemble around an existing chassis body
type VehicleSpec struct {
	Chassis  BodyHandle
	Wheels   []WheelSpec
	MaxSteer float64
}

// Wheel is one wheel body hinged to the chassis
type Wheel struct {
	body   BodyHandle
	joint  *hingeJoint
	axis   mgl64.Vec3
	offset mgl64.Vec3
	force  float64
	steer  float64
}

// Body returns the wheel's body handle
func (wh *Wheel) Body() BodyHandle { return wh.body }

// Offset returns the hinge pivot in chassis space
func (wh *Wheel) Offset() mgl64.Vec3 { return wh.offset }

// Force returns the drive torque currently applied
func (wh *Wheel) Force() float64 { return wh.force }

// Steering returns the current steering angle in radians
func (wh *Wheel) Steering() float64 { return wh.steer }

// VehicleRig is a chassis with an ordered list of hinged wheels.
// The rig applies whatever drive and steering it is told; which wheels are powered
// or steerable is decided by the caller.
type VehicleRig struct {
	world    *World
	chassis  BodyHandle
	wheels   []*Wheel
	maxSteer float64
	removed  bool
}

// CreateVehicle builds wheel bodies and hinge constraints around spec.Chassis.
// A missing chassis is a usage error: it is logged and ErrMissingChassis returned.
func (w *World) CreateVehicle(spec VehicleSpec) (*VehicleRig, error) {
	chassis := w.Body(spec.Chassis)
	if chassis == nil {
		w.log.Warn().Stringer("chassis", spec.Chassis).Msg("Vehicle creation without chassis body")
		return nil, ErrMissingChassis
	}
	if len(spec.Wheels) == 0 {
		return nil, ErrNoWheels
	}
	// Validate everything before creating anything so failures leave the world untouched
	for i, ws := range spec.Wheels {
		if ws.Axis.Len() < 1e-9 || !finiteVec(ws.Axis) {
			return nil, fmt.Errorf("%w: wheel %d has no axis", ErrInvalidShape, i)
		}
		if !finiteVec(ws.Offset) {
			return nil, fmt.Errorf("%w: wheel %d offset", ErrInvalidPose, i)
		}
		if ws.Mass <= 0 {
			return nil, fmt.Errorf("%w: wheel %d mass %v", ErrInvalidMass, i, ws.Mass)
		}
		if err := (Cylinder{Radius: ws.Radius, HalfHeight: ws.HalfWidth}).validate(); err != nil {
			return nil, fmt.Errorf("wheel %d: %w", i, err)
		}
	}

	v := &VehicleRig{
		world:    w,
		chassis:  spec.Chassis,
		maxSteer: math.Abs(spec.MaxSteer),
	}
	for _, ws := range spec.Wheels {
		axis := ws.Axis.Normalize()
		h, err := w.CreateCylinder(ws.Radius, ws.HalfWidth, BodySpec{
			Mass:           ws.Mass,
			Position:       chassis.PointToWorld(ws.Offset),
			Orientation:    chassis.orientation.Mul(geom.FromTo(mgl64.Vec3{0, 1, 0}, axis)),
			Velocity:       chassis.velocity,
			LinearDamping:  ws.LinearDamping,
			AngularDamping: ws.AngularDamping,
			Material:       ws.Material,
		})
		if err != nil {
			v.release()
			return nil, err
		}
		j := &hingeJoint{
			a:      spec.Chassis,
			b:      h,
			pivotA: ws.Offset,
			axisA:  axis,
			axisB:  mgl64.Vec3{0, 1, 0},
		}
		w.joints = append(w.joints, j)
		w.ignoreCollision(spec.Chassis, h)
		v.wheels = append(v.wheels, &Wheel{body: h, joint: j, axis: axis, offset: ws.Offset})
	}
	// Wheels of one rig never collide with each other either
	for i := range v.wheels {
		for k := i + 1; k < len(v.wheels); k++ {
			w.ignoreCollision(v.wheels[i].body, v.wheels[k].body)
		}
	}
	w.vehicles = append(w.vehicles, v)
	return v, nil
}

// RemoveVehicle releases wheel constraints and wheel bodies. The chassis is left alone.
func (w *World) RemoveVehicle(v *VehicleRig) {
	if v == nil || v.removed || v.world != w {
		return
	}
	v.release()
	rigs := w.vehicles[:0]
	for _, other := range w.vehicles {
		if other != v {
			rigs = append(rigs, other)
		}
	}
	w.vehicles = rigs
}

func (v *VehicleRig) release() {
	for i := range v.wheels {
		for k := i + 1; k < len(v.wheels); k++ {
			v.world.allowCollision(v.wheels[i].body, v.wheels[k].body)
		}
	}
	for _, wh := range v.wheels {
		// RemoveBody drops the hinge and the chassis exclusion with it
		v.world.RemoveBody(wh.body)
	}
	v.removed = true
}

// Chassis returns the chassis handle
func (v *VehicleRig) Chassis() BodyHandle { return v.chassis }

// WheelCount returns the number of wheels
func (v *VehicleRig) WheelCount() int { return len(v.wheels) }

// Wheel returns the i-th wheel, or nil when out of range
func (v *VehicleRig) Wheel(i int) *Wheel {
	if i < 0 || i >= len(v.wheels) {
		return nil
	}
	return v.wheels[i]
}

// MaxSteer returns the steering clamp in radians
func (v *VehicleRig) MaxSteer() float64 { return v.maxSteer }

// Removed reports whether RemoveVehicle has run
func (v *VehicleRig) Removed() bool { return v.removed }

func (v *VehicleRig) wheel(i int, op string) *Wheel {
	if v.removed {
		return nil
	}
	wh := v.Wheel(i)
	if wh == nil {
		v.world.log.Warn().Int("wheel", i).Int("wheels", len(v.wheels)).Str("op", op).Msg("Wheel index out of range")
	}
	return wh
}

// SetWheelForce sets the drive torque on wheel i. It is applied every sub-step until changed.
func (v *VehicleRig) SetWheelForce(force float64, i int) {
	if wh := v.wheel(i, "SetWheelForce"); wh != nil {
		wh.force = force
	}
}

// SetSteeringValue turns wheel i's hinge axis around the chassis up axis, clamped to ±MaxSteer
func (v *VehicleRig) SetSteeringValue(angle float64, i int) {
	wh := v.wheel(i, "SetSteeringValue")
	if wh == nil {
		return
	}
	wh.steer = clamp(angle, -v.maxSteer, v.maxSteer)
	wh.joint.axisA = mgl64.QuatRotate(wh.steer, chassisUp).Rotate(wh.axis)
}

// WheelSpeed returns wheel i's angular speed around its axle in rad/s
func (v *VehicleRig) WheelSpeed(i int) float64 {
	wh := v.Wheel(i)
	if wh == nil || v.removed {
		return 0
	}
	b := v.world.Body(wh.body)
	if b == nil {
		return 0
	}
	return b.angularVelocity.Dot(b.orientation.Rotate(mgl64.Vec3{0, 1, 0}))
}

// Speed returns the chassis speed along its forward (-Z) axis
func (v *VehicleRig) Speed() float64 {
	b := v.world.Body(v.chassis)
	if b == nil {
		return 0
	}
	return b.velocity.Dot(b.orientation.Rotate(mgl64.Vec3{0, 0, -1}))
}

// applyWheelTorques adds each wheel's drive torque around its own axle
func (v *VehicleRig) applyWheelTorques(h float64) {
	for _, wh := range v.wheels {
		if wh.force == 0 {
			continue
		}
		b := v.world.Body(wh.body)
		if b == nil || !b.IsDynamic() {
			continue
		}
		torque := b.orientation.Rotate(mgl64.Vec3{0, 1, 0}).Mul(wh.force)
		b.angularVelocity = b.angularVelocity.Add(b.invInertiaW.Mul3x1(torque).Mul(h))
	}
}

// Reset places the chassis at the given pose, re-seats every wheel and stops all motion.
// Steering and drive settings are kept.
func (v *VehicleRig) Reset(position mgl64.Vec3, orientation mgl64.Quat) {
	if v.removed {
		return
	}
	w := v.world
	chassis := w.Body(v.chassis)
	if chassis == nil {
		return
	}
	w.SetPose(v.chassis, position, orientation)
	chassis.velocity = mgl64.Vec3{}
	chassis.angularVelocity = mgl64.Vec3{}
	for _, wh := range v.wheels {
		b := w.Body(wh.body)
		if b == nil {
			continue
		}
		axis := mgl64.QuatRotate(wh.steer, chassisUp).Rotate(wh.axis)
		w.SetPose(wh.body, chassis.PointToWorld(wh.offset), chassis.orientation.Mul(geom.FromTo(mgl64.Vec3{0, 1, 0}, axis)))
		b.velocity = mgl64.Vec3{}
		b.angularVelocity = mgl64.Vec3{}
	}
}
