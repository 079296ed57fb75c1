package components

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"ebiten-rally/ecs"
)

// AutoDrive steers the owner's Vehicle through a list of waypoints on the ground plane
type AutoDrive struct {
	ecs.Base
	Waypoints    []mgl64.Vec3
	Force        float64
	ArriveRadius float64
	Loop         bool
	DriveWheels  []int
	SteerWheels  []int

	next    int
	vehicle *Vehicle
}

// NewAutoDrive creates a looping waypoint follower for a four-wheel rig
func NewAutoDrive(force float64, waypoints ...mgl64.Vec3) *AutoDrive {
	return &AutoDrive{
		Waypoints:    waypoints,
		Force:        force,
		ArriveRadius: 3,
		Loop:         true,
		DriveWheels:  []int{2, 3},
		SteerWheels:  []int{0, 1},
	}
}

// Start finds the Vehicle to drive
func (a *AutoDrive) Start() {
	if v, ok := ecs.GetComponent[*Vehicle](a.Entity()); ok {
		a.vehicle = v
	}
}

// Target returns the waypoint being driven to
func (a *AutoDrive) Target() (mgl64.Vec3, bool) {
	if a.next >= len(a.Waypoints) {
		return mgl64.Vec3{}, false
	}
	return a.Waypoints[a.next], true
}

// Done reports whether a non-looping route is finished
func (a *AutoDrive) Done() bool {
	return !a.Loop && a.next >= len(a.Waypoints)
}

// FixedUpdate steers toward the current waypoint
func (a *AutoDrive) FixedUpdate(f *ecs.Frame) {
	if a.vehicle == nil {
		return
	}
	target, ok := a.Target()
	if !ok {
		a.vehicle.Apply(0, a.DriveWheels, 0, a.SteerWheels)
		return
	}
	t := a.Entity().Transform()
	toTarget := target.Sub(t.Position)
	toTarget[1] = 0
	if toTarget.Len() <= a.ArriveRadius {
		a.next++
		if a.next >= len(a.Waypoints) && a.Loop {
			a.next = 0
		}
		return
	}

	angle := headingTo(t.Rotation, toTarget)
	maxSteer := a.vehicle.Rig.MaxSteer()
	steer := math.Max(-maxSteer, math.Min(maxSteer, angle))
	// Ease off in tight turns
	force := a.Force * math.Max(0.3, math.Cos(angle))
	a.vehicle.Apply(force, a.DriveWheels, steer, a.SteerWheels)
}

// headingTo returns the signed angle from the forward axis to dir; positive is to the left
func headingTo(rot mgl64.Quat, dir mgl64.Vec3) float64 {
	local := rot.Inverse().Rotate(dir)
	return math.Atan2(-local.X(), -local.Z())
}
