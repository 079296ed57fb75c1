package physics

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"ebiten-rally/geom"
)

// Owner says who is responsible for releasing a body
type Owner int

const (
	// OwnerWorld bodies live until removed from the world directly (projectiles, wheels)
	OwnerWorld Owner = iota
	// OwnerEntity bodies are released when their gameplay entity is destroyed
	OwnerEntity
)

// Material holds surface response coefficients
type Material struct {
	Friction    float64 `mapstructure:"friction" json:"friction"`
	Restitution float64 `mapstructure:"restitution" json:"restitution"`
}

// BodySpec describes a body to create. Shape is filled in by the Create* helpers.
type BodySpec struct {
	Shape           Shape
	Mass            float64
	Position        mgl64.Vec3
	Orientation     mgl64.Quat
	Velocity        mgl64.Vec3
	AngularVelocity mgl64.Vec3
	LinearDamping   float64
	AngularDamping  float64
	// Material falls back to the world default when nil
	Material *Material
}

// Body is a rigid body owned by a World. Gameplay code reads it through the
// getters and mutates it through World methods keyed by handle.
type Body struct {
	handle BodyHandle
	shape  Shape
	owner  Owner

	mass        float64
	invMass     float64
	invInertia  mgl64.Vec3
	invInertiaW mgl64.Mat3

	position        mgl64.Vec3
	orientation     mgl64.Quat
	velocity        mgl64.Vec3
	angularVelocity mgl64.Vec3

	linearDamping  float64
	angularDamping float64
	material       Material

	force  mgl64.Vec3
	torque mgl64.Vec3
}

func newBody(spec BodySpec, def Material) *Body {
	b := &Body{
		shape:           spec.Shape,
		mass:            spec.Mass,
		position:        spec.Position,
		orientation:     normalizeQuat(spec.Orientation),
		velocity:        spec.Velocity,
		angularVelocity: spec.AngularVelocity,
		linearDamping:   spec.LinearDamping,
		angularDamping:  spec.AngularDamping,
		material:        def,
	}
	if spec.Material != nil {
		b.material = *spec.Material
	}
	if b.mass > 0 {
		b.invMass = 1 / b.mass
		in := spec.Shape.inertia(b.mass)
		for i, v := range in {
			if v > 0 {
				b.invInertia[i] = 1 / v
			}
		}
	} else {
		// Static and kinematic bodies do not respond to impulses
		b.velocity = mgl64.Vec3{}
		b.angularVelocity = mgl64.Vec3{}
	}
	b.updateInertia()
	return b
}

// normalizeQuat treats the zero quaternion as identity
func normalizeQuat(q mgl64.Quat) mgl64.Quat {
	if q.W == 0 && q.V == (mgl64.Vec3{}) {
		return mgl64.QuatIdent()
	}
	return q.Normalize()
}

// updateInertia refreshes the world-space inverse inertia tensor
func (b *Body) updateInertia() {
	if b.invMass == 0 {
		b.invInertiaW = mgl64.Mat3{}
		return
	}
	r := b.orientation.Mat4().Mat3()
	b.invInertiaW = r.Mul3(mgl64.Diag3(b.invInertia)).Mul3(r.Transpose())
}

// applyImpulseAt changes linear and angular velocity for an impulse p applied at offset r from the centre
func (b *Body) applyImpulseAt(p, r mgl64.Vec3) {
	if b.invMass == 0 {
		return
	}
	b.velocity = b.velocity.Add(p.Mul(b.invMass))
	b.angularVelocity = b.angularVelocity.Add(b.invInertiaW.Mul3x1(r.Cross(p)))
}

// velocityAt returns the velocity of a point at offset r from the centre
func (b *Body) velocityAt(r mgl64.Vec3) mgl64.Vec3 {
	return b.velocity.Add(b.angularVelocity.Cross(r))
}

// Handle returns the body's own handle
func (b *Body) Handle() BodyHandle { return b.handle }

// Shape returns the collision shape
func (b *Body) Shape() Shape { return b.shape }

// Owner reports who releases the body
func (b *Body) Owner() Owner { return b.owner }

// Mass returns the mass; 0 means static or kinematic
func (b *Body) Mass() float64 { return b.mass }

// IsDynamic reports whether the body responds to forces
func (b *Body) IsDynamic() bool { return b.invMass > 0 }

// Position returns the world position of the centre
func (b *Body) Position() mgl64.Vec3 { return b.position }

// Orientation returns the world rotation
func (b *Body) Orientation() mgl64.Quat { return b.orientation }

// Velocity returns the linear velocity
func (b *Body) Velocity() mgl64.Vec3 { return b.velocity }

// AngularVelocity returns the angular velocity in world space
func (b *Body) AngularVelocity() mgl64.Vec3 { return b.angularVelocity }

// LinearDamping returns the fraction of linear velocity lost per second
func (b *Body) LinearDamping() float64 { return b.linearDamping }

// AngularDamping returns the fraction of angular velocity lost per second
func (b *Body) AngularDamping() float64 { return b.angularDamping }

// Material returns the surface coefficients
func (b *Body) Material() Material { return b.material }

// Transform returns the body pose with unit scale
func (b *Body) Transform() geom.Transform {
	return geom.Transform{
		Position: b.position,
		Rotation: b.orientation,
		Scale:    mgl64.Vec3{1, 1, 1},
	}
}

// PointToWorld maps a body-local point into world space
func (b *Body) PointToWorld(local mgl64.Vec3) mgl64.Vec3 {
	return b.position.Add(b.orientation.Rotate(local))
}

// VectorToWorld rotates a body-local direction into world space
func (b *Body) VectorToWorld(local mgl64.Vec3) mgl64.Vec3 {
	return b.orientation.Rotate(local)
}

// KineticEnergy is used by tests and the debug overlay
func (b *Body) KineticEnergy() float64 {
	if b.invMass == 0 {
		return 0
	}
	lin := 0.5 * b.mass * b.velocity.LenSqr()
	// Rotate angular velocity into the body frame where the tensor is diagonal
	w := b.orientation.Inverse().Rotate(b.angularVelocity)
	var ang float64
	for i := range w {
		if b.invInertia[i] > 0 {
			ang += 0.5 * w[i] * w[i] / b.invInertia[i]
		}
	}
	return lin + ang
}

func dampFactor(damping, dt float64) float64 {
	if damping <= 0 {
		return 1
	}
	if damping >= 1 {
		return 0
	}
	return math.Pow(1-damping, dt)
}
