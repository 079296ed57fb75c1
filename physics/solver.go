package physics

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// restitutionThreshold is the approach speed below which contacts do not bounce
const restitutionThreshold = 1.0

// effectiveMass returns 1 / (J M^-1 J^T) for an impulse along n at offsets rA, rB
func effectiveMass(a, b *Body, rA, rB, n mgl64.Vec3) float64 {
	k := a.invMass + b.invMass
	ra := rA.Cross(n)
	rb := rB.Cross(n)
	k += ra.Dot(a.invInertiaW.Mul3x1(ra))
	k += rb.Dot(b.invInertiaW.Mul3x1(rb))
	if k <= 0 {
		return 0
	}
	return 1 / k
}

func (w *World) prepareContacts(h float64) {
	beta := w.settings.Baumgarte / h
	slop := w.settings.Slop
	for i := range w.contacts {
		c := &w.contacts[i]
		c.rA = c.point.Sub(c.a.position)
		c.rB = c.point.Sub(c.b.position)
		c.t1, c.t2 = tangentBasis(c.normal)
		c.massN = effectiveMass(c.a, c.b, c.rA, c.rB, c.normal)
		c.massT1 = effectiveMass(c.a, c.b, c.rA, c.rB, c.t1)
		c.massT2 = effectiveMass(c.a, c.b, c.rA, c.rB, c.t2)
		c.friction = (c.a.material.Friction + c.b.material.Friction) / 2

		c.bias = beta * math.Max(c.depth-slop, 0)
		vn := c.relativeVelocity().Dot(c.normal)
		c.approach = math.Max(-vn, 0)
		if vn < -restitutionThreshold {
			e := math.Max(c.a.material.Restitution, c.b.material.Restitution)
			c.bias = math.Max(c.bias, -e*vn)
		}
	}
}

func (c *contact) relativeVelocity() mgl64.Vec3 {
	return c.a.velocityAt(c.rA).Sub(c.b.velocityAt(c.rB))
}

func (c *contact) applyImpulse(p mgl64.Vec3) {
	c.a.applyImpulseAt(p, c.rA)
	c.b.applyImpulseAt(p.Mul(-1), c.rB)
}

// solve runs one sequential-impulse iteration on the contact
func (c *contact) solve() {
	if c.massN == 0 {
		return
	}
	vn := c.relativeVelocity().Dot(c.normal)
	lambda := c.massN * (c.bias - vn)
	old := c.impulseN
	c.impulseN = math.Max(old+lambda, 0)
	c.applyImpulse(c.normal.Mul(c.impulseN - old))

	// Coulomb friction bounded by the accumulated normal impulse
	limit := c.friction * c.impulseN
	c.impulseT1 = c.solveTangent(c.t1, c.massT1, c.impulseT1, limit)
	c.impulseT2 = c.solveTangent(c.t2, c.massT2, c.impulseT2, limit)
}

func (c *contact) solveTangent(t mgl64.Vec3, mass, accumulated, limit float64) float64 {
	if mass == 0 {
		return accumulated
	}
	vt := c.relativeVelocity().Dot(t)
	next := clamp(accumulated-mass*vt, -limit, limit)
	c.applyImpulse(t.Mul(next - accumulated))
	return next
}

// hingeJoint pins a point of b to a point of a and keeps b's axis aligned with a's axis,
// leaving rotation about that axis free
type hingeJoint struct {
	a, b   BodyHandle
	pivotA mgl64.Vec3
	pivotB mgl64.Vec3
	axisA  mgl64.Vec3
	axisB  mgl64.Vec3

	// per sub-step state
	ba, bb    *Body
	rA, rB    mgl64.Vec3
	pointMass mgl64.Mat3
	pointBias mgl64.Vec3
	perp      [2]mgl64.Vec3
	angMass   [2]float64
	angBias   [2]float64
	active    bool
}

func (j *hingeJoint) prepare(w *World, h float64) {
	j.ba, j.bb = w.bodies.get(j.a), w.bodies.get(j.b)
	j.active = j.ba != nil && j.bb != nil
	if !j.active {
		return
	}
	beta := w.settings.Baumgarte / h
	a, b := j.ba, j.bb

	j.rA = a.orientation.Rotate(j.pivotA)
	j.rB = b.orientation.Rotate(j.pivotB)
	k := bodyPointMass(a, j.rA).Add(bodyPointMass(b, j.rB))
	if math.Abs(k.Det()) < 1e-12 {
		j.active = false
		return
	}
	j.pointMass = k.Inv()
	drift := b.position.Add(j.rB).Sub(a.position.Add(j.rA))
	j.pointBias = drift.Mul(beta)

	worldA := a.orientation.Rotate(j.axisA).Normalize()
	worldB := b.orientation.Rotate(j.axisB).Normalize()
	misalign := worldB.Cross(worldA)
	t1, t2 := tangentBasis(worldA)
	j.perp = [2]mgl64.Vec3{t1, t2}
	for i, t := range j.perp {
		kk := t.Dot(a.invInertiaW.Mul3x1(t)) + t.Dot(b.invInertiaW.Mul3x1(t))
		j.angMass[i] = 0
		if kk > 0 {
			j.angMass[i] = 1 / kk
		}
		j.angBias[i] = beta * misalign.Dot(t)
	}
}

// bodyPointMass is the contribution of one body to the point constraint matrix
func bodyPointMass(b *Body, r mgl64.Vec3) mgl64.Mat3 {
	s := skew(r)
	k := mgl64.Ident3().Mul(b.invMass)
	return k.Sub(s.Mul3(b.invInertiaW).Mul3(s))
}

func skew(v mgl64.Vec3) mgl64.Mat3 {
	return mgl64.Mat3FromRows(
		mgl64.Vec3{0, -v.Z(), v.Y()},
		mgl64.Vec3{v.Z(), 0, -v.X()},
		mgl64.Vec3{-v.Y(), v.X(), 0},
	)
}

func (j *hingeJoint) solve() {
	if !j.active {
		return
	}
	a, b := j.ba, j.bb

	// Point-to-point part
	cdot := b.velocityAt(j.rB).Sub(a.velocityAt(j.rA))
	p := j.pointMass.Mul3x1(cdot.Add(j.pointBias)).Mul(-1)
	a.applyImpulseAt(p.Mul(-1), j.rA)
	b.applyImpulseAt(p, j.rB)

	// Axis alignment part
	for i, t := range j.perp {
		if j.angMass[i] == 0 {
			continue
		}
		rel := b.angularVelocity.Sub(a.angularVelocity).Dot(t)
		lambda := j.angMass[i] * (j.angBias[i] - rel)
		if a.invMass > 0 {
			a.angularVelocity = a.angularVelocity.Sub(a.invInertiaW.Mul3x1(t.Mul(lambda)))
		}
		if b.invMass > 0 {
			b.angularVelocity = b.angularVelocity.Add(b.invInertiaW.Mul3x1(t.Mul(lambda)))
		}
	}
}
