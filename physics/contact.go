package physics

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Contact is the public description of a touching pair.
// Normal points from B towards A.
type Contact struct {
	A, B   BodyHandle
	Point  mgl64.Vec3
	Normal mgl64.Vec3
	Depth  float64
	// Speed is how fast the pair was closing along the normal before the solver ran
	Speed float64
	// Impulse is the normal impulse the solver applied in the reporting sub-step
	Impulse float64
}

type contact struct {
	a, b   *Body
	point  mgl64.Vec3
	normal mgl64.Vec3
	depth  float64

	rA, rB    mgl64.Vec3
	t1, t2    mgl64.Vec3
	massN     float64
	massT1    float64
	massT2    float64
	bias      float64
	friction  float64
	impulseN  float64
	impulseT1 float64
	impulseT2 float64
	approach  float64
}

func (c *contact) public() Contact {
	return Contact{
		A: c.a.handle, B: c.b.handle,
		Point: c.point, Normal: c.normal, Depth: c.depth,
		Speed: c.approach, Impulse: c.impulseN,
	}
}

// detectContacts tests every pair; there is no broadphase beyond a bounding sphere check
func (w *World) detectContacts(out []contact) []contact {
	bodies := w.Bodies()
	for i := 0; i < len(bodies); i++ {
		for j := i + 1; j < len(bodies); j++ {
			a, b := bodies[i], bodies[j]
			if !a.IsDynamic() && !b.IsDynamic() {
				continue
			}
			if w.noCollide[makePairKey(a.handle, b.handle)] > 0 {
				continue
			}
			if !boundsOverlap(a, b) {
				continue
			}
			out = collide(a, b, out)
		}
	}
	return out
}

func boundsOverlap(a, b *Body) bool {
	ra, rb := a.shape.radius(), b.shape.radius()
	if math.IsInf(ra, 1) || math.IsInf(rb, 1) {
		return true
	}
	d := ra + rb
	return a.position.Sub(b.position).LenSqr() <= d*d
}

// collide appends contacts between a and b with normals pointing from b to a
func collide(a, b *Body, out []contact) []contact {
	ka, kb := a.shape.Kind(), b.shape.Kind()

	// Put the plane, then the more complex shape, in the b slot
	if ka == ShapePlane || (kb != ShapePlane && ka > kb) {
		n := len(out)
		return flip(collide(b, a, out), n)
	}

	switch kb {
	case ShapePlane:
		return collidePlane(a, b, out)
	case ShapeSphere:
		// a is a box or sphere here
		if ka == ShapeSphere {
			return collideSpheres(a, b, a.shape.(Sphere).Radius, b.shape.(Sphere).Radius, out)
		}
		n := len(out)
		return flip(collideSphereBox(b, b.shape.(Sphere).Radius, a, out), n)
	case ShapeCylinder:
		// Cylinders against anything but a plane are treated as a sphere of the cylinder radius
		rb := b.shape.(Cylinder).Radius
		switch ka {
		case ShapeSphere:
			return collideSpheres(a, b, a.shape.(Sphere).Radius, rb, out)
		case ShapeCylinder:
			return collideSpheres(a, b, a.shape.(Cylinder).Radius, rb, out)
		case ShapeBox:
			n := len(out)
			return flip(collideSphereBox(b, rb, a, out), n)
		}
	case ShapeBox:
		if ka == ShapeBox {
			return collideBoxes(a, b, out)
		}
	}
	return out
}

// flip swaps the roles of a and b for contacts appended after index n
func flip(out []contact, n int) []contact {
	for i := n; i < len(out); i++ {
		out[i].a, out[i].b = out[i].b, out[i].a
		out[i].normal = out[i].normal.Mul(-1)
	}
	return out
}

func collidePlane(a, plane *Body, out []contact) []contact {
	n := plane.orientation.Rotate(mgl64.Vec3{0, 1, 0})
	origin := plane.position
	add := func(p mgl64.Vec3) {
		d := p.Sub(origin).Dot(n)
		if d < 0 {
			out = append(out, contact{a: a, b: plane, point: p, normal: n, depth: -d})
		}
	}

	switch s := a.shape.(type) {
	case Sphere:
		add(a.position.Sub(n.Mul(s.Radius)))
	case Box:
		for _, corner := range boxCorners(a, s) {
			add(corner)
		}
	case Cylinder:
		axis := a.orientation.Rotate(mgl64.Vec3{0, 1, 0})
		down := n.Mul(-1)
		radial := down.Sub(axis.Mul(down.Dot(axis)))
		for _, side := range []float64{-1, 1} {
			rim := a.position.Add(axis.Mul(side * s.HalfHeight))
			if radial.Len() > 1e-6 {
				// Deepest point of each rim
				add(rim.Add(radial.Normalize().Mul(s.Radius)))
				continue
			}
			// Lying flat on a cap: sample the rim
			t1, t2 := tangentBasis(axis)
			for _, dir := range []mgl64.Vec3{t1, t1.Mul(-1), t2, t2.Mul(-1)} {
				add(rim.Add(dir.Mul(s.Radius)))
			}
		}
	}
	return out
}

func collideSpheres(a, b *Body, ra, rb float64, out []contact) []contact {
	delta := a.position.Sub(b.position)
	dist := delta.Len()
	if dist >= ra+rb {
		return out
	}
	n := mgl64.Vec3{0, 1, 0}
	if dist > 1e-9 {
		n = delta.Mul(1 / dist)
	}
	return append(out, contact{
		a:      a,
		b:      b,
		point:  b.position.Add(n.Mul(rb)),
		normal: n,
		depth:  ra + rb - dist,
	})
}

// collideSphereBox appends a contact with the sphere as a and the box as b
func collideSphereBox(sphere *Body, radius float64, box *Body, out []contact) []contact {
	s := box.shape.(Box)
	inv := box.orientation.Inverse()
	local := inv.Rotate(sphere.position.Sub(box.position))
	he := s.HalfExtents

	closest := mgl64.Vec3{
		clamp(local.X(), -he.X(), he.X()),
		clamp(local.Y(), -he.Y(), he.Y()),
		clamp(local.Z(), -he.Z(), he.Z()),
	}
	delta := local.Sub(closest)
	dist := delta.Len()

	var normal mgl64.Vec3
	var depth float64
	if dist > 1e-9 {
		if dist >= radius {
			return out
		}
		normal = delta.Mul(1 / dist)
		depth = radius - dist
	} else {
		// Centre inside the box: leave through the nearest face
		axis, sign, pen := nearestFace(local, he)
		normal = mgl64.Vec3{}
		normal[axis] = sign
		closest[axis] = sign * he[axis]
		depth = pen + radius
	}
	return append(out, contact{
		a:      sphere,
		b:      box,
		point:  box.PointToWorld(closest),
		normal: box.orientation.Rotate(normal),
		depth:  depth,
	})
}

// collideBoxes tests the corners of each box against the other
func collideBoxes(a, b *Body, out []contact) []contact {
	sa, sb := a.shape.(Box), b.shape.(Box)
	out = cornersInside(a, sa, b, sb, out, false)
	return cornersInside(b, sb, a, sa, out, true)
}

func cornersInside(src *Body, ss Box, dst *Body, ds Box, out []contact, swap bool) []contact {
	inv := dst.orientation.Inverse()
	he := ds.HalfExtents
	for _, corner := range boxCorners(src, ss) {
		local := inv.Rotate(corner.Sub(dst.position))
		if math.Abs(local.X()) >= he.X() || math.Abs(local.Y()) >= he.Y() || math.Abs(local.Z()) >= he.Z() {
			continue
		}
		axis, sign, pen := nearestFace(local, he)
		n := mgl64.Vec3{}
		n[axis] = sign
		// Outward normal of dst, which points from dst towards src
		normal := dst.orientation.Rotate(n)
		c := contact{a: src, b: dst, point: corner, normal: normal, depth: pen}
		if swap {
			c.a, c.b = dst, src
			c.normal = normal.Mul(-1)
		}
		out = append(out, c)
	}
	return out
}

// nearestFace finds the box face closest to an interior local point
func nearestFace(local, he mgl64.Vec3) (axis int, sign, pen float64) {
	pen = math.Inf(1)
	for i := 0; i < 3; i++ {
		d := he[i] - math.Abs(local[i])
		if d < pen {
			pen = d
			axis = i
			sign = 1
			if local[i] < 0 {
				sign = -1
			}
		}
	}
	return axis, sign, pen
}

func boxCorners(b *Body, s Box) [8]mgl64.Vec3 {
	var corners [8]mgl64.Vec3
	he := s.HalfExtents
	i := 0
	for _, x := range []float64{-1, 1} {
		for _, y := range []float64{-1, 1} {
			for _, z := range []float64{-1, 1} {
				corners[i] = b.PointToWorld(mgl64.Vec3{x * he.X(), y * he.Y(), z * he.Z()})
				i++
			}
		}
	}
	return corners
}

func tangentBasis(n mgl64.Vec3) (mgl64.Vec3, mgl64.Vec3) {
	ref := mgl64.Vec3{1, 0, 0}
	if math.Abs(n.X()) > 0.9 {
		ref = mgl64.Vec3{0, 1, 0}
	}
	t1 := n.Cross(ref).Normalize()
	t2 := n.Cross(t1)
	return t1, t2
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
