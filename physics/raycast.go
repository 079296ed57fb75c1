package physics

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// RaycastResult describes the nearest hit along a segment
type RaycastResult struct {
	Hit      bool
	Body     BodyHandle
	Point    mgl64.Vec3
	Normal   mgl64.Vec3
	Distance float64
}

// Raycast returns the nearest body crossed by the segment from -> to.
// Bodies listed in skip are ignored, which lets a wheel ray pass through its own chassis.
func (w *World) Raycast(from, to mgl64.Vec3, skip ...BodyHandle) RaycastResult {
	seg := to.Sub(from)
	length := seg.Len()
	if length < 1e-12 {
		return RaycastResult{}
	}
	dir := seg.Mul(1 / length)

	best := RaycastResult{Distance: math.Inf(1)}
	w.bodies.each(func(b *Body) {
		for _, s := range skip {
			if s == b.handle {
				return
			}
		}
		t, n, ok := rayBody(b, from, dir, length)
		if !ok || t >= best.Distance {
			return
		}
		best = RaycastResult{
			Hit:      true,
			Body:     b.handle,
			Point:    from.Add(dir.Mul(t)),
			Normal:   n,
			Distance: t,
		}
	})
	if !best.Hit {
		return RaycastResult{}
	}
	return best
}

// rayBody intersects a unit-direction ray with a body, returning distance and world normal
func rayBody(b *Body, origin, dir mgl64.Vec3, maxDist float64) (float64, mgl64.Vec3, bool) {
	inv := b.orientation.Inverse()
	lo := inv.Rotate(origin.Sub(b.position))
	ld := inv.Rotate(dir)

	var t float64
	var n mgl64.Vec3
	var ok bool
	switch s := b.shape.(type) {
	case Sphere:
		t, n, ok = raySphere(lo, ld, s.Radius)
	case Box:
		t, n, ok = rayBox(lo, ld, s.HalfExtents)
	case Cylinder:
		t, n, ok = rayCylinder(lo, ld, s.Radius, s.HalfHeight)
	case Plane:
		t, n, ok = rayPlane(lo, ld)
	}
	if !ok || t < 0 || t > maxDist {
		return 0, mgl64.Vec3{}, false
	}
	return t, b.orientation.Rotate(n), true
}

func raySphere(o, d mgl64.Vec3, r float64) (float64, mgl64.Vec3, bool) {
	b := o.Dot(d)
	c := o.Dot(o) - r*r
	disc := b*b - c
	if disc < 0 {
		return 0, mgl64.Vec3{}, false
	}
	sq := math.Sqrt(disc)
	t := -b - sq
	if t < 0 {
		// Origin inside the sphere: report the exit point
		t = -b + sq
	}
	if t < 0 {
		return 0, mgl64.Vec3{}, false
	}
	return t, o.Add(d.Mul(t)).Normalize(), true
}

func rayBox(o, d, he mgl64.Vec3) (float64, mgl64.Vec3, bool) {
	tmin, tmax := math.Inf(-1), math.Inf(1)
	axis, sign := -1, 0.0
	for i := 0; i < 3; i++ {
		if math.Abs(d[i]) < 1e-12 {
			if o[i] < -he[i] || o[i] > he[i] {
				return 0, mgl64.Vec3{}, false
			}
			continue
		}
		t1 := (-he[i] - o[i]) / d[i]
		t2 := (he[i] - o[i]) / d[i]
		s := -1.0
		if t1 > t2 {
			t1, t2 = t2, t1
			s = 1
		}
		if t1 > tmin {
			tmin = t1
			axis, sign = i, s
		}
		tmax = math.Min(tmax, t2)
		if tmin > tmax {
			return 0, mgl64.Vec3{}, false
		}
	}
	if axis < 0 || tmin < 0 {
		return 0, mgl64.Vec3{}, false
	}
	var n mgl64.Vec3
	n[axis] = sign
	return tmin, n, true
}

func rayCylinder(o, d mgl64.Vec3, r, hh float64) (float64, mgl64.Vec3, bool) {
	best := math.Inf(1)
	var normal mgl64.Vec3

	// Side surface
	a := d.X()*d.X() + d.Z()*d.Z()
	if a > 1e-12 {
		b := o.X()*d.X() + o.Z()*d.Z()
		c := o.X()*o.X() + o.Z()*o.Z() - r*r
		disc := b*b - a*c
		if disc >= 0 {
			t := (-b - math.Sqrt(disc)) / a
			if t >= 0 {
				p := o.Add(d.Mul(t))
				if math.Abs(p.Y()) <= hh {
					best = t
					normal = mgl64.Vec3{p.X(), 0, p.Z()}.Normalize()
				}
			}
		}
	}

	// Caps
	if math.Abs(d.Y()) > 1e-12 {
		for _, y := range []float64{-hh, hh} {
			t := (y - o.Y()) / d.Y()
			if t < 0 || t >= best {
				continue
			}
			p := o.Add(d.Mul(t))
			if p.X()*p.X()+p.Z()*p.Z() <= r*r {
				best = t
				normal = mgl64.Vec3{0, math.Copysign(1, y), 0}
			}
		}
	}
	if math.IsInf(best, 1) {
		return 0, mgl64.Vec3{}, false
	}
	return best, normal, true
}

func rayPlane(o, d mgl64.Vec3) (float64, mgl64.Vec3, bool) {
	// Only the front face is solid
	if o.Y() < 0 || d.Y() >= 0 {
		return 0, mgl64.Vec3{}, false
	}
	return -o.Y() / d.Y(), mgl64.Vec3{0, 1, 0}, true
}
