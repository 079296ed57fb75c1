package geom

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Transform is the position, rotation and scale of an object in world space
type Transform struct {
	Position mgl64.Vec3 `json:"position" msgpack:"position"`
	Rotation mgl64.Quat `json:"rotation" msgpack:"rotation"`
	Scale    mgl64.Vec3 `json:"scale" msgpack:"scale"`
}

// Identity returns a transform at the origin with no rotation and unit scale
func Identity() Transform {
	return Transform{
		Rotation: mgl64.QuatIdent(),
		Scale:    mgl64.Vec3{1, 1, 1},
	}
}

// At returns an identity transform moved to the given position
func At(x, y, z float64) Transform {
	t := Identity()
	t.Position = mgl64.Vec3{x, y, z}
	return t
}

// Forward returns the local -Z axis in world space
func (t Transform) Forward() mgl64.Vec3 {
	return t.Rotation.Rotate(mgl64.Vec3{0, 0, -1})
}

// Right returns the local +X axis in world space
func (t Transform) Right() mgl64.Vec3 {
	return t.Rotation.Rotate(mgl64.Vec3{1, 0, 0})
}

// Up returns the local +Y axis in world space
func (t Transform) Up() mgl64.Vec3 {
	return t.Rotation.Rotate(mgl64.Vec3{0, 1, 0})
}

// TransformPoint maps a point from local space to world space, ignoring scale
func (t Transform) TransformPoint(local mgl64.Vec3) mgl64.Vec3 {
	return t.Position.Add(t.Rotation.Rotate(local))
}

// Yaw returns the heading angle around +Y in radians
func (t Transform) Yaw() float64 {
	f := t.Forward()
	return math.Atan2(-f.X(), -f.Z())
}

// ApproxEqual compares two transforms with the given tolerance
func (t Transform) ApproxEqual(o Transform, eps float64) bool {
	return t.Position.ApproxEqualThreshold(o.Position, eps) &&
		t.Rotation.ApproxEqualThreshold(o.Rotation, eps) &&
		t.Scale.ApproxEqualThreshold(o.Scale, eps)
}

// FromTo returns the shortest rotation taking direction a onto direction b
func FromTo(a, b mgl64.Vec3) mgl64.Quat {
	a = a.Normalize()
	b = b.Normalize()
	d := a.Dot(b)
	if d > 1-1e-9 {
		return mgl64.QuatIdent()
	}
	if d < -1+1e-9 {
		// Opposite directions, rotate half a turn around any perpendicular axis
		axis := mgl64.Vec3{1, 0, 0}.Cross(a)
		if axis.Len() < 1e-6 {
			axis = mgl64.Vec3{0, 1, 0}.Cross(a)
		}
		return mgl64.QuatRotate(math.Pi, axis.Normalize())
	}
	return mgl64.QuatBetweenVectors(a, b)
}
