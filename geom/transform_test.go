package geom

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
)

func TestIdentity(t *testing.T) {
	tr := Identity()
	assert.Equal(t, mgl64.Vec3{}, tr.Position)
	assert.Equal(t, mgl64.Vec3{1, 1, 1}, tr.Scale)
	assert.True(t, tr.Rotation.ApproxEqual(mgl64.QuatIdent()))
}

func TestAxes(t *testing.T) {
	tr := At(1, 2, 3)
	assert.True(t, tr.Forward().ApproxEqual(mgl64.Vec3{0, 0, -1}))
	assert.True(t, tr.Right().ApproxEqual(mgl64.Vec3{1, 0, 0}))
	assert.True(t, tr.Up().ApproxEqual(mgl64.Vec3{0, 1, 0}))
	assert.InDelta(t, 0, tr.Yaw(), 1e-9)

	tr.Rotation = mgl64.QuatRotate(math.Pi/2, mgl64.Vec3{0, 1, 0})
	assert.True(t, tr.Forward().ApproxEqualThreshold(mgl64.Vec3{-1, 0, 0}, 1e-9))
	assert.InDelta(t, math.Pi/2, tr.Yaw(), 1e-9)
}

func TestTransformPoint(t *testing.T) {
	tr := At(10, 0, 0)
	tr.Rotation = mgl64.QuatRotate(math.Pi/2, mgl64.Vec3{0, 1, 0})
	p := tr.TransformPoint(mgl64.Vec3{1, 0, 0})
	assert.True(t, p.ApproxEqualThreshold(mgl64.Vec3{10, 0, -1}, 1e-9), "got %v", p)
}

func TestFromTo(t *testing.T) {
	cases := []struct {
		name string
		a, b mgl64.Vec3
	}{
		{"same", mgl64.Vec3{0, 1, 0}, mgl64.Vec3{0, 1, 0}},
		{"perpendicular", mgl64.Vec3{0, 1, 0}, mgl64.Vec3{1, 0, 0}},
		{"opposite", mgl64.Vec3{0, 1, 0}, mgl64.Vec3{0, -1, 0}},
		{"unnormalized", mgl64.Vec3{0, 0, 3}, mgl64.Vec3{2, 0, 0}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			q := FromTo(tc.a, tc.b)
			got := q.Rotate(tc.a.Normalize())
			assert.True(t, got.ApproxEqualThreshold(tc.b.Normalize(), 1e-9), "got %v", got)
		})
	}
}
