package ecs

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ebiten-rally/physics"
)

func place(scene *Scene, name string, x float64, tags ...string) *GameObject {
	obj := NewGameObject(name)
	obj.SetPosition(mgl64.Vec3{x, 0, 0})
	scene.AddEntity(obj, tags...)
	return obj
}

func TestFindByName(t *testing.T) {
	scene := NewScene("test")
	a := place(scene, "crate", 0)
	b := place(scene, "crate", 1)
	place(scene, "ball", 2)

	assert.Same(t, a, scene.Find("crate"))
	assert.Equal(t, []*GameObject{a, b}, scene.FindAll("crate"))
	assert.Nil(t, scene.Find("missing"))
}

func TestTagQueriesFollowAddAndRemove(t *testing.T) {
	scene := NewScene("test")
	a := place(scene, "a", 0, "enemy")
	b := place(scene, "b", 1)

	assert.Same(t, a, scene.FindWithTag("enemy"))
	assert.Nil(t, scene.FindWithTag("player"))

	b.AddTag("enemy")
	assert.Equal(t, []*GameObject{a, b}, scene.FindGameObjectsWithTag("enemy"))

	a.RemoveTag("enemy")
	assert.Equal(t, []*GameObject{b}, scene.FindGameObjectsWithTag("enemy"))

	scene.RemoveEntity(b)
	assert.Empty(t, scene.FindGameObjectsWithTag("enemy"))

	// Tags set while outside a scene are indexed on join
	scene.AddEntity(b)
	assert.Same(t, b, scene.FindWithTag("enemy"))
}

func TestFindWithComponentsIsAnd(t *testing.T) {
	var journal []string
	scene := NewScene("test")
	onlyHealth := place(scene, "h", 0)
	AddComponent(onlyHealth, &health{Current: 1})
	both := place(scene, "both", 1)
	AddComponent(both, &health{Current: 2})
	AddComponent(both, newRecorder("r", &journal))

	hid := ComponentIDOf[*health]()
	rid := ComponentIDOf[*recorder]()

	assert.Same(t, onlyHealth, scene.FindWithComponents(hid))
	assert.Same(t, both, scene.FindWithComponents(hid, rid))
	assert.Equal(t, []*GameObject{onlyHealth, both}, scene.FindAllWithComponents(hid))
	assert.Equal(t, []*GameObject{both}, scene.FindAllWithComponents(hid, rid))
}

func TestFindObjectsOfType(t *testing.T) {
	scene := NewScene("test")
	a := place(scene, "a", 0)
	ha, _ := AddComponent(a, &health{Current: 1})
	b := place(scene, "b", 1)
	hb, _ := AddComponent(b, &health{Current: 2})

	got, owner := FindObjectOfType[*health](scene)
	assert.Same(t, ha, got)
	assert.Same(t, a, owner)
	assert.Equal(t, []*health{ha, hb}, FindObjectsOfType[*health](scene))

	none, owner := FindObjectOfType[*reader](scene)
	assert.Nil(t, none)
	assert.Nil(t, owner)
}

func TestFindWithinRadiusSortsByDistance(t *testing.T) {
	scene := NewScene("test")
	far := place(scene, "far", 4)
	tieA := place(scene, "tieA", -2)
	near := place(scene, "near", 1)
	tieB := place(scene, "tieB", 2)
	place(scene, "out", 10)

	got := scene.FindWithinRadius(mgl64.Vec3{}, 5)

	assert.Equal(t, []*GameObject{near, tieA, tieB, far}, got)
}

func TestFindClosest(t *testing.T) {
	scene := NewScene("test")
	place(scene, "a", 1)
	b := place(scene, "b", 5, "pickup")
	c := place(scene, "c", -3, "pickup")

	assert.Equal(t, "a", scene.FindClosest(mgl64.Vec3{}, "").Name())
	assert.Same(t, c, scene.FindClosest(mgl64.Vec3{}, "pickup"))
	assert.Same(t, b, scene.FindClosest(mgl64.Vec3{4, 0, 0}, "pickup"))
	assert.Nil(t, scene.FindClosest(mgl64.Vec3{}, "nothing"))
}

func TestFindByBody(t *testing.T) {
	world := physics.NewWorld()
	scene := NewScene("test", WithPhysics(world))
	obj := place(scene, "ball", 0)
	h, err := world.AddToEntity(obj, physics.BodySpec{Shape: physics.Sphere{Radius: 1}, Mass: 1})
	require.NoError(t, err)

	assert.Same(t, obj, scene.FindByBody(h))
	assert.Nil(t, scene.FindByBody(physics.BodyHandle{}))
}
