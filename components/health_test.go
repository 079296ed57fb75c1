package components

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ebiten-rally/ecs"
)

func TestHealthFirstAddWins(t *testing.T) {
	obj := ecs.NewGameObject("tank")
	ecs.AddComponent(obj, &Health{Current: 100})
	_, added := ecs.AddComponent(obj, &Health{Current: 50})

	assert.False(t, added)
	h, ok := ecs.GetComponent[*Health](obj)
	require.True(t, ok)
	assert.Equal(t, 100, h.Current)
}

func TestHealthAwakeFillsMax(t *testing.T) {
	scene := ecs.NewScene("test")
	a := ecs.NewGameObject("a")
	ha, _ := ecs.AddComponent(a, &Health{Current: 40})
	b := ecs.NewGameObject("b")
	hb, _ := ecs.AddComponent(b, &Health{Max: 60})
	scene.AddEntity(a)
	scene.AddEntity(b)

	scene.Update(0.016, 0.016)

	assert.Equal(t, 40, ha.Max)
	assert.Equal(t, 60, hb.Current)
}

func TestDamageToZeroDestroysOwner(t *testing.T) {
	scene := ecs.NewScene("test")
	obj := ecs.NewGameObject("crate")
	h, _ := ecs.AddComponent(obj, NewHealth(10))
	scene.AddEntity(obj)

	var damage []DamageEvent
	deaths := 0
	scene.Events().Subscribe(EventDamage, func(e ecs.Event) { damage = append(damage, e.(DamageEvent)) })
	scene.Events().Subscribe(EventDeath, func(ecs.Event) { deaths++ })

	assert.Equal(t, 6, h.Damage(4))
	assert.False(t, obj.Destroyed())

	h.Damage(100)
	h.Damage(1)

	assert.True(t, h.Dead())
	assert.True(t, obj.Destroyed())
	assert.Equal(t, 1, deaths)
	require.Len(t, damage, 2)
	assert.Equal(t, 0, damage[1].Health)
}

func TestKeepOnDeath(t *testing.T) {
	obj := ecs.NewGameObject("boss")
	h, _ := ecs.AddComponent(obj, &Health{Current: 5, Max: 5, KeepOnDeath: true})

	h.Damage(5)

	assert.True(t, h.Dead())
	assert.False(t, obj.Destroyed())
}

func TestHealCapsAtMax(t *testing.T) {
	h := NewHealth(10)
	h.Damage(5)
	assert.Equal(t, 10, h.Heal(50))
}
