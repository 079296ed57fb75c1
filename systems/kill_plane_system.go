package systems

import (
	"github.com/go-gl/mathgl/mgl64"

	"ebiten-rally/components"
	"ebiten-rally/ecs"
	"ebiten-rally/geom"
)

// KillPlaneSystem removes objects that fall below MinY. Objects carrying the
// respawn tag and a Vehicle are put back at Spawn instead.
type KillPlaneSystem struct {
	MinY       float64
	Spawn      mgl64.Vec3
	RespawnTag string
}

// NewKillPlaneSystem creates a kill plane at minY
func NewKillPlaneSystem(minY float64, spawn mgl64.Vec3) *KillPlaneSystem {
	return &KillPlaneSystem{MinY: minY, Spawn: spawn, RespawnTag: "player"}
}

// Update checks every object's height
func (s *KillPlaneSystem) Update(scene *ecs.Scene, dt float64) {
	for _, obj := range scene.Objects() {
		if obj.Destroyed() || obj.Parent() != nil {
			continue
		}
		pos := obj.Position()
		if pos.Y() >= s.MinY {
			continue
		}
		event := FellOutEvent{EntityID: obj.ID(), Name: obj.Name(), Position: pos}
		if vehicle, ok := ecs.GetComponent[*components.Vehicle](obj); ok && obj.HasTag(s.RespawnTag) {
			obj.Teleport(geom.At(s.Spawn.X(), s.Spawn.Y(), s.Spawn.Z()))
			vehicle.Reset()
			event.Respawned = true
		} else {
			obj.Destroy()
		}
		scene.Logger().Info().Str("entity", event.Name).Bool("respawned", event.Respawned).Msg("Object fell out of the world")
		scene.EmitEvent(event)
	}
}
