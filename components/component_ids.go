package components

import (
	"ebiten-rally/ecs"
)

// Component IDs for the bundled components, for use with Scene.FindWithComponents
var (
	HealthID    = ecs.ComponentIDOf[*Health]()
	VehicleID   = ecs.ComponentIDOf[*Vehicle]()
	DriveID     = ecs.ComponentIDOf[*Drive]()
	AutoDriveID = ecs.ComponentIDOf[*AutoDrive]()
	LifetimeID  = ecs.ComponentIDOf[*Lifetime]()
	CameraID    = ecs.ComponentIDOf[*Camera]()
	LapTimerID  = ecs.ComponentIDOf[*LapTimer]()
)
