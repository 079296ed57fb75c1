// Package render draws view sprites and the HUD with ebiten
package render

import (
	"fmt"
	"image/color"
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"ebiten-rally/components"
	"ebiten-rally/ecs"
	"ebiten-rally/systems"
	"ebiten-rally/view"
)

// Renderer handles drawing sprites to the screen
type Renderer struct {
	sprites *view.Registry
	log     *systems.MessageLog
	// GridSpacing is the distance between ground grid lines in world units
	GridSpacing float64
	// MessageLines is how many log lines the HUD shows
	MessageLines int

	track      []mgl64.Vec3
	trackWidth float64
}

// NewRenderer creates a new renderer
func NewRenderer(sprites *view.Registry, log *systems.MessageLog) *Renderer {
	return &Renderer{
		sprites:      sprites,
		log:          log,
		GridSpacing:  5,
		MessageLines: 6,
	}
}

// SetTrack sets the closed loop drawn under everything else
func (r *Renderer) SetTrack(waypoints []mgl64.Vec3, width float64) {
	r.track = waypoints
	r.trackWidth = width
}

// Draw renders the scene as seen by the first camera, then the HUD
func (r *Renderer) Draw(scene *ecs.Scene, screen *ebiten.Image) {
	// Clear the screen
	screen.Fill(color.RGBA{20, 24, 28, 255})

	w, h := screen.Bounds().Dx(), screen.Bounds().Dy()
	proj := view.Projection{Zoom: 16, Width: w, Height: h}
	if camera, _ := ecs.FindObjectOfType[*components.Camera](scene); camera != nil {
		proj.Center = camera.Position
		if camera.Zoom > 0 {
			proj.Zoom = camera.Zoom
		}
	}

	sprites := r.sprites.Live()
	for _, s := range sprites {
		if s.Kind == view.KindGround {
			r.drawGround(screen, proj, s.Color)
		}
	}
	r.drawTrack(screen, proj)
	for _, s := range sprites {
		switch s.Kind {
		case view.KindGround:
		case view.KindCircle:
			if !proj.Visible(s.Transform().Position, s.Radius) {
				continue
			}
			x, y := proj.ToScreen(s.Transform().Position)
			vector.DrawFilledCircle(screen, float32(x), float32(y), float32(s.Radius*proj.Zoom), s.Color, true)
		default:
			drawOutline(screen, proj, s.Footprint(), s.Color)
		}
	}

	r.drawHUD(scene, screen)
}

// drawGround draws grid lines over the visible part of the ground plane
func (r *Renderer) drawGround(screen *ebiten.Image, proj view.Projection, clr color.RGBA) {
	if r.GridSpacing <= 0 {
		return
	}
	topLeft := proj.ToWorld(0, 0)
	bottomRight := proj.ToWorld(float64(proj.Width), float64(proj.Height))
	step := r.GridSpacing
	for gx := math.Floor(topLeft.X()/step) * step; gx <= bottomRight.X(); gx += step {
		x, _ := proj.ToScreen(mgl64.Vec3{gx, 0, 0})
		vector.StrokeLine(screen, float32(x), 0, float32(x), float32(proj.Height), 1, clr, false)
	}
	for gz := math.Floor(topLeft.Z()/step) * step; gz <= bottomRight.Z(); gz += step {
		_, y := proj.ToScreen(mgl64.Vec3{0, 0, gz})
		vector.StrokeLine(screen, 0, float32(y), float32(proj.Width), float32(y), 1, clr, false)
	}
}

// drawTrack draws the course as wide segments with a round cap at every waypoint
func (r *Renderer) drawTrack(screen *ebiten.Image, proj view.Projection) {
	n := len(r.track)
	if n < 2 {
		return
	}
	surface := color.RGBA{70, 66, 60, 255}
	width := float32(r.trackWidth * proj.Zoom)
	for i, a := range r.track {
		b := r.track[(i+1)%n]
		ax, ay := proj.ToScreen(a)
		bx, by := proj.ToScreen(b)
		vector.StrokeLine(screen, float32(ax), float32(ay), float32(bx), float32(by), width, surface, true)
		vector.DrawFilledCircle(screen, float32(ax), float32(ay), width/2, surface, true)
	}
	// Start line
	a, b := r.track[0], r.track[1]
	dir := b.Sub(a)
	dir[1] = 0
	if dir.Len() == 0 {
		return
	}
	side := mgl64.Vec3{-dir.Z(), 0, dir.X()}.Normalize().Mul(r.trackWidth / 2)
	lx, ly := proj.ToScreen(a.Add(side))
	rx, ry := proj.ToScreen(a.Sub(side))
	vector.StrokeLine(screen, float32(lx), float32(ly), float32(rx), float32(ry), 3, color.White, false)
}

// drawHUD draws player status and the message log
func (r *Renderer) drawHUD(scene *ecs.Scene, screen *ebiten.Image) {
	y := 4
	if player := scene.FindWithTag("player"); player != nil {
		status := player.Name()
		if v, ok := ecs.GetComponent[*components.Vehicle](player); ok {
			status += fmt.Sprintf("  %5.1f km/h", v.Speed()*3.6)
		}
		if health, ok := ecs.GetComponent[*components.Health](player); ok {
			status += fmt.Sprintf("  HP %d/%d", health.Current, health.Max)
		}
		if lap, ok := ecs.GetComponent[*components.LapTimer](player); ok {
			status += "  " + lapStatus(lap)
		}
		ebitenutil.DebugPrintAt(screen, status, 8, y)
		y += 16
	}
	ebitenutil.DebugPrintAt(screen, fmt.Sprintf("TPS %.0f  FPS %.0f  objects %d", ebiten.ActualTPS(), ebiten.ActualFPS(), scene.Len()), 8, y)

	if r.log == nil {
		return
	}
	base := screen.Bounds().Dy() - 8 - 16*r.MessageLines
	for i, msg := range r.log.RecentMessages(r.MessageLines) {
		line := base + 16*(r.MessageLines-1-i)
		// The debug font is white, so a colored marker carries the message type
		vector.DrawFilledRect(screen, 8, float32(line+4), 6, 6, msg.Color(), false)
		ebitenutil.DebugPrintAt(screen, msg.Text, 20, line)
	}
}

func lapStatus(lap *components.LapTimer) string {
	current := lap.Completed + 1
	if lap.Laps > 0 && current > lap.Laps {
		current = lap.Laps
	}
	status := fmt.Sprintf("Lap %d", current)
	if lap.Laps > 0 {
		status += fmt.Sprintf("/%d", lap.Laps)
	}
	status += fmt.Sprintf("  %.1fs", lap.Current)
	if lap.Best > 0 {
		status += fmt.Sprintf("  best %.2fs", lap.Best)
	}
	return status
}
