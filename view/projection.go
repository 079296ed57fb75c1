package view

import (
	"github.com/go-gl/mathgl/mgl64"
)

// Projection maps the ground plane onto the screen, looking straight down with
// world -Z pointing up the screen
type Projection struct {
	Center        mgl64.Vec3
	Zoom          float64 // Pixels per world unit
	Width, Height int
}

// ToScreen returns the pixel position of a world point
func (p Projection) ToScreen(w mgl64.Vec3) (float64, float64) {
	x := (w.X()-p.Center.X())*p.Zoom + float64(p.Width)/2
	y := (w.Z()-p.Center.Z())*p.Zoom + float64(p.Height)/2
	return x, y
}

// ToWorld returns the ground point under a pixel
func (p Projection) ToWorld(x, y float64) mgl64.Vec3 {
	return mgl64.Vec3{
		(x-float64(p.Width)/2)/p.Zoom + p.Center.X(),
		0,
		(y-float64(p.Height)/2)/p.Zoom + p.Center.Z(),
	}
}

// Visible reports whether a circle of radius r around w overlaps the screen
func (p Projection) Visible(w mgl64.Vec3, r float64) bool {
	x, y := p.ToScreen(w)
	pr := r * p.Zoom
	return x+pr >= 0 && y+pr >= 0 && x-pr <= float64(p.Width) && y-pr <= float64(p.Height)
}
