package screens

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

// Debug font metrics
const (
	charWidth  = 6
	lineHeight = 16
)

// panel is a framed box centered on the screen
type panel struct {
	width, height int
	background    color.Color
	frame         color.Color
}

func newPanel(width, height int) panel {
	return panel{
		width:      width,
		height:     height,
		background: color.RGBA{0, 0, 0, 200}, // Semi-transparent black
		frame:      color.White,
	}
}

// draw paints the panel and returns its top-left corner
func (p panel) draw(screen *ebiten.Image) (x, y int) {
	sw, sh := screen.Bounds().Dx(), screen.Bounds().Dy()
	x = (sw - p.width) / 2
	y = (sh - p.height) / 2
	fx, fy, fw, fh := float32(x), float32(y), float32(p.width), float32(p.height)
	vector.DrawFilledRect(screen, fx, fy, fw, fh, p.background, false)
	vector.StrokeRect(screen, fx, fy, fw, fh, 2, p.frame, false)
	return x, y
}

// centered prints text horizontally centered inside width, starting at x
func centered(screen *ebiten.Image, text string, x, width, y int) {
	ebitenutil.DebugPrintAt(screen, text, x+(width-len(text)*charWidth)/2, y)
}

// printColored prints debug text tinted with clr
func printColored(screen *ebiten.Image, text string, x, y int, clr color.Color) {
	line := ebiten.NewImage(len(text)*charWidth+2, lineHeight)
	defer line.Deallocate()
	ebitenutil.DebugPrintAt(line, text, 0, 0)
	op := &ebiten.DrawImageOptions{}
	op.ColorScale.ScaleWithColor(clr)
	op.GeoM.Translate(float64(x), float64(y))
	screen.DrawImage(line, op)
}
