package render

import (
	"image/color"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"ebiten-rally/view"
)

var whiteImage = func() *ebiten.Image {
	img := ebiten.NewImage(3, 3)
	img.Fill(color.White)
	return img
}()

// whiteSubImage avoids sampling the image edges when filling triangles
var whiteSubImage = whiteImage.SubImage(whiteImage.Bounds().Inset(1)).(*ebiten.Image)

// drawOutline fills a ground-plane polygon at half alpha and strokes its edges
func drawOutline(screen *ebiten.Image, proj view.Projection, corners []mgl64.Vec3, clr color.RGBA) {
	if len(corners) < 3 {
		return
	}
	var path vector.Path
	points := make([][2]float32, len(corners))
	for i, c := range corners {
		x, y := proj.ToScreen(c)
		points[i] = [2]float32{float32(x), float32(y)}
		if i == 0 {
			path.MoveTo(points[i][0], points[i][1])
		} else {
			path.LineTo(points[i][0], points[i][1])
		}
	}
	path.Close()

	vs, is := path.AppendVerticesAndIndicesForFilling(nil, nil)
	r, g, b, a := float32(clr.R)/0xff, float32(clr.G)/0xff, float32(clr.B)/0xff, float32(clr.A)/0xff/2
	for i := range vs {
		vs[i].SrcX, vs[i].SrcY = 1, 1
		vs[i].ColorR, vs[i].ColorG, vs[i].ColorB, vs[i].ColorA = r, g, b, a
	}
	screen.DrawTriangles(vs, is, whiteSubImage, &ebiten.DrawTrianglesOptions{AntiAlias: true})

	for i := range points {
		p, q := points[i], points[(i+1)%len(points)]
		vector.StrokeLine(screen, p[0], p[1], q[0], q[1], 1.5, clr, true)
	}
}
