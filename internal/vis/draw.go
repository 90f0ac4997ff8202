package vis

import (
	"image/color"
	"math"

	"gioui.org/f32"
	"gioui.org/layout"
	"gioui.org/op/clip"
	"gioui.org/op/paint"

	"github.com/npotteig/rtreach-go/internal/geom"
	"github.com/npotteig/rtreach-go/internal/obstacle"
)

// Display colors.
var (
	colorBackground = color.NRGBA{R: 30, G: 30, B: 35, A: 255}
	colorObstacle   = color.NRGBA{R: 220, G: 90, B: 80, A: 255}
	colorWall       = color.NRGBA{R: 150, G: 150, B: 160, A: 255}
	colorPath       = color.NRGBA{R: 90, G: 110, B: 130, A: 200}
	colorTrajectory = color.NRGBA{R: 100, G: 200, B: 255, A: 255}
	colorTube       = color.NRGBA{R: 80, G: 200, B: 120, A: 70}
	colorTubeEdge   = color.NRGBA{R: 80, G: 200, B: 120, A: 180}
	colorVehicle    = color.NRGBA{R: 255, G: 255, B: 100, A: 255}
)

func drawFilledRect(gtx layout.Context, cam *Camera, xmin, xmax, ymin, ymax float64, col color.NRGBA) {
	x1, y1 := cam.WorldToScreen(xmin, ymax)
	x2, y2 := cam.WorldToScreen(xmax, ymin)

	var path clip.Path
	path.Begin(gtx.Ops)
	path.MoveTo(f32.Pt(x1, y1))
	path.LineTo(f32.Pt(x2, y1))
	path.LineTo(f32.Pt(x2, y2))
	path.LineTo(f32.Pt(x1, y2))
	path.Close()

	paint.FillShape(gtx.Ops, col, clip.Outline{Path: path.End()}.Op())
}

func drawRectOutline(gtx layout.Context, cam *Camera, xmin, xmax, ymin, ymax float64, width float32, col color.NRGBA) {
	x1, y1 := cam.WorldToScreen(xmin, ymax)
	x2, y2 := cam.WorldToScreen(xmax, ymin)
	drawScreenLine(gtx, x1, y1, x2, y1, width, col)
	drawScreenLine(gtx, x2, y1, x2, y2, width, col)
	drawScreenLine(gtx, x2, y2, x1, y2, width, col)
	drawScreenLine(gtx, x1, y2, x1, y1, width, col)
}

func drawScreenLine(gtx layout.Context, x1, y1, x2, y2, width float32, col color.NRGBA) {
	dx := x2 - x1
	dy := y2 - y1
	length := float32(math.Sqrt(float64(dx*dx + dy*dy)))
	if length < 0.1 {
		return
	}
	dx /= length
	dy /= length
	px := -dy * width / 2
	py := dx * width / 2

	var path clip.Path
	path.Begin(gtx.Ops)
	path.MoveTo(f32.Pt(x1+px, y1+py))
	path.LineTo(f32.Pt(x2+px, y2+py))
	path.LineTo(f32.Pt(x2-px, y2-py))
	path.LineTo(f32.Pt(x1-px, y1-py))
	path.Close()

	paint.FillShape(gtx.Ops, col, clip.Outline{Path: path.End()}.Op())
}

func drawWorldLine(gtx layout.Context, cam *Camera, x1, y1, x2, y2 float64, width float32, col color.NRGBA) {
	sx1, sy1 := cam.WorldToScreen(x1, y1)
	sx2, sy2 := cam.WorldToScreen(x2, y2)
	drawScreenLine(gtx, sx1, sy1, sx2, sy2, width, col)
}

func drawFilledCircle(gtx layout.Context, cx, cy, radius float32, col color.NRGBA) {
	var path clip.Path
	path.Begin(gtx.Ops)
	path.Move(f32.Pt(cx+radius, cy))

	segments := 12
	for i := 1; i <= segments; i++ {
		angle := float64(i) * 2 * math.Pi / float64(segments)
		x := cx + radius*float32(math.Cos(angle))
		y := cy + radius*float32(math.Sin(angle))
		path.Line(f32.Pt(x-path.Pos().X, y-path.Pos().Y))
	}
	path.Close()

	paint.FillShape(gtx.Ops, col, clip.Outline{Path: path.End()}.Op())
}

func drawObstacles(gtx layout.Context, cam *Camera, boxes []obstacle.Box, col color.NRGBA) {
	for _, b := range boxes {
		drawFilledRect(gtx, cam, b.X.Min, b.X.Max, b.Y.Min, b.Y.Max, col)
	}
}

type timedBox struct {
	time float64
	rect geom.Rect
}

func drawTube(gtx layout.Context, cam *Camera, tube []timedBox, upTo float64) {
	for _, tb := range tube {
		if tb.time > upTo {
			break
		}
		drawFilledRect(gtx, cam, tb.rect.Dims[0].Min, tb.rect.Dims[0].Max, tb.rect.Dims[1].Min, tb.rect.Dims[1].Max, colorTube)
		drawRectOutline(gtx, cam, tb.rect.Dims[0].Min, tb.rect.Dims[0].Max, tb.rect.Dims[1].Min, tb.rect.Dims[1].Max, 1, colorTubeEdge)
	}
}
