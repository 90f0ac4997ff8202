// Package vis implements a Gio-based replay viewer for experiment runs:
// obstacles, waypoint path, driven trajectory, and the verified reach tube
// of the active control step.
//
// Keys: space plays/pauses, arrows step, Home rewinds, R refits the view.
package vis

import (
	"gioui.org/app"
	"gioui.org/io/event"
	"gioui.org/io/key"
	"gioui.org/layout"
	"gioui.org/op"
	"gioui.org/op/paint"
)

// App is the replay application.
type App struct {
	scene    *Scene
	playback *Playback
	camera   *Camera
	fitted   bool
}

// NewApp builds the viewer for a loaded scene.
func NewApp(scene *Scene) *App {
	return &App{
		scene:    scene,
		playback: NewPlayback(scene.Duration()),
		camera:   NewCamera(),
	}
}

// Run drives the window event loop until the window closes.
func (a *App) Run(w *app.Window) error {
	var ops op.Ops
	tag := new(int)

	for {
		switch e := w.Event().(type) {
		case app.DestroyEvent:
			return e.Err

		case app.FrameEvent:
			gtx := app.NewContext(&ops, e)

			for {
				ev, ok := gtx.Event(key.Filter{Focus: tag})
				if !ok {
					break
				}
				if ke, ok := ev.(key.Event); ok && ke.State == key.Press {
					a.handleKey(ke)
				}
			}
			event.Op(gtx.Ops, tag)

			a.layout(gtx)
			e.Frame(gtx.Ops)

			if a.playback.Playing {
				a.playback.Advance()
				w.Invalidate()
			}
		}
	}
}

func (a *App) handleKey(e key.Event) {
	switch e.Name {
	case key.NameSpace:
		a.playback.TogglePlay()
	case key.NameLeftArrow:
		a.playback.StepBack()
	case key.NameRightArrow:
		a.playback.StepForward()
	case key.NameHome:
		a.playback.Reset()
	case "R":
		a.fitted = false
	}
}

func (a *App) layout(gtx layout.Context) {
	paint.Fill(gtx.Ops, colorBackground)

	if !a.fitted {
		xmin, xmax, ymin, ymax := a.scene.Bounds()
		a.camera.Fit(xmin, xmax, ymin, ymax, float32(gtx.Constraints.Max.X), float32(gtx.Constraints.Max.Y))
		a.fitted = true
	}

	a.drawScene(gtx)
}

func (a *App) drawScene(gtx layout.Context) {
	sc := a.scene
	cam := a.camera
	now := a.playback.CurrentTime

	// waypoint path underneath everything
	for i := 1; i < len(sc.Waypoints); i++ {
		drawWorldLine(gtx, cam, sc.Waypoints[i-1][0], sc.Waypoints[i-1][1], sc.Waypoints[i][0], sc.Waypoints[i][1], 2, colorPath)
	}

	drawObstacles(gtx, cam, sc.Obstacles, colorObstacle)
	for _, wp := range sc.Walls {
		x, y := cam.WorldToScreen(wp[0], wp[1])
		drawFilledCircle(gtx, x, y, 2, colorWall)
	}

	// reach tube of the active control step
	idx := sc.StateAt(now)
	if idx < len(sc.Tubes) {
		tube := make([]timedBox, 0, len(sc.Tubes[idx]))
		for _, tr := range sc.Tubes[idx] {
			tube = append(tube, timedBox{time: tr.Time, rect: tr.Rect})
		}
		drawTube(gtx, cam, tube, sc.Duration())
	}

	// trajectory driven so far
	for i := 1; i <= idx && i < len(sc.States); i++ {
		drawWorldLine(gtx, cam, sc.States[i-1][0], sc.States[i-1][1], sc.States[i][0], sc.States[i][1], 2, colorTrajectory)
	}

	// vehicle marker
	if len(sc.States) > 0 {
		st := sc.States[idx]
		x, y := cam.WorldToScreen(st[0], st[1])
		drawFilledCircle(gtx, x, y, 6, colorVehicle)
	}
}
