package vis

import (
	"math"

	"github.com/npotteig/rtreach-go/internal/expio"
	"github.com/npotteig/rtreach-go/internal/obstacle"
	"github.com/npotteig/rtreach-go/internal/reach"
)

// Scene holds everything one replay renders: the driven trajectory, the
// per-step verified reach tubes, the obstacle layout, and the waypoint
// path.
type Scene struct {
	States    [][]float64
	Tubes     [][]reach.TimedRect
	Obstacles []obstacle.Box
	Walls     [][2]float64
	Waypoints [][3]float64

	// StepTime is the control period: state i and tube i belong to
	// simulated time i*StepTime.
	StepTime float64
}

// SceneFiles names the CSV inputs of a replay.
type SceneFiles struct {
	States    string
	Tubes     string
	Obstacles string
	Walls     string
	Paths     string
	PathIndex int
}

// LoadScene reads a scene from experiment outputs. Tube, obstacle, wall,
// and path files are optional (empty name skips them).
func LoadScene(files SceneFiles, stepTime float64) (*Scene, error) {
	sc := &Scene{StepTime: stepTime}

	states, err := expio.LoadStates(files.States)
	if err != nil {
		return nil, err
	}
	sc.States = states

	if files.Tubes != "" {
		tubes, err := expio.LoadTubes(files.Tubes)
		if err != nil {
			return nil, err
		}
		sc.Tubes = tubes
	}
	if files.Obstacles != "" {
		centers, err := expio.LoadObstacles(files.Obstacles)
		if err != nil {
			return nil, err
		}
		for _, c := range centers {
			sc.Obstacles = append(sc.Obstacles, obstacle.NewBox(c[0], c[1], 0.5, 0.5))
		}
	}
	if files.Walls != "" {
		walls, err := expio.LoadWallPoints(files.Walls)
		if err != nil {
			return nil, err
		}
		sc.Walls = walls
	}
	if files.Paths != "" {
		paths, err := expio.LoadPaths(files.Paths)
		if err != nil {
			return nil, err
		}
		if files.PathIndex < len(paths) {
			sc.Waypoints = paths[files.PathIndex]
		}
	}
	return sc, nil
}

// Duration returns the replay's simulated time span.
func (s *Scene) Duration() float64 {
	if len(s.States) == 0 {
		return 0
	}
	return float64(len(s.States)-1) * s.StepTime
}

// Bounds returns the world box enclosing everything in the scene.
func (s *Scene) Bounds() (xmin, xmax, ymin, ymax float64) {
	xmin, ymin = math.Inf(1), math.Inf(1)
	xmax, ymax = math.Inf(-1), math.Inf(-1)
	grow := func(x, y float64) {
		xmin = math.Min(xmin, x)
		xmax = math.Max(xmax, x)
		ymin = math.Min(ymin, y)
		ymax = math.Max(ymax, y)
	}
	for _, st := range s.States {
		grow(st[0], st[1])
	}
	for _, b := range s.Obstacles {
		grow(b.X.Min, b.Y.Min)
		grow(b.X.Max, b.Y.Max)
	}
	for _, w := range s.Walls {
		grow(w[0], w[1])
	}
	for _, wp := range s.Waypoints {
		grow(wp[0], wp[1])
	}
	if math.IsInf(xmin, 1) {
		return 0, 1, 0, 1
	}
	return xmin, xmax, ymin, ymax
}

// StateAt returns the trajectory index active at simulated time t.
func (s *Scene) StateAt(t float64) int {
	if s.StepTime <= 0 || len(s.States) == 0 {
		return 0
	}
	i := int(t / s.StepTime)
	if i >= len(s.States) {
		i = len(s.States) - 1
	}
	return i
}
