// Package obstacle stores the axis-aligned obstacle boxes and wall points a
// vehicle must avoid, and provides the collision predicates used by the
// reachability engine and the subgoal selectors.
//
// A Field is owned by the experiment driver. Reachability queries operate on
// an immutable Snapshot plus a per-query StepFunc for dynamic obstacles, so
// the engine never touches shared mutable state.
package obstacle

import (
	"math"
	"sync"

	"github.com/npotteig/rtreach-go/internal/geom"
)

// Box is an obstacle footprint in the vehicle's position plane.
type Box struct {
	X, Y geom.Interval
}

// NewBox returns the w-by-h box centred at (cx, cy).
func NewBox(cx, cy, w, h float64) Box {
	return Box{
		X: geom.NewInterval(cx-w/2, cx+w/2),
		Y: geom.NewInterval(cy-h/2, cy+h/2),
	}
}

// Radius returns the circumscribed disc radius (half diagonal).
func (b Box) Radius() float64 {
	return math.Hypot(b.X.Width()/2, b.Y.Width()/2)
}

// Center returns the box centre.
func (b Box) Center() (float64, float64) {
	return (b.X.Min + b.X.Max) / 2, (b.Y.Min + b.Y.Max) / 2
}

// StepFunc advances a copy of the dynamic obstacle prefix to simulated
// time t. It is supplied per reachability query by the experiment driver.
type StepFunc func(t float64, dyn []Box)

// Field holds the obstacle set. The first dynamic boxes move during
// reachability queries; the rest are static. All predicates on a nil Field
// report safe, matching an uninitialised obstacle environment.
type Field struct {
	mu      sync.RWMutex
	boxes   []Box
	dynamic int
	walls   [][2]float64
}

// NewField builds a field of w-by-h boxes at the given centres. The first
// dynamic centres form the dynamic prefix.
func NewField(centers [][2]float64, w, h float64, dynamic int) *Field {
	boxes := make([]Box, len(centers))
	for i, c := range centers {
		boxes[i] = NewBox(c[0], c[1], w, h)
	}
	if dynamic > len(boxes) {
		dynamic = len(boxes)
	}
	return &Field{boxes: boxes, dynamic: dynamic}
}

// SetWalls installs wall points, each tested as a degenerate box.
func (f *Field) SetWalls(pts [][2]float64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.walls = pts
}

// Len returns the total obstacle count.
func (f *Field) Len() int {
	if f == nil {
		return 0
	}
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.boxes)
}

// DynamicCount returns the length of the dynamic prefix.
func (f *Field) DynamicCount() int {
	if f == nil {
		return 0
	}
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.dynamic
}

// Snapshot returns an independent deep copy for use by a single query.
func (f *Field) Snapshot() *Field {
	if f == nil {
		return nil
	}
	f.mu.RLock()
	defer f.mu.RUnlock()
	out := &Field{
		boxes:   append([]Box(nil), f.boxes...),
		dynamic: f.dynamic,
		walls:   append([][2]float64(nil), f.walls...),
	}
	return out
}

// Dynamic returns a copy of the dynamic prefix, the scratch a StepFunc
// advances during a query.
func (f *Field) Dynamic() []Box {
	if f == nil {
		return nil
	}
	f.mu.RLock()
	defer f.mu.RUnlock()
	return append([]Box(nil), f.boxes[:f.dynamic]...)
}

// StaticBoxes returns a copy of the static suffix.
func (f *Field) StaticBoxes() []Box {
	if f == nil {
		return nil
	}
	f.mu.RLock()
	defer f.mu.RUnlock()
	return append([]Box(nil), f.boxes[f.dynamic:]...)
}

// Advance applies step to the field's own dynamic prefix. Experiment drivers
// call this between control steps to move obstacles in real simulated time.
func (f *Field) Advance(t float64, step StepFunc) {
	if f == nil || step == nil {
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	step(t, f.boxes[:f.dynamic])
}

// boxesDisjoint reports whether the (x, y) projection of r misses b.
// Touching boundaries count as disjoint.
func boxesDisjoint(r geom.Rect, b Box) bool {
	if r.Dims[0].Min >= b.X.Max || b.X.Min >= r.Dims[0].Max {
		return true
	}
	if r.Dims[1].Max <= b.Y.Min || b.Y.Max <= r.Dims[1].Min {
		return true
	}
	return false
}

// CheckBoxes reports whether r's position projection is disjoint from every
// box in the slice.
func CheckBoxes(r geom.Rect, boxes []Box) bool {
	for _, b := range boxes {
		if !boxesDisjoint(r, b) {
			return false
		}
	}
	return true
}

// CheckRect tests r against the field. If dyn is non-nil it replaces the
// field's dynamic prefix (a query-stepped copy); the static suffix is always
// the field's own.
func (f *Field) CheckRect(r geom.Rect, dyn []Box) bool {
	if f == nil {
		return true
	}
	f.mu.RLock()
	defer f.mu.RUnlock()
	if dyn == nil {
		dyn = f.boxes[:f.dynamic]
	}
	return CheckBoxes(r, dyn) && CheckBoxes(r, f.boxes[f.dynamic:])
}

// CheckDisc reports whether a disc query around center clears every obstacle
// treated as its circumscribed disc: the centre distance must exceed
// obstacle radius + robotRad + queryRad.
func (f *Field) CheckDisc(center []float64, robotRad, queryRad float64) bool {
	if f == nil {
		return true
	}
	f.mu.RLock()
	defer f.mu.RUnlock()
	for _, b := range f.boxes {
		cx, cy := b.Center()
		dist := math.Hypot(center[0]-cx, center[1]-cy)
		if dist <= b.Radius()+robotRad+queryRad {
			return false
		}
	}
	return true
}

// CheckWalls tests r against the wall points.
func (f *Field) CheckWalls(r geom.Rect) bool {
	if f == nil {
		return true
	}
	f.mu.RLock()
	defer f.mu.RUnlock()
	for _, p := range f.walls {
		if !boxesDisjoint(r, Box{X: geom.Point(p[0]), Y: geom.Point(p[1])}) {
			return false
		}
	}
	return true
}
