// Package model defines the capabilities the reachability engine requires
// from a vehicle: sound per-face derivative bounds, and optionally
// state-dependent control sampling and goal-conditioned policies.
package model

import "github.com/npotteig/rtreach-go/internal/geom"

// System is a dynamical system usable for face lifting. A face index
// f in [0, 2*Dims()) addresses dimension f/2; even f is the minimum face,
// odd f the maximum face.
type System interface {
	// Dims returns the state dimensionality.
	Dims() int

	// DerivativeBound returns a sound lower (min face) or upper (max face)
	// bound on the dim-th derivative component over all states in rect under
	// the given control vector.
	DerivativeBound(rect geom.Rect, face int, ctrl []float64) float64
}

// ControlSampler is implemented by systems that can derive a control from a
// representative state of a box, enabling state-dependent control during
// reachability.
type ControlSampler interface {
	SampleControl(rect geom.Rect) []float64
}

// Policy maps a state and a goal to a control vector. Analytic controllers
// and learned policies both satisfy it; the engine does not care which.
type Policy interface {
	Sample(state, goal []float64) []float64
}

// PolicyFunc adapts a plain function to the Policy interface.
type PolicyFunc func(state, goal []float64) []float64

// Sample implements Policy.
func (f PolicyFunc) Sample(state, goal []float64) []float64 {
	return f(state, goal)
}

// NumFaces returns the face count of a system.
func NumFaces(s System) int {
	return 2 * s.Dims()
}

// DerivativeBox evaluates the full derivative enclosure of s over rect by
// querying both faces of every dimension.
func DerivativeBox(s System, rect geom.Rect, ctrl []float64) geom.Rect {
	out := geom.NewRect(s.Dims())
	for d := 0; d < s.Dims(); d++ {
		out.Dims[d].Min = s.DerivativeBound(rect, 2*d, ctrl)
		out.Dims[d].Max = s.DerivativeBound(rect, 2*d+1, ctrl)
	}
	return out
}
