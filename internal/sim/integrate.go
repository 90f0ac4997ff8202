// Package sim provides point integrators for ground-truth trajectory
// simulation. The derivative of a point is obtained from the system's
// interval machinery with a degenerate rectangle, so simulation and
// reachability share one dynamics definition.
package sim

import (
	"github.com/npotteig/rtreach-go/internal/geom"
	"github.com/npotteig/rtreach-go/internal/model"
)

// Derivative evaluates the exact derivative at a point.
func Derivative(sys model.System, point, ctrl []float64) []float64 {
	rect := geom.RectFromPoint(point)
	der := make([]float64, len(point))
	for d := range point {
		der[d] = sys.DerivativeBound(rect, 2*d, ctrl)
	}
	return der
}

// StepEuler advances a point by one explicit Euler step.
func StepEuler(sys model.System, point, ctrl []float64, h float64) []float64 {
	der := Derivative(sys, point, ctrl)
	next := make([]float64, len(point))
	for d := range point {
		next[d] = point[d] + h*der[d]
	}
	return next
}

// StepRK4 advances a point by one classical fourth-order Runge-Kutta step.
func StepRK4(sys model.System, point, ctrl []float64, h float64) []float64 {
	n := len(point)
	at := func(base, k []float64, scale float64) []float64 {
		out := make([]float64, n)
		for d := 0; d < n; d++ {
			out[d] = base[d] + scale*k[d]
		}
		return out
	}

	k1 := Derivative(sys, point, ctrl)
	k2 := Derivative(sys, at(point, k1, h/2), ctrl)
	k3 := Derivative(sys, at(point, k2, h/2), ctrl)
	k4 := Derivative(sys, at(point, k3, h), ctrl)

	next := make([]float64, n)
	for d := 0; d < n; d++ {
		next[d] = point[d] + (h/6)*(k1[d]+2*k2[d]+2*k3[d]+k4[d])
	}
	return next
}

// StopFunc decides whether simulation should halt at the given state and
// simulated time.
type StopFunc func(state []float64, t float64) bool

// Simulate integrates from start with Euler steps of size h until stop
// returns true. It returns the visited states (including start) and the
// final simulated time.
func Simulate(sys model.System, start, ctrl []float64, h float64, stop StopFunc) ([][]float64, float64) {
	point := append([]float64(nil), start...)
	states := [][]float64{append([]float64(nil), point...)}
	t := 0.0
	for steps := 1; !stop(point, t); steps++ {
		point = StepEuler(sys, point, ctrl, h)
		states = append(states, append([]float64(nil), point...))
		// steps*h avoids the drift of repeatedly adding h
		t = float64(steps) * h
	}
	return states, t
}
