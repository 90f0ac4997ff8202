// Package reach implements face-lifting reachability: a sound
// over-approximation of the reach tube of a nonlinear ODE, refined
// iteratively under a wall-clock budget with anytime semantics.
package reach

import (
	"fmt"
	"time"

	"github.com/npotteig/rtreach-go/internal/geom"
)

// Derivative clamps guaranteeing loop termination.
const (
	MaxDerivative = 99999.0
	MinDerivative = -99999.0
)

// minStepSize is the refinement floor; below it floating-point error
// dominates and the verdict is unsafe.
const minStepSize = 1e-7

// Settings are the immutable per-query parameters of an iterative
// face-lifting computation. The three callbacks are optional (nil to omit).
type Settings struct {
	// Init is the initial set, usually a degenerate rectangle from a point.
	Init geom.Rect

	// ReachTime is the total horizon in seconds.
	ReachTime float64

	// InitialStepSize is the step size of the first iteration; later
	// iterations halve it.
	InitialStepSize float64

	// MaxRectWidthBeforeError aborts an iteration as unsafe when the
	// tracked rectangle grows wider than this.
	MaxRectWidthBeforeError float64

	// MaxRuntime is the wall budget. Zero means run exactly one iteration
	// and return its verdict.
	MaxRuntime time.Duration

	// FixedStep disables refinement: the first iteration's verdict is final.
	FixedStep bool

	// DynamicControl re-samples the control from the tracked rectangle at
	// every lift step, when the system implements model.ControlSampler.
	DynamicControl bool

	// OnIntermediate is invoked with the running hull and the simulated
	// time after every lift step; returning false marks the iteration
	// unsafe.
	OnIntermediate func(hull *geom.Rect, t float64) bool

	// OnFinal is invoked when a step lands exactly on the horizon, and with
	// the total hull when the deadline cuts the computation short or an
	// iteration ends unsafe.
	OnFinal func(rect *geom.Rect, t float64) bool

	// OnRestart is invoked at the start of every iteration so callers can
	// reset per-iteration storage.
	OnRestart func()
}

// Stats reports how a query spent its budget.
type Stats struct {
	// Iterations counts started refinement iterations at quit.
	Iterations uint64

	// FinalStepSize is the step size of the last started iteration.
	FinalStepSize float64

	// Elapsed is the wall time consumed.
	Elapsed time.Duration
}

// ContractError is a fatal soundness break: the engine's internal invariants
// no longer hold and the query's verdict is meaningless. Drivers terminate
// on it.
type ContractError struct {
	Reason   string
	Settings *Settings
}

// Error implements error.
func (e *ContractError) Error() string {
	if e.Settings == nil {
		return fmt.Sprintf("reach: contract violation: %s", e.Reason)
	}
	return fmt.Sprintf("reach: contract violation: %s (reach time %v, step %v, budget %v, init %v)",
		e.Reason, e.Settings.ReachTime, e.Settings.InitialStepSize, e.Settings.MaxRuntime, e.Settings.Init.Dims)
}

// nextIterEstimate projects the wall cost of the next refinement iteration
// from the previous iteration's cost and the running estimate. Face lifting
// is roughly O(2^k) in refinement depth, so the estimate doubles and takes
// the larger of the two projections as an upper bound.
func nextIterEstimate(prev, cur time.Duration) time.Duration {
	if prev <= 0 {
		return 2 * time.Millisecond
	}
	next := 2*prev + time.Millisecond
	if 2*cur > next {
		next = 2 * cur
	}
	return next
}
