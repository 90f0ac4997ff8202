package reach

import (
	"time"

	"github.com/npotteig/rtreach-go/internal/geom"
	"github.com/npotteig/rtreach-go/internal/model"
	"github.com/npotteig/rtreach-go/internal/obstacle"
)

// TimedRect is one recorded slice of a reach tube.
type TimedRect struct {
	Time float64
	Rect geom.Rect
}

// Query describes one reachability question: from a start state under a
// fixed control, is the reach tube over the horizon disjoint from all
// obstacles and walls?
type Query struct {
	// Start is the initial state; the initial set is the degenerate
	// rectangle around it.
	Start []float64

	// ReachTime is the horizon in seconds.
	ReachTime float64

	// StepSize is the initial integration step.
	StepSize float64

	// WallBudget bounds the wall-clock time of the query. Zero runs a
	// single iteration.
	WallBudget time.Duration

	// StartTime anchors the budget; zero means now. Selectors verifying
	// several candidates against one shared deadline pass a common anchor.
	StartTime time.Time

	// Control is the control vector held over the horizon (unless
	// DynamicControl re-samples it).
	Control []float64

	// StoreTube records every intermediate hull for visualisation.
	StoreTube bool

	// FixedStep and DynamicControl are forwarded to the engine.
	FixedStep      bool
	DynamicControl bool

	// Footprint holds the vehicle's half-extents in the position plane;
	// intermediate rectangles are bloated by it before obstacle tests.
	Footprint [2]float64

	// MaxRectWidth aborts an iteration as unsafe when the tracked
	// rectangle exceeds this width. Zero selects the default of 100.
	MaxRectWidth float64

	// Field is the obstacle snapshot for this query; nil means free space.
	Field *obstacle.Field

	// ObstacleStep advances the query-local copy of the dynamic obstacles
	// to each callback's simulated time.
	ObstacleStep obstacle.StepFunc
}

// queryContext is the per-query mutable state threaded through the engine
// callbacks: the recorded tube and the dynamic-obstacle scratch.
type queryContext struct {
	q       *Query
	tube    []TimedRect
	dyn     []obstacle.Box // scratch advanced by ObstacleStep
	dynInit []obstacle.Box // pristine copy of the dynamic prefix
}

// checkState bloats the rectangle's position projection by the vehicle
// footprint, tests obstacles (dynamic prefix advanced to time t) and walls,
// then restores the rectangle. The bloat and un-bloat must stay exactly
// symmetric; the rectangle is the engine's working set.
func (c *queryContext) checkState(r *geom.Rect, t float64) bool {
	if c.q.StoreTube {
		c.tube = append(c.tube, TimedRect{Time: t, Rect: r.Clone()})
	}

	r.Dims[0].Min -= c.q.Footprint[0]
	r.Dims[0].Max += c.q.Footprint[0]
	r.Dims[1].Min -= c.q.Footprint[1]
	r.Dims[1].Max += c.q.Footprint[1]

	dyn := c.dyn
	if c.q.ObstacleStep != nil && len(dyn) > 0 {
		copy(dyn, c.dynInit)
		c.q.ObstacleStep(t, dyn)
	}
	allowed := c.q.Field.CheckRect(*r, dyn)
	if allowed {
		allowed = c.q.Field.CheckWalls(*r)
	}

	r.Dims[0].Min += c.q.Footprint[0]
	r.Dims[0].Max -= c.q.Footprint[0]
	r.Dims[1].Min += c.q.Footprint[1]
	r.Dims[1].Max -= c.q.Footprint[1]

	return allowed
}

// Run answers one reachability query. It returns the verdict, the recorded
// tube (when Query.StoreTube is set), and the engine statistics.
func Run(sys model.System, q Query) (bool, []TimedRect, Stats, error) {
	maxWidth := q.MaxRectWidth
	if maxWidth == 0 {
		maxWidth = 100
	}

	init := geom.RectFromPoint(q.Start)
	ctx := &queryContext{q: &q, dyn: q.Field.Dynamic(), dynInit: q.Field.Dynamic()}
	ctx.tube = append(ctx.tube, TimedRect{Time: 0, Rect: init.Clone()})

	set := &Settings{
		Init:                    init,
		ReachTime:               q.ReachTime,
		InitialStepSize:         q.StepSize,
		MaxRectWidthBeforeError: maxWidth,
		MaxRuntime:              q.WallBudget,
		FixedStep:               q.FixedStep,
		DynamicControl:          q.DynamicControl,
		OnIntermediate:          ctx.checkState,
		OnFinal:                 ctx.checkState,
		OnRestart: func() {
			// keep only the initial set so the tube holds the last iteration
			ctx.tube = ctx.tube[:1]
		},
	}

	safe, stats, err := IterativeImprovement(sys, q.StartTime, set, q.Control)
	return safe, ctx.tube, stats, err
}
