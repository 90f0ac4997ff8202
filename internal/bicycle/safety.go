package bicycle

import (
	"time"

	"github.com/npotteig/rtreach-go/internal/geom"
	"github.com/npotteig/rtreach-go/internal/obstacle"
	"github.com/npotteig/rtreach-go/internal/reach"
	"github.com/npotteig/rtreach-go/internal/subgoal"
)

// ReachOptions parameterises one bicycle reachability query or subgoal
// selection round.
type ReachOptions struct {
	ReachTime      float64
	StepSize       float64
	WallBudget     time.Duration
	StartTime      time.Time
	StoreTube      bool
	FixedStep      bool
	DynamicControl bool
	Field          *obstacle.Field
	ObstacleStep   obstacle.StepFunc
}

// RunReachability verifies one (start, control, horizon) query for the car,
// bloating intermediate sets by the vehicle footprint before obstacle and
// wall tests.
func RunReachability(m *Model, start []float64, ctrl Control, opts ReachOptions) (bool, []reach.TimedRect, reach.Stats, error) {
	return reach.Run(m, reach.Query{
		Start:          start,
		ReachTime:      opts.ReachTime,
		StepSize:       opts.StepSize,
		WallBudget:     opts.WallBudget,
		StartTime:      opts.StartTime,
		Control:        ctrl.Vector(),
		StoreTube:      opts.StoreTube,
		FixedStep:      opts.FixedStep,
		DynamicControl: opts.DynamicControl,
		Footprint:      Footprint,
		Field:          opts.Field,
		ObstacleStep:   opts.ObstacleStep,
	})
}

// HasCollided reports whether the car body at the given state overlaps an
// obstacle or a wall point.
func HasCollided(state []float64, field *obstacle.Field) bool {
	r := geom.RectFromPoint(state)
	r.Dims[0].Min -= Footprint[0]
	r.Dims[0].Max += Footprint[0]
	r.Dims[1].Min -= Footprint[1]
	r.Dims[1].Max += Footprint[1]
	return !(field.CheckRect(r, nil) && field.CheckWalls(r))
}

// SelectSafeSubgoalReach generates candidates between the previous and
// current waypoints, derives each candidate's control from the model's
// policy, and returns the first candidate the reachability engine verifies
// safe. The wall budget is split equally among candidates.
func SelectSafeSubgoalReach(m *Model, state []float64, prevWp, curWp [2]float64, numCands int, sliding bool, opts ReachOptions) (subgoal.Result, error) {
	var cands [][]float64
	if sliding {
		cands = subgoal.SlidingWindow(prevWp[:], curWp[:], state[:2], numCands, 1.0, 5.0)
	} else {
		cands = subgoal.Linear(prevWp[:], curWp[:], numCands)
	}

	verify := func(goal []float64, budget time.Duration) (bool, []reach.TimedRect, error) {
		m.SetGoal([2]float64{goal[0], goal[1]})
		ctrl := m.SampleStateAction(state)
		perCand := opts
		perCand.WallBudget = budget
		safe, tube, _, err := RunReachability(m, state, ctrl, perCand)
		return safe, tube, err
	}
	return subgoal.SelectReach(cands, opts.WallBudget, verify)
}

// robotRadius is the clearance-disc radius of the car for the disc selector.
const robotRadius = 0.1

// SelectSafeSubgoalDisc is the cheap selector: the first candidate whose
// clearance disc misses every obstacle wins. No ODE integration.
func SelectSafeSubgoalDisc(field *obstacle.Field, state []float64, prevWp, curWp [2]float64, numCands int, sliding bool) subgoal.Result {
	var cands [][]float64
	if sliding {
		cands = subgoal.SlidingWindow(prevWp[:], curWp[:], state[:2], numCands, 1.0, 5.0)
	} else {
		cands = subgoal.Linear(prevWp[:], curWp[:], numCands)
	}
	return subgoal.SelectDisc(field, state, cands, robotRadius, NumDims)
}
