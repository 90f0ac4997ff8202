package quadcopter

import (
	"time"

	"github.com/npotteig/rtreach-go/internal/geom"
	"github.com/npotteig/rtreach-go/internal/obstacle"
	"github.com/npotteig/rtreach-go/internal/reach"
	"github.com/npotteig/rtreach-go/internal/subgoal"
)

// ReachOptions parameterises one quadcopter reachability query or subgoal
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

// RunReachability verifies one (start, control, horizon) query for the
// quadcopter.
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

// HasCollided reports whether the airframe at the given state overlaps an
// obstacle or a wall point.
func HasCollided(state []float64, field *obstacle.Field) bool {
	r := geom.RectFromPoint(state)
	r.Dims[0].Min -= Footprint[0]
	r.Dims[0].Max += Footprint[0]
	r.Dims[1].Min -= Footprint[1]
	r.Dims[1].Max += Footprint[1]
	return !(field.CheckRect(r, nil) && field.CheckWalls(r))
}

// robotRadius is the clearance-disc radius of the airframe.
const robotRadius = 0.16

// SelectSafeSubgoalReach returns the first candidate between the waypoints
// whose policy-derived control the reachability engine verifies safe.
func SelectSafeSubgoalReach(m *Model, state []float64, prevWp, curWp [3]float64, numCands int, sliding bool, opts ReachOptions) (subgoal.Result, error) {
	cands := candidates(prevWp, curWp, state, numCands, sliding)

	verify := func(goal []float64, budget time.Duration) (bool, []reach.TimedRect, error) {
		m.SetGoal([3]float64{goal[0], goal[1], goal[2]})
		ctrl := m.SampleStateAction(state)
		perCand := opts
		perCand.WallBudget = budget
		safe, tube, _, err := RunReachability(m, state, ctrl, perCand)
		return safe, tube, err
	}
	return subgoal.SelectReach(cands, opts.WallBudget, verify)
}

// SelectSafeSubgoalDisc is the clearance-disc selector.
func SelectSafeSubgoalDisc(field *obstacle.Field, state []float64, prevWp, curWp [3]float64, numCands int, sliding bool) subgoal.Result {
	cands := candidates(prevWp, curWp, state, numCands, sliding)
	return subgoal.SelectDisc(field, state, cands, robotRadius, NumDims)
}

func candidates(prevWp, curWp [3]float64, state []float64, numCands int, sliding bool) [][]float64 {
	if sliding {
		return subgoal.SlidingWindow(prevWp[:], curWp[:], state[:3], numCands, 1.0, 5.0)
	}
	return subgoal.Linear(prevWp[:], curWp[:], numCands)
}
