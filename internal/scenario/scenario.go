// Package scenario drives one closed-loop bicycle run along a waypoint
// path: each control step selects a safe subgoal (reachability or disc
// clearance), applies the policy control, integrates the vehicle, and
// records metrics. It is the shared engine of the experiment CLIs.
package scenario

import (
	"time"

	"github.com/npotteig/rtreach-go/internal/bicycle"
	"github.com/npotteig/rtreach-go/internal/monitor"
	"github.com/npotteig/rtreach-go/internal/obstacle"
	"github.com/npotteig/rtreach-go/internal/reach"
	"github.com/npotteig/rtreach-go/internal/sim"
	"github.com/npotteig/rtreach-go/internal/subgoal"
	"github.com/npotteig/rtreach-go/internal/util"
)

// Config parameterises one path run.
type Config struct {
	Model *bicycle.Model
	Field *obstacle.Field

	// ObstacleStep advances dynamic obstacles, both inside reachability
	// queries (simulated time) and between control steps (real time).
	ObstacleStep obstacle.StepFunc

	// Path is the waypoint sequence; z is carried but unused by the car.
	Path [][3]float64

	// StepSize is the control period in seconds.
	StepSize float64

	// TotalSteps bounds the run length.
	TotalSteps int

	// GoalThreshold is the capture distance for waypoints and the goal.
	GoalThreshold float64

	// UseSubgoalCtrl enables the safety layer; UseReach picks the
	// reachability selector over the disc selector.
	UseSubgoalCtrl bool
	UseReach       bool
	DynamicControl bool
	NumSubgoalCands int

	ReachTime  float64
	WallBudget time.Duration

	// StoreTube records per-step reach tubes for replay.
	StoreTube bool

	// Monitor, when non-nil, receives one telemetry frame per step.
	Monitor *monitor.Server
}

// Metrics summarises one path run.
type Metrics struct {
	// TimeToGoal is the simulated time to reach the final waypoint, or -1
	// when the run ended in a collision or without a safe subgoal.
	TimeToGoal float64

	Collision bool
	NoSubgoal bool

	AvgSubgoalTime     time.Duration
	MaxSubgoalTime     time.Duration
	DeadlineViolations int

	States [][]float64
	Tubes  [][]reach.TimedRect
}

// Run executes the scenario until the goal is reached, a failure occurs, or
// the step bound expires.
func Run(cfg Config) (Metrics, error) {
	m := Metrics{TimeToGoal: -1}
	if len(cfg.Path) < 2 {
		return m, nil
	}

	state := []float64{cfg.Path[0][0], cfg.Path[0][1], 0, 0}
	m.States = append(m.States, append([]float64(nil), state...))

	goalIdx := 1
	prevWp := [2]float64{cfg.Path[0][0], cfg.Path[0][1]}
	curWp := [2]float64{cfg.Path[goalIdx][0], cfg.Path[goalIdx][1]}
	finalWp := [2]float64{cfg.Path[len(cfg.Path)-1][0], cfg.Path[len(cfg.Path)-1][1]}
	cfg.Model.SetGoal(curWp)

	var subgoalTimes []time.Duration
	simTime := 0.0

	for step := 0; step < cfg.TotalSteps; step++ {
		if util.Distance2D(state, finalWp[:]) <= cfg.GoalThreshold {
			m.TimeToGoal = simTime
			break
		}
		if curWp != finalWp && util.Distance2D(state, curWp[:]) < cfg.GoalThreshold {
			goalIdx++
			prevWp = curWp
			curWp = [2]float64{cfg.Path[goalIdx][0], cfg.Path[goalIdx][1]}
			cfg.Model.SetGoal(curWp)
		}

		var frame monitor.Frame
		if cfg.UseSubgoalCtrl {
			started := time.Now()
			res, err := cfg.selectSubgoal(state, prevWp, curWp)
			if err != nil {
				return m, err
			}
			elapsed := time.Since(started)
			subgoalTimes = append(subgoalTimes, elapsed)
			if elapsed > cfg.WallBudget && cfg.WallBudget > 0 {
				m.DeadlineViolations++
			}
			if !res.Found {
				m.NoSubgoal = true
				break
			}
			cfg.Model.SetGoal([2]float64{res.Goal[0], res.Goal[1]})
			if cfg.StoreTube {
				m.Tubes = append(m.Tubes, res.Tube)
			}
			frame.Subgoal = res.Goal
			frame.Tube = monitor.TubeProjection(res.Tube)
			frame.Safe = true
		}

		ctrl := cfg.Model.SampleStateAction(state)
		state = stepVehicle(cfg.Model, state, ctrl, cfg.StepSize)
		simTime += cfg.StepSize
		m.States = append(m.States, append([]float64(nil), state...))

		cfg.Field.Advance(cfg.StepSize, cfg.ObstacleStep)

		if cfg.Monitor != nil {
			frame.Time = simTime
			frame.State = append([]float64(nil), state...)
			frame.Obstacles = monitor.FieldProjection(cfg.Field)
			cfg.Monitor.Publish(frame)
		}

		if bicycle.HasCollided(state, cfg.Field) {
			m.Collision = true
			break
		}
	}

	for _, d := range subgoalTimes {
		m.AvgSubgoalTime += d
		if d > m.MaxSubgoalTime {
			m.MaxSubgoalTime = d
		}
	}
	if len(subgoalTimes) > 0 {
		m.AvgSubgoalTime /= time.Duration(len(subgoalTimes))
	}
	return m, nil
}

func (cfg *Config) selectSubgoal(state []float64, prevWp, curWp [2]float64) (subgoal.Result, error) {
	if cfg.UseReach {
		return bicycle.SelectSafeSubgoalReach(cfg.Model, state, prevWp, curWp, cfg.NumSubgoalCands, true, bicycle.ReachOptions{
			ReachTime:      cfg.ReachTime,
			StepSize:       cfg.StepSize,
			WallBudget:     cfg.WallBudget,
			StoreTube:      cfg.StoreTube,
			DynamicControl: cfg.DynamicControl,
			Field:          cfg.Field.Snapshot(),
			ObstacleStep:   cfg.ObstacleStep,
		})
	}
	return bicycle.SelectSafeSubgoalDisc(cfg.Field, state, prevWp, curWp, cfg.NumSubgoalCands*10, true), nil
}

func stepVehicle(m *bicycle.Model, state []float64, ctrl bicycle.Control, h float64) []float64 {
	next := sim.StepEuler(m, state, ctrl.Vector(), h)
	next[3] = util.NormalizeAngle(next[3])
	return next
}
