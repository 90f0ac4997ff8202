// Command quadreach runs the quadcopter corridor experiment: the drone
// follows a straight corridor while one or two obstacles drift across it,
// and a runtime-assurance layer verifies each subgoal's control with the
// reachability engine before committing to it.
//
// Usage:
//
//	quadreach [flags] <algorithm> <obstacle_type> <save_data>
//
//	algorithm:     wo | rrfc | rrrlc
//	obstacle_type: static | dynamic
//	save_data:     0 | 1
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/npotteig/rtreach-go/internal/expio"
	"github.com/npotteig/rtreach-go/internal/obstacle"
	"github.com/npotteig/rtreach-go/internal/quadcopter"
	"github.com/npotteig/rtreach-go/internal/reach"
	"github.com/npotteig/rtreach-go/internal/sim"
	"github.com/npotteig/rtreach-go/internal/util"
)

const obstacleSpeed = 0.1 // m/s drift perpendicular to the corridor

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s <algorithm> <obstacle_type> <save_data>\n", os.Args[0])
	}
	flag.Parse()
	if flag.NArg() != 3 {
		flag.Usage()
		os.Exit(1)
	}
	algorithm := flag.Arg(0)
	obstacleType := flag.Arg(1)
	saveData := flag.Arg(2) == "1"

	var useSubgoal, dynamicControl bool
	switch algorithm {
	case "wo":
	case "rrfc":
		useSubgoal = true
	case "rrrlc":
		useSubgoal, dynamicControl = true, true
	default:
		fmt.Fprintln(os.Stderr, "Error: algorithm must be one of: wo, rrfc, rrrlc")
		os.Exit(1)
	}
	if obstacleType != "static" && obstacleType != "dynamic" {
		fmt.Fprintln(os.Stderr, "Error: obstacle type must be one of: static, dynamic")
		os.Exit(1)
	}

	_ = godotenv.Load(".env")
	outputDir := envOr("RTREACH_OUTPUT_DIR", filepath.Join("eval_output_data", "quadcopter", "corr_exp"))

	// corridor scenario: fly from the origin to (5, 0, 0) past two
	// obstacles near the centreline
	start := [3]float64{0, 0, 0}
	goal := [3]float64{5, 0, 0}
	centers := [][2]float64{{2.0, 0.35}, {3.2, -0.35}}
	dynamicCount := 0
	var step obstacle.StepFunc
	if obstacleType == "dynamic" {
		dynamicCount = len(centers)
		step = crossStep
	}
	field := obstacle.NewField(centers, 0.5, 0.5, dynamicCount)

	model := quadcopter.NewModel()
	model.SetGoal(goal)

	fmt.Printf("=== quadreach corridor experiment: %s / %s ===\n", algorithm, obstacleType)

	state := make([]float64, quadcopter.NumDims)
	state[0], state[1], state[2] = start[0], start[1], start[2]

	const (
		stepSize   = 0.1
		totalSteps = 600
		thresh     = 0.5
	)
	var (
		collision  bool
		noSubgoal  bool
		simTime    float64
		states     [][]float64
		tubes      [][]reach.TimedRect
		maxSelect  time.Duration
	)
	states = append(states, append([]float64(nil), state...))

	for stepIdx := 0; stepIdx < totalSteps; stepIdx++ {
		if util.Distance2D(state, goal[:]) <= thresh {
			break
		}

		if useSubgoal {
			selectStart := time.Now()
			res, err := quadcopter.SelectSafeSubgoalReach(model, state, start, goal, 10, true, quadcopter.ReachOptions{
				ReachTime:      2.0,
				StepSize:       stepSize,
				WallBudget:     100 * time.Millisecond,
				DynamicControl: dynamicControl,
				StoreTube:      saveData,
				Field:          field.Snapshot(),
				ObstacleStep:   step,
			})
			if err != nil {
				log.Fatal(err)
			}
			if d := time.Since(selectStart); d > maxSelect {
				maxSelect = d
			}
			if !res.Found {
				noSubgoal = true
				break
			}
			model.SetGoal([3]float64{res.Goal[0], res.Goal[1], res.Goal[2]})
			if saveData {
				tubes = append(tubes, res.Tube)
			}
		}

		ctrl := model.SampleStateAction(state)
		state = sim.StepEuler(model, state, ctrl.Vector(), stepSize)
		simTime += stepSize
		states = append(states, append([]float64(nil), state...))

		field.Advance(stepSize, step)

		if quadcopter.HasCollided(state, field) {
			collision = true
			break
		}
	}

	fmt.Printf("time=%.1fs collision=%v no_subgoal=%v max_select=%v\n", simTime, collision, noSubgoal, maxSelect)

	if saveData {
		if err := os.MkdirAll(outputDir, 0o755); err != nil {
			log.Fatal(err)
		}
		runID := uuid.NewString()
		if err := expio.SaveStates(filepath.Join(outputDir, "states.csv"), states); err != nil {
			log.Fatal(err)
		}
		if err := expio.SaveTubes(filepath.Join(outputDir, "tubes.csv"), tubes); err != nil {
			log.Fatal(err)
		}
		fmt.Printf("Saved run %s to %s\n", runID, outputDir)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// crossStep drifts the obstacles toward the centreline, clamped so they
// stop just past it.
func crossStep(t float64, dyn []obstacle.Box) {
	offset := obstacleSpeed * t
	if len(dyn) > 0 {
		dyn[0].Y.Min -= offset
		if dyn[0].Y.Min < -0.95 {
			dyn[0].Y.Min = -0.95
		}
		dyn[0].Y.Max -= offset
		if dyn[0].Y.Max < -0.45 {
			dyn[0].Y.Max = -0.45
		}
	}
	if len(dyn) > 1 {
		dyn[1].Y.Min += offset
		if dyn[1].Y.Min > 0.45 {
			dyn[1].Y.Min = 0.45
		}
		dyn[1].Y.Max += offset
		if dyn[1].Y.Max > 0.95 {
			dyn[1].Y.Max = 0.95
		}
	}
}
