// Command rtreach runs the bicycle neighborhood-driving experiments: for
// every waypoint path in the dataset, a runtime-assurance control loop
// selects safe subgoals with the face-lifting reachability engine and
// drives the car to the goal among static or dynamic obstacles.
//
// Usage:
//
//	rtreach [flags] <algorithm> <waypoint_algo> <obstacle_type> <save_data>
//
//	algorithm:     wo (no safety layer) | rrfc (fixed control) | rrrlc (dynamic control)
//	waypoint_algo: astar | rrt
//	obstacle_type: static | dynamic
//	save_data:     0 | 1
package main

import (
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/npotteig/rtreach-go/internal/bicycle"
	"github.com/npotteig/rtreach-go/internal/expio"
	"github.com/npotteig/rtreach-go/internal/monitor"
	"github.com/npotteig/rtreach-go/internal/obstacle"
	"github.com/npotteig/rtreach-go/internal/scenario"
)

const obstacleSpeed = 0.2 // m/s drift of dynamic obstacles

func usage() {
	fmt.Fprintf(os.Stderr, "Usage: %s [flags] <algorithm> <waypoint_algo> <obstacle_type> <save_data>\n", os.Args[0])
	fmt.Fprintln(os.Stderr, "  algorithm: wo, rrfc, rrrlc")
	fmt.Fprintln(os.Stderr, "  waypoint_algo: astar, rrt")
	fmt.Fprintln(os.Stderr, "  obstacle_type: static, dynamic")
	fmt.Fprintln(os.Stderr, "  save_data: 0, 1")
	flag.PrintDefaults()
}

func main() {
	monitorAddr := flag.String("monitor", "", "serve live telemetry websocket on this address (e.g. :8090)")
	storeTubes := flag.Bool("store-tubes", false, "record reach tubes of the first path for the replay viewer")
	flag.Usage = usage
	flag.Parse()

	if flag.NArg() != 4 {
		usage()
		os.Exit(1)
	}
	algorithm := flag.Arg(0)
	wayptAlgo := flag.Arg(1)
	obstacleType := flag.Arg(2)
	saveData := flag.Arg(3) == "1"

	var useSubgoal, useReach, dynamicControl bool
	switch algorithm {
	case "wo":
	case "rrfc":
		useSubgoal, useReach = true, true
	case "rrrlc":
		useSubgoal, useReach, dynamicControl = true, true, true
	default:
		fmt.Fprintln(os.Stderr, "Error: algorithm must be one of: wo, rrfc, rrrlc")
		os.Exit(1)
	}
	if wayptAlgo != "astar" && wayptAlgo != "rrt" {
		fmt.Fprintln(os.Stderr, "Error: waypoint algorithm must be one of: astar, rrt")
		os.Exit(1)
	}
	if obstacleType != "static" && obstacleType != "dynamic" {
		fmt.Fprintln(os.Stderr, "Error: obstacle type must be one of: static, dynamic")
		os.Exit(1)
	}

	_ = godotenv.Load(".env")
	inputDir := envOr("RTREACH_INPUT_DIR", "eval_input_data")
	outputDir := envOr("RTREACH_OUTPUT_DIR", filepath.Join("eval_output_data", "bicycle", "nbd_exp"))

	pathsFile := filepath.Join(inputDir, fmt.Sprintf("%s_paths.csv", wayptAlgo))
	obstaclesFile := filepath.Join(inputDir, "nbd_obstacles.csv")

	paths, err := expio.LoadPaths(pathsFile)
	if err != nil {
		log.Fatal(err)
	}
	centers, err := expio.LoadObstacles(obstaclesFile)
	if err != nil {
		log.Fatal(err)
	}

	dynamicCount := 0
	var obstacleStep obstacle.StepFunc
	if obstacleType == "dynamic" && len(centers) > 0 {
		dynamicCount = 1
		obstacleStep = driftStep
	}

	var hub *monitor.Server
	if *monitorAddr != "" {
		hub = monitor.NewServer()
		go func() {
			if err := http.ListenAndServe(*monitorAddr, hub); err != nil {
				log.Printf("monitor: %v", err)
			}
		}()
		fmt.Printf("Telemetry on ws://%s\n", *monitorAddr)
	}

	fmt.Printf("=== rtreach bicycle experiment: %s / %s / %s ===\n", algorithm, wayptAlgo, obstacleType)
	fmt.Printf("Paths: %d, obstacles: %d (%d dynamic)\n", len(paths), len(centers), dynamicCount)

	runID := uuid.NewString()
	var results []scenario.Metrics
	started := time.Now()

	for i, pth := range paths {
		field := obstacle.NewField(centers, 0.5, 0.5, dynamicCount)

		cfg := scenario.Config{
			Model:           bicycle.NewModel(),
			Field:           field,
			ObstacleStep:    obstacleStep,
			Path:            pth,
			StepSize:        0.1,
			TotalSteps:      1000,
			GoalThreshold:   1.0,
			UseSubgoalCtrl:  useSubgoal,
			UseReach:        useReach,
			DynamicControl:  dynamicControl,
			NumSubgoalCands: 10,
			ReachTime:       2.0,
			WallBudget:      100 * time.Millisecond,
			StoreTube:       *storeTubes && i == 0,
			Monitor:         hub,
		}

		m, err := scenario.Run(cfg)
		if err != nil {
			// contract violations abort the whole experiment
			log.Fatal(err)
		}
		results = append(results, m)
		fmt.Printf("path %3d: ttg=%.1fs collision=%v no_subgoal=%v max_subgoal=%v\n",
			i, m.TimeToGoal, m.Collision, m.NoSubgoal, m.MaxSubgoalTime)

		if cfg.StoreTube && saveData {
			if err := os.MkdirAll(outputDir, 0o755); err != nil {
				log.Fatal(err)
			}
			if err := expio.SaveStates(filepath.Join(outputDir, "replay_states.csv"), m.States); err != nil {
				log.Fatal(err)
			}
			if err := expio.SaveTubes(filepath.Join(outputDir, "replay_tubes.csv"), m.Tubes); err != nil {
				log.Fatal(err)
			}
		}
	}

	printSummary(results, time.Since(started))

	if saveData {
		if err := os.MkdirAll(outputDir, 0o755); err != nil {
			log.Fatal(err)
		}
		out := filepath.Join(outputDir, fmt.Sprintf("%s_nbd_exp.csv", algorithm))
		if err := writeResults(out, runID, results); err != nil {
			log.Fatal(err)
		}
		fmt.Printf("Saved results to %s (run %s)\n", out, runID)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// driftStep slides the first obstacle along -x, clamped at the corridor
// edge.
func driftStep(t float64, dyn []obstacle.Box) {
	offset := obstacleSpeed * t
	for i := range dyn {
		dyn[i].X.Min -= offset
		if dyn[i].X.Min < -0.95 {
			dyn[i].X.Min = -0.95
		}
		dyn[i].X.Max -= offset
		if dyn[i].X.Max < -0.45 {
			dyn[i].X.Max = -0.45
		}
	}
}

func printSummary(results []scenario.Metrics, wall time.Duration) {
	var (
		ttgSum       float64
		ttgCount     int
		collisions   int
		noSubgoal    int
		maxSubgoal   time.Duration
		deadlineMiss int
	)
	for _, m := range results {
		if m.TimeToGoal >= 0 {
			ttgSum += m.TimeToGoal
			ttgCount++
		}
		if m.Collision {
			collisions++
		}
		if m.NoSubgoal {
			noSubgoal++
		}
		if m.MaxSubgoalTime > maxSubgoal {
			maxSubgoal = m.MaxSubgoalTime
		}
		deadlineMiss += m.DeadlineViolations
	}

	fmt.Println()
	if ttgCount > 0 {
		fmt.Printf("Average time to goal: %.2fs over %d successful runs\n", ttgSum/float64(ttgCount), ttgCount)
	}
	fmt.Printf("Collisions: %d\n", collisions)
	fmt.Printf("No safe subgoal: %d\n", noSubgoal)
	fmt.Printf("Max subgoal computation time: %v\n", maxSubgoal)
	fmt.Printf("Deadline violations: %d\n", deadlineMiss)
	fmt.Printf("Wall time: %v\n", wall)
}

func writeResults(path, runID string, results []scenario.Metrics) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err := fmt.Fprintln(f, "run_id,path,ttg,collision,no_subgoal,avg_subgoal_us,max_subgoal_us,deadline_violations"); err != nil {
		return err
	}
	for i, m := range results {
		if _, err := fmt.Fprintf(f, "%s,%d,%g,%d,%d,%d,%d,%d\n",
			runID, i, m.TimeToGoal, boolToInt(m.Collision), boolToInt(m.NoSubgoal),
			m.AvgSubgoalTime.Microseconds(), m.MaxSubgoalTime.Microseconds(), m.DeadlineViolations); err != nil {
			return err
		}
	}
	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
