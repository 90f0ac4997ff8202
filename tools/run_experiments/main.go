// Command run_experiments executes the full bicycle experiment matrix
// (algorithm x obstacle type) by shelling out to the rtreach binary, then
// merges the per-run result CSVs into one summary table with provenance
// columns.
package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"time"
)

var algorithms = []string{"wo", "rrfc", "rrrlc"}
var obstacleTypes = []string{"static", "dynamic"}

func main() {
	binary := flag.String("binary", "./rtreach", "path to the rtreach experiment binary")
	wayptAlgo := flag.String("waypoints", "rrt", "waypoint dataset: astar or rrt")
	outputDir := flag.String("output", filepath.Join("eval_output_data", "bicycle", "nbd_exp"), "experiment output directory")
	summary := flag.String("summary", "summary.csv", "merged summary file name")
	flag.Parse()

	commit := gitCommit()
	timestamp := time.Now().UTC().Format(time.RFC3339)

	type rowGroup struct {
		algorithm    string
		obstacleType string
		rows         [][]string
	}
	var groups []rowGroup

	for _, algo := range algorithms {
		for _, obs := range obstacleTypes {
			fmt.Printf("--- %s / %s ---\n", algo, obs)
			cmd := exec.Command(*binary, algo, *wayptAlgo, obs, "1")
			cmd.Stdout = os.Stdout
			cmd.Stderr = os.Stderr
			if err := cmd.Run(); err != nil {
				fmt.Fprintf(os.Stderr, "run %s/%s failed: %v\n", algo, obs, err)
				os.Exit(1)
			}

			resultPath := filepath.Join(*outputDir, fmt.Sprintf("%s_nbd_exp.csv", algo))
			rows, err := readRows(resultPath)
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(1)
			}
			groups = append(groups, rowGroup{algorithm: algo, obstacleType: obs, rows: rows})
		}
	}

	summaryPath := filepath.Join(*outputDir, *summary)
	f, err := os.Create(summaryPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	header := []string{"timestamp", "commit", "go_version", "os", "arch", "algorithm", "obstacle_type",
		"run_id", "path", "ttg", "collision", "no_subgoal", "avg_subgoal_us", "max_subgoal_us", "deadline_violations"}
	if err := w.Write(header); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	for _, g := range groups {
		for _, row := range g.rows {
			rec := append([]string{timestamp, commit, runtime.Version(), runtime.GOOS, runtime.GOARCH, g.algorithm, g.obstacleType}, row...)
			if err := w.Write(rec); err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(1)
			}
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	fmt.Printf("Merged summary written to %s\n", summaryPath)
}

func gitCommit() string {
	out, err := exec.Command("git", "rev-parse", "--short", "HEAD").Output()
	if err != nil {
		return "unknown"
	}
	return strings.TrimSpace(string(out))
}

func readRows(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if len(records) > 0 {
		records = records[1:] // drop header
	}
	return records, nil
}
