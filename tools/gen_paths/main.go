// Command gen_paths generates deterministic waypoint-path datasets for the
// experiments: random obstacle layouts plus RRT paths threaded between
// them, written as the path_id,x,y,z CSV the drivers consume.
package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"math"
	"math/rand"
	"os"
	"path/filepath"
	"strconv"
)

// Arena bounds in metres.
const (
	arenaMin = 0.0
	arenaMax = 10.0
)

type point struct {
	x, y float64
}

type rrtNode struct {
	pt     point
	parent int
}

func main() {
	seed := flag.Int64("seed", 42, "random seed")
	numPaths := flag.Int("paths", 20, "number of paths to generate")
	numObstacles := flag.Int("obstacles", 8, "number of obstacle boxes")
	stepLen := flag.Float64("step", 0.5, "RRT extension step length")
	maxIters := flag.Int("iters", 5000, "RRT iteration cap per path")
	outDir := flag.String("out", "eval_input_data", "output directory")
	name := flag.String("name", "rrt", "dataset name prefix")
	flag.Parse()

	rng := rand.New(rand.NewSource(*seed))

	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	obstacles := make([]point, *numObstacles)
	for i := range obstacles {
		obstacles[i] = point{
			x: arenaMin + 1 + rng.Float64()*(arenaMax-arenaMin-2),
			y: arenaMin + 1 + rng.Float64()*(arenaMax-arenaMin-2),
		}
	}

	var paths [][]point
	for len(paths) < *numPaths {
		start := point{x: arenaMin + 0.5, y: arenaMin + 0.5 + rng.Float64()*(arenaMax-1)}
		goal := point{x: arenaMax - 0.5, y: arenaMin + 0.5 + rng.Float64()*(arenaMax-1)}
		if path, ok := rrt(rng, start, goal, obstacles, *stepLen, *maxIters); ok {
			paths = append(paths, path)
		}
	}

	obstaclesPath := filepath.Join(*outDir, "nbd_obstacles.csv")
	if err := writeObstacles(obstaclesPath, obstacles); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	pathsPath := filepath.Join(*outDir, fmt.Sprintf("%s_paths.csv", *name))
	if err := writePaths(pathsPath, paths); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	fmt.Printf("Wrote %d obstacles to %s\n", len(obstacles), obstaclesPath)
	fmt.Printf("Wrote %d paths to %s\n", len(paths), pathsPath)
}

// rrt grows a tree from start until a node lands within one step of the
// goal, then extracts the tree path from start to goal. The path is not
// pruned or smoothed.
func rrt(rng *rand.Rand, start, goal point, obstacles []point, stepLen float64, maxIters int) ([]point, bool) {
	nodes := []rrtNode{{pt: start, parent: -1}}

	for i := 0; i < maxIters; i++ {
		sample := goal
		if rng.Float64() > 0.1 {
			sample = point{
				x: arenaMin + rng.Float64()*(arenaMax-arenaMin),
				y: arenaMin + rng.Float64()*(arenaMax-arenaMin),
			}
		}

		nearest := 0
		best := math.Inf(1)
		for j, n := range nodes {
			if d := dist(n.pt, sample); d < best {
				best = d
				nearest = j
			}
		}

		from := nodes[nearest].pt
		d := dist(from, sample)
		if d == 0 {
			continue
		}
		next := point{
			x: from.x + (sample.x-from.x)/d*math.Min(stepLen, d),
			y: from.y + (sample.y-from.y)/d*math.Min(stepLen, d),
		}
		if collides(next, obstacles) || segmentCollides(from, next, obstacles) {
			continue
		}

		nodes = append(nodes, rrtNode{pt: next, parent: nearest})
		if dist(next, goal) <= stepLen && !segmentCollides(next, goal, obstacles) {
			nodes = append(nodes, rrtNode{pt: goal, parent: len(nodes) - 1})
			return extract(nodes), true
		}
	}
	return nil, false
}

func extract(nodes []rrtNode) []point {
	var rev []point
	for i := len(nodes) - 1; i >= 0; i = nodes[i].parent {
		rev = append(rev, nodes[i].pt)
	}
	path := make([]point, len(rev))
	for i, p := range rev {
		path[len(rev)-1-i] = p
	}
	return path
}

// collides keeps a clearance of the obstacle half-width plus the car body.
func collides(p point, obstacles []point) bool {
	const clearance = 0.25 + 0.3
	for _, o := range obstacles {
		if math.Abs(p.x-o.x) < clearance && math.Abs(p.y-o.y) < clearance {
			return true
		}
	}
	return false
}

func segmentCollides(a, b point, obstacles []point) bool {
	steps := int(dist(a, b)/0.1) + 1
	for i := 0; i <= steps; i++ {
		t := float64(i) / float64(steps)
		p := point{x: a.x + t*(b.x-a.x), y: a.y + t*(b.y-a.y)}
		if collides(p, obstacles) {
			return true
		}
	}
	return false
}

func dist(a, b point) float64 {
	return math.Hypot(a.x-b.x, a.y-b.y)
}

func writeObstacles(path string, obstacles []point) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"x", "y"}); err != nil {
		return err
	}
	for _, o := range obstacles {
		if err := w.Write([]string{format(o.x), format(o.y)}); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func writePaths(path string, paths [][]point) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"path_id", "x", "y", "z"}); err != nil {
		return err
	}
	for id, pth := range paths {
		for _, p := range pth {
			if err := w.Write([]string{strconv.Itoa(id), format(p.x), format(p.y), "0"}); err != nil {
				return err
			}
		}
	}
	w.Flush()
	return w.Error()
}

func format(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
