// Package subgoal generates candidate subgoals along a waypoint segment and
// selects the highest-priority one whose associated control is safe.
// Candidates are enumerated closest-to-goal first; the first safe candidate
// wins. When none is safe the caller must fall back (brake, hold).
package subgoal

import (
	"time"

	"github.com/npotteig/rtreach-go/internal/geom"
	"github.com/npotteig/rtreach-go/internal/obstacle"
	"github.com/npotteig/rtreach-go/internal/reach"
	"github.com/npotteig/rtreach-go/internal/util"
)

// Result reports a selection outcome. Tube carries the verified reach tube
// of the winning candidate (or a singleton disc rectangle for the disc
// selector) for visualisation.
type Result struct {
	Found bool
	Goal  []float64
	Tube  []reach.TimedRect
}

// VerifyFunc answers whether the candidate subgoal's control is safe within
// the given wall budget.
type VerifyFunc func(goal []float64, budget time.Duration) (bool, []reach.TimedRect, error)

// Linear returns n candidates evenly spaced from start (exclusive) to goal
// (inclusive).
func Linear(start, goal []float64, n int) [][]float64 {
	dims := len(start)
	cands := make([][]float64, 0, n)
	for i := 1; i <= n; i++ {
		p := make([]float64, dims)
		for d := 0; d < dims; d++ {
			p[d] = start[d] + float64(i)*(goal[d]-start[d])/float64(n)
		}
		cands = append(cands, p)
	}
	return cands
}

// SlidingWindow projects pos onto the start-goal segment and returns n+1
// evenly spaced candidates in a window [-behind, +ahead] along it, clipped
// to the segment. Only the planar components slide; any further dimensions
// are zeroed.
func SlidingWindow(start, goal, pos []float64, n int, behind, ahead float64) [][]float64 {
	dims := len(start)

	lineX := goal[0] - start[0]
	lineY := goal[1] - start[1]
	lineLen := util.Norm([]float64{lineX, lineY})
	unitX, unitY := lineX/lineLen, lineY/lineLen

	projection := (pos[0]-start[0])*unitX + (pos[1]-start[1])*unitY
	projX := start[0] + projection*unitX
	projY := start[1] + projection*unitY

	segStartX := projX - behind*unitX
	segStartY := projY - behind*unitY
	segEndX := projX + ahead*unitX
	segEndY := projY + ahead*unitY

	// clip to the segment
	if (segStartX-start[0])*unitX+(segStartY-start[1])*unitY < 0 {
		segStartX, segStartY = start[0], start[1]
	}
	if (segEndX-goal[0])*unitX+(segEndY-goal[1])*unitY > 0 {
		segEndX, segEndY = goal[0], goal[1]
	}

	dx := (segEndX - segStartX) / float64(n)
	dy := (segEndY - segStartY) / float64(n)

	cands := make([][]float64, 0, n+1)
	for i := 0; i <= n; i++ {
		p := make([]float64, dims)
		p[0] = segStartX + float64(i)*dx
		p[1] = segStartY + float64(i)*dy
		cands = append(cands, p)
	}
	return cands
}

// reversed returns the candidates ordered closest-to-goal first.
func reversed(cands [][]float64) [][]float64 {
	out := make([][]float64, len(cands))
	for i, c := range cands {
		out[len(cands)-1-i] = c
	}
	return out
}

// SelectDisc picks the first candidate whose clearance disc (radius equal
// to the distance from the current state) misses every obstacle disc. Cheap
// alternative to reachability verification; no ODE integration.
func SelectDisc(field *obstacle.Field, state []float64, cands [][]float64, robotRad float64, dims int) Result {
	for _, cand := range reversed(cands) {
		rad := util.Distance2D(state, cand)
		if field.CheckDisc(cand, robotRad, rad) {
			return Result{Found: true, Goal: cand, Tube: []reach.TimedRect{discRect(cand, rad, dims)}}
		}
	}
	return Result{}
}

// discRect is the singleton tube entry of a disc selection: the candidate
// bloated by the query radius in its planar dimensions, degenerate in the
// rest.
func discRect(cand []float64, rad float64, dims int) reach.TimedRect {
	r := geom.NewRect(dims)
	for d := range cand {
		r.Dims[d] = geom.NewInterval(cand[d]-rad, cand[d]+rad)
	}
	return reach.TimedRect{Time: 0, Rect: r}
}

// SelectReach verifies candidates with the supplied reachability check,
// splitting the wall budget equally among them, and returns the first safe
// candidate.
func SelectReach(cands [][]float64, budget time.Duration, verify VerifyFunc) (Result, error) {
	ordered := reversed(cands)
	if len(ordered) == 0 {
		return Result{}, nil
	}
	perCandidate := budget / time.Duration(len(ordered))
	for _, cand := range ordered {
		safe, tube, err := verify(cand, perCandidate)
		if err != nil {
			return Result{}, err
		}
		if safe {
			return Result{Found: true, Goal: cand, Tube: tube}, nil
		}
	}
	return Result{}, nil
}
