package subgoal

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/npotteig/rtreach-go/internal/obstacle"
	"github.com/npotteig/rtreach-go/internal/reach"
)

func TestLinear(t *testing.T) {
	cands := Linear([]float64{0, 0}, []float64{4, 0}, 10)
	require.Len(t, cands, 10)
	assert.InDelta(t, 0.4, cands[0][0], 1e-12)
	assert.InDelta(t, 4.0, cands[9][0], 1e-12)
	assert.Equal(t, 0.0, cands[9][1])
}

func TestSlidingWindowClipsToSegment(t *testing.T) {
	start := []float64{0, 0}
	goal := []float64{10, 0}

	// robot at the start: window behind clips to the start point
	cands := SlidingWindow(start, goal, []float64{0, 0}, 10, 1.0, 5.0)
	require.Len(t, cands, 11)
	assert.Equal(t, 0.0, cands[0][0])
	assert.InDelta(t, 5.0, cands[10][0], 1e-12)

	// robot near the goal: window ahead clips to the goal
	cands = SlidingWindow(start, goal, []float64{9, 0}, 10, 1.0, 5.0)
	assert.InDelta(t, 8.0, cands[0][0], 1e-12)
	assert.InDelta(t, 10.0, cands[10][0], 1e-12)
}

func TestSlidingWindowProjectsOffSegment(t *testing.T) {
	cands := SlidingWindow([]float64{0, 0}, []float64{10, 0}, []float64{3, 2}, 10, 1.0, 1.0)
	assert.InDelta(t, 2.0, cands[0][0], 1e-12)
	assert.InDelta(t, 4.0, cands[10][0], 1e-12)
	for _, c := range cands {
		assert.Equal(t, 0.0, c[1])
	}
}

// An obstacle sitting right on the first candidates blocks every clearance
// disc: near candidates are too close, far candidates have discs wide
// enough to swallow the obstacle.
func TestSelectDiscNoSafeSubgoal(t *testing.T) {
	field := obstacle.NewField([][2]float64{{0.2, 0}}, 0.5, 0.5, 0)
	cands := Linear([]float64{0, 0}, []float64{4, 0}, 10)

	res := SelectDisc(field, []float64{0, 0}, cands, 0.1, 4)
	assert.False(t, res.Found)
	assert.Nil(t, res.Goal)
}

// With the obstacle off the path, the selector returns the candidate
// closest to the goal whose clearance is positive.
func TestSelectDiscPrefersGoalSide(t *testing.T) {
	field := obstacle.NewField([][2]float64{{2, 1.0}}, 0.5, 0.5, 0)
	cands := Linear([]float64{0, 0}, []float64{4, 0}, 10)

	res := SelectDisc(field, []float64{0, 0}, cands, 0.1, 4)
	require.True(t, res.Found)
	assert.InDelta(t, 0.8, res.Goal[0], 1e-12)

	// every candidate nearer the goal must fail its clearance test
	for _, cand := range cands {
		if cand[0] > res.Goal[0] {
			rad := cand[0] // distance from origin along x
			assert.False(t, field.CheckDisc(cand, 0.1, rad))
		}
	}

	// the singleton tube is the clearance disc's bounding box
	require.Len(t, res.Tube, 1)
	assert.Equal(t, 4, res.Tube[0].Rect.NumDims())
	assert.InDelta(t, 0.8, (res.Tube[0].Rect.Dims[0].Min+res.Tube[0].Rect.Dims[0].Max)/2, 1e-12)
}

func TestSelectReachTakesFirstSafeInGoalOrder(t *testing.T) {
	cands := Linear([]float64{0, 0}, []float64{4, 0}, 4)

	var tried []float64
	verify := func(goal []float64, budget time.Duration) (bool, []reach.TimedRect, error) {
		tried = append(tried, goal[0])
		return goal[0] <= 2.0, nil, nil
	}

	res, err := SelectReach(cands, 100*time.Millisecond, verify)
	require.NoError(t, err)
	require.True(t, res.Found)
	assert.Equal(t, 2.0, res.Goal[0])
	// goal-first priority: 4.0 and 3.0 rejected before 2.0 accepted
	assert.Equal(t, []float64{4, 3, 2}, tried)
}

func TestSelectReachSplitsBudget(t *testing.T) {
	cands := Linear([]float64{0, 0}, []float64{4, 0}, 4)

	var budgets []time.Duration
	verify := func(goal []float64, budget time.Duration) (bool, []reach.TimedRect, error) {
		budgets = append(budgets, budget)
		return false, nil, nil
	}

	res, err := SelectReach(cands, 100*time.Millisecond, verify)
	require.NoError(t, err)
	assert.False(t, res.Found)
	require.Len(t, budgets, 4)
	for _, b := range budgets {
		assert.Equal(t, 25*time.Millisecond, b)
	}
}
