package bicycle

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/npotteig/rtreach-go/internal/geom"
	"github.com/npotteig/rtreach-go/internal/obstacle"
	"github.com/npotteig/rtreach-go/internal/sim"
)

// Derivative bounds at a point match the closed-form dynamics.
func TestDerivativeBoundAtPoint(t *testing.T) {
	m := NewModel()
	state := []float64{1, 2, 1.5, 0.3}
	rect := geom.RectFromPoint(state)
	ctrl := Control{Heading: 0.1, Throttle: 1.0}.Vector()

	wantX := 1.5 * math.Cos(0.3)
	wantY := 1.5 * math.Sin(0.3)
	wantV := -ca*1.5 + ca*cm*(1.0-ch)
	wantTheta := 1.5 * (1.0 / (lf + lr)) * math.Tan(0.1)

	for d, want := range []float64{wantX, wantY, wantV, wantTheta} {
		assert.InDelta(t, want, m.DerivativeBound(rect, 2*d, ctrl), 1e-9, "dim %d min", d)
		assert.InDelta(t, want, m.DerivativeBound(rect, 2*d+1, ctrl), 1e-9, "dim %d max", d)
	}
}

// Interval evaluation over a box encloses the derivative at sampled points.
func TestDerivativeBoundSoundness(t *testing.T) {
	m := NewModel()
	rect := geom.NewRect(NumDims)
	rect.Dims[0] = geom.NewInterval(0, 1)
	rect.Dims[1] = geom.NewInterval(-1, 1)
	rect.Dims[2] = geom.NewInterval(0.5, 2.0)
	rect.Dims[3] = geom.NewInterval(-0.4, 0.4)
	ctrl := Control{Heading: 0.2, Throttle: 5}.Vector()

	for _, v := range []float64{0.5, 1.0, 2.0} {
		for _, theta := range []float64{-0.4, 0, 0.4} {
			point := geom.RectFromPoint([]float64{0.5, 0, v, theta})
			for d := 0; d < NumDims; d++ {
				lo := m.DerivativeBound(rect, 2*d, ctrl)
				hi := m.DerivativeBound(rect, 2*d+1, ctrl)
				at := m.DerivativeBound(point, 2*d, ctrl)
				require.LessOrEqual(t, lo, at+1e-12, "dim %d at v=%v theta=%v", d, v, theta)
				require.GreaterOrEqual(t, hi, at-1e-12, "dim %d at v=%v theta=%v", d, v, theta)
			}
		}
	}
}

func TestVelocityControllerTurnsTowardGoal(t *testing.T) {
	m := NewModel()
	m.SetGoal([2]float64{0, 4})

	// car at origin facing +x, goal straight left: full positive steer
	ctrl := m.SampleStateAction([]float64{0, 0, 1, 0})
	assert.InDelta(t, math.Pi/4, ctrl.Heading, 1e-9)

	// goal dead ahead: no steer, positive throttle
	m.SetGoal([2]float64{4, 0})
	ctrl = m.SampleStateAction([]float64{0, 0, 1, 0})
	assert.InDelta(t, 0, ctrl.Heading, 1e-9)
	assert.Greater(t, ctrl.Throttle, 0.0)
}

// Straight-line free space: safe, and the tube's x-max never decreases.
func TestReachStraightLineFreeSpace(t *testing.T) {
	m := NewModel()
	safe, tube, _, err := RunReachability(m, []float64{0, 0, 0, 0},
		Control{Heading: 0.0, Throttle: 1.0},
		ReachOptions{ReachTime: 2.0, StepSize: 0.1, StoreTube: true})
	require.NoError(t, err)
	assert.True(t, safe)

	require.NotEmpty(t, tube)
	for i := 1; i < len(tube); i++ {
		assert.GreaterOrEqual(t, tube[i].Rect.Dims[0].Max, tube[i-1].Rect.Dims[0].Max)
	}
}

// Head-on wall: a static obstacle dead ahead makes the query unsafe, and
// the simulated trajectory confirms the collision (no false safety claim).
func TestReachHeadOnObstacle(t *testing.T) {
	m := NewModel()
	field := obstacle.NewField([][2]float64{{2.0, 0.0}}, 0.5, 0.5, 0)

	safe, tube, _, err := RunReachability(m, []float64{0, 0, 0, 0},
		Control{Heading: 0.0, Throttle: 1.0},
		ReachOptions{ReachTime: 2.0, StepSize: 0.1, StoreTube: true, Field: field.Snapshot()})
	require.NoError(t, err)
	assert.False(t, safe)

	// some intermediate box, bloated by the footprint, overlaps the obstacle
	overlap := false
	for _, tr := range tube {
		r := tr.Rect.Clone()
		r.Dims[0].Min -= Footprint[0]
		r.Dims[0].Max += Footprint[0]
		r.Dims[1].Min -= Footprint[1]
		r.Dims[1].Max += Footprint[1]
		if !field.CheckRect(r, nil) {
			overlap = true
			break
		}
	}
	assert.True(t, overlap)

	// fine-grained ground truth: the simulated car also hits the obstacle
	ctrl := Control{Heading: 0, Throttle: 1.0}
	states, _ := sim.Simulate(m, []float64{0, 0, 0, 0}, ctrl.Vector(), 0.001,
		func(state []float64, tm float64) bool {
			return tm >= 2.0 || HasCollided(state, field)
		})
	assert.True(t, HasCollided(states[len(states)-1], field))
}

// Anytime deadline: a 1 ms budget still returns a verdict without panicking.
func TestReachTinyDeadline(t *testing.T) {
	m := NewModel()
	start := time.Now()
	_, _, stats, err := RunReachability(m, []float64{0, 0, 0, 0},
		Control{Heading: 0.0, Throttle: 1.0},
		ReachOptions{ReachTime: 2.0, StepSize: 0.1, WallBudget: time.Millisecond, StartTime: start})
	require.NoError(t, err)
	assert.GreaterOrEqual(t, stats.Iterations, uint64(1))
	assert.Less(t, time.Since(start), time.Second)
}

func TestHasCollided(t *testing.T) {
	field := obstacle.NewField([][2]float64{{1, 0}}, 0.5, 0.5, 0)
	assert.False(t, HasCollided([]float64{0, 0, 0, 0}, field))
	// footprint bloat reaches the obstacle edge at x = 0.75
	assert.True(t, HasCollided([]float64{0.6, 0, 0, 0}, field))
	assert.True(t, HasCollided([]float64{1, 0, 0, 0}, field))
}

func TestSelectSafeSubgoalDisc(t *testing.T) {
	// obstacle on top of the near candidates: nothing clears
	blocked := obstacle.NewField([][2]float64{{0.2, 0}}, 0.5, 0.5, 0)
	res := SelectSafeSubgoalDisc(blocked, []float64{0, 0, 0, 0}, [2]float64{0, 0}, [2]float64{4, 0}, 10, false)
	assert.False(t, res.Found)

	// obstacle moved off the path: closest-to-goal clearing candidate wins
	offset := obstacle.NewField([][2]float64{{2, 1.0}}, 0.5, 0.5, 0)
	res = SelectSafeSubgoalDisc(offset, []float64{0, 0, 0, 0}, [2]float64{0, 0}, [2]float64{4, 0}, 10, false)
	require.True(t, res.Found)
	assert.InDelta(t, 0.8, res.Goal[0], 1e-12)
}

func TestSelectSafeSubgoalReach(t *testing.T) {
	m := NewModel()
	field := obstacle.NewField([][2]float64{{2.0, 0.0}}, 0.5, 0.5, 0)

	res, err := SelectSafeSubgoalReach(m, []float64{0, 0, 0, 0},
		[2]float64{0, 0}, [2]float64{4, 0}, 5, false,
		ReachOptions{ReachTime: 2.0, StepSize: 0.1, WallBudget: 100 * time.Millisecond, Field: field.Snapshot()})
	require.NoError(t, err)

	if res.Found {
		// the winning subgoal's control must itself verify safe
		m.SetGoal([2]float64{res.Goal[0], res.Goal[1]})
		ctrl := m.SampleStateAction([]float64{0, 0, 0, 0})
		safe, _, _, err := RunReachability(m, []float64{0, 0, 0, 0}, ctrl,
			ReachOptions{ReachTime: 2.0, StepSize: 0.1, Field: field.Snapshot()})
		require.NoError(t, err)
		assert.True(t, safe)
	}
}

func TestControlVectorOrdering(t *testing.T) {
	v := Control{Heading: 0.5, Throttle: 9}.Vector()
	assert.Equal(t, []float64{0.5, 9}, v)
}
