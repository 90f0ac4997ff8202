package sim

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/npotteig/rtreach-go/internal/geom"
)

// decaySystem is x' = -x, with the analytic solution x(t) = x0 * e^-t.
type decaySystem struct{}

func (decaySystem) Dims() int { return 1 }

func (decaySystem) DerivativeBound(rect geom.Rect, face int, ctrl []float64) float64 {
	if face%2 == 0 {
		return -rect.Dims[0].Max
	}
	return -rect.Dims[0].Min
}

func TestDerivativeAtPoint(t *testing.T) {
	der := Derivative(decaySystem{}, []float64{2}, nil)
	assert.Equal(t, []float64{-2}, der)
}

func TestStepEuler(t *testing.T) {
	next := StepEuler(decaySystem{}, []float64{1}, nil, 0.1)
	assert.InDelta(t, 0.9, next[0], 1e-12)
}

// RK4 tracks the exponential far tighter than Euler at the same step.
func TestStepRK4Accuracy(t *testing.T) {
	euler := []float64{1}
	rk4 := []float64{1}
	for i := 0; i < 10; i++ {
		euler = StepEuler(decaySystem{}, euler, nil, 0.1)
		rk4 = StepRK4(decaySystem{}, rk4, nil, 0.1)
	}
	exact := math.Exp(-1)
	assert.InDelta(t, exact, rk4[0], 1e-6)
	assert.Greater(t, math.Abs(euler[0]-exact), math.Abs(rk4[0]-exact))
}

func TestSimulateRunsUntilStop(t *testing.T) {
	states, tEnd := Simulate(decaySystem{}, []float64{1}, nil, 0.1,
		func(state []float64, tm float64) bool { return tm >= 1.0 })
	require.Len(t, states, 11)
	assert.InDelta(t, 1.0, tEnd, 1e-12)
	assert.Equal(t, []float64{1}, states[0])
	// strictly decaying trajectory
	for i := 1; i < len(states); i++ {
		assert.Less(t, states[i][0], states[i-1][0])
	}
}
