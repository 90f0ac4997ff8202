package quadcopter

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/npotteig/rtreach-go/internal/geom"
	"github.com/npotteig/rtreach-go/internal/sim"
)

func TestDerivativeBoundAtPoint(t *testing.T) {
	m := NewModel()
	state := make([]float64, NumDims)
	state[3] = 0.1  // phi
	state[4] = -0.2 // theta
	state[6] = 1.0  // u
	state[9] = 0.5  // p
	rect := geom.RectFromPoint(state)
	ctrl := Control{Thrust: 0.6, TorqueX: 0.01}.Vector()

	assert.InDelta(t, 1.0, m.DerivativeBound(rect, 0, ctrl), 1e-12)           // x' = u
	assert.InDelta(t, 0.5, m.DerivativeBound(rect, 6, ctrl), 1e-12)           // phi' = p
	assert.InDelta(t, -gravity*-0.2, m.DerivativeBound(rect, 12, ctrl), 1e-12) // u' = -g*theta
	assert.InDelta(t, gravity*0.1, m.DerivativeBound(rect, 14, ctrl), 1e-12)  // v' = g*phi
	assert.InDelta(t, -0.6/mass, m.DerivativeBound(rect, 16, ctrl), 1e-12)    // w' = -ft/m
	assert.InDelta(t, 0.01/iX, m.DerivativeBound(rect, 18, ctrl), 1e-12)      // p' = tor_x/I_x
}

// Hover trim: small opposing torques keep the 2 s reach tube bounded and
// safe in open space.
func TestReachHoverTrim(t *testing.T) {
	m := NewModel()
	start := make([]float64, NumDims)

	safe, tube, _, err := RunReachability(m, start,
		Control{Thrust: 0, TorqueX: 0.001, TorqueY: -0.001, TorqueZ: 0},
		ReachOptions{ReachTime: 2.0, StepSize: 0.1, StoreTube: true})
	require.NoError(t, err)
	assert.True(t, safe)

	require.NotEmpty(t, tube)
	for _, tr := range tube {
		assert.Less(t, tr.Rect.MaxWidth(), 100.0)
	}
}

func TestControllerHoldsAltitude(t *testing.T) {
	m := NewModel()
	m.SetGoal([3]float64{0, 0, 1})

	// below goal altitude, at rest: positive climb thrust demand is
	// negative ft (w is measured downward in the linearized model)
	state := make([]float64, NumDims)
	ctrl := m.SampleStateAction(state)
	assert.Less(t, ctrl.Thrust, 0.0)

	// at goal altitude with no velocity error: zero thrust correction
	state[2] = 1
	ctrl = m.SampleStateAction(state)
	assert.InDelta(t, 0.0, ctrl.Thrust, 1e-12)
}

func TestControllerYawsTowardMotion(t *testing.T) {
	state := make([]float64, NumDims)
	u := XYVelZPosController(0, 1, 0, true, state)
	// desired psi = pi/2 produces positive yaw torque
	assert.Greater(t, u[3], 0.0)

	u = XYVelZPosController(0, 1, 0, false, state)
	assert.Equal(t, 0.0, u[3])
}

// The cascaded controller actually flies the simulated quadcopter toward a
// nearby goal.
func TestSimulatedFlightConverges(t *testing.T) {
	m := NewModel()
	goal := [3]float64{1, 0.5, 0}
	m.SetGoal(goal)

	state := make([]float64, NumDims)
	h := 0.01
	for i := 0; i < 1500; i++ {
		ctrl := m.SampleStateAction(state)
		state = sim.StepRK4(m, state, ctrl.Vector(), h)
	}
	dist := math.Hypot(state[0]-goal[0], state[1]-goal[1])
	assert.Less(t, dist, 0.5)
}

func TestControlVectorOrdering(t *testing.T) {
	v := Control{Thrust: 1, TorqueX: 2, TorqueY: 3, TorqueZ: 4}.Vector()
	assert.Equal(t, []float64{1, 2, 3, 4}, v)
}
