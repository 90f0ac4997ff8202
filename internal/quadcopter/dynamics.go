// Package quadcopter implements a linearized 12-dimensional quadcopter
// model (DJI F450 parameters), its cascaded controller, and the
// safe-subgoal glue for the aerial experiments.
//
//	x' = u        phi'   = p      u' = -g * theta    p' = tor_x / I_x
//	y' = v        theta' = q      v' =  g * phi      q' = tor_y / I_y
//	z' = w        psi'   = r      w' = -f_t / m      r' = tor_z / I_z
//
// State: [x, y, z, phi, theta, psi, u, v, w, p, q, r].
// Inputs: thrust f_t and body torques tor_x, tor_y, tor_z.
package quadcopter

import (
	"fmt"

	"github.com/npotteig/rtreach-go/internal/geom"
	"github.com/npotteig/rtreach-go/internal/model"
)

// NumDims is the state dimensionality.
const NumDims = 12

// Footprint holds the airframe's planar half-extents.
var Footprint = [2]float64{0.16, 0.16}

// Physical parameters.
const (
	gravity = 9.81
	mass    = 1.2
	iX      = 0.0123
	iY      = 0.0123
	iZ      = 0.0224
)

// Control is the quadcopter actuation: collective thrust and body torques.
type Control struct {
	Thrust  float64
	TorqueX float64
	TorqueY float64
	TorqueZ float64
}

// Vector returns the engine-ordered control vector.
func (c Control) Vector() []float64 {
	return []float64{c.Thrust, c.TorqueX, c.TorqueY, c.TorqueZ}
}

// Model is the quadcopter system; it owns its goal and policy.
type Model struct {
	goal   [3]float64
	policy model.Policy
}

// NewModel returns a quadcopter with the goal-conditioned cascaded
// controller.
func NewModel() *Model {
	return &Model{policy: model.PolicyFunc(GoalConditionedAction)}
}

// SetPolicy replaces the control policy.
func (m *Model) SetPolicy(p model.Policy) {
	m.policy = p
}

// SetGoal updates the policy goal.
func (m *Model) SetGoal(goal [3]float64) {
	m.goal = goal
}

// Goal returns the current goal.
func (m *Model) Goal() [3]float64 {
	return m.goal
}

// Dims implements model.System.
func (m *Model) Dims() int {
	return NumDims
}

// SampleStateAction asks the policy for a control at the given state.
func (m *Model) SampleStateAction(state []float64) Control {
	u := m.policy.Sample(state, m.goal[:])
	return Control{Thrust: u[0], TorqueX: u[1], TorqueY: u[2], TorqueZ: u[3]}
}

// SampleControl implements model.ControlSampler with the rectangle's mean
// point.
func (m *Model) SampleControl(rect geom.Rect) []float64 {
	return m.SampleStateAction(rect.MeanPoint()).Vector()
}

// DerivativeBound implements model.System.
func (m *Model) DerivativeBound(rect geom.Rect, face int, ctrl []float64) float64 {
	ft, torX, torY, torZ := ctrl[0], ctrl[1], ctrl[2], ctrl[3]
	dim := face / 2
	isMin := face%2 == 0

	phi := rect.Dims[3]
	theta := rect.Dims[4]
	u := rect.Dims[6]
	v := rect.Dims[7]
	w := rect.Dims[8]
	p := rect.Dims[9]
	q := rect.Dims[10]
	r := rect.Dims[11]

	var rv geom.Interval
	switch dim {
	case 0:
		rv = u
	case 1:
		rv = v
	case 2:
		rv = w
	case 3:
		rv = p
	case 4:
		rv = q
	case 5:
		rv = r
	case 6:
		// u' = -g * theta
		rv = geom.Mul(geom.Point(-gravity), theta)
	case 7:
		// v' = g * phi
		rv = geom.Mul(geom.Point(gravity), phi)
	case 8:
		// w' = -f_t / m
		rv = geom.Div(geom.Point(-ft), geom.Point(mass))
	case 9:
		rv = geom.Div(geom.Point(torX), geom.Point(iX))
	case 10:
		rv = geom.Div(geom.Point(torY), geom.Point(iY))
	case 11:
		rv = geom.Div(geom.Point(torZ), geom.Point(iZ))
	default:
		panic(fmt.Sprintf("quadcopter: invalid face index %d", face))
	}

	if isMin {
		return rv.Min
	}
	return rv.Max
}
