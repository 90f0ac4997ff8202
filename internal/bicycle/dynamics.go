// Package bicycle implements the kinematic bicycle model used by the ground
// vehicle experiments, its velocity controller, and the safe-subgoal glue.
//
// The bicycle model is the standard front-steering car model and tracks well
// at low speeds:
//
//	x'     = v * cos(theta)
//	y'     = v * sin(theta)
//	v'     = -ca * v + ca*cm*(u - ch)
//	theta' = v * (1/(lf+lr)) * tan(delta)
//
// State vector: [x, y, v, theta]. Inputs: delta (heading) and u (throttle).
// Parameters identified on the f1tenth platform.
package bicycle

import (
	"fmt"

	"github.com/npotteig/rtreach-go/internal/geom"
	"github.com/npotteig/rtreach-go/internal/model"
)

// NumDims is the state dimensionality.
const NumDims = 4

// Footprint holds the car's half-extents: 0.5 m long, 0.3 m wide.
var Footprint = [2]float64{0.25, 0.15}

// Model parameters.
const (
	ca = 1.9569
	cm = 0.0342
	ch = -37.1967
	lf = 0.225
	lr = 0.225
)

// Control is the bicycle actuation pair. The engine's control vector is
// always [Heading, Throttle], in that order, everywhere.
type Control struct {
	Heading  float64
	Throttle float64
}

// Vector returns the engine-ordered control vector.
func (c Control) Vector() []float64 {
	return []float64{c.Heading, c.Throttle}
}

// Model is the bicycle system. It owns its goal and its policy; the policy
// may be the analytic velocity controller or a learned stand-in.
type Model struct {
	goal   [2]float64
	policy model.Policy
}

// NewModel returns a bicycle with the goal-conditioned velocity controller.
func NewModel() *Model {
	return &Model{policy: model.PolicyFunc(GoalConditionedAction)}
}

// SetPolicy replaces the control policy.
func (m *Model) SetPolicy(p model.Policy) {
	m.policy = p
}

// SetGoal updates the goal the policy steers toward.
func (m *Model) SetGoal(goal [2]float64) {
	m.goal = goal
}

// Goal returns the current goal.
func (m *Model) Goal() [2]float64 {
	return m.goal
}

// Dims implements model.System.
func (m *Model) Dims() int {
	return NumDims
}

// SampleStateAction asks the policy for a control at the given state.
func (m *Model) SampleStateAction(state []float64) Control {
	u := m.policy.Sample(state, m.goal[:])
	return Control{Heading: u[0], Throttle: u[1]}
}

// SampleControl implements model.ControlSampler with the rectangle's mean
// point, enabling state-dependent control during reachability.
func (m *Model) SampleControl(rect geom.Rect) []float64 {
	return m.SampleStateAction(rect.MeanPoint()).Vector()
}

// DerivativeBound implements model.System with a sound interval evaluation
// of the bicycle derivatives.
func (m *Model) DerivativeBound(rect geom.Rect, face int, ctrl []float64) float64 {
	delta, u := ctrl[0], ctrl[1]
	dim := face / 2
	isMin := face%2 == 0

	v := rect.Dims[2]
	theta := rect.Dims[3]

	var rv geom.Interval
	switch dim {
	case 0:
		// x' = v * cos(theta)
		rv = geom.Mul(v, geom.Cos(theta))
	case 1:
		// y' = v * sin(theta)
		rv = geom.Mul(v, geom.Sin(theta))
	case 2:
		// v' = -ca*v + ca*cm*(u - ch)
		a := geom.Mul(v, geom.Point(-ca))
		b := geom.Mul(geom.Point(ca), geom.Point(cm))
		c := geom.Sub(geom.Point(u), geom.Point(ch))
		rv = geom.Add(a, geom.Mul(b, c))
	case 3:
		// theta' = v * (1/(lf+lr)) * tan(delta)
		a := geom.Mul(v, geom.Point(1.0/(lf+lr)))
		d := geom.Point(delta)
		tan := geom.Div(geom.Sin(d), geom.Cos(d))
		rv = geom.Mul(a, tan)
	default:
		panic(fmt.Sprintf("bicycle: invalid face index %d", face))
	}

	if isMin {
		return rv.Min
	}
	return rv.Max
}
