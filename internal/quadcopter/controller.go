package quadcopter

import (
	"math"

	"github.com/npotteig/rtreach-go/internal/util"
)

// Cascaded proportional gains: velocity loop, attitude loop, rate loop.
const (
	kpU = 0.75
	kpV = 0.75
	kpW = 1.0

	kpPhi   = 8.0
	kpTheta = 8.0
	kpPsi   = 1.5

	kpP = 1.5
	kpQ = 1.5
	kpR = 1.0
)

// GoalConditionedAction steers toward the goal by requesting the
// straight-line planar velocity and the goal altitude.
func GoalConditionedAction(state, goal []float64) []float64 {
	vxDes := goal[0] - state[0]
	vyDes := goal[1] - state[1]
	return XYVelZPosController(vxDes, vyDes, goal[2], true, state)
}

// XYVelZPosController tracks a planar velocity and an altitude with the
// cascaded P structure: desired velocities set desired attitudes, attitude
// errors set desired rates, rate errors set torques. forwardLooking yaws
// the airframe toward the motion direction.
func XYVelZPosController(xDotDes, yDotDes, zDes float64, forwardLooking bool, state []float64) []float64 {
	z := state[2]
	phi := state[3]
	theta := state[4]
	psi := state[5]
	u := state[6]
	v := state[7]
	w := state[8]
	p := state[9]
	q := state[10]
	r := state[11]

	uDes := xDotDes
	vDes := yDotDes
	wDes := zDes - z

	thetaDes := -kpU * (uDes - u) / gravity
	phiDes := kpV * (vDes - v) / gravity
	psiDes := math.Atan2(yDotDes, xDotDes)

	pDes := kpPhi * (phiDes - phi)
	qDes := kpTheta * (thetaDes - theta)
	rDes := 0.0
	if forwardLooking {
		rDes = kpPsi * util.NormalizeAngle(psiDes-psi)
	}

	ft := -mass * kpW * (wDes - w)
	torX := iX * kpP * (pDes - p)
	torY := iY * kpQ * (qDes - q)
	torZ := iZ * kpR * (rDes - r)

	return []float64{ft, torX, torY, torZ}
}
