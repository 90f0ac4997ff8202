package bicycle

import (
	"math"

	"github.com/npotteig/rtreach-go/internal/util"
)

// Proportional gains of the velocity controller.
const (
	kpTheta = 1.0
	kpV     = 1.0
)

// GoalConditionedAction derives a control toward the goal by requesting the
// straight-line velocity to it.
func GoalConditionedAction(state, goal []float64) []float64 {
	vxDes := goal[0] - state[0]
	vyDes := goal[1] - state[1]
	return VelocityController([]float64{vxDes, vyDes}, state)
}

// VelocityController maps a desired planar velocity to [heading, throttle].
// The throttle inverts the longitudinal dynamics; large heading errors
// attenuate it so the car turns before accelerating.
func VelocityController(vDes, state []float64) []float64 {
	curVx := state[2] * math.Cos(state[3])
	curVy := state[2] * math.Sin(state[3])

	eVx := vDes[0] - curVx
	eVy := vDes[1] - curVy

	thetaDes := math.Atan2(vDes[1], vDes[0])
	eTheta := util.HeadingError(state[3], thetaDes)

	eLongitudinal := math.Max(eVx*math.Cos(state[3])+eVy*math.Sin(state[3]), 0.1)

	throttle := (kpV*eLongitudinal+ca*state[2])/(ca*cm) + ch
	if math.Abs(eTheta) > math.Pi/2 {
		throttle *= 1.0 - math.Abs(eTheta)/math.Pi
	}

	heading := math.Min(math.Max(kpTheta*eTheta, -math.Pi/4), math.Pi/4)
	return []float64{heading, throttle}
}
