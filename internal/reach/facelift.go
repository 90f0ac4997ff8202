package reach

import (
	"math"
	"time"

	"github.com/npotteig/rtreach-go/internal/geom"
	"github.com/npotteig/rtreach-go/internal/model"
)

// rk4FaceTerm evaluates the classical RK4 composite of the derivative
// enclosure over rect and returns the face's motion over stepSize: the min
// component for a minimum face, the max component for a maximum face.
func rk4FaceTerm(sys model.System, rect geom.Rect, face int, ctrl []float64, stepSize float64) float64 {
	dim := face / 2
	isMin := face%2 == 0

	k1 := model.DerivativeBox(sys, rect, ctrl)

	rk2 := rect.Clone()
	for d := range rk2.Dims {
		rk2.Dims[d].Min += k1.Dims[d].Min * stepSize / 2
		rk2.Dims[d].Max += k1.Dims[d].Max * stepSize / 2
	}
	k2 := model.DerivativeBox(sys, rk2, ctrl)

	rk3 := rect.Clone()
	for d := range rk3.Dims {
		rk3.Dims[d].Min += k2.Dims[d].Min * stepSize / 2
		rk3.Dims[d].Max += k2.Dims[d].Max * stepSize / 2
	}
	k3 := model.DerivativeBox(sys, rk3, ctrl)

	rk4 := rect.Clone()
	for d := range rk4.Dims {
		rk4.Dims[d].Min += k3.Dims[d].Min * stepSize
		rk4.Dims[d].Max += k3.Dims[d].Max * stepSize
	}
	k4 := model.DerivativeBox(sys, rk4, ctrl)

	if isMin {
		return (stepSize / 6) * (k1.Dims[dim].Min + 2*k2.Dims[dim].Min + 2*k3.Dims[dim].Min + k4.Dims[dim].Min)
	}
	return (stepSize / 6) * (k1.Dims[dim].Max + 2*k2.Dims[dim].Max + 2*k3.Dims[dim].Max + k4.Dims[dim].Max)
}

// makeNeighborhoodRect builds the slab just outside a face: the bloated
// rectangle flattened onto the original rectangle's face, extended outward
// by nebWidth (negative widths extend the minimum side).
func makeNeighborhoodRect(face int, bloated, original geom.Rect, nebWidth float64) geom.Rect {
	out := bloated.Clone()
	dim := face / 2
	if face%2 == 0 {
		out.Dims[dim] = geom.Point(original.Dims[dim].Min)
	} else {
		out.Dims[dim] = geom.Point(original.Dims[dim].Max)
	}
	if nebWidth < 0 {
		out.Dims[dim].Min += nebWidth
	} else {
		out.Dims[dim].Max += nebWidth
	}
	return out
}

// liftSingleRect performs one face-lifting step on rect in place and
// returns the elapsed simulated time. The neighborhood widths are refined
// until the derivative bounds stabilise; the permitted step is the minimum
// face-cross time clipped to timeRemaining.
func liftSingleRect(sys model.System, rect *geom.Rect, stepSize, timeRemaining float64, ctrl []float64, set *Settings) (float64, error) {
	faces := model.NumFaces(sys)
	bloated := rect.Clone()
	nebWidth := make([]float64, faces)
	ders := make([]float64, faces)

	minCrossTime := math.MaxFloat64
	needRecompute := true
	for needRecompute {
		needRecompute = false
		minCrossTime = math.MaxFloat64

		for f := 0; f < faces; f++ {
			dim := f / 2
			isMin := f%2 == 0

			nebRect := makeNeighborhoodRect(f, bloated, *rect, nebWidth[f])
			der := rk4FaceTerm(sys, nebRect, f, ctrl, stepSize)
			if der > MaxDerivative {
				der = MaxDerivative
			} else if der < MinDerivative {
				der = MinDerivative
			}

			prevWidth := nebWidth[f]
			newWidth := der

			grewOutward := (isMin && newWidth < 0) || (!isMin && newWidth > 0)
			prevGrewOutward := (isMin && prevWidth < 0) || (!isMin && prevWidth > 0)

			// an outward face never flips back inward
			if !grewOutward && prevGrewOutward {
				newWidth = 0
				der = 0
			}

			if !prevGrewOutward && grewOutward {
				needRecompute = true
			}
			if math.Abs(newWidth) > 2*math.Abs(prevWidth) {
				needRecompute = true
			}

			if needRecompute {
				nebWidth[f] = newWidth
				if isMin && newWidth < 0 {
					bloated.Dims[dim].Min = rect.Dims[dim].Min + newWidth
				} else if !isMin && newWidth > 0 {
					bloated.Dims[dim].Max = rect.Dims[dim].Max + newWidth
				}
				continue
			}

			// stable: the face's cross time bounds the step. Clamp the
			// derivative if it points inward along the face but outward in
			// the neighborhood.
			if der < 0 && prevWidth > 0 {
				der = 0
			} else if der > 0 && prevWidth < 0 {
				der = 0
			}
			if der != 0 {
				crossTime := prevWidth * stepSize / der
				if crossTime < minCrossTime {
					minCrossTime = crossTime
				}
			}
			ders[f] = der
		}
	}

	if minCrossTime*2 < stepSize {
		return 0, &ContractError{Reason: "minimum neighborhood cross time is less than half the step size", Settings: set}
	}

	// guard against multiplication/division rounding
	timeToElapse := minCrossTime * 99999.0 / 100000.0
	if timeRemaining < timeToElapse {
		timeToElapse = timeRemaining
	}

	// each face moves at its stable neighborhood rate (der per stepSize), the
	// same rate the cross time assumes, so it stays inside its neighborhood
	for d := 0; d < sys.Dims(); d++ {
		if ders[2*d] != 0 {
			rect.Dims[d].Min += ders[2*d] * timeToElapse / stepSize
		}
		if ders[2*d+1] != 0 {
			rect.Dims[d].Max += ders[2*d+1] * timeToElapse / stepSize
		}
	}

	if !geom.Contains(bloated, *rect) {
		return 0, &ContractError{Reason: "lifted rectangle is outside the bloated rectangle", Settings: set}
	}
	return timeToElapse, nil
}

// IterativeImprovement runs whole reach computations with progressively
// halved step sizes until the wall budget would be exceeded by another
// iteration, then returns the last complete iteration's verdict. start
// anchors the budget; a zero start means now.
//
// The verdict is conservative: deadline expiry before any complete
// iteration, width blow-up, a step-size floor, or a failed safety callback
// all report unsafe. Contract violations are returned as *ContractError.
func IterativeImprovement(sys model.System, start time.Time, set *Settings, ctrl []float64) (bool, Stats, error) {
	if start.IsZero() {
		start = time.Now()
	}

	var (
		rv           bool
		lastIterSafe bool
		stats        Stats
		elapsedPrev  time.Duration
		nextEstimate time.Duration
	)
	stepSize := set.InitialStepSize

	sampler, canSample := sys.(model.ControlSampler)

	for {
		stats.Iterations++
		stats.FinalStepSize = stepSize
		safe := true

		// below this floor floating-point error dominates the lift
		if stepSize < minStepSize {
			rv = false
			break
		}

		if set.OnRestart != nil {
			set.OnRestart()
		}

		timeRemaining := set.ReachTime
		tracked := set.Init.Clone()
		var hull geom.Rect
		totalHull := tracked.Clone()
		stepCtrl := ctrl

		for safe && timeRemaining > 0 {
			if set.DynamicControl && canSample {
				stepCtrl = sampler.SampleControl(tracked)
			}
			if set.OnIntermediate != nil {
				hull = tracked.Clone()
			}

			elapsed, err := liftSingleRect(sys, &tracked, stepSize, timeRemaining, stepCtrl, set)
			if err != nil {
				stats.Elapsed = time.Since(start)
				return false, stats, err
			}

			if tracked.MaxWidth() > set.MaxRectWidthBeforeError {
				safe = false
			} else if set.OnIntermediate != nil {
				hull.GrowToConvexHull(tracked)
				totalHull.GrowToConvexHull(tracked)
				safe = safe && set.OnIntermediate(&hull, set.ReachTime-timeRemaining)
			}

			if elapsed == timeRemaining && set.OnFinal != nil {
				safe = safe && set.OnFinal(&tracked, set.ReachTime)
			}
			timeRemaining -= elapsed
		}

		elapsedTotal := time.Since(start)
		nextEstimate = nextIterEstimate(elapsedTotal-elapsedPrev, nextEstimate)
		elapsedPrev = elapsedTotal

		if set.MaxRuntime <= 0 {
			// no budget: a single iteration decides
			rv = safe
			break
		}

		if set.MaxRuntime-elapsedTotal <= nextEstimate {
			// out of time; report the last complete iteration
			if set.OnFinal != nil {
				set.OnFinal(&totalHull, set.ReachTime)
			}
			if stats.Iterations > 1 {
				rv = lastIterSafe
			} else {
				rv = safe
			}
			break
		}
		if !safe && set.OnFinal != nil {
			set.OnFinal(&totalHull, set.ReachTime)
		}

		lastIterSafe = safe
		if set.FixedStep {
			rv = safe
			break
		}
		stepSize /= 2
	}

	stats.Elapsed = time.Since(start)
	return rv, stats, nil
}
