// Package geom provides the interval arithmetic and axis-aligned box algebra
// underlying the reachability engine. All interval operations return sound
// enclosures: for any operands inside the inputs, the true result lies inside
// the output.
package geom

import (
	"errors"
	"math"
)

// TwoPi is the trigonometric period used by the peak/trough detection.
const TwoPi = 2.0 * math.Pi

// ErrDivideByZero reports a divisor interval that straddles zero.
// Div panics with this value; dividing by such an interval is a contract
// violation on the caller's side, not a recoverable condition.
var ErrDivideByZero = errors.New("geom: divisor interval contains zero")

// Interval is a closed real interval [Min, Max] with Min <= Max.
type Interval struct {
	Min, Max float64
}

// NewInterval returns the interval [min, max].
func NewInterval(min, max float64) Interval {
	return Interval{Min: min, Max: max}
}

// Point returns the degenerate interval [v, v].
func Point(v float64) Interval {
	return Interval{Min: v, Max: v}
}

// Width returns Max - Min.
func (i Interval) Width() float64 {
	return i.Max - i.Min
}

// Add returns the sound enclosure of i + j.
func Add(i, j Interval) Interval {
	return Interval{Min: i.Min + j.Min, Max: i.Max + j.Max}
}

// Sub returns the sound enclosure of i - j.
func Sub(i, j Interval) Interval {
	return Interval{Min: i.Min - j.Max, Max: i.Max - j.Min}
}

// Mul returns the sound enclosure of i * j, taking the extrema over the four
// endpoint products so sign-straddling operands are handled.
func Mul(i, j Interval) Interval {
	a, b := i.Min, i.Max
	c, d := j.Min, j.Max
	return Interval{
		Min: math.Min(math.Min(a*c, a*d), math.Min(b*c, b*d)),
		Max: math.Max(math.Max(a*c, a*d), math.Max(b*c, b*d)),
	}
}

// Div returns the sound enclosure of i / j. The divisor must not contain
// zero; Div panics with ErrDivideByZero otherwise.
func Div(i, j Interval) Interval {
	if j.Min <= 0 && j.Max >= 0 {
		panic(ErrDivideByZero)
	}
	return Mul(i, Interval{Min: 1.0 / j.Max, Max: 1.0 / j.Min})
}

// Pow returns the sound enclosure of i^n for integer n >= 0.
func Pow(i Interval, n int) Interval {
	a, b := i.Min, i.Max
	if n%2 == 1 {
		return Interval{Min: math.Pow(a, float64(n)), Max: math.Pow(b, float64(n))}
	}
	switch {
	case a >= 0:
		return Interval{Min: math.Pow(a, float64(n)), Max: math.Pow(b, float64(n))}
	case b < 0:
		return Interval{Min: math.Pow(b, float64(n)), Max: math.Pow(a, float64(n))}
	default:
		// straddles zero
		return Interval{Min: 0, Max: math.Max(math.Pow(a, float64(n)), math.Pow(b, float64(n)))}
	}
}

// containsCritical reports whether the argument interval [a, b] contains a
// point of the form offset + 2*pi*k. Endpoint evaluation in the callers
// already encloses a critical point landing exactly on a or b, so the
// floor-quotient comparison is sufficient.
func containsCritical(a, b, offset float64) bool {
	return math.Floor((a-offset)/TwoPi) != math.Floor((b-offset)/TwoPi)
}

// Sin returns the sound enclosure of sin over i. If the argument contains a
// trough (3*pi/2 + 2*pi*k) the minimum is clamped to -1; if it contains a
// peak (pi/2 + 2*pi*k) the maximum is clamped to +1.
func Sin(i Interval) Interval {
	a, b := i.Min, i.Max
	var out Interval
	if containsCritical(a, b, 1.5*math.Pi) {
		out.Min = -1
	} else {
		out.Min = math.Min(math.Sin(a), math.Sin(b))
	}
	if containsCritical(a, b, 0.5*math.Pi) {
		out.Max = 1
	} else {
		out.Max = math.Max(math.Sin(a), math.Sin(b))
	}
	return out
}

// Cos returns the sound enclosure of cos over i, with troughs at
// pi + 2*pi*k and peaks at 2*pi*k.
func Cos(i Interval) Interval {
	a, b := i.Min, i.Max
	var out Interval
	if containsCritical(a, b, math.Pi) {
		out.Min = -1
	} else {
		out.Min = math.Min(math.Cos(a), math.Cos(b))
	}
	if containsCritical(a, b, 0) {
		out.Max = 1
	} else {
		out.Max = math.Max(math.Cos(a), math.Cos(b))
	}
	return out
}
