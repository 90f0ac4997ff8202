// Package util holds small shared numeric helpers.
package util

import "math"

// Norm returns the Euclidean norm of vec.
func Norm(vec []float64) float64 {
	sum := 0.0
	for _, v := range vec {
		sum += v * v
	}
	return math.Sqrt(sum)
}

// Distance2D returns the planar distance between two positions.
func Distance2D(a, b []float64) float64 {
	return math.Hypot(a[0]-b[0], a[1]-b[1])
}

// Distance3D returns the spatial distance between two positions.
func Distance3D(a, b []float64) float64 {
	return Norm([]float64{a[0] - b[0], a[1] - b[1], a[2] - b[2]})
}

// NormalizeAngle wraps an angle into [-pi, pi].
func NormalizeAngle(angle float64) float64 {
	for angle > math.Pi {
		angle -= 2 * math.Pi
	}
	for angle < -math.Pi {
		angle += 2 * math.Pi
	}
	return angle
}

// HeadingError returns the normalized difference between the goal direction
// and the current heading.
func HeadingError(current, goal float64) float64 {
	return NormalizeAngle(goal - current)
}
