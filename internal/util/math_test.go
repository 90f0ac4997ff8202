package util

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormAndDistance(t *testing.T) {
	assert.Equal(t, 5.0, Norm([]float64{3, 4}))
	assert.Equal(t, 5.0, Distance2D([]float64{0, 0}, []float64{3, 4}))
	assert.Equal(t, 3.0, Distance3D([]float64{0, 0, 0}, []float64{1, 2, 2}))
}

func TestNormalizeAngle(t *testing.T) {
	assert.InDelta(t, -math.Pi/2, NormalizeAngle(1.5*math.Pi), 1e-12)
	assert.InDelta(t, math.Pi/2, NormalizeAngle(-1.5*math.Pi), 1e-12)
	assert.InDelta(t, 0.3, NormalizeAngle(0.3), 1e-12)
}

func TestHeadingError(t *testing.T) {
	assert.InDelta(t, math.Pi/2, HeadingError(0, math.Pi/2), 1e-12)
	// wraps the short way around
	assert.InDelta(t, -math.Pi/2, HeadingError(-0.75*math.Pi, 0.75*math.Pi), 1e-12)
}
