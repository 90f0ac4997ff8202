package geom

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func box(pairs ...float64) Rect {
	r := NewRect(len(pairs) / 2)
	for d := 0; d < len(pairs)/2; d++ {
		r.Dims[d] = NewInterval(pairs[2*d], pairs[2*d+1])
	}
	return r
}

func TestMaxWidth(t *testing.T) {
	r := box(0, 1, 0, 3, -1, 0.5)
	assert.Equal(t, 3.0, r.MaxWidth())

	r.Dims[1].Max = math.Inf(1)
	assert.True(t, math.IsInf(r.MaxWidth(), 1))

	r = box(0, 1)
	r.Dims[0].Min = math.NaN()
	assert.True(t, math.IsInf(r.MaxWidth(), 1))
}

func TestContains(t *testing.T) {
	outer := box(0, 1, 0, 1)
	inner := box(0.1, 0.9, 0.2, 0.8)
	assert.True(t, Contains(outer, inner))
	assert.False(t, Contains(inner, outer))
	assert.True(t, Contains(outer, outer))

	// single dimension sticking out
	inner.Dims[1].Max = 1.5
	assert.False(t, Contains(outer, inner))
}

func TestGrowToConvexHull(t *testing.T) {
	acc := box(0, 1, 0, 1)
	acc.GrowToConvexHull(box(-1, 2, 0.5, 0.6))
	assert.Equal(t, box(-1, 2, 0, 1), acc)

	// growing by a contained box is a no-op, and containment holds after
	contained := box(0, 0.5, 0.2, 0.4)
	before := acc.Clone()
	acc.GrowToConvexHull(contained)
	assert.Equal(t, before, acc)
	assert.True(t, Contains(acc, contained))
}

func TestBloat(t *testing.T) {
	r := Bloat([]float64{1, -2}, 0.5)
	assert.Equal(t, box(0.5, 1.5, -2.5, -1.5), r)
}

func TestRectFromPoint(t *testing.T) {
	r := RectFromPoint([]float64{3, 4})
	assert.Equal(t, box(3, 3, 4, 4), r)
	assert.Equal(t, 0.0, r.MaxWidth())
	assert.Equal(t, []float64{3, 4}, r.MeanPoint())
}

func TestCloneIsDeep(t *testing.T) {
	r := box(0, 1)
	c := r.Clone()
	c.Dims[0].Max = 9
	assert.Equal(t, 1.0, r.Dims[0].Max)
}
