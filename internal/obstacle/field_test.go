package obstacle

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/npotteig/rtreach-go/internal/geom"
)

func posRect(xmin, xmax, ymin, ymax float64) geom.Rect {
	r := geom.NewRect(4)
	r.Dims[0] = geom.NewInterval(xmin, xmax)
	r.Dims[1] = geom.NewInterval(ymin, ymax)
	return r
}

func TestNilFieldIsPermissive(t *testing.T) {
	var f *Field
	assert.True(t, f.CheckRect(posRect(0, 1, 0, 1), nil))
	assert.True(t, f.CheckDisc([]float64{0, 0}, 1, 1))
	assert.True(t, f.CheckWalls(posRect(0, 1, 0, 1)))
	assert.Equal(t, 0, f.Len())
}

func TestCheckRect(t *testing.T) {
	f := NewField([][2]float64{{2, 0}}, 0.5, 0.5, 0)

	assert.True(t, f.CheckRect(posRect(0, 1, -1, 1), nil))
	assert.False(t, f.CheckRect(posRect(1.8, 2.2, -0.1, 0.1), nil))

	// touching boundary counts as disjoint
	assert.True(t, f.CheckRect(posRect(0, 1.75, -1, 1), nil))
}

func TestCheckRectDynamicOverride(t *testing.T) {
	f := NewField([][2]float64{{2, 0}, {5, 5}}, 0.5, 0.5, 1)

	r := posRect(2.5, 3.5, -0.1, 0.1)
	assert.True(t, f.CheckRect(r, nil))

	// advance a query-local copy of the dynamic prefix into the rect's way
	dyn := f.Dynamic()
	step := func(t float64, d []Box) {
		for i := range d {
			d[i].X.Min += t
			d[i].X.Max += t
		}
	}
	step(1.0, dyn)
	assert.False(t, f.CheckRect(r, dyn))

	// the field itself is untouched
	assert.True(t, f.CheckRect(r, nil))
}

func TestAdvanceMutatesFieldPrefixOnly(t *testing.T) {
	f := NewField([][2]float64{{0, 0}, {5, 5}}, 0.5, 0.5, 1)
	f.Advance(2.0, func(t float64, d []Box) {
		for i := range d {
			d[i].X.Min += t
			d[i].X.Max += t
		}
	})
	assert.False(t, f.CheckRect(posRect(1.9, 2.1, -0.1, 0.1), nil))
	// static obstacle unchanged
	assert.False(t, f.CheckRect(posRect(4.9, 5.1, 4.9, 5.1), nil))
}

func TestSnapshotIsIndependent(t *testing.T) {
	f := NewField([][2]float64{{2, 0}}, 0.5, 0.5, 1)
	snap := f.Snapshot()
	f.Advance(10, func(t float64, d []Box) {
		for i := range d {
			d[i].X.Min += t
			d[i].X.Max += t
		}
	})
	assert.False(t, snap.CheckRect(posRect(1.8, 2.2, -0.1, 0.1), nil))
	assert.True(t, f.CheckRect(posRect(1.8, 2.2, -0.1, 0.1), nil))
}

func TestCheckDisc(t *testing.T) {
	f := NewField([][2]float64{{2, 0}}, 0.5, 0.5, 0)

	// obstacle disc radius is hypot(0.25, 0.25) ~ 0.3536
	assert.False(t, f.CheckDisc([]float64{0, 0}, 0.1, 2.0))
	assert.True(t, f.CheckDisc([]float64{0, 0}, 0.1, 1.0))
}

func TestCheckWalls(t *testing.T) {
	f := NewField(nil, 0.5, 0.5, 0)
	f.SetWalls([][2]float64{{1, 0}})

	assert.False(t, f.CheckWalls(posRect(0.5, 1.5, -0.5, 0.5)))
	assert.True(t, f.CheckWalls(posRect(2, 3, -0.5, 0.5)))
}

func TestBoxRadius(t *testing.T) {
	b := NewBox(0, 0, 0.5, 0.5)
	assert.InDelta(t, 0.35355, b.Radius(), 1e-4)
	cx, cy := b.Center()
	assert.Equal(t, 0.0, cx)
	assert.Equal(t, 0.0, cy)
}
