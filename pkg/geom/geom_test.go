package geom

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const eps = 1e-9

func TestRectFromPosSizeClampsDegenerate(t *testing.T) {
	r := RectFromPosSize(V(10, 20), V(0, -5))
	assert.Equal(t, MinExtent, r.Width())
	assert.Equal(t, MinExtent, r.Height())
	assert.Equal(t, V(10, 20), r.Min)
}

func TestNormalizeRectOrdersCorners(t *testing.T) {
	r := NormalizeRect(V(50, 0), V(0, 50))
	assert.Equal(t, V(0, 0), r.Min)
	assert.Equal(t, V(50, 50), r.Max)
}

func TestRectContainsInclusive(t *testing.T) {
	r := RectFromPosSize(V(0, 0), V(10, 10))
	assert.True(t, r.Contains(V(0, 0)))
	assert.True(t, r.Contains(V(10, 10)))
	assert.True(t, r.Contains(V(5, 5)))
	assert.False(t, r.Contains(V(10.01, 5)))
}

func TestRectIntersects(t *testing.T) {
	a := RectFromPosSize(V(0, 0), V(50, 50))
	tests := []struct {
		name string
		b    Rect
		want bool
	}{
		{"inside", RectFromPosSize(V(10, 10), V(5, 5)), true},
		{"outside", RectFromPosSize(V(100, 100), V(5, 5)), false},
		{"straddling", RectFromPosSize(V(40, 40), V(30, 30)), true},
		{"touching edge", RectFromPosSize(V(50, 0), V(10, 10)), true},
		{"covering", RectFromPosSize(V(-10, -10), V(100, 100)), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, a.Intersects(tt.b))
			assert.Equal(t, tt.want, tt.b.Intersects(a))
		})
	}
}

func TestBoundsAndUnion(t *testing.T) {
	_, ok := Bounds(nil)
	assert.False(t, ok)

	b, ok := Bounds([]Rect{
		RectFromPosSize(V(0, 0), V(10, 10)),
		RectFromPosSize(V(100, -20), V(10, 10)),
	})
	require.True(t, ok)
	assert.Equal(t, V(0, -20), b.Min)
	assert.Equal(t, V(110, 10), b.Max)
	assert.Equal(t, V(55, -5), b.Center())
}

func TestExpandNegativeNeverInverts(t *testing.T) {
	r := RectFromPosSize(V(0, 0), V(10, 10)).Expand(-20)
	assert.Equal(t, r.Min, r.Max)
	assert.Equal(t, V(5, 5), r.Min)
}

func TestSnap(t *testing.T) {
	assert.Equal(t, V(20, 40), Snap(V(14, 31), 20))
	assert.Equal(t, V(14, 31), Snap(V(14, 31), 0))
}

func TestSegmentDistance(t *testing.T) {
	a, b := V(0, 0), V(10, 0)
	assert.InDelta(t, 5, SegmentDistance(V(5, 5), a, b), eps)
	// projection clamped to the endpoints
	assert.InDelta(t, 5, SegmentDistance(V(-3, 4), a, b), eps)
	assert.InDelta(t, 5, SegmentDistance(V(13, 4), a, b), eps)
	// zero-length segment
	assert.InDelta(t, 5, SegmentDistance(V(3, 4), a, a), eps)
}

func TestCubicBezierEndpoints(t *testing.T) {
	p0, p1, p2, p3 := V(0, 0), V(10, 0), V(20, 10), V(30, 10)
	assert.Equal(t, p0, CubicBezier(p0, p1, p2, p3, 0))
	got := CubicBezier(p0, p1, p2, p3, 1)
	assert.InDelta(t, p3.X, got.X, eps)
	assert.InDelta(t, p3.Y, got.Y, eps)
	mid := CubicBezier(p0, p1, p2, p3, 0.5)
	assert.InDelta(t, 15, mid.X, eps)
	assert.InDelta(t, 5, mid.Y, eps)
}

func TestTessellateCount(t *testing.T) {
	pts := Tessellate(V(0, 0), V(1, 0), V(2, 0), V(3, 0), 32)
	assert.Len(t, pts, 33)
	assert.Equal(t, V(3, 0), pts[32])

	assert.Len(t, Tessellate(V(0, 0), V(1, 0), V(2, 0), V(3, 0), 0), 2)
}

func TestConnectionControlsMinOffset(t *testing.T) {
	c := ConnectionControls(V(0, 0), V(20, 100), 50, 0.5)
	assert.Equal(t, V(50, 0), c[1])
	assert.Equal(t, V(-30, 100), c[2])

	c = ConnectionControls(V(0, 0), V(400, 0), 50, 0.5)
	assert.Equal(t, V(200, 0), c[1])
	assert.Equal(t, V(200, 0), c[2])
}

func TestHorizontalCurveStaysOnChord(t *testing.T) {
	c := ConnectionControls(V(0, 100), V(300, 100), 50, 0.5)
	pts := Tessellate(c[0], c[1], c[2], c[3], 32)
	for _, p := range pts {
		assert.InDelta(t, 100, p.Y, eps)
	}
	assert.InDelta(t, 0, PolylineDistance(V(150, 100), pts), 1e-6)
	assert.InDelta(t, 50, PolylineDistance(V(150, 150), pts), 1e-6)
}

func TestPolylineDistanceDegenerate(t *testing.T) {
	assert.True(t, math.IsInf(PolylineDistance(V(0, 0), nil), 1))
	assert.InDelta(t, 5, PolylineDistance(V(3, 4), []Vec{V(0, 0)}), eps)
	assert.InDelta(t, 5, PolylineDistance(V(3, 4), []Vec{V(0, 0), V(0, 0)}), eps)
}
