package viewport

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/chazu/nodegraph/pkg/geom"
)

const eps = 1e-9

func assertVec(t *testing.T, want, got geom.Vec) {
	t.Helper()
	assert.InDelta(t, want.X, got.X, eps, "x")
	assert.InDelta(t, want.Y, got.Y, eps, "y")
}

func TestWorldToScreenAtZoomTwo(t *testing.T) {
	v := New(800, 600)
	v.SetPan(geom.Vec{})
	v.ZoomAt(2, geom.Vec{})
	assert.Equal(t, 2.0, v.Zoom())
	assertVec(t, geom.V(200, 200), v.WorldToScreen(geom.V(100, 100)))
}

func TestRoundTrip(t *testing.T) {
	pans := []geom.Vec{{}, geom.V(13.5, -7), geom.V(-400, 250)}
	zooms := []float64{0.2, 0.37, 1, 2.5, 3}
	points := []geom.Vec{{}, geom.V(1, 1), geom.V(799, 599), geom.V(-50, 1234.5)}
	for _, pan := range pans {
		for _, z := range zooms {
			v := New(800, 600)
			v.ZoomAt(z, geom.Vec{})
			v.SetPan(pan)
			for _, p := range points {
				assertVec(t, p, v.WorldToScreen(v.ScreenToWorld(p)))
			}
		}
	}
}

func TestZoomAtKeepsPointUnderCursor(t *testing.T) {
	v := New(800, 600)
	v.SetPan(geom.V(37, -12))
	cursors := []geom.Vec{geom.V(0, 0), geom.V(400, 300), geom.V(713, 29)}
	for _, p := range cursors {
		for _, z := range []float64{0.2, 0.5, 1.7, 3} {
			before := v.ScreenToWorld(p)
			v.ZoomAt(z, p)
			assertVec(t, before, v.ScreenToWorld(p))
		}
	}
}

func TestZoomClamped(t *testing.T) {
	v := New(800, 600)
	v.SetZoom(100)
	assert.Equal(t, DefaultMaxZoom, v.Zoom())
	v.SetZoom(0.001)
	assert.Equal(t, DefaultMinZoom, v.Zoom())
	v.SetZoom(-1)
	assert.Equal(t, DefaultMinZoom, v.Zoom())

	v = New(800, 600, WithZoomRange(0.5, 2))
	v.ZoomBy(-100, geom.V(10, 10))
	assert.Equal(t, 0.5, v.Zoom())
}

func TestClampedZoomStillKeepsCursorPoint(t *testing.T) {
	v := New(800, 600)
	p := geom.V(123, 456)
	before := v.ScreenToWorld(p)
	v.ZoomAt(50, p)
	assert.Equal(t, DefaultMaxZoom, v.Zoom())
	assertVec(t, before, v.ScreenToWorld(p))
}

func TestZoomByWheelFactor(t *testing.T) {
	v := New(800, 600)
	v.ZoomBy(1, geom.V(400, 300))
	assert.InDelta(t, 1.1, v.Zoom(), eps)
	v.ZoomBy(-1, geom.V(400, 300))
	assert.InDelta(t, 0.99, v.Zoom(), eps)
}

func TestRevisionBumps(t *testing.T) {
	v := New(800, 600)
	r := v.Revision()
	v.PanBy(geom.V(1, 0))
	v.SetSize(10, 10)
	v.SetZoom(2)
	v.Reset()
	assert.Equal(t, r+4, v.Revision())
	assert.Equal(t, 1.0, v.Zoom())
	assert.Equal(t, geom.Vec{}, v.Pan())
}

func TestDegenerateSize(t *testing.T) {
	v := New(0, -10)
	assert.Equal(t, geom.V(1, 1), v.Size())
	r := v.VisibleWorldRect(0)
	assert.Equal(t, 1.0, r.Width())
}

func TestVisibleWorldRect(t *testing.T) {
	v := New(800, 600)
	v.ZoomAt(2, geom.Vec{})
	v.SetPan(geom.V(100, 0))
	r := v.VisibleWorldRect(100)
	assertVec(t, geom.V(-100, -50), r.Min)
	assertVec(t, geom.V(400, 350), r.Max)
}

func TestFrameRectCentresContent(t *testing.T) {
	v := New(800, 600)
	box := geom.NormalizeRect(geom.V(0, 0), geom.V(400, 100))
	v.FrameRect(box, 0)

	assert.InDelta(t, 2.0, v.Zoom(), eps)
	assertVec(t, geom.V(400, 300), v.WorldToScreen(box.Center()))

	// Huge content bottoms out at the minimum zoom but stays centred.
	huge := geom.NormalizeRect(geom.V(-1e5, -1e5), geom.V(1e5, 1e5))
	v.FrameRect(huge, 50)
	assert.Equal(t, DefaultMinZoom, v.Zoom())
	assertVec(t, geom.V(400, 300), v.WorldToScreen(huge.Center()))
}
