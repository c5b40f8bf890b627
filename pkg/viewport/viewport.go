// Package viewport holds the zoom and pan state of the editor canvas and
// the affine transform between world and screen coordinates:
//
//	screen = world*zoom + pan
//
// Every setter clamps its input and bumps a revision counter so caches
// derived from the transform (culling, hit-test candidates) know to
// recompute.
package viewport

import (
	"math"

	"github.com/chazu/nodegraph/pkg/geom"
)

// Defaults.
const (
	DefaultMinZoom   = 0.2
	DefaultMaxZoom   = 3.0
	DefaultZoomSpeed = 0.1
)

// Option configures a Viewport.
type Option func(*Viewport)

// WithZoomRange sets the zoom bounds. Invalid ranges are ignored.
func WithZoomRange(min, max float64) Option {
	return func(v *Viewport) {
		if min > 0 && max >= min {
			v.minZoom, v.maxZoom = min, max
		}
	}
}

// WithZoomSpeed sets the zoom change per wheel step.
func WithZoomSpeed(s float64) Option {
	return func(v *Viewport) {
		if s > 0 {
			v.zoomSpeed = s
		}
	}
}

// Viewport is the canvas camera.
type Viewport struct {
	zoom float64
	pan  geom.Vec // screen pixels
	size geom.Vec // screen pixels

	minZoom, maxZoom float64
	zoomSpeed        float64
	rev              uint64
}

// New returns a viewport of the given screen size at zoom 1, no pan.
func New(width, height float64, opts ...Option) *Viewport {
	v := &Viewport{
		zoom:      1,
		minZoom:   DefaultMinZoom,
		maxZoom:   DefaultMaxZoom,
		zoomSpeed: DefaultZoomSpeed,
	}
	for _, o := range opts {
		o(v)
	}
	v.zoom = v.clampZoom(1)
	v.size = clampSize(geom.V(width, height))
	return v
}

func clampSize(s geom.Vec) geom.Vec {
	return s.Max(geom.V(geom.MinExtent, geom.MinExtent))
}

func (v *Viewport) clampZoom(z float64) float64 {
	if math.IsNaN(z) || z <= 0 {
		return v.minZoom
	}
	return math.Max(v.minZoom, math.Min(v.maxZoom, z))
}

func (v *Viewport) Zoom() float64      { return v.zoom }
func (v *Viewport) Pan() geom.Vec      { return v.pan }
func (v *Viewport) Size() geom.Vec     { return v.size }
func (v *Viewport) Revision() uint64   { return v.rev }
func (v *Viewport) ZoomSpeed() float64 { return v.zoomSpeed }

// ZoomRange returns the zoom bounds.
func (v *Viewport) ZoomRange() (min, max float64) { return v.minZoom, v.maxZoom }

// WorldToScreen maps a world point to screen pixels.
func (v *Viewport) WorldToScreen(w geom.Vec) geom.Vec {
	return w.MulScalar(v.zoom).Add(v.pan)
}

// ScreenToWorld maps a screen pixel to world space.
func (v *Viewport) ScreenToWorld(s geom.Vec) geom.Vec {
	return s.Sub(v.pan).MulScalar(1 / v.zoom)
}

// WorldRectToScreen maps a world rectangle to screen space.
func (v *Viewport) WorldRectToScreen(r geom.Rect) geom.Rect {
	return geom.Rect{Min: v.WorldToScreen(r.Min), Max: v.WorldToScreen(r.Max)}
}

// SetZoom sets the zoom, keeping the centre of the screen fixed.
func (v *Viewport) SetZoom(z float64) {
	v.ZoomAt(z, v.size.MulScalar(0.5))
}

// ZoomAt sets the zoom while keeping the world point under screen pixel p
// at p.
func (v *Viewport) ZoomAt(z float64, p geom.Vec) {
	before := v.ScreenToWorld(p)
	v.zoom = v.clampZoom(z)
	// Solve p = before*zoom + pan for pan.
	v.pan = p.Sub(before.MulScalar(v.zoom))
	v.rev++
}

// ZoomBy applies steps wheel notches around screen pixel p. Positive steps
// zoom in.
func (v *Viewport) ZoomBy(steps float64, p geom.Vec) {
	factor := 1 + steps*v.zoomSpeed
	if factor <= 0 {
		factor = v.minZoom / v.zoom
	}
	v.ZoomAt(v.zoom*factor, p)
}

// SetPan sets the pan offset in screen pixels.
func (v *Viewport) SetPan(p geom.Vec) {
	v.pan = p
	v.rev++
}

// PanBy shifts the pan offset by a screen-space delta.
func (v *Viewport) PanBy(d geom.Vec) {
	v.SetPan(v.pan.Add(d))
}

// SetSize sets the screen size. Non-positive dimensions clamp to one pixel.
func (v *Viewport) SetSize(width, height float64) {
	v.size = clampSize(geom.V(width, height))
	v.rev++
}

// Reset returns to zoom 1 with no pan.
func (v *Viewport) Reset() {
	v.zoom = v.clampZoom(1)
	v.pan = geom.Vec{}
	v.rev++
}

// VisibleWorldRect returns the world-space rectangle covered by the screen,
// grown by padding screen pixels on every side.
func (v *Viewport) VisibleWorldRect(padding float64) geom.Rect {
	p := geom.V(padding, padding)
	return geom.NormalizeRect(
		v.ScreenToWorld(p.MulScalar(-1)),
		v.ScreenToWorld(v.size.Add(p)),
	)
}

// FrameRect fits r, grown by margin world units, inside the screen and
// centres it. The zoom respects the configured bounds, so very large or very
// small boxes may not fit exactly.
func (v *Viewport) FrameRect(r geom.Rect, margin float64) {
	r = r.Expand(margin)
	w := math.Max(r.Width(), geom.MinExtent)
	h := math.Max(r.Height(), geom.MinExtent)
	v.zoom = v.clampZoom(math.Min(v.size.X/w, v.size.Y/h))
	v.pan = v.size.MulScalar(0.5).Sub(r.Center().MulScalar(v.zoom))
	v.rev++
}

// State is a plain copy of the transform, for hosts and draw callbacks.
type State struct {
	Zoom float64  `json:"zoom"`
	Pan  geom.Vec `json:"pan"`
	Size geom.Vec `json:"size"`
}

// State returns the current transform.
func (v *Viewport) State() State {
	return State{Zoom: v.zoom, Pan: v.pan, Size: v.size}
}
