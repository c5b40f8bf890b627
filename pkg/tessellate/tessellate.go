// Package tessellate turns the visible part of a graph into screen-space
// draw lists. Connection curves are sampled here and nowhere else, so the
// hit tester and the renderer always agree on where a curve lies.
package tessellate

import (
	"github.com/chazu/nodegraph/pkg/geom"
	"github.com/chazu/nodegraph/pkg/graph"
	"github.com/chazu/nodegraph/pkg/viewport"
)

// CurveParams controls connection curve shape and sampling density.
type CurveParams struct {
	Segments    int     `toml:"bezier_segments"`
	MinOffset   float64 `toml:"control_min_offset"`   // screen pixels
	OffsetRatio float64 `toml:"control_offset_ratio"` // of |dx|
}

// DefaultCurveParams returns the stock curve shape.
func DefaultCurveParams() CurveParams {
	return CurveParams{Segments: 32, MinOffset: 50, OffsetRatio: 0.5}
}

// Curve samples the connection curve from an output at start to an input
// at end. Both points are in screen space.
func Curve(start, end geom.Vec, p CurveParams) []geom.Vec {
	c := geom.ConnectionControls(start, end, p.MinOffset, p.OffsetRatio)
	return geom.Tessellate(c[0], c[1], c[2], c[3], p.Segments)
}

// Endpoints returns the screen positions of both ends of c. ok is false if
// either end no longer resolves.
func Endpoints(g *graph.Graph, vp *viewport.Viewport, c *graph.Connection) (start, end geom.Vec, ok bool) {
	ws, ok1 := g.SocketPosition(c.Start)
	we, ok2 := g.SocketPosition(c.End)
	if !ok1 || !ok2 {
		return geom.Vec{}, geom.Vec{}, false
	}
	return vp.WorldToScreen(ws), vp.WorldToScreen(we), true
}

// ConnectionPath samples connection c in screen space.
func ConnectionPath(g *graph.Graph, vp *viewport.Viewport, c *graph.Connection, p CurveParams) ([]geom.Vec, bool) {
	start, end, ok := Endpoints(g, vp, c)
	if !ok {
		return nil, false
	}
	return Curve(start, end, p), true
}

// PendingCurve samples the in-progress connection from a socket to the
// pointer. The curve always bends out of the output side.
func PendingCurve(from geom.Vec, dir graph.Direction, pointer geom.Vec, p CurveParams) []geom.Vec {
	if dir == graph.Input {
		return Curve(pointer, from, p)
	}
	return Curve(from, pointer, p)
}
