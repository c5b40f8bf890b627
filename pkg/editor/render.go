package editor

import "github.com/chazu/nodegraph/pkg/tessellate"

// DrawFunc is the rendering collaborator. It receives the frame for the
// culled visible set and must not retain it past the call.
type DrawFunc func(*tessellate.Frame)

// Frame builds the draw payload for the current state.
func (e *Editor) Frame() *tessellate.Frame {
	ov := tessellate.Overlay{
		NodeSelected:       e.selNodes.Has,
		ConnectionSelected: e.selConns.Has,
		HoverNode:          e.hover.node,
		HoverSocket:        e.hover.socket,
		HoverConnection:    e.hover.conn,
	}
	if e.cfg.ShowGrid {
		ov.GridSize = e.cfg.GridSize
	}
	switch e.mode {
	case RubberBandSelecting:
		r := e.band
		ov.RubberBand = &r
	case ConnectingFromSocket:
		ov.Pending = &tessellate.Pending{From: e.connectFrom, Pointer: e.pointer}
	}
	return tessellate.BuildFrame(e.g, e.vp, e.Visible(), e.cfg.Curve, ov)
}

// Render hands the current frame to draw.
func (e *Editor) Render(draw DrawFunc) {
	if draw == nil {
		return
	}
	draw(e.Frame())
}
