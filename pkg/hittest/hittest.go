// Package hittest resolves pointer positions to nodes, sockets and
// connections. Every query is pure: it reads the graph and the viewport and
// mutates neither.
package hittest

import (
	"github.com/chazu/nodegraph/pkg/cull"
	"github.com/chazu/nodegraph/pkg/geom"
	"github.com/chazu/nodegraph/pkg/graph"
	"github.com/chazu/nodegraph/pkg/tessellate"
	"github.com/chazu/nodegraph/pkg/viewport"
)

// Kind says what a Pick found.
type Kind int

const (
	None Kind = iota
	Socket
	Connection
	Node
)

func (k Kind) String() string {
	switch k {
	case Socket:
		return "socket"
	case Connection:
		return "connection"
	case Node:
		return "node"
	default:
		return "none"
	}
}

// Hit is the result of Pick.
type Hit struct {
	Kind       Kind
	Node       graph.NodeID // owning node for Socket and Node hits
	Socket     graph.SocketRef
	Connection graph.ConnectionID
	World      geom.Vec
}

// Tester answers hit queries for one graph seen through one viewport.
//
// By default every element of the graph is a candidate, whether or not it
// survived culling. With RestrictToVisible set and Visible non-nil, only
// the culled set is searched, which bounds the cost on huge graphs at the
// price of making over-budget elements unclickable.
type Tester struct {
	Graph *graph.Graph
	View  *viewport.Viewport
	Curve tessellate.CurveParams

	Visible           *cull.Result
	RestrictToVisible bool
}

// New returns a tester over g and vp.
func New(g *graph.Graph, vp *viewport.Viewport, curve tessellate.CurveParams) *Tester {
	return &Tester{Graph: g, View: vp, Curve: curve}
}

func (h *Tester) nodes() []*graph.Node {
	if h.RestrictToVisible && h.Visible != nil {
		return h.Visible.Nodes
	}
	return h.Graph.Nodes()
}

func (h *Tester) connections() []*graph.Connection {
	if h.RestrictToVisible && h.Visible != nil {
		return h.Visible.Connections
	}
	return h.Graph.Connections()
}

// NodeAt returns the topmost node whose bounds contain the world point, or
// nil.
func (h *Tester) NodeAt(world geom.Vec) *graph.Node {
	ns := h.nodes()
	for i := len(ns) - 1; i >= 0; i-- {
		if ns[i].Rect().Contains(world) {
			return ns[i]
		}
	}
	return nil
}

// SocketAt returns the first socket, searching nodes front to back, whose
// screen position lies within tol pixels of the screen point.
func (h *Tester) SocketAt(screen geom.Vec, tol float64) (graph.SocketRef, bool) {
	l := h.Graph.Layout()
	ns := h.nodes()
	for i := len(ns) - 1; i >= 0; i-- {
		n := ns[i]
		for j, s := range n.Inputs {
			if geom.Dist(screen, h.View.WorldToScreen(n.SocketPosition(l, graph.Input, j))) <= tol {
				return graph.Ref(n.ID, s.ID), true
			}
		}
		for j, s := range n.Outputs {
			if geom.Dist(screen, h.View.WorldToScreen(n.SocketPosition(l, graph.Output, j))) <= tol {
				return graph.Ref(n.ID, s.ID), true
			}
		}
	}
	return graph.SocketRef{}, false
}

// ConnectionAt returns the topmost connection whose tessellated curve passes
// within tol pixels of the screen point.
func (h *Tester) ConnectionAt(screen geom.Vec, tol float64) (graph.ConnectionID, bool) {
	cs := h.connections()
	for i := len(cs) - 1; i >= 0; i-- {
		c := cs[i]
		start, end, ok := tessellate.Endpoints(h.Graph, h.View, c)
		if !ok {
			continue
		}
		// The curve lies inside the hull of its control points.
		ctl := geom.ConnectionControls(start, end, h.Curve.MinOffset, h.Curve.OffsetRatio)
		hull := geom.NormalizeRect(ctl[0], ctl[1]).
			Union(geom.NormalizeRect(ctl[2], ctl[3])).
			Expand(tol)
		if !hull.Contains(screen) {
			continue
		}
		pts := tessellate.Curve(start, end, h.Curve)
		if geom.PolylineDistance(screen, pts) <= tol {
			return c.ID, true
		}
	}
	return "", false
}

// Pick resolves a screen point in press priority order: socket, then
// connection, then node.
func (h *Tester) Pick(screen geom.Vec, socketTol, connTol float64) Hit {
	world := h.View.ScreenToWorld(screen)
	if ref, ok := h.SocketAt(screen, socketTol); ok {
		return Hit{Kind: Socket, Node: ref.Node, Socket: ref, World: world}
	}
	if id, ok := h.ConnectionAt(screen, connTol); ok {
		return Hit{Kind: Connection, Connection: id, World: world}
	}
	if n := h.NodeAt(world); n != nil {
		return Hit{Kind: Node, Node: n.ID, World: world}
	}
	return Hit{World: world}
}
