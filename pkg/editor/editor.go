// Package editor is the interaction controller of the node-graph editor. It
// turns pointer and keyboard input into graph, viewport and selection
// changes, and assembles the per-frame draw payload.
//
// The controller is a finite state machine (see Mode). It never edits node,
// socket or connection fields directly; every structural change goes
// through the graph's validating API.
package editor

import (
	"log/slog"

	"github.com/chazu/nodegraph/pkg/cull"
	"github.com/chazu/nodegraph/pkg/event"
	"github.com/chazu/nodegraph/pkg/geom"
	"github.com/chazu/nodegraph/pkg/graph"
	"github.com/chazu/nodegraph/pkg/hittest"
	"github.com/chazu/nodegraph/pkg/viewport"
)

// Option configures an Editor.
type Option func(*Editor)

// WithConfig replaces the default interaction settings.
func WithConfig(cfg Config) Option { return func(e *Editor) { e.cfg = cfg } }

// WithLogger sets the diagnostics logger. nil discards.
func WithLogger(l *slog.Logger) Option {
	return func(e *Editor) {
		if l != nil {
			e.log = l
		}
	}
}

// WithClipboard shares a clipboard between editors.
func WithClipboard(c *Clipboard) Option { return func(e *Editor) { e.clip = c } }

type hoverState struct {
	node   graph.NodeID
	socket graph.SocketRef
	conn   graph.ConnectionID
}

type dragState struct {
	origin   geom.Vec // world position of the press
	press    geom.Vec // screen position of the press
	ids      []graph.NodeID
	baseline map[graph.NodeID]geom.Vec
	pressed  graph.NodeID
	collapse bool // narrow the selection to pressed if the drag never starts
	started  bool
}

// Editor owns the selection and interaction state for one graph and one
// viewport. It is not safe for concurrent use.
type Editor struct {
	g    *graph.Graph
	vp   *viewport.Viewport
	bus  *event.Bus
	log  *slog.Logger
	cfg  Config
	clip *Clipboard

	culler *cull.Culler
	hits   *hittest.Tester

	mode     Mode
	selNodes idSet[graph.NodeID]
	selConns idSet[graph.ConnectionID]
	hover    hoverState
	pointer  geom.Vec // last pointer position, screen

	drag        dragState
	connectFrom graph.SocketRef
	bandStart   geom.Vec // world
	band        geom.Rect
	bandMerge   bool
	panLast     geom.Vec

	pasteCount int
}

// New returns an editor over g and vp. Notifications from the graph and the
// editor share one bus; if g has none, one is created.
func New(g *graph.Graph, vp *viewport.Viewport, opts ...Option) *Editor {
	e := &Editor{
		g:   g,
		vp:  vp,
		cfg: DefaultConfig(),
		log: slog.New(slog.DiscardHandler),
	}
	for _, o := range opts {
		o(e)
	}
	if e.clip == nil {
		e.clip = &Clipboard{}
	}
	e.bus = g.Bus()
	if e.bus == nil {
		e.bus = event.NewBus()
		g.SetBus(e.bus)
	}
	e.bus.Subscribe(e.prune)
	e.culler = cull.New(e.cfg.Cull, e.log)
	e.hits = hittest.New(g, vp, e.cfg.Curve)
	e.hits.RestrictToVisible = e.cfg.RestrictHitsToVisible
	return e
}

func (e *Editor) Graph() *graph.Graph          { return e.g }
func (e *Editor) Viewport() *viewport.Viewport { return e.vp }
func (e *Editor) Bus() *event.Bus              { return e.bus }
func (e *Editor) Mode() Mode                   { return e.mode }
func (e *Editor) Config() Config               { return e.cfg }
func (e *Editor) Clipboard() *Clipboard        { return e.clip }

// SetConfig replaces the interaction settings. An in-progress gesture is
// cancelled first.
func (e *Editor) SetConfig(cfg Config) {
	e.Cancel()
	e.cfg = cfg
	e.culler.SetConfig(cfg.Cull)
	e.hits.Curve = cfg.Curve
	e.hits.RestrictToVisible = cfg.RestrictHitsToVisible
}

// Subscribe registers a notification handler.
func (e *Editor) Subscribe(fn event.Handler) event.Handle { return e.bus.Subscribe(fn) }

// Visible returns the culled set for the current graph and viewport.
func (e *Editor) Visible() *cull.Result {
	return e.culler.Compute(e.g, e.vp)
}

func (e *Editor) tester() *hittest.Tester {
	if e.hits.RestrictToVisible {
		e.hits.Visible = e.Visible()
	}
	return e.hits
}

// ---------------------------------------------------------------------------
// Queries
// ---------------------------------------------------------------------------

// NodeAt returns the topmost node at a world point, or nil.
func (e *Editor) NodeAt(world geom.Vec) *graph.Node { return e.tester().NodeAt(world) }

// SocketAt returns the socket within tolerance of a screen point.
func (e *Editor) SocketAt(screen geom.Vec) (graph.SocketRef, bool) {
	return e.tester().SocketAt(screen, e.cfg.SocketTolerance)
}

// ConnectionAt returns the connection within tolerance of a screen point.
func (e *Editor) ConnectionAt(screen geom.Vec) (graph.ConnectionID, bool) {
	return e.tester().ConnectionAt(screen, e.cfg.ConnectionTolerance)
}

// NodesInRect returns the nodes intersecting a world rectangle.
func (e *Editor) NodesInRect(r geom.Rect) []*graph.Node { return e.g.NodesInRect(r) }

// ---------------------------------------------------------------------------
// Viewport control
// ---------------------------------------------------------------------------

func (e *Editor) SetZoom(z float64)                 { e.vp.SetZoom(z) }
func (e *Editor) SetPan(p geom.Vec)                 { e.vp.SetPan(p) }
func (e *Editor) ScreenToWorld(p geom.Vec) geom.Vec { return e.vp.ScreenToWorld(p) }
func (e *Editor) WorldToScreen(p geom.Vec) geom.Vec { return e.vp.WorldToScreen(p) }
func (e *Editor) ResetView()                        { e.vp.Reset() }
func (e *Editor) ToggleGrid()                       { e.cfg.ShowGrid = !e.cfg.ShowGrid }
func (e *Editor) ToggleSnap()                       { e.cfg.SnapToGrid = !e.cfg.SnapToGrid }
func (e *Editor) SetSize(width, height float64)     { e.vp.SetSize(width, height) }

// FrameAll fits every node in the view. An empty graph resets the view.
func (e *Editor) FrameAll() {
	ids := make([]graph.NodeID, 0, e.g.NodeCount())
	for _, n := range e.g.Nodes() {
		ids = append(ids, n.ID)
	}
	if len(ids) == 0 {
		e.vp.Reset()
		return
	}
	e.FrameNodes(ids)
}

// FrameNodes fits the given nodes in the view. Unknown ids are ignored; if
// none remain the view is unchanged.
func (e *Editor) FrameNodes(ids []graph.NodeID) {
	rects := make([]geom.Rect, 0, len(ids))
	for _, id := range ids {
		if n := e.g.Node(id); n != nil {
			rects = append(rects, n.Rect())
		}
	}
	b, ok := geom.Bounds(rects)
	if !ok {
		return
	}
	e.vp.FrameRect(b, e.cfg.FramePadding)
}

// FrameSelection frames the selected nodes, or everything if nothing is
// selected.
func (e *Editor) FrameSelection() {
	if e.selNodes.Len() > 0 {
		e.FrameNodes(e.selNodes.Items())
		return
	}
	e.FrameAll()
}

// ---------------------------------------------------------------------------
// Graph control
// ---------------------------------------------------------------------------

// AddNode adds a node through the graph's validation.
func (e *Editor) AddNode(n *graph.Node) bool { return e.g.AddNode(n) }

// RemoveNode removes a node and its connections.
func (e *Editor) RemoveNode(id graph.NodeID) bool { return e.g.RemoveNode(id) }

// AddConnection adds a connection through the graph's validation.
func (e *Editor) AddConnection(c *graph.Connection) bool { return e.g.AddConnection(c) }

// RemoveConnection removes a connection.
func (e *Editor) RemoveConnection(id graph.ConnectionID) bool { return e.g.RemoveConnection(id) }

// ClearGraph removes everything and resets interaction state.
func (e *Editor) ClearGraph() {
	e.Cancel()
	e.g.Clear()
}

// MoveNode repositions a node and reports it as moved.
func (e *Editor) MoveNode(id graph.NodeID, pos geom.Vec) bool {
	if !e.g.MoveNode(id, pos) {
		return false
	}
	e.bus.Publish(event.Event{Kind: event.NodeMoved, NodeID: string(id), Position: pos})
	return true
}

// DeleteSelected removes the selected connections, then the selected nodes.
// Connections go first so none is reported removed twice.
func (e *Editor) DeleteSelected() {
	conns, nodes := e.selConns.Items(), e.selNodes.Items()
	for _, id := range conns {
		e.g.RemoveConnection(id)
	}
	for _, id := range nodes {
		e.g.RemoveNode(id)
	}
	if len(conns)+len(nodes) > 0 {
		e.log.Debug("deleted selection", "connections", len(conns), "nodes", len(nodes))
	}
}
