package tessellate

import (
	"github.com/chazu/nodegraph/pkg/cull"
	"github.com/chazu/nodegraph/pkg/geom"
	"github.com/chazu/nodegraph/pkg/graph"
	"github.com/chazu/nodegraph/pkg/viewport"
)

// Frame is everything a renderer needs to draw one frame. All geometry is in
// screen pixels; the engine itself never draws.
type Frame struct {
	View        viewport.State   `json:"view"`
	Grid        *Grid            `json:"grid,omitempty"`
	Nodes       []NodeItem       `json:"nodes"` // back to front
	Connections []ConnectionItem `json:"connections"`
	RubberBand  *geom.Rect       `json:"rubberBand,omitempty"`
	Pending     *PendingItem     `json:"pending,omitempty"`
	Truncated   bool             `json:"truncated"`
}

// Grid describes the background grid.
type Grid struct {
	Spacing float64  `json:"spacing"` // screen pixels between lines
	Origin  geom.Vec `json:"origin"`  // screen position of world (0,0)
}

// NodeItem is a node's draw record.
type NodeItem struct {
	ID        string       `json:"id"`
	Title     string       `json:"title"`
	Type      string       `json:"type"`
	Rect      geom.Rect    `json:"rect"`
	Header    float64      `json:"header"`
	Sockets   []SocketItem `json:"sockets"`
	Selected  bool         `json:"selected"`
	Hovered   bool         `json:"hovered"`
	Collapsed bool         `json:"collapsed"`
}

// SocketItem is a socket's draw record.
type SocketItem struct {
	ID        string   `json:"id"`
	Label     string   `json:"label"`
	Kind      string   `json:"kind"`
	Direction string   `json:"direction"`
	Pos       geom.Vec `json:"pos"`
	Radius    float64  `json:"radius"`
	Color     string   `json:"color"`
	Connected bool     `json:"connected"`
	Hovered   bool     `json:"hovered"`
}

// ConnectionItem is a connection's draw record.
type ConnectionItem struct {
	ID       string     `json:"id"`
	Points   []geom.Vec `json:"points"`
	Width    float64    `json:"width"`
	Color    string     `json:"color"`
	Selected bool       `json:"selected"`
	Hovered  bool       `json:"hovered"`
}

// PendingItem is the curve following the pointer while connecting.
type PendingItem struct {
	From   string     `json:"from"`
	Points []geom.Vec `json:"points"`
	Color  string     `json:"color"`
}

// Overlay carries the interaction state that decorates a frame. Nil
// predicates mean nothing is selected.
type Overlay struct {
	NodeSelected       func(graph.NodeID) bool
	ConnectionSelected func(graph.ConnectionID) bool

	HoverNode       graph.NodeID
	HoverSocket     graph.SocketRef
	HoverConnection graph.ConnectionID

	RubberBand *geom.Rect // world space
	Pending    *Pending

	GridSize float64 // world units; <= 0 hides the grid
}

// Pending is an in-progress connection gesture.
type Pending struct {
	From    graph.SocketRef
	Pointer geom.Vec // screen
}

// BuildFrame assembles the draw lists for the culled set. It is read-only
// and never mutates the graph.
func BuildFrame(g *graph.Graph, vp *viewport.Viewport, vis *cull.Result, p CurveParams, ov Overlay) *Frame {
	f := &Frame{
		View:      vp.State(),
		Truncated: vis.Truncated,
	}
	if ov.GridSize > 0 {
		f.Grid = &Grid{Spacing: ov.GridSize * vp.Zoom(), Origin: vp.WorldToScreen(geom.Vec{})}
	}

	for _, conn := range vis.Connections {
		if item, ok := handleConnection(g, vp, conn, p, ov); ok {
			f.Connections = append(f.Connections, item)
		}
	}
	for _, n := range vis.Nodes {
		f.Nodes = append(f.Nodes, handleNode(g, vp, n, ov))
	}

	if ov.RubberBand != nil {
		r := vp.WorldRectToScreen(*ov.RubberBand)
		f.RubberBand = &r
	}
	if ov.Pending != nil {
		f.Pending = handlePending(g, vp, ov.Pending, p)
	}
	return f
}

func handleNode(g *graph.Graph, vp *viewport.Viewport, n *graph.Node, ov Overlay) NodeItem {
	l := g.Layout()
	z := vp.Zoom()
	item := NodeItem{
		ID:        string(n.ID),
		Title:     n.Title,
		Type:      n.Type.String(),
		Rect:      vp.WorldRectToScreen(n.Rect()),
		Header:    l.HeaderHeight * z,
		Selected:  ov.NodeSelected != nil && ov.NodeSelected(n.ID),
		Hovered:   ov.HoverNode == n.ID,
		Collapsed: n.Collapsed,
	}
	add := func(s *graph.Socket, i int) {
		ref := graph.Ref(n.ID, s.ID)
		item.Sockets = append(item.Sockets, SocketItem{
			ID:        string(s.ID),
			Label:     s.Label,
			Kind:      s.Kind.String(),
			Direction: s.Direction.String(),
			Pos:       vp.WorldToScreen(n.SocketPosition(l, s.Direction, i)),
			Radius:    l.SocketRadius * z,
			Color:     graph.ConnectionColor(s.Kind).Hex(),
			Connected: g.AttachedCount(ref) > 0,
			Hovered:   ov.HoverSocket == ref,
		})
	}
	for i, s := range n.Inputs {
		add(s, i)
	}
	for i, s := range n.Outputs {
		add(s, i)
	}
	return item
}

func handleConnection(g *graph.Graph, vp *viewport.Viewport, c *graph.Connection, p CurveParams, ov Overlay) (ConnectionItem, bool) {
	pts, ok := ConnectionPath(g, vp, c, p)
	if !ok {
		return ConnectionItem{}, false
	}
	return ConnectionItem{
		ID:       string(c.ID),
		Points:   pts,
		Width:    c.Width,
		Color:    c.Color.Hex(),
		Selected: ov.ConnectionSelected != nil && ov.ConnectionSelected(c.ID),
		Hovered:  ov.HoverConnection == c.ID,
	}, true
}

func handlePending(g *graph.Graph, vp *viewport.Viewport, pd *Pending, p CurveParams) *PendingItem {
	s := g.Socket(pd.From)
	wpos, ok := g.SocketPosition(pd.From)
	if s == nil || !ok {
		return nil
	}
	return &PendingItem{
		From:   pd.From.String(),
		Points: PendingCurve(vp.WorldToScreen(wpos), s.Direction, pd.Pointer, p),
		Color:  graph.ConnectionColor(s.Kind).Hex(),
	}
}
