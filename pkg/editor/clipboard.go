package editor

import (
	"fmt"
	"maps"

	"github.com/chazu/nodegraph/pkg/geom"
	"github.com/chazu/nodegraph/pkg/graph"
)

// Clipboard holds copied nodes and the connections between them. Contents
// are deep copies and never alias live graph state.
type Clipboard struct {
	nodes []*graph.Node
	conns []*graph.Connection
}

// Len returns the number of copied nodes.
func (c *Clipboard) Len() int { return len(c.nodes) }

// Empty reports whether nothing has been copied.
func (c *Clipboard) Empty() bool { return len(c.nodes) == 0 }

func (c *Clipboard) fill(g *graph.Graph, ids []graph.NodeID) {
	c.nodes, c.conns = nil, nil
	in := make(map[graph.NodeID]bool, len(ids))
	for _, id := range ids {
		if n := g.Node(id); n != nil {
			c.nodes = append(c.nodes, n.Clone(id))
			in[id] = true
		}
	}
	for _, conn := range g.Connections() {
		if in[conn.Start.Node] && in[conn.End.Node] {
			d := *conn
			d.Metadata = maps.Clone(conn.Metadata)
			c.conns = append(c.conns, &d)
		}
	}
}

// centre returns the mean position of the copied nodes.
func (c *Clipboard) centre() geom.Vec {
	var sum geom.Vec
	for _, n := range c.nodes {
		sum = sum.Add(n.Position)
	}
	return sum.MulScalar(1 / float64(len(c.nodes)))
}

// Copy places the selected nodes, and the connections running between
// them, on the clipboard. It returns the number of nodes copied.
func (e *Editor) Copy() int {
	e.clip.fill(e.g, e.selNodes.Items())
	e.log.Debug("copied", "nodes", len(e.clip.nodes), "connections", len(e.clip.conns))
	return len(e.clip.nodes)
}

// Paste adds the clipboard contents around the centre of the view, offset
// by PasteOffset, and selects them. It returns the new node ids.
func (e *Editor) Paste() []graph.NodeID {
	if e.clip.Empty() {
		return nil
	}
	size := e.vp.Size()
	view := e.vp.ScreenToWorld(size.MulScalar(0.5))
	centre := e.clip.centre()
	return e.place(e.clip, func(p geom.Vec) geom.Vec {
		return view.Add(p.Sub(centre)).Add(e.cfg.PasteOffset)
	})
}

// Duplicate copies the selected nodes in place, shifted by DuplicateOffset,
// and selects the copies. The clipboard is left untouched.
func (e *Editor) Duplicate() []graph.NodeID {
	var tmp Clipboard
	tmp.fill(e.g, e.selNodes.Items())
	if tmp.Empty() {
		return nil
	}
	return e.place(&tmp, func(p geom.Vec) geom.Vec {
		return p.Add(e.cfg.DuplicateOffset)
	})
}

func (e *Editor) place(c *Clipboard, at func(geom.Vec) geom.Vec) []graph.NodeID {
	e.pasteCount++
	rename := make(map[graph.NodeID]graph.NodeID, len(c.nodes))
	ids := make([]graph.NodeID, 0, len(c.nodes))
	for _, src := range c.nodes {
		id := e.freshID(src.ID)
		n := src.Clone(id)
		n.Position = at(src.Position)
		if e.cfg.SnapToGrid {
			n.Position = geom.Snap(n.Position, e.cfg.GridSize)
		}
		if !e.g.AddNode(n) {
			continue
		}
		rename[src.ID] = id
		ids = append(ids, id)
	}
	for _, src := range c.conns {
		start, okS := rename[src.Start.Node]
		end, okE := rename[src.End.Node]
		if !okS || !okE {
			continue
		}
		conn := graph.NewConnection(graph.NewConnectionID(),
			graph.Ref(start, src.Start.Socket), graph.Ref(end, src.End.Socket))
		conn.Width, conn.Color = src.Width, src.Color
		conn.Metadata = maps.Clone(src.Metadata)
		e.g.AddConnection(conn)
	}
	e.setNodeSelection(ids, false)
	e.log.Debug("pasted", "nodes", len(ids))
	return ids
}

func (e *Editor) freshID(base graph.NodeID) graph.NodeID {
	for n := e.pasteCount; ; n++ {
		id := graph.NodeID(fmt.Sprintf("%s_copy_%d", base, n))
		if e.g.Node(id) == nil {
			return id
		}
	}
}
