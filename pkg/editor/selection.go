package editor

import (
	"github.com/chazu/nodegraph/pkg/event"
	"github.com/chazu/nodegraph/pkg/graph"
)

// idSet is an insertion-ordered set.
type idSet[K comparable] struct {
	order []K
	index map[K]struct{}
}

func (s *idSet[K]) Has(k K) bool {
	_, ok := s.index[k]
	return ok
}

func (s *idSet[K]) Add(k K) bool {
	if s.Has(k) {
		return false
	}
	if s.index == nil {
		s.index = make(map[K]struct{})
	}
	s.index[k] = struct{}{}
	s.order = append(s.order, k)
	return true
}

func (s *idSet[K]) Remove(k K) bool {
	if !s.Has(k) {
		return false
	}
	delete(s.index, k)
	for i, x := range s.order {
		if x == k {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return true
}

func (s *idSet[K]) Len() int { return len(s.order) }

// Items returns a copy in insertion order.
func (s *idSet[K]) Items() []K {
	out := make([]K, len(s.order))
	copy(out, s.order)
	return out
}

func (s *idSet[K]) Clear() []K {
	out := s.order
	s.order, s.index = nil, nil
	return out
}

// ---------------------------------------------------------------------------
// Selection
// ---------------------------------------------------------------------------

// SelectedNodes returns the selected node ids in selection order.
func (e *Editor) SelectedNodes() []graph.NodeID { return e.selNodes.Items() }

// SelectedConnections returns the selected connection ids in selection
// order.
func (e *Editor) SelectedConnections() []graph.ConnectionID { return e.selConns.Items() }

// IsNodeSelected reports whether the node is selected.
func (e *Editor) IsNodeSelected(id graph.NodeID) bool { return e.selNodes.Has(id) }

// IsConnectionSelected reports whether the connection is selected.
func (e *Editor) IsConnectionSelected(id graph.ConnectionID) bool { return e.selConns.Has(id) }

func (e *Editor) selectNode(id graph.NodeID) {
	if e.selNodes.Add(id) {
		e.bus.Publish(event.Event{Kind: event.NodeSelected, NodeID: string(id)})
	}
}

func (e *Editor) deselectNode(id graph.NodeID) {
	if e.selNodes.Remove(id) {
		e.bus.Publish(event.Event{Kind: event.NodeDeselected, NodeID: string(id)})
	}
}

func (e *Editor) selectConnection(id graph.ConnectionID) {
	if e.selConns.Add(id) {
		e.bus.Publish(event.Event{Kind: event.ConnectionSelected, ConnectionID: string(id)})
	}
}

func (e *Editor) deselectConnection(id graph.ConnectionID) {
	if e.selConns.Remove(id) {
		e.bus.Publish(event.Event{Kind: event.ConnectionDeselected, ConnectionID: string(id)})
	}
}

// ClearSelection deselects everything.
func (e *Editor) ClearSelection() {
	for _, id := range e.selConns.Items() {
		e.deselectConnection(id)
	}
	for _, id := range e.selNodes.Items() {
		e.deselectNode(id)
	}
}

// SelectNode applies the click rule to a node: a plain click replaces the
// selection, an additive click toggles the node alone.
func (e *Editor) SelectNode(id graph.NodeID, additive bool) {
	if e.g.Node(id) == nil {
		return
	}
	if additive && e.cfg.AllowMultipleSelection {
		if e.selNodes.Has(id) {
			e.deselectNode(id)
		} else {
			e.selectNode(id)
		}
		return
	}
	for _, c := range e.selConns.Items() {
		e.deselectConnection(c)
	}
	for _, n := range e.selNodes.Items() {
		if n != id {
			e.deselectNode(n)
		}
	}
	e.selectNode(id)
}

// SelectConnection applies the click rule to a connection.
func (e *Editor) SelectConnection(id graph.ConnectionID, additive bool) {
	if e.g.Connection(id) == nil {
		return
	}
	if additive && e.cfg.AllowMultipleSelection {
		if e.selConns.Has(id) {
			e.deselectConnection(id)
		} else {
			e.selectConnection(id)
		}
		return
	}
	for _, n := range e.selNodes.Items() {
		e.deselectNode(n)
	}
	for _, c := range e.selConns.Items() {
		if c != id {
			e.deselectConnection(c)
		}
	}
	e.selectConnection(id)
}

// SelectAll selects every node.
func (e *Editor) SelectAll() {
	for _, n := range e.g.Nodes() {
		e.selectNode(n.ID)
	}
}

// setNodeSelection replaces (or, when merge is set, extends) the node
// selection with ids.
func (e *Editor) setNodeSelection(ids []graph.NodeID, merge bool) {
	if !merge || !e.cfg.AllowMultipleSelection {
		keep := make(map[graph.NodeID]bool, len(ids))
		for _, id := range ids {
			keep[id] = true
		}
		for _, c := range e.selConns.Items() {
			e.deselectConnection(c)
		}
		for _, n := range e.selNodes.Items() {
			if !keep[n] {
				e.deselectNode(n)
			}
		}
	}
	for _, id := range ids {
		e.selectNode(id)
	}
}

// prune drops selection entries whose elements left the graph. It runs as a
// bus subscriber and must not publish.
func (e *Editor) prune(ev event.Event) {
	switch ev.Kind {
	case event.NodeRemoved:
		e.selNodes.Remove(graph.NodeID(ev.NodeID))
		if e.hover.node == graph.NodeID(ev.NodeID) {
			e.hover = hoverState{}
		}
	case event.ConnectionRemoved:
		e.selConns.Remove(graph.ConnectionID(ev.ConnectionID))
		if e.hover.conn == graph.ConnectionID(ev.ConnectionID) {
			e.hover.conn = ""
		}
	case event.GraphChanged:
		if ev.Change == event.ChangeCleared || ev.Change == event.ChangeLoaded {
			e.selNodes.Clear()
			e.selConns.Clear()
			e.hover = hoverState{}
			e.resetGesture()
		}
	}
}
