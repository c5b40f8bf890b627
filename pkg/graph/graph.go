package graph

import (
	"fmt"
	"log/slog"
	"sort"

	"github.com/chazu/nodegraph/pkg/event"
	"github.com/chazu/nodegraph/pkg/geom"
)

// Policy holds the graph-level connection rules. Duplicate edges and
// self-loops are independent of each other and of socket multiplicity.
type Policy struct {
	AllowDuplicateEdges bool `json:"allow_duplicate_edges" toml:"allow_duplicate_edges"`
	AllowSelfLoops      bool `json:"allow_self_loops" toml:"allow_self_loops"`
	TypeChecking        bool `json:"type_checking" toml:"type_checking"`
}

// DefaultPolicy rejects duplicate edges, allows self-loops across distinct
// sockets, and enforces socket kind compatibility.
func DefaultPolicy() Policy {
	return Policy{AllowSelfLoops: true, TypeChecking: true}
}

// Option configures a Graph.
type Option func(*Graph)

// WithPolicy sets the connection policy.
func WithPolicy(p Policy) Option { return func(g *Graph) { g.policy = p } }

// WithLayout sets the socket layout used by SocketPosition.
func WithLayout(l Layout) Option { return func(g *Graph) { g.layout = l } }

// WithBus sets the bus notifications are published on.
func WithBus(b *event.Bus) Option { return func(g *Graph) { g.bus = b } }

// WithLogger sets the diagnostics logger. nil discards.
func WithLogger(l *slog.Logger) Option {
	return func(g *Graph) {
		if l != nil {
			g.log = l
		}
	}
}

type nodeEntry struct {
	node *Node
	seq  uint64
}

type connEntry struct {
	conn *Connection
	seq  uint64
}

// Graph owns every node and connection of one editor session.
//
// Nodes and connections live in id-keyed tables. Each carries a sequence
// number that fixes iteration order; for nodes that order is also the
// back-to-front drawing order. Connections attached to a socket are found
// through an index keyed by SocketRef, so attaching and detaching never
// scans the connection table.
type Graph struct {
	nodes    map[NodeID]*nodeEntry
	conns    map[ConnectionID]*connEntry
	attached map[SocketRef]map[ConnectionID]struct{}

	seq       uint64
	nodeOrder []*Node // nil when stale
	connOrder []*Connection

	policy Policy
	layout Layout
	bus    *event.Bus
	log    *slog.Logger
	rev    uint64
}

// New creates an empty graph.
func New(opts ...Option) *Graph {
	g := &Graph{
		nodes:    make(map[NodeID]*nodeEntry),
		conns:    make(map[ConnectionID]*connEntry),
		attached: make(map[SocketRef]map[ConnectionID]struct{}),
		policy:   DefaultPolicy(),
		layout:   DefaultLayout(),
		log:      slog.New(slog.DiscardHandler),
	}
	for _, o := range opts {
		o(g)
	}
	return g
}

// Policy returns the connection policy.
func (g *Graph) Policy() Policy { return g.policy }

// SetPolicy replaces the connection policy. Existing connections are kept.
func (g *Graph) SetPolicy(p Policy) { g.policy = p }

// Layout returns the socket layout.
func (g *Graph) Layout() Layout { return g.layout }

// Bus returns the notification bus, possibly nil.
func (g *Graph) Bus() *event.Bus { return g.bus }

// SetBus replaces the notification bus and returns the previous one.
func (g *Graph) SetBus(b *event.Bus) *event.Bus {
	old := g.bus
	g.bus = b
	return old
}

// Revision increases on every structural or geometric change. Derived
// caches key on it.
func (g *Graph) Revision() uint64 { return g.rev }

// NodeCount returns the number of nodes.
func (g *Graph) NodeCount() int { return len(g.nodes) }

// ConnectionCount returns the number of connections.
func (g *Graph) ConnectionCount() int { return len(g.conns) }

// Node returns the node with the given id, or nil.
func (g *Graph) Node(id NodeID) *Node {
	if e, ok := g.nodes[id]; ok {
		return e.node
	}
	return nil
}

// MustNode returns the node with the given id, or panics.
func (g *Graph) MustNode(id NodeID) *Node {
	n := g.Node(id)
	if n == nil {
		panic(fmt.Sprintf("graph: no node %q", id))
	}
	return n
}

// Connection returns the connection with the given id, or nil.
func (g *Graph) Connection(id ConnectionID) *Connection {
	if e, ok := g.conns[id]; ok {
		return e.conn
	}
	return nil
}

// Socket resolves a reference to its socket, or nil.
func (g *Graph) Socket(ref SocketRef) *Socket {
	n := g.Node(ref.Node)
	if n == nil {
		return nil
	}
	return n.Socket(ref.Socket)
}

// SocketPosition returns the world position of the referenced socket.
func (g *Graph) SocketPosition(ref SocketRef) (geom.Vec, bool) {
	n := g.Node(ref.Node)
	if n == nil {
		return geom.Vec{}, false
	}
	return n.SocketPositionOf(g.layout, ref.Socket)
}

// Nodes returns every node, back to front. The slice is shared; callers
// must not modify it.
func (g *Graph) Nodes() []*Node {
	if g.nodeOrder == nil {
		entries := make([]*nodeEntry, 0, len(g.nodes))
		for _, e := range g.nodes {
			entries = append(entries, e)
		}
		sort.Slice(entries, func(i, j int) bool { return entries[i].seq < entries[j].seq })
		g.nodeOrder = make([]*Node, len(entries))
		for i, e := range entries {
			g.nodeOrder[i] = e.node
		}
	}
	return g.nodeOrder
}

// Connections returns every connection in insertion order. The slice is
// shared; callers must not modify it.
func (g *Graph) Connections() []*Connection {
	if g.connOrder == nil {
		entries := make([]*connEntry, 0, len(g.conns))
		for _, e := range g.conns {
			entries = append(entries, e)
		}
		sort.Slice(entries, func(i, j int) bool { return entries[i].seq < entries[j].seq })
		g.connOrder = make([]*Connection, len(entries))
		for i, e := range entries {
			g.connOrder[i] = e.conn
		}
	}
	return g.connOrder
}

// ConnectionsAt returns the ids of the connections attached to ref, in
// insertion order.
func (g *Graph) ConnectionsAt(ref SocketRef) []ConnectionID {
	set := g.attached[ref]
	if len(set) == 0 {
		return nil
	}
	ids := make([]ConnectionID, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	g.sortConnIDs(ids)
	return ids
}

// AttachedCount returns the number of connections attached to ref.
func (g *Graph) AttachedCount(ref SocketRef) int {
	return len(g.attached[ref])
}

// ConnectionsOf returns the ids of every connection touching node id, in
// insertion order.
func (g *Graph) ConnectionsOf(id NodeID) []ConnectionID {
	n := g.Node(id)
	if n == nil {
		return nil
	}
	seen := make(map[ConnectionID]struct{})
	var ids []ConnectionID
	for _, s := range n.Sockets() {
		for cid := range g.attached[Ref(id, s.ID)] {
			if _, dup := seen[cid]; dup {
				continue
			}
			seen[cid] = struct{}{}
			ids = append(ids, cid)
		}
	}
	g.sortConnIDs(ids)
	return ids
}

func (g *Graph) sortConnIDs(ids []ConnectionID) {
	sort.Slice(ids, func(i, j int) bool { return g.conns[ids[i]].seq < g.conns[ids[j]].seq })
}

// NodesInRect returns the nodes whose bounds intersect r, back to front.
// Touching edges count as intersecting.
func (g *Graph) NodesInRect(r geom.Rect) []*Node {
	var out []*Node
	for _, n := range g.Nodes() {
		if n.Rect().Intersects(r) {
			out = append(out, n)
		}
	}
	return out
}

// ---------------------------------------------------------------------------
// Nodes
// ---------------------------------------------------------------------------

// CheckNode reports whether n could be added.
func (g *Graph) CheckNode(n *Node) Reason {
	if n == nil || n.ID == "" {
		return ReasonMissingID
	}
	if _, ok := g.nodes[n.ID]; ok {
		return ReasonDuplicateID
	}
	seen := make(map[SocketID]struct{}, len(n.Inputs)+len(n.Outputs))
	for _, s := range n.Sockets() {
		if s.ID == "" {
			return ReasonMissingID
		}
		if _, dup := seen[s.ID]; dup {
			return ReasonDuplicateID
		}
		seen[s.ID] = struct{}{}
	}
	return ReasonOK
}

// AddNode adds n. It returns false, leaving the graph untouched, if the id
// is empty or already present.
func (g *Graph) AddNode(n *Node) bool {
	if r := g.CheckNode(n); r != ReasonOK {
		g.log.Debug("node rejected", "reason", r)
		return false
	}
	for _, s := range n.Inputs {
		s.Direction = Input
	}
	for _, s := range n.Outputs {
		s.Direction = Output
	}
	g.seq++
	g.nodes[n.ID] = &nodeEntry{node: n, seq: g.seq}
	if g.nodeOrder != nil {
		g.nodeOrder = append(g.nodeOrder, n)
	}
	g.rev++
	g.log.Debug("node added", "node", n.ID)

	g.bus.Publish(event.Event{Kind: event.NodeAdded, NodeID: string(n.ID)})
	g.bus.Publish(event.Event{Kind: event.GraphChanged, Change: event.ChangeNodeAdded, NodeID: string(n.ID)})
	return true
}

// RemoveNode removes the node and, before it, every connection attached to
// any of its sockets. It returns false if the node is absent.
func (g *Graph) RemoveNode(id NodeID) bool {
	if _, ok := g.nodes[id]; !ok {
		return false
	}
	// Collect first; removing mutates the index being walked.
	for _, cid := range g.ConnectionsOf(id) {
		g.RemoveConnection(cid)
	}
	delete(g.nodes, id)
	g.nodeOrder = nil
	g.rev++
	g.log.Debug("node removed", "node", id)

	g.bus.Publish(event.Event{Kind: event.NodeRemoved, NodeID: string(id)})
	g.bus.Publish(event.Event{Kind: event.GraphChanged, Change: event.ChangeNodeRemoved, NodeID: string(id)})
	return true
}

// RemoveSocket drops a socket from its node after removing every
// connection attached to it. Sockets after it on the same side move up one
// slot. It returns false if the node or socket is absent.
func (g *Graph) RemoveSocket(ref SocketRef) bool {
	n := g.Node(ref.Node)
	if n == nil {
		return false
	}
	i, s := n.socketIndex(ref.Socket)
	if s == nil {
		return false
	}
	for _, cid := range g.ConnectionsAt(ref) {
		g.RemoveConnection(cid)
	}
	if i < len(n.Inputs) && n.Inputs[i] == s {
		n.Inputs = append(n.Inputs[:i:i], n.Inputs[i+1:]...)
	} else {
		n.Outputs = append(n.Outputs[:i:i], n.Outputs[i+1:]...)
	}
	g.rev++
	g.log.Debug("socket removed", "socket", ref)

	g.bus.Publish(event.Event{Kind: event.GraphChanged, Change: event.ChangeSocketRemoved, NodeID: string(ref.Node)})
	return true
}

// MoveNode sets the node's world position. Moves are frequent during a
// drag so no notification is published here; the interaction layer
// reports NodeMoved when a move is final.
func (g *Graph) MoveNode(id NodeID, pos geom.Vec) bool {
	n := g.Node(id)
	if n == nil {
		return false
	}
	if n.Position != pos {
		n.Position = pos
		g.rev++
	}
	return true
}

// ResizeNode sets the node's size, clamped to at least one unit per axis.
func (g *Graph) ResizeNode(id NodeID, size geom.Vec) bool {
	n := g.Node(id)
	if n == nil {
		return false
	}
	size = size.Max(geom.V(geom.MinExtent, geom.MinExtent))
	if n.Size == size {
		return true
	}
	n.Size = size
	g.rev++
	g.bus.Publish(event.Event{Kind: event.GraphChanged, Change: event.ChangeNodeResized, NodeID: string(id)})
	return true
}

// BringToFront moves the node to the end of the drawing order.
func (g *Graph) BringToFront(id NodeID) bool {
	e, ok := g.nodes[id]
	if !ok {
		return false
	}
	if e.seq == g.seq {
		return true
	}
	g.seq++
	e.seq = g.seq
	g.nodeOrder = nil
	g.rev++
	return true
}

// ---------------------------------------------------------------------------
// Connections
// ---------------------------------------------------------------------------

// resolve looks up both endpoints of c and returns them output-first.
func (g *Graph) resolve(c *Connection) (start, end SocketRef, ss, es *Socket, r Reason) {
	start, end = c.Start, c.End
	sn, en := g.Node(start.Node), g.Node(end.Node)
	if sn == nil || en == nil {
		return start, end, nil, nil, ReasonUnknownNode
	}
	ss, es = sn.Socket(start.Socket), en.Socket(end.Socket)
	if ss == nil || es == nil {
		return start, end, nil, nil, ReasonUnknownSocket
	}
	if ss.Direction == Input && es.Direction == Output {
		start, end, ss, es = end, start, es, ss
	}
	return start, end, ss, es, ReasonOK
}

// CheckConnection reports whether c could be added under the current
// policy. It never mutates the graph or c.
func (g *Graph) CheckConnection(c *Connection) Reason {
	if c == nil || c.ID == "" {
		return ReasonMissingID
	}
	if _, ok := g.conns[c.ID]; ok {
		return ReasonDuplicateID
	}
	start, end, ss, es, r := g.resolve(c)
	if r != ReasonOK {
		return r
	}

	r = ss.CanConnectTo(es, len(g.attached[start]), len(g.attached[end]))
	if r == ReasonSameDirection || r == ReasonSameSocket {
		return r
	}
	if !g.policy.AllowDuplicateEdges && g.hasEdge(start, end) {
		return ReasonDuplicateEdge
	}
	if !g.policy.AllowSelfLoops && start.Node == end.Node {
		return ReasonSelfLoop
	}
	if r == ReasonTypeMismatch && !g.policy.TypeChecking {
		return ReasonOK
	}
	return r
}

func (g *Graph) hasEdge(start, end SocketRef) bool {
	for cid := range g.attached[start] {
		if c := g.conns[cid].conn; c.Start == start && c.End == end {
			return true
		}
	}
	return false
}

// AddConnection adds c. It returns false, leaving the graph untouched, if
// CheckConnection rejects it.
func (g *Graph) AddConnection(c *Connection) bool {
	return g.TryAddConnection(c) == ReasonOK
}

// TryAddConnection adds c and reports why it was rejected, if it was. On
// success the endpoints are normalised so Start is the output side, and an
// unset width or colour is filled in from the output socket's kind.
func (g *Graph) TryAddConnection(c *Connection) Reason {
	if r := g.CheckConnection(c); r != ReasonOK {
		if c == nil {
			g.log.Debug("connection rejected", "reason", r)
		} else {
			g.log.Debug("connection rejected", "start", c.Start, "end", c.End, "reason", r)
		}
		return r
	}
	start, end, ss, _, _ := g.resolve(c)
	c.Start, c.End = start, end
	if c.Width <= 0 {
		c.Width = DefaultConnectionWidth
	}
	if c.Color == (Color{}) {
		c.Color = ConnectionColor(ss.Kind)
	}

	g.seq++
	g.conns[c.ID] = &connEntry{conn: c, seq: g.seq}
	g.attach(start, c.ID)
	g.attach(end, c.ID)
	if g.connOrder != nil {
		g.connOrder = append(g.connOrder, c)
	}
	g.rev++
	g.log.Debug("connection added", "connection", c.ID, "start", start, "end", end)

	g.bus.Publish(event.Event{Kind: event.ConnectionCreated, ConnectionID: string(c.ID)})
	g.bus.Publish(event.Event{Kind: event.GraphChanged, Change: event.ChangeConnectionAdded, ConnectionID: string(c.ID)})
	return ReasonOK
}

// Connect joins two sockets in either order with a freshly generated id.
func (g *Graph) Connect(a, b SocketRef) (ConnectionID, Reason) {
	c := NewConnection(NewConnectionID(), a, b)
	if r := g.TryAddConnection(c); r != ReasonOK {
		return "", r
	}
	return c.ID, ReasonOK
}

// RemoveConnection removes the connection and detaches it from both
// endpoints. It returns false if the connection is absent.
func (g *Graph) RemoveConnection(id ConnectionID) bool {
	e, ok := g.conns[id]
	if !ok {
		return false
	}
	g.detach(e.conn.Start, id)
	g.detach(e.conn.End, id)
	delete(g.conns, id)
	g.connOrder = nil
	g.rev++
	g.log.Debug("connection removed", "connection", id)

	g.bus.Publish(event.Event{Kind: event.ConnectionRemoved, ConnectionID: string(id)})
	g.bus.Publish(event.Event{Kind: event.GraphChanged, Change: event.ChangeConnectionRemoved, ConnectionID: string(id)})
	return true
}

func (g *Graph) attach(ref SocketRef, id ConnectionID) {
	set := g.attached[ref]
	if set == nil {
		set = make(map[ConnectionID]struct{})
		g.attached[ref] = set
	}
	set[id] = struct{}{}
}

func (g *Graph) detach(ref SocketRef, id ConnectionID) {
	set := g.attached[ref]
	delete(set, id)
	if len(set) == 0 {
		delete(g.attached, ref)
	}
}

// Clear removes everything. Only a single GraphChanged notification is
// published.
func (g *Graph) Clear() {
	g.nodes = make(map[NodeID]*nodeEntry)
	g.conns = make(map[ConnectionID]*connEntry)
	g.attached = make(map[SocketRef]map[ConnectionID]struct{})
	g.nodeOrder, g.connOrder = nil, nil
	g.rev++
	g.log.Debug("graph cleared")
	g.bus.Publish(event.Event{Kind: event.GraphChanged, Change: event.ChangeCleared})
}
