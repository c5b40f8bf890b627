package graph

import (
	"fmt"

	"github.com/chazu/nodegraph/pkg/geom"
)

// NodeType tags what a node represents. The set is open-ended; Custom
// covers anything the built-in tags don't.
type NodeType int

const (
	NodeBasic NodeType = iota
	NodeMath
	NodeLogic
	NodeConstant
	NodeVariable
	NodeFunction
	NodeEvent
	NodeCustom
)

func (t NodeType) String() string {
	switch t {
	case NodeBasic:
		return "basic"
	case NodeMath:
		return "math"
	case NodeLogic:
		return "logic"
	case NodeConstant:
		return "constant"
	case NodeVariable:
		return "variable"
	case NodeFunction:
		return "function"
	case NodeEvent:
		return "event"
	case NodeCustom:
		return "custom"
	default:
		return "unknown"
	}
}

// ParseNodeType parses the lower-case type name.
func ParseNodeType(s string) (NodeType, error) {
	for t := NodeBasic; t <= NodeCustom; t++ {
		if t.String() == s {
			return t, nil
		}
	}
	return 0, fmt.Errorf("unknown node type %q", s)
}

// Default node dimensions in world units.
const (
	DefaultNodeWidth  = 120
	DefaultNodeHeight = 80
)

// Layout holds the parameters that derive socket positions from node
// geometry.
type Layout struct {
	SocketRadius  float64 `json:"socket_radius" toml:"socket_radius"`
	SocketSpacing float64 `json:"socket_spacing" toml:"socket_spacing"`
	HeaderHeight  float64 `json:"header_height" toml:"header_height"`
}

// DefaultLayout returns the stock socket layout.
func DefaultLayout() Layout {
	return Layout{SocketRadius: 8, SocketSpacing: 20, HeaderHeight: 24}
}

// Node is a positioned, sized entity that owns ordered input and output
// sockets.
type Node struct {
	ID          NodeID
	Title       string
	Type        NodeType
	Position    geom.Vec // world space, top-left
	Size        geom.Vec
	Inputs      []*Socket
	Outputs     []*Socket
	Properties  map[string]Value
	Category    string
	Description string
	Collapsed   bool
}

// NewNode returns a node of default size at the origin.
func NewNode(id NodeID, title string, typ NodeType) *Node {
	return &Node{
		ID:       id,
		Title:    title,
		Type:     typ,
		Size:     geom.V(DefaultNodeWidth, DefaultNodeHeight),
		Category: "General",
	}
}

// AddInput appends s as an input socket. It returns false if the node
// already has a socket with the same id.
func (n *Node) AddInput(s *Socket) bool {
	if n.Socket(s.ID) != nil {
		return false
	}
	s.Direction = Input
	n.Inputs = append(n.Inputs, s)
	return true
}

// AddOutput appends s as an output socket. It returns false if the node
// already has a socket with the same id.
func (n *Node) AddOutput(s *Socket) bool {
	if n.Socket(s.ID) != nil {
		return false
	}
	s.Direction = Output
	n.Outputs = append(n.Outputs, s)
	return true
}

// Socket returns the socket with the given id, or nil.
func (n *Node) Socket(id SocketID) *Socket {
	if _, s := n.socketIndex(id); s != nil {
		return s
	}
	return nil
}

func (n *Node) socketIndex(id SocketID) (int, *Socket) {
	for i, s := range n.Inputs {
		if s.ID == id {
			return i, s
		}
	}
	for i, s := range n.Outputs {
		if s.ID == id {
			return i, s
		}
	}
	return -1, nil
}

// Sockets returns inputs followed by outputs.
func (n *Node) Sockets() []*Socket {
	out := make([]*Socket, 0, len(n.Inputs)+len(n.Outputs))
	out = append(out, n.Inputs...)
	return append(out, n.Outputs...)
}

// Rect returns the node's world-space bounding rectangle.
func (n *Node) Rect() geom.Rect {
	return geom.RectFromPosSize(n.Position, n.Size)
}

// SocketPosition derives the world position of the index-th socket on the
// given side. Inputs sit just left of the node, outputs just right, spaced
// down from the header.
func (n *Node) SocketPosition(l Layout, dir Direction, index int) geom.Vec {
	y := n.Position.Y + l.HeaderHeight + float64(index+1)*l.SocketSpacing
	if dir == Input {
		return geom.V(n.Position.X-l.SocketRadius, y)
	}
	w := n.Rect().Width()
	return geom.V(n.Position.X+w+l.SocketRadius, y)
}

// SocketPositionOf returns the world position of the socket with the given
// id. ok is false if the node has no such socket.
func (n *Node) SocketPositionOf(l Layout, id SocketID) (pos geom.Vec, ok bool) {
	i, s := n.socketIndex(id)
	if s == nil {
		return geom.Vec{}, false
	}
	return n.SocketPosition(l, s.Direction, i), true
}

// Clone returns a deep copy of the node under a new id.
func (n *Node) Clone(id NodeID) *Node {
	c := *n
	c.ID = id
	c.Properties = cloneProperties(n.Properties)
	c.Inputs = make([]*Socket, len(n.Inputs))
	for i, s := range n.Inputs {
		c.Inputs[i] = s.clone()
	}
	c.Outputs = make([]*Socket, len(n.Outputs))
	for i, s := range n.Outputs {
		c.Outputs[i] = s.clone()
	}
	return &c
}

// SetProperty sets a property value, allocating the map on first use.
func (n *Node) SetProperty(key string, v Value) {
	if n.Properties == nil {
		n.Properties = make(map[string]Value)
	}
	n.Properties[key] = v
}
