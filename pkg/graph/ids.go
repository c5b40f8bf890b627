package graph

import "github.com/google/uuid"

// NodeID identifies a node within a graph.
type NodeID string

// SocketID identifies a socket within its owning node.
type SocketID string

// ConnectionID identifies a connection within a graph.
type ConnectionID string

// SocketRef addresses a socket globally: the owning node plus the socket id.
type SocketRef struct {
	Node   NodeID   `json:"node" yaml:"node"`
	Socket SocketID `json:"socket" yaml:"socket"`
}

// Ref is shorthand for SocketRef{node, socket}.
func Ref(node NodeID, socket SocketID) SocketRef {
	return SocketRef{Node: node, Socket: socket}
}

func (r SocketRef) String() string {
	return string(r.Node) + "." + string(r.Socket)
}

// IsZero reports whether the ref is unset.
func (r SocketRef) IsZero() bool {
	return r.Node == "" && r.Socket == ""
}

// NewConnectionID returns a fresh random connection id.
func NewConnectionID() ConnectionID {
	return ConnectionID(uuid.NewString())
}
