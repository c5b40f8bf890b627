package graph

import "fmt"

// SocketKind is the data type carried by a socket.
type SocketKind int

const (
	KindExec SocketKind = iota // execution flow
	KindNumber
	KindString
	KindBoolean
	KindVector
	KindColor
	KindObject
	KindAny // compatible with every kind
)

var socketKindNames = [...]string{
	KindExec:    "exec",
	KindNumber:  "number",
	KindString:  "string",
	KindBoolean: "boolean",
	KindVector:  "vector",
	KindColor:   "color",
	KindObject:  "object",
	KindAny:     "any",
}

func (k SocketKind) String() string {
	if k >= 0 && int(k) < len(socketKindNames) {
		return socketKindNames[k]
	}
	return fmt.Sprintf("SocketKind(%d)", int(k))
}

// ParseSocketKind parses the lower-case kind name.
func ParseSocketKind(s string) (SocketKind, error) {
	for k, name := range socketKindNames {
		if name == s {
			return SocketKind(k), nil
		}
	}
	return 0, fmt.Errorf("unknown socket kind %q", s)
}

// Direction is the side of the node a socket sits on.
type Direction int

const (
	Input Direction = iota
	Output
)

func (d Direction) String() string {
	switch d {
	case Input:
		return "input"
	case Output:
		return "output"
	default:
		return fmt.Sprintf("Direction(%d)", int(d))
	}
}

// Socket is a typed connection point owned by a node. Its position is not
// stored; see Node.SocketPosition.
type Socket struct {
	ID            SocketID
	Label         string
	Kind          SocketKind
	Direction     Direction
	Default       Value
	AllowMultiple bool // more than one connection may attach
	Required      bool // must be connected for the graph to validate cleanly
	Metadata      map[string]string
}

// NewSocket returns a socket with the given identity. The direction is set
// when the socket is added to a node.
func NewSocket(id SocketID, label string, kind SocketKind) *Socket {
	return &Socket{ID: id, Label: label, Kind: kind}
}

// CanConnectTo reports whether s may be connected to other. selfCount and
// otherCount are the numbers of connections currently attached to each
// socket; the Graph supplies them from its back-reference index.
func (s *Socket) CanConnectTo(other *Socket, selfCount, otherCount int) Reason {
	if s.Direction == other.Direction {
		return ReasonSameDirection
	}
	if s == other {
		return ReasonSameSocket
	}
	if !s.AllowMultiple && selfCount > 0 {
		return ReasonMultiplicity
	}
	if !other.AllowMultiple && otherCount > 0 {
		return ReasonMultiplicity
	}
	if !KindsCompatible(s.Kind, other.Kind) {
		return ReasonTypeMismatch
	}
	return ReasonOK
}

// KindsCompatible reports whether data of kind a may flow into kind b.
func KindsCompatible(a, b SocketKind) bool {
	return a == KindAny || b == KindAny || a == b
}

func (s *Socket) clone() *Socket {
	c := *s
	c.Metadata = cloneStrings(s.Metadata)
	return &c
}
