package graph

// DefaultConnectionWidth is the stroke width given to connections that
// don't specify one.
const DefaultConnectionWidth = 3

// Connection is a directed edge from an output socket (Start) to an input
// socket (End). Endpoints are stored as references, never as pointers.
type Connection struct {
	ID       ConnectionID
	Start    SocketRef
	End      SocketRef
	Width    float64
	Color    Color
	Metadata map[string]string
}

// NewConnection returns a connection between two sockets with default style.
func NewConnection(id ConnectionID, start, end SocketRef) *Connection {
	return &Connection{ID: id, Start: start, End: end, Width: DefaultConnectionWidth}
}

// Touches reports whether either endpoint belongs to node id.
func (c *Connection) Touches(id NodeID) bool {
	return c.Start.Node == id || c.End.Node == id
}

// Other returns the endpoint opposite ref. ok is false if ref is not an
// endpoint of c.
func (c *Connection) Other(ref SocketRef) (other SocketRef, ok bool) {
	switch ref {
	case c.Start:
		return c.End, true
	case c.End:
		return c.Start, true
	}
	return SocketRef{}, false
}

func (c *Connection) clone() *Connection {
	d := *c
	d.Metadata = cloneStrings(c.Metadata)
	return &d
}

// ConnectionColor returns the stock colour for connections carrying kind k.
func ConnectionColor(k SocketKind) Color {
	switch k {
	case KindExec:
		return RGB(255, 255, 255)
	case KindNumber:
		return RGB(100, 200, 100)
	case KindString:
		return RGB(200, 100, 100)
	case KindBoolean:
		return RGB(100, 100, 200)
	case KindVector:
		return RGB(200, 200, 100)
	case KindColor:
		return RGB(200, 100, 200)
	case KindObject:
		return RGB(100, 200, 200)
	default:
		return RGB(150, 150, 150)
	}
}
