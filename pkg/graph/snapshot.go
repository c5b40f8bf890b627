package graph

import (
	"fmt"

	"github.com/chazu/nodegraph/pkg/event"
	"github.com/chazu/nodegraph/pkg/geom"
)

// DocumentVersion is the structural snapshot version written by Snapshot.
const DocumentVersion = 1

// Document is a structural snapshot of a graph: plain data, ready for any
// encoder. Nodes appear back to front, connections in insertion order.
type Document struct {
	Version     int             `json:"version" yaml:"version"`
	Nodes       []NodeDoc       `json:"nodes" yaml:"nodes"`
	Connections []ConnectionDoc `json:"connections" yaml:"connections"`
}

// PointDoc is a serialisable 2D point.
type PointDoc struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

func pointDoc(v geom.Vec) PointDoc { return PointDoc{X: v.X, Y: v.Y} }

// Vec converts back to a vector.
func (p PointDoc) Vec() geom.Vec { return geom.V(p.X, p.Y) }

type NodeDoc struct {
	ID          string              `json:"id" yaml:"id"`
	Title       string              `json:"title" yaml:"title"`
	Type        string              `json:"type" yaml:"type"`
	Position    PointDoc            `json:"position" yaml:"position"`
	Size        PointDoc            `json:"size" yaml:"size"`
	Inputs      []SocketDoc         `json:"inputs,omitempty" yaml:"inputs,omitempty"`
	Outputs     []SocketDoc         `json:"outputs,omitempty" yaml:"outputs,omitempty"`
	Properties  map[string]ValueDoc `json:"properties,omitempty" yaml:"properties,omitempty"`
	Category    string              `json:"category,omitempty" yaml:"category,omitempty"`
	Description string              `json:"description,omitempty" yaml:"description,omitempty"`
	Collapsed   bool                `json:"collapsed,omitempty" yaml:"collapsed,omitempty"`
}

type SocketDoc struct {
	ID            string            `json:"id" yaml:"id"`
	Label         string            `json:"label" yaml:"label"`
	Kind          string            `json:"kind" yaml:"kind"`
	Default       *ValueDoc         `json:"default,omitempty" yaml:"default,omitempty"`
	AllowMultiple bool              `json:"allow_multiple,omitempty" yaml:"allow_multiple,omitempty"`
	Required      bool              `json:"required,omitempty" yaml:"required,omitempty"`
	Metadata      map[string]string `json:"metadata,omitempty" yaml:"metadata,omitempty"`
}

type ConnectionDoc struct {
	ID       string            `json:"id" yaml:"id"`
	Start    SocketRef         `json:"start" yaml:"start"`
	End      SocketRef         `json:"end" yaml:"end"`
	Width    float64           `json:"width,omitempty" yaml:"width,omitempty"`
	Color    *Color            `json:"color,omitempty" yaml:"color,omitempty"`
	Metadata map[string]string `json:"metadata,omitempty" yaml:"metadata,omitempty"`
}

// ValueDoc is the serialised form of a Value. Kind selects the populated
// field.
type ValueDoc struct {
	Kind   string    `json:"kind" yaml:"kind"`
	Number float64   `json:"number,omitempty" yaml:"number,omitempty"`
	Text   string    `json:"text,omitempty" yaml:"text,omitempty"`
	Bool   bool      `json:"bool,omitempty" yaml:"bool,omitempty"`
	Vector *PointDoc `json:"vector,omitempty" yaml:"vector,omitempty"`
	Color  *Color    `json:"color,omitempty" yaml:"color,omitempty"`
}

func valueDoc(v Value) *ValueDoc {
	switch x := v.(type) {
	case Number:
		return &ValueDoc{Kind: KindNumber.String(), Number: float64(x)}
	case Text:
		return &ValueDoc{Kind: KindString.String(), Text: string(x)}
	case Bool:
		return &ValueDoc{Kind: KindBoolean.String(), Bool: bool(x)}
	case VectorValue:
		p := pointDoc(geom.Vec(x))
		return &ValueDoc{Kind: KindVector.String(), Vector: &p}
	case ColorValue:
		c := Color(x)
		return &ValueDoc{Kind: KindColor.String(), Color: &c}
	}
	return nil
}

// Value decodes the document form.
func (d *ValueDoc) Value() (Value, error) {
	if d == nil {
		return nil, nil
	}
	k, err := ParseSocketKind(d.Kind)
	if err != nil {
		return nil, err
	}
	switch k {
	case KindNumber:
		return Number(d.Number), nil
	case KindString:
		return Text(d.Text), nil
	case KindBoolean:
		return Bool(d.Bool), nil
	case KindVector:
		if d.Vector == nil {
			return VectorValue{}, nil
		}
		return VectorValue(d.Vector.Vec()), nil
	case KindColor:
		if d.Color == nil {
			return ColorValue{}, nil
		}
		return ColorValue(*d.Color), nil
	}
	return nil, fmt.Errorf("no value representation for kind %s", k)
}

// Snapshot captures the graph's structure.
func (g *Graph) Snapshot() *Document {
	doc := &Document{Version: DocumentVersion}
	for _, n := range g.Nodes() {
		nd := NodeDoc{
			ID:          string(n.ID),
			Title:       n.Title,
			Type:        n.Type.String(),
			Position:    pointDoc(n.Position),
			Size:        pointDoc(n.Size),
			Category:    n.Category,
			Description: n.Description,
			Collapsed:   n.Collapsed,
		}
		for _, s := range n.Inputs {
			nd.Inputs = append(nd.Inputs, socketDoc(s))
		}
		for _, s := range n.Outputs {
			nd.Outputs = append(nd.Outputs, socketDoc(s))
		}
		if len(n.Properties) > 0 {
			nd.Properties = make(map[string]ValueDoc, len(n.Properties))
			for k, v := range n.Properties {
				if vd := valueDoc(v); vd != nil {
					nd.Properties[k] = *vd
				}
			}
		}
		doc.Nodes = append(doc.Nodes, nd)
	}
	for _, c := range g.Connections() {
		col := c.Color
		doc.Connections = append(doc.Connections, ConnectionDoc{
			ID:       string(c.ID),
			Start:    c.Start,
			End:      c.End,
			Width:    c.Width,
			Color:    &col,
			Metadata: cloneStrings(c.Metadata),
		})
	}
	return doc
}

func socketDoc(s *Socket) SocketDoc {
	return SocketDoc{
		ID:            string(s.ID),
		Label:         s.Label,
		Kind:          s.Kind.String(),
		Default:       valueDoc(s.Default),
		AllowMultiple: s.AllowMultiple,
		Required:      s.Required,
		Metadata:      cloneStrings(s.Metadata),
	}
}

func (d SocketDoc) socket() (*Socket, error) {
	k, err := ParseSocketKind(d.Kind)
	if err != nil {
		return nil, fmt.Errorf("socket %q: %w", d.ID, err)
	}
	def, err := d.Default.Value()
	if err != nil {
		return nil, fmt.Errorf("socket %q default: %w", d.ID, err)
	}
	s := NewSocket(SocketID(d.ID), d.Label, k)
	s.Default = def
	s.AllowMultiple = d.AllowMultiple
	s.Required = d.Required
	s.Metadata = cloneStrings(d.Metadata)
	return s, nil
}

func (d NodeDoc) node() (*Node, error) {
	typ, err := ParseNodeType(d.Type)
	if err != nil {
		return nil, err
	}
	n := NewNode(NodeID(d.ID), d.Title, typ)
	n.Position = d.Position.Vec()
	if d.Size != (PointDoc{}) {
		n.Size = d.Size.Vec()
	}
	n.Category = d.Category
	n.Description = d.Description
	n.Collapsed = d.Collapsed
	for _, sd := range d.Inputs {
		s, err := sd.socket()
		if err != nil {
			return nil, err
		}
		if !n.AddInput(s) {
			return nil, fmt.Errorf("duplicate socket %q", sd.ID)
		}
	}
	for _, sd := range d.Outputs {
		s, err := sd.socket()
		if err != nil {
			return nil, err
		}
		if !n.AddOutput(s) {
			return nil, fmt.Errorf("duplicate socket %q", sd.ID)
		}
	}
	for k, vd := range d.Properties {
		v, err := vd.Value()
		if err != nil {
			return nil, fmt.Errorf("property %q: %w", k, err)
		}
		n.SetProperty(k, v)
	}
	return n, nil
}

// FromDocument builds a graph from a snapshot. Every node and connection
// goes through the same checks as the mutation API; the first rejection
// aborts the load. No notifications are published while loading.
func FromDocument(doc *Document, opts ...Option) (*Graph, error) {
	g := New(opts...)
	bus := g.SetBus(nil)
	if err := g.load(doc); err != nil {
		return nil, err
	}
	g.SetBus(bus)
	return g, nil
}

func (g *Graph) load(doc *Document) error {
	if doc.Version > DocumentVersion {
		return fmt.Errorf("document version %d is newer than %d", doc.Version, DocumentVersion)
	}
	for _, nd := range doc.Nodes {
		n, err := nd.node()
		if err != nil {
			return fmt.Errorf("node %q: %w", nd.ID, err)
		}
		if r := g.CheckNode(n); r != ReasonOK {
			return fmt.Errorf("node %q: %w", nd.ID, r.Err())
		}
		g.AddNode(n)
	}
	for _, cd := range doc.Connections {
		c := NewConnection(ConnectionID(cd.ID), cd.Start, cd.End)
		if cd.Width > 0 {
			c.Width = cd.Width
		}
		if cd.Color != nil {
			c.Color = *cd.Color
		}
		c.Metadata = cloneStrings(cd.Metadata)
		if r := g.TryAddConnection(c); r != ReasonOK {
			return fmt.Errorf("connection %q: %w", cd.ID, r.Err())
		}
	}
	return nil
}

// Load replaces the graph's contents with the snapshot. On error the graph
// is left exactly as it was. A single GraphChanged(loaded) notification is
// published on success.
func (g *Graph) Load(doc *Document) error {
	tmp, err := FromDocument(doc, WithPolicy(g.policy), WithLayout(g.layout), WithLogger(g.log))
	if err != nil {
		return err
	}
	g.nodes, g.conns, g.attached = tmp.nodes, tmp.conns, tmp.attached
	g.seq = tmp.seq
	g.nodeOrder, g.connOrder = nil, nil
	g.rev++
	g.log.Debug("graph loaded", "nodes", len(g.nodes), "connections", len(g.conns))
	g.bus.Publish(event.Event{Kind: event.GraphChanged, Change: event.ChangeLoaded})
	return nil
}
