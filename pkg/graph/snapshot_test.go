package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chazu/nodegraph/pkg/event"
	"github.com/chazu/nodegraph/pkg/geom"
)

func TestSnapshotRestoresStructure(t *testing.T) {
	g := pairGraph(t)
	a := g.Node("A")
	a.SetProperty("value", Number(5))
	a.SetProperty("label", Text("five"))
	a.Outputs[0].Default = VectorValue(geom.V(1, 2))
	_, r := g.Connect(Ref("B", "in0"), Ref("A", "out0"))
	require.Equal(t, ReasonOK, r)
	g.BringToFront("A")

	doc := g.Snapshot()
	require.Len(t, doc.Nodes, 2)
	assert.Equal(t, "B", doc.Nodes[0].ID, "snapshot keeps drawing order")
	require.Len(t, doc.Connections, 1)
	assert.Equal(t, Ref("A", "out0"), doc.Connections[0].Start)

	h, err := FromDocument(doc)
	require.NoError(t, err)
	assert.Equal(t, []NodeID{"B", "A"}, nodeIDs(h.Nodes()))
	assert.Equal(t, Number(5), h.Node("A").Properties["value"])
	assert.Equal(t, Text("five"), h.Node("A").Properties["label"])
	assert.Equal(t, VectorValue(geom.V(1, 2)), h.Node("A").Outputs[0].Default)
	assert.Equal(t, 1, h.AttachedCount(Ref("B", "in0")))
	assert.Equal(t, doc, h.Snapshot())
}

func TestFromDocumentRejectsInvalidEdges(t *testing.T) {
	doc := &Document{
		Version: DocumentVersion,
		Nodes: []NodeDoc{
			{ID: "s", Type: "basic", Outputs: []SocketDoc{{ID: "o", Kind: "string"}}},
			{ID: "n", Type: "basic", Inputs: []SocketDoc{{ID: "i", Kind: "number"}}},
		},
		Connections: []ConnectionDoc{{ID: "c", Start: Ref("s", "o"), End: Ref("n", "i")}},
	}
	_, err := FromDocument(doc)
	var rej *RejectedError
	require.ErrorAs(t, err, &rej)
	assert.Equal(t, ReasonTypeMismatch, rej.Reason)

	doc.Connections = nil
	doc.Nodes[1].Inputs = append(doc.Nodes[1].Inputs, SocketDoc{ID: "i", Kind: "number"})
	_, err = FromDocument(doc)
	assert.ErrorContains(t, err, "duplicate socket")

	doc.Nodes[1].Inputs = []SocketDoc{{ID: "i", Kind: "colour"}}
	_, err = FromDocument(doc)
	assert.ErrorContains(t, err, "unknown socket kind")

	_, err = FromDocument(&Document{Version: DocumentVersion + 1})
	assert.Error(t, err)
}

func TestLoadReplacesContentsAtomically(t *testing.T) {
	bus := event.NewBus()
	var rec event.Recorder
	bus.Subscribe(rec.Record)
	g := pairGraph(t, WithBus(bus))
	rec.Drain()

	bad := &Document{Nodes: []NodeDoc{{ID: "x", Type: "nonsense"}}}
	require.Error(t, g.Load(bad))
	assert.Equal(t, 2, g.NodeCount())
	assert.Empty(t, rec.Events)

	good := &Document{Nodes: []NodeDoc{{ID: "only", Type: "math"}}}
	require.NoError(t, g.Load(good))
	assert.Equal(t, []NodeID{"only"}, nodeIDs(g.Nodes()))
	assert.Equal(t, geom.V(DefaultNodeWidth, DefaultNodeHeight), g.Node("only").Size)
	require.Len(t, rec.Events, 1)
	assert.Equal(t, event.ChangeLoaded, rec.Events[0].Change)

	// Later mutations still notify.
	g.AddNode(NewNode("late", "late", NodeBasic))
	assert.Equal(t, 1, rec.Count(event.NodeAdded))
}
