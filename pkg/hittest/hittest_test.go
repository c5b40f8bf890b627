package hittest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chazu/nodegraph/pkg/cull"
	"github.com/chazu/nodegraph/pkg/geom"
	"github.com/chazu/nodegraph/pkg/graph"
	"github.com/chazu/nodegraph/pkg/tessellate"
	"github.com/chazu/nodegraph/pkg/viewport"
)

func pair(t *testing.T) (*graph.Graph, graph.ConnectionID) {
	t.Helper()
	g := graph.New()
	a := graph.NewNode("A", "A", graph.NodeBasic)
	a.AddOutput(graph.NewSocket("out", "out", graph.KindNumber))
	b := graph.NewNode("B", "B", graph.NodeBasic)
	b.Position = geom.V(300, 0)
	b.AddInput(graph.NewSocket("in", "in", graph.KindNumber))
	require.True(t, g.AddNode(a))
	require.True(t, g.AddNode(b))
	id, r := g.Connect(graph.Ref("A", "out"), graph.Ref("B", "in"))
	require.Equal(t, graph.ReasonOK, r)
	return g, id
}

func TestConnectionOnHorizontalChord(t *testing.T) {
	g, id := pair(t)
	h := New(g, viewport.New(800, 600), tessellate.DefaultCurveParams())

	// Sockets sit at (128, 44) and (292, 44).
	got, ok := h.ConnectionAt(geom.V(200, 44), graph.DefaultConnectionWidth)
	require.True(t, ok)
	assert.Equal(t, id, got)

	_, ok = h.ConnectionAt(geom.V(200, 94), 8)
	assert.False(t, ok)
}

func TestConnectionAtFollowsZoom(t *testing.T) {
	g, id := pair(t)
	vp := viewport.New(800, 600)
	vp.ZoomAt(2, geom.Vec{})
	h := New(g, vp, tessellate.DefaultCurveParams())

	got, ok := h.ConnectionAt(geom.V(400, 88), 3)
	require.True(t, ok)
	assert.Equal(t, id, got)
	_, ok = h.ConnectionAt(geom.V(200, 44), 3)
	assert.False(t, ok)
}

func TestConnectionAtCurvedPath(t *testing.T) {
	g, id := pair(t)
	g.MoveNode("B", geom.V(300, 200))
	h := New(g, viewport.New(800, 600), tessellate.DefaultCurveParams())

	// The midpoint of a symmetric S-curve is the chord midpoint.
	start, _ := g.SocketPosition(graph.Ref("A", "out"))
	end, _ := g.SocketPosition(graph.Ref("B", "in"))
	mid := start.Add(end).MulScalar(0.5)
	got, ok := h.ConnectionAt(mid, 2)
	require.True(t, ok)
	assert.Equal(t, id, got)
}

func TestNodeAtIsFrontToBack(t *testing.T) {
	g := graph.New()
	under := graph.NewNode("under", "under", graph.NodeBasic)
	over := graph.NewNode("over", "over", graph.NodeBasic)
	over.Position = geom.V(60, 40)
	g.AddNode(under)
	g.AddNode(over)
	h := New(g, viewport.New(800, 600), tessellate.DefaultCurveParams())

	assert.Equal(t, graph.NodeID("over"), h.NodeAt(geom.V(100, 60)).ID)
	assert.Equal(t, graph.NodeID("under"), h.NodeAt(geom.V(10, 10)).ID)
	assert.Nil(t, h.NodeAt(geom.V(500, 500)))

	g.BringToFront("under")
	assert.Equal(t, graph.NodeID("under"), h.NodeAt(geom.V(100, 60)).ID)
}

func TestSocketAtTolerance(t *testing.T) {
	g, _ := pair(t)
	vp := viewport.New(800, 600)
	h := New(g, vp, tessellate.DefaultCurveParams())

	ref, ok := h.SocketAt(geom.V(130, 50), 16)
	require.True(t, ok)
	assert.Equal(t, graph.Ref("A", "out"), ref)

	_, ok = h.SocketAt(geom.V(150, 44), 16)
	assert.False(t, ok)

	// At low zoom the pixel tolerance stays the same.
	vp.ZoomAt(0.2, geom.Vec{})
	ref, ok = h.SocketAt(geom.V(128*0.2+10, 44*0.2), 16)
	require.True(t, ok)
	assert.Equal(t, graph.Ref("A", "out"), ref)
}

func TestPickPriority(t *testing.T) {
	g, id := pair(t)
	h := New(g, viewport.New(800, 600), tessellate.DefaultCurveParams())

	hit := h.Pick(geom.V(128, 44), 16, 8)
	assert.Equal(t, Socket, hit.Kind)
	assert.Equal(t, graph.NodeID("A"), hit.Node)

	hit = h.Pick(geom.V(210, 44), 16, 8)
	assert.Equal(t, Connection, hit.Kind)
	assert.Equal(t, id, hit.Connection)

	hit = h.Pick(geom.V(60, 60), 16, 8)
	assert.Equal(t, Node, hit.Kind)
	assert.Equal(t, graph.NodeID("A"), hit.Node)

	hit = h.Pick(geom.V(600, 500), 16, 8)
	assert.Equal(t, None, hit.Kind)
	assert.Equal(t, geom.V(600, 500), hit.World)
}

func TestRestrictToVisible(t *testing.T) {
	g := graph.New()
	for _, id := range []graph.NodeID{"first", "second"} {
		n := graph.NewNode(id, string(id), graph.NodeBasic)
		g.AddNode(n)
	}
	g.MoveNode("second", geom.V(200, 0))
	vp := viewport.New(800, 600)
	cfg := cull.DefaultConfig()
	cfg.MaxNodes = 1

	h := New(g, vp, tessellate.DefaultCurveParams())
	h.Visible = cull.Compute(g, vp, cfg)
	require.Len(t, h.Visible.Nodes, 1)

	// Default: hit testing ignores the render budget.
	require.NotNil(t, h.NodeAt(geom.V(250, 10)))

	h.RestrictToVisible = true
	assert.Nil(t, h.NodeAt(geom.V(250, 10)))
	assert.NotNil(t, h.NodeAt(geom.V(10, 10)))
}
