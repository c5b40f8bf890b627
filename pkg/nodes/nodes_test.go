package nodes

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chazu/nodegraph/pkg/graph"
)

func TestMathSockets(t *testing.T) {
	n, err := Math("m", "divide")
	require.NoError(t, err)
	assert.Equal(t, "Math (Divide)", n.Title)
	assert.Equal(t, graph.NodeMath, n.Type)
	require.Len(t, n.Inputs, 2)
	assert.Equal(t, graph.SocketID("b"), n.Inputs[1].ID)
	assert.Equal(t, graph.Input, n.Inputs[1].Direction)
	require.Len(t, n.Outputs, 1)
	assert.True(t, n.Outputs[0].AllowMultiple)

	n, err = Math("m", "sqrt")
	require.NoError(t, err)
	require.Len(t, n.Inputs, 1)
	assert.Equal(t, graph.SocketID("input"), n.Inputs[0].ID)

	_, err = Math("m", "pow")
	assert.Error(t, err)
}

func TestConstantCarriesValue(t *testing.T) {
	n := Constant("c", graph.Text("hi"))
	assert.Equal(t, "Constant (String)", n.Title)
	require.Len(t, n.Outputs, 1)
	assert.Equal(t, graph.KindString, n.Outputs[0].Kind)
	assert.Equal(t, graph.Text("hi"), n.Outputs[0].Default)
	assert.Equal(t, graph.Text("hi"), n.Properties["value"])
}

func TestCatalog(t *testing.T) {
	all := Catalog()
	require.Len(t, all, 12)
	for i := 1; i < len(all); i++ {
		assert.Less(t, all[i-1].Name, all[i].Name)
	}

	n, err := Create("print", "p")
	require.NoError(t, err)
	assert.Equal(t, graph.NodeID("p"), n.ID)
	assert.Equal(t, graph.KindAny, n.Socket("value").Kind)

	n, err = Create("math.cos", "c")
	require.NoError(t, err)
	assert.Equal(t, graph.Text("cos"), n.Properties["operation"])

	_, err = Create("nope", "x")
	assert.Error(t, err)
}

func TestSample(t *testing.T) {
	g := Sample()
	assert.Equal(t, 6, g.NodeCount())
	assert.Equal(t, 4, g.ConnectionCount())
	assert.Equal(t, []graph.ConnectionID{"conn3"}, g.ConnectionsAt(graph.Ref("math1", "result")))

	assert.True(t, graph.ValidateAll(g).OK())
}

func TestValueOutputsFanOut(t *testing.T) {
	g := Sample()
	// A constant may feed several inputs.
	id, r := g.Connect(graph.Ref("const1", "value"), graph.Ref("print1", "value"))
	require.Equal(t, graph.ReasonOK, r)
	assert.NotEmpty(t, id)
	assert.Equal(t, 2, g.AttachedCount(graph.Ref("const1", "value")))
}
