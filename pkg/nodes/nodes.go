// Package nodes is the catalog of built-in node templates: math operators,
// constants and a print sink. Nodes are structure only; nothing here
// evaluates a graph.
package nodes

import (
	"fmt"
	"sort"
	"strings"

	"github.com/chazu/nodegraph/pkg/geom"
	"github.com/chazu/nodegraph/pkg/graph"
)

// Math operations.
var (
	binaryOps = []string{"add", "subtract", "multiply", "divide"}
	unaryOps  = []string{"sin", "cos", "tan", "sqrt"}
)

// IsMathOp reports whether op names a math operation.
func IsMathOp(op string) bool {
	return contains(binaryOps, op) || contains(unaryOps, op)
}

func contains(list []string, s string) bool {
	for _, x := range list {
		if x == s {
			return true
		}
	}
	return false
}

// Math returns a math node. Binary operations have inputs a and b, unary
// ones a single input; all have one result output.
func Math(id graph.NodeID, op string) (*graph.Node, error) {
	if !IsMathOp(op) {
		return nil, fmt.Errorf("unknown math operation %q", op)
	}
	n := graph.NewNode(id, "Math ("+strings.ToUpper(op[:1])+op[1:]+")", graph.NodeMath)
	n.Size = geom.V(140, 80)
	n.Category = "Math"
	n.Description = "Performs " + op + " operation"
	n.SetProperty("operation", graph.Text(op))

	if contains(binaryOps, op) {
		n.AddInput(numberIn("a", "A"))
		n.AddInput(numberIn("b", "B"))
	} else {
		n.AddInput(numberIn("input", "Input"))
	}
	n.AddOutput(fanOut("result", "Result", graph.KindNumber))
	return n, nil
}

// Constant returns a node with a single output carrying v.
func Constant(id graph.NodeID, v graph.Value) *graph.Node {
	kind := v.Kind()
	n := graph.NewNode(id, "Constant ("+titleCase(kind.String())+")", graph.NodeConstant)
	n.Size = geom.V(120, 60)
	n.Category = "Constants"
	n.Description = "Constant " + kind.String() + " value"
	n.SetProperty("value", v)

	out := fanOut("value", "Value", kind)
	out.Default = v
	n.AddOutput(out)
	return n
}

// Print returns a debug sink with exec flow and an untyped value input.
func Print(id graph.NodeID) *graph.Node {
	n := graph.NewNode(id, "Print", graph.NodeFunction)
	n.Size = geom.V(100, 60)
	n.Category = "Debug"
	n.Description = "Print value to console"

	n.AddInput(graph.NewSocket("exec_in", "", graph.KindExec))
	n.AddInput(graph.NewSocket("value", "Value", graph.KindAny))
	n.AddOutput(graph.NewSocket("exec_out", "", graph.KindExec))
	return n
}

func numberIn(id graph.SocketID, label string) *graph.Socket {
	s := graph.NewSocket(id, label, graph.KindNumber)
	s.Default = graph.Number(0)
	return s
}

func fanOut(id graph.SocketID, label string, kind graph.SocketKind) *graph.Socket {
	s := graph.NewSocket(id, label, kind)
	s.AllowMultiple = true
	return s
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// Template is a named way to make a node.
type Template struct {
	Name        string
	Category    string
	Description string
	Build       func(id graph.NodeID) *graph.Node
}

var catalog = func() map[string]Template {
	m := make(map[string]Template)
	for _, op := range append(append([]string(nil), binaryOps...), unaryOps...) {
		m["math."+op] = Template{
			Name:        "math." + op,
			Category:    "Math",
			Description: "Performs " + op + " operation",
			Build: func(id graph.NodeID) *graph.Node {
				n, _ := Math(id, op)
				return n
			},
		}
	}
	for name, v := range map[string]graph.Value{
		"constant.number":  graph.Number(0),
		"constant.string":  graph.Text(""),
		"constant.boolean": graph.Bool(false),
	} {
		m[name] = Template{
			Name:        name,
			Category:    "Constants",
			Description: "Constant " + v.Kind().String() + " value",
			Build:       func(id graph.NodeID) *graph.Node { return Constant(id, v) },
		}
	}
	m["print"] = Template{
		Name:        "print",
		Category:    "Debug",
		Description: "Print value to console",
		Build:       Print,
	}
	return m
}()

// Catalog returns every template sorted by name.
func Catalog() []Template {
	out := make([]Template, 0, len(catalog))
	for _, t := range catalog {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Create builds a node from the named template.
func Create(name string, id graph.NodeID) (*graph.Node, error) {
	t, ok := catalog[name]
	if !ok {
		return nil, fmt.Errorf("unknown node template %q", name)
	}
	return t.Build(id), nil
}

// Sample returns a small demonstration graph computing (5 + 3) * 2, plus
// an unconnected print node. It panics if the catalog and graph rules
// disagree.
func Sample(opts ...graph.Option) *graph.Graph {
	g := graph.New(opts...)
	at := func(n *graph.Node, x, y float64) *graph.Node {
		n.Position = geom.V(x, y)
		return n
	}
	mustMath := func(id graph.NodeID, op string) *graph.Node {
		n, err := Math(id, op)
		if err != nil {
			panic(err)
		}
		return n
	}

	for _, n := range []*graph.Node{
		at(Constant("const1", graph.Number(5)), 50, 100),
		at(Constant("const2", graph.Number(3)), 50, 200),
		at(mustMath("math1", "add"), 250, 150),
		at(mustMath("math2", "multiply"), 450, 150),
		at(Constant("const3", graph.Number(2)), 250, 250),
		at(Print("print1"), 650, 150),
	} {
		if !g.AddNode(n) {
			panic("nodes: sample node " + string(n.ID) + " rejected")
		}
	}
	for _, c := range []*graph.Connection{
		graph.NewConnection("conn1", graph.Ref("const1", "value"), graph.Ref("math1", "a")),
		graph.NewConnection("conn2", graph.Ref("const2", "value"), graph.Ref("math1", "b")),
		graph.NewConnection("conn3", graph.Ref("math1", "result"), graph.Ref("math2", "a")),
		graph.NewConnection("conn4", graph.Ref("const3", "value"), graph.Ref("math2", "b")),
	} {
		if r := g.TryAddConnection(c); r != graph.ReasonOK {
			panic(fmt.Sprintf("nodes: sample connection %s rejected: %s", c.ID, r))
		}
	}
	return g
}
