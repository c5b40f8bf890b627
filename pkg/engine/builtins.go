package engine

import (
	"fmt"
	"strings"

	zygo "github.com/glycerine/zygomys/zygo"

	"github.com/chazu/nodegraph/pkg/geom"
	"github.com/chazu/nodegraph/pkg/graph"
	"github.com/chazu/nodegraph/pkg/nodes"
)

// ---------------------------------------------------------------------------
// Custom Sexp types for passing Go values through the zygomys environment
// ---------------------------------------------------------------------------

// sexpNodeRef wraps a graph.NodeID so it can be passed between builtins.
type sexpNodeRef struct {
	id graph.NodeID
}

func (n *sexpNodeRef) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(noderef %q)", n.id)
}
func (n *sexpNodeRef) Type() *zygo.RegisteredType { return nil }

// sexpSocket carries a socket declared by `input` or `output` until the
// enclosing `node` adopts it.
type sexpSocket struct {
	sock *graph.Socket
	dir  graph.Direction
}

func (s *sexpSocket) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(%s %q :kind :%s)", s.dir, s.sock.ID, s.sock.Kind)
}
func (s *sexpSocket) Type() *zygo.RegisteredType { return nil }

// sexpSocketRef wraps a node/socket pair for `connect`.
type sexpSocketRef struct {
	ref graph.SocketRef
}

func (r *sexpSocketRef) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(socket %q %q)", r.ref.Node, r.ref.Socket)
}
func (r *sexpSocketRef) Type() *zygo.RegisteredType { return nil }

// sexpVec wraps a geom.Vec.
type sexpVec struct {
	vec geom.Vec
}

func (v *sexpVec) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(vec %.1f %.1f)", v.vec.X, v.vec.Y)
}
func (v *sexpVec) Type() *zygo.RegisteredType { return nil }

// sexpColor wraps a graph.Color.
type sexpColor struct {
	c graph.Color
}

func (c *sexpColor) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(rgba %d %d %d %d)", c.c.R, c.c.G, c.c.B, c.c.A)
}
func (c *sexpColor) Type() *zygo.RegisteredType { return nil }

// ---------------------------------------------------------------------------
// Keyword argument parsing
// ---------------------------------------------------------------------------

// kwPrefix is the marker prepended to keyword names by preprocessSource.
const kwPrefix = "__kw_"

// isKW checks if a Sexp is a preprocessed keyword string.
// Returns the keyword name (without prefix) and true if it is.
func isKW(s zygo.Sexp) (string, bool) {
	str, ok := s.(*zygo.SexpStr)
	if !ok {
		return "", false
	}
	if strings.HasPrefix(str.S, kwPrefix) {
		return str.S[len(kwPrefix):], true
	}
	return "", false
}

// kwArgs holds the result of parsing a mixed positional+keyword argument list.
type kwArgs struct {
	kw         map[string]zygo.Sexp
	positional []zygo.Sexp
}

// optionKeys are the keywords that take a value. Any other keyword is a
// positional tag, as in (math "m" :add).
var optionKeys = map[string]bool{
	"at": true, "size": true, "title": true, "type": true,
	"category": true, "description": true,
	"kind": true, "label": true, "multiple": true, "required": true, "default": true,
	"id": true, "width": true, "color": true, "collapsed": true,
}

// parseArgs separates args into keyword and positional arguments.
// Keywords are identified by the __kw_ prefix added during preprocessing.
func parseArgs(args []zygo.Sexp) kwArgs {
	result := kwArgs{kw: make(map[string]zygo.Sexp)}
	for i := 0; i < len(args); i++ {
		if name, ok := isKW(args[i]); ok && optionKeys[name] {
			if i+1 < len(args) {
				result.kw[name] = args[i+1]
				i++
			} else {
				// Keyword at end with no value: treat as flag with nil.
				result.kw[name] = zygo.SexpNull
			}
			continue
		}
		result.positional = append(result.positional, args[i])
	}
	return result
}

// ---------------------------------------------------------------------------
// Value extraction helpers
// ---------------------------------------------------------------------------

// toFloat64 extracts a float64 from a Sexp (SexpInt or SexpFloat).
func toFloat64(s zygo.Sexp) (float64, error) {
	switch v := s.(type) {
	case *zygo.SexpInt:
		return float64(v.Val), nil
	case *zygo.SexpFloat:
		return v.Val, nil
	}
	return 0, fmt.Errorf("expected number, got %T (%s)", s, s.SexpString(nil))
}

// toString extracts a string from a Sexp.
func toString(s zygo.Sexp) (string, error) {
	if str, ok := s.(*zygo.SexpStr); ok {
		return str.S, nil
	}
	return "", fmt.Errorf("expected string, got %T (%s)", s, s.SexpString(nil))
}

// toBool extracts a boolean from a Sexp.
func toBool(s zygo.Sexp) (bool, error) {
	if b, ok := s.(*zygo.SexpBool); ok {
		return b.Val, nil
	}
	return false, fmt.Errorf("expected boolean, got %T (%s)", s, s.SexpString(nil))
}

// toKeywordString extracts a keyword name or plain string from a Sexp.
// Handles both preprocessed keywords (__kw_number) and plain strings
// ("number").
func toKeywordString(s zygo.Sexp) (string, error) {
	str, ok := s.(*zygo.SexpStr)
	if !ok {
		return "", fmt.Errorf("expected keyword or string, got %T (%s)", s, s.SexpString(nil))
	}
	if strings.HasPrefix(str.S, kwPrefix) {
		return str.S[len(kwPrefix):], nil
	}
	return str.S, nil
}

// toKind converts a keyword or string to a socket kind.
func toKind(s zygo.Sexp) (graph.SocketKind, error) {
	name, err := toKeywordString(s)
	if err != nil {
		return 0, err
	}
	return graph.ParseSocketKind(name)
}

// toNodeID extracts a node id from a node reference or a string.
func toNodeID(s zygo.Sexp) (graph.NodeID, error) {
	switch v := s.(type) {
	case *sexpNodeRef:
		return v.id, nil
	case *zygo.SexpStr:
		if !strings.HasPrefix(v.S, kwPrefix) {
			return graph.NodeID(v.S), nil
		}
	}
	return "", fmt.Errorf("expected node reference or id, got %T (%s)", s, s.SexpString(nil))
}

// toSocketRef accepts (socket n s) or a "node.socket" string.
func toSocketRef(s zygo.Sexp) (graph.SocketRef, error) {
	switch v := s.(type) {
	case *sexpSocketRef:
		return v.ref, nil
	case *zygo.SexpStr:
		node, sock, ok := strings.Cut(v.S, ".")
		if ok && node != "" && sock != "" {
			return graph.Ref(graph.NodeID(node), graph.SocketID(sock)), nil
		}
		return graph.SocketRef{}, fmt.Errorf("expected \"node.socket\", got %q", v.S)
	}
	return graph.SocketRef{}, fmt.Errorf("expected socket reference, got %T (%s)", s, s.SexpString(nil))
}

// toVec extracts a Vec from a sexpVec.
func toVec(s zygo.Sexp) (geom.Vec, error) {
	if v, ok := s.(*sexpVec); ok {
		return v.vec, nil
	}
	return geom.Vec{}, fmt.Errorf("expected vec, got %T (%s)", s, s.SexpString(nil))
}

// toColor extracts a Color from a sexpColor.
func toColor(s zygo.Sexp) (graph.Color, error) {
	if c, ok := s.(*sexpColor); ok {
		return c.c, nil
	}
	return graph.Color{}, fmt.Errorf("expected rgba, got %T (%s)", s, s.SexpString(nil))
}

// toValue converts a literal to a property value.
func toValue(s zygo.Sexp) (graph.Value, error) {
	switch v := s.(type) {
	case *zygo.SexpInt:
		return graph.Number(v.Val), nil
	case *zygo.SexpFloat:
		return graph.Number(v.Val), nil
	case *zygo.SexpStr:
		return graph.Text(v.S), nil
	case *zygo.SexpBool:
		return graph.Bool(v.Val), nil
	case *sexpVec:
		return graph.VectorValue(v.vec), nil
	case *sexpColor:
		return graph.ColorValue(v.c), nil
	}
	return nil, fmt.Errorf("expected number, string, boolean, vec or rgba, got %T (%s)", s, s.SexpString(nil))
}

// ---------------------------------------------------------------------------
// Node helpers
// ---------------------------------------------------------------------------

// place applies :at and :size to n.
func place(fn string, n *graph.Node, pa kwArgs) error {
	if v, ok := pa.kw["at"]; ok {
		p, err := toVec(v)
		if err != nil {
			return fmt.Errorf("%s: at: %w", fn, err)
		}
		n.Position = p
	}
	if v, ok := pa.kw["size"]; ok {
		sz, err := toVec(v)
		if err != nil {
			return fmt.Errorf("%s: size: %w", fn, err)
		}
		n.Size = sz
	}
	return nil
}

// addNode inserts n, turning a rejection into an error.
func addNode(fn string, g *graph.Graph, n *graph.Node) (zygo.Sexp, error) {
	if r := g.CheckNode(n); r != graph.ReasonOK {
		return zygo.SexpNull, fmt.Errorf("%s %q: %w", fn, n.ID, r.Err())
	}
	g.AddNode(n)
	return &sexpNodeRef{id: n.ID}, nil
}

// nodeID reads the leading id argument.
func nodeID(fn string, pa kwArgs) (graph.NodeID, error) {
	if len(pa.positional) < 1 {
		return "", fmt.Errorf("%s requires an id argument", fn)
	}
	id, err := toString(pa.positional[0])
	if err != nil || strings.HasPrefix(id, kwPrefix) {
		return "", fmt.Errorf("%s: id: expected string", fn)
	}
	return graph.NodeID(id), nil
}

// ---------------------------------------------------------------------------
// Builtin registration
// ---------------------------------------------------------------------------

// registerBuiltins installs the graph script builtins into a zygomys
// environment. The builtins operate on g, populating it during evaluation.
//
// Source code must be preprocessed with preprocessSource() before evaluation so
// that :keyword tokens are converted to recognizable string literals.
func registerBuiltins(env *zygo.Zlisp, g *graph.Graph) {

	// -----------------------------------------------------------------------
	// (vec 10 20)
	// -----------------------------------------------------------------------
	env.AddFunction("vec", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 2 {
			return zygo.SexpNull, fmt.Errorf("vec requires exactly 2 arguments, got %d", len(args))
		}
		x, err := toFloat64(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("vec: x: %w", err)
		}
		y, err := toFloat64(args[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("vec: y: %w", err)
		}
		return &sexpVec{vec: geom.V(x, y)}, nil
	})

	// -----------------------------------------------------------------------
	// (rgba 255 128 0 255), (rgba 255 128 0)
	// -----------------------------------------------------------------------
	env.AddFunction("rgba", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 3 && len(args) != 4 {
			return zygo.SexpNull, fmt.Errorf("rgba requires 3 or 4 arguments, got %d", len(args))
		}
		ch := [4]uint8{255, 255, 255, 255}
		for i, a := range args {
			f, err := toFloat64(a)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("rgba: channel %d: %w", i, err)
			}
			if f < 0 || f > 255 {
				return zygo.SexpNull, fmt.Errorf("rgba: channel %d out of range: %g", i, f)
			}
			ch[i] = uint8(f)
		}
		return &sexpColor{c: graph.Color{R: ch[0], G: ch[1], B: ch[2], A: ch[3]}}, nil
	})

	// -----------------------------------------------------------------------
	// (input "a" :kind :number :label "A" :multiple false :required true
	//        :default 0)
	// (output "result" :kind :number)
	// -----------------------------------------------------------------------
	socket := func(dir graph.Direction) func(*zygo.Zlisp, string, []zygo.Sexp) (zygo.Sexp, error) {
		return func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
			pa := parseArgs(args)
			if len(pa.positional) < 1 {
				return zygo.SexpNull, fmt.Errorf("%s requires an id argument", name)
			}
			id, err := toString(pa.positional[0])
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("%s: id: %w", name, err)
			}
			s := graph.NewSocket(graph.SocketID(id), id, graph.KindAny)
			if dir == graph.Output {
				s.AllowMultiple = true
			}

			if v, ok := pa.kw["kind"]; ok {
				k, err := toKind(v)
				if err != nil {
					return zygo.SexpNull, fmt.Errorf("%s: kind: %w", name, err)
				}
				s.Kind = k
			}
			if v, ok := pa.kw["label"]; ok {
				l, err := toString(v)
				if err != nil {
					return zygo.SexpNull, fmt.Errorf("%s: label: %w", name, err)
				}
				s.Label = l
			}
			if v, ok := pa.kw["multiple"]; ok {
				b, err := toBool(v)
				if err != nil {
					return zygo.SexpNull, fmt.Errorf("%s: multiple: %w", name, err)
				}
				s.AllowMultiple = b
			}
			if v, ok := pa.kw["required"]; ok {
				b, err := toBool(v)
				if err != nil {
					return zygo.SexpNull, fmt.Errorf("%s: required: %w", name, err)
				}
				s.Required = b
			}
			if v, ok := pa.kw["default"]; ok {
				d, err := toValue(v)
				if err != nil {
					return zygo.SexpNull, fmt.Errorf("%s: default: %w", name, err)
				}
				s.Default = d
			}
			return &sexpSocket{sock: s, dir: dir}, nil
		}
	}
	env.AddFunction("input", socket(graph.Input))
	env.AddFunction("output", socket(graph.Output))

	// -----------------------------------------------------------------------
	// (node "id" :title "Title" :type :custom :at (vec 0 0) :size (vec 120 80)
	//       :category "General" :description "..." :collapsed false
	//       (input ...) (output ...))
	// -----------------------------------------------------------------------
	env.AddFunction("node", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		id, err := nodeID("node", pa)
		if err != nil {
			return zygo.SexpNull, err
		}
		n := graph.NewNode(id, string(id), graph.NodeBasic)

		if v, ok := pa.kw["title"]; ok {
			t, err := toString(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("node: title: %w", err)
			}
			n.Title = t
		}
		if v, ok := pa.kw["type"]; ok {
			s, err := toKeywordString(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("node: type: %w", err)
			}
			typ, err := graph.ParseNodeType(s)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("node: type: %w", err)
			}
			n.Type = typ
		}
		if v, ok := pa.kw["category"]; ok {
			c, err := toString(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("node: category: %w", err)
			}
			n.Category = c
		}
		if v, ok := pa.kw["description"]; ok {
			d, err := toString(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("node: description: %w", err)
			}
			n.Description = d
		}
		if v, ok := pa.kw["collapsed"]; ok {
			b, err := toBool(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("node: collapsed: %w", err)
			}
			n.Collapsed = b
		}
		if err := place("node", n, pa); err != nil {
			return zygo.SexpNull, err
		}

		for i, arg := range pa.positional[1:] {
			s, ok := arg.(*sexpSocket)
			if !ok {
				return zygo.SexpNull, fmt.Errorf("node %q: argument %d: expected input or output, got %T (%s)",
					id, i+1, arg, arg.SexpString(nil))
			}
			var added bool
			if s.dir == graph.Input {
				added = n.AddInput(s.sock)
			} else {
				added = n.AddOutput(s.sock)
			}
			if !added {
				return zygo.SexpNull, fmt.Errorf("node %q: duplicate socket %q", id, s.sock.ID)
			}
		}
		return addNode("node", g, n)
	})

	// -----------------------------------------------------------------------
	// (math "id" :add :at (vec 250 150))
	// -----------------------------------------------------------------------
	env.AddFunction("math", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		id, err := nodeID("math", pa)
		if err != nil {
			return zygo.SexpNull, err
		}
		if len(pa.positional) < 2 {
			return zygo.SexpNull, fmt.Errorf("math %q requires an operation", id)
		}
		op, err := toKeywordString(pa.positional[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("math: operation: %w", err)
		}
		n, err := nodes.Math(id, op)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("math: %w", err)
		}
		if err := place("math", n, pa); err != nil {
			return zygo.SexpNull, err
		}
		return addNode("math", g, n)
	})

	// -----------------------------------------------------------------------
	// (constant "id" 5 :at (vec 50 100))
	// -----------------------------------------------------------------------
	env.AddFunction("constant", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		id, err := nodeID("constant", pa)
		if err != nil {
			return zygo.SexpNull, err
		}
		if len(pa.positional) < 2 {
			return zygo.SexpNull, fmt.Errorf("constant %q requires a value", id)
		}
		v, err := toValue(pa.positional[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("constant: value: %w", err)
		}
		n := nodes.Constant(id, v)
		if err := place("constant", n, pa); err != nil {
			return zygo.SexpNull, err
		}
		return addNode("constant", g, n)
	})

	// -----------------------------------------------------------------------
	// (print-node "id" :at (vec 650 150))
	//
	// Registered as "print_node": the preprocessor rewrites kebab-case.
	// -----------------------------------------------------------------------
	env.AddFunction("print_node", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		id, err := nodeID("print-node", pa)
		if err != nil {
			return zygo.SexpNull, err
		}
		n := nodes.Print(id)
		if err := place("print-node", n, pa); err != nil {
			return zygo.SexpNull, err
		}
		return addNode("print-node", g, n)
	})

	// -----------------------------------------------------------------------
	// (from-template "math.add" "id" :at (vec 0 0))
	// -----------------------------------------------------------------------
	env.AddFunction("from_template", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if len(pa.positional) < 2 {
			return zygo.SexpNull, fmt.Errorf("from-template requires a template name and an id")
		}
		tmpl, err := toString(pa.positional[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("from-template: name: %w", err)
		}
		id, err := toString(pa.positional[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("from-template: id: %w", err)
		}
		n, err := nodes.Create(tmpl, graph.NodeID(id))
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("from-template: %w", err)
		}
		if err := place("from-template", n, pa); err != nil {
			return zygo.SexpNull, err
		}
		return addNode("from-template", g, n)
	})

	// -----------------------------------------------------------------------
	// (socket node "value")
	// -----------------------------------------------------------------------
	env.AddFunction("socket", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 2 {
			return zygo.SexpNull, fmt.Errorf("socket requires a node and a socket id, got %d arguments", len(args))
		}
		n, err := toNodeID(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("socket: node: %w", err)
		}
		s, err := toString(args[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("socket: id: %w", err)
		}
		return &sexpSocketRef{ref: graph.Ref(n, graph.SocketID(s))}, nil
	})

	// -----------------------------------------------------------------------
	// (connect "const1.value" (socket m "a") :id "conn1" :width 2
	//          :color (rgba 100 200 100))
	// -----------------------------------------------------------------------
	env.AddFunction("connect", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if len(pa.positional) != 2 {
			return zygo.SexpNull, fmt.Errorf("connect requires two socket references")
		}
		from, err := toSocketRef(pa.positional[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("connect: from: %w", err)
		}
		to, err := toSocketRef(pa.positional[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("connect: to: %w", err)
		}

		id := graph.NewConnectionID()
		if v, ok := pa.kw["id"]; ok {
			s, err := toString(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("connect: id: %w", err)
			}
			id = graph.ConnectionID(s)
		}
		c := graph.NewConnection(id, from, to)
		if v, ok := pa.kw["width"]; ok {
			w, err := toFloat64(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("connect: width: %w", err)
			}
			c.Width = w
		}
		if v, ok := pa.kw["color"]; ok {
			col, err := toColor(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("connect: color: %w", err)
			}
			c.Color = col
		}
		if r := g.TryAddConnection(c); r != graph.ReasonOK {
			return zygo.SexpNull, fmt.Errorf("connect %s -> %s: %w", from, to, r.Err())
		}
		return &zygo.SexpStr{S: string(c.ID)}, nil
	})

	// -----------------------------------------------------------------------
	// (prop node "key" value)
	// -----------------------------------------------------------------------
	env.AddFunction("prop", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 3 {
			return zygo.SexpNull, fmt.Errorf("prop requires a node, a key and a value, got %d arguments", len(args))
		}
		id, err := toNodeID(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("prop: node: %w", err)
		}
		n := g.Node(id)
		if n == nil {
			return zygo.SexpNull, fmt.Errorf("prop: no node %q", id)
		}
		key, err := toString(args[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("prop: key: %w", err)
		}
		v, err := toValue(args[2])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("prop: value: %w", err)
		}
		n.SetProperty(key, v)
		return args[0], nil
	})
}
