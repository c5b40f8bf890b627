package docfile

import (
	"bufio"
	"fmt"
	"io"
	"sort"
	"strconv"

	"github.com/chazu/nodegraph/pkg/graph"
)

// writeScript renders g as a graph script that evaluates back to the same
// structure. Socket and connection metadata are not representable and are
// dropped.
func writeScript(w io.Writer, g *graph.Graph) error {
	bw := bufio.NewWriter(w)

	for i, n := range g.Nodes() {
		if i > 0 {
			bw.WriteString("\n")
		}
		writeNode(bw, n)
	}
	if g.ConnectionCount() > 0 {
		bw.WriteString("\n")
	}
	for _, c := range g.Connections() {
		fmt.Fprintf(bw, "(connect (socket %s %s) (socket %s %s) :id %s :width %s :color %s)\n",
			quote(string(c.Start.Node)), quote(string(c.Start.Socket)),
			quote(string(c.End.Node)), quote(string(c.End.Socket)),
			quote(string(c.ID)), num(c.Width), rgba(c.Color))
	}
	return bw.Flush()
}

func writeNode(w *bufio.Writer, n *graph.Node) {
	fmt.Fprintf(w, "(node %s :title %s :type :%s\n", quote(string(n.ID)), quote(n.Title), n.Type)
	fmt.Fprintf(w, "  :at (vec %s %s) :size (vec %s %s)",
		num(n.Position.X), num(n.Position.Y), num(n.Size.X), num(n.Size.Y))
	if n.Category != "" {
		fmt.Fprintf(w, " :category %s", quote(n.Category))
	}
	if n.Description != "" {
		fmt.Fprintf(w, "\n  :description %s", quote(n.Description))
	}
	if n.Collapsed {
		w.WriteString(" :collapsed true")
	}
	for _, s := range n.Inputs {
		writeSocket(w, "input", s)
	}
	for _, s := range n.Outputs {
		writeSocket(w, "output", s)
	}
	w.WriteString(")\n")

	keys := make([]string, 0, len(n.Properties))
	for k := range n.Properties {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if lit, ok := literal(n.Properties[k]); ok {
			fmt.Fprintf(w, "(prop %s %s %s)\n", quote(string(n.ID)), quote(k), lit)
		}
	}
}

func writeSocket(w *bufio.Writer, form string, s *graph.Socket) {
	fmt.Fprintf(w, "\n  (%s %s :kind :%s :label %s :multiple %t",
		form, quote(string(s.ID)), s.Kind, quote(s.Label), s.AllowMultiple)
	if s.Required {
		w.WriteString(" :required true")
	}
	if lit, ok := literal(s.Default); ok {
		fmt.Fprintf(w, " :default %s", lit)
	}
	w.WriteString(")")
}

// literal renders v as a script expression. ok is false for nil.
func literal(v graph.Value) (string, bool) {
	switch x := v.(type) {
	case graph.Number:
		return num(float64(x)), true
	case graph.Text:
		return quote(string(x)), true
	case graph.Bool:
		return strconv.FormatBool(bool(x)), true
	case graph.VectorValue:
		return fmt.Sprintf("(vec %s %s)", num(x.X), num(x.Y)), true
	case graph.ColorValue:
		return rgba(graph.Color(x)), true
	}
	return "", false
}

func num(f float64) string { return strconv.FormatFloat(f, 'f', -1, 64) }

func quote(s string) string { return strconv.Quote(s) }

func rgba(c graph.Color) string {
	return fmt.Sprintf("(rgba %d %d %d %d)", c.R, c.G, c.B, c.A)
}
