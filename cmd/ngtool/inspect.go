package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/chazu/nodegraph/pkg/geom"
	"github.com/chazu/nodegraph/pkg/graph"
)

func (a *app) inspectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect FILE",
		Short: "List a document's nodes and connections",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := a.load(args[0])
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()

			fmt.Fprintf(w, "%s %s\n\n", Brand.Sprint(args[0]),
				Subtle.Sprintf("(%d nodes, %d connections)", g.NodeCount(), g.ConnectionCount()))

			var rects []geom.Rect
			var rows [][]string
			for _, n := range g.Nodes() {
				rects = append(rects, n.Rect())
				rows = append(rows, []string{
					string(n.ID),
					n.Title,
					n.Type.String(),
					vec(n.Position.X, n.Position.Y),
					vec(n.Size.X, n.Size.Y),
					strconv.Itoa(len(n.Inputs)),
					strconv.Itoa(len(n.Outputs)),
				})
			}
			table(w, []string{"ID", "Title", "Type", "Position", "Size", "In", "Out"}, rows)

			rows = nil
			for _, c := range g.Connections() {
				rows = append(rows, []string{
					string(c.ID),
					c.Start.String(),
					c.End.String(),
					strconv.FormatFloat(c.Width, 'g', -1, 64),
					c.Color.Hex(),
				})
			}
			if len(rows) > 0 {
				fmt.Fprintln(w)
			}
			table(w, []string{"ID", "From", "To", "Width", "Color"}, rows)

			if b, ok := geom.Bounds(rects); ok {
				fmt.Fprintf(w, "\n  Bounds: %s – %s\n", vec(b.Min.X, b.Min.Y), vec(b.Max.X, b.Max.Y))
			}
			if res := graph.ValidateAll(g); !res.OK() || len(res.Warnings) > 0 {
				fmt.Fprintf(w, "  %s %d errors, %d warnings (run validate for details)\n",
					Warn.Sprint("!"), len(res.Errors), len(res.Warnings))
			}
			return nil
		},
	}
}
