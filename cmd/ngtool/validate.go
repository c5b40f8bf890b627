package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/chazu/nodegraph/pkg/graph"
)

func (a *app) validateCmd() *cobra.Command {
	var strict bool

	cmd := &cobra.Command{
		Use:   "validate FILE...",
		Short: "Check documents against the graph rules",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			w := cmd.OutOrStdout()
			failed := 0
			for _, path := range args {
				g, err := a.load(path)
				if err != nil {
					fmt.Fprintf(w, "  %s %s\n", statusIcon(false), path)
					fmt.Fprintf(w, "    %s %v\n", Bad.Sprint("error:"), err)
					failed++
					continue
				}

				res := graph.ValidateAll(g)
				ok := res.OK() && (!strict || len(res.Warnings) == 0)
				fmt.Fprintf(w, "  %s %s %s\n", statusIcon(ok), path,
					Subtle.Sprintf("(%d nodes, %d connections)", g.NodeCount(), g.ConnectionCount()))
				for _, e := range res.Errors {
					fmt.Fprintf(w, "    %s %s\n", Bad.Sprint("error:"), describe(e))
				}
				for _, e := range res.Warnings {
					fmt.Fprintf(w, "    %s %s\n", Warn.Sprint("warning:"), describe(e))
				}
				if !ok {
					failed++
				}
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d documents failed validation", failed, len(args))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&strict, "strict", false, "Treat warnings as failures")
	return cmd
}

func describe(e graph.ValidationError) string {
	switch {
	case e.NodeID != "":
		return fmt.Sprintf("node %s: %s", e.NodeID, e.Message)
	case e.ConnectionID != "":
		return fmt.Sprintf("connection %s: %s", e.ConnectionID, e.Message)
	}
	return e.Message
}
