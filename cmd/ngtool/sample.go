package main

import (
	"github.com/spf13/cobra"

	"github.com/chazu/nodegraph/pkg/nodes"
)

func (a *app) sampleCmd() *cobra.Command {
	var format, output string

	cmd := &cobra.Command{
		Use:   "sample",
		Short: "Write the demonstration graph",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if format == "" && output == "" {
				format = "script"
			}
			return write(cmd, nodes.Sample(a.cfg.GraphOptions()...), format, output)
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "", "Output format: json, yaml or script (default from --output, else script)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write to a file instead of stdout")
	return cmd
}

func (a *app) catalogCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "catalog",
		Short: "List the built-in node templates",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			var rows [][]string
			for _, t := range nodes.Catalog() {
				rows = append(rows, []string{t.Name, t.Category, t.Description})
			}
			table(cmd.OutOrStdout(), []string{"Template", "Category", "Description"}, rows)
		},
	}
}
