package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/chazu/nodegraph/pkg/docfile"
	"github.com/chazu/nodegraph/pkg/graph"
)

func (a *app) exportCmd() *cobra.Command {
	var format, output string

	cmd := &cobra.Command{
		Use:   "export FILE",
		Short: "Convert a document to JSON, YAML or a graph script",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := a.load(args[0])
			if err != nil {
				return err
			}
			return write(cmd, g, format, output)
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "", "Output format: json, yaml or script (default from --output, else json)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write to a file instead of stdout")
	return cmd
}

// write encodes g to output, or stdout when output is empty.
func write(cmd *cobra.Command, g *graph.Graph, format, output string) error {
	f, err := outputFormat(format, output)
	if err != nil {
		return err
	}
	if output == "" {
		return docfile.Encode(cmd.OutOrStdout(), f, g)
	}

	out, err := os.Create(output)
	if err != nil {
		return err
	}
	if err := docfile.Encode(out, f, g); err != nil {
		out.Close()
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}
	cmd.PrintErrf("%s wrote %s (%s)\n", statusIcon(true), output, f)
	return nil
}

// outputFormat resolves the --format flag. An empty format follows the
// output file's extension and falls back to JSON for stdout.
func outputFormat(format, output string) (docfile.Format, error) {
	switch {
	case format != "":
		return docfile.ParseFormat(format)
	case output != "":
		return docfile.FormatOf(output)
	}
	return docfile.JSON, nil
}
