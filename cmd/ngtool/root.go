package main

import (
	"github.com/spf13/cobra"

	"github.com/chazu/nodegraph/pkg/config"
	"github.com/chazu/nodegraph/pkg/docfile"
	"github.com/chazu/nodegraph/pkg/graph"
)

var version = "0.1.0"

// app carries state shared by every subcommand.
type app struct {
	configPath string
	cfg        *config.Config
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:           "ngtool",
		Short:         "Node graph document tool",
		Long:          Brand.Sprint("ngtool") + ": validate, inspect and convert node graph documents",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			path := a.configPath
			if path == "" {
				path = config.Path()
			}
			cfg, err := config.Load(path)
			if err != nil {
				return err
			}
			a.cfg = cfg
			return nil
		},
	}
	root.SetVersionTemplate("ngtool {{ .Version }}\n")
	root.PersistentFlags().StringVar(&a.configPath, "config", "", "Config file (default "+config.Path()+")")

	root.AddCommand(
		a.validateCmd(),
		a.inspectCmd(),
		a.exportCmd(),
		a.hitCmd(),
		a.sampleCmd(),
		a.catalogCmd(),
	)
	return root
}

func (a *app) load(path string) (*graph.Graph, error) {
	return docfile.Load(path, a.cfg.GraphOptions()...)
}
