package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/chazu/nodegraph/pkg/geom"
	"github.com/chazu/nodegraph/pkg/hittest"
)

func (a *app) hitCmd() *cobra.Command {
	var zoom, panX, panY float64

	cmd := &cobra.Command{
		Use:   "hit FILE X Y",
		Short: "Report what a click at screen point (X, Y) would pick",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			x, err := strconv.ParseFloat(args[1], 64)
			if err != nil {
				return fmt.Errorf("x: %w", err)
			}
			y, err := strconv.ParseFloat(args[2], 64)
			if err != nil {
				return fmt.Errorf("y: %w", err)
			}
			g, err := a.load(args[0])
			if err != nil {
				return err
			}

			vp := a.cfg.NewViewport()
			vp.SetZoom(zoom)
			vp.SetPan(geom.V(panX, panY))

			screen := geom.V(x, y)
			h := hittest.New(g, vp, a.cfg.Curve).Pick(screen,
				a.cfg.Interaction.SocketTolerance, a.cfg.Interaction.ConnectionTolerance)

			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "  Screen: %s\n", vec(screen.X, screen.Y))
			fmt.Fprintf(w, "  World:  %s\n", vec(h.World.X, h.World.Y))
			switch h.Kind {
			case hittest.Socket:
				fmt.Fprintf(w, "  Hit:    %s %s\n", Brand.Sprint("socket"), h.Socket)
			case hittest.Connection:
				fmt.Fprintf(w, "  Hit:    %s %s\n", Brand.Sprint("connection"), h.Connection)
			case hittest.Node:
				fmt.Fprintf(w, "  Hit:    %s %s\n", Brand.Sprint("node"), h.Node)
			default:
				fmt.Fprintf(w, "  Hit:    %s\n", Subtle.Sprint("none"))
			}
			return nil
		},
	}

	cmd.Flags().Float64Var(&zoom, "zoom", 1, "Viewport zoom")
	cmd.Flags().Float64Var(&panX, "pan-x", 0, "Viewport pan, x")
	cmd.Flags().Float64Var(&panY, "pan-y", 0, "Viewport pan, y")
	return cmd
}
