// Package cull computes the subset of a graph that needs drawing for the
// current viewport, within a fixed element budget.
package cull

import (
	"log/slog"

	"github.com/chazu/nodegraph/pkg/geom"
	"github.com/chazu/nodegraph/pkg/graph"
	"github.com/chazu/nodegraph/pkg/viewport"
)

// Config bounds the visible set.
type Config struct {
	MaxNodes        int     `toml:"max_visible_nodes"`       // <= 0 means unlimited
	MaxConnections  int     `toml:"max_visible_connections"` // <= 0 means unlimited
	Padding         float64 `toml:"padding"`                 // screen pixels around the view
	CullNodes       bool    `toml:"cull_nodes"`
	CullConnections bool    `toml:"cull_connections"`
}

// DefaultConfig returns the stock budget.
func DefaultConfig() Config {
	return Config{
		MaxNodes:        500,
		MaxConnections:  1000,
		Padding:         100,
		CullNodes:       true,
		CullConnections: true,
	}
}

// Result is one computed visible set. It is immutable once returned.
type Result struct {
	WorldRect   geom.Rect
	Nodes       []*graph.Node // back to front
	Connections []*graph.Connection
	Truncated   bool // some candidates were dropped by the budget

	nodeSet map[graph.NodeID]struct{}
	connSet map[graph.ConnectionID]struct{}
}

// HasNode reports whether the node is in the visible set.
func (r *Result) HasNode(id graph.NodeID) bool {
	_, ok := r.nodeSet[id]
	return ok
}

// HasConnection reports whether the connection is in the visible set.
func (r *Result) HasConnection(id graph.ConnectionID) bool {
	_, ok := r.connSet[id]
	return ok
}

type cacheKey struct {
	g        *graph.Graph
	vp       *viewport.Viewport
	grev     uint64
	vrev     uint64
	computed bool
}

// Culler caches the last visible set and recomputes it from scratch
// whenever the graph or viewport revision changes.
type Culler struct {
	cfg  Config
	log  *slog.Logger
	key  cacheKey
	last *Result
}

// New returns a culler. A nil logger discards.
func New(cfg Config, log *slog.Logger) *Culler {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Culler{cfg: cfg, log: log}
}

// Config returns the active budget.
func (c *Culler) Config() Config { return c.cfg }

// SetConfig replaces the budget and drops the cached result.
func (c *Culler) SetConfig(cfg Config) {
	c.cfg = cfg
	c.Invalidate()
}

// Invalidate forces the next Compute to recompute.
func (c *Culler) Invalidate() {
	c.key = cacheKey{}
	c.last = nil
}

// Compute returns the visible set for g seen through vp.
func (c *Culler) Compute(g *graph.Graph, vp *viewport.Viewport) *Result {
	key := cacheKey{g: g, vp: vp, grev: g.Revision(), vrev: vp.Revision(), computed: true}
	if c.last != nil && key == c.key {
		return c.last
	}
	c.last = Compute(g, vp, c.cfg)
	c.key = key
	if c.last.Truncated {
		c.log.Debug("visible set truncated",
			"nodes", len(c.last.Nodes), "connections", len(c.last.Connections),
			"max_nodes", c.cfg.MaxNodes, "max_connections", c.cfg.MaxConnections)
	}
	return c.last
}

// Compute builds a visible set without caching.
func Compute(g *graph.Graph, vp *viewport.Viewport, cfg Config) *Result {
	res := &Result{
		WorldRect: vp.VisibleWorldRect(cfg.Padding),
		nodeSet:   make(map[graph.NodeID]struct{}),
		connSet:   make(map[graph.ConnectionID]struct{}),
	}

	for _, n := range g.Nodes() {
		if cfg.CullNodes && !n.Rect().Intersects(res.WorldRect) {
			continue
		}
		if cfg.MaxNodes > 0 && len(res.Nodes) >= cfg.MaxNodes {
			res.Truncated = true
			break
		}
		res.Nodes = append(res.Nodes, n)
		res.nodeSet[n.ID] = struct{}{}
	}

	for _, conn := range g.Connections() {
		if cfg.CullConnections && !res.HasNode(conn.Start.Node) && !res.HasNode(conn.End.Node) {
			continue
		}
		if cfg.MaxConnections > 0 && len(res.Connections) >= cfg.MaxConnections {
			res.Truncated = true
			break
		}
		res.Connections = append(res.Connections, conn)
		res.connSet[conn.ID] = struct{}{}
	}
	return res
}
