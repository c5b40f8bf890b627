// Package config loads editor settings from TOML.
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/chazu/nodegraph/pkg/cull"
	"github.com/chazu/nodegraph/pkg/editor"
	"github.com/chazu/nodegraph/pkg/geom"
	"github.com/chazu/nodegraph/pkg/graph"
	"github.com/chazu/nodegraph/pkg/tessellate"
	"github.com/chazu/nodegraph/pkg/viewport"
)

// Config holds nodegraph configuration.
type Config struct {
	Layout      graph.Layout           `toml:"layout"`
	Viewport    ViewportConfig         `toml:"viewport"`
	Interaction InteractionConfig      `toml:"interaction"`
	Behavior    BehaviorConfig         `toml:"behavior"`
	Policy      graph.Policy           `toml:"policy"`
	Curve       tessellate.CurveParams `toml:"curve"`
	Cull        cull.Config            `toml:"cull"`
	Log         LogConfig              `toml:"log"`
}

// ViewportConfig controls the initial canvas and zoom limits.
type ViewportConfig struct {
	Width     float64 `toml:"width"`
	Height    float64 `toml:"height"`
	MinZoom   float64 `toml:"min_zoom"`
	MaxZoom   float64 `toml:"max_zoom"`
	ZoomSpeed float64 `toml:"zoom_speed"`
}

// InteractionConfig controls pointer tolerances and the grid.
type InteractionConfig struct {
	SocketTolerance     float64  `toml:"socket_tolerance"`
	ConnectionTolerance float64  `toml:"connection_tolerance"`
	DragThreshold       float64  `toml:"drag_threshold"`
	MultiSelect         []string `toml:"multi_select"` // "shift", "ctrl", "alt", "meta"
	GridSize            float64  `toml:"grid_size"`
	ShowGrid            bool     `toml:"show_grid"`
	SnapToGrid          bool     `toml:"snap_to_grid"`
	FramePadding        float64  `toml:"frame_padding"`
	PasteOffset         float64  `toml:"paste_offset"`
}

// BehaviorConfig toggles editor features.
type BehaviorConfig struct {
	AllowMultipleSelection bool `toml:"allow_multiple_selection"`
	RectangleSelection     bool `toml:"rectangle_selection"`
	ZoomEnabled            bool `toml:"zoom_enabled"`
	PanEnabled             bool `toml:"pan_enabled"`
	RestrictHitsToVisible  bool `toml:"restrict_hits_to_visible"`
}

// LogConfig controls diagnostics output.
type LogConfig struct {
	Level  string `toml:"level"`  // "debug", "info", "warn", "error"
	Format string `toml:"format"` // "text", "json"
}

// Default returns the default configuration.
func Default() *Config {
	ed := editor.DefaultConfig()
	return &Config{
		Layout: graph.DefaultLayout(),
		Viewport: ViewportConfig{
			Width:     1200,
			Height:    800,
			MinZoom:   viewport.DefaultMinZoom,
			MaxZoom:   viewport.DefaultMaxZoom,
			ZoomSpeed: viewport.DefaultZoomSpeed,
		},
		Interaction: InteractionConfig{
			SocketTolerance:     ed.SocketTolerance,
			ConnectionTolerance: ed.ConnectionTolerance,
			DragThreshold:       ed.DragThreshold,
			MultiSelect:         []string{"ctrl", "shift"},
			GridSize:            ed.GridSize,
			ShowGrid:            ed.ShowGrid,
			SnapToGrid:          ed.SnapToGrid,
			FramePadding:        ed.FramePadding,
			PasteOffset:         ed.PasteOffset.X,
		},
		Behavior: BehaviorConfig{
			AllowMultipleSelection: ed.AllowMultipleSelection,
			RectangleSelection:     ed.RectangleSelection,
			ZoomEnabled:            ed.ZoomEnabled,
			PanEnabled:             ed.PanEnabled,
			RestrictHitsToVisible:  ed.RestrictHitsToVisible,
		},
		Policy: graph.DefaultPolicy(),
		Curve:  tessellate.DefaultCurveParams(),
		Cull:   cull.DefaultConfig(),
		Log:    LogConfig{Level: "info", Format: "text"},
	}
}

// Dir returns the nodegraph config directory path.
func Dir() string {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, _ := os.UserHomeDir()
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "nodegraph")
}

// Path returns the default config file path.
func Path() string {
	return filepath.Join(Dir(), "config.toml")
}

// Load reads path over the defaults. A missing file is not an error. Keys
// the file leaves out keep their default values.
func Load(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	md, err := toml.Decode(string(data), cfg)
	if err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if undec := md.Undecoded(); len(undec) > 0 {
		keys := make([]string, len(undec))
		for i, k := range undec {
			keys[i] = k.String()
		}
		return nil, fmt.Errorf("parse config %s: unknown keys %s", path, strings.Join(keys, ", "))
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes the config to path, creating parent directories.
func Save(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	return toml.NewEncoder(f).Encode(cfg)
}

// Validate reports every out-of-range setting.
func (c *Config) Validate() error {
	var errs []error
	check := func(ok bool, format string, args ...any) {
		if !ok {
			errs = append(errs, fmt.Errorf(format, args...))
		}
	}
	check(c.Layout.SocketRadius > 0, "layout.socket_radius must be positive")
	check(c.Layout.SocketSpacing > 0, "layout.socket_spacing must be positive")
	check(c.Layout.HeaderHeight >= 0, "layout.header_height must not be negative")
	check(c.Viewport.Width >= 1 && c.Viewport.Height >= 1, "viewport size must be at least 1x1")
	check(c.Viewport.MinZoom > 0, "viewport.min_zoom must be positive")
	check(c.Viewport.MaxZoom >= c.Viewport.MinZoom, "viewport.max_zoom %g is below min_zoom %g", c.Viewport.MaxZoom, c.Viewport.MinZoom)
	check(c.Viewport.ZoomSpeed > 0, "viewport.zoom_speed must be positive")
	check(c.Interaction.SocketTolerance > c.Layout.SocketRadius,
		"interaction.socket_tolerance %g must exceed layout.socket_radius %g", c.Interaction.SocketTolerance, c.Layout.SocketRadius)
	check(c.Interaction.ConnectionTolerance > 0, "interaction.connection_tolerance must be positive")
	check(c.Interaction.DragThreshold >= 0, "interaction.drag_threshold must not be negative")
	check(c.Interaction.GridSize > 0, "interaction.grid_size must be positive")
	check(c.Curve.Segments >= 1, "curve.bezier_segments must be at least 1")
	check(c.Curve.MinOffset >= 0 && c.Curve.OffsetRatio >= 0, "curve offsets must not be negative")
	check(c.Cull.Padding >= 0, "cull.padding must not be negative")
	if _, err := ParseModifiers(c.Interaction.MultiSelect); err != nil {
		errs = append(errs, err)
	}
	if _, err := ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, err)
	}
	check(c.Log.Format == "text" || c.Log.Format == "json", "log.format %q must be text or json", c.Log.Format)
	return errors.Join(errs...)
}

// Editor returns the interaction settings. It assumes c is valid.
func (c *Config) Editor() editor.Config {
	mods, _ := ParseModifiers(c.Interaction.MultiSelect)
	off := geom.V(c.Interaction.PasteOffset, c.Interaction.PasteOffset)
	return editor.Config{
		SocketTolerance:        c.Interaction.SocketTolerance,
		ConnectionTolerance:    c.Interaction.ConnectionTolerance,
		DragThreshold:          c.Interaction.DragThreshold,
		MultiSelect:            mods,
		GridSize:               c.Interaction.GridSize,
		ShowGrid:               c.Interaction.ShowGrid,
		SnapToGrid:             c.Interaction.SnapToGrid,
		FramePadding:           c.Interaction.FramePadding,
		PasteOffset:            off,
		DuplicateOffset:        off,
		AllowMultipleSelection: c.Behavior.AllowMultipleSelection,
		RectangleSelection:     c.Behavior.RectangleSelection,
		ZoomEnabled:            c.Behavior.ZoomEnabled,
		PanEnabled:             c.Behavior.PanEnabled,
		RestrictHitsToVisible:  c.Behavior.RestrictHitsToVisible,
		Curve:                  c.Curve,
		Cull:                   c.Cull,
	}
}

// GraphOptions returns the graph settings.
func (c *Config) GraphOptions() []graph.Option {
	return []graph.Option{graph.WithPolicy(c.Policy), graph.WithLayout(c.Layout)}
}

// NewViewport returns a viewport sized and bounded per c.
func (c *Config) NewViewport() *viewport.Viewport {
	return viewport.New(c.Viewport.Width, c.Viewport.Height,
		viewport.WithZoomRange(c.Viewport.MinZoom, c.Viewport.MaxZoom),
		viewport.WithZoomSpeed(c.Viewport.ZoomSpeed))
}

// Logger returns a logger writing to w at the configured level and format.
func (c *Config) Logger(w io.Writer) *slog.Logger {
	level, err := ParseLevel(c.Log.Level)
	if err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if c.Log.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// ParseLevel maps a level name to a slog level.
func ParseLevel(s string) (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("log.level %q: %w", s, err)
	}
	return l, nil
}

// ParseModifiers maps modifier names to an editor modifier set.
func ParseModifiers(names []string) (editor.Modifiers, error) {
	var m editor.Modifiers
	for _, n := range names {
		switch strings.ToLower(n) {
		case "shift":
			m |= editor.ModShift
		case "ctrl", "control":
			m |= editor.ModCtrl
		case "alt", "option":
			m |= editor.ModAlt
		case "meta", "cmd", "super":
			m |= editor.ModMeta
		default:
			return 0, fmt.Errorf("interaction.multi_select: unknown modifier %q", n)
		}
	}
	return m, nil
}
