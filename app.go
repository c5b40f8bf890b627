package main

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/wailsapp/wails/v2/pkg/runtime"

	"github.com/chazu/nodegraph/pkg/config"
	"github.com/chazu/nodegraph/pkg/docfile"
	"github.com/chazu/nodegraph/pkg/editor"
	"github.com/chazu/nodegraph/pkg/engine"
	"github.com/chazu/nodegraph/pkg/event"
	"github.com/chazu/nodegraph/pkg/geom"
	"github.com/chazu/nodegraph/pkg/graph"
	"github.com/chazu/nodegraph/pkg/nodes"
	"github.com/chazu/nodegraph/pkg/tessellate"
)

// GraphEventName is the Wails event carrying editor notifications.
const GraphEventName = "graph:event"

// App is the Wails backend. It exposes methods to the frontend via bindings.
// Bindings may be called concurrently; mu serialises access to the editor.
type App struct {
	ctx    context.Context
	mu     sync.Mutex
	cfg    *config.Config
	log    *slog.Logger
	engine *engine.Engine
	editor *editor.Editor

	// emit forwards an event to the frontend. Nil until startup.
	emit func(name string, data any)
}

// ModifierData is the held-modifier state sent by the frontend.
type ModifierData struct {
	Shift bool `json:"shift"`
	Ctrl  bool `json:"ctrl"`
	Alt   bool `json:"alt"`
	Meta  bool `json:"meta"`
}

func (m ModifierData) mods() editor.Modifiers {
	var out editor.Modifiers
	if m.Shift {
		out |= editor.ModShift
	}
	if m.Ctrl {
		out |= editor.ModCtrl
	}
	if m.Alt {
		out |= editor.ModAlt
	}
	if m.Meta {
		out |= editor.ModMeta
	}
	return out
}

// EvalErrorData is a JSON-serializable eval error or warning for the
// frontend.
type EvalErrorData struct {
	Line    int    `json:"line"`
	Col     int    `json:"col"`
	Message string `json:"message"`
	NodeID  string `json:"nodeId,omitempty"`
}

// EvalResult is the full result returned to the frontend after loading a
// document.
type EvalResult struct {
	Frame    *tessellate.Frame `json:"frame"`
	Errors   []EvalErrorData   `json:"errors"`
	Warnings []EvalErrorData   `json:"warnings"`
}

// KeyResult reports whether the editor consumed a key.
type KeyResult struct {
	Handled bool              `json:"handled"`
	Frame   *tessellate.Frame `json:"frame"`
}

// EventData is a notification as the frontend sees it.
type EventData struct {
	Kind         string   `json:"kind"`
	NodeID       string   `json:"nodeId,omitempty"`
	ConnectionID string   `json:"connectionId,omitempty"`
	Position     geom.Vec `json:"position"`
	Screen       geom.Vec `json:"screen"`
	Change       string   `json:"change,omitempty"`
	Target       string   `json:"target,omitempty"`
}

func eventData(ev event.Event) EventData {
	d := EventData{
		Kind:         ev.Kind.String(),
		NodeID:       ev.NodeID,
		ConnectionID: ev.ConnectionID,
		Position:     ev.Position,
		Screen:       ev.Screen,
	}
	switch ev.Kind {
	case event.GraphChanged:
		d.Change = ev.Change.String()
	case event.ContextRequested:
		d.Target = ev.Target.String()
	}
	return d
}

// TemplateData describes a catalog entry.
type TemplateData struct {
	Name        string `json:"name"`
	Category    string `json:"category"`
	Description string `json:"description"`
}

// NewApp creates an App over an empty graph. A nil cfg uses the defaults.
func NewApp(cfg *config.Config, logger *slog.Logger) *App {
	if cfg == nil {
		cfg = config.Default()
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	g := graph.New(append(cfg.GraphOptions(), graph.WithLogger(logger))...)
	a := &App{
		cfg: cfg,
		log: logger,
		engine: engine.NewEngine(
			engine.WithGraphOptions(cfg.GraphOptions()...),
			engine.WithLogger(logger),
		),
		editor: editor.New(g, cfg.NewViewport(),
			editor.WithConfig(cfg.Editor()),
			editor.WithLogger(logger),
		),
	}
	a.editor.Subscribe(a.forward)
	return a
}

// startup is called by Wails on app startup. The context is saved
// so we can call Wails runtime methods later.
func (a *App) startup(ctx context.Context) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.ctx = ctx
	a.emit = func(name string, data any) { runtime.EventsEmit(ctx, name, data) }
}

func (a *App) forward(ev event.Event) {
	if a.emit != nil {
		a.emit(GraphEventName, eventData(ev))
	}
}

// Evaluate takes graph script source, replaces the current graph with the
// result and frames it. This is the primary binding called by the
// frontend's script panel.
func (a *App) Evaluate(source string) EvalResult {
	res, err := a.engine.EvaluateResult(source)

	a.mu.Lock()
	defer a.mu.Unlock()

	result := EvalResult{
		Errors:   []EvalErrorData{},
		Warnings: []EvalErrorData{},
	}
	if err != nil {
		// Fatal error (panic, timeout, superseded).
		a.log.Error("evaluate failed", "err", err)
		result.Errors = append(result.Errors, EvalErrorData{Message: err.Error()})
		result.Frame = a.editor.Frame()
		return result
	}
	for _, e := range res.Errors {
		result.Errors = append(result.Errors, EvalErrorData{Line: e.Line, Col: e.Col, Message: e.Message})
	}
	if len(res.Errors) > 0 {
		result.Frame = a.editor.Frame()
		return result
	}
	for _, w := range res.Warnings {
		result.Warnings = append(result.Warnings, EvalErrorData{Message: w.Message, NodeID: string(w.NodeID)})
	}
	if err := a.replace(res.Graph); err != nil {
		result.Errors = append(result.Errors, EvalErrorData{Message: err.Error()})
	}
	result.Frame = a.editor.Frame()
	return result
}

// replace swaps the editor's graph contents for g and frames everything.
// Callers hold mu.
func (a *App) replace(g *graph.Graph) error {
	a.editor.Cancel()
	if err := a.editor.Graph().Load(g.Snapshot()); err != nil {
		return fmt.Errorf("load graph: %w", err)
	}
	a.editor.FrameAll()
	return nil
}

// LoadSample replaces the graph with the demonstration graph.
func (a *App) LoadSample() *tessellate.Frame {
	a.mu.Lock()
	defer a.mu.Unlock()
	if err := a.replace(nodes.Sample(a.cfg.GraphOptions()...)); err != nil {
		a.log.Error("load sample", "err", err)
	}
	return a.editor.Frame()
}

// Open loads a document from disk.
func (a *App) Open(path string) EvalResult {
	result := EvalResult{Errors: []EvalErrorData{}, Warnings: []EvalErrorData{}}
	g, err := docfile.Load(path, a.cfg.GraphOptions()...)

	a.mu.Lock()
	defer a.mu.Unlock()
	if err == nil {
		err = a.replace(g)
	}
	if err != nil {
		a.log.Warn("open document", "path", path, "err", err)
		result.Errors = append(result.Errors, EvalErrorData{Message: err.Error()})
	} else {
		for _, w := range graph.ValidateAll(a.editor.Graph()).Warnings {
			result.Warnings = append(result.Warnings, EvalErrorData{Message: w.Message, NodeID: string(w.NodeID)})
		}
	}
	result.Frame = a.editor.Frame()
	return result
}

// Save writes the current graph to path.
func (a *App) Save(path string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return docfile.Save(path, a.editor.Graph())
}

// Snapshot returns the graph's structural document.
func (a *App) Snapshot() *graph.Document {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.editor.Graph().Snapshot()
}

// Catalog lists the node templates the frontend can offer.
func (a *App) Catalog() []TemplateData {
	var out []TemplateData
	for _, t := range nodes.Catalog() {
		out = append(out, TemplateData{Name: t.Name, Category: t.Category, Description: t.Description})
	}
	return out
}

// AddFromTemplate creates a node from the named template with its top-left
// corner at screen point (x, y).
func (a *App) AddFromTemplate(name string, x, y float64) (*tessellate.Frame, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	g := a.editor.Graph()
	base := strings.ReplaceAll(name, ".", "_")
	id := graph.NodeID(base)
	for i := 1; g.Node(id) != nil; i++ {
		id = graph.NodeID(fmt.Sprintf("%s_%d", base, i))
	}
	n, err := nodes.Create(name, id)
	if err != nil {
		return nil, err
	}
	n.Position = a.editor.ScreenToWorld(geom.V(x, y))
	if cfg := a.editor.Config(); cfg.SnapToGrid {
		n.Position = geom.Snap(n.Position, cfg.GridSize)
	}
	a.editor.AddNode(n)
	a.editor.SelectNode(id, false)
	return a.editor.Frame(), nil
}

// PointerDown forwards a press. button follows the DOM numbering: 0 left,
// 1 middle, 2 right.
func (a *App) PointerDown(x, y float64, button int, mods ModifierData) *tessellate.Frame {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.editor.PointerDown(editor.PointerEvent{Pos: geom.V(x, y), Button: editor.Button(button), Mods: mods.mods()})
	return a.editor.Frame()
}

// PointerMove forwards pointer motion.
func (a *App) PointerMove(x, y float64, mods ModifierData) *tessellate.Frame {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.editor.PointerMove(editor.PointerEvent{Pos: geom.V(x, y), Mods: mods.mods()})
	return a.editor.Frame()
}

// PointerUp forwards a release.
func (a *App) PointerUp(x, y float64, button int, mods ModifierData) *tessellate.Frame {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.editor.PointerUp(editor.PointerEvent{Pos: geom.V(x, y), Button: editor.Button(button), Mods: mods.mods()})
	return a.editor.Frame()
}

// Wheel zooms by steps notches about screen point (x, y). Positive steps
// zoom in.
func (a *App) Wheel(steps, x, y float64) *tessellate.Frame {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.editor.Wheel(steps, geom.V(x, y))
	return a.editor.Frame()
}

// KeyDown forwards a key press using DOM key names.
func (a *App) KeyDown(key string, mods ModifierData) KeyResult {
	a.mu.Lock()
	defer a.mu.Unlock()
	handled := a.editor.KeyDown(editor.ParseKey(key), mods.mods())
	return KeyResult{Handled: handled, Frame: a.editor.Frame()}
}

// Blur tells the editor the canvas lost focus.
func (a *App) Blur() *tessellate.Frame {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.editor.FocusLost()
	return a.editor.Frame()
}

// Resize sets the canvas size in pixels.
func (a *App) Resize(width, height float64) *tessellate.Frame {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.editor.SetSize(width, height)
	return a.editor.Frame()
}

// Frame returns the current draw lists.
func (a *App) Frame() *tessellate.Frame {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.editor.Frame()
}
