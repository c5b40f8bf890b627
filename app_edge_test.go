package main

import (
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/chazu/nodegraph/pkg/config"
	"github.com/chazu/nodegraph/pkg/tessellate"
)

// recordEmits installs a fake emitter and returns the collected payloads.
func recordEmits(app *App) *[]EventData {
	var got []EventData
	app.emit = func(name string, data any) {
		if name == GraphEventName {
			got = append(got, data.(EventData))
		}
	}
	return &got
}

func findNode(f *tessellate.Frame, id string) *tessellate.NodeItem {
	for i := range f.Nodes {
		if f.Nodes[i].ID == id {
			return &f.Nodes[i]
		}
	}
	return nil
}

// ---------------------------------------------------------------------------
// 1. Empty editor: empty string -> 0 nodes, 0 errors.
//    (TestE2EEmptySource already exists; this verifies additional invariants.)
// ---------------------------------------------------------------------------

func TestE2EEmptySourceExtended(t *testing.T) {
	app := NewApp(nil, nil)
	result := app.Evaluate("")

	if len(result.Errors) != 0 {
		t.Errorf("expected 0 errors for empty source, got %d", len(result.Errors))
	}
	if len(result.Warnings) != 0 {
		t.Errorf("expected 0 warnings for empty source, got %d", len(result.Warnings))
	}
	// Ensure slices are non-nil (JSON should serialize as [] not null).
	if result.Errors == nil {
		t.Error("Errors should be non-nil empty slice, got nil")
	}
	if result.Warnings == nil {
		t.Error("Warnings should be non-nil empty slice, got nil")
	}
	if result.Frame == nil {
		t.Error("Frame should be set even for an empty graph")
	}
}

// ---------------------------------------------------------------------------
// 2. Syntax error mid-expression: unmatched parens -> eval error.
// ---------------------------------------------------------------------------

func TestE2ESyntaxErrorWithLineInfo(t *testing.T) {
	app := NewApp(nil, nil)
	source := "(constant \"a\" 1)\n(node \"b\"\n"
	result := app.Evaluate(source)

	if len(result.Errors) == 0 {
		t.Fatal("expected errors for unclosed paren")
	}
	if result.Errors[0].Message == "" {
		t.Error("error message should not be empty")
	}
	// A failed script must not leave half a graph behind.
	if len(result.Frame.Nodes) != 0 {
		t.Errorf("expected 0 nodes on error, got %d", len(result.Frame.Nodes))
	}
}

// ---------------------------------------------------------------------------
// 3. Rejected structure: the graph's rules surface as eval errors.
// ---------------------------------------------------------------------------

func TestE2ERejectedConnection(t *testing.T) {
	app := NewApp(nil, nil)
	source := `
(constant "s" "text")
(math "m" :sqrt)
(connect "s.value" "m.input")
`
	result := app.Evaluate(source)
	if len(result.Errors) == 0 {
		t.Fatal("expected an error for a string feeding a number input")
	}
	if !strings.Contains(result.Errors[0].Message, "incompatible") {
		t.Errorf("expected a type mismatch, got %q", result.Errors[0].Message)
	}
}

func TestE2ERequiredInputWarning(t *testing.T) {
	app := NewApp(nil, nil)
	result := app.Evaluate(`(node "sink" (input "in" :kind :number :required true))`)

	if len(result.Errors) > 0 {
		t.Fatalf("unexpected errors: %v", result.Errors)
	}
	if len(result.Warnings) != 1 {
		t.Fatalf("expected 1 warning, got %d", len(result.Warnings))
	}
	if result.Warnings[0].NodeID != "sink" {
		t.Errorf("expected warning on sink, got %q", result.Warnings[0].NodeID)
	}
}

// ---------------------------------------------------------------------------
// 4. Rapid evaluation: no panics, no data races.
//    Run with `go test -race` to detect data races.
// ---------------------------------------------------------------------------

func TestE2ERapidEvaluationAlternating(t *testing.T) {
	// Alternates between valid and invalid sources rapidly.
	// Ensures the engine recovers cleanly between error and success states.
	app := NewApp(nil, nil)

	sources := []string{
		`(constant "ok" 1)`,
		`(node "broken"`,
		``,
		`(connect "missing.a" "missing.b")`,
		`(math "also-ok" :add)`,
		`(+ 1 2)`,
		`;; just a comment`,
		`(print-node "fine")`,
		`(undefined-func 1 2 3)`,
		`(constant "last" true)`,
	}

	for i, source := range sources {
		func() {
			defer func() {
				if r := recover(); r != nil {
					t.Errorf("iteration %d panicked on source %q: %v", i, source, r)
				}
			}()
			_ = app.Evaluate(source)
		}()
	}

	f := app.Frame()
	if len(f.Nodes) != 1 || f.Nodes[0].ID != "last" {
		t.Errorf("expected only the last graph to remain, got %d nodes", len(f.Nodes))
	}
}

func TestE2EConcurrentBindings(t *testing.T) {
	app := NewApp(nil, nil)
	app.LoadSample()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			x := float64(100 + i*10)
			app.PointerMove(x, 100, ModifierData{})
			app.Wheel(1, x, 100)
			app.Frame()
		}(i)
	}
	wg.Wait()

	// Zooming scrolls nodes out of the frame; the graph itself is intact.
	if got := len(app.Snapshot().Nodes); got != 6 {
		t.Errorf("expected 6 nodes, got %d", got)
	}
}

// ---------------------------------------------------------------------------
// 5. Pointer bindings drive the interaction controller.
// ---------------------------------------------------------------------------

func TestE2EDragNodeThroughBindings(t *testing.T) {
	app := NewApp(nil, nil)
	app.Evaluate(`(constant "c" 1 :at (vec 0 0))`)
	app.mu.Lock()
	app.editor.ResetView()
	app.mu.Unlock()

	// Press inside the header, away from sockets.
	app.PointerDown(20, 10, 0, ModifierData{})
	app.PointerMove(60, 50, ModifierData{})
	f := app.PointerUp(60, 50, 0, ModifierData{})

	n := findNode(f, "c")
	if n == nil {
		t.Fatal("node c missing from frame")
	}
	if n.Rect.Min.X != 40 || n.Rect.Min.Y != 40 {
		t.Errorf("expected node at (40,40), got %v", n.Rect.Min)
	}
	if !n.Selected {
		t.Error("dragged node should be selected")
	}
}

func TestE2ERubberBandFrame(t *testing.T) {
	app := NewApp(nil, nil)
	app.Evaluate(`(constant "c" 1 :at (vec 0 0))`)
	app.mu.Lock()
	app.editor.ResetView()
	app.mu.Unlock()

	app.PointerDown(500, 500, 0, ModifierData{})
	f := app.PointerMove(-10, -10, ModifierData{})
	if f.RubberBand == nil {
		t.Fatal("expected a rubber band while selecting")
	}
	f = app.PointerUp(-10, -10, 0, ModifierData{})
	if f.RubberBand != nil {
		t.Error("rubber band should clear on release")
	}
	if n := findNode(f, "c"); n == nil || !n.Selected {
		t.Error("band should select the enclosed node")
	}
}

func TestE2EKeysAndEvents(t *testing.T) {
	app := NewApp(nil, nil)
	app.LoadSample()
	got := recordEmits(app)

	res := app.KeyDown("a", ModifierData{Ctrl: true})
	if !res.Handled {
		t.Fatal("ctrl+a should be handled")
	}
	selected := 0
	for _, e := range *got {
		if e.Kind == "node-selected" {
			selected++
		}
	}
	if selected != 6 {
		t.Errorf("expected 6 node-selected events, got %d", selected)
	}

	res = app.KeyDown("Delete", ModifierData{})
	if !res.Handled {
		t.Fatal("delete should be handled")
	}
	if len(res.Frame.Nodes) != 0 {
		t.Errorf("expected empty graph after delete, got %d nodes", len(res.Frame.Nodes))
	}

	if app.KeyDown("q", ModifierData{}).Handled {
		t.Error("unbound key should not be handled")
	}
}

func TestE2EContextRequest(t *testing.T) {
	app := NewApp(nil, nil)
	app.Evaluate(`(constant "c" 1 :at (vec 0 0))`)
	app.mu.Lock()
	app.editor.ResetView()
	app.mu.Unlock()
	got := recordEmits(app)

	app.PointerDown(20, 30, 2, ModifierData{})
	if len(*got) != 1 {
		t.Fatalf("expected 1 event, got %d", len(*got))
	}
	ev := (*got)[0]
	if ev.Kind != "context-requested" || ev.Target != "node" || ev.NodeID != "c" {
		t.Errorf("unexpected context event %+v", ev)
	}
}

func TestE2EBlurCancelsGesture(t *testing.T) {
	app := NewApp(nil, nil)
	app.Evaluate(`(constant "c" 1 :at (vec 0 0))`)
	app.mu.Lock()
	app.editor.ResetView()
	app.mu.Unlock()

	app.PointerDown(20, 10, 0, ModifierData{})
	app.PointerMove(200, 200, ModifierData{})
	f := app.Blur()
	if n := findNode(f, "c"); n.Rect.Min.X != 0 || n.Rect.Min.Y != 0 {
		t.Errorf("expected node restored to origin, got %v", n.Rect.Min)
	}
}

// ---------------------------------------------------------------------------
// 6. Catalog, documents and configuration.
// ---------------------------------------------------------------------------

func TestE2EAddFromTemplate(t *testing.T) {
	app := NewApp(nil, nil)
	if len(app.Catalog()) == 0 {
		t.Fatal("catalog should not be empty")
	}

	if _, err := app.AddFromTemplate("math.add", 100, 100); err != nil {
		t.Fatalf("add: %v", err)
	}
	f, err := app.AddFromTemplate("math.add", 300, 100)
	if err != nil {
		t.Fatalf("second add: %v", err)
	}
	if findNode(f, "math_add") == nil || findNode(f, "math_add_1") == nil {
		t.Errorf("expected math_add and math_add_1 in frame")
	}
	if n := findNode(f, "math_add_1"); n == nil || !n.Selected {
		t.Error("new node should be the selection")
	}

	if _, err := app.AddFromTemplate("math.pow", 0, 0); err == nil {
		t.Error("expected an error for an unknown template")
	}
}

func TestE2ESaveAndOpen(t *testing.T) {
	dir := t.TempDir()
	app := NewApp(nil, nil)
	app.LoadSample()

	for _, name := range []string{"graph.json", "graph.yaml", "graph.ngl"} {
		path := filepath.Join(dir, name)
		if err := app.Save(path); err != nil {
			t.Fatalf("save %s: %v", name, err)
		}

		other := NewApp(nil, nil)
		res := other.Open(path)
		if len(res.Errors) > 0 {
			t.Fatalf("open %s: %v", name, res.Errors)
		}
		if len(res.Frame.Nodes) != 6 || len(res.Frame.Connections) != 4 {
			t.Errorf("%s: expected 6 nodes and 4 connections, got %d/%d",
				name, len(res.Frame.Nodes), len(res.Frame.Connections))
		}
	}

	res := app.Open(filepath.Join(dir, "missing.json"))
	if len(res.Errors) == 0 {
		t.Error("expected an error for a missing document")
	}
	if len(res.Frame.Nodes) != 6 {
		t.Error("a failed open must keep the current graph")
	}
}

func TestE2EConfigApplied(t *testing.T) {
	cfg := config.Default()
	cfg.Behavior.ZoomEnabled = false
	cfg.Viewport.Width, cfg.Viewport.Height = 640, 480
	app := NewApp(cfg, nil)

	f := app.Wheel(3, 10, 10)
	if f.View.Zoom != 1 {
		t.Errorf("zoom disabled, expected 1, got %g", f.View.Zoom)
	}
	if f.View.Size.X != 640 || f.View.Size.Y != 480 {
		t.Errorf("expected 640x480 canvas, got %v", f.View.Size)
	}

	f = app.Resize(1024, 768)
	if f.View.Size.X != 1024 {
		t.Errorf("expected resized canvas, got %v", f.View.Size)
	}
}
