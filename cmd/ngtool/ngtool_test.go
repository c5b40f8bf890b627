package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"

	"github.com/chazu/nodegraph/pkg/graph"
)

func TestMain(m *testing.M) {
	color.NoColor = true
	os.Exit(m.Run())
}

// run executes ngtool with an isolated, missing config file so defaults
// apply.
func run(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	var out, errOut bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(append([]string{"--config", filepath.Join(t.TempDir(), "config.toml")}, args...))
	err = root.Execute()
	return out.String(), errOut.String(), err
}

func writeSample(t *testing.T, name string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if _, _, err := run(t, "sample", "-o", path); err != nil {
		t.Fatalf("sample: %v", err)
	}
	return path
}

func TestSampleDefaultsToScript(t *testing.T) {
	out, _, err := run(t, "sample")
	if err != nil {
		t.Fatalf("sample: %v", err)
	}
	if !strings.Contains(out, `(node "math1"`) {
		t.Errorf("expected a graph script, got:\n%s", out)
	}
	if !strings.Contains(out, `(connect (socket "const1" "value") (socket "math1" "a")`) {
		t.Errorf("expected conn1 in script, got:\n%s", out)
	}
}

func TestValidate(t *testing.T) {
	for _, name := range []string{"g.ngl", "g.json", "g.yaml"} {
		path := writeSample(t, name)
		out, _, err := run(t, "validate", path)
		if err != nil {
			t.Fatalf("validate %s: %v\n%s", name, err, out)
		}
		if !strings.Contains(out, "✓") || !strings.Contains(out, "(6 nodes, 4 connections)") {
			t.Errorf("unexpected output for %s:\n%s", name, out)
		}
	}
}

func TestValidateStrictWarnings(t *testing.T) {
	path := filepath.Join(t.TempDir(), "warn.ngl")
	src := `(node "sink" (input "in" :kind :number :required true))`
	if err := os.WriteFile(path, []byte(src), 0o644); err != nil {
		t.Fatal(err)
	}

	out, _, err := run(t, "validate", path)
	if err != nil {
		t.Fatalf("warnings alone should pass: %v", err)
	}
	if !strings.Contains(out, "warning: node sink:") {
		t.Errorf("expected a warning line, got:\n%s", out)
	}

	if _, _, err := run(t, "validate", "--strict", path); err == nil {
		t.Error("expected --strict to fail on warnings")
	}
}

func TestValidateBrokenDocument(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.json")
	if err := os.WriteFile(path, []byte(`{"nodes": [`), 0o644); err != nil {
		t.Fatal(err)
	}
	good := writeSample(t, "good.json")

	out, _, err := run(t, "validate", good, path)
	if err == nil {
		t.Fatal("expected failure")
	}
	if !strings.Contains(err.Error(), "1 of 2 documents failed") {
		t.Errorf("unexpected error: %v", err)
	}
	if !strings.Contains(out, "✗") {
		t.Errorf("expected a failure icon, got:\n%s", out)
	}
}

func TestInspect(t *testing.T) {
	path := writeSample(t, "g.ngl")
	out, _, err := run(t, "inspect", path)
	if err != nil {
		t.Fatalf("inspect: %v", err)
	}
	for _, want := range []string{"math1", "Math (Add)", "(250, 150)", "const1.value", "math1.a", "Bounds: (50, 100) – (750, 310)"} {
		if !strings.Contains(out, want) {
			t.Errorf("inspect output missing %q:\n%s", want, out)
		}
	}
}

func TestExport(t *testing.T) {
	path := writeSample(t, "g.ngl")

	out, _, err := run(t, "export", path)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	var doc graph.Document
	if err := json.Unmarshal([]byte(out), &doc); err != nil {
		t.Fatalf("default export should be JSON: %v", err)
	}
	if len(doc.Nodes) != 6 || len(doc.Connections) != 4 {
		t.Errorf("expected 6 nodes and 4 connections, got %d/%d", len(doc.Nodes), len(doc.Connections))
	}

	out, _, err = run(t, "export", "--format", "yaml", path)
	if err != nil {
		t.Fatalf("export yaml: %v", err)
	}
	if !strings.HasPrefix(out, "version: 1") {
		t.Errorf("expected YAML, got:\n%s", out)
	}

	dst := filepath.Join(t.TempDir(), "out.yml")
	_, errOut, err := run(t, "export", path, "-o", dst)
	if err != nil {
		t.Fatalf("export to file: %v", err)
	}
	if !strings.Contains(errOut, "wrote "+dst+" (yaml)") {
		t.Errorf("unexpected status line %q", errOut)
	}

	if _, _, err := run(t, "export", "--format", "xml", path); err == nil {
		t.Error("expected an error for an unknown format")
	}
}

func TestHit(t *testing.T) {
	path := writeSample(t, "g.json")

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"socket", []string{"178", "144"}, "socket const1.value"},
		{"node", []string{"60", "110"}, "node const1"},
		{"empty", []string{"1000", "700"}, "Hit:    none"},
		{"zoomed", []string{"120", "220", "--zoom", "2"}, "node const1"},
		{"panned", []string{"160", "210", "--pan-x", "100", "--pan-y", "100"}, "node const1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, _, err := run(t, append([]string{"hit", path}, tt.args...)...)
			if err != nil {
				t.Fatalf("hit: %v", err)
			}
			if !strings.Contains(out, tt.want) {
				t.Errorf("expected %q in:\n%s", tt.want, out)
			}
		})
	}

	if _, _, err := run(t, "hit", path, "abc", "1"); err == nil {
		t.Error("expected an error for a non-numeric coordinate")
	}
}

func TestCatalog(t *testing.T) {
	out, _, err := run(t, "catalog")
	if err != nil {
		t.Fatalf("catalog: %v", err)
	}
	for _, want := range []string{"math.add", "constant.boolean", "print"} {
		if !strings.Contains(out, want) {
			t.Errorf("catalog missing %q:\n%s", want, out)
		}
	}
}

func TestBadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[viewport]\nmin_zoom = 5\nmax_zoom = 1\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	root := newRootCmd()
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{"--config", path, "catalog"})
	if err := root.Execute(); err == nil {
		t.Error("expected an invalid config to fail")
	}
}
