// Package docfile reads and writes graph documents. The format follows the
// file extension: .ngl files are graph scripts, .json and .yaml/.yml files
// are structural snapshots.
package docfile

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/chazu/nodegraph/pkg/engine"
	"github.com/chazu/nodegraph/pkg/graph"
)

// Format is a document encoding.
type Format int

const (
	Script Format = iota
	JSON
	YAML
)

func (f Format) String() string {
	switch f {
	case Script:
		return "script"
	case JSON:
		return "json"
	case YAML:
		return "yaml"
	}
	return fmt.Sprintf("Format(%d)", int(f))
}

// ScriptExt is the extension of graph scripts.
const ScriptExt = ".ngl"

// ParseFormat parses a format name as accepted on the command line.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "script", "ngl":
		return Script, nil
	case "json":
		return JSON, nil
	case "yaml", "yml":
		return YAML, nil
	}
	return 0, fmt.Errorf("unknown document format %q", s)
}

// FormatOf picks the format from path's extension.
func FormatOf(path string) (Format, error) {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ScriptExt:
		return Script, nil
	case ".json":
		return JSON, nil
	case ".yaml", ".yml":
		return YAML, nil
	}
	return 0, fmt.Errorf("unsupported document extension %q", ext)
}

// Load reads the document at path into a new graph built with opts.
func Load(path string, opts ...graph.Option) (*graph.Graph, error) {
	f, err := FormatOf(path)
	if err != nil {
		return nil, err
	}
	r, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open document: %w", err)
	}
	defer r.Close()

	g, err := Decode(r, f, opts...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return g, nil
}

// Decode reads a document in format f.
func Decode(r io.Reader, f Format, opts ...graph.Option) (*graph.Graph, error) {
	if f == Script {
		src, err := io.ReadAll(r)
		if err != nil {
			return nil, fmt.Errorf("read script: %w", err)
		}
		return evalScript(string(src), opts...)
	}

	var doc graph.Document
	switch f {
	case JSON:
		if err := json.NewDecoder(r).Decode(&doc); err != nil {
			return nil, fmt.Errorf("parse json: %w", err)
		}
	case YAML:
		if err := yaml.NewDecoder(r).Decode(&doc); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("parse yaml: %w", err)
		}
	default:
		return nil, fmt.Errorf("cannot decode %s", f)
	}
	return graph.FromDocument(&doc, opts...)
}

func evalScript(src string, opts ...graph.Option) (*graph.Graph, error) {
	g, evalErrs, err := engine.NewEngine(engine.WithGraphOptions(opts...)).Evaluate(src)
	if err != nil {
		return nil, err
	}
	if len(evalErrs) > 0 {
		errs := make([]error, len(evalErrs))
		for i, e := range evalErrs {
			errs[i] = e
		}
		return nil, errors.Join(errs...)
	}
	return g, nil
}

// Save writes g to path in the format its extension selects.
func Save(path string, g *graph.Graph) error {
	f, err := FormatOf(path)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create document directory: %w", err)
	}
	w, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create document: %w", err)
	}
	if err := Encode(w, f, g); err != nil {
		w.Close()
		return fmt.Errorf("%s: %w", path, err)
	}
	return w.Close()
}

// Encode writes g in format f.
func Encode(w io.Writer, f Format, g *graph.Graph) error {
	switch f {
	case Script:
		return writeScript(w, g)
	case JSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(g.Snapshot())
	case YAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(g.Snapshot()); err != nil {
			return err
		}
		return enc.Close()
	}
	return fmt.Errorf("cannot encode %s", f)
}
