// Package engine evaluates graph scripts: small Lisp programs that declare
// nodes, sockets and connections. It wraps zygomys in a sandboxed
// environment and produces a graph.Graph from user source code.
package engine

import (
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	zygo "github.com/glycerine/zygomys/zygo"

	"github.com/chazu/nodegraph/pkg/graph"
)

// EvalError represents a non-fatal error encountered during evaluation,
// such as a parse error or a runtime error in user code.
type EvalError struct {
	Line    int
	Col     int
	Message string
}

func (e EvalError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %s", e.Line, e.Message)
	}
	return e.Message
}

// EvalWarning is a finding about a graph that evaluated successfully, such
// as a required input left unconnected.
type EvalWarning struct {
	Message string
	NodeID  graph.NodeID
}

// EvalResult bundles the full output of an evaluation for use by UI bindings.
type EvalResult struct {
	Graph    *graph.Graph
	Errors   []EvalError
	Warnings []EvalWarning
}

// Option configures an Engine.
type Option func(*Engine)

// WithTimeout overrides EvalTimeout.
func WithTimeout(d time.Duration) Option { return func(e *Engine) { e.timeout = d } }

// WithGraphOptions sets the options every produced graph is built with.
func WithGraphOptions(opts ...graph.Option) Option {
	return func(e *Engine) { e.graphOpts = opts }
}

// WithLogger sets the diagnostics logger. nil discards.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.log = l
		}
	}
}

// Engine wraps the zygomys interpreter.
// It is safe for concurrent use; each call to Evaluate creates a fresh
// sandboxed environment for determinism. Sandboxes share zygomys package
// state, so evaluations run one at a time: a run holds slot until it
// finishes or is halted.
type Engine struct {
	mu         sync.Mutex
	generation uint64
	halt       chan struct{} // closed to stop the latest run

	slot chan struct{}

	timeout   time.Duration
	graphOpts []graph.Option
	log       *slog.Logger
}

// NewEngine creates a new Engine instance.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		timeout: EvalTimeout,
		slot:    make(chan struct{}, 1),
		log:     slog.New(slog.DiscardHandler),
	}
	for _, o := range opts {
		o(e)
	}
	return e
}

// Evaluate takes Lisp source code and produces a new Graph.
// Each call creates a fresh zygomys sandbox for deterministic evaluation.
//
// Return semantics:
//   - On success: returns graph + nil errors + nil error
//   - On parse/eval failure: returns nil graph + eval errors + nil error
//   - On fatal failure: returns nil + nil + error, which wraps ErrTimeout,
//     ErrBusy or ErrSuperseded when those apply
//
// Starting an evaluation halts the previous one at its next function call.
func (e *Engine) Evaluate(source string) (*graph.Graph, []EvalError, error) {
	gen, halt := e.begin()
	ch := make(chan evalResult, 1)
	started := make(chan struct{})

	go func() {
		select {
		case e.slot <- struct{}{}:
		case <-halt:
			ch <- evalResult{err: errHalted}
			return
		}
		defer func() { <-e.slot }()
		close(started)

		defer func() {
			if r := recover(); r != nil {
				if r == errHalted {
					ch <- evalResult{err: errHalted}
					return
				}
				ch <- evalResult{err: fmt.Errorf("panic during evaluation: %v", r)}
			}
		}()

		g, evalErrs, err := e.evaluate(source, halt)
		ch <- evalResult{graph: g, errors: evalErrs, err: err}
	}()

	g, errs, err := e.await(ch, started, gen, halt)
	switch {
	case err != nil:
		e.log.Warn("evaluation failed", "generation", gen, "err", err)
	case len(errs) > 0:
		e.log.Debug("evaluation errors", "generation", gen, "count", len(errs))
	default:
		e.log.Debug("evaluated", "generation", gen, "nodes", g.NodeCount(), "connections", g.ConnectionCount())
	}
	return g, errs, err
}

// EvaluateResult is Evaluate plus validation warnings for the produced
// graph.
func (e *Engine) EvaluateResult(source string) (*EvalResult, error) {
	g, errs, err := e.Evaluate(source)
	if err != nil {
		return nil, err
	}
	res := &EvalResult{Graph: g, Errors: errs}
	if g == nil {
		return res, nil
	}
	for _, w := range graph.ValidateAll(g).Warnings {
		res.Warnings = append(res.Warnings, EvalWarning{Message: w.Message, NodeID: w.NodeID})
	}
	return res, nil
}

// evaluate performs the actual zygomys evaluation in a fresh sandbox.
func (e *Engine) evaluate(source string, halt <-chan struct{}) (*graph.Graph, []EvalError, error) {
	// Empty source is a valid program that produces an empty graph.
	if strings.TrimSpace(source) == "" {
		return graph.New(e.graphOpts...), nil, nil
	}

	// Sandbox mode prevents user code from accessing the filesystem or
	// syscalls.
	env := zygo.NewZlispSandbox()
	defer env.Stop()

	g := graph.New(e.graphOpts...)
	registerBuiltins(env, g)
	// Every function call checks for a halt, which unwinds Run.
	env.AddPreHook(func(*zygo.Zlisp, string, []zygo.Sexp) {
		select {
		case <-halt:
			panic(errHalted)
		default:
		}
	})

	if err := env.LoadString(preprocessSource(source)); err != nil {
		return nil, parseZygomysError(err), nil
	}
	if _, err := env.Run(); err != nil {
		return nil, parseZygomysError(err), nil
	}
	return g, nil, nil
}

// linePattern matches zygomys error messages that include "Error on line N: ..."
var linePattern = regexp.MustCompile(`(?i)(?:error )?on line (\d+):\s*(.*)`)

// linePatternShort matches simpler "line N: ..." patterns.
var linePatternShort = regexp.MustCompile(`(?i)^line (\d+):\s*(.*)`)

// parseZygomysError converts a zygomys error into one or more EvalError values.
// It attempts to extract line number information from the error message.
func parseZygomysError(err error) []EvalError {
	msg := err.Error()

	for _, re := range []*regexp.Regexp{linePattern, linePatternShort} {
		if m := re.FindStringSubmatch(msg); m != nil {
			line, _ := strconv.Atoi(m[1])
			return []EvalError{{Line: line, Message: strings.TrimSpace(m[2])}}
		}
	}

	// Fallback: no line info available.
	return []EvalError{{Message: strings.TrimSpace(msg)}}
}
