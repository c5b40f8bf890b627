package engine

import (
	"errors"
	"fmt"
	"time"

	"github.com/chazu/nodegraph/pkg/graph"
)

// EvalTimeout is the default hard limit for a single evaluation.
const EvalTimeout = 5 * time.Second

var (
	// ErrTimeout is returned when a script runs past the engine's limit.
	ErrTimeout = errors.New("evaluation timed out")
	// ErrBusy is returned when an earlier script that could not be halted
	// still holds the interpreter when the limit passes.
	ErrBusy = errors.New("interpreter busy with a halted evaluation")
	// ErrSuperseded is returned to a caller whose evaluation finished after
	// a newer one had started.
	ErrSuperseded = errors.New("evaluation superseded by newer request")

	errHalted = errors.New("evaluation halted")
)

type evalResult struct {
	graph  *graph.Graph
	errors []EvalError
	err    error
}

// begin claims the next generation number and halts the run it replaces.
func (e *Engine) begin() (uint64, chan struct{}) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.halt != nil {
		close(e.halt)
	}
	e.generation++
	e.halt = make(chan struct{})
	return e.generation, e.halt
}

func (e *Engine) latest(gen uint64) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return gen == e.generation
}

// stop closes halt unless a newer begin already has.
func (e *Engine) stop(halt chan struct{}) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.halt == halt {
		close(halt)
		e.halt = nil
	}
}

// await blocks until ch delivers or the timeout passes. A result whose
// generation is no longer the latest is dropped with ErrSuperseded. On
// timeout the run is halted; it unwinds at its next function call and
// frees the interpreter for later evaluations. A run that never started
// was stuck behind an earlier one and reports ErrBusy.
func (e *Engine) await(ch <-chan evalResult, started <-chan struct{}, gen uint64, halt chan struct{}) (*graph.Graph, []EvalError, error) {
	timer := time.NewTimer(e.timeout)
	defer timer.Stop()

	select {
	case res := <-ch:
		if !e.latest(gen) || errors.Is(res.err, errHalted) {
			return nil, nil, ErrSuperseded
		}
		return res.graph, res.errors, res.err
	case <-timer.C:
		e.stop(halt)
		select {
		case <-started:
			return nil, nil, fmt.Errorf("%w after %s", ErrTimeout, e.timeout)
		default:
			return nil, nil, fmt.Errorf("%w after %s", ErrBusy, e.timeout)
		}
	}
}
