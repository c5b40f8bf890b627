package engine

import (
	"errors"
	"strings"
	"sync"
	"testing"
	"time"
)

func TestEvaluateProducesEmptyGraph(t *testing.T) {
	tests := []struct {
		name   string
		source string
	}{
		{"empty", ""},
		{"whitespace", "   \n\t  \n  "},
		{"comment only", ";; nothing here"},
		{"plain arithmetic", "(+ 1 2)"},
		{"bindings", "(def x 10)\n(def y 20)\n(+ x y)"},
	}
	eng := NewEngine()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, evalErrs, err := eng.Evaluate(tt.source)
			if err != nil {
				t.Fatalf("unexpected fatal error: %v", err)
			}
			if len(evalErrs) > 0 {
				t.Fatalf("unexpected eval errors: %v", evalErrs)
			}
			if g == nil {
				t.Fatal("expected non-nil graph")
			}
			if g.NodeCount() != 0 || g.ConnectionCount() != 0 {
				t.Errorf("expected empty graph, got %d nodes, %d connections", g.NodeCount(), g.ConnectionCount())
			}
		})
	}
}

func TestEvaluateFailuresDiscardGraph(t *testing.T) {
	tests := []struct {
		name   string
		source string
	}{
		{"unclosed node", `(constant "a" 1)` + "\n" + `(node "b"`},
		{"undefined symbol", `(constant "a" undefined-symbol)`},
		{"missing endpoint", `(constant "a" 1)` + "\n" + `(connect "a.value" "nowhere.in")`},
	}
	eng := NewEngine()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, evalErrs, err := eng.Evaluate(tt.source)
			if err != nil {
				t.Fatalf("expected non-fatal eval error, got fatal: %v", err)
			}
			if g != nil {
				t.Fatalf("expected nil graph, got %d nodes", g.NodeCount())
			}
			if len(evalErrs) == 0 || evalErrs[0].Message == "" {
				t.Fatalf("expected a populated eval error, got %v", evalErrs)
			}
		})
	}
}

func TestEvaluateSyntaxErrorHasLineInfo(t *testing.T) {
	eng := NewEngine()

	_, evalErrs, err := eng.Evaluate("(constant \"a\" 1)\n(math \"m\" :add")
	if err != nil {
		t.Fatalf("unexpected fatal error: %v", err)
	}
	if len(evalErrs) == 0 {
		t.Fatal("expected at least one eval error")
	}
	// Line info depends on the reader's message format.
	if e := evalErrs[0]; e.Line > 0 {
		t.Logf("line=%d message=%q", e.Line, e.Message)
	}
}

func TestEvalErrorImplementsError(t *testing.T) {
	e := EvalError{Line: 5, Message: "duplicate node id \"a\""}
	if s := e.Error(); !strings.Contains(s, "line 5") || !strings.Contains(s, "duplicate node id") {
		t.Errorf("Error() = %q", s)
	}

	e2 := EvalError{Message: "no location"}
	if s := e2.Error(); strings.Contains(s, "line") {
		t.Errorf("Error() with no line should not mention a line, got %q", s)
	}
}

func TestEvaluateDeterministic(t *testing.T) {
	eng := NewEngine()
	source := `
(constant "x" 2 :at (vec 10 20))
(math "m" :multiply :at (vec 200 20))
(connect "x.value" "m.a")
`
	var first []string
	for i := 0; i < 5; i++ {
		g, evalErrs, err := eng.Evaluate(source)
		if err != nil || len(evalErrs) > 0 {
			t.Fatalf("iteration %d: %v %v", i, err, evalErrs)
		}
		var got []string
		for _, c := range g.Snapshot().Connections {
			got = append(got, c.Start.String()+"->"+c.End.String())
		}
		if i == 0 {
			first = got
			continue
		}
		if strings.Join(got, ",") != strings.Join(first, ",") {
			t.Errorf("iteration %d: connections %v differ from %v", i, got, first)
		}
	}
	if len(first) != 1 {
		t.Errorf("expected one connection, got %v", first)
	}
}

func TestAwaitTimesOut(t *testing.T) {
	eng := NewEngine(WithTimeout(50 * time.Millisecond))
	gen, halt := eng.begin()
	started := make(chan struct{})
	close(started)
	ch := make(chan evalResult) // never sends

	start := time.Now()
	_, _, err := eng.await(ch, started, gen, halt)
	if !errors.Is(err, ErrTimeout) {
		t.Fatalf("expected ErrTimeout, got %v", err)
	}
	if time.Since(start) > EvalTimeout {
		t.Error("timeout ignored the configured limit")
	}
	select {
	case <-halt:
	default:
		t.Error("timed out run was not halted")
	}
}

func TestAwaitReportsBusyWhenNeverStarted(t *testing.T) {
	eng := NewEngine(WithTimeout(20 * time.Millisecond))
	gen, halt := eng.begin()

	_, _, err := eng.await(make(chan evalResult), make(chan struct{}), gen, halt)
	if !errors.Is(err, ErrBusy) {
		t.Fatalf("expected ErrBusy, got %v", err)
	}
}

func TestAwaitDiscardsStaleGeneration(t *testing.T) {
	eng := NewEngine()
	stale, halt := eng.begin()
	_, _ = eng.begin()

	select {
	case <-halt:
	default:
		t.Error("starting a newer run should halt the older one")
	}

	ch := make(chan evalResult, 1)
	ch <- evalResult{}
	if _, _, err := eng.await(ch, nil, stale, halt); !errors.Is(err, ErrSuperseded) {
		t.Fatalf("expected ErrSuperseded, got %v", err)
	}
}

func TestEvaluateRecoversAfterRunawayScript(t *testing.T) {
	eng := NewEngine(WithTimeout(200 * time.Millisecond))

	_, _, err := eng.Evaluate(`(for [(def i 0) true (set i (+ i 1))] i)`)
	if !errors.Is(err, ErrTimeout) {
		t.Fatalf("expected ErrTimeout for a runaway loop, got %v", err)
	}

	g, evalErrs, err := eng.Evaluate(`(constant "a" 1)`)
	if err != nil {
		t.Fatalf("follow-up evaluation failed: %v", err)
	}
	if len(evalErrs) > 0 {
		t.Fatalf("unexpected eval errors: %v", evalErrs)
	}
	if g == nil || g.NodeCount() != 1 {
		t.Fatalf("expected a one-node graph, got %v", g)
	}
}

func TestEvaluateConcurrent(t *testing.T) {
	eng := NewEngine()

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			// Results may be superseded; what matters is no race or panic.
			_, _, _ = eng.Evaluate(`(constant "c" 1)`)
		}()
	}
	wg.Wait()

	g, errs, err := eng.Evaluate(`(constant "c" 1)`)
	if err != nil || len(errs) > 0 {
		t.Fatalf("unexpected failure: %v %v", err, errs)
	}
	if g.NodeCount() != 1 {
		t.Errorf("expected 1 node, got %d", g.NodeCount())
	}
}

func TestParseZygomysError(t *testing.T) {
	tests := []struct {
		name     string
		msg      string
		wantLine int
		wantMsg  string
	}{
		{
			name:     "error on line format",
			msg:      "Error on line 5: unexpected token\n",
			wantLine: 5,
			wantMsg:  "unexpected token",
		},
		{
			name:     "no line info",
			msg:      "some generic error",
			wantLine: 0,
			wantMsg:  "some generic error",
		},
		{
			name:     "line format lowercase",
			msg:      "error on line 12: missing paren",
			wantLine: 12,
			wantMsg:  "missing paren",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := parseZygomysError(errString(tt.msg))
			if len(errs) == 0 {
				t.Fatal("expected at least one error")
			}
			e := errs[0]
			if e.Line != tt.wantLine {
				t.Errorf("line = %d, want %d", e.Line, tt.wantLine)
			}
			if !strings.Contains(e.Message, tt.wantMsg) {
				t.Errorf("message = %q, want containing %q", e.Message, tt.wantMsg)
			}
		})
	}
}

// errString is a simple error type for testing.
type errString string

func (e errString) Error() string { return string(e) }
