package graph

import "fmt"

// ValidationSeverity indicates whether a validation finding means the graph
// violates an invariant or is merely informational.
type ValidationSeverity int

const (
	SeverityError   ValidationSeverity = iota // invariant broken
	SeverityWarning                           // informational
)

func (s ValidationSeverity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	default:
		return fmt.Sprintf("ValidationSeverity(%d)", int(s))
	}
}

// ValidationError describes a single validation finding.
type ValidationError struct {
	NodeID       NodeID             // which node has the problem (empty if none)
	ConnectionID ConnectionID       // which connection has the problem (empty if none)
	Message      string             // human-readable description
	Severity     ValidationSeverity // error or warning
}

func (e ValidationError) Error() string {
	switch {
	case e.ConnectionID != "":
		return fmt.Sprintf("[%s] connection %s: %s", e.Severity, e.ConnectionID, e.Message)
	case e.NodeID != "":
		return fmt.Sprintf("[%s] node %s: %s", e.Severity, e.NodeID, e.Message)
	default:
		return fmt.Sprintf("[%s] %s", e.Severity, e.Message)
	}
}

// ValidationResult separates blocking errors from advisory warnings.
type ValidationResult struct {
	Errors   []ValidationError
	Warnings []ValidationError
}

// OK reports whether there are no errors.
func (r ValidationResult) OK() bool { return len(r.Errors) == 0 }

// Validate runs the structural checks and returns every finding, errors and
// warnings alike, in a deterministic order. An empty slice means the graph
// is valid and fully wired. It never mutates the graph.
//
// A graph built only through the Graph API always passes the error tier;
// the checks exist for graphs whose nodes were edited in place and for
// documents loaded from outside.
func Validate(g *Graph) []ValidationError {
	var errs []ValidationError
	errs = append(errs, validateSockets(g)...)
	errs = append(errs, validateEndpoints(g)...)
	errs = append(errs, validateIndex(g)...)
	errs = append(errs, validateMultiplicity(g)...)
	errs = append(errs, validateRequired(g)...)
	return errs
}

// ValidateAll runs Validate and splits the findings by severity.
func ValidateAll(g *Graph) ValidationResult {
	var result ValidationResult
	for _, e := range Validate(g) {
		if e.Severity == SeverityWarning {
			result.Warnings = append(result.Warnings, e)
		} else {
			result.Errors = append(result.Errors, e)
		}
	}
	return result
}

// validateSockets checks that socket ids are unique within each node and
// that every socket sits on the side its list implies.
func validateSockets(g *Graph) []ValidationError {
	var errs []ValidationError
	for _, n := range g.Nodes() {
		seen := make(map[SocketID]bool)
		for _, s := range n.Sockets() {
			if seen[s.ID] {
				errs = append(errs, ValidationError{
					NodeID:   n.ID,
					Message:  fmt.Sprintf("duplicate socket id %q", s.ID),
					Severity: SeverityError,
				})
			}
			seen[s.ID] = true
		}
		for _, s := range n.Inputs {
			if s.Direction != Input {
				errs = append(errs, ValidationError{
					NodeID:   n.ID,
					Message:  fmt.Sprintf("socket %q is listed as an input but has direction %s", s.ID, s.Direction),
					Severity: SeverityError,
				})
			}
		}
		for _, s := range n.Outputs {
			if s.Direction != Output {
				errs = append(errs, ValidationError{
					NodeID:   n.ID,
					Message:  fmt.Sprintf("socket %q is listed as an output but has direction %s", s.ID, s.Direction),
					Severity: SeverityError,
				})
			}
		}
	}
	return errs
}

// validateEndpoints checks that both ends of every connection resolve, that
// the start is an output and the end an input, and that kinds agree when
// type checking is on.
func validateEndpoints(g *Graph) []ValidationError {
	var errs []ValidationError
	for _, c := range g.Connections() {
		ss, es := g.Socket(c.Start), g.Socket(c.End)
		if ss == nil || es == nil {
			for _, ref := range []SocketRef{c.Start, c.End} {
				if g.Socket(ref) == nil {
					errs = append(errs, ValidationError{
						ConnectionID: c.ID,
						Message:      fmt.Sprintf("endpoint %s does not exist", ref),
						Severity:     SeverityError,
					})
				}
			}
			continue
		}
		if ss.Direction != Output || es.Direction != Input {
			errs = append(errs, ValidationError{
				ConnectionID: c.ID,
				Message:      fmt.Sprintf("runs %s -> %s, want output -> input", ss.Direction, es.Direction),
				Severity:     SeverityError,
			})
		}
		if g.policy.TypeChecking && !KindsCompatible(ss.Kind, es.Kind) {
			errs = append(errs, ValidationError{
				ConnectionID: c.ID,
				Message:      fmt.Sprintf("connects %s to %s", ss.Kind, es.Kind),
				Severity:     SeverityError,
			})
		}
	}
	return errs
}

// validateIndex checks that the back-reference index and the connection
// table agree in both directions.
func validateIndex(g *Graph) []ValidationError {
	var errs []ValidationError
	for _, c := range g.Connections() {
		for _, ref := range []SocketRef{c.Start, c.End} {
			if _, ok := g.attached[ref][c.ID]; !ok {
				errs = append(errs, ValidationError{
					ConnectionID: c.ID,
					Message:      fmt.Sprintf("not registered on %s", ref),
					Severity:     SeverityError,
				})
			}
		}
	}
	for ref, set := range g.attached {
		for cid := range set {
			e, ok := g.conns[cid]
			if !ok || (e.conn.Start != ref && e.conn.End != ref) {
				errs = append(errs, ValidationError{
					ConnectionID: cid,
					Message:      fmt.Sprintf("stale registration on %s", ref),
					Severity:     SeverityError,
				})
			}
		}
	}
	return errs
}

// validateMultiplicity checks that single-connection sockets carry at most
// one connection.
func validateMultiplicity(g *Graph) []ValidationError {
	var errs []ValidationError
	for _, n := range g.Nodes() {
		for _, s := range n.Sockets() {
			if k := g.AttachedCount(Ref(n.ID, s.ID)); !s.AllowMultiple && k > 1 {
				errs = append(errs, ValidationError{
					NodeID:   n.ID,
					Message:  fmt.Sprintf("socket %q allows one connection but has %d", s.ID, k),
					Severity: SeverityError,
				})
			}
		}
	}
	return errs
}

// validateRequired warns about required inputs left unconnected.
func validateRequired(g *Graph) []ValidationError {
	var errs []ValidationError
	for _, n := range g.Nodes() {
		for _, s := range n.Inputs {
			if s.Required && g.AttachedCount(Ref(n.ID, s.ID)) == 0 {
				errs = append(errs, ValidationError{
					NodeID:   n.ID,
					Message:  fmt.Sprintf("required input %q is not connected", s.ID),
					Severity: SeverityWarning,
				})
			}
		}
	}
	return errs
}
