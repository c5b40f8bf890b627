package graph

import "fmt"

// Reason explains why a mutation was accepted or rejected. Rejections are
// ordinary outcomes, not errors; ReasonOK means the mutation may commit.
type Reason int

const (
	ReasonOK Reason = iota
	ReasonMissingID
	ReasonDuplicateID
	ReasonUnknownNode
	ReasonUnknownSocket
	ReasonSameDirection
	ReasonSameSocket
	ReasonMultiplicity
	ReasonTypeMismatch
	ReasonDuplicateEdge
	ReasonSelfLoop
)

func (r Reason) String() string {
	switch r {
	case ReasonOK:
		return "ok"
	case ReasonMissingID:
		return "missing id"
	case ReasonDuplicateID:
		return "duplicate id"
	case ReasonUnknownNode:
		return "unknown node"
	case ReasonUnknownSocket:
		return "unknown socket"
	case ReasonSameDirection:
		return "sockets share a direction"
	case ReasonSameSocket:
		return "socket cannot connect to itself"
	case ReasonMultiplicity:
		return "socket already connected"
	case ReasonTypeMismatch:
		return "incompatible socket kinds"
	case ReasonDuplicateEdge:
		return "duplicate connection"
	case ReasonSelfLoop:
		return "self-loop not allowed"
	default:
		return fmt.Sprintf("Reason(%d)", int(r))
	}
}

// OK reports whether the reason permits the mutation.
func (r Reason) OK() bool {
	return r == ReasonOK
}

// Err converts a rejection into an error for layers that report errors
// (script evaluation, document loading). ReasonOK yields nil.
func (r Reason) Err() error {
	if r == ReasonOK {
		return nil
	}
	return &RejectedError{Reason: r}
}

// RejectedError wraps a rejection Reason.
type RejectedError struct {
	Reason Reason
}

func (e *RejectedError) Error() string {
	return "rejected: " + e.Reason.String()
}
