// Package event defines the notifications emitted by the graph and the
// interaction controller, and a synchronous observer bus to deliver them.
//
// Delivery is in publish order on the calling goroutine. Handlers must not
// publish re-entrantly from the bus they are subscribed to.
package event

import (
	"fmt"

	"github.com/chazu/nodegraph/pkg/geom"
)

// Kind identifies a notification.
type Kind int

const (
	NodeAdded Kind = iota
	NodeRemoved
	NodeMoved
	NodeSelected
	NodeDeselected
	ConnectionCreated
	ConnectionRemoved
	ConnectionSelected
	ConnectionDeselected
	GraphChanged
	ContextRequested
)

func (k Kind) String() string {
	switch k {
	case NodeAdded:
		return "node-added"
	case NodeRemoved:
		return "node-removed"
	case NodeMoved:
		return "node-moved"
	case NodeSelected:
		return "node-selected"
	case NodeDeselected:
		return "node-deselected"
	case ConnectionCreated:
		return "connection-created"
	case ConnectionRemoved:
		return "connection-removed"
	case ConnectionSelected:
		return "connection-selected"
	case ConnectionDeselected:
		return "connection-deselected"
	case GraphChanged:
		return "graph-changed"
	case ContextRequested:
		return "context-requested"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Change classifies a GraphChanged notification.
type Change int

const (
	ChangeNone Change = iota
	ChangeNodeAdded
	ChangeNodeRemoved
	ChangeNodeMoved
	ChangeNodeResized
	ChangeConnectionAdded
	ChangeConnectionRemoved
	ChangeCleared
	ChangeLoaded
	ChangeSocketRemoved
)

func (c Change) String() string {
	switch c {
	case ChangeNone:
		return "none"
	case ChangeNodeAdded:
		return "node-added"
	case ChangeNodeRemoved:
		return "node-removed"
	case ChangeNodeMoved:
		return "node-moved"
	case ChangeNodeResized:
		return "node-resized"
	case ChangeConnectionAdded:
		return "connection-added"
	case ChangeConnectionRemoved:
		return "connection-removed"
	case ChangeCleared:
		return "cleared"
	case ChangeLoaded:
		return "loaded"
	case ChangeSocketRemoved:
		return "socket-removed"
	default:
		return fmt.Sprintf("Change(%d)", int(c))
	}
}

// Target says what a ContextRequested notification points at.
type Target int

const (
	TargetBackground Target = iota
	TargetNode
	TargetConnection
)

func (t Target) String() string {
	switch t {
	case TargetBackground:
		return "background"
	case TargetNode:
		return "node"
	case TargetConnection:
		return "connection"
	default:
		return fmt.Sprintf("Target(%d)", int(t))
	}
}

// Event is a single notification. Only the fields relevant to Kind are set.
type Event struct {
	Kind         Kind     `json:"kind"`
	NodeID       string   `json:"nodeId,omitempty"`
	ConnectionID string   `json:"connectionId,omitempty"`
	Position     geom.Vec `json:"position"` // NodeMoved: new world position; ContextRequested: world point
	Screen       geom.Vec `json:"screen"`   // ContextRequested: screen point
	Change       Change   `json:"change"`   // GraphChanged only
	Target       Target   `json:"target"`   // ContextRequested only
}

func (e Event) String() string {
	switch {
	case e.Kind == GraphChanged:
		return fmt.Sprintf("%s(%s)", e.Kind, e.Change)
	case e.NodeID != "":
		return fmt.Sprintf("%s(%s)", e.Kind, e.NodeID)
	case e.ConnectionID != "":
		return fmt.Sprintf("%s(%s)", e.Kind, e.ConnectionID)
	default:
		return e.Kind.String()
	}
}
