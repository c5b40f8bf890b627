package editor

import (
	"github.com/chazu/nodegraph/pkg/event"
	"github.com/chazu/nodegraph/pkg/geom"
	"github.com/chazu/nodegraph/pkg/graph"
	"github.com/chazu/nodegraph/pkg/hittest"
)

// PointerDown handles a button press. Presses arriving mid-gesture are
// ignored.
func (e *Editor) PointerDown(ev PointerEvent) {
	e.pointer = ev.Pos
	if e.mode != Idle {
		return
	}
	switch ev.Button {
	case ButtonMiddle:
		if e.cfg.PanEnabled {
			e.mode = Panning
			e.panLast = ev.Pos
		}
	case ButtonRight:
		e.requestContext(ev.Pos)
	case ButtonLeft:
		e.pressLeft(ev)
	}
}

func (e *Editor) pressLeft(ev PointerEvent) {
	additive := ev.Mods.Has(e.cfg.MultiSelect)
	hit := e.tester().Pick(ev.Pos, e.cfg.SocketTolerance, e.cfg.ConnectionTolerance)

	switch hit.Kind {
	case hittest.Socket:
		e.mode = ConnectingFromSocket
		e.connectFrom = hit.Socket
		e.log.Debug("connect started", "from", hit.Socket)

	case hittest.Connection:
		e.SelectConnection(hit.Connection, additive)

	case hittest.Node:
		e.pressNode(hit.Node, hit.World, ev.Pos, additive)

	default:
		if !e.cfg.RectangleSelection {
			if !additive {
				e.ClearSelection()
			}
			return
		}
		e.mode = RubberBandSelecting
		e.bandStart = hit.World
		e.band = geom.NormalizeRect(hit.World, hit.World)
		e.bandMerge = additive
	}
}

// pressNode applies the click rules and captures drag baselines. A plain
// press on a node that is already selected drags the whole selection and
// only collapses the selection to that node if the pointer never moves.
func (e *Editor) pressNode(id graph.NodeID, world, screen geom.Vec, additive bool) {
	e.g.BringToFront(id)

	var collapse bool
	switch {
	case additive && e.cfg.AllowMultipleSelection:
		if e.selNodes.Has(id) {
			e.deselectNode(id)
			return
		}
		e.selectNode(id)
	case e.selNodes.Has(id):
		collapse = e.selNodes.Len() > 1 || e.selConns.Len() > 0
	default:
		e.SelectNode(id, false)
	}

	ids := e.selNodes.Items()
	base := make(map[graph.NodeID]geom.Vec, len(ids))
	for _, nid := range ids {
		if n := e.g.Node(nid); n != nil {
			base[nid] = n.Position
		}
	}
	e.drag = dragState{
		origin:   world,
		press:    screen,
		ids:      ids,
		baseline: base,
		pressed:  id,
		collapse: collapse,
	}
	e.mode = DraggingNodes
}

// PointerMove handles pointer motion.
func (e *Editor) PointerMove(ev PointerEvent) {
	e.pointer = ev.Pos
	switch e.mode {
	case Idle:
		e.updateHover(ev.Pos)
	case Panning:
		e.vp.PanBy(ev.Pos.Sub(e.panLast))
		e.panLast = ev.Pos
	case RubberBandSelecting:
		e.band = geom.NormalizeRect(e.bandStart, e.vp.ScreenToWorld(ev.Pos))
	case DraggingNodes:
		if !e.drag.started && geom.Dist(ev.Pos, e.drag.press) < e.cfg.DragThreshold {
			return
		}
		e.drag.started = true
		e.applyDrag()
	case ConnectingFromSocket:
		e.hover = hoverState{}
		if ref, ok := e.SocketAt(ev.Pos); ok {
			e.hover.socket = ref
			e.hover.node = ref.Node
		}
	}
}

// applyDrag places every dragged node at baseline plus the world-space
// pointer delta since the press.
func (e *Editor) applyDrag() {
	delta := e.vp.ScreenToWorld(e.pointer).Sub(e.drag.origin)
	for _, id := range e.drag.ids {
		base, ok := e.drag.baseline[id]
		if !ok {
			continue
		}
		pos := base.Add(delta)
		if e.cfg.SnapToGrid {
			pos = geom.Snap(pos, e.cfg.GridSize)
		}
		e.g.MoveNode(id, pos)
	}
}

// PointerUp handles a button release.
func (e *Editor) PointerUp(ev PointerEvent) {
	e.pointer = ev.Pos
	switch e.mode {
	case Panning:
		if ev.Button == ButtonMiddle {
			e.resetGesture()
		}
	case RubberBandSelecting:
		if ev.Button != ButtonLeft {
			return
		}
		e.band = geom.NormalizeRect(e.bandStart, e.vp.ScreenToWorld(ev.Pos))
		nodes := e.g.NodesInRect(e.band)
		ids := make([]graph.NodeID, len(nodes))
		for i, n := range nodes {
			ids[i] = n.ID
		}
		e.setNodeSelection(ids, e.bandMerge)
		e.resetGesture()
	case DraggingNodes:
		if ev.Button != ButtonLeft {
			return
		}
		e.finishDrag()
	case ConnectingFromSocket:
		if ev.Button != ButtonLeft {
			return
		}
		from := e.connectFrom
		e.resetGesture()
		target, ok := e.SocketAt(ev.Pos)
		if !ok || target == from {
			return
		}
		if id, r := e.g.Connect(from, target); r != graph.ReasonOK {
			e.log.Debug("connect cancelled", "from", from, "to", target, "reason", r)
		} else {
			e.log.Debug("connected", "connection", id)
		}
	}
}

func (e *Editor) finishDrag() {
	d := e.drag
	e.resetGesture()
	if !d.started {
		if d.collapse {
			e.SelectNode(d.pressed, false)
		}
		return
	}
	for _, id := range d.ids {
		n := e.g.Node(id)
		if n == nil || n.Position == d.baseline[id] {
			continue
		}
		e.bus.Publish(event.Event{Kind: event.NodeMoved, NodeID: string(id), Position: n.Position})
	}
}

// Wheel zooms by steps wheel notches around the screen point pos. It does
// not change the mode; an active drag or rubber band follows the pointer in
// world space.
func (e *Editor) Wheel(steps float64, pos geom.Vec) {
	if !e.cfg.ZoomEnabled || steps == 0 {
		return
	}
	e.vp.ZoomBy(steps, pos)
	switch e.mode {
	case DraggingNodes:
		if e.drag.started {
			e.applyDrag()
		}
	case RubberBandSelecting:
		e.band = geom.NormalizeRect(e.bandStart, e.vp.ScreenToWorld(e.pointer))
	}
}

// KeyDown handles a key press and reports whether the editor used it. Only
// Escape is accepted while a gesture is in progress.
func (e *Editor) KeyDown(k Key, mods Modifiers) bool {
	if k == KeyEscape {
		e.Cancel()
		return true
	}
	if e.mode != Idle {
		return false
	}
	cmd := mods.Has(ModCtrl | ModMeta)
	switch {
	case k == KeyDelete || k == KeyBackspace:
		e.DeleteSelected()
	case k == KeyA && cmd:
		e.SelectAll()
	case k == KeyC && cmd:
		e.Copy()
	case k == KeyV && cmd:
		e.Paste()
	case k == KeyD && cmd:
		e.Duplicate()
	case cmd:
		return false
	case k == KeyF:
		e.FrameSelection()
	case k == KeyG:
		e.ToggleGrid()
	case k == KeyS:
		e.ToggleSnap()
	case k == KeyH:
		e.ResetView()
	default:
		return false
	}
	return true
}

// Cancel aborts the current gesture and returns to Idle. Dragged nodes go
// back to where they were when the drag started.
func (e *Editor) Cancel() {
	if e.mode == DraggingNodes && e.drag.started {
		for _, id := range e.drag.ids {
			if base, ok := e.drag.baseline[id]; ok {
				e.g.MoveNode(id, base)
			}
		}
	}
	if e.mode != Idle {
		e.log.Debug("gesture cancelled", "mode", e.mode)
	}
	e.resetGesture()
}

// FocusLost is called when the owning panel loses input focus.
func (e *Editor) FocusLost() {
	e.Cancel()
	e.hover = hoverState{}
}

func (e *Editor) resetGesture() {
	e.mode = Idle
	e.drag = dragState{}
	e.connectFrom = graph.SocketRef{}
	e.bandStart = geom.Vec{}
	e.band = geom.Rect{}
	e.bandMerge = false
}

func (e *Editor) updateHover(screen geom.Vec) {
	hit := e.tester().Pick(screen, e.cfg.SocketTolerance, e.cfg.ConnectionTolerance)
	e.hover = hoverState{node: hit.Node, socket: hit.Socket, conn: hit.Connection}
}

func (e *Editor) requestContext(screen geom.Vec) {
	hit := e.tester().Pick(screen, e.cfg.SocketTolerance, e.cfg.ConnectionTolerance)
	ev := event.Event{Kind: event.ContextRequested, Position: hit.World, Screen: screen}
	switch hit.Kind {
	case hittest.Socket, hittest.Node:
		ev.Target = event.TargetNode
		ev.NodeID = string(hit.Node)
	case hittest.Connection:
		ev.Target = event.TargetConnection
		ev.ConnectionID = string(hit.Connection)
	default:
		ev.Target = event.TargetBackground
	}
	e.bus.Publish(ev)
}
