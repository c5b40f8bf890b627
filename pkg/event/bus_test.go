package event

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBusDeliversInOrder(t *testing.T) {
	b := NewBus()
	var got []string
	b.Subscribe(func(e Event) { got = append(got, "a:"+e.NodeID) })
	b.Subscribe(func(e Event) { got = append(got, "b:"+e.NodeID) })

	b.Publish(Event{Kind: NodeAdded, NodeID: "n1"})
	b.Publish(Event{Kind: NodeRemoved, NodeID: "n2"})

	assert.Equal(t, []string{"a:n1", "b:n1", "a:n2", "b:n2"}, got)
}

func TestHandleRemove(t *testing.T) {
	b := NewBus()
	var rec Recorder
	h := b.Subscribe(rec.Record)
	b.Publish(Event{Kind: NodeAdded})
	h.Remove()
	h.Remove()
	b.Publish(Event{Kind: NodeAdded})
	assert.Len(t, rec.Events, 1)
}

func TestHandlerRemovingItselfDoesNotSkipOthers(t *testing.T) {
	b := NewBus()
	var rec Recorder
	var h Handle
	h = b.Subscribe(func(Event) { h.Remove() })
	b.Subscribe(rec.Record)

	b.Publish(Event{Kind: GraphChanged})
	assert.Equal(t, 1, rec.Count(GraphChanged))
}

func TestNilBusPublishIsNoop(t *testing.T) {
	var b *Bus
	assert.NotPanics(t, func() { b.Publish(Event{Kind: NodeAdded}) })
}

func TestRecorderDrain(t *testing.T) {
	var rec Recorder
	rec.Record(Event{Kind: NodeAdded})
	rec.Record(Event{Kind: NodeMoved})
	assert.Equal(t, []Kind{NodeAdded, NodeMoved}, rec.Kinds())
	assert.Len(t, rec.Drain(), 2)
	assert.Empty(t, rec.Events)
}

func TestEventString(t *testing.T) {
	assert.Equal(t, "graph-changed(cleared)", Event{Kind: GraphChanged, Change: ChangeCleared}.String())
	assert.Equal(t, "node-moved(a)", Event{Kind: NodeMoved, NodeID: "a"}.String())
	assert.Equal(t, "Kind(99)", Kind(99).String())
}
