package event

// Handler receives notifications.
type Handler func(Event)

type subscription struct {
	id uint32
	fn Handler
}

// Bus fans notifications out to subscribers in subscription order.
// The zero value is ready to use. A nil *Bus drops everything.
type Bus struct {
	subs   []subscription
	nextID uint32
}

// NewBus returns an empty bus.
func NewBus() *Bus {
	return &Bus{}
}

// Handle removes a subscription.
type Handle struct {
	id  uint32
	bus *Bus
}

// Remove unsubscribes the handler. Calling it twice is harmless.
func (h Handle) Remove() {
	if h.bus == nil {
		return
	}
	s := h.bus.subs
	for i := range s {
		if s[i].id == h.id {
			copy(s[i:], s[i+1:])
			s[len(s)-1] = subscription{}
			h.bus.subs = s[:len(s)-1]
			return
		}
	}
}

// Subscribe registers fn for every subsequent notification.
func (b *Bus) Subscribe(fn Handler) Handle {
	b.nextID++
	b.subs = append(b.subs, subscription{id: b.nextID, fn: fn})
	return Handle{id: b.nextID, bus: b}
}

// Publish delivers e to every subscriber.
func (b *Bus) Publish(e Event) {
	if b == nil {
		return
	}
	// Snapshot so a handler removing itself doesn't skip its neighbour.
	subs := make([]subscription, len(b.subs))
	copy(subs, b.subs)
	for _, s := range subs {
		s.fn(e)
	}
}

// Recorder collects events. Useful for hosts that drain notifications once
// per tick, and for tests.
type Recorder struct {
	Events []Event
}

// Record is a Handler that appends to the recorder.
func (r *Recorder) Record(e Event) {
	r.Events = append(r.Events, e)
}

// Drain returns the collected events and resets the recorder.
func (r *Recorder) Drain() []Event {
	out := r.Events
	r.Events = nil
	return out
}

// Kinds returns the kinds of the collected events, in order.
func (r *Recorder) Kinds() []Kind {
	out := make([]Kind, len(r.Events))
	for i, e := range r.Events {
		out[i] = e.Kind
	}
	return out
}

// Count returns how many collected events have kind k.
func (r *Recorder) Count(k Kind) int {
	n := 0
	for _, e := range r.Events {
		if e.Kind == k {
			n++
		}
	}
	return n
}
