package events

import "sync"

// Emitter is the send side of the Bus handed to components and background tasks.
type Emitter interface {
	Send(ev Event)
}

// Bus is an unbounded multi-producer, single-consumer queue of events. Send never
// blocks. The consumer drains it once per UI frame.
type Bus struct {
	mu     sync.Mutex
	queue  []Event
	closed bool
}

func NewBus() *Bus {
	return &Bus{}
}

// Send enqueues ev. Events sent after Close are dropped.
func (b *Bus) Send(ev Event) {
	if ev == nil {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.queue = append(b.queue, ev)
}

// Drain removes and returns everything queued so far, oldest first.
func (b *Bus) Drain() []Event {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.queue) == 0 {
		return nil
	}
	drained := b.queue
	b.queue = nil
	return drained
}

func (b *Bus) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.queue)
}

// Close stops accepting events and discards anything still queued.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	b.queue = nil
}

var _ Emitter = (*Bus)(nil)
