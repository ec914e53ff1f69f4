package csvproc

import (
	"sync"
)

// Event names a notification delivered to subscribers.
type Event string

const (
	EventHeader Event = "header"
	EventRow    Event = "row"
	EventError  Event = "error"
	EventFinish Event = "finish"
)

// Notification is the payload handed to a Handler. Only the field matching
// Event is set.
type Notification struct {
	Event  Event
	Header Header
	Row    Row
	Err    *DecodeError
}

// Handler receives notifications. Handlers run on the goroutine driving the
// decode pass and may call Pause, Resume and End.
type Handler func(Notification)

// emitter maps event names to their handlers in subscription order.
type emitter struct {
	mu       sync.RWMutex
	handlers map[Event][]Handler
}

func (e *emitter) on(ev Event, h Handler) {
	if h == nil {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.handlers == nil {
		e.handlers = make(map[Event][]Handler)
	}
	e.handlers[ev] = append(e.handlers[ev], h)
}

// dispatch calls each handler for n.Event in order, checking suppressed
// before every call so that nothing is delivered once it reports true.
func (e *emitter) dispatch(n Notification, suppressed func() bool) {
	e.mu.RLock()
	handlers := e.handlers[n.Event]
	e.mu.RUnlock()

	for _, h := range handlers {
		if suppressed() {
			return
		}
		h(n)
	}
}
