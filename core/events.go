package core

import (
	"sync"

	"github.com/shrek82/namedsql/pool"
)

// EventKind identifies a change notification.
type EventKind int

const (
	// EventConnected fires after a handle is installed under a name.
	EventConnected EventKind = iota
	// EventClosed fires when a name loses its handle; Reason says why.
	EventClosed
	// EventError fires whenever a component records a new last error.
	EventError
	// EventWarning fires for non-fatal problems such as an invalid table kind.
	EventWarning
	// EventDone fires after the executor completes a statement successfully.
	EventDone
	// EventModelReset fires when a result model replaces or clears its data.
	// Views are expected to discard everything they hold and re-read.
	EventModelReset
)

func (k EventKind) String() string {
	switch k {
	case EventConnected:
		return "connected"
	case EventClosed:
		return "closed"
	case EventError:
		return "error"
	case EventWarning:
		return "warning"
	case EventDone:
		return "done"
	case EventModelReset:
		return "model_reset"
	}
	return "unknown"
}

// CloseReason explains an EventClosed.
type CloseReason int

const (
	CloseError CloseReason = iota
	CloseRequested
	CloseUnknown
)

func (r CloseReason) String() string {
	switch r {
	case CloseError:
		return "Error"
	case CloseRequested:
		return "User Requested"
	case CloseUnknown:
		return "Unknown"
	}
	return "Unknown and not good"
}

// Event is delivered to listeners. Only the fields relevant to Kind are set.
type Event struct {
	Kind       EventKind
	Connection string
	Reason     CloseReason
	Message    string
	Handle     pool.Pool
}

// Listener receives events synchronously on the goroutine that caused them.
type Listener func(Event)

// Subscriber is implemented by every component that emits events.
type Subscriber interface {
	Subscribe(kind EventKind, fn Listener) (unsubscribe func())
}

// emitter is embedded by Registry, Executor and ResultModel.
type emitter struct {
	mu        sync.Mutex
	nextID    int
	listeners map[EventKind][]subscription
}

type subscription struct {
	id int
	fn Listener
}

// Subscribe registers fn for events of the given kind and returns a
// function that removes it again.
func (e *emitter) Subscribe(kind EventKind, fn Listener) func() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.listeners == nil {
		e.listeners = make(map[EventKind][]subscription)
	}
	e.nextID++
	id := e.nextID
	e.listeners[kind] = append(e.listeners[kind], subscription{id: id, fn: fn})

	return func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		subs := e.listeners[kind]
		for i, s := range subs {
			if s.id == id {
				e.listeners[kind] = append(subs[:i:i], subs[i+1:]...)
				return
			}
		}
	}
}

// emit must not be called while the component's own lock is held.
func (e *emitter) emit(ev Event) {
	e.mu.Lock()
	subs := append([]subscription(nil), e.listeners[ev.Kind]...)
	e.mu.Unlock()

	for _, s := range subs {
		s.fn(ev)
	}
}

// errorState holds a component's last error message.
type errorState struct {
	mu  sync.RWMutex
	msg string
}

// LastError returns the message of the most recent failure, or "" if the
// last operation succeeded.
func (s *errorState) LastError() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.msg
}

func (s *errorState) set(msg string) {
	s.mu.Lock()
	s.msg = msg
	s.mu.Unlock()
}
