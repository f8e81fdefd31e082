package control

import "fmt"

// EventKind classifies an incoming note event.
type EventKind int

const (
	Other EventKind = iota
	NoteOn
	NoteOff
	AllNotesOff
)

func (k EventKind) String() string {
	switch k {
	case NoteOn:
		return "note-on"
	case NoteOff:
		return "note-off"
	case AllNotesOff:
		return "all-notes-off"
	default:
		return "other"
	}
}

// Event is a decoded MIDI event as seen by the control loop.
type Event struct {
	Kind     EventKind
	Note     uint8
	Velocity uint8
}

func (e Event) String() string {
	switch e.Kind {
	case NoteOn:
		return fmt.Sprintf("%s %d vel %d", e.Kind, e.Note, e.Velocity)
	case NoteOff:
		return fmt.Sprintf("%s %d", e.Kind, e.Note)
	default:
		return e.Kind.String()
	}
}

// EventSource is a non-blocking event queue.
type EventSource interface {
	HasPendingEvents() bool
	PopEvent() Event
}

// Queue is a bounded EventSource fed from other goroutines. Push never blocks;
// when the queue is full the event is dropped.
type Queue struct {
	events chan Event
}

// NewQueue returns a queue holding up to size events.
func NewQueue(size int) *Queue {
	if size < 1 {
		size = 1
	}
	return &Queue{events: make(chan Event, size)}
}

// Push enqueues ev and reports whether it fit.
func (q *Queue) Push(ev Event) bool {
	select {
	case q.events <- ev:
		return true
	default:
		return false
	}
}

// HasPendingEvents reports whether PopEvent would return a queued event.
func (q *Queue) HasPendingEvents() bool {
	return len(q.events) > 0
}

// PopEvent dequeues the oldest event. On an empty queue it returns an Other
// event immediately.
func (q *Queue) PopEvent() Event {
	select {
	case ev := <-q.events:
		return ev
	default:
		return Event{Kind: Other}
	}
}
