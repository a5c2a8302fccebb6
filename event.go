package parley

// Event is a sealed interface representing a streaming event.
// Events are purely semantic. Transport/protocol errors come from
// Next()'s error return, not from events.
// The unexported marker method prevents external implementations.
type Event interface {
	event()
}

// EventTextDelta represents one incremental fragment of generated text.
type EventTextDelta struct {
	Delta string
}

func (EventTextDelta) event() {}

// EventStatus represents a transient backend condition worth surfacing to
// the user, such as a cold-start wait. It carries no generated text.
type EventStatus struct {
	Message string
}

func (EventStatus) event() {}

// Interface compliance checks.
var (
	_ Event = EventTextDelta{}
	_ Event = EventStatus{}
)
