package parley

// StreamState indicates the current state of a Stream.
type StreamState int

const (
	StreamStateNew       StreamState = iota // Before Next() is ever called.
	StreamStateStreaming                    // Mid-stream, receiving deltas.
	StreamStateComplete                     // Next() returned io.EOF.
	StreamStateError                        // Next() returned non-EOF error.
	StreamStateClosed                       // Close() called before terminal state.
)

// Stream uses a pull-based iterator pattern. Cancellation flows through the
// context passed to Provider.Stream() and is honored at delta boundaries:
// an adapter mid-decode of one chunk finishes that chunk first.
//
// Next() returns the next semantic event, io.EOF on normal completion, or
// the terminal error. Deltas are delivered strictly in backend order.
//
// Text() returns the text assembled from deltas so far. It is valid in
// every state; before any delta arrives it returns the empty string.
type Stream interface {
	Next() (Event, error)
	State() StreamState
	Text() string
	Close() error
}
