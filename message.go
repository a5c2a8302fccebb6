package parley

import "time"

// Message is one turn in a conversation.
//
// ID is unique within a conversation and strictly increasing in creation
// order (UnixNano at creation, bumped on collision). Content is append-only
// while Streaming is true and freely replaceable once it is false.
// Role never changes after creation.
type Message struct {
	ID        int64
	Role      Role
	Content   string
	CreatedAt time.Time
	File      *FileRef
	Streaming bool
	Error     bool
	Feedback  Feedback
}

// FileRef describes an attachment carried by a message. Data may be nil
// when only the descriptor survives (e.g. a reloaded session).
type FileRef struct {
	Name     string
	MimeType string
	Data     []byte
}

// Feedback is the user's rating of an assistant message.
// Like and Dislike are mutually exclusive; setting one clears the other.
type Feedback int

const (
	FeedbackNone Feedback = iota
	FeedbackLike
	FeedbackDislike
)
