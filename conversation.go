package parley

import "time"

// Conversation is the ordered, append-mostly message log of one session.
//
// All reducer methods are pure: they return an updated copy and never
// mutate the receiver's backing array, so callers may hold snapshots of
// earlier states safely.
type Conversation struct {
	Messages []Message
}

// clone returns a Conversation with a freshly allocated message slice.
func (c Conversation) clone() Conversation {
	msgs := make([]Message, len(c.Messages))
	copy(msgs, c.Messages)
	return Conversation{Messages: msgs}
}

// index returns the position of the message with the given id, or -1.
func (c Conversation) index(id int64) int {
	for i, m := range c.Messages {
		if m.ID == id {
			return i
		}
	}
	return -1
}

// nextID mints a message identifier that is strictly greater than every
// existing one. Creation timestamps collide at nanosecond resolution when
// two messages are appended in the same scheduler tick, so the id is
// bumped past the tail when needed.
func (c Conversation) nextID(now time.Time) int64 {
	id := now.UnixNano()
	if n := len(c.Messages); n > 0 && id <= c.Messages[n-1].ID {
		id = c.Messages[n-1].ID + 1
	}
	return id
}

// AppendUser appends a user message and returns the updated conversation
// together with the appended message.
func (c Conversation) AppendUser(text string, file *FileRef, now time.Time) (Conversation, Message) {
	out := c.clone()
	msg := Message{
		ID:        out.nextID(now),
		Role:      RoleUser,
		Content:   text,
		CreatedAt: now,
		File:      file,
	}
	out.Messages = append(out.Messages, msg)
	return out, msg
}

// AppendPlaceholder appends an empty assistant message with the streaming
// flag set. Any message still marked streaming is finalized first, so at
// most one streaming message exists in every reachable state.
func (c Conversation) AppendPlaceholder(now time.Time) (Conversation, Message) {
	out := c.clone()
	for i := range out.Messages {
		out.Messages[i].Streaming = false
	}
	msg := Message{
		ID:        out.nextID(now),
		Role:      RoleAssistant,
		CreatedAt: now,
		Streaming: true,
	}
	out.Messages = append(out.Messages, msg)
	return out, msg
}

// ApplyDelta concatenates delta onto the message with the given id.
// A missing id is a no-op: the conversation may have been cleared while
// a stream was still in flight.
func (c Conversation) ApplyDelta(id int64, delta string) Conversation {
	i := c.index(id)
	if i < 0 {
		return c
	}
	out := c.clone()
	out.Messages[i].Content += delta
	return out
}

// Finalize clears the streaming flag on the message with the given id.
// Idempotent; a missing id is a no-op.
func (c Conversation) Finalize(id int64) Conversation {
	i := c.index(id)
	if i < 0 || !c.Messages[i].Streaming {
		return c
	}
	out := c.clone()
	out.Messages[i].Streaming = false
	return out
}

// MarkError finalizes the message with the given id, sets its error flag,
// and replaces its content with a human-readable description.
func (c Conversation) MarkError(id int64, description string) Conversation {
	i := c.index(id)
	if i < 0 {
		return c
	}
	out := c.clone()
	out.Messages[i].Streaming = false
	out.Messages[i].Error = true
	out.Messages[i].Content = description
	return out
}

// Delete removes exactly one message by id, independent of role.
func (c Conversation) Delete(id int64) Conversation {
	i := c.index(id)
	if i < 0 {
		return c
	}
	out := c.clone()
	out.Messages = append(out.Messages[:i], out.Messages[i+1:]...)
	return out
}

// Edit replaces the content of a non-streaming message. Editing a message
// that is still streaming is a no-op: content is append-only until the
// stream finalizes.
func (c Conversation) Edit(id int64, text string) Conversation {
	i := c.index(id)
	if i < 0 || c.Messages[i].Streaming {
		return c
	}
	out := c.clone()
	out.Messages[i].Content = text
	return out
}

// SetFeedback records a like or dislike on the message with the given id.
// The two ratings are mutually exclusive; setting one clears the other.
func (c Conversation) SetFeedback(id int64, fb Feedback) Conversation {
	i := c.index(id)
	if i < 0 {
		return c
	}
	out := c.clone()
	out.Messages[i].Feedback = fb
	return out
}

// TruncateForRegenerate prepares a re-send of the exchange that produced
// the assistant message with the given id. It requires the immediately
// preceding message to have role user; when it does, the returned
// conversation is truncated to just before that user message, which is
// returned so the caller can re-issue the send with its text and file.
// Otherwise (no predecessor, or the predecessor is not a user message,
// e.g. after a delete) the conversation is returned unchanged and ok is
// false.
func (c Conversation) TruncateForRegenerate(assistantID int64) (_ Conversation, user Message, ok bool) {
	i := c.index(assistantID)
	if i <= 0 || c.Messages[i].Role != RoleAssistant {
		return c, Message{}, false
	}
	if c.Messages[i-1].Role != RoleUser {
		return c, Message{}, false
	}
	user = c.Messages[i-1]
	out := Conversation{Messages: make([]Message, i-1)}
	copy(out.Messages, c.Messages[:i-1])
	return out, user, true
}

// Message returns the message with the given id, if present.
func (c Conversation) Message(id int64) (Message, bool) {
	i := c.index(id)
	if i < 0 {
		return Message{}, false
	}
	return c.Messages[i], true
}

// StreamingID returns the id of the message currently streaming, if any.
func (c Conversation) StreamingID() (int64, bool) {
	for _, m := range c.Messages {
		if m.Streaming {
			return m.ID, true
		}
	}
	return 0, false
}
