package parley

import "time"

// Session is one persisted conversation: the ordered message log plus
// list metadata. Title and Preview are derived once, from the first
// completed exchange, and never recomputed afterward, even if the
// messages they came from are later edited or deleted.
type Session struct {
	ID          string
	Title       string
	Preview     string
	Pinned      bool
	LastUpdated time.Time
	Messages    []Message
}

// HasMeta reports whether title/preview derivation already happened.
func (s Session) HasMeta() bool {
	return s.Title != "" || s.Preview != ""
}

// FirstUserText returns the content of the first user message, if any.
// It is the source for title/preview derivation.
func (s Session) FirstUserText() (string, bool) {
	for _, m := range s.Messages {
		if m.Role == RoleUser {
			return m.Content, true
		}
	}
	return "", false
}

// Snapshot returns a deep copy of the session. Export collaborators
// receive snapshots so that later mutations never leak into a rendered
// transcript.
func (s Session) Snapshot() Session {
	out := s
	out.Messages = make([]Message, len(s.Messages))
	copy(out.Messages, s.Messages)
	for i, m := range s.Messages {
		if m.File != nil {
			f := *m.File
			f.Data = append([]byte(nil), m.File.Data...)
			out.Messages[i].File = &f
		}
	}
	return out
}
