// Package store maintains the durable session collection. Every mutation
// writes the whole collection through to storage; on construction the
// collection is read back once, with missing or corrupt blobs treated as
// an empty collection rather than a fatal error.
package store

import (
	"fmt"
	"sort"
	"time"

	"github.com/parleychat/parley"
	pjson "github.com/parleychat/parley/json"
	"github.com/parleychat/parley/storage"
	"github.com/parleychat/parley/textutil"
)

const (
	titleWidth   = 40
	previewWidth = 50
)

// Store is the session collection with write-through persistence.
// It is not safe for concurrent use; all mutations arrive on the
// application's single logical thread.
type Store struct {
	st       storage.Storage
	sessions []parley.Session
	now      func() time.Time
}

// Option configures a [Store].
type Option func(*Store)

// WithClock sets the time source. Useful for deterministic ordering in tests.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// New creates a Store over st and loads the persisted collection.
// A missing or corrupt blob yields an empty collection. Stale streaming
// flags are cleared on load: no message may survive a restart as
// permanently streaming.
func New(st storage.Storage, opts ...Option) *Store {
	s := &Store{st: st, now: time.Now}
	for _, o := range opts {
		o(s)
	}

	blob, ok, err := st.Read(storage.KeySessions)
	if err != nil || !ok {
		return s
	}
	sessions, err := pjson.UnmarshalCollection(blob)
	if err != nil {
		return s
	}
	for i := range sessions {
		for j := range sessions[i].Messages {
			sessions[i].Messages[j].Streaming = false
		}
	}
	s.sessions = sessions
	return s
}

// List returns the sessions ordered for display: pinned sessions first,
// stable among themselves, then unpinned by last-updated descending.
func (s *Store) List() []parley.Session {
	out := make([]parley.Session, len(s.sessions))
	copy(out, s.sessions)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Pinned != out[j].Pinned {
			return out[i].Pinned
		}
		if out[i].Pinned {
			// Pinned sessions keep their relative order.
			return false
		}
		return out[i].LastUpdated.After(out[j].LastUpdated)
	})
	return out
}

// Load returns the full session by id, or ErrSessionNotFound.
func (s *Store) Load(id string) (parley.Session, error) {
	i := s.index(id)
	if i < 0 {
		return parley.Session{}, fmt.Errorf("load %q: %w", id, parley.ErrSessionNotFound)
	}
	return s.sessions[i].Snapshot(), nil
}

// Save upserts the session and writes the collection through. Title and
// preview are derived exactly once, from the first user message present
// at the session's first completed exchange, and never recomputed.
func (s *Store) Save(sess parley.Session) error {
	sess.LastUpdated = s.now()

	if i := s.index(sess.ID); i >= 0 {
		// Derived metadata is immutable once set.
		if s.sessions[i].HasMeta() {
			sess.Title = s.sessions[i].Title
			sess.Preview = s.sessions[i].Preview
		} else {
			deriveMeta(&sess)
		}
		sess.Pinned = s.sessions[i].Pinned
		s.sessions[i] = sess
	} else {
		deriveMeta(&sess)
		s.sessions = append(s.sessions, sess)
	}
	return s.persist()
}

// Delete removes the session by id and writes the collection through.
// Deleting an unknown id is a no-op.
func (s *Store) Delete(id string) error {
	i := s.index(id)
	if i < 0 {
		return nil
	}
	s.sessions = append(s.sessions[:i], s.sessions[i+1:]...)
	return s.persist()
}

// Rename sets the session's display title. It is the only operation that
// changes a title after derivation.
func (s *Store) Rename(id, title string) error {
	i := s.index(id)
	if i < 0 {
		return fmt.Errorf("rename %q: %w", id, parley.ErrSessionNotFound)
	}
	s.sessions[i].Title = title
	return s.persist()
}

// TogglePin flips the session's pinned flag. List re-sorts accordingly.
func (s *Store) TogglePin(id string) error {
	i := s.index(id)
	if i < 0 {
		return fmt.Errorf("pin %q: %w", id, parley.ErrSessionNotFound)
	}
	s.sessions[i].Pinned = !s.sessions[i].Pinned
	return s.persist()
}

// DeleteMessage removes one message from the persisted copy of a session.
// Unknown session or message ids are no-ops.
func (s *Store) DeleteMessage(sessionID string, messageID int64) error {
	i := s.index(sessionID)
	if i < 0 {
		return nil
	}
	conv := parley.Conversation{Messages: s.sessions[i].Messages}
	s.sessions[i].Messages = conv.Delete(messageID).Messages
	return s.persist()
}

func (s *Store) index(id string) int {
	for i, sess := range s.sessions {
		if sess.ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) persist() error {
	blob, err := pjson.MarshalCollection(s.sessions)
	if err != nil {
		return fmt.Errorf("marshal sessions: %w", err)
	}
	if err := s.st.Write(storage.KeySessions, blob); err != nil {
		return fmt.Errorf("persist sessions: %w", err)
	}
	return nil
}

func deriveMeta(sess *parley.Session) {
	if sess.HasMeta() || len(sess.Messages) == 0 {
		return
	}
	text, ok := sess.FirstUserText()
	if !ok {
		return
	}
	first := textutil.FirstLine(text)
	sess.Title = textutil.Truncate(first, titleWidth)
	sess.Preview = textutil.Truncate(first, previewWidth)
}
