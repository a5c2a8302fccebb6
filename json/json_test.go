package json_test

import (
	"testing"
	"time"

	"github.com/parleychat/parley"
	pjson "github.com/parleychat/parley/json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sample() []parley.Session {
	created := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	return []parley.Session{
		{
			ID:          "s1",
			Title:       "First chat",
			Preview:     "hello there",
			Pinned:      true,
			LastUpdated: created.Add(time.Hour),
			Messages: []parley.Message{
				{ID: 1, Role: parley.RoleUser, Content: "hello there", CreatedAt: created},
				{
					ID: 2, Role: parley.RoleAssistant, Content: "hi!",
					CreatedAt: created.Add(time.Second),
					Feedback:  parley.FeedbackLike,
				},
				{
					ID: 3, Role: parley.RoleUser, Content: "look at this",
					CreatedAt: created.Add(2 * time.Second),
					File: &parley.FileRef{
						Name:     "pic.png",
						MimeType: "image/png",
						Data:     []byte{0x89, 0x50, 0x4e, 0x47},
					},
				},
			},
		},
		{ID: "s2", LastUpdated: created, Messages: []parley.Message{}},
	}
}

func TestCollection_RoundTrip(t *testing.T) {
	t.Parallel()

	sessions := sample()
	blob, err := pjson.MarshalCollection(sessions)
	require.NoError(t, err)

	got, err := pjson.UnmarshalCollection(blob)
	require.NoError(t, err)
	assert.Equal(t, sessions, got)
}

func TestCollection_StreamingFlagSurvivesSerialization(t *testing.T) {
	t.Parallel()

	// The codec is lossless; clearing stale streaming flags is the
	// store's job at load time, not the codec's.
	sessions := []parley.Session{{
		ID: "s1",
		Messages: []parley.Message{
			{ID: 1, Role: parley.RoleAssistant, Content: "partial", Streaming: true},
		},
	}}
	blob, err := pjson.MarshalCollection(sessions)
	require.NoError(t, err)

	got, err := pjson.UnmarshalCollection(blob)
	require.NoError(t, err)
	assert.True(t, got[0].Messages[0].Streaming)
}

func TestUnmarshalCollection_Errors(t *testing.T) {
	t.Parallel()

	t.Run("malformed JSON", func(t *testing.T) {
		t.Parallel()
		_, err := pjson.UnmarshalCollection([]byte("{not json"))
		assert.Error(t, err)
	})

	t.Run("unsupported version", func(t *testing.T) {
		t.Parallel()
		_, err := pjson.UnmarshalCollection([]byte(`{"version":2,"sessions":[]}`))
		assert.ErrorContains(t, err, "version")
	})

	t.Run("unknown feedback value", func(t *testing.T) {
		t.Parallel()
		blob := []byte(`{"version":1,"sessions":[{"id":"s","messages":[
			{"id":1,"role":"assistant","content":"x","timestamp":"2025-06-01T12:00:00Z","feedback":"meh"}
		]}]}`)
		_, err := pjson.UnmarshalCollection(blob)
		assert.ErrorContains(t, err, "feedback")
	})
}

func TestSession_RoundTrip(t *testing.T) {
	t.Parallel()

	sess := sample()[0]
	blob, err := pjson.MarshalSession(sess)
	require.NoError(t, err)

	got, err := pjson.UnmarshalSession(blob)
	require.NoError(t, err)
	assert.Equal(t, sess, got)
}
