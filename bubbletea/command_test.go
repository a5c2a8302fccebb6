package bubbletea_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/parleychat/parley"
	bt "github.com/parleychat/parley/bubbletea"
	"github.com/parleychat/parley/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommand_Help(t *testing.T) {
	t.Parallel()

	m := initModel(t, nopSend, nopRegen)
	m = submit(t, m, "/help")

	assert.False(t, m.Running())
	assert.Contains(t, m.View(), "/attach")
	assert.Contains(t, m.View(), "/export")
}

func TestCommand_Unknown(t *testing.T) {
	t.Parallel()

	m := initModel(t, nopSend, nopRegen)
	m = submit(t, m, "/frobnicate")
	assert.Contains(t, m.View(), "unknown command")
}

func TestCommand_Provider(t *testing.T) {
	t.Parallel()

	t.Run("switches to a configured provider", func(t *testing.T) {
		t.Parallel()

		sessions, raw := fixtures()
		m := initModelWithStore(t, nopSend, nopRegen, sessions, raw)
		m = submit(t, m, "/provider puter")

		assert.Contains(t, m.View(), "Provider set to puter.")

		// The choice is persisted for the next start.
		def := store.Settings{Provider: parley.ProviderGemini}
		got := store.LoadSettings(raw, def)
		assert.Equal(t, parley.ProviderPuter, got.Provider)
		assert.Empty(t, got.Model, "switching providers resets the model")
	})

	t.Run("rejects an unconfigured provider", func(t *testing.T) {
		t.Parallel()

		m := initModel(t, nopSend, nopRegen)
		m = submit(t, m, "/provider hface")
		assert.Contains(t, m.View(), "not configured")
	})
}

func TestCommand_Model(t *testing.T) {
	t.Parallel()

	sessions, raw := fixtures()
	m := initModelWithStore(t, nopSend, nopRegen, sessions, raw)

	m = submit(t, m, "/model gemini-3-flash-preview")
	assert.Contains(t, m.View(), "Model set to gemini-3-flash-preview.")

	got := store.LoadSettings(raw, store.Settings{})
	assert.Equal(t, "gemini-3-flash-preview", got.Model)

	m = submit(t, m, "/model")
	assert.Contains(t, m.View(), "Model reset to the provider default.")
}

func TestCommand_Theme(t *testing.T) {
	t.Parallel()

	t.Run("switches and persists", func(t *testing.T) {
		t.Parallel()

		sessions, raw := fixtures()
		m := initModelWithStore(t, nopSend, nopRegen, sessions, raw)
		m = submit(t, m, "/theme light")

		assert.Contains(t, m.View(), "Theme set to light.")
		assert.Equal(t, parley.LightTheme(), store.LoadTheme(raw))
	})

	t.Run("requires an argument", func(t *testing.T) {
		t.Parallel()

		m := initModel(t, nopSend, nopRegen)
		m = submit(t, m, "/theme")
		assert.Contains(t, m.View(), "usage: /theme")
	})
}

func TestCommand_Rename(t *testing.T) {
	t.Parallel()

	t.Run("renames the open session", func(t *testing.T) {
		t.Parallel()

		sessions, raw := fixtures()
		m := initModelWithStore(t, nopSend, nopRegen, sessions, raw)
		require.NoError(t, sessions.Save(parley.Session{ID: m.SessionID(), Messages: []parley.Message{
			{ID: 1, Role: parley.RoleUser, Content: "hi"},
		}}))

		m = submit(t, m, "/rename Travel plans")
		assert.Contains(t, m.View(), `Renamed to "Travel plans".`)

		got, err := sessions.Load(m.SessionID())
		require.NoError(t, err)
		assert.Equal(t, "Travel plans", got.Title)
	})

	t.Run("fails before the session is persisted", func(t *testing.T) {
		t.Parallel()

		m := initModel(t, nopSend, nopRegen)
		m = submit(t, m, "/rename Anything")
		assert.Error(t, m.Err())
	})
}

func TestCommand_Feedback(t *testing.T) {
	t.Parallel()

	conv := parley.Conversation{Messages: []parley.Message{
		{ID: 1, Role: parley.RoleUser, Content: "question"},
		{ID: 2, Role: parley.RoleAssistant, Content: "answer"},
	}}

	t.Run("like targets the last assistant message", func(t *testing.T) {
		t.Parallel()

		m := initModel(t, nopSend, nopRegen)
		m = updateModel(t, m, bt.ChatDoneMsg{Conversation: conv})

		m = submit(t, m, "/like")
		msg, ok := m.Conversation().Message(2)
		require.True(t, ok)
		assert.Equal(t, parley.FeedbackLike, msg.Feedback)
	})

	t.Run("same rating twice clears it", func(t *testing.T) {
		t.Parallel()

		m := initModel(t, nopSend, nopRegen)
		m = updateModel(t, m, bt.ChatDoneMsg{Conversation: conv})

		m = submit(t, m, "/dislike")
		m = submit(t, m, "/dislike")
		msg, ok := m.Conversation().Message(2)
		require.True(t, ok)
		assert.Equal(t, parley.FeedbackNone, msg.Feedback)
	})

	t.Run("no assistant message to rate", func(t *testing.T) {
		t.Parallel()

		m := initModel(t, nopSend, nopRegen)
		m = submit(t, m, "/like")
		assert.Error(t, m.Err())
	})
}

func TestCommand_Edit(t *testing.T) {
	t.Parallel()

	m := initModel(t, nopSend, nopRegen)
	m = updateModel(t, m, bt.ChatDoneMsg{Conversation: parley.Conversation{Messages: []parley.Message{
		{ID: 1, Role: parley.RoleUser, Content: "orignal tpyo"},
	}}})

	m = submit(t, m, "/edit 1 original text")
	msg, ok := m.Conversation().Message(1)
	require.True(t, ok)
	assert.Equal(t, "original text", msg.Content)
	assert.Contains(t, m.View(), "original text")
}

func TestCommand_DeleteMessage(t *testing.T) {
	t.Parallel()

	m := initModel(t, nopSend, nopRegen)
	m = updateModel(t, m, bt.ChatDoneMsg{Conversation: parley.Conversation{Messages: []parley.Message{
		{ID: 1, Role: parley.RoleUser, Content: "keep"},
		{ID: 2, Role: parley.RoleAssistant, Content: "drop"},
	}}})

	m = submit(t, m, "/delmsg 2")
	_, ok := m.Conversation().Message(2)
	assert.False(t, ok)
	assert.NotContains(t, m.View(), "drop")
}

func TestCommand_Attach(t *testing.T) {
	t.Parallel()

	t.Run("loads a file for the next send", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "notes.txt")
		require.NoError(t, os.WriteFile(path, []byte("hello"), 0o644))

		m := initModel(t, nopSend, nopRegen)
		m = submit(t, m, "/attach "+path)
		assert.Contains(t, m.View(), "Attached notes.txt")
	})

	t.Run("requires an argument", func(t *testing.T) {
		t.Parallel()

		m := initModel(t, nopSend, nopRegen)
		m = submit(t, m, "/attach")
		assert.Contains(t, m.View(), "usage: /attach")
	})
}

func TestCommand_ExportEmpty(t *testing.T) {
	t.Parallel()

	m := initModel(t, nopSend, nopRegen)
	m = submit(t, m, "/export")
	assert.Contains(t, m.View(), "nothing to export")
}

func TestCommand_DeleteSession(t *testing.T) {
	t.Parallel()

	sessions, raw := fixtures()
	m := initModelWithStore(t, nopSend, nopRegen, sessions, raw)
	require.NoError(t, sessions.Save(parley.Session{ID: m.SessionID(), Messages: []parley.Message{
		{ID: 1, Role: parley.RoleUser, Content: "hi"},
	}}))
	oldID := m.SessionID()

	m = submit(t, m, "/delete")
	assert.Contains(t, m.View(), "Session deleted.")
	assert.NotEqual(t, oldID, m.SessionID())
	assert.Empty(t, sessions.List())
}
