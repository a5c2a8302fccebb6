package bubbletea_test

import (
	"context"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/parleychat/parley"
	bt "github.com/parleychat/parley/bubbletea"
	"github.com/parleychat/parley/mock"
	"github.com/parleychat/parley/storage"
	"github.com/parleychat/parley/store"
	"github.com/stretchr/testify/require"
)

// memStorage returns a map-backed mock storage.
func memStorage() (*mock.Storage, map[string][]byte) {
	m := make(map[string][]byte)
	st := &mock.Storage{
		ReadFn: func(key string) ([]byte, bool, error) {
			blob, ok := m[key]
			return blob, ok, nil
		},
		WriteFn: func(key string, blob []byte) error {
			m[key] = blob
			return nil
		},
	}
	return st, m
}

// ticker returns a clock that advances one second per call.
func ticker() func() time.Time {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	return func() time.Time {
		now = now.Add(time.Second)
		return now
	}
}

// fixtures builds a fresh session store over in-memory blob storage.
func fixtures() (*store.Store, storage.Storage) {
	raw, _ := memStorage()
	return store.New(raw, store.WithClock(ticker())), raw
}

// nopSend echoes the conversation back unchanged.
func nopSend(_ context.Context, req bt.SendRequest, _ bt.Events) (parley.Conversation, error) {
	return req.Conversation, nil
}

func nopRegen(_ context.Context, req bt.RegenerateRequest, _ bt.Events) (parley.Conversation, error) {
	return req.Conversation, nil
}

func testConfig() bt.Config {
	return bt.Config{
		Provider:  parley.ProviderGemini,
		Providers: []parley.ProviderID{parley.ProviderGemini, parley.ProviderPuter},
	}
}

// initModel creates a model over fresh fixtures and sends a WindowSizeMsg
// to initialize the viewport.
func initModel(t *testing.T, send bt.SendFunc, regen bt.RegenerateFunc) bt.Model {
	t.Helper()
	sessions, raw := fixtures()
	return initModelWithStore(t, send, regen, sessions, raw)
}

func initModelWithStore(t *testing.T, send bt.SendFunc, regen bt.RegenerateFunc, sessions *store.Store, raw storage.Storage) bt.Model {
	t.Helper()
	m := bt.New(send, regen, sessions, raw, parley.DarkTheme(), testConfig())
	return updateModel(t, m, tea.WindowSizeMsg{Width: 80, Height: 24})
}

// updateModel sends a message and returns the updated Model.
func updateModel(t *testing.T, m bt.Model, msg tea.Msg) bt.Model {
	t.Helper()
	updated, _ := m.Update(msg)
	model, ok := updated.(bt.Model)
	require.True(t, ok)
	return model
}

// submit types text into the input and presses Enter.
func submit(t *testing.T, m bt.Model, text string) bt.Model {
	t.Helper()
	m.Input.SetValue(text)
	return updateModel(t, m, tea.KeyMsg{Type: tea.KeyEnter})
}
