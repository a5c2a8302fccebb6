package store

import (
	"encoding/json"
	"fmt"

	"github.com/parleychat/parley"
	"github.com/parleychat/parley/storage"
)

// Settings is the persisted provider/model selection. It applies to the
// next send; it is never recorded per-message.
type Settings struct {
	Provider parley.ProviderID `json:"provider"`
	Model    string            `json:"model,omitempty"`
}

// LoadSettings reads the persisted selection. Absent or malformed blobs
// and unknown provider ids fall back to the given default.
func LoadSettings(st storage.Storage, def Settings) Settings {
	blob, ok, err := st.Read(storage.KeySettings)
	if err != nil || !ok {
		return def
	}
	var s Settings
	if err := json.Unmarshal(blob, &s); err != nil || !s.Provider.Valid() {
		return def
	}
	return s
}

// SaveSettings writes the selection through to storage.
func SaveSettings(st storage.Storage, s Settings) error {
	blob, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}
	if err := st.Write(storage.KeySettings, blob); err != nil {
		return fmt.Errorf("persist settings: %w", err)
	}
	return nil
}

// LoadTheme reads the persisted theme preference, falling back to the
// dark theme for absent or malformed blobs.
func LoadTheme(st storage.Storage) parley.Theme {
	blob, ok, err := st.Read(storage.KeyTheme)
	if err != nil || !ok {
		return parley.DarkTheme()
	}
	var name string
	if err := json.Unmarshal(blob, &name); err != nil {
		return parley.DarkTheme()
	}
	return parley.ThemeByName(name)
}

// SaveTheme writes the theme preference through to storage.
func SaveTheme(st storage.Storage, theme parley.Theme) error {
	blob, err := json.Marshal(theme.Name)
	if err != nil {
		return fmt.Errorf("marshal theme: %w", err)
	}
	if err := st.Write(storage.KeyTheme, blob); err != nil {
		return fmt.Errorf("persist theme: %w", err)
	}
	return nil
}
