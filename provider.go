package parley

import (
	"context"
	"fmt"
	"strings"
)

// ProviderID identifies one of the fixed set of backend adapters.
type ProviderID string

const (
	ProviderGemini     ProviderID = "gemini"
	ProviderOpenRouter ProviderID = "openrouter"
	ProviderHFace      ProviderID = "hface"
	ProviderPuter      ProviderID = "puter"
)

// Valid reports whether id names a known provider.
func (id ProviderID) Valid() bool {
	switch id {
	case ProviderGemini, ProviderOpenRouter, ProviderHFace, ProviderPuter:
		return true
	}
	return false
}

// Provider is a strategy pattern interface for text-generation backends.
// Each implementation translates its wire protocol into the uniform
// delta sequence exposed by Stream.
type Provider interface {
	Stream(ctx context.Context, req Request) (Stream, error)
}

// Request carries one user turn to a provider.
// Model is provider-specific; empty means the provider default.
type Request struct {
	Text  string
	File  *FileRef
	Model string
}

// Validate checks universal constraints on Request.
// Provider implementations may apply additional provider-specific validation.
func (r Request) Validate() error {
	if strings.TrimSpace(r.Text) == "" && r.File == nil {
		return fmt.Errorf("empty request: %w", ErrValidation)
	}
	return nil
}
