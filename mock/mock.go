// Package mock provides test doubles for parley interfaces using
// function fields.
package mock

import (
	"context"
	"time"

	"github.com/parleychat/parley"
	"github.com/parleychat/parley/storage"
)

// Interface compliance checks.
var (
	_ parley.Provider    = (*Provider)(nil)
	_ parley.Stream      = (*Stream)(nil)
	_ parley.Transcriber = (*Transcriber)(nil)
	_ storage.Storage    = (*Storage)(nil)
)

// Provider is a test double for parley.Provider.
// Set StreamFn before calling Stream.
type Provider struct {
	StreamFn func(ctx context.Context, req parley.Request) (parley.Stream, error)
}

// Stream delegates to StreamFn.
func (p *Provider) Stream(ctx context.Context, req parley.Request) (parley.Stream, error) {
	return p.StreamFn(ctx, req)
}

// Stream is a test double for parley.Stream.
// Set the function fields for the methods you need. NextFn panics when
// nil to catch missing setup. StateFn, TextFn, and CloseFn are nil-safe
// (zero value and no-op) because test code commonly calls
// defer stream.Close() and these rarely need custom behavior.
type Stream struct {
	NextFn  func() (parley.Event, error)
	StateFn func() parley.StreamState
	TextFn  func() string
	CloseFn func() error
}

// Next delegates to NextFn.
func (s *Stream) Next() (parley.Event, error) {
	return s.NextFn()
}

// State delegates to StateFn. Returns StreamStateNew when StateFn is nil.
func (s *Stream) State() parley.StreamState {
	if s.StateFn == nil {
		return parley.StreamStateNew
	}
	return s.StateFn()
}

// Text delegates to TextFn. Returns "" when TextFn is nil.
func (s *Stream) Text() string {
	if s.TextFn == nil {
		return ""
	}
	return s.TextFn()
}

// Close delegates to CloseFn. Returns nil when CloseFn is not set.
func (s *Stream) Close() error {
	if s.CloseFn == nil {
		return nil
	}
	return s.CloseFn()
}

// Storage is a test double for storage.Storage.
// Set the function fields for the methods you need.
type Storage struct {
	ReadFn  func(key string) ([]byte, bool, error)
	WriteFn func(key string, blob []byte) error
}

// Read delegates to ReadFn.
func (s *Storage) Read(key string) ([]byte, bool, error) {
	return s.ReadFn(key)
}

// Write delegates to WriteFn.
func (s *Storage) Write(key string, blob []byte) error {
	return s.WriteFn(key, blob)
}

// Transcriber is a test double for parley.Transcriber.
type Transcriber struct {
	TranscribeFn func(ctx context.Context, audio []byte, mimeType string) (string, error)
}

// Transcribe delegates to TranscribeFn.
func (t *Transcriber) Transcribe(ctx context.Context, audio []byte, mimeType string) (string, error) {
	return t.TranscribeFn(ctx, audio, mimeType)
}

// Sleeper records requested delays instead of sleeping.
type Sleeper struct {
	Slept []time.Duration
	Err   error
}

// Sleep appends d to Slept and returns Err.
func (s *Sleeper) Sleep(ctx context.Context, d time.Duration) error {
	s.Slept = append(s.Slept, d)
	return s.Err
}
