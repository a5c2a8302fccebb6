package parley

import "context"

// Transcriber converts a voice utterance into text for the pending input.
// It is an optional capability: a nil Transcriber leaves the text input
// path unaffected.
type Transcriber interface {
	Transcribe(ctx context.Context, audio []byte, mimeType string) (string, error)
}
