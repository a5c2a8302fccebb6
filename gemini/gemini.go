// Package gemini implements [parley.Provider] for the Google Gemini API.
//
// It wraps the google.golang.org/genai SDK, which yields discrete text
// pieces natively. Streaming uses the SDK's iter.Seq2 iterator, wrapped
// into the pull-based [parley.Stream] interface. Attachments travel as an
// inline binary part alongside the text part of a single request.
package gemini

const (
	defaultModel     = "gemini-3-flash-preview"
	defaultMaxTokens = 8192
)
