package gemini

import (
	"context"
	"fmt"

	"github.com/parleychat/parley"
	"google.golang.org/genai"
)

// Interface compliance checks.
var (
	_ parley.Provider    = (*Client)(nil)
	_ parley.Transcriber = (*Client)(nil)
)

// Client implements [parley.Provider] for the Google Gemini API.
type Client struct {
	client *genai.Client
	model  string
}

// Option configures a [Client].
type Option func(*Client)

// WithModel sets the default model ID.
func WithModel(model string) Option {
	return func(c *Client) { c.model = model }
}

// New creates a new Gemini [Client] with the given API key and options.
func New(ctx context.Context, apiKey string, opts ...Option) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini: %w", parley.ErrAuth)
	}
	gc, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("gemini: %w", err)
	}
	c := &Client{
		client: gc,
		model:  defaultModel,
	}
	for _, o := range opts {
		o(c)
	}
	return c, nil
}

// Stream sends a streaming request to the Gemini API and returns a
// [parley.Stream] over its text deltas.
func (c *Client) Stream(ctx context.Context, req parley.Request) (parley.Stream, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("gemini: %w", err)
	}

	model := req.Model
	if model == "" {
		model = c.model
	}

	iter := c.client.Models.GenerateContentStream(ctx, model, BuildContents(req), buildConfig())
	return newStream(ctx, iter), nil
}

func buildConfig() *genai.GenerateContentConfig {
	return &genai.GenerateContentConfig{
		MaxOutputTokens: defaultMaxTokens,
	}
}

// Transcribe converts a voice utterance into text using a non-streaming
// generation call with the audio inlined.
func (c *Client) Transcribe(ctx context.Context, audio []byte, mimeType string) (string, error) {
	resp, err := c.client.Models.GenerateContent(ctx, c.model, BuildTranscribeContents(audio, mimeType), nil)
	if err != nil {
		return "", fmt.Errorf("gemini: %w", err)
	}
	return resp.Text(), nil
}

// BuildTranscribeContents builds the transcription request: the audio as
// an inline-data part followed by the instruction.
// Exported for testing.
func BuildTranscribeContents(audio []byte, mimeType string) []*genai.Content {
	return []*genai.Content{{
		Role: "user",
		Parts: []*genai.Part{
			{InlineData: &genai.Blob{MIMEType: mimeType, Data: audio}},
			{Text: "Transcribe this audio verbatim. Reply with the transcript only."},
		},
	}}
}

// BuildContents converts a request into genai Contents: an optional
// inline-data part for the attachment, then the text part.
// Exported for testing.
func BuildContents(req parley.Request) []*genai.Content {
	var parts []*genai.Part
	if req.File != nil {
		parts = append(parts, &genai.Part{
			InlineData: &genai.Blob{
				MIMEType: req.File.MimeType,
				Data:     req.File.Data,
			},
		})
	}
	parts = append(parts, &genai.Part{Text: req.Text})

	return []*genai.Content{{
		Role:  "user",
		Parts: parts,
	}}
}
