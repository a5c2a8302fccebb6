package puter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"

	"github.com/parleychat/parley"
)

// Interface compliance check.
var _ parley.Provider = (*Client)(nil)

// Client implements [parley.Provider] for the Puter AI chat endpoint.
// No credential is required; this is the backend the app falls back to
// when no configured provider has one.
type Client struct {
	baseURL    string
	model      string
	httpClient *http.Client
}

// Option configures a [Client].
type Option func(*Client)

// WithBaseURL sets the API base URL. Useful for testing with httptest.
func WithBaseURL(url string) Option {
	return func(c *Client) { c.baseURL = url }
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithModel sets the default model ID.
func WithModel(model string) Option {
	return func(c *Client) { c.model = model }
}

// New creates a new Puter [Client] with the given options.
func New(opts ...Option) *Client {
	c := &Client{
		baseURL:    defaultBaseURL,
		model:      defaultModel,
		httpClient: http.DefaultClient,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Stream sends the chat request and returns a [parley.Stream] over the
// response, whichever shape the backend chose to answer in.
func (c *Client) Stream(ctx context.Context, req parley.Request) (parley.Stream, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("puter: %w", err)
	}

	model := req.Model
	if model == "" {
		model = c.model
	}

	body, err := json.Marshal(apiRequest{
		Model:  model,
		Prompt: buildPrompt(req),
		Stream: true,
	})
	if err != nil {
		return nil, fmt.Errorf("puter: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+chatPath, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("puter: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("puter: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		raw, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("puter: HTTP %d: %s", resp.StatusCode, string(raw))
	}

	return newStream(ctx, resp.Body, detectShape(resp.Header.Get("Content-Type"))), nil
}

// buildPrompt folds an attachment into the prompt as a note. The backend
// takes text only, so the send goes through without the file data.
func buildPrompt(req parley.Request) string {
	if req.File == nil {
		return req.Text
	}
	var b strings.Builder
	fmt.Fprintf(&b, "[System: the user attached a file named %s (%s), but direct file analysis is unavailable on this backend.]\n\n",
		req.File.Name, req.File.MimeType)
	b.WriteString(req.Text)
	return b.String()
}

// detectShape probes the Content-Type header. The body alone does not
// say which shape the backend chose.
func detectShape(contentType string) responseShape {
	mt, _, err := mime.ParseMediaType(contentType)
	if err == nil && mt == ndjsonContentType {
		return shapeStreamed
	}
	return shapeSingle
}
