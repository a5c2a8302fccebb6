package openrouter

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/parleychat/parley"
)

// Interface compliance check.
var _ parley.Provider = (*Client)(nil)

// Client implements [parley.Provider] for the OpenRouter API.
type Client struct {
	apiKey     string
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

// New creates a new OpenRouter [Client] with the given API key and options.
func New(apiKey string, opts ...Option) *Client {
	c := &Client{
		apiKey:     apiKey,
		baseURL:    defaultBaseURL,
		model:      defaultModel,
		httpClient: http.DefaultClient,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Stream sends a streaming request to the chat completions endpoint and
// returns a [parley.Stream] over its text deltas.
func (c *Client) Stream(ctx context.Context, req parley.Request) (parley.Stream, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("openrouter: %w", err)
	}
	if c.apiKey == "" {
		return nil, fmt.Errorf("openrouter: %w", parley.ErrAuth)
	}

	body, err := json.Marshal(c.buildRequestBody(req))
	if err != nil {
		return nil, fmt.Errorf("openrouter: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+completionsPath, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("openrouter: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	httpReq.Header.Set("X-Title", appTitle)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("openrouter: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		return nil, parseHTTPError(resp)
	}

	return newStream(ctx, resp.Body), nil
}

func (c *Client) buildRequestBody(req parley.Request) apiRequest {
	model := req.Model
	if model == "" {
		model = c.model
	}

	parts := []apiPart{{Type: "text", Text: req.Text}}
	if req.File != nil {
		parts = append(parts, apiPart{
			Type: "image_url",
			ImageURL: &apiImageURL{
				URL: dataURL(req.File),
			},
		})
	}

	return apiRequest{
		Model:    model,
		Messages: []apiMessage{{Role: "user", Content: parts}},
		Stream:   true,
	}
}

// dataURL encodes an attachment as an inline base64 data URL, the form
// vision-capable chat completion models accept.
func dataURL(f *parley.FileRef) string {
	return "data:" + f.MimeType + ";base64," + base64.StdEncoding.EncodeToString(f.Data)
}

func parseHTTPError(resp *http.Response) error {
	switch resp.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return fmt.Errorf("openrouter: HTTP %d: %w", resp.StatusCode, parley.ErrAuth)
	case http.StatusTooManyRequests:
		return fmt.Errorf("openrouter: %w", &parley.RateLimitError{RetryAfter: retryAfter(resp)})
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("openrouter: HTTP %d (failed to read body: %w)", resp.StatusCode, err)
	}
	var apiErr apiErrorResponse
	if err := json.Unmarshal(body, &apiErr); err != nil || apiErr.Error.Message == "" {
		return fmt.Errorf("openrouter: HTTP %d: %s", resp.StatusCode, string(body))
	}
	return fmt.Errorf("openrouter: %s", apiErr.Error.Message)
}

func retryAfter(resp *http.Response) time.Duration {
	secs, err := strconv.Atoi(resp.Header.Get("Retry-After"))
	if err != nil || secs < 0 {
		return 0
	}
	return time.Duration(secs) * time.Second
}
