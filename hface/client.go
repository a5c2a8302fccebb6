package hface

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/parleychat/parley"
)

// Interface compliance check.
var _ parley.Provider = (*Client)(nil)

// Sleeper waits out backend-mandated delays. Injectable so the retry
// loop can be tested without real time passing.
type Sleeper interface {
	Sleep(ctx context.Context, d time.Duration) error
}

// SleeperFunc adapts a function to the Sleeper interface.
type SleeperFunc func(ctx context.Context, d time.Duration) error

// Sleep calls f.
func (f SleeperFunc) Sleep(ctx context.Context, d time.Duration) error {
	return f(ctx, d)
}

// realSleeper waits on a timer, honoring context cancellation.
func realSleeper(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Client implements [parley.Provider] for the Hugging Face inference API.
type Client struct {
	apiKey     string
	baseURL    string
	model      string
	httpClient *http.Client
	sleeper    Sleeper
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

// WithSleeper sets the delay implementation used between retries.
func WithSleeper(s Sleeper) Option {
	return func(c *Client) { c.sleeper = s }
}

// New creates a new Hugging Face [Client] with the given API token and
// options.
func New(apiKey string, opts ...Option) *Client {
	c := &Client{
		apiKey:     apiKey,
		baseURL:    defaultBaseURL,
		model:      defaultModel,
		httpClient: http.DefaultClient,
		sleeper:    SleeperFunc(realSleeper),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Stream returns a [parley.Stream] over the model's token deltas. The
// request is not issued until the first Next() call, so cold-start
// status events and waits happen inside the stream's pull loop.
func (c *Client) Stream(ctx context.Context, req parley.Request) (parley.Stream, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("hface: %w", err)
	}
	if c.apiKey == "" {
		return nil, fmt.Errorf("hface: %w", parley.ErrAuth)
	}
	if req.File != nil {
		return nil, fmt.Errorf("hface: file attachments: %w", parley.ErrUnsupportedInput)
	}

	model := req.Model
	if model == "" {
		model = c.model
	}
	return newStream(ctx, c, model, req.Text), nil
}
