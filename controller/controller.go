// Package controller sequences one send operation end-to-end: it opens a
// provider stream, feeds deltas into the conversation reducer, and writes
// the completed exchange through the session store. It is the sole owner
// of cancellation for in-flight streams.
package controller

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/parleychat/parley"
	"github.com/parleychat/parley/store"
)

// stoppedMarker is appended to a partial response when the user cancels
// mid-stream. The partial text stays visible; only the marker signals
// that generation did not run to completion.
const stoppedMarker = "[Stopped]"

// Controller arbitrates at-most-one-active-stream-per-conversation and
// owns the abort lifecycle of every in-flight send.
type Controller struct {
	providers map[parley.ProviderID]parley.Provider
	store     *store.Store
	def       parley.ProviderID
	now       func() time.Time

	mu     sync.Mutex
	active map[string]*handle
}

// handle identifies one in-flight send. It exists from the moment a send
// claims its conversation until the send unwinds; deltas from a stale
// handle are never applied.
type handle struct {
	id     string
	cancel context.CancelFunc
}

// Option configures a [Controller].
type Option func(*Controller)

// WithClock sets the time source used for message timestamps.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) { c.now = now }
}

// New creates a Controller over the given provider set and session store.
// def is the provider used when a send names none.
func New(providers map[parley.ProviderID]parley.Provider, st *store.Store, def parley.ProviderID, opts ...Option) *Controller {
	c := &Controller{
		providers: providers,
		store:     st,
		def:       def,
		now:       time.Now,
		active:    make(map[string]*handle),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// SendOption configures a single Send invocation.
type SendOption func(*sendConfig)

type sendConfig struct {
	provider parley.ProviderID
	model    string
	onConv   func(parley.Conversation)
	onStatus func(string)
}

// WithProvider overrides the controller's default provider for this send.
func WithProvider(id parley.ProviderID) SendOption {
	return func(c *sendConfig) { c.provider = id }
}

// WithModel sets the provider-specific model id for this send.
// Empty string means the provider uses its default model.
func WithModel(model string) SendOption {
	return func(c *sendConfig) { c.model = model }
}

// WithConversationHandler sets a callback invoked after every reducer
// transition with the updated conversation. If nil, updates are silently
// discarded.
func WithConversationHandler(h func(parley.Conversation)) SendOption {
	return func(c *sendConfig) { c.onConv = h }
}

// WithStatusHandler sets a callback for transient status notices such as
// a cold-start wait.
func WithStatusHandler(h func(string)) SendOption {
	return func(c *sendConfig) { c.onStatus = h }
}

// Send executes one send operation and blocks until the placeholder
// reaches a final state. If a stream is already active for this
// conversation it is cancelled before the new send touches the log, so
// no delta of the old stream is ever applied after the new placeholder
// exists.
//
// Adapter and transport failures do not propagate: they finalize the
// placeholder with the error flag and a readable description. The
// returned error is reserved for validation and persistence failures.
func (c *Controller) Send(ctx context.Context, sessionID string, conv parley.Conversation, text string, file *parley.FileRef, opts ...SendOption) (parley.Conversation, error) {
	cfg := sendConfig{provider: c.def}
	for _, opt := range opts {
		opt(&cfg)
	}

	req := parley.Request{Text: text, File: file, Model: cfg.model}
	if err := req.Validate(); err != nil {
		return conv, err
	}

	sctx, cancel := context.WithCancel(ctx)
	h := c.begin(sessionID, cancel)
	defer c.end(sessionID, h)
	defer cancel()

	conv, _ = conv.AppendUser(text, file, c.now())
	c.emit(sessionID, h, &cfg, conv)

	conv, ph := conv.AppendPlaceholder(c.now())
	c.emit(sessionID, h, &cfg, conv)

	provider, ok := c.providers[cfg.provider]
	if !ok {
		conv = conv.MarkError(ph.ID, fmt.Sprintf("Provider %q is not configured.", cfg.provider))
		c.emit(sessionID, h, &cfg, conv)
		return conv, nil
	}

	stream, err := provider.Stream(sctx, req)
	if err != nil {
		conv = c.finishAbnormal(sessionID, h, &cfg, conv, ph.ID, err)
		return conv, nil
	}
	defer stream.Close()

	for {
		evt, nextErr := stream.Next()
		if nextErr == io.EOF {
			break
		}
		if nextErr != nil {
			conv = c.finishAbnormal(sessionID, h, &cfg, conv, ph.ID, nextErr)
			return conv, nil
		}
		switch e := evt.(type) {
		case parley.EventTextDelta:
			conv = conv.ApplyDelta(ph.ID, e.Delta)
			c.emit(sessionID, h, &cfg, conv)
		case parley.EventStatus:
			if cfg.onStatus != nil && c.isCurrent(sessionID, h) {
				cfg.onStatus(e.Message)
			}
		}
	}

	conv = conv.Finalize(ph.ID)
	c.emit(sessionID, h, &cfg, conv)

	// A completed exchange that lost its claim (a newer send took over
	// this conversation) must not clobber the newer send's state.
	if !c.isCurrent(sessionID, h) {
		return conv, nil
	}
	if err := c.store.Save(parley.Session{ID: sessionID, Messages: conv.Messages}); err != nil {
		return conv, err
	}
	return conv, nil
}

// Stop cancels the active stream for the given conversation, if any.
// The partial response stays visible, finalized with a stopped marker.
func (c *Controller) Stop(sessionID string) {
	c.mu.Lock()
	h := c.active[sessionID]
	c.mu.Unlock()
	if h != nil {
		h.cancel()
	}
}

// Regenerate re-issues the exchange that produced the given assistant
// message. The log is truncated and the preceding user message's text and
// file are re-sent. When the preceding message is not a user message
// (e.g. after a delete), this is a no-op and the log is unchanged.
//
// Regenerate re-enters Send; Send's claim logic holds no lock across the
// stream, so calling it from within a conversation handler is safe.
func (c *Controller) Regenerate(ctx context.Context, sessionID string, conv parley.Conversation, assistantID int64, opts ...SendOption) (parley.Conversation, error) {
	trunc, user, ok := conv.TruncateForRegenerate(assistantID)
	if !ok {
		return conv, nil
	}
	return c.Send(ctx, sessionID, trunc, user.Content, user.File, opts...)
}

// Active reports whether a stream is in flight for the conversation.
func (c *Controller) Active(sessionID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.active[sessionID] != nil
}

// begin claims the conversation for a new send, cancelling any prior
// claim first. The swap happens under the lock, so by the time begin
// returns, the old handle can no longer emit.
func (c *Controller) begin(sessionID string, cancel context.CancelFunc) *handle {
	c.mu.Lock()
	defer c.mu.Unlock()
	if old := c.active[sessionID]; old != nil {
		old.cancel()
	}
	h := &handle{id: uuid.NewString(), cancel: cancel}
	c.active[sessionID] = h
	return h
}

// end releases the claim, unless a newer send already took over.
func (c *Controller) end(sessionID string, h *handle) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.active[sessionID] == h {
		delete(c.active, sessionID)
	}
}

func (c *Controller) isCurrent(sessionID string, h *handle) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.active[sessionID] == h
}

// emit forwards the updated conversation to the caller, suppressed once
// the send has lost its claim.
func (c *Controller) emit(sessionID string, h *handle, cfg *sendConfig, conv parley.Conversation) {
	if cfg.onConv == nil {
		return
	}
	if !c.isCurrent(sessionID, h) {
		return
	}
	cfg.onConv(conv)
}

// finishAbnormal resolves the placeholder after a non-EOF stream outcome:
// cancellation finalizes with the stopped marker and skips the store;
// everything else finalizes with the error flag and a readable message.
func (c *Controller) finishAbnormal(sessionID string, h *handle, cfg *sendConfig, conv parley.Conversation, phID int64, err error) parley.Conversation {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		marker := stoppedMarker
		if m, ok := conv.Message(phID); ok && m.Content != "" {
			marker = "\n\n" + stoppedMarker
		}
		conv = conv.ApplyDelta(phID, marker).Finalize(phID)
	} else {
		conv = conv.MarkError(phID, describe(err))
	}
	c.emit(sessionID, h, cfg, conv)
	return conv
}

// describe maps an adapter error to the message shown in place of the
// response.
func describe(err error) string {
	var rl *parley.RateLimitError
	switch {
	case errors.Is(err, parley.ErrAuth):
		return "Authentication failed. Check the API credential for this provider."
	case errors.Is(err, parley.ErrUnsupportedInput):
		return "This provider cannot process the attached file. Remove it or switch providers."
	case errors.As(err, &rl):
		if rl.RetryAfter > 0 {
			return fmt.Sprintf("The provider is rate limiting requests. Try again in %s.", rl.RetryAfter)
		}
		return "The provider is rate limiting requests. Try again shortly."
	default:
		return fmt.Sprintf("The provider encountered an error: %v", err)
	}
}
