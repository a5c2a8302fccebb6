package hface

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/parleychat/parley"
)

// stream implements [parley.Stream] over the token SSE protocol, driving
// the cold-start/rate-limit retry loop from inside Next(). The loop is
// explicit state, not recursion: pendingStatus is emitted first, then
// pendingWait is slept, then the request is re-issued.
type stream struct {
	ctx    context.Context
	client *Client
	model  string
	input  string

	state parley.StreamState
	text  strings.Builder
	err   error

	body    io.ReadCloser
	scanner *bufio.Scanner

	pendingStatus string
	pendingWait   time.Duration
}

// Interface compliance check.
var _ parley.Stream = (*stream)(nil)

func newStream(ctx context.Context, client *Client, model, input string) *stream {
	return &stream{
		ctx:    ctx,
		client: client,
		model:  model,
		input:  input,
		state:  parley.StreamStateNew,
	}
}

// Next returns the next event: a status notice when the backend asked us
// to wait, otherwise the next token delta. Returns io.EOF when the token
// stream ends.
func (s *stream) Next() (parley.Event, error) {
	switch s.state {
	case parley.StreamStateComplete:
		return nil, io.EOF
	case parley.StreamStateError:
		return nil, s.err
	case parley.StreamStateClosed:
		return nil, fmt.Errorf("hface: %w", parley.ErrStreamClosed)
	}

	for {
		if err := s.ctx.Err(); err != nil {
			s.terminate(err)
			return nil, s.err
		}

		if s.body == nil {
			if s.pendingStatus != "" {
				evt := parley.EventStatus{Message: s.pendingStatus}
				s.pendingStatus = ""
				s.state = parley.StreamStateStreaming
				return evt, nil
			}
			if s.pendingWait > 0 {
				wait := s.pendingWait
				s.pendingWait = 0
				if err := s.client.sleeper.Sleep(s.ctx, wait); err != nil {
					s.terminate(err)
					return nil, s.err
				}
			}
			if err := s.connect(); err != nil {
				s.terminate(err)
				return nil, s.err
			}
			// connect either opened a body or scheduled a retry.
			continue
		}

		if !s.scanner.Scan() {
			if err := s.scanner.Err(); err != nil {
				s.terminate(fmt.Errorf("hface: %w", err))
				return nil, s.err
			}
			s.state = parley.StreamStateComplete
			return nil, io.EOF
		}
		s.state = parley.StreamStateStreaming

		line := strings.TrimSpace(s.scanner.Text())
		data, ok := strings.CutPrefix(line, "data:")
		if !ok {
			continue
		}
		var tok sseToken
		if err := json.Unmarshal([]byte(strings.TrimSpace(data)), &tok); err != nil {
			continue
		}
		if tok.Token.Special || tok.Token.Text == "" {
			continue
		}
		s.text.WriteString(tok.Token.Text)
		return parley.EventTextDelta{Delta: tok.Token.Text}, nil
	}
}

// connect issues the inference request. A cold-start 503 or a 429
// schedules a status event and a wait instead of opening a body; any
// other non-200 is terminal.
func (s *stream) connect() error {
	c := s.client

	body, err := json.Marshal(apiRequest{
		Inputs: s.input,
		Parameters: apiParameters{
			MaxNewTokens:   maxNewTokens,
			ReturnFullText: false,
			Temperature:    temperature,
		},
		Stream: true,
	})
	if err != nil {
		return fmt.Errorf("hface: %w", err)
	}

	url := c.baseURL + "/models/" + s.model
	httpReq, err := http.NewRequestWithContext(s.ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("hface: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("hface: %w", err)
	}

	switch resp.StatusCode {
	case http.StatusOK:
		s.body = resp.Body
		s.scanner = bufio.NewScanner(resp.Body)
		return nil

	case http.StatusServiceUnavailable:
		defer resp.Body.Close()
		wait := estimatedWait(resp)
		s.pendingWait = wait
		s.pendingStatus = fmt.Sprintf("Model is loading, retrying in ~%ds.", int(wait/time.Second))
		return nil

	case http.StatusTooManyRequests:
		defer resp.Body.Close()
		wait := retryAfter(resp)
		if wait == 0 {
			return fmt.Errorf("hface: %w", &parley.RateLimitError{})
		}
		s.pendingWait = wait
		s.pendingStatus = fmt.Sprintf("Rate limited, retrying in ~%ds.", int(wait/time.Second))
		return nil

	case http.StatusUnauthorized, http.StatusForbidden:
		defer resp.Body.Close()
		return fmt.Errorf("hface: HTTP %d: %w", resp.StatusCode, parley.ErrAuth)

	default:
		defer resp.Body.Close()
		raw, _ := io.ReadAll(resp.Body)
		var apiErr apiErrorResponse
		if err := json.Unmarshal(raw, &apiErr); err == nil && apiErr.Error != "" {
			return fmt.Errorf("hface: %s", apiErr.Error)
		}
		return fmt.Errorf("hface: HTTP %d: %s", resp.StatusCode, string(raw))
	}
}

// estimatedWait reads the cold-start wait hint, defaulting to 10s when
// the body carries none.
func estimatedWait(resp *http.Response) time.Duration {
	raw, _ := io.ReadAll(resp.Body)
	var apiErr apiErrorResponse
	if err := json.Unmarshal(raw, &apiErr); err != nil || apiErr.EstimatedTime <= 0 {
		return 10 * time.Second
	}
	return time.Duration(math.Ceil(apiErr.EstimatedTime)) * time.Second
}

func retryAfter(resp *http.Response) time.Duration {
	secs, err := strconv.Atoi(resp.Header.Get("Retry-After"))
	if err != nil || secs < 0 {
		return 0
	}
	return time.Duration(secs) * time.Second
}

// State returns the current stream state.
func (s *stream) State() parley.StreamState {
	return s.state
}

// Text returns the text assembled from deltas so far.
func (s *stream) Text() string {
	return s.text.String()
}

// Close closes the underlying HTTP response body, if one was opened.
func (s *stream) Close() error {
	if s.state != parley.StreamStateComplete && s.state != parley.StreamStateError {
		s.state = parley.StreamStateClosed
	}
	if s.body != nil {
		return s.body.Close()
	}
	return nil
}

// terminate records a terminal error.
func (s *stream) terminate(err error) {
	s.state = parley.StreamStateError
	s.err = err
}
