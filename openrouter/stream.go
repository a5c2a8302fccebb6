package openrouter

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/parleychat/parley"
)

// stream implements [parley.Stream] by parsing SSE lines from an HTTP
// response body.
type stream struct {
	body    io.ReadCloser
	scanner *bufio.Scanner
	ctx     context.Context
	state   parley.StreamState
	text    strings.Builder
	err     error // terminal error, if any
}

// Interface compliance check.
var _ parley.Stream = (*stream)(nil)

func newStream(ctx context.Context, body io.ReadCloser) *stream {
	return &stream{
		body:    body,
		scanner: bufio.NewScanner(body),
		ctx:     ctx,
		state:   parley.StreamStateNew,
	}
}

// Next reads the next text delta from the SSE stream.
// Returns io.EOF when the stream completes normally, either via a
// `data: [DONE]` line or the body ending.
func (s *stream) Next() (parley.Event, error) {
	switch s.state {
	case parley.StreamStateComplete:
		return nil, io.EOF
	case parley.StreamStateError:
		return nil, s.err
	case parley.StreamStateClosed:
		return nil, fmt.Errorf("openrouter: %w", parley.ErrStreamClosed)
	}

	for {
		// Cancellation is honored here, at the delta boundary: a chunk
		// already decoded is delivered before the cancel takes effect.
		if err := s.ctx.Err(); err != nil {
			s.terminate(err)
			return nil, s.err
		}

		if !s.scanner.Scan() {
			if err := s.scanner.Err(); err != nil {
				s.terminate(fmt.Errorf("openrouter: %w", err))
				return nil, s.err
			}
			s.state = parley.StreamStateComplete
			return nil, io.EOF
		}

		s.state = parley.StreamStateStreaming

		line := strings.TrimSpace(s.scanner.Text())
		if line == "" || !strings.HasPrefix(line, "data: ") {
			// Keepalive comments and unknown fields are skipped.
			continue
		}
		data := strings.TrimPrefix(line, "data: ")
		if data == "[DONE]" {
			s.state = parley.StreamStateComplete
			return nil, io.EOF
		}

		var chunk sseChunk
		if err := json.Unmarshal([]byte(data), &chunk); err != nil {
			// Non-JSON payloads are not fatal; keep reading.
			continue
		}
		if len(chunk.Choices) == 0 {
			continue
		}
		if delta := chunk.Choices[0].Delta.Content; delta != "" {
			s.text.WriteString(delta)
			return parley.EventTextDelta{Delta: delta}, nil
		}
	}
}

// State returns the current stream state.
func (s *stream) State() parley.StreamState {
	return s.state
}

// Text returns the text assembled from deltas so far.
func (s *stream) Text() string {
	return s.text.String()
}

// Close closes the underlying HTTP response body.
func (s *stream) Close() error {
	if s.state != parley.StreamStateComplete && s.state != parley.StreamStateError {
		s.state = parley.StreamStateClosed
	}
	return s.body.Close()
}

// terminate records a terminal error.
func (s *stream) terminate(err error) {
	s.state = parley.StreamStateError
	s.err = err
}
