package puter

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/parleychat/parley"
)

// stream implements [parley.Stream] over either response shape.
type stream struct {
	ctx     context.Context
	body    io.ReadCloser
	shape   responseShape
	scanner *bufio.Scanner
	state   parley.StreamState
	text    strings.Builder
	err     error
}

// Interface compliance check.
var _ parley.Stream = (*stream)(nil)

func newStream(ctx context.Context, body io.ReadCloser, shape responseShape) *stream {
	s := &stream{
		ctx:   ctx,
		body:  body,
		shape: shape,
		state: parley.StreamStateNew,
	}
	if shape == shapeStreamed {
		s.scanner = bufio.NewScanner(body)
	}
	return s
}

// Next returns the next text delta. In the single-object case the whole
// completion arrives as one terminal delta.
func (s *stream) Next() (parley.Event, error) {
	switch s.state {
	case parley.StreamStateComplete:
		return nil, io.EOF
	case parley.StreamStateError:
		return nil, s.err
	case parley.StreamStateClosed:
		return nil, fmt.Errorf("puter: %w", parley.ErrStreamClosed)
	}

	if err := s.ctx.Err(); err != nil {
		s.terminate(err)
		return nil, s.err
	}

	if s.shape == shapeSingle {
		return s.nextSingle()
	}
	return s.nextStreamed()
}

func (s *stream) nextSingle() (parley.Event, error) {
	raw, err := io.ReadAll(s.body)
	if err != nil {
		s.terminate(fmt.Errorf("puter: %w", err))
		return nil, s.err
	}
	var single apiSingle
	if err := json.Unmarshal(raw, &single); err != nil {
		s.terminate(fmt.Errorf("puter: decode response: %w", err))
		return nil, s.err
	}
	s.state = parley.StreamStateComplete
	content := single.content()
	if content == "" {
		return nil, io.EOF
	}
	s.text.WriteString(content)
	return parley.EventTextDelta{Delta: content}, nil
}

func (s *stream) nextStreamed() (parley.Event, error) {
	for {
		if err := s.ctx.Err(); err != nil {
			s.terminate(err)
			return nil, s.err
		}
		if !s.scanner.Scan() {
			if err := s.scanner.Err(); err != nil {
				s.terminate(fmt.Errorf("puter: %w", err))
				return nil, s.err
			}
			s.state = parley.StreamStateComplete
			return nil, io.EOF
		}
		s.state = parley.StreamStateStreaming

		line := strings.TrimSpace(s.scanner.Text())
		if line == "" {
			continue
		}
		var part apiPart
		if err := json.Unmarshal([]byte(line), &part); err != nil {
			continue
		}
		if part.Text == "" {
			continue
		}
		s.text.WriteString(part.Text)
		return parley.EventTextDelta{Delta: part.Text}, nil
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
