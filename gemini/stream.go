package gemini

import (
	"context"
	"fmt"
	"io"
	"iter"
	"strings"

	"github.com/parleychat/parley"
	"google.golang.org/genai"
)

// stream implements [parley.Stream] by wrapping the genai SDK's streaming
// iterator. Each SDK chunk becomes at most one delta.
type stream struct {
	pull  func() (*genai.GenerateContentResponse, error, bool)
	stop  func()
	ctx   context.Context
	state parley.StreamState
	text  strings.Builder
	err   error
}

// Interface compliance check.
var _ parley.Stream = (*stream)(nil)

func newStream(ctx context.Context, iterFn iter.Seq2[*genai.GenerateContentResponse, error]) *stream {
	next, stop := iter.Pull2(iterFn)
	return &stream{
		pull:  next,
		stop:  stop,
		ctx:   ctx,
		state: parley.StreamStateNew,
	}
}

// Next pulls the next chunk from the SDK iterator and returns its text as
// one delta. Chunks without text (safety metadata, empty candidates) are
// skipped. Returns io.EOF when the iterator is exhausted.
func (s *stream) Next() (parley.Event, error) {
	switch s.state {
	case parley.StreamStateComplete:
		return nil, io.EOF
	case parley.StreamStateError:
		return nil, s.err
	case parley.StreamStateClosed:
		return nil, fmt.Errorf("gemini: %w", parley.ErrStreamClosed)
	}

	for {
		if err := s.ctx.Err(); err != nil {
			s.terminate(err)
			return nil, s.err
		}

		chunk, err, ok := s.pull()
		if !ok {
			s.state = parley.StreamStateComplete
			return nil, io.EOF
		}
		if err != nil {
			s.terminate(fmt.Errorf("gemini: %w", err))
			return nil, s.err
		}
		s.state = parley.StreamStateStreaming

		if delta := chunkText(chunk); delta != "" {
			s.text.WriteString(delta)
			return parley.EventTextDelta{Delta: delta}, nil
		}
	}
}

// chunkText concatenates the text parts of the chunk's first candidate,
// skipping thought parts.
func chunkText(chunk *genai.GenerateContentResponse) string {
	if chunk == nil || len(chunk.Candidates) == 0 {
		return ""
	}
	content := chunk.Candidates[0].Content
	if content == nil {
		return ""
	}
	var b strings.Builder
	for _, part := range content.Parts {
		if part == nil || part.Thought {
			continue
		}
		b.WriteString(part.Text)
	}
	return b.String()
}

// State returns the current stream state.
func (s *stream) State() parley.StreamState {
	return s.state
}

// Text returns the text assembled from deltas so far.
func (s *stream) Text() string {
	return s.text.String()
}

// Close releases the SDK iterator.
func (s *stream) Close() error {
	if s.state != parley.StreamStateComplete && s.state != parley.StreamStateError {
		s.state = parley.StreamStateClosed
	}
	s.stop()
	return nil
}

// terminate records a terminal error.
func (s *stream) terminate(err error) {
	s.state = parley.StreamStateError
	s.err = err
}
