// Package json serializes sessions to a versioned JSON envelope. The whole
// session collection is the unit of persistence; single-session marshalling
// exists for the lossless export format.
package json

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"time"

	"github.com/parleychat/parley"
)

// collectionEnvelope is the v1 wire format for the persisted session
// collection.
type collectionEnvelope struct {
	Version  int          `json:"version"`
	Sessions []sessionDTO `json:"sessions"`
}

type sessionDTO struct {
	ID          string       `json:"id"`
	Title       string       `json:"title,omitempty"`
	Preview     string       `json:"preview,omitempty"`
	Pinned      bool         `json:"pinned,omitempty"`
	LastUpdated time.Time    `json:"last_updated"`
	Messages    []messageDTO `json:"messages"`
}

type messageDTO struct {
	ID        int64     `json:"id"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
	File      *fileDTO  `json:"file,omitempty"`
	Streaming bool      `json:"streaming,omitempty"`
	Error     bool      `json:"error,omitempty"`
	Feedback  string    `json:"feedback,omitempty"`
}

type fileDTO struct {
	Name     string `json:"name"`
	MimeType string `json:"mime_type"`
	Data     string `json:"data,omitempty"` // base64
}

// MarshalCollection serializes the session collection in v1 envelope format.
func MarshalCollection(sessions []parley.Session) ([]byte, error) {
	env := collectionEnvelope{
		Version:  1,
		Sessions: make([]sessionDTO, len(sessions)),
	}
	for i, s := range sessions {
		env.Sessions[i] = marshalSession(s)
	}
	return json.MarshalIndent(env, "", "  ")
}

// UnmarshalCollection deserializes the session collection from v1 envelope
// format.
func UnmarshalCollection(data []byte) ([]parley.Session, error) {
	var env collectionEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("unmarshal envelope: %w", err)
	}
	if env.Version != 1 {
		return nil, fmt.Errorf("unsupported envelope version: %d", env.Version)
	}
	sessions := make([]parley.Session, len(env.Sessions))
	for i, dto := range env.Sessions {
		s, err := unmarshalSession(dto)
		if err != nil {
			return nil, fmt.Errorf("session %d: %w", i, err)
		}
		sessions[i] = s
	}
	return sessions, nil
}

// MarshalSession serializes one session. This is the lossless export
// format handed to collaborators.
func MarshalSession(s parley.Session) ([]byte, error) {
	return json.MarshalIndent(marshalSession(s), "", "  ")
}

// UnmarshalSession deserializes one session from the export format.
func UnmarshalSession(data []byte) (parley.Session, error) {
	var dto sessionDTO
	if err := json.Unmarshal(data, &dto); err != nil {
		return parley.Session{}, fmt.Errorf("unmarshal session: %w", err)
	}
	return unmarshalSession(dto)
}

func marshalSession(s parley.Session) sessionDTO {
	dto := sessionDTO{
		ID:          s.ID,
		Title:       s.Title,
		Preview:     s.Preview,
		Pinned:      s.Pinned,
		LastUpdated: s.LastUpdated,
		Messages:    make([]messageDTO, len(s.Messages)),
	}
	for i, m := range s.Messages {
		dto.Messages[i] = marshalMessage(m)
	}
	return dto
}

func unmarshalSession(dto sessionDTO) (parley.Session, error) {
	s := parley.Session{
		ID:          dto.ID,
		Title:       dto.Title,
		Preview:     dto.Preview,
		Pinned:      dto.Pinned,
		LastUpdated: dto.LastUpdated,
		Messages:    make([]parley.Message, len(dto.Messages)),
	}
	for i, m := range dto.Messages {
		msg, err := unmarshalMessage(m)
		if err != nil {
			return parley.Session{}, fmt.Errorf("message %d: %w", i, err)
		}
		s.Messages[i] = msg
	}
	return s, nil
}

func marshalMessage(m parley.Message) messageDTO {
	dto := messageDTO{
		ID:        m.ID,
		Role:      string(m.Role),
		Content:   m.Content,
		Timestamp: m.CreatedAt,
		Streaming: m.Streaming,
		Error:     m.Error,
		Feedback:  feedbackString(m.Feedback),
	}
	if m.File != nil {
		dto.File = &fileDTO{
			Name:     m.File.Name,
			MimeType: m.File.MimeType,
			Data:     base64.StdEncoding.EncodeToString(m.File.Data),
		}
	}
	return dto
}

func unmarshalMessage(dto messageDTO) (parley.Message, error) {
	fb, err := parseFeedback(dto.Feedback)
	if err != nil {
		return parley.Message{}, err
	}
	m := parley.Message{
		ID:        dto.ID,
		Role:      parley.Role(dto.Role),
		Content:   dto.Content,
		CreatedAt: dto.Timestamp,
		Streaming: dto.Streaming,
		Error:     dto.Error,
		Feedback:  fb,
	}
	if dto.File != nil {
		var data []byte
		if dto.File.Data != "" {
			data, err = base64.StdEncoding.DecodeString(dto.File.Data)
			if err != nil {
				return parley.Message{}, fmt.Errorf("decode file data: %w", err)
			}
		}
		m.File = &parley.FileRef{
			Name:     dto.File.Name,
			MimeType: dto.File.MimeType,
			Data:     data,
		}
	}
	return m, nil
}

func feedbackString(fb parley.Feedback) string {
	switch fb {
	case parley.FeedbackLike:
		return "like"
	case parley.FeedbackDislike:
		return "dislike"
	default:
		return ""
	}
}

func parseFeedback(s string) (parley.Feedback, error) {
	switch s {
	case "":
		return parley.FeedbackNone, nil
	case "like":
		return parley.FeedbackLike, nil
	case "dislike":
		return parley.FeedbackDislike, nil
	default:
		return parley.FeedbackNone, fmt.Errorf("unknown feedback value: %q", s)
	}
}
