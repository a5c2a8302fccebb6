package parley_test

import (
	"errors"
	"testing"
	"time"

	"github.com/parleychat/parley"
	"github.com/stretchr/testify/assert"
)

func TestProviderID_Valid(t *testing.T) {
	t.Parallel()

	for _, id := range []parley.ProviderID{
		parley.ProviderGemini,
		parley.ProviderOpenRouter,
		parley.ProviderHFace,
		parley.ProviderPuter,
	} {
		assert.True(t, id.Valid(), id)
	}
	assert.False(t, parley.ProviderID("claude").Valid())
	assert.False(t, parley.ProviderID("").Valid())
}

func TestRequest_Validate(t *testing.T) {
	t.Parallel()

	t.Run("text only", func(t *testing.T) {
		t.Parallel()
		assert.NoError(t, parley.Request{Text: "hi"}.Validate())
	})

	t.Run("file only", func(t *testing.T) {
		t.Parallel()
		req := parley.Request{File: &parley.FileRef{Name: "a.png"}}
		assert.NoError(t, req.Validate())
	})

	t.Run("empty request", func(t *testing.T) {
		t.Parallel()
		err := parley.Request{Text: "   "}.Validate()
		assert.ErrorIs(t, err, parley.ErrValidation)
	})
}

func TestRateLimitError_Message(t *testing.T) {
	t.Parallel()

	withHint := &parley.RateLimitError{RetryAfter: 30 * time.Second}
	assert.Contains(t, withHint.Error(), "30s")

	var target *parley.RateLimitError
	assert.True(t, errors.As(error(withHint), &target))

	noHint := &parley.RateLimitError{}
	assert.Equal(t, "rate limited", noHint.Error())
}
