package gemini_test

import (
	"context"
	"testing"

	"github.com/parleychat/parley"
	"github.com/parleychat/parley/gemini"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_MissingKey(t *testing.T) {
	t.Parallel()

	_, err := gemini.New(context.Background(), "")
	assert.ErrorIs(t, err, parley.ErrAuth)
}

func TestBuildTranscribeContents(t *testing.T) {
	t.Parallel()

	contents := gemini.BuildTranscribeContents([]byte{9, 8}, "audio/wav")
	require.Len(t, contents, 1)
	require.Len(t, contents[0].Parts, 2)

	blob := contents[0].Parts[0].InlineData
	require.NotNil(t, blob)
	assert.Equal(t, "audio/wav", blob.MIMEType)
	assert.Equal(t, []byte{9, 8}, blob.Data)
	assert.Contains(t, contents[0].Parts[1].Text, "Transcribe")
}

func TestBuildContents(t *testing.T) {
	t.Parallel()

	t.Run("text only", func(t *testing.T) {
		t.Parallel()
		contents := gemini.BuildContents(parley.Request{Text: "hello"})
		require.Len(t, contents, 1)
		assert.Equal(t, "user", contents[0].Role)
		require.Len(t, contents[0].Parts, 1)
		assert.Equal(t, "hello", contents[0].Parts[0].Text)
	})

	t.Run("with attachment", func(t *testing.T) {
		t.Parallel()
		req := parley.Request{
			Text: "describe",
			File: &parley.FileRef{Name: "dot.png", MimeType: "image/png", Data: []byte{1, 2}},
		}
		contents := gemini.BuildContents(req)
		require.Len(t, contents, 1)
		require.Len(t, contents[0].Parts, 2)

		blob := contents[0].Parts[0].InlineData
		require.NotNil(t, blob)
		assert.Equal(t, "image/png", blob.MIMEType)
		assert.Equal(t, []byte{1, 2}, blob.Data)
		assert.Equal(t, "describe", contents[0].Parts[1].Text)
	})
}
