package markdown_test

import (
	"strings"
	"testing"

	"github.com/parleychat/parley"
	"github.com/parleychat/parley/markdown"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func render(source string) string {
	return markdown.Render(source, 80, parley.DarkTheme())
}

func TestRender_Empty(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "", render(""))
}

func TestRender_Paragraph(t *testing.T) {
	t.Parallel()

	got := render("Just a plain sentence.")
	assert.Contains(t, got, "Just a plain sentence.")
}

func TestRender_ParagraphWrapsToWidth(t *testing.T) {
	t.Parallel()

	long := strings.Repeat("word ", 20)
	got := markdown.Render(long, 20, parley.DarkTheme())
	for _, line := range strings.Split(got, "\n") {
		assert.LessOrEqual(t, len([]rune(line)), 20)
	}
	assert.Greater(t, strings.Count(got, "\n"), 2)
}

func TestRender_Heading(t *testing.T) {
	t.Parallel()

	got := render("# Title\n\nBody paragraph.")
	assert.Contains(t, got, "Title")
	assert.Contains(t, got, "Body paragraph.")
	assert.NotContains(t, got, "#", "heading markers are consumed")
}

func TestRender_Emphasis(t *testing.T) {
	t.Parallel()

	got := render("some **bold** and *italic* and `code` text")
	assert.Contains(t, got, "bold")
	assert.Contains(t, got, "italic")
	assert.Contains(t, got, "code")
	assert.NotContains(t, got, "**")
	assert.NotContains(t, got, "`")
}

func TestRender_FencedCodeBlock(t *testing.T) {
	t.Parallel()

	source := "```go\nfunc main() { fmt.Println(\"a very long line that must never be rewrapped by the renderer\") }\n```"
	got := markdown.Render(source, 20, parley.DarkTheme())

	assert.Contains(t, got, "go", "language tag is shown")
	require.Contains(t, got, "│")

	// Code lines keep their full length regardless of the render width.
	var codeLine string
	for _, line := range strings.Split(got, "\n") {
		if strings.Contains(line, "func main()") {
			codeLine = line
		}
	}
	require.NotEmpty(t, codeLine)
	assert.Contains(t, codeLine, "never be rewrapped")
}

func TestRender_Lists(t *testing.T) {
	t.Parallel()

	t.Run("unordered", func(t *testing.T) {
		t.Parallel()
		got := render("- first\n- second")
		assert.Contains(t, got, "- first")
		assert.Contains(t, got, "- second")
	})

	t.Run("ordered", func(t *testing.T) {
		t.Parallel()
		got := render("1. one\n2. two\n3. three")
		assert.Contains(t, got, "1. one")
		assert.Contains(t, got, "2. two")
		assert.Contains(t, got, "3. three")
	})

	t.Run("nested", func(t *testing.T) {
		t.Parallel()
		got := render("- outer\n  - inner")
		assert.Contains(t, got, "- outer")
		assert.Contains(t, got, "  - inner")
	})

	t.Run("long item wraps with continuation indent", func(t *testing.T) {
		t.Parallel()
		got := markdown.Render("- "+strings.Repeat("word ", 15), 25, parley.DarkTheme())
		lines := strings.Split(got, "\n")
		require.Greater(t, len(lines), 1)
		assert.True(t, strings.HasPrefix(lines[0], "- "))
		assert.True(t, strings.HasPrefix(lines[1], "  "), "continuation lines align under the marker")
	})
}

func TestRender_Link(t *testing.T) {
	t.Parallel()

	got := render("see [the docs](https://example.com)")
	assert.Contains(t, got, "the docs")
	assert.Contains(t, got, "(https://example.com)")
}

func TestRender_BlockGap(t *testing.T) {
	t.Parallel()

	got := render("First paragraph.\n\nSecond paragraph.")

	// Normalize the padding lipgloss adds to each wrapped line.
	var lines []string
	for _, line := range strings.Split(got, "\n") {
		lines = append(lines, strings.TrimRight(line, " "))
	}
	assert.Contains(t, strings.Join(lines, "\n"), "First paragraph.\n\nSecond paragraph.")
}

func TestRender_ThematicBreak(t *testing.T) {
	t.Parallel()

	got := render("above\n\n---\n\nbelow")
	assert.Contains(t, got, "---")
}
