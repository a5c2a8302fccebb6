// Package textutil provides display-width-aware text helpers for session
// titles, previews, and sidebar rendering.
package textutil

import (
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/rivo/uniseg"
)

const ellipsis = "..."

// FirstLine returns s up to (not including) the first newline, trimmed.
func FirstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	return strings.TrimSpace(s)
}

// Truncate shortens s so its terminal display width does not exceed max,
// appending "..." when anything was cut. It never splits a grapheme
// cluster, so multi-codepoint emoji and combining characters survive
// truncation intact.
func Truncate(s string, max int) string {
	if max <= 0 {
		return ""
	}
	if runewidth.StringWidth(s) <= max {
		return s
	}

	budget := max - runewidth.StringWidth(ellipsis)
	if budget < 0 {
		budget = 0
	}

	var b strings.Builder
	width := 0
	g := uniseg.NewGraphemes(s)
	for g.Next() {
		cluster := g.Str()
		w := runewidth.StringWidth(cluster)
		if width+w > budget {
			break
		}
		b.WriteString(cluster)
		width += w
	}
	return b.String() + ellipsis
}
