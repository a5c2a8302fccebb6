// Package export renders finalized sessions into transcript formats.
// Every renderer operates on an immutable snapshot of the session, so an
// export can never observe (or cause) a later mutation.
package export

import (
	"fmt"
	"strings"

	"github.com/parleychat/parley"
	pjson "github.com/parleychat/parley/json"
)

const (
	timestampLayout = "2006-01-02 15:04:05"
	separator       = "-------------------"
)

// Text renders a plain-text transcript: a header, then one block per
// message with role and timestamp. Markup in message bodies is stripped.
func Text(session parley.Session) string {
	s := session.Snapshot()

	var b strings.Builder
	fmt.Fprintf(&b, "Chat Export: %s\n\n", title(s))
	for _, m := range s.Messages {
		fmt.Fprintf(&b, "[%s] %s:\n%s\n",
			m.CreatedAt.Format(timestampLayout),
			strings.ToUpper(string(m.Role)),
			Plain(m.Content))
		if m.File != nil {
			fmt.Fprintf(&b, "(attached: %s, %s)\n", m.File.Name, m.File.MimeType)
		}
		fmt.Fprintf(&b, "\n%s\n\n", separator)
	}
	return b.String()
}

// Markdown renders the transcript with message bodies verbatim, suitable
// for paginated-document collaborators that do their own layout.
func Markdown(session parley.Session) string {
	s := session.Snapshot()

	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n", title(s))
	for _, m := range s.Messages {
		fmt.Fprintf(&b, "\n**%s** — %s\n\n%s\n",
			strings.ToUpper(string(m.Role)),
			m.CreatedAt.Format(timestampLayout),
			m.Content)
	}
	return b.String()
}

// JSON renders the lossless structured serialization of the session.
func JSON(session parley.Session) ([]byte, error) {
	return pjson.MarshalSession(session.Snapshot())
}

// Filename suggests an export file name for the session.
func Filename(session parley.Session, ext string) string {
	return fmt.Sprintf("parley-chat-%s.%s", session.ID, ext)
}

func title(s parley.Session) string {
	if s.Title != "" {
		return s.Title
	}
	return "Untitled"
}
