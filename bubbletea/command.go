package bubbletea

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/parleychat/parley"
	"github.com/parleychat/parley/attach"
	"github.com/parleychat/parley/export"
	"github.com/parleychat/parley/store"
)

const helpText = "/attach /export /theme /provider /model /rename /pin /delete /like /dislike /edit /delmsg /new"

// runCommand executes a slash command typed into the input.
func (m Model) runCommand(input string) (tea.Model, tea.Cmd) {
	m.Input.SetValue("")
	m.err = nil
	m.notice = ""

	name, arg, _ := strings.Cut(strings.TrimSpace(input), " ")
	arg = strings.TrimSpace(arg)

	switch name {
	case "/help":
		m.notice = helpText

	case "/new":
		m = m.newChat()
		m.notice = "Started a new chat."

	case "/attach":
		if arg == "" {
			m.err = fmt.Errorf("usage: /attach <path or glob>")
			break
		}
		file, err := attach.Load(arg)
		if err != nil {
			m.err = err
			break
		}
		m.pendingFile = file
		m.notice = fmt.Sprintf("Attached %s (%d bytes). It goes out with your next message.", file.Name, len(file.Data))

	case "/export":
		m = m.exportSession(arg)

	case "/theme":
		if arg == "" {
			m.err = fmt.Errorf("usage: /theme <dark|light>")
			break
		}
		m.theme = parley.ThemeByName(arg)
		m.styles = NewStyles(m.theme)
		if err := store.SaveTheme(m.st, m.theme); err != nil {
			m.err = err
			break
		}
		m.notice = fmt.Sprintf("Theme set to %s.", m.theme.Name)
		m = m.refreshViewport(false)

	case "/provider":
		id := parley.ProviderID(arg)
		if !m.providerConfigured(id) {
			m.err = fmt.Errorf("provider %q is not configured", arg)
			break
		}
		m.provider = id
		m.model = ""
		m = m.persistSettings()
		m.notice = fmt.Sprintf("Provider set to %s.", id)

	case "/model":
		m.model = arg
		m = m.persistSettings()
		if arg == "" {
			m.notice = "Model reset to the provider default."
		} else {
			m.notice = fmt.Sprintf("Model set to %s.", arg)
		}

	case "/rename":
		if arg == "" {
			m.err = fmt.Errorf("usage: /rename <title>")
			break
		}
		if err := m.store.Rename(m.sessionID, arg); err != nil {
			m.err = err
			break
		}
		m.notice = fmt.Sprintf("Renamed to %q.", arg)

	case "/pin":
		if err := m.store.TogglePin(m.sessionID); err != nil {
			m.err = err
			break
		}
		m.notice = "Toggled pin."

	case "/delete":
		if err := m.store.Delete(m.sessionID); err != nil {
			m.err = err
			break
		}
		m = m.newChat()
		m.notice = "Session deleted."

	case "/like":
		m = m.applyFeedback(arg, parley.FeedbackLike)

	case "/dislike":
		m = m.applyFeedback(arg, parley.FeedbackDislike)

	case "/edit":
		idArg, text, _ := strings.Cut(arg, " ")
		id, err := strconv.ParseInt(idArg, 10, 64)
		if err != nil || strings.TrimSpace(text) == "" {
			m.err = fmt.Errorf("usage: /edit <message id> <new text>")
			break
		}
		m.conv = m.conv.Edit(id, strings.TrimSpace(text))
		m = m.persistConversation()
		m = m.refreshViewport(false)

	case "/delmsg":
		id, err := strconv.ParseInt(arg, 10, 64)
		if err != nil {
			m.err = fmt.Errorf("usage: /delmsg <message id>")
			break
		}
		m.conv = m.conv.Delete(id)
		if err := m.store.DeleteMessage(m.sessionID, id); err != nil {
			m.err = err
		}
		m = m.refreshViewport(false)

	default:
		m.err = fmt.Errorf("unknown command %q (try /help)", name)
	}

	return m, nil
}

func (m Model) providerConfigured(id parley.ProviderID) bool {
	for _, p := range m.config.Providers {
		if p == id {
			return true
		}
	}
	return false
}

func (m Model) persistSettings() Model {
	err := store.SaveSettings(m.st, store.Settings{Provider: m.provider, Model: m.model})
	if err != nil {
		m.err = err
	}
	return m
}

// persistConversation writes the in-memory conversation through the
// session store. Only meaningful once the session has messages.
func (m Model) persistConversation() Model {
	if len(m.conv.Messages) == 0 {
		return m
	}
	if err := m.store.Save(parley.Session{ID: m.sessionID, Messages: m.conv.Messages}); err != nil {
		m.err = err
	}
	return m
}

// applyFeedback rates an assistant message. With no id argument the most
// recent assistant message is rated.
func (m Model) applyFeedback(arg string, fb parley.Feedback) Model {
	var id int64
	if arg == "" {
		last, ok := m.lastAssistantID()
		if !ok {
			m.err = fmt.Errorf("no assistant message to rate")
			return m
		}
		id = last
	} else {
		parsed, err := strconv.ParseInt(arg, 10, 64)
		if err != nil {
			m.err = fmt.Errorf("usage: /like [message id]")
			return m
		}
		id = parsed
	}

	// Rating the same way twice clears it.
	if current, ok := m.conv.Message(id); ok && current.Feedback == fb {
		fb = parley.FeedbackNone
	}
	m.conv = m.conv.SetFeedback(id, fb)
	m = m.persistConversation()
	return m.refreshViewport(false)
}

// exportSession writes the current session to a transcript file in the
// working directory.
func (m Model) exportSession(format string) Model {
	sess, err := m.store.Load(m.sessionID)
	if err != nil {
		// Not persisted yet; export the in-memory state.
		sess = parley.Session{ID: m.sessionID, Messages: m.conv.Messages}
	}
	if len(sess.Messages) == 0 {
		m.err = fmt.Errorf("nothing to export")
		return m
	}

	var (
		data []byte
		ext  string
	)
	switch format {
	case "", "txt":
		data, ext = []byte(export.Text(sess)), "txt"
	case "md":
		data, ext = []byte(export.Markdown(sess)), "md"
	case "json":
		blob, err := export.JSON(sess)
		if err != nil {
			m.err = err
			return m
		}
		data, ext = blob, "json"
	default:
		m.err = fmt.Errorf("usage: /export [txt|md|json]")
		return m
	}

	name := export.Filename(sess, ext)
	if err := os.WriteFile(name, data, 0o644); err != nil {
		m.err = err
		return m
	}
	m.notice = fmt.Sprintf("Exported to %s.", name)
	return m
}
