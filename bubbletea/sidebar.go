package bubbletea

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/parleychat/parley"
)

const sessionDateLayout = "2006-01-02 15:04"

func (m Model) toggleSidebar() (tea.Model, tea.Cmd) {
	if m.sidebar {
		m.sidebar = false
		m = m.refreshViewport(true)
		cmd := m.Input.Focus()
		return m, cmd
	}

	m.sidebar = true
	m.sessions = m.store.List()
	if m.selected >= len(m.sessions) {
		m.selected = 0
	}
	m.Input.Blur()
	m = m.refreshViewport(false)
	m.Viewport.GotoTop()
	return m, nil
}

func (m Model) handleSidebarKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case msg.Type == tea.KeyUp || key(msg) == "k":
		if m.selected > 0 {
			m.selected--
		}
		return m.refreshViewport(false), nil

	case msg.Type == tea.KeyDown || key(msg) == "j":
		if m.selected < len(m.sessions)-1 {
			m.selected++
		}
		return m.refreshViewport(false), nil

	case key(msg) == "p":
		if sess, ok := m.selectedSession(); ok {
			if err := m.store.TogglePin(sess.ID); err != nil {
				m.err = err
			}
			m.sessions = m.store.List()
		}
		return m.refreshViewport(false), nil

	case key(msg) == "d":
		if sess, ok := m.selectedSession(); ok {
			if err := m.store.Delete(sess.ID); err != nil {
				m.err = err
			}
			m.sessions = m.store.List()
			if m.selected >= len(m.sessions) && m.selected > 0 {
				m.selected--
			}
			// Deleting the open session resets the chat pane.
			if sess.ID == m.sessionID {
				m.sessionID = newSessionID()
				m.conv = parley.Conversation{}
			}
		}
		return m.refreshViewport(false), nil
	}

	return m, nil
}

func key(msg tea.KeyMsg) string {
	if msg.Type != tea.KeyRunes || len(msg.Runes) != 1 {
		return ""
	}
	return string(msg.Runes)
}

func (m Model) selectedSession() (parley.Session, bool) {
	if m.selected < 0 || m.selected >= len(m.sessions) {
		return parley.Session{}, false
	}
	return m.sessions[m.selected], true
}

func (m Model) openSelected() (tea.Model, tea.Cmd) {
	sess, ok := m.selectedSession()
	if !ok {
		return m.toggleSidebar()
	}
	loaded, err := m.store.Load(sess.ID)
	if err != nil {
		m.err = err
		return m.toggleSidebar()
	}
	m.sessionID = loaded.ID
	m.conv = parley.Conversation{Messages: loaded.Messages}
	m.err = nil
	m.notice = ""
	return m.toggleSidebar()
}

func (m Model) renderSidebar() string {
	if len(m.sessions) == 0 {
		return m.styles.Muted.Render("No saved sessions yet.")
	}

	var b strings.Builder
	b.WriteString(m.styles.Accent.Render("Sessions"))
	b.WriteString("\n\n")
	for i, sess := range m.sessions {
		marker := "  "
		if sess.Pinned {
			marker = m.styles.Pinned.Render("* ")
		}

		title := sess.Title
		if title == "" {
			title = "Untitled"
		}
		if i == m.selected {
			title = m.styles.Selected.Render(title)
		}

		current := ""
		if sess.ID == m.sessionID {
			current = m.styles.Success.Render(" (open)")
		}

		b.WriteString(fmt.Sprintf("%s%s%s\n", marker, title, current))
		b.WriteString("  " + m.styles.Muted.Render(
			fmt.Sprintf("%s · %s", sess.LastUpdated.Format(sessionDateLayout), sess.Preview)))
		b.WriteString("\n\n")
	}
	return strings.TrimRight(b.String(), "\n")
}
