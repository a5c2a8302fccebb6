package bubbletea

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/parleychat/parley"
	"github.com/parleychat/parley/markdown"
	"github.com/parleychat/parley/store"
	"github.com/parleychat/parley/storage"
)

var _ tea.Model = Model{}

// Config carries startup state resolved by the caller.
type Config struct {
	// Provider is the initial provider selection.
	Provider parley.ProviderID
	// Model is the initial model id ("" = provider default).
	Model string
	// Providers lists the providers with working credentials. The
	// /provider command only accepts members of this list.
	Providers []parley.ProviderID
	// Banner is a persistent notice shown while idle, e.g. a credential
	// fallback explanation. Empty means no banner.
	Banner string
	// Attachment is preloaded for the first send, from the -attach flag.
	Attachment *parley.FileRef
}

// Model is the Bubble Tea model for the parley TUI.
type Model struct {
	// Input is the text input component. Exported for test access.
	Input textinput.Model
	// Viewport is the scrollable output area. Exported for test access.
	Viewport viewport.Model

	send   SendFunc
	regen  RegenerateFunc
	store  *store.Store
	st     storage.Storage
	theme  parley.Theme
	styles Styles
	config Config

	sessionID string
	conv      parley.Conversation

	provider parley.ProviderID
	model    string

	sidebar  bool
	sessions []parley.Session
	selected int

	pendingFile *parley.FileRef
	status      string // transient, from the in-flight stream
	notice      string // one-shot command feedback

	running bool
	cancel  context.CancelFunc
	eventCh chan tea.Msg
	doneCh  chan ChatDoneMsg
	err     error
	ready   bool
}

// New creates a TUI Model. send and regen are the chat entry points, st
// is the session store, raw is the underlying blob storage used for
// preference persistence.
func New(send SendFunc, regen RegenerateFunc, sessions *store.Store, raw storage.Storage, theme parley.Theme, cfg Config) Model {
	ti := textinput.New()
	ti.Placeholder = "Type a message, or /help for commands..."
	ti.Prompt = ""
	ti.Focus()
	ti.CharLimit = 0

	return Model{
		Input:     ti,
		send:      send,
		regen:     regen,
		store:     sessions,
		st:        raw,
		theme:     theme,
		styles:    NewStyles(theme),
		config:    cfg,
		provider:  cfg.Provider,
		model:     cfg.Model,
		sessionID: newSessionID(),

		pendingFile: cfg.Attachment,
	}
}

func newSessionID() string {
	return fmt.Sprintf("%d", time.Now().UnixNano())
}

// Running returns whether a send is in flight.
func (m Model) Running() bool { return m.running }

// Err returns the last error, if any.
func (m Model) Err() error { return m.err }

// Conversation returns the current conversation state.
func (m Model) Conversation() parley.Conversation { return m.conv }

// SessionID returns the id of the open session.
func (m Model) SessionID() string { return m.sessionID }

// SetRunningWithCancel is a test helper that puts the model in a running
// state with a cancel function.
func SetRunningWithCancel(m Model, cancel func()) (Model, tea.Cmd) {
	m.running = true
	m.cancel = cancel
	return m, nil
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m = m.handleWindowSize(msg)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case ConversationMsg:
		m.conv = msg.Conversation
		m = m.refreshViewport(true)
		if m.eventCh != nil {
			return m, listenForEvent(m.eventCh, m.doneCh)
		}
		return m, nil

	case StatusMsg:
		m.status = msg.Text
		if m.eventCh != nil {
			return m, listenForEvent(m.eventCh, m.doneCh)
		}
		return m, nil

	case ChatDoneMsg:
		m.running = false
		m.cancel = nil
		m.eventCh = nil
		m.doneCh = nil
		m.status = ""
		m.conv = msg.Conversation
		if msg.Err != nil && !errors.Is(msg.Err, context.Canceled) {
			m.err = msg.Err
		}
		m = m.refreshViewport(true)
		cmd := m.Input.Focus()
		cmds = append(cmds, cmd)
		return m, tea.Batch(cmds...)
	}

	// Pass remaining messages to sub-components.
	// Viewport always receives messages for scrolling (keyboard and mouse).
	var cmd tea.Cmd
	m.Viewport, cmd = m.Viewport.Update(msg)
	cmds = append(cmds, cmd)

	if !m.running && !m.sidebar {
		m.Input, cmd = m.Input.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Initializing..."
	}

	var b strings.Builder
	b.WriteString(m.Viewport.View())
	b.WriteString("\n")
	b.WriteString(m.statusLine())
	b.WriteString("\n")
	b.WriteString(m.Input.View())
	return b.String()
}

func (m Model) handleWindowSize(msg tea.WindowSizeMsg) Model {
	inputH := 1
	statusH := 1
	gapH := 2 // newlines between sections
	vpHeight := msg.Height - inputH - statusH - gapH
	if vpHeight < 1 {
		vpHeight = 1
	}

	if !m.ready {
		m.Viewport = viewport.New(msg.Width, vpHeight)
		m.ready = true
		m = m.refreshViewport(true)
	} else {
		m.Viewport.Width = msg.Width
		m.Viewport.Height = vpHeight
		m = m.refreshViewport(false)
	}

	m.Input.Width = msg.Width
	return m
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC:
		if m.running {
			if m.cancel != nil {
				m.cancel()
			}
			return m, nil
		}
		return m, tea.Quit

	case tea.KeyCtrlS:
		return m.toggleSidebar()

	case tea.KeyCtrlN:
		if m.running {
			return m, nil
		}
		m = m.newChat()
		return m, nil

	case tea.KeyCtrlR:
		if m.running || m.sidebar {
			return m, nil
		}
		if id, ok := m.lastAssistantID(); ok {
			return m.startRegenerate(id)
		}
		return m, nil

	case tea.KeyEsc:
		if m.sidebar {
			return m.toggleSidebar()
		}
		return m, nil

	case tea.KeyEnter:
		if m.sidebar {
			return m.openSelected()
		}
		if m.running {
			return m, nil
		}
		text := strings.TrimSpace(m.Input.Value())
		if text == "" {
			return m, nil
		}
		return m.submitInput(text)
	}

	if m.sidebar {
		return m.handleSidebarKey(msg)
	}

	// When idle, pass keys to both the input (for typing) and the
	// viewport (for scrolling). Only forward non-character keys to the
	// viewport to avoid conflicts ('j'/'k' scroll AND type).
	if !m.running {
		var cmd tea.Cmd
		var cmds []tea.Cmd

		if msg.Type != tea.KeyRunes {
			m.Viewport, cmd = m.Viewport.Update(msg)
			cmds = append(cmds, cmd)
		}

		m.Input, cmd = m.Input.Update(msg)
		cmds = append(cmds, cmd)

		return m, tea.Batch(cmds...)
	}

	return m, nil
}

func (m Model) submitInput(text string) (tea.Model, tea.Cmd) {
	if strings.HasPrefix(text, "/") {
		return m.runCommand(text)
	}
	return m.startSend(text)
}

func (m Model) startSend(text string) (tea.Model, tea.Cmd) {
	m.Input.SetValue("")
	m.err = nil
	m.notice = ""

	file := m.pendingFile
	m.pendingFile = nil

	req := SendRequest{
		SessionID:    m.sessionID,
		Conversation: m.conv,
		Text:         text,
		File:         file,
		Provider:     m.provider,
		Model:        m.model,
	}
	send := m.send
	return m.startRun(func(ctx context.Context, ev Events) (parley.Conversation, error) {
		return send(ctx, req, ev)
	})
}

func (m Model) startRegenerate(assistantID int64) (tea.Model, tea.Cmd) {
	m.err = nil
	m.notice = ""

	req := RegenerateRequest{
		SessionID:    m.sessionID,
		Conversation: m.conv,
		AssistantID:  assistantID,
		Provider:     m.provider,
		Model:        m.model,
	}
	regen := m.regen
	return m.startRun(func(ctx context.Context, ev Events) (parley.Conversation, error) {
		return regen(ctx, req, ev)
	})
}

// startRun wires up channels and context for one chat run and kicks off
// the producer and listener commands.
func (m Model) startRun(run func(context.Context, Events) (parley.Conversation, error)) (tea.Model, tea.Cmd) {
	ctx, cancel := context.WithCancel(context.Background())
	m.cancel = cancel
	m.eventCh = make(chan tea.Msg, 256)
	m.doneCh = make(chan ChatDoneMsg, 1)
	m.running = true
	m.Input.Blur()

	return m, tea.Batch(
		runChat(ctx, run, m.eventCh, m.doneCh),
		listenForEvent(m.eventCh, m.doneCh),
	)
}

func (m Model) newChat() Model {
	m.sessionID = newSessionID()
	m.conv = parley.Conversation{}
	m.pendingFile = nil
	m.err = nil
	m.notice = ""
	m.sidebar = false
	return m.refreshViewport(true)
}

func (m Model) lastAssistantID() (int64, bool) {
	for i := len(m.conv.Messages) - 1; i >= 0; i-- {
		msg := m.conv.Messages[i]
		if msg.Role == parley.RoleAssistant && !msg.Streaming {
			return msg.ID, true
		}
	}
	return 0, false
}

// refreshViewport re-renders the viewport content for the current mode.
// toBottom scrolls to the end, used when new content arrives.
func (m Model) refreshViewport(toBottom bool) Model {
	if !m.ready {
		return m
	}
	if m.sidebar {
		m.Viewport.SetContent(m.renderSidebar())
		return m
	}
	m.Viewport.SetContent(m.renderConversation())
	if toBottom {
		m.Viewport.GotoBottom()
	}
	return m
}

func (m Model) renderConversation() string {
	if len(m.conv.Messages) == 0 {
		return m.styles.Muted.Render("No messages yet. Type below to start a conversation.")
	}
	var b strings.Builder
	for i, msg := range m.conv.Messages {
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(m.renderMessage(msg))
	}
	return b.String()
}

func (m Model) renderMessage(msg parley.Message) string {
	width := m.Viewport.Width

	if msg.Role == parley.RoleUser {
		content := m.styles.UserMsg.Render("> ") + msg.Content
		if msg.File != nil {
			content += "\n" + m.styles.Muted.Render(fmt.Sprintf("(attached: %s)", msg.File.Name))
		}
		return lipgloss.NewStyle().Width(width).Render(content)
	}

	switch {
	case msg.Error:
		content := m.styles.Error.Render("Error: ") + msg.Content
		return lipgloss.NewStyle().Width(width).Render(content)
	case msg.Streaming:
		// Raw text while streaming; markdown once finalized.
		content := msg.Content + m.styles.Accent.Render("▌")
		return lipgloss.NewStyle().Width(width).Render(content)
	default:
		out := markdown.Render(msg.Content, width, m.theme)
		switch msg.Feedback {
		case parley.FeedbackLike:
			out += "\n" + m.styles.Success.Render("(liked)")
		case parley.FeedbackDislike:
			out += "\n" + m.styles.Muted.Render("(disliked)")
		}
		return out
	}
}

func (m Model) statusLine() string {
	if m.err != nil {
		return m.styles.Error.Render(fmt.Sprintf("Error: %v", m.err))
	}
	if m.running {
		if m.status != "" {
			return m.styles.Status.Render(m.status)
		}
		return m.styles.Muted.Render("Generating... (Ctrl+C to stop)")
	}
	if m.sidebar {
		return m.styles.Muted.Render("j/k move, Enter open, p pin, d delete, Esc close")
	}
	if m.notice != "" {
		return m.styles.Success.Render(m.notice)
	}
	if m.config.Banner != "" {
		return m.styles.Status.Render(m.config.Banner)
	}
	label := string(m.provider)
	if m.model != "" {
		label += " · " + m.model
	}
	if m.pendingFile != nil {
		label += " · attached: " + m.pendingFile.Name
	}
	return m.styles.Muted.Render(label + " · Enter send · Ctrl+N new · Ctrl+S sessions · Ctrl+R regen · Ctrl+C quit")
}

// runChat runs the chat function in a goroutine, forwarding its callbacks
// into the event channel, and signals completion on doneCh.
func runChat(ctx context.Context, run func(context.Context, Events) (parley.Conversation, error), eventCh chan<- tea.Msg, doneCh chan<- ChatDoneMsg) tea.Cmd {
	return func() tea.Msg {
		ev := Events{
			OnConversation: func(c parley.Conversation) {
				select {
				case eventCh <- ConversationMsg{Conversation: c}:
				case <-ctx.Done():
				}
			},
			OnStatus: func(text string) {
				select {
				case eventCh <- StatusMsg{Text: text}:
				case <-ctx.Done():
				}
			},
		}
		conv, err := run(ctx, ev)
		close(eventCh)
		doneCh <- ChatDoneMsg{Conversation: conv, Err: err}
		return nil
	}
}

// listenForEvent waits for the next event from the channel. When the
// channel closes, it reads the final state from doneCh.
func listenForEvent(ch <-chan tea.Msg, doneCh <-chan ChatDoneMsg) tea.Cmd {
	return func() tea.Msg {
		msg, ok := <-ch
		if !ok {
			return <-doneCh
		}
		return msg
	}
}
