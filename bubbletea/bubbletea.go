// Package bubbletea provides the Bubble Tea TUI for the parley chat client.
package bubbletea

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/parleychat/parley"
)

// Events carries the callbacks a chat run uses to publish progress. The
// conversation callback fires after every reducer transition; the status
// callback carries transient notices such as a cold-start wait.
type Events struct {
	OnConversation func(parley.Conversation)
	OnStatus       func(string)
}

// SendRequest describes one send as the TUI hands it off.
type SendRequest struct {
	SessionID    string
	Conversation parley.Conversation
	Text         string
	File         *parley.FileRef
	Provider     parley.ProviderID
	Model        string
}

// SendFunc runs one send end-to-end. It blocks until the exchange reaches
// a final state or the context is cancelled, and returns the resulting
// conversation.
type SendFunc func(ctx context.Context, req SendRequest, ev Events) (parley.Conversation, error)

// RegenerateRequest describes a regeneration of an assistant message.
type RegenerateRequest struct {
	SessionID    string
	Conversation parley.Conversation
	AssistantID  int64
	Provider     parley.ProviderID
	Model        string
}

// RegenerateFunc re-runs the exchange that produced the given assistant
// message. Same blocking contract as SendFunc.
type RegenerateFunc func(ctx context.Context, req RegenerateRequest, ev Events) (parley.Conversation, error)

// Run creates and runs the Bubble Tea TUI program. It blocks until the
// program exits. When the context is cancelled, the program quits.
func Run(ctx context.Context, m Model) error {
	p := tea.NewProgram(m, tea.WithAltScreen())
	go func() {
		<-ctx.Done()
		p.Quit()
	}()
	_, err := p.Run()
	return err
}

// ConversationMsg delivers an updated conversation snapshot to the model.
type ConversationMsg struct {
	Conversation parley.Conversation
}

// StatusMsg delivers a transient status notice from an in-flight send.
type StatusMsg struct {
	Text string
}

// ChatDoneMsg signals that the chat run has completed. Conversation is
// the authoritative final state.
type ChatDoneMsg struct {
	Conversation parley.Conversation
	Err          error
}
