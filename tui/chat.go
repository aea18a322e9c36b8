package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"

	"github.com/obiajulu/comply/api"
	"github.com/obiajulu/comply/model"
	"github.com/obiajulu/comply/storage"
	"github.com/obiajulu/comply/stream"
)

// maxRenderedMessages bounds how much conversation history is drawn; the
// view stays anchored to the latest messages.
const maxRenderedMessages = 12

// chatModel is the chat page. It owns the conversation reducer for the
// whole program run and exactly one submission may stream at a time.
type chatModel struct {
	client    *api.Client
	store     storage.TranscriptStorage
	sessionID string

	reducer  *stream.Reducer
	input    textinput.Model
	spinner  spinner.Model
	renderer *glamour.TermRenderer

	// events is the channel for the submission currently in flight.
	events chan tea.Msg
	cancel context.CancelFunc

	width   int
	saveErr error
}

func newChatModel(client *api.Client, store storage.TranscriptStorage, sessionID string, history []storage.Record) (chatModel, error) {
	ti := textinput.New()
	ti.Placeholder = "Ask a compliance question..."
	ti.Focus()
	ti.CharLimit = 500
	ti.Width = 80

	s := spinner.New()
	s.Spinner = spinner.Dot

	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(80),
	)
	if err != nil {
		return chatModel{}, err
	}

	reducer := stream.NewReducer()
	if len(history) > 0 {
		var msgs []*model.Message
		for _, rec := range history {
			msg := &model.Message{Role: model.Role(rec.Role), Text: rec.Content}
			for _, agent := range rec.AgentsUsed {
				msg.AppendEvent(model.Event{Type: model.EventAgentActive, Agent: agent})
			}
			msgs = append(msgs, msg)
		}
		reducer.Seed(msgs)
	}

	return chatModel{
		client:    client,
		store:     store,
		sessionID: sessionID,
		reducer:   reducer,
		input:     ti,
		spinner:   s,
		renderer:  renderer,
		width:     80,
	}, nil
}

func (m chatModel) streaming() bool {
	return m.reducer.Phase() == stream.PhaseStreaming
}

func (m chatModel) update(msg tea.Msg) (chatModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.input.Width = msg.Width - 4
		return m, nil

	case spinner.TickMsg:
		if m.streaming() {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
		return m, nil

	case streamEventMsg:
		m.reducer.Apply(msg.event)
		return m, waitEventCmd(m.events)

	case streamDoneMsg:
		m.reducer.Complete()
		return m.finishStream()

	case streamFailMsg:
		m.reducer.Fail(msg.err)
		return m.finishStream()

	case transcriptSavedMsg:
		m.saveErr = msg.err
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m chatModel) handleKey(msg tea.KeyMsg) (chatModel, tea.Cmd) {
	if msg.String() == "enter" {
		// Input is disabled while a submission streams.
		if m.streaming() {
			return m, nil
		}
		query := strings.TrimSpace(m.input.Value())
		if query == "" {
			return m, nil
		}
		return m.submit(query)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m chatModel) submit(query string) (chatModel, tea.Cmd) {
	if err := m.reducer.Begin(query); err != nil {
		return m, nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	m.cancel = cancel
	m.events = make(chan tea.Msg, 64)
	m.input.Reset()
	m.input.Blur()

	return m, tea.Batch(
		openStreamCmd(ctx, m.client, query, m.events),
		waitEventCmd(m.events),
		m.spinner.Tick,
	)
}

func (m chatModel) finishStream() (chatModel, tea.Cmd) {
	if m.cancel != nil {
		m.cancel()
		m.cancel = nil
	}
	m.input.Focus()

	if m.store == nil {
		return m, nil
	}
	var records []storage.Record
	for _, msg := range m.reducer.Conversation() {
		records = append(records, storage.Record{
			Role:       string(msg.Role),
			Content:    msg.Text,
			AgentsUsed: msg.AgentsUsed(),
		})
	}
	return m, saveTranscriptCmd(m.store, m.sessionID, records)
}

func (m chatModel) view() string {
	var b strings.Builder

	b.WriteString(m.renderConversation())

	if m.streaming() {
		session := m.reducer.Session()
		if session.ActiveAgent != "" {
			b.WriteString(fmt.Sprintf("\n%s %s working...\n",
				m.spinner.View(),
				agentStyle.Render(session.ActiveAgent)))
		} else {
			b.WriteString(fmt.Sprintf("\n%s Waiting for agents...\n", m.spinner.View()))
		}
		if len(session.AgentHistory) > 0 {
			b.WriteString(hintStyle.Render("agents: " + strings.Join(session.AgentHistory, ", ")))
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(m.input.View())

	if !m.streaming() {
		b.WriteString(hintStyle.Render("\n[enter to submit, tab to switch screens, ctrl+c to quit]"))
	}
	if m.saveErr != nil {
		b.WriteString(errorStyle.Render(fmt.Sprintf("\nfailed to save transcript: %v", m.saveErr)))
	}

	return b.String()
}

func (m chatModel) renderConversation() string {
	conv := m.reducer.Conversation()

	start := len(conv) - maxRenderedMessages
	if start < 0 {
		start = 0
	}

	var b strings.Builder
	for i, msg := range conv[start:] {
		inProgress := m.streaming() && start+i == len(conv)-1

		switch msg.Role {
		case model.RoleUser:
			b.WriteString(promptStyle.Render("> "))
			b.WriteString(msg.Text)
			b.WriteString("\n\n")

		case model.RoleAssistant:
			b.WriteString(m.renderTimeline(msg))
			if inProgress {
				// Streaming text is shown raw; markdown rendering waits
				// for the completed message.
				b.WriteString(msg.Text)
				b.WriteString("\n")
			} else if msg.Text != "" {
				rendered, err := m.renderer.Render(msg.Text)
				if err != nil {
					b.WriteString(msg.Text)
				} else {
					b.WriteString(rendered)
				}
			}
			if used := msg.AgentsUsed(); len(used) > 0 && !inProgress {
				b.WriteString(hintStyle.Render("agents: " + strings.Join(used, ", ")))
				b.WriteString("\n")
			}
			b.WriteString("\n")
		}
	}
	return b.String()
}

// renderTimeline lists the non-text events of a message in receipt order.
func (m chatModel) renderTimeline(msg *model.Message) string {
	var b strings.Builder
	for _, ev := range msg.Events {
		line := formatEvent(ev)
		if line == "" {
			continue
		}
		b.WriteString(eventStyle.Render(line))
		b.WriteString("\n")
	}
	return b.String()
}

func formatEvent(ev model.Event) string {
	switch ev.Type {
	case model.EventAgentStart:
		if ev.Message != "" {
			return fmt.Sprintf("▸ %s: %s", ev.Agent, ev.Message)
		}
		return fmt.Sprintf("▸ %s started", ev.Agent)
	case model.EventAgentActive:
		return fmt.Sprintf("▸ %s active", ev.Agent)
	case model.EventToolCall:
		args := truncateString(string(ev.Args), 80)
		return fmt.Sprintf("⚙ %s called %s %s", ev.Agent, ev.Tool, args)
	case model.EventToolResult:
		return fmt.Sprintf("⚙ %s returned: %s", ev.Tool, truncateString(ev.Result, 80))
	case model.EventAgentComplete:
		if ev.Message != "" {
			return fmt.Sprintf("✓ %s", ev.Message)
		}
		return fmt.Sprintf("✓ %s complete", ev.Agent)
	case model.EventError:
		return fmt.Sprintf("✗ %s", ev.Message)
	default:
		return ""
	}
}

// truncateString truncates a string to maxLen runes, preserving UTF-8 boundaries.
func truncateString(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen]) + "..."
}
