package model

// Role identifies the author of a conversation message.
type Role string

// Conversation roles.
const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one entry in a conversation. Assistant messages accumulate
// text and events while a stream is in progress and become immutable once
// the stream terminates.
type Message struct {
	ID     string
	Role   Role
	Text   string
	Events []Event

	// agentsUsed records every agent identifier seen on this message's
	// events, in first-seen order with no duplicates.
	agentsUsed []string
	agentSeen  map[string]bool
}

// AppendEvent records an event on the message in receipt order and tracks
// the contributing agent, if any.
func (m *Message) AppendEvent(ev Event) {
	m.Events = append(m.Events, ev)
	if ev.Agent != "" {
		m.markAgent(ev.Agent)
	}
}

// AppendText appends a streamed text fragment to the message body.
func (m *Message) AppendText(fragment string) {
	m.Text += fragment
}

// AgentsUsed returns the agent identifiers that contributed to this message,
// in first-seen order. The returned slice is shared; callers must not modify it.
func (m *Message) AgentsUsed() []string {
	return m.agentsUsed
}

func (m *Message) markAgent(agent string) {
	if m.agentSeen == nil {
		m.agentSeen = make(map[string]bool)
	}
	if m.agentSeen[agent] {
		return
	}
	m.agentSeen[agent] = true
	m.agentsUsed = append(m.agentsUsed, agent)
}
