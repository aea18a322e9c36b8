// Package model provides domain types shared across packages.
package model

import "encoding/json"

// EventType identifies the kind of activity an AgentEvent reports.
type EventType string

// Event types emitted by the backend agent runner.
const (
	EventAgentStart    EventType = "agent_start"
	EventAgentActive   EventType = "agent_active"
	EventAgentText     EventType = "agent_text"
	EventToolCall      EventType = "tool_call"
	EventToolResult    EventType = "tool_result"
	EventAgentComplete EventType = "agent_complete"
	EventError         EventType = "error"
)

// Event is one structured record from the backend describing an agent's
// activity or output. The populated fields depend on Type:
//   - agent_start, agent_complete: Agent, Message
//   - agent_active: Agent
//   - agent_text: Agent, Content
//   - tool_call: Agent, Tool, Args
//   - tool_result: Agent, Tool, Result
//   - error: Agent, Message, Traceback
type Event struct {
	Type      EventType       `json:"type"`
	Agent     string          `json:"agent,omitempty"`
	Message   string          `json:"message,omitempty"`
	Content   string          `json:"content,omitempty"`
	Tool      string          `json:"tool,omitempty"`
	Args      json.RawMessage `json:"args,omitempty"`
	Result    string          `json:"result,omitempty"`
	Traceback string          `json:"traceback,omitempty"`
}

// IsText reports whether the event carries a text fragment for the
// in-progress assistant message.
func (e Event) IsText() bool {
	return e.Type == EventAgentText
}
