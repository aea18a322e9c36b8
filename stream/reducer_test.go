package stream

import (
	"errors"
	"testing"

	"github.com/obiajulu/comply/model"
)

func TestReducerScenario(t *testing.T) {
	r := NewReducer()
	if err := r.Begin("Does this comply?"); err != nil {
		t.Fatalf("Begin failed: %v", err)
	}

	r.Apply(model.Event{Type: model.EventAgentStart, Agent: "RootAgent"})
	r.Apply(model.Event{Type: model.EventAgentText, Agent: "RAGAgent", Content: "Yes"})
	r.Apply(model.Event{Type: model.EventAgentText, Agent: "RAGAgent", Content: ", it complies."})
	r.Complete()

	conv := r.Conversation()
	if len(conv) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(conv))
	}
	if conv[0].Role != model.RoleUser || conv[0].Text != "Does this comply?" {
		t.Errorf("unexpected user message: %+v", conv[0])
	}

	assistant := conv[1]
	if assistant.Text != "Yes, it complies." {
		t.Errorf("expected accumulated text 'Yes, it complies.', got %q", assistant.Text)
	}

	history := r.Session().AgentHistory
	if len(history) != 1 || history[0] != "RootAgent" {
		t.Errorf("expected agent history [RootAgent], got %v", history)
	}

	used := assistant.AgentsUsed()
	if len(used) != 2 || used[0] != "RootAgent" || used[1] != "RAGAgent" {
		t.Errorf("expected agents used [RootAgent RAGAgent], got %v", used)
	}
	if len(assistant.Events) != 3 {
		t.Errorf("expected 3 events on message, got %d", len(assistant.Events))
	}
}

func TestReducerAgentHistoryNoDuplicates(t *testing.T) {
	r := NewReducer()
	if err := r.Begin("q"); err != nil {
		t.Fatalf("Begin failed: %v", err)
	}

	for _, agent := range []string{"RootAgent", "RAGAgent", "RootAgent", "WebSearchAgent", "RAGAgent"} {
		r.Apply(model.Event{Type: model.EventAgentActive, Agent: agent})
	}

	history := r.Session().AgentHistory
	want := []string{"RootAgent", "RAGAgent", "WebSearchAgent"}
	if len(history) != len(want) {
		t.Fatalf("expected %d agents, got %v", len(want), history)
	}
	for i, agent := range want {
		if history[i] != agent {
			t.Errorf("history[%d] = %q, want %q", i, history[i], agent)
		}
	}
	if r.Session().ActiveAgent != "RAGAgent" {
		t.Errorf("expected last active agent RAGAgent, got %q", r.Session().ActiveAgent)
	}
}

func TestReducerAgentsUsedUnion(t *testing.T) {
	r := NewReducer()
	if err := r.Begin("q"); err != nil {
		t.Fatalf("Begin failed: %v", err)
	}

	r.Apply(model.Event{Type: model.EventAgentStart, Agent: "RootAgent"})
	r.Apply(model.Event{Type: model.EventToolCall, Agent: "RAGAgent", Tool: "search_internal_docs"})
	r.Apply(model.Event{Type: model.EventToolResult, Agent: "RAGAgent", Tool: "search_internal_docs"})
	r.Apply(model.Event{Type: model.EventAgentComplete, Agent: "RootAgent"})

	used := r.Pending().AgentsUsed()
	if len(used) != 2 || used[0] != "RootAgent" || used[1] != "RAGAgent" {
		t.Errorf("expected [RootAgent RAGAgent], got %v", used)
	}
}

func TestReducerSingleSubmission(t *testing.T) {
	r := NewReducer()
	if err := r.Begin("first"); err != nil {
		t.Fatalf("Begin failed: %v", err)
	}
	if err := r.Begin("second"); !errors.Is(err, ErrStreaming) {
		t.Fatalf("expected ErrStreaming, got %v", err)
	}

	r.Complete()
	if err := r.Begin("third"); err != nil {
		t.Fatalf("Begin after completion failed: %v", err)
	}
	if len(r.Conversation()) != 4 {
		t.Errorf("expected 4 messages, got %d", len(r.Conversation()))
	}
}

func TestReducerFailPreservesEvents(t *testing.T) {
	r := NewReducer()
	if err := r.Begin("q"); err != nil {
		t.Fatalf("Begin failed: %v", err)
	}

	r.Apply(model.Event{Type: model.EventAgentStart, Agent: "RootAgent"})
	r.Apply(model.Event{Type: model.EventAgentText, Agent: "AnalyzerAgent", Content: "partial"})
	r.Fail(errors.New("connection reset"))

	if r.Phase() != PhaseErrored {
		t.Fatalf("expected errored phase, got %v", r.Phase())
	}

	msg := r.Conversation()[1]
	if msg.Text != "Error: connection reset" {
		t.Errorf("expected error text, got %q", msg.Text)
	}
	if len(msg.Events) != 2 {
		t.Errorf("expected events preserved, got %d", len(msg.Events))
	}
	if r.Session().ActiveAgent != "" {
		t.Errorf("expected active agent cleared, got %q", r.Session().ActiveAgent)
	}
	if len(r.Session().AgentHistory) != 1 {
		t.Errorf("expected agent history preserved, got %v", r.Session().AgentHistory)
	}
}

func TestReducerCompleteClearsActiveAgent(t *testing.T) {
	r := NewReducer()
	if err := r.Begin("q"); err != nil {
		t.Fatalf("Begin failed: %v", err)
	}
	r.Apply(model.Event{Type: model.EventAgentActive, Agent: "WebSearchAgent"})
	r.Complete()

	if r.Session().ActiveAgent != "" {
		t.Errorf("expected active agent cleared, got %q", r.Session().ActiveAgent)
	}
	if len(r.Session().AgentHistory) != 1 {
		t.Errorf("expected agent history retained, got %v", r.Session().AgentHistory)
	}
	if r.Pending() != nil {
		t.Error("expected no pending message after completion")
	}
}

func TestReducerIgnoresEventsOutsideStream(t *testing.T) {
	r := NewReducer()
	r.Apply(model.Event{Type: model.EventAgentText, Agent: "RAGAgent", Content: "stray"})
	if len(r.Conversation()) != 0 {
		t.Errorf("expected no messages, got %d", len(r.Conversation()))
	}

	if err := r.Begin("q"); err != nil {
		t.Fatalf("Begin failed: %v", err)
	}
	r.Complete()
	r.Apply(model.Event{Type: model.EventAgentText, Agent: "RAGAgent", Content: "late"})
	if r.Conversation()[1].Text != "" {
		t.Errorf("expected late event ignored, got %q", r.Conversation()[1].Text)
	}
}

func TestReducerSeed(t *testing.T) {
	r := NewReducer()
	r.Seed([]*model.Message{
		{Role: model.RoleUser, Text: "earlier question"},
		{Role: model.RoleAssistant, Text: "earlier answer"},
	})

	if err := r.Begin("new question"); err != nil {
		t.Fatalf("Begin failed: %v", err)
	}
	if len(r.Conversation()) != 4 {
		t.Fatalf("expected 4 messages, got %d", len(r.Conversation()))
	}
	if r.Pending() != r.Conversation()[3] {
		t.Error("expected pending to be the last message")
	}
}
