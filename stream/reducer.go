package stream

import (
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/obiajulu/comply/model"
)

// Phase is the lifecycle state of one submission.
type Phase int

// Submission lifecycle: idle until the first query, streaming while events
// arrive, then completed or errored until the next submission.
const (
	PhaseIdle Phase = iota
	PhaseStreaming
	PhaseCompleted
	PhaseErrored
)

// String returns the phase name for logging and display.
func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseStreaming:
		return "streaming"
	case PhaseCompleted:
		return "completed"
	case PhaseErrored:
		return "errored"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

// ErrStreaming is returned by Begin while a submission is already active.
var ErrStreaming = errors.New("a submission is already streaming")

// Session is transient per-submission state: which agent is currently
// active and which agents have participated so far, in first-seen order.
type Session struct {
	ActiveAgent  string
	AgentHistory []string

	seen map[string]bool
}

func (s *Session) activate(agent string) {
	if agent == "" {
		return
	}
	s.ActiveAgent = agent
	if s.seen == nil {
		s.seen = make(map[string]bool)
	}
	if !s.seen[agent] {
		s.seen[agent] = true
		s.AgentHistory = append(s.AgentHistory, agent)
	}
}

// Reducer owns one conversation and the session state for the submission
// currently in flight. It is not safe for concurrent use; callers feed it
// from a single goroutine (the UI update loop or a one-shot command).
type Reducer struct {
	conversation []*model.Message
	session      Session
	phase        Phase
}

// NewReducer creates an empty reducer in the idle phase.
func NewReducer() *Reducer {
	return &Reducer{}
}

// Phase returns the current submission phase.
func (r *Reducer) Phase() Phase {
	return r.phase
}

// Session returns the per-submission agent tracking state.
func (r *Reducer) Session() Session {
	return r.session
}

// Conversation returns the ordered messages. The slice is shared; callers
// must treat it as read-only.
func (r *Reducer) Conversation() []*model.Message {
	return r.conversation
}

// Seed appends already-completed messages, such as a transcript loaded from
// storage, ahead of any live submission. It is ignored mid-stream.
func (r *Reducer) Seed(msgs []*model.Message) {
	if r.phase == PhaseStreaming {
		return
	}
	r.conversation = append(r.conversation, msgs...)
}

// Begin starts a new submission: it appends the user message and an empty
// in-progress assistant message, and resets the session. Returns
// ErrStreaming if a submission is already active.
func (r *Reducer) Begin(query string) error {
	if r.phase == PhaseStreaming {
		return ErrStreaming
	}

	r.conversation = append(r.conversation,
		&model.Message{ID: uuid.NewString(), Role: model.RoleUser, Text: query},
		&model.Message{ID: uuid.NewString(), Role: model.RoleAssistant},
	)
	r.session = Session{}
	r.phase = PhaseStreaming
	return nil
}

// Apply folds one event into the in-progress assistant message and the
// session. Events received outside a streaming submission are dropped.
func (r *Reducer) Apply(ev model.Event) {
	if r.phase != PhaseStreaming {
		return
	}

	msg := r.pending()

	switch ev.Type {
	case model.EventAgentStart, model.EventAgentActive:
		r.session.activate(ev.Agent)
	case model.EventAgentText:
		msg.AppendText(ev.Content)
	}

	// Every event, whatever its kind, lands on the message timeline in
	// receipt order and contributes its agent to the used set.
	msg.AppendEvent(ev)
}

// Complete marks the natural end of the stream. The active agent indicator
// is cleared; agent history and events stay intact for display.
func (r *Reducer) Complete() {
	if r.phase != PhaseStreaming {
		return
	}
	r.session.ActiveAgent = ""
	r.phase = PhaseCompleted
}

// Fail records a transport error: the in-progress message text is replaced
// with an error description. Previously accumulated events are kept.
func (r *Reducer) Fail(err error) {
	if r.phase != PhaseStreaming {
		return
	}
	msg := r.pending()
	msg.Text = fmt.Sprintf("Error: %v", err)
	r.session.ActiveAgent = ""
	r.phase = PhaseErrored
}

// Pending returns the in-progress assistant message, or nil when no
// submission is streaming.
func (r *Reducer) Pending() *model.Message {
	if r.phase != PhaseStreaming {
		return nil
	}
	return r.pending()
}

func (r *Reducer) pending() *model.Message {
	return r.conversation[len(r.conversation)-1]
}
