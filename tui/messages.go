package tui

import (
	"github.com/obiajulu/comply/api"
	"github.com/obiajulu/comply/model"
)

// streamEventMsg carries one decoded agent event off the open chat stream.
type streamEventMsg struct {
	event model.Event
}

// streamDoneMsg signals the natural end of the chat stream.
type streamDoneMsg struct{}

// streamFailMsg signals a transport failure on the chat stream.
type streamFailMsg struct {
	err error
}

// uploadResultMsg carries the outcome of one upload batch.
type uploadResultMsg struct {
	result api.EmbedResult
	err    error
}

// transcriptSavedMsg reports the outcome of persisting the transcript.
type transcriptSavedMsg struct {
	err error
}
