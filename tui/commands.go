package tui

import (
	"context"
	"errors"
	"io"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/obiajulu/comply/api"
	"github.com/obiajulu/comply/storage"
	"github.com/obiajulu/comply/upload"
)

// openStreamCmd opens the chat stream and pumps every event into ch. The
// Update loop consumes ch one message at a time via waitEventCmd, so all
// state mutation stays on the program's single update goroutine.
func openStreamCmd(ctx context.Context, client *api.Client, query string, ch chan<- tea.Msg) tea.Cmd {
	return func() tea.Msg {
		s, err := client.Chat(ctx, query)
		if err != nil {
			ch <- streamFailMsg{err: err}
			return nil
		}
		defer s.Close()

		for {
			ev, err := s.Recv()
			if errors.Is(err, io.EOF) {
				ch <- streamDoneMsg{}
				return nil
			}
			if err != nil {
				ch <- streamFailMsg{err: err}
				return nil
			}
			ch <- streamEventMsg{event: ev}
		}
	}
}

// waitEventCmd delivers the next stream message. The chat page re-issues it
// after every delivery until a terminal message arrives.
func waitEventCmd(ch <-chan tea.Msg) tea.Cmd {
	return func() tea.Msg {
		return <-ch
	}
}

// runUploadCmd submits one batch through the coordinator.
func runUploadCmd(coordinator *upload.Coordinator, paths []string) tea.Cmd {
	return func() tea.Msg {
		result, err := coordinator.Run(context.Background(), paths)
		return uploadResultMsg{result: result, err: err}
	}
}

// saveTranscriptCmd persists the finished conversation for a session.
func saveTranscriptCmd(store storage.TranscriptStorage, sessionID string, records []storage.Record) tea.Cmd {
	return func() tea.Msg {
		err := store.Save(context.Background(), sessionID, records)
		return transcriptSavedMsg{err: err}
	}
}
