// Package tui implements the interactive terminal interface: a chat screen
// streaming agent events and an upload screen for document batches.
package tui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"github.com/obiajulu/comply/api"
	"github.com/obiajulu/comply/storage"
	"github.com/obiajulu/comply/upload"
)

// page identifies one of the two screens.
type page int

const (
	pageChat page = iota
	pageUpload
)

// Config wires the TUI to the backend and optional transcript storage.
type Config struct {
	Client    *api.Client
	Store     storage.TranscriptStorage
	SessionID string
	History   []storage.Record
	Log       zerolog.Logger
}

// App is the root model: it routes between the chat and upload pages.
type App struct {
	page     page
	chat     chatModel
	uploads  uploadModel
	width    int
	height   int
	quitting bool
}

// NewApp builds the root model and both pages.
func NewApp(cfg Config) (App, error) {
	chat, err := newChatModel(cfg.Client, cfg.Store, cfg.SessionID, cfg.History)
	if err != nil {
		return App{}, fmt.Errorf("failed to build chat page: %w", err)
	}

	coordinator := upload.NewCoordinator(cfg.Client, cfg.Log)

	return App{
		page:    pageChat,
		chat:    chat,
		uploads: newUploadModel(coordinator),
	}, nil
}

// Run starts the Bubble Tea program and blocks until the user quits.
func Run(cfg Config) error {
	app, err := NewApp(cfg)
	if err != nil {
		return err
	}
	_, err = tea.NewProgram(app, tea.WithAltScreen()).Run()
	return err
}

// Init implements tea.Model.
func (a App) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model. Stream and upload messages are routed to
// their owning page regardless of which page is visible; keys go to the
// visible page only.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			a.quitting = true
			return a, tea.Quit
		case "tab":
			return a.switchPage(), nil
		}
		return a.routeToVisible(msg)

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		var chatCmd, uploadCmd tea.Cmd
		a.chat, chatCmd = a.chat.update(msg)
		a.uploads, uploadCmd = a.uploads.update(msg)
		return a, tea.Batch(chatCmd, uploadCmd)

	case streamEventMsg, streamDoneMsg, streamFailMsg, transcriptSavedMsg:
		var cmd tea.Cmd
		a.chat, cmd = a.chat.update(msg)
		return a, cmd

	case uploadResultMsg:
		var cmd tea.Cmd
		a.uploads, cmd = a.uploads.update(msg)
		return a, cmd
	}

	// Spinner ticks and everything else reach both pages; each page gates
	// on its own activity.
	var chatCmd, uploadCmd tea.Cmd
	a.chat, chatCmd = a.chat.update(msg)
	a.uploads, uploadCmd = a.uploads.update(msg)
	return a, tea.Batch(chatCmd, uploadCmd)
}

func (a App) routeToVisible(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch a.page {
	case pageChat:
		a.chat, cmd = a.chat.update(msg)
	case pageUpload:
		a.uploads, cmd = a.uploads.update(msg)
	}
	return a, cmd
}

func (a App) switchPage() App {
	switch a.page {
	case pageChat:
		a.page = pageUpload
		a.chat.input.Blur()
		a.uploads.input.Focus()
	case pageUpload:
		a.page = pageChat
		a.uploads.input.Blur()
		a.chat.input.Focus()
	}
	return a
}

// View implements tea.Model.
func (a App) View() string {
	if a.quitting {
		return "Goodbye!\n"
	}

	var body string
	switch a.page {
	case pageChat:
		body = a.chat.view()
	case pageUpload:
		body = a.uploads.view()
	}

	return a.renderTabs() + "\n\n" + body
}

func (a App) renderTabs() string {
	chatTab := tabStyle.Render("Chat")
	uploadTab := tabStyle.Render("Upload")
	switch a.page {
	case pageChat:
		chatTab = activeTabStyle.Render("Chat")
	case pageUpload:
		uploadTab = activeTabStyle.Render("Upload")
	}
	return chatTab + " " + uploadTab
}
