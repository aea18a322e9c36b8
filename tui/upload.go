package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/obiajulu/comply/upload"
)

// uploadModel is the upload page: collect file paths, submit them as one
// batch, show the result banner. The submit action is disabled while a
// batch is pending and when the selection is empty.
type uploadModel struct {
	coordinator *upload.Coordinator

	input   textinput.Model
	spinner spinner.Model

	selection []string
	pending   bool

	banner    string
	bannerErr bool

	width int
}

func newUploadModel(coordinator *upload.Coordinator) uploadModel {
	ti := textinput.New()
	ti.Placeholder = "Path to a PDF or DOCX file..."
	ti.CharLimit = 500
	ti.Width = 80

	s := spinner.New()
	s.Spinner = spinner.Dot

	return uploadModel{
		coordinator: coordinator,
		input:       ti,
		spinner:     s,
		width:       80,
	}
}

func (m uploadModel) update(msg tea.Msg) (uploadModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.input.Width = msg.Width - 4
		return m, nil

	case spinner.TickMsg:
		if m.pending {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
		return m, nil

	case uploadResultMsg:
		m.pending = false
		if msg.err != nil {
			// Failure keeps the selection so the user can re-submit.
			m.banner = fmt.Sprintf("✗ %v", msg.err)
			m.bannerErr = true
			return m, nil
		}
		m.banner = upload.Summary(msg.result)
		m.bannerErr = false
		m.selection = nil
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m uploadModel) handleKey(msg tea.KeyMsg) (uploadModel, tea.Cmd) {
	if m.pending {
		return m, nil
	}

	switch msg.String() {
	case "enter":
		path := strings.TrimSpace(m.input.Value())
		if path == "" {
			return m, nil
		}
		if err := upload.ValidateSelection([]string{path}); err != nil {
			m.banner = fmt.Sprintf("✗ %v", err)
			m.bannerErr = true
			return m, nil
		}
		m.selection = append(m.selection, path)
		m.input.Reset()
		m.banner = ""
		return m, nil

	case "ctrl+s":
		if len(m.selection) == 0 {
			// Nothing selected: the trigger stays inert, no request.
			return m, nil
		}
		m.pending = true
		m.banner = ""
		return m, tea.Batch(
			runUploadCmd(m.coordinator, m.selection),
			m.spinner.Tick,
		)

	case "ctrl+x":
		m.selection = nil
		m.banner = ""
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m uploadModel) view() string {
	var b strings.Builder

	b.WriteString(promptStyle.Render("Upload compliance documents"))
	b.WriteString("\n\n")

	if len(m.selection) == 0 {
		b.WriteString(hintStyle.Render("No files selected."))
		b.WriteString("\n")
	} else {
		for _, path := range m.selection {
			b.WriteString(fmt.Sprintf("  • %s\n", path))
		}
	}

	b.WriteString("\n")
	if m.pending {
		b.WriteString(fmt.Sprintf("%s Uploading %d file(s)...\n", m.spinner.View(), len(m.selection)))
	} else {
		b.WriteString(m.input.View())
		b.WriteString("\n")
	}

	if m.banner != "" {
		b.WriteString("\n")
		if m.bannerErr {
			b.WriteString(errorStyle.Render(m.banner))
		} else {
			b.WriteString(successStyle.Render(m.banner))
		}
		b.WriteString("\n")
	}

	if !m.pending {
		b.WriteString(hintStyle.Render("\n[enter to add file, ctrl+s to upload, ctrl+x to clear, tab to switch screens]"))
	}

	return b.String()
}
