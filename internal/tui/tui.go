// Package tui owns the terminal: it forwards key presses to the event
// multiplexer and draws the frames the application loop sends.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/slmtnm/s3tui/internal/app"
	"github.com/slmtnm/s3tui/internal/events"
	"github.com/slmtnm/s3tui/internal/storage"
)

// frameMsg carries a new frame into the program
type frameMsg app.Frame

// Styles - Minimalistic theme
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#ffffff")).
			Background(lipgloss.Color("#333333")).
			Padding(0, 1)

	selectedStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#ffffff")).
			Padding(0, 1)

	directoryStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#0066cc")).
			Bold(true)

	fileStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#bbbbbb"))

	unknownStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#999900")).
			Italic(true)

	metaStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#777777"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#cc0000")).
			Bold(true)

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#006600")).
			Bold(true)

	browserStyle = lipgloss.NewStyle().
			BorderForeground(lipgloss.Color("#999999")).
			Padding(1, 2)

	centerStyle = lipgloss.NewStyle().
			Align(lipgloss.Center)

	verticalCenterStyle = lipgloss.NewStyle().
				AlignVertical(lipgloss.Center)
)

// Model is the bubbletea model. It holds no navigation state of its own.
type Model struct {
	keys     KeyMap
	source   *events.ChannelSource
	frame    app.Frame
	received bool
	showHelp bool
	help     help.Model
	progress progress.Model
	width    int
	height   int
}

// NewModel creates a model pushing logical keys into source
func NewModel(source *events.ChannelSource) Model {
	return Model{
		keys:     DefaultKeyMap(),
		source:   source,
		help:     help.New(),
		progress: progress.New(progress.WithDefaultGradient()),
	}
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles messages and updates the model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.progress.Width = min(60, max(10, msg.Width-20))
		return m, nil

	case tea.KeyMsg:
		if m.showHelp || msg.String() == "?" {
			m.showHelp = !m.showHelp
			return m, nil
		}
		if k := m.keys.Translate(msg); k != events.KeyNone {
			m.source.Push(k)
		}
		return m, nil

	case frameMsg:
		m.frame = app.Frame(msg)
		m.received = true
		return m, nil
	}

	return m, nil
}

// View renders the current frame
func (m Model) View() string {
	if m.showHelp {
		return m.place(m.viewHelp())
	}
	return m.place(browserStyle.Render(m.viewBrowser()))
}

func (m Model) place(content string) string {
	if m.width > 0 && m.height > 0 {
		centered := centerStyle.Width(m.width).Render(content)
		return verticalCenterStyle.Height(m.height).Render(centered)
	}
	return content
}

// viewBrowser renders the file browser view
func (m Model) viewBrowser() string {
	var s strings.Builder
	f := m.frame

	title := fmt.Sprintf("%s: /%s", f.Provider, strings.TrimPrefix(f.Location, "/"))
	title += fmt.Sprintf(" → %s: /%s", f.Other, strings.TrimPrefix(f.Target, "/"))
	s.WriteString(titleStyle.Render(title))
	s.WriteString("\n\n")

	if f.Status != "" {
		if f.IsError {
			s.WriteString(errorStyle.Render(fmt.Sprintf("Error: %s", f.Status)))
		} else {
			s.WriteString(successStyle.Render(f.Status))
		}
		s.WriteString("\n\n")
	}

	if f.Progress != nil {
		s.WriteString(m.progress.ViewAs(f.Progress.Fraction()))
		s.WriteString(fmt.Sprintf(" %s", humanize.Bytes(uint64(f.Progress.Transferred))))
		s.WriteString("\n\n")
	}

	switch {
	case !m.received || f.State == app.Listing:
		s.WriteString("Loading...\n")
	case len(f.Entries) == 0:
		s.WriteString("No objects found in this location.\n")
	default:
		start, end := m.window(len(f.Entries), f.Selected)
		for i := start; i < end; i++ {
			s.WriteString(m.row(f.Entries[i], i == f.Selected))
			s.WriteString("\n")
		}
		if end-start < len(f.Entries) {
			s.WriteString(metaStyle.Render(fmt.Sprintf("[%d-%d of %d]", start+1, end, len(f.Entries))))
			s.WriteString("\n")
		}
	}

	s.WriteString("\n")
	s.WriteString(m.help.ShortHelpView(m.keys.shortHelp()))
	return s.String()
}

// window picks the slice of rows that fits the terminal and contains the cursor
func (m Model) window(total, cursor int) (int, int) {
	rows := m.height - 14
	if m.height == 0 || rows >= total {
		return 0, total
	}
	rows = min(max(rows, 3), total)
	start := cursor - rows/2
	if start+rows > total {
		start = total - rows
	}
	start = max(start, 0)
	return start, start + rows
}

func (m Model) row(e storage.Entry, selected bool) string {
	cursor := " "
	if selected {
		cursor = ">"
	}

	var line string
	switch e.Kind {
	case storage.Directory:
		line = fmt.Sprintf("%s %s", cursor, directoryStyle.Render(e.Name))
	case storage.Unknown:
		line = fmt.Sprintf("%s %s", cursor, unknownStyle.Render(e.Name+" (?)"))
	default:
		line = fmt.Sprintf("%s %s", cursor, fileStyle.Render(e.Name))
	}
	if meta := describe(e); meta != "" {
		line += " " + metaStyle.Render(meta)
	}

	if selected {
		line = selectedStyle.Render(line)
	}
	return line
}

// describe formats the optional metadata that the backend reported
func describe(e storage.Entry) string {
	var parts []string
	if e.Size != nil && e.Kind == storage.File {
		parts = append(parts, humanize.Bytes(uint64(*e.Size)))
	}
	if e.LastModified != nil {
		parts = append(parts, e.LastModified.Format("2006-01-02 15:04:05"))
	}
	if e.StorageClass != nil {
		parts = append(parts, *e.StorageClass)
	}
	if e.Owner != nil {
		parts = append(parts, *e.Owner)
	}
	if len(parts) == 0 {
		return ""
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

// viewHelp renders the help view
func (m Model) viewHelp() string {
	var s strings.Builder

	s.WriteString(titleStyle.Render("s3tui - Help"))
	s.WriteString("\n\n")
	s.WriteString(m.help.FullHelpView([][]key.Binding{
		{m.keys.Up, m.keys.Down, m.keys.Enter, m.keys.Back, m.keys.Refresh},
		{m.keys.Transfer, m.keys.Delete, m.keys.Confirm, m.keys.Cancel},
		{m.keys.Switch, m.keys.Help, m.keys.Exit},
	}))
	s.WriteString("\n\n")
	s.WriteString(`Two panes: the bucket and the local directory.
Tab switches panes. Transfer copies the selected file into
the other pane's current location. Deletion asks for
confirmation and never removes local directories.`)
	s.WriteString("\n\n")
	s.WriteString(metaStyle.Render("any key: back"))
	return s.String()
}
