package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/slmtnm/s3tui/internal/app"
)

// sender is the part of *tea.Program the renderer needs
type sender interface {
	Send(msg tea.Msg)
}

// Renderer hands frames from the application loop to a running program
type Renderer struct {
	program sender
}

// NewRenderer creates a renderer for program
func NewRenderer(program *tea.Program) *Renderer {
	return &Renderer{program: program}
}

// Render implements app.Renderer
func (r *Renderer) Render(f app.Frame) {
	r.program.Send(frameMsg(f))
}
