package app

import (
	"github.com/slmtnm/s3tui/internal/storage"
	"github.com/slmtnm/s3tui/internal/transfer"
)

// State is the navigation state of the loop
type State int

const (
	Idle State = iota
	Listing
	Transferring
	ConfirmingDelete
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Listing:
		return "listing"
	case Transferring:
		return "transferring"
	case ConfirmingDelete:
		return "confirming-delete"
	default:
		return "unknown"
	}
}

// Frame is everything a renderer needs for one redraw. Other names the
// inactive pane and Target its location, where a transfer would land.
// Progress is set while a transfer is running.
type Frame struct {
	Provider string
	Location string
	Other    string
	Target   string
	Entries  []storage.Entry
	Selected int
	State    State
	Status   string
	IsError  bool
	Progress *transfer.Progress
}

// Renderer draws frames. Each frame owns its Entries slice.
type Renderer interface {
	Render(Frame)
}

// RenderFunc adapts a function to Renderer
type RenderFunc func(Frame)

func (f RenderFunc) Render(frame Frame) {
	f(frame)
}
