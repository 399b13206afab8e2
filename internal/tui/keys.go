package tui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/slmtnm/s3tui/internal/events"
)

// KeyMap binds terminal keys to logical keys
type KeyMap struct {
	Exit     key.Binding
	Up       key.Binding
	Down     key.Binding
	Enter    key.Binding
	Back     key.Binding
	Transfer key.Binding
	Delete   key.Binding
	Confirm  key.Binding
	Cancel   key.Binding
	Switch   key.Binding
	Refresh  key.Binding
	Help     key.Binding
}

// DefaultKeyMap returns default keybindings
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Exit: key.NewBinding(
			key.WithKeys("esc", "q", "ctrl+c"),
			key.WithHelp("q/esc", "quit"),
		),
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		Enter: key.NewBinding(
			key.WithKeys("enter", "right", "l", "o"),
			key.WithHelp("→/l/enter", "open"),
		),
		Back: key.NewBinding(
			key.WithKeys("backspace", "left", "h"),
			key.WithHelp("←/h", "back"),
		),
		Transfer: key.NewBinding(
			key.WithKeys("c", "d", "u"),
			key.WithHelp("c", "download/upload"),
		),
		Delete: key.NewBinding(
			key.WithKeys("x", "delete"),
			key.WithHelp("x", "delete"),
		),
		Confirm: key.NewBinding(
			key.WithKeys("y"),
			key.WithHelp("y", "confirm"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("n"),
			key.WithHelp("n", "cancel"),
		),
		Switch: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "switch pane"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "refresh"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
	}
}

// Translate maps a key press to its logical key, KeyNone when unbound
func (km KeyMap) Translate(msg tea.KeyMsg) events.Key {
	switch {
	case key.Matches(msg, km.Exit):
		return events.KeyExit
	case key.Matches(msg, km.Up):
		return events.KeyUp
	case key.Matches(msg, km.Down):
		return events.KeyDown
	case key.Matches(msg, km.Enter):
		return events.KeyEnter
	case key.Matches(msg, km.Back):
		return events.KeyBack
	case key.Matches(msg, km.Transfer):
		return events.KeyTransfer
	case key.Matches(msg, km.Delete):
		return events.KeyDelete
	case key.Matches(msg, km.Confirm):
		return events.KeyConfirm
	case key.Matches(msg, km.Cancel):
		return events.KeyCancel
	case key.Matches(msg, km.Switch):
		return events.KeySwitch
	case key.Matches(msg, km.Refresh):
		return events.KeyRefresh
	}
	return events.KeyNone
}

func (km KeyMap) shortHelp() []key.Binding {
	return []key.Binding{km.Up, km.Down, km.Back, km.Enter, km.Transfer, km.Delete, km.Switch, km.Refresh, km.Help, km.Exit}
}
