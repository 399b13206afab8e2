// Package events turns blocking key input into an ordered stream of input,
// tick and shutdown events.
package events

import (
	"context"
	"time"
)

// DefaultTickRate is the poll interval and the minimum spacing between ticks.
const DefaultTickRate = 200 * time.Millisecond

// Key is a logical key binding, independent of the terminal key code
type Key int

const (
	KeyNone Key = iota
	KeyExit
	KeyUp
	KeyDown
	KeyEnter
	KeyBack
	KeyTransfer
	KeyDelete
	KeyConfirm
	KeyCancel
	KeySwitch
	KeyRefresh
)

var keyNames = map[Key]string{
	KeyNone:     "none",
	KeyExit:     "exit",
	KeyUp:       "up",
	KeyDown:     "down",
	KeyEnter:    "enter",
	KeyBack:     "back",
	KeyTransfer: "transfer",
	KeyDelete:   "delete",
	KeyConfirm:  "confirm",
	KeyCancel:   "cancel",
	KeySwitch:   "switch",
	KeyRefresh:  "refresh",
}

func (k Key) String() string {
	if name, ok := keyNames[k]; ok {
		return name
	}
	return "key(?)"
}

// Kind distinguishes the three event types
type Kind int

const (
	Input Kind = iota
	Tick
	Shutdown
)

func (k Kind) String() string {
	switch k {
	case Input:
		return "input"
	case Tick:
		return "tick"
	default:
		return "shutdown"
	}
}

// Event is delivered to the application loop. Key is set for Input only.
type Event struct {
	Kind Kind
	Key  Key
}

// KeySource yields key presses
type KeySource interface {
	// Poll waits at most timeout for a key. ok is false when none arrived.
	Poll(timeout time.Duration) (key Key, ok bool, err error)
}

// Multiplexer polls a KeySource and emits events in generation order on one channel
type Multiplexer struct {
	source   KeySource
	tickRate time.Duration
	events   chan Event
}

// NewMultiplexer creates a multiplexer ticking every tickRate
func NewMultiplexer(source KeySource, tickRate time.Duration) *Multiplexer {
	if tickRate <= 0 {
		tickRate = DefaultTickRate
	}
	return &Multiplexer{
		source:   source,
		tickRate: tickRate,
		events:   make(chan Event, 16),
	}
}

// Events is the single consumer side. It is closed when Run returns.
func (m *Multiplexer) Events() <-chan Event {
	return m.events
}

// Run polls until ctx is done or the source fails. Sends give up once ctx is
// done, so a consumer that stopped reading only has to cancel ctx.
func (m *Multiplexer) Run(ctx context.Context) error {
	defer close(m.events)

	lastTick := time.Now()
	for {
		if ctx.Err() != nil {
			return nil
		}

		timeout := m.tickRate - time.Since(lastTick)
		if timeout < 0 {
			timeout = 0
		}

		key, ok, err := m.source.Poll(timeout)
		if err != nil {
			return err
		}
		if ok {
			ev := Event{Kind: Input, Key: key}
			if key == KeyExit {
				ev = Event{Kind: Shutdown}
			}
			if !m.send(ctx, ev) {
				return nil
			}
		}

		if time.Since(lastTick) >= m.tickRate {
			if !m.send(ctx, Event{Kind: Tick}) {
				return nil
			}
			lastTick = time.Now()
		}
	}
}

func (m *Multiplexer) send(ctx context.Context, ev Event) bool {
	select {
	case m.events <- ev:
		return true
	case <-ctx.Done():
		return false
	}
}
