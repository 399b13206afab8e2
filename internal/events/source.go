package events

import (
	"time"
)

// ChannelSource is a KeySource fed by another goroutine, typically the
// terminal program reading stdin.
type ChannelSource struct {
	keys chan Key
}

// NewChannelSource creates a source buffering up to size pending keys
func NewChannelSource(size int) *ChannelSource {
	return &ChannelSource{keys: make(chan Key, size)}
}

// Push queues a key without blocking. It reports false when the buffer is full.
func (s *ChannelSource) Push(key Key) bool {
	select {
	case s.keys <- key:
		return true
	default:
		return false
	}
}

func (s *ChannelSource) Poll(timeout time.Duration) (Key, bool, error) {
	if timeout <= 0 {
		select {
		case key := <-s.keys:
			return key, true, nil
		default:
			return KeyNone, false, nil
		}
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case key := <-s.keys:
		return key, true, nil
	case <-timer.C:
		return KeyNone, false, nil
	}
}
