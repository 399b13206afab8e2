package storage

import (
	"errors"
	"fmt"
	"io"
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorMatchesKindAndCause(t *testing.T) {
	err := NewError("delete", "/tmp/x", ErrUnsupported, io.ErrUnexpectedEOF)
	wrapped := fmt.Errorf("handling key: %w", err)

	assert.True(t, errors.Is(wrapped, ErrUnsupported))
	assert.True(t, errors.Is(wrapped, io.ErrUnexpectedEOF))
	assert.False(t, errors.Is(wrapped, ErrNotFound))
	assert.Contains(t, err.Error(), "unsupported")
	assert.Contains(t, err.Error(), "/tmp/x")
}

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{"not found", NewError("list", "a", ErrNotFound, nil), ErrNotFound},
		{"permission", NewError("open", "a", ErrPermissionDenied, nil), ErrPermissionDenied},
		{"eintr", fmt.Errorf("write: %w", syscall.EINTR), ErrTransient},
		{"opaque", errors.New("connection reset"), ErrBackend},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, KindOf(tt.err))
		})
	}
}

func TestIsTransient(t *testing.T) {
	assert.False(t, IsTransient(nil))
	assert.True(t, IsTransient(syscall.EAGAIN))
	assert.True(t, IsTransient(NewError("write", "k", ErrTransient, nil)))
	assert.False(t, IsTransient(io.ErrClosedPipe))
}
