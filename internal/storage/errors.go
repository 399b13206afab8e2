package storage

import (
	"errors"
	"fmt"
	"syscall"
)

// Backend-agnostic error kinds. Match them with errors.Is.
var (
	ErrNotFound         = errors.New("not found")
	ErrUnsupported      = errors.New("unsupported")
	ErrPermissionDenied = errors.New("permission denied")
	ErrTransient        = errors.New("transient failure")
	ErrBackend          = errors.New("backend failure")
)

// Error records a failed provider operation. Kind is one of the Err* sentinels.
type Error struct {
	Op   string
	Path string
	Kind error
	Err  error
}

// NewError creates an Error of the given kind. err may be nil.
func NewError(op, path string, kind, err error) *Error {
	return &Error{Op: op, Path: path, Kind: kind, Err: err}
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s %q: %s", e.Op, e.Path, e.Kind)
	}
	return fmt.Sprintf("%s %q: %s: %v", e.Op, e.Path, e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches the error kind as well as anything in the wrapped chain
func (e *Error) Is(target error) bool {
	return e.Kind == target
}

// KindOf returns the sentinel describing err, ErrBackend when it is not classified
func KindOf(err error) error {
	for _, kind := range []error{ErrNotFound, ErrUnsupported, ErrPermissionDenied, ErrTransient} {
		if errors.Is(err, kind) {
			return kind
		}
	}
	if IsTransient(err) {
		return ErrTransient
	}
	return ErrBackend
}

// IsTransient reports whether err is a retryable interruption
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, ErrTransient) ||
		errors.Is(err, syscall.EINTR) ||
		errors.Is(err, syscall.EAGAIN)
}
