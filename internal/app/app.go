// Package app holds navigation state for the two panes and reacts to events.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/sirupsen/logrus"

	"github.com/slmtnm/s3tui/internal/events"
	"github.com/slmtnm/s3tui/internal/storage"
	"github.com/slmtnm/s3tui/internal/transfer"
)

const (
	localPane = iota
	remotePane
)

// pane is one browsable provider and where the user is inside it
type pane struct {
	provider storage.Provider
	location string
	entries  []storage.Entry
	cursor   int
}

func (p *pane) selected() (storage.Entry, bool) {
	if p.cursor < 0 || p.cursor >= len(p.entries) {
		return storage.Entry{}, false
	}
	return p.entries[p.cursor], true
}

// App is the single consumer of the event stream. Every provider call and
// redraw happens on the goroutine running Run, one event at a time.
type App struct {
	panes  [2]*pane
	active int
	state  State

	status  string
	isError bool

	// pending is the entry awaiting delete confirmation, found at pendingPath
	pending     storage.Entry
	pendingPath string

	progress   *transfer.Progress
	dirty      bool
	lastRender time.Time

	renderer Renderer
	logger   logrus.FieldLogger
	teardown func() error
	tickRate time.Duration
	copyOpts []transfer.Option
}

// Option configures an App
type Option func(*App)

// WithLogger sets the logger
func WithLogger(logger logrus.FieldLogger) Option {
	return func(a *App) {
		a.logger = logger
	}
}

// WithTeardown registers what to run on Shutdown, e.g. restoring the terminal
func WithTeardown(fn func() error) Option {
	return func(a *App) {
		a.teardown = fn
	}
}

// WithTickRate sets the minimum spacing between progress redraws
func WithTickRate(d time.Duration) Option {
	return func(a *App) {
		a.tickRate = d
	}
}

// WithTransferOptions passes options through to every copy
func WithTransferOptions(opts ...transfer.Option) Option {
	return func(a *App) {
		a.copyOpts = append(a.copyOpts, opts...)
	}
}

// New creates the loop. The remote pane is active first.
func New(local, remote storage.Provider, renderer Renderer, opts ...Option) *App {
	a := &App{
		panes: [2]*pane{
			{provider: local, location: local.Root()},
			{provider: remote, location: remote.Root()},
		},
		active:   remotePane,
		renderer: renderer,
		logger:   logrus.StandardLogger(),
		teardown: func() error { return nil },
		tickRate: events.DefaultTickRate,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// State returns the current navigation state
func (a *App) State() State {
	return a.state
}

// Run lists the starting location and then handles events until Shutdown,
// until the channel closes, or until ctx is cancelled.
func (a *App) Run(ctx context.Context, stream <-chan events.Event) error {
	a.refresh(ctx, a.current(), "")
	a.render()

	for {
		select {
		case <-ctx.Done():
			return a.shutdown()
		case ev, ok := <-stream:
			if !ok {
				return a.shutdown()
			}
			switch ev.Kind {
			case events.Shutdown:
				return a.shutdown()
			case events.Tick:
				if a.dirty {
					a.render()
				}
			case events.Input:
				a.handleKey(ctx, ev.Key)
				a.render()
			}
		}
	}
}

func (a *App) shutdown() error {
	a.logger.Info("shutting down")
	if err := a.teardown(); err != nil {
		return fmt.Errorf("failed to restore terminal: %w", err)
	}
	return nil
}

func (a *App) current() *pane {
	return a.panes[a.active]
}

func (a *App) other() *pane {
	return a.panes[1-a.active]
}

// handleKey dispatches one key according to the current state
func (a *App) handleKey(ctx context.Context, key events.Key) {
	if a.state == ConfirmingDelete {
		switch key {
		case events.KeyConfirm:
			a.deleteSelected(ctx)
		case events.KeyCancel:
			a.pending, a.pendingPath = storage.Entry{}, ""
			a.state = Idle
			a.setStatus("Delete cancelled")
		}
		return
	}

	p := a.current()
	switch key {
	case events.KeyUp:
		if p.cursor > 0 {
			p.cursor--
		}

	case events.KeyDown:
		if p.cursor < len(p.entries)-1 {
			p.cursor++
		}

	case events.KeyEnter:
		entry, ok := p.selected()
		if !ok {
			return
		}
		switch entry.Kind {
		case storage.Directory:
			previous := p.location
			p.location = p.provider.Join(p.location, entry.Name)
			if !a.refresh(ctx, p, "") {
				p.location = previous
			}
		case storage.Unknown:
			a.setError(fmt.Errorf("cannot open '%s': type unknown", entry.Name))
		}

	case events.KeyBack:
		parent := p.provider.Parent(p.location)
		if parent == p.location {
			return
		}
		previous := p.location
		p.location = parent
		if !a.refresh(ctx, p, dirName(previous, parent)) {
			p.location = previous
		}

	case events.KeySwitch:
		a.active = 1 - a.active
		a.clearStatus()
		a.refresh(ctx, a.current(), a.currentName())

	case events.KeyRefresh:
		a.refresh(ctx, p, a.currentName())

	case events.KeyTransfer:
		entry, ok := p.selected()
		if !ok {
			return
		}
		if entry.Kind != storage.File {
			a.setError(fmt.Errorf("only files can be transferred, '%s' is a %s", entry.Name, entry.Kind))
			return
		}
		a.transfer(ctx, entry)

	case events.KeyDelete:
		entry, ok := p.selected()
		if !ok {
			return
		}
		path := p.provider.Join(p.location, entry.Name)
		if entry.IsDir() && !entry.Marker {
			a.setError(storage.NewError("delete", path, storage.ErrUnsupported,
				errors.New("only files and directory marker objects can be deleted")))
			return
		}
		a.pending, a.pendingPath = entry, path
		a.state = ConfirmingDelete
		if entry.IsDir() {
			a.setStatus(fmt.Sprintf("Delete directory marker '%s'? Objects inside are kept (y/n)", entry.Name))
		} else {
			a.setStatus(fmt.Sprintf("Delete '%s'? (y/n)", entry.Name))
		}
	}
}

// dirName recovers the entry name of location as listed in parent
func dirName(location, parent string) string {
	name := strings.TrimPrefix(location, parent)
	name = strings.Trim(name, string(filepath.Separator)+storage.Separator)
	if name == "" {
		return ""
	}
	return name + storage.Separator
}

func (a *App) currentName() string {
	if entry, ok := a.current().selected(); ok {
		return entry.Name
	}
	return ""
}

// refresh replaces the pane listing and restores the cursor onto keep when present
func (a *App) refresh(ctx context.Context, p *pane, keep string) bool {
	a.state = Listing
	a.render()
	defer func() { a.state = Idle }()

	log := a.logger.WithFields(logrus.Fields{"provider": p.provider.Name(), "location": p.location})
	entries, err := p.provider.List(ctx, p.location)
	if err != nil {
		log.WithError(err).Warn("listing failed")
		a.setError(err)
		return false
	}
	log.WithField("entries", len(entries)).Debug("listed")

	previous := p.cursor
	p.entries = entries
	p.cursor = 0
	if keep != "" {
		if i := slices.IndexFunc(entries, func(e storage.Entry) bool { return e.Name == keep }); i >= 0 {
			p.cursor = i
		} else {
			p.cursor = max(min(previous, len(entries)-1), 0)
		}
	}
	return true
}

// transfer copies entry from the active pane into the other pane's location
func (a *App) transfer(ctx context.Context, entry storage.Entry) {
	from, to := a.current(), a.other()
	srcPath := from.provider.Join(from.location, entry.Name)
	dstPath := to.provider.Join(to.location, entry.BaseName())

	verb := "Uploaded"
	if a.active == remotePane {
		verb = "Downloaded"
	}
	log := a.logger.WithFields(logrus.Fields{
		"from": from.provider.Name(), "src": srcPath,
		"to": to.provider.Name(), "dst": dstPath,
	})

	a.state = Transferring
	defer func() {
		a.state = Idle
		a.progress = nil
	}()

	src, err := from.provider.Open(ctx, srcPath)
	if err != nil {
		a.setError(err)
		return
	}
	defer src.Close()

	dst, err := to.provider.Create(ctx, dstPath)
	if err != nil {
		a.setError(err)
		return
	}

	a.progress = &transfer.Progress{Total: src.Size()}
	a.setStatus(fmt.Sprintf("Transferring '%s'...", entry.Name))
	a.render()

	opts := append(slices.Clone(a.copyOpts), transfer.WithProgress(a.onProgress))
	n, err := transfer.Copy(ctx, dst, src, opts...)
	if err != nil {
		abort(dst, err)
		log.WithError(err).Error("transfer failed")
		a.setError(fmt.Errorf("failed to transfer '%s': %w", entry.Name, err))
		return
	}
	if err := dst.Close(); err != nil {
		log.WithError(err).Error("transfer commit failed")
		a.setError(fmt.Errorf("failed to write '%s': %w", dstPath, err))
		return
	}

	log.WithField("bytes", n).Info("transfer complete")
	a.setStatus(fmt.Sprintf("✓ %s '%s' (%s)", verb, entry.BaseName(), humanize.Bytes(uint64(n))))
}

// abort closes a failed sink, discarding the content when the sink supports it
func abort(dst io.WriteCloser, cause error) {
	if aborter, ok := dst.(interface{ CloseWithError(error) error }); ok {
		aborter.CloseWithError(cause)
		return
	}
	dst.Close()
}

func (a *App) onProgress(p transfer.Progress) {
	a.progress = &p
	a.dirty = true
	if time.Since(a.lastRender) >= a.tickRate {
		a.render()
	}
}

func (a *App) deleteSelected(ctx context.Context) {
	entry, path := a.pending, a.pendingPath
	a.pending, a.pendingPath = storage.Entry{}, ""
	a.state = Idle

	p := a.current()
	if err := p.provider.Delete(ctx, path); err != nil {
		a.logger.WithError(err).WithField("path", path).Warn("delete failed")
		a.setError(err)
		return
	}
	a.logger.WithField("path", path).Info("deleted")
	if entry.IsDir() {
		a.setStatus(fmt.Sprintf("✓ Deleted directory marker '%s'; objects inside are kept", path))
	} else {
		a.setStatus(fmt.Sprintf("✓ Deleted '%s' successfully", path))
	}

	// the next row, or the deleted one so the cursor clamps onto the new last row
	keep := entry.Name
	if p.cursor+1 < len(p.entries) {
		keep = p.entries[p.cursor+1].Name
	}
	a.refresh(ctx, p, keep)
}

func (a *App) setStatus(msg string) {
	a.status = msg
	a.isError = false
	a.dirty = true
}

func (a *App) setError(err error) {
	a.logger.WithError(err).WithField("kind", storage.KindOf(err)).Debug("showing error")
	a.status = err.Error()
	a.isError = true
	a.dirty = true
}

func (a *App) clearStatus() {
	a.status = ""
	a.isError = false
}

func (a *App) render() {
	p := a.current()
	frame := Frame{
		Provider: p.provider.Name(),
		Location: p.location,
		Other:    a.other().provider.Name(),
		Target:   a.other().location,
		Entries:  slices.Clone(p.entries),
		Selected: p.cursor,
		State:    a.state,
		Status:   a.status,
		IsError:  a.isError,
	}
	if a.progress != nil {
		progress := *a.progress
		frame.Progress = &progress
	}

	a.renderer.Render(frame)
	a.dirty = false
	a.lastRender = time.Now()
}
