// Package localfs exposes a local directory tree as a storage.Provider.
package localfs

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"github.com/slmtnm/s3tui/internal/storage"
)

// Provider lists, reads, writes and deletes files on local disk
type Provider struct {
	root   string
	logger logrus.FieldLogger
}

var _ storage.Provider = (*Provider)(nil)

// New creates a filesystem provider rooted at root
func New(root string, logger logrus.FieldLogger) (*Provider, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve root %q: %w", root, err)
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Provider{
		root:   abs,
		logger: logger.WithField("provider", "local"),
	}, nil
}

// Name returns the pane title
func (p *Provider) Name() string {
	return "local"
}

// Root returns the absolute start directory
func (p *Provider) Root() string {
	return p.root
}

// Join appends an entry name to a directory path
func (p *Provider) Join(location, name string) string {
	return filepath.Join(location, name)
}

// Parent returns the containing directory
func (p *Provider) Parent(location string) string {
	return filepath.Dir(filepath.Clean(location))
}

// List returns the children of the directory at path
func (p *Provider) List(_ context.Context, path string) ([]storage.Entry, error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, storage.NewError("list", path, storage.ErrNotFound, err)
		}
		return nil, storage.NewError("list", path, storage.ErrPermissionDenied, err)
	}
	if !info.IsDir() {
		return nil, storage.NewError("list", path, storage.ErrUnsupported, errors.New("not a directory"))
	}

	dirEntries, err := os.ReadDir(path)
	if err != nil {
		return nil, storage.NewError("list", path, storage.ErrPermissionDenied, err)
	}

	entries := make([]storage.Entry, 0, len(dirEntries))
	for _, de := range dirEntries {
		entries = append(entries, p.describe(path, de.Name()))
	}

	storage.SortEntries(entries)
	return entries, nil
}

// describe stats a single child. A failed stat degrades the entry to Unknown.
func (p *Provider) describe(dir, name string) storage.Entry {
	entry := storage.Entry{Name: name, Kind: storage.Unknown, Location: dir}

	info, err := os.Stat(filepath.Join(dir, name))
	if err != nil {
		p.logger.WithError(err).WithField("path", filepath.Join(dir, name)).Debug("cannot read entry metadata")
		return entry
	}

	modified := info.ModTime()
	entry.LastModified = &modified
	if info.IsDir() {
		entry.Name += storage.Separator
		entry.Kind = storage.Directory
		return entry
	}

	size := info.Size()
	entry.Kind = storage.File
	entry.Size = &size
	return entry
}

// Open streams the file at path through a buffered reader
func (p *Provider) Open(_ context.Context, path string) (storage.Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, storage.NewError("open", path, classify(err), err)
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, storage.NewError("open", path, storage.ErrPermissionDenied, err)
	}
	if info.IsDir() {
		f.Close()
		return nil, storage.NewError("open", path, storage.ErrUnsupported, errors.New("is a directory"))
	}

	return &fileStream{
		reader: bufio.NewReader(f),
		file:   f,
		size:   info.Size(),
	}, nil
}

// Create truncates or creates the file at path
func (p *Provider) Create(_ context.Context, path string) (io.WriteCloser, error) {
	f, err := os.Create(path)
	if err != nil {
		kind := storage.ErrNotFound
		if errors.Is(err, fs.ErrPermission) {
			kind = storage.ErrPermissionDenied
		}
		return nil, storage.NewError("create", path, kind, err)
	}

	return &fileSink{writer: bufio.NewWriter(f), file: f}, nil
}

// Delete removes a single file. Directories are refused.
func (p *Provider) Delete(_ context.Context, path string) error {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return storage.NewError("delete", path, storage.ErrNotFound, err)
		}
		return storage.NewError("delete", path, storage.ErrPermissionDenied, err)
	}
	if info.IsDir() {
		return storage.NewError("delete", path, storage.ErrUnsupported, errors.New("deleting directories is not supported"))
	}

	if err := os.Remove(path); err != nil {
		return storage.NewError("delete", path, classify(err), err)
	}

	p.logger.WithField("path", path).Info("file deleted")
	return nil
}

func classify(err error) error {
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return storage.ErrNotFound
	case storage.IsTransient(err):
		return storage.ErrTransient
	default:
		return storage.ErrPermissionDenied
	}
}

type fileStream struct {
	reader *bufio.Reader
	file   *os.File
	size   int64
}

func (s *fileStream) Read(b []byte) (int, error) {
	return s.reader.Read(b)
}

func (s *fileStream) Size() int64 {
	return s.size
}

func (s *fileStream) Close() error {
	return s.file.Close()
}

type fileSink struct {
	writer *bufio.Writer
	file   *os.File
}

func (s *fileSink) Write(b []byte) (int, error) {
	n, err := s.writer.Write(b)
	if err != nil && storage.IsTransient(err) {
		return n, storage.NewError("write", s.file.Name(), storage.ErrTransient, err)
	}
	return n, err
}

// Close flushes buffered data before closing the file
func (s *fileSink) Close() error {
	flushErr := s.writer.Flush()
	closeErr := s.file.Close()
	if flushErr != nil {
		return fmt.Errorf("failed to flush %s: %w", s.file.Name(), flushErr)
	}
	return closeErr
}
