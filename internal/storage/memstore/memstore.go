// Package memstore is an in-memory flat key namespace implementing storage.Provider.
// It behaves like the object store and is meant for tests and demos.
package memstore

import (
	"bytes"
	"context"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/slmtnm/s3tui/internal/storage"
)

// Store keeps objects keyed by their full name
type Store struct {
	name string

	mu      sync.Mutex
	objects map[string]object

	// FailList, when set, is returned by List instead of a listing
	FailList error
}

type object struct {
	data     []byte
	modified time.Time
}

var _ storage.Provider = (*Store)(nil)

// New creates an empty store
func New(name string) *Store {
	return &Store{name: name, objects: make(map[string]object)}
}

// Put stores data under key
func (s *Store) Put(key string, data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[key] = object{data: bytes.Clone(data), modified: time.Now()}
}

// Get returns the data under key
func (s *Store) Get(key string) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	obj, ok := s.objects[key]
	return bytes.Clone(obj.data), ok
}

// Keys returns all stored keys in order
func (s *Store) Keys() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	keys := make([]string, 0, len(s.objects))
	for k := range s.objects {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Name returns the display name given to New
func (s *Store) Name() string {
	return s.name
}

// Root is the empty prefix
func (s *Store) Root() string {
	return ""
}

func (s *Store) Join(prefix, name string) string {
	return prefix + name
}

func (s *Store) Parent(prefix string) string {
	return storage.ParentPrefix(prefix)
}

// List virtualizes the keys below prefix
func (s *Store) List(_ context.Context, prefix string) ([]storage.Entry, error) {
	if s.FailList != nil {
		return nil, s.FailList
	}

	s.mu.Lock()
	var objects []storage.Object
	for key, obj := range s.objects {
		if !strings.HasPrefix(key, prefix) {
			continue
		}
		size := int64(len(obj.data))
		modified := obj.modified
		objects = append(objects, storage.Object{Key: key, Size: &size, LastModified: &modified})
	}
	s.mu.Unlock()

	return storage.Virtualize(prefix, objects), nil
}

// Open returns a reader over a snapshot of the object
func (s *Store) Open(_ context.Context, key string) (storage.Reader, error) {
	data, ok := s.Get(key)
	if !ok {
		return nil, storage.NewError("open", key, storage.ErrNotFound, nil)
	}
	return storage.NewReader(io.NopCloser(bytes.NewReader(data)), int64(len(data))), nil
}

// Create buffers writes and commits them on Close
func (s *Store) Create(_ context.Context, key string) (io.WriteCloser, error) {
	return &pendingObject{store: s, key: key}, nil
}

// Delete removes key; missing keys are not an error
func (s *Store) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.objects, key)
	return nil
}

type pendingObject struct {
	store   *Store
	key     string
	buf     bytes.Buffer
	aborted bool
}

func (p *pendingObject) Write(b []byte) (int, error) {
	return p.buf.Write(b)
}

func (p *pendingObject) Close() error {
	if !p.aborted {
		p.store.Put(p.key, p.buf.Bytes())
	}
	return nil
}

// CloseWithError drops the buffered content
func (p *pendingObject) CloseWithError(error) error {
	p.aborted = true
	return nil
}
