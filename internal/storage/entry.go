package storage

import (
	"sort"
	"strings"
	"time"
)

// Separator marks directory-like groupings in entry names and object keys.
const Separator = "/"

// Kind classifies a browsable item
type Kind int

const (
	File Kind = iota
	Directory
	// Unknown is used when metadata could not be read. Never treat it as File or Directory.
	Unknown
)

func (k Kind) String() string {
	switch k {
	case File:
		return "file"
	case Directory:
		return "directory"
	default:
		return "unknown"
	}
}

// Entry describes one item of a listing, independent of the backend that
// produced it. Name is the display name; directories carry a single trailing
// Separator. Location is the parent directory path (filesystem) or the key
// prefix (object store). Marker is set for an object store directory that
// has its own marker object, as opposed to one implied by deeper keys.
type Entry struct {
	Name     string
	Kind     Kind
	Location string
	Marker   bool

	// Optional metadata; nil when the backend did not report it.
	Size         *int64
	LastModified *time.Time
	StorageClass *string
	Owner        *string
}

// IsDir reports whether the entry is a Directory
func (e Entry) IsDir() bool {
	return e.Kind == Directory
}

// BaseName returns the name without the directory marker
func (e Entry) BaseName() string {
	return strings.TrimSuffix(e.Name, Separator)
}

// SortEntries orders directories first, then everything else, both by name
func SortEntries(entries []Entry) {
	sort.SliceStable(entries, func(i, j int) bool {
		di, dj := entries[i].IsDir(), entries[j].IsDir()
		if di != dj {
			return di
		}
		return entries[i].Name < entries[j].Name
	})
}
