package storage

import (
	"strings"
	"time"
)

// Object is one key returned by a flat object listing
type Object struct {
	Key          string
	Size         *int64
	LastModified *time.Time
	StorageClass *string
	Owner        *string
}

// Virtualize turns a flat listing of keys under prefix into one level of a
// directory tree. Keys without a further Separator become files; the first
// Separator after prefix names the directory a key belongs to. A directory is
// emitted once no matter how many keys sit below it, and it takes the
// metadata of its marker object when one exists. Keys that do not start with
// prefix and the prefix marker itself are skipped.
func Virtualize(prefix string, objects []Object) []Entry {
	entries := make([]Entry, 0, len(objects))
	dirs := make(map[string]int)

	for _, obj := range objects {
		if !strings.HasPrefix(obj.Key, prefix) {
			continue
		}
		rest := obj.Key[len(prefix):]
		if rest == "" {
			continue
		}

		idx := strings.Index(rest, Separator)
		if idx < 0 {
			entries = append(entries, Entry{
				Name:         rest,
				Kind:         File,
				Location:     prefix,
				Size:         obj.Size,
				LastModified: obj.LastModified,
				StorageClass: obj.StorageClass,
				Owner:        obj.Owner,
			})
			continue
		}

		name := rest[:idx+len(Separator)]
		marker := name == rest
		if i, seen := dirs[name]; seen {
			if marker {
				entries[i].Marker = true
				entries[i].Size = obj.Size
				entries[i].LastModified = obj.LastModified
				entries[i].StorageClass = obj.StorageClass
				entries[i].Owner = obj.Owner
			}
			continue
		}

		dir := Entry{Name: name, Kind: Directory, Location: prefix}
		if marker {
			dir.Marker = true
			dir.Size = obj.Size
			dir.LastModified = obj.LastModified
			dir.StorageClass = obj.StorageClass
			dir.Owner = obj.Owner
		}
		dirs[name] = len(entries)
		entries = append(entries, dir)
	}

	SortEntries(entries)
	return entries
}

// ParentPrefix returns the prefix one level above prefix ("" at the top)
func ParentPrefix(prefix string) string {
	trimmed := strings.TrimSuffix(prefix, Separator)
	idx := strings.LastIndex(trimmed, Separator)
	if idx < 0 {
		return ""
	}
	return trimmed[:idx+len(Separator)]
}
