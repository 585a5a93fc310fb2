package core

import (
	"context"
	"sort"
	"strings"
)

// Registry holds every live record keyed by "<Kind>.<id>".
// It is not safe for concurrent use: commands run one at a time.
type Registry struct {
	objects map[string]*Record
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{objects: make(map[string]*Record)}
}

// Insert adds r, replacing any record stored under the same key.
func (reg *Registry) Insert(r *Record) {
	reg.objects[r.Key()] = r
}

// All returns the live backing map. Callers must not assume a copy.
func (reg *Registry) All() map[string]*Record {
	return reg.objects
}

// Get returns the record stored under key.
func (reg *Registry) Get(key string) (*Record, bool) {
	r, ok := reg.objects[key]
	return r, ok
}

// Remove deletes the record stored under key and reports whether it existed.
func (reg *Registry) Remove(key string) bool {
	if _, ok := reg.objects[key]; !ok {
		return false
	}
	delete(reg.objects, key)
	return true
}

// Replace swaps the whole backing map, e.g. after loading from disk.
func (reg *Registry) Replace(objects map[string]*Record) {
	if objects == nil {
		objects = make(map[string]*Record)
	}
	reg.objects = objects
}

// Len returns the number of records.
func (reg *Registry) Len() int {
	return len(reg.objects)
}

// Snapshot returns a deep copy of the backing map.
func (reg *Registry) Snapshot() map[string]*Record {
	out := make(map[string]*Record, len(reg.objects))
	for k, r := range reg.objects {
		out[k] = r.Clone()
	}
	return out
}

// List returns the records whose key falls under kind, ordered by creation
// time then key. An empty kind selects every record.
func (reg *Registry) List(kind Kind) []*Record {
	prefix := ""
	if kind != "" {
		prefix = string(kind) + KeySeparator
	}
	var out []*Record
	for key, r := range reg.objects {
		if strings.HasPrefix(key, prefix) {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].createdAt.Equal(out[j].createdAt) {
			return out[i].createdAt.Before(out[j].createdAt)
		}
		return out[i].Key() < out[j].Key()
	})
	return out
}

// Count returns the number of records whose key falls under kind.
func (reg *Registry) Count(kind Kind) int {
	prefix := string(kind) + KeySeparator
	n := 0
	for key := range reg.objects {
		if strings.HasPrefix(key, prefix) {
			n++
		}
	}
	return n
}

// Persister writes the registry through to durable storage.
type Persister interface {
	// Save serializes every record and overwrites the backing file.
	Save(ctx context.Context) error
}
