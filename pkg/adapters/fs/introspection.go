package fs

import (
	"sort"
	"time"

	"github.com/aretw0/introspection"
)

// StorageState exposes internal state for observability.
type StorageState struct {
	Path          string     `json:"path"`
	Format        string     `json:"format"`
	Serializers   []string   `json:"serializers"`
	Records       int        `json:"records"`
	Bytes         int        `json:"bytes"`
	WatcherActive bool       `json:"watcher_active"`
	Stale         bool       `json:"stale"`
	LastSave      *time.Time `json:"last_save,omitempty"`
	LastLoad      *time.Time `json:"last_load,omitempty"`
	LoadError     string     `json:"load_error,omitempty"`
}

// State implements introspection.Introspectable.
func (s *Storage) State() any {
	s.mu.Lock()
	defer s.mu.Unlock()

	serializers := make([]string, 0, 4)
	for ext := range DefaultSerializers() {
		serializers = append(serializers, ext)
	}
	sort.Strings(serializers)

	state := StorageState{
		Path:          s.path,
		Format:        s.format,
		Serializers:   serializers,
		Records:       s.registry.Len(),
		Bytes:         len(s.lastBytes),
		WatcherActive: s.watcherActive.Load(),
		Stale:         s.stale.Load(),
		LastSave:      s.lastSave,
		LastLoad:      s.lastLoad,
	}
	if s.loadErr != nil {
		state.LoadError = s.loadErr.Error()
	}
	return state
}

// ComponentType implements introspection.Component.
func (s *Storage) ComponentType() string {
	return "file-storage"
}

var _ introspection.Introspectable = (*Storage)(nil)
var _ introspection.Component = (*Storage)(nil)
