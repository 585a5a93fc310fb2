package fs

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/aretw0/hbnb/pkg/core"
)

// DefaultPath is the store file used when none is configured.
const DefaultPath = "file.json"

// Config holds the configuration for the file storage.
type Config struct {
	Path   string      // store file; DefaultPath when empty
	Format string      // "json", "yaml" or "toml"; chosen by extension when empty
	Perm   os.FileMode // mode for a new store file; existing files keep theirs
	Logger *slog.Logger
}

// Storage persists a core.Registry to a single structured file. It
// implements core.Persister.
type Storage struct {
	path       string
	format     string
	serializer Serializer
	registry   *core.Registry
	config     Config

	mu        sync.Mutex
	lastBytes []byte
	lastSave  *time.Time
	lastLoad  *time.Time
	loadErr   error

	stale         atomic.Bool
	watcherActive atomic.Bool
}

// NewStorage creates a storage bound to registry. The file is not read until
// Reload is called.
func NewStorage(registry *core.Registry, config Config) (*Storage, error) {
	if registry == nil {
		return nil, errors.New("storage requires a registry")
	}
	if config.Path == "" {
		config.Path = DefaultPath
	}
	if config.Logger == nil {
		config.Logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	}
	serializer, format, err := SerializerFor(config.Format, config.Path)
	if err != nil {
		return nil, err
	}
	return &Storage{
		path:       config.Path,
		format:     format,
		serializer: serializer,
		registry:   registry,
		config:     config,
	}, nil
}

// Path returns the store file path.
func (s *Storage) Path() string { return s.path }

// Format returns the name of the active serializer.
func (s *Storage) Format() string { return s.format }

// Save serializes every record in the registry and atomically overwrites
// the store file.
func (s *Storage) Save(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	objects := s.registry.All()
	docs := make(map[string]Document, len(objects))
	for key, r := range objects {
		docs[key] = r.ToMap()
	}
	data, err := s.serializer.Encode(docs)
	if err != nil {
		return fmt.Errorf("encode %s: %w", s.format, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := writeFileAtomic(s.path, data, s.config.Perm); err != nil {
		return err
	}
	s.lastBytes = data
	now := time.Now()
	s.lastSave = &now
	s.config.Logger.Debug("store saved", "path", s.path, "records", len(docs), "bytes", len(data))
	return nil
}

// Reload replaces the registry content with the records in the store file.
// A missing file yields an empty registry and no error. Unreadable content or
// any record that cannot be rebuilt also leaves the registry empty; the
// error is returned for the caller to report.
func (s *Storage) Reload(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.stale.Store(false)

	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	s.lastLoad = &now

	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		s.registry.Replace(nil)
		s.lastBytes = nil
		s.loadErr = nil
		s.config.Logger.Debug("store file not found, starting empty", "path", s.path)
		return nil
	}
	if err != nil {
		return s.failLoad(fmt.Errorf("read %s: %w", s.path, err))
	}
	s.lastBytes = data

	objects, err := s.decode(data)
	if err != nil {
		return s.failLoad(err)
	}
	s.registry.Replace(objects)
	s.loadErr = nil
	s.config.Logger.Debug("store loaded", "path", s.path, "records", len(objects))
	return nil
}

func (s *Storage) decode(data []byte) (map[string]*core.Record, error) {
	docs, err := s.serializer.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", s.path, err)
	}
	objects := make(map[string]*core.Record, len(docs))
	for _, key := range sortedKeys(docs) {
		r, err := core.FromMap(docs[key])
		if err != nil {
			return nil, fmt.Errorf("record %s: %w", key, err)
		}
		objects[r.Key()] = r
	}
	return objects, nil
}

func (s *Storage) failLoad(err error) error {
	s.registry.Replace(nil)
	s.loadErr = err
	s.config.Logger.Warn("store could not be loaded, starting empty", "path", s.path, "error", err)
	return err
}

// Stale reports whether the store file changed on disk since the last
// Reload or Save. Only an active watcher raises the flag.
func (s *Storage) Stale() bool {
	return s.stale.Load()
}

// changedOnDisk reports whether the file content differs from what this
// storage last wrote or read.
func (s *Storage) changedOnDisk() bool {
	data, err := os.ReadFile(s.path)
	s.mu.Lock()
	defer s.mu.Unlock()
	if errors.Is(err, os.ErrNotExist) {
		return s.lastBytes != nil
	}
	if err != nil {
		return false
	}
	return !bytes.Equal(data, s.lastBytes)
}

var _ core.Persister = (*Storage)(nil)
