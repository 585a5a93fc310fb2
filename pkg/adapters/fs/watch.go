package fs

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"runtime/debug"
	"strings"

	"github.com/aretw0/lifecycle"
	"github.com/fsnotify/fsnotify"
)

// Watch starts watching the store file for changes made by other processes.
// The watcher never touches the registry: it only raises the Stale flag,
// and the owner reloads at a point of its choosing. Writes made by this
// storage are recognised by content and ignored.
//
// The watcher runs until ctx is cancelled.
func (s *Storage) Watch(ctx context.Context) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if s.watcherActive.Load() {
		return fmt.Errorf("watcher already started for %s", s.path)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	// Watch the directory: atomic replacement swaps the file's inode.
	dir := filepath.Dir(s.path)
	if err := watcher.Add(dir); err != nil {
		_ = watcher.Close()
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	s.watcherActive.Store(true)
	lifecycle.Go(ctx, func(ctx context.Context) error {
		return s.watchLoop(ctx, watcher)
	}, lifecycle.WithErrorHandler(func(err error) {
		s.config.Logger.Error("watcher stopped", "error", err)
	}))
	return nil
}

func (s *Storage) watchLoop(ctx context.Context, watcher *fsnotify.Watcher) (err error) {
	defer func() {
		if recovered := recover(); recovered != nil {
			err = fmt.Errorf("watcher panic: %v", recovered)
			if s.config.Logger.Enabled(ctx, slog.LevelDebug) {
				s.config.Logger.Error("watcher panic", "error", err, "stack", string(debug.Stack()))
			}
		}
	}()
	defer s.watcherActive.Store(false)
	defer watcher.Close()

	target := filepath.Clean(s.path)
	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				if ctx.Err() != nil {
					return nil
				}
				return fmt.Errorf("watcher events channel closed")
			}
			if !s.relevant(event, target) {
				continue
			}
			if s.changedOnDisk() {
				s.config.Logger.Debug("store file changed on disk", "path", s.path, "op", event.Op.String())
				s.stale.Store(true)
			}

		case wErr, ok := <-watcher.Errors:
			if !ok {
				if ctx.Err() != nil {
					return nil
				}
				return fmt.Errorf("watcher errors channel closed")
			}
			s.config.Logger.Error("fsnotify error", "error", wErr)
		}
	}
}

func (s *Storage) relevant(event fsnotify.Event, target string) bool {
	if strings.HasPrefix(filepath.Base(event.Name), TempFilePrefix) {
		return false
	}
	if filepath.Clean(event.Name) != target {
		return false
	}
	return event.Has(fsnotify.Write) || event.Has(fsnotify.Create) ||
		event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename)
}
