package hbnb

import (
	"log/slog"
	"os"
	"time"

	"github.com/aretw0/hbnb/internal/platform"
	"github.com/aretw0/hbnb/pkg/console"
	"github.com/aretw0/hbnb/pkg/core"
	"github.com/aretw0/hbnb/pkg/idgen"
)

// --- Types ---

// Console is a wired registry, storage, service and dispatcher.
type Console = platform.Console

// Record is a public alias for a stored record.
type Record = core.Record

// Kind is a public alias for a record kind.
type Kind = core.Kind

// OutputFormat selects how "all" renders records.
type OutputFormat = console.Format

// Output formats.
const (
	OutputText  = console.FormatText
	OutputJSON  = console.FormatJSON
	OutputTable = console.FormatTable
)

// --- Configuration ---

// Option defines a functional option for configuring a console.
type Option = platform.Option

// WithLogger sets the logger for storage, service and console.
func WithLogger(logger *slog.Logger) Option {
	return platform.WithLogger(logger)
}

// WithFormat forces the persistence format ("json", "yaml" or "toml").
func WithFormat(format string) Option {
	return platform.WithFormat(format)
}

// WithIDFormat selects the id generator ("uuid" or "nanoid").
func WithIDFormat(name string) Option {
	return platform.WithIDFormat(name)
}

// WithIDGenerator injects a custom id generator.
func WithIDGenerator(gen idgen.Generator) Option {
	return platform.WithIDGenerator(gen)
}

// WithOutput selects how "all" renders records.
func WithOutput(f OutputFormat) Option {
	return platform.WithOutput(f)
}

// WithPerm sets the mode of a newly created store file.
func WithPerm(perm os.FileMode) Option {
	return platform.WithPerm(perm)
}

// WithWatch reloads the store before the next command when another process
// changes it.
func WithWatch(enabled bool) Option {
	return platform.WithWatch(enabled)
}

// WithClock overrides the time source for record timestamps.
func WithClock(now func() time.Time) Option {
	return platform.WithClock(now)
}

// WithPersister replaces the file store as the save target.
func WithPersister(p core.Persister) Option {
	return platform.WithPersister(p)
}

// WithReload controls whether the store is loaded at construction.
func WithReload(enabled bool) Option {
	return platform.WithReload(enabled)
}

// --- Factory ---

// New creates a console over the store file at path.
func New(path string, opts ...Option) (*Console, error) {
	return platform.New(path, opts...)
}
