package platform

import (
	"log/slog"
	"os"
	"time"

	"github.com/aretw0/hbnb/pkg/console"
	"github.com/aretw0/hbnb/pkg/core"
	"github.com/aretw0/hbnb/pkg/idgen"
)

// options holds the internal configuration for an hbnb console.
type options struct {
	logger   *slog.Logger
	format   string
	idFormat string
	ids      idgen.Generator
	output   console.Format
	perm     os.FileMode
	watch    bool
	clock    func() time.Time
	store    core.Persister
	reload   bool
}

// Option defines a functional option for configuring the console.
type Option func(*options)

// defaultOptions returns the default configuration.
func defaultOptions() *options {
	return &options{
		idFormat: "uuid",
		output:   console.FormatText,
		reload:   true,
	}
}

// WithLogger sets the logger shared by storage, service and console.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithFormat forces the persistence format ("json", "yaml" or "toml").
// By default the format follows the file extension.
func WithFormat(format string) Option {
	return func(o *options) {
		o.format = format
	}
}

// WithIDFormat selects the id generator by name ("uuid" or "nanoid").
func WithIDFormat(name string) Option {
	return func(o *options) {
		o.idFormat = name
	}
}

// WithIDGenerator injects a custom id generator. It takes precedence over
// WithIDFormat.
func WithIDGenerator(gen idgen.Generator) Option {
	return func(o *options) {
		o.ids = gen
	}
}

// WithOutput selects how "all" renders its result.
func WithOutput(f console.Format) Option {
	return func(o *options) {
		o.output = f
	}
}

// WithPerm sets the mode used when the store file is created.
func WithPerm(perm os.FileMode) Option {
	return func(o *options) {
		o.perm = perm
	}
}

// WithWatch enables the file watcher. External edits to the store are
// reloaded before the next command.
func WithWatch(enabled bool) Option {
	return func(o *options) {
		o.watch = enabled
	}
}

// WithClock overrides the time source used for record timestamps.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		o.clock = now
	}
}

// WithPersister replaces the file store as the save target (e.g. a mock).
// The file is still read at startup unless WithReload(false) is also given.
func WithPersister(p core.Persister) Option {
	return func(o *options) {
		o.store = p
	}
}

// WithReload controls whether the store is loaded when the console is
// built. Defaults to true.
func WithReload(enabled bool) Option {
	return func(o *options) {
		o.reload = enabled
	}
}
