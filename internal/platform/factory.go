package platform

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/aretw0/hbnb/pkg/adapters/fs"
	"github.com/aretw0/hbnb/pkg/console"
	"github.com/aretw0/hbnb/pkg/core"
	"github.com/aretw0/hbnb/pkg/idgen"
	"github.com/aretw0/hbnb/pkg/literal"
)

// Console is a fully wired hbnb console: one registry, the file storage
// bound to it, the record service and the command dispatcher.
type Console struct {
	Registry *core.Registry
	Storage  *fs.Storage
	Service  *core.Service

	output console.Format
	watch  bool
	logger *slog.Logger
}

// New builds a console over the store file at path.
//
//	c, err := hbnb.New("file.json", hbnb.WithIDFormat("nanoid"))
//
// The store is loaded immediately. A missing or unreadable file leaves the
// registry empty; the load error is logged, not returned.
func New(path string, opts ...Option) (*Console, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	if o.logger == nil {
		o.logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	}

	ids := o.ids
	if ids == nil {
		gen, err := idgen.ByName(o.idFormat)
		if err != nil {
			return nil, err
		}
		ids = gen
	}

	registry := core.NewRegistry()
	storage, err := fs.NewStorage(registry, fs.Config{
		Path:   path,
		Format: o.format,
		Perm:   o.perm,
		Logger: o.logger,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}

	var persister core.Persister = storage
	if o.store != nil {
		persister = o.store
	}

	serviceOpts := []core.ServiceOption{
		core.WithListParser(literal.Parse),
		core.WithServiceLogger(o.logger),
	}
	if o.clock != nil {
		serviceOpts = append(serviceOpts, core.WithClock(o.clock))
	}

	c := &Console{
		Registry: registry,
		Storage:  storage,
		Service:  core.NewService(registry, persister, core.IDFunc(ids), serviceOpts...),
		output:   o.output,
		watch:    o.watch,
		logger:   o.logger,
	}

	if o.reload {
		// Load errors already leave the registry empty and are logged by the storage.
		_ = storage.Reload(context.Background())
	}
	return c, nil
}

// Dispatcher returns a dispatcher writing to out.
func (c *Console) Dispatcher(out io.Writer) *console.Dispatcher {
	return console.NewDispatcher(c.Service, out,
		console.WithFormat(c.output),
		console.WithLogger(c.logger),
	)
}

// Session returns an interactive session reading from reader.
func (c *Console) Session(reader console.LineReader, out io.Writer) *console.Session {
	return console.NewSession(c.Dispatcher(out), reader, out,
		console.WithReloader(c.Storage),
		console.WithSessionLogger(c.logger),
	)
}

// Start starts the file watcher when it is enabled. It stops with ctx.
func (c *Console) Start(ctx context.Context) error {
	if !c.watch {
		return nil
	}
	if err := c.Storage.Watch(ctx); err != nil {
		return fmt.Errorf("failed to watch store: %w", err)
	}
	c.logger.Debug("watching store", "path", c.Storage.Path())
	return nil
}

// Run starts the watcher (if enabled) and runs a session until quit or end
// of input.
func (c *Console) Run(ctx context.Context, reader console.LineReader, out io.Writer) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	if err := c.Start(ctx); err != nil {
		return err
	}
	return c.Session(reader, out).Run(ctx)
}

// Exec runs each line as one command, in order, stopping early at quit or
// EOF. It reports whether a line ended the session.
func (c *Console) Exec(ctx context.Context, out io.Writer, lines ...string) (stopped bool) {
	session := c.Session(nil, out)
	for _, line := range lines {
		if session.Handle(ctx, line) {
			return true
		}
	}
	return false
}

// State returns the introspection state of the storage and the service.
func (c *Console) State() map[string]any {
	return map[string]any{
		c.Storage.ComponentType(): c.Storage.State(),
		c.Service.ComponentType(): c.Service.State(),
	}
}
