package console_test

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/aretw0/hbnb/pkg/adapters/fs"
	"github.com/aretw0/hbnb/pkg/console"
	"github.com/aretw0/hbnb/pkg/core"
	"github.com/aretw0/hbnb/pkg/idgen"
	"github.com/aretw0/hbnb/pkg/literal"
)

type harness struct {
	t       *testing.T
	reg     *core.Registry
	store   *fs.Storage
	service *core.Service
	out     *bytes.Buffer
	session *console.Session
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newHarness wires a session over a JSON store in a temp directory.
func newHarness(t *testing.T, opts ...console.DispatcherOption) *harness {
	t.Helper()
	reg := core.NewRegistry()
	store, err := fs.NewStorage(reg, fs.Config{
		Path:   filepath.Join(t.TempDir(), "file.json"),
		Logger: quietLogger(),
	})
	require.NoError(t, err)
	require.NoError(t, store.Reload(context.Background()))
	return newHarnessWith(t, reg, store, store, opts...)
}

func newHarnessWith(t *testing.T, reg *core.Registry, persister core.Persister, store *fs.Storage, opts ...console.DispatcherOption) *harness {
	t.Helper()
	logger := quietLogger()
	service := core.NewService(reg, persister, idgen.UUID,
		core.WithListParser(literal.Parse),
		core.WithServiceLogger(logger),
	)
	out := &bytes.Buffer{}
	d := console.NewDispatcher(service, out, append([]console.DispatcherOption{console.WithLogger(logger)}, opts...)...)
	return &harness{
		t:       t,
		reg:     reg,
		store:   store,
		service: service,
		out:     out,
		session: console.NewSession(d, console.NewScannerReader(strings.NewReader("")), out, console.WithSessionLogger(logger)),
	}
}

// run executes one line and returns what it printed.
func (h *harness) run(line string) string {
	h.t.Helper()
	h.out.Reset()
	h.session.Handle(context.Background(), line)
	return h.out.String()
}

// create runs "create <kind> [params]" and returns the new id.
func (h *harness) create(args string) string {
	h.t.Helper()
	out := h.run("create " + args)
	id := strings.TrimSpace(out)
	require.NotEmpty(h.t, id, "create %s printed nothing", args)
	require.NotContains(h.t, id, "**", "create %s failed: %s", args, out)
	return id
}

func (h *harness) record(kind core.Kind, id string) *core.Record {
	h.t.Helper()
	r, err := h.service.Get(kind, id)
	require.NoError(h.t, err)
	return r
}
