package platform_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/hbnb/internal/platform"
	"github.com/aretw0/hbnb/pkg/adapters/fs"
	"github.com/aretw0/hbnb/pkg/console"
	"github.com/aretw0/hbnb/pkg/core"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newConsole(t *testing.T, name string, opts ...platform.Option) (*platform.Console, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	c, err := platform.New(path, append([]platform.Option{platform.WithLogger(quietLogger())}, opts...)...)
	require.NoError(t, err)
	return c, path
}

func TestNew_PersistsAcrossConsoles(t *testing.T) {
	for _, name := range []string{"file.json", "store.yaml", "store.toml"} {
		t.Run(name, func(t *testing.T) {
			c, path := newConsole(t, name)
			out := &bytes.Buffer{}
			c.Exec(context.Background(), out, `create Place name="My_house" latitude=37.77`)
			id := strings.TrimSpace(out.String())
			require.NotEmpty(t, id)

			reopened, err := platform.New(path, platform.WithLogger(quietLogger()))
			require.NoError(t, err)
			assert.Equal(t, 1, reopened.Registry.Len())

			r, err := reopened.Service.Get(core.KindPlace, id)
			require.NoError(t, err)
			name, _ := r.Attr("name")
			assert.Equal(t, core.String("My house"), name)
			lat, _ := r.Attr("latitude")
			assert.Equal(t, core.Float(37.77), lat)
		})
	}
}

func TestNew_ExplicitFormat(t *testing.T) {
	c, path := newConsole(t, "data.db", platform.WithFormat("yaml"))
	assert.Equal(t, "yaml", c.Storage.Format())

	c.Exec(context.Background(), io.Discard, "create State")
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "__class__: State")
}

func TestNew_InvalidOptions(t *testing.T) {
	dir := t.TempDir()

	_, err := platform.New(filepath.Join(dir, "file.json"), platform.WithIDFormat("snowflake"))
	assert.Error(t, err)

	_, err = platform.New(filepath.Join(dir, "file.json"), platform.WithFormat("xml"))
	assert.Error(t, err)
}

func TestNew_CorruptStoreStartsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "file.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0644))

	c, err := platform.New(path, platform.WithLogger(quietLogger()))
	require.NoError(t, err)
	assert.Equal(t, 0, c.Registry.Len())
	assert.NotEmpty(t, c.Storage.State().(fs.StorageState).LoadError)
}

func TestNew_Options(t *testing.T) {
	start := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	n := 0
	c, _ := newConsole(t, "file.json",
		platform.WithIDGenerator(func() (string, error) {
			n++
			return "id-" + string(rune('0'+n)), nil
		}),
		platform.WithClock(func() time.Time { return start }),
		platform.WithOutput(console.FormatJSON),
	)

	out := &bytes.Buffer{}
	c.Exec(context.Background(), out, "create User", "create User")
	assert.Equal(t, "id-1\nid-2\n", out.String())

	r, err := c.Service.Get(core.KindUser, "id-1")
	require.NoError(t, err)
	assert.Equal(t, start, r.CreatedAt())

	out.Reset()
	c.Exec(context.Background(), out, "all User")
	assert.Contains(t, out.String(), `"User.id-1": {`)
}

type failingPersister struct{}

func (failingPersister) Save(context.Context) error { return errors.New("read-only medium") }

func TestNew_WithPersister(t *testing.T) {
	c, path := newConsole(t, "file.json", platform.WithPersister(failingPersister{}))

	out := &bytes.Buffer{}
	c.Exec(context.Background(), out, "create City")
	assert.Equal(t, "** storage error: storage unavailable: read-only medium **\n", out.String())
	assert.Equal(t, 0, c.Registry.Len())
	assert.NoFileExists(t, path)
}

func TestConsole_Exec(t *testing.T) {
	c, _ := newConsole(t, "file.json")
	out := &bytes.Buffer{}

	stopped := c.Exec(context.Background(), out, "create Amenity", "count Amenity", "quit", "count Amenity")
	assert.True(t, stopped)
	lines := strings.Split(strings.TrimRight(out.String(), "\n"), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "1", lines[1])

	out.Reset()
	assert.False(t, c.Exec(context.Background(), out, "count Amenity"))
	assert.Equal(t, "1\n", out.String())
}

func TestConsole_Run(t *testing.T) {
	c, _ := newConsole(t, "file.json")
	out := &bytes.Buffer{}

	in := console.NewScannerReader(strings.NewReader("create Review\ncount Review\n"))
	require.NoError(t, c.Run(context.Background(), in, out))
	assert.True(t, strings.HasSuffix(out.String(), "1\n\n"))
}

func TestConsole_WatchReloadsExternalEdits(t *testing.T) {
	c, path := newConsole(t, "file.json", platform.WithWatch(true))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, c.Start(ctx))

	other, err := platform.New(path, platform.WithLogger(quietLogger()))
	require.NoError(t, err)
	other.Exec(context.Background(), io.Discard, "create User")

	require.Eventually(t, c.Storage.Stale, 2*time.Second, 10*time.Millisecond)

	out := &bytes.Buffer{}
	c.Exec(context.Background(), out, "count User")
	assert.Equal(t, "1\n", out.String())
	assert.False(t, c.Storage.Stale())
}

func TestConsole_State(t *testing.T) {
	c, path := newConsole(t, "file.json")
	c.Exec(context.Background(), io.Discard, "create User", "create Place")

	state := c.State()
	storage, ok := state["file-storage"].(fs.StorageState)
	require.True(t, ok)
	assert.Equal(t, path, storage.Path)
	assert.Equal(t, 2, storage.Records)

	service, ok := state["service"].(core.ServiceState)
	require.True(t, ok)
	assert.Equal(t, map[string]int{"User": 1, "Place": 1}, service.PerKind)
	assert.Equal(t, "file-storage", service.StorageType)
}
