package console_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/hbnb/pkg/console"
	"github.com/aretw0/hbnb/pkg/core"
	"github.com/aretw0/hbnb/pkg/idgen"
)

func TestSession_Control(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	h.out.Reset()
	assert.True(t, h.session.Handle(ctx, "quit"))
	assert.Empty(t, h.out.String())

	h.out.Reset()
	assert.True(t, h.session.Handle(ctx, "EOF"))
	assert.Equal(t, "\n", h.out.String())

	h.out.Reset()
	assert.False(t, h.session.Handle(ctx, "   "))
	assert.Empty(t, h.out.String())
}

func TestSession_UnknownSyntax(t *testing.T) {
	h := newHarness(t)
	for _, line := range []string{"foo bar", "User.fly()", "showUser x", "User.show(", "!ls"} {
		assert.Equal(t, "*** Unknown syntax: "+line+"\n", h.run(line), line)
	}
}

func TestSession_Help(t *testing.T) {
	h := newHarness(t)

	out := h.run("help")
	assert.Contains(t, out, "Documented commands (type help <topic>):")
	assert.Contains(t, out, "EOF  all  count  create  destroy  help  quit  show  update")

	assert.Contains(t, h.run("help show"), "Usage: show <class name> <id>")
	assert.Equal(t, "*** No help on fly\n", h.run("help fly"))
}

func TestSession_DottedForms(t *testing.T) {
	h := newHarness(t)
	id := strings.TrimSpace(h.run(`User.create(first_name="Ada")`))
	require.NotEmpty(t, id)

	out := h.run(`User.show("` + id + `")`)
	assert.Contains(t, out, `"first_name": "Ada"`)
	assert.Equal(t, "1\n", h.run("User.count()"))

	assert.Empty(t, h.run(`User.destroy("`+id+`")`))
	assert.Equal(t, "0\n", h.run("User.count()"))
}

func TestSession_Run(t *testing.T) {
	reg := core.NewRegistry()
	service := core.NewService(reg, nil, idgen.UUID, core.WithServiceLogger(quietLogger()))
	out := &bytes.Buffer{}
	d := console.NewDispatcher(service, out, console.WithLogger(quietLogger()))

	t.Run("quit ends the loop", func(t *testing.T) {
		out.Reset()
		in := strings.NewReader("create User\n\ncount User\nquit\ncount User\n")
		s := console.NewSession(d, console.NewScannerReader(in), out)
		require.NoError(t, s.Run(context.Background()))

		lines := strings.Split(strings.TrimRight(out.String(), "\n"), "\n")
		require.Len(t, lines, 2)
		assert.NotEmpty(t, lines[0])
		assert.Equal(t, "1", lines[1])
	})

	t.Run("end of input prints a newline", func(t *testing.T) {
		out.Reset()
		s := console.NewSession(d, console.NewScannerReader(strings.NewReader("count User")), out)
		require.NoError(t, s.Run(context.Background()))
		assert.Equal(t, "1\n\n", out.String())
	})

	t.Run("interrupts are skipped", func(t *testing.T) {
		out.Reset()
		reader := &scriptReader{lines: []string{"count User"}, errs: []error{console.ErrInterrupt, nil}}
		s := console.NewSession(d, reader, out)
		require.NoError(t, s.Run(context.Background()))
		assert.Equal(t, "1\n\n", out.String())
		assert.True(t, reader.closed)
	})

	t.Run("read errors are returned", func(t *testing.T) {
		reader := &scriptReader{errs: []error{errors.New("tty gone")}}
		s := console.NewSession(d, reader, out)
		assert.Error(t, s.Run(context.Background()))
	})
}

type fakeReloader struct {
	stale   bool
	reloads int
}

func (f *fakeReloader) Stale() bool { return f.stale }

func (f *fakeReloader) Reload(context.Context) error {
	f.reloads++
	f.stale = false
	return nil
}

func TestSession_ReloadsWhenStale(t *testing.T) {
	reg := core.NewRegistry()
	service := core.NewService(reg, nil, idgen.UUID, core.WithServiceLogger(quietLogger()))
	out := &bytes.Buffer{}
	d := console.NewDispatcher(service, out, console.WithLogger(quietLogger()))
	reloader := &fakeReloader{}
	s := console.NewSession(d, console.NewScannerReader(strings.NewReader("")), out,
		console.WithReloader(reloader), console.WithSessionLogger(quietLogger()))

	s.Handle(context.Background(), "count User")
	assert.Equal(t, 0, reloader.reloads)

	reloader.stale = true
	s.Handle(context.Background(), "count User")
	assert.Equal(t, 1, reloader.reloads)

	s.Handle(context.Background(), "")
	assert.Equal(t, 1, reloader.reloads, "empty lines do not reload")
}

// scriptReader replays lines; errs[i] (when set) is returned instead of the
// i-th read.
type scriptReader struct {
	lines  []string
	errs   []error
	reads  int
	closed bool
}

func (r *scriptReader) ReadLine() (string, error) {
	i := r.reads
	r.reads++
	if i < len(r.errs) && r.errs[i] != nil {
		return "", r.errs[i]
	}
	consumed := 0
	for j := 0; j < i && j < len(r.errs); j++ {
		if r.errs[j] != nil {
			consumed++
		}
	}
	idx := i - consumed
	if idx < len(r.lines) {
		return r.lines[idx], nil
	}
	return "", io.EOF
}

func (r *scriptReader) Close() error {
	r.closed = true
	return nil
}
