package console

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/aretw0/hbnb/pkg/core"
	"github.com/aretw0/hbnb/pkg/literal"
)

// Operations lists the record operations in the order help shows them.
var Operations = []string{"create", "show", "destroy", "all", "update", "count"}

func isOperation(name string) bool {
	for _, op := range Operations {
		if op == name {
			return true
		}
	}
	return false
}

type handler func(ctx context.Context, args []Token)

// Dispatcher runs record operations against a core.Service. Every
// operation validates its arguments in a fixed order and stops at the first
// failure with exactly one diagnostic line.
type Dispatcher struct {
	service  *core.Service
	out      io.Writer
	format   Format
	logger   *slog.Logger
	handlers map[string]handler
}

// DispatcherOption configures a Dispatcher.
type DispatcherOption func(*Dispatcher)

// WithFormat selects how "all" renders records.
func WithFormat(f Format) DispatcherOption {
	return func(d *Dispatcher) {
		d.format = f
	}
}

// WithLogger sets the logger for the dispatcher.
func WithLogger(logger *slog.Logger) DispatcherOption {
	return func(d *Dispatcher) {
		d.logger = logger
	}
}

// NewDispatcher creates a dispatcher writing results and diagnostics to out.
func NewDispatcher(service *core.Service, out io.Writer, opts ...DispatcherOption) *Dispatcher {
	d := &Dispatcher{
		service: service,
		out:     out,
		format:  FormatText,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(d)
	}
	d.handlers = map[string]handler{
		"create":  d.create,
		"show":    d.show,
		"destroy": d.destroy,
		"all":     d.all,
		"update":  d.update,
		"count":   d.count,
	}
	return d
}

// Execute runs operation command with the raw argument text. It reports
// false when command is not a record operation.
func (d *Dispatcher) Execute(ctx context.Context, command, args string) bool {
	h, ok := d.handlers[command]
	if !ok {
		return false
	}
	tokens := Tokenize(args)
	if command == "create" {
		tokens = TokenizeParams(args)
	}
	d.logger.Debug("dispatch", "command", command, "tokens", len(tokens))
	h(ctx, tokens)
	return true
}

func (d *Dispatcher) println(a ...any) {
	_, _ = fmt.Fprintln(d.out, a...)
}

// fail reports an error returned by the service.
func (d *Dispatcher) fail(err error) {
	switch {
	case errors.Is(err, core.ErrNotFound):
		d.println(MsgNotFound)
	case errors.Is(err, core.ErrUnknownKind):
		d.println(MsgClassUnknown)
	default:
		d.println(msgStorage(err))
	}
}

func (d *Dispatcher) kind(args []Token) (core.Kind, bool) {
	if len(args) == 0 {
		d.println(MsgClassMissing)
		return "", false
	}
	k, ok := core.ParseKind(args[0].Text)
	if !ok {
		d.println(MsgClassUnknown)
		return "", false
	}
	return k, true
}

// lookup runs the kind, id and existence checks shared by show, destroy and
// update.
func (d *Dispatcher) lookup(args []Token) (*core.Record, bool) {
	k, ok := d.kind(args)
	if !ok {
		return nil, false
	}
	if len(args) < 2 {
		d.println(MsgIDMissing)
		return nil, false
	}
	r, err := d.service.Get(k, args[1].Text)
	if err != nil {
		d.println(MsgNotFound)
		return nil, false
	}
	return r, true
}

func (d *Dispatcher) create(ctx context.Context, args []Token) {
	k, ok := d.kind(args)
	if !ok {
		return
	}
	r, err := d.service.Create(ctx, k, d.createParams(args[1:]))
	if err != nil {
		d.fail(err)
		return
	}
	d.println(r.ID())
}

// createParams turns key=value words into attributes. Quoted values are
// strings with underscores read as spaces; unquoted values must be
// literals. Words that are neither, and reserved names, are skipped.
func (d *Dispatcher) createParams(args []Token) core.Attributes {
	attrs := make(core.Attributes)
	for i := 0; i < len(args); i++ {
		tok := args[i]
		if tok.Literal {
			continue
		}
		key, value, ok := strings.Cut(tok.Text, "=")
		if !ok || key == "" {
			d.logger.Debug("create parameter skipped", "param", tok.Raw)
			continue
		}
		_, rawValue, _ := strings.Cut(tok.Raw, "=")
		if rawValue == "" && i+1 < len(args) && args[i+1].Literal {
			i++
			value, rawValue = args[i].Text, args[i].Text
		}
		if core.IsReserved(key) {
			d.logger.Debug("create parameter skipped", "param", key, "reason", "reserved")
			continue
		}

		if strings.HasPrefix(rawValue, `"`) || strings.HasPrefix(rawValue, "'") {
			attrs[key] = core.String(strings.ReplaceAll(value, "_", " "))
			continue
		}
		v, err := literal.Parse(value)
		if err != nil {
			d.logger.Debug("create parameter skipped", "param", key, "error", err)
			continue
		}
		attrs[key] = v
	}
	return attrs
}

func (d *Dispatcher) show(_ context.Context, args []Token) {
	r, ok := d.lookup(args)
	if !ok {
		return
	}
	d.println(r.String())
}

func (d *Dispatcher) destroy(ctx context.Context, args []Token) {
	r, ok := d.lookup(args)
	if !ok {
		return
	}
	if err := d.service.Destroy(ctx, r.Kind(), r.ID()); err != nil {
		d.fail(err)
	}
}

func (d *Dispatcher) all(_ context.Context, args []Token) {
	var k core.Kind
	if len(args) > 0 {
		parsed, ok := core.ParseKind(args[0].Text)
		if !ok {
			d.println(MsgClassUnknown)
			return
		}
		k = parsed
	}
	if err := Render(d.out, d.format, d.service.List(k)); err != nil {
		d.logger.Error("render failed", "error", err)
	}
}

func (d *Dispatcher) update(ctx context.Context, args []Token) {
	r, ok := d.lookup(args)
	if !ok {
		return
	}

	var fields []core.Field
	if len(args) > 2 && args[2].Literal && literal.IsDict(args[2].Text) {
		parsed, err := literal.ParseDict(args[2].Text)
		if err != nil {
			d.println(msgInvalidLiteral(args[2].Text))
			return
		}
		for _, f := range parsed {
			if f.Name == "" {
				d.println(MsgAttrMissing)
				return
			}
		}
		fields = parsed
	} else {
		if len(args) < 3 || args[2].Text == "" {
			d.println(MsgAttrMissing)
			return
		}
		if len(args) < 4 {
			d.println(MsgValueMissing)
			return
		}
		value := args[3].Text
		if args[3].Quoted {
			value = strings.ReplaceAll(value, "_", " ")
		}
		fields = []core.Field{{Name: args[2].Text, Value: core.String(value)}}
	}

	if _, err := d.service.Update(ctx, r.Kind(), r.ID(), fields); err != nil {
		d.fail(err)
	}
}

func (d *Dispatcher) count(_ context.Context, args []Token) {
	k, ok := d.kind(args)
	if !ok {
		return
	}
	d.println(d.service.Count(k))
}
