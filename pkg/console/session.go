package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"

	"github.com/chzyer/readline"

	"github.com/aretw0/hbnb/pkg/core"
)

// DefaultPrompt is shown before every interactive command.
const DefaultPrompt = "(hbnb) "

// ErrInterrupt is returned by a LineReader when the operator cancels the
// current line. The session discards the line and keeps reading.
var ErrInterrupt = errors.New("interrupted")

// LineReader supplies command lines. ReadLine returns io.EOF at the end of
// input.
type LineReader interface {
	ReadLine() (string, error)
	Close() error
}

// Reloader is the storage side of a session: it reports external changes
// to the store file and reloads the registry from it.
type Reloader interface {
	Stale() bool
	Reload(ctx context.Context) error
}

// Session is the read loop of the console.
type Session struct {
	dispatcher *Dispatcher
	reader     LineReader
	out        io.Writer
	store      Reloader
	logger     *slog.Logger
}

// SessionOption configures a Session.
type SessionOption func(*Session)

// WithReloader lets the session refresh the registry between commands when
// the store file was changed by another process.
func WithReloader(r Reloader) SessionOption {
	return func(s *Session) {
		s.store = r
	}
}

// WithSessionLogger sets the logger for the session.
func WithSessionLogger(logger *slog.Logger) SessionOption {
	return func(s *Session) {
		s.logger = logger
	}
}

// NewSession creates a session reading from reader and writing to out.
func NewSession(d *Dispatcher, reader LineReader, out io.Writer, opts ...SessionOption) *Session {
	s := &Session{
		dispatcher: d,
		reader:     reader,
		out:        out,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run reads and executes lines until quit, EOF, end of input or
// cancellation of ctx.
func (s *Session) Run(ctx context.Context) error {
	defer func() { _ = s.reader.Close() }()
	for {
		if err := ctx.Err(); err != nil {
			return nil
		}
		line, err := s.reader.ReadLine()
		if errors.Is(err, ErrInterrupt) {
			continue
		}
		if errors.Is(err, io.EOF) {
			_, _ = fmt.Fprintln(s.out)
			return nil
		}
		if err != nil {
			return fmt.Errorf("read command: %w", err)
		}
		if s.Handle(ctx, line) {
			return nil
		}
	}
}

// Handle executes one line and reports whether the session should end.
func (s *Session) Handle(ctx context.Context, line string) (stop bool) {
	line = strings.TrimSpace(line)
	if line == "" {
		return false
	}
	s.refresh(ctx)

	command, args := splitCommand(line)
	switch command {
	case "quit":
		return true
	case "EOF":
		_, _ = fmt.Fprintln(s.out)
		return true
	case "help":
		s.help(args)
		return false
	}
	if s.dispatcher.Execute(ctx, command, args) {
		return false
	}

	if normalized, ok := Normalize(line); ok {
		command, args = splitCommand(normalized)
		s.dispatcher.Execute(ctx, command, args)
		return false
	}
	_, _ = fmt.Fprintln(s.out, msgUnknownSyntax(line))
	return false
}

// refresh reloads the registry when the store file changed on disk.
func (s *Session) refresh(ctx context.Context) {
	if s.store == nil || !s.store.Stale() {
		return
	}
	if err := s.store.Reload(ctx); err != nil {
		s.logger.Warn("reload after external change failed", "error", err)
		return
	}
	s.logger.Info("store reloaded after external change")
}

// splitCommand splits a line into its leading identifier and the rest.
func splitCommand(line string) (command, args string) {
	i := 0
	for i < len(line) && isIdentChar(line[i]) {
		i++
	}
	return line[:i], strings.TrimSpace(line[i:])
}

func isIdentChar(c byte) bool {
	return c == '_' || '0' <= c && c <= '9' || 'a' <= c && c <= 'z' || 'A' <= c && c <= 'Z'
}

var helpTopics = map[string]string{
	"EOF":     "EOF command to exit the program",
	"quit":    "Quit command to exit the program",
	"help":    `List available commands with "help" or detailed help with "help cmd".`,
	"create":  "Creates a new instance of a class, saves it and prints the id.\nUsage: create <class name> [<key>=<value> ...]",
	"show":    "Prints the string representation of an instance.\nUsage: show <class name> <id> or <class name>.show(<id>)",
	"destroy": "Deletes an instance based on the class name and id.\nUsage: destroy <class name> <id> or <class name>.destroy(<id>)",
	"all":     "Prints all instances, or all instances of a class.\nUsage: all or all <class name> or <class name>.all()",
	"update":  "Updates an instance by adding or updating attributes.\nUsage: update <class name> <id> <attribute name> \"<attribute value>\" or\n       <class name>.update(<id>, <attribute name>, <attribute value>) or\n       <class name>.update(<id>, <dictionary>)",
	"count":   "Retrieves the number of instances of a class.\nUsage: count <class name> or <class name>.count()",
}

func (s *Session) help(topic string) {
	if topic != "" {
		doc, ok := helpTopics[topic]
		if !ok {
			_, _ = fmt.Fprintln(s.out, msgNoHelp(topic))
			return
		}
		_, _ = fmt.Fprintln(s.out, doc)
		return
	}

	names := make([]string, 0, len(helpTopics))
	for name := range helpTopics {
		names = append(names, name)
	}
	sort.Strings(names)

	const header = "Documented commands (type help <topic>):"
	_, _ = fmt.Fprintln(s.out)
	_, _ = fmt.Fprintln(s.out, header)
	_, _ = fmt.Fprintln(s.out, strings.Repeat("=", len(header)))
	_, _ = fmt.Fprintln(s.out, strings.Join(names, "  "))
	_, _ = fmt.Fprintln(s.out)
}

// --- Line readers ---

type scannerReader struct {
	scanner *bufio.Scanner
}

// NewScannerReader reads lines from r without prompting. It serves piped
// input and scripts.
func NewScannerReader(r io.Reader) LineReader {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	return &scannerReader{scanner: scanner}
}

func (r *scannerReader) ReadLine() (string, error) {
	if r.scanner.Scan() {
		return r.scanner.Text(), nil
	}
	if err := r.scanner.Err(); err != nil {
		return "", err
	}
	return "", io.EOF
}

func (r *scannerReader) Close() error { return nil }

// ReadlineConfig configures the interactive reader.
type ReadlineConfig struct {
	Prompt      string
	HistoryFile string
	Stdin       io.ReadCloser
	Stdout      io.Writer
}

type readlineReader struct {
	rl *readline.Instance
}

// NewReadlineReader creates an interactive reader with line editing,
// history and completion of commands and class names.
func NewReadlineReader(cfg ReadlineConfig) (LineReader, error) {
	if cfg.Prompt == "" {
		cfg.Prompt = DefaultPrompt
	}
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          cfg.Prompt,
		HistoryFile:     cfg.HistoryFile,
		AutoComplete:    newCompleter(),
		InterruptPrompt: "^C",
		Stdin:           cfg.Stdin,
		Stdout:          cfg.Stdout,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize console: %w", err)
	}
	return &readlineReader{rl: rl}, nil
}

func (r *readlineReader) ReadLine() (string, error) {
	line, err := r.rl.Readline()
	if errors.Is(err, readline.ErrInterrupt) {
		return "", ErrInterrupt
	}
	return line, err
}

func (r *readlineReader) Close() error { return r.rl.Close() }

// newCompleter completes commands, class names and the dotted call form.
func newCompleter() *readline.PrefixCompleter {
	kinds := func() []readline.PrefixCompleterInterface {
		items := make([]readline.PrefixCompleterInterface, 0, len(core.Kinds()))
		for _, k := range core.Kinds() {
			items = append(items, readline.PcItem(string(k)))
		}
		return items
	}

	var items []readline.PrefixCompleterInterface
	topics := make([]readline.PrefixCompleterInterface, 0, len(helpTopics))
	for _, op := range Operations {
		items = append(items, readline.PcItem(op, kinds()...))
		topics = append(topics, readline.PcItem(op))
	}
	for _, k := range core.Kinds() {
		for _, op := range Operations {
			items = append(items, readline.PcItem(fmt.Sprintf("%s.%s(", k, op)))
		}
	}
	items = append(items,
		readline.PcItem("help", topics...),
		readline.PcItem("quit"),
	)
	return readline.NewPrefixCompleter(items...)
}
