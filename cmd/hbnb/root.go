package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/aretw0/hbnb"
	"github.com/aretw0/hbnb/internal/config"
	"github.com/aretw0/hbnb/pkg/console"
)

var (
	cfgFile string
	cfg     *config.Config
)

// rootCmd runs the interactive console when called without a subcommand.
var rootCmd = &cobra.Command{
	Use:   "hbnb",
	Short: "An interactive console for HBnB records",
	Long: `hbnb creates, inspects, updates and destroys typed records
(User, Place, City, State, Amenity, Review, BaseModel) kept in a single
JSON, YAML or TOML file.

Commands are read from stdin, one per line. Both "show User <id>" and
"User.show(<id>)" are accepted. Type "help" inside the console for the list.`,
	SilenceUsage: true,
	Args:         cobra.NoArgs,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load(cfgFile, cmd.Flags())
		if err != nil {
			return err
		}
		cfg = loaded

		level := slog.LevelInfo
		if cfg.Verbose {
			level = slog.LevelDebug
		}

		opts := &slog.HandlerOptions{
			Level: level,
		}
		logger := slog.New(slog.NewTextHandler(os.Stderr, opts))
		slog.SetDefault(logger)

		if cfg.ConfigFile != "" {
			logger.Debug("loaded config", "file", cfg.ConfigFile)
		}
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := openConsole()
		if err != nil {
			return err
		}

		reader, err := newReader()
		if err != nil {
			return err
		}
		return c.Run(cmd.Context(), reader, cmd.OutOrStdout())
	},
}

// openConsole builds a console from the resolved configuration.
func openConsole() (*hbnb.Console, error) {
	output, err := console.ParseFormat(cfg.Output)
	if err != nil {
		return nil, err
	}
	c, err := hbnb.New(cfg.File,
		hbnb.WithFormat(cfg.Format),
		hbnb.WithIDFormat(cfg.IDFormat),
		hbnb.WithOutput(output),
		hbnb.WithWatch(cfg.Watch),
		hbnb.WithLogger(slog.Default()),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to open console: %w", err)
	}
	return c, nil
}

// newReader uses readline on a terminal and plain line scanning otherwise,
// so piped scripts print no prompts.
func newReader() (console.LineReader, error) {
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return console.NewScannerReader(os.Stdin), nil
	}
	return console.NewReadlineReader(console.ReadlineConfig{
		Prompt:      cfg.Prompt,
		HistoryFile: cfg.History,
	})
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "Config file (default hbnb.yaml in the working directory)")
	flags.String("file", config.Defaults()["file"].(string), "Store file")
	flags.String("format", "", "Store format: json, yaml or toml (default: by file extension)")
	flags.String("id-format", config.DefaultIDFormat, "Record id format: uuid or nanoid")
	flags.StringP("output", "o", config.DefaultOutput, "Output of 'all': text, json or table")
	flags.String("prompt", console.DefaultPrompt, "Interactive prompt")
	flags.String("history", "", "Readline history file")
	flags.Bool("watch", false, "Reload the store when another process changes it")
	flags.BoolP("verbose", "v", false, "Enable verbose logging")
}
