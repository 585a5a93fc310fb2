// Package config loads the hbnb CLI configuration.
//
// Sources are layered with koanf. Precedence (highest to lowest):
// flags > HBNB_* environment variables > config file > defaults.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"

	"github.com/aretw0/hbnb/pkg/adapters/fs"
	"github.com/aretw0/hbnb/pkg/console"
	"github.com/aretw0/hbnb/pkg/idgen"
)

// EnvPrefix is the prefix of environment variables read by Load.
const EnvPrefix = "HBNB_"

// Default values.
const (
	DefaultIDFormat = "uuid"
	DefaultOutput   = "text"
)

// configFiles are probed in the working directory when no file is given.
var configFiles = []string{"hbnb.yaml", "hbnb.yml"}

// Config holds the resolved CLI settings.
type Config struct {
	File     string `koanf:"file"`
	Format   string `koanf:"format"`
	IDFormat string `koanf:"id_format"`
	Output   string `koanf:"output"`
	Prompt   string `koanf:"prompt"`
	History  string `koanf:"history"`
	Watch    bool   `koanf:"watch"`
	Verbose  bool   `koanf:"verbose"`

	// ConfigFile is the config file that was read, if any.
	ConfigFile string `koanf:"-"`
}

// Defaults returns the default key/value set.
func Defaults() map[string]interface{} {
	return map[string]interface{}{
		"file":      fs.DefaultPath,
		"format":    "",
		"id_format": DefaultIDFormat,
		"output":    DefaultOutput,
		"prompt":    console.DefaultPrompt,
		"history":   "",
		"watch":     false,
		"verbose":   false,
	}
}

// findConfigFile returns the explicit path, or the first hbnb.yaml/hbnb.yml
// in the working directory.
func findConfigFile(explicit string) string {
	if explicit != "" {
		return explicit
	}
	for _, name := range configFiles {
		if _, err := os.Stat(name); err == nil {
			return name
		}
	}
	return ""
}

// Load resolves the configuration. flags may be nil.
func Load(cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	// 1. Defaults
	if err := k.Load(confmap.Provider(Defaults(), "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// 2. Config file
	used := findConfigFile(cfgFile)
	if used != "" {
		if err := k.Load(file.Provider(used), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", used, err)
		}
	}

	// 3. Environment: HBNB_ID_FORMAT -> id_format
	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	// 4. Flags that were explicitly set
	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, interface{}) {
			if !f.Changed || f.Name == "config" {
				return "", nil
			}
			key := strings.ReplaceAll(f.Name, "-", "_")
			return key, posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	cfg.ConfigFile = used

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the enumerated settings.
func (c *Config) Validate() error {
	if c.File == "" {
		return fmt.Errorf("invalid configuration: file must not be empty")
	}
	if c.Format != "" {
		if _, _, err := fs.SerializerFor(c.Format, c.File); err != nil {
			return fmt.Errorf("invalid configuration: %w", err)
		}
	}
	if _, err := idgen.ByName(c.IDFormat); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if _, err := console.ParseFormat(c.Output); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}
