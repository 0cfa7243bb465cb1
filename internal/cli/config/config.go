// Package config loads makecases CLI configuration.
//
// Layers, lowest to highest precedence:
//
//	defaults < makecases.yaml (or --config) < MAKECASES_* env < explicitly set flags
//
// Environment keys map with "__" as the level separator, so MAKECASES_LOG__LEVEL
// sets log.level and MAKECASES_REGISTRY__DSN sets registry.dsn.
package config

import (
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "MAKECASES_"

// Default values.
const (
	DefaultConfigFile = "makecases.yaml"
	DefaultLogLevel   = "info"
	DefaultLogFormat  = "text"
	DefaultOutput     = "auto"
	DefaultDriver     = "sqlite"
	DefaultDSN        = "makecases.db"
	DefaultAddr       = ":8080"
)

// Config is the resolved CLI configuration.
type Config struct {
	Log      LogConfig      `koanf:"log"`
	Output   string         `koanf:"output"`
	Registry RegistryConfig `koanf:"registry"`
	Generate GenerateConfig `koanf:"generate"`
	Engine   EngineConfig   `koanf:"engine"`
	Server   ServerConfig   `koanf:"server"`

	// FileUsed is the config file that was read, if any.
	FileUsed string `koanf:"-"`
}

// LogConfig configures the slog handler.
type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

// RegistryConfig selects where datasets are kept.
type RegistryConfig struct {
	Driver string `koanf:"driver"`
	DSN    string `koanf:"dsn"`
}

// GenerateConfig holds defaults for the generate command.
type GenerateConfig struct {
	Display bool   `koanf:"display"`
	Seed    uint64 `koanf:"seed"`
}

// EngineConfig tunes the local engine. Zero values keep the engine defaults.
type EngineConfig struct {
	EigenTol     float64 `koanf:"eigen_tol"`
	EigenMaxIter int     `koanf:"eigen_max_iter"`
}

// ServerConfig configures the HTTP service.
type ServerConfig struct {
	Addr           string   `koanf:"addr"`
	AllowedOrigins []string `koanf:"allowed_origins"`
}

// flagKeys maps flag names to config keys. Flags not listed are command-local.
var flagKeys = map[string]string{
	"log-level":  "log.level",
	"log-format": "log.format",
	"output":     "output",
	"registry":   "registry.driver",
	"dsn":        "registry.dsn",
	"addr":       "server.addr",
	"origins":    "server.allowed_origins",
}

func defaults() map[string]interface{} {
	return map[string]interface{}{
		"log.level":              DefaultLogLevel,
		"log.format":             DefaultLogFormat,
		"output":                 DefaultOutput,
		"registry.driver":        DefaultDriver,
		"registry.dsn":           DefaultDSN,
		"generate.display":       true,
		"generate.seed":          0,
		"engine.eigen_tol":       0.0,
		"engine.eigen_max_iter":  0,
		"server.addr":            DefaultAddr,
		"server.allowed_origins": []string{"*"},
	}
}

// Default returns the configuration with no file, env or flags applied.
func Default() *Config {
	k := koanf.New(".")
	_ = k.Load(confmap.Provider(defaults(), "."), nil)
	var cfg Config
	_ = k.Unmarshal("", &cfg)
	return &cfg
}

// Load resolves configuration. An explicit cfgFile must exist; otherwise
// makecases.yaml in the working directory is read when present. Only flags the user
// changed override lower layers.
func Load(cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	used := cfgFile
	if used == "" {
		if _, err := os.Stat(DefaultConfigFile); err == nil {
			used = DefaultConfigFile
		}
	}
	if used != "" {
		if err := k.Load(file.Provider(used), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", used, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, EnvPrefix)), "__", ".")
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, interface{}) {
			key, ok := flagKeys[f.Name]
			if !ok || !f.Changed {
				return "", nil
			}
			return key, posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	cfg.FileUsed = used
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks enumerated values.
func (c *Config) Validate() error {
	c.Log.Level = strings.ToLower(c.Log.Level)
	c.Log.Format = strings.ToLower(c.Log.Format)
	c.Output = strings.ToLower(c.Output)
	c.Registry.Driver = strings.ToLower(c.Registry.Driver)

	checks := []struct {
		key, value string
		allowed    []string
	}{
		{"log.level", c.Log.Level, []string{"debug", "info", "warn", "error"}},
		{"log.format", c.Log.Format, []string{"text", "json"}},
		{"output", c.Output, []string{"auto", "text", "markdown", "json", "yaml", "csv"}},
		{"registry.driver", c.Registry.Driver, []string{"memory", "sqlite", "duckdb"}},
	}
	for _, ch := range checks {
		if !slices.Contains(ch.allowed, ch.value) {
			return fmt.Errorf("invalid %s %q (want one of %s)", ch.key, ch.value, strings.Join(ch.allowed, ", "))
		}
	}
	if c.Engine.EigenTol < 0 || c.Engine.EigenMaxIter < 0 {
		return fmt.Errorf("engine.eigen_tol and engine.eigen_max_iter must not be negative")
	}
	if c.Registry.Driver != "memory" && c.Registry.DSN == "" {
		return fmt.Errorf("registry.dsn is required for driver %s", c.Registry.Driver)
	}
	return nil
}
