// Package config loads sharekeeper settings from flags, environment and a
// YAML file.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"sharekeeper/internal/core"
	"sharekeeper/internal/parse"
	"sharekeeper/internal/shareinfo"
)

// EnvPrefix is prepended to every environment override, e.g. SHAREKEEPER_LOG_LEVEL.
const EnvPrefix = "SHAREKEEPER"

// Config holds the effective settings of one sharekeeper invocation.
type Config struct {
	LogLevel      string        `mapstructure:"log_level" yaml:"log_level"`
	Encoding      string        `mapstructure:"encoding" yaml:"encoding"`
	Server        string        `mapstructure:"server" yaml:"server"`
	Parallel      int           `mapstructure:"parallel" yaml:"parallel"`
	ModuleTimeout time.Duration `mapstructure:"module_timeout" yaml:"module_timeout"`
	Types         string        `mapstructure:"types" yaml:"types"`

	level    logrus.Level
	encoding shareinfo.Encoding
	filter   *parse.TypeFilter
}

// flagKeys maps config keys to the CLI flags that override them.
var flagKeys = map[string]string{
	"log_level":      "log-level",
	"encoding":       "encoding",
	"server":         "server",
	"parallel":       "parallel",
	"module_timeout": "module-timeout",
	"types":          "types",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log_level", "info")
	v.SetDefault("encoding", "utf16")
	v.SetDefault("server", "")
	v.SetDefault("parallel", 4)
	v.SetDefault("module_timeout", 60*time.Second)
	v.SetDefault("types", "")
}

// Load builds the configuration.
//
// Precedence (highest to lowest): flags that were set on the command line,
// SHAREKEEPER_* environment variables, the config file, defaults. An empty
// configPath searches the default location and tolerates its absence; an
// explicit path must exist. flags may be nil.
func Load(configPath string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.AddConfigPath(Dir())
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok || configPath != "" {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	if flags != nil {
		for key, name := range flagKeys {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("failed to bind --%s: %w", name, err)
				}
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return &cfg, nil
}

// Validate normalizes the settings and resolves the derived values returned by
// Level, TextEncoding and Filter. Parallel is clamped rather than rejected.
func (c *Config) Validate() error {
	level, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		return fmt.Errorf("invalid log_level %q: %w", c.LogLevel, err)
	}
	enc, err := shareinfo.ParseEncoding(c.Encoding)
	if err != nil {
		return fmt.Errorf("invalid encoding: %w", err)
	}
	if err := parse.ValidateModuleTimeout(c.ModuleTimeout); err != nil {
		return err
	}
	filter, err := parse.ParseTypeFilter(c.Types)
	if err != nil {
		return fmt.Errorf("invalid types: %w", err)
	}

	c.Parallel = core.ClampParallelism(c.Parallel)
	c.level = level
	c.encoding = enc
	c.filter = filter
	return nil
}

// Level returns the parsed log level.
func (c *Config) Level() logrus.Level { return c.level }

// TextEncoding returns the string encoding used when decoding raw SHARE_INFO_1 memory.
func (c *Config) TextEncoding() shareinfo.Encoding { return c.encoding }

// Filter returns the share type filter built from Types.
func (c *Config) Filter() *parse.TypeFilter { return c.filter }

// Dir returns $XDG_CONFIG_HOME/sharekeeper, falling back to ~/.config/sharekeeper
// and then the working directory.
func Dir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "sharekeeper")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".config", "sharekeeper")
}

// DefaultPath returns the config file searched when --config is not given.
func DefaultPath() string {
	return filepath.Join(Dir(), "config.yaml")
}
