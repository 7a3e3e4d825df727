package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config holds the CLI settings. Values come from, in increasing priority:
// defaults, .lcd.yaml (current directory, then $HOME), LCD_* environment
// variables and command-line flags.
type Config struct {
	Schema        string
	Type          string
	Lang          string
	Strict        bool
	FailFast      bool
	DuplicateKeys string
	MaxDepth      int
	MaxBytes      int64
	Log           LogConfig
}

// LogConfig selects the logger level and encoding.
type LogConfig struct {
	Level  string
	Format string
}

// flagKeys maps configuration keys to the flag names that override them.
var flagKeys = map[string]string{
	"schema":         "schema",
	"type":           "type",
	"lang":           "lang",
	"strict":         "strict",
	"fail_fast":      "fail-fast",
	"duplicate_keys": "duplicate-keys",
	"max_depth":      "max-depth",
	"max_bytes":      "max-bytes",
	"log.level":      "log-level",
	"log.format":     "log-format",
}

// Load reads the configuration. file, when not empty, replaces the default
// .lcd.yaml lookup and must exist. flags may be nil.
func Load(file string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetEnvPrefix("LCD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName(".lcd")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home)
		}
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	if flags != nil {
		for key, name := range flagKeys {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, err
				}
			}
		}
	}

	cfg := &Config{
		Schema:        v.GetString("schema"),
		Type:          v.GetString("type"),
		Lang:          v.GetString("lang"),
		Strict:        v.GetBool("strict"),
		FailFast:      v.GetBool("fail_fast"),
		DuplicateKeys: v.GetString("duplicate_keys"),
		MaxDepth:      v.GetInt("max_depth"),
		MaxBytes:      v.GetInt64("max_bytes"),
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
		},
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("lang", "en")
	v.SetDefault("duplicate_keys", "error")
	v.SetDefault("max_depth", 0)
	v.SetDefault("max_bytes", 0)
	v.SetDefault("log.level", "warn")
	v.SetDefault("log.format", "console")
}

// Validate rejects unsupported values.
func (c *Config) Validate() error {
	switch c.DuplicateKeys {
	case "ignore", "warn", "error":
	default:
		return fmt.Errorf("duplicate_keys must be ignore, warn or error, got %q", c.DuplicateKeys)
	}
	switch c.Log.Format {
	case "console", "json":
	default:
		return fmt.Errorf("log.format must be console or json, got %q", c.Log.Format)
	}
	if c.MaxDepth < 0 || c.MaxBytes < 0 {
		return errors.New("max_depth and max_bytes must not be negative")
	}
	return nil
}
