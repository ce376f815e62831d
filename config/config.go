// Package config loads runtime configuration from YAML files with sane
// defaults, covering the mesh runtime knobs (mailboxes, step timeouts,
// retries), logging, and the validation engine tunables.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/govmesh/govmesh/logging"
	"github.com/govmesh/govmesh/validation"
)

// Duration decodes YAML durations given either as Go duration strings
// ("5s", "1h30m") or as integer nanoseconds.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err == nil {
		dur, err := time.ParseDuration(s)
		if err != nil {
			return fmt.Errorf("invalid duration %q: %w", s, err)
		}
		*d = Duration(dur)
		return nil
	}

	var n int64
	if err := value.Decode(&n); err != nil {
		return fmt.Errorf("invalid duration %q", value.Value)
	}
	*d = Duration(n)
	return nil
}

// Std returns the value as a time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// RuntimeConfig tunes agent mailboxes and workflow execution.
type RuntimeConfig struct {
	MailboxSize    int      `yaml:"mailbox_size"`
	StepTimeout    Duration `yaml:"step_timeout"`
	MaxRetries     int      `yaml:"max_retries"`
	RetryBaseDelay Duration `yaml:"retry_base_delay"`
}

// LoggingConfig selects log level and output format.
type LoggingConfig struct {
	Level     string `yaml:"level"`
	Format    string `yaml:"format"`
	AddSource bool   `yaml:"add_source"`
}

// Config is the root configuration document.
type Config struct {
	Runtime    RuntimeConfig     `yaml:"runtime"`
	Logging    LoggingConfig     `yaml:"logging"`
	Validation validation.Config `yaml:"validation"`
}

// Default returns the configuration used when no file is provided.
func Default() Config {
	return Config{
		Runtime: RuntimeConfig{
			MailboxSize:    64,
			StepTimeout:    Duration(5 * time.Second),
			MaxRetries:     2,
			RetryBaseDelay: Duration(50 * time.Millisecond),
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
		Validation: validation.DefaultConfig(),
	}
}

// Load reads a YAML file and overlays it on the defaults. Fields absent from
// the file keep their default values.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}

	return cfg, nil
}

// LoggerConfig translates the logging section into the logging package's
// configuration.
func (c Config) LoggerConfig() *logging.LoggerConfig {
	return &logging.LoggerConfig{
		Level:     parseLevel(c.Logging.Level),
		Format:    c.Logging.Format,
		AddSource: c.Logging.AddSource,
	}
}

func parseLevel(level string) logging.LogLevel {
	switch level {
	case "debug":
		return logging.LogLevelDebug
	case "warn":
		return logging.LogLevelWarn
	case "error":
		return logging.LogLevelError
	default:
		return logging.LogLevelInfo
	}
}
