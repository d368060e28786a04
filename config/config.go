// Package config loads the application configuration: defaults first, then
// an optional JSON file, then environment overrides. Validation runs after
// merging so a partial file cannot leave the process half-configured.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/c360/semhome/errors"
)

// Duration wraps time.Duration so JSON configs can say "5s" or "250ms".
type Duration time.Duration

// UnmarshalJSON accepts a Go duration string or a number of nanoseconds.
func (d *Duration) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		parsed, err := time.ParseDuration(s)
		if err != nil {
			return fmt.Errorf("invalid duration %q: %w", s, err)
		}
		*d = Duration(parsed)
		return nil
	}
	var n int64
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("duration must be a string or a number: %s", data)
	}
	*d = Duration(n)
	return nil
}

// MarshalJSON renders the duration as a string.
func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// Config is the complete application configuration.
type Config struct {
	Logging   LoggingConfig   `json:"logging"`
	Collector CollectorConfig `json:"collector"`
	NATS      NATSConfig      `json:"nats"`
	Model     ModelConfig     `json:"model"`
	HTTP      HTTPConfig      `json:"http"`
	Output    OutputConfig    `json:"output"`

	// CatalogPath points at a sensor/service catalog document; empty uses
	// the built-in demo catalog.
	CatalogPath string `json:"catalog_path,omitempty"`

	// RulesPath points at a JSON complex-event rule file; empty uses the
	// built-in rule set.
	RulesPath string `json:"rules_path,omitempty"`
}

// LoggingConfig controls the process logger.
type LoggingConfig struct {
	Level  string `json:"level"`  // debug, info, warn, error
	Format string `json:"format"` // json, text
}

// CollectorConfig controls the sampling and drain loops.
type CollectorConfig struct {
	SampleInterval Duration `json:"sample_interval"`
	DrainInterval  Duration `json:"drain_interval"`
	BatchSize      int      `json:"batch_size"`
	QueueSize      int      `json:"queue_size"`

	// Seed fixes the reading generator's randomness; zero seeds from the
	// clock.
	Seed int64 `json:"seed,omitempty"`
}

// NATSConfig controls the optional NATS event publisher. An empty URL
// disables it.
type NATSConfig struct {
	URL           string   `json:"url,omitempty"`
	SubjectPrefix string   `json:"subject_prefix,omitempty"`
	MaxReconnects int      `json:"max_reconnects,omitempty"`
	ReconnectWait Duration `json:"reconnect_wait,omitempty"`
}

// ModelConfig controls the chat-completion collaborator. An empty APIKey
// keeps the advisor on canned responses.
type ModelConfig struct {
	APIKey  string   `json:"api_key,omitempty"`
	BaseURL string   `json:"base_url,omitempty"`
	Model   string   `json:"model,omitempty"`
	Timeout Duration `json:"timeout,omitempty"`
}

// HTTPConfig controls the REST/websocket gateway.
type HTTPConfig struct {
	Addr string `json:"addr"`

	// CompositionRPS and CompositionBurst bound how fast the composition
	// endpoint may hit the model.
	CompositionRPS   float64 `json:"composition_rps,omitempty"`
	CompositionBurst int     `json:"composition_burst,omitempty"`
}

// OutputConfig controls the file history dump. An empty Dir disables it.
type OutputConfig struct {
	Dir string `json:"dir,omitempty"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Collector: CollectorConfig{
			SampleInterval: Duration(5 * time.Second),
			DrainInterval:  Duration(1 * time.Second),
			BatchSize:      10,
			QueueSize:      256,
		},
		NATS: NATSConfig{
			SubjectPrefix: "semhome.events",
			MaxReconnects: -1,
			ReconnectWait: Duration(2 * time.Second),
		},
		Model: ModelConfig{
			Model:   "gpt-4o-mini",
			Timeout: Duration(30 * time.Second),
		},
		HTTP: HTTPConfig{
			Addr:             ":8090",
			CompositionRPS:   1,
			CompositionBurst: 3,
		},
	}
}

// Load builds the configuration from defaults, the optional JSON file at
// path (empty path skips the file), and environment overrides.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, errors.WrapFatal(err, "config", "Load", "reading config file")
		}
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, errors.WrapFatal(errors.ErrInvalidConfig, "config", "Load",
				fmt.Sprintf("parsing %s: %v", path, err))
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("SEMHOME_NATS_URL"); v != "" {
		cfg.NATS.URL = v
	}
	if v := os.Getenv("SEMHOME_HTTP_ADDR"); v != "" {
		cfg.HTTP.Addr = v
	}
	if v := os.Getenv("SEMHOME_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("OPENAI_API_KEY"); v != "" && cfg.Model.APIKey == "" {
		cfg.Model.APIKey = v
	}
}

// Validate checks the merged configuration.
func (c *Config) Validate() error {
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return errors.WrapInvalid(errors.ErrInvalidConfig, "config", "Validate",
			fmt.Sprintf("unknown log level %q", c.Logging.Level))
	}
	switch c.Logging.Format {
	case "json", "text":
	default:
		return errors.WrapInvalid(errors.ErrInvalidConfig, "config", "Validate",
			fmt.Sprintf("unknown log format %q", c.Logging.Format))
	}

	if c.Collector.SampleInterval <= 0 {
		return errors.WrapInvalid(errors.ErrInvalidConfig, "config", "Validate", "sample_interval must be positive")
	}
	if c.Collector.DrainInterval <= 0 {
		return errors.WrapInvalid(errors.ErrInvalidConfig, "config", "Validate", "drain_interval must be positive")
	}
	if c.Collector.BatchSize <= 0 {
		return errors.WrapInvalid(errors.ErrInvalidConfig, "config", "Validate", "batch_size must be positive")
	}
	if c.Collector.QueueSize <= 0 {
		return errors.WrapInvalid(errors.ErrInvalidConfig, "config", "Validate", "queue_size must be positive")
	}

	if c.HTTP.Addr == "" {
		return errors.WrapInvalid(errors.ErrInvalidConfig, "config", "Validate", "http addr is empty")
	}
	if c.HTTP.CompositionRPS < 0 || c.HTTP.CompositionBurst < 0 {
		return errors.WrapInvalid(errors.ErrInvalidConfig, "config", "Validate", "composition rate limits must not be negative")
	}

	if c.Model.APIKey != "" && c.Model.Model == "" {
		return errors.WrapInvalid(errors.ErrInvalidConfig, "config", "Validate", "model name is required when an api key is set")
	}
	return nil
}
