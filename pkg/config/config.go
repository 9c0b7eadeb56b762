// Package config loads runtime configuration from an optional YAML file
// with environment variable overrides.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the full runtime configuration.
type Config struct {
	// Model is the default model name used when an input document
	// does not name one.
	Model string `yaml:"model"`
	// OutputDir is the base directory for stage records.
	OutputDir string `yaml:"output_dir"`
	// FlowDir is the base directory for flow runs.
	FlowDir string `yaml:"flow_dir"`
	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level"`

	Ollama Ollama `yaml:"ollama"`
	Redis  Redis  `yaml:"redis"`
	Flow   Flow   `yaml:"flow"`
	HTTP   HTTP   `yaml:"http"`
}

// Ollama configures the completion backend.
type Ollama struct {
	// Host is the Ollama server URL. Empty means the client library
	// default (or OLLAMA_HOST).
	Host string `yaml:"host"`
}

// Redis configures the optional completion cache and record store.
type Redis struct {
	Addr     string   `yaml:"addr"`
	Password string   `yaml:"password"`
	DB       int      `yaml:"db"`
	CacheTTL Duration `yaml:"cache_ttl"`
}

// Duration parses YAML scalars like "90s" or "1h" into a time.Duration.
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	parsed, err := time.ParseDuration(value.Value)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", value.Value, err)
	}
	*d = Duration(parsed)
	return nil
}

// Std returns the duration as a time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// Flow configures the flow orchestrator.
type Flow struct {
	// OnFailure is one of stop, continue, retry.
	OnFailure  string `yaml:"on_failure"`
	MaxRetries int    `yaml:"max_retries"`
}

// HTTP configures the record server.
type HTTP struct {
	Addr string `yaml:"addr"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Model:     "gemma3",
		OutputDir: "output",
		FlowDir:   "flow",
		LogLevel:  "info",
		Flow: Flow{
			OnFailure:  "stop",
			MaxRetries: 2,
		},
		HTTP: HTTP{
			Addr: ":8080",
		},
	}
}

// Load reads the YAML file at path on top of the defaults, then applies
// environment overrides. An empty path skips the file; a missing file
// at an explicit path is an error.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	cfg.applyEnv()
	if err := cfg.validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// applyEnv layers ITERATE_* environment variables over the file values.
func (c *Config) applyEnv() {
	if v := os.Getenv("ITERATE_MODEL"); v != "" {
		c.Model = v
	}
	if v := os.Getenv("ITERATE_OUTPUT_DIR"); v != "" {
		c.OutputDir = v
	}
	if v := os.Getenv("ITERATE_FLOW_DIR"); v != "" {
		c.FlowDir = v
	}
	if v := os.Getenv("ITERATE_LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	if v := os.Getenv("ITERATE_OLLAMA_HOST"); v != "" {
		c.Ollama.Host = v
	}
	if v := os.Getenv("ITERATE_REDIS_ADDR"); v != "" {
		c.Redis.Addr = v
	}
	if v := os.Getenv("ITERATE_REDIS_PASSWORD"); v != "" {
		c.Redis.Password = v
	}
	if v := os.Getenv("ITERATE_REDIS_DB"); v != "" {
		if db, err := strconv.Atoi(v); err == nil {
			c.Redis.DB = db
		}
	}
	if v := os.Getenv("ITERATE_HTTP_ADDR"); v != "" {
		c.HTTP.Addr = v
	}
}

func (c *Config) validate() error {
	switch c.Flow.OnFailure {
	case "stop", "continue", "retry":
	default:
		return fmt.Errorf("invalid flow.on_failure %q: want stop, continue or retry", c.Flow.OnFailure)
	}
	if c.Flow.MaxRetries < 0 {
		return fmt.Errorf("invalid flow.max_retries %d: must not be negative", c.Flow.MaxRetries)
	}
	return nil
}

// CacheEnabled reports whether a Redis completion cache is configured.
func (c *Config) CacheEnabled() bool {
	return c.Redis.Addr != ""
}
