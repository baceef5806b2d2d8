package plansolve

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds configuration options for the engine.
type Config struct {
	// MaxConcurrentTasks caps the number of tasks making progress at once;
	// excess submissions stay queued.
	MaxConcurrentTasks int `yaml:"max_concurrent_tasks"`

	// StepTimeout bounds each tool invocation. Zero disables the bound.
	StepTimeout time.Duration `yaml:"step_timeout"`

	// EventBufferSize is the per-subscriber channel capacity of a task's
	// event stream. A full subscriber blocks the producer.
	EventBufferSize int `yaml:"event_buffer_size"`

	// PlanCacheTTL bounds how long a parsed plan stays reusable.
	PlanCacheTTL time.Duration `yaml:"plan_cache_ttl"`

	// Model is the generative model name used by the bootstrap flows.
	Model string `yaml:"model"`
}

// DefaultConfig returns a config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		MaxConcurrentTasks: 4,
		StepTimeout:        60 * time.Second,
		EventBufferSize:    64,
		PlanCacheTTL:       time.Hour,
		Model:              "googleai/gemini-2.0-flash",
	}
}

// LoadConfig reads a YAML config file, filling unset fields from defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, NewConfigurationError(fmt.Sprintf("failed to read config file: %s", path), err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, NewConfigurationError(fmt.Sprintf("failed to parse config file: %s", path), err)
	}
	if err := cfg.validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.MaxConcurrentTasks < 1 {
		return NewConfigurationError("max_concurrent_tasks must be at least 1", nil)
	}
	if c.StepTimeout < 0 {
		return NewConfigurationError("step_timeout cannot be negative", nil)
	}
	if c.EventBufferSize < 1 {
		return NewConfigurationError("event_buffer_size must be at least 1", nil)
	}
	return nil
}
