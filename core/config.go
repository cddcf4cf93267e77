package core

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all configuration options for the orchestration pipeline.
// It supports three-layer configuration priority:
//  1. Default values (lowest priority)
//  2. Environment variables (medium priority)
//  3. Functional options (highest priority)
//
// Example usage:
//
//	cfg, err := core.NewConfig(
//	    core.WithName("inventory-orchestrator"),
//	    core.WithStepTimeout(15*time.Second),
//	)
type Config struct {
	// Name identifies this orchestrator instance in logs and stored records.
	Name string `json:"name" env:"STOCKMIND_NAME"`

	// Execution configuration
	Execution ExecutionConfig `json:"execution"`

	// History configuration (execution record store)
	History HistoryConfig `json:"history"`

	// RegistryPath optionally points to a YAML file overriding the built-in
	// capability registry and workflow pattern catalog.
	RegistryPath string `json:"registry_path" env:"STOCKMIND_REGISTRY_PATH"`
}

// ExecutionConfig bounds workflow execution. The upstream tool runtime defines
// no timeouts of its own, so an unresponsive tool would otherwise stall the
// whole plan.
type ExecutionConfig struct {
	StepTimeout     time.Duration `json:"step_timeout" env:"STOCKMIND_STEP_TIMEOUT" default:"30s"`
	WorkflowTimeout time.Duration `json:"workflow_timeout" env:"STOCKMIND_WORKFLOW_TIMEOUT" default:"2m"`
	MaxConcurrency  int           `json:"max_concurrency" env:"STOCKMIND_MAX_CONCURRENCY" default:"5"`
}

// HistoryConfig controls the execution record store. Disabled by default;
// records are process-scoped unless a Redis URL is configured.
type HistoryConfig struct {
	Enabled   bool          `json:"enabled" env:"STOCKMIND_HISTORY_ENABLED" default:"false"`
	Size      int           `json:"size" env:"STOCKMIND_HISTORY_SIZE" default:"100"`
	RedisURL  string        `json:"redis_url" env:"STOCKMIND_REDIS_URL,REDIS_URL"`
	KeyPrefix string        `json:"key_prefix" env:"STOCKMIND_HISTORY_KEY_PREFIX" default:"stockmind:execution"`
	TTL       time.Duration `json:"ttl" env:"STOCKMIND_HISTORY_TTL" default:"24h"`
}

// Option is a functional option for configuring Config
type Option func(*Config)

// WithName sets the orchestrator name
func WithName(name string) Option {
	return func(c *Config) {
		c.Name = name
	}
}

// WithStepTimeout sets the per-step execution timeout
func WithStepTimeout(d time.Duration) Option {
	return func(c *Config) {
		c.Execution.StepTimeout = d
	}
}

// WithWorkflowTimeout sets the overall workflow deadline
func WithWorkflowTimeout(d time.Duration) Option {
	return func(c *Config) {
		c.Execution.WorkflowTimeout = d
	}
}

// WithMaxConcurrency bounds parallel step fan-out
func WithMaxConcurrency(n int) Option {
	return func(c *Config) {
		c.Execution.MaxConcurrency = n
	}
}

// WithHistory enables execution record keeping with the given capacity
func WithHistory(size int) Option {
	return func(c *Config) {
		c.History.Enabled = true
		if size > 0 {
			c.History.Size = size
		}
	}
}

// WithRedisURL points the history store at a Redis instance
func WithRedisURL(url string) Option {
	return func(c *Config) {
		c.History.Enabled = true
		c.History.RedisURL = url
	}
}

// WithRegistryPath sets the YAML registry override file
func WithRegistryPath(path string) Option {
	return func(c *Config) {
		c.RegistryPath = path
	}
}

// NewConfig builds a Config by applying defaults, then environment variables,
// then the supplied options, and finally validating the result.
func NewConfig(opts ...Option) (*Config, error) {
	cfg := defaultConfig()
	applyEnvironment(cfg)

	for _, opt := range opts {
		opt(cfg)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func defaultConfig() *Config {
	return &Config{
		Name: "stockmind",
		Execution: ExecutionConfig{
			StepTimeout:     30 * time.Second,
			WorkflowTimeout: 2 * time.Minute,
			MaxConcurrency:  5,
		},
		History: HistoryConfig{
			Enabled:   false,
			Size:      100,
			KeyPrefix: "stockmind:execution",
			TTL:       24 * time.Hour,
		},
	}
}

func applyEnvironment(cfg *Config) {
	cfg.Name = GetEnvString("STOCKMIND_NAME", cfg.Name)
	cfg.RegistryPath = GetEnvString("STOCKMIND_REGISTRY_PATH", cfg.RegistryPath)

	cfg.Execution.StepTimeout = GetEnvDuration("STOCKMIND_STEP_TIMEOUT", cfg.Execution.StepTimeout)
	cfg.Execution.WorkflowTimeout = GetEnvDuration("STOCKMIND_WORKFLOW_TIMEOUT", cfg.Execution.WorkflowTimeout)
	cfg.Execution.MaxConcurrency = GetEnvInt("STOCKMIND_MAX_CONCURRENCY", cfg.Execution.MaxConcurrency)

	cfg.History.Enabled = GetEnvBool("STOCKMIND_HISTORY_ENABLED", cfg.History.Enabled)
	cfg.History.Size = GetEnvInt("STOCKMIND_HISTORY_SIZE", cfg.History.Size)
	cfg.History.KeyPrefix = GetEnvString("STOCKMIND_HISTORY_KEY_PREFIX", cfg.History.KeyPrefix)
	cfg.History.TTL = GetEnvDuration("STOCKMIND_HISTORY_TTL", cfg.History.TTL)

	// STOCKMIND_REDIS_URL takes precedence over the generic REDIS_URL
	if url := os.Getenv("STOCKMIND_REDIS_URL"); url != "" {
		cfg.History.RedisURL = url
	} else if url := os.Getenv("REDIS_URL"); url != "" {
		cfg.History.RedisURL = url
	}
}

// Validate checks the configuration for invalid values
func (c *Config) Validate() error {
	if c.Execution.StepTimeout <= 0 {
		return fmt.Errorf("%w: step timeout must be positive", ErrInvalidConfiguration)
	}
	if c.Execution.WorkflowTimeout <= 0 {
		return fmt.Errorf("%w: workflow timeout must be positive", ErrInvalidConfiguration)
	}
	if c.Execution.WorkflowTimeout < c.Execution.StepTimeout {
		return fmt.Errorf("%w: workflow timeout shorter than step timeout", ErrInvalidConfiguration)
	}
	if c.Execution.MaxConcurrency <= 0 {
		return fmt.Errorf("%w: max concurrency must be positive", ErrInvalidConfiguration)
	}
	if c.History.Enabled && c.History.Size <= 0 {
		return fmt.Errorf("%w: history size must be positive when enabled", ErrInvalidConfiguration)
	}
	return nil
}

// Environment helpers shared across the module.

// GetEnvString returns the environment value for key, or fallback when unset.
func GetEnvString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// GetEnvInt returns the environment value for key parsed as int.
func GetEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

// GetEnvBool returns the environment value for key parsed as bool.
func GetEnvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

// GetEnvDuration returns the environment value for key parsed as a duration.
func GetEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
