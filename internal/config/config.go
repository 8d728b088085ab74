// Package config loads binary configuration from FLOW_* environment variables.
package config

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/kelseyhightower/envconfig"
	"github.com/ygrebnov/errorc"

	"github.com/ygrebnov/flow"
	"github.com/ygrebnov/flow/internal/logging"
	"github.com/ygrebnov/flow/queue"
	"github.com/ygrebnov/flow/scheduler"
)

// Prefix is prepended to every variable name, e.g. FLOW_WORKERS.
const Prefix = "flow"

var ErrInvalid = errors.New("config: invalid value")

// Config holds everything a binary reads from the environment.
type Config struct {
	// Workers is the pool size; 0 means runtime.GOMAXPROCS(0).
	Workers       uint   `envconfig:"WORKERS" default:"0"`
	QueueCapacity int    `envconfig:"QUEUE_CAPACITY" default:"1024"`
	StepBudget    int    `envconfig:"STEP_BUDGET" default:"1024"`
	LogLevel      string `envconfig:"LOG_LEVEL" default:"info"`
	LogDev        bool   `envconfig:"LOG_DEV" default:"false"`
	// MetricsAddr is the listen address of the /metrics endpoint; empty disables it.
	MetricsAddr string `envconfig:"METRICS_ADDR" default:""`
}

// Load reads the environment and validates the result.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(Prefix, &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default returns the configuration used when the environment is empty.
func Default() *Config {
	return &Config{
		QueueCapacity: queue.DefaultCapacity,
		StepBudget:    flow.DefaultStepBudget,
		LogLevel:      "info",
	}
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	switch {
	case c.QueueCapacity <= 0:
		return errorc.With(ErrInvalid, errorc.String("QUEUE_CAPACITY", strconv.Itoa(c.QueueCapacity)))
	case c.StepBudget <= 0:
		return errorc.With(ErrInvalid, errorc.String("STEP_BUDGET", strconv.Itoa(c.StepBudget)))
	}
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		return errorc.With(ErrInvalid, errorc.String("LOG_LEVEL", c.LogLevel))
	}
	return nil
}

// Logging returns the logger configuration.
func (c *Config) Logging() logging.Config {
	cfg := logging.DefaultConfig()
	cfg.Level = c.LogLevel
	cfg.Development = c.LogDev
	return cfg
}

// PoolOptions returns the scheduler options implied by c.
func (c *Config) PoolOptions() []scheduler.Option {
	if c.Workers == 0 {
		return nil
	}
	return []scheduler.Option{scheduler.WithWorkers(c.Workers)}
}

// RunOptions returns the run options implied by c.
func (c *Config) RunOptions() []flow.Option {
	return []flow.Option{
		flow.WithQueueCapacity(c.QueueCapacity),
		flow.WithStepBudget(c.StepBudget),
	}
}
