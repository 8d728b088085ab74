package flow

import (
	"strconv"

	"github.com/ygrebnov/errorc"
	"go.uber.org/zap"

	"github.com/ygrebnov/flow/metrics"
	"github.com/ygrebnov/flow/queue"
)

// DefaultStepBudget is the default number of items a task moves in one step
// before yielding to other tasks.
const DefaultStepBudget = 1024

// config holds per-run configuration.
type config struct {
	// QueueCapacity is the capacity of every queue allocated between stages.
	// Default: queue.DefaultCapacity.
	QueueCapacity int

	// StepBudget bounds how many items a task moves in one step.
	// Default: DefaultStepBudget.
	StepBudget int

	// Logger receives launch and resolution events.
	// Default: zap.NewNop().
	Logger *zap.Logger

	// Metrics records execution counters.
	// Default: metrics.NoopProvider.
	Metrics metrics.Provider
}

func defaultConfig() config {
	return config{
		QueueCapacity: queue.DefaultCapacity,
		StepBudget:    DefaultStepBudget,
		Logger:        zap.NewNop(),
		Metrics:       metrics.NewNoopProvider(),
	}
}

func validateConfig(cfg *config) error {
	switch {
	case cfg.QueueCapacity <= 0:
		return errorc.With(ErrInvalidConfig, errorc.String("queue_capacity", strconv.Itoa(cfg.QueueCapacity)))
	case cfg.StepBudget <= 0:
		return errorc.With(ErrInvalidConfig, errorc.String("step_budget", strconv.Itoa(cfg.StepBudget)))
	}
	return nil
}

// Option configures a single run of a plan.
type Option func(*config) error

// WithQueueCapacity sets the capacity of the queues between stages (must be > 0).
func WithQueueCapacity(n int) Option {
	return func(cfg *config) error {
		if n <= 0 {
			return errorc.With(ErrInvalidConfig, errorc.String("queue_capacity", strconv.Itoa(n)))
		}
		cfg.QueueCapacity = n
		return nil
	}
}

// WithStepBudget sets how many items a task may move in one step (must be > 0).
// Smaller budgets trade throughput for fairness between tasks.
func WithStepBudget(n int) Option {
	return func(cfg *config) error {
		if n <= 0 {
			return errorc.With(ErrInvalidConfig, errorc.String("step_budget", strconv.Itoa(n)))
		}
		cfg.StepBudget = n
		return nil
	}
}

// WithLogger sets the logger. A nil logger is rejected.
func WithLogger(l *zap.Logger) Option {
	return func(cfg *config) error {
		if l == nil {
			return errorc.With(ErrInvalidConfig, errorc.String("logger", "nil"))
		}
		cfg.Logger = l
		return nil
	}
}

// WithMetrics sets the metrics provider. A nil provider is rejected.
func WithMetrics(p metrics.Provider) Option {
	return func(cfg *config) error {
		if p == nil {
			return errorc.With(ErrInvalidConfig, errorc.String("metrics", "nil"))
		}
		cfg.Metrics = p
		return nil
	}
}
