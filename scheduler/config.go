package scheduler

import (
	"runtime"
	"strconv"

	"github.com/ygrebnov/errorc"
	"go.uber.org/zap"

	"github.com/ygrebnov/flow/metrics"
)

// config holds Pool configuration.
type config struct {
	// Workers is the fixed number of worker goroutines.
	// Default: runtime.GOMAXPROCS(0).
	Workers uint

	// Logger receives lifecycle and failure events.
	// Default: zap.NewNop().
	Logger *zap.Logger

	// Metrics records step, yield and task counters.
	// Default: metrics.NoopProvider.
	Metrics metrics.Provider
}

func defaultConfig() config {
	return config{
		Workers: defaultWorkers(),
		Logger:  zap.NewNop(),
		Metrics: metrics.NewNoopProvider(),
	}
}

func defaultWorkers() uint {
	if n := runtime.GOMAXPROCS(0); n > 0 {
		return uint(n)
	}
	return 1
}

func validateConfig(cfg *config) error {
	if cfg.Workers == 0 {
		return errorc.With(ErrInvalidConfig, errorc.String("workers", "0"))
	}
	return nil
}

// Option configures a Pool.
type Option func(*config) error

// WithWorkers sets the number of worker goroutines (must be > 0).
func WithWorkers(n uint) Option {
	return func(cfg *config) error {
		if n == 0 {
			return errorc.With(ErrInvalidConfig, errorc.String("workers", strconv.FormatUint(uint64(n), 10)))
		}
		cfg.Workers = n
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
