package flow

import (
	"context"

	"github.com/ygrebnov/flow/scheduler"
)

// Apply runs items through f on a pool of its own and returns the outputs in the
// order f produced them. The pool is shut down before Apply returns.
//
// If ctx ends first, the pool is shut down, the run is aborted and ctx.Err() is returned.
func Apply[I, O any](ctx context.Context, items []I, f Fragment[I, O], opts ...Option) ([]O, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}

	pool, err := scheduler.New(scheduler.WithLogger(cfg.Logger), scheduler.WithMetrics(cfg.Metrics))
	if err != nil {
		return nil, err
	}
	defer pool.Shutdown()

	out := make([]O, 0, len(items))
	exec, err := Via(From(items), f).Into(Collect(&out)).Run(pool, opts...)
	if err != nil {
		return nil, err
	}
	if err := exec.WaitContext(ctx); err != nil {
		return nil, err
	}
	return out, nil
}
