package flow

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ygrebnov/flow/scheduler"
)

func newTestPool(t *testing.T, workers uint) *scheduler.Pool {
	t.Helper()
	p, err := scheduler.New(scheduler.WithWorkers(workers))
	require.NoError(t, err)
	t.Cleanup(p.Shutdown)
	return p
}

// runAndWait runs plan on pool and waits for it with a generous timeout.
func runAndWait(t *testing.T, pool Scheduler, plan Plan, opts ...Option) (*Execution, error) {
	t.Helper()
	exec, err := plan.Run(pool, opts...)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	werr := exec.WaitContext(ctx)
	require.NotErrorIs(t, werr, context.DeadlineExceeded, "execution did not resolve")
	return exec, werr
}

func seq(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i + 1
	}
	return out
}

func double(x int) int { return x * 2 }
