package flow

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ygrebnov/flow/metrics"
)

// QueueStats describes one queue of a run.
type QueueStats struct {
	// Stage is the name of the stage writing into the queue.
	Stage    string
	Capacity int
	Len      int
	// Peak is the largest length the queue has reached.
	Peak   int
	Closed bool
}

// observedQueue is the non-generic part of queue.Queue used for stats.
type observedQueue interface {
	Len() int
	Cap() int
	Peak() int
	IsClosed() bool
}

type trackedQueue struct {
	stage string
	q     observedQueue
}

// Execution is the handle of a launched plan. It resolves exactly once: with nil
// when the sink has consumed everything, or with an error wrapping
// ErrStagePanicked or ErrAborted. Methods are safe for concurrent use.
type Execution struct {
	id      string
	started time.Time

	done    chan struct{}
	once    sync.Once
	err     error
	failed  atomic.Bool
	queues  []trackedQueue
	logger  *zap.Logger
	metrics execInstruments
}

type execInstruments struct {
	started   metrics.Counter
	completed metrics.Counter
	failed    metrics.Counter
}

func newExecution(cfg *config) *Execution {
	id := uuid.NewString()
	p := cfg.Metrics
	return &Execution{
		id:      id,
		started: time.Now(),
		done:    make(chan struct{}),
		logger:  cfg.Logger.Named(Namespace).With(zap.String("execution", id)),
		metrics: execInstruments{
			started:   p.Counter(metrics.ExecutionsStartedTotal, metrics.WithDescription("Plans launched.")),
			completed: p.Counter(metrics.ExecutionsCompletedTotal, metrics.WithDescription("Executions resolved successfully.")),
			failed:    p.Counter(metrics.ExecutionsFailedTotal, metrics.WithDescription("Executions resolved with an error.")),
		},
	}
}

// track registers a queue of the run. Only called before the tasks are submitted.
func (e *Execution) track(stage string, q observedQueue) {
	e.queues = append(e.queues, trackedQueue{stage: stage, q: q})
}

func (e *Execution) launched(fields ...zap.Field) {
	e.metrics.started.Add(1)
	e.logger.Debug("execution launched", fields...)
}

// resolve records the outcome; only the first call has an effect.
// A non-nil err also tells every task of the run to stop at its next step.
func (e *Execution) resolve(err error) {
	e.once.Do(func() {
		e.err = err
		if err != nil {
			e.failed.Store(true)
		}
		close(e.done)

		elapsed := zap.Duration("elapsed", time.Since(e.started))
		if err != nil {
			e.metrics.failed.Add(1)
			e.logger.Warn("execution failed", zap.Error(err), elapsed)
			return
		}
		e.metrics.completed.Add(1)
		e.logger.Debug("execution completed", elapsed)
	})
}

func (e *Execution) stopped() bool { return e.failed.Load() }

// ID returns the unique id of the run.
func (e *Execution) ID() string { return e.id }

// Done returns a channel closed once the execution has resolved.
func (e *Execution) Done() <-chan struct{} { return e.done }

// IsDone reports whether the execution has resolved.
func (e *Execution) IsDone() bool {
	select {
	case <-e.done:
		return true
	default:
		return false
	}
}

// Err returns the resolution error, or nil while running or after success.
func (e *Execution) Err() error {
	if !e.IsDone() {
		return nil
	}
	return e.err
}

// Wait blocks until the execution resolves and returns its error.
func (e *Execution) Wait() error {
	<-e.done
	return e.err
}

// WaitContext is Wait bounded by ctx. It returns ctx.Err() if ctx ends first;
// the execution keeps running in that case.
func (e *Execution) WaitContext(ctx context.Context) error {
	select {
	case <-e.done:
		return e.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Queues returns a snapshot of every queue of the run, in chain order.
func (e *Execution) Queues() []QueueStats {
	out := make([]QueueStats, len(e.queues))
	for i, tq := range e.queues {
		out[i] = QueueStats{
			Stage:    tq.stage,
			Capacity: tq.q.Cap(),
			Len:      tq.q.Len(),
			Peak:     tq.q.Peak(),
			Closed:   tq.q.IsClosed(),
		}
	}
	return out
}
