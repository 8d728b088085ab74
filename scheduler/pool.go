package scheduler

import (
	"sync"

	"github.com/sourcegraph/conc"
	"go.uber.org/zap"

	"github.com/ygrebnov/flow/metrics"
)

// Pool is a fixed-size set of workers stepping cooperative tasks.
// Methods are safe for concurrent use. Construct with New.
type Pool struct {
	// noCopy prevents accidental copying of the pool.
	//go:nocopy
	nc noCopy

	config *config
	logger *zap.Logger
	inst   instruments

	works   *workQueue
	workers conc.WaitGroup

	shutdownOnce sync.Once
}

// noCopy is a vet-recognized marker to discourage copying types with this field embedded.
type noCopy struct{}

func (*noCopy) Lock()   {}
func (*noCopy) Unlock() {}

// instruments are created once per pool from the configured provider.
type instruments struct {
	steps     metrics.Counter
	yields    metrics.Counter
	finished  metrics.Counter
	abandoned metrics.Counter
	panicked  metrics.Counter
	inflight  metrics.UpDownCounter
	stepTime  metrics.Histogram
}

func newInstruments(p metrics.Provider) instruments {
	return instruments{
		steps:     p.Counter(metrics.StepsTotal, metrics.WithDescription("Task steps executed.")),
		yields:    p.Counter(metrics.YieldsTotal, metrics.WithDescription("Task steps that yielded.")),
		finished:  p.Counter(metrics.TasksFinishedTotal, metrics.WithDescription("Tasks that finished.")),
		abandoned: p.Counter(metrics.TasksAbandonedTotal, metrics.WithDescription("Tasks dropped at shutdown.")),
		panicked:  p.Counter(metrics.TasksPanickedTotal, metrics.WithDescription("Task steps that panicked.")),
		inflight:  p.UpDownCounter(metrics.TasksInflight, metrics.WithDescription("Tasks submitted and not yet finished.")),
		stepTime: p.Histogram(
			metrics.StepDurationSeconds,
			metrics.WithDescription("Duration of a single task step."),
			metrics.WithUnit("seconds"),
			metrics.WithBuckets(1e-6, 1e-5, 1e-4, 1e-3, 1e-2, 1e-1, 1),
		),
	}
}

// New creates a pool and starts its workers.
func New(opts ...Option) (*Pool, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}
	if err := validateConfig(&cfg); err != nil {
		return nil, err
	}

	p := &Pool{
		config: &cfg,
		logger: cfg.Logger.Named(Namespace),
		inst:   newInstruments(cfg.Metrics),
		works:  newWorkQueue(),
	}
	for i := uint(0); i < cfg.Workers; i++ {
		w := newWorker(int(i), p)
		p.workers.Go(w.run)
	}
	p.logger.Debug("pool started", zap.Uint("workers", cfg.Workers))
	return p, nil
}

// Submit enqueues tasks in one batch. It fails with ErrPoolClosed after Shutdown,
// in which case none of the tasks is enqueued.
func (p *Pool) Submit(tasks ...Task) error {
	if len(tasks) == 0 {
		return nil
	}
	if !p.works.push(tasks...) {
		return ErrPoolClosed
	}
	p.inst.inflight.Add(int64(len(tasks)))
	return nil
}

// Workers returns the number of worker goroutines.
func (p *Pool) Workers() int { return int(p.config.Workers) }

// Pending returns the number of tasks waiting in the work queue.
// Tasks being stepped at the moment are not counted.
func (p *Pool) Pending() int { return p.works.len() }

// IsClosed reports whether Shutdown has been called.
func (p *Pool) IsClosed() bool { return p.works.isClosed() }

// resubmit puts a yielded task back at the tail of the work queue.
func (p *Pool) resubmit(t Task) {
	if !p.works.push(t) {
		p.abandon(t)
	}
}

func (p *Pool) finish() {
	p.inst.finished.Add(1)
	p.inst.inflight.Add(-1)
}

func (p *Pool) abandon(t Task) {
	p.inst.abandoned.Add(1)
	p.inst.inflight.Add(-1)
	if a, ok := t.(Abandoner); ok {
		a.Abandon(ErrShutdown)
	}
}
