package flow

import (
	"strings"

	"github.com/ygrebnov/errorc"
	"go.uber.org/zap"

	"github.com/ygrebnov/flow/scheduler"
)

// Scheduler accepts the tasks of a run. *scheduler.Pool satisfies it.
type Scheduler interface {
	Submit(tasks ...scheduler.Task) error
}

// Run launches the chain on s and returns its Execution.
//
// Sequence:
// 1) check the chain is closed on both ends and apply options
// 2) walk the chain from source to sink, allocating one queue per edge and one task per link
// 3) submit every task in one batch
//
// When Submit fails no task has started and no Execution is returned.
// A plan ending in IntoChan or IntoQueue can be run once; later calls fail with ErrSinkUsed.
func (c chain) Run(s Scheduler, opts ...Option) (exec *Execution, err error) {
	if c.OpenLeft() || c.OpenRight() {
		return nil, errorc.With(ErrNotRunnable, errorc.String("open", openEnds(c)))
	}
	if s == nil {
		return nil, ErrNilScheduler
	}

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

	if cl, ok := c.sink.(claimer); ok {
		if err := cl.claim(); err != nil {
			return nil, err
		}
		defer func() {
			if exec == nil {
				cl.unclaim()
			}
		}()
	}

	exec = newExecution(&cfg)
	env := &launchEnv{cfg: &cfg, exec: exec}

	tasks := make([]scheduler.Task, 0, len(c.links)+2)
	t, edge := c.source.launch(nil, env)
	tasks = append(tasks, t)
	for _, l := range c.links {
		t, edge = l.launch(edge, env)
		tasks = append(tasks, t)
	}
	t, _ = c.sink.launch(edge, env)
	tasks = append(tasks, t)

	if err := s.Submit(tasks...); err != nil {
		return nil, err
	}
	exec.launched(zap.Strings("stages", c.labels()), zap.Int("queue_capacity", cfg.QueueCapacity))
	return exec, nil
}

// claimer is implemented by sinks that may be launched only once.
type claimer interface {
	claim() error
	unclaim()
}

func (c chain) labels() []string {
	out := make([]string, 0, len(c.links)+2)
	for _, l := range append(append([]link{c.source}, c.links...), c.sink) {
		if l != nil {
			out = append(out, l.label())
		}
	}
	return out
}

func openEnds(c chain) string {
	var ends []string
	if c.OpenLeft() {
		ends = append(ends, "left")
	}
	if c.OpenRight() {
		ends = append(ends, "right")
	}
	return strings.Join(ends, ",")
}
