package scheduler

import (
	"fmt"
	"runtime"
	"time"

	"go.uber.org/zap"
)

type worker struct {
	id   int
	pool *Pool
}

func newWorker(id int, p *Pool) *worker {
	return &worker{id: id, pool: p}
}

// run pulls and steps tasks until the work queue is closed, then abandons the
// tasks still queued so a pool closed with Stop does not leave them behind.
func (w *worker) run() {
	for {
		t, ok := w.pool.works.pop()
		if !ok {
			w.pool.abandonLeft()
			return
		}

		if w.step(t) == Finished {
			w.pool.finish()
			continue
		}

		w.pool.inst.yields.Add(1)
		w.pool.resubmit(t)
		// A yielding task made no progress; let goroutines outside the pool run.
		runtime.Gosched()
	}
}

// step runs one step of t, converting a panic into Fail and Finished.
func (w *worker) step(t Task) (res Result) {
	start := time.Now()
	defer func() {
		w.pool.inst.steps.Add(1)
		w.pool.inst.stepTime.Record(time.Since(start).Seconds())

		if r := recover(); r != nil {
			err := fmt.Errorf("%w: %v", ErrTaskPanicked, r)
			w.pool.inst.panicked.Add(1)
			w.pool.logger.Error("task step panicked", zap.Int("worker", w.id), zap.Error(err))
			if f, ok := t.(Failer); ok {
				f.Fail(err)
			}
			res = Finished
		}
	}()
	return t.Step()
}
