package flow

import (
	"fmt"

	"github.com/ygrebnov/flow/queue"
	"github.com/ygrebnov/flow/scheduler"
)

// baseTask is embedded by every task of a run. It routes failures to the
// execution and runs the task's release hook exactly once.
type baseTask struct {
	name    string
	exec    *Execution
	budget  int
	release func()
}

func (t *baseTask) stopped() bool { return t.exec.stopped() }

// done runs the release hook and returns Finished. A panicking hook fails the
// execution instead of escaping into the worker.
func (t *baseTask) done() (res scheduler.Result) {
	res = scheduler.Finished
	r := t.release
	if r == nil {
		return res
	}
	t.release = nil
	defer func() {
		if p := recover(); p != nil {
			t.exec.resolve(t.stageError(ErrStagePanicked, fmt.Errorf("release: %v", p)))
		}
	}()
	r()
	return res
}

// Fail implements scheduler.Failer.
func (t *baseTask) Fail(err error) {
	t.exec.resolve(t.stageError(ErrStagePanicked, err))
	t.done()
}

// Abandon implements scheduler.Abandoner.
func (t *baseTask) Abandon(err error) {
	t.exec.resolve(t.stageError(ErrAborted, err))
	t.done()
}

func (t *baseTask) stageError(kind, cause error) error {
	return &StageError{Stage: t.name, Execution: t.exec.id, err: fmt.Errorf("%w: %w", kind, cause)}
}

type mapTask[I, O any] struct {
	baseTask
	in  queue.Consumer[I]
	out queue.Producer[O]
	fn  func(I) O
}

// Step moves items while upstream has some and downstream has room. This task is
// the only producer of out, so room seen by IsFull cannot disappear before the push.
func (t *mapTask[I, O]) Step() scheduler.Result {
	if t.stopped() {
		return t.done()
	}
	for n := 0; n < t.budget; n++ {
		if t.out.IsFull() {
			return scheduler.Yield
		}
		v, st := t.in.TryPop()
		switch st {
		case queue.Success:
			t.out.TryPush(t.fn(v))
		case queue.Closed:
			t.out.Close()
			return t.done()
		default:
			return scheduler.Yield
		}
	}
	return scheduler.Yield
}

type expandTask[I, O any] struct {
	baseTask
	in   queue.Consumer[I]
	emit *overflowEmitter[O]
	fn   func(I, Emitter[O])
}

func (t *expandTask[I, O]) Step() scheduler.Result {
	if t.stopped() {
		return t.done()
	}
	for n := 0; n < t.budget; n++ {
		if !t.emit.flush() || t.emit.out.IsFull() {
			return scheduler.Yield
		}
		v, st := t.in.TryPop()
		switch st {
		case queue.Success:
			t.fn(v, t.emit)
		case queue.Closed:
			t.emit.out.Close()
			return t.done()
		default:
			return scheduler.Yield
		}
	}
	return scheduler.Yield
}

type reduceTask[I, O any] struct {
	baseTask
	in      *countingInput[I]
	out     queue.Producer[O]
	fn      func(Input[I]) (O, bool)
	pending O
	held    bool
	// flushed is set once fn has been called on the closed, drained input.
	flushed bool
}

func (t *reduceTask[I, O]) Step() scheduler.Result {
	if t.stopped() {
		return t.done()
	}
	for n := 0; n < t.budget; n++ {
		if t.held {
			if t.out.TryPush(t.pending) != queue.Success {
				return scheduler.Yield
			}
			var zero O
			t.pending, t.held = zero, false
		}

		// Closed must be read before empty: a queue seen closed gains no items.
		closed := t.in.IsClosed()
		if t.in.IsEmpty() {
			if !closed {
				return scheduler.Yield
			}
			if t.flushed {
				t.out.Close()
				return t.done()
			}
			t.flushed = true
			if v, ok := t.fn(t.in); ok {
				t.pending, t.held = v, true
			}
			continue
		}

		before := t.in.pops
		v, ok := t.fn(t.in)
		if !ok {
			if t.in.pops == before {
				return scheduler.Yield
			}
			continue
		}
		if t.out.TryPush(v) != queue.Success {
			t.pending, t.held = v, true
			return scheduler.Yield
		}
	}
	return scheduler.Yield
}

type transformTask[I, O any] struct {
	baseTask
	in   *countingInput[I]
	emit *overflowEmitter[O]
	fn   func(Input[I], Emitter[O])
	// flushed is set once fn has been called on the closed, drained input.
	flushed bool
}

func (t *transformTask[I, O]) Step() scheduler.Result {
	if t.stopped() {
		return t.done()
	}
	for n := 0; n < t.budget; n++ {
		if !t.emit.flush() {
			return scheduler.Yield
		}

		closed := t.in.IsClosed()
		empty := t.in.IsEmpty()
		switch {
		case empty && !closed:
			return scheduler.Yield
		case empty && t.flushed:
			t.emit.out.Close()
			return t.done()
		}
		if t.emit.out.IsFull() {
			return scheduler.Yield
		}
		if empty {
			t.flushed = true
			t.fn(t.in, t.emit)
			continue
		}

		pops, emitted := t.in.pops, t.emit.emitted
		t.fn(t.in, t.emit)
		if t.in.pops == pops && t.emit.emitted == emitted {
			return scheduler.Yield
		}
	}
	return scheduler.Yield
}
