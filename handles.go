package flow

import "github.com/ygrebnov/flow/queue"

// Input is the consumer side handed to Reduce and Transform functions and to
// Drain sinks. queue.Consumer satisfies it.
type Input[T any] interface {
	TryPop() (T, queue.Status)
	PeekFront() (T, bool)
	IsEmpty() bool
	IsClosed() bool
	Len() int
}

// Emitter is the producer side handed to Expand and Transform functions.
// Emit never fails: items that do not fit downstream are held by the task and
// delivered, in order, before the function is called again. The held items are not
// bounded by the queue capacity, so a function that may emit many items per call
// should check Full and return, keeping the rest for its next call.
type Emitter[T any] interface {
	Emit(item T)
	// Full reports whether downstream has no room left right now.
	// Functions emitting many items per call may use it to stop early.
	Full() bool
}

// countingInput counts successful pops so a task can tell whether a call made progress.
type countingInput[T any] struct {
	queue.Consumer[T]
	pops int
}

func (c *countingInput[T]) TryPop() (T, queue.Status) {
	v, st := c.Consumer.TryPop()
	if st == queue.Success {
		c.pops++
	}
	return v, st
}

// overflowEmitter pushes straight into the downstream queue while it has room and
// keeps the rest in an ordered overflow buffer.
type overflowEmitter[T any] struct {
	out      queue.Producer[T]
	overflow []T
	emitted  int
}

func (e *overflowEmitter[T]) Emit(item T) {
	e.emitted++
	if len(e.overflow) == 0 && e.out.TryPush(item) == queue.Success {
		return
	}
	e.overflow = append(e.overflow, item)
}

func (e *overflowEmitter[T]) Full() bool {
	return len(e.overflow) > 0 || e.out.IsFull()
}

// flush pushes buffered items downstream and reports whether none are left.
func (e *overflowEmitter[T]) flush() bool {
	var zero T
	for len(e.overflow) > 0 {
		if e.out.TryPush(e.overflow[0]) != queue.Success {
			return false
		}
		e.overflow[0] = zero
		e.overflow = e.overflow[1:]
	}
	e.overflow = nil
	return true
}
