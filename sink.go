package flow

import (
	"reflect"
	"sync/atomic"

	"github.com/ygrebnov/errorc"

	"github.com/ygrebnov/flow/queue"
	"github.com/ygrebnov/flow/scheduler"
)

// offerer is the per-run state of a per-item sink: offer hands one item over and
// reports false when it cannot take it right now, release runs once at the end.
type offerer[T any] struct {
	offer   func(T) bool
	release func()
}

type sinkLink[T any] struct {
	name string
	open func() offerer[T]
	// used is non-nil for sinks whose release cannot run twice. Renamed copies share it.
	used *atomic.Bool
}

func (l *sinkLink[T]) label() string { return l.name }

// claim marks a single-use sink as launched. It fails if a previous run already did.
func (l *sinkLink[T]) claim() error {
	if l.used == nil || l.used.CompareAndSwap(false, true) {
		return nil
	}
	return errorc.With(ErrSinkUsed, errorc.String("sink", l.name))
}

// unclaim gives the sink back when its run was never submitted.
func (l *sinkLink[T]) unclaim() {
	if l.used != nil {
		l.used.Store(false)
	}
}

func (l *sinkLink[T]) named(name string) link {
	c := *l
	c.name = name
	return &c
}

func (l *sinkLink[T]) launch(up any, env *launchEnv) (scheduler.Task, any) {
	o := l.open()
	base := env.base(l.name)
	base.release = o.release
	return &sinkTask[T]{baseTask: base, in: up.(*queue.Queue[T]).Consumer(), offer: o.offer}, nil
}

type sinkTask[T any] struct {
	baseTask
	in      queue.Consumer[T]
	offer   func(T) bool
	pending T
	held    bool
}

func (t *sinkTask[T]) Step() scheduler.Result {
	if t.stopped() {
		return t.done()
	}
	for n := 0; n < t.budget; n++ {
		if t.held {
			if !t.offer(t.pending) {
				return scheduler.Yield
			}
			var zero T
			t.pending, t.held = zero, false
		}

		v, st := t.in.TryPop()
		switch st {
		case queue.Success:
			if !t.offer(v) {
				t.pending, t.held = v, true
				return scheduler.Yield
			}
		case queue.Closed:
			res := t.done()
			t.exec.resolve(nil)
			return res
		default:
			return scheduler.Yield
		}
	}
	return scheduler.Yield
}

func newSink[T any](name string, open func() offerer[T]) Sink[T] {
	return Sink[T]{chain{
		sink: &sinkLink[T]{name: name, open: open},
		in:   reflect.TypeFor[T](),
	}}
}

// newSingleUseSink is newSink for sinks that close what they write to. Running a
// plan holding one a second time fails with ErrSinkUsed.
func newSingleUseSink[T any](name string, open func() offerer[T]) Sink[T] {
	s := newSink(name, open)
	s.sink.(*sinkLink[T]).used = new(atomic.Bool)
	return s
}

// Collect appends every item to *dst. Read *dst only after the execution resolves.
func Collect[T any](dst *[]T) Sink[T] {
	return newSink("collect", func() offerer[T] {
		return offerer[T]{offer: func(v T) bool {
			*dst = append(*dst, v)
			return true
		}}
	})
}

// ForEach calls fn for every item. fn must not block.
func ForEach[T any](fn func(T)) Sink[T] {
	return newSink("foreach", func() offerer[T] {
		return offerer[T]{offer: func(v T) bool {
			fn(v)
			return true
		}}
	})
}

// IntoQueue pushes every item into an external queue and closes it when the run
// ends. A plan using it can run only once.
func IntoQueue[T any](q *queue.Queue[T]) Sink[T] {
	return newSingleUseSink("queue", func() offerer[T] {
		p := q.Producer()
		return offerer[T]{
			offer:   func(v T) bool { return p.TryPush(v) == queue.Success },
			release: p.Close,
		}
	})
}

// IntoChan sends every item on ch without blocking and closes ch when the run
// ends. A plan using it can therefore run only once; a second Run fails with
// ErrSinkUsed.
func IntoChan[T any](ch chan<- T) Sink[T] {
	return newSingleUseSink("chan", func() offerer[T] {
		return offerer[T]{
			offer: func(v T) bool {
				select {
				case ch <- v:
					return true
				default:
					return false
				}
			},
			release: func() { close(ch) },
		}
	})
}

type drainLink[T any] struct {
	name string
	fn   func(Input[T])
}

func (l *drainLink[T]) label() string { return l.name }

func (l *drainLink[T]) named(name string) link {
	c := *l
	c.name = name
	return &c
}

func (l *drainLink[T]) launch(up any, env *launchEnv) (scheduler.Task, any) {
	return &drainTask[T]{
		baseTask: env.base(l.name),
		in:       &countingInput[T]{Consumer: up.(*queue.Queue[T]).Consumer()},
		fn:       l.fn,
	}, nil
}

// Drain hands the input queue to fn whenever it has items; fn pops as many as it
// likes. A call that pops nothing ends the step. Once upstream is done fn is called
// one last time with a closed, empty input.
func Drain[T any](fn func(Input[T])) Sink[T] {
	return Sink[T]{chain{
		sink: &drainLink[T]{name: "drain", fn: fn},
		in:   reflect.TypeFor[T](),
	}}
}

type drainTask[T any] struct {
	baseTask
	in      *countingInput[T]
	fn      func(Input[T])
	flushed bool
}

func (t *drainTask[T]) Step() scheduler.Result {
	if t.stopped() {
		return t.done()
	}
	for n := 0; n < t.budget; n++ {
		closed := t.in.IsClosed()
		if t.in.IsEmpty() {
			if !closed {
				return scheduler.Yield
			}
			if !t.flushed {
				t.flushed = true
				t.fn(t.in)
			}
			res := t.done()
			t.exec.resolve(nil)
			return res
		}
		pops := t.in.pops
		t.fn(t.in)
		if t.in.pops == pops {
			return scheduler.Yield
		}
	}
	return scheduler.Yield
}
