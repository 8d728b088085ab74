package flow

import (
	"iter"
	"reflect"

	"github.com/ygrebnov/flow/queue"
	"github.com/ygrebnov/flow/scheduler"
)

type pullStatus int

const (
	pulled pullStatus = iota
	pullLater
	pullDone
)

// puller is the per-run state of a source: pull fetches the next item without
// blocking, release runs once when the source task ends for any reason.
type puller[T any] struct {
	pull    func() (T, pullStatus)
	release func()
}

type sourceLink[T any] struct {
	name string
	open func() puller[T]
}

func (l *sourceLink[T]) label() string { return l.name }

func (l *sourceLink[T]) named(name string) link {
	c := *l
	c.name = name
	return &c
}

func (l *sourceLink[T]) launch(_ any, env *launchEnv) (scheduler.Task, any) {
	out := newEdge[T](env, l.name)
	p := l.open()
	base := env.base(l.name)
	base.release = p.release
	return &sourceTask[T]{baseTask: base, out: out.Producer(), pull: p.pull}, out
}

type sourceTask[T any] struct {
	baseTask
	out     queue.Producer[T]
	pull    func() (T, pullStatus)
	pending T
	held    bool
}

func (t *sourceTask[T]) Step() scheduler.Result {
	if t.stopped() {
		return t.done()
	}
	for n := 0; n < t.budget; n++ {
		if t.held {
			if t.out.TryPush(t.pending) != queue.Success {
				return scheduler.Yield
			}
			var zero T
			t.pending, t.held = zero, false
		}

		v, st := t.pull()
		switch st {
		case pulled:
			if t.out.TryPush(v) != queue.Success {
				t.pending, t.held = v, true
				return scheduler.Yield
			}
		case pullDone:
			t.out.Close()
			return t.done()
		default:
			return scheduler.Yield
		}
	}
	return scheduler.Yield
}

func newSource[T any](name string, open func() puller[T]) Source[T] {
	return Source[T]{chain{
		source: &sourceLink[T]{name: name, open: open},
		out:    reflect.TypeFor[T](),
	}}
}

// From produces the items of a slice, in order. Every run reads the slice
// again, so it must not be modified while a run is in progress.
func From[T any](items []T) Source[T] {
	return newSource("from", func() puller[T] {
		i := 0
		return puller[T]{pull: func() (T, pullStatus) {
			if i >= len(items) {
				var zero T
				return zero, pullDone
			}
			v := items[i]
			i++
			return v, pulled
		}}
	})
}

// Generate produces items by calling next until it reports false.
// next must not block.
func Generate[T any](next func() (T, bool)) Source[T] {
	return newSource("generate", func() puller[T] {
		return puller[T]{pull: func() (T, pullStatus) {
			v, ok := next()
			if !ok {
				return v, pullDone
			}
			return v, pulled
		}}
	})
}

// FromSeq produces the items of seq. The iterator is started on the first step
// and stopped when the run ends, including runs that fail or are aborted.
func FromSeq[T any](seq iter.Seq[T]) Source[T] {
	return newSource("seq", func() puller[T] {
		var (
			next func() (T, bool)
			stop func()
		)
		return puller[T]{
			pull: func() (T, pullStatus) {
				if next == nil {
					next, stop = iter.Pull(seq)
				}
				v, ok := next()
				if !ok {
					return v, pullDone
				}
				return v, pulled
			},
			release: func() {
				if stop != nil {
					stop()
				}
			},
		}
	})
}

// FromQueue moves items out of an external queue until it is closed and drained.
// The caller keeps producing into q and must close it.
func FromQueue[T any](q *queue.Queue[T]) Source[T] {
	return newSource("queue", func() puller[T] {
		c := q.Consumer()
		return puller[T]{pull: func() (T, pullStatus) {
			v, st := c.TryPop()
			switch st {
			case queue.Success:
				return v, pulled
			case queue.Closed:
				return v, pullDone
			default:
				return v, pullLater
			}
		}}
	})
}

// FromChan receives from ch without blocking until ch is closed.
func FromChan[T any](ch <-chan T) Source[T] {
	return newSource("chan", func() puller[T] {
		return puller[T]{pull: func() (T, pullStatus) {
			select {
			case v, ok := <-ch:
				if !ok {
					return v, pullDone
				}
				return v, pulled
			default:
				var zero T
				return zero, pullLater
			}
		}}
	})
}
