package flow

import (
	"github.com/ygrebnov/flow/queue"
	"github.com/ygrebnov/flow/scheduler"
)

// link is one element of a chain. launch allocates the link's downstream queue,
// builds its task and hands the queue on; up is the upstream queue (nil for sources).
type link interface {
	label() string
	named(name string) link
	launch(up any, env *launchEnv) (scheduler.Task, any)
}

// launchEnv carries what a single run shares between its links.
type launchEnv struct {
	cfg  *config
	exec *Execution
}

func (e *launchEnv) base(name string) baseTask {
	return baseTask{name: name, exec: e.exec, budget: e.cfg.StepBudget}
}

// newEdge allocates the queue written by the stage called producer.
func newEdge[T any](env *launchEnv, producer string) *queue.Queue[T] {
	q := queue.Must[T](env.cfg.QueueCapacity)
	env.exec.track(producer, q)
	return q
}

type mapLink[I, O any] struct {
	name string
	fn   func(I) O
}

func (l *mapLink[I, O]) label() string { return l.name }

func (l *mapLink[I, O]) named(name string) link {
	c := *l
	c.name = name
	return &c
}

func (l *mapLink[I, O]) launch(up any, env *launchEnv) (scheduler.Task, any) {
	out := newEdge[O](env, l.name)
	return &mapTask[I, O]{
		baseTask: env.base(l.name),
		in:       up.(*queue.Queue[I]).Consumer(),
		out:      out.Producer(),
		fn:       l.fn,
	}, out
}

type expandLink[I, O any] struct {
	name string
	fn   func(I, Emitter[O])
}

func (l *expandLink[I, O]) label() string { return l.name }

func (l *expandLink[I, O]) named(name string) link {
	c := *l
	c.name = name
	return &c
}

func (l *expandLink[I, O]) launch(up any, env *launchEnv) (scheduler.Task, any) {
	out := newEdge[O](env, l.name)
	return &expandTask[I, O]{
		baseTask: env.base(l.name),
		in:       up.(*queue.Queue[I]).Consumer(),
		emit:     &overflowEmitter[O]{out: out.Producer()},
		fn:       l.fn,
	}, out
}

type reduceLink[I, O any] struct {
	name string
	fn   func(Input[I]) (O, bool)
}

func (l *reduceLink[I, O]) label() string { return l.name }

func (l *reduceLink[I, O]) named(name string) link {
	c := *l
	c.name = name
	return &c
}

func (l *reduceLink[I, O]) launch(up any, env *launchEnv) (scheduler.Task, any) {
	out := newEdge[O](env, l.name)
	return &reduceTask[I, O]{
		baseTask: env.base(l.name),
		in:       &countingInput[I]{Consumer: up.(*queue.Queue[I]).Consumer()},
		out:      out.Producer(),
		fn:       l.fn,
	}, out
}

type transformLink[I, O any] struct {
	name string
	fn   func(Input[I], Emitter[O])
}

func (l *transformLink[I, O]) label() string { return l.name }

func (l *transformLink[I, O]) named(name string) link {
	c := *l
	c.name = name
	return &c
}

func (l *transformLink[I, O]) launch(up any, env *launchEnv) (scheduler.Task, any) {
	out := newEdge[O](env, l.name)
	return &transformTask[I, O]{
		baseTask: env.base(l.name),
		in:       &countingInput[I]{Consumer: up.(*queue.Queue[I]).Consumer()},
		emit:     &overflowEmitter[O]{out: out.Producer()},
		fn:       l.fn,
	}, out
}
