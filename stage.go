package flow

import (
	"fmt"
	"reflect"
	"strconv"

	"github.com/ygrebnov/errorc"
)

// Kind classifies a stage by how many items it consumes and produces per call.
type Kind int

const (
	// KindMap consumes one item and produces one item: func(I) O.
	KindMap Kind = iota + 1
	// KindExpand consumes one item and produces any number: func(I, Emitter[O]).
	KindExpand
	// KindReduce consumes many items and produces one: func(Input[I]) (O, bool).
	KindReduce
	// KindTransform consumes and produces many items: func(Input[I], Emitter[O]).
	KindTransform
)

func (k Kind) String() string {
	switch k {
	case KindMap:
		return "map"
	case KindExpand:
		return "expand"
	case KindReduce:
		return "reduce"
	case KindTransform:
		return "transform"
	default:
		return "kind(" + strconv.Itoa(int(k)) + ")"
	}
}

// Fragment is an immutable chain of one or more stage descriptions, open on both
// ends: it has neither a source nor a sink yet. The same Fragment value may be
// connected into any number of plans.
//
// A function value is shared by every plan the fragment is connected into; a
// Reduce or Transform function keeping state between calls must therefore not
// be launched in two plans at once.
type Fragment[I, O any] struct {
	chain
}

// Stage is a fragment holding a single stage, as returned by the constructors.
type Stage[I, O any] = Fragment[I, O]

// Map declares a one-to-one stage.
func Map[I, O any](fn func(I) O) Stage[I, O] {
	return newStage[I, O](&mapLink[I, O]{name: KindMap.String(), fn: fn})
}

// Expand declares a one-to-many stage. fn receives each input item and emits
// zero or more output items.
func Expand[I, O any](fn func(I, Emitter[O])) Stage[I, O] {
	return newStage[I, O](&expandLink[I, O]{name: KindExpand.String(), fn: fn})
}

// Reduce declares a many-to-one stage. fn is called while input is available; it
// pops what it needs and returns (out, true) once it has produced a value, or
// (_, false) when it needs more input than is buffered right now. Once upstream is
// done fn is called one last time with a closed, empty input so it can return the
// state it still holds.
func Reduce[I, O any](fn func(Input[I]) (O, bool)) Stage[I, O] {
	return newStage[I, O](&reduceLink[I, O]{name: KindReduce.String(), fn: fn})
}

// Transform declares a many-to-many stage. fn is called while input is available
// and downstream has room; it decides how much to pop and emit on each call. Once
// upstream is done fn is called one last time with a closed, empty input so it can
// emit what it still holds.
func Transform[I, O any](fn func(Input[I], Emitter[O])) Stage[I, O] {
	return newStage[I, O](&transformLink[I, O]{name: KindTransform.String(), fn: fn})
}

// NewStage builds a stage from a callable whose kind was classified elsewhere.
// The callable's type must match the kind and item types exactly.
func NewStage[I, O any](kind Kind, fn any) (Stage[I, O], error) {
	switch kind {
	case KindMap:
		if f, ok := fn.(func(I) O); ok {
			return Map(f), nil
		}
	case KindExpand:
		if f, ok := fn.(func(I, Emitter[O])); ok {
			return Expand(f), nil
		}
	case KindReduce:
		if f, ok := fn.(func(Input[I]) (O, bool)); ok {
			return Reduce(f), nil
		}
	case KindTransform:
		if f, ok := fn.(func(Input[I], Emitter[O])); ok {
			return Transform(f), nil
		}
	}
	return Fragment[I, O]{}, errorc.With(
		ErrInvalidStage,
		errorc.String("kind", kind.String()),
		errorc.String("callable", fmt.Sprintf("%T", fn)),
	)
}

func newStage[I, O any](l link) Stage[I, O] {
	return Fragment[I, O]{chain{
		links: []link{l},
		in:    reflect.TypeFor[I](),
		out:   reflect.TypeFor[O](),
	}}
}

// Named returns a copy of f whose last stage is called name. Names show up in
// logs, errors and Execution.Queues.
func (f Fragment[I, O]) Named(name string) Fragment[I, O] {
	c := f.chain.clone()
	if n := len(c.links); n > 0 {
		c.links[n-1] = c.links[n-1].named(name)
	}
	return Fragment[I, O]{c}
}

// Then chains a and b into one fragment.
func Then[I, M, O any](a Fragment[I, M], b Fragment[M, O]) Fragment[I, O] {
	c := a.chain.join(b.chain)
	c.in, c.out = reflect.TypeFor[I](), reflect.TypeFor[O]()
	return Fragment[I, O]{c}
}

// ConnectTo grafts f onto src, producing a longer source.
func (f Fragment[I, O]) ConnectTo(src Source[I]) Source[O] {
	c := src.chain.join(f.chain)
	c.out = reflect.TypeFor[O]()
	return Source[O]{c}
}

// Via is ConnectTo written source first.
func Via[I, O any](src Source[I], f Fragment[I, O]) Source[O] {
	return f.ConnectTo(src)
}

// Into terminates f with sink, producing a sink that accepts f's input.
func (f Fragment[I, O]) Into(sink Sink[O]) Sink[I] {
	c := f.chain.join(sink.chain)
	c.in = reflect.TypeFor[I]()
	return Sink[I]{c}
}
