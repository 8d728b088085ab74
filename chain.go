package flow

import (
	"reflect"
	"slices"

	"github.com/ygrebnov/errorc"
)

// Segment is the type-erased view of any chain: Fragment, Source, Sink or Plan.
// It is what Compose works on when item types are only known at run time.
type Segment interface {
	// OpenLeft reports whether the chain still lacks a source.
	OpenLeft() bool
	// OpenRight reports whether the chain still lacks a sink.
	OpenRight() bool
	// In is the item type accepted on the left, nil when closed on the left.
	In() reflect.Type
	// Out is the item type produced on the right, nil when closed on the right.
	Out() reflect.Type
	// Run launches the chain. Only chains closed on both ends run; others
	// return ErrNotRunnable.
	Run(s Scheduler, opts ...Option) (*Execution, error)

	segment() chain
}

// chain is the shared representation behind every chain type.
type chain struct {
	source link
	links  []link
	sink   link

	in, out reflect.Type
}

func (c chain) OpenLeft() bool    { return c.source == nil }
func (c chain) OpenRight() bool   { return c.sink == nil }
func (c chain) In() reflect.Type  { return c.in }
func (c chain) Out() reflect.Type { return c.out }
func (c chain) segment() chain    { return c }

func (c chain) clone() chain {
	c.links = slices.Clone(c.links)
	return c
}

// join appends next to c. Neither input is modified.
func (c chain) join(next chain) chain {
	links := make([]link, 0, len(c.links)+len(next.links))
	links = append(links, c.links...)
	links = append(links, next.links...)
	return chain{source: c.source, links: links, sink: next.sink, in: c.in, out: next.out}
}

// Source is a chain closed on the left: it produces items of type T.
type Source[T any] struct {
	chain
}

// Into terminates src with sink.
func (src Source[T]) Into(sink Sink[T]) Plan {
	return Plan{src.join(sink.chain)}
}

// Sink is a chain closed on the right: it consumes items of type T.
type Sink[T any] struct {
	chain
}

// Plan is a chain closed on both ends, the only kind that runs.
type Plan struct {
	chain
}

// Compose joins two erased chains. The left one must be open on the right, the
// right one open on the left, and the item types must match.
// A result closed on both ends is a Plan.
func Compose(left, right Segment) (Segment, error) {
	if left == nil || !left.OpenRight() {
		return nil, errorc.With(ErrClosedEnd, errorc.String("side", "left"))
	}
	if right == nil || !right.OpenLeft() {
		return nil, errorc.With(ErrClosedEnd, errorc.String("side", "right"))
	}
	if left.Out() != right.In() {
		return nil, errorc.With(
			ErrTypeMismatch,
			errorc.String("out", typeName(left.Out())),
			errorc.String("in", typeName(right.In())),
		)
	}

	c := left.segment().join(right.segment())
	if !c.OpenLeft() && !c.OpenRight() {
		return Plan{c}, nil
	}
	return c, nil
}

func typeName(t reflect.Type) string {
	if t == nil {
		return "<nil>"
	}
	return t.String()
}
