// Package queue provides the bounded single-producer/single-consumer queue that
// connects pipeline stages, together with restricted producer and consumer views.
//
// Every operation is non-blocking. A full queue reports Full on TryPush, an empty
// open queue reports Empty on TryPop, and an empty closed queue reports Closed.
// Callers that cannot make progress are expected to yield and retry later.
package queue

import (
	"errors"
	"strconv"
	"sync"

	"github.com/ygrebnov/errorc"
)

// Namespace prefixes all errors returned by this package.
const Namespace = "queue"

// DefaultCapacity is the number of slots used when no capacity is configured.
const DefaultCapacity = 1024

var (
	ErrInvalidCapacity = errors.New(Namespace + ": capacity must be greater than zero")
	ErrClosed          = errors.New(Namespace + ": push to a closed queue")
)

// Status is the outcome of a non-blocking queue operation.
type Status int

const (
	// Success means the item was pushed or popped.
	Success Status = iota
	// Full means TryPush found no free slot.
	Full
	// Empty means TryPop found no item, but more may arrive.
	Empty
	// Closed means TryPop found no item and none will ever arrive.
	Closed
)

func (s Status) String() string {
	switch s {
	case Success:
		return "success"
	case Full:
		return "full"
	case Empty:
		return "empty"
	case Closed:
		return "closed"
	default:
		return "status(" + strconv.Itoa(int(s)) + ")"
	}
}

// Queue is a fixed-capacity FIFO ring buffer with a monotonic closed flag.
// It is safe for one producer and one consumer to use concurrently.
type Queue[T any] struct {
	mu     sync.Mutex
	data   []T
	head   uint // next write position
	tail   uint // next read position
	closed bool
	peak   int
}

// New returns an open queue holding at most capacity items.
func New[T any](capacity int) (*Queue[T], error) {
	if capacity <= 0 {
		return nil, errorc.With(ErrInvalidCapacity, errorc.String("capacity", strconv.Itoa(capacity)))
	}
	return &Queue[T]{data: make([]T, capacity)}, nil
}

// Must is like New but panics on an invalid capacity.
func Must[T any](capacity int) *Queue[T] {
	q, err := New[T](capacity)
	if err != nil {
		panic(err)
	}
	return q
}

func (q *Queue[T]) size() int { return int(q.head - q.tail) }

func (q *Queue[T]) slot(pos uint) uint { return pos % uint(len(q.data)) }

// TryPush appends item unless the queue is full.
// Pushing to a closed queue is a programmer error and panics.
func (q *Queue[T]) TryPush(item T) Status {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		panic(ErrClosed)
	}
	if q.size() == len(q.data) {
		return Full
	}

	q.data[q.slot(q.head)] = item
	q.head++
	if n := q.size(); n > q.peak {
		q.peak = n
	}
	return Success
}

// TryPop removes and returns the front item.
func (q *Queue[T]) TryPop() (T, Status) {
	q.mu.Lock()
	defer q.mu.Unlock()

	var zero T
	if q.size() == 0 {
		if q.closed {
			return zero, Closed
		}
		return zero, Empty
	}

	i := q.slot(q.tail)
	item := q.data[i]
	q.data[i] = zero // release the reference
	q.tail++
	return item, Success
}

// PeekFront returns the front item without removing it.
func (q *Queue[T]) PeekFront() (T, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.size() == 0 {
		var zero T
		return zero, false
	}
	return q.data[q.slot(q.tail)], true
}

// IsEmpty reports whether no item is buffered. The answer may be stale by the
// time the caller acts on it, but only in the direction the caller's peer moves it.
func (q *Queue[T]) IsEmpty() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.size() == 0
}

// IsFull reports whether every slot is occupied.
func (q *Queue[T]) IsFull() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.size() == len(q.data)
}

// IsClosed reports whether Close has been called.
func (q *Queue[T]) IsClosed() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.closed
}

// Close marks the queue closed. Buffered items remain poppable. Idempotent.
func (q *Queue[T]) Close() {
	q.mu.Lock()
	q.closed = true
	q.mu.Unlock()
}

// Len returns the number of buffered items.
func (q *Queue[T]) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.size()
}

// Cap returns the fixed capacity.
func (q *Queue[T]) Cap() int { return len(q.data) }

// Peak returns the highest number of items ever buffered at once.
func (q *Queue[T]) Peak() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.peak
}

// Producer returns the write-side view of q.
func (q *Queue[T]) Producer() Producer[T] { return Producer[T]{q: q} }

// Consumer returns the read-side view of q.
func (q *Queue[T]) Consumer() Consumer[T] { return Consumer[T]{q: q} }
