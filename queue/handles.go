package queue

// Producer is the upstream view of a Queue: it can push and close, nothing else.
// The zero value is not usable; obtain one from Queue.Producer.
type Producer[T any] struct {
	q *Queue[T]
}

// TryPush pushes item, reporting Full when there is no free slot.
func (p Producer[T]) TryPush(item T) Status { return p.q.TryPush(item) }

// IsFull reports whether the next TryPush would fail with Full.
func (p Producer[T]) IsFull() bool { return p.q.IsFull() }

// Close signals that no further items will be pushed.
func (p Producer[T]) Close() { p.q.Close() }

// Consumer is the downstream view of a Queue: it can pop and inspect, but never
// push or close. The zero value is not usable; obtain one from Queue.Consumer.
type Consumer[T any] struct {
	q *Queue[T]
}

// TryPop pops the front item. See Queue.TryPop.
func (c Consumer[T]) TryPop() (T, Status) { return c.q.TryPop() }

// PeekFront returns the front item without removing it.
func (c Consumer[T]) PeekFront() (T, bool) { return c.q.PeekFront() }

// IsEmpty reports whether no item is buffered.
func (c Consumer[T]) IsEmpty() bool { return c.q.IsEmpty() }

// IsClosed reports whether the producer closed the queue.
func (c Consumer[T]) IsClosed() bool { return c.q.IsClosed() }

// Len returns the number of buffered items.
func (c Consumer[T]) Len() int { return c.q.Len() }
