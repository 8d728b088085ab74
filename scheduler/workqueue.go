package scheduler

import (
	"sync"

	"github.com/emirpasic/gods/queues/linkedlistqueue"
)

// workQueue is the unbounded FIFO shared by all workers and submitters.
// It must be unbounded: a worker re-enqueueing a yielded task must never block.
type workQueue struct {
	mu     sync.Mutex
	cond   *sync.Cond
	items  *linkedlistqueue.Queue
	closed bool
}

func newWorkQueue() *workQueue {
	q := &workQueue{items: linkedlistqueue.New()}
	q.cond = sync.NewCond(&q.mu)
	return q
}

// push enqueues all tasks, or none if the queue is closed.
func (q *workQueue) push(tasks ...Task) bool {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return false
	}
	for _, t := range tasks {
		q.items.Enqueue(t)
	}
	q.mu.Unlock()

	if len(tasks) == 1 {
		q.cond.Signal()
	} else {
		q.cond.Broadcast()
	}
	return true
}

// pop blocks until a task is available or the queue is closed.
// After close it reports false even if tasks remain; those are drained by the owner.
func (q *workQueue) pop() (Task, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	for q.items.Empty() && !q.closed {
		q.cond.Wait()
	}
	if q.closed {
		return nil, false
	}
	v, _ := q.items.Dequeue()
	return v.(Task), true
}

func (q *workQueue) close() {
	q.mu.Lock()
	q.closed = true
	q.mu.Unlock()
	q.cond.Broadcast()
}

// drain removes and returns every queued task.
func (q *workQueue) drain() []Task {
	q.mu.Lock()
	defer q.mu.Unlock()

	out := make([]Task, 0, q.items.Size())
	for {
		v, ok := q.items.Dequeue()
		if !ok {
			return out
		}
		out = append(out, v.(Task))
	}
}

func (q *workQueue) len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.items.Size()
}

func (q *workQueue) isClosed() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.closed
}
