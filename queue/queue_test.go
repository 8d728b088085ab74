package queue

import (
	"errors"
	"math/rand"
	"sync"
	"testing"
)

func TestNew_InvalidCapacity(t *testing.T) {
	for _, c := range []int{0, -1} {
		q, err := New[int](c)
		if !errors.Is(err, ErrInvalidCapacity) {
			t.Fatalf("New(%d) err = %v; want ErrInvalidCapacity", c, err)
		}
		if q != nil {
			t.Fatalf("New(%d) returned non-nil queue", c)
		}
	}
}

func TestMust_PanicsOnInvalidCapacity(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic")
		}
	}()
	_ = Must[int](0)
}

func TestQueue_FIFO(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for round := 0; round < 50; round++ {
		capacity := 1 + rng.Intn(32)
		q := Must[int](capacity)

		var pushed, popped []int
		next := 0
		for op := 0; op < 500; op++ {
			if rng.Intn(2) == 0 {
				if q.TryPush(next) == Success {
					pushed = append(pushed, next)
					next++
				}
				continue
			}
			if v, st := q.TryPop(); st == Success {
				popped = append(popped, v)
			}
		}
		for {
			v, st := q.TryPop()
			if st != Success {
				break
			}
			popped = append(popped, v)
		}

		if len(popped) != len(pushed) {
			t.Fatalf("round %d: popped %d items, pushed %d", round, len(popped), len(pushed))
		}
		for i := range pushed {
			if popped[i] != pushed[i] {
				t.Fatalf("round %d: popped[%d] = %d; want %d", round, i, popped[i], pushed[i])
			}
		}
	}
}

func TestQueue_FullAndEmpty(t *testing.T) {
	q := Must[string](2)

	if !q.IsEmpty() || q.IsFull() {
		t.Fatalf("new queue: empty=%v full=%v", q.IsEmpty(), q.IsFull())
	}
	if _, st := q.TryPop(); st != Empty {
		t.Fatalf("TryPop on empty open queue = %v; want empty", st)
	}
	if _, ok := q.PeekFront(); ok {
		t.Fatalf("PeekFront on empty queue reported an item")
	}

	if st := q.TryPush("a"); st != Success {
		t.Fatalf("push a = %v", st)
	}
	if st := q.TryPush("b"); st != Success {
		t.Fatalf("push b = %v", st)
	}
	if st := q.TryPush("c"); st != Full {
		t.Fatalf("push on full queue = %v; want full", st)
	}
	if !q.IsFull() || q.Len() != 2 || q.Cap() != 2 {
		t.Fatalf("full=%v len=%d cap=%d", q.IsFull(), q.Len(), q.Cap())
	}

	if v, ok := q.PeekFront(); !ok || v != "a" {
		t.Fatalf("PeekFront = %q,%v; want a,true", v, ok)
	}
	if v, st := q.TryPop(); st != Success || v != "a" {
		t.Fatalf("TryPop = %q,%v; want a,success", v, st)
	}
	if st := q.TryPush("c"); st != Success {
		t.Fatalf("push after pop = %v; want success (wrap-around)", st)
	}
	if q.Peak() != 2 {
		t.Fatalf("Peak = %d; want 2", q.Peak())
	}
}

func TestQueue_ClosedDrainsThenReportsClosed(t *testing.T) {
	q := Must[int](4)
	q.TryPush(1)
	q.TryPush(2)
	q.Close()
	q.Close() // idempotent

	if !q.IsClosed() {
		t.Fatalf("IsClosed = false after Close")
	}
	for _, want := range []int{1, 2} {
		v, st := q.TryPop()
		if st != Success || v != want {
			t.Fatalf("TryPop = %d,%v; want %d,success", v, st, want)
		}
	}
	for i := 0; i < 10; i++ {
		if _, st := q.TryPop(); st != Closed {
			t.Fatalf("TryPop #%d after drain = %v; want closed", i, st)
		}
	}
}

func TestQueue_PushAfterClosePanics(t *testing.T) {
	q := Must[int](1)
	q.Close()

	defer func() {
		r := recover()
		err, ok := r.(error)
		if !ok || !errors.Is(err, ErrClosed) {
			t.Fatalf("recovered %v; want ErrClosed", r)
		}
	}()
	q.TryPush(1)
}

func TestHandles_RestrictedViews(t *testing.T) {
	q := Must[int](1)
	p, c := q.Producer(), q.Consumer()

	if st := p.TryPush(9); st != Success {
		t.Fatalf("producer push = %v", st)
	}
	if !p.IsFull() {
		t.Fatalf("producer IsFull = false")
	}
	if c.IsEmpty() || c.Len() != 1 {
		t.Fatalf("consumer empty=%v len=%d", c.IsEmpty(), c.Len())
	}
	if v, ok := c.PeekFront(); !ok || v != 9 {
		t.Fatalf("consumer peek = %d,%v", v, ok)
	}
	p.Close()
	if !c.IsClosed() {
		t.Fatalf("consumer does not observe close")
	}
	if v, st := c.TryPop(); st != Success || v != 9 {
		t.Fatalf("consumer pop = %d,%v", v, st)
	}
	if _, st := c.TryPop(); st != Closed {
		t.Fatalf("consumer pop after drain = %v; want closed", st)
	}
}

func TestQueue_ConcurrentProducerConsumer(t *testing.T) {
	const n = 10000
	q := Must[int](16)

	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		p := q.Producer()
		for i := 0; i < n; {
			if p.TryPush(i) == Success {
				i++
			}
		}
		p.Close()
	}()

	got := make([]int, 0, n)
	go func() {
		defer wg.Done()
		c := q.Consumer()
		for {
			v, st := c.TryPop()
			if st == Closed {
				return
			}
			if st == Success {
				got = append(got, v)
			}
		}
	}()

	wg.Wait()

	if len(got) != n {
		t.Fatalf("received %d items; want %d", len(got), n)
	}
	for i, v := range got {
		if v != i {
			t.Fatalf("got[%d] = %d; want %d", i, v, i)
		}
	}
	if q.Peak() > q.Cap() {
		t.Fatalf("peak %d exceeds capacity %d", q.Peak(), q.Cap())
	}
}

func TestStatus_String(t *testing.T) {
	tests := map[Status]string{Success: "success", Full: "full", Empty: "empty", Closed: "closed", Status(9): "status(9)"}
	for s, want := range tests {
		if got := s.String(); got != want {
			t.Fatalf("Status(%d).String() = %q; want %q", int(s), got, want)
		}
	}
}
