package flow

import (
	"strconv"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ygrebnov/flow/queue"
)

func TestPipeline_MapChainKeepsOrder(t *testing.T) {
	pool := newTestPool(t, 4)

	var got []string
	stages := Then(Then(Map(double), Map(func(x int) int { return x + 1 })), Map(strconv.Itoa))
	_, err := runAndWait(t, pool, Via(From(seq(10)), stages).Into(Collect(&got)))
	require.NoError(t, err)
	require.Equal(t, []string{"3", "5", "7", "9", "11", "13", "15", "17", "19", "21"}, got)
}

func TestPipeline_MapIdentity(t *testing.T) {
	pool := newTestPool(t, 2)

	in := seq(500)
	var got []int
	_, err := runAndWait(t, pool, Via(From(in), Map(func(x int) int { return x })).Into(Collect(&got)), WithQueueCapacity(7))
	require.NoError(t, err)
	require.Equal(t, in, got)
}

func TestPipeline_SlowSinkStaysBounded(t *testing.T) {
	pool := newTestPool(t, 4)

	const n = 2000
	var got []int
	sink := ForEach(func(x int) {
		if x%100 == 0 {
			time.Sleep(time.Millisecond)
		}
		got = append(got, x)
	})
	plan := Via(From(seq(n)), Then(Map(double), Map(func(x int) int { return x / 2 }))).Into(sink)

	exec, err := runAndWait(t, pool, plan, WithQueueCapacity(16))
	require.NoError(t, err)
	require.Equal(t, seq(n), got)

	stats := exec.Queues()
	require.Len(t, stats, 3)
	for _, s := range stats {
		require.Equal(t, 16, s.Capacity)
		require.LessOrEqual(t, s.Peak, 16, "queue after %s", s.Stage)
		require.True(t, s.Closed)
		require.Zero(t, s.Len)
	}
	require.Equal(t, "from", stats[0].Stage)
}

func TestPipeline_ExpandOverflowKeepsOrder(t *testing.T) {
	pool := newTestPool(t, 3)

	// n is emitted n times; with capacity 2 most emissions overflow.
	repeat := Expand(func(n int, e Emitter[int]) {
		for range n {
			e.Emit(n)
		}
	})

	var got []int
	_, err := runAndWait(t, pool, Via(From([]int{1, 0, 3, 2, 5}), repeat).Into(Collect(&got)), WithQueueCapacity(2))
	require.NoError(t, err)
	require.Equal(t, []int{1, 3, 3, 3, 2, 2, 5, 5, 5, 5, 5}, got)
}

func TestPipeline_ReducePairs(t *testing.T) {
	pool := newTestPool(t, 2)

	var (
		first int
		have  bool
	)
	pairs := Reduce(func(in Input[int]) (int, bool) {
		for {
			v, st := in.TryPop()
			switch {
			case st == queue.Closed && have:
				// A trailing odd item is emitted alone.
				have = false
				return first, true
			case st != queue.Success:
				return 0, false
			case !have:
				first, have = v, true
				continue
			}
			have = false
			return first + v, true
		}
	})

	var got []int
	_, err := runAndWait(t, pool, Via(From(seq(11)), pairs).Into(Collect(&got)), WithQueueCapacity(1))
	require.NoError(t, err)
	require.Equal(t, []int{3, 7, 11, 15, 19, 11}, got)
}

// feedThenClose sends items on a fresh channel, then closes it once the
// pipeline has had time to consume them all.
func feedThenClose(items ...int) <-chan int {
	ch := make(chan int, len(items))
	for _, v := range items {
		ch <- v
	}
	go func() {
		time.Sleep(50 * time.Millisecond)
		close(ch)
	}()
	return ch
}

func TestPipeline_ReduceFlushesAtEndOfStream(t *testing.T) {
	pool := newTestPool(t, 2)

	sum := 0
	total := Reduce(func(in Input[int]) (int, bool) {
		for {
			v, st := in.TryPop()
			switch st {
			case queue.Success:
				sum += v
			case queue.Closed:
				return sum, true
			default:
				return 0, false
			}
		}
	})

	var got []int
	_, err := runAndWait(t, pool, Via(FromChan(feedThenClose(1, 2, 3)), total).Into(Collect(&got)))
	require.NoError(t, err)
	require.Equal(t, []int{6}, got)
}

func TestPipeline_ReduceFinalResultWaitsForRoom(t *testing.T) {
	pool := newTestPool(t, 1)

	// Every item passes through and the final call adds a count, so the last
	// value must wait behind a full downstream queue.
	n := 0
	count := Reduce(func(in Input[int]) (int, bool) {
		v, st := in.TryPop()
		switch st {
		case queue.Success:
			n++
			return v, true
		case queue.Closed:
			return -n, true
		}
		return 0, false
	})

	var got []int
	_, err := runAndWait(t, pool, Via(From(seq(5)), count).Into(Collect(&got)), WithQueueCapacity(1))
	require.NoError(t, err)
	require.Equal(t, []int{1, 2, 3, 4, 5, -5}, got)
}

func TestPipeline_TransformFlushesTail(t *testing.T) {
	pool := newTestPool(t, 2)

	// Batches items in pairs and hands over the incomplete batch at the end.
	var batch []int
	pairs := Transform(func(in Input[int], out Emitter[[]int]) {
		for {
			v, st := in.TryPop()
			switch st {
			case queue.Success:
				batch = append(batch, v)
				if len(batch) == 2 {
					out.Emit(batch)
					batch = nil
				}
				continue
			case queue.Closed:
				if len(batch) > 0 {
					out.Emit(batch)
					batch = nil
				}
			}
			return
		}
	})

	var got [][]int
	_, err := runAndWait(t, pool, Via(FromChan(feedThenClose(1, 2, 3)), pairs).Into(Collect(&got)))
	require.NoError(t, err)
	require.Equal(t, [][]int{{1, 2}, {3}}, got)
}

func TestPipeline_TransformTailOverflowIsDelivered(t *testing.T) {
	pool := newTestPool(t, 1)

	// The final call emits more items than the downstream queue holds.
	held := 0
	tail := Transform(func(in Input[int], out Emitter[int]) {
		for {
			_, st := in.TryPop()
			switch st {
			case queue.Success:
				held++
				continue
			case queue.Closed:
				for i := 1; i <= held; i++ {
					out.Emit(i)
				}
			}
			return
		}
	})

	var got []int
	_, err := runAndWait(t, pool, Via(From(seq(6)), tail).Into(Collect(&got)), WithQueueCapacity(2))
	require.NoError(t, err)
	require.Equal(t, seq(6), got)
}

func TestPipeline_TransformBatches(t *testing.T) {
	pool := newTestPool(t, 2)

	// Pops up to three items per call and emits the batch sum followed by the batch size.
	batch := Transform(func(in Input[int], out Emitter[int]) {
		sum, n := 0, 0
		for n < 3 {
			v, st := in.TryPop()
			if st != queue.Success {
				break
			}
			sum += v
			n++
		}
		if n > 0 {
			out.Emit(sum)
			out.Emit(n)
		}
	})

	var got []int
	_, err := runAndWait(t, pool, Via(From(seq(9)), batch).Into(Collect(&got)), WithQueueCapacity(3))
	require.NoError(t, err)

	total, items := 0, 0
	for i := 0; i < len(got); i += 2 {
		total += got[i]
		items += got[i+1]
		require.LessOrEqual(t, got[i+1], 3)
	}
	require.Equal(t, 45, total)
	require.Equal(t, 9, items)
}

func TestPipeline_TransformWithoutProgressYields(t *testing.T) {
	pool := newTestPool(t, 1)

	// Waits until two items are buffered before consuming both.
	pairwise := Transform(func(in Input[int], out Emitter[int]) {
		if in.Len() < 2 && !in.IsClosed() {
			return
		}
		a, st := in.TryPop()
		if st != queue.Success {
			return
		}
		b, st := in.TryPop()
		if st != queue.Success {
			out.Emit(a)
			return
		}
		out.Emit(a * b)
	})

	var got []int
	_, err := runAndWait(t, pool, Via(From(seq(5)), pairwise).Into(Collect(&got)), WithQueueCapacity(4))
	require.NoError(t, err)
	require.Equal(t, []int{2, 12, 5}, got)
}

func TestPipeline_TerminatesForAnyLength(t *testing.T) {
	pool := newTestPool(t, 1)

	for stages := 0; stages <= 6; stages++ {
		t.Run(strconv.Itoa(stages), func(t *testing.T) {
			f := Map(func(x int) int { return x })
			src := From(seq(50))
			for range stages {
				src = Via(src, f)
			}
			var got []int
			_, err := runAndWait(t, pool, src.Into(Collect(&got)), WithQueueCapacity(1))
			require.NoError(t, err)
			require.Equal(t, seq(50), got)
		})
	}
}

func TestPipeline_FragmentReuse(t *testing.T) {
	pool := newTestPool(t, 1)

	f := Then(Map(double), Map(strconv.Itoa))

	var a, b []string
	execA, err := Via(From([]int{1, 2, 3}), f).Into(Collect(&a)).Run(pool, WithQueueCapacity(1))
	require.NoError(t, err)
	execB, err := Via(From([]int{10, 20}), f).Into(Collect(&b)).Run(pool, WithQueueCapacity(1))
	require.NoError(t, err)

	require.NoError(t, execA.Wait())
	require.NoError(t, execB.Wait())
	require.Equal(t, []string{"2", "4", "6"}, a)
	require.Equal(t, []string{"20", "40"}, b)
}

func TestPipeline_ManyPlansOneWorker(t *testing.T) {
	pool := newTestPool(t, 1)

	const plans = 20
	results := make([][]int, plans)
	execs := make([]*Execution, plans)
	for i := range plans {
		var err error
		execs[i], err = Via(From(seq(30)), Map(double)).Into(Collect(&results[i])).Run(pool, WithQueueCapacity(1), WithStepBudget(1))
		require.NoError(t, err)
	}

	want := make([]int, 30)
	for i := range want {
		want[i] = (i + 1) * 2
	}
	for i, e := range execs {
		require.NoError(t, e.Wait())
		require.Equal(t, want, results[i])
	}
}

func TestPipeline_EmptySource(t *testing.T) {
	pool := newTestPool(t, 2)

	var got []int
	exec, err := runAndWait(t, pool, Via(From[int](nil), Map(double)).Into(Collect(&got)))
	require.NoError(t, err)
	require.Empty(t, got)
	require.True(t, exec.IsDone())
}

func TestPipeline_SourceIntoSinkDirectly(t *testing.T) {
	pool := newTestPool(t, 2)

	var (
		mu  sync.Mutex
		got []int
	)
	sink := ForEach(func(x int) {
		mu.Lock()
		got = append(got, x)
		mu.Unlock()
	})
	exec, err := runAndWait(t, pool, From(seq(5)).Into(sink))
	require.NoError(t, err)
	require.Equal(t, seq(5), got)
	require.Len(t, exec.Queues(), 1)
}

func TestPipeline_Scenarios(t *testing.T) {
	pool := newTestPool(t, 2)

	pairSum := func() Stage[int, int] {
		var (
			first int
			have  bool
		)
		return Reduce(func(in Input[int]) (int, bool) {
			for {
				v, st := in.TryPop()
				if st != queue.Success {
					return 0, false
				}
				if !have {
					first, have = v, true
					continue
				}
				have = false
				return first + v, true
			}
		})
	}

	tests := []struct {
		name  string
		in    []int
		stage Stage[int, int]
		want  []int
	}{
		{name: "map doubles", in: []int{1, 2, 3, 4}, stage: Map(double), want: []int{2, 4, 6, 8}},
		{name: "expand twice", in: []int{1, 2, 3}, stage: Expand(func(x int, e Emitter[int]) {
			e.Emit(x)
			e.Emit(x)
		}), want: []int{1, 1, 2, 2, 3, 3}},
		{name: "reduce pair sums", in: []int{1, 2, 3, 4}, stage: pairSum(), want: []int{3, 7}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got []int
			_, err := runAndWait(t, pool, Via(From(tt.in), tt.stage).Into(Collect(&got)))
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestPipeline_PausedConsumerBoundsQueues(t *testing.T) {
	pool := newTestPool(t, 2)

	var paused atomic.Bool
	paused.Store(true)
	var got []int
	sink := Drain(func(in Input[int]) {
		if paused.Load() {
			return
		}
		for {
			v, st := in.TryPop()
			if st != queue.Success {
				return
			}
			got = append(got, v)
		}
	})

	exec, err := Via(From(seq(1000)), Map(double)).Into(sink).Run(pool, WithQueueCapacity(8))
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		for _, s := range exec.Queues() {
			if s.Len != s.Capacity {
				return false
			}
		}
		return true
	}, 5*time.Second, time.Millisecond)

	// Nothing moves while the sink is paused.
	time.Sleep(10 * time.Millisecond)
	for _, s := range exec.Queues() {
		require.Equal(t, 8, s.Peak)
		require.Equal(t, 8, s.Len)
	}
	require.False(t, exec.IsDone())

	paused.Store(false)
	require.NoError(t, exec.Wait())
	require.Len(t, got, 1000)
}
