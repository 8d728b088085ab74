package main

import (
	"context"
	"iter"
	"strconv"
	"time"

	"github.com/ygrebnov/flow"
	"github.com/ygrebnov/flow/queue"
	"github.com/ygrebnov/flow/scheduler"
)

// tally is written by a single sink task and read after its execution resolves.
type tally struct {
	items int
	sum   int
}

type scenario struct {
	name string
	help string
	plan func(items int, sink flow.Sink[int]) flow.Plan
}

var scenarios = []scenario{
	{
		name: "chain",
		help: "three maps in a row",
		plan: func(n int, sink flow.Sink[int]) flow.Plan {
			stages := flow.Then(
				flow.Then(flow.Map(func(x int) int { return x * 2 }), flow.Map(strconv.Itoa)),
				flow.Map(func(s string) int {
					v, _ := strconv.Atoi(s)
					return v / 2
				}),
			)
			return flow.Via(flow.From(numbers(n)), stages).Into(sink)
		},
	},
	{
		name: "expand",
		help: "every item emitted three times",
		plan: func(n int, sink flow.Sink[int]) flow.Plan {
			triple := flow.Expand(func(x int, e flow.Emitter[int]) {
				e.Emit(x)
				e.Emit(x)
				e.Emit(x)
			})
			return flow.Via(flow.From(numbers(n)), triple).Into(sink)
		},
	},
	{
		name: "reduce",
		help: "sums of consecutive batches of eight, the last one possibly short",
		plan: func(n int, sink flow.Sink[int]) flow.Plan {
			return flow.Via(flow.FromSeq(count(n)), flow.Reduce(batchSum(8))).Into(sink)
		},
	},
	{
		name: "transform",
		help: "drops every item equal to its predecessor",
		plan: func(n int, sink flow.Sink[int]) flow.Plan {
			halves := flow.Map(func(x int) int { return x / 2 })
			return flow.Via(flow.Via(flow.FromSeq(count(n)), halves), flow.Transform(dedupe())).Into(sink)
		},
	},
}

func lookupScenario(name string) (scenario, bool) {
	for _, s := range scenarios {
		if s.name == name {
			return s, true
		}
	}
	return scenario{}, false
}

func numbers(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i + 1
	}
	return out
}

func count(n int) iter.Seq[int] {
	return func(yield func(int) bool) {
		for i := 1; i <= n; i++ {
			if !yield(i) {
				return
			}
		}
	}
}

// batchSum sums size items per output, keeping a partial batch between calls
// and handing it over once the input is closed.
func batchSum(size int) func(flow.Input[int]) (int, bool) {
	sum, have := 0, 0
	return func(in flow.Input[int]) (int, bool) {
		for have < size {
			v, st := in.TryPop()
			if st == queue.Closed && have > 0 {
				break
			}
			if st != queue.Success {
				return 0, false
			}
			sum += v
			have++
		}
		out := sum
		sum, have = 0, 0
		return out, true
	}
}

func dedupe() func(flow.Input[int], flow.Emitter[int]) {
	last, seen := 0, false
	return func(in flow.Input[int], out flow.Emitter[int]) {
		for !out.Full() {
			v, st := in.TryPop()
			if st != queue.Success {
				return
			}
			if seen && v == last {
				continue
			}
			last, seen = v, true
			out.Emit(v)
		}
	}
}

type bench struct {
	pool  *scheduler.Pool
	items int
	slow  time.Duration
	opts  []flow.Option
}

type launched struct {
	scenario string
	tally    *tally
	exec     *flow.Execution
}

// run launches every scenario repeat times on the shared pool, then waits for all of them.
func (b bench) run(ctx context.Context, selected []scenario, repeat int) ([]report, error) {
	started := time.Now()
	var runs []launched
	for _, s := range selected {
		for range repeat {
			t := &tally{}
			exec, err := s.plan(b.items, b.sink(t)).Run(b.pool, b.opts...)
			if err != nil {
				return nil, err
			}
			runs = append(runs, launched{scenario: s.name, tally: t, exec: exec})
		}
	}

	reports := make([]report, 0, len(runs))
	for _, r := range runs {
		if err := r.exec.WaitContext(ctx); err != nil {
			return nil, err
		}
		reports = append(reports, newReport(r, time.Since(started)))
	}
	return reports, nil
}

func (b bench) sink(t *tally) flow.Sink[int] {
	return flow.ForEach(func(v int) {
		t.items++
		t.sum += v
		if b.slow > 0 && t.items%100 == 0 {
			time.Sleep(b.slow)
		}
	})
}
