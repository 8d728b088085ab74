package metrics

import (
	"sync"
	"sync/atomic"
)

// BasicProvider keeps instruments in memory. It is meant for tests, examples and
// the flowbench summary output. Instruments are created on first use by name.
type BasicProvider struct {
	mu          sync.Mutex
	instruments map[string]any
}

// NewBasicProvider constructs an empty BasicProvider.
func NewBasicProvider() *BasicProvider {
	return &BasicProvider{instruments: make(map[string]any)}
}

// instrument returns the instrument registered under name, creating it with mk.
// A name already bound to an instrument of another kind yields a fresh, detached one.
func instrument[I any](p *BasicProvider, name string, mk func() I) I {
	p.mu.Lock()
	defer p.mu.Unlock()

	if existing, ok := p.instruments[name]; ok {
		if typed, ok := existing.(I); ok {
			return typed
		}
		return mk()
	}
	created := mk()
	p.instruments[name] = created
	return created
}

// Counter returns the monotonic counter registered under name.
func (p *BasicProvider) Counter(name string, _ ...InstrumentOption) Counter {
	return instrument(p, name, func() *BasicCounter { return &BasicCounter{} })
}

// UpDownCounter returns the up/down counter registered under name.
func (p *BasicProvider) UpDownCounter(name string, _ ...InstrumentOption) UpDownCounter {
	return instrument(p, name, func() *BasicUpDownCounter { return &BasicUpDownCounter{} })
}

// Histogram returns the histogram registered under name.
func (p *BasicProvider) Histogram(name string, _ ...InstrumentOption) Histogram {
	return instrument(p, name, func() *BasicHistogram { return &BasicHistogram{} })
}

// CounterValue returns the current value of the named counter, or 0 if it was never created.
func (p *BasicProvider) CounterValue(name string) int64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	switch c := p.instruments[name].(type) {
	case *BasicCounter:
		return c.Snapshot()
	case *BasicUpDownCounter:
		return c.Snapshot()
	}
	return 0
}

// BasicCounter is a concurrency-safe monotonic counter.
type BasicCounter struct {
	val atomic.Int64
}

// Add increments the counter by n.
func (c *BasicCounter) Add(n int64) { c.val.Add(n) }

// Snapshot returns the current value.
func (c *BasicCounter) Snapshot() int64 { return c.val.Load() }

// BasicUpDownCounter is a concurrency-safe up/down counter.
type BasicUpDownCounter struct {
	val atomic.Int64
}

// Add adds n (positive or negative).
func (u *BasicUpDownCounter) Add(n int64) { u.val.Add(n) }

// Snapshot returns the current value.
func (u *BasicUpDownCounter) Snapshot() int64 { return u.val.Load() }

// BasicHistogram tracks count, sum, min and max of recorded values.
type BasicHistogram struct {
	mu    sync.Mutex
	count int64
	sum   float64
	min   float64
	max   float64
}

// Record adds a measurement.
func (h *BasicHistogram) Record(v float64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.count == 0 || v < h.min {
		h.min = v
	}
	if h.count == 0 || v > h.max {
		h.max = v
	}
	h.count++
	h.sum += v
}

// HistSnapshot is an immutable copy of a BasicHistogram.
type HistSnapshot struct {
	Count int64
	Sum   float64
	Min   float64
	Max   float64
	Mean  float64
}

// Snapshot returns the histogram state at the time of the call.
func (h *BasicHistogram) Snapshot() HistSnapshot {
	h.mu.Lock()
	s := HistSnapshot{Count: h.count, Sum: h.sum, Min: h.min, Max: h.max}
	h.mu.Unlock()
	if s.Count > 0 {
		s.Mean = s.Sum / float64(s.Count)
	}
	return s
}
