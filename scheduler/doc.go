// Package scheduler runs cooperative tasks on a fixed set of worker goroutines.
//
// A Task exposes a single non-blocking Step. Workers pull tasks from a shared FIFO
// work queue and run one step at a time; a step that returns Yield puts the task
// back at the tail of the queue, a step that returns Finished drops it.
//
// Defaults
//   - Workers: runtime.GOMAXPROCS(0), at least 1
//   - Logger: zap.NewNop()
//   - Metrics: metrics.NoopProvider
//
// Shutdown
// Shutdown closes the work queue, waits for every worker to finish its current
// step and returns. Tasks still queued at that point are abandoned: they are not
// stepped again, and those implementing Abandoner are told so with ErrShutdown.
// A step that needs to stop its own pool calls Stop, which closes the queue
// without waiting; Shutdown from inside a step would wait for itself.
package scheduler
