// Package flow builds and runs dataflow pipelines of cooperative stages
// connected by bounded queues.
//
// Stages
// A stage is declared by its kind, which fixes how it consumes and produces items:
//   - Map(func(I) O): one in, one out
//   - Expand(func(I, Emitter[O])): one in, any number out
//   - Reduce(func(Input[I]) (O, bool)): many in, one out
//   - Transform(func(Input[I], Emitter[O])): many in, many out
//
// NewStage does the same from a Kind tag and an untyped callable.
//
// Chains
// Stages compose into immutable chains typed by which ends are still open:
//   - Fragment[I, O]: no source and no sink; Then joins two fragments
//   - Source[T]: From, Generate, FromSeq, FromQueue, FromChan, Via
//   - Sink[T]: Collect, ForEach, Drain, IntoQueue, IntoChan, Fragment.Into
//   - Plan: Source.Into(sink), the only chain that runs
//
// Segment is the erased view of all four; Compose joins segments with the type
// checks done at composition time.
//
// Running
// Plan.Run allocates one bounded queue per edge (WithQueueCapacity, default
// 1024) and one task per stage, and submits them to a scheduler.Pool. Tasks never
// block: a task that cannot make progress yields and is stepped again later, so
// any number of plans can share a pool with a single worker.
//
// The returned Execution resolves once the sink has seen its input closed and
// drained. A panicking stage resolves it with ErrStagePanicked, a pool shut down
// under a running plan with ErrAborted; in both cases the remaining tasks of the
// run stop at their next step.
package flow
