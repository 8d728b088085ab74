package scheduler

// Result is what a task step reports back to the scheduler.
type Result int

const (
	// Yield asks the scheduler to step the task again later.
	Yield Result = iota
	// Finished tells the scheduler the task is done and must not be stepped again.
	Finished
)

func (r Result) String() string {
	if r == Finished {
		return "finished"
	}
	return "yield"
}

// Task is the unit of schedulable work. Step must not block: when it cannot make
// progress it returns Yield and relies on being called again.
// A task is stepped by at most one worker at a time.
type Task interface {
	Step() Result
}

// Abandoner is implemented by tasks that want to know they were dropped at shutdown.
type Abandoner interface {
	Abandon(err error)
}

// Failer is implemented by tasks that want to know one of their steps panicked.
// The task is not stepped again after Fail.
type Failer interface {
	Fail(err error)
}

// TaskFunc adapts a plain function to Task.
type TaskFunc func() Result

// Step calls f.
func (f TaskFunc) Step() Result { return f() }
