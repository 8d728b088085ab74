package scheduler

import "errors"

const Namespace = "scheduler"

var (
	ErrPoolClosed    = errors.New(Namespace + ": cannot submit tasks to a closed pool")
	ErrShutdown      = errors.New(Namespace + ": task abandoned at shutdown")
	ErrTaskPanicked  = errors.New(Namespace + ": task step panicked")
	ErrInvalidConfig = errors.New(Namespace + ": invalid configuration")
)
