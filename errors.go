package flow

import (
	"errors"
	"fmt"
)

const Namespace = "flow"

var (
	ErrNotRunnable   = errors.New(Namespace + ": chain is not closed on both ends")
	ErrClosedEnd     = errors.New(Namespace + ": cannot compose onto a closed end")
	ErrTypeMismatch  = errors.New(Namespace + ": item types of composed chains do not match")
	ErrInvalidStage  = errors.New(Namespace + ": callable does not fit the declared stage kind")
	ErrNilScheduler  = errors.New(Namespace + ": scheduler is nil")
	ErrAborted       = errors.New(Namespace + ": execution aborted")
	ErrStagePanicked = errors.New(Namespace + ": stage panicked")
	ErrInvalidConfig = errors.New(Namespace + ": invalid configuration")
	ErrSinkUsed      = errors.New(Namespace + ": single-use sink has already been launched")
)

// StageError is the resolution error of an execution ended by one of its stages.
// It wraps ErrStagePanicked or ErrAborted together with the scheduler's cause.
type StageError struct {
	// Stage is the name of the stage whose task failed or was dropped.
	Stage string
	// Execution is the id of the failed run.
	Execution string

	err error
}

func (e *StageError) Error() string { return fmt.Sprintf("stage %q: %v", e.Stage, e.err) }
func (e *StageError) Unwrap() error { return e.err }
