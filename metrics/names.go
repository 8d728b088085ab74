package metrics

// Instrument names recorded by the scheduler.
const (
	StepsTotal          = "flow_steps_total"
	YieldsTotal         = "flow_yields_total"
	TasksFinishedTotal  = "flow_tasks_finished_total"
	TasksAbandonedTotal = "flow_tasks_abandoned_total"
	TasksPanickedTotal  = "flow_tasks_panicked_total"
	TasksInflight       = "flow_tasks_inflight"
	StepDurationSeconds = "flow_step_duration_seconds"
)

// Instrument names recorded by pipeline runs.
const (
	ExecutionsStartedTotal   = "flow_executions_started_total"
	ExecutionsCompletedTotal = "flow_executions_completed_total"
	ExecutionsFailedTotal    = "flow_executions_failed_total"
)
