// Package eventstream provides the per-task ordered event stream. One
// Stream exists for each task; the task's state machine is its only
// producer, so sequence numbers are strictly increasing without gaps.
package eventstream

import "time"

// Event types published by a task's lifecycle.
const (
	// TypeTaskStatus announces a lifecycle transition ({status, ...}).
	TypeTaskStatus = "task_status"
	// TypePlanningUpdate carries planner progress ({message, progress}).
	TypePlanningUpdate = "planning_update"
	// TypeExecutionUpdate wraps a nested step event ({type, data}).
	TypeExecutionUpdate = "execution_update"
	// TypeTaskCompleted is the terminal success event ({result}).
	TypeTaskCompleted = "task_completed"
	// TypeTaskFailed is the terminal failure event ({reason}).
	TypeTaskFailed = "task_failed"
	// TypeError reports a non-fatal anomaly observers should see.
	TypeError = "error"
)

// Nested event types carried inside execution_update data.
const (
	SubtypeStepStarted        = "step_started"
	SubtypeStepProgress       = "step_progress"
	SubtypeStepCompleted      = "step_completed"
	SubtypeExecutionCompleted = "execution_completed"
)

// Event is one entry in a task's append-only event sequence.
type Event struct {
	Type      string                 `json:"type"`
	TaskID    string                 `json:"task_id"`
	Seq       uint64                 `json:"seq"`
	Timestamp time.Time              `json:"timestamp"`
	Data      map[string]interface{} `json:"data,omitempty"`
}
