package plansolve

import (
	"context"
	"log"

	"github.com/plansolve/plansolve/internal/eventstream"
)

// StateTransition performs the work of one lifecycle state and returns
// the state to enter next.
type StateTransition func(ctx context.Context, stream *eventstream.Stream, task *Task) (TaskStatus, error)

// StateMachine drives a task through its lifecycle. The machine owns the
// task's event stream for the duration of the run: it is the single
// producer, which keeps the sequence numbers gapless.
type StateMachine struct {
	transitions map[TaskStatus]StateTransition
}

// Run advances the task until it reaches a terminal state, then closes
// the stream. Cancellation is checked between transitions and mapped to
// the cancelled terminal state rather than a failure.
func (m *StateMachine) Run(ctx context.Context, stream *eventstream.Stream, task *Task) {
	defer stream.Close()

	for {
		status := task.Status()
		if status.Terminal() {
			return
		}
		if ctx.Err() != nil || task.CancelRequested() {
			m.cancel(stream, task)
			return
		}

		transition, ok := m.transitions[status]
		if !ok {
			m.fail(stream, task, NewInternalError(string(status), "no transition registered for state", nil))
			return
		}

		next, err := transition(ctx, stream, task)
		if err != nil {
			if ctx.Err() != nil || task.CancelRequested() {
				m.cancel(stream, task)
				return
			}
			m.fail(stream, task, err)
			return
		}
		m.advance(stream, task, next)
	}
}

// advance moves the task into next and publishes the transition.
func (m *StateMachine) advance(stream *eventstream.Stream, task *Task, next TaskStatus) {
	task.setStatus(next)
	stream.Publish(eventstream.TypeTaskStatus, map[string]interface{}{
		"status": string(next),
	})
	if next == TaskStatusCompleted {
		stream.Publish(eventstream.TypeTaskCompleted, map[string]interface{}{
			"result": task.Answer(),
		})
	}
}

// fail records the failure reason and publishes the terminal events.
func (m *StateMachine) fail(stream *eventstream.Stream, task *Task, err error) {
	log.Printf("Task failed (task_id: %s, status: %s): %v", task.ID, task.Status(), err)
	task.SetFailure(err.Error())
	task.setStatus(TaskStatusFailed)
	stream.Publish(eventstream.TypeTaskStatus, map[string]interface{}{
		"status": string(TaskStatusFailed),
	})
	stream.Publish(eventstream.TypeTaskFailed, map[string]interface{}{
		"reason": err.Error(),
	})
}

// cancel moves the task to the cancelled terminal state. Cancellation is
// a normal transition, not an error event.
func (m *StateMachine) cancel(stream *eventstream.Stream, task *Task) {
	log.Printf("Task cancelled (task_id: %s, status: %s)", task.ID, task.Status())
	task.setStatus(TaskStatusCancelled)
	stream.Publish(eventstream.TypeTaskStatus, map[string]interface{}{
		"status": string(TaskStatusCancelled),
	})
}
