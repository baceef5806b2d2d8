package plansolve

import (
	"context"
	"fmt"
	"log"

	"github.com/google/uuid"

	"github.com/plansolve/plansolve/internal/eventstream"
)

// taskEntry bundles a task with its stream and cancel func. Entries are
// retained after the task terminates so status queries and late
// subscribers keep working; purging is an external concern.
type taskEntry struct {
	task   *Task
	stream *eventstream.Stream
	cancel context.CancelFunc
}

// Submit admits a task and returns its ID. The task starts in the
// queued state and waits for a concurrency slot; the lifecycle runs on
// its own goroutine.
func (e *Engine) Submit(description string) (string, error) {
	if description == "" {
		return "", NewConfigurationError("task description cannot be empty", nil)
	}

	taskCtx, cancel := context.WithCancel(context.Background())

	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		cancel()
		return "", NewInternalError("admission", "engine is shut down", nil)
	}
	id := uuid.New().String()
	task := NewTask(id, description)
	stream := eventstream.New(id, eventstream.WithBufferSize(e.config.EventBufferSize))
	e.entries[id] = &taskEntry{task: task, stream: stream, cancel: cancel}
	// Registered under the same lock as the closed check, so Close
	// cannot start waiting between the check and the handoff.
	e.wg.Add(1)
	e.mu.Unlock()

	stream.Publish(eventstream.TypeTaskStatus, map[string]interface{}{
		"status": string(TaskStatusQueued),
	})
	log.Printf("Task submitted (task_id: %s)", id)

	machine := newTaskStateMachine(components{
		parser:   e.parser,
		executor: e.executor,
		solver:   e.solver,
	})

	// pool.Go blocks while the pool is at its ceiling, so the handoff
	// runs on its own goroutine and the task stays queued meanwhile.
	go func() {
		defer e.wg.Done()
		e.pool.Go(func() {
			defer cancel()
			machine.Run(taskCtx, stream, task)
		})
	}()

	return id, nil
}

// Status returns a point-in-time snapshot of the task.
func (e *Engine) Status(taskID string) (TaskSnapshot, error) {
	entry, err := e.entry(taskID)
	if err != nil {
		return TaskSnapshot{}, err
	}
	return entry.task.Snapshot(), nil
}

// Cancel requests cooperative cancellation of a task. Terminal tasks are
// unaffected.
func (e *Engine) Cancel(taskID string) error {
	entry, err := e.entry(taskID)
	if err != nil {
		return err
	}
	if entry.task.Status().Terminal() {
		return nil
	}
	log.Printf("Cancellation requested (task_id: %s)", taskID)
	entry.task.RequestCancel()
	entry.cancel()
	return nil
}

// Subscribe attaches a consumer to the task's event stream. The channel
// replays history from the first event, then carries live events, and
// closes after the terminal event. The returned func detaches the
// consumer.
func (e *Engine) Subscribe(taskID string) (<-chan eventstream.Event, func(), error) {
	entry, err := e.entry(taskID)
	if err != nil {
		return nil, nil, err
	}
	ch, cancel := entry.stream.Subscribe()
	return ch, cancel, nil
}

// ListActive returns snapshots of every non-terminal task.
func (e *Engine) ListActive() []TaskSnapshot {
	e.mu.Lock()
	defer e.mu.Unlock()

	active := make([]TaskSnapshot, 0)
	for _, entry := range e.entries {
		if !entry.task.Status().Terminal() {
			active = append(active, entry.task.Snapshot())
		}
	}
	return active
}

// Close stops admitting tasks and waits for every running task to reach
// a terminal state. It does not cancel running tasks.
func (e *Engine) Close() {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return
	}
	e.closed = true
	e.mu.Unlock()

	e.wg.Wait()
	e.pool.Wait()
	log.Printf("Engine shut down")
}

func (e *Engine) entry(taskID string) (*taskEntry, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	entry, ok := e.entries[taskID]
	if !ok {
		return nil, NewInternalError("lookup", fmt.Sprintf("unknown task: %s", taskID), nil)
	}
	return entry, nil
}
