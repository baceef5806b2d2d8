package plansolve

import (
	"context"
	"log"

	"github.com/plansolve/plansolve/internal/eventstream"
)

// components bundles the injected services the transitions call into.
type components struct {
	parser   Parser
	executor Executor
	solver   Solver
}

// newTaskStateMachine wires the lifecycle transitions. Failed and
// Cancelled have no transitions; the machine's Run loop owns entry into
// the terminal states.
func newTaskStateMachine(c components) *StateMachine {
	return &StateMachine{
		transitions: map[TaskStatus]StateTransition{
			TaskStatusQueued:    transitionQueued(),
			TaskStatusPlanning:  transitionPlanning(c.parser),
			TaskStatusExecuting: transitionExecuting(c.executor),
			TaskStatusSolving:   transitionSolving(c.solver),
		},
	}
}

// transitionQueued admits the task into planning. The concurrency slot
// was already acquired before the machine started running.
func transitionQueued() StateTransition {
	return func(ctx context.Context, stream *eventstream.Stream, task *Task) (TaskStatus, error) {
		return TaskStatusPlanning, nil
	}
}

// transitionPlanning generates and parses the plan.
func transitionPlanning(parser Parser) StateTransition {
	return func(ctx context.Context, stream *eventstream.Stream, task *Task) (TaskStatus, error) {
		log.Printf("Starting planning (task_id: %s)", task.ID)

		report := func(message string, progress int) {
			stream.Publish(eventstream.TypePlanningUpdate, map[string]interface{}{
				"message":  message,
				"progress": progress,
			})
		}

		steps, err := parser.Parse(ctx, task.Description, report)
		if err != nil {
			return TaskStatusFailed, err
		}
		task.SetSteps(steps)
		log.Printf("Plan ready (task_id: %s, steps: %d)", task.ID, len(steps))
		return TaskStatusExecuting, nil
	}
}

// transitionExecuting dispatches the parsed steps. Step failures are
// contained in their StepResults; the task still advances to solving so
// partial evidence can be synthesized.
func transitionExecuting(executor Executor) StateTransition {
	return func(ctx context.Context, stream *eventstream.Stream, task *Task) (TaskStatus, error) {
		log.Printf("Starting execution (task_id: %s, steps: %d)", task.ID, len(task.Steps()))

		emit := func(subtype string, data map[string]interface{}) {
			stream.Publish(eventstream.TypeExecutionUpdate, map[string]interface{}{
				"type": subtype,
				"data": data,
			})
		}

		results, cancelled := executor.Execute(ctx, task, emit)
		if cancelled {
			return TaskStatusCancelled, nil
		}
		log.Printf("Execution finished (task_id: %s, results: %d)", task.ID, len(results))
		return TaskStatusSolving, nil
	}
}

// transitionSolving synthesizes the final answer from the step results.
func transitionSolving(solver Solver) StateTransition {
	return func(ctx context.Context, stream *eventstream.Stream, task *Task) (TaskStatus, error) {
		log.Printf("Starting synthesis (task_id: %s)", task.ID)

		answer, err := solver.Solve(ctx, task)
		if err != nil {
			return TaskStatusFailed, err
		}
		task.SetAnswer(answer)
		return TaskStatusCompleted, nil
	}
}
