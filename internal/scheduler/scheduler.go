// Package scheduler dispatches a task's plan steps. Steps run strictly
// in index order; since placeholder references point backwards, every
// dependency is satisfied by the time a step is dispatched.
package scheduler

import (
	"context"
	"errors"
	"log"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/plansolve/plansolve"
	"github.com/plansolve/plansolve/internal/eventstream"
)

// Option configures the scheduler.
type Option func(*Scheduler)

// WithStepTimeout bounds each tool invocation. Zero disables the bound.
func WithStepTimeout(timeout time.Duration) Option {
	return func(s *Scheduler) {
		s.stepTimeout = timeout
	}
}

// Scheduler implements the engine's execution service.
type Scheduler struct {
	registry    *plansolve.Registry
	stepTimeout time.Duration
}

// New creates a scheduler that dispatches against the given registry.
func New(registry *plansolve.Registry, opts ...Option) *Scheduler {
	s := &Scheduler{registry: registry}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Execute runs the task's steps. A step failure is contained in its
// StepResult; dependents still run with the failure text substituted.
// Cancellation is checked between steps; a step interrupted mid-flight
// is recorded failed with reason "cancelled", while steps never
// dispatched get no result at all.
func (s *Scheduler) Execute(ctx context.Context, task *plansolve.Task, emit plansolve.EmitFunc) ([]plansolve.StepResult, bool) {
	if emit == nil {
		emit = func(string, map[string]interface{}) {}
	}

	steps := task.Steps()
	byIndex := make(map[int]plansolve.StepResult, len(steps))
	cancelled := false

	for _, step := range steps {
		if ctx.Err() != nil {
			cancelled = true
			break
		}

		resolved := plansolve.SubstitutePlaceholders(step.Input, func(index int) (string, bool) {
			result, ok := byIndex[index]
			if !ok {
				return "", false
			}
			return result.Text(), true
		})
		task.SetResolved(step.Index, resolved)

		log.Printf("Dispatching step (task_id: %s, step: %d, tool: %s)", task.ID, step.Index, step.Tool)
		emit(eventstream.SubtypeStepStarted, map[string]interface{}{
			"index": step.Index,
			"tool":  step.Tool,
			"input": resolved,
		})

		result := s.runStep(ctx, task.ID, step, resolved, emit)
		byIndex[step.Index] = result
		task.AppendResult(result)

		data := map[string]interface{}{
			"index":       result.Index,
			"success":     result.Success,
			"duration_ms": result.Duration.Milliseconds(),
		}
		if result.Success {
			data["output"] = result.Output
		} else {
			data["error"] = result.Error
			log.Printf("Step failed (task_id: %s, step: %d, tool: %s): %s", task.ID, step.Index, step.Tool, result.Error)
		}
		emit(eventstream.SubtypeStepCompleted, data)

		if !result.Success && ctx.Err() != nil {
			cancelled = true
			break
		}
	}

	emit(eventstream.SubtypeExecutionCompleted, map[string]interface{}{
		"cancelled": cancelled,
	})
	return task.Results(), cancelled
}

// runStep invokes one tool under the step timeout and classifies the
// outcome into a StepResult.
func (s *Scheduler) runStep(ctx context.Context, taskID string, step plansolve.Step, input string, emit plansolve.EmitFunc) plansolve.StepResult {
	result := plansolve.StepResult{Index: step.Index}
	start := time.Now()

	tool, ok := s.registry.Get(step.Tool)
	if !ok {
		// The parser validates tools against the same registry; this is
		// a wiring bug, not a plan problem.
		result.Error = plansolve.NewInternalError("execution", "tool missing from registry: "+step.Tool, nil).Error()
		result.Duration = time.Since(start)
		return result
	}

	if err := tool.Validate(input); err != nil {
		result.Error = plansolve.NewToolExecutionError(step.Tool, err).Error()
		result.Duration = time.Since(start)
		return result
	}

	stepCtx := ctx
	cancelStep := func() {}
	if s.stepTimeout > 0 {
		stepCtx, cancelStep = context.WithTimeout(ctx, s.stepTimeout)
	}
	defer cancelStep()

	var output string
	var runErr error
	if streaming, isStreaming := tool.(plansolve.StreamingTool); isStreaming {
		output, runErr = s.runStreaming(stepCtx, streaming, step.Index, input, emit)
	} else {
		output, runErr = tool.Execute(stepCtx, input)
	}
	result.Duration = time.Since(start)

	switch {
	case runErr == nil:
		result.Success = true
		result.Output = output
	case ctx.Err() != nil:
		result.Error = "cancelled"
	case errors.Is(stepCtx.Err(), context.DeadlineExceeded):
		result.Error = plansolve.NewToolTimeoutError(step.Tool, s.stepTimeout).Error()
	default:
		result.Error = plansolve.NewToolExecutionError(step.Tool, runErr).Error()
	}
	return result
}

type progressUpdate struct {
	message  string
	progress int
}

// runStreaming runs a streaming tool on a worker goroutine and forwards
// its reports from the calling goroutine, so all events for the task
// stay on a single producer.
func (s *Scheduler) runStreaming(ctx context.Context, tool plansolve.StreamingTool, index int, input string, emit plansolve.EmitFunc) (string, error) {
	updates := make(chan progressUpdate, 16)

	var output string
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer close(updates)
		out, err := tool.ExecuteStreaming(gctx, input, func(message string, progress int) {
			select {
			case updates <- progressUpdate{message: message, progress: progress}:
			case <-gctx.Done():
			}
		})
		output = out
		return err
	})

	for update := range updates {
		emit(eventstream.SubtypeStepProgress, map[string]interface{}{
			"index":    index,
			"message":  update.message,
			"progress": update.progress,
		})
	}
	return output, g.Wait()
}
