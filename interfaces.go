package plansolve

import "context"

// Planner is the external planning capability: prompt in, raw plan text out.
// Implementations typically wrap an LLM call (see internal/adapters).
type Planner interface {
	// GeneratePlan produces the raw plan text for the given query and tool
	// schemas. The text is parsed by the engine; the capability never sees
	// parsed steps.
	GeneratePlan(ctx context.Context, input PlannerInput) (string, error)
}

// Synthesizer is the external answer-synthesis capability.
type Synthesizer interface {
	// Synthesize produces the final answer from the original query and the
	// assembled evidence document.
	Synthesize(ctx context.Context, query string, evidence string) (string, error)
}

// Parser turns a task description into a validated step sequence. The
// engine invokes it exactly once per task during the planning stage.
type Parser interface {
	Parse(ctx context.Context, taskDescription string, report ProgressFunc) ([]Step, error)
}

// Executor dispatches a task's steps and records their results on the
// task. It returns the results in step-index order and whether execution
// stopped because of cancellation.
type Executor interface {
	Execute(ctx context.Context, task *Task, emit EmitFunc) ([]StepResult, bool)
}

// Solver assembles evidence from the task's results and produces the
// final answer.
type Solver interface {
	Solve(ctx context.Context, task *Task) (string, error)
}

// Tool defines the interface for a callable capability.
type Tool interface {
	// Execute runs the tool with the given input and returns its output.
	Execute(ctx context.Context, input string) (string, error)

	// Schema returns a description of the tool's capabilities, parameters,
	// and usage, shown to the planning capability.
	Schema() map[string]interface{}

	// Validate checks if the provided input is valid for this tool.
	Validate(input string) error

	// Name returns the registered name of the tool.
	Name() string
}

// StreamingTool is a Tool that reports intermediate progress while it
// runs. The scheduler forwards reports as step_progress events.
type StreamingTool interface {
	Tool

	ExecuteStreaming(ctx context.Context, input string, report ProgressFunc) (string, error)
}

// Cache defines the interface for caching planner results.
type Cache interface {
	// Get retrieves a value from the cache.
	Get(ctx context.Context, key string) (interface{}, error)

	// Set stores a value in the cache.
	Set(ctx context.Context, key string, value interface{}) error
}
