package plansolve

import (
	"sort"
	"sync"
	"time"
)

// TaskStatus represents the lifecycle state of a task.
type TaskStatus string

const (
	// TaskStatusQueued indicates the task is admitted but waiting for a slot.
	TaskStatusQueued TaskStatus = "queued"
	// TaskStatusPlanning indicates the plan is being generated and parsed.
	TaskStatusPlanning TaskStatus = "planning"
	// TaskStatusExecuting indicates the parsed steps are being dispatched.
	TaskStatusExecuting TaskStatus = "executing"
	// TaskStatusSolving indicates the final answer is being synthesized.
	TaskStatusSolving TaskStatus = "solving"
	// TaskStatusCompleted indicates the task finished with a final answer.
	TaskStatusCompleted TaskStatus = "completed"
	// TaskStatusFailed indicates the task aborted with a fatal error.
	TaskStatusFailed TaskStatus = "failed"
	// TaskStatusCancelled indicates the task was cancelled by request.
	TaskStatusCancelled TaskStatus = "cancelled"
)

// Terminal reports whether the status is a terminal lifecycle state.
func (s TaskStatus) Terminal() bool {
	return s == TaskStatusCompleted || s == TaskStatusFailed || s == TaskStatusCancelled
}

// Step is one tool invocation unit within a plan. Steps are immutable once
// parsed, except for Resolved which is populated at dispatch time.
type Step struct {
	Index       int    `json:"index"`
	Tool        string `json:"tool"`
	Input       string `json:"input"`
	Resolved    string `json:"resolved,omitempty"`
	Description string `json:"description"`
	Refs        []int  `json:"refs,omitempty"`
}

// StepResult records the outcome of executing one step. Exactly one result
// is produced per step and appended to the task in step-index order.
type StepResult struct {
	Index    int           `json:"index"`
	Success  bool          `json:"success"`
	Output   string        `json:"output,omitempty"`
	Error    string        `json:"error,omitempty"`
	Duration time.Duration `json:"duration"`
}

// Text returns the substitution text for dependent steps: the output on
// success, the error description otherwise.
func (r StepResult) Text() string {
	if r.Success {
		return r.Output
	}
	return r.Error
}

// PlannerInput carries the information the planning capability needs to
// produce a raw plan.
type PlannerInput struct {
	Query      string                            `json:"query"`
	ToolSchema map[string]map[string]interface{} `json:"tool_schema"`
}

// Task is the unit of work owned by the engine's task manager. All mutable
// fields are guarded; accessors return copies so observers never race with
// the scheduler.
type Task struct {
	ID          string
	Description string
	CreatedAt   time.Time

	mu          sync.Mutex
	status      TaskStatus
	steps       []Step
	results     []StepResult
	answer      string
	failure     string
	cancelReq   bool
	completedAt time.Time
}

// NewTask creates a task in the queued state.
func NewTask(id, description string) *Task {
	return &Task{
		ID:          id,
		Description: description,
		CreatedAt:   time.Now(),
		status:      TaskStatusQueued,
	}
}

// Status returns the task's current lifecycle state.
func (t *Task) Status() TaskStatus {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.status
}

func (t *Task) setStatus(status TaskStatus) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.status = status
	if status.Terminal() && t.completedAt.IsZero() {
		t.completedAt = time.Now()
	}
}

// SetSteps installs the parsed plan. Called once, on a successful parse.
func (t *Task) SetSteps(steps []Step) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.steps = append([]Step(nil), steps...)
}

// Steps returns a copy of the parsed steps.
func (t *Task) Steps() []Step {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]Step(nil), t.steps...)
}

// SetResolved records the placeholder-substituted input for one step.
func (t *Task) SetResolved(index int, resolved string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for i := range t.steps {
		if t.steps[i].Index == index {
			t.steps[i].Resolved = resolved
			return
		}
	}
}

// AppendResult records a step result, keeping the result list sorted by
// step index regardless of completion order.
func (t *Task) AppendResult(result StepResult) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.results = append(t.results, result)
	sort.Slice(t.results, func(i, j int) bool {
		return t.results[i].Index < t.results[j].Index
	})
}

// Results returns a copy of the recorded step results in index order.
func (t *Task) Results() []StepResult {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]StepResult(nil), t.results...)
}

// SetAnswer stores the synthesized final answer.
func (t *Task) SetAnswer(answer string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.answer = answer
}

// Answer returns the final answer, empty until the task is solved.
func (t *Task) Answer() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.answer
}

// SetFailure records the human-readable reason the task failed.
func (t *Task) SetFailure(reason string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.failure = reason
}

// Failure returns the failure reason, empty unless the task failed.
func (t *Task) Failure() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.failure
}

// RequestCancel flags the task for cooperative cancellation. The task
// context carries the actual cancellation signal; the flag lets the state
// machine distinguish an operator cancel from other context errors.
func (t *Task) RequestCancel() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.cancelReq = true
}

// CancelRequested reports whether cancellation has been requested.
func (t *Task) CancelRequested() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.cancelReq
}

// Snapshot returns a point-in-time view of the task for status queries.
func (t *Task) Snapshot() TaskSnapshot {
	t.mu.Lock()
	defer t.mu.Unlock()

	completed, failed := 0, 0
	for _, r := range t.results {
		if r.Success {
			completed++
		} else {
			failed++
		}
	}
	total := len(t.steps)
	progress := 0.0
	if total > 0 {
		progress = float64(len(t.results)) / float64(total) * 100
	}

	duration := time.Since(t.CreatedAt)
	if !t.completedAt.IsZero() {
		duration = t.completedAt.Sub(t.CreatedAt)
	}

	return TaskSnapshot{
		ID:             t.ID,
		Description:    t.Description,
		Status:         t.status,
		CreatedAt:      t.CreatedAt,
		StepsTotal:     total,
		StepsCompleted: completed,
		StepsFailed:    failed,
		Progress:       progress,
		Answer:         t.answer,
		Failure:        t.failure,
		Duration:       duration,
	}
}

// TaskSnapshot is the read-only status view exposed by the engine's control
// surface.
type TaskSnapshot struct {
	ID             string        `json:"id"`
	Description    string        `json:"description"`
	Status         TaskStatus    `json:"status"`
	CreatedAt      time.Time     `json:"created_at"`
	StepsTotal     int           `json:"steps_total"`
	StepsCompleted int           `json:"steps_completed"`
	StepsFailed    int           `json:"steps_failed"`
	Progress       float64       `json:"progress"`
	Answer         string        `json:"answer,omitempty"`
	Failure        string        `json:"failure,omitempty"`
	Duration       time.Duration `json:"duration"`
}

// ProgressFunc receives coarse progress updates from the parser or a
// streaming tool. progress is a percentage in [0, 100].
type ProgressFunc func(message string, progress int)

// EmitFunc receives the nested execution events produced by the executor
// (step_started, step_progress, step_completed, execution_completed).
type EmitFunc func(subtype string, data map[string]interface{})
