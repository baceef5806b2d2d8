package solver

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/plansolve/plansolve"
)

type stubSynthesizer struct {
	answer   string
	err      error
	query    string
	evidence string
}

func (s *stubSynthesizer) Synthesize(ctx context.Context, query string, evidence string) (string, error) {
	s.query = query
	s.evidence = evidence
	return s.answer, s.err
}

func sampleTask() *plansolve.Task {
	task := plansolve.NewTask("task-1", "how tall is everest in feet")
	task.SetSteps([]plansolve.Step{
		{Index: 1, Tool: "search", Input: "everest height meters", Description: "Step 1: search everest height meters"},
		{Index: 2, Tool: "calculator", Input: "{step1} * 3.281", Description: "Step 2: calculator {step1} * 3.281"},
	})
	task.AppendResult(plansolve.StepResult{Index: 1, Success: true, Output: "8849"})
	task.AppendResult(plansolve.StepResult{Index: 2, Success: true, Output: "29032"})
	return task
}

func TestBuildEvidenceIsDeterministic(t *testing.T) {
	task := sampleTask()
	first := BuildEvidence(task.Steps(), task.Results())
	second := BuildEvidence(task.Steps(), task.Results())
	if first != second {
		t.Fatal("evidence assembly is not deterministic")
	}

	wantOrder := []string{"Step 1:", "8849", "Step 2:", "29032"}
	pos := 0
	for _, needle := range wantOrder {
		i := strings.Index(first[pos:], needle)
		if i < 0 {
			t.Fatalf("expected %q in order within evidence:\n%s", needle, first)
		}
		pos += i
	}
}

func TestBuildEvidenceIncludesFailures(t *testing.T) {
	task := plansolve.NewTask("task-1", "q")
	task.SetSteps([]plansolve.Step{
		{Index: 1, Tool: "search", Input: "a", Description: "Step 1: search a"},
		{Index: 2, Tool: "search", Input: "b", Description: "Step 2: search b"},
	})
	task.AppendResult(plansolve.StepResult{Index: 1, Success: false, Error: "connection refused"})
	task.AppendResult(plansolve.StepResult{Index: 2, Success: true, Output: "found it"})

	evidence := BuildEvidence(task.Steps(), task.Results())
	if !strings.Contains(evidence, "Result (failed): connection refused") {
		t.Errorf("expected failure text in evidence:\n%s", evidence)
	}
	if !strings.Contains(evidence, "Result: found it") {
		t.Errorf("expected success output in evidence:\n%s", evidence)
	}
}

func TestSolvePassesQueryAndEvidence(t *testing.T) {
	capability := &stubSynthesizer{answer: "29,032 feet"}
	s := New(capability)

	answer, err := s.Solve(context.Background(), sampleTask())
	if err != nil {
		t.Fatalf("unexpected solve error: %v", err)
	}
	if answer != "29,032 feet" {
		t.Errorf("expected capability answer verbatim, got %q", answer)
	}
	if capability.query != "how tall is everest in feet" {
		t.Errorf("expected original query passed through, got %q", capability.query)
	}
	if !strings.Contains(capability.evidence, "8849") {
		t.Errorf("expected evidence passed to capability, got %q", capability.evidence)
	}
}

func TestSolveWrapsCapabilityFailure(t *testing.T) {
	s := New(&stubSynthesizer{err: fmt.Errorf("model overloaded")})

	_, err := s.Solve(context.Background(), sampleTask())
	if !plansolve.HasCode(err, plansolve.ErrCodeSynthesis) {
		t.Fatalf("expected %s, got %v", plansolve.ErrCodeSynthesis, err)
	}
}
