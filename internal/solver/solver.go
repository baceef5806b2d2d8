// Package solver assembles the evidence document from a task's step
// results and issues the single synthesis call that produces the final
// answer.
package solver

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/plansolve/plansolve"
)

// Solver implements the engine's synthesis service.
type Solver struct {
	capability plansolve.Synthesizer
}

// New creates a solver backed by the given synthesis capability.
func New(capability plansolve.Synthesizer) *Solver {
	return &Solver{capability: capability}
}

// Solve builds the evidence document and synthesizes the final answer.
// A capability failure is fatal to the task.
func (s *Solver) Solve(ctx context.Context, task *plansolve.Task) (string, error) {
	evidence := BuildEvidence(task.Steps(), task.Results())
	log.Printf("Synthesizing answer (task_id: %s, evidence_bytes: %d)", task.ID, len(evidence))

	answer, err := s.capability.Synthesize(ctx, task.Description, evidence)
	if err != nil {
		return "", plansolve.NewSynthesisError(err)
	}
	return answer, nil
}

// BuildEvidence renders one block per step in index order. Failed steps
// are included with their error text so the synthesis capability sees
// the partial picture. The output is deterministic for a given input.
func BuildEvidence(steps []plansolve.Step, results []plansolve.StepResult) string {
	byIndex := make(map[int]plansolve.StepResult, len(results))
	for _, result := range results {
		byIndex[result.Index] = result
	}

	var b strings.Builder
	for i, step := range steps {
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(step.Description)
		result, ok := byIndex[step.Index]
		switch {
		case !ok:
			b.WriteString("\nResult: (not executed)")
		case result.Success:
			fmt.Fprintf(&b, "\nResult: %s", result.Output)
		default:
			fmt.Fprintf(&b, "\nResult (failed): %s", result.Error)
		}
	}
	return b.String()
}
