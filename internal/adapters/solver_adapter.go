package adapters

import (
	"context"
	"fmt"

	"github.com/firebase/genkit/go/core"
)

// SolverInput is the serializable input of the solver flow.
type SolverInput struct {
	Query    string `json:"query"`
	Evidence string `json:"evidence"`
}

// GenkitSolverAdapter uses a Genkit Flow to implement the Synthesizer
// interface.
type GenkitSolverAdapter struct {
	solverFlow *core.Flow[*SolverInput, string, struct{}]
}

// NewGenkitSolverAdapter creates a new adapter for the solver flow.
func NewGenkitSolverAdapter(solverFlow *core.Flow[*SolverInput, string, struct{}]) *GenkitSolverAdapter {
	return &GenkitSolverAdapter{solverFlow: solverFlow}
}

// Synthesize implements the plansolve.Synthesizer interface.
func (a *GenkitSolverAdapter) Synthesize(ctx context.Context, query string, evidence string) (string, error) {
	answer, err := a.solverFlow.Run(ctx, &SolverInput{Query: query, Evidence: evidence})
	if err != nil {
		return "", fmt.Errorf("solver flow execution failed: %w", err)
	}
	return answer, nil
}
