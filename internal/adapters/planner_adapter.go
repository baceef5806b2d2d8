package adapters

import (
	"context"
	"fmt"

	"github.com/firebase/genkit/go/core"

	"github.com/plansolve/plansolve"
)

// GenkitPlannerAdapter uses a Genkit Flow to implement the Planner
// interface. The flow returns the raw plan text; parsing and validation
// stay inside the engine.
type GenkitPlannerAdapter struct {
	plannerFlow *core.Flow[*plansolve.PlannerInput, string, struct{}]
}

// NewGenkitPlannerAdapter creates a new adapter for the planner flow.
func NewGenkitPlannerAdapter(plannerFlow *core.Flow[*plansolve.PlannerInput, string, struct{}]) *GenkitPlannerAdapter {
	return &GenkitPlannerAdapter{plannerFlow: plannerFlow}
}

// GeneratePlan implements the plansolve.Planner interface.
func (a *GenkitPlannerAdapter) GeneratePlan(ctx context.Context, input plansolve.PlannerInput) (string, error) {
	raw, err := a.plannerFlow.Run(ctx, &input)
	if err != nil {
		return "", fmt.Errorf("planner flow execution failed: %w", err)
	}
	if raw == "" {
		return "", fmt.Errorf("planner flow returned empty plan text")
	}
	return raw, nil
}
