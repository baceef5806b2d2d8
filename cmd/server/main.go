// main.go
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"

	"github.com/firebase/genkit/go/ai"
	"github.com/firebase/genkit/go/genkit"
	"github.com/firebase/genkit/go/plugins/googlegenai"

	"github.com/plansolve/plansolve"
	"github.com/plansolve/plansolve/internal/adapters"
	"github.com/plansolve/plansolve/internal/cache"
	"github.com/plansolve/plansolve/internal/planner"
	"github.com/plansolve/plansolve/internal/scheduler"
	"github.com/plansolve/plansolve/internal/solver"
	"github.com/plansolve/plansolve/internal/tools"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML config file")
	query := flag.String("query", "What is 5 plus 12, multiplied by 3?", "task to run")
	flag.Parse()

	ctx := context.Background()

	cfg := plansolve.DefaultConfig()
	if *configPath != "" {
		loaded, err := plansolve.LoadConfig(*configPath)
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
		cfg = loaded
	}

	if os.Getenv("GEMINI_API_KEY") == "" {
		log.Fatal("GEMINI_API_KEY environment variable not set.")
	}

	g, err := genkit.Init(ctx,
		genkit.WithPlugins(&googlegenai.GoogleAI{}),
		genkit.WithDefaultModel(cfg.Model),
	)
	if err != nil {
		log.Fatalf("Genkit initialization failed: %v", err)
	}

	registry := plansolve.NewRegistry(tools.SetupTools())

	// Planner flow: raw plan text out, parsed by the engine.
	plannerFlow := genkit.DefineFlow(g, "plannerFlow",
		func(ctx context.Context, input *plansolve.PlannerInput) (string, error) {
			return genkit.GenerateText(ctx, g, ai.WithPrompt(plannerPrompt(input)))
		},
	)

	// Solver flow: one synthesis call over the evidence document.
	solverFlow := genkit.DefineFlow(g, "solverFlow",
		func(ctx context.Context, input *adapters.SolverInput) (string, error) {
			prompt := fmt.Sprintf(
				"Answer the following request using only the evidence below.\n\nRequest: %s\n\nEvidence:\n%s\n\nAnswer:",
				input.Query, input.Evidence)
			return genkit.GenerateText(ctx, g, ai.WithPrompt(prompt))
		},
	)

	memCache := cache.NewInMemoryCache(cfg.PlanCacheTTL)

	engine, err := plansolve.New(
		plansolve.WithConfig(cfg),
		plansolve.WithRegistry(registry),
		plansolve.WithParser(planner.New(
			adapters.NewGenkitPlannerAdapter(plannerFlow),
			registry,
			planner.WithCache(memCache),
		)),
		plansolve.WithExecutor(scheduler.New(registry, scheduler.WithStepTimeout(cfg.StepTimeout))),
		plansolve.WithSolver(solver.New(adapters.NewGenkitSolverAdapter(solverFlow))),
	)
	if err != nil {
		log.Fatalf("Engine initialization failed: %v", err)
	}
	defer engine.Close()

	taskID, err := engine.Submit(*query)
	if err != nil {
		log.Fatalf("Task submission failed: %v", err)
	}
	log.Printf("Submitted task %s", taskID)

	events, unsubscribe, err := engine.Subscribe(taskID)
	if err != nil {
		log.Fatalf("Subscription failed: %v", err)
	}
	defer unsubscribe()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Printf("Interrupt received, cancelling task %s", taskID)
		if err := engine.Cancel(taskID); err != nil {
			log.Printf("Cancel failed: %v", err)
		}
	}()

	for event := range events {
		line, err := json.Marshal(event)
		if err != nil {
			log.Printf("Failed to encode event: %v", err)
			continue
		}
		fmt.Println(string(line))
	}

	snapshot, err := engine.Status(taskID)
	if err != nil {
		log.Fatalf("Status lookup failed: %v", err)
	}
	switch snapshot.Status {
	case plansolve.TaskStatusCompleted:
		fmt.Printf("\nAnswer: %s\n", snapshot.Answer)
	case plansolve.TaskStatusFailed:
		fmt.Printf("\nTask failed: %s\n", snapshot.Failure)
	default:
		fmt.Printf("\nTask ended with status: %s\n", snapshot.Status)
	}
}

// plannerPrompt teaches the plan grammar and the placeholder syntax.
func plannerPrompt(input *plansolve.PlannerInput) string {
	names := make([]string, 0, len(input.ToolSchema))
	for name := range input.ToolSchema {
		names = append(names, name)
	}
	sort.Strings(names)

	var toolList strings.Builder
	for _, name := range names {
		desc, _ := input.ToolSchema[name]["description"].(string)
		fmt.Fprintf(&toolList, "- %s: %s\n", name, desc)
	}

	return fmt.Sprintf(`Decompose the request into a numbered plan of tool calls.

Available tools:
%s
Output one step per line, exactly in this form:

Plan: <n>. <tool> <input>

Steps are numbered from 1 with no gaps. A step may use the output of an
earlier step by writing {stepN} in its input, where N is the earlier
step's number. Never reference the current or a later step. Output only
plan lines, nothing else.

Example request: "What is the population of France divided by 1000?"
Example plan:
Plan: 1. search population of France
Plan: 2. calculator {step1} / 1000

Request: %q
Plan:
`, toolList.String(), input.Query)
}
