// Package planner turns a task description into a validated step
// sequence. The plan text comes from an injected planning capability;
// this package owns the grammar and the validation rules.
package planner

import (
	"context"
	"crypto/sha1"
	"encoding/json"
	"fmt"
	"log"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/plansolve/plansolve"
)

// planLinePattern matches one plan step: "Plan: <n>. <tool> <input>".
// Lines that do not match are ignored, so conversational filler in the
// capability's output degrades gracefully.
var planLinePattern = regexp.MustCompile(`^Plan:\s*([0-9]+)\.\s*(\S+)\s*(.*)$`)

const descriptionInputLimit = 50

// Option configures the parser.
type Option func(*Parser)

// WithCache enables caching of raw plan text keyed by the task
// description and the registered tool set.
func WithCache(cache plansolve.Cache) Option {
	return func(p *Parser) {
		p.cache = cache
	}
}

// Parser implements the engine's planning service.
type Parser struct {
	capability plansolve.Planner
	registry   *plansolve.Registry
	cache      plansolve.Cache
}

// New creates a parser backed by the given planning capability and tool
// registry.
func New(capability plansolve.Planner, registry *plansolve.Registry, opts ...Option) *Parser {
	p := &Parser{
		capability: capability,
		registry:   registry,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Parse generates, parses, and validates the plan for a task. The
// capability is called at most once; a cache hit skips it entirely.
// Validation failures reject the whole plan before any tool runs.
func (p *Parser) Parse(ctx context.Context, taskDescription string, report plansolve.ProgressFunc) ([]plansolve.Step, error) {
	if report == nil {
		report = func(string, int) {}
	}
	report("Generating plan", 10)

	key := p.cacheKey(taskDescription)
	if p.cache != nil {
		if cached, err := p.cache.Get(ctx, key); err == nil {
			if raw, ok := cached.(string); ok {
				// Re-validate against the current registry; a stale
				// cached plan must not bypass the tool checks.
				if steps, err := p.parsePlanText(raw); err == nil {
					log.Printf("Plan cache hit (key: %s)", key)
					report("Plan loaded from cache", 100)
					return steps, nil
				}
			}
		}
	}

	raw, err := p.capability.GeneratePlan(ctx, plansolve.PlannerInput{
		Query:      taskDescription,
		ToolSchema: p.registry.Schemas(),
	})
	if err != nil {
		if ctx.Err() != nil {
			return nil, plansolve.NewCancelledError("planning", err)
		}
		return nil, plansolve.NewInternalError("planning", "plan generation failed", err)
	}
	report("Plan generated", 80)

	steps, err := p.parsePlanText(raw)
	if err != nil {
		return nil, err
	}

	if p.cache != nil {
		if err := p.cache.Set(ctx, key, raw); err != nil {
			log.Printf("Failed to cache plan (key: %s): %v", key, err)
		}
	}
	report("Plan parsed", 100)
	return steps, nil
}

// parsePlanText applies the plan grammar and the validation rules:
// indices form a contiguous 1..N sequence, every tool is registered,
// and placeholder references point strictly backwards.
func (p *Parser) parsePlanText(raw string) ([]plansolve.Step, error) {
	var steps []plansolve.Step
	for _, line := range strings.Split(raw, "\n") {
		m := planLinePattern.FindStringSubmatch(strings.TrimSpace(line))
		if m == nil {
			continue
		}
		index, err := strconv.Atoi(m[1])
		if err != nil {
			return nil, plansolve.NewMalformedPlanError(fmt.Sprintf("invalid step index: %s", m[1]), err)
		}
		input := strings.TrimSpace(m[3])
		steps = append(steps, plansolve.Step{
			Index:       index,
			Tool:        m[2],
			Input:       input,
			Description: describeStep(index, m[2], input),
			Refs:        plansolve.ScanRefs(input),
		})
	}

	if len(steps) == 0 {
		return nil, plansolve.NewMalformedPlanError("no plan steps found in capability output", nil)
	}

	sort.Slice(steps, func(i, j int) bool { return steps[i].Index < steps[j].Index })
	for i, step := range steps {
		if step.Index != i+1 {
			return nil, plansolve.NewMalformedPlanError(
				fmt.Sprintf("step indices must run 1..%d without gaps or duplicates, got %d at position %d", len(steps), step.Index, i+1), nil)
		}
		if _, ok := p.registry.Get(step.Tool); !ok {
			return nil, plansolve.NewUnknownToolError(step.Index, step.Tool)
		}
		for _, ref := range step.Refs {
			if ref < 1 || ref >= step.Index {
				return nil, plansolve.NewInvalidReferenceError(step.Index, ref)
			}
		}
	}
	return steps, nil
}

// cacheKey derives a stable key from the description and the registered
// tool names, so a registry change invalidates prior plans.
func (p *Parser) cacheKey(taskDescription string) string {
	payload, err := json.Marshal(struct {
		Description string   `json:"description"`
		Tools       []string `json:"tools"`
	}{taskDescription, p.registry.Names()})
	if err != nil {
		return fmt.Sprintf("plan:%s", taskDescription)
	}
	return fmt.Sprintf("plan:%x", sha1.Sum(payload))
}

func describeStep(index int, tool, input string) string {
	if utf8.RuneCountInString(input) > descriptionInputLimit {
		input = string([]rune(input)[:descriptionInputLimit]) + "..."
	}
	return fmt.Sprintf("Step %d: %s %s", index, tool, input)
}
