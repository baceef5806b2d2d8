// Package plansolve orchestrates plan/execute/solve pipelines: a
// natural-language task is decomposed into a structured plan of tool
// invocations, the steps are executed with inter-step data dependencies
// resolved, progress is streamed as ordered events, and a final answer
// is synthesized from the collected results.
package plansolve

import (
	"sync"

	"github.com/sourcegraph/conc/pool"
)

// Engine is the public entry point. It owns the tool registry, the task
// manager surface, and the per-task lifecycle machinery. The planning
// and synthesis capabilities are injected through the Parser and Solver
// services.
type Engine struct {
	config   Config
	registry *Registry
	parser   Parser
	executor Executor
	solver   Solver

	pool *pool.Pool
	wg   sync.WaitGroup

	mu      sync.Mutex
	entries map[string]*taskEntry
	closed  bool
}

// Option configures the engine.
type Option func(*Engine)

// WithConfig sets the engine configuration.
func WithConfig(config Config) Option {
	return func(e *Engine) {
		e.config = config
	}
}

// WithTools builds the read-only registry from a tool map.
func WithTools(tools map[string]Tool) Option {
	return func(e *Engine) {
		e.registry = NewRegistry(tools)
	}
}

// WithRegistry sets a pre-built registry.
func WithRegistry(registry *Registry) Option {
	return func(e *Engine) {
		e.registry = registry
	}
}

// WithParser sets the planning service.
func WithParser(parser Parser) Option {
	return func(e *Engine) {
		e.parser = parser
	}
}

// WithExecutor sets the step execution service.
func WithExecutor(executor Executor) Option {
	return func(e *Engine) {
		e.executor = executor
	}
}

// WithSolver sets the synthesis service.
func WithSolver(solver Solver) Option {
	return func(e *Engine) {
		e.solver = solver
	}
}

// New creates an engine, validating that every required component is
// present.
func New(opts ...Option) (*Engine, error) {
	e := &Engine{
		config:  DefaultConfig(),
		entries: make(map[string]*taskEntry),
	}
	for _, opt := range opts {
		opt(e)
	}

	if err := e.config.validate(); err != nil {
		return nil, err
	}
	if e.registry == nil || e.registry.Len() == 0 {
		return nil, NewConfigurationError("at least one tool must be registered", nil)
	}
	if e.parser == nil {
		return nil, NewConfigurationError("parser is required", nil)
	}
	if e.executor == nil {
		return nil, NewConfigurationError("executor is required", nil)
	}
	if e.solver == nil {
		return nil, NewConfigurationError("solver is required", nil)
	}

	e.pool = pool.New().WithMaxGoroutines(e.config.MaxConcurrentTasks)
	return e, nil
}

// Registry returns the engine's tool registry.
func (e *Engine) Registry() *Registry {
	return e.registry
}

// ListTools returns the registered tool names.
func (e *Engine) ListTools() []string {
	return e.registry.Names()
}

// ToolSchemas returns the schema of every registered tool.
func (e *Engine) ToolSchemas() map[string]map[string]interface{} {
	return e.registry.Schemas()
}
