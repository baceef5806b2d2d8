package adapters

import (
	"context"
	"fmt"

	"github.com/plansolve/plansolve"
)

// GoToolAdapter adapts a standard Go function to the plansolve.Tool
// interface.
type GoToolAdapter struct {
	toolFunc    func(ctx context.Context, input string) (string, error)
	schema      map[string]interface{}
	name        string
	validator   func(input string) error
	description string
	category    string
}

// ToolOption represents an option for configuring a GoToolAdapter.
type ToolOption func(*GoToolAdapter)

// WithValidator sets a custom validator function for the tool.
func WithValidator(validator func(input string) error) ToolOption {
	return func(adapter *GoToolAdapter) {
		adapter.validator = validator
	}
}

// WithCategory sets the tool's category.
func WithCategory(category string) ToolOption {
	return func(adapter *GoToolAdapter) {
		adapter.category = category
		if adapter.schema != nil {
			adapter.schema["category"] = category
		}
	}
}

// WithDescription sets a detailed description for the tool.
func WithDescription(description string) ToolOption {
	return func(adapter *GoToolAdapter) {
		adapter.description = description
		if adapter.schema != nil {
			adapter.schema["description"] = description
		}
	}
}

// WithParameters sets the parameters description in the schema.
func WithParameters(parameters map[string]string) ToolOption {
	return func(adapter *GoToolAdapter) {
		if adapter.schema != nil {
			adapter.schema["parameters"] = parameters
		}
	}
}

// WithReturns sets the return value description in the schema.
func WithReturns(returns string) ToolOption {
	return func(adapter *GoToolAdapter) {
		if adapter.schema != nil {
			adapter.schema["returns"] = returns
		}
	}
}

// WithExamples adds usage examples to the schema.
func WithExamples(examples []string) ToolOption {
	return func(adapter *GoToolAdapter) {
		if adapter.schema != nil {
			adapter.schema["examples"] = examples
		}
	}
}

// NewGoToolAdapter creates a new adapter for a Go function.
func NewGoToolAdapter(
	name string,
	toolFunc func(ctx context.Context, input string) (string, error),
	options ...ToolOption) *GoToolAdapter {

	schema := map[string]interface{}{
		"name": name,
	}

	adapter := &GoToolAdapter{
		toolFunc: toolFunc,
		schema:   schema,
		name:     name,
		validator: func(input string) error {
			// Default validator just ensures input is not empty
			if input == "" {
				return fmt.Errorf("input cannot be empty")
			}
			return nil
		},
	}

	for _, option := range options {
		option(adapter)
	}

	return adapter
}

// Execute implements the plansolve.Tool interface.
func (a *GoToolAdapter) Execute(ctx context.Context, input string) (string, error) {
	if a.toolFunc == nil {
		return "", fmt.Errorf("tool function is nil")
	}

	if err := a.Validate(input); err != nil {
		return "", fmt.Errorf("input validation failed for %s: %w", a.name, err)
	}

	return a.toolFunc(ctx, input)
}

// Schema implements the plansolve.Tool interface.
func (a *GoToolAdapter) Schema() map[string]interface{} {
	return a.schema
}

// Validate implements the plansolve.Tool interface.
func (a *GoToolAdapter) Validate(input string) error {
	if a.validator != nil {
		return a.validator(input)
	}
	return nil
}

// Name implements the plansolve.Tool interface.
func (a *GoToolAdapter) Name() string {
	return a.name
}

// GoStreamingToolAdapter extends GoToolAdapter with a streaming variant
// that reports intermediate progress.
type GoStreamingToolAdapter struct {
	GoToolAdapter
	streamFunc func(ctx context.Context, input string, report plansolve.ProgressFunc) (string, error)
}

// NewGoStreamingToolAdapter creates an adapter for a Go function that
// reports progress while it runs. The plain Execute path runs the same
// function with reports discarded.
func NewGoStreamingToolAdapter(
	name string,
	streamFunc func(ctx context.Context, input string, report plansolve.ProgressFunc) (string, error),
	options ...ToolOption) *GoStreamingToolAdapter {

	base := NewGoToolAdapter(name, func(ctx context.Context, input string) (string, error) {
		return streamFunc(ctx, input, func(string, int) {})
	}, options...)

	return &GoStreamingToolAdapter{
		GoToolAdapter: *base,
		streamFunc:    streamFunc,
	}
}

// ExecuteStreaming implements the plansolve.StreamingTool interface.
func (a *GoStreamingToolAdapter) ExecuteStreaming(ctx context.Context, input string, report plansolve.ProgressFunc) (string, error) {
	if a.streamFunc == nil {
		return "", fmt.Errorf("tool function is nil")
	}
	if err := a.Validate(input); err != nil {
		return "", fmt.Errorf("input validation failed for %s: %w", a.name, err)
	}
	if report == nil {
		report = func(string, int) {}
	}
	return a.streamFunc(ctx, input, report)
}
