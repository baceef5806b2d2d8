package adapters

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/plansolve/plansolve"
)

func TestGoToolAdapterExecute(t *testing.T) {
	adapter := NewGoToolAdapter("upper", func(ctx context.Context, input string) (string, error) {
		return strings.ToUpper(input), nil
	})

	out, err := adapter.Execute(context.Background(), "hello")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "HELLO" {
		t.Errorf("expected HELLO, got %s", out)
	}
	if adapter.Name() != "upper" {
		t.Errorf("expected name upper, got %s", adapter.Name())
	}
}

func TestGoToolAdapterDefaultValidatorRejectsEmpty(t *testing.T) {
	adapter := NewGoToolAdapter("noop", func(ctx context.Context, input string) (string, error) {
		return input, nil
	})

	if _, err := adapter.Execute(context.Background(), ""); err == nil {
		t.Error("expected validation error for empty input")
	}
}

func TestGoToolAdapterOptionsPopulateSchema(t *testing.T) {
	adapter := NewGoToolAdapter("demo",
		func(ctx context.Context, input string) (string, error) { return input, nil },
		WithDescription("does demo things"),
		WithCategory("testing"),
		WithParameters(map[string]string{"input": "anything"}),
		WithReturns("the input"),
		WithExamples([]string{"demo me"}),
	)

	schema := adapter.Schema()
	if schema["description"] != "does demo things" {
		t.Errorf("description not set: %v", schema["description"])
	}
	if schema["category"] != "testing" {
		t.Errorf("category not set: %v", schema["category"])
	}
	if schema["name"] != "demo" {
		t.Errorf("name not set: %v", schema["name"])
	}
}

func TestGoToolAdapterCustomValidator(t *testing.T) {
	adapter := NewGoToolAdapter("digits",
		func(ctx context.Context, input string) (string, error) { return input, nil },
		WithValidator(func(input string) error {
			if strings.Trim(input, "0123456789") != "" {
				return fmt.Errorf("digits only")
			}
			return nil
		}),
	)

	if err := adapter.Validate("12345"); err != nil {
		t.Errorf("unexpected validation error: %v", err)
	}
	if err := adapter.Validate("12a45"); err == nil {
		t.Error("expected validation error for non-digit input")
	}
}

func TestGoStreamingToolAdapter(t *testing.T) {
	adapter := NewGoStreamingToolAdapter("counter",
		func(ctx context.Context, input string, report plansolve.ProgressFunc) (string, error) {
			report("working", 50)
			report("done", 100)
			return "counted " + input, nil
		},
	)

	var reports []int
	out, err := adapter.ExecuteStreaming(context.Background(), "sheep", func(message string, progress int) {
		reports = append(reports, progress)
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "counted sheep" {
		t.Errorf("unexpected output: %q", out)
	}
	if len(reports) != 2 || reports[1] != 100 {
		t.Errorf("expected reports [50 100], got %v", reports)
	}

	// The plain Execute path runs the same function with reports dropped.
	out, err = adapter.Execute(context.Background(), "sheep")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "counted sheep" {
		t.Errorf("unexpected output via Execute: %q", out)
	}

	var _ plansolve.StreamingTool = adapter
}
