package tools

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/plansolve/plansolve"
)

func TestCalculatorEvaluatesExpressions(t *testing.T) {
	calc := NewCalculatorTool()

	cases := map[string]string{
		"2 + 2":         "4",
		"(120 / 4) * 3": "90",
		"10 / 4":        "2.5",
	}
	for input, want := range cases {
		got, err := calc.Execute(context.Background(), input)
		if err != nil {
			t.Errorf("%s: unexpected error: %v", input, err)
			continue
		}
		if got != want {
			t.Errorf("%s: expected %s, got %s", input, want, got)
		}
	}
}

func TestCalculatorRejectsBadInput(t *testing.T) {
	calc := NewCalculatorTool()

	for _, input := range []string{"", "   ", "2 + x", "os.exit()"} {
		if err := calc.Validate(input); err == nil {
			t.Errorf("expected validation error for %q", input)
		}
	}
	if _, err := calc.Execute(context.Background(), "2 +"); err == nil {
		t.Error("expected error for incomplete expression")
	}
}

func TestCalculatorReportsProgress(t *testing.T) {
	calc, ok := NewCalculatorTool().(plansolve.StreamingTool)
	if !ok {
		t.Fatal("calculator should implement StreamingTool")
	}

	var last int
	out, err := calc.ExecuteStreaming(context.Background(), "6 * 7", func(message string, progress int) {
		last = progress
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "42" {
		t.Errorf("expected 42, got %s", out)
	}
	if last != 100 {
		t.Errorf("expected final progress 100, got %d", last)
	}
}

func TestSearchUsesAbstractText(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("q"); got != "go language" {
			t.Errorf("expected query 'go language', got %q", got)
		}
		w.Write([]byte(`{"AbstractText": "Go is a statically typed language.", "Heading": "Go"}`))
	}))
	defer server.Close()

	orig := searchBaseURL
	searchBaseURL = server.URL
	defer func() { searchBaseURL = orig }()

	out, err := NewSearchTool().Execute(context.Background(), "go language")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "Go is a statically typed language." {
		t.Errorf("unexpected output: %q", out)
	}
}

func TestSearchFallsBackToRelatedTopics(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"AbstractText": "", "RelatedTopics": [{"Text": "first"}, {"Text": "second"}]}`))
	}))
	defer server.Close()

	orig := searchBaseURL
	searchBaseURL = server.URL
	defer func() { searchBaseURL = orig }()

	out, err := NewSearchTool().Execute(context.Background(), "obscure query")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, "first") || !strings.Contains(out, "second") {
		t.Errorf("expected related topics in output, got %q", out)
	}
}

func TestWikipediaSummary(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/page/summary/Alan_Turing") {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Write([]byte(`{"title": "Alan Turing", "extract": "Alan Turing was a mathematician."}`))
	}))
	defer server.Close()

	orig := wikipediaBaseURL
	wikipediaBaseURL = server.URL
	defer func() { wikipediaBaseURL = orig }()

	out, err := NewWikipediaTool().Execute(context.Background(), "Alan Turing")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "Alan Turing was a mathematician." {
		t.Errorf("unexpected output: %q", out)
	}

	if _, err := NewWikipediaTool().Execute(context.Background(), "No Such Page Ever"); err == nil {
		t.Error("expected error for missing page")
	}
}

func TestSetupToolsRegistersExpectedNames(t *testing.T) {
	registry := plansolve.NewRegistry(SetupTools())
	for _, name := range []string{"calculator", "search", "wikipedia"} {
		tool, ok := registry.Get(name)
		if !ok {
			t.Errorf("expected tool %s registered", name)
			continue
		}
		if tool.Name() != name {
			t.Errorf("tool %s reports name %s", name, tool.Name())
		}
		if _, ok := tool.Schema()["description"]; !ok {
			t.Errorf("tool %s has no description in schema", name)
		}
	}
}
