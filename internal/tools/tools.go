// Package tools provides the built-in tool set: an expression
// calculator, a web search lookup, and a Wikipedia summary lookup.
package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/Knetic/govaluate"

	"github.com/plansolve/plansolve"
	"github.com/plansolve/plansolve/internal/adapters"
)

// Base URLs are package variables so tests can point them at a local
// server.
var (
	searchBaseURL    = "https://api.duckduckgo.com"
	wikipediaBaseURL = "https://en.wikipedia.org/api/rest_v1"
)

var httpClient = &http.Client{Timeout: 15 * time.Second}

// calculatorInputPattern restricts calculator input to arithmetic
// expressions.
var calculatorInputPattern = regexp.MustCompile(`^[0-9+\-*/%^().,\s]+$`)

// SetupTools creates the built-in tool registry map.
func SetupTools() map[string]plansolve.Tool {
	return map[string]plansolve.Tool{
		"calculator": NewCalculatorTool(),
		"search":     NewSearchTool(),
		"wikipedia":  NewWikipediaTool(),
	}
}

// NewCalculatorTool evaluates arithmetic expressions.
func NewCalculatorTool() plansolve.Tool {
	return adapters.NewGoStreamingToolAdapter("calculator", calculate,
		adapters.WithDescription("Evaluates an arithmetic expression and returns the numeric result."),
		adapters.WithCategory("math"),
		adapters.WithParameters(map[string]string{
			"input": "An arithmetic expression, e.g. (2 + 3) * 4",
		}),
		adapters.WithReturns("The numeric result as a string."),
		adapters.WithExamples([]string{"2 + 2", "(120 / 4) * 3"}),
		adapters.WithValidator(func(input string) error {
			if strings.TrimSpace(input) == "" {
				return fmt.Errorf("expression cannot be empty")
			}
			if !calculatorInputPattern.MatchString(input) {
				return fmt.Errorf("expression contains unsupported characters")
			}
			return nil
		}),
	)
}

func calculate(ctx context.Context, input string, report plansolve.ProgressFunc) (string, error) {
	report("Parsing expression", 20)
	expr, err := govaluate.NewEvaluableExpression(input)
	if err != nil {
		return "", fmt.Errorf("invalid expression: %w", err)
	}

	report("Evaluating", 60)
	value, err := expr.Evaluate(nil)
	if err != nil {
		return "", fmt.Errorf("evaluation failed: %w", err)
	}

	report("Done", 100)
	switch v := value.(type) {
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), nil
	default:
		return fmt.Sprintf("%v", v), nil
	}
}

// NewSearchTool queries the DuckDuckGo instant-answer API.
func NewSearchTool() plansolve.Tool {
	return adapters.NewGoStreamingToolAdapter("search", search,
		adapters.WithDescription("Searches the web and returns a short summary of the top result."),
		adapters.WithCategory("information"),
		adapters.WithParameters(map[string]string{
			"input": "The search query.",
		}),
		adapters.WithReturns("A text summary of the search results."),
		adapters.WithExamples([]string{"capital of France", "speed of light in m/s"}),
	)
}

type searchResponse struct {
	AbstractText  string `json:"AbstractText"`
	Heading       string `json:"Heading"`
	RelatedTopics []struct {
		Text string `json:"Text"`
	} `json:"RelatedTopics"`
}

func search(ctx context.Context, input string, report plansolve.ProgressFunc) (string, error) {
	report("Searching", 10)

	query := url.Values{}
	query.Set("q", input)
	query.Set("format", "json")
	query.Set("no_html", "1")
	query.Set("skip_disambig", "1")

	body, status, err := httpGet(ctx, searchBaseURL+"/?"+query.Encode())
	if err != nil {
		return "", err
	}
	if status != http.StatusOK {
		return "", fmt.Errorf("search request failed with status %d", status)
	}
	report("Parsing results", 70)

	var parsed searchResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("failed to decode search response: %w", err)
	}

	report("Done", 100)
	if parsed.AbstractText != "" {
		return parsed.AbstractText, nil
	}
	var topics []string
	for _, topic := range parsed.RelatedTopics {
		if topic.Text == "" {
			continue
		}
		topics = append(topics, topic.Text)
		if len(topics) == 3 {
			break
		}
	}
	if len(topics) > 0 {
		return strings.Join(topics, "\n"), nil
	}
	return fmt.Sprintf("No results found for: %s", input), nil
}

// NewWikipediaTool fetches a page summary from the Wikipedia REST API.
func NewWikipediaTool() plansolve.Tool {
	return adapters.NewGoToolAdapter("wikipedia", wikipediaSummary,
		adapters.WithDescription("Looks up a Wikipedia article by title and returns its summary."),
		adapters.WithCategory("information"),
		adapters.WithParameters(map[string]string{
			"input": "The article title, e.g. Alan Turing",
		}),
		adapters.WithReturns("The article's summary paragraph."),
		adapters.WithExamples([]string{"Alan Turing", "Go (programming language)"}),
	)
}

type wikipediaResponse struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Extract     string `json:"extract"`
}

func wikipediaSummary(ctx context.Context, input string) (string, error) {
	title := strings.ReplaceAll(strings.TrimSpace(input), " ", "_")

	body, status, err := httpGet(ctx, wikipediaBaseURL+"/page/summary/"+url.PathEscape(title))
	if err != nil {
		return "", err
	}
	if status == http.StatusNotFound {
		return "", fmt.Errorf("no Wikipedia page found for: %s", input)
	}
	if status != http.StatusOK {
		return "", fmt.Errorf("wikipedia request failed with status %d", status)
	}

	var parsed wikipediaResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("failed to decode wikipedia response: %w", err)
	}
	if parsed.Extract == "" {
		return "", fmt.Errorf("wikipedia page has no summary: %s", input)
	}
	return parsed.Extract, nil
}

func httpGet(ctx context.Context, rawURL string) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build request: %w", err)
	}
	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("failed to read response body: %w", err)
	}
	return body, resp.StatusCode, nil
}
