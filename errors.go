package plansolve

import (
	"errors"
	"fmt"
	"time"
)

// Error codes for specific failure types
const (
	ErrCodeInvalidReference = "PARSE_INVALID_REFERENCE"
	ErrCodeUnknownTool      = "PARSE_UNKNOWN_TOOL"
	ErrCodeMalformedPlan    = "PARSE_MALFORMED_PLAN"
	ErrCodeToolTimeout      = "TOOL_TIMEOUT"
	ErrCodeToolExecution    = "TOOL_EXECUTION_ERROR"
	ErrCodeSynthesis        = "SYNTHESIS_ERROR"
	ErrCodeCancelled        = "EXECUTION_CANCELLED"
	ErrCodeConfiguration    = "CONFIGURATION_ERROR"
	ErrCodeInternal         = "INTERNAL_ERROR"
)

// EngineError is the error type for engine-specific failures.
type EngineError struct {
	Code    string // A machine-readable error code (e.g., ErrCodeUnknownTool)
	Stage   string // The stage where the error occurred (e.g., "planning", "solving")
	Message string // A human-readable message
	Cause   error  // The underlying error, if any
}

// Error implements the error interface.
func (e *EngineError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s:%s] %s: %v", e.Stage, e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s:%s] %s", e.Stage, e.Code, e.Message)
}

// Unwrap returns the underlying cause of the error, allowing for error chaining.
func (e *EngineError) Unwrap() error {
	return e.Cause
}

// NewError creates a new EngineError.
func NewError(code, stage, message string, cause error) *EngineError {
	return &EngineError{
		Code:    code,
		Stage:   stage,
		Message: message,
		Cause:   cause,
	}
}

// IsEngineError reports whether err is (or wraps) an EngineError and
// returns it.
func IsEngineError(err error) (*EngineError, bool) {
	var ee *EngineError
	if errors.As(err, &ee) {
		return ee, true
	}
	return nil, false
}

// HasCode reports whether err carries the given engine error code.
func HasCode(err error, code string) bool {
	if ee, ok := IsEngineError(err); ok {
		return ee.Code == code
	}
	return false
}

// Specific error constructors

func NewInvalidReferenceError(stepIndex, refIndex int) *EngineError {
	msg := fmt.Sprintf("step %d references step %d, which does not precede it", stepIndex, refIndex)
	return NewError(ErrCodeInvalidReference, "planning", msg, nil)
}

func NewUnknownToolError(stepIndex int, toolName string) *EngineError {
	msg := fmt.Sprintf("step %d names unregistered tool '%s'", stepIndex, toolName)
	return NewError(ErrCodeUnknownTool, "planning", msg, nil)
}

func NewMalformedPlanError(message string, cause error) *EngineError {
	return NewError(ErrCodeMalformedPlan, "planning", message, cause)
}

func NewToolTimeoutError(toolName string, timeout time.Duration) *EngineError {
	msg := fmt.Sprintf("tool '%s' timed out after %v", toolName, timeout)
	return NewError(ErrCodeToolTimeout, "execution", msg, nil)
}

func NewToolExecutionError(toolName string, cause error) *EngineError {
	return NewError(ErrCodeToolExecution, "execution", fmt.Sprintf("execution failed for tool '%s'", toolName), cause)
}

func NewSynthesisError(cause error) *EngineError {
	return NewError(ErrCodeSynthesis, "solving", "failed to synthesize final answer", cause)
}

func NewCancelledError(stage string, cause error) *EngineError {
	msg := "task cancelled"
	if cause != nil && cause.Error() != "" && cause.Error() != "context canceled" {
		msg = fmt.Sprintf("task cancelled: %v", cause)
	}
	return NewError(ErrCodeCancelled, stage, msg, cause)
}

func NewConfigurationError(message string, cause error) *EngineError {
	return NewError(ErrCodeConfiguration, "initialization", message, cause)
}

func NewInternalError(stage, message string, cause error) *EngineError {
	return NewError(ErrCodeInternal, stage, message, cause)
}
