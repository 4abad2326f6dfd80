// Package errors provides the structured error type (BuildError) used to classify
// export failures. The category decides whether a failure aborts a run, is
// recorded against a single page or asset, or is escalated as a fatal runtime
// failure.
package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorCategory represents the category of an export error.
type ErrorCategory string

const (
	// Failures that invalidate the whole run before any side effect.
	CategoryConfig     ErrorCategory = "config"
	CategoryValidation ErrorCategory = "validation"

	// Failures recorded against a single page or asset.
	CategoryOutputPath ErrorCategory = "output_path"
	CategoryRender     ErrorCategory = "render"
	CategoryFileSystem ErrorCategory = "filesystem"

	// Unrecoverable failure escaping the renderer.
	CategoryFatal ErrorCategory = "fatal_runtime"

	CategoryInternal ErrorCategory = "internal"
)

// ErrorSeverity indicates how critical an error is.
type ErrorSeverity string

const (
	SeverityFatal   ErrorSeverity = "fatal"   // Stops execution
	SeverityError   ErrorSeverity = "error"   // Error, but not fatal
	SeverityWarning ErrorSeverity = "warning" // Continues with degraded functionality
)

// BuildError is a structured error with category, severity and context.
type BuildError struct {
	Category ErrorCategory `json:"category"`
	Severity ErrorSeverity `json:"severity"`
	Message  string        `json:"message"`
	Cause    error         `json:"cause,omitempty"`
	Context  ContextFields `json:"context,omitempty"`
}

// ContextFields carries structured context for BuildError.
type ContextFields map[string]any

// Error implements the error interface.
func (e *BuildError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s (%s): %s: %v", e.Category, e.Severity, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s (%s): %s", e.Category, e.Severity, e.Message)
}

// Unwrap implements error unwrapping.
func (e *BuildError) Unwrap() error {
	return e.Cause
}

// WithContext adds context information to the error.
func (e *BuildError) WithContext(key string, value any) *BuildError {
	if e.Context == nil {
		e.Context = make(ContextFields)
	}
	e.Context[key] = value
	return e
}

// New creates a new BuildError.
func New(category ErrorCategory, severity ErrorSeverity, message string) *BuildError {
	return &BuildError{
		Category: category,
		Severity: severity,
		Message:  message,
	}
}

// Wrap creates a new BuildError that wraps an existing error.
func Wrap(err error, category ErrorCategory, severity ErrorSeverity, message string) *BuildError {
	return &BuildError{
		Category: category,
		Severity: severity,
		Message:  message,
		Cause:    err,
	}
}

// As returns the first BuildError in err's chain.
func As(err error) (*BuildError, bool) {
	var be *BuildError
	if stderrors.As(err, &be) {
		return be, true
	}
	return nil, false
}

// IsCategory checks if an error belongs to a specific category.
func IsCategory(err error, category ErrorCategory) bool {
	if be, ok := As(err); ok {
		return be.Category == category
	}
	return false
}

// GetCategory extracts the category from an error, or returns CategoryInternal if not a BuildError.
func GetCategory(err error) ErrorCategory {
	if be, ok := As(err); ok {
		return be.Category
	}
	return CategoryInternal
}

// Reason returns the human message of a BuildError (with its cause), or err.Error()
// for anything else. Used for summary entries where the category is implied.
func Reason(err error) string {
	if err == nil {
		return ""
	}
	if be, ok := As(err); ok {
		if be.Cause != nil {
			return be.Message + ": " + be.Cause.Error()
		}
		return be.Message
	}
	return err.Error()
}
