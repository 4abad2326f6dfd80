package errors

import "fmt"

// Convenience constructors for the failure kinds of an export run.

// ConfigurationError reports an unsafe or invalid setup; the run never starts.
func ConfigurationError(message string) *BuildError {
	return New(CategoryConfig, SeverityFatal, message)
}

// ConfigurationErrorf is ConfigurationError with formatting.
func ConfigurationErrorf(format string, args ...any) *BuildError {
	return ConfigurationError(fmt.Sprintf(format, args...))
}

// ValidationError reports a value that does not honour a callback or input contract.
func ValidationError(message string) *BuildError {
	return New(CategoryValidation, SeverityError, message)
}

// OutputPathError reports a destination that fails the containment check.
func OutputPathError(path string) *BuildError {
	return New(CategoryOutputPath, SeverityError, "output path goes outside of the output directory").
		WithContext("path", path)
}

// RenderError wraps a recoverable renderer failure for one page.
func RenderError(source string, cause error) *BuildError {
	return Wrap(cause, CategoryRender, SeverityError, "render failed").
		WithContext("source", source)
}

// FileSystemError wraps a failed filesystem operation.
func FileSystemError(operation string, cause error) *BuildError {
	return Wrap(cause, CategoryFileSystem, SeverityError, operation+" failed").
		WithContext("operation", operation)
}

// FatalRuntimeFailure reports an unrecoverable failure raised while rendering inFlight.
func FatalRuntimeFailure(inFlight string, value any) *BuildError {
	return New(CategoryFatal, SeverityFatal, fmt.Sprintf("unrecoverable failure while building %q: %v", inFlight, value)).
		WithContext("in_flight", inFlight)
}

// InternalError wraps an unexpected error.
func InternalError(message string, cause error) *BuildError {
	return Wrap(cause, CategoryInternal, SeverityFatal, message)
}
