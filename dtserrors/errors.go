// Package dtserrors provides structured error types for dtsgen.
//
// These error types enable programmatic error handling via errors.Is() and
// errors.As(), allowing callers to distinguish between different categories
// of errors and implement appropriate recovery strategies.
//
// # Error Categories
//
//   - ParseError: malformed documents, JSON-pointer navigation failures, unsupported dialects
//   - ResolutionError: a referenced document or schema id could not be loaded or found
//   - UnsupportedTypeError: an unrecognized schema type value reached the emitter
//   - ResourceLimitError: resource exhaustion (depth, size, count limits)
//   - ConfigError: invalid configuration or input options
//
// All errors are fatal to the current generation run: dtsgen either produces a
// complete declaration text or fails the whole request.
//
// # Usage with errors.Is
//
//	result, err := generator.GenerateWithOptions(generator.WithFilePath("api.yaml"))
//	if err != nil {
//	    var resErr *dtserrors.ResolutionError
//	    if errors.As(err, &resErr) {
//	        log.Printf("missing schema: %s", resErr.ID)
//	    }
//	}
package dtserrors

import (
	"errors"
	"fmt"
)

// Sentinel errors for use with errors.Is().
// These allow quick checks without type assertions.
var (
	// ErrParse indicates a parsing failure occurred.
	ErrParse = errors.New("parse error")

	// ErrResolution indicates a schema reference resolution failure.
	ErrResolution = errors.New("resolution error")

	// ErrUnsupportedType indicates an unrecognized schema type value.
	ErrUnsupportedType = errors.New("unsupported type")

	// ErrResourceLimit indicates a resource limit was exceeded.
	ErrResourceLimit = errors.New("resource limit exceeded")

	// ErrConfig indicates an invalid configuration.
	ErrConfig = errors.New("configuration error")
)

// ParseError represents a failure to parse a schema document or navigate
// into it. This includes YAML/JSON deserialization errors, unsupported
// dialect constructs, and JSON-pointer paths that do not exist.
type ParseError struct {
	// Source is the file path, URL, or schema id being parsed
	Source string
	// Pointer is the JSON pointer being navigated when the error occurred
	Pointer string
	// Message describes the parsing failure
	Message string
	// Cause is the underlying error, if any
	Cause error
}

// Error returns a human-readable error message.
func (e *ParseError) Error() string {
	msg := "parse error"
	if e.Source != "" {
		msg += " in " + e.Source
	}
	if e.Pointer != "" {
		msg += " at " + e.Pointer
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap returns the underlying cause for error chaining.
func (e *ParseError) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error type.
func (e *ParseError) Is(target error) bool {
	return target == ErrParse
}

// ResolutionError represents a failure to resolve a schema reference.
// This occurs when a referenced document cannot be loaded, or when an id is
// dereferenced that no resolve pass ever registered.
type ResolutionError struct {
	// ID is the canonical schema id that failed to resolve
	ID string
	// Ref is the original reference string, when it differs from ID
	Ref string
	// Message provides additional context about the failure
	Message string
	// Cause is the underlying error, if any
	Cause error
}

// Error returns a human-readable error message.
func (e *ResolutionError) Error() string {
	msg := "resolution error"
	if e.ID != "" {
		msg += ": " + e.ID
	} else if e.Ref != "" {
		msg += ": " + e.Ref
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap returns the underlying cause for error chaining.
func (e *ResolutionError) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error type.
func (e *ResolutionError) Is(target error) bool {
	return target == ErrResolution
}

// UnsupportedTypeError represents an unrecognized schema type value reaching
// the declaration emitter.
type UnsupportedTypeError struct {
	// ID is the canonical id of the schema carrying the type
	ID string
	// TypeValue is the unrecognized type value
	TypeValue any
	// Message provides additional context
	Message string
}

// Error returns a human-readable error message.
func (e *UnsupportedTypeError) Error() string {
	msg := "unsupported type"
	if e.TypeValue != nil {
		msg += fmt.Sprintf(": %v", e.TypeValue)
	}
	if e.ID != "" {
		msg += " in schema " + e.ID
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	return msg
}

// Unwrap returns nil as UnsupportedTypeError has no underlying cause.
func (e *UnsupportedTypeError) Unwrap() error {
	return nil
}

// Is reports whether target matches this error type.
func (e *UnsupportedTypeError) Is(target error) bool {
	return target == ErrUnsupportedType
}

// ResourceLimitError represents a resource exhaustion condition.
// This occurs when resolution or loading exceeds configured limits.
type ResourceLimitError struct {
	// ResourceType identifies what limit was exceeded
	// Common values: "pointer_depth", "cached_documents", "file_size", "resolution_rounds"
	ResourceType string
	// Limit is the configured maximum value
	Limit int64
	// Actual is the value that exceeded the limit (may be 0 if unknown)
	Actual int64
	// Message provides additional context
	Message string
}

// Error returns a human-readable error message.
func (e *ResourceLimitError) Error() string {
	msg := "resource limit exceeded"
	if e.ResourceType != "" {
		msg += ": " + e.ResourceType
	}
	if e.Limit > 0 {
		msg += fmt.Sprintf(" (limit: %d", e.Limit)
		if e.Actual > 0 {
			msg += fmt.Sprintf(", actual: %d", e.Actual)
		}
		msg += ")"
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	return msg
}

// Unwrap returns nil as ResourceLimitError has no underlying cause.
func (e *ResourceLimitError) Unwrap() error {
	return nil
}

// Is reports whether target matches this error type.
func (e *ResourceLimitError) Is(target error) bool {
	return target == ErrResourceLimit
}

// ConfigError represents an invalid configuration or input.
// This includes invalid options, missing required inputs, and conflicting settings.
type ConfigError struct {
	// Option is the name of the problematic configuration option
	Option string
	// Value is the invalid value that was provided (may be nil)
	Value any
	// Message describes the configuration error
	Message string
	// Cause is the underlying error, if any
	Cause error
}

// Error returns a human-readable error message.
func (e *ConfigError) Error() string {
	msg := "configuration error"
	if e.Option != "" {
		msg += " for " + e.Option
	}
	if e.Value != nil {
		msg += fmt.Sprintf(" (value: %v)", e.Value)
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap returns the underlying cause for error chaining.
func (e *ConfigError) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error type.
func (e *ConfigError) Is(target error) bool {
	return target == ErrConfig
}
