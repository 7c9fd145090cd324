// Package errors provides structured error types for the loadgen tool.
// All errors include a category, code, and message for consistent error
// handling across components; specification errors additionally carry the
// section/group indices needed to locate the offending spec entry.
package errors

import (
	"errors"
	"fmt"
)

// ErrorCategory classifies errors by failure class.
type ErrorCategory string

const (
	ErrCategorySpec     ErrorCategory = "SPEC"
	ErrCategoryParse    ErrorCategory = "PARSE"
	ErrCategoryIO       ErrorCategory = "IO"
	ErrCategoryInternal ErrorCategory = "INTERNAL"
)

// Error codes for each category.
const (
	// Specification codes
	CodeNoSections        = "NO_SECTIONS"
	CodeNoGroups          = "NO_GROUPS"
	CodeSelectivityRange  = "SELECTIVITY_OUT_OF_RANGE"
	CodeDeletesExceedKeys = "DELETES_EXCEED_KEYS"
	CodeEmptyKeySet       = "EMPTY_KEY_SET"
	CodeProbeExhausted    = "EMPTY_QUERY_PROBE_EXHAUSTED"
	CodeUnsupportedOption = "UNSUPPORTED_OPTION"

	// Parse codes
	CodeBadDocument = "BAD_DOCUMENT"
	CodeBadFormat   = "BAD_FORMAT"

	// I/O codes
	CodeWriteFailed = "WRITE_FAILED"
	CodeFlushFailed = "FLUSH_FAILED"
	CodeOpenFailed  = "OPEN_FAILED"

	// Internal codes
	CodeMarkerMismatch = "MARKER_MISMATCH"
	CodeUnexpected     = "UNEXPECTED"
)

// LoadgenError is the structured error type used throughout the tool.
type LoadgenError struct {
	Category ErrorCategory
	Code     string
	Message  string
	Details  map[string]interface{}
	Cause    error
}

// Error returns a formatted error string.
func (e *LoadgenError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s:%s] %s: %v", e.Category, e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s:%s] %s", e.Category, e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *LoadgenError) Unwrap() error {
	return e.Cause
}

// Is reports whether the target matches this error's category and code.
func (e *LoadgenError) Is(target error) bool {
	var t *LoadgenError
	if errors.As(target, &t) {
		return e.Category == t.Category && e.Code == t.Code
	}
	return false
}

// New creates a new LoadgenError.
func New(category ErrorCategory, code, message string) *LoadgenError {
	return &LoadgenError{
		Category: category,
		Code:     code,
		Message:  message,
	}
}

// Wrap creates a new LoadgenError wrapping an existing error.
func Wrap(category ErrorCategory, code, message string, cause error) *LoadgenError {
	return &LoadgenError{
		Category: category,
		Code:     code,
		Message:  message,
		Cause:    cause,
	}
}

// WithDetails returns a copy of the error with additional details.
func (e *LoadgenError) WithDetails(details map[string]interface{}) *LoadgenError {
	cp := *e
	cp.Details = details
	return &cp
}

// AtGroup returns a copy of the error annotated with the section and group
// indices that produced it.
func (e *LoadgenError) AtGroup(section, group int) *LoadgenError {
	cp := *e
	cp.Message = fmt.Sprintf("%s (section %d, group %d)", e.Message, section, group)
	cp.Details = map[string]interface{}{"section": section, "group": group}
	return &cp
}

// GetCategory extracts the error category from an error chain.
// Returns empty string if the error is not a LoadgenError.
func GetCategory(err error) ErrorCategory {
	var le *LoadgenError
	if errors.As(err, &le) {
		return le.Category
	}
	return ""
}

// GetCode extracts the error code from an error chain.
// Returns empty string if the error is not a LoadgenError.
func GetCode(err error) string {
	var le *LoadgenError
	if errors.As(err, &le) {
		return le.Code
	}
	return ""
}

// IsSpecError reports whether the error chain contains a specification error.
func IsSpecError(err error) bool {
	return GetCategory(err) == ErrCategorySpec
}

// Convenience constructors for common errors.

func NewSpecError(code, message string) *LoadgenError {
	return New(ErrCategorySpec, code, message)
}

func NewParseError(message string, cause error) *LoadgenError {
	return Wrap(ErrCategoryParse, CodeBadDocument, message, cause)
}

func NewIOError(code, message string, cause error) *LoadgenError {
	return Wrap(ErrCategoryIO, code, message, cause)
}

func NewInternalError(message string) *LoadgenError {
	return New(ErrCategoryInternal, CodeMarkerMismatch, message)
}
