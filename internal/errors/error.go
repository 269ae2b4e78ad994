package errors

import (
	"fmt"
)

// Category represents the type of error.
type Category string

const (
	CategoryConfig  Category = "config"
	CategoryConnect Category = "connect"
	CategoryStream  Category = "stream"
	CategoryArchive Category = "archive"
)

// WebcastError is a structured error with a code, explanation and hint.
type WebcastError struct {
	// Code is a unique error identifier (e.g., "W101").
	Code string

	// Category is the error type (config, connect, etc.).
	Category Category

	// Message is a short description of the error.
	Message string

	// Detail is a longer explanation of the error.
	Detail string

	// Suggestion is a hint on how to fix the error.
	Suggestion string

	// Wrapped is the underlying error, if any.
	Wrapped error
}

// Error implements the error interface.
func (e *WebcastError) Error() string {
	msg := e.Message
	if e.Code != "" {
		msg = fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	if e.Wrapped != nil {
		msg += ": " + e.Wrapped.Error()
	}
	return msg
}

// Unwrap returns the wrapped error for errors.Is/As support.
func (e *WebcastError) Unwrap() error {
	return e.Wrapped
}

// WithSuggestion adds a fix suggestion to the error.
func (e *WebcastError) WithSuggestion(s string) *WebcastError {
	e.Suggestion = s
	return e
}

// WithDetail adds a detailed explanation to the error.
func (e *WebcastError) WithDetail(d string) *WebcastError {
	e.Detail = d
	return e
}

// Wrap wraps another error.
func (e *WebcastError) Wrap(err error) *WebcastError {
	e.Wrapped = err
	return e
}

// New creates a WebcastError from a registered error code.
func New(code string) *WebcastError {
	template, ok := registry[code]
	if !ok {
		return &WebcastError{
			Code:    code,
			Message: "Unknown error",
		}
	}
	return &WebcastError{
		Code:       code,
		Category:   template.Category,
		Message:    template.Message,
		Detail:     template.Detail,
		Suggestion: template.Suggestion,
	}
}

// Newf creates a new WebcastError with a formatted message (no code).
func Newf(category Category, format string, args ...any) *WebcastError {
	return &WebcastError{
		Category: category,
		Message:  fmt.Sprintf(format, args...),
	}
}

// FromError wraps a standard error in a WebcastError.
func FromError(err error, code string) *WebcastError {
	if err == nil {
		return nil
	}
	if we, ok := err.(*WebcastError); ok {
		return we
	}
	return New(code).Wrap(err)
}
