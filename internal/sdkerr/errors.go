// Package sdkerr defines the error taxonomy shared by the loader, the code
// emitters and the request executor.
package sdkerr

import (
	"fmt"
	"strings"
)

// Code categorizes failures so callers can decide how to render or retry them.
type Code string

const (
	InvalidSpecification     Code = "InvalidSpecification"
	SpecFetchError           Code = "SpecFetchError"
	UnsupportedLanguage      Code = "UnsupportedLanguage"
	InvalidRequestParameters Code = "InvalidRequestParameters"
)

// Error is a structured failure with optional location data.
type Error struct {
	Code    Code
	Message string
	// Field names the missing or invalid input, e.g. "paths" or "base_url".
	Field    string
	Location string // URL the document came from, when fetched
	Pointer  string // JSON pointer into the document, e.g. "#/paths/~1pets/get"
	Status   int    // HTTP status of a failed fetch
	Body     string // truncated response body of a failed fetch
	Timeout  bool
	Cause    error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(string(e.Code))
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.Cause }

// Is reports whether target is a sentinel carrying the same code. Sentinels
// are Errors with only Code set.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Message == "" && t.Cause == nil && t.Code == e.Code
}

var (
	ErrInvalidSpecification     = &Error{Code: InvalidSpecification}
	ErrSpecFetch                = &Error{Code: SpecFetchError}
	ErrUnsupportedLanguage      = &Error{Code: UnsupportedLanguage}
	ErrInvalidRequestParameters = &Error{Code: InvalidRequestParameters}
)

// InvalidSpec reports a malformed or incomplete document, naming the field.
func InvalidSpec(field, format string, args ...any) *Error {
	return &Error{Code: InvalidSpecification, Field: field, Message: fmt.Sprintf(format, args...)}
}

// InvalidParams reports an execution request that cannot be resolved.
func InvalidParams(field, format string, args ...any) *Error {
	return &Error{Code: InvalidRequestParameters, Field: field, Message: fmt.Sprintf(format, args...)}
}

// Unsupported reports a target language with no emitter.
func Unsupported(lang string, allowed []string) *Error {
	return &Error{
		Code:    UnsupportedLanguage,
		Field:   "language",
		Message: fmt.Sprintf("unsupported language %q (allowed: %s)", lang, strings.Join(allowed, ", ")),
	}
}
