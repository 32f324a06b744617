package errors

import "github.com/sagaforge/engine/internal/platform/errors/i18n"

// Domain is the error domain for Sagaforge errors.
const Domain = "github.com/sagaforge/engine"

// Error is the domain error type with structured metadata.
type Error struct {
	Code     Code              // Machine-readable error code
	Message  string            // Internal message (for logs/telemetry)
	Metadata map[string]string // Additional context for templating
	Cause    error             // Wrapped underlying error
}

// Error implements the error interface.
func (e *Error) Error() string {
	return e.Message
}

// Unwrap returns the underlying cause for error chain traversal.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error by code.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Code == t.Code
	}
	return false
}

// New creates a simple domain error with a code and message.
func New(code Code, message string) *Error {
	return &Error{
		Code:    code,
		Message: message,
	}
}

// WithMetadata creates a domain error with metadata for i18n templating.
func WithMetadata(code Code, message string, metadata map[string]string) *Error {
	return &Error{
		Code:     code,
		Message:  message,
		Metadata: metadata,
	}
}

// Wrap creates a domain error that wraps an underlying cause.
func Wrap(code Code, message string, cause error) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// CodeOf extracts the domain code from any error, or CodeUnknown.
func CodeOf(err error) Code {
	if e, ok := err.(*Error); ok && e != nil {
		return e.Code
	}
	return CodeUnknown
}

// Localize renders the user-facing message for err in the given locale,
// templating the error's metadata into the catalog entry. Unknown locales
// fall back to en-US; errors without a domain code render the UNKNOWN
// message.
func Localize(err error, locale string) string {
	if err == nil {
		return ""
	}
	var metadata map[string]string
	if e, ok := err.(*Error); ok && e != nil {
		metadata = e.Metadata
	}
	return i18n.GetCatalog(locale).Format(string(CodeOf(err)), metadata)
}
