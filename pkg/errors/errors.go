package errors

import "fmt"

// ErrorType classifies the faults the Twitter API layer can produce
type ErrorType string

const (
	ErrorTypeNetwork          ErrorType = "network"
	ErrorTypeRateLimit        ErrorType = "rate_limit"
	ErrorTypeFatalStatus      ErrorType = "fatal_status"
	ErrorTypeParsing          ErrorType = "parsing"
	ErrorTypeMissingReference ErrorType = "missing_reference"
	ErrorTypeOversizedQuery   ErrorType = "oversized_query"
	ErrorTypeServerError      ErrorType = "server_error"
	ErrorTypeUnknown          ErrorType = "unknown"
)

// Error represents an API error with type information
type Error struct {
	Type    ErrorType
	Message string
	Code    int
}

func (e *Error) Error() string {
	if e.Code != 0 {
		return fmt.Sprintf("%s error (code %d): %s", e.Type, e.Code, e.Message)
	}
	return fmt.Sprintf("%s error: %s", e.Type, e.Message)
}

// NewFatalStatus wraps an unexpected, non-retryable HTTP status.
// Per the rate-limit protocol, any status other than 200 or 429 halts
// the current run.
func NewFatalStatus(code int, message string) *Error {
	return &Error{Type: ErrorTypeFatalStatus, Message: message, Code: code}
}

// NewMissingReference reports a cross-reference lookup miss on a path
// that the API contract guarantees to be resolvable. This is a
// data-integrity fault, not a soft missing field.
func NewMissingReference(kind, id string) *Error {
	return &Error{
		Type:    ErrorTypeMissingReference,
		Message: fmt.Sprintf("%s %q not present in includes", kind, id),
	}
}

// NewOversizedQuery reports a batch or query that exceeds the API's
// documented limits. Rejected before any network call.
func NewOversizedQuery(message string) *Error {
	return &Error{Type: ErrorTypeOversizedQuery, Message: message}
}

// IsRetryable checks if an error type should be retried at the
// transport level. Rate limiting is deliberately NOT in this list: the
// 429 protocol (sleep to reset, retry once) is handled by the paginator,
// not the generic retrier.
func IsRetryable(errorType ErrorType) bool {
	switch errorType {
	case ErrorTypeNetwork, ErrorTypeServerError:
		return true
	default:
		return false
	}
}

// IsRetryableStatusCode checks if an HTTP status code indicates a
// transport-retryable error, mirroring the 5xx forcelist of the
// reference retry policy.
func IsRetryableStatusCode(statusCode int) bool {
	switch statusCode {
	case 0: // Network error
		return true
	case 500, 502, 503, 504:
		return true
	default:
		return false
	}
}
