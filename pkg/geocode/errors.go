package geocode

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrorType classifies geocoding failures for logging.
type ErrorType int

const (
	// ErrorTypeUnknown is an unclassified failure.
	ErrorTypeUnknown ErrorType = iota
	// ErrorTypeNotFound means the provider had no result.
	ErrorTypeNotFound
	// ErrorTypeQuotaExceeded means the key ran out of quota or was rate limited.
	ErrorTypeQuotaExceeded
	// ErrorTypeInvalidRequest means the request or the key was rejected.
	ErrorTypeInvalidRequest
	// ErrorTypeTimeout means the call did not finish in time.
	ErrorTypeTimeout
	// ErrorTypeNetworkError means the provider could not be reached.
	ErrorTypeNetworkError
)

func (t ErrorType) String() string {
	switch t {
	case ErrorTypeNotFound:
		return "not_found"
	case ErrorTypeQuotaExceeded:
		return "quota_exceeded"
	case ErrorTypeInvalidRequest:
		return "invalid_request"
	case ErrorTypeTimeout:
		return "timeout"
	case ErrorTypeNetworkError:
		return "network"
	default:
		return "unknown"
	}
}

// ErrMissingAPIKey is returned when a provider is built without a key.
var ErrMissingAPIKey = errors.New("maps API key is not configured")

// Error wraps a provider failure with its classification.
type Error struct {
	Type    ErrorType
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// TypeOf returns the classification of err, ErrorTypeUnknown for foreign errors.
func TypeOf(err error) ErrorType {
	var geoErr *Error
	if errors.As(err, &geoErr) {
		return geoErr.Type
	}
	return ErrorTypeUnknown
}

// IsNotFound reports whether err means the provider had no match.
func IsNotFound(err error) bool {
	return TypeOf(err) == ErrorTypeNotFound
}

// classify turns a maps client error into an *Error.
func classify(message string, err error) *Error {
	if errors.Is(err, context.DeadlineExceeded) {
		return &Error{Type: ErrorTypeTimeout, Message: message, Err: err}
	}

	errStr := strings.ToUpper(err.Error())
	switch {
	case strings.Contains(errStr, "ZERO_RESULTS"):
		return &Error{Type: ErrorTypeNotFound, Message: message, Err: err}
	case strings.Contains(errStr, "OVER_QUERY_LIMIT"),
		strings.Contains(errStr, "OVER_DAILY_LIMIT"),
		strings.Contains(errStr, "429"):
		return &Error{Type: ErrorTypeQuotaExceeded, Message: message, Err: err}
	case strings.Contains(errStr, "REQUEST_DENIED"),
		strings.Contains(errStr, "INVALID_REQUEST"):
		return &Error{Type: ErrorTypeInvalidRequest, Message: message, Err: err}
	case strings.Contains(errStr, "CONNECTION REFUSED"),
		strings.Contains(errStr, "NO SUCH HOST"),
		strings.Contains(errStr, "DIAL TCP"):
		return &Error{Type: ErrorTypeNetworkError, Message: message, Err: err}
	default:
		return &Error{Type: ErrorTypeUnknown, Message: message, Err: err}
	}
}
