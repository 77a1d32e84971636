package intake

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorKind classifies why a batch was rejected.
type ErrorKind int

const (
	// KindFileTooLarge means a raw file exceeded the per-file ceiling before compression.
	KindFileTooLarge ErrorKind = iota + 1
	// KindTooLargeAfterCompression means an encoded result exceeded the post-compression ceiling.
	KindTooLargeAfterCompression
	// KindCompression means decoding, scaling or encoding failed.
	KindCompression
)

func (k ErrorKind) String() string {
	switch k {
	case KindFileTooLarge:
		return "file_too_large"
	case KindTooLargeAfterCompression:
		return "too_large_after_compression"
	case KindCompression:
		return "compression_failed"
	default:
		return "unknown"
	}
}

// Error is returned when a batch is rejected. Files lists the offending file names in batch order.
type Error struct {
	Kind  ErrorKind
	Files []string
	Err   error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("intake rejected (%s)", e.Kind)
	if len(e.Files) > 0 {
		msg += ": " + strings.Join(e.Files, ", ")
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf returns the ErrorKind carried by err, or 0 when err is not an intake error.
func KindOf(err error) ErrorKind {
	var ie *Error
	if errors.As(err, &ie) {
		return ie.Kind
	}
	return 0
}
