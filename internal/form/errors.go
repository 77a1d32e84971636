package form

import "errors"

var (
	// ErrInsufficientImages is returned by Submit with fewer than the minimum image count.
	ErrInsufficientImages = errors.New("insufficient images")
	// ErrBusy is returned by Submit while a batch is compressing or a submission is pending.
	ErrBusy = errors.New("form is busy")
	// ErrClosed is returned after Close.
	ErrClosed = errors.New("form is closed")
	// ErrSubmission wraps failures of the submission handler.
	ErrSubmission = errors.New("submission failed")
)
