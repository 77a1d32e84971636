package middlewares

import (
	"context"
	"time"

	"github.com/benmeehan/merchant-intake/internal/form"
	"github.com/benmeehan/merchant-intake/internal/models"
)

// TimeoutMiddleware bounds how long the rest of the chain may take. Zero disables it.
type TimeoutMiddleware struct {
	next    form.SubmitHandler
	timeout time.Duration
}

// NewTimeoutMiddleware creates a TimeoutMiddleware with the given bound.
func NewTimeoutMiddleware(timeout time.Duration) *TimeoutMiddleware {
	return &TimeoutMiddleware{timeout: timeout}
}

// SetNext sets the handler that receives the submission.
func (m *TimeoutMiddleware) SetNext(next form.SubmitHandler) {
	m.next = next
}

// Submit forwards the submission with a deadline derived from ctx.
func (m *TimeoutMiddleware) Submit(ctx context.Context, submission models.MerchantSubmission) error {
	if m.timeout <= 0 {
		return m.next.Submit(ctx, submission)
	}
	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()
	return m.next.Submit(ctx, submission)
}
