package middlewares

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/benmeehan/merchant-intake/internal/form"
	"github.com/benmeehan/merchant-intake/internal/models"
)

// LoggingMiddleware records the outcome and duration of every submission.
type LoggingMiddleware struct {
	next   form.SubmitHandler
	logger zerolog.Logger
}

// NewLoggingMiddleware creates a LoggingMiddleware writing to logger.
func NewLoggingMiddleware(logger zerolog.Logger) *LoggingMiddleware {
	return &LoggingMiddleware{logger: logger}
}

// SetNext sets the handler that receives the submission.
func (m *LoggingMiddleware) SetNext(next form.SubmitHandler) {
	m.next = next
}

// Submit forwards the submission and logs how it went, at error level on failure.
func (m *LoggingMiddleware) Submit(ctx context.Context, submission models.MerchantSubmission) error {
	start := time.Now()
	err := m.next.Submit(ctx, submission)

	event := m.logger.Info()
	if err != nil {
		event = m.logger.Error().Err(err)
	}
	event.Str("business_name", submission.BusinessName).
		Int("images", len(submission.Images)).
		Dur("duration", time.Since(start)).
		Msg("Submission handled")
	return err
}
