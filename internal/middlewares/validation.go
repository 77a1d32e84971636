package middlewares

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/benmeehan/merchant-intake/internal/constants"
	"github.com/benmeehan/merchant-intake/internal/form"
	"github.com/benmeehan/merchant-intake/internal/models"
)

// ErrMissingField matches every MissingFieldError.
var ErrMissingField = errors.New("missing required field")

// MissingFieldError names the first required field left empty. Its message is shown to the user as is.
type MissingFieldError struct {
	Field string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf(constants.MsgMissingField, e.Field)
}

func (e *MissingFieldError) Is(target error) bool {
	return target == ErrMissingField
}

// ValidationMiddleware refuses submissions without a business name, description or address.
type ValidationMiddleware struct {
	next form.SubmitHandler
}

// NewValidationMiddleware creates a ValidationMiddleware.
func NewValidationMiddleware() *ValidationMiddleware {
	return &ValidationMiddleware{}
}

// SetNext sets the handler that receives valid submissions.
func (m *ValidationMiddleware) SetNext(next form.SubmitHandler) {
	m.next = next
}

// Submit forwards the submission when every required field is filled in.
func (m *ValidationMiddleware) Submit(ctx context.Context, submission models.MerchantSubmission) error {
	required := []struct{ name, value string }{
		{"business name", submission.BusinessName},
		{"description", submission.Description},
		{"address", submission.Address},
	}
	for _, field := range required {
		if strings.TrimSpace(field.value) == "" {
			return &MissingFieldError{Field: field.name}
		}
	}
	return m.next.Submit(ctx, submission)
}
