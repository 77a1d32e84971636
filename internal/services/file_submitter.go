package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/benmeehan/merchant-intake/internal/models"
	"github.com/benmeehan/merchant-intake/pkg/file"
)

// FileSubmitter writes the registration record to a JSON file instead of publishing it.
type FileSubmitter struct {
	path       string
	fileClient file.FileOperations
	logger     zerolog.Logger
}

// NewFileSubmitter creates a FileSubmitter writing to path.
func NewFileSubmitter(path string, fileClient file.FileOperations, logger zerolog.Logger) *FileSubmitter {
	return &FileSubmitter{path: path, fileClient: fileClient, logger: logger}
}

// Submit writes the record, replacing any previous file.
func (fs *FileSubmitter) Submit(ctx context.Context, submission models.MerchantSubmission) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	record := models.RegistrationRecord{
		RegistrationID:     uuid.NewString(),
		SubmittedAt:        time.Now().UTC(),
		MerchantSubmission: submission,
	}
	if err := fs.fileClient.WriteJsonFile(fs.path, record); err != nil {
		fs.logger.Error().Err(err).Str("path", fs.path).Msg("Failed to write registration")
		return err
	}

	fs.logger.Info().Str("registration_id", record.RegistrationID).Str("path", fs.path).Msg("Registration written")
	return nil
}
