package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/benmeehan/merchant-intake/internal/models"
	"github.com/benmeehan/merchant-intake/pkg/intake"
	"github.com/benmeehan/merchant-intake/pkg/mqtt"
	"github.com/benmeehan/merchant-intake/pkg/s3"
)

// RegistrationService publishes submitted merchants to an MQTT topic.
// When object storage is configured the images are uploaded first and the
// published record carries presigned URLs instead of data URLs.
type RegistrationService struct {
	// Configuration fields
	topic          string
	qos            int
	publishTimeout time.Duration
	bucket         string
	presignExpiry  time.Duration

	// Dependencies
	mqttClient mqtt.MQTTClient
	storage    s3.ObjectStorageClient
	logger     zerolog.Logger

	newID func() string
	now   func() time.Time
}

// NewRegistrationService initializes and returns a new RegistrationService instance.
// storage may be nil.
func NewRegistrationService(
	topic string,
	qos int,
	publishTimeout time.Duration,
	mqttClient mqtt.MQTTClient,
	storage s3.ObjectStorageClient,
	bucket string,
	presignExpiry time.Duration,
	logger zerolog.Logger,
) *RegistrationService {
	return &RegistrationService{
		topic:          topic,
		qos:            qos,
		publishTimeout: publishTimeout,
		bucket:         bucket,
		presignExpiry:  presignExpiry,
		mqttClient:     mqttClient,
		storage:        storage,
		logger:         logger,
		newID:          uuid.NewString,
		now:            time.Now,
	}
}

// Submit stores the images (if configured) and publishes the registration record.
func (rs *RegistrationService) Submit(ctx context.Context, submission models.MerchantSubmission) error {
	record := models.RegistrationRecord{
		RegistrationID:     rs.newID(),
		SubmittedAt:        rs.now().UTC(),
		MerchantSubmission: submission,
	}

	if rs.storage != nil {
		urls, err := rs.storeImages(ctx, record.RegistrationID, submission.Images)
		if err != nil {
			return err
		}
		record.Images = urls
	}

	payload, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to serialize registration: %w", err)
	}

	token := rs.mqttClient.Publish(rs.topic, byte(rs.qos), false, payload)

	var timeout <-chan time.Time
	if rs.publishTimeout > 0 {
		timer := time.NewTimer(rs.publishTimeout)
		defer timer.Stop()
		timeout = timer.C
	}

	select {
	case <-token.Done():
	case <-ctx.Done():
		return ctx.Err()
	case <-timeout:
		rs.logger.Error().Str("topic", rs.topic).Dur("timeout", rs.publishTimeout).Msg("Broker did not acknowledge registration")
		return errors.New("timed out waiting for the broker to acknowledge the registration")
	}

	if err := token.Error(); err != nil {
		rs.logger.Error().Err(err).Str("topic", rs.topic).Msg("Failed to publish registration message to MQTT")
		return fmt.Errorf("failed to publish registration: %w", err)
	}

	rs.logger.Info().
		Str("registration_id", record.RegistrationID).
		Str("topic", rs.topic).
		Int("images", len(record.Images)).
		Msg("Registration published successfully")
	return nil
}

// storeImages uploads each data URL as <id>/<n>.jpg and returns presigned URLs in the same order.
func (rs *RegistrationService) storeImages(ctx context.Context, registrationID string, images []string) ([]string, error) {
	if err := rs.storage.EnsureBucket(ctx, rs.bucket); err != nil {
		return nil, err
	}

	urls := make([]string, 0, len(images))
	for i, img := range images {
		data, mediaType, err := intake.DecodeDataURL(img)
		if err != nil {
			return nil, fmt.Errorf("image %d: %w", i+1, err)
		}

		objectName := fmt.Sprintf("%s/%02d.jpg", registrationID, i+1)
		info, err := rs.storage.UploadObject(ctx, rs.bucket, objectName, bytes.NewReader(data), int64(len(data)), mediaType)
		if err != nil {
			return nil, err
		}

		url, err := rs.storage.PresignedURL(ctx, rs.bucket, objectName, rs.presignExpiry)
		if err != nil {
			return nil, err
		}

		rs.logger.Debug().Str("object", info.Key).Int64("size", info.Size).Msg("Image stored")
		urls = append(urls, url)
	}
	return urls, nil
}
