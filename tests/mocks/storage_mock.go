package mocks

import (
	"context"
	"io"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/benmeehan/merchant-intake/pkg/s3"
)

// MockObjectStorage is a mock implementation of the s3.ObjectStorageClient interface
type MockObjectStorage struct {
	mock.Mock
}

func (m *MockObjectStorage) EnsureBucket(ctx context.Context, bucketName string) error {
	args := m.Called(ctx, bucketName)
	return args.Error(0)
}

func (m *MockObjectStorage) UploadObject(ctx context.Context, bucketName, objectName string, content io.Reader, size int64, contentType string) (s3.UploadInfo, error) {
	args := m.Called(ctx, bucketName, objectName, content, size, contentType)
	return args.Get(0).(s3.UploadInfo), args.Error(1)
}

func (m *MockObjectStorage) PresignedURL(ctx context.Context, bucketName, objectName string, expiry time.Duration) (string, error) {
	args := m.Called(ctx, bucketName, objectName, expiry)
	return args.String(0), args.Error(1)
}
