package s3

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// ObjectStorageClient is the subset of object storage used to keep submitted images.
type ObjectStorageClient interface {
	EnsureBucket(ctx context.Context, bucketName string) error
	UploadObject(ctx context.Context, bucketName, objectName string, content io.Reader, size int64, contentType string) (UploadInfo, error)
	PresignedURL(ctx context.Context, bucketName, objectName string, expiry time.Duration) (string, error)
}

// UploadInfo describes a stored object.
type UploadInfo struct {
	Bucket string
	Key    string
	Size   int64
	ETag   string
}

// ObjectStorage holds the object storage client instance
type ObjectStorage struct {
	Conn   *minio.Client
	Region string
}

// NewObjectStorage initialization
func NewObjectStorage() *ObjectStorage {
	return &ObjectStorage{Region: "us-east-1"}
}

// Connect establishes the object storage connection using client
func (o *ObjectStorage) Connect(ctx context.Context, endpoint, accessKeyID, secretAccessKey string, useSSL bool) error {
	if endpoint == "" {
		return errors.New("object storage endpoint is not configured")
	}

	var err error
	o.Conn, err = minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKeyID, secretAccessKey, ""),
		Secure: useSSL,
		Region: o.Region,
	})
	if err != nil {
		return fmt.Errorf("failed to create minio client: %w", err)
	}

	// Check connection by listing buckets
	if _, err = o.Conn.ListBuckets(ctx); err != nil {
		return fmt.Errorf("failed to establish minio connection: %w", err)
	}

	return nil
}

// EnsureBucket creates the bucket unless it already exists.
func (o *ObjectStorage) EnsureBucket(ctx context.Context, bucketName string) error {
	err := o.Conn.MakeBucket(ctx, bucketName, minio.MakeBucketOptions{Region: o.Region})
	if err == nil {
		return nil
	}

	exists, errBucketExists := o.Conn.BucketExists(ctx, bucketName)
	if errBucketExists == nil && exists {
		return nil
	}
	return fmt.Errorf("failed to create bucket %s: %w", bucketName, err)
}

// UploadObject stores content under objectName. Existing objects with the same name are overwritten.
func (o *ObjectStorage) UploadObject(ctx context.Context, bucketName, objectName string, content io.Reader, size int64, contentType string) (UploadInfo, error) {
	info, err := o.Conn.PutObject(ctx, bucketName, objectName, content, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return UploadInfo{}, fmt.Errorf("failed to upload %s/%s: %w", bucketName, objectName, err)
	}

	return UploadInfo{
		Bucket: info.Bucket,
		Key:    info.Key,
		Size:   info.Size,
		ETag:   info.ETag,
	}, nil
}

// PresignedURL returns a time-limited GET URL for an object.
func (o *ObjectStorage) PresignedURL(ctx context.Context, bucketName, objectName string, expiry time.Duration) (string, error) {
	u, err := o.Conn.PresignedGetObject(ctx, bucketName, objectName, expiry, nil)
	if err != nil {
		return "", fmt.Errorf("failed to presign %s/%s: %w", bucketName, objectName, err)
	}
	return u.String(), nil
}
