package storage

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"

	"github.com/johnquangdev/meeting-pipeline/pkg/config"
)

// MinIOClient serves recordings and exports from S3-compatible storage
type MinIOClient struct {
	client *minio.Client
	logger *zap.Logger
}

// NewMinIOClient creates a new MinIO client
func NewMinIOClient(cfg *config.StorageConfig, logger *zap.Logger) (*MinIOClient, error) {
	minioClient, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create MinIO client: %w", err)
	}

	if logger == nil {
		logger = zap.NewNop()
	}

	return &MinIOClient{client: minioClient, logger: logger}, nil
}

// EnsureBuckets creates missing buckets, retrying while storage comes up
func (m *MinIOClient) EnsureBuckets(ctx context.Context, buckets ...string) error {
	policy := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 5), ctx)

	for _, bucket := range buckets {
		bucket := bucket
		operation := func() error {
			exists, err := m.client.BucketExists(ctx, bucket)
			if err != nil {
				return fmt.Errorf("failed to check bucket %s: %w", bucket, err)
			}
			if exists {
				return nil
			}
			if err := m.client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}); err != nil {
				return fmt.Errorf("failed to create bucket %s: %w", bucket, err)
			}
			m.logger.Info("🪣 Created storage bucket", zap.String("bucket", bucket))
			return nil
		}

		notify := func(err error, wait time.Duration) {
			m.logger.Warn("⚠️ Storage not ready, retrying",
				zap.String("bucket", bucket),
				zap.Duration("wait", wait),
				zap.Error(err))
		}

		policy.Reset()
		if err := backoff.RetryNotify(operation, policy, notify); err != nil {
			return err
		}
	}

	return nil
}

// SignedURL returns a presigned GET URL for an object
func (m *MinIOClient) SignedURL(ctx context.Context, bucket, object string, expiry time.Duration) (string, error) {
	u, err := m.client.PresignedGetObject(ctx, bucket, object, expiry, nil)
	if err != nil {
		return "", fmt.Errorf("failed to generate presigned URL: %w", err)
	}
	return u.String(), nil
}

// SignedUploadURL returns a presigned PUT URL for an object
func (m *MinIOClient) SignedUploadURL(ctx context.Context, bucket, object string, expiry time.Duration) (string, error) {
	u, err := m.client.PresignedPutObject(ctx, bucket, object, expiry)
	if err != nil {
		return "", fmt.Errorf("failed to generate presigned upload URL: %w", err)
	}
	return u.String(), nil
}

// Upload writes data to an object, replacing any existing object
func (m *MinIOClient) Upload(ctx context.Context, bucket, object string, data []byte, contentType string) error {
	_, err := m.client.PutObject(ctx, bucket, object, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return fmt.Errorf("failed to upload file: %w", err)
	}
	return nil
}
