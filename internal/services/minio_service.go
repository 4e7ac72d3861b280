package services

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"path"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"
)

// MinioService is the object storage used for lead exports
type MinioService interface {
	UploadObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, contentType string) error
	// GetPresignedURL signs a download link that saves under the object's base name
	GetPresignedURL(ctx context.Context, bucketName, objectName string, expiry time.Duration) (string, error)
	DeleteObject(ctx context.Context, bucketName, objectName string) error
	EnsureBucketExists(ctx context.Context, bucketName string) error
	// RemoveOlderThan deletes objects under prefix last modified before cutoff
	RemoveOlderThan(ctx context.Context, bucketName, prefix string, cutoff time.Time) (int, error)
	Ping(ctx context.Context) error
}

type minioStorage struct {
	client *minio.Client
	logger *zap.Logger
}

func NewMinioService(endpoint, accessKey, secretKey string, useSSL bool, logger *zap.Logger) (MinioService, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client for %s: %w", endpoint, err)
	}
	return &minioStorage{client: client, logger: logger}, nil
}

func (m *minioStorage) UploadObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, contentType string) error {
	info, err := m.client.PutObject(ctx, bucketName, objectName, reader, objectSize, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return err
	}
	m.logger.Debug("object uploaded",
		zap.String("bucket", bucketName),
		zap.String("object", objectName),
		zap.Int64("size", info.Size))
	return nil
}

func (m *minioStorage) GetPresignedURL(ctx context.Context, bucketName, objectName string, expiry time.Duration) (string, error) {
	params := url.Values{}
	params.Set("response-content-disposition", fmt.Sprintf("attachment; filename=%q", path.Base(objectName)))
	signed, err := m.client.PresignedGetObject(ctx, bucketName, objectName, expiry, params)
	if err != nil {
		return "", err
	}
	return signed.String(), nil
}

func (m *minioStorage) DeleteObject(ctx context.Context, bucketName, objectName string) error {
	return m.client.RemoveObject(ctx, bucketName, objectName, minio.RemoveObjectOptions{})
}

func (m *minioStorage) EnsureBucketExists(ctx context.Context, bucketName string) error {
	found, err := m.client.BucketExists(ctx, bucketName)
	if err != nil {
		return err
	}
	if found {
		return nil
	}
	if err := m.client.MakeBucket(ctx, bucketName, minio.MakeBucketOptions{}); err != nil {
		// Another replica created it first
		if minio.ToErrorResponse(err).Code == "BucketAlreadyOwnedByYou" {
			return nil
		}
		return err
	}
	m.logger.Info("bucket created", zap.String("bucket", bucketName))
	return nil
}

func (m *minioStorage) RemoveOlderThan(ctx context.Context, bucketName, prefix string, cutoff time.Time) (int, error) {
	removed := 0
	for obj := range m.client.ListObjects(ctx, bucketName, minio.ListObjectsOptions{Prefix: prefix, Recursive: true}) {
		if obj.Err != nil {
			return removed, obj.Err
		}
		if !obj.LastModified.Before(cutoff) {
			continue
		}
		if err := m.DeleteObject(ctx, bucketName, obj.Key); err != nil {
			return removed, fmt.Errorf("failed to remove %s: %w", obj.Key, err)
		}
		removed++
	}
	return removed, nil
}

func (m *minioStorage) Ping(ctx context.Context) error {
	_, err := m.client.ListBuckets(ctx)
	return err
}
