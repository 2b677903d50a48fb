package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/sandeepkv93/product-catalog-service/internal/observability"
)

const imageSniffBytes = 512

var (
	ErrImageTooLarge        = errors.New("image size exceeds the configured limit")
	ErrUnsupportedImageType = errors.New("invalid image type, only JPEG, PNG and WebP images are allowed")
	ErrStorageDisabled      = errors.New("object storage is not configured")
	ErrBucketCreationFailed = errors.New("failed to create storage bucket")
	ErrUploadFailed         = errors.New("failed to upload image")
	ErrDeleteFailed         = errors.New("failed to delete image")
	ErrURLGenerationFailed  = errors.New("failed to generate presigned URL")

	allowedImageExtensions = map[string]string{
		"image/jpeg": ".jpg",
		"image/png":  ".png",
		"image/webp": ".webp",
	}
)

// ImageUpload carries one incoming image. Size must be the exact byte count
// of Reader's content.
type ImageUpload struct {
	Filename string
	Size     int64
	Reader   io.Reader
}

// ImageStorage defines the object storage operations for product images.
type ImageStorage interface {
	// Upload stores an image under keyPrefix and returns the object key.
	Upload(ctx context.Context, keyPrefix string, upload ImageUpload) (string, error)

	// Delete removes an image by object key. Empty keys are a no-op.
	Delete(ctx context.Context, objectKey string) error

	// URL resolves an object key into a client-facing URL.
	URL(ctx context.Context, objectKey string) (string, error)

	// HealthCheck verifies the backing store is reachable.
	HealthCheck(ctx context.Context) error
}

// MinIOImageStorage implements ImageStorage using MinIO/S3-compatible storage.
type MinIOImageStorage struct {
	client       *minio.Client
	bucketName   string
	urlTTL       time.Duration
	maxImageSize int64
	initOnce     sync.Once
	initErr      error
}

// NewMinIOImageStorage creates a MinIO-backed image store.
// Bucket creation is deferred until the first operation to avoid blocking app startup.
func NewMinIOImageStorage(endpoint, accessKey, secretKey, bucketName string, useSSL bool, urlTTL time.Duration, maxImageSize int64) (*MinIOImageStorage, error) {
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}

	return &MinIOImageStorage{
		client:       client,
		bucketName:   bucketName,
		urlTTL:       urlTTL,
		maxImageSize: maxImageSize,
	}, nil
}

// lazyInit ensures the bucket exists on first use (not at startup).
func (s *MinIOImageStorage) lazyInit(ctx context.Context) error {
	s.initOnce.Do(func() {
		s.initErr = s.ensureBucketExists(ctx)
	})
	return s.initErr
}

func (s *MinIOImageStorage) ensureBucketExists(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucketName)
	if err != nil {
		return fmt.Errorf("%w: check bucket existence: %v", ErrBucketCreationFailed, err)
	}

	if !exists {
		if err := s.client.MakeBucket(ctx, s.bucketName, minio.MakeBucketOptions{}); err != nil {
			return fmt.Errorf("%w: create bucket: %v", ErrBucketCreationFailed, err)
		}
	}

	return nil
}

// Upload validates and stores one product image. The content type is detected
// from the leading bytes, never taken from client-supplied headers.
func (s *MinIOImageStorage) Upload(ctx context.Context, keyPrefix string, upload ImageUpload) (string, error) {
	start := time.Now()

	// Validate size BEFORE connecting to MinIO.
	if upload.Size <= 0 || upload.Size > s.maxImageSize {
		observability.RecordStorageOperation(ctx, "upload", "rejected_size", time.Since(start))
		return "", ErrImageTooLarge
	}

	buf := make([]byte, imageSniffBytes)
	n, err := io.ReadFull(upload.Reader, buf)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		observability.RecordStorageOperation(ctx, "upload", "read_error", time.Since(start))
		return "", fmt.Errorf("%w: read image for content detection: %v", ErrUploadFailed, err)
	}
	buf = buf[:n]

	detectedType := strings.ToLower(strings.TrimSpace(http.DetectContentType(buf)))
	ext, allowed := allowedImageExtensions[detectedType]
	if !allowed {
		observability.RecordStorageOperation(ctx, "upload", "rejected_type", time.Since(start))
		return "", ErrUnsupportedImageType
	}

	// Lazy init AFTER validation passes (defers MinIO connection until necessary).
	if err := s.lazyInit(ctx); err != nil {
		observability.RecordStorageOperation(ctx, "upload", "bucket_error", time.Since(start))
		return "", err
	}

	// Combine sniffed bytes with remaining content.
	fullFile := io.MultiReader(bytes.NewReader(buf), upload.Reader)

	objectKey := fmt.Sprintf("%s/%s%s", strings.Trim(keyPrefix, "/"), uuid.New().String(), ext)
	metadata := map[string]string{
		"Detected-Content-Type": detectedType,
		"Uploaded-At":           time.Now().UTC().Format(time.RFC3339),
	}

	_, err = s.client.PutObject(ctx, s.bucketName, objectKey, fullFile, upload.Size, minio.PutObjectOptions{
		ContentType:  detectedType,
		UserMetadata: metadata,
	})
	if err != nil {
		observability.RecordStorageOperation(ctx, "upload", "error", time.Since(start))
		return "", fmt.Errorf("%w: %v", ErrUploadFailed, err)
	}

	observability.RecordStorageOperation(ctx, "upload", "success", time.Since(start))
	observability.RecordStorageUploadBytes(ctx, upload.Size)
	return objectKey, nil
}

// Delete removes an image object. Empty keys are a fast-path no-op.
func (s *MinIOImageStorage) Delete(ctx context.Context, objectKey string) error {
	start := time.Now()

	if strings.TrimSpace(objectKey) == "" {
		return nil
	}

	// Reject path traversal attempts even though S3 keys are flat strings.
	if strings.Contains(objectKey, "..") {
		observability.RecordStorageOperation(ctx, "delete", "rejected_key", time.Since(start))
		return ErrDeleteFailed
	}

	if err := s.lazyInit(ctx); err != nil {
		observability.RecordStorageOperation(ctx, "delete", "bucket_error", time.Since(start))
		return err
	}

	if err := s.client.RemoveObject(ctx, s.bucketName, objectKey, minio.RemoveObjectOptions{}); err != nil {
		observability.RecordStorageOperation(ctx, "delete", "error", time.Since(start))
		return fmt.Errorf("%w: %v", ErrDeleteFailed, err)
	}

	observability.RecordStorageOperation(ctx, "delete", "success", time.Since(start))
	return nil
}

// URL generates a presigned GET URL for an image object.
func (s *MinIOImageStorage) URL(ctx context.Context, objectKey string) (string, error) {
	if strings.TrimSpace(objectKey) == "" {
		return "", fmt.Errorf("%w: empty object key", ErrURLGenerationFailed)
	}

	if err := s.lazyInit(ctx); err != nil {
		return "", err
	}

	presignedURL, err := s.client.PresignedGetObject(ctx, s.bucketName, objectKey, s.urlTTL, url.Values{})
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrURLGenerationFailed, err)
	}

	return presignedURL.String(), nil
}

// HealthCheck probes the bucket without mutating it.
func (s *MinIOImageStorage) HealthCheck(ctx context.Context) error {
	start := time.Now()
	if _, err := s.client.BucketExists(ctx, s.bucketName); err != nil {
		observability.RecordStorageOperation(ctx, "health", "error", time.Since(start))
		return fmt.Errorf("storage health check: %w", err)
	}
	observability.RecordStorageOperation(ctx, "health", "success", time.Since(start))
	return nil
}

// DisabledImageStorage is used when no object storage is configured. Uploads
// are refused; stored keys still resolve to local media paths so previously
// seeded rows remain renderable.
type DisabledImageStorage struct{}

func NewDisabledImageStorage() *DisabledImageStorage {
	return &DisabledImageStorage{}
}

func (*DisabledImageStorage) Upload(context.Context, string, ImageUpload) (string, error) {
	return "", ErrStorageDisabled
}

func (*DisabledImageStorage) Delete(context.Context, string) error {
	return nil
}

func (*DisabledImageStorage) URL(_ context.Context, objectKey string) (string, error) {
	if strings.TrimSpace(objectKey) == "" {
		return "", nil
	}
	return "/media/" + strings.TrimLeft(objectKey, "/"), nil
}

func (*DisabledImageStorage) HealthCheck(context.Context) error {
	return ErrStorageDisabled
}
