package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// S3 stores blobs in an S3-compatible bucket via the MinIO client.
type S3 struct {
	client *minio.Client
	bucket string
}

// S3Config holds connection parameters for an S3-compatible backend.
type S3Config struct {
	Endpoint  string
	Bucket    string
	AccessKey string
	SecretKey string
	UseSSL    bool
}

// NewS3 creates an S3-backed store.
func NewS3(cfg S3Config) (*S3, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("storage: creating s3 client: %w", err)
	}
	slog.Info("s3 storage initialized", "endpoint", cfg.Endpoint, "bucket", cfg.Bucket)
	return &S3{client: client, bucket: cfg.Bucket}, nil
}

func (s *S3) Put(ctx context.Context, r io.Reader, size int64, filename string) (string, error) {
	locator := uuid.NewString() + strings.ToLower(filepath.Ext(filename))

	if _, err := s.client.PutObject(ctx, s.bucket, locator, r, size, minio.PutObjectOptions{}); err != nil {
		return "", fmt.Errorf("storage: uploading object %s: %w", locator, err)
	}
	return locator, nil
}

func (s *S3) Exists(ctx context.Context, locator string) (bool, error) {
	_, err := s.client.StatObject(ctx, s.bucket, locator, minio.StatObjectOptions{})
	if err != nil {
		var resp minio.ErrorResponse
		if errors.As(err, &resp) && resp.Code == "NoSuchKey" {
			return false, nil
		}
		return false, fmt.Errorf("storage: stat object %s: %w", locator, err)
	}
	return true, nil
}

func (s *S3) Size(ctx context.Context, locator string) (int64, error) {
	info, err := s.client.StatObject(ctx, s.bucket, locator, minio.StatObjectOptions{})
	if err != nil {
		return 0, fmt.Errorf("storage: stat object %s: %w", locator, err)
	}
	return info.Size, nil
}

func (s *S3) OpenRange(ctx context.Context, locator string, start, end int64) (io.ReadCloser, error) {
	opts := minio.GetObjectOptions{}
	if err := opts.SetRange(start, end); err != nil {
		return nil, fmt.Errorf("storage: invalid range %d-%d: %w", start, end, err)
	}
	obj, err := s.client.GetObject(ctx, s.bucket, locator, opts)
	if err != nil {
		return nil, fmt.Errorf("storage: getting object %s: %w", locator, err)
	}
	return obj, nil
}

func (s *S3) Remove(ctx context.Context, locator string) error {
	if err := s.client.RemoveObject(ctx, s.bucket, locator, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("storage: removing object %s: %w", locator, err)
	}
	return nil
}
