package storage

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/church-content-api/internal/config"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/rs/zerolog"
)

// MinIOStore keeps image binaries in an object-storage bucket
type MinIOStore struct {
	client *minio.Client
	bucket string
	log    zerolog.Logger
}

// Verify interface compliance
var _ Store = (*MinIOStore)(nil)

// NewMinIOStore connects to the endpoint and ensures the bucket exists
func NewMinIOStore(ctx context.Context, cfg *config.MinIOConfig, log zerolog.Logger) (*MinIOStore, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{Region: cfg.Region}); err != nil {
			return nil, fmt.Errorf("failed to create bucket: %w", err)
		}
	}

	store := &MinIOStore{
		client: client,
		bucket: cfg.Bucket,
		log:    log.With().Str("component", "storage.minio").Logger(),
	}

	store.log.Info().
		Str("endpoint", cfg.Endpoint).
		Str("bucket", cfg.Bucket).
		Msg("MinIO storage initialized")

	return store, nil
}

// Save uploads the image bytes under the reference as object name
func (s *MinIOStore) Save(ctx context.Context, ref string, r io.Reader, size int64, contentType string) error {
	if !ValidRef(ref) {
		return ErrInvalidRef
	}

	_, err := s.client.PutObject(ctx, s.bucket, ref, r, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return fmt.Errorf("failed to upload to minio: %w", err)
	}

	s.log.Debug().Str("ref", ref).Int64("size", size).Msg("Image stored")
	return nil
}

// Open streams an object back with its stored content type
func (s *MinIOStore) Open(ctx context.Context, ref string) (*Object, error) {
	if !ValidRef(ref) {
		return nil, ErrInvalidRef
	}

	stat, err := s.client.StatObject(ctx, s.bucket, ref, minio.StatObjectOptions{})
	if err != nil {
		if isNoSuchKey(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to stat object: %w", err)
	}

	obj, err := s.client.GetObject(ctx, s.bucket, ref, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to get object: %w", err)
	}

	contentType := stat.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	return &Object{Reader: obj, ContentType: contentType, Size: stat.Size}, nil
}

// Delete removes an object unconditionally; missing objects yield ErrNotFound
func (s *MinIOStore) Delete(ctx context.Context, ref string) error {
	if !ValidRef(ref) {
		return ErrInvalidRef
	}

	// RemoveObject succeeds on absent keys, so check existence first to
	// honor the NotFound contract
	if _, err := s.client.StatObject(ctx, s.bucket, ref, minio.StatObjectOptions{}); err != nil {
		if isNoSuchKey(err) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to stat object: %w", err)
	}

	if err := s.client.RemoveObject(ctx, s.bucket, ref, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("failed to remove object: %w", err)
	}
	return nil
}

// List returns every stored reference in the bucket
func (s *MinIOStore) List(ctx context.Context) ([]string, error) {
	refs := []string{}
	for obj := range s.client.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{}) {
		if obj.Err != nil {
			return nil, fmt.Errorf("failed to list objects: %w", obj.Err)
		}
		refs = append(refs, obj.Key)
	}
	return refs, nil
}

func isNoSuchKey(err error) bool {
	var resp minio.ErrorResponse
	if errors.As(err, &resp) {
		return resp.Code == "NoSuchKey"
	}
	return false
}
