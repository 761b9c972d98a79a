package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/church-content-api/internal/storage"
	"github.com/rs/zerolog"
)

// imageService is the concrete implementation of ImageService
type imageService struct {
	store   storage.Store
	maxSize int64
	log     zerolog.Logger
}

// newImageService creates a new ImageService
func newImageService(store storage.Store, maxSize int64, log zerolog.Logger) *imageService {
	return &imageService{
		store:   store,
		maxSize: maxSize,
		log:     log.With().Str("service", "image").Logger(),
	}
}

// Upload validates the declared media type and size, assigns a reference
// and stores the bytes. The returned reference is immutable.
func (s *imageService) Upload(ctx context.Context, r io.Reader, size int64, declaredName, contentType string) (string, error) {
	if !strings.HasPrefix(contentType, "image/") {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedMediaType, contentType)
	}
	if size > s.maxSize {
		return "", fmt.Errorf("%w: %d bytes exceeds the %d byte ceiling", ErrTooLarge, size, s.maxSize)
	}

	ref, err := storage.NewRef(declaredName, contentType)
	if err != nil {
		return "", err
	}

	// The declared size is advisory; enforce the ceiling on the actual bytes
	limited := io.LimitReader(r, s.maxSize+1)
	if err := s.store.Save(ctx, ref, limited, size, contentType); err != nil {
		return "", err
	}

	s.log.Info().
		Str("ref", ref).
		Str("declared_name", declaredName).
		Int64("size", size).
		Msg("Image uploaded")

	return ref, nil
}

// Open streams a stored image for serving
func (s *imageService) Open(ctx context.Context, ref string) (*storage.Object, error) {
	obj, err := s.store.Open(ctx, ref)
	if err != nil {
		if errors.Is(err, storage.ErrInvalidRef) {
			return nil, storage.ErrNotFound
		}
		return nil, err
	}
	return obj, nil
}

// Delete removes an image unconditionally. Unlike the sweep, this
// caller-invoked path is not safety-checked against post usage.
func (s *imageService) Delete(ctx context.Context, ref string) error {
	if err := s.store.Delete(ctx, ref); err != nil {
		if errors.Is(err, storage.ErrInvalidRef) {
			return storage.ErrNotFound
		}
		return err
	}

	s.log.Info().Str("ref", ref).Msg("Image deleted")
	return nil
}
