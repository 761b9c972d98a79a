package storage

import (
	"context"
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
)

// LocalStore keeps image binaries as flat files under a single directory
type LocalStore struct {
	dir string
	log zerolog.Logger
}

// Verify interface compliance
var _ Store = (*LocalStore)(nil)

// NewLocalStore creates the directory if needed and returns the store
func NewLocalStore(dir string, log zerolog.Logger) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create image directory: %w", err)
	}
	return &LocalStore{
		dir: dir,
		log: log.With().Str("component", "storage.local").Logger(),
	}, nil
}

func (s *LocalStore) path(ref string) (string, error) {
	if !ValidRef(ref) {
		return "", ErrInvalidRef
	}
	return filepath.Join(s.dir, filepath.Base(ref)), nil
}

// Save writes the image bytes to a new file named after the reference
func (s *LocalStore) Save(ctx context.Context, ref string, r io.Reader, size int64, contentType string) error {
	path, err := s.path(ref)
	if err != nil {
		return err
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return fmt.Errorf("failed to create image file: %w", err)
	}

	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(path)
		return fmt.Errorf("failed to write image file: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return fmt.Errorf("failed to close image file: %w", err)
	}

	s.log.Debug().Str("ref", ref).Int64("size", size).Msg("Image stored")
	return nil
}

// Open streams an image back; the content type is derived from the
// reference's extension
func (s *LocalStore) Open(ctx context.Context, ref string) (*Object, error) {
	path, err := s.path(ref)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to open image file: %w", err)
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to stat image file: %w", err)
	}

	contentType := mime.TypeByExtension(filepath.Ext(ref))
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	return &Object{Reader: f, ContentType: contentType, Size: info.Size()}, nil
}

// Delete removes the backing file unconditionally
func (s *LocalStore) Delete(ctx context.Context, ref string) error {
	path, err := s.path(ref)
	if err != nil {
		return err
	}

	if err := os.Remove(path); err != nil {
		if os.IsNotExist(err) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to delete image file: %w", err)
	}
	return nil
}

// List returns every stored reference
func (s *LocalStore) List(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read image directory: %w", err)
	}

	refs := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		refs = append(refs, e.Name())
	}
	return refs, nil
}
