// Package storage provides the image binary stores. References are opaque
// strings assigned at upload time and immutable afterwards; the content
// service layers media-type and size validation on top.
package storage

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

// ErrNotFound is returned when no stored image matches the reference
var ErrNotFound = errors.New("image not found")

// ErrInvalidRef is returned for references that could never have been
// assigned by this store (guards the local backend against path traversal)
var ErrInvalidRef = errors.New("invalid image reference")

// Object is a stored image opened for streaming
type Object struct {
	Reader      io.ReadCloser
	ContentType string
	Size        int64
}

// Store is the image storage backend interface
type Store interface {
	Save(ctx context.Context, ref string, r io.Reader, size int64, contentType string) error
	Open(ctx context.Context, ref string) (*Object, error)
	Delete(ctx context.Context, ref string) error
	List(ctx context.Context) ([]string, error)
}

var refPattern = regexp.MustCompile(`^[A-Za-z0-9._-]+$`)

// ValidRef reports whether ref has the shape of a store-assigned reference
func ValidRef(ref string) bool {
	return ref != "" && ref != "." && ref != ".." && refPattern.MatchString(ref)
}

// NewRef assigns a collision-resistant reference distinct from the
// caller-declared name: UTC timestamp plus a random suffix plus the original
// extension (falling back to one derived from the content type).
func NewRef(declaredName, contentType string) (string, error) {
	suffix := make([]byte, 4)
	if _, err := rand.Read(suffix); err != nil {
		return "", fmt.Errorf("failed to generate reference suffix: %w", err)
	}

	ext := strings.ToLower(filepath.Ext(declaredName))
	if ext == "" {
		ext = extensionFor(contentType)
	}

	return fmt.Sprintf("%s-%s%s",
		time.Now().UTC().Format("20060102T150405"),
		hex.EncodeToString(suffix),
		ext,
	), nil
}

func extensionFor(contentType string) string {
	switch contentType {
	case "image/jpeg":
		return ".jpg"
	case "image/png":
		return ".png"
	case "image/gif":
		return ".gif"
	case "image/webp":
		return ".webp"
	case "image/svg+xml":
		return ".svg"
	default:
		return ".img"
	}
}
