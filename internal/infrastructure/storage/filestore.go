// Package storage keeps uploaded invoice attachments on local disk under a
// configurable base directory.
package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// DiskStore implements ports.FileStore on the local filesystem. Stored
// names are UUID-prefixed so concurrent uploads of the same filename never
// collide.
type DiskStore struct {
	baseDir string
	maxSize int64
}

// NewDiskStore creates the base directory if needed. maxSize limits a
// single upload in bytes; zero means no limit.
func NewDiskStore(baseDir string, maxSize int64) (*DiskStore, error) {
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &DiskStore{baseDir: baseDir, maxSize: maxSize}, nil
}

// Save writes the content to disk and returns the stored path.
func (s *DiskStore) Save(ctx context.Context, content io.Reader, originalName string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	name := fmt.Sprintf("%s_%s", uuid.NewString(), sanitize(originalName))
	path := filepath.Join(s.baseDir, name)

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create file: %w", err)
	}
	defer f.Close()

	reader := content
	if s.maxSize > 0 {
		reader = io.LimitReader(content, s.maxSize+1)
	}

	n, err := io.Copy(f, reader)
	if err != nil {
		_ = os.Remove(path)
		return "", fmt.Errorf("write file: %w", err)
	}
	if s.maxSize > 0 && n > s.maxSize {
		_ = os.Remove(path)
		return "", fmt.Errorf("file exceeds maximum size of %d bytes", s.maxSize)
	}

	return path, nil
}

// Open returns the stored file for reading.
func (s *DiskStore) Open(_ context.Context, path string) (io.ReadCloser, error) {
	return os.Open(path)
}

// Remove deletes the stored file.
func (s *DiskStore) Remove(_ context.Context, path string) error {
	return os.Remove(path)
}

// sanitize strips path separators and leading dots out of client-supplied
// filenames.
func sanitize(name string) string {
	name = filepath.Base(name)
	name = strings.TrimLeft(name, ".")
	if name == "" {
		return "archivo"
	}
	return name
}
