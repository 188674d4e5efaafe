package ports

import (
	"context"
	"io"
)

// FileStore persists uploaded invoice attachments on the server side.
// Save assigns the stored file a unique name and returns its path.
type FileStore interface {
	Save(ctx context.Context, content io.Reader, originalName string) (string, error)
	Open(ctx context.Context, path string) (io.ReadCloser, error)
	Remove(ctx context.Context, path string) error
}
