package document

import (
	"context"
	"fmt"
	"strings"

	"github.com/viant/afs"
)

// Store reads and writes documents.
type Store interface {
	Open(ctx context.Context, path string) (*Document, error)
	Exists(ctx context.Context, path string) (bool, error)
	Write(ctx context.Context, path string, text string) error
}

// FileStore is a Store backed by an afs.Service, so paths may be local files
// or any URL scheme afs understands (mem://, s3://, ...).
type FileStore struct {
	fs afs.Service
}

// NewStore returns a FileStore using the default afs service.
func NewStore() *FileStore {
	return &FileStore{fs: afs.New()}
}

// Open downloads path and returns a snapshot of it.
func (s *FileStore) Open(ctx context.Context, path string) (*Document, error) {
	data, err := s.fs.DownloadWithURL(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	return New(path, string(data)), nil
}

// Exists reports whether path exists.
func (s *FileStore) Exists(ctx context.Context, path string) (bool, error) {
	return s.fs.Exists(ctx, path)
}

// Write replaces the content of path.
func (s *FileStore) Write(ctx context.Context, path string, text string) error {
	if err := s.fs.Upload(ctx, path, 0644, strings.NewReader(text)); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}
	return nil
}
