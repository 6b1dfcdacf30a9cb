// Package staging provides cleanup-guaranteed temporary storage for decoded
// upload bytes between decoding and permanent ingestion.
package staging

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/gofrs/uuid"
	"go.uber.org/zap"
)

// Store writes decoded bytes to uniquely-named files under a base directory.
// Concurrent Put calls never contend on the same file.
type Store struct {
	dir    string
	prefix string
	logger *zap.Logger
}

// File is a staged temporary file. It is valid for exactly one ingestion and
// must be released with Close; callers defer Close at acquisition so the file
// is removed on every exit path.
type File struct {
	Path        string
	Name        string
	Size        int64
	ContentType string

	closeOnce sync.Once
	closeErr  error
	logger    *zap.Logger
}

// NewStore creates a staging store rooted at dir. An empty dir falls back to
// the system temp directory.
func NewStore(dir, prefix string, logger *zap.Logger) *Store {
	if dir == "" {
		dir = os.TempDir()
	}
	if prefix == "" {
		prefix = "staging"
	}
	return &Store{dir: dir, prefix: prefix, logger: logger}
}

// Put writes data to a freshly allocated temporary file and returns its
// handle. ext is the suggested extension for the staged name (with or without
// a leading dot); contentType is the caller-declared media type, recorded on
// the handle for the next stage.
func (s *Store) Put(data []byte, ext, contentType string) (*File, error) {
	name, err := s.uniqueName(ext)
	if err != nil {
		return nil, err
	}

	path := filepath.Join(s.dir, name)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return nil, fmt.Errorf("failed to stage file %s: %w", path, err)
	}

	s.logger.Debug("Staged temporary file",
		zap.String("path", path),
		zap.Int("size", len(data)),
		zap.String("content_type", contentType),
	)

	return &File{
		Path:        path,
		Name:        name,
		Size:        int64(len(data)),
		ContentType: contentType,
		logger:      s.logger,
	}, nil
}

// Close removes the staged file. Calling Close more than once is a safe no-op;
// the first result is returned on every call.
func (f *File) Close() error {
	f.closeOnce.Do(func() {
		err := os.Remove(f.Path)
		if err != nil && !os.IsNotExist(err) {
			f.closeErr = fmt.Errorf("failed to remove staged file %s: %w", f.Path, err)
			f.logger.Warn("Failed to remove staged file",
				zap.String("path", f.Path),
				zap.Error(err),
			)
			return
		}
		f.logger.Debug("Removed staged file", zap.String("path", f.Path))
	})
	return f.closeErr
}

// uniqueName builds a collision-free file name from a fresh UUID.
func (s *Store) uniqueName(ext string) (string, error) {
	id, err := uuid.NewV4()
	if err != nil {
		return "", fmt.Errorf("failed to allocate staging name: %w", err)
	}
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return s.prefix + "-" + id.String() + ext, nil
}
