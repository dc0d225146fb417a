// Package storage persists uploaded files on the local filesystem.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// ErrOutsideRoot is returned for paths that resolve outside the storage root.
var ErrOutsideRoot = errors.New("path outside storage root")

// LocalImageStorage writes files under root and hands back public paths
// prefixed with publicPrefix, e.g. "/uploads/items/<id>/<file>.jpg".
type LocalImageStorage struct {
	root         string
	publicPrefix string
}

// NewLocalImageStorage creates the root directory if needed.
func NewLocalImageStorage(root, publicPrefix string) (*LocalImageStorage, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve upload dir: %w", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &LocalImageStorage{root: abs, publicPrefix: "/" + strings.Trim(publicPrefix, "/")}, nil
}

// Root returns the absolute directory served under the public prefix.
func (s *LocalImageStorage) Root() string { return s.root }

// PublicPrefix returns the URL prefix of stored files.
func (s *LocalImageStorage) PublicPrefix() string { return s.publicPrefix }

// SaveItemImage stores JPEG data for an item and returns its public path.
func (s *LocalImageStorage) SaveItemImage(ctx context.Context, itemID uuid.UUID, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	rel := path.Join("items", itemID.String(), uuid.NewString()+".jpg")
	full := filepath.Join(s.root, filepath.FromSlash(rel))

	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return "", fmt.Errorf("create item dir: %w", err)
	}
	if err := os.WriteFile(full, data, 0o644); err != nil {
		return "", fmt.Errorf("write image: %w", err)
	}
	return s.publicPrefix + "/" + rel, nil
}

// Delete removes a file previously returned by SaveItemImage. Missing files
// are not an error.
func (s *LocalImageStorage) Delete(ctx context.Context, publicPath string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	full, err := s.resolve(publicPath)
	if err != nil {
		return err
	}
	if err := os.Remove(full); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove image: %w", err)
	}
	return nil
}

func (s *LocalImageStorage) resolve(publicPath string) (string, error) {
	rel := strings.TrimPrefix(publicPath, s.publicPrefix)
	rel = strings.TrimPrefix(path.Clean("/"+rel), "/")
	if rel == "" {
		return "", ErrOutsideRoot
	}
	full := filepath.Join(s.root, filepath.FromSlash(rel))
	if !strings.HasPrefix(full, s.root+string(filepath.Separator)) {
		return "", ErrOutsideRoot
	}
	return full, nil
}
