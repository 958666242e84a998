package local

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/vbonduro/lostfound/internal/domain"
	"github.com/vbonduro/lostfound/internal/imagestore"
)

// Store keeps images in a directory that the web server exposes under baseURL.
type Store struct {
	basePath string
	baseURL  string
}

var _ imagestore.ImageStore = (*Store)(nil)

func New(basePath, baseURL string) (*Store, error) {
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create image directory: %w", err)
	}
	return &Store{basePath: basePath, baseURL: strings.TrimSuffix(baseURL, "/")}, nil
}

func (s *Store) Upload(ctx context.Context, data []byte, filename string) (string, error) {
	key, _, err := imagestore.NewKey(data)
	if err != nil {
		return "", err
	}
	filePath := filepath.Join(s.basePath, key)

	f, err := os.OpenFile(filePath, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0644)
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}
	if _, err := f.Write(data); err != nil {
		if cerr := f.Close(); cerr != nil {
			slog.Error("failed to close file after write error", "error", cerr)
		}
		if rerr := os.Remove(filePath); rerr != nil {
			slog.Error("failed to remove file after write error", "error", rerr)
		}
		return "", fmt.Errorf("failed to write file: %w", err)
	}
	if err := f.Close(); err != nil {
		if rerr := os.Remove(filePath); rerr != nil {
			slog.Error("failed to remove file after close error", "error", rerr)
		}
		return "", fmt.Errorf("failed to close file: %w", err)
	}

	slog.Debug("image stored", "key", key, "filename", filename, "bytes", len(data))
	return s.baseURL + "/" + key, nil
}

func (s *Store) Delete(ctx context.Context, publicID string) (bool, error) {
	filePath, err := s.safeJoin(publicID)
	if err != nil {
		return false, err
	}

	if err := os.Remove(filePath); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("failed to delete file: %w", err)
	}
	return true, nil
}

// Open returns the stored image and its content type for serving.
func (s *Store) Open(ctx context.Context, publicID string) (io.ReadCloser, string, error) {
	filePath, err := s.safeJoin(publicID)
	if err != nil {
		return nil, "", err
	}

	f, err := os.Open(filePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, "", fmt.Errorf("%w: image %s", domain.ErrNotFound, publicID)
		}
		return nil, "", fmt.Errorf("failed to open file: %w", err)
	}
	return f, imagestore.MimeFromExt(strings.ToLower(filepath.Ext(filePath))), nil
}

// safeJoin resolves publicID relative to basePath and rejects directory traversal.
func (s *Store) safeJoin(publicID string) (string, error) {
	absBase, err := filepath.Abs(s.basePath)
	if err != nil {
		return "", fmt.Errorf("invalid base path: %w", err)
	}

	absPath, err := filepath.Abs(filepath.Join(s.basePath, publicID))
	if err != nil {
		return "", fmt.Errorf("invalid path: %w", err)
	}

	if !strings.HasPrefix(absPath, absBase+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: invalid image id %q", domain.ErrInvalidArgument, publicID)
	}
	return absPath, nil
}
