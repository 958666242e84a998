// Package imagestore holds uploaded evidence, item and receipt images and
// hands back the URL the workflows store.
package imagestore

import (
	"context"
	"fmt"
	"net/http"

	"github.com/google/uuid"

	"github.com/vbonduro/lostfound/internal/domain"
)

// DefaultMaxBytes is the upload limit when none is configured.
const DefaultMaxBytes = 10 << 20

type ImageStore interface {
	// Upload stores data and returns its public URL.
	Upload(ctx context.Context, data []byte, filename string) (string, error)
	// Delete removes the image with the given public id. It reports false when
	// nothing was stored under that id.
	Delete(ctx context.Context, publicID string) (bool, error)
}

var allowedTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// isWebP reports whether data is a RIFF container tagged WEBP. The stdlib
// sniffer has no WebP signature.
func isWebP(data []byte) bool {
	return len(data) >= 12 &&
		string(data[0:4]) == "RIFF" &&
		string(data[8:12]) == "WEBP"
}

// DetectType returns the MIME type of an accepted image, or false.
func DetectType(data []byte) (string, bool) {
	if isWebP(data) {
		return "image/webp", true
	}
	mime := http.DetectContentType(data)
	if _, ok := allowedTypes[mime]; ok {
		return mime, true
	}
	return "", false
}

// Validate checks size and format before anything is stored.
func Validate(data []byte, maxBytes int64) (string, error) {
	if len(data) == 0 {
		return "", fmt.Errorf("%w: image is empty", domain.ErrInvalidArgument)
	}
	if maxBytes > 0 && int64(len(data)) > maxBytes {
		return "", fmt.Errorf("%w: image exceeds %d bytes", domain.ErrInvalidArgument, maxBytes)
	}
	mime, ok := DetectType(data)
	if !ok {
		return "", fmt.Errorf("%w: unsupported image format (allowed: jpeg, png, gif, webp)", domain.ErrInvalidArgument)
	}
	return mime, nil
}

// NewKey returns a fresh object name for data, with the extension of its type.
func NewKey(data []byte) (key, mime string, err error) {
	mime, ok := DetectType(data)
	if !ok {
		return "", "", fmt.Errorf("%w: unsupported image format", domain.ErrInvalidArgument)
	}
	return uuid.NewString() + allowedTypes[mime], mime, nil
}

// MimeFromExt maps a stored object name back to its content type.
func MimeFromExt(ext string) string {
	for mime, e := range allowedTypes {
		if e == ext {
			return mime
		}
	}
	return "application/octet-stream"
}
