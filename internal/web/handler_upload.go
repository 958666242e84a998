package web

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/vbonduro/lostfound/internal/domain"
	"github.com/vbonduro/lostfound/internal/imagestore"
)

// multipartMemory is the part of a multipart body held in memory; the rest
// spills to temp files.
const multipartMemory = 8 << 20

// parseForm reads a multipart or urlencoded body, capped at the image limit
// plus room for the text fields.
func (s *Server) parseForm(w http.ResponseWriter, r *http.Request) error {
	r.Body = http.MaxBytesReader(w, r.Body, s.opts.MaxImageBytes+(1<<20))

	var err error
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		err = r.ParseMultipartForm(multipartMemory)
	} else {
		err = r.ParseForm()
	}
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return fmt.Errorf("%w: image exceeds %d bytes", domain.ErrInvalidArgument, s.opts.MaxImageBytes)
		}
		return fmt.Errorf("%w: failed to parse form: %v", domain.ErrInvalidArgument, err)
	}
	return nil
}

// uploadImage stores the optional image in field and returns its URL, or ""
// when no file was sent. It runs before any workflow call so a rejected or
// failed upload leaves no state behind.
func (s *Server) uploadImage(r *http.Request, field string) (string, error) {
	if r.MultipartForm == nil {
		return "", nil
	}
	file, header, err := r.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("%w: failed to read %s: %v", domain.ErrInvalidArgument, field, err)
	}
	defer closeWithLog(file, "upload file", s.logger)

	data, err := io.ReadAll(io.LimitReader(file, s.opts.MaxImageBytes+1))
	if err != nil {
		return "", fmt.Errorf("failed to read upload: %w", err)
	}
	if _, err := imagestore.Validate(data, s.opts.MaxImageBytes); err != nil {
		return "", err
	}

	url, err := s.opts.Images.Upload(r.Context(), data, header.Filename)
	if err != nil {
		return "", fmt.Errorf("failed to store image: %w", err)
	}
	return url, nil
}

func (s *Server) handleGetImage(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	reader, mimeType, err := s.opts.LocalImages.Open(r.Context(), name)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	defer closeWithLog(reader, "image reader", s.logger)

	w.Header().Set("Content-Type", mimeType)
	w.Header().Set("Cache-Control", "private, max-age=86400")
	if _, err := io.Copy(w, reader); err != nil {
		s.logger.Error("write image failed", "name", name, "error", err)
	}
}

// closeWithLog closes c and logs any error, using label to identify the resource.
func closeWithLog(c io.Closer, label string, logger *slog.Logger) {
	if err := c.Close(); err != nil {
		logger.Error("failed to close resource", "label", label, "error", err)
	}
}
