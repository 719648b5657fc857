package engine

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/goliatone/go-stepform/pkg/model"
)

// File is a local file handed to the upload service.
type File struct {
	Name        string
	ContentType string
	Size        int64
	Body        io.Reader
}

// Uploader stores a file and returns its public URL.
type Uploader interface {
	Upload(ctx context.Context, file File) (string, error)
}

// UploaderFunc adapts a function into an Uploader.
type UploaderFunc func(ctx context.Context, file File) (string, error)

// Upload calls the underlying function.
func (fn UploaderFunc) Upload(ctx context.Context, file File) (string, error) {
	return fn(ctx, file)
}

const uploadFailedMessage = "File upload failed, please try again"

// Upload sends file to the upload service and stores the returned URL at
// path. While the upload runs, Busy(path) reports true and a second upload to
// the same path fails with ErrUploadInFlight. On failure the field is left
// unset, an error is recorded against it and the notifier is told; the busy
// flag is always cleared. Removing a member of the group that holds path is
// refused until the upload settles, so the URL lands on the same member.
func (s *Session) Upload(ctx context.Context, path string, file File) (string, error) {
	s.mu.Lock()
	field, ok := s.def.Field(path)
	switch {
	case !ok:
		s.mu.Unlock()
		return "", fmt.Errorf("%w %q", ErrUnknownField, path)
	case field.Kind != model.FieldKindFile:
		s.mu.Unlock()
		return "", fmt.Errorf("%w: %s", ErrNotFile, path)
	case s.uploader == nil:
		s.mu.Unlock()
		return "", ErrUploaderMissing
	case s.busy[path]:
		s.mu.Unlock()
		return "", fmt.Errorf("%w: %s", ErrUploadInFlight, path)
	}
	if !accepts(field.Accept, file) {
		s.errors[path] = "Unsupported file type"
		s.mu.Unlock()
		return "", fmt.Errorf("%w: %s for %s", ErrFileType, file.Name, path)
	}
	s.busy[path] = true
	delete(s.errors, path)
	uploader := s.uploader
	s.mu.Unlock()

	url, err := uploader.Upload(ctx, file)

	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.busy, path)
	if err == nil && strings.TrimSpace(url) == "" {
		err = fmt.Errorf("empty url returned")
	}
	if err != nil {
		_ = setPath(s.values, path, "")
		s.errors[path] = uploadFailedMessage
		s.notifier.Error(uploadFailedMessage)
		return "", fmt.Errorf("%w: %s: %w", ErrUpload, path, err)
	}
	if err := setPath(s.values, path, url); err != nil {
		return "", err
	}
	return url, nil
}

// accepts checks file against an HTML accept list such as ".pdf,image/*".
func accepts(accept string, file File) bool {
	accept = strings.TrimSpace(accept)
	if accept == "" {
		return true
	}
	ext := strings.ToLower(filepath.Ext(file.Name))
	mime := strings.ToLower(file.ContentType)
	for _, token := range strings.Split(accept, ",") {
		token = strings.ToLower(strings.TrimSpace(token))
		switch {
		case token == "":
		case strings.HasPrefix(token, "."):
			if ext == token {
				return true
			}
		case strings.HasSuffix(token, "/*"):
			if mime != "" && strings.HasPrefix(mime, strings.TrimSuffix(token, "*")) {
				return true
			}
		default:
			if mime == token {
				return true
			}
		}
	}
	return false
}
