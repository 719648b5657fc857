package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"

	"github.com/google/uuid"

	"github.com/goliatone/go-stepform/pkg/engine"
)

// ErrUploadURL is returned when the asset host URL is missing.
var ErrUploadURL = errors.New("client: upload url is required")

// UploaderConfig configures the asset host uploader.
type UploaderConfig struct {
	URL        string
	Preset     string
	HTTPClient *http.Client
}

// Uploader posts files as multipart form data (fields "file" and
// "upload_preset") and returns the hosted URL.
type Uploader struct {
	url    string
	preset string
	http   *http.Client
}

var _ engine.Uploader = (*Uploader)(nil)

// NewUploader returns an Uploader for cfg.
func NewUploader(cfg UploaderConfig) (*Uploader, error) {
	if strings.TrimSpace(cfg.URL) == "" {
		return nil, ErrUploadURL
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Uploader{url: strings.TrimSpace(cfg.URL), preset: cfg.Preset, http: httpClient}, nil
}

type uploadResponse struct {
	SecureURL string `json:"secure_url"`
	URL       string `json:"url"`
	Error     *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// Upload implements engine.Uploader.
func (u *Uploader) Upload(ctx context.Context, file engine.File) (string, error) {
	const op = "upload"
	if file.Body == nil {
		return "", &APIError{Op: op, Err: errors.New("file body is nil")}
	}

	var body bytes.Buffer
	form := multipart.NewWriter(&body)
	if u.preset != "" {
		if err := form.WriteField("upload_preset", u.preset); err != nil {
			return "", &APIError{Op: op, Err: err}
		}
	}
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, file.Name))
	contentType := file.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	header.Set("Content-Type", contentType)
	part, err := form.CreatePart(header)
	if err != nil {
		return "", &APIError{Op: op, Err: err}
	}
	if _, err := io.Copy(part, file.Body); err != nil {
		return "", &APIError{Op: op, Err: fmt.Errorf("read file: %w", err)}
	}
	if err := form.Close(); err != nil {
		return "", &APIError{Op: op, Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.url, &body)
	if err != nil {
		return "", &APIError{Op: op, Err: fmt.Errorf("request: %w", err)}
	}
	req.Header.Set("Content-Type", form.FormDataContentType())
	req.Header.Set("Accept", "application/json")
	req.Header.Set(RequestIDHeader, uuid.NewString())

	resp, err := u.http.Do(req)
	if err != nil {
		return "", &APIError{Op: op, Err: fmt.Errorf("do request: %w", err)}
	}
	defer resp.Body.Close()

	var decoded uploadResponse
	decodeErr := json.NewDecoder(resp.Body).Decode(&decoded)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := ""
		if decodeErr == nil && decoded.Error != nil {
			msg = decoded.Error.Message
		}
		return "", &APIError{Op: op, Status: resp.StatusCode, Message: msg}
	}
	if decodeErr != nil {
		return "", &APIError{Op: op, Status: resp.StatusCode, Err: fmt.Errorf("decode: %w", decodeErr)}
	}
	if decoded.SecureURL != "" {
		return decoded.SecureURL, nil
	}
	if decoded.URL != "" {
		return decoded.URL, nil
	}
	return "", &APIError{Op: op, Status: resp.StatusCode, Err: errors.New("response has no url")}
}
