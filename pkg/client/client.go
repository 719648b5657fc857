// Package client talks to the application backend: project submission,
// payment orders and verification, and remote option lists. It also carries
// the multipart uploader for the asset host.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/uuid"

	"github.com/goliatone/go-stepform/pkg/engine"
	"github.com/goliatone/go-stepform/pkg/gate"
	"github.com/goliatone/go-stepform/pkg/model"
)

// RequestIDHeader carries a per-call correlation id.
const RequestIDHeader = "X-Request-ID"

// Config configures a Client.
type Config struct {
	BaseURL    string
	HTTPClient *http.Client
}

// Client is the backend API client. It satisfies gate.Submitter,
// gate.PaymentAPI and engine.OptionsLoader.
type Client struct {
	base *url.URL
	http *http.Client
}

var (
	_ gate.Submitter       = (*Client)(nil)
	_ gate.PaymentAPI      = (*Client)(nil)
	_ engine.OptionsLoader = (*Client)(nil)
)

// New validates cfg and returns a Client.
func New(cfg Config) (*Client, error) {
	raw := strings.TrimSpace(cfg.BaseURL)
	if raw == "" {
		return nil, ErrBaseURL
	}
	base, err := url.Parse(strings.TrimRight(raw, "/"))
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("%w: %q", ErrBaseURL, raw)
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{base: base, http: httpClient}, nil
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message,omitempty"`
	Data    json.RawMessage `json:"data"`
}

type messageData struct {
	Message string `json:"message"`
}

// CreateProject posts payload to /v1/{slug}/create-project and returns the
// server's confirmation message. A reply without a data object is a failure.
func (c *Client) CreateProject(ctx context.Context, slug string, payload map[string]any) (string, error) {
	const op = "create project"
	env, err := c.do(ctx, op, http.MethodPost, "/v1/"+url.PathEscape(slug)+"/create-project", payload)
	if err != nil {
		return "", err
	}
	var data messageData
	if err := json.Unmarshal(env.Data, &data); err != nil {
		return "", &APIError{Op: op, Status: http.StatusOK, Err: fmt.Errorf("decode data: %w", err)}
	}
	return data.Message, nil
}

// Submit implements gate.Submitter.
func (c *Client) Submit(ctx context.Context, slug string, payload map[string]any) (string, error) {
	return c.CreateProject(ctx, slug, payload)
}

// CreateOrder implements gate.PaymentAPI. The amount is sent verbatim.
func (c *Client) CreateOrder(ctx context.Context, amount string) (gate.Order, error) {
	const op = "create order"
	env, err := c.do(ctx, op, http.MethodPost, "/payment/create-order", map[string]string{"amount": amount})
	if err != nil {
		return gate.Order{}, err
	}
	var data struct {
		Order gate.Order `json:"order"`
	}
	if err := json.Unmarshal(env.Data, &data); err != nil {
		return gate.Order{}, &APIError{Op: op, Status: http.StatusOK, Err: fmt.Errorf("decode order: %w", err)}
	}
	if data.Order.ID == "" {
		return gate.Order{}, &APIError{Op: op, Status: http.StatusOK, Err: errors.New("order id missing")}
	}
	return data.Order, nil
}

// VerifyPayment implements gate.PaymentAPI.
func (c *Client) VerifyPayment(ctx context.Context, v gate.Verification) error {
	_, err := c.do(ctx, "verify payment", http.MethodPost, "/payment/verify-payment", v)
	return err
}

// Options implements engine.OptionsLoader: GET {base}{source}, where data is
// either a list of strings or a list of objects with value/label (or name/id)
// keys.
func (c *Client) Options(ctx context.Context, source string) ([]model.Option, error) {
	const op = "list options"
	env, err := c.do(ctx, op, http.MethodGet, source, nil)
	if err != nil {
		return nil, err
	}
	var items []any
	if err := json.Unmarshal(env.Data, &items); err != nil {
		return nil, &APIError{Op: op, Status: http.StatusOK, Err: fmt.Errorf("decode options: %w", err)}
	}

	out := make([]model.Option, 0, len(items))
	for _, item := range items {
		switch v := item.(type) {
		case string:
			if strings.TrimSpace(v) != "" {
				out = append(out, model.Option{Value: v, Label: v})
			}
		case map[string]any:
			value := pick(v, "value", "name", "id")
			if value == "" {
				continue
			}
			label := pick(v, "label", "name")
			if label == "" {
				label = value
			}
			out = append(out, model.Option{Value: value, Label: label})
		}
	}
	return out, nil
}

func pick(record map[string]any, keys ...string) string {
	for _, key := range keys {
		if raw, ok := record[key]; ok && raw != nil {
			if text := strings.TrimSpace(fmt.Sprint(raw)); text != "" {
				return text
			}
		}
	}
	return ""
}

func (c *Client) endpoint(path string) (string, error) {
	ref, err := url.Parse(path)
	if err != nil {
		return "", fmt.Errorf("parse path: %w", err)
	}
	if ref.IsAbs() {
		return ref.String(), nil
	}
	u := *c.base
	u.Path = strings.TrimRight(c.base.Path, "/") + "/" + strings.TrimLeft(ref.Path, "/")
	u.RawQuery = ref.RawQuery
	return u.String(), nil
}

func (c *Client) do(ctx context.Context, op, method, path string, body any) (envelope, error) {
	target, err := c.endpoint(path)
	if err != nil {
		return envelope{}, &APIError{Op: op, Err: err}
	}

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return envelope{}, &APIError{Op: op, Err: fmt.Errorf("encode body: %w", err)}
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return envelope{}, &APIError{Op: op, Err: fmt.Errorf("request: %w", err)}
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set(RequestIDHeader, uuid.NewString())

	resp, err := c.http.Do(req)
	if err != nil {
		return envelope{}, &APIError{Op: op, Err: fmt.Errorf("do request: %w", err)}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return envelope{}, &APIError{Op: op, Status: resp.StatusCode, Err: fmt.Errorf("read body: %w", err)}
	}

	var env envelope
	decodeErr := json.Unmarshal(raw, &env)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return envelope{}, &APIError{Op: op, Status: resp.StatusCode, Message: serverMessage(env)}
	}
	if decodeErr != nil {
		return envelope{}, &APIError{Op: op, Status: resp.StatusCode, Err: fmt.Errorf("decode: %w", decodeErr)}
	}
	if !env.Success {
		return envelope{}, &APIError{Op: op, Status: resp.StatusCode, Message: serverMessage(env)}
	}
	if !hasData(env.Data) {
		return envelope{}, &APIError{Op: op, Status: resp.StatusCode, Err: ErrDataMissing}
	}
	return env, nil
}

// hasData reports whether a success envelope carries a data value.
func hasData(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && !bytes.Equal(trimmed, []byte("null"))
}

func serverMessage(env envelope) string {
	if env.Message != "" {
		return env.Message
	}
	var data messageData
	if len(env.Data) > 0 && json.Unmarshal(env.Data, &data) == nil {
		return data.Message
	}
	return ""
}
