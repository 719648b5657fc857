package client

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-stepform/pkg/engine"
	"github.com/goliatone/go-stepform/pkg/gate"
	"github.com/goliatone/go-stepform/pkg/model"
)

type recorded struct {
	method    string
	path      string
	body      map[string]any
	requestID string
}

func testServer(t *testing.T, status int, response string, calls *[]recorded) *Client {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := recorded{method: r.Method, path: r.URL.Path, requestID: r.Header.Get(RequestIDHeader)}
		if r.Body != nil {
			raw, _ := io.ReadAll(r.Body)
			if len(raw) > 0 {
				require.NoError(t, json.Unmarshal(raw, &rec.body))
			}
		}
		*calls = append(*calls, rec)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, response)
	}))
	t.Cleanup(srv.Close)

	c, err := New(Config{BaseURL: srv.URL + "/", HTTPClient: srv.Client()})
	require.NoError(t, err)
	return c
}

func TestCreateProject(t *testing.T) {
	var calls []recorded
	c := testServer(t, http.StatusOK, `{"success":true,"data":{"message":"Registered successfully"}}`, &calls)

	msg, err := c.CreateProject(context.Background(), "startup-cafe", map[string]any{"name": "Asha", "paymentId": "pay_1"})
	require.NoError(t, err)
	assert.Equal(t, "Registered successfully", msg)

	require.Len(t, calls, 1)
	assert.Equal(t, http.MethodPost, calls[0].method)
	assert.Equal(t, "/v1/startup-cafe/create-project", calls[0].path)
	assert.Equal(t, map[string]any{"name": "Asha", "paymentId": "pay_1"}, calls[0].body)
	_, err = uuid.Parse(calls[0].requestID)
	assert.NoError(t, err, "request id should be a uuid")
}

func TestCreateProjectFailures(t *testing.T) {
	cases := []struct {
		name    string
		status  int
		body    string
		message string
	}{
		{"success false", http.StatusOK, `{"success":false,"data":{"message":"Email already registered"}}`, "Email already registered"},
		{"server error", http.StatusInternalServerError, `{"success":false,"message":"boom"}`, "boom"},
		{"unexpected shape", http.StatusOK, `<html>`, ""},
		{"missing data", http.StatusOK, `{"success":true}`, ""},
		{"null data", http.StatusOK, `{"success":true,"data":null}`, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var calls []recorded
			c := testServer(t, tc.status, tc.body, &calls)

			_, err := c.CreateProject(context.Background(), "pitch-x", map[string]any{})
			require.Error(t, err)
			var apiErr *APIError
			require.True(t, errors.As(err, &apiErr))
			assert.Equal(t, tc.status, apiErr.Status)
			assert.Equal(t, tc.message, apiErr.UserMessage())
		})
	}
}

func TestCreateOrderSendsLiteralAmount(t *testing.T) {
	var calls []recorded
	c := testServer(t, http.StatusOK, `{"success":true,"data":{"order":{"id":"order_9","amount":62500,"currency":"INR"}}}`, &calls)

	order, err := c.CreateOrder(context.Background(), "625")
	require.NoError(t, err)
	assert.Equal(t, "order_9", order.ID)
	assert.Equal(t, "INR", order.Currency)
	assert.Equal(t, "/payment/create-order", calls[0].path)
	assert.Equal(t, map[string]any{"amount": "625"}, calls[0].body)
}

func TestCreateOrderRequiresID(t *testing.T) {
	var calls []recorded
	c := testServer(t, http.StatusOK, `{"success":true,"data":{"order":{}}}`, &calls)
	_, err := c.CreateOrder(context.Background(), "1250")
	require.Error(t, err)
}

func TestVerifyPayment(t *testing.T) {
	var calls []recorded
	c := testServer(t, http.StatusOK, `{"success":true,"data":{}}`, &calls)

	err := c.VerifyPayment(context.Background(), gate.Verification{OrderID: "order_9", PaymentID: "pay_1", Signature: "sig"})
	require.NoError(t, err)
	assert.Equal(t, "/payment/verify-payment", calls[0].path)
	assert.Equal(t, map[string]any{"order_id": "order_9", "payment_id": "pay_1", "signature": "sig"}, calls[0].body)
}

func TestVerifyPaymentRequiresData(t *testing.T) {
	for _, body := range []string{`{"success":true}`, `{"success":true,"data":null}`} {
		var calls []recorded
		c := testServer(t, http.StatusOK, body, &calls)

		err := c.VerifyPayment(context.Background(), gate.Verification{OrderID: "order_9", PaymentID: "pay_1", Signature: "sig"})
		require.Error(t, err, body)
		var apiErr *APIError
		require.True(t, errors.As(err, &apiErr))
		assert.ErrorIs(t, err, ErrDataMissing)
	}
}

func TestOptions(t *testing.T) {
	var calls []recorded
	c := testServer(t, http.StatusOK, `{"success":true,"data":["PSG Tech",{"name":"CIT"},{"value":"kec","label":"Kongu"},""]}`, &calls)

	got, err := c.Options(context.Background(), "/college/list")
	require.NoError(t, err)
	assert.Equal(t, []model.Option{
		{Value: "PSG Tech", Label: "PSG Tech"},
		{Value: "CIT", Label: "CIT"},
		{Value: "kec", Label: "Kongu"},
	}, got)
	assert.Equal(t, http.MethodGet, calls[0].method)
	assert.Equal(t, "/college/list", calls[0].path)
}

func TestNewRejectsBadBaseURL(t *testing.T) {
	_, err := New(Config{})
	assert.ErrorIs(t, err, ErrBaseURL)
	_, err = New(Config{BaseURL: "not a url"})
	assert.ErrorIs(t, err, ErrBaseURL)
}

func TestUploader(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "stepform", r.FormValue("upload_preset"))
		file, header, err := r.FormFile("file")
		require.NoError(t, err)
		defer file.Close()
		raw, _ := io.ReadAll(file)
		assert.Equal(t, "deck.pdf", header.Filename)
		assert.Equal(t, "%PDF", string(raw))
		_, _ = io.WriteString(w, `{"secure_url":"https://cdn.example.com/deck.pdf","url":"http://cdn.example.com/deck.pdf"}`)
	}))
	defer srv.Close()

	u, err := NewUploader(UploaderConfig{URL: srv.URL, Preset: "stepform", HTTPClient: srv.Client()})
	require.NoError(t, err)
	url, err := u.Upload(context.Background(), engine.File{Name: "deck.pdf", ContentType: "application/pdf", Body: strings.NewReader("%PDF")})
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/deck.pdf", url)
}

func TestUploaderFallsBackToURLAndReportsFailures(t *testing.T) {
	status := http.StatusOK
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		if status != http.StatusOK {
			_, _ = io.WriteString(w, `{"error":{"message":"Upload preset not found"}}`)
			return
		}
		_, _ = io.WriteString(w, `{"url":"http://cdn.example.com/a.png"}`)
	}))
	defer srv.Close()

	u, err := NewUploader(UploaderConfig{URL: srv.URL, HTTPClient: srv.Client()})
	require.NoError(t, err)

	url, err := u.Upload(context.Background(), engine.File{Name: "a.png", Body: strings.NewReader("png")})
	require.NoError(t, err)
	assert.Equal(t, "http://cdn.example.com/a.png", url)

	status = http.StatusBadRequest
	_, err = u.Upload(context.Background(), engine.File{Name: "a.png", Body: strings.NewReader("png")})
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "Upload preset not found", apiErr.UserMessage())
}
