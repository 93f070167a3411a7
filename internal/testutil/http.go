package testutil

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

// Envelope is the decoded API response with the payload left raw
type Envelope struct {
	Succeeded bool            `json:"succeeded"`
	Messages  []string        `json:"messages"`
	Data      json.RawMessage `json:"data"`
	Code      string          `json:"code"`
	RequestID string          `json:"requestId"`
}

// Into decodes the payload into v
func (e Envelope) Into(t *testing.T, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(e.Data, v), "decode data: %s", string(e.Data))
}

// Request describes one call against a handler
type Request struct {
	Method      string
	Path        string
	Token       string
	Body        any
	RawBody     io.Reader
	ContentType string
}

// Do serves req and returns the recorded response. Body is sent as JSON
// unless RawBody is set.
func Do(t *testing.T, h http.Handler, req Request) *httptest.ResponseRecorder {
	t.Helper()

	body := req.RawBody
	contentType := req.ContentType
	if body == nil && req.Body != nil {
		raw, err := json.Marshal(req.Body)
		require.NoError(t, err)
		body = bytes.NewReader(raw)
		contentType = "application/json"
	}

	r := httptest.NewRequest(req.Method, req.Path, body)
	if contentType != "" {
		r.Header.Set("Content-Type", contentType)
	}
	if req.Token != "" {
		r.Header.Set("Authorization", "Bearer "+req.Token)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)
	return w
}

// DecodeEnvelope parses the recorded body as an API envelope
func DecodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) Envelope {
	t.Helper()
	var env Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), "decode envelope: %s", w.Body.String())
	return env
}

// MultipartFile builds a multipart body holding one file field
func MultipartFile(t *testing.T, field, filename string, content []byte) (io.Reader, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile(field, filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}
