package handler

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"imposter-proxy-go/internal/config"
	"imposter-proxy-go/internal/proxy"
)

func newTestForwarder(t *testing.T) *proxy.Forwarder {
	t.Helper()
	t.Setenv("http_proxy", "")
	t.Setenv("https_proxy", "")

	cfg := &config.Config{
		Relay: config.RelayConfig{TimeoutSeconds: 10},
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	f, err := proxy.NewForwarder(cfg, logger, nil)
	if err != nil {
		t.Fatalf("NewForwarder: %v", err)
	}
	return f
}

func postProxyCall(e *echo.Echo, payload string) (*httptest.ResponseRecorder, echo.Context) {
	req := httptest.NewRequest(http.MethodPost, "/imposters/proxy", strings.NewReader(payload))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return rec, e.NewContext(req, rec)
}

func TestProxyHandler_Handle_Success(t *testing.T) {
	destination := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("q") != "a b" {
			t.Errorf("q = %q, want %q", r.URL.Query().Get("q"), "a b")
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"result":"ok"}`))
	}))
	defer destination.Close()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	h := NewProxyHandler(newTestForwarder(t), logger)

	e := echo.New()
	rec, c := postProxyCall(e, `{
		"to": "`+destination.URL+`",
		"request": {"method": "GET", "path": "/search", "query": {"q": "a b"}}
	}`)

	if err := h.Handle(c); err != nil {
		t.Fatalf("Handle() error = %v", err)
	}

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}

	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if body["statusCode"] != float64(200) {
		t.Errorf("statusCode = %v, want 200", body["statusCode"])
	}
	if body["mode"] != "text" {
		t.Errorf("mode = %v, want text", body["mode"])
	}
	if body["body"] != `{"result":"ok"}` {
		t.Errorf("body = %v, want the destination payload", body["body"])
	}
}

func TestProxyHandler_Handle_MalformedPayload(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	h := NewProxyHandler(newTestForwarder(t), logger)

	e := echo.New()
	rec, c := postProxyCall(e, `{not json`)

	if err := h.Handle(c); err != nil {
		t.Fatalf("Handle() error = %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestProxyHandler_Handle_MissingFields(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	h := NewProxyHandler(newTestForwarder(t), logger)

	tests := []struct {
		name    string
		payload string
	}{
		{"missing to", `{"request": {"method": "GET", "path": "/"}}`},
		{"missing request", `{"to": "http://example.test"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := echo.New()
			rec, c := postProxyCall(e, tt.payload)

			if err := h.Handle(c); err != nil {
				t.Fatalf("Handle() error = %v", err)
			}
			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want %d", rec.Code, http.StatusBadRequest)
			}
		})
	}
}

func TestProxyHandler_Handle_InvalidProxy(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	h := NewProxyHandler(newTestForwarder(t), logger)

	e := echo.New()
	rec, c := postProxyCall(e, `{
		"to": "http://bad.invalid",
		"request": {"method": "GET", "path": "/"}
	}`)

	if err := h.Handle(c); err != nil {
		t.Fatalf("Handle() error = %v", err)
	}

	if rec.Code != http.StatusBadGateway {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadGateway)
	}

	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !strings.Contains(body["error"], `Cannot resolve "http://bad.invalid"`) {
		t.Errorf("error = %q, want it to contain the resolution failure", body["error"])
	}
}

func TestProxyHandler_Handle_RepeatedResponseHeaders(t *testing.T) {
	destination := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Add("Set-Cookie", "a=1")
		w.Header().Add("Set-Cookie", "b=2")
		_, _ = w.Write([]byte("ok"))
	}))
	defer destination.Close()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	h := NewProxyHandler(newTestForwarder(t), logger)

	e := echo.New()
	rec, c := postProxyCall(e, `{
		"to": "`+destination.URL+`",
		"request": {"method": "GET", "path": "/"}
	}`)

	if err := h.Handle(c); err != nil {
		t.Fatalf("Handle() error = %v", err)
	}

	var body struct {
		Headers map[string]json.RawMessage `json:"headers"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got := string(body.Headers["Set-Cookie"]); got != `["a=1","b=2"]` {
		t.Errorf("Set-Cookie = %s, want [\"a=1\",\"b=2\"]", got)
	}
}
