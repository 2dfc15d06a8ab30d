package handler

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"imposter-proxy-go/internal/config"
)

func TestRegisterRoutes_Wiring(t *testing.T) {
	destination := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer destination.Close()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	proxyHandler := NewProxyHandler(newTestForwarder(t), logger)
	health := NewHealthHandler(&config.Config{}, "test")

	e := echo.New()
	RegisterRoutes(e, proxyHandler, health)

	call := `{"to": "` + destination.URL + `", "request": {"method": "GET", "path": "/"}}`

	tests := []struct {
		name       string
		method     string
		path       string
		body       string
		wantStatus int
	}{
		{"GET /healthz", http.MethodGet, "/healthz", "", http.StatusOK},
		{"GET /imposters/proxy/status", http.MethodGet, "/imposters/proxy/status", "", http.StatusOK},
		{"POST /imposters/proxy", http.MethodPost, "/imposters/proxy", call, http.StatusOK},
		{"GET /imposters/proxy is not routed", http.MethodGet, "/imposters/proxy", "", http.StatusMethodNotAllowed},
		{"GET /unknown returns 404", http.MethodGet, "/unknown", "", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var body io.Reader = http.NoBody
			if tt.body != "" {
				body = strings.NewReader(tt.body)
			}
			req := httptest.NewRequest(tt.method, tt.path, body)
			if tt.body != "" {
				req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
			}
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
		})
	}
}
