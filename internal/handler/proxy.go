package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"imposter-proxy-go/internal/model"
	"imposter-proxy-go/internal/proxy"
)

// ProxyCall is the JSON payload of a relay request: the destination base
// URL, the captured inbound request, and optional mutual-TLS material.
type ProxyCall struct {
	To      string                `json:"to"`
	Request *model.InboundRequest `json:"request"`
	Cert    string                `json:"cert,omitempty"`
	Key     string                `json:"key,omitempty"`
}

// ProxyHandler exposes the forwarding engine to the imposter runtime.
type ProxyHandler struct {
	forwarder *proxy.Forwarder
	logger    *slog.Logger
}

// NewProxyHandler creates a ProxyHandler.
func NewProxyHandler(f *proxy.Forwarder, logger *slog.Logger) *ProxyHandler {
	return &ProxyHandler{
		forwarder: f,
		logger:    logger.With("component", "proxy_handler"),
	}
}

// Handle relays the captured request to its destination and returns the
// normalized response record as JSON.
func (h *ProxyHandler) Handle(c echo.Context) error {
	var call ProxyCall
	if err := c.Bind(&call); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "malformed proxy call payload",
		})
	}
	if call.To == "" || call.Request == nil {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "proxy call requires 'to' and 'request'",
		})
	}

	opts := &model.ProxyOptions{Cert: call.Cert, Key: call.Key}
	rec, err := h.forwarder.To(c.Request().Context(), call.To, call.Request, opts)
	if err != nil {
		return h.mapError(c, err)
	}

	return c.JSON(http.StatusOK, rec)
}

func (h *ProxyHandler) mapError(c echo.Context, err error) error {
	h.logger.Error("relay error",
		"err", err,
		"path", c.Request().URL.Path,
	)

	var invalid *proxy.InvalidProxyError
	if errors.As(err, &invalid) {
		return c.JSON(http.StatusBadGateway, map[string]string{
			"error": invalid.Message,
		})
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return c.JSON(http.StatusGatewayTimeout, map[string]string{
			"error": "destination request timed out",
		})
	}

	if errors.Is(err, context.Canceled) {
		return c.JSON(http.StatusBadGateway, map[string]string{
			"error": "client disconnected",
		})
	}

	// Unclassified transport failures surface with their raw detail so the
	// operator sees the underlying diagnostic.
	return c.JSON(http.StatusBadGateway, map[string]string{
		"error": err.Error(),
	})
}
