// Package proxy implements the forwarding engine behind the imposter's
// proxy response type: it re-issues a captured request against the real
// destination, buffers the full response, and normalizes it into a record
// the imposter can persist or replay.
package proxy

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"strconv"
	"time"

	"imposter-proxy-go/internal/config"
	"imposter-proxy-go/internal/metrics"
	"imposter-proxy-go/internal/model"
)

// Forwarder relays captured requests to real destinations. One Forwarder
// serves any number of concurrent calls: every descriptor, buffer, and
// timer is call-local, and the fields below are read-only after
// construction.
type Forwarder struct {
	logger             *slog.Logger
	metrics            *metrics.Metrics
	httpProxy          *url.URL
	httpsProxy         *url.URL
	timeout            time.Duration
	insecureSkipVerify bool
}

// NewForwarder builds a Forwarder from config. Forward-proxy endpoints are
// resolved once here — config first, then the conventional http_proxy and
// https_proxy environment variables — rather than per call. The metrics
// parameter is optional; pass nil to disable relay metrics recording.
func NewForwarder(cfg *config.Config, logger *slog.Logger, m *metrics.Metrics) (*Forwarder, error) {
	f := &Forwarder{
		logger:             logger.With("component", "forwarder"),
		metrics:            m,
		timeout:            time.Duration(cfg.Relay.TimeoutSeconds) * time.Second,
		insecureSkipVerify: !cfg.Relay.VerifyCertificates,
	}

	var err error
	if f.httpProxy, err = forwardProxyEndpoint(cfg.Relay.HTTPProxy, "http_proxy"); err != nil {
		return nil, err
	}
	if f.httpsProxy, err = forwardProxyEndpoint(cfg.Relay.HTTPSProxy, "https_proxy"); err != nil {
		return nil, err
	}
	return f, nil
}

// forwardProxyEndpoint resolves one scheme's forward-proxy endpoint,
// preferring the configured value over the environment variable. Empty
// means direct connections.
func forwardProxyEndpoint(configured, envName string) (*url.URL, error) {
	endpoint := configured
	if endpoint == "" {
		endpoint = os.Getenv(envName)
	}
	if endpoint == "" {
		return nil, nil
	}
	u, err := url.Parse(endpoint)
	if err != nil {
		return nil, fmt.Errorf("parse forward proxy %s=%q: %w", envName, endpoint, err)
	}
	return u, nil
}

// To relays the captured request to the destination named by proxyBaseURL
// and returns the normalized response record. Exactly one outbound
// connection is opened per call and closed afterwards; the whole response
// is buffered before the call returns. When ctx carries no deadline the
// configured relay timeout applies; a zero timeout leaves the call
// unbounded.
func (f *Forwarder) To(ctx context.Context, proxyBaseURL string, req *model.InboundRequest, opts *model.ProxyOptions) (*model.ResponseRecord, error) {
	d, err := f.buildDescriptor(proxyBaseURL, req, opts)
	if err != nil {
		return nil, err
	}

	if _, ok := ctx.Deadline(); !ok && f.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.timeout)
		defer cancel()
	}

	f.logger.Debug("=>", "requestFrom", req.RequestFrom, "request", req)

	start := time.Now()
	resp, err := f.dispatch(ctx, d, req.Body)
	if err != nil {
		f.observe(d.method, start, 0)
		return nil, translateError(proxyBaseURL, err)
	}

	rec, err := normalize(resp, start)
	if err != nil {
		f.observe(d.method, start, resp.StatusCode)
		return nil, translateError(proxyBaseURL, err)
	}
	f.observe(d.method, start, rec.StatusCode)

	f.logger.Debug("<=", "response", rec)
	return rec, nil
}

// observe records relay metrics for one call. A zero status means the call
// failed before a response arrived.
func (f *Forwarder) observe(method string, start time.Time, status int) {
	if f.metrics == nil {
		return
	}
	m := metrics.NormalizeMethod(method)
	f.metrics.RelayDuration.WithLabelValues(m).Observe(time.Since(start).Seconds())
	if status != 0 {
		f.metrics.RelayResponses.WithLabelValues(m, strconv.Itoa(status)).Inc()
	}
}
