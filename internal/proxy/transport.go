package proxy

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// newTransport builds a single-use transport for one outbound call.
// Keep-alives are off because the relay opens exactly one connection per
// call, and transparent decompression is off so the body bytes arrive as
// they were on the wire (a gzip Content-Encoding drives binary
// classification downstream). Certificate verification is relaxed per
// config so self-signed destinations stay reachable.
func (f *Forwarder) newTransport(d *descriptor) (*http.Transport, error) {
	tlsCfg := &tls.Config{InsecureSkipVerify: f.insecureSkipVerify} //nolint:gosec // destinations with self-signed certs must be reachable
	if d.cert != "" || d.key != "" {
		pair, err := tls.X509KeyPair([]byte(d.cert), []byte(d.key))
		if err != nil {
			return nil, fmt.Errorf("load client certificate: %w", err)
		}
		tlsCfg.Certificates = []tls.Certificate{pair}
	}

	t := &http.Transport{
		TLSClientConfig:    tlsCfg,
		DisableKeepAlives:  true,
		DisableCompression: true,
	}
	if d.proxyURL != nil {
		t.Proxy = http.ProxyURL(d.proxyURL)
	}
	return t, nil
}

// dispatch issues the outbound request described by d and returns the raw
// response. The body, when present, is written in full and the request
// finalized before the response is read; transport failures propagate
// untranslated.
func (f *Forwarder) dispatch(ctx context.Context, d *descriptor, body string) (*http.Response, error) {
	t, err := f.newTransport(d)
	if err != nil {
		return nil, err
	}

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, d.method, d.scheme+"://"+d.hostHeader()+d.path, reader)
	if err != nil {
		return nil, fmt.Errorf("build outbound request: %w", err)
	}

	for name, vals := range d.headers {
		// Host travels on the request line, Content-Length is computed
		// from the body.
		if strings.EqualFold(name, "Host") || strings.EqualFold(name, "Content-Length") {
			continue
		}
		for _, v := range vals {
			req.Header.Add(name, v)
		}
	}
	req.Host = d.headers.Get("Host")
	req.Close = true

	if d.auth != "" {
		user, pass, _ := strings.Cut(d.auth, ":")
		req.SetBasicAuth(user, pass)
	}

	client := &http.Client{Transport: t}
	return client.Do(req)
}
