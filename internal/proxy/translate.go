package proxy

import (
	"fmt"
	"net"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"imposter-proxy-go/internal/model"
)

// descriptor is the fully-resolved outbound request. It lives for exactly
// one call and carries everything the transport needs.
type descriptor struct {
	method   string
	scheme   string
	hostname string
	port     int
	auth     string // "user:pass", empty when the base URL carries none
	path     string // path plus encoded query string
	headers  model.FieldValues
	cert     string
	key      string
	proxyURL *url.URL // forward proxy for this scheme, nil for direct
}

// defaultPort returns the conventional port for the scheme.
func defaultPort(scheme string) int {
	if scheme == "https" {
		return 443
	}
	return 80
}

// hostHeader renders the Host header value: hostname alone on the scheme's
// default port, hostname:port otherwise. IPv6 literals keep their RFC 3986
// brackets.
func (d *descriptor) hostHeader() string {
	if d.port == defaultPort(d.scheme) {
		if strings.Contains(d.hostname, ":") {
			return "[" + d.hostname + "]"
		}
		return d.hostname
	}
	return net.JoinHostPort(d.hostname, strconv.Itoa(d.port))
}

// buildDescriptor resolves the destination base URL and the inbound request
// into an outbound descriptor. Pure data transformation: no I/O happens
// here, and identical inputs yield structurally equal descriptors. The
// inbound request is never mutated; headers are cloned before the
// Connection and Host rewrites.
func (f *Forwarder) buildDescriptor(baseURL string, req *model.InboundRequest, opts *model.ProxyOptions) (*descriptor, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse destination %q: %w", baseURL, err)
	}
	switch u.Scheme {
	case "http", "https":
	default:
		return nil, fmt.Errorf("destination %q: unsupported scheme %q", baseURL, u.Scheme)
	}
	if u.Hostname() == "" {
		return nil, fmt.Errorf("destination %q: missing host", baseURL)
	}

	port := defaultPort(u.Scheme)
	if p := u.Port(); p != "" {
		port, err = strconv.Atoi(p)
		if err != nil {
			return nil, fmt.Errorf("destination %q: invalid port %q", baseURL, p)
		}
	}

	d := &descriptor{
		method:   req.Method,
		scheme:   u.Scheme,
		hostname: u.Hostname(),
		port:     port,
		path:     toURL(req.Path, req.Query),
		headers:  req.Headers.Clone(),
	}

	if ui := u.User; ui != nil {
		pass, _ := ui.Password()
		d.auth = ui.Username() + ":" + pass
	}

	// The relay never keeps the destination connection alive, and the Host
	// header must name the destination, not the imposter.
	d.headers.Set("Connection", "close")
	d.headers.Set("Host", d.hostHeader())

	if opts != nil {
		d.cert = opts.Cert
		d.key = opts.Key
	}

	if u.Scheme == "https" {
		d.proxyURL = f.httpsProxy
	} else {
		d.proxyURL = f.httpProxy
	}

	return d, nil
}

// toURL joins the path and the encoded query, appending "?" only when the
// query mapping is non-empty.
func toURL(path string, query model.FieldValues) string {
	qs := encodeQuery(query)
	if qs == "" {
		return path
	}
	return path + "?" + qs
}

// encodeQuery renders the query mapping as a wire query string. Keys are
// emitted in sorted order so identical inputs produce identical strings;
// repeated values under one key keep their order. Spaces encode as %20.
func encodeQuery(query model.FieldValues) string {
	if len(query) == 0 {
		return ""
	}
	keys := make([]string, 0, len(query))
	for k := range query {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, k := range keys {
		for _, v := range query[k] {
			if b.Len() > 0 {
				b.WriteByte('&')
			}
			b.WriteString(escapeQuery(k))
			b.WriteByte('=')
			b.WriteString(escapeQuery(v))
		}
	}
	return b.String()
}

// escapeQuery percent-encodes a query component, using %20 rather than "+"
// for spaces so the produced path matches the wire form the destination sees.
func escapeQuery(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}
