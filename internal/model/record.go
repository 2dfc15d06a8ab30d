// Package model defines the serializable request and response records
// exchanged with the imposter runtime.
package model

// BodyMode says how a ResponseRecord body is encoded.
type BodyMode string

const (
	// ModeText marks a body stored as raw UTF-8 text.
	ModeText BodyMode = "text"
	// ModeBinary marks a body stored as standard base64.
	ModeBinary BodyMode = "binary"
)

// InboundRequest is the structured request captured by the imposter, to be
// re-issued against the real destination. It is owned by the caller and
// never mutated by the relay.
type InboundRequest struct {
	RequestFrom string      `json:"requestFrom,omitempty"`
	Method      string      `json:"method"`
	Path        string      `json:"path"`
	Query       FieldValues `json:"query,omitempty"`
	Headers     FieldValues `json:"headers,omitempty"`
	Body        string      `json:"body,omitempty"`
}

// ProxyOptions carries optional client-certificate material (PEM) for
// mutual TLS to the destination.
type ProxyOptions struct {
	Cert string `json:"cert,omitempty"`
	Key  string `json:"key,omitempty"`
}

// ResponseRecord is the normalized destination response handed back to the
// imposter for persistence or replay. Immutable once produced.
type ResponseRecord struct {
	StatusCode        int         `json:"statusCode"`
	Headers           FieldValues `json:"headers"`
	Body              string      `json:"body"`
	Mode              BodyMode    `json:"mode"`
	ProxyResponseTime int64       `json:"proxyResponseTime"`
}
