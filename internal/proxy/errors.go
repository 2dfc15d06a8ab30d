package proxy

import (
	"errors"
	"fmt"
	"net"
	"syscall"
)

// InvalidProxyError reports a destination that is unresolvable or
// unreachable. It is user-correctable (fix the destination URL or the
// network) and never fatal to the hosting process.
type InvalidProxyError struct {
	Message string
}

func (e *InvalidProxyError) Error() string { return e.Message }

// translateError maps a transport failure onto the relay's error taxonomy.
// DNS resolution failures and refused or reset connections become
// InvalidProxyError; any other failure passes through unchanged so unknown
// failure modes keep their raw diagnostic detail.
func translateError(baseURL string, err error) error {
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return &InvalidProxyError{Message: fmt.Sprintf("Cannot resolve %q", baseURL)}
	}
	if errors.Is(err, syscall.ECONNREFUSED) || errors.Is(err, syscall.ECONNRESET) {
		return &InvalidProxyError{Message: fmt.Sprintf("Unable to connect to %q", baseURL)}
	}
	return err
}
