package listeners

import "errors"

// Sentinel error kinds matching spec.md §7's startup error taxonomy. Wrap
// them with fmt.Errorf("%w: ...", ErrX, ...) so callers can still
// errors.Is against the kind.
var (
	ErrParseListenAddress = errors.New("failed to parse listen address")
	ErrUDPSocketBind      = errors.New("failed to bind udp socket")
	ErrTCPSocketBind      = errors.New("failed to bind tcp socket")
	ErrTLSConfig          = errors.New("failed to configure tls listener")
)
