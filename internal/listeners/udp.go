// Package listeners implements Director's transport listeners (C5): the
// UDP, TCP, DoT, and DoH front ends that all feed the same shared request
// handler and honor the same cancellation context.
package listeners

import (
	"context"
	"fmt"
	"net"

	"github.com/miekg/dns"
	log "github.com/sirupsen/logrus"
)

// RunUDP binds addr as a plain UDP DNS listener and serves h until ctx is
// canceled. A malformed addr is a fatal, eager ParseListenAddress error; a
// bind failure surfaces as UDPSocketBind.
func RunUDP(ctx context.Context, addr string, h dns.Handler) error {
	if _, err := net.ResolveUDPAddr("udp", addr); err != nil {
		return fmt.Errorf("%w: udp %q: %v", ErrParseListenAddress, addr, err)
	}

	srv := &dns.Server{Addr: addr, Net: "udp", Handler: h}
	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	select {
	case <-ctx.Done():
		log.Infof("udp listener on %s shutting down", addr)
		_ = srv.Shutdown()
		<-errCh
		return nil
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("%w: udp %q: %v", ErrUDPSocketBind, addr, err)
		}
		return nil
	}
}
