package listeners

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/miekg/dns"
	log "github.com/sirupsen/logrus"
)

// tcpIdleTimeout is the per-connection idle timeout for the plain TCP
// listener, per spec.md §4.5.
const tcpIdleTimeout = 10 * time.Second

// RunTCP binds addr as a plain TCP DNS listener (RFC 7766 length-prefixed
// framing, handled by miekg/dns) and serves h until ctx is canceled.
func RunTCP(ctx context.Context, addr string, h dns.Handler) error {
	if _, err := net.ResolveTCPAddr("tcp", addr); err != nil {
		return fmt.Errorf("%w: tcp %q: %v", ErrParseListenAddress, addr, err)
	}

	srv := &dns.Server{
		Addr:        addr,
		Net:         "tcp",
		Handler:     h,
		IdleTimeout: func() time.Duration { return tcpIdleTimeout },
	}
	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	select {
	case <-ctx.Done():
		log.Infof("tcp listener on %s shutting down", addr)
		_ = srv.Shutdown()
		<-errCh
		return nil
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("%w: tcp %q: %v", ErrTCPSocketBind, addr, err)
		}
		return nil
	}
}
