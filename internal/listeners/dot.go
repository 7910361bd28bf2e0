package listeners

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"time"

	"github.com/miekg/dns"
	log "github.com/sirupsen/logrus"
)

// dotIdleTimeout is the per-connection idle timeout for DoT, per
// spec.md §4.5.
const dotIdleTimeout = 30 * time.Second

// dotALPN is the ALPN protocol ID DoT clients negotiate, per RFC 7858.
const dotALPN = "dot"

// RunDoT binds addr as a DNS-over-TLS listener (RFC 7858), using
// getCertificate as the TLS stack's certificate resolver, and serves h
// until ctx is canceled. Only called when tls_cert_config is present; see
// RunWaiter for the absent-config path.
func RunDoT(ctx context.Context, addr string, h dns.Handler, getCertificate func(*tls.ClientHelloInfo) (*tls.Certificate, error)) error {
	if _, err := net.ResolveTCPAddr("tcp", addr); err != nil {
		return fmt.Errorf("%w: tls %q: %v", ErrParseListenAddress, addr, err)
	}

	tlsConf := &tls.Config{
		GetCertificate: getCertificate,
		NextProtos:     []string{dotALPN},
		MinVersion:     tls.VersionTLS12,
	}

	srv := &dns.Server{
		Addr:        addr,
		Net:         "tcp-tls",
		TLSConfig:   tlsConf,
		Handler:     h,
		IdleTimeout: func() time.Duration { return dotIdleTimeout },
	}
	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	select {
	case <-ctx.Done():
		log.Infof("dot listener on %s shutting down", addr)
		_ = srv.Shutdown()
		<-errCh
		return nil
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("%w: tls %q: %v", ErrTLSConfig, addr, err)
		}
		return nil
	}
}
