package listeners

import (
	"context"
	"crypto/tls"
	"encoding/base64"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/miekg/dns"
	log "github.com/sirupsen/logrus"
)

// dohIdleTimeout is the per-connection idle timeout for DoH, per
// spec.md §4.5.
const dohIdleTimeout = 30 * time.Second

// dohMimeType is the RFC 8484 wire-format content type.
const dohMimeType = "application/dns-message"

// answerFunc produces a DNS response for a parsed request; it is the
// transport-agnostic core of C4 (handler.Handler.Answer).
type answerFunc func(*dns.Msg) *dns.Msg

// RunDoH binds addr as a DNS-over-HTTPS listener (RFC 8484) at path,
// accepting GET with a base64url "dns" query parameter and POST with an
// application/dns-message body, and serves until ctx is canceled. Only
// called when tls_cert_config is present; see RunWaiter for the
// absent-config path.
func RunDoH(ctx context.Context, addr, path string, answer answerFunc, getCertificate func(*tls.ClientHelloInfo) (*tls.Certificate, error)) error {
	if _, err := net.ResolveTCPAddr("tcp", addr); err != nil {
		return fmt.Errorf("%w: http %q: %v", ErrParseListenAddress, addr, err)
	}

	mux := http.NewServeMux()
	mux.HandleFunc(path, dohHandlerFunc(answer))

	tlsConf := &tls.Config{
		GetCertificate: getCertificate,
		MinVersion:     tls.VersionTLS12,
	}
	srv := &http.Server{
		Addr:         addr,
		Handler:      mux,
		TLSConfig:    tlsConf,
		IdleTimeout:  dohIdleTimeout,
		ReadTimeout:  dohIdleTimeout,
		WriteTimeout: dohIdleTimeout,
	}

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("%w: http %q: %v", ErrTCPSocketBind, addr, err)
	}
	ln = tls.NewListener(ln, tlsConf)

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(ln) }()

	select {
	case <-ctx.Done():
		log.Infof("doh listener on %s shutting down", addr)
		_ = srv.Shutdown(context.Background())
		<-errCh
		return nil
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("%w: http %q: %v", ErrTLSConfig, addr, err)
		}
		return nil
	}
}

func dohHandlerFunc(answer answerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		raw, err := readDNSMessage(r)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		req := new(dns.Msg)
		if err := req.Unpack(raw); err != nil {
			http.Error(w, "invalid dns message", http.StatusBadRequest)
			return
		}

		resp := answer(req)
		packed, err := resp.Pack()
		if err != nil {
			log.Errorf("doh: packing response: %v", err)
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", dohMimeType)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(packed)
	}
}

func readDNSMessage(r *http.Request) ([]byte, error) {
	switch r.Method {
	case http.MethodGet:
		b64 := r.URL.Query().Get("dns")
		if b64 == "" {
			return nil, fmt.Errorf("missing dns query parameter")
		}
		return base64.RawURLEncoding.DecodeString(b64)
	case http.MethodPost:
		defer r.Body.Close()
		return io.ReadAll(io.LimitReader(r.Body, dns.MaxMsgSize))
	default:
		return nil, fmt.Errorf("method not allowed: %s", r.Method)
	}
}
