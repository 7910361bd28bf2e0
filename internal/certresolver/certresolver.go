// Package certresolver implements Director's certificate resolver (C3): a
// GetCertificate callback for crypto/tls that resolves an SNI name to a
// certificate chain and key, loading from disk lazily and caching forever.
package certresolver

import (
	"crypto/tls"
	"errors"
	"os"
	"sync"

	log "github.com/sirupsen/logrus"
)

// ErrNoSNI is returned when a ClientHello carries no server name; per
// spec.md §4.3 an absent SNI yields "no certificate" and aborts the
// handshake.
var ErrNoSNI = errors.New("certresolver: client hello carries no server name")

// ErrUnavailable is returned for any I/O or parse failure while loading the
// configured certificate (the underlying error is logged, not wrapped); the
// failure is never cached, so the next handshake retries
// disk I/O -- this lets operators hot-replace expiring files.
var ErrUnavailable = errors.New("certresolver: certificate unavailable")

// Resolver resolves a ClientHello's SNI to a (chain, key) pair read from a
// single configured PEM file pair. The per-SNI cache key preserves the
// ability to later extend to multiple certificate files; today every SNI
// resolves to the same configured pair.
type Resolver struct {
	certPath string
	keyPath  string

	mu    sync.RWMutex
	certs map[string]*tls.Certificate
}

// New constructs a Resolver that loads certPath/keyPath on first use.
func New(certPath, keyPath string) *Resolver {
	return &Resolver{
		certPath: certPath,
		keyPath:  keyPath,
		certs:    make(map[string]*tls.Certificate),
	}
}

// GetCertificate is suitable for assignment to tls.Config.GetCertificate. It
// is invoked synchronously by the TLS stack during ClientHello processing.
func (r *Resolver) GetCertificate(hello *tls.ClientHelloInfo) (*tls.Certificate, error) {
	sni := hello.ServerName
	if sni == "" {
		return nil, ErrNoSNI
	}

	r.mu.RLock()
	cert, ok := r.certs[sni]
	r.mu.RUnlock()
	if ok {
		return cert, nil
	}

	certPEM, err := os.ReadFile(r.certPath)
	if err != nil {
		log.Errorf("certresolver: reading certificate %s: %v", r.certPath, err)
		return nil, ErrUnavailable
	}
	keyPEM, err := os.ReadFile(r.keyPath)
	if err != nil {
		log.Errorf("certresolver: reading key %s: %v", r.keyPath, err)
		return nil, ErrUnavailable
	}

	pair, err := tls.X509KeyPair(certPEM, keyPEM)
	if err != nil {
		log.Errorf("certresolver: parsing key pair for SNI %q: %v", sni, err)
		return nil, ErrUnavailable
	}

	// Tolerate a benign race: two concurrent handshakes for a new SNI may
	// both load from disk and both insert here. The entries are
	// semantically identical, so the later writer winning is harmless.
	r.mu.Lock()
	r.certs[sni] = &pair
	r.mu.Unlock()

	return &pair, nil
}
