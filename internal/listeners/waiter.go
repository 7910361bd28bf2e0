package listeners

import (
	"context"

	log "github.com/sirupsen/logrus"
)

// RunWaiter blocks until ctx is canceled without binding any socket. It
// stands in for DoT/DoH when tls_cert_config is absent, per spec.md §3's
// invariant that those listeners are installed as no-op waiters.
func RunWaiter(ctx context.Context, name string) error {
	log.Infof("%s listener disabled (no tls_cert_config configured)", name)
	<-ctx.Done()
	return nil
}
