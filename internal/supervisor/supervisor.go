// Package supervisor implements Director's lifecycle supervisor (C6): it
// wires the shared handler to the four transport listeners, runs them
// concurrently, and coordinates shutdown on SIGINT/SIGTERM or on the first
// listener's fatal error.
package supervisor

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/terrastack-cloud/director/internal/cache"
	"github.com/terrastack-cloud/director/internal/certresolver"
	"github.com/terrastack-cloud/director/internal/config"
	"github.com/terrastack-cloud/director/internal/handler"
	"github.com/terrastack-cloud/director/internal/listeners"
	"github.com/terrastack-cloud/director/internal/upstream"
)

// Run builds the shared handler and forwarding client from the default
// configuration, starts the four transport listeners (UDP, TCP, and DoT/DoH
// when tls_cert_config is configured, otherwise no-op waiters), and blocks
// until a signal arrives, ctx is canceled, or any listener fails fatally. It
// returns the first fatal error encountered, or nil on a clean shutdown,
// joining the listeners through errgroup.WithContext.
func Run(ctx context.Context) error {
	return RunWithConfig(ctx, config.Default())
}

// RunWithConfig is Run with an explicit configuration, split out so
// cmd/director can load a Config first and so tests can exercise the
// supervisor without touching the filesystem.
func RunWithConfig(ctx context.Context, cfg config.Config) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	c := cache.New(cfg.Cache.Enabled, cfg.Cache.TTL)
	client := upstream.New()
	h := handler.New(cfg, c, client)

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error { return listeners.RunUDP(ctx, cfg.Listen.UDP, h) })
	g.Go(func() error { return listeners.RunTCP(ctx, cfg.Listen.TCP, h) })

	if cfg.TLSCertConfig != nil {
		resolver := certresolver.New(cfg.TLSCertConfig.CertPath, cfg.TLSCertConfig.KeyPath)
		g.Go(func() error { return listeners.RunDoT(ctx, cfg.Listen.TLS, h, resolver.GetCertificate) })
		g.Go(func() error {
			return listeners.RunDoH(ctx, cfg.Listen.HTTP, cfg.EndpointOrDefault(), h.Answer, resolver.GetCertificate)
		})
	} else {
		log.Infof("tls_cert_config absent: DoT and DoH listeners disabled")
		g.Go(func() error { return listeners.RunWaiter(ctx, "dot") })
		g.Go(func() error { return listeners.RunWaiter(ctx, "doh") })
	}

	log.Infof("director listening: udp=%s tcp=%s tls=%s https=%s",
		cfg.Listen.UDP, cfg.Listen.TCP, cfg.Listen.TLS, cfg.Listen.HTTP)

	return g.Wait()
}
