// Package handler implements Director's request handler (C4): the
// per-query state machine that validates a request, consults the cache,
// fans out to upstreams with failover, and produces a response message.
package handler

import (
	"net"
	"strings"

	"github.com/miekg/dns"
	log "github.com/sirupsen/logrus"

	"github.com/terrastack-cloud/director/internal/cache"
	"github.com/terrastack-cloud/director/internal/config"
)

// forwarder is the subset of upstream.Client's surface the handler depends
// on, so tests can substitute a fake.
type forwarder interface {
	Forward(name string, qtype uint16, upstreams []string) *dns.Msg
}

// Handler is the shared, concurrency-safe per-query state machine driving
// C4. It holds only read-only configuration and a reference to the shared
// cache, so it is cheap to share by pointer across every listener.
type Handler struct {
	cfg       config.Config
	cache     *cache.Cache
	forwarder forwarder
}

// New constructs a Handler over a snapshot of cfg, the shared cache, and the
// upstream client to use for forwarding.
func New(cfg config.Config, c *cache.Cache, fwd forwarder) *Handler {
	return &Handler{cfg: cfg, cache: c, forwarder: fwd}
}

// validUpstreams parses the configured upstream strings to endpoint
// addresses, logging and skipping any that fail to parse.
func (h *Handler) validUpstreams() []string {
	var valid []string
	for _, u := range h.cfg.Upstreams {
		if _, _, err := net.SplitHostPort(u); err != nil {
			log.Errorf("skipping malformed upstream %q: %v", u, err)
			continue
		}
		valid = append(valid, u)
	}
	return valid
}

// Answer implements the C4 algorithm of spec.md §4.4 and returns the
// response message for req. It performs no I/O of its own beyond upstream
// forwarding (via the forwarder) and cache access -- transmission is the
// caller's job.
func (h *Handler) Answer(req *dns.Msg) *dns.Msg {
	resp := new(dns.Msg)
	resp.Id = req.Id
	resp.Response = true
	resp.Opcode = dns.OpcodeQuery
	if req.RecursionDesired {
		resp.RecursionDesired = true
		resp.RecursionAvailable = true
	}

	upstreams := h.validUpstreams()
	if len(upstreams) == 0 {
		resp.Rcode = dns.RcodeServerFailure
		return resp
	}

	for _, q := range req.Question {
		name := strings.ToLower(q.Name)
		key := cache.Key(name, q.Qtype)

		if cached, ok := h.cache.Get(key); ok {
			log.Debugf("cache hit for %s %s", name, dns.TypeToString[q.Qtype])
			cached.Id = req.Id
			resp = cached
			break
		}

		resp.Rcode = dns.RcodeNameError
		reply := h.forwarder.Forward(name, q.Qtype, upstreams)
		if reply == nil {
			resp.Rcode = dns.RcodeServerFailure
			continue
		}

		reply.Id = req.Id
		resp = reply
		h.cache.Insert(key, reply)
		break
	}

	// An adopted cached or upstream message carries the upstream's header
	// flags; echo the request's RD, with RA alongside it.
	resp.RecursionDesired = req.RecursionDesired
	resp.RecursionAvailable = req.RecursionDesired

	return resp
}

// ServeDNS implements dns.Handler, suitable for registration on a
// *dns.ServeMux used by the UDP, TCP, and DoT listeners.
func (h *Handler) ServeDNS(w dns.ResponseWriter, req *dns.Msg) {
	resp := h.Answer(req)
	if err := w.WriteMsg(resp); err != nil {
		log.Warnf("writing response to %s: %v", w.RemoteAddr(), err)
	}
}
