// Package upstream implements Director's upstream client (C1): issuing one
// DNS query to a single upstream address over plain UDP and returning its
// raw reply.
package upstream

import (
	"time"

	"github.com/miekg/dns"
	log "github.com/sirupsen/logrus"
)

// queryTimeout bounds how long a single upstream exchange may take; it is
// the UDP client's responsibility per spec.md §4.1, not the caller's.
const queryTimeout = 2 * time.Second

// Client issues DNS queries against a sequence of upstream addresses,
// failing over to the next on any error. It holds no per-upstream state, so
// a single Client is safe to share and call concurrently.
type Client struct {
	exchange func(addr string, m *dns.Msg) (*dns.Msg, error)
}

// New constructs a Client that dials upstreams over plain UDP.
func New() *Client {
	dc := &dns.Client{Net: "udp", Timeout: queryTimeout}
	return &Client{
		exchange: func(addr string, m *dns.Msg) (*dns.Msg, error) {
			resp, _, err := dc.Exchange(m, addr)
			return resp, err
		},
	}
}

// Forward queries name (already lowercased by the caller) for qtype against
// each of upstreams in order, returning the first reply received --
// including NXDomain, which is a valid authoritative answer, not a failure.
// It returns nil only once every upstream has failed to connect, send, or
// receive.
func (c *Client) Forward(name string, qtype uint16, upstreams []string) *dns.Msg {
	q := new(dns.Msg)
	q.SetQuestion(dns.Fqdn(name), qtype)
	q.RecursionDesired = true

	for _, addr := range upstreams {
		resp, err := c.exchange(addr, q)
		if err != nil || resp == nil {
			log.Debugf("upstream %s failed for %s %s: %v", addr, name, dns.TypeToString[qtype], err)
			continue
		}
		return resp
	}
	return nil
}
