package upstream

import (
	"errors"
	"testing"

	"github.com/miekg/dns"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func reply(rcode int) *dns.Msg {
	m := new(dns.Msg)
	m.Rcode = rcode
	return m
}

func TestForwardReturnsFirstUpstreamNXDomain(t *testing.T) {
	c := &Client{exchange: func(addr string, m *dns.Msg) (*dns.Msg, error) {
		if addr == "127.0.0.1:5301" {
			return reply(dns.RcodeNameError), nil
		}
		t.Fatalf("unexpected address %s queried", addr)
		return nil, nil
	}}

	got := c.Forward("nope.example.", dns.TypeA, []string{"127.0.0.1:5301"})
	require.NotNil(t, got)
	assert.Equal(t, dns.RcodeNameError, got.Rcode)
}

func TestForwardFailsOverToSecondUpstream(t *testing.T) {
	tried := []string{}
	c := &Client{exchange: func(addr string, m *dns.Msg) (*dns.Msg, error) {
		tried = append(tried, addr)
		if addr == "127.0.0.1:5399" {
			return nil, errors.New("connection refused")
		}
		return reply(dns.RcodeSuccess), nil
	}}

	got := c.Forward("example.com.", dns.TypeAAAA, []string{"127.0.0.1:5399", "127.0.0.1:5301"})
	require.NotNil(t, got)
	assert.Equal(t, []string{"127.0.0.1:5399", "127.0.0.1:5301"}, tried)
}

func TestForwardReturnsNilWhenAllUpstreamsFail(t *testing.T) {
	c := &Client{exchange: func(addr string, m *dns.Msg) (*dns.Msg, error) {
		return nil, errors.New("unreachable")
	}}

	got := c.Forward("example.com.", dns.TypeA, []string{"127.0.0.1:5399"})
	assert.Nil(t, got)
}

func TestForwardStopsAtFirstSuccess(t *testing.T) {
	calls := 0
	c := &Client{exchange: func(addr string, m *dns.Msg) (*dns.Msg, error) {
		calls++
		return reply(dns.RcodeSuccess), nil
	}}

	c.Forward("example.com.", dns.TypeA, []string{"127.0.0.1:5301", "127.0.0.1:5302"})
	assert.Equal(t, 1, calls)
}
