// Package cache implements Director's response cache (C2): a uniform-TTL
// key/value store mapping (lowercased name, query type) to the last
// successful upstream reply for that question. It has no size limit; entries
// leave it only when their TTL expires.
package cache

import (
	"strconv"
	"strings"
	"time"

	"github.com/miekg/dns"
	gocache "github.com/patrickmn/go-cache"
)

// cleanupInterval controls how often patrickmn/go-cache sweeps expired
// entries; it does not affect TTL semantics, only memory reclamation.
const cleanupInterval = 1 * time.Minute

// Cache is the response cache. A zero-value Cache is not usable; construct
// one with New. The cache always exists, even when disabled, so callers
// never need a nil check -- it simply discards every operation per
// spec.md's "must still exist but never be consulted or written".
type Cache struct {
	enabled bool
	c       *gocache.Cache
}

// New constructs a Cache. When enabled is false, Get always misses and
// Insert is a no-op, matching spec.md §3's invariant for disabled caches.
func New(enabled bool, ttlSeconds uint16) *Cache {
	ttl := time.Duration(ttlSeconds) * time.Second
	return &Cache{
		enabled: enabled,
		c:       gocache.New(ttl, cleanupInterval),
	}
}

// Key computes the cache key for a (name, qtype) pair. name is expected to
// already be lowercased by the caller (C4); Key lowercases it again
// defensively so a forgotten call site cannot split the cache silently.
func Key(name string, qtype uint16) string {
	return strings.ToLower(name) + "|" + strconv.Itoa(int(qtype))
}

// Get returns a cloned copy of the cached response for key, or (nil, false)
// on a miss or when the cache is disabled. The caller must overwrite the
// returned message's Id before transmitting it.
func (c *Cache) Get(key string) (*dns.Msg, bool) {
	if !c.enabled {
		return nil, false
	}
	v, ok := c.c.Get(key)
	if !ok {
		return nil, false
	}
	m, ok := v.(*dns.Msg)
	if !ok || m == nil {
		return nil, false
	}
	return m.Copy(), true
}

// Insert stores msg under key with the configured uniform TTL. A no-op when
// the cache is disabled.
func (c *Cache) Insert(key string, msg *dns.Msg) {
	if !c.enabled {
		return
	}
	c.c.SetDefault(key, msg.Copy())
}

// Enabled reports whether the cache was constructed with caching on.
func (c *Cache) Enabled() bool {
	return c.enabled
}
