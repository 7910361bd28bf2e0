// Package config describes Director's configuration schema, its defaults,
// and how a configuration document is discovered, loaded, and generated.
package config

// Listen holds the four transport endpoints Director binds on startup.
type Listen struct {
	HTTP string `yaml:"http" toml:"http"`
	UDP  string `yaml:"udp" toml:"udp"`
	TCP  string `yaml:"tcp" toml:"tcp"`
	TLS  string `yaml:"tls" toml:"tls"`
}

// Cache controls the response cache (C2).
type Cache struct {
	Enabled bool   `yaml:"enabled" toml:"enabled"`
	TTL     uint16 `yaml:"ttl_seconds" toml:"ttl_seconds"`
}

// TLSCertConfig points at the PEM files used to terminate DoT and DoH. A nil
// *TLSCertConfig on Config disables both listeners.
type TLSCertConfig struct {
	CertPath string `yaml:"cert_path" toml:"cert_path"`
	KeyPath  string `yaml:"key_path" toml:"key_path"`
}

// Config is Director's full, read-only-after-startup configuration.
type Config struct {
	Listen         Listen         `yaml:"listen" toml:"listen"`
	Upstreams      []string       `yaml:"upstreams" toml:"upstreams"`
	Cache          Cache          `yaml:"cache" toml:"cache"`
	TLSCertConfig  *TLSCertConfig `yaml:"tls_cert_config,omitempty" toml:"tls_cert_config,omitempty"`
	HTTPSEndpoint  string         `yaml:"https_endpoint" toml:"https_endpoint"`
}

// DefaultHTTPSEndpoint is used whenever Config.HTTPSEndpoint is empty.
const DefaultHTTPSEndpoint = "/dns-query"

// Default returns the configuration Director runs with absent any file or
// environment override: non-standard unprivileged listen ports, Cloudflare
// then Google as upstreams, caching off, and no TLS material (so DoT/DoH
// start as no-op waiters).
func Default() Config {
	return Config{
		Listen: Listen{
			HTTP: "0.0.0.0:8080",
			UDP:  "0.0.0.0:8081",
			TCP:  "0.0.0.0:8082",
			TLS:  "0.0.0.0:8083",
		},
		Upstreams: []string{"1.1.1.1:5353", "8.8.8.8:53"},
		Cache: Cache{
			Enabled: false,
			TTL:     300,
		},
		TLSCertConfig: nil,
		HTTPSEndpoint: DefaultHTTPSEndpoint,
	}
}

// EndpointOrDefault returns the configured DoH path, falling back to
// DefaultHTTPSEndpoint when unset.
func (c Config) EndpointOrDefault() string {
	if c.HTTPSEndpoint == "" {
		return DefaultHTTPSEndpoint
	}
	return c.HTTPSEndpoint
}
