package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v2"
)

const envPrefix = "DIRECTOR_"

// overlay is a partial configuration document: every leaf is a pointer so a
// file or the environment can specify a subset of fields, and later sources
// only override the fields they actually set. This mirrors the
// file-then-env, later-wins layering of the original implementation's
// Figment setup, without pulling in a config-merging library (none appears
// anywhere in the retrieval pack).
type overlay struct {
	Listen struct {
		HTTP *string `yaml:"http" toml:"http"`
		UDP  *string `yaml:"udp" toml:"udp"`
		TCP  *string `yaml:"tcp" toml:"tcp"`
		TLS  *string `yaml:"tls" toml:"tls"`
	} `yaml:"listen" toml:"listen"`
	Upstreams []string `yaml:"upstreams" toml:"upstreams"`
	Cache     struct {
		Enabled *bool   `yaml:"enabled" toml:"enabled"`
		TTL     *uint16 `yaml:"ttl_seconds" toml:"ttl_seconds"`
	} `yaml:"cache" toml:"cache"`
	TLSCertConfig *TLSCertConfig `yaml:"tls_cert_config,omitempty" toml:"tls_cert_config,omitempty"`
	HTTPSEndpoint *string        `yaml:"https_endpoint" toml:"https_endpoint"`
}

func (o overlay) apply(c Config) Config {
	if o.Listen.HTTP != nil {
		c.Listen.HTTP = *o.Listen.HTTP
	}
	if o.Listen.UDP != nil {
		c.Listen.UDP = *o.Listen.UDP
	}
	if o.Listen.TCP != nil {
		c.Listen.TCP = *o.Listen.TCP
	}
	if o.Listen.TLS != nil {
		c.Listen.TLS = *o.Listen.TLS
	}
	if o.Upstreams != nil {
		c.Upstreams = o.Upstreams
	}
	if o.Cache.Enabled != nil {
		c.Cache.Enabled = *o.Cache.Enabled
	}
	if o.Cache.TTL != nil {
		c.Cache.TTL = *o.Cache.TTL
	}
	if o.TLSCertConfig != nil {
		c.TLSCertConfig = o.TLSCertConfig
	}
	if o.HTTPSEndpoint != nil {
		c.HTTPSEndpoint = *o.HTTPSEndpoint
	}
	return c
}

func parseBytes(format string, data []byte) (overlay, error) {
	var o overlay
	switch format {
	case "yaml", "yml":
		if err := yaml.Unmarshal(data, &o); err != nil {
			return overlay{}, fmt.Errorf("parsing yaml config: %w", err)
		}
	default:
		if err := toml.Unmarshal(data, &o); err != nil {
			return overlay{}, fmt.Errorf("parsing toml config: %w", err)
		}
	}
	return o, nil
}

func loadFile(path, format string) (overlay, bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return overlay{}, false, nil
		}
		return overlay{}, false, fmt.Errorf("reading %s: %w", path, err)
	}
	o, err := parseBytes(format, data)
	if err != nil {
		return overlay{}, false, err
	}
	return o, true, nil
}

func envOverlay() overlay {
	var o overlay
	if v, ok := os.LookupEnv(envPrefix + "LISTEN_HTTP"); ok {
		o.Listen.HTTP = &v
	}
	if v, ok := os.LookupEnv(envPrefix + "LISTEN_UDP"); ok {
		o.Listen.UDP = &v
	}
	if v, ok := os.LookupEnv(envPrefix + "LISTEN_TCP"); ok {
		o.Listen.TCP = &v
	}
	if v, ok := os.LookupEnv(envPrefix + "LISTEN_TLS"); ok {
		o.Listen.TLS = &v
	}
	if v, ok := os.LookupEnv(envPrefix + "UPSTREAMS"); ok {
		parts := strings.Split(v, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		o.Upstreams = parts
	}
	if v, ok := os.LookupEnv(envPrefix + "CACHE_ENABLED"); ok {
		b, err := strconv.ParseBool(v)
		if err == nil {
			o.Cache.Enabled = &b
		}
	}
	if v, ok := os.LookupEnv(envPrefix + "CACHE_TTL"); ok {
		n, err := strconv.ParseUint(v, 10, 16)
		if err == nil {
			ttl := uint16(n)
			o.Cache.TTL = &ttl
		}
	}
	return o
}

// Load resolves Director's configuration. When configFile is empty, it
// discovers config.toml, then config.yaml, then config.yml in the current
// directory, layering each that is present over the defaults, and finally
// layers environment variables prefixed DIRECTOR_ on top. When configFile is
// set, only that file is loaded (its extension selects the parser; anything
// other than .yaml/.yml is parsed as TOML), with the environment still
// layered on top.
func Load(configFile string) (Config, error) {
	cfg := Default()

	if configFile != "" {
		format := formatForExtension(configFile)
		o, found, err := loadFile(configFile, format)
		if err != nil {
			return Config{}, err
		}
		if !found {
			return Config{}, fmt.Errorf("config file not found: %s", configFile)
		}
		cfg = o.apply(cfg)
	} else {
		for _, f := range []struct {
			path, format string
		}{
			{"config.toml", "toml"},
			{"config.yaml", "yaml"},
			{"config.yml", "yml"},
		} {
			o, found, err := loadFile(f.path, f.format)
			if err != nil {
				return Config{}, err
			}
			if found {
				cfg = o.apply(cfg)
			}
		}
	}

	cfg = envOverlay().apply(cfg)
	return cfg, nil
}

func formatForExtension(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml":
		return "yaml"
	case ".yml":
		return "yml"
	default:
		return "toml"
	}
}
