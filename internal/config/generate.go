package config

import (
	"fmt"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v2"
)

// Format names accepted by the `generate` subcommand.
const (
	FormatEnv  = "env"
	FormatYAML = "yaml"
	FormatTOML = "toml"
)

// Generate renders the default configuration in the given format. The env
// format is rendered by hand (it has no natural struct marshaller), while
// yaml and toml are produced by their respective libraries directly from the
// Config struct, so Generate and Load always agree on field names.
func Generate(format string) (string, error) {
	def := Default()
	switch format {
	case FormatEnv:
		return generateEnv(def), nil
	case FormatYAML:
		b, err := yaml.Marshal(def)
		if err != nil {
			return "", fmt.Errorf("marshaling yaml: %w", err)
		}
		return string(b), nil
	case FormatTOML:
		b, err := toml.Marshal(def)
		if err != nil {
			return "", fmt.Errorf("marshaling toml: %w", err)
		}
		return string(b), nil
	default:
		return "", fmt.Errorf("unknown config format %q", format)
	}
}

func generateEnv(c Config) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%sLISTEN_HTTP=%s\n", envPrefix, c.Listen.HTTP)
	fmt.Fprintf(&b, "%sLISTEN_UDP=%s\n", envPrefix, c.Listen.UDP)
	fmt.Fprintf(&b, "%sLISTEN_TCP=%s\n", envPrefix, c.Listen.TCP)
	fmt.Fprintf(&b, "%sLISTEN_TLS=%s\n", envPrefix, c.Listen.TLS)
	fmt.Fprintf(&b, "%sUPSTREAMS=%s\n", envPrefix, strings.Join(c.Upstreams, ","))
	fmt.Fprintf(&b, "%sCACHE_ENABLED=%t\n", envPrefix, c.Cache.Enabled)
	fmt.Fprintf(&b, "%sCACHE_TTL=%d\n", envPrefix, c.Cache.TTL)
	return b.String()
}
