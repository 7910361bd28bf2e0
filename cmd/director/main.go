// Command director runs the Director DNS forwarding proxy.
package main

import (
	"context"
	"fmt"
	"os"

	flags "github.com/jessevdk/go-flags"
	log "github.com/sirupsen/logrus"

	"github.com/terrastack-cloud/director/internal/banner"
	"github.com/terrastack-cloud/director/internal/config"
	"github.com/terrastack-cloud/director/internal/supervisor"
)

// generateCommand implements `director generate`, printing the default
// configuration in the requested format so operators have a starting point
// for config.toml/config.yaml/the DIRECTOR_* environment variables.
type generateCommand struct {
	Format string `short:"f" long:"format" description:"output format" choice:"env" choice:"yaml" choice:"toml" default:"toml"`
}

func (c *generateCommand) Execute(args []string) error {
	out, err := config.Generate(c.Format)
	if err != nil {
		return err
	}
	fmt.Fprint(os.Stdout, out)
	return nil
}

// runCommand implements `director run`, the long-running server.
type runCommand struct {
	ConfigFile string `long:"config-file" description:"path to a config.toml/config.yaml file; when unset, director discovers config.toml, config.yaml, config.yml in the working directory before falling back to defaults"`
	Debug      bool   `short:"d" long:"debug" description:"enable debug-level logging"`
}

func (c *runCommand) Execute(args []string) error {
	if c.Debug {
		log.SetLevel(log.DebugLevel)
	}

	banner.Print(os.Stdout)

	cfg, err := config.Load(c.ConfigFile)
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	return supervisor.RunWithConfig(context.Background(), cfg)
}

type options struct{}

func main() {
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})

	var opts options
	parser := flags.NewParser(&opts, flags.Default)
	if _, err := parser.AddCommand("generate", "Print the default configuration", "Print the default configuration in the requested format.", &generateCommand{}); err != nil {
		log.Fatalf("registering generate command: %v", err)
	}
	if _, err := parser.AddCommand("run", "Run the DNS forwarding proxy", "Load configuration and serve UDP, TCP, DoT, and DoH until interrupted.", &runCommand{}); err != nil {
		log.Fatalf("registering run command: %v", err)
	}

	if _, err := parser.Parse(); err != nil {
		if flags.WroteHelp(err) {
			os.Exit(0)
		}
		log.Fatal(err)
	}
}
