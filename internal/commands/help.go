package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strings"

	"gtaskroll/internal/config"
	"gtaskroll/internal/exitcode"
	"gtaskroll/internal/service"
)

func init() {
	Register(&HelpCmd{registry: DefaultRegistry})
}

// HelpCmd implements the help command. Usage lines come from the registry.
type HelpCmd struct {
	registry *Registry
}

func (c *HelpCmd) Name() string         { return "help" }
func (c *HelpCmd) Aliases() []string    { return nil }
func (c *HelpCmd) Synopsis() string     { return "Print usage" }
func (c *HelpCmd) Usage() string        { return "gtaskroll help" }
func (c *HelpCmd) Needs() service.Needs { return service.NeedNone }

func (c *HelpCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *HelpCmd) Run(ctx context.Context, cfg *config.Config, b *service.Backend, args []string, out, errOut io.Writer) int {
	registry := c.registry
	if registry == nil {
		registry = DefaultRegistry
	}

	var sb strings.Builder
	sb.WriteString("Usage:\n")
	for _, cmd := range registry.All() {
		fmt.Fprintf(&sb, "  %-52s %s\n", cmd.Usage(), cmd.Synopsis())
	}
	sb.WriteString(commonFlags)
	fmt.Fprint(out, sb.String())
	return exitcode.Success
}

const commonFlags = `
Common flags:
  --config <dir>     Override config directory
  --quiet            Suppress informational output
  --debug            Print debug logs
  --log-file <path>  Append JSON logs to a file instead of stderr

Settings are read from <config dir>/config.yaml and GTASKROLL_* environment variables.
`
