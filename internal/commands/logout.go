package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"gtaskroll/internal/config"
	"gtaskroll/internal/exitcode"
	"gtaskroll/internal/service"
)

func init() {
	Register(&LogoutCmd{})
}

// LogoutCmd implements the logout command. The OAuth client file, settings
// and lock file are left in place.
type LogoutCmd struct{}

func (c *LogoutCmd) Name() string         { return "logout" }
func (c *LogoutCmd) Aliases() []string    { return nil }
func (c *LogoutCmd) Synopsis() string     { return "Remove stored credentials" }
func (c *LogoutCmd) Usage() string        { return "gtaskroll logout [common flags]" }
func (c *LogoutCmd) Needs() service.Needs { return service.NeedNone }

func (c *LogoutCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *LogoutCmd) Run(ctx context.Context, cfg *config.Config, b *service.Backend, args []string, out, errOut io.Writer) int {
	if !cfg.HasToken() {
		if !cfg.Quiet {
			fmt.Fprintln(out, "not logged in")
		}
		return exitcode.Success
	}

	if err := cfg.RemoveToken(); err != nil {
		fmt.Fprintf(errOut, "error: failed to remove token: %v\n", err)
		return exitcode.AuthError
	}

	if !cfg.Quiet {
		fmt.Fprintln(out, "ok")
	}
	return exitcode.Success
}
