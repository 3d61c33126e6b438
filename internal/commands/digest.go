package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"

	"gtaskroll/internal/config"
	"gtaskroll/internal/digest"
	"gtaskroll/internal/exitcode"
	"gtaskroll/internal/service"
)

func init() {
	Register(&DigestCmd{Now: time.Now})
}

// DigestCmd implements the digest command: the weekly summary on demand.
type DigestCmd struct {
	print bool
	Now   func() time.Time
}

func (c *DigestCmd) Name() string         { return "digest" }
func (c *DigestCmd) Aliases() []string    { return nil }
func (c *DigestCmd) Synopsis() string     { return "Mail the summary of the last 7 days of runs" }
func (c *DigestCmd) Usage() string        { return "gtaskroll digest [common flags] [--print]" }
func (c *DigestCmd) Needs() service.Needs { return service.NeedRunLog | service.NeedNotifier }

func (c *DigestCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.BoolVar(&c.print, "print", false, "")
}

func (c *DigestCmd) Run(ctx context.Context, cfg *config.Config, b *service.Backend, args []string, out, errOut io.Writer) int {
	if b.Runs == nil {
		fmt.Fprintf(errOut, "error: run log is disabled (%s: %s)\n", config.KeyRunLogBackend, config.RunLogNone)
		return exitcode.UserError
	}
	loc, err := cfg.Settings.Location()
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}

	r := &digest.Reporter{
		Runs:      b.Runs,
		Mail:      b.Notifier,
		Recipient: cfg.Settings.NotifyEmail(),
		Loc:       loc,
		Log:       *zerolog.Ctx(ctx),
	}
	now := time.Now
	if c.Now != nil {
		now = c.Now
	}

	if c.print {
		sum, err := r.Build(ctx, now())
		if err != nil {
			fmt.Fprintf(errOut, "error: backend error: %v\n", err)
			return exitcode.BackendError
		}
		fmt.Fprint(out, digest.Render(sum, loc))
		return exitcode.Success
	}

	if r.Recipient == "" {
		fmt.Fprintf(errOut, "error: %s is not configured\n", config.KeyNotifyEmail)
		return exitcode.UserError
	}
	if err := r.Send(ctx, now()); err != nil {
		fmt.Fprintf(errOut, "error: backend error: %v\n", err)
		return exitcode.BackendError
	}
	if !cfg.Quiet {
		fmt.Fprintf(out, "digest sent to %s\n", r.Recipient)
	}
	return exitcode.Success
}
