package commands

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"

	"gtaskroll/internal/config"
	"gtaskroll/internal/digest"
	"gtaskroll/internal/exitcode"
	"gtaskroll/internal/lock"
	"gtaskroll/internal/output"
	"gtaskroll/internal/rollover"
	"gtaskroll/internal/service"
)

func init() {
	Register(&RunCmd{})
}

// RunCmd implements the run command: one complete rollover.
type RunCmd struct {
	noDigest bool
}

func (c *RunCmd) Name() string      { return "run" }
func (c *RunCmd) Aliases() []string { return []string{"rollover"} }
func (c *RunCmd) Synopsis() string  { return "Roll stale daily lists into the inbox" }
func (c *RunCmd) Usage() string     { return "gtaskroll run [common flags] [--no-digest]" }
func (c *RunCmd) Needs() service.Needs {
	return service.NeedTasks | service.NeedRunLog | service.NeedNotifier
}

func (c *RunCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.BoolVar(&c.noDigest, "no-digest", false, "")
}

func (c *RunCmd) Run(ctx context.Context, cfg *config.Config, b *service.Backend, args []string, out, errOut io.Writer) int {
	if len(args) > 0 {
		fmt.Fprintf(errOut, "error: unexpected argument: %s\n", args[0])
		return exitcode.UserError
	}

	opts, err := rolloverOptions(cfg.Settings)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}

	if err := cfg.EnsureDir(); err != nil {
		fmt.Fprintf(errOut, "error: failed to create config directory: %v\n", err)
		return exitcode.UserError
	}

	log := zerolog.Ctx(ctx)
	deps := rollover.Deps{
		Tasks:    b.Tasks,
		Notifier: b.Notifier,
		Locker:   lock.New(cfg.LockPath()),
		Now:      time.Now,
		Log:      *log,
	}
	if b.Runs != nil {
		deps.RunLog = b.Runs
		if !c.noDigest {
			deps.Digester = &digest.Reporter{
				Runs:      b.Runs,
				Mail:      b.Notifier,
				Recipient: opts.NotifyEmail,
				Loc:       opts.Location,
				Log:       *log,
			}
		}
	}

	stat, err := rollover.NewOrchestrator(deps, opts).Run(ctx)
	if errors.Is(err, rollover.ErrDeferred) {
		if !cfg.Quiet {
			fmt.Fprintln(out, "deferred: another run is in progress")
		}
		return exitcode.Success
	}
	if err != nil {
		fmt.Fprintf(errOut, "error: rollover failed: %v\n", err)
		if !cfg.Quiet {
			output.FormatRunStat(out, stat)
		}
		return exitcode.RunFailed
	}

	if !cfg.Quiet {
		output.FormatRunStat(out, stat)
	}
	return exitcode.Success
}
