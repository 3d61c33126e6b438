package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"time"

	"gtaskroll/internal/config"
	"gtaskroll/internal/exitcode"
	"gtaskroll/internal/output"
	"gtaskroll/internal/rollover"
	"gtaskroll/internal/service"
)

func init() {
	Register(&StatusCmd{Now: time.Now})
}

// StatusCmd previews what the next run would do without changing anything.
type StatusCmd struct {
	Now func() time.Time
}

func (c *StatusCmd) Name() string         { return "status" }
func (c *StatusCmd) Aliases() []string    { return []string{"preview"} }
func (c *StatusCmd) Synopsis() string     { return "Show what the next run would roll over" }
func (c *StatusCmd) Usage() string        { return "gtaskroll status [common flags]" }
func (c *StatusCmd) Needs() service.Needs { return service.NeedTasks }

func (c *StatusCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *StatusCmd) Run(ctx context.Context, cfg *config.Config, b *service.Backend, args []string, out, errOut io.Writer) int {
	opts, err := rolloverOptions(cfg.Settings)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}
	now := time.Now
	if c.Now != nil {
		now = c.Now
	}
	start := now()

	lists, err := b.Tasks.ListLists(ctx)
	if err != nil {
		fmt.Fprintf(errOut, "error: backend error: %v\n", err)
		return exitcode.BackendError
	}
	todayTitle := opts.TodayTitle(start)
	cls := rollover.Classify(lists, opts.DailyPrefix, todayTitle, opts.InboxName)

	output.FormatListHeader(out, "Today")
	if cls.Today != nil {
		fmt.Fprintln(out, todayTitle)
	} else {
		fmt.Fprintf(out, "%s (will be created)\n", todayTitle)
	}

	output.FormatListHeader(out, "Inbox")
	if cls.Inbox == nil {
		fmt.Fprintf(out, "%s (missing)\n", opts.InboxName)
		fmt.Fprintf(errOut, "error: inbox list %q not found\n", opts.InboxName)
		return exitcode.UserError
	}
	fmt.Fprintln(out, cls.Inbox.Title)
	if opts.AutoMoveDueTasks {
		tasks, err := b.Tasks.ListTasks(ctx, cls.Inbox.ID, service.ListOptions{IncludeCompleted: true})
		if err != nil {
			fmt.Fprintf(errOut, "error: backend error: %v\n", err)
			return exitcode.BackendError
		}
		today := rollover.LocalDate(start, opts.Location)
		n := 0
		for _, t := range tasks {
			if rollover.DueToday(t, today) {
				n++
				output.FormatTaskIndented(out, n, t)
			}
		}
	}

	output.FormatListHeader(out, fmt.Sprintf("Stale lists (%d)", len(cls.Stale)))
	for _, l := range cls.Stale {
		fmt.Fprintln(out, l.Title)
		tasks, err := b.Tasks.ListTasks(ctx, l.ID, service.ListOptions{})
		if err != nil {
			fmt.Fprintf(errOut, "error: backend error: %v\n", err)
			return exitcode.BackendError
		}
		n := 0
		for _, t := range tasks {
			if t.IsCompleted() {
				continue
			}
			n++
			output.FormatTaskIndented(out, n, t)
		}
	}

	output.FormatListHeader(out, fmt.Sprintf("Other lists (%d)", len(cls.Other)))
	for _, l := range cls.Other {
		fmt.Fprintln(out, l.Title)
	}
	return exitcode.Success
}
