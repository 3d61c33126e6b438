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
	Register(&ListsCmd{Now: time.Now})
}

// ListsCmd implements the lists command.
type ListsCmd struct {
	Now func() time.Time
}

func (c *ListsCmd) Name() string         { return "lists" }
func (c *ListsCmd) Aliases() []string    { return nil }
func (c *ListsCmd) Synopsis() string     { return "Print all lists with their rollover role" }
func (c *ListsCmd) Usage() string        { return "gtaskroll lists [common flags]" }
func (c *ListsCmd) Needs() service.Needs { return service.NeedTasks }

func (c *ListsCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *ListsCmd) Run(ctx context.Context, cfg *config.Config, b *service.Backend, args []string, out, errOut io.Writer) int {
	opts, err := rolloverOptions(cfg.Settings)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}

	lists, err := b.Tasks.ListLists(ctx)
	if err != nil {
		fmt.Fprintf(errOut, "error: backend error: %v\n", err)
		return exitcode.BackendError
	}

	now := time.Now
	if c.Now != nil {
		now = c.Now
	}
	cls := rollover.Classify(lists, opts.DailyPrefix, opts.TodayTitle(now()), opts.InboxName)
	roles := make(map[string]string, len(lists))
	if cls.Today != nil {
		roles[cls.Today.ID] = "today"
	}
	if cls.Inbox != nil {
		roles[cls.Inbox.ID] = "inbox"
	}
	for _, l := range cls.Stale {
		roles[l.ID] = "stale"
	}

	for _, list := range lists {
		output.FormatListName(out, list, roles[list.ID])
	}

	return exitcode.Success
}
