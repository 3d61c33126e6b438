// Package digest builds and mails the weekly summary of rollover runs.
package digest

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"gtaskroll/internal/service"
)

// Window is how far back a digest looks.
const Window = 7 * 24 * time.Hour

// Subject of every digest mail.
const Subject = "Weekly task rollover digest"

// fatalMarker prefixes the notes of runs that aborted.
const fatalMarker = "FATAL:"

// Reporter reads recent runs and mails a plain-text summary.
type Reporter struct {
	Runs      service.RunReader
	Mail      service.Notifier
	Recipient string
	Loc       *time.Location
	Log       zerolog.Logger
}

// Summary aggregates run records over a window.
type Summary struct {
	From, To       time.Time
	Runs           int
	Failed         int
	InboxAdds      int
	InboxMoves     int
	ListsDeleted   int
	ListsCreated   int
	CompletedTasks []service.CompletedTask
	Notes          []string
}

func (r *Reporter) location() *time.Location {
	if r.Loc == nil {
		return time.Local
	}
	return r.Loc
}

// Build reads the runs of the window ending at now and summarises them.
func (r *Reporter) Build(ctx context.Context, now time.Time) (Summary, error) {
	if r.Runs == nil {
		return Summary{}, errors.New("no run log configured")
	}
	from := now.Add(-Window)
	runs, err := r.Runs.RecentRuns(ctx, from)
	if err != nil {
		return Summary{}, fmt.Errorf("read runs: %w", err)
	}
	return Summarize(runs, from, now), nil
}

// Send implements the orchestrator's digest hook.
func (r *Reporter) Send(ctx context.Context, now time.Time) error {
	if r.Mail == nil || strings.TrimSpace(r.Recipient) == "" {
		return errors.New("notify_email is not configured")
	}
	sum, err := r.Build(ctx, now)
	if err != nil {
		return err
	}
	if err := r.Mail.Send(ctx, r.Recipient, Subject, Render(sum, r.location())); err != nil {
		return fmt.Errorf("send digest: %w", err)
	}
	r.Log.Info().Int("runs", sum.Runs).Str("recipient", r.Recipient).Msg("digest sent")
	return nil
}

// Summarize folds runs into a Summary. Runs outside [from, to] are ignored.
func Summarize(runs []service.RunStat, from, to time.Time) Summary {
	sum := Summary{From: from, To: to}
	for _, run := range runs {
		if run.Timestamp.Before(from) || run.Timestamp.After(to) {
			continue
		}
		sum.Runs++
		if strings.Contains(run.Notes, fatalMarker) {
			sum.Failed++
		}
		sum.InboxAdds += run.InboxAdds
		sum.InboxMoves += run.InboxMoves
		sum.ListsDeleted += run.ListsDeleted
		sum.ListsCreated += run.ListsCreated
		sum.CompletedTasks = append(sum.CompletedTasks, run.CompletedTasks...)
		if run.Notes != "" {
			sum.Notes = append(sum.Notes, run.Timestamp.Format(time.RFC3339)+" "+run.Notes)
		}
	}
	sort.SliceStable(sum.CompletedTasks, func(i, j int) bool {
		return sum.CompletedTasks[i].CompletedAt.Before(sum.CompletedTasks[j].CompletedAt)
	})
	return sum
}

// Render formats a Summary as the digest mail body, with dates in loc.
func Render(sum Summary, loc *time.Location) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Task rollover digest, %s to %s\n\n",
		sum.From.In(loc).Format(time.DateOnly), sum.To.In(loc).Format(time.DateOnly))

	fmt.Fprintf(&b, "Runs:               %d", sum.Runs)
	if sum.Failed > 0 {
		fmt.Fprintf(&b, " (%d failed)", sum.Failed)
	}
	b.WriteString("\n")
	fmt.Fprintf(&b, "Tasks rolled over:  %d\n", sum.InboxAdds)
	fmt.Fprintf(&b, "Due tasks moved:    %d\n", sum.InboxMoves)
	fmt.Fprintf(&b, "Lists retired:      %d\n", sum.ListsDeleted)
	fmt.Fprintf(&b, "Lists created:      %d\n", sum.ListsCreated)

	fmt.Fprintf(&b, "\nCompleted tasks (%d):\n", len(sum.CompletedTasks))
	if len(sum.CompletedTasks) == 0 {
		b.WriteString("  (none)\n")
	}
	for _, ct := range sum.CompletedTasks {
		fmt.Fprintf(&b, "  %s  %s\n", ct.CompletedAt.In(loc).Format(time.DateOnly), ct.Name)
	}

	if len(sum.Notes) > 0 {
		b.WriteString("\nNotes:\n")
		for _, n := range sum.Notes {
			fmt.Fprintf(&b, "  %s\n", n)
		}
	}
	return b.String()
}
