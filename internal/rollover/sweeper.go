package rollover

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"gtaskroll/internal/service"
)

// Classification partitions task lists by title.
type Classification struct {
	Today *service.TaskList
	Inbox *service.TaskList
	Stale []service.TaskList
	Other []service.TaskList
}

// Classify sorts lists into today's list, the inbox, stale daily lists and
// everything else. Enumeration order is preserved within each group.
// When several lists carry today's title the first one wins and the rest
// are left alone.
func Classify(lists []service.TaskList, dailyPrefix, todayTitle, inboxName string) Classification {
	var c Classification
	for i := range lists {
		l := lists[i]
		switch {
		case l.Title == todayTitle:
			if c.Today == nil {
				c.Today = &l
			} else {
				c.Other = append(c.Other, l)
			}
		case inboxName != "" && l.Title == inboxName:
			if c.Inbox == nil {
				c.Inbox = &l
			} else {
				c.Other = append(c.Other, l)
			}
		case dailyPrefix != "" && strings.HasPrefix(l.Title, dailyPrefix):
			c.Stale = append(c.Stale, l)
		default:
			c.Other = append(c.Other, l)
		}
	}
	return c
}

// SweepResult reports what a sweep resolved and how far it got.
type SweepResult struct {
	Today     service.TaskList
	Stale     int
	Processed int
	Paused    bool
}

// Sweeper retires stale daily lists and ensures today's list exists.
type Sweeper struct {
	svc           service.Service
	migrator      *Migrator
	dailyPrefix   string
	trackRollover bool
	now           func() time.Time
	log           zerolog.Logger
}

// NewSweeper creates a Sweeper. now is polled between stale lists to enforce the deadline.
func NewSweeper(svc service.Service, migrator *Migrator, dailyPrefix string, trackRollover bool, now func() time.Time, log zerolog.Logger) *Sweeper {
	return &Sweeper{
		svc:           svc,
		migrator:      migrator,
		dailyPrefix:   dailyPrefix,
		trackRollover: trackRollover,
		now:           now,
		log:           log,
	}
}

// Sweep migrates the open tasks of every stale list into inboxID, records
// their completed tasks, deletes them, and creates todayTitle if missing.
// Once deadline has passed no further stale list is started; the remaining
// ones are picked up by the next run. A zero deadline disables the budget.
// The first error aborts the sweep.
func (s *Sweeper) Sweep(ctx context.Context, rec *Recorder, lists []service.TaskList, todayTitle, inboxID string, deadline time.Time) (SweepResult, error) {
	c := Classify(lists, s.dailyPrefix, todayTitle, "")
	res := SweepResult{Stale: len(c.Stale)}

	s.log.Info().
		Int("stale", len(c.Stale)).
		Bool("today_exists", c.Today != nil).
		Msg("lists classified")

	for _, list := range c.Stale {
		if list.ID == inboxID {
			continue
		}
		if !deadline.IsZero() && !s.now().Before(deadline) {
			res.Paused = true
			rec.Note(fmt.Sprintf("Paused due to timeout after %d of %d stale lists", res.Processed, res.Stale))
			s.log.Warn().
				Int("processed", res.Processed).
				Int("remaining", res.Stale-res.Processed).
				Msg("execution budget exhausted, pausing")
			break
		}
		if err := s.retire(ctx, rec, list, inboxID); err != nil {
			return res, err
		}
		res.Processed++
	}

	if c.Today != nil {
		res.Today = *c.Today
		return res, nil
	}

	today, err := s.svc.CreateList(ctx, todayTitle)
	if err != nil {
		return res, fmt.Errorf("create list %q: %w", todayTitle, err)
	}
	rec.ListCreated()
	res.Today = today
	s.log.Info().Str("list", todayTitle).Msg("created today's list")
	return res, nil
}

// retire empties one stale list and deletes it. Deletion comes last so an
// interrupted retirement is simply repeated by the next run.
func (s *Sweeper) retire(ctx context.Context, rec *Recorder, list service.TaskList, inboxID string) error {
	open, err := s.svc.ListTasks(ctx, list.ID, service.ListOptions{})
	if err != nil {
		return fmt.Errorf("list open tasks of %q: %w", list.Title, err)
	}
	moved := 0
	for _, task := range open {
		if task.IsCompleted() {
			continue
		}
		if _, err := s.migrator.Move(ctx, task, list.ID, inboxID, s.trackRollover); err != nil {
			return err
		}
		rec.AddInboxAdds(1)
		moved++
	}

	all, err := s.svc.ListTasks(ctx, list.ID, service.ListOptions{IncludeCompleted: true})
	if err != nil {
		return fmt.Errorf("list completed tasks of %q: %w", list.Title, err)
	}
	for _, task := range all {
		if task.IsCompleted() {
			rec.Completed(task.Title, task.Completed)
		}
	}

	if err := s.svc.DeleteList(ctx, list.ID); err != nil {
		return fmt.Errorf("delete list %q: %w", list.Title, err)
	}
	rec.ListDeleted()

	s.log.Info().
		Str("list", list.Title).
		Int("moved", moved).
		Msg("stale list retired")
	return nil
}
