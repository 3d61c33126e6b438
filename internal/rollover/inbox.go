package rollover

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"gtaskroll/internal/service"
)

// InboxSweep relocates inbox tasks due today into today's list.
type InboxSweep struct {
	svc      service.Service
	migrator *Migrator
	log      zerolog.Logger
}

// NewInboxSweep creates an InboxSweep.
func NewInboxSweep(svc service.Service, migrator *Migrator, log zerolog.Logger) *InboxSweep {
	return &InboxSweep{svc: svc, migrator: migrator, log: log}
}

// Sweep moves every open, non-recurring task of inboxID whose due date
// equals today (YYYY-MM-DD, already in the local zone) into destListID.
// Due values are compared by their own calendar date, time of day ignored.
// Completed tasks are skipped. Rollover counters are not touched.
func (s *InboxSweep) Sweep(ctx context.Context, inboxID, destListID, today string) (int, error) {
	tasks, err := s.svc.ListTasks(ctx, inboxID, service.ListOptions{IncludeCompleted: true})
	if err != nil {
		return 0, fmt.Errorf("list inbox tasks: %w", err)
	}

	moved := 0
	for _, task := range tasks {
		if !DueToday(task, today) {
			continue
		}
		if _, err := s.migrator.Move(ctx, task, inboxID, destListID, false); err != nil {
			return moved, err
		}
		moved++
	}

	s.log.Info().Int("moved", moved).Str("today", today).Msg("inbox due sweep finished")
	return moved, nil
}

// DueToday reports whether task qualifies for the inbox due sweep.
func DueToday(task service.Task, today string) bool {
	switch {
	case task.IsCompleted():
		return false
	case !task.HasDue():
		return false
	case task.IsRecurring():
		return false
	}
	return task.DueDate() == today
}

// LocalDate formats now as a calendar date in loc.
func LocalDate(now time.Time, loc *time.Location) string {
	return now.In(loc).Format(time.DateOnly)
}
