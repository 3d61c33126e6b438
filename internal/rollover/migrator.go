// Package rollover implements the daily list rollover engine: retiring stale
// daily lists, carrying unfinished tasks into the inbox, creating today's list
// and relocating same-day inbox items.
package rollover

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"gtaskroll/internal/service"
)

const (
	fromEmailSuffix     = " [from email]"
	originalEmailHeader = "\n\n---\nOriginal Email: "
)

// Migrator moves single tasks between lists.
type Migrator struct {
	svc service.Service
	log zerolog.Logger
}

// NewMigrator creates a Migrator over svc.
func NewMigrator(svc service.Service, log zerolog.Logger) *Migrator {
	return &Migrator{svc: svc, log: log}
}

// Move recreates task in dstListID and then deletes it from srcListID.
// The destination starts incomplete and carries title, notes and due date,
// with provenance and (when trackRollover is set) the rollover counter applied.
// If the delete fails the task exists in both lists; the error is returned.
func (m *Migrator) Move(ctx context.Context, task service.Task, srcListID, dstListID string, trackRollover bool) (service.Task, error) {
	moved := PrepareMove(task, trackRollover)

	created, err := m.svc.InsertTask(ctx, dstListID, moved)
	if err != nil {
		return service.Task{}, fmt.Errorf("insert %q into %s: %w", task.Title, dstListID, err)
	}
	if err := m.svc.DeleteTask(ctx, srcListID, task.ID); err != nil {
		return created, fmt.Errorf("delete %q from %s after copy: %w", task.Title, srcListID, err)
	}

	m.log.Debug().
		Str("task", task.Title).
		Str("from", srcListID).
		Str("to", dstListID).
		Str("new_id", created.ID).
		Msg("task moved")
	return created, nil
}

// PrepareMove builds the destination task for a move without touching the backend.
func PrepareMove(task service.Task, trackRollover bool) service.Task {
	title, notes := task.Title, task.Notes

	for _, link := range task.Links {
		if link.Type != service.LinkTypeEmail || link.URL == "" {
			continue
		}
		if strings.Contains(notes, link.URL) {
			continue
		}
		notes += originalEmailHeader + link.URL
		if !strings.HasSuffix(title, fromEmailSuffix) {
			title += fromEmailSuffix
		}
	}

	if trackRollover {
		notes = BumpRolloverCount(notes)
	}

	return service.Task{
		Title: title,
		Notes: notes,
		Due:   task.Due,
	}
}
