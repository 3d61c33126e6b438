// Package service defines the backend-agnostic interface for task operations.
package service

import (
	"context"
	"time"
)

// Service defines the interface for task backend operations.
// All Google Tasks API calls go through this interface.
// The rollover engine never imports the Google SDK directly.
type Service interface {
	// ListLists returns all task lists in API order.
	ListLists(ctx context.Context) ([]TaskList, error)

	// CreateList creates a new task list and returns it.
	CreateList(ctx context.Context, title string) (TaskList, error)

	// DeleteList deletes a task list by ID.
	DeleteList(ctx context.Context, listID string) error

	// ListTasks returns every task of a list, all pages flattened, in API order.
	ListTasks(ctx context.Context, listID string, opts ListOptions) ([]Task, error)

	// InsertTask creates a task from title, notes and due, and returns the stored task.
	InsertTask(ctx context.Context, listID string, task Task) (Task, error)

	// PatchTaskNotes replaces the notes of a task.
	PatchTaskNotes(ctx context.Context, listID, taskID, notes string) (Task, error)

	// DeleteTask deletes a task.
	DeleteTask(ctx context.Context, listID, taskID string) error
}

// RunLog is the append-only sink for run records.
type RunLog interface {
	AppendRun(ctx context.Context, stat RunStat) error
}

// RunReader reads back run records for reporting.
type RunReader interface {
	RecentRuns(ctx context.Context, since time.Time) ([]RunStat, error)
}

// RunStore is a run log that can also be read back.
type RunStore interface {
	RunLog
	RunReader
}

// Notifier delivers plain-text messages.
type Notifier interface {
	Send(ctx context.Context, recipient, subject, body string) error
}

// Backend bundles the external collaborators a command may need.
// Any field may be nil when the command does not use it.
type Backend struct {
	Tasks    Service
	Runs     RunStore
	Notifier Notifier
	closers  []func() error
}

// OnClose registers a cleanup hook run by Close.
func (b *Backend) OnClose(fn func() error) {
	b.closers = append(b.closers, fn)
}

// Close runs the registered cleanup hooks in reverse order and returns the first error.
func (b *Backend) Close() error {
	var first error
	for i := len(b.closers) - 1; i >= 0; i-- {
		if err := b.closers[i](); err != nil && first == nil {
			first = err
		}
	}
	b.closers = nil
	return first
}

// Needs says which Backend collaborators a command uses.
type Needs uint8

const (
	NeedTasks Needs = 1 << iota
	NeedRunLog
	NeedNotifier

	// NeedNone marks commands that run without credentials.
	NeedNone Needs = 0
)

// Has reports whether n includes every collaborator in want.
func (n Needs) Has(want Needs) bool {
	return n&want == want
}
