// Package service defines the backend-agnostic interface for task operations.
package service

import (
	"errors"
	"time"
)

// Task statuses as reported by the backend.
const (
	StatusNeedsAction = "needsAction"
	StatusCompleted   = "completed"
)

// LinkTypeEmail marks a provenance link pointing at the email a task was created from.
const LinkTypeEmail = "email"

// ErrNotFound is returned by backends when a list or task does not exist.
var ErrNotFound = errors.New("not found")

// TaskList represents a task list.
type TaskList struct {
	ID    string
	Title string
}

// Link is a provenance link attached to a task by the backend.
type Link struct {
	Type        string
	URL         string
	Description string
}

// Task represents a single task item.
type Task struct {
	ID         string
	Title      string
	Notes      string
	Status     string // "needsAction" or "completed"
	Due        time.Time
	Completed  time.Time
	Recurrence string
	Links      []Link
}

// IsCompleted reports whether the task is marked completed.
func (t Task) IsCompleted() bool {
	return t.Status == StatusCompleted
}

// IsRecurring reports whether the task belongs to a recurring series.
func (t Task) IsRecurring() bool {
	return t.Recurrence != ""
}

// HasDue reports whether the task carries a due date.
func (t Task) HasDue() bool {
	return !t.Due.IsZero()
}

// DueDate returns the calendar date of the due value in its own encoding (YYYY-MM-DD).
func (t Task) DueDate() string {
	if t.Due.IsZero() {
		return ""
	}
	return t.Due.Format(time.DateOnly)
}

// ListOptions controls task enumeration.
type ListOptions struct {
	// IncludeCompleted returns completed (and hidden) tasks as well as open ones.
	// When false only needsAction tasks are returned.
	IncludeCompleted bool
}

// CompletedTask is one completed task recorded while retiring a stale list.
type CompletedTask struct {
	Name        string    `json:"name"`
	CompletedAt time.Time `json:"completedAt"`
}

// RunStat is the record of one rollover invocation.
type RunStat struct {
	Timestamp      time.Time       `json:"timestamp"`
	InboxAdds      int             `json:"inboxAdds"`
	InboxMoves     int             `json:"inboxMoves"`
	ListsDeleted   int             `json:"listsDeleted"`
	ListsCreated   int             `json:"listsCreated"`
	CompletedTasks []CompletedTask `json:"completedTasks"`
	Notes          string          `json:"notes"`
}
