package rollover

import (
	"strings"
	"time"

	"gtaskroll/internal/service"
)

// Recorder accumulates the statistics of a single run.
// It is owned by one run and is not safe for concurrent use.
type Recorder struct {
	start     time.Time
	inboxAdds int
	moves     int
	deleted   int
	created   int
	completed []service.CompletedTask
	notes     []string
}

// NewRecorder starts a record stamped with start.
func NewRecorder(start time.Time) *Recorder {
	return &Recorder{start: start}
}

func (r *Recorder) AddInboxAdds(n int)  { r.inboxAdds += n }
func (r *Recorder) AddInboxMoves(n int) { r.moves += n }
func (r *Recorder) ListDeleted()        { r.deleted++ }

// ListCreated marks today's list as created. Repeated calls count once.
func (r *Recorder) ListCreated() { r.created = 1 }

// Completed appends a completed task in the order it was seen.
func (r *Recorder) Completed(name string, at time.Time) {
	r.completed = append(r.completed, service.CompletedTask{Name: name, CompletedAt: at})
}

// Note appends a free-text note; notes are joined with "; " in the snapshot.
func (r *Recorder) Note(msg string) {
	if msg = strings.TrimSpace(msg); msg != "" {
		r.notes = append(r.notes, msg)
	}
}

// Snapshot returns an independent copy of the record.
func (r *Recorder) Snapshot() service.RunStat {
	completed := make([]service.CompletedTask, len(r.completed))
	copy(completed, r.completed)
	return service.RunStat{
		Timestamp:      r.start,
		InboxAdds:      r.inboxAdds,
		InboxMoves:     r.moves,
		ListsDeleted:   r.deleted,
		ListsCreated:   r.created,
		CompletedTasks: completed,
		Notes:          strings.Join(r.notes, "; "),
	}
}
