package rollover

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"gtaskroll/internal/service"
)

var (
	// ErrDeferred is returned when another run holds the lock. It is not a failure.
	ErrDeferred = errors.New("another rollover run is in progress")

	// ErrInboxNotFound is returned when no list carries the configured inbox title.
	ErrInboxNotFound = errors.New("inbox list not found")
)

// Locker guarantees a single rollover run at a time.
type Locker interface {
	TryAcquire(ctx context.Context, wait time.Duration) (bool, error)
	Release() error
}

// Digester sends the periodic digest.
type Digester interface {
	Send(ctx context.Context, now time.Time) error
}

// Options carries the run settings.
type Options struct {
	InboxName        string
	DailyPrefix      string
	DateFormat       string
	Location         *time.Location
	ExecutionTimeout time.Duration
	LockWait         time.Duration
	AutoMoveDueTasks bool
	TrackRollovers   bool
	DigestEnabled    bool
	DigestDay        time.Weekday
	NotifyEmail      string
}

func (o Options) location() *time.Location {
	if o.Location == nil {
		return time.Local
	}
	return o.Location
}

// TodayTitle names the daily list for the local calendar day of now.
func (o Options) TodayTitle(now time.Time) string {
	return o.DailyPrefix + " " + now.In(o.location()).Format(o.DateFormat)
}

// Deps are the collaborators of an Orchestrator. RunLog, Notifier and
// Digester may be nil.
type Deps struct {
	Tasks    service.Service
	RunLog   service.RunLog
	Notifier service.Notifier
	Locker   Locker
	Digester Digester
	Now      func() time.Time
	Log      zerolog.Logger
}

// Orchestrator runs one complete rollover.
type Orchestrator struct {
	deps    Deps
	opts    Options
	sweeper *Sweeper
	inbox   *InboxSweep
}

// NewOrchestrator wires the rollover components over deps.
func NewOrchestrator(deps Deps, opts Options) *Orchestrator {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	migrator := NewMigrator(deps.Tasks, deps.Log)
	return &Orchestrator{
		deps:    deps,
		opts:    opts,
		sweeper: NewSweeper(deps.Tasks, migrator, opts.DailyPrefix, opts.TrackRollovers, deps.Now, deps.Log),
		inbox:   NewInboxSweep(deps.Tasks, migrator, deps.Log),
	}
}

// Run acquires the lock, performs the rollover and emits the run record.
//
// ErrDeferred means the lock was busy and nothing happened. Any other error
// means the run hit its fatal path: the partial record was still emitted and a
// failure notification attempted. The lock is released on every path.
func (o *Orchestrator) Run(ctx context.Context) (service.RunStat, error) {
	log := o.deps.Log

	ok, err := o.deps.Locker.TryAcquire(ctx, o.opts.LockWait)
	if err != nil {
		return service.RunStat{}, fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		log.Info().Dur("waited", o.opts.LockWait).Msg("lock busy, deferring run")
		return service.RunStat{}, ErrDeferred
	}
	defer func() {
		if err := o.deps.Locker.Release(); err != nil {
			log.Error().Err(err).Msg("failed to release lock")
		}
	}()

	start := o.deps.Now()
	rec := NewRecorder(start)

	runErr := o.execute(ctx, rec, start)
	if runErr != nil {
		rec.Note("FATAL: " + runErr.Error())
		log.Error().Err(runErr).Msg("rollover run failed")
	}

	stat := rec.Snapshot()
	o.emit(ctx, stat)

	if runErr != nil {
		o.notify(ctx, "Task rollover failed", failureBody(runErr, stat))
		return stat, runErr
	}

	if o.digestDue(start) {
		if err := o.deps.Digester.Send(ctx, start); err != nil {
			log.Error().Err(err).Msg("digest failed")
			o.notify(ctx, "Task rollover digest failed", failureBody(err, stat))
			return stat, fmt.Errorf("digest: %w", err)
		}
		log.Info().Msg("digest sent")
	}

	log.Info().
		Int("inbox_adds", stat.InboxAdds).
		Int("inbox_moves", stat.InboxMoves).
		Int("lists_deleted", stat.ListsDeleted).
		Int("lists_created", stat.ListsCreated).
		Int("completed", len(stat.CompletedTasks)).
		Msg("rollover run finished")
	return stat, nil
}

// execute is the body of a run. Panics are converted into errors so they
// take the same fatal path as returned errors.
func (o *Orchestrator) execute(ctx context.Context, rec *Recorder, start time.Time) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()

	lists, err := o.deps.Tasks.ListLists(ctx)
	if err != nil {
		return fmt.Errorf("list task lists: %w", err)
	}

	todayTitle := o.opts.TodayTitle(start)
	c := Classify(lists, o.opts.DailyPrefix, todayTitle, o.opts.InboxName)
	if c.Inbox == nil {
		return fmt.Errorf("%w: %q", ErrInboxNotFound, o.opts.InboxName)
	}

	var deadline time.Time
	if o.opts.ExecutionTimeout > 0 {
		deadline = start.Add(o.opts.ExecutionTimeout)
	}

	res, err := o.sweeper.Sweep(ctx, rec, lists, todayTitle, c.Inbox.ID, deadline)
	if err != nil {
		return err
	}

	if o.opts.AutoMoveDueTasks {
		n, err := o.inbox.Sweep(ctx, c.Inbox.ID, res.Today.ID, LocalDate(start, o.opts.location()))
		rec.AddInboxMoves(n)
		if err != nil {
			return err
		}
	}
	return nil
}

func (o *Orchestrator) digestDue(start time.Time) bool {
	if !o.opts.DigestEnabled || o.deps.Digester == nil {
		return false
	}
	return start.In(o.opts.location()).Weekday() == o.opts.DigestDay
}

// emit hands the record to the run log. A failed write is logged and
// reported but never fails the run.
func (o *Orchestrator) emit(ctx context.Context, stat service.RunStat) {
	if o.deps.RunLog == nil {
		return
	}
	if err := o.deps.RunLog.AppendRun(ctx, stat); err != nil {
		o.deps.Log.Error().Err(err).Msg("failed to write run record")
		o.notify(ctx, "Task rollover: run log write failed", failureBody(err, stat))
	}
}

// notify is best effort; delivery errors are only logged.
func (o *Orchestrator) notify(ctx context.Context, subject, body string) {
	if o.deps.Notifier == nil || o.opts.NotifyEmail == "" {
		o.deps.Log.Warn().Str("subject", subject).Msg("no notification channel configured")
		return
	}
	if err := o.deps.Notifier.Send(ctx, o.opts.NotifyEmail, subject, body); err != nil {
		o.deps.Log.Error().Err(err).Str("subject", subject).Msg("failed to send notification")
	}
}

func failureBody(err error, stat service.RunStat) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Error: %v\n\n", err)
	fmt.Fprintf(&b, "Run started: %s\n", stat.Timestamp.Format(time.RFC3339))
	fmt.Fprintf(&b, "Tasks rolled into inbox: %d\n", stat.InboxAdds)
	fmt.Fprintf(&b, "Inbox tasks moved to today: %d\n", stat.InboxMoves)
	fmt.Fprintf(&b, "Lists deleted: %d\n", stat.ListsDeleted)
	fmt.Fprintf(&b, "Lists created: %d\n", stat.ListsCreated)
	if stat.Notes != "" {
		fmt.Fprintf(&b, "Notes: %s\n", stat.Notes)
	}
	return b.String()
}
