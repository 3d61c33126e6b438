package rollover_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gtaskroll/internal/rollover"
	"gtaskroll/internal/service"
	"gtaskroll/internal/testutil"
)

type fakeDigester struct {
	sent []time.Time
	err  error
}

func (d *fakeDigester) Send(ctx context.Context, now time.Time) error {
	if d.err != nil {
		return d.err
	}
	d.sent = append(d.sent, now)
	return nil
}

type harness struct {
	svc      *testutil.FakeService
	runs     *testutil.FakeRunLog
	mail     *testutil.FakeNotifier
	lock     *testutil.FakeLocker
	digester *fakeDigester
	opts     rollover.Options
	now      time.Time
}

func newHarness() *harness {
	return &harness{
		svc:      testutil.NewFakeService(),
		runs:     &testutil.FakeRunLog{},
		mail:     &testutil.FakeNotifier{},
		lock:     &testutil.FakeLocker{},
		digester: &fakeDigester{},
		// Thursday
		now: time.Date(2025, 7, 10, 6, 0, 0, 0, time.UTC),
		opts: rollover.Options{
			InboxName:        "Inbox",
			DailyPrefix:      "[Daily]",
			DateFormat:       "January 2, 2006",
			Location:         time.UTC,
			ExecutionTimeout: 270 * time.Second,
			LockWait:         30 * time.Second,
			AutoMoveDueTasks: true,
			TrackRollovers:   true,
			DigestEnabled:    true,
			DigestDay:        time.Monday,
			NotifyEmail:      "me@example.com",
		},
	}
}

func (h *harness) orchestrator() *rollover.Orchestrator {
	return rollover.NewOrchestrator(rollover.Deps{
		Tasks:    h.svc,
		RunLog:   h.runs,
		Notifier: h.mail,
		Locker:   h.lock,
		Digester: h.digester,
		Now:      func() time.Time { return h.now },
		Log:      zerolog.Nop(),
	}, h.opts)
}

func TestOrchestrator_EndToEnd(t *testing.T) {
	h := newHarness()
	h.svc.AddList("inbox", "Inbox")
	h.svc.AddList("old", "[Daily] July 9, 2025")
	completedAt := time.Date(2025, 7, 9, 17, 45, 0, 0, time.UTC)
	h.svc.AddTask("old", service.Task{Title: "Buy milk"})
	h.svc.AddTask("old", service.Task{Title: "Call Bob", Status: service.StatusCompleted, Completed: completedAt})

	stat, err := h.orchestrator().Run(context.Background())
	require.NoError(t, err)

	inbox := h.svc.Tasks("inbox")
	require.Len(t, inbox, 1)
	assert.Equal(t, "Buy milk", inbox[0].Title)
	assert.Equal(t, "Rollover Count: 1", inbox[0].Notes)

	_, oldExists := h.svc.FindList("[Daily] July 9, 2025")
	assert.False(t, oldExists)
	_, todayExists := h.svc.FindList("[Daily] July 10, 2025")
	assert.True(t, todayExists)

	assert.Equal(t, 1, stat.InboxAdds)
	assert.Equal(t, 0, stat.InboxMoves)
	assert.Equal(t, 1, stat.ListsDeleted)
	assert.Equal(t, 1, stat.ListsCreated)
	assert.Equal(t, []service.CompletedTask{{Name: "Call Bob", CompletedAt: completedAt}}, stat.CompletedTasks)
	assert.Empty(t, stat.Notes)
	assert.Equal(t, h.now, stat.Timestamp)

	require.Len(t, h.runs.Runs, 1)
	assert.Equal(t, stat, h.runs.Runs[0])
	assert.Empty(t, h.mail.Messages)
	assert.False(t, h.lock.Held)
	assert.Equal(t, 1, h.lock.Releases)
	assert.Empty(t, h.digester.sent, "Thursday is not digest day")
}

func TestOrchestrator_InboxDueSweep(t *testing.T) {
	h := newHarness()
	h.svc.AddList("inbox", "Inbox")
	h.svc.AddList("today", "[Daily] July 10, 2025")
	due := time.Date(2025, 7, 10, 0, 0, 0, 0, time.UTC)
	h.svc.AddTask("inbox", service.Task{Title: "dentist", Due: due})
	h.svc.AddTask("inbox", service.Task{Title: "standup", Due: due, Recurrence: "RRULE:FREQ=DAILY"})

	stat, err := h.orchestrator().Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, stat.InboxMoves)
	assert.Equal(t, 0, stat.ListsCreated)
	today := h.svc.Tasks("today")
	require.Len(t, today, 1)
	assert.Equal(t, "dentist", today[0].Title)
}

func TestOrchestrator_AutoMoveDisabled(t *testing.T) {
	h := newHarness()
	h.opts.AutoMoveDueTasks = false
	h.svc.AddList("inbox", "Inbox")
	h.svc.AddTask("inbox", service.Task{Title: "dentist", Due: time.Date(2025, 7, 10, 0, 0, 0, 0, time.UTC)})

	stat, err := h.orchestrator().Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, stat.InboxMoves)
	assert.Len(t, h.svc.Tasks("inbox"), 1)
}

func TestOrchestrator_TrackingDisabled(t *testing.T) {
	h := newHarness()
	h.opts.TrackRollovers = false
	h.svc.AddList("inbox", "Inbox")
	h.svc.AddList("old", "[Daily] July 9, 2025")
	h.svc.AddTask("old", service.Task{Title: "Buy milk", Notes: "2%"})

	_, err := h.orchestrator().Run(context.Background())
	require.NoError(t, err)
	inbox := h.svc.Tasks("inbox")
	require.Len(t, inbox, 1)
	assert.Equal(t, "2%", inbox[0].Notes)
}

func TestOrchestrator_LockBusyDefers(t *testing.T) {
	h := newHarness()
	h.lock.Busy = true
	h.svc.AddList("inbox", "Inbox")
	h.svc.AddList("old", "[Daily] July 9, 2025")

	_, err := h.orchestrator().Run(context.Background())
	require.ErrorIs(t, err, rollover.ErrDeferred)

	assert.Empty(t, h.runs.Runs, "a deferral is not a run")
	assert.Empty(t, h.mail.Messages)
	assert.Equal(t, 0, h.lock.Releases)
	_, stillThere := h.svc.FindList("[Daily] July 9, 2025")
	assert.True(t, stillThere)
}

func TestOrchestrator_MissingInboxIsFatal(t *testing.T) {
	h := newHarness()
	h.svc.AddList("old", "[Daily] July 9, 2025")

	stat, err := h.orchestrator().Run(context.Background())
	require.ErrorIs(t, err, rollover.ErrInboxNotFound)

	assert.Contains(t, stat.Notes, "FATAL")
	require.Len(t, h.runs.Runs, 1)
	assert.Contains(t, h.runs.Runs[0].Notes, "inbox list not found")
	require.Len(t, h.mail.Messages, 1)
	assert.Equal(t, "me@example.com", h.mail.Messages[0].Recipient)
	assert.Equal(t, "Task rollover failed", h.mail.Messages[0].Subject)
	assert.False(t, h.lock.Held)
}

func TestOrchestrator_PartialRecordOnFailure(t *testing.T) {
	h := newHarness()
	h.svc.AddList("inbox", "Inbox")
	h.svc.AddList("a", "[Daily] July 8, 2025")
	h.svc.AddList("b", "[Daily] July 9, 2025")
	h.svc.AddTask("a", service.Task{Title: "one"})
	h.svc.DeleteListErr["b"] = errors.New("backend unavailable")

	stat, err := h.orchestrator().Run(context.Background())
	require.Error(t, err)

	assert.Equal(t, 1, stat.ListsDeleted)
	assert.Equal(t, 1, stat.InboxAdds)
	assert.Equal(t, 0, stat.ListsCreated)
	require.Len(t, h.runs.Runs, 1)
	assert.Contains(t, h.runs.Runs[0].Notes, "FATAL: delete list")
	assert.False(t, h.lock.Held)
}

func TestOrchestrator_PanicReleasesLock(t *testing.T) {
	h := newHarness()
	h.svc.AddList("inbox", "Inbox")
	h.svc.AddList("old", "[Daily] July 9, 2025")
	h.svc.AddTask("old", service.Task{Title: "explode"})
	h.svc.DeleteTaskHook = func(listID, taskID string) { panic("storage exploded") }

	_, err := h.orchestrator().Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "storage exploded")
	assert.False(t, h.lock.Held)
	assert.Equal(t, 1, h.lock.Releases)
	require.Len(t, h.runs.Runs, 1)
	assert.Len(t, h.mail.Messages, 1)
}

func TestOrchestrator_RunLogFailureIsNotFatal(t *testing.T) {
	h := newHarness()
	h.svc.AddList("inbox", "Inbox")
	h.runs.AppendErr = errors.New("sheet locked")

	stat, err := h.orchestrator().Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, stat.ListsCreated)
	require.Len(t, h.mail.Messages, 1)
	assert.Contains(t, h.mail.Messages[0].Subject, "run log")
}

func TestOrchestrator_NotificationFailureIsSwallowed(t *testing.T) {
	h := newHarness()
	h.mail.SendErr = errors.New("smtp down")

	_, err := h.orchestrator().Run(context.Background())
	require.ErrorIs(t, err, rollover.ErrInboxNotFound)
	assert.False(t, h.lock.Held)
}

func TestOrchestrator_DigestOnDigestDay(t *testing.T) {
	h := newHarness()
	h.opts.DigestDay = time.Thursday
	h.svc.AddList("inbox", "Inbox")

	_, err := h.orchestrator().Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []time.Time{h.now}, h.digester.sent)
}

func TestOrchestrator_DigestDayUsesLocalZone(t *testing.T) {
	h := newHarness()
	tokyo, err := time.LoadLocation("Asia/Tokyo")
	require.NoError(t, err)
	h.opts.Location = tokyo
	h.opts.DigestDay = time.Friday
	// Thursday 20:00 UTC is Friday morning in Tokyo.
	h.now = time.Date(2025, 7, 10, 20, 0, 0, 0, time.UTC)
	h.svc.AddList("inbox", "Inbox")

	_, err = h.orchestrator().Run(context.Background())
	require.NoError(t, err)
	assert.Len(t, h.digester.sent, 1)
	_, ok := h.svc.FindList("[Daily] July 11, 2025")
	assert.True(t, ok)
}

func TestOrchestrator_DigestFailure(t *testing.T) {
	h := newHarness()
	h.opts.DigestDay = time.Thursday
	h.digester.err = errors.New("no runs table")
	h.svc.AddList("inbox", "Inbox")

	_, err := h.orchestrator().Run(context.Background())
	require.Error(t, err)
	assert.Len(t, h.runs.Runs, 1)
	assert.Len(t, h.mail.Messages, 1)
	assert.False(t, h.lock.Held)
}

func TestOrchestrator_LockError(t *testing.T) {
	h := newHarness()
	h.lock.AcquireErr = errors.New("permission denied")

	_, err := h.orchestrator().Run(context.Background())
	require.Error(t, err)
	assert.NotErrorIs(t, err, rollover.ErrDeferred)
	assert.Empty(t, h.runs.Runs)
}

func TestOptions_TodayTitleUsesLocalDay(t *testing.T) {
	la, err := time.LoadLocation("America/Los_Angeles")
	require.NoError(t, err)
	opts := rollover.Options{DailyPrefix: "[Daily]", DateFormat: "January 2, 2006", Location: la}

	// 03:00 UTC on the 11th is still the 10th in Los Angeles.
	now := time.Date(2025, 7, 11, 3, 0, 0, 0, time.UTC)
	assert.Equal(t, "[Daily] July 10, 2025", opts.TodayTitle(now))
}
