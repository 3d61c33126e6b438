package rollover_test

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gtaskroll/internal/rollover"
	"gtaskroll/internal/service"
	"gtaskroll/internal/testutil"
)

func newInboxSweep(svc *testutil.FakeService) *rollover.InboxSweep {
	return rollover.NewInboxSweep(svc, rollover.NewMigrator(svc, zerolog.Nop()), zerolog.Nop())
}

func TestInboxSweep_SkipsRecurring(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.AddList("inbox", "Inbox")
	svc.AddList("today", todayTitle)
	due := time.Date(2025, 7, 10, 0, 0, 0, 0, time.UTC)
	svc.AddTask("inbox", service.Task{Title: "Pay rent", Due: due})
	svc.AddTask("inbox", service.Task{Title: "Water plants", Due: due, Recurrence: "RRULE:FREQ=WEEKLY"})

	moved, err := newInboxSweep(svc).Sweep(context.Background(), "inbox", "today", "2025-07-10")
	require.NoError(t, err)
	assert.Equal(t, 1, moved)

	today := svc.Tasks("today")
	require.Len(t, today, 1)
	assert.Equal(t, "Pay rent", today[0].Title)
	inbox := svc.Tasks("inbox")
	require.Len(t, inbox, 1)
	assert.Equal(t, "Water plants", inbox[0].Title)
}

func TestInboxSweep_DateOnlyMatch(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.AddList("inbox", "Inbox")
	svc.AddList("today", todayTitle)
	svc.AddTask("inbox", service.Task{Title: "late", Due: time.Date(2025, 7, 10, 23, 59, 0, 0, time.UTC)})
	svc.AddTask("inbox", service.Task{Title: "early", Due: time.Date(2025, 7, 10, 0, 0, 0, 0, time.UTC)})
	svc.AddTask("inbox", service.Task{Title: "tomorrow", Due: time.Date(2025, 7, 11, 0, 0, 0, 0, time.UTC)})
	svc.AddTask("inbox", service.Task{Title: "no due"})

	moved, err := newInboxSweep(svc).Sweep(context.Background(), "inbox", "today", "2025-07-10")
	require.NoError(t, err)
	assert.Equal(t, 2, moved)
	assert.Len(t, svc.Tasks("inbox"), 2)
}

func TestInboxSweep_LeavesCounterAlone(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.AddList("inbox", "Inbox")
	svc.AddList("today", todayTitle)
	due := time.Date(2025, 7, 10, 0, 0, 0, 0, time.UTC)
	svc.AddTask("inbox", service.Task{Title: "carried", Notes: "Rollover Count: 3", Due: due})

	_, err := newInboxSweep(svc).Sweep(context.Background(), "inbox", "today", "2025-07-10")
	require.NoError(t, err)

	today := svc.Tasks("today")
	require.Len(t, today, 1)
	assert.Equal(t, "Rollover Count: 3", today[0].Notes)
}

// Completed inbox tasks due today stay where they are.
func TestInboxSweep_SkipsCompleted(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.AddList("inbox", "Inbox")
	svc.AddList("today", todayTitle)
	due := time.Date(2025, 7, 10, 0, 0, 0, 0, time.UTC)
	svc.AddTask("inbox", service.Task{Title: "finished", Due: due, Status: service.StatusCompleted})

	moved, err := newInboxSweep(svc).Sweep(context.Background(), "inbox", "today", "2025-07-10")
	require.NoError(t, err)
	assert.Equal(t, 0, moved)
	assert.Empty(t, svc.Tasks("today"))
}

func TestInboxSweep_Idempotent(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.AddList("inbox", "Inbox")
	svc.AddList("today", todayTitle)
	svc.AddTask("inbox", service.Task{Title: "once", Due: time.Date(2025, 7, 10, 0, 0, 0, 0, time.UTC)})

	s := newInboxSweep(svc)
	first, err := s.Sweep(context.Background(), "inbox", "today", "2025-07-10")
	require.NoError(t, err)
	second, err := s.Sweep(context.Background(), "inbox", "today", "2025-07-10")
	require.NoError(t, err)

	assert.Equal(t, 1, first)
	assert.Equal(t, 0, second)
	assert.Len(t, svc.Tasks("today"), 1)
}

func TestLocalDate(t *testing.T) {
	tokyo, err := time.LoadLocation("Asia/Tokyo")
	require.NoError(t, err)
	now := time.Date(2025, 7, 9, 20, 0, 0, 0, time.UTC)
	assert.Equal(t, "2025-07-10", rollover.LocalDate(now, tokyo))
	assert.Equal(t, "2025-07-09", rollover.LocalDate(now, time.UTC))
}
