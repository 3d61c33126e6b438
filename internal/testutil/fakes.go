package testutil

import (
	"context"
	"sync"
	"time"

	"gtaskroll/internal/service"
)

// FakeRunLog is an in-memory service.RunStore.
type FakeRunLog struct {
	mu   sync.Mutex
	Runs []service.RunStat

	AppendErr error
	ReadErr   error
}

// AppendRun implements service.RunLog.
func (f *FakeRunLog) AppendRun(ctx context.Context, stat service.RunStat) error {
	if f.AppendErr != nil {
		return f.AppendErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Runs = append(f.Runs, stat)
	return nil
}

// RecentRuns implements service.RunReader.
func (f *FakeRunLog) RecentRuns(ctx context.Context, since time.Time) ([]service.RunStat, error) {
	if f.ReadErr != nil {
		return nil, f.ReadErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	var result []service.RunStat
	for _, r := range f.Runs {
		if !r.Timestamp.Before(since) {
			result = append(result, r)
		}
	}
	return result, nil
}

// Message is one notification captured by FakeNotifier.
type Message struct {
	Recipient string
	Subject   string
	Body      string
}

// FakeNotifier records sent messages.
type FakeNotifier struct {
	mu       sync.Mutex
	Messages []Message
	SendErr  error
}

// Send implements service.Notifier.
func (f *FakeNotifier) Send(ctx context.Context, recipient, subject, body string) error {
	if f.SendErr != nil {
		return f.SendErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Messages = append(f.Messages, Message{Recipient: recipient, Subject: subject, Body: body})
	return nil
}

// FakeLocker is an in-process lock with observable state.
type FakeLocker struct {
	mu       sync.Mutex
	Held     bool
	Busy     bool // when set TryAcquire reports the lock as taken elsewhere
	Acquires int
	Releases int

	AcquireErr error
	ReleaseErr error
}

// TryAcquire implements rollover.Locker.
func (f *FakeLocker) TryAcquire(ctx context.Context, wait time.Duration) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.AcquireErr != nil {
		return false, f.AcquireErr
	}
	if f.Busy || f.Held {
		return false, nil
	}
	f.Held = true
	f.Acquires++
	return true, nil
}

// Release implements rollover.Locker.
func (f *FakeLocker) Release() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Held = false
	f.Releases++
	return f.ReleaseErr
}

// FakeClock returns Start and then advances by Step on every call.
type FakeClock struct {
	mu    sync.Mutex
	Start time.Time
	Step  time.Duration
	calls int
}

// Now returns the current fake time and advances the clock.
func (c *FakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := c.Start.Add(time.Duration(c.calls) * c.Step)
	c.calls++
	return t
}
