package control

import (
	"context"
	"sync"
	"time"

	"github.com/covertcloak/scripture-alarm/internal/service/trigger"
	"github.com/covertcloak/scripture-alarm/internal/timer"
)

// fakeAlerts records the calls the server forwards to the controller.
type fakeAlerts struct {
	mu sync.Mutex

	dismissed []int
	sessions  []trigger.SessionInfo
	snoozed   map[int]time.Time
	err       error
}

func (f *fakeAlerts) Dismiss(_ context.Context, alarmID int) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.err != nil {
		return 0, f.err
	}

	f.dismissed = append(f.dismissed, alarmID)

	return 1, nil
}

func (f *fakeAlerts) Snooze(context.Context, int) (map[int]time.Time, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.snoozed, f.err
}

func (f *fakeAlerts) ReadAgain(context.Context, int) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.err != nil {
		return 0, f.err
	}

	return len(f.sessions), nil
}

func (f *fakeAlerts) Sessions() []trigger.SessionInfo {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.sessions
}

// fakeTimers counts reconciles and serves a fixed timer list.
type fakeTimers struct {
	mu sync.Mutex

	reconciles int
	pending    []timer.Entry
	err        error
}

func (f *fakeTimers) Reconcile(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.reconciles++

	return f.err
}

func (f *fakeTimers) Pending() []timer.Entry {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.pending
}
