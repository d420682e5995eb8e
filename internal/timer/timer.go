package timer

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/covertcloak/scripture-alarm/internal/domain/alarm"
	"github.com/covertcloak/scripture-alarm/internal/logger"
)

var (
	// ErrPreciseAlarmDenied is returned when exact timers are not permitted on this host.
	ErrPreciseAlarmDenied = errors.New("precise alarms are not permitted")
	// ErrInPast is returned for a fire instant that is not in the future.
	ErrInPast = errors.New("fire time is not in the future")
)

// FireFunc is invoked on its own goroutine when a timer elapses.
type FireFunc func(ctx context.Context, payload alarm.Payload)

// Entry describes one pending timer.
type Entry struct {
	Payload alarm.Payload
	At      time.Time
}

type registration struct {
	entry      Entry
	entryID    cron.EntryID
	generation uint64
}

// CronTimers keeps one cron entry per alarm id.
type CronTimers struct {
	ctx     context.Context //nolint:containedctx // Passed to every fire callback.
	cron    *cron.Cron
	fire    FireFunc
	precise bool

	mu         sync.Mutex
	entries    map[int]registration
	generation uint64
}

// Option configures CronTimers.
type Option func(*CronTimers)

// WithPrecise controls whether exact timers may be scheduled.
func WithPrecise(allowed bool) Option {
	return func(t *CronTimers) {
		t.precise = allowed
	}
}

// New creates a timer facility. fire receives ctx with the timer's alarm id attached.
func New(ctx context.Context, fire FireFunc, options ...Option) *CronTimers {
	cronLog := newCronLogger(logger.WithName(ctx, "cron"))

	t := &CronTimers{
		ctx: ctx,
		cron: cron.New(
			cron.WithLocation(time.Local),
			cron.WithLogger(cronLog),
			cron.WithChain(cron.Recover(cronLog)),
		),
		fire:    fire,
		precise: true,
		entries: make(map[int]registration),
	}

	for _, option := range options {
		option(t)
	}

	return t
}

// Start begins dispatching timers.
func (t *CronTimers) Start() {
	t.cron.Start()
}

// Stop halts dispatch and waits for running callbacks to return.
func (t *CronTimers) Stop() {
	<-t.cron.Stop().Done()
}

// CanSchedulePrecise reports whether exact timers are permitted.
func (t *CronTimers) CanSchedulePrecise() bool {
	return t.precise
}

// Register arms a timer for payload.AlarmID at the given instant, replacing
// any timer already pending for that id.
func (t *CronTimers) Register(payload alarm.Payload, at time.Time) error {
	if !t.precise {
		return ErrPreciseAlarmDenied
	}

	if !at.After(time.Now()) {
		return fmt.Errorf("%w: %s", ErrInPast, at.Format(time.RFC3339))
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	t.cancelLocked(payload.AlarmID)

	t.generation++
	generation := t.generation

	entryID := t.cron.Schedule(oneShot{at: at}, cron.FuncJob(func() {
		t.elapsed(payload.AlarmID, generation)
	}))

	t.entries[payload.AlarmID] = registration{
		entry:      Entry{Payload: payload, At: at},
		entryID:    entryID,
		generation: generation,
	}

	return nil
}

// Cancel removes the pending timer for alarmID and reports whether one existed.
func (t *CronTimers) Cancel(alarmID int) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.cancelLocked(alarmID)
}

// Scheduled returns the pending timers ordered by fire instant.
func (t *CronTimers) Scheduled() []Entry {
	t.mu.Lock()
	entries := make([]Entry, 0, len(t.entries))

	for _, reg := range t.entries {
		entries = append(entries, reg.entry)
	}
	t.mu.Unlock()

	slices.SortFunc(entries, func(a, b Entry) int {
		if c := a.At.Compare(b.At); c != 0 {
			return c
		}

		return a.Payload.AlarmID - b.Payload.AlarmID
	})

	return entries
}

func (t *CronTimers) cancelLocked(alarmID int) bool {
	reg, ok := t.entries[alarmID]
	if !ok {
		return false
	}

	t.cron.Remove(reg.entryID)
	delete(t.entries, alarmID)

	return true
}

// elapsed runs on a cron goroutine. A timer replaced after it was
// dispatched is ignored.
func (t *CronTimers) elapsed(alarmID int, generation uint64) {
	t.mu.Lock()

	reg, ok := t.entries[alarmID]
	if !ok || reg.generation != generation {
		t.mu.Unlock()

		return
	}

	t.cron.Remove(reg.entryID)
	delete(t.entries, alarmID)
	t.mu.Unlock()

	ctx := logger.WithKV(t.ctx, "alarm_id", alarmID)
	logger.InfoKV(ctx, "Alarm timer elapsed", "scheduled_for", reg.entry.At.Format(time.RFC3339))

	t.fire(ctx, reg.entry.Payload)
}

// oneShot is a cron schedule that fires once at a fixed instant.
type oneShot struct {
	at time.Time
}

// Next returns the instant while it is still ahead, and the zero time
// afterwards so cron never runs the entry again.
func (s oneShot) Next(now time.Time) time.Time {
	if now.Before(s.at) {
		return s.at
	}

	return time.Time{}
}
