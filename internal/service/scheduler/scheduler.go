package scheduler

//go:generate mockgen -source=scheduler.go -destination=mock_timers_test.go -package=scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/covertcloak/scripture-alarm/internal/domain/alarm"
	"github.com/covertcloak/scripture-alarm/internal/logger"
	"github.com/covertcloak/scripture-alarm/internal/repository/alarms"
	"github.com/covertcloak/scripture-alarm/internal/timer"
)

// DefaultSnooze is the delay before a snoozed alarm fires again.
const DefaultSnooze = 5 * time.Minute

// Timers is the wake-timer facility.
type Timers interface {
	// Register arms a timer for payload.AlarmID, replacing any pending one.
	Register(payload alarm.Payload, at time.Time) error
	// Cancel removes the pending timer for alarmID.
	Cancel(alarmID int) bool
	// Scheduled lists pending timers.
	Scheduled() []timer.Entry
	// CanSchedulePrecise reports whether exact timers are permitted.
	CanSchedulePrecise() bool
}

// Scheduler arms, cancels and rebuilds alarm timers.
type Scheduler struct {
	store  alarms.Repository
	timers Timers
	now    func() time.Time

	// mu keeps each store update and its timer change together.
	mu sync.Mutex
	// ringing holds ids whose alert is in progress; they are re-armed by
	// Rearm or Snooze when the alert ends, never by a bulk reschedule.
	ringing map[int]struct{}
	// snoozed holds the payloads of pending snooze timers.
	snoozed map[int]alarm.Payload
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Scheduler) {
		s.now = now
	}
}

// New creates a scheduler over the alarm store and the timer facility.
func New(store alarms.Repository, timers Timers, options ...Option) *Scheduler {
	s := &Scheduler{
		store:   store,
		timers:  timers,
		now:     time.Now,
		ringing: make(map[int]struct{}),
		snoozed: make(map[int]alarm.Payload),
	}

	for _, option := range options {
		option(s)
	}

	return s
}

// Schedule stores r and arms its timer when it is enabled. A disabled
// record has its pending timer cancelled.
func (s *Scheduler) Schedule(ctx context.Context, r alarm.Record) error {
	if err := r.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.store.Upsert(ctx, r); err != nil {
		return fmt.Errorf("persist alarm %d: %w", r.ID, err)
	}

	if !r.Enabled {
		s.disarmLocked(r.ID)

		logger.InfoKV(ctx, "Alarm disabled", "alarm_id", r.ID)

		return nil
	}

	return s.armLocked(ctx, r)
}

// Cancel removes the alarm and its pending timer.
func (s *Scheduler) Cancel(ctx context.Context, alarmID int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.disarmLocked(alarmID)

	if err := s.store.Remove(ctx, alarmID); err != nil {
		return fmt.Errorf("remove alarm %d: %w", alarmID, err)
	}

	logger.InfoKV(ctx, "Alarm cancelled", "alarm_id", alarmID)

	return nil
}

// RescheduleAll arms a timer for every enabled stored alarm. Failures are
// collected and the remaining alarms are still armed.
func (s *Scheduler) RescheduleAll(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.store.List(ctx)
	if err != nil {
		return fmt.Errorf("list alarms: %w", err)
	}

	return s.rescheduleLocked(ctx, records)
}

// Reconcile brings the timers in line with the store after it was edited
// elsewhere: timers of alarms that are gone or disabled are cancelled and
// every enabled alarm is re-armed. Pending snoozes of unchanged alarms are kept.
func (s *Scheduler) Reconcile(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.store.List(ctx)
	if err != nil {
		return fmt.Errorf("list alarms: %w", err)
	}

	enabled := make(map[int]alarm.Record, len(records))

	for _, r := range records {
		if r.Enabled {
			enabled[r.ID] = r
		}
	}

	pending := make(map[int]struct{})

	for _, entry := range s.timers.Scheduled() {
		id := entry.Payload.AlarmID
		pending[id] = struct{}{}

		if _, ok := enabled[id]; !ok {
			s.disarmLocked(id)

			logger.InfoKV(ctx, "Cancelled timer of disabled or removed alarm", "alarm_id", id)
		}
	}

	keep := make([]alarm.Record, 0, len(enabled))

	for _, r := range records {
		payload, snoozed := s.snoozed[r.ID]
		_, isPending := pending[r.ID]

		if snoozed && isPending && payload == r.Payload() && r.Enabled {
			continue
		}

		keep = append(keep, r)
	}

	return s.rescheduleLocked(ctx, keep)
}

// Begin marks an alarm as ringing.
func (s *Scheduler) Begin(alarmID int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.ringing[alarmID] = struct{}{}
	delete(s.snoozed, alarmID)
}

// Snooze arms a one-shot re-fire of payload after delay without touching
// the stored record. The timer reuses the alarm id.
func (s *Scheduler) Snooze(ctx context.Context, payload alarm.Payload, delay time.Duration) (time.Time, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.ringing, payload.AlarmID)

	if !s.timers.CanSchedulePrecise() {
		return time.Time{}, timer.ErrPreciseAlarmDenied
	}

	at := s.now().Add(delay)
	if err := s.timers.Register(payload, at); err != nil {
		return time.Time{}, fmt.Errorf("register snooze for alarm %d: %w", payload.AlarmID, err)
	}

	s.snoozed[payload.AlarmID] = payload

	logger.InfoKV(ctx, "Alarm snoozed", "alarm_id", payload.AlarmID, "fires_at", at.Format(time.RFC3339))

	return at, nil
}

// Rearm is called when an alert is dismissed. A repeating alarm is armed
// for its next occurrence; a one-time alarm is stored as disabled so it does
// not fire again after a restart.
func (s *Scheduler) Rearm(ctx context.Context, alarmID int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.ringing, alarmID)
	delete(s.snoozed, alarmID)

	r, err := s.store.Get(ctx, alarmID)
	if err != nil {
		if errors.Is(err, alarms.ErrNotFound) {
			// Removed while ringing.
			return nil
		}

		return fmt.Errorf("load alarm %d: %w", alarmID, err)
	}

	if !r.Enabled {
		return nil
	}

	if r.IsRecurring() {
		return s.armLocked(ctx, r)
	}

	r.Enabled = false
	if err = s.store.Upsert(ctx, r); err != nil {
		return fmt.Errorf("disable one-time alarm %d: %w", alarmID, err)
	}

	s.timers.Cancel(alarmID)

	logger.InfoKV(ctx, "One-time alarm disabled after firing", "alarm_id", alarmID)

	return nil
}

// Pending lists the armed timers.
func (s *Scheduler) Pending() []timer.Entry {
	return s.timers.Scheduled()
}

func (s *Scheduler) rescheduleLocked(ctx context.Context, records []alarm.Record) error {
	var (
		errs  []error
		armed int
	)

	for _, r := range records {
		if !r.Enabled {
			continue
		}

		if _, ok := s.ringing[r.ID]; ok {
			continue
		}

		if err := s.armLocked(ctx, r); err != nil {
			errs = append(errs, err)

			continue
		}

		armed++
	}

	logger.InfoKV(ctx, "Alarms rescheduled", "armed", armed, "failed", len(errs))

	return errors.Join(errs...)
}

// armLocked registers the timer for r. Without the precise-alarm capability
// the alarm stays stored but inert.
func (s *Scheduler) armLocked(ctx context.Context, r alarm.Record) error {
	delete(s.snoozed, r.ID)

	if !s.timers.CanSchedulePrecise() {
		logger.WarnKV(ctx, "Precise alarms not permitted, alarm will not fire", "alarm_id", r.ID)

		return nil
	}

	at := alarm.NextFireTime(r, s.now())
	if err := s.timers.Register(r.Payload(), at); err != nil {
		return fmt.Errorf("register alarm %d: %w", r.ID, err)
	}

	logger.InfoKV(ctx, "Alarm scheduled",
		"alarm_id", r.ID,
		"fires_at", at.Format(time.RFC3339),
		"days", r.Days.String())

	return nil
}

func (s *Scheduler) disarmLocked(alarmID int) {
	s.timers.Cancel(alarmID)
	delete(s.snoozed, alarmID)
}
