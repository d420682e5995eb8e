package trigger

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/covertcloak/scripture-alarm/internal/content"
	"github.com/covertcloak/scripture-alarm/internal/device"
	"github.com/covertcloak/scripture-alarm/internal/domain/alarm"
	"github.com/covertcloak/scripture-alarm/internal/logger"
	"github.com/covertcloak/scripture-alarm/internal/preferences"
	"github.com/covertcloak/scripture-alarm/internal/service/playback"
)

const (
	// DefaultSnooze is the delay before a snoozed alert fires again.
	DefaultSnooze = 5 * time.Minute
	// DefaultReadAgainInterval is the minimum gap between replays.
	DefaultReadAgainInterval = time.Second
	// DefaultDismissGrace is how long a repeated dismissal of an ended
	// alert still succeeds.
	DefaultDismissGrace = time.Minute
)

var (
	// ErrSessionActive is returned when an alarm fires while its alert is still active.
	ErrSessionActive = errors.New("alert already active for alarm")
	// ErrNoSession is returned when no active alert matches a request.
	ErrNoSession = errors.New("no active alert")
	// ErrClosed is returned after the controller has shut down.
	ErrClosed = errors.New("trigger controller closed")
)

// Scheduler is the part of the alarm scheduler a session ending needs.
type Scheduler interface {
	Begin(alarmID int)
	Rearm(ctx context.Context, alarmID int) error
	Snooze(ctx context.Context, payload alarm.Payload, delay time.Duration) (time.Time, error)
}

// Resolver chooses the verse for a fired alarm.
type Resolver interface {
	Resolve(ctx context.Context, payload alarm.Payload) content.Verse
}

// Preferences supplies the speech settings for new sessions.
type Preferences interface {
	Load(ctx context.Context) preferences.Speech
}

// Records looks up the stored alarm for display purposes.
type Records interface {
	Get(ctx context.Context, id int) (alarm.Record, error)
}

// Deps are the collaborators of the controller.
type Deps struct {
	Player      *playback.Player
	Presenter   device.Presenter
	Scheduler   Scheduler
	Resolver    Resolver
	Preferences Preferences
	Records     Records
}

// Config tunes session behaviour.
type Config struct {
	// Snooze is the re-fire delay of a snoozed alert.
	Snooze time.Duration
	// Greeting replaces the default greeting when set.
	Greeting string
	// ReadAgainInterval is the minimum gap between replays.
	ReadAgainInterval time.Duration
	// DismissGrace is how long a repeated dismissal of an ended alert
	// still succeeds.
	DismissGrace time.Duration
}

// Controller starts sessions for fired alarms and routes user actions to them.
type Controller struct {
	deps Deps
	cfg  Config

	mu       sync.Mutex
	sessions map[int]*Session
	// dismissed records when each alarm's last alert was dismissed.
	dismissed map[int]time.Time
	closed    bool
}

// NewController creates a controller.
func NewController(deps Deps, cfg Config) *Controller {
	if cfg.Snooze <= 0 {
		cfg.Snooze = DefaultSnooze
	}

	if cfg.ReadAgainInterval <= 0 {
		cfg.ReadAgainInterval = DefaultReadAgainInterval
	}

	if cfg.DismissGrace <= 0 {
		cfg.DismissGrace = DefaultDismissGrace
	}

	return &Controller{
		deps:      deps,
		cfg:       cfg,
		sessions:  make(map[int]*Session),
		dismissed: make(map[int]time.Time),
	}
}

// Fire is the timer callback. Failures are logged; the timer never sees them.
func (c *Controller) Fire(ctx context.Context, payload alarm.Payload) {
	if _, err := c.Start(ctx, payload); err != nil {
		logger.WarnKV(ctx, "Alarm fire ignored", "alarm_id", payload.AlarmID, "error", err)
	}
}

// Start creates and launches the session for payload.
func (c *Controller) Start(ctx context.Context, payload alarm.Payload) (*Session, error) {
	// The session outlives the request that started it.
	ctx = context.WithoutCancel(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil, ErrClosed
	}

	if _, ok := c.sessions[payload.AlarmID]; ok {
		return nil, fmt.Errorf("%w %d", ErrSessionActive, payload.AlarmID)
	}

	record, err := c.deps.Records.Get(ctx, payload.AlarmID)
	if err != nil {
		logger.DebugKV(ctx, "Fired alarm has no stored record", "alarm_id", payload.AlarmID, "error", err)

		record = alarm.Record{ID: payload.AlarmID}
	}

	prefs := c.deps.Preferences.Load(ctx)
	sessionID := uuid.NewString()
	sessionCtx := logger.WithKV(logger.WithName(ctx, "trigger"), "session_id", sessionID)

	s := &Session{
		id:           sessionID,
		payload:      payload,
		record:       record,
		ctx:          sessionCtx,
		orchestrator: c.deps.Player.NewOrchestrator(),
		synth:        c.deps.Player.Synthesizer(),
		presenter:    c.deps.Presenter,
		resolver:     c.deps.Resolver,
		prefs:        prefs,
		greeting:     Greeting(c.cfg.Greeting, prefs.UserName),
		readAgain:    rate.NewLimiter(rate.Every(c.cfg.ReadAgainInterval), 1),
		finish:       c.finish,
		events:       make(chan any, eventQueueSize),
		done:         make(chan struct{}),
	}

	c.deps.Scheduler.Begin(payload.AlarmID)
	c.sessions[payload.AlarmID] = s
	delete(c.dismissed, payload.AlarmID)

	s.start()

	return s, nil
}

// Dismiss ends the alert of alarmID, or every alert when alarmID is 0, and
// returns how many were dismissed. Repeating a dismissal shortly after the
// alert ended succeeds with a count of zero.
func (c *Controller) Dismiss(ctx context.Context, alarmID int) (int, error) {
	targets, err := c.targets(alarmID)
	if errors.Is(err, ErrNoSession) && c.recentlyDismissed(alarmID) {
		logger.DebugKV(ctx, "Alert already dismissed", "alarm_id", alarmID)

		return 0, nil
	}

	if err != nil {
		return 0, err
	}

	var errs []error

	for _, s := range targets {
		if err = s.Dismiss(); err != nil {
			errs = append(errs, err)
		}
	}

	logger.InfoKV(ctx, "Alerts dismissed", "alarm_id", alarmID, "count", len(targets))

	return len(targets), errors.Join(errs...)
}

// Snooze ends the alert of alarmID (0 for every alert) and arms re-fires.
// The result maps alarm ids to their re-fire instants.
func (c *Controller) Snooze(ctx context.Context, alarmID int) (map[int]time.Time, error) {
	targets, err := c.targets(alarmID)
	if err != nil {
		return nil, err
	}

	var (
		errs   []error
		result = make(map[int]time.Time, len(targets))
	)

	for _, s := range targets {
		at, snoozeErr := s.Snooze()
		if snoozeErr != nil {
			errs = append(errs, snoozeErr)

			continue
		}

		result[s.AlarmID()] = at
	}

	logger.InfoKV(ctx, "Alerts snoozed", "alarm_id", alarmID, "count", len(result))

	return result, errors.Join(errs...)
}

// ReadAgain replays the verse of alarmID (0 for every alert).
func (c *Controller) ReadAgain(ctx context.Context, alarmID int) (int, error) {
	targets, err := c.targets(alarmID)
	if err != nil {
		return 0, err
	}

	var errs []error

	for _, s := range targets {
		if err = s.ReadAgain(); err != nil {
			errs = append(errs, fmt.Errorf("alarm %d: %w", s.AlarmID(), err))
		}
	}

	logger.DebugKV(ctx, "Read again requested", "alarm_id", alarmID, "count", len(targets))

	return len(targets), errors.Join(errs...)
}

// Sessions lists the active alerts ordered by alarm id.
func (c *Controller) Sessions() []SessionInfo {
	c.mu.Lock()
	sessions := make([]*Session, 0, len(c.sessions))

	for _, s := range c.sessions {
		sessions = append(sessions, s)
	}
	c.mu.Unlock()

	infos := make([]SessionInfo, 0, len(sessions))
	for _, s := range sessions {
		infos = append(infos, s.Info())
	}

	slices.SortFunc(infos, func(a, b SessionInfo) int {
		return a.AlarmID - b.AlarmID
	})

	return infos
}

// Close ends every alert without re-arming and rejects further fires.
func (c *Controller) Close(ctx context.Context) {
	c.mu.Lock()
	c.closed = true
	sessions := make([]*Session, 0, len(c.sessions))

	for _, s := range c.sessions {
		sessions = append(sessions, s)
	}
	c.mu.Unlock()

	for _, s := range sessions {
		s.shutdown()
	}

	logger.InfoKV(ctx, "Trigger controller closed", "ended_alerts", len(sessions))
}

func (c *Controller) targets(alarmID int) ([]*Session, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if alarmID != 0 {
		s, ok := c.sessions[alarmID]
		if !ok {
			return nil, fmt.Errorf("%w for alarm %d", ErrNoSession, alarmID)
		}

		return []*Session{s}, nil
	}

	if len(c.sessions) == 0 {
		return nil, ErrNoSession
	}

	sessions := make([]*Session, 0, len(c.sessions))
	for _, s := range c.sessions {
		sessions = append(sessions, s)
	}

	slices.SortFunc(sessions, func(a, b *Session) int {
		return a.AlarmID() - b.AlarmID()
	})

	return sessions, nil
}

// recentlyDismissed reports whether alarmID, or any alarm when alarmID is
// 0, was dismissed within the grace period. Expired entries are dropped.
func (c *Controller) recentlyDismissed(alarmID int) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	cutoff := time.Now().Add(-c.cfg.DismissGrace)
	found := false

	for id, at := range c.dismissed {
		if at.Before(cutoff) {
			delete(c.dismissed, id)

			continue
		}

		if alarmID == 0 || id == alarmID {
			found = true
		}
	}

	return found
}

// finish runs on the session goroutine once its effects are released.
func (c *Controller) finish(ctx context.Context, s *Session, how ending) (time.Time, error) {
	c.mu.Lock()
	if c.sessions[s.AlarmID()] == s {
		delete(c.sessions, s.AlarmID())

		if how == endDismiss {
			c.dismissed[s.AlarmID()] = time.Now()
		}
	}
	c.mu.Unlock()

	switch how {
	case endDismiss:
		if err := c.deps.Scheduler.Rearm(ctx, s.AlarmID()); err != nil {
			logger.ErrorKV(ctx, "Failed to re-arm alarm after dismissal", "error", err)

			return time.Time{}, err
		}
	case endSnooze:
		at, err := c.deps.Scheduler.Snooze(ctx, s.payload, c.cfg.Snooze)
		if err != nil {
			logger.ErrorKV(ctx, "Failed to arm snooze", "error", err)

			return time.Time{}, err
		}

		return at, nil
	case endShutdown:
	}

	return time.Time{}, nil
}
