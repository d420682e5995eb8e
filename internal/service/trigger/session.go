package trigger

import (
	"context"
	"errors"
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

// eventQueueSize bounds the callbacks and requests waiting for the session goroutine.
const eventQueueSize = 16

var (
	// ErrSessionEnded is returned for requests to a session that has finished.
	ErrSessionEnded = errors.New("alert session has ended")
	// ErrSpeechUnavailable is returned by ReadAgain when synthesis failed to start.
	ErrSpeechUnavailable = errors.New("speech is unavailable")
	// ErrTooSoon is returned by ReadAgain when requests come faster than allowed.
	ErrTooSoon = errors.New("read again requested too soon")
)

// SessionInfo is a point-in-time view of a session.
type SessionInfo struct {
	SessionID string
	AlarmID   int
	Label     string
	State     State
	Reference string
	Text      string
	StartedAt time.Time
	Degraded  bool
}

type (
	synthReadyEvent struct {
		err error
	}

	utteranceDoneEvent struct {
		id  string
		err error
	}

	readAgainRequest struct {
		reply chan error
	}

	endRequest struct {
		how   ending
		reply chan endResult
	}

	endResult struct {
		at  time.Time
		err error
	}
)

// finishFunc runs on the session goroutine after teardown.
type finishFunc func(ctx context.Context, s *Session, how ending) (time.Time, error)

// Session is one alert from fire to dismissal.
type Session struct {
	id      string
	payload alarm.Payload
	record  alarm.Record

	ctx          context.Context //nolint:containedctx // Session-scoped logger and lifetime.
	orchestrator *playback.Orchestrator
	synth        device.Synthesizer
	presenter    device.Presenter
	resolver     Resolver
	prefs        preferences.Speech
	greeting     string
	readAgain    *rate.Limiter
	finish       finishFunc

	events chan any
	done   chan struct{}

	// Fields below are written only by the session goroutine; mu guards
	// them for Info readers.
	mu           sync.RWMutex
	state        State
	verse        content.Verse
	startedAt    time.Time
	degraded     bool
	synthReady   bool
	pendingSpeak bool
	utterance    string
	utteranceID  string
}

// ID returns the unique session id.
func (s *Session) ID() string {
	return s.id
}

// AlarmID returns the id of the alarm that fired.
func (s *Session) AlarmID() int {
	return s.payload.AlarmID
}

// Done is closed once the session has finished its teardown.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// Info returns a snapshot of the session.
func (s *Session) Info() SessionInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return SessionInfo{
		SessionID: s.id,
		AlarmID:   s.payload.AlarmID,
		Label:     s.record.Label,
		State:     s.state,
		Reference: s.verse.Reference(),
		Text:      s.verse.Text,
		StartedAt: s.startedAt,
		Degraded:  s.degraded,
	}
}

// start launches the session goroutine.
func (s *Session) start() {
	go s.run()
}

// Dismiss ends the alert and waits for every effect to stop. Dismissing a
// session that already ended does nothing.
func (s *Session) Dismiss() error {
	_, err := s.end(endDismiss)
	if errors.Is(err, ErrSessionEnded) {
		return nil
	}

	return err
}

// Snooze ends the alert and arms a one-shot re-fire, returning its instant.
func (s *Session) Snooze() (time.Time, error) {
	return s.end(endSnooze)
}

// ReadAgain replays the utterance without choosing a new verse.
func (s *Session) ReadAgain() error {
	reply := make(chan error, 1)

	if !s.post(readAgainRequest{reply: reply}) {
		return ErrSessionEnded
	}

	select {
	case err := <-reply:
		return err
	case <-s.done:
		select {
		case err := <-reply:
			return err
		default:
			return ErrSessionEnded
		}
	}
}

func (s *Session) shutdown() {
	_, _ = s.end(endShutdown)
}

// end asks the session goroutine to tear down and waits for it to exit.
func (s *Session) end(how ending) (time.Time, error) {
	reply := make(chan endResult, 1)

	if !s.post(endRequest{how: how, reply: reply}) {
		return time.Time{}, ErrSessionEnded
	}

	var res endResult

	select {
	case res = <-reply:
	case <-s.done:
		// The reply is sent before done is closed, so a request that was
		// handled always finds it here.
		select {
		case res = <-reply:
		default:
			return time.Time{}, ErrSessionEnded
		}
	}

	<-s.done

	return res.at, res.err
}

// post queues an event unless the session has exited.
func (s *Session) post(ev any) bool {
	select {
	case <-s.done:
		return false
	default:
	}

	select {
	case s.events <- ev:
		return true
	case <-s.done:
		return false
	}
}

func (s *Session) run() {
	defer close(s.done)

	s.alert()

	for ev := range s.events {
		if s.handle(ev) {
			return
		}
	}
}

// alert enters Alerting and moves straight on to Speaking. The speak
// request stays pending until the synthesizer reports it is ready.
func (s *Session) alert() {
	s.setState(StateAlerting)

	verse := s.resolver.Resolve(s.ctx, s.payload)

	s.mu.Lock()
	s.verse = verse
	s.startedAt = time.Now()
	s.utterance = Utterance(s.greeting, verse)
	s.mu.Unlock()

	logger.InfoKV(s.ctx, "Alarm alerting", "reference", verse.Reference())

	s.orchestrator.Cue(s.ctx)
	s.presenter.Show(s.ctx, device.Alert{
		AlarmID:   s.payload.AlarmID,
		SessionID: s.id,
		Label:     s.record.Label,
		Time:      s.record.TimeString(),
		Reference: verse.Reference(),
		Text:      verse.Text,
	})

	s.mu.Lock()
	s.pendingSpeak = true
	s.mu.Unlock()

	s.setState(StateSpeaking)
	s.orchestrator.Ramp(s.ctx)

	s.synth.Init(s.ctx, func(err error) {
		s.post(synthReadyEvent{err: err})
	})
}

// handle processes one event and reports whether the session finished.
func (s *Session) handle(ev any) bool {
	switch ev := ev.(type) {
	case synthReadyEvent:
		s.onSynthReady(ev.err)
	case utteranceDoneEvent:
		s.onUtteranceDone(ev.id, ev.err)
	case readAgainRequest:
		ev.reply <- s.onReadAgain()
	case endRequest:
		at, err := s.teardown(ev.how)
		ev.reply <- endResult{at: at, err: err}

		return true
	}

	return false
}

func (s *Session) onSynthReady(err error) {
	if err != nil {
		logger.WarnKV(s.ctx, "Speech synthesis unavailable, continuing with vibration only", "error", err)
		s.degrade()

		return
	}

	s.synth.SetRate(s.prefs.Rate)
	s.synth.SetPitch(s.prefs.Pitch)

	if s.prefs.Voice != "" {
		s.synth.SetVoice(s.prefs.Voice)
	}

	s.mu.Lock()
	s.synthReady = true
	pending := s.pendingSpeak
	s.pendingSpeak = false
	s.mu.Unlock()

	if pending {
		s.speak()
	}
}

func (s *Session) onUtteranceDone(id string, err error) {
	s.mu.RLock()
	current := s.utteranceID
	s.mu.RUnlock()

	if id != current {
		return
	}

	if err != nil && !errors.Is(err, device.ErrInterrupted) {
		logger.WarnKV(s.ctx, "Speech failed", "error", err)
	}

	s.setState(StateSustained)
}

func (s *Session) onReadAgain() error {
	s.mu.RLock()
	degraded, ready, pending := s.degraded, s.synthReady, s.pendingSpeak
	s.mu.RUnlock()

	switch {
	case degraded:
		return ErrSpeechUnavailable
	case pending || !ready:
		// The first reading has not started yet; it will.
		return nil
	case !s.readAgain.Allow():
		return ErrTooSoon
	}

	logger.Info(s.ctx, "Reading the verse again")
	s.speak()

	return nil
}

func (s *Session) speak() {
	id := uuid.NewString()

	s.mu.Lock()
	s.utteranceID = id
	text := s.utterance
	s.mu.Unlock()

	err := s.orchestrator.Speak(s.ctx, text, id, func(utteranceID string, err error) {
		s.post(utteranceDoneEvent{id: utteranceID, err: err})
	})
	if err != nil {
		logger.WarnKV(s.ctx, "Failed to start speech, continuing with vibration only", "error", err)
		s.degrade()

		return
	}

	s.setState(StateSpeaking)
}

// degrade keeps the alert going without speech.
func (s *Session) degrade() {
	s.mu.Lock()
	s.degraded = true
	s.pendingSpeak = false
	s.mu.Unlock()

	s.orchestrator.Sustain(s.ctx)
	s.setState(StateSustained)
}

// teardown releases every effect in a fixed order, then lets the
// controller re-arm the alarm.
func (s *Session) teardown(how ending) (time.Time, error) {
	s.orchestrator.Stop(s.ctx)
	s.presenter.Remove(s.ctx, s.payload.AlarmID)

	s.setState(how.finalState())
	logger.InfoKV(s.ctx, "Alarm alert ended", "state", how.finalState().String())

	if s.finish == nil {
		return time.Time{}, nil
	}

	return s.finish(s.ctx, s, how)
}

func (s *Session) setState(state State) {
	s.mu.Lock()
	previous := s.state
	s.state = state
	s.mu.Unlock()

	if previous != state {
		logger.DebugKV(s.ctx, "Alert state changed", "from", previous.String(), "to", state.String())
	}
}
