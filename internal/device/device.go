package device

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNotReady is returned by Speak before Init has reported success.
	ErrNotReady = errors.New("synthesizer not ready")
	// ErrInterrupted is reported for an utterance flushed by Stop or a newer Speak.
	ErrInterrupted = errors.New("utterance interrupted")
)

// DefaultPattern is the vibration cue: wait, buzz, pause, buzz.
//
//nolint:gochecknoglobals // Read-only default pattern.
var DefaultPattern = []time.Duration{
	0,
	500 * time.Millisecond,
	200 * time.Millisecond,
	500 * time.Millisecond,
}

// Haptic drives the vibration motor.
type Haptic interface {
	// Vibrate plays pattern (alternating off and on durations, starting with
	// off). With repeat the pattern loops until Cancel. A new call replaces
	// the running pattern.
	Vibrate(pattern []time.Duration, repeat bool)
	// Cancel stops any running pattern. It is safe to call at any time.
	Cancel()
}

// Volume controls the alarm audio stream in discrete units from 0 to Max.
type Volume interface {
	Current(ctx context.Context) (int, error)
	Max(ctx context.Context) (int, error)
	Set(ctx context.Context, level int) error
}

// UtteranceDone is called once per utterance when it finishes.
// err is nil on normal completion and ErrInterrupted when flushed.
type UtteranceDone func(utteranceID string, err error)

// Synthesizer is an asynchronous text-to-speech engine.
type Synthesizer interface {
	// Init prepares the engine in the background and calls ready exactly once.
	Init(ctx context.Context, ready func(err error))
	SetRate(rate float64)
	SetPitch(pitch float64)
	SetVoice(voice string)
	// Speak flushes any utterance in flight and starts text. done is called
	// once for this utterance unless Speak itself returns an error.
	Speak(text, utteranceID string, done UtteranceDone) error
	// Stop flushes the utterance in flight.
	Stop()
	// Shutdown stops the engine and waits for its callbacks to finish.
	Shutdown()
}

// Alert is what the user sees while an alarm is active.
type Alert struct {
	AlarmID   int
	SessionID string
	Label     string
	Time      string
	Reference string
	Text      string
}

// Presenter shows and removes the alert.
type Presenter interface {
	Show(ctx context.Context, alert Alert)
	Remove(ctx context.Context, alarmID int)
}
