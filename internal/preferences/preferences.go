package preferences

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/covertcloak/scripture-alarm/internal/logger"
	"github.com/covertcloak/scripture-alarm/internal/repository/kv"
)

// Keys of the preference entries.
const (
	KeySpeechRate  = "speech_rate"
	KeySpeechPitch = "speech_pitch"
	KeyVoiceName   = "voice_name"
	KeyUserName    = "user_name"
)

// Defaults applied when a preference was never written or cannot be parsed.
const (
	DefaultSpeechRate  = 0.85
	DefaultSpeechPitch = 1.0
)

// errNotPositive is returned for a non-positive rate or pitch.
var errNotPositive = errors.New("value must be positive")

// Speech holds the synthesis and greeting preferences.
type Speech struct {
	// Rate is the speech rate multiplier (1.0 is normal speed).
	Rate float64
	// Pitch is the pitch multiplier (1.0 is normal pitch).
	Pitch float64
	// Voice names the synthesis voice; empty means the engine default.
	Voice string
	// UserName personalises the greeting; empty means no name.
	UserName string
}

// Defaults returns the preferences used before anything is configured.
func Defaults() Speech {
	return Speech{
		Rate:  DefaultSpeechRate,
		Pitch: DefaultSpeechPitch,
	}
}

// Store reads and writes preferences in a kv.Store.
type Store struct {
	kv kv.Store
}

// New creates a preference store.
func New(store kv.Store) *Store {
	return &Store{kv: store}
}

// Load returns the current preferences. Unreadable values fall back to their
// defaults and are logged, so an alarm never fails because of a bad setting.
func (s *Store) Load(ctx context.Context) Speech {
	prefs := Defaults()

	prefs.Rate = s.float(ctx, KeySpeechRate, DefaultSpeechRate)
	prefs.Pitch = s.float(ctx, KeySpeechPitch, DefaultSpeechPitch)
	prefs.Voice = s.text(ctx, KeyVoiceName)
	prefs.UserName = s.text(ctx, KeyUserName)

	return prefs
}

// SetRate stores the speech rate.
func (s *Store) SetRate(ctx context.Context, rate float64) error {
	return s.setFloat(ctx, KeySpeechRate, rate)
}

// SetPitch stores the speech pitch.
func (s *Store) SetPitch(ctx context.Context, pitch float64) error {
	return s.setFloat(ctx, KeySpeechPitch, pitch)
}

// SetVoice stores the voice name; empty restores the engine default.
func (s *Store) SetVoice(ctx context.Context, voice string) error {
	return s.setText(ctx, KeyVoiceName, voice)
}

// SetUserName stores the name used in the greeting.
func (s *Store) SetUserName(ctx context.Context, name string) error {
	return s.setText(ctx, KeyUserName, name)
}

func (s *Store) float(ctx context.Context, key string, fallback float64) float64 {
	raw, err := s.kv.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, kv.ErrNotFound) {
			logger.WarnKV(ctx, "Failed to read preference", "key", key, "error", err)
		}

		return fallback
	}

	value, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || value <= 0 {
		logger.WarnKV(ctx, "Ignoring invalid preference", "key", key, "value", raw)

		return fallback
	}

	return value
}

func (s *Store) text(ctx context.Context, key string) string {
	raw, err := s.kv.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, kv.ErrNotFound) {
			logger.WarnKV(ctx, "Failed to read preference", "key", key, "error", err)
		}

		return ""
	}

	return strings.TrimSpace(raw)
}

func (s *Store) setFloat(ctx context.Context, key string, value float64) error {
	if value <= 0 {
		return fmt.Errorf("%s: %w", key, errNotPositive)
	}

	return s.setText(ctx, key, strconv.FormatFloat(value, 'f', -1, 64))
}

func (s *Store) setText(ctx context.Context, key, value string) error {
	if err := s.kv.Set(ctx, key, strings.TrimSpace(value)); err != nil {
		return fmt.Errorf("save preference %s: %w", key, err)
	}

	return nil
}
