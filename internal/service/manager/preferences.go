package manager

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Preference names accepted by SetPreference.
const (
	PreferenceRate     = "rate"
	PreferencePitch    = "pitch"
	PreferenceVoice    = "voice"
	PreferenceUserName = "name"
)

// errUnknownPreference is returned for a name outside the supported set.
var errUnknownPreference = errors.New("unknown preference")

// ShowPreferences prints the speech preferences used by the next alert.
func (m *Manager) ShowPreferences(ctx context.Context) {
	speech := m.prefs.Load(ctx)

	voice := speech.Voice
	if voice == "" {
		voice = "(engine default)"
	}

	name := speech.UserName
	if name == "" {
		name = "(not set)"
	}

	_, _ = fmt.Fprintf(m.out, "%-6s %.2f\n", PreferenceRate, speech.Rate)
	_, _ = fmt.Fprintf(m.out, "%-6s %.2f\n", PreferencePitch, speech.Pitch)
	_, _ = fmt.Fprintf(m.out, "%-6s %s\n", PreferenceVoice, voice)
	_, _ = fmt.Fprintf(m.out, "%-6s %s\n", PreferenceUserName, name)
}

// SetPreference stores one speech preference.
func (m *Manager) SetPreference(ctx context.Context, name, value string) error {
	var err error

	switch strings.ToLower(strings.TrimSpace(name)) {
	case PreferenceRate:
		var rate float64
		if rate, err = parseFloat(value); err == nil {
			err = m.prefs.SetRate(ctx, rate)
		}
	case PreferencePitch:
		var pitch float64
		if pitch, err = parseFloat(value); err == nil {
			err = m.prefs.SetPitch(ctx, pitch)
		}
	case PreferenceVoice:
		err = m.prefs.SetVoice(ctx, strings.TrimSpace(value))
	case PreferenceUserName:
		err = m.prefs.SetUserName(ctx, strings.TrimSpace(value))
	default:
		return fmt.Errorf("%w: %q", errUnknownPreference, name)
	}

	if err != nil {
		return fmt.Errorf("set %s: %w", name, err)
	}

	_, _ = fmt.Fprintf(m.out, "Set %s\n", strings.ToLower(strings.TrimSpace(name)))

	return nil
}

func parseFloat(value string) (float64, error) {
	return strconv.ParseFloat(strings.TrimSpace(value), 64)
}
