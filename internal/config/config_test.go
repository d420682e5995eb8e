package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// TestValidate checks required fields and range validations.
func TestValidate(t *testing.T) {
	t.Parallel()

	// Missing address.
	settings := new(Config)
	require.Error(t, Validate(settings))

	// Bad address.
	settings = &Config{ListenAddress: "bad:address"}
	require.Error(t, Validate(settings))

	// Ratio out of range.
	settings = Default()
	settings.Ramp.StartRatio = 1.5
	require.Error(t, Validate(settings))

	// Negative pattern entry.
	settings = Default()
	settings.Haptic.Pattern = []int{0, -1}
	require.Error(t, Validate(settings))

	// Unknown log level.
	settings = Default()
	settings.LogLevel = "chatty"
	require.Error(t, Validate(settings))

	// Zero values are filled in.
	settings = &Config{ListenAddress: "127.0.0.1:0"}
	require.NoError(t, Validate(settings))
	require.Equal(t, DefaultTimeout, settings.Timeout)
	require.Equal(t, DefaultSnooze, settings.Snooze)
	require.Equal(t, DefaultStateFilename, settings.StateFile)
	require.Equal(t, "info", settings.LogLevel)
}

// TestSaveLoadRoundtrip ensures settings are persisted and loaded back correctly.
func TestSaveLoadRoundtrip(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "settings.yaml")

	settings := Default()
	settings.ListenAddress = "127.0.0.1:50099"
	settings.BibleDB = "/var/lib/scripture-alarm/kjv.db"
	settings.Snooze = 10 * time.Minute
	settings.Ramp.StartRatio = 0.5
	settings.Speech.Greeting = "Rise and shine"
	settings.Haptic.Pattern = []int{0, 300}

	require.NoError(t, Save(path, settings))

	loaded, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, settings, loaded)

	info, err := os.Stat(path)
	require.NoError(t, err)
	require.Equal(t, os.FileMode(DefaultFilePermissions), info.Mode().Perm())
}

// TestLoad_PartialFileKeepsDefaults reads human-written YAML with duration strings.
func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "settings.yaml")
	contents := "listen_addr: 127.0.0.1:6000\nsnooze: 9m\nramp:\n  interval: 3s\n"
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o600))

	loaded, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "127.0.0.1:6000", loaded.ListenAddress)
	require.Equal(t, 9*time.Minute, loaded.Snooze)
	require.Equal(t, 3*time.Second, loaded.Ramp.Interval)
	require.InDelta(t, 0.3, loaded.Ramp.StartRatio, 1e-9)
	require.Equal(t, "Master", loaded.Volume.Control)
	require.True(t, loaded.PreciseAlarms)
}

// TestLoad_ExplicitMissingFile fails when a named file does not exist.
func TestLoad_ExplicitMissingFile(t *testing.T) {
	t.Parallel()

	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

// TestLoad_EnvironmentOverride applies SCRIPTURE_ALARM_* variables over the file.
func TestLoad_EnvironmentOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")
	require.NoError(t, Save(path, Default()))

	t.Setenv("SCRIPTURE_ALARM_VOLUME_CONTROL", "PCM")
	t.Setenv("SCRIPTURE_ALARM_PRECISE_ALARMS", "false")

	loaded, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "PCM", loaded.Volume.Control)
	require.False(t, loaded.PreciseAlarms)
}

// TestHapticPatternDurations converts milliseconds.
func TestHapticPatternDurations(t *testing.T) {
	t.Parallel()

	require.Nil(t, Haptic{}.PatternDurations())
	require.Equal(t,
		[]time.Duration{0, 500 * time.Millisecond},
		Haptic{Pattern: []int{0, 500}}.PatternDurations())
}
