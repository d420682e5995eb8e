package device

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// writeScript creates an executable shell script standing in for the synthesizer.
func writeScript(t *testing.T, body string) string {
	t.Helper()

	if runtime.GOOS == "windows" {
		t.Skip("shell scripts are not available on windows")
	}

	path := filepath.Join(t.TempDir(), "fake-espeak")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), 0o700))

	return path
}

func initSynth(t *testing.T, synth *Espeak) error {
	t.Helper()

	ready := make(chan error, 1)
	synth.Init(context.Background(), func(err error) { ready <- err })

	select {
	case err := <-ready:
		return err
	case <-time.After(time.Second):
		t.Fatal("init did not report")

		return nil
	}
}

// TestEspeak_NotReady verifies Speak fails before a successful Init.
func TestEspeak_NotReady(t *testing.T) {
	t.Parallel()

	synth := NewEspeak(filepath.Join(t.TempDir(), "no-such-synth"))
	require.ErrorIs(t, synth.Speak("hello", "u1", func(string, error) {}), ErrNotReady)

	require.Error(t, initSynth(t, synth))
	require.ErrorIs(t, synth.Speak("hello", "u1", func(string, error) {}), ErrNotReady)

	synth.Shutdown()
}

// TestEspeak_SpeakCompletes verifies completion is reported with the utterance id.
func TestEspeak_SpeakCompletes(t *testing.T) {
	t.Parallel()

	synth := NewEspeak(writeScript(t, "exit 0"))
	require.NoError(t, initSynth(t, synth))

	done := make(chan string, 1)
	require.NoError(t, synth.Speak("hello", "u1", func(id string, err error) {
		if err == nil {
			done <- id
		}
	}))

	select {
	case id := <-done:
		require.Equal(t, "u1", id)
	case <-time.After(2 * time.Second):
		t.Fatal("utterance did not complete")
	}

	synth.Shutdown()
}

// TestEspeak_SecondSpeakFlushes verifies a new utterance interrupts the running one.
func TestEspeak_SecondSpeakFlushes(t *testing.T) {
	t.Parallel()

	synth := NewEspeak(writeScript(t, "sleep 10"))
	require.NoError(t, initSynth(t, synth))

	results := make(chan error, 2)
	callback := func(_ string, err error) { results <- err }

	require.NoError(t, synth.Speak("first", "u1", callback))
	require.NoError(t, synth.Speak("second", "u2", callback))

	select {
	case err := <-results:
		require.ErrorIs(t, err, ErrInterrupted)
	case <-time.After(2 * time.Second):
		t.Fatal("first utterance was not flushed")
	}

	synth.Shutdown()

	require.ErrorIs(t, <-results, ErrInterrupted)
}

// TestEspeak_Args verifies rate, pitch and voice mapping.
func TestEspeak_Args(t *testing.T) {
	t.Parallel()

	synth := NewEspeak("")
	synth.SetRate(0.85)
	synth.SetPitch(3)
	synth.SetVoice("en-us")

	require.Equal(t,
		[]string{"-s", "149", "-p", "99", "-v", "en-us", "--", "Psalm 23:1."},
		synth.argsLocked("Psalm 23:1."))
}
