package device

import (
	"context"
	"math"
	"os/exec"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/sourcegraph/conc"

	"github.com/covertcloak/scripture-alarm/internal/logger"
)

const (
	// DefaultSpeechCommand is the synthesizer binary used when none is configured.
	DefaultSpeechCommand = "espeak-ng"

	// espeakBaseWordsPerMinute is the engine's normal speaking rate.
	espeakBaseWordsPerMinute = 175
	// espeakBasePitch is the engine's normal pitch on its 0..99 scale.
	espeakBasePitch = 50
	espeakMaxPitch  = 99
)

// Espeak speaks through an espeak-compatible command line synthesizer.
// Each utterance is one process; flushing kills it.
type Espeak struct {
	command string

	mu      sync.Mutex
	path    string
	rate    float64
	pitch   float64
	voice   string
	current *utterance

	wg conc.WaitGroup
}

type utterance struct {
	id          string
	cmd         *exec.Cmd
	interrupted atomic.Bool
}

var _ Synthesizer = (*Espeak)(nil)

// NewEspeak creates a synthesizer that runs command (DefaultSpeechCommand when empty).
func NewEspeak(command string) *Espeak {
	if command == "" {
		command = DefaultSpeechCommand
	}

	return &Espeak{
		command: command,
		rate:    1,
		pitch:   1,
	}
}

// Init looks the command up in the background.
func (e *Espeak) Init(ctx context.Context, ready func(err error)) {
	e.wg.Go(func() {
		path, err := exec.LookPath(e.command)
		if err != nil {
			logger.WarnKV(ctx, "Speech synthesizer not available", "command", e.command, "error", err)
			ready(err)

			return
		}

		e.mu.Lock()
		e.path = path
		e.mu.Unlock()

		ready(nil)
	})
}

// SetRate sets the rate multiplier for later utterances.
func (e *Espeak) SetRate(rate float64) {
	e.mu.Lock()
	e.rate = rate
	e.mu.Unlock()
}

// SetPitch sets the pitch multiplier for later utterances.
func (e *Espeak) SetPitch(pitch float64) {
	e.mu.Lock()
	e.pitch = pitch
	e.mu.Unlock()
}

// SetVoice selects the voice for later utterances.
func (e *Espeak) SetVoice(voice string) {
	e.mu.Lock()
	e.voice = voice
	e.mu.Unlock()
}

// Speak flushes the running utterance and starts a new process for text.
func (e *Espeak) Speak(text, utteranceID string, done UtteranceDone) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.path == "" {
		return ErrNotReady
	}

	e.flushLocked()

	//nolint:gosec // The command comes from the daemon configuration.
	cmd := exec.Command(e.path, e.argsLocked(text)...)
	if err := cmd.Start(); err != nil {
		return err
	}

	u := &utterance{id: utteranceID, cmd: cmd}
	e.current = u

	e.wg.Go(func() {
		err := u.cmd.Wait()
		if u.interrupted.Load() {
			err = ErrInterrupted
		}

		e.mu.Lock()
		if e.current == u {
			e.current = nil
		}
		e.mu.Unlock()

		done(u.id, err)
	})

	return nil
}

// Stop kills the utterance in flight, if any.
func (e *Espeak) Stop() {
	e.mu.Lock()
	e.flushLocked()
	e.mu.Unlock()
}

// Shutdown stops speech and waits for outstanding callbacks.
func (e *Espeak) Shutdown() {
	e.Stop()
	e.wg.Wait()
}

func (e *Espeak) flushLocked() {
	if e.current == nil {
		return
	}

	e.current.interrupted.Store(true)

	if e.current.cmd.Process != nil {
		_ = e.current.cmd.Process.Kill()
	}

	e.current = nil
}

func (e *Espeak) argsLocked(text string) []string {
	wpm := int(math.Round(espeakBaseWordsPerMinute * e.rate))
	pitch := min(max(int(math.Round(espeakBasePitch*e.pitch)), 0), espeakMaxPitch)

	args := []string{
		"-s", strconv.Itoa(max(wpm, 1)),
		"-p", strconv.Itoa(pitch),
	}

	if e.voice != "" {
		args = append(args, "-v", e.voice)
	}

	return append(args, "--", text)
}
