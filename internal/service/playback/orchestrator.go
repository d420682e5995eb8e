package playback

import (
	"context"
	"math"
	"sync"
	"time"

	"github.com/sourcegraph/conc"

	"github.com/covertcloak/scripture-alarm/internal/device"
	"github.com/covertcloak/scripture-alarm/internal/logger"
)

const (
	// DefaultRampInterval is the delay between volume steps.
	DefaultRampInterval = 2 * time.Second
	// DefaultRampStartRatio is the share of maximum volume the ramp starts at.
	DefaultRampStartRatio = 0.3
)

// Config tunes the alert effects.
type Config struct {
	// RampInterval is the delay between one-unit volume increases.
	RampInterval time.Duration
	// RampStartRatio is the starting volume as a share of the maximum.
	RampStartRatio float64
	// Pattern is the vibration pattern (off, on, off, on, ...).
	Pattern []time.Duration
}

func (c Config) withDefaults() Config {
	if c.RampInterval <= 0 {
		c.RampInterval = DefaultRampInterval
	}

	if c.RampStartRatio <= 0 || c.RampStartRatio > 1 {
		c.RampStartRatio = DefaultRampStartRatio
	}

	if len(c.Pattern) == 0 {
		c.Pattern = device.DefaultPattern
	}

	return c
}

// Player holds the devices shared by every alert.
type Player struct {
	haptics *hapticArbiter
	synth   device.Synthesizer
	volume  *volumeLease
	cfg     Config

	// speechMu guards speaker, the orchestrator whose utterance the
	// engine is playing.
	speechMu sync.Mutex
	speaker  *Orchestrator
}

// NewPlayer creates a player over the host devices.
func NewPlayer(haptic device.Haptic, volume device.Volume, synth device.Synthesizer, cfg Config) *Player {
	cfg = cfg.withDefaults()

	return &Player{
		haptics: &hapticArbiter{haptic: haptic, pattern: cfg.Pattern},
		synth:   synth,
		volume:  &volumeLease{volume: volume},
		cfg:     cfg,
	}
}

// Synthesizer returns the shared speech engine.
func (p *Player) Synthesizer() device.Synthesizer {
	return p.synth
}

// NewOrchestrator creates the effect owner for one alert.
func (p *Player) NewOrchestrator() *Orchestrator {
	return &Orchestrator{player: p}
}

// Orchestrator owns the haptic pattern, the volume ramp and the speech of
// one alert. It only ever cancels effects it started itself.
type Orchestrator struct {
	player *Player

	mu       sync.Mutex
	rampStop chan struct{}
	leased   bool
	wg       conc.WaitGroup
}

// Cue plays the short vibration pattern once.
func (o *Orchestrator) Cue(ctx context.Context) {
	logger.Debug(ctx, "Starting haptic cue")
	o.player.haptics.play(o, false)
}

// Sustain loops the vibration pattern; used when speech is unavailable.
func (o *Orchestrator) Sustain(ctx context.Context) {
	logger.Debug(ctx, "Starting sustained haptic")
	o.player.haptics.play(o, true)
}

// Ramp starts the volume ramp unless it is already running.
func (o *Orchestrator) Ramp(ctx context.Context) {
	o.startRamp(ctx)
}

// Speak cancels this alert's vibration, starts the volume ramp if it is not
// running yet and speaks text, flushing any earlier utterance.
func (o *Orchestrator) Speak(ctx context.Context, text, utteranceID string, done device.UtteranceDone) error {
	o.player.haptics.release(o)
	o.startRamp(ctx)

	p := o.player

	p.speechMu.Lock()
	defer p.speechMu.Unlock()

	if err := p.synth.Speak(text, utteranceID, done); err != nil {
		return err
	}

	p.speaker = o

	return nil
}

// Stop releases every effect and restores the system volume. It is safe to
// call repeatedly and from any state; when it returns no effect is running.
func (o *Orchestrator) Stop(ctx context.Context) {
	o.player.haptics.release(o)

	o.mu.Lock()
	defer o.mu.Unlock()

	if o.rampStop != nil {
		close(o.rampStop)
		o.rampStop = nil
	}

	o.wg.Wait()

	o.stopSpeech()

	if o.leased {
		o.leased = false
		o.player.volume.release(ctx)
	}
}

// stopSpeech flushes the engine only while it is playing this alert.
func (o *Orchestrator) stopSpeech() {
	p := o.player

	p.speechMu.Lock()
	defer p.speechMu.Unlock()

	if p.speaker != o {
		return
	}

	p.synth.Stop()
	p.speaker = nil
}

// startRamp sets the starting volume and steps it up to the maximum.
func (o *Orchestrator) startRamp(ctx context.Context) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.rampStop != nil {
		return
	}

	if !o.leased {
		o.player.volume.acquire(ctx)
		o.leased = true
	}

	volume := o.player.volume.volume

	maxLevel, err := volume.Max(ctx)
	if err != nil {
		logger.WarnKV(ctx, "Failed to read maximum volume, skipping ramp", "error", err)

		return
	}

	level := StartLevel(maxLevel, o.player.cfg.RampStartRatio)
	if err = volume.Set(ctx, level); err != nil {
		logger.WarnKV(ctx, "Failed to set starting volume", "level", level, "error", err)
	}

	stop := make(chan struct{})
	o.rampStop = stop
	interval := o.player.cfg.RampInterval

	o.wg.Go(func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for level < maxLevel {
			select {
			case <-stop:
				return
			case <-ticker.C:
			}

			level++
			if err := volume.Set(ctx, level); err != nil {
				logger.WarnKV(ctx, "Failed to raise volume", "level", level, "error", err)
			}
		}

		logger.DebugKV(ctx, "Volume ramp reached maximum", "level", level)
	})
}

// StartLevel is the first ramp step: ratio of the maximum, at least one unit.
func StartLevel(maxLevel int, ratio float64) int {
	if maxLevel <= 0 {
		return 0
	}

	return min(max(int(math.Round(float64(maxLevel)*ratio)), 1), maxLevel)
}
