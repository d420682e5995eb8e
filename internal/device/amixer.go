package device

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os/exec"
	"regexp"
	"strconv"
)

const (
	// DefaultVolumeControl is the mixer control used when none is configured.
	DefaultVolumeControl = "Master"
	// DefaultVolumeSteps is the number of discrete volume units.
	DefaultVolumeSteps = 15
)

// errNoVolumeReading is returned when amixer output has no percentage.
var errNoVolumeReading = errors.New("no volume percentage in amixer output")

//nolint:gochecknoglobals // Compiled once.
var amixerPercent = regexp.MustCompile(`\[(\d{1,3})%\]`)

// CommandRunner executes a command and returns its combined output.
type CommandRunner func(ctx context.Context, name string, args ...string) ([]byte, error)

// ExecRunner runs commands with os/exec.
func ExecRunner(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).CombinedOutput()
}

// Amixer controls an ALSA mixer control, exposed as Steps discrete units.
type Amixer struct {
	control string
	steps   int
	run     CommandRunner
}

var _ Volume = (*Amixer)(nil)

// NewAmixer creates a volume controller. Zero values select the defaults.
func NewAmixer(control string, steps int, run CommandRunner) *Amixer {
	if control == "" {
		control = DefaultVolumeControl
	}

	if steps <= 0 {
		steps = DefaultVolumeSteps
	}

	if run == nil {
		run = ExecRunner
	}

	return &Amixer{
		control: control,
		steps:   steps,
		run:     run,
	}
}

// Current reads the mixer and converts the percentage into units.
func (a *Amixer) Current(ctx context.Context) (int, error) {
	out, err := a.run(ctx, "amixer", "-M", "get", a.control)
	if err != nil {
		return 0, fmt.Errorf("read volume of %s: %w", a.control, err)
	}

	match := amixerPercent.FindSubmatch(out)
	if match == nil {
		return 0, errNoVolumeReading
	}

	percent, err := strconv.Atoi(string(match[1]))
	if err != nil {
		return 0, fmt.Errorf("parse volume: %w", err)
	}

	return int(math.Round(float64(percent) * float64(a.steps) / 100)), nil
}

// Max returns the number of units.
func (a *Amixer) Max(context.Context) (int, error) {
	return a.steps, nil
}

// Set writes a level in units, clamped to 0..Max.
func (a *Amixer) Set(ctx context.Context, level int) error {
	level = min(max(level, 0), a.steps)
	percent := level * 100 / a.steps

	if _, err := a.run(ctx, "amixer", "-M", "-q", "set", a.control, strconv.Itoa(percent)+"%"); err != nil {
		return fmt.Errorf("set volume of %s: %w", a.control, err)
	}

	return nil
}
