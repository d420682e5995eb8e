package device

import (
	"context"
	"sync"
	"time"

	"github.com/sourcegraph/conc"

	"github.com/covertcloak/scripture-alarm/internal/logger"
)

// LogHaptic stands in for a vibration motor on hosts without one.
// Pulses are timed like the real pattern and written to the debug log.
type LogHaptic struct {
	ctx context.Context //nolint:containedctx // Carries the logger for pulses.

	// mu serialises Vibrate and Cancel so the wait group is never
	// grown while it is being waited on.
	mu   sync.Mutex
	stop chan struct{}
	wg   conc.WaitGroup
}

var _ Haptic = (*LogHaptic)(nil)

// NewLogHaptic creates a haptic that logs through the logger in ctx.
func NewLogHaptic(ctx context.Context) *LogHaptic {
	return &LogHaptic{ctx: logger.WithName(ctx, "haptic")}
}

// Vibrate replaces any running pattern.
func (h *LogHaptic) Vibrate(pattern []time.Duration, repeat bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.cancelLocked()

	var total time.Duration
	for _, d := range pattern {
		total += d
	}

	if total <= 0 {
		return
	}

	stop := make(chan struct{})
	h.stop = stop

	h.wg.Go(func() {
		for {
			for i, d := range pattern {
				if i%2 == 1 {
					logger.DebugKV(h.ctx, "Haptic pulse", "duration", d)
				}

				select {
				case <-stop:
					return
				case <-time.After(d):
				}
			}

			if !repeat {
				return
			}
		}
	})
}

// Cancel stops the running pattern and waits for it to exit.
func (h *LogHaptic) Cancel() {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.cancelLocked()
}

func (h *LogHaptic) cancelLocked() {
	if h.stop != nil {
		close(h.stop)
		h.stop = nil
	}

	h.wg.Wait()
}

// LogPresenter records alert visibility in the log.
type LogPresenter struct{}

var _ Presenter = LogPresenter{}

// Show logs the alert contents.
func (LogPresenter) Show(ctx context.Context, alert Alert) {
	logger.InfoKV(ctx, "Alarm alert shown",
		"alarm_id", alert.AlarmID,
		"label", alert.Label,
		"time", alert.Time,
		"reference", alert.Reference,
		"text", alert.Text)
}

// Remove logs the alert removal.
func (LogPresenter) Remove(ctx context.Context, alarmID int) {
	logger.InfoKV(ctx, "Alarm alert removed", "alarm_id", alarmID)
}
