package device

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/covertcloak/scripture-alarm/internal/logger"
)

func observedContext() (context.Context, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)

	return logger.ToContext(context.Background(), zap.New(core).Sugar()), logs
}

// TestLogHaptic_RepeatUntilCancel verifies a repeating pattern pulses until cancelled.
func TestLogHaptic_RepeatUntilCancel(t *testing.T) {
	t.Parallel()

	ctx, logs := observedContext()
	haptic := NewLogHaptic(ctx)

	haptic.Vibrate([]time.Duration{time.Millisecond, time.Millisecond}, true)

	require.Eventually(t, func() bool {
		return logs.FilterMessage("Haptic pulse").Len() >= 3
	}, time.Second, 5*time.Millisecond)

	haptic.Cancel()
	count := logs.FilterMessage("Haptic pulse").Len()

	time.Sleep(20 * time.Millisecond)
	require.Equal(t, count, logs.FilterMessage("Haptic pulse").Len())

	// Cancelling twice is harmless.
	haptic.Cancel()
}

// TestLogHaptic_OneShot verifies a non-repeating pattern plays once.
func TestLogHaptic_OneShot(t *testing.T) {
	t.Parallel()

	ctx, logs := observedContext()
	haptic := NewLogHaptic(ctx)

	haptic.Vibrate([]time.Duration{0, time.Millisecond, time.Millisecond, time.Millisecond}, false)

	require.Eventually(t, func() bool {
		return logs.FilterMessage("Haptic pulse").Len() == 2
	}, time.Second, 5*time.Millisecond)

	haptic.Cancel()
	require.Equal(t, 2, logs.FilterMessage("Haptic pulse").Len())

	// A pattern without duration does nothing.
	haptic.Vibrate([]time.Duration{0, 0}, true)
	haptic.Cancel()
}

// TestLogPresenter verifies alerts are logged.
func TestLogPresenter(t *testing.T) {
	t.Parallel()

	ctx, logs := observedContext()

	LogPresenter{}.Show(ctx, Alert{AlarmID: 3, Reference: "John 3:16"})
	LogPresenter{}.Remove(ctx, 3)

	require.Equal(t, 1, logs.FilterMessage("Alarm alert shown").Len())
	require.Equal(t, 1, logs.FilterMessage("Alarm alert removed").Len())
}
