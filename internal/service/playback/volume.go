package playback

import (
	"context"
	"sync"

	"github.com/covertcloak/scripture-alarm/internal/device"
	"github.com/covertcloak/scripture-alarm/internal/logger"
)

// volumeLease saves the system volume when the first alert takes it and
// restores it when the last one lets go, so overlapping alerts never
// restore each other's ramped level.
type volumeLease struct {
	volume device.Volume

	mu    sync.Mutex
	refs  int
	saved int
	ok    bool
}

func (l *volumeLease) acquire(ctx context.Context) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.refs++
	if l.refs > 1 {
		return
	}

	current, err := l.volume.Current(ctx)
	if err != nil {
		logger.WarnKV(ctx, "Failed to read system volume, it will not be restored", "error", err)

		l.ok = false

		return
	}

	l.saved, l.ok = current, true
}

func (l *volumeLease) release(ctx context.Context) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.refs == 0 {
		return
	}

	l.refs--
	if l.refs > 0 || !l.ok {
		return
	}

	if err := l.volume.Set(ctx, l.saved); err != nil {
		logger.ErrorKV(ctx, "Failed to restore system volume", "level", l.saved, "error", err)

		return
	}

	logger.DebugKV(ctx, "System volume restored", "level", l.saved)
}
