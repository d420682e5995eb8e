package timer

import (
	"context"

	"github.com/robfig/cron/v3"

	"github.com/covertcloak/scripture-alarm/internal/logger"
)

// cronLogger routes the cron library's logging into zap.
type cronLogger struct {
	ctx context.Context //nolint:containedctx // Carries the named logger.
}

var _ cron.Logger = cronLogger{}

func newCronLogger(ctx context.Context) cronLogger {
	return cronLogger{ctx: ctx}
}

// Info is chatty (every wake and schedule) so it is logged at debug level.
func (l cronLogger) Info(msg string, keysAndValues ...any) {
	logger.DebugKV(l.ctx, msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	logger.ErrorKV(l.ctx, msg, append(keysAndValues, "error", err)...)
}
