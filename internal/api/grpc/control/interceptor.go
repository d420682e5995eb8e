package control

import (
	"context"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/status"

	"github.com/covertcloak/scripture-alarm/internal/logger"
)

// LoggingInterceptor attaches base to every request context and logs the
// outcome of each call.
func LoggingInterceptor(base context.Context) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		ctx = logger.ToContext(ctx, logger.FromContext(base))
		ctx = logger.WithKV(ctx, "method", info.FullMethod)

		started := time.Now()
		resp, err := handler(ctx, req)

		logger.DebugKV(ctx, "Control call handled",
			"code", status.Code(err).String(),
			"duration", time.Since(started))

		return resp, err
	}
}
