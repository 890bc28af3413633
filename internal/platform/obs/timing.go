package obs

import (
	"context"
	"time"

	"go.uber.org/zap"
)

type ctxKey string

const RequestIDKey ctxKey = "req_id"

// Time logs and records the duration of the named operation. Use as
// `defer obs.Time(ctx, "op")(&err)`.
func Time(ctx context.Context, name string) func(errp *error) {
	start := time.Now()

	reqID, _ := ctx.Value(RequestIDKey).(string)

	return func(errp *error) {
		dur := time.Since(start)

		outcome := "ok"
		fields := []zap.Field{
			zap.String("req_id", reqID),
			zap.String("op", name),
			zap.Int64("dur_ms", dur.Milliseconds()),
		}
		if errp != nil && *errp != nil {
			outcome = "error"
			fields = append(fields, zap.Error(*errp))
		}

		OperationDuration.WithLabelValues(name, outcome).Observe(dur.Seconds())
		zap.L().Debug("operation finished", fields...)
	}
}
