package obs

import (
	"context"
	"time"

	"fleet-dispatch-engine/internal/platform/logging"
)

type ctxKey string

// RequestIDKey tags a context with a per-request correlation id, set by the
// API logging middleware and read back here for operation timing lines.
const RequestIDKey ctxKey = "req_id"

// Time starts a deferred timer for an operation named name, logging its
// duration (and error, if any) through log once the returned func runs.
// Callers use it as: defer obs.Time(ctx, log, "op")(&err)
func Time(ctx context.Context, log logging.Logger, name string) func(errp *error) {
	start := time.Now()
	reqID, _ := ctx.Value(RequestIDKey).(string)

	return func(errp *error) {
		dur := time.Since(start)
		fields := map[string]any{
			"req_id": reqID,
			"op":     name,
			"dur_ms": dur.Milliseconds(),
		}
		if errp != nil && *errp != nil {
			fields["err"] = (*errp).Error()
			log.Debugw("op failed", fields)
			return
		}
		log.Debugw("op completed", fields)
	}
}
