package mongo

import (
	"context"
	"time"
)

// OpTimeout bounds a single store operation.
const OpTimeout = 5 * time.Second

// WithOpTimeout wraps ctx in a timeout of d unless ctx already ends sooner
// or is already done. The returned cancel is always safe to defer.
func WithOpTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if err := ctx.Err(); err != nil {
		return ctx, func() {}
	}
	if dl, ok := ctx.Deadline(); ok && time.Until(dl) <= d {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, d)
}
