package commands

import (
	"context"
	"time"

	logger "github.com/sirupsen/logrus"

	"github.com/rios0rios0/driftwatch/internal/domain/entities"
)

// logEntry returns a logger entry carrying the correlation attached to ctx.
func logEntry(ctx context.Context) *logger.Entry {
	return logger.WithFields(logger.Fields(entities.CorrelationFrom(ctx).Fields()))
}

// callWithTimeout bounds a single remote call. A non-positive timeout leaves
// the parent deadline in charge.
func callWithTimeout[T any](
	ctx context.Context,
	timeout time.Duration,
	call func(context.Context) (T, error),
) (T, error) {
	if timeout <= 0 {
		return call(ctx)
	}
	callCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return call(callCtx)
}
