package repositories

import (
	"context"

	"github.com/rios0rios0/driftwatch/internal/domain/entities"
)

// OutcomeSink receives every outcome record of a scan, exactly once each.
// The engine calls Emit from a single goroutine.
type OutcomeSink interface {
	Emit(ctx context.Context, outcome entities.Outcome) error

	// Close flushes buffered records and releases resources.
	Close() error
}
