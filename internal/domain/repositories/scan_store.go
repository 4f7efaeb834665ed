package repositories

import (
	"context"

	"github.com/rios0rios0/driftwatch/internal/domain/entities"
)

// ScanStore reads back persisted scans.
type ScanStore interface {
	// LatestScan returns the outcomes of the most recent scan.
	// It returns entities.ErrNotFound when nothing was stored yet.
	LatestScan(ctx context.Context) (entities.Scan, []entities.Outcome, error)

	Close() error
}
