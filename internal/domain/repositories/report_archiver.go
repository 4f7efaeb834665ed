package repositories

import (
	"context"

	"github.com/rios0rios0/driftwatch/internal/domain/entities"
)

// ReportArchiver keeps a copy of a scan's report file.
type ReportArchiver interface {
	// Archive uploads the report at path and returns where it was stored.
	Archive(ctx context.Context, scan entities.Scan, path string) (string, error)
}
