//go:build integration || unit || test

package repositorydoubles //nolint:revive,staticcheck // Test package naming follows established project structure

import (
	"context"

	"github.com/rios0rios0/driftwatch/internal/domain/entities"
	"github.com/rios0rios0/driftwatch/internal/domain/repositories"
)

// StubReportArchiver implements repositories.ReportArchiver and records the
// archived paths.
type StubReportArchiver struct {
	Location string
	Err      error

	ArchivedPaths []string
}

var _ repositories.ReportArchiver = (*StubReportArchiver)(nil)

func (s *StubReportArchiver) Archive(_ context.Context, _ entities.Scan, path string) (string, error) {
	s.ArchivedPaths = append(s.ArchivedPaths, path)
	return s.Location, s.Err
}
