//go:build integration || unit || test

package repositorydoubles //nolint:revive,staticcheck // Test package naming follows established project structure

import (
	"context"

	"github.com/rios0rios0/driftwatch/internal/domain/entities"
	"github.com/rios0rios0/driftwatch/internal/domain/repositories"
)

// StubScanStore implements repositories.ScanStore with canned data.
type StubScanStore struct {
	Scan      entities.Scan
	Outcomes  []entities.Outcome
	LatestErr error

	LatestCalls int
	Closed      bool
}

var _ repositories.ScanStore = (*StubScanStore)(nil)

func (s *StubScanStore) LatestScan(_ context.Context) (entities.Scan, []entities.Outcome, error) {
	s.LatestCalls++
	return s.Scan, s.Outcomes, s.LatestErr
}

func (s *StubScanStore) Close() error {
	s.Closed = true
	return nil
}
