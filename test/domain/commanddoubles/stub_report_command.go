//go:build integration || unit || test

package commanddoubles //nolint:revive,staticcheck // Test package naming follows established project structure

import (
	"context"
	"io"

	"github.com/rios0rios0/driftwatch/internal/domain/commands"
	"github.com/rios0rios0/driftwatch/internal/domain/entities"
)

// StubReportCommand is a stub implementation of commands.Report.
type StubReportCommand struct {
	ExecuteCallCount int
	ExecuteErr       error
	LastSettings     *entities.Settings
	LastOpts         commands.ReportOptions
}

var _ commands.Report = (*StubReportCommand)(nil)

func (s *StubReportCommand) Execute(
	_ context.Context,
	settings *entities.Settings,
	opts commands.ReportOptions,
	_ io.Writer,
) error {
	s.ExecuteCallCount++
	s.LastSettings = settings
	s.LastOpts = opts
	return s.ExecuteErr
}
