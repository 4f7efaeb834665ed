// Package sinks holds the outcome sinks that need no external service.
package sinks

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rios0rios0/driftwatch/internal/domain/entities"
	"github.com/rios0rios0/driftwatch/internal/domain/repositories"
)

// CSVSink writes one row per outcome to a report file, replacing any report
// of a previous run.
type CSVSink struct {
	file   *os.File
	writer *csv.Writer
}

// NewCSVSink creates the report at path and writes its header.
func NewCSVSink(path string) (repositories.OutcomeSink, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, fmt.Errorf("failed to create report directory %q: %w", dir, err)
		}
	}

	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create report %q: %w", path, err)
	}

	writer := csv.NewWriter(file)
	if err = writer.Write(entities.ReportColumns()); err != nil {
		_ = file.Close()
		return nil, fmt.Errorf("failed to write report header: %w", err)
	}
	return &CSVSink{file: file, writer: writer}, nil
}

func (s *CSVSink) Emit(_ context.Context, outcome entities.Outcome) error {
	if err := s.writer.Write(outcome.ReportRow()); err != nil {
		return fmt.Errorf("failed to write report row: %w", err)
	}
	return nil
}

func (s *CSVSink) Close() error {
	s.writer.Flush()
	if err := s.writer.Error(); err != nil {
		_ = s.file.Close()
		return fmt.Errorf("failed to flush report: %w", err)
	}
	return s.file.Close()
}
