package sinks

import (
	"context"

	logger "github.com/sirupsen/logrus"

	"github.com/rios0rios0/driftwatch/internal/domain/entities"
	"github.com/rios0rios0/driftwatch/internal/domain/repositories"
)

// LogSink writes every outcome as one structured log line.
type LogSink struct{}

// NewLogSink creates a LogSink.
func NewLogSink() repositories.OutcomeSink {
	return &LogSink{}
}

func (s *LogSink) Emit(_ context.Context, outcome entities.Outcome) error {
	fields := logger.Fields{
		"scan_id":  outcome.Pipeline.ScanID,
		"pipeline": outcome.Pipeline.SourceID,
		"scm":      outcome.Pipeline.SCMIdentifier,
	}

	env := outcome.Environment
	if env == nil {
		fields["status"] = outcome.Pipeline.Status.String()
		logger.WithFields(fields).Debug("Pipeline outcome")
		return nil
	}

	fields["environment"] = env.EnvironmentName
	fields["status"] = env.Status.String()
	if env.DriftSimple != nil {
		fields["drift_simple_days"] = entities.DriftDays(*env.DriftSimple)
	}
	if env.DriftMergeBase != nil {
		fields["drift_merge_base_days"] = entities.DriftDays(*env.DriftMergeBase)
	}
	logger.WithFields(fields).Debug("Environment outcome")
	return nil
}

func (s *LogSink) Close() error { return nil }
