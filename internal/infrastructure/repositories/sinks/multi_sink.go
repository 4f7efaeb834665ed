package sinks

import (
	"context"
	"errors"

	"github.com/rios0rios0/driftwatch/internal/domain/entities"
	"github.com/rios0rios0/driftwatch/internal/domain/repositories"
)

// MultiSink fans every outcome out to several sinks, in order.
type MultiSink struct {
	sinks []repositories.OutcomeSink
}

// NewMultiSink creates a MultiSink over sinks.
func NewMultiSink(sinks ...repositories.OutcomeSink) *MultiSink {
	return &MultiSink{sinks: sinks}
}

// Emit stops at the first failing sink.
func (s *MultiSink) Emit(ctx context.Context, outcome entities.Outcome) error {
	for _, sink := range s.sinks {
		if err := sink.Emit(ctx, outcome); err != nil {
			return err
		}
	}
	return nil
}

// Close closes every sink, even after a failure, and joins the errors.
func (s *MultiSink) Close() error {
	var errs []error
	for _, sink := range s.sinks {
		if err := sink.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
