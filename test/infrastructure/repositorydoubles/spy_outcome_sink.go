//go:build integration || unit || test

package repositorydoubles //nolint:revive,staticcheck // Test package naming follows established project structure

import (
	"context"

	"github.com/rios0rios0/driftwatch/internal/domain/entities"
	"github.com/rios0rios0/driftwatch/internal/domain/repositories"
)

// SpyOutcomeSink implements repositories.OutcomeSink and records outcomes.
type SpyOutcomeSink struct {
	Outcomes []entities.Outcome

	// EmitErr is returned once FailAfter outcomes were accepted.
	EmitErr   error
	FailAfter int

	// OnEmit runs after an outcome is recorded.
	OnEmit func(entities.Outcome)

	CloseErr   error
	CloseCalls int
}

var _ repositories.OutcomeSink = (*SpyOutcomeSink)(nil)

func (s *SpyOutcomeSink) Emit(_ context.Context, outcome entities.Outcome) error {
	if s.EmitErr != nil && len(s.Outcomes) >= s.FailAfter {
		return s.EmitErr
	}
	s.Outcomes = append(s.Outcomes, outcome)
	if s.OnEmit != nil {
		s.OnEmit(outcome)
	}
	return nil
}

func (s *SpyOutcomeSink) Close() error {
	s.CloseCalls++
	return s.CloseErr
}

// EnvironmentOutcomes returns the recorded environment-level outcomes.
func (s *SpyOutcomeSink) EnvironmentOutcomes() []entities.ResolvedEnvironment {
	var envs []entities.ResolvedEnvironment
	for _, outcome := range s.Outcomes {
		if outcome.Environment != nil {
			envs = append(envs, *outcome.Environment)
		}
	}
	return envs
}

// PipelineOutcomes returns the recorded pipeline-level outcomes.
func (s *SpyOutcomeSink) PipelineOutcomes() []entities.PipelineOutcome {
	var pipelines []entities.PipelineOutcome
	for _, outcome := range s.Outcomes {
		if outcome.IsPipelineLevel() {
			pipelines = append(pipelines, outcome.Pipeline)
		}
	}
	return pipelines
}
