//go:build unit

package postgres_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rios0rios0/driftwatch/internal/domain/entities"
	"github.com/rios0rios0/driftwatch/internal/infrastructure/repositories/postgres"
)

func TestNewOutcomeRecord(t *testing.T) {
	t.Parallel()

	scan := entities.Scan{ID: "scan-1", StartedAt: time.Date(2024, time.March, 1, 9, 0, 0, 0, time.UTC)}

	t.Run("should leave environment columns null for a rejected pipeline", func(t *testing.T) {
		t.Parallel()

		// given
		outcome := entities.Outcome{
			Pipeline: entities.NewPipelineOutcome(scan, "broken.yaml", scan.StartedAt).
				Reject(entities.PipelineUnauthorizedOwner, entities.FailurePermanent, "owner not allowed"),
		}

		// when
		record, err := postgres.NewOutcomeRecord(outcome)

		// then
		require.NoError(t, err)
		assert.Equal(t, "broken.yaml", record.SourceID)
		assert.Equal(t, "UnauthorizedOwner", record.PipelineStatus)
		assert.False(t, record.Environment.Valid)
		assert.False(t, record.Status.Valid)
		assert.Equal(t, "permanent", record.FailureKind.String)
		assert.False(t, record.DriftSimpleSeconds.Valid)
	})

	t.Run("should fill typed columns and round-trip the payload", func(t *testing.T) {
		t.Parallel()

		// given
		pipeline := entities.NewPipelineOutcome(scan, "great-cms.yaml", scan.StartedAt).
			WithSCMIdentifier("uktrade/great-cms").
			Accept(entities.RepoState{SCMIdentifier: "uktrade/great-cms", PrimaryBranchName: "main"})
		env := entities.NewResolvedEnvironment(entities.EnvironmentDeclaration{
			EnvironmentName: "staging", AppType: "gds", TargetPath: "org/space/app",
		}).
			WithSimpleDrift(-2*time.Hour).
			WithMergeBaseDrift(scan.StartedAt, -3*time.Hour).
			Resolve()
		outcome := entities.Outcome{Pipeline: pipeline, Environment: &env}

		// when
		record, err := postgres.NewOutcomeRecord(outcome)
		require.NoError(t, err)
		decoded, decodeErr := postgres.DecodeOutcome(record.Payload)

		// then
		require.NoError(t, decodeErr)
		assert.Equal(t, "staging", record.Environment.String)
		assert.Equal(t, "Resolved", record.Status.String)
		assert.False(t, record.FailureKind.Valid)
		assert.InDelta(t, -7200, record.DriftSimpleSeconds.Float64, 0.001)
		assert.InDelta(t, -10800, record.DriftMergeBaseSeconds.Float64, 0.001)
		assert.Equal(t, outcome.Pipeline.SCMIdentifier, decoded.Pipeline.SCMIdentifier)
		require.NotNil(t, decoded.Environment)
		assert.Equal(t, *env.DriftMergeBase, *decoded.Environment.DriftMergeBase)
	})

	t.Run("should reject a payload that is not an outcome", func(t *testing.T) {
		t.Parallel()

		// when
		_, err := postgres.DecodeOutcome([]byte("[1,2]"))

		// then
		require.Error(t, err)
	})
}
