//go:build unit

package entities_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/rios0rios0/driftwatch/internal/domain/entities"
)

func TestOutcome(t *testing.T) {
	t.Parallel()

	scan := entities.Scan{ID: "scan-1", StartedAt: time.Date(2024, time.March, 1, 9, 0, 0, 0, time.UTC)}

	t.Run("should be pipeline level when no environment is attached", func(t *testing.T) {
		t.Parallel()

		// given
		rejected := entities.NewPipelineOutcome(scan, "broken.yaml", scan.StartedAt).
			Reject(entities.PipelineMalformedConfig, entities.FailurePermanent, "missing scm")

		// when
		outcome := entities.Outcome{Pipeline: rejected}

		// then
		assert.True(t, outcome.IsPipelineLevel())
	})

	t.Run("should be environment level when an environment is attached", func(t *testing.T) {
		t.Parallel()

		// given
		env := entities.NewResolvedEnvironment(entities.EnvironmentDeclaration{EnvironmentName: "dev"}).Resolve()

		// when
		outcome := entities.Outcome{Pipeline: entities.NewPipelineOutcome(scan, "ok.yaml", scan.StartedAt), Environment: &env}

		// then
		assert.False(t, outcome.IsPipelineLevel())
	})
}

func TestRepoStateHasBranch(t *testing.T) {
	t.Parallel()

	state := entities.RepoState{BranchNames: []string{"develop", "main"}}

	t.Run("should find a listed branch", func(t *testing.T) {
		t.Parallel()

		// when
		found := state.HasBranch("main")

		// then
		assert.True(t, found)
	})

	t.Run("should compare branch names exactly", func(t *testing.T) {
		t.Parallel()

		// when
		found := state.HasBranch("Main")

		// then
		assert.False(t, found)
	})
}

func TestEnvironmentStatuses(t *testing.T) {
	t.Parallel()

	t.Run("should list every terminal status in stage order", func(t *testing.T) {
		t.Parallel()

		// when
		statuses := entities.EnvironmentStatuses()

		// then
		assert.Equal(t, []entities.EnvironmentStatus{
			entities.EnvironmentResolved,
			entities.EnvironmentSkippedWrongType,
			entities.EnvironmentInvalidPath,
			entities.EnvironmentAppNotFound,
			entities.EnvironmentMissingGitMetadata,
			entities.EnvironmentCommitUnreadable,
		}, statuses)
	})
}
