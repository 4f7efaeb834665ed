//go:build unit

package commands_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rios0rios0/driftwatch/internal/domain/commands"
	"github.com/rios0rios0/driftwatch/internal/domain/entities"
)

func TestSelectPrimaryBranch(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name          string
		defaultBranch string
		branches      []string
		want          string
	}{
		{name: "master over the default", defaultBranch: "develop", branches: []string{"develop", "master"}, want: "master"},
		{name: "main over master", defaultBranch: "develop", branches: []string{"develop", "master", "main"}, want: "main"},
		{name: "the default when neither exists", defaultBranch: "develop", branches: []string{"develop"}, want: "develop"},
		{name: "main when it is the default", defaultBranch: "main", branches: []string{"main", "master"}, want: "main"},
		{name: "the default for an empty list", defaultBranch: "trunk", branches: nil, want: "trunk"},
	}
	for _, tt := range tests {
		t.Run("should pick "+tt.name, func(t *testing.T) {
			t.Parallel()

			// when
			got := commands.SelectPrimaryBranch(entities.RepoState{DefaultBranchName: tt.defaultBranch, BranchNames: tt.branches})

			// then
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRepoStateResolver(t *testing.T) {
	t.Parallel()

	t.Run("should build the state of the primary branch head", func(t *testing.T) {
		t.Parallel()

		// given
		gateway := newRepoGateway()
		resolver := commands.NewRepoStateResolver(gateway, time.Second)

		// when
		state, err := resolver.Resolve(context.Background(), "uktrade/great-cms")

		// then
		require.NoError(t, err)
		assert.Equal(t, "uktrade/great-cms", state.SCMIdentifier)
		assert.Equal(t, "great-cms", state.Name)
		assert.Equal(t, "42", state.ID)
		assert.Equal(t, "develop", state.DefaultBranchName)
		assert.Equal(t, "main", state.PrimaryBranchName)
		assert.True(t, state.HasBranch(state.PrimaryBranchName))
		assert.Equal(t, headSHA, state.HeadCommitSHA)
		assert.Equal(t, headDate, state.HeadCommitDate)
		assert.Equal(t, 120, state.HeadCommitCount)
		require.NotNil(t, state.HeadCommitAuthor)
		assert.Equal(t, "bob", *state.HeadCommitAuthor)
		assert.Contains(t, gateway.Calls, "GetBranch:main")
		assert.Contains(t, gateway.Calls, "GetCommitCount:"+headSHA)
	})

	t.Run("should leave the author empty when the commit has no linked account", func(t *testing.T) {
		t.Parallel()

		// given
		gateway := newRepoGateway()
		gateway.Commits[headSHA] = entities.Commit{SHA: headSHA, Date: headDate}

		// when
		state, err := commands.NewRepoStateResolver(gateway, 0).Resolve(context.Background(), "uktrade/great-cms")

		// then
		require.NoError(t, err)
		assert.Nil(t, state.HeadCommitAuthor)
		assert.Nil(t, state.HeadCommitCommitter)
	})

	t.Run("should report the failing step without a partial state", func(t *testing.T) {
		t.Parallel()

		// given
		gateway := newRepoGateway()
		gateway.BranchesErr = entities.NewTransientError(errors.New("502 bad gateway"))

		// when
		state, err := commands.NewRepoStateResolver(gateway, time.Second).Resolve(context.Background(), "uktrade/great-cms")

		// then
		var unavailable *entities.RepoStateUnavailableError
		require.ErrorAs(t, err, &unavailable)
		assert.Equal(t, "list branches", unavailable.Step)
		assert.Equal(t, entities.FailureTransient, entities.ClassifyFailure(err))
		assert.Equal(t, entities.RepoState{}, state)
	})

	t.Run("should fail when the head commit cannot be read", func(t *testing.T) {
		t.Parallel()

		// given
		gateway := newRepoGateway()
		gateway.CommitErr[headSHA] = entities.ErrNotFound

		// when
		_, err := commands.NewRepoStateResolver(gateway, time.Second).Resolve(context.Background(), "uktrade/great-cms")

		// then
		var unavailable *entities.RepoStateUnavailableError
		require.ErrorAs(t, err, &unavailable)
		assert.Equal(t, "get head commit", unavailable.Step)
		require.ErrorIs(t, err, entities.ErrNotFound)
	})

	t.Run("should fail when the default branch is not among the listed branches", func(t *testing.T) {
		t.Parallel()

		// given
		gateway := newRepoGateway()
		gateway.Branches = []string{"feature-a", "feature-b"}

		// when
		_, err := commands.NewRepoStateResolver(gateway, time.Second).Resolve(context.Background(), "uktrade/great-cms")

		// then
		var unavailable *entities.RepoStateUnavailableError
		require.ErrorAs(t, err, &unavailable)
		assert.Equal(t, "select primary branch", unavailable.Step)
		assert.NotContains(t, gateway.Calls, "GetBranch:develop")
	})
}
