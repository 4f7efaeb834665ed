package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/rios0rios0/driftwatch/internal/domain/entities"
	"github.com/rios0rios0/driftwatch/internal/domain/repositories"
)

// RepoStateResolver builds the canonical branch state of a repository.
type RepoStateResolver struct {
	gateway     repositories.RepoGateway
	callTimeout time.Duration
}

// NewRepoStateResolver creates a RepoStateResolver bounding every gateway
// call by callTimeout.
func NewRepoStateResolver(gateway repositories.RepoGateway, callTimeout time.Duration) *RepoStateResolver {
	return &RepoStateResolver{gateway: gateway, callTimeout: callTimeout}
}

// Resolve returns the RepoState of scmIdentifier. Any failed remote call
// yields a *entities.RepoStateUnavailableError and no state.
func (it *RepoStateResolver) Resolve(ctx context.Context, scmIdentifier string) (entities.RepoState, error) {
	unavailable := func(step string, err error) (entities.RepoState, error) {
		return entities.RepoState{}, &entities.RepoStateUnavailableError{
			SCMIdentifier: scmIdentifier,
			Step:          step,
			Err:           err,
		}
	}

	repo, err := callWithTimeout(ctx, it.callTimeout, func(callCtx context.Context) (entities.RepositoryMetadata, error) {
		return it.gateway.GetRepository(callCtx, scmIdentifier)
	})
	if err != nil {
		return unavailable("get repository", err)
	}

	branches, err := callWithTimeout(ctx, it.callTimeout, func(callCtx context.Context) ([]string, error) {
		return it.gateway.ListBranches(callCtx, scmIdentifier)
	})
	if err != nil {
		return unavailable("list branches", err)
	}

	state := entities.RepoState{
		SCMIdentifier:     scmIdentifier,
		Name:              repo.Name,
		ID:                repo.ID,
		IsPrivate:         repo.Private,
		IsArchived:        repo.Archived,
		BranchNames:       branches,
		DefaultBranchName: repo.DefaultBranch,
	}
	primary := selectPrimaryBranch(state)
	if len(branches) > 0 && !state.HasBranch(primary) {
		return unavailable("select primary branch", fmt.Errorf(
			"default branch %q is not among the %d listed branches", primary, len(branches),
		))
	}
	state.PrimaryBranchName = primary

	head, err := callWithTimeout(ctx, it.callTimeout, func(callCtx context.Context) (entities.BranchHead, error) {
		return it.gateway.GetBranch(callCtx, scmIdentifier, primary)
	})
	if err != nil {
		return unavailable("get branch "+primary, err)
	}

	commit, err := callWithTimeout(ctx, it.callTimeout, func(callCtx context.Context) (entities.Commit, error) {
		return it.gateway.GetCommit(callCtx, scmIdentifier, head.HeadSHA)
	})
	if err != nil {
		return unavailable("get head commit", err)
	}

	count, err := callWithTimeout(ctx, it.callTimeout, func(callCtx context.Context) (int, error) {
		return it.gateway.GetCommitCount(callCtx, scmIdentifier, head.HeadSHA)
	})
	if err != nil {
		return unavailable("count commits", err)
	}

	logEntry(ctx).Debugf("Primary branch of %s is %q at %s", scmIdentifier, primary, head.HeadSHA)

	state.HeadCommitSHA = head.HeadSHA
	state.HeadCommitDate = commit.Date
	state.HeadCommitCount = count
	state.HeadCommitAuthor = commit.Author
	state.HeadCommitCommitter = commit.Committer
	return state, nil
}

// selectPrimaryBranch starts from the default branch, then lets "master" and
// finally "main" override it when they exist. "main" wins over "master".
func selectPrimaryBranch(state entities.RepoState) string {
	primary := state.DefaultBranchName
	for _, candidate := range []string{"master", "main"} {
		if state.HasBranch(candidate) {
			primary = candidate
		}
	}
	return primary
}
