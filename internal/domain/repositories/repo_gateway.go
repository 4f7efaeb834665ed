package repositories

import (
	"context"

	"github.com/rios0rios0/driftwatch/internal/domain/entities"
)

// RepoGateway is a read-only facade over a source-control hosting API.
// The repoID is the normalized "owner/repo" identifier.
//
// Implementations own their retry policy; callers never retry.
type RepoGateway interface {
	// GetRepository returns the repository metadata, including its default branch.
	GetRepository(ctx context.Context, repoID string) (entities.RepositoryMetadata, error)

	// ListBranches returns the names of every branch in the repository.
	ListBranches(ctx context.Context, repoID string) ([]string, error)

	// GetBranch returns the branch and the sha it points at.
	GetBranch(ctx context.Context, repoID, name string) (entities.BranchHead, error)

	// GetCommit returns the commit detail for sha.
	GetCommit(ctx context.Context, repoID, sha string) (entities.Commit, error)

	// GetCommitCount returns the number of commits reachable from ref (a branch or sha).
	GetCommitCount(ctx context.Context, repoID, ref string) (int, error)

	// Compare compares headSHA against baseSHA.
	Compare(ctx context.Context, repoID, baseSHA, headSHA string) (entities.Comparison, error)
}
