package github

import (
	"context"
	"strconv"

	gh "github.com/google/go-github/v66/github"

	"github.com/rios0rios0/driftwatch/internal/domain/entities"
	"github.com/rios0rios0/driftwatch/internal/domain/repositories"
)

const maxBranchRedirects = 1

// RepoGateway implements repositories.RepoGateway for GitHub.
type RepoGateway struct {
	client *gh.Client
}

// NewRepoGateway creates a GitHub RepoGateway.
func NewRepoGateway(client *gh.Client) repositories.RepoGateway {
	return &RepoGateway{client: client}
}

func (p *RepoGateway) GetRepository(ctx context.Context, repoID string) (entities.RepositoryMetadata, error) {
	owner, name, err := splitRepoID(repoID)
	if err != nil {
		return entities.RepositoryMetadata{}, err
	}

	repo, resp, err := p.client.Repositories.Get(ctx, owner, name)
	if err != nil {
		return entities.RepositoryMetadata{}, classifyError("get repository "+repoID, resp, err)
	}

	return entities.RepositoryMetadata{
		ID:            strconv.FormatInt(repo.GetID(), 10),
		Name:          repo.GetName(),
		Private:       repo.GetPrivate(),
		Archived:      repo.GetArchived(),
		DefaultBranch: repo.GetDefaultBranch(),
	}, nil
}

func (p *RepoGateway) ListBranches(ctx context.Context, repoID string) ([]string, error) {
	owner, name, err := splitRepoID(repoID)
	if err != nil {
		return nil, err
	}

	var names []string
	opts := &gh.BranchListOptions{ListOptions: gh.ListOptions{PerPage: perPage}}
	for {
		branches, resp, listErr := p.client.Repositories.ListBranches(ctx, owner, name, opts)
		if listErr != nil {
			return nil, classifyError("list branches of "+repoID, resp, listErr)
		}
		for _, branch := range branches {
			names = append(names, branch.GetName())
		}
		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return names, nil
}

func (p *RepoGateway) GetBranch(ctx context.Context, repoID, branchName string) (entities.BranchHead, error) {
	owner, name, err := splitRepoID(repoID)
	if err != nil {
		return entities.BranchHead{}, err
	}

	branch, resp, err := p.client.Repositories.GetBranch(ctx, owner, name, branchName, maxBranchRedirects)
	if err != nil {
		return entities.BranchHead{}, classifyError("get branch "+branchName, resp, err)
	}

	return entities.BranchHead{
		Name:    branch.GetName(),
		HeadSHA: branch.GetCommit().GetSHA(),
	}, nil
}

func (p *RepoGateway) GetCommit(ctx context.Context, repoID, sha string) (entities.Commit, error) {
	owner, name, err := splitRepoID(repoID)
	if err != nil {
		return entities.Commit{}, err
	}

	commit, resp, err := p.client.Repositories.GetCommit(ctx, owner, name, sha, nil)
	if err != nil {
		return entities.Commit{}, classifyError("get commit "+sha, resp, err)
	}

	return entities.Commit{
		SHA:       commit.GetSHA(),
		Date:      commit.GetCommit().GetCommitter().GetDate().Time,
		Author:    login(commit.GetAuthor()),
		Committer: login(commit.GetCommitter()),
	}, nil
}

// GetCommitCount reads the number of pages of a one-per-page commit listing,
// which is the number of commits reachable from ref.
func (p *RepoGateway) GetCommitCount(ctx context.Context, repoID, ref string) (int, error) {
	owner, name, err := splitRepoID(repoID)
	if err != nil {
		return 0, err
	}

	opts := &gh.CommitsListOptions{SHA: ref, ListOptions: gh.ListOptions{PerPage: 1}}
	commits, resp, err := p.client.Repositories.ListCommits(ctx, owner, name, opts)
	if err != nil {
		return 0, classifyError("count commits of "+ref, resp, err)
	}

	if resp.LastPage > 0 {
		return resp.LastPage, nil
	}
	return len(commits), nil
}

func (p *RepoGateway) Compare(ctx context.Context, repoID, baseSHA, headSHA string) (entities.Comparison, error) {
	owner, name, err := splitRepoID(repoID)
	if err != nil {
		return entities.Comparison{}, err
	}

	cmp, resp, err := p.client.Repositories.CompareCommits(ctx, owner, name, baseSHA, headSHA, &gh.ListOptions{PerPage: 1})
	if err != nil {
		return entities.Comparison{}, classifyError("compare "+baseSHA+"..."+headSHA, resp, err)
	}

	return entities.Comparison{
		AheadBy:      cmp.GetAheadBy(),
		BehindBy:     cmp.GetBehindBy(),
		MergeBaseSHA: cmp.GetMergeBaseCommit().GetSHA(),
	}, nil
}

// login returns nil when the commit identity is not linked to an account.
func login(user *gh.User) *string {
	if user == nil || user.GetLogin() == "" {
		return nil
	}
	value := user.GetLogin()
	return &value
}
