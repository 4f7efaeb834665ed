// Package gitlocal reads repository state from clones on the local disk,
// laid out as <root>/<owner>/<repo>. It needs no network access, which makes
// it suitable for air-gapped audits and for mirrors kept fresh by cron.
package gitlocal

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/plumbing/storer"

	"github.com/rios0rios0/driftwatch/internal/domain/entities"
	"github.com/rios0rios0/driftwatch/internal/domain/repositories"
)

// RepoGateway implements repositories.RepoGateway over local clones.
// go-git repositories are not safe for concurrent use, so every call holds mu.
type RepoGateway struct {
	root  string
	mu    sync.Mutex
	repos map[string]*git.Repository
}

// NewRepoGateway creates a RepoGateway reading clones below root.
func NewRepoGateway(root string) repositories.RepoGateway {
	return &RepoGateway{root: root, repos: make(map[string]*git.Repository)}
}

func (r *RepoGateway) GetRepository(ctx context.Context, repoID string) (entities.RepositoryMetadata, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	repo, err := r.open(ctx, repoID)
	if err != nil {
		return entities.RepositoryMetadata{}, err
	}

	head, err := repo.Head()
	if err != nil {
		return entities.RepositoryMetadata{}, fmt.Errorf("failed to read HEAD of %q: %w", repoID, err)
	}

	_, name, _ := entities.SplitSCMIdentifier(repoID)
	return entities.RepositoryMetadata{
		ID:            r.pathOf(repoID),
		Name:          name,
		DefaultBranch: head.Name().Short(),
	}, nil
}

func (r *RepoGateway) ListBranches(ctx context.Context, repoID string) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	repo, err := r.open(ctx, repoID)
	if err != nil {
		return nil, err
	}

	iter, err := repo.Branches()
	if err != nil {
		return nil, fmt.Errorf("failed to list branches of %q: %w", repoID, err)
	}

	var names []string
	err = iter.ForEach(func(ref *plumbing.Reference) error {
		names = append(names, ref.Name().Short())
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list branches of %q: %w", repoID, err)
	}
	return names, nil
}

func (r *RepoGateway) GetBranch(ctx context.Context, repoID, name string) (entities.BranchHead, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	repo, err := r.open(ctx, repoID)
	if err != nil {
		return entities.BranchHead{}, err
	}

	ref, err := repo.Reference(plumbing.NewBranchReferenceName(name), true)
	if err != nil {
		return entities.BranchHead{}, notFound(fmt.Sprintf("failed to read branch %q", name), err)
	}
	return entities.BranchHead{Name: name, HeadSHA: ref.Hash().String()}, nil
}

func (r *RepoGateway) GetCommit(ctx context.Context, repoID, sha string) (entities.Commit, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	repo, err := r.open(ctx, repoID)
	if err != nil {
		return entities.Commit{}, err
	}

	commit, err := r.commit(repo, sha)
	if err != nil {
		return entities.Commit{}, err
	}

	return entities.Commit{
		SHA:       commit.Hash.String(),
		Date:      commit.Committer.When,
		Author:    identity(commit.Author),
		Committer: identity(commit.Committer),
	}, nil
}

func (r *RepoGateway) GetCommitCount(ctx context.Context, repoID, ref string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	repo, err := r.open(ctx, repoID)
	if err != nil {
		return 0, err
	}

	commit, err := r.commit(repo, ref)
	if err != nil {
		return 0, err
	}

	reachable, err := ancestry(ctx, repo, commit.Hash)
	if err != nil {
		return 0, err
	}
	return len(reachable), nil
}

// Compare counts the commits only reachable from headSHA (ahead) and only
// reachable from baseSHA (behind). The merge-base is empty when the two
// histories share no commit.
func (r *RepoGateway) Compare(ctx context.Context, repoID, baseSHA, headSHA string) (entities.Comparison, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	repo, err := r.open(ctx, repoID)
	if err != nil {
		return entities.Comparison{}, err
	}

	base, err := r.commit(repo, baseSHA)
	if err != nil {
		return entities.Comparison{}, err
	}
	head, err := r.commit(repo, headSHA)
	if err != nil {
		return entities.Comparison{}, err
	}

	baseAncestry, err := ancestry(ctx, repo, base.Hash)
	if err != nil {
		return entities.Comparison{}, err
	}
	headAncestry, err := ancestry(ctx, repo, head.Hash)
	if err != nil {
		return entities.Comparison{}, err
	}

	var cmp entities.Comparison
	for hash := range headAncestry {
		if _, shared := baseAncestry[hash]; !shared {
			cmp.AheadBy++
		}
	}
	for hash := range baseAncestry {
		if _, shared := headAncestry[hash]; !shared {
			cmp.BehindBy++
		}
	}

	bases, err := head.MergeBase(base)
	if err != nil {
		return entities.Comparison{}, fmt.Errorf("failed to compute merge-base of %s and %s: %w", baseSHA, headSHA, err)
	}
	if len(bases) > 0 {
		cmp.MergeBaseSHA = bases[0].Hash.String()
	}
	return cmp, nil
}

func (r *RepoGateway) pathOf(repoID string) string {
	return filepath.Join(r.root, filepath.FromSlash(repoID))
}

func (r *RepoGateway) open(ctx context.Context, repoID string) (*git.Repository, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if repo, ok := r.repos[repoID]; ok {
		return repo, nil
	}
	if _, _, ok := entities.SplitSCMIdentifier(repoID); !ok {
		return nil, fmt.Errorf("invalid repository identifier %q: expected owner/repo", repoID)
	}

	repo, err := git.PlainOpen(r.pathOf(repoID))
	if err != nil {
		return nil, notFound(fmt.Sprintf("failed to open %q", r.pathOf(repoID)), err)
	}
	r.repos[repoID] = repo
	return repo, nil
}

// commit resolves ref, which may be a sha or a branch name.
func (r *RepoGateway) commit(repo *git.Repository, ref string) (*object.Commit, error) {
	hash, err := repo.ResolveRevision(plumbing.Revision(ref))
	if err != nil {
		return nil, notFound(fmt.Sprintf("failed to resolve %q", ref), err)
	}
	commit, err := repo.CommitObject(*hash)
	if err != nil {
		return nil, notFound(fmt.Sprintf("failed to read commit %q", ref), err)
	}
	return commit, nil
}

func ancestry(ctx context.Context, repo *git.Repository, from plumbing.Hash) (map[plumbing.Hash]struct{}, error) {
	iter, err := repo.Log(&git.LogOptions{From: from})
	if err != nil {
		return nil, fmt.Errorf("failed to walk history from %s: %w", from, err)
	}
	defer iter.Close()

	seen := make(map[plumbing.Hash]struct{})
	err = iter.ForEach(func(commit *object.Commit) error {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		seen[commit.Hash] = struct{}{}
		return nil
	})
	if err != nil && !errors.Is(err, storer.ErrStop) {
		return nil, fmt.Errorf("failed to walk history from %s: %w", from, err)
	}
	return seen, nil
}

func notFound(msg string, err error) error {
	if errors.Is(err, plumbing.ErrReferenceNotFound) ||
		errors.Is(err, plumbing.ErrObjectNotFound) ||
		errors.Is(err, git.ErrRepositoryNotExists) {
		return fmt.Errorf("%s: %w: %w", msg, entities.ErrNotFound, err)
	}
	return fmt.Errorf("%s: %w", msg, err)
}

// identity returns the commit identity name, or nil when it carries none.
func identity(signature object.Signature) *string {
	if signature.Name == "" {
		return nil
	}
	name := signature.Name
	return &name
}
