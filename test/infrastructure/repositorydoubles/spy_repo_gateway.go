//go:build integration || unit || test

// Package repositorydoubles provides test doubles (spies, stubs, dummies) for
// repository interfaces. These are hand-crafted implementations, no mock frameworks.
package repositorydoubles //nolint:revive,staticcheck // Test package naming follows established project structure

import (
	"context"
	"fmt"
	"sync"

	"github.com/rios0rios0/driftwatch/internal/domain/entities"
	"github.com/rios0rios0/driftwatch/internal/domain/repositories"
)

// SpyRepoGateway implements repositories.RepoGateway as a configurable spy.
// It is safe for concurrent use.
type SpyRepoGateway struct {
	mu sync.Mutex

	// --- GetRepository ---
	Repository    entities.RepositoryMetadata
	RepositoryErr error

	// --- ListBranches ---
	Branches    []string
	BranchesErr error

	// --- GetBranch ---
	Heads     map[string]string // branch -> sha
	BranchErr error

	// --- GetCommit ---
	Commits   map[string]entities.Commit // sha -> commit
	CommitErr map[string]error           // sha -> error

	// --- GetCommitCount ---
	CommitCounts map[string]int // ref -> count
	CountErr     error

	// --- Compare ---
	Comparisons map[string]entities.Comparison // "base...head" -> comparison
	CompareErr  error

	// spy: every call as "Method:args"
	Calls []string
}

var _ repositories.RepoGateway = (*SpyRepoGateway)(nil)

func (p *SpyRepoGateway) record(call string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Calls = append(p.Calls, call)
}

// CallCount returns how many calls were recorded.
func (p *SpyRepoGateway) CallCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.Calls)
}

func (p *SpyRepoGateway) GetRepository(_ context.Context, repoID string) (entities.RepositoryMetadata, error) {
	p.record("GetRepository:" + repoID)
	return p.Repository, p.RepositoryErr
}

func (p *SpyRepoGateway) ListBranches(_ context.Context, repoID string) ([]string, error) {
	p.record("ListBranches:" + repoID)
	return p.Branches, p.BranchesErr
}

func (p *SpyRepoGateway) GetBranch(_ context.Context, _ string, name string) (entities.BranchHead, error) {
	p.record("GetBranch:" + name)
	if p.BranchErr != nil {
		return entities.BranchHead{}, p.BranchErr
	}
	sha, ok := p.Heads[name]
	if !ok {
		return entities.BranchHead{}, fmt.Errorf("branch %q: %w", name, entities.ErrNotFound)
	}
	return entities.BranchHead{Name: name, HeadSHA: sha}, nil
}

func (p *SpyRepoGateway) GetCommit(_ context.Context, _ string, sha string) (entities.Commit, error) {
	p.record("GetCommit:" + sha)
	if err, ok := p.CommitErr[sha]; ok {
		return entities.Commit{}, err
	}
	commit, ok := p.Commits[sha]
	if !ok {
		return entities.Commit{}, fmt.Errorf("commit %q: %w", sha, entities.ErrNotFound)
	}
	return commit, nil
}

func (p *SpyRepoGateway) GetCommitCount(_ context.Context, _ string, ref string) (int, error) {
	p.record("GetCommitCount:" + ref)
	if p.CountErr != nil {
		return 0, p.CountErr
	}
	return p.CommitCounts[ref], nil
}

func (p *SpyRepoGateway) Compare(_ context.Context, _ string, baseSHA, headSHA string) (entities.Comparison, error) {
	key := baseSHA + "..." + headSHA
	p.record("Compare:" + key)
	if p.CompareErr != nil {
		return entities.Comparison{}, p.CompareErr
	}
	cmp, ok := p.Comparisons[key]
	if !ok {
		return entities.Comparison{}, fmt.Errorf("comparison %q: %w", key, entities.ErrNotFound)
	}
	return cmp, nil
}
