//go:build unit

package gitlocal_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rios0rios0/driftwatch/internal/domain/entities"
	"github.com/rios0rios0/driftwatch/internal/infrastructure/repositories/gitlocal"
)

var epoch = time.Date(2024, time.March, 1, 9, 0, 0, 0, time.UTC)

// history is a repository where "main" has three commits and "feature"
// forked after the first one and added two of its own.
type history struct {
	root     string
	first    plumbing.Hash
	mainHead plumbing.Hash
	feature  plumbing.Hash
}

func commitFile(t *testing.T, repo *git.Repository, dir, content string, when time.Time) plumbing.Hash {
	t.Helper()

	wt, err := repo.Worktree()
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "file.txt"), []byte(content), 0o600))
	_, err = wt.Add("file.txt")
	require.NoError(t, err)

	hash, err := wt.Commit(content, &git.CommitOptions{
		Author:    &object.Signature{Name: "Dev", Email: "dev@example.com", When: when},
		Committer: &object.Signature{Name: "Dev", Email: "dev@example.com", When: when},
	})
	require.NoError(t, err)
	return hash
}

func newHistory(t *testing.T) history {
	t.Helper()

	root := t.TempDir()
	dir := filepath.Join(root, "uktrade", "great-cms")
	require.NoError(t, os.MkdirAll(dir, 0o750))
	repo, err := git.PlainInitWithOptions(dir, &git.PlainInitOptions{
		InitOptions: git.InitOptions{DefaultBranch: plumbing.NewBranchReferenceName("main")},
	})
	require.NoError(t, err)

	first := commitFile(t, repo, dir, "one", epoch)

	wt, err := repo.Worktree()
	require.NoError(t, err)
	require.NoError(t, wt.Checkout(&git.CheckoutOptions{
		Branch: plumbing.NewBranchReferenceName("feature"),
		Create: true,
	}))
	commitFile(t, repo, dir, "feature-a", epoch.Add(time.Hour))
	feature := commitFile(t, repo, dir, "feature-b", epoch.Add(2*time.Hour))

	require.NoError(t, wt.Checkout(&git.CheckoutOptions{Branch: plumbing.NewBranchReferenceName("main")}))
	commitFile(t, repo, dir, "two", epoch.Add(24*time.Hour))
	mainHead := commitFile(t, repo, dir, "three", epoch.Add(48*time.Hour))

	return history{root: root, first: first, mainHead: mainHead, feature: feature}
}

func TestRepoGateway(t *testing.T) {
	t.Parallel()

	t.Run("should read the default branch and every branch", func(t *testing.T) {
		t.Parallel()

		// given
		h := newHistory(t)
		gateway := gitlocal.NewRepoGateway(h.root)

		// when
		repo, repoErr := gateway.GetRepository(context.Background(), "uktrade/great-cms")
		branches, branchErr := gateway.ListBranches(context.Background(), "uktrade/great-cms")

		// then
		require.NoError(t, repoErr)
		require.NoError(t, branchErr)
		assert.Equal(t, "main", repo.DefaultBranch)
		assert.Equal(t, "great-cms", repo.Name)
		assert.ElementsMatch(t, []string{"main", "feature"}, branches)
	})

	t.Run("should resolve a branch head and its commit", func(t *testing.T) {
		t.Parallel()

		// given
		h := newHistory(t)
		gateway := gitlocal.NewRepoGateway(h.root)

		// when
		head, err := gateway.GetBranch(context.Background(), "uktrade/great-cms", "main")
		require.NoError(t, err)
		commit, commitErr := gateway.GetCommit(context.Background(), "uktrade/great-cms", head.HeadSHA)

		// then
		require.NoError(t, commitErr)
		assert.Equal(t, h.mainHead.String(), head.HeadSHA)
		assert.True(t, commit.Date.Equal(epoch.Add(48*time.Hour)))
		require.NotNil(t, commit.Author)
		assert.Equal(t, "Dev", *commit.Author)
	})

	t.Run("should count commits reachable from a branch or a sha", func(t *testing.T) {
		t.Parallel()

		// given
		h := newHistory(t)
		gateway := gitlocal.NewRepoGateway(h.root)

		// when
		mainCount, mainErr := gateway.GetCommitCount(context.Background(), "uktrade/great-cms", "main")
		featureCount, featureErr := gateway.GetCommitCount(context.Background(), "uktrade/great-cms", h.feature.String())

		// then
		require.NoError(t, mainErr)
		require.NoError(t, featureErr)
		assert.Equal(t, 3, mainCount)
		assert.Equal(t, 3, featureCount)
	})

	t.Run("should compare a diverged commit against the head", func(t *testing.T) {
		t.Parallel()

		// given
		h := newHistory(t)
		gateway := gitlocal.NewRepoGateway(h.root)

		// when
		cmp, err := gateway.Compare(context.Background(), "uktrade/great-cms", h.mainHead.String(), h.feature.String())

		// then
		require.NoError(t, err)
		assert.Equal(t, 2, cmp.AheadBy)
		assert.Equal(t, 2, cmp.BehindBy)
		assert.Equal(t, h.first.String(), cmp.MergeBaseSHA)
	})

	t.Run("should report a missing branch as not found", func(t *testing.T) {
		t.Parallel()

		// given
		h := newHistory(t)
		gateway := gitlocal.NewRepoGateway(h.root)

		// when
		_, err := gateway.GetBranch(context.Background(), "uktrade/great-cms", "master")

		// then
		require.Error(t, err)
		assert.ErrorIs(t, err, entities.ErrNotFound)
	})

	t.Run("should report a missing clone as not found", func(t *testing.T) {
		t.Parallel()

		// given
		gateway := gitlocal.NewRepoGateway(t.TempDir())

		// when
		_, err := gateway.GetRepository(context.Background(), "uktrade/unknown")

		// then
		require.Error(t, err)
		assert.ErrorIs(t, err, entities.ErrNotFound)
	})
}

func TestDeclarationSource(t *testing.T) {
	t.Parallel()

	t.Run("should list files and read their content", func(t *testing.T) {
		t.Parallel()

		// given
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, "great.yaml"), []byte("scm: uktrade/great"), 0o600))
		require.NoError(t, os.Mkdir(filepath.Join(dir, "archive"), 0o750))
		source := gitlocal.NewDeclarationSource(dir)

		// when
		files, err := source.ListDeclarations(context.Background())
		require.NoError(t, err)
		content, getErr := source.GetDeclaration(context.Background(), files[0].Path)

		// then
		require.NoError(t, getErr)
		require.Len(t, files, 1)
		assert.Equal(t, "scm: uktrade/great", content)
	})
}
