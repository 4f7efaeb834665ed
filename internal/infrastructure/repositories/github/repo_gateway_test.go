//go:build unit

package github_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rios0rios0/driftwatch/internal/domain/entities"
	"github.com/rios0rios0/driftwatch/internal/domain/repositories"
	ghRepo "github.com/rios0rios0/driftwatch/internal/infrastructure/repositories/github"
)

const apiPrefix = "/api/v3"

func newGateway(t *testing.T, mux *http.ServeMux) (repositories.RepoGateway, *httptest.Server) {
	t.Helper()

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	client, err := ghRepo.NewClient(server.Client(), "token", server.URL+"/")
	require.NoError(t, err)
	return ghRepo.NewRepoGateway(client), server
}

func TestRepoGateway(t *testing.T) {
	t.Parallel()

	t.Run("should read repository metadata", func(t *testing.T) {
		t.Parallel()

		// given
		mux := http.NewServeMux()
		mux.HandleFunc(apiPrefix+"/repos/uktrade/great-cms", func(w http.ResponseWriter, _ *http.Request) {
			fmt.Fprint(w, `{"id":42,"name":"great-cms","private":true,"archived":false,"default_branch":"develop"}`)
		})
		gateway, _ := newGateway(t, mux)

		// when
		repo, err := gateway.GetRepository(context.Background(), "uktrade/great-cms")

		// then
		require.NoError(t, err)
		assert.Equal(t, entities.RepositoryMetadata{
			ID: "42", Name: "great-cms", Private: true, DefaultBranch: "develop",
		}, repo)
	})

	t.Run("should leave the author nil when the commit is not linked to an account", func(t *testing.T) {
		t.Parallel()

		// given
		mux := http.NewServeMux()
		mux.HandleFunc(apiPrefix+"/repos/uktrade/great-cms/commits/abc123", func(w http.ResponseWriter, _ *http.Request) {
			fmt.Fprint(w, `{"sha":"abc123","commit":{"committer":{"date":"2024-03-20T12:00:00Z"}},`+
				`"author":null,"committer":{"login":"web-flow"}}`)
		})
		gateway, _ := newGateway(t, mux)

		// when
		commit, err := gateway.GetCommit(context.Background(), "uktrade/great-cms", "abc123")

		// then
		require.NoError(t, err)
		assert.Nil(t, commit.Author)
		require.NotNil(t, commit.Committer)
		assert.Equal(t, "web-flow", *commit.Committer)
		assert.True(t, commit.Date.Equal(time.Date(2024, time.March, 20, 12, 0, 0, 0, time.UTC)))
	})

	t.Run("should count commits from the last page of a one-per-page listing", func(t *testing.T) {
		t.Parallel()

		// given
		mux := http.NewServeMux()
		var serverURL string
		mux.HandleFunc(apiPrefix+"/repos/uktrade/great-cms/commits", func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "main", r.URL.Query().Get("sha"))
			w.Header().Set("Link", fmt.Sprintf(
				`<%s%s/repos/uktrade/great-cms/commits?page=2&per_page=1>; rel="next", `+
					`<%s%s/repos/uktrade/great-cms/commits?page=57&per_page=1>; rel="last"`,
				serverURL, apiPrefix, serverURL, apiPrefix,
			))
			fmt.Fprint(w, `[{"sha":"abc123"}]`)
		})
		gateway, server := newGateway(t, mux)
		serverURL = server.URL

		// when
		count, err := gateway.GetCommitCount(context.Background(), "uktrade/great-cms", "main")

		// then
		require.NoError(t, err)
		assert.Equal(t, 57, count)
	})

	t.Run("should read ahead, behind and merge-base from a comparison", func(t *testing.T) {
		t.Parallel()

		// given
		mux := http.NewServeMux()
		mux.HandleFunc(apiPrefix+"/repos/uktrade/great-cms/compare/head...deployed", func(w http.ResponseWriter, _ *http.Request) {
			fmt.Fprint(w, `{"ahead_by":2,"behind_by":5,"merge_base_commit":{"sha":"base"}}`)
		})
		gateway, _ := newGateway(t, mux)

		// when
		cmp, err := gateway.Compare(context.Background(), "uktrade/great-cms", "head", "deployed")

		// then
		require.NoError(t, err)
		assert.Equal(t, entities.Comparison{AheadBy: 2, BehindBy: 5, MergeBaseSHA: "base"}, cmp)
	})

	t.Run("should map a missing branch to not found", func(t *testing.T) {
		t.Parallel()

		// given
		mux := http.NewServeMux()
		mux.HandleFunc(apiPrefix+"/repos/uktrade/great-cms/branches/main", func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusNotFound)
			fmt.Fprint(w, `{"message":"Branch not found"}`)
		})
		gateway, _ := newGateway(t, mux)

		// when
		_, err := gateway.GetBranch(context.Background(), "uktrade/great-cms", "main")

		// then
		require.Error(t, err)
		assert.ErrorIs(t, err, entities.ErrNotFound)
		assert.Equal(t, entities.FailurePermanent, entities.ClassifyFailure(err))
	})

	t.Run("should mark an unavailable branch endpoint as transient", func(t *testing.T) {
		t.Parallel()

		// given
		mux := http.NewServeMux()
		mux.HandleFunc(apiPrefix+"/repos/uktrade/great-cms/branches/main", func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
		gateway, _ := newGateway(t, mux)

		// when
		_, err := gateway.GetBranch(context.Background(), "uktrade/great-cms", "main")

		// then
		require.Error(t, err)
		assert.Equal(t, entities.FailureTransient, entities.ClassifyFailure(err))
		assert.NotErrorIs(t, err, entities.ErrNotFound)
	})

	t.Run("should mark server errors as transient", func(t *testing.T) {
		t.Parallel()

		// given
		mux := http.NewServeMux()
		mux.HandleFunc(apiPrefix+"/repos/uktrade/great-cms/branches", func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
			fmt.Fprint(w, `{"message":"bad gateway"}`)
		})
		gateway, _ := newGateway(t, mux)

		// when
		_, err := gateway.ListBranches(context.Background(), "uktrade/great-cms")

		// then
		require.Error(t, err)
		assert.True(t, entities.IsTransient(err))
	})

	t.Run("should reject identifiers without an owner", func(t *testing.T) {
		t.Parallel()

		// given
		gateway, _ := newGateway(t, http.NewServeMux())

		// when
		_, err := gateway.GetRepository(context.Background(), "great-cms")

		// then
		require.Error(t, err)
		assert.Contains(t, err.Error(), "expected owner/repo")
	})
}

func TestDeclarationSource(t *testing.T) {
	t.Parallel()

	t.Run("should list files of the declaration directory and skip folders", func(t *testing.T) {
		t.Parallel()

		// given
		mux := http.NewServeMux()
		mux.HandleFunc(apiPrefix+"/repos/uktrade/pipelines/contents/pipelines", func(w http.ResponseWriter, _ *http.Request) {
			fmt.Fprint(w, `[{"type":"file","path":"pipelines/great.yaml","sha":"s1"},`+
				`{"type":"dir","path":"pipelines/old","sha":"s2"}]`)
		})
		mux.HandleFunc(apiPrefix+"/repos/uktrade/pipelines/contents/pipelines/great.yaml", func(w http.ResponseWriter, _ *http.Request) {
			fmt.Fprint(w, `{"type":"file","path":"pipelines/great.yaml","encoding":"base64","content":"c2NtOiB1a3RyYWRlL2dyZWF0"}`)
		})
		server := httptest.NewServer(mux)
		t.Cleanup(server.Close)
		client, err := ghRepo.NewClient(server.Client(), "token", server.URL+"/")
		require.NoError(t, err)
		source, err := ghRepo.NewDeclarationSource(client, "uktrade/pipelines", "pipelines")
		require.NoError(t, err)

		// when
		files, listErr := source.ListDeclarations(context.Background())
		content, getErr := source.GetDeclaration(context.Background(), "pipelines/great.yaml")

		// then
		require.NoError(t, listErr)
		require.NoError(t, getErr)
		require.Len(t, files, 1)
		assert.Equal(t, entities.File{Path: "pipelines/great.yaml", ObjectID: "s1"}, files[0])
		assert.Equal(t, "scm: uktrade/great", content)
		assert.Equal(t, "github:uktrade/pipelines/pipelines", source.Location())
	})
}
