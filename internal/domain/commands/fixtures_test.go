//go:build unit

package commands_test

import (
	"time"

	"github.com/rios0rios0/driftwatch/internal/domain/entities"
	doubles "github.com/rios0rios0/driftwatch/test/infrastructure/repositorydoubles"
)

const (
	headSHA     = "head-sha"
	deployedSHA = "deployed-sha"
	baseSHA     = "base-sha"
)

var headDate = time.Date(2024, time.March, 20, 12, 0, 0, 0, time.UTC) //nolint:gochecknoglobals // test fixture

func ptr[T any](value T) *T { return &value }

// newRepoGateway returns a repository whose "main" branch is 20 commits
// ahead of the deployed commit.
func newRepoGateway() *doubles.SpyRepoGateway {
	return &doubles.SpyRepoGateway{
		Repository: entities.RepositoryMetadata{ID: "42", Name: "great-cms", DefaultBranch: "develop"},
		Branches:   []string{"develop", "main"},
		Heads:      map[string]string{"main": headSHA, "develop": "develop-sha"},
		Commits: map[string]entities.Commit{
			headSHA:     {SHA: headSHA, Date: headDate, Author: ptr("bob"), Committer: ptr("web-flow")},
			deployedSHA: {SHA: deployedSHA, Date: headDate.Add(-5 * 24 * time.Hour), Author: ptr("alice")},
			baseSHA:     {SHA: baseSHA, Date: headDate.Add(-7 * 24 * time.Hour)},
		},
		CommitErr:    map[string]error{},
		CommitCounts: map[string]int{headSHA: 120, deployedSHA: 100},
		Comparisons: map[string]entities.Comparison{
			headSHA + "..." + deployedSHA: {AheadBy: 2, BehindBy: 20, MergeBaseSHA: baseSHA},
		},
	}
}

// newPlatformGateway returns a platform running app "great-cms" in
// dit/staging, deployed from deployedSHA.
func newPlatformGateway() *doubles.SpyPlatformGateway {
	return &doubles.SpyPlatformGateway{
		Orgs:   map[string]string{"dit": "org-1"},
		Spaces: map[string]string{"org-1/staging": "space-1"},
		Apps: map[string]string{
			"org-1/space-1/great-cms":  "app-1",
			"org-1/space-1/great-cms2": "app-2",
		},
		Envs: map[string]map[string]string{
			"app-1": {"GIT_BRANCH": "main", "GIT_COMMIT": deployedSHA},
			"app-2": {"GIT_BRANCH": "main"},
		},
	}
}

func newSettings() *entities.Settings {
	return &entities.Settings{
		SCM: entities.SCMSettings{
			Type:          "fake",
			AllowedOwners: []string{"uktrade"},
			CleanupTokens: entities.DefaultCleanupTokens(),
		},
		Platform: entities.PlatformSettings{
			Type:           "fake",
			AppType:        "gds",
			BranchVariable: "GIT_BRANCH",
			CommitVariable: "GIT_COMMIT",
		},
		Engine: entities.EngineSettings{Workers: 2, CallTimeout: time.Second},
	}
}
