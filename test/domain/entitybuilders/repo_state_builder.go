//go:build integration || unit || test

package entitybuilders //nolint:revive,staticcheck // Test package naming follows established project structure

import (
	"time"

	testkit "github.com/rios0rios0/testkit/pkg/test"

	"github.com/rios0rios0/driftwatch/internal/domain/entities"
)

// RepoStateBuilder helps create test repository states with a fluent interface.
type RepoStateBuilder struct {
	*testkit.BaseBuilder
	scmIdentifier string
	branches      []string
	primary       string
	headSHA       string
	headDate      time.Time
	headCount     int
	author        *string
}

// DefaultHeadDate is the head commit date used unless overridden.
var DefaultHeadDate = time.Date(2024, time.March, 20, 12, 0, 0, 0, time.UTC) //nolint:gochecknoglobals // test fixture

// NewRepoStateBuilder creates a new repo state builder with sensible defaults.
func NewRepoStateBuilder() *RepoStateBuilder {
	return &RepoStateBuilder{
		BaseBuilder:   testkit.NewBaseBuilder(),
		scmIdentifier: "uktrade/great-cms",
		branches:      []string{"develop", "main"},
		primary:       "main",
		headSHA:       "head-sha",
		headDate:      DefaultHeadDate,
		headCount:     120,
	}
}

// WithSCMIdentifier sets the repository identifier.
func (b *RepoStateBuilder) WithSCMIdentifier(id string) *RepoStateBuilder {
	b.scmIdentifier = id
	return b
}

// WithPrimaryBranch sets the primary branch and makes sure it is listed.
func (b *RepoStateBuilder) WithPrimaryBranch(name string) *RepoStateBuilder {
	b.primary = name
	for _, branch := range b.branches {
		if branch == name {
			return b
		}
	}
	b.branches = append(b.branches, name)
	return b
}

// WithHead sets the head commit sha and date.
func (b *RepoStateBuilder) WithHead(sha string, date time.Time) *RepoStateBuilder {
	b.headSHA = sha
	b.headDate = date
	return b
}

// WithHeadAuthor sets the head commit author.
func (b *RepoStateBuilder) WithHeadAuthor(author string) *RepoStateBuilder {
	b.author = &author
	return b
}

// Build creates the repo state (satisfies testkit.Builder interface).
func (b *RepoStateBuilder) Build() interface{} {
	return b.BuildRepoState()
}

// BuildRepoState creates the repo state with a concrete return type.
func (b *RepoStateBuilder) BuildRepoState() entities.RepoState {
	_, name, _ := entities.SplitSCMIdentifier(b.scmIdentifier)
	return entities.RepoState{
		SCMIdentifier:     b.scmIdentifier,
		Name:              name,
		ID:                "1",
		BranchNames:       append([]string(nil), b.branches...),
		DefaultBranchName: b.branches[0],
		PrimaryBranchName: b.primary,
		HeadCommitSHA:     b.headSHA,
		HeadCommitDate:    b.headDate,
		HeadCommitCount:   b.headCount,
		HeadCommitAuthor:  b.author,
	}
}

// Reset clears the builder state, allowing it to be reused.
func (b *RepoStateBuilder) Reset() testkit.Builder {
	b.BaseBuilder.Reset()
	fresh := NewRepoStateBuilder()
	b.scmIdentifier = fresh.scmIdentifier
	b.branches = fresh.branches
	b.primary = fresh.primary
	b.headSHA = fresh.headSHA
	b.headDate = fresh.headDate
	b.headCount = fresh.headCount
	b.author = nil
	return b
}

// Clone creates a deep copy of the RepoStateBuilder.
func (b *RepoStateBuilder) Clone() testkit.Builder {
	return &RepoStateBuilder{
		BaseBuilder:   b.BaseBuilder.Clone().(*testkit.BaseBuilder),
		scmIdentifier: b.scmIdentifier,
		branches:      append([]string(nil), b.branches...),
		primary:       b.primary,
		headSHA:       b.headSHA,
		headDate:      b.headDate,
		headCount:     b.headCount,
		author:        b.author,
	}
}
