package entities

import "time"

// RepositoryMetadata is the subset of a hosted repository the engine reads.
type RepositoryMetadata struct {
	ID            string
	Name          string
	Private       bool
	Archived      bool
	DefaultBranch string
}

// BranchHead is a branch together with the sha it currently points at.
type BranchHead struct {
	Name    string
	HeadSHA string
}

// Commit is the commit detail needed for drift calculations.
// Author and Committer are nil when the commit identity is not linked to
// an account on the hosting platform.
type Commit struct {
	SHA       string
	Date      time.Time
	Author    *string
	Committer *string
}

// Comparison is the result of comparing two commits.
type Comparison struct {
	AheadBy      int
	BehindBy     int
	MergeBaseSHA string
}

// RepoState is the canonical branch state of one pipeline's repository.
// It is computed once per pipeline and shared read-only by every
// environment resolution of that pipeline.
type RepoState struct {
	SCMIdentifier       string    `json:"scm_identifier"`
	Name                string    `json:"name"`
	ID                  string    `json:"id"`
	IsPrivate           bool      `json:"is_private"`
	IsArchived          bool      `json:"is_archived"`
	BranchNames         []string  `json:"branch_names"`
	DefaultBranchName   string    `json:"default_branch_name"`
	PrimaryBranchName   string    `json:"primary_branch_name"`
	HeadCommitSHA       string    `json:"head_commit_sha"`
	HeadCommitDate      time.Time `json:"head_commit_date"`
	HeadCommitCount     int       `json:"head_commit_count"`
	HeadCommitAuthor    *string   `json:"head_commit_author,omitempty"`
	HeadCommitCommitter *string   `json:"head_commit_committer,omitempty"`
}

// HasBranch reports whether name is one of the repository's branches.
func (s RepoState) HasBranch(name string) bool {
	for _, branch := range s.BranchNames {
		if branch == name {
			return true
		}
	}
	return false
}
