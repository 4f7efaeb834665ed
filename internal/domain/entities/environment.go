package entities

import "time"

// EnvironmentStatus is the terminal state of one environment resolution.
type EnvironmentStatus string

const (
	EnvironmentResolved           EnvironmentStatus = "Resolved"
	EnvironmentSkippedWrongType   EnvironmentStatus = "SkippedWrongType"
	EnvironmentInvalidPath        EnvironmentStatus = "InvalidPath"
	EnvironmentAppNotFound        EnvironmentStatus = "AppNotFound"
	EnvironmentMissingGitMetadata EnvironmentStatus = "MissingGitMetadata"
	EnvironmentCommitUnreadable   EnvironmentStatus = "CommitUnreadable"

	// environmentPending is held only while resolution is in progress.
	environmentPending EnvironmentStatus = ""
)

// EnvironmentStatuses lists every terminal status in stage order.
func EnvironmentStatuses() []EnvironmentStatus {
	return []EnvironmentStatus{
		EnvironmentResolved,
		EnvironmentSkippedWrongType,
		EnvironmentInvalidPath,
		EnvironmentAppNotFound,
		EnvironmentMissingGitMetadata,
		EnvironmentCommitUnreadable,
	}
}

func (s EnvironmentStatus) String() string {
	return string(s)
}

// ResolvedEnvironment is the outcome of resolving one EnvironmentDeclaration.
//
// It is built by value: every stage returns a new ResolvedEnvironment with
// the fields of that stage filled in, so fields of stages that were never
// reached are always nil or empty. Once Status is set the value is terminal.
type ResolvedEnvironment struct {
	EnvironmentName string `json:"environment_name"`
	AppType         string `json:"app_type"`
	TargetPath      string `json:"target_path"`

	OrgName   string `json:"org_name,omitempty"`
	OrgID     string `json:"org_id,omitempty"`
	SpaceName string `json:"space_name,omitempty"`
	SpaceID   string `json:"space_id,omitempty"`
	AppName   string `json:"app_name,omitempty"`
	AppID     string `json:"app_id,omitempty"`

	DeployedBranch       string     `json:"deployed_branch,omitempty"`
	DeployedCommitSHA    string     `json:"deployed_commit_sha,omitempty"`
	DeployedCommitDate   *time.Time `json:"deployed_commit_date,omitempty"`
	DeployedCommitAuthor *string    `json:"deployed_commit_author,omitempty"`
	DeployedCommitCount  *int       `json:"deployed_commit_count,omitempty"`

	DriftSimple     *time.Duration `json:"drift_simple,omitempty"`
	CompareAheadBy  *int           `json:"compare_ahead_by,omitempty"`
	CompareBehindBy *int           `json:"compare_behind_by,omitempty"`
	MergeBaseSHA    string         `json:"merge_base_sha,omitempty"`
	MergeBaseDate   *time.Time     `json:"merge_base_date,omitempty"`
	DriftMergeBase  *time.Duration `json:"drift_merge_base,omitempty"`

	Status      EnvironmentStatus `json:"status"`
	FailureKind FailureKind       `json:"failure_kind,omitempty"`
	Message     string            `json:"message,omitempty"`
}

// NewResolvedEnvironment starts the resolution of decl.
func NewResolvedEnvironment(decl EnvironmentDeclaration) ResolvedEnvironment {
	return ResolvedEnvironment{
		EnvironmentName: decl.EnvironmentName,
		AppType:         decl.AppType,
		TargetPath:      decl.TargetPath,
		Status:          environmentPending,
	}
}

// IsTerminal reports whether resolution has stopped.
func (e ResolvedEnvironment) IsTerminal() bool {
	return e.Status != environmentPending
}

// Fail stops resolution with a failure status.
func (e ResolvedEnvironment) Fail(
	status EnvironmentStatus,
	kind FailureKind,
	message string,
) ResolvedEnvironment {
	e.Status = status
	e.FailureKind = kind
	e.Message = message
	return e
}

// WithTarget records the org, space and app names parsed from the path.
func (e ResolvedEnvironment) WithTarget(org, space, app string) ResolvedEnvironment {
	e.OrgName = org
	e.SpaceName = space
	e.AppName = app
	return e
}

// WithOrgID records the resolved org identifier.
func (e ResolvedEnvironment) WithOrgID(id string) ResolvedEnvironment {
	e.OrgID = id
	return e
}

// WithSpaceID records the resolved space identifier.
func (e ResolvedEnvironment) WithSpaceID(id string) ResolvedEnvironment {
	e.SpaceID = id
	return e
}

// WithAppID records the resolved app identifier.
func (e ResolvedEnvironment) WithAppID(id string) ResolvedEnvironment {
	e.AppID = id
	return e
}

// WithDeployedRevision records the branch and sha read from the app environment.
func (e ResolvedEnvironment) WithDeployedRevision(branch, sha string) ResolvedEnvironment {
	e.DeployedBranch = branch
	e.DeployedCommitSHA = sha
	return e
}

// WithDeployedCommit records the materialized deployed commit.
func (e ResolvedEnvironment) WithDeployedCommit(commit Commit) ResolvedEnvironment {
	date := commit.Date
	e.DeployedCommitDate = &date
	e.DeployedCommitAuthor = commit.Author
	return e
}

// WithDeployedCommitCount records the number of commits reachable from the deployed sha.
func (e ResolvedEnvironment) WithDeployedCommitCount(count int) ResolvedEnvironment {
	e.DeployedCommitCount = &count
	return e
}

// WithSimpleDrift records the calendar drift.
func (e ResolvedEnvironment) WithSimpleDrift(drift time.Duration) ResolvedEnvironment {
	e.DriftSimple = &drift
	return e
}

// WithComparison records ahead/behind counts and the merge-base sha.
func (e ResolvedEnvironment) WithComparison(cmp Comparison) ResolvedEnvironment {
	ahead, behind := cmp.AheadBy, cmp.BehindBy
	e.CompareAheadBy = &ahead
	e.CompareBehindBy = &behind
	e.MergeBaseSHA = cmp.MergeBaseSHA
	return e
}

// WithMergeBaseDrift records the merge-base date and the drift measured from it.
func (e ResolvedEnvironment) WithMergeBaseDrift(date time.Time, drift time.Duration) ResolvedEnvironment {
	e.MergeBaseDate = &date
	e.DriftMergeBase = &drift
	return e
}

// Resolve marks resolution as complete.
func (e ResolvedEnvironment) Resolve() ResolvedEnvironment {
	e.Status = EnvironmentResolved
	e.FailureKind = FailureNone
	e.Message = ""
	return e
}
