package entities

import (
	"strconv"
	"strings"
	"time"
)

// ReportColumns is the header of the flat outcome report: the pipeline
// columns followed by the environment columns.
func ReportColumns() []string {
	return []string{
		"scan_id", "scan_started_at", "repo_scan_started_at", "source_id", "scm_identifier",
		"pipeline_status", "pipeline_failure_kind", "pipeline_message",
		"repo_name", "repo_id", "repo_private", "repo_archived", "repo_branches",
		"repo_default_branch", "repo_primary_branch", "head_commit_sha", "head_commit_date",
		"head_commit_count", "head_commit_author", "head_commit_committer",
		"environment", "app_type", "target_path",
		"org_name", "org_id", "space_name", "space_id", "app_name", "app_id",
		"deployed_branch", "deployed_commit_sha", "deployed_commit_date",
		"deployed_commit_author", "deployed_commit_count",
		"drift_simple_days", "compare_ahead_by", "compare_behind_by",
		"merge_base_sha", "merge_base_date", "drift_merge_base_days",
		"status", "failure_kind", "message",
	}
}

// ReportRow flattens o in ReportColumns order. Absent values are empty.
func (o Outcome) ReportRow() []string {
	p := o.Pipeline
	row := []string{
		p.ScanID, formatTime(&p.ScanStartedAt), formatTime(&p.StartedAt), p.SourceID, p.SCMIdentifier,
		p.Status.String(), string(p.FailureKind), p.Message,
	}

	if s := p.RepoState; s != nil {
		row = append(row,
			s.Name, s.ID, strconv.FormatBool(s.IsPrivate), strconv.FormatBool(s.IsArchived),
			strings.Join(s.BranchNames, ";"), s.DefaultBranchName, s.PrimaryBranchName,
			s.HeadCommitSHA, formatTime(&s.HeadCommitDate), strconv.Itoa(s.HeadCommitCount),
			deref(s.HeadCommitAuthor), deref(s.HeadCommitCommitter),
		)
	} else {
		row = append(row, make([]string, 12)...)
	}

	if e := o.Environment; e != nil {
		row = append(row,
			e.EnvironmentName, e.AppType, e.TargetPath,
			e.OrgName, e.OrgID, e.SpaceName, e.SpaceID, e.AppName, e.AppID,
			e.DeployedBranch, e.DeployedCommitSHA, formatTime(e.DeployedCommitDate),
			deref(e.DeployedCommitAuthor), formatInt(e.DeployedCommitCount),
			formatDays(e.DriftSimple), formatInt(e.CompareAheadBy), formatInt(e.CompareBehindBy),
			e.MergeBaseSHA, formatTime(e.MergeBaseDate), formatDays(e.DriftMergeBase),
			e.Status.String(), string(e.FailureKind), e.Message,
		)
	} else {
		row = append(row, make([]string, 23)...)
	}

	return row
}

func deref(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}

func formatTime(value *time.Time) string {
	if value == nil || value.IsZero() {
		return ""
	}
	return value.UTC().Format(time.RFC3339)
}

func formatInt(value *int) string {
	if value == nil {
		return ""
	}
	return strconv.Itoa(*value)
}

func formatDays(value *time.Duration) string {
	if value == nil {
		return ""
	}
	return strconv.FormatFloat(DriftDays(*value), 'f', 2, 64)
}
