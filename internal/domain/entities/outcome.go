package entities

import (
	"time"
)

// PipelineStatus is the gating result of a whole pipeline.
type PipelineStatus string

const (
	PipelineAccepted             PipelineStatus = "Accepted"
	PipelineMalformedConfig      PipelineStatus = "MalformedConfig"
	PipelineUnauthorizedOwner    PipelineStatus = "UnauthorizedOwner"
	PipelineRepoStateUnavailable PipelineStatus = "RepoStateUnavailable"
)

func (s PipelineStatus) String() string {
	return string(s)
}

// Scan identifies one batch run.
type Scan struct {
	ID        string    `json:"id"`
	StartedAt time.Time `json:"started_at"`
}

// PipelineOutcome describes one pipeline of a scan. For accepted pipelines it
// carries the RepoState shared by all its environments; for rejected ones it
// is emitted alone.
type PipelineOutcome struct {
	ScanID        string         `json:"scan_id"`
	ScanStartedAt time.Time      `json:"scan_started_at"`
	StartedAt     time.Time      `json:"started_at"`
	SourceID      string         `json:"source_id"`
	SCMIdentifier string         `json:"scm_identifier,omitempty"`
	Status        PipelineStatus `json:"status"`
	FailureKind   FailureKind    `json:"failure_kind,omitempty"`
	Message       string         `json:"message,omitempty"`
	RepoState     *RepoState     `json:"repo_state,omitempty"`
}

// NewPipelineOutcome starts the outcome of the declaration sourceID in scan.
func NewPipelineOutcome(scan Scan, sourceID string, startedAt time.Time) PipelineOutcome {
	return PipelineOutcome{
		ScanID:        scan.ID,
		ScanStartedAt: scan.StartedAt,
		StartedAt:     startedAt,
		SourceID:      sourceID,
	}
}

// WithSCMIdentifier records the normalized repository identifier.
func (p PipelineOutcome) WithSCMIdentifier(id string) PipelineOutcome {
	p.SCMIdentifier = id
	return p
}

// Reject closes the pipeline without environment processing.
func (p PipelineOutcome) Reject(status PipelineStatus, kind FailureKind, message string) PipelineOutcome {
	p.Status = status
	p.FailureKind = kind
	p.Message = message
	return p
}

// Accept attaches the resolved repository state.
func (p PipelineOutcome) Accept(state RepoState) PipelineOutcome {
	p.Status = PipelineAccepted
	p.FailureKind = FailureNone
	p.Message = ""
	p.RepoState = &state
	return p
}

// Outcome is one emitted record. Environment is nil for pipeline-level
// outcomes.
type Outcome struct {
	Pipeline    PipelineOutcome      `json:"pipeline"`
	Environment *ResolvedEnvironment `json:"environment,omitempty"`
}

// IsPipelineLevel reports whether the record describes a rejected pipeline.
func (o Outcome) IsPipelineLevel() bool {
	return o.Environment == nil
}

// ScanSummary aggregates the outcomes emitted by one scan.
type ScanSummary struct {
	Scan         Scan                      `json:"scan"`
	FinishedAt   time.Time                 `json:"finished_at"`
	Pipelines    int                       `json:"pipelines"`
	Environments int                       `json:"environments"`
	ByPipeline   map[PipelineStatus]int    `json:"by_pipeline"`
	ByStatus     map[EnvironmentStatus]int `json:"by_status"`
	Transient    int                       `json:"transient"`
}

// NewScanSummary returns an empty summary for scan.
func NewScanSummary(scan Scan) ScanSummary {
	return ScanSummary{
		Scan:       scan,
		ByPipeline: make(map[PipelineStatus]int),
		ByStatus:   make(map[EnvironmentStatus]int),
	}
}

// RecordPipeline counts a processed pipeline.
func (s *ScanSummary) RecordPipeline(status PipelineStatus) {
	s.Pipelines++
	s.ByPipeline[status]++
}

// RecordOutcome counts an emitted record.
func (s *ScanSummary) RecordOutcome(outcome Outcome) {
	kind := outcome.Pipeline.FailureKind
	if outcome.Environment != nil {
		s.Environments++
		s.ByStatus[outcome.Environment.Status]++
		kind = outcome.Environment.FailureKind
	}
	if kind == FailureTransient {
		s.Transient++
	}
}
