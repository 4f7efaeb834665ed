package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rios0rios0/driftwatch/internal/domain/entities"
)

// outcomeRecord is one row of drift_outcomes. The typed columns serve SQL
// queries; payload holds the full outcome for reports.
type outcomeRecord struct {
	SourceID              string
	SCMIdentifier         sql.NullString
	PipelineStatus        string
	Environment           sql.NullString
	Status                sql.NullString
	FailureKind           sql.NullString
	DriftSimpleSeconds    sql.NullFloat64
	DriftMergeBaseSeconds sql.NullFloat64
	Payload               []byte
}

func newOutcomeRecord(outcome entities.Outcome) (outcomeRecord, error) {
	payload, err := json.Marshal(outcome)
	if err != nil {
		return outcomeRecord{}, fmt.Errorf("encode outcome: %w", err)
	}

	record := outcomeRecord{
		SourceID:       outcome.Pipeline.SourceID,
		SCMIdentifier:  nullIfEmpty(outcome.Pipeline.SCMIdentifier),
		PipelineStatus: outcome.Pipeline.Status.String(),
		FailureKind:    nullIfEmpty(string(outcome.Pipeline.FailureKind)),
		Payload:        payload,
	}
	if env := outcome.Environment; env != nil {
		record.Environment = nullIfEmpty(env.EnvironmentName)
		record.Status = nullIfEmpty(env.Status.String())
		record.FailureKind = nullIfEmpty(string(env.FailureKind))
		record.DriftSimpleSeconds = nullSeconds(env.DriftSimple)
		record.DriftMergeBaseSeconds = nullSeconds(env.DriftMergeBase)
	}
	return record, nil
}

func decodeOutcome(payload []byte) (entities.Outcome, error) {
	var outcome entities.Outcome
	if err := json.Unmarshal(payload, &outcome); err != nil {
		return entities.Outcome{}, fmt.Errorf("decode outcome: %w", err)
	}
	return outcome, nil
}

// OutcomeStore writes the outcomes of one scan and reads back the latest
// scan. It serves both as an OutcomeSink and as a ScanStore.
type OutcomeStore struct {
	db      DB
	closer  func() error
	scan    entities.Scan
	seq     int
	started bool
}

// NewOutcomeStore creates an OutcomeStore for scan over db. closer, if set,
// runs on Close.
func NewOutcomeStore(db DB, scan entities.Scan, closer func() error) *OutcomeStore {
	return &OutcomeStore{db: db, scan: scan, closer: closer}
}

// Emit inserts one outcome. The scan row is written with the first outcome.
func (s *OutcomeStore) Emit(ctx context.Context, outcome entities.Outcome) error {
	if !s.started {
		if _, err := s.db.ExecContext(ctx,
			`INSERT INTO drift_scans (scan_id, started_at) VALUES ($1, $2) ON CONFLICT (scan_id) DO NOTHING`,
			s.scan.ID, s.scan.StartedAt.UTC(),
		); err != nil {
			return fmt.Errorf("insert scan %s: %w", s.scan.ID, err)
		}
		s.started = true
	}

	record, err := newOutcomeRecord(outcome)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO drift_outcomes (
			scan_id,
			seq,
			source_id,
			scm_identifier,
			pipeline_status,
			environment,
			status,
			failure_kind,
			drift_simple_seconds,
			drift_merge_base_seconds,
			payload
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)`,
		s.scan.ID,
		s.seq,
		record.SourceID,
		record.SCMIdentifier,
		record.PipelineStatus,
		record.Environment,
		record.Status,
		record.FailureKind,
		record.DriftSimpleSeconds,
		record.DriftMergeBaseSeconds,
		record.Payload,
	)
	if err != nil {
		return fmt.Errorf("insert outcome of %q: %w", record.SourceID, err)
	}
	s.seq++
	return nil
}

// LatestScan returns the most recently started scan and its outcomes.
func (s *OutcomeStore) LatestScan(ctx context.Context) (entities.Scan, []entities.Outcome, error) {
	var scan entities.Scan
	err := s.db.QueryRowContext(ctx,
		`SELECT scan_id, started_at FROM drift_scans ORDER BY started_at DESC LIMIT 1`,
	).Scan(&scan.ID, &scan.StartedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return entities.Scan{}, nil, entities.ErrNotFound
	}
	if err != nil {
		return entities.Scan{}, nil, fmt.Errorf("select latest scan: %w", err)
	}
	scan.StartedAt = scan.StartedAt.UTC()

	rows, err := s.db.QueryContext(ctx,
		`SELECT payload FROM drift_outcomes WHERE scan_id = $1 ORDER BY seq`, scan.ID,
	)
	if err != nil {
		return entities.Scan{}, nil, fmt.Errorf("select outcomes: %w", err)
	}
	defer rows.Close()

	var outcomes []entities.Outcome
	for rows.Next() {
		var payload []byte
		if err = rows.Scan(&payload); err != nil {
			return entities.Scan{}, nil, fmt.Errorf("scan outcome row: %w", err)
		}
		outcome, decodeErr := decodeOutcome(payload)
		if decodeErr != nil {
			return entities.Scan{}, nil, decodeErr
		}
		outcomes = append(outcomes, outcome)
	}
	if err = rows.Err(); err != nil {
		return entities.Scan{}, nil, fmt.Errorf("iterate outcomes: %w", err)
	}
	return scan, outcomes, nil
}

func (s *OutcomeStore) Close() error {
	if s.closer == nil {
		return nil
	}
	return s.closer()
}
