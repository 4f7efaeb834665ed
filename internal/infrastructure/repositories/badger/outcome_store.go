package badger

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/dgraph-io/badger/v4"

	"github.com/rios0rios0/driftwatch/internal/domain/entities"
)

const (
	scanPrefix    = "scan/"
	outcomePrefix = "outcome/"
	keyTimeLayout = "20060102T150405.000000000Z"
)

func scanKey(scan entities.Scan) []byte {
	return []byte(scanPrefix + scan.StartedAt.UTC().Format(keyTimeLayout) + "/" + scan.ID)
}

func outcomeKey(scanID string, seq int) []byte {
	return []byte(fmt.Sprintf("%s%s/%08d", outcomePrefix, scanID, seq))
}

// OutcomeStore writes the outcomes of one scan and reads back the latest
// scan. It serves both as an OutcomeSink and as a ScanStore.
type OutcomeStore struct {
	db      *badger.DB
	scan    entities.Scan
	seq     int
	started bool
	owned   bool
}

// NewOutcomeStore creates an OutcomeStore for scan. When owned is true,
// Close also closes db.
func NewOutcomeStore(db *badger.DB, scan entities.Scan, owned bool) *OutcomeStore {
	return &OutcomeStore{db: db, scan: scan, owned: owned}
}

// Emit stores one outcome. The scan record is written with the first outcome.
func (s *OutcomeStore) Emit(_ context.Context, outcome entities.Outcome) error {
	value, err := json.Marshal(outcome)
	if err != nil {
		return fmt.Errorf("encode outcome: %w", err)
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		if !s.started {
			scanValue, marshalErr := json.Marshal(s.scan)
			if marshalErr != nil {
				return fmt.Errorf("encode scan: %w", marshalErr)
			}
			if setErr := txn.Set(scanKey(s.scan), scanValue); setErr != nil {
				return setErr
			}
		}
		return txn.Set(outcomeKey(s.scan.ID, s.seq), value)
	})
	if err != nil {
		return fmt.Errorf("store outcome of %q: %w", outcome.Pipeline.SourceID, err)
	}

	s.started = true
	s.seq++
	return nil
}

// LatestScan returns the most recently started scan and its outcomes.
func (s *OutcomeStore) LatestScan(_ context.Context) (entities.Scan, []entities.Outcome, error) {
	var (
		scan     entities.Scan
		outcomes []entities.Outcome
		found    bool
	)

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Reverse = true
		opts.Prefix = []byte(scanPrefix)
		it := txn.NewIterator(opts)
		// Reverse iteration seeks to the largest key not greater than the
		// seek key, so seek past every scan key.
		it.Seek([]byte(scanPrefix + "\xff"))
		if it.ValidForPrefix(opts.Prefix) {
			found = true
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &scan)
			}); err != nil {
				it.Close()
				return fmt.Errorf("decode scan: %w", err)
			}
		}
		it.Close()
		if !found {
			return nil
		}

		prefix := []byte(outcomePrefix + scan.ID + "/")
		outcomeIt := txn.NewIterator(badger.IteratorOptions{PrefetchValues: true, PrefetchSize: 100, Prefix: prefix})
		defer outcomeIt.Close()
		for outcomeIt.Rewind(); outcomeIt.Valid(); outcomeIt.Next() {
			var outcome entities.Outcome
			if err := outcomeIt.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &outcome)
			}); err != nil {
				return fmt.Errorf("decode outcome: %w", err)
			}
			outcomes = append(outcomes, outcome)
		}
		return nil
	})
	if err != nil {
		return entities.Scan{}, nil, err
	}
	if !found {
		return entities.Scan{}, nil, entities.ErrNotFound
	}
	return scan, outcomes, nil
}

func (s *OutcomeStore) Close() error {
	if !s.owned {
		return nil
	}
	return s.db.Close()
}
