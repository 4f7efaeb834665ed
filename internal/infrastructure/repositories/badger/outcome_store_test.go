//go:build unit

package badger_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rios0rios0/driftwatch/internal/domain/entities"
	"github.com/rios0rios0/driftwatch/internal/infrastructure/repositories/badger"
)

func openInMemory(t *testing.T) *badger.OutcomeStore {
	t.Helper()
	db, err := badger.Open(badger.Config{InMemory: true})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return badger.NewOutcomeStore(db, entities.Scan{}, false)
}

func TestOutcomeStore(t *testing.T) {
	t.Parallel()

	t.Run("should report not found before any scan was stored", func(t *testing.T) {
		t.Parallel()

		// given
		store := openInMemory(t)

		// when
		_, _, err := store.LatestScan(context.Background())

		// then
		require.ErrorIs(t, err, entities.ErrNotFound)
	})

	t.Run("should return the outcomes of the most recent scan in emission order", func(t *testing.T) {
		t.Parallel()

		// given
		db, err := badger.Open(badger.Config{InMemory: true})
		require.NoError(t, err)
		t.Cleanup(func() { _ = db.Close() })

		older := entities.Scan{ID: "older", StartedAt: time.Date(2024, time.March, 1, 9, 0, 0, 0, time.UTC)}
		newer := entities.Scan{ID: "newer", StartedAt: older.StartedAt.Add(24 * time.Hour)}

		// when
		for _, scan := range []entities.Scan{newer, older} {
			sink := badger.NewOutcomeStore(db, scan, false)
			for _, source := range []string{"b.yaml", "a.yaml", "c.yaml"} {
				require.NoError(t, sink.Emit(context.Background(), entities.Outcome{
					Pipeline: entities.NewPipelineOutcome(scan, source, scan.StartedAt).
						Reject(entities.PipelineMalformedConfig, entities.FailurePermanent, scan.ID),
				}))
			}
			require.NoError(t, sink.Close())
		}
		scan, outcomes, err := badger.NewOutcomeStore(db, entities.Scan{}, false).LatestScan(context.Background())

		// then
		require.NoError(t, err)
		assert.Equal(t, "newer", scan.ID)
		assert.True(t, newer.StartedAt.Equal(scan.StartedAt))
		require.Len(t, outcomes, 3)
		assert.Equal(t, "b.yaml", outcomes[0].Pipeline.SourceID)
		assert.Equal(t, "a.yaml", outcomes[1].Pipeline.SourceID)
		assert.Equal(t, "c.yaml", outcomes[2].Pipeline.SourceID)
		assert.Equal(t, "newer", outcomes[0].Pipeline.Message)
	})

	t.Run("should require a path for a persistent database", func(t *testing.T) {
		t.Parallel()

		// when
		_, err := badger.Open(badger.Config{})

		// then
		require.Error(t, err)
	})
}
