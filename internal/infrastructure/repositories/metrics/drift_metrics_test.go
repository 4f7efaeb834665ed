//go:build unit

package metrics_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rios0rios0/driftwatch/internal/domain/entities"
	"github.com/rios0rios0/driftwatch/internal/infrastructure/repositories/metrics"
)

var testScan = entities.Scan{ID: "scan-1", StartedAt: time.Unix(1700000000, 0).UTC()} //nolint:gochecknoglobals // test fixture

func resolvedOutcome(name string, drift time.Duration, behind int) entities.Outcome {
	pipeline := entities.NewPipelineOutcome(testScan, "great-cms.yaml", testScan.StartedAt).
		WithSCMIdentifier("uktrade/great-cms").
		Accept(entities.RepoState{SCMIdentifier: "uktrade/great-cms"})
	env := entities.NewResolvedEnvironment(entities.EnvironmentDeclaration{
		EnvironmentName: name, AppType: "gds", TargetPath: "org/space/" + name,
	}).
		WithSimpleDrift(drift).
		WithComparison(entities.Comparison{AheadBy: 0, BehindBy: behind, MergeBaseSHA: "base"}).
		WithMergeBaseDrift(testScan.StartedAt, drift).
		Resolve()
	return entities.Outcome{Pipeline: pipeline, Environment: &env}
}

func TestDriftMetrics(t *testing.T) {
	t.Parallel()

	t.Run("should count outcomes by level and set drift gauges", func(t *testing.T) {
		t.Parallel()

		// given
		m := metrics.NewDriftMetrics(prometheus.NewRegistry())
		rejected := entities.Outcome{
			Pipeline: entities.NewPipelineOutcome(testScan, "broken.yaml", testScan.StartedAt).
				Reject(entities.PipelineRepoStateUnavailable, entities.FailureTransient, "timeout"),
		}

		// when
		m.Observe(rejected)
		m.Observe(resolvedOutcome("dev", -48*time.Hour, 7))

		// then
		assert.InDelta(t, 1, testutil.ToFloat64(
			m.OutcomesTotal.WithLabelValues("pipeline", "RepoStateUnavailable", "transient")), 0)
		assert.InDelta(t, 1, testutil.ToFloat64(m.OutcomesTotal.WithLabelValues("environment", "Resolved", "")), 0)
		assert.InDelta(t, -2, testutil.ToFloat64(
			m.DriftSimpleDays.WithLabelValues("great-cms.yaml", "uktrade/great-cms", "dev")), 0.0001)
		assert.InDelta(t, 7, testutil.ToFloat64(
			m.BehindBy.WithLabelValues("great-cms.yaml", "uktrade/great-cms", "dev")), 0)
	})

	t.Run("should drop series of a previous scan on load", func(t *testing.T) {
		t.Parallel()

		// given
		m := metrics.NewDriftMetrics(prometheus.NewRegistry())
		m.Observe(resolvedOutcome("old", -time.Hour, 1))

		// when
		m.Load(testScan, []entities.Outcome{resolvedOutcome("dev", -24*time.Hour, 2)})

		// then
		assert.Equal(t, 1, testutil.CollectAndCount(m.DriftMergeBaseDays))
		assert.InDelta(t, float64(testScan.StartedAt.Unix()), testutil.ToFloat64(m.ScanTimestamp), 0)
	})
}

func TestRecorderSink(t *testing.T) {
	t.Parallel()

	t.Run("should push the recorded metrics under the job on close", func(t *testing.T) {
		t.Parallel()

		// given
		var (
			mu     sync.Mutex
			path   string
			method string
			body   string
		)
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			data, _ := io.ReadAll(r.Body)
			mu.Lock()
			path, method, body = r.URL.Path, r.Method, string(data)
			mu.Unlock()
			w.WriteHeader(http.StatusOK)
		}))
		defer server.Close()
		sink := metrics.NewRecorderSink(
			entities.MetricsSettings{PushgatewayURL: server.URL, Job: "driftwatch"}, testScan, server.Client(),
		)

		// when
		require.NoError(t, sink.Emit(context.Background(), resolvedOutcome("dev", -24*time.Hour, 3)))
		err := sink.Close()

		// then
		require.NoError(t, err)
		mu.Lock()
		defer mu.Unlock()
		assert.Equal(t, http.MethodPut, method)
		assert.Equal(t, "/metrics/job/driftwatch", path)
		assert.Contains(t, body, "driftwatch_behind_by_commits")
	})

	t.Run("should report a rejected push", func(t *testing.T) {
		t.Parallel()

		// given
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer server.Close()
		sink := metrics.NewRecorderSink(
			entities.MetricsSettings{PushgatewayURL: server.URL, Job: "driftwatch"}, testScan, server.Client(),
		)

		// when
		err := sink.Close()

		// then
		require.Error(t, err)
		assert.Contains(t, err.Error(), "push metrics")
	})
}
