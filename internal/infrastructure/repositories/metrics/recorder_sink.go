package metrics

import (
	"context"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
	logger "github.com/sirupsen/logrus"

	"github.com/rios0rios0/driftwatch/internal/domain/entities"
)

// RecorderSink records outcomes into a private registry and pushes it to a
// Pushgateway when closed.
type RecorderSink struct {
	metrics *DriftMetrics
	pusher  *push.Pusher
	url     string
}

// NewRecorderSink creates a RecorderSink for scan. httpClient is used for the push.
func NewRecorderSink(settings entities.MetricsSettings, scan entities.Scan, httpClient *http.Client) *RecorderSink {
	registry := prometheus.NewRegistry()
	metrics := NewDriftMetrics(registry)
	metrics.ScanTimestamp.Set(float64(scan.StartedAt.Unix()))

	pusher := push.New(settings.PushgatewayURL, settings.Job).Gatherer(registry)
	if httpClient != nil {
		pusher = pusher.Client(httpClient)
	}
	return &RecorderSink{metrics: metrics, pusher: pusher, url: settings.PushgatewayURL}
}

// Metrics returns the recorded metrics.
func (s *RecorderSink) Metrics() *DriftMetrics {
	return s.metrics
}

func (s *RecorderSink) Emit(_ context.Context, outcome entities.Outcome) error {
	s.metrics.Observe(outcome)
	return nil
}

// Close pushes the metrics, replacing those of the previous scan.
func (s *RecorderSink) Close() error {
	if err := s.pusher.Push(); err != nil {
		return fmt.Errorf("push metrics to %s: %w", s.url, err)
	}
	logger.Debugf("Pushed scan metrics to %s", s.url)
	return nil
}
