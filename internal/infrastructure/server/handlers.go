// Package server exposes the latest persisted scan over HTTP.
package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	logger "github.com/sirupsen/logrus"

	"github.com/rios0rios0/driftwatch/internal/domain/commands"
	"github.com/rios0rios0/driftwatch/internal/domain/entities"
	"github.com/rios0rios0/driftwatch/internal/domain/repositories"
	"github.com/rios0rios0/driftwatch/internal/infrastructure/repositories/metrics"
)

// Handlers serves the report endpoints from a ScanStore.
type Handlers struct {
	store    repositories.ScanStore
	registry *prometheus.Registry
	metrics  *metrics.DriftMetrics
}

// NewHandlers creates Handlers reading from store. Drift metrics are
// registered in a private registry next to the Go runtime collectors.
func NewHandlers(store repositories.ScanStore) *Handlers {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return &Handlers{store: store, registry: registry, metrics: metrics.NewDriftMetrics(registry)}
}

// HandleHealth answers liveness probes.
func (h *Handlers) HandleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// HandleLatestScan returns the latest scan as a commands.LatestReport. The optional "pipeline" and
// "status" query parameters filter the outcomes; status matches either the
// environment status or, for pipeline-level outcomes, the pipeline status.
func (h *Handlers) HandleLatestScan(c *gin.Context) {
	scan, outcomes, err := h.store.LatestScan(c.Request.Context())
	if errors.Is(err, entities.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "no scan has been stored yet"})
		return
	}
	if err != nil {
		logger.Errorf("Failed to load the latest scan: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load the latest scan"})
		return
	}

	pipeline, status := c.Query("pipeline"), c.Query("status")
	filtered := make([]entities.Outcome, 0, len(outcomes))
	for _, outcome := range outcomes {
		if pipeline != "" && !strings.EqualFold(outcome.Pipeline.SourceID, pipeline) {
			continue
		}
		if status != "" && !strings.EqualFold(outcomeStatus(outcome), status) {
			continue
		}
		filtered = append(filtered, outcome)
	}

	c.JSON(http.StatusOK, commands.LatestReport{Scan: scan, Outcomes: filtered})
}

// HandleMetrics reloads the drift metrics from the latest scan and serves
// the registry.
func (h *Handlers) HandleMetrics(c *gin.Context) {
	scan, outcomes, err := h.store.LatestScan(c.Request.Context())
	switch {
	case err == nil:
		h.metrics.Load(scan, outcomes)
	case !errors.Is(err, entities.ErrNotFound):
		logger.Warnf("Serving stale drift metrics: %v", err)
	}
	promhttp.HandlerFor(h.registry, promhttp.HandlerOpts{}).ServeHTTP(c.Writer, c.Request)
}

func outcomeStatus(outcome entities.Outcome) string {
	if outcome.IsPipelineLevel() {
		return outcome.Pipeline.Status.String()
	}
	return outcome.Environment.Status.String()
}
