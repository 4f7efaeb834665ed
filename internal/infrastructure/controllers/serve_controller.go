package controllers

import (
	"context"
	"os/signal"
	"syscall"

	logger "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/rios0rios0/driftwatch/internal/domain/entities"
	infraRepos "github.com/rios0rios0/driftwatch/internal/infrastructure/repositories"
	"github.com/rios0rios0/driftwatch/internal/infrastructure/server"
)

// ServeController handles the "serve" subcommand.
type ServeController struct {
	outputs *infraRepos.OutputRegistry
}

// NewServeController creates a new ServeController.
func NewServeController(outputs *infraRepos.OutputRegistry) *ServeController {
	return &ServeController{outputs: outputs}
}

// GetBind returns the Cobra command metadata for the serve controller.
func (it *ServeController) GetBind() entities.ControllerBind {
	return entities.ControllerBind{
		Use:   "serve",
		Short: "Serve the latest scan over HTTP",
		Long: `Serve the latest scan stored in PostgreSQL or Badger:

  GET /api/scans/latest   outcomes as JSON (filter with ?pipeline= and ?status=)
  GET /metrics            drift gauges for Prometheus
  GET /healthz            liveness probe`,
	}
}

// Execute serves until SIGINT or SIGTERM.
func (it *ServeController) Execute(cmd *cobra.Command, _ []string) {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	settings, err := loadSettings(cmd)
	if err != nil {
		logger.Error(err)
		return
	}

	address, _ := cmd.Flags().GetString("address")
	if address == "" {
		address = settings.Server.Address
	}

	store, err := it.outputs.Store(ctx, settings)
	if err != nil {
		logger.Errorf("Failed to open scan store: %v", err)
		return
	}
	defer func() {
		if closeErr := store.Close(); closeErr != nil {
			logger.Warnf("Failed to close scan store: %v", closeErr)
		}
	}()

	router := server.NewRouter(server.NewHandlers(store))
	if serveErr := server.ListenAndServe(ctx, address, router); serveErr != nil {
		logger.Errorf("Serve failed: %v", serveErr)
	}
}

// AddFlags adds the serve-specific flags to the given Cobra command.
func (it *ServeController) AddFlags(cmd *cobra.Command) {
	cmd.Flags().String("address", "", "Listen address (overrides server.address)")
}
