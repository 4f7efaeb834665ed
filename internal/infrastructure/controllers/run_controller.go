package controllers

import (
	"context"
	"os/signal"
	"syscall"

	logger "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/rios0rios0/driftwatch/internal/domain/commands"
	"github.com/rios0rios0/driftwatch/internal/domain/entities"
)

// RunController handles the "run" subcommand (batch mode).
type RunController struct {
	command commands.Reconcile
}

// NewRunController creates a new RunController.
func NewRunController(command commands.Reconcile) *RunController {
	return &RunController{command: command}
}

// GetBind returns the Cobra command metadata for the run controller.
func (it *RunController) GetBind() entities.ControllerBind {
	return entities.ControllerBind{
		Use:   "run",
		Short: "Measure the drift of every deployed environment",
		Long: `Discover pipeline declarations, resolve the commit deployed to each
declared environment and measure how far it lags behind the head of the
repository's primary branch.

This is the main command intended to be used in a cronjob.
Every outcome is written to the configured outputs (CSV report,
PostgreSQL, Badger, Pushgateway) and the report is archived to
object storage when enabled.`,
	}
}

// Execute runs one scan. SIGINT and SIGTERM stop it before the next pipeline.
func (it *RunController) Execute(cmd *cobra.Command, _ []string) {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	dryRun, _ := cmd.Flags().GetBool("dry-run")
	verbose, _ := cmd.Flags().GetBool("verbose")
	pipeline, _ := cmd.Flags().GetString("pipeline")
	workers, _ := cmd.Flags().GetInt("workers")

	settings, err := loadSettings(cmd)
	if err != nil {
		logger.Error(err)
		return
	}

	logger.Info("Starting driftwatch run...")

	if runErr := it.command.Execute(ctx, settings, commands.RunOptions{
		DryRun:   dryRun,
		Verbose:  verbose,
		Pipeline: pipeline,
		Workers:  workers,
	}); runErr != nil {
		logger.Errorf("Run failed: %v", runErr)
	}
}

// AddFlags adds the run-specific flags to the given Cobra command.
func (it *RunController) AddFlags(cmd *cobra.Command) {
	cmd.Flags().String("pipeline", "", "Only process this declaration file (e.g. great-cms.yaml)")
	cmd.Flags().Int("workers", 0, "Environments resolved concurrently (overrides engine.workers)")
}
