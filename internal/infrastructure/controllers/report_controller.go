package controllers

import (
	"context"
	"os"

	logger "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/rios0rios0/driftwatch/internal/domain/commands"
	"github.com/rios0rios0/driftwatch/internal/domain/entities"
)

// ReportController handles the "report" subcommand.
type ReportController struct {
	command commands.Report
}

// NewReportController creates a new ReportController.
func NewReportController(command commands.Report) *ReportController {
	return &ReportController{command: command}
}

// GetBind returns the Cobra command metadata for the report controller.
func (it *ReportController) GetBind() entities.ControllerBind {
	return entities.ControllerBind{
		Use:   "report",
		Short: "Print the outcomes of the latest scan",
		Long:  `Read the latest scan from the configured store (PostgreSQL or Badger) and print it.`,
	}
}

// Execute prints the latest scan to stdout.
func (it *ReportController) Execute(cmd *cobra.Command, _ []string) {
	format, _ := cmd.Flags().GetString("format")

	settings, err := loadSettings(cmd)
	if err != nil {
		logger.Error(err)
		return
	}

	if reportErr := it.command.Execute(context.Background(), settings, commands.ReportOptions{
		Format: format,
	}, os.Stdout); reportErr != nil {
		logger.Errorf("Report failed: %v", reportErr)
	}
}

// AddFlags adds the report-specific flags to the given Cobra command.
func (it *ReportController) AddFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("format", "f", commands.ReportFormatTable, "Output format (table, json)")
}
