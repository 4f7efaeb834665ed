package commands

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	logger "github.com/sirupsen/logrus"

	"github.com/rios0rios0/driftwatch/internal/domain/entities"
	infraRepos "github.com/rios0rios0/driftwatch/internal/infrastructure/repositories"
)

const (
	ReportFormatTable = "table"
	ReportFormatJSON  = "json"
	shortSHALength    = 8
)

// Report is the interface for the report command.
type Report interface {
	Execute(ctx context.Context, settings *entities.Settings, opts ReportOptions, out io.Writer) error
}

// ReportOptions holds runtime options for printing a report.
type ReportOptions struct {
	Format string
}

// LatestReport is the JSON document describing the most recent scan.
type LatestReport struct {
	Scan     entities.Scan      `json:"scan"`
	Outcomes []entities.Outcome `json:"outcomes"`
}

// ReportCommand prints the outcomes of the most recent persisted scan.
type ReportCommand struct {
	outputs *infraRepos.OutputRegistry
}

// NewReportCommand creates a new ReportCommand.
func NewReportCommand(outputs *infraRepos.OutputRegistry) *ReportCommand {
	return &ReportCommand{outputs: outputs}
}

// Execute loads the latest scan from the configured store and writes it to out.
func (it *ReportCommand) Execute(
	ctx context.Context,
	settings *entities.Settings,
	opts ReportOptions,
	out io.Writer,
) error {
	store, err := it.outputs.Store(ctx, settings)
	if err != nil {
		return fmt.Errorf("failed to open scan store: %w", err)
	}
	defer func() {
		if closeErr := store.Close(); closeErr != nil {
			logger.Warnf("Failed to close scan store: %v", closeErr)
		}
	}()

	scan, outcomes, err := store.LatestScan(ctx)
	if errors.Is(err, entities.ErrNotFound) {
		logger.Info("No scan has been stored yet")
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to load the latest scan: %w", err)
	}

	switch opts.Format {
	case ReportFormatJSON:
		encoder := json.NewEncoder(out)
		encoder.SetIndent("", "  ")
		return encoder.Encode(LatestReport{Scan: scan, Outcomes: outcomes})
	case ReportFormatTable, "":
		_, err = fmt.Fprintln(out, renderTable(scan, outcomes))
		return err
	default:
		return fmt.Errorf("unknown report format: %q", opts.Format)
	}
}

// renderTable renders one row per outcome. Pipeline-level outcomes show the
// pipeline status and no environment.
func renderTable(scan entities.Scan, outcomes []entities.Outcome) string {
	rows := make([][]string, 0, len(outcomes))
	for _, outcome := range outcomes {
		rows = append(rows, tableRow(outcome))
	}

	return table.New().
		Border(lipgloss.NormalBorder()).
		Headers("PIPELINE", "REPOSITORY", "ENVIRONMENT", "STATUS", "DEPLOYED", "DRIFT", "MERGE-BASE DRIFT", "AHEAD", "BEHIND", "MESSAGE").
		Rows(rows...).
		String() + fmt.Sprintf("\nScan %s started %s, %d outcomes", scan.ID, scan.StartedAt.Format("2006-01-02 15:04:05"), len(outcomes))
}

func tableRow(outcome entities.Outcome) []string {
	pipeline := outcome.Pipeline
	if outcome.IsPipelineLevel() {
		return []string{pipeline.SourceID, pipeline.SCMIdentifier, "-", pipeline.Status.String(), "", "", "", "", "", pipeline.Message}
	}

	env := outcome.Environment
	return []string{
		pipeline.SourceID,
		pipeline.SCMIdentifier,
		env.EnvironmentName,
		env.Status.String(),
		shortSHA(env.DeployedCommitSHA),
		daysCell(env.DriftSimple),
		daysCell(env.DriftMergeBase),
		intCell(env.CompareAheadBy),
		intCell(env.CompareBehindBy),
		env.Message,
	}
}

func shortSHA(sha string) string {
	if len(sha) > shortSHALength {
		return sha[:shortSHALength]
	}
	return sha
}

func daysCell(drift *time.Duration) string {
	if drift == nil {
		return ""
	}
	return strconv.FormatFloat(entities.DriftDays(*drift), 'f', 1, 64) + "d"
}

func intCell(value *int) string {
	if value == nil {
		return ""
	}
	return strconv.Itoa(*value)
}
