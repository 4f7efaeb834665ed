package commands

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	logger "github.com/sirupsen/logrus"

	"github.com/rios0rios0/driftwatch/internal/domain/entities"
	"github.com/rios0rios0/driftwatch/internal/domain/repositories"
	infraRepos "github.com/rios0rios0/driftwatch/internal/infrastructure/repositories"
)

// Reconcile is the interface for the run command (batch mode).
type Reconcile interface {
	Execute(ctx context.Context, settings *entities.Settings, opts RunOptions) error
}

// RunOptions holds runtime options for a single run.
type RunOptions struct {
	DryRun   bool // resolve everything but only log the outcomes
	Verbose  bool
	Pipeline string // If set, only process the declaration with this file name
	Workers  int    // If set, overrides engine.workers
}

// ReconcileCommand orchestrates a full scan:
// discover declarations -> reconcile every environment -> write outcomes.
type ReconcileCommand struct {
	gateways *infraRepos.GatewayRegistry
	outputs  *infraRepos.OutputRegistry
	decoder  repositories.DeclarationDecoder
}

// NewReconcileCommand creates a new ReconcileCommand.
func NewReconcileCommand(
	gateways *infraRepos.GatewayRegistry,
	outputs *infraRepos.OutputRegistry,
	decoder repositories.DeclarationDecoder,
) *ReconcileCommand {
	return &ReconcileCommand{
		gateways: gateways,
		outputs:  outputs,
		decoder:  decoder,
	}
}

// Execute runs one scan using the provided configuration.
func (it *ReconcileCommand) Execute(
	ctx context.Context,
	settings *entities.Settings,
	runOpts RunOptions,
) error {
	if runOpts.Verbose {
		logger.SetLevel(logger.DebugLevel)
	}
	if runOpts.Workers > 0 {
		settings.Engine.Workers = runOpts.Workers
	}

	gateways, err := it.gateways.Build(ctx, settings)
	if err != nil {
		return fmt.Errorf("failed to initialize gateways: %w", err)
	}

	decls, err := it.loadDeclarations(ctx, gateways.Declarations, runOpts.Pipeline)
	if err != nil {
		return err
	}
	logger.Infof("Found %d pipeline declarations in %s", len(decls), gateways.Declarations.Location())

	scan := entities.Scan{ID: uuid.NewString(), StartedAt: time.Now().UTC()}
	sink, err := it.outputs.Sinks(ctx, settings, scan, runOpts.DryRun)
	if err != nil {
		return fmt.Errorf("failed to open outputs: %w", err)
	}

	engine := NewEngine(settings, gateways.Repos, gateways.Platform)
	summary, runErr := engine.Reconcile(ctx, scan, decls, sink)
	if closeErr := sink.Close(); closeErr != nil {
		runErr = errors.Join(runErr, fmt.Errorf("failed to close outputs: %w", closeErr))
	}
	if runErr != nil {
		return fmt.Errorf("scan %s aborted: %w", scan.ID, runErr)
	}

	if !runOpts.DryRun {
		it.archiveReport(ctx, settings, scan)
	}

	logSummary(summary)
	return nil
}

// loadDeclarations lists and decodes every declaration file. Only the
// listing itself is fatal; unreadable files become malformed declarations.
func (it *ReconcileCommand) loadDeclarations(
	ctx context.Context,
	source repositories.DeclarationSource,
	pipeline string,
) ([]entities.Declaration, error) {
	files, err := source.ListDeclarations(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list declarations in %s: %w", source.Location(), err)
	}

	decls := make([]entities.Declaration, 0, len(files))
	for _, file := range files {
		if file.IsDir || !it.decoder.Supports(file.Path) {
			continue
		}
		sourceID := path.Base(file.Path)
		if pipeline != "" && !strings.EqualFold(sourceID, pipeline) {
			continue
		}

		decl := entities.Declaration{SourceID: sourceID}
		content, getErr := source.GetDeclaration(ctx, file.Path)
		if getErr != nil {
			decl.DecodeErr = getErr
		} else {
			decl.Raw, decl.DecodeErr = it.decoder.Decode(file.Path, []byte(content))
		}
		decls = append(decls, decl)
	}

	return decls, nil
}

func (it *ReconcileCommand) archiveReport(ctx context.Context, settings *entities.Settings, scan entities.Scan) {
	archiver, err := it.outputs.Archiver(settings)
	if err != nil {
		logger.Errorf("Failed to initialize report archive: %v", err)
		return
	}
	if archiver == nil {
		return
	}

	location, err := archiver.Archive(ctx, scan, settings.Outputs.CSVPath)
	if err != nil {
		logger.Errorf("Failed to archive report %q: %v", settings.Outputs.CSVPath, err)
		return
	}
	logger.Infof("Archived report to %s", location)
}

func logSummary(summary entities.ScanSummary) {
	fields := logger.Fields{
		"scan_id":      summary.Scan.ID,
		"pipelines":    summary.Pipelines,
		"environments": summary.Environments,
		"transient":    summary.Transient,
		"duration":     summary.FinishedAt.Sub(summary.Scan.StartedAt).Round(time.Millisecond).String(),
	}
	for status, count := range summary.ByPipeline {
		fields["pipeline_"+strings.ToLower(status.String())] = count
	}
	for _, status := range entities.EnvironmentStatuses() {
		fields["env_"+strings.ToLower(status.String())] = summary.ByStatus[status]
	}
	logger.WithFields(fields).Info("Scan complete")
}
