package commands

import (
	"context"
	"fmt"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/rios0rios0/driftwatch/internal/domain/entities"
	"github.com/rios0rios0/driftwatch/internal/domain/repositories"
)

// Engine reconciles pipeline declarations against the deployment platform.
// Pipelines are processed one after another; the environments of a pipeline
// are resolved concurrently and emitted in declaration order.
type Engine struct {
	configs       *ConfigResolver
	repoStates    *RepoStateResolver
	environments  *EnvironmentResolver
	allowedOwners map[string]struct{}
	workers       int
	now           func() time.Time
}

// NewEngine creates an Engine from settings and the two gateways.
func NewEngine(
	settings *entities.Settings,
	repos repositories.RepoGateway,
	platform repositories.PlatformGateway,
) *Engine {
	owners := make(map[string]struct{}, len(settings.SCM.AllowedOwners))
	for _, owner := range settings.SCM.AllowedOwners {
		owners[strings.ToLower(owner)] = struct{}{}
	}

	workers := settings.Engine.Workers
	if workers < 1 {
		workers = 1
	}

	return &Engine{
		configs:    NewConfigResolver(settings.SCM.CleanupTokens),
		repoStates: NewRepoStateResolver(repos, settings.Engine.CallTimeout),
		environments: NewEnvironmentResolver(repos, platform, EnvironmentResolverOptions{
			AppType:        settings.Platform.AppType,
			BranchVariable: settings.Platform.BranchVariable,
			CommitVariable: settings.Platform.CommitVariable,
			CallTimeout:    settings.Engine.CallTimeout,
		}),
		allowedOwners: owners,
		workers:       workers,
		now:           time.Now,
	}
}

// Reconcile processes every declaration and emits its outcomes to sink.
// Every environment of an accepted pipeline yields exactly one outcome;
// a rejected pipeline yields exactly one pipeline-level outcome.
//
// Cancelling ctx stops the run before the next pipeline; the environments
// of an interrupted pipeline are not emitted. Reconcile then returns the
// context error. A sink failure also stops the run.
func (it *Engine) Reconcile(
	ctx context.Context,
	scan entities.Scan,
	decls []entities.Declaration,
	sink repositories.OutcomeSink,
) (entities.ScanSummary, error) {
	summary := entities.NewScanSummary(scan)

	for _, decl := range decls {
		if err := ctx.Err(); err != nil {
			return it.finish(summary), err
		}

		if err := it.reconcilePipeline(ctx, scan, decl, sink, &summary); err != nil {
			return it.finish(summary), err
		}
	}

	return it.finish(summary), nil
}

func (it *Engine) reconcilePipeline(
	ctx context.Context,
	scan entities.Scan,
	decl entities.Declaration,
	sink repositories.OutcomeSink,
	summary *entities.ScanSummary,
) error {
	ctx = entities.WithCorrelation(ctx, entities.Correlation{ScanID: scan.ID, Pipeline: decl.SourceID})
	pipeline := entities.NewPipelineOutcome(scan, decl.SourceID, it.now())
	log := logEntry(ctx)

	reject := func(status entities.PipelineStatus, err error) error {
		log.WithField("status", status.String()).Warn(err.Error())
		summary.RecordPipeline(status)
		return it.emit(ctx, sink, summary, entities.Outcome{
			Pipeline: pipeline.Reject(status, entities.ClassifyFailure(err), err.Error()),
		})
	}

	config, err := it.configs.Resolve(decl)
	if err != nil {
		return reject(entities.PipelineMalformedConfig, err)
	}
	pipeline = pipeline.WithSCMIdentifier(config.SCMIdentifier)

	if !it.isAllowedOwner(config.SCMIdentifier) {
		return reject(entities.PipelineUnauthorizedOwner, fmt.Errorf(
			"owner %q of %q is not an allowed owner", entities.SCMOwner(config.SCMIdentifier), config.SCMIdentifier,
		))
	}

	log.Infof("Processing %s with %d environments", config.SCMIdentifier, len(config.Environments))

	state, err := it.repoStates.Resolve(ctx, config.SCMIdentifier)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return reject(entities.PipelineRepoStateUnavailable, err)
	}
	pipeline = pipeline.Accept(state)
	summary.RecordPipeline(entities.PipelineAccepted)

	resolved := it.resolveEnvironments(ctx, config.Environments, state)
	if err = ctx.Err(); err != nil {
		return err
	}

	for i := range resolved {
		if err = it.emit(ctx, sink, summary, entities.Outcome{Pipeline: pipeline, Environment: &resolved[i]}); err != nil {
			return err
		}
	}

	log.Infof("Done processing %s", config.SCMIdentifier)
	return nil
}

// resolveEnvironments resolves decls with at most it.workers in flight and
// returns the results in declaration order.
func (it *Engine) resolveEnvironments(
	ctx context.Context,
	decls []entities.EnvironmentDeclaration,
	state entities.RepoState,
) []entities.ResolvedEnvironment {
	results := make([]entities.ResolvedEnvironment, len(decls))

	var group errgroup.Group
	group.SetLimit(it.workers)
	for i, decl := range decls {
		group.Go(func() error {
			correlation := entities.CorrelationFrom(ctx)
			correlation.Environment = decl.EnvironmentName
			results[i] = it.environments.Resolve(entities.WithCorrelation(ctx, correlation), decl, state)
			return nil
		})
	}
	_ = group.Wait()

	return results
}

func (it *Engine) emit(
	ctx context.Context,
	sink repositories.OutcomeSink,
	summary *entities.ScanSummary,
	outcome entities.Outcome,
) error {
	if err := sink.Emit(ctx, outcome); err != nil {
		return fmt.Errorf("failed to emit outcome of %q: %w", outcome.Pipeline.SourceID, err)
	}
	summary.RecordOutcome(outcome)
	return nil
}

func (it *Engine) isAllowedOwner(scmIdentifier string) bool {
	_, ok := it.allowedOwners[strings.ToLower(entities.SCMOwner(scmIdentifier))]
	return ok
}

func (it *Engine) finish(summary entities.ScanSummary) entities.ScanSummary {
	summary.FinishedAt = it.now()
	return summary
}
