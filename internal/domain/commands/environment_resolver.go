package commands

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rios0rios0/driftwatch/internal/domain/entities"
	"github.com/rios0rios0/driftwatch/internal/domain/repositories"
)

const targetPathSegments = 3

// EnvironmentResolverOptions configures which environments are processed and
// where the deployed revision is read from.
type EnvironmentResolverOptions struct {
	AppType        string
	BranchVariable string
	CommitVariable string
	CallTimeout    time.Duration
}

// environmentStage advances a resolution by one step. A stage either returns
// env with its own fields added or a terminal value.
type environmentStage func(
	ctx context.Context,
	env entities.ResolvedEnvironment,
	state entities.RepoState,
) entities.ResolvedEnvironment

// EnvironmentResolver resolves one declared environment against its
// pipeline's RepoState. Failures are returned as statuses, never as errors.
type EnvironmentResolver struct {
	repos    repositories.RepoGateway
	platform repositories.PlatformGateway
	opts     EnvironmentResolverOptions
	stages   []environmentStage
}

// NewEnvironmentResolver creates an EnvironmentResolver.
func NewEnvironmentResolver(
	repos repositories.RepoGateway,
	platform repositories.PlatformGateway,
	opts EnvironmentResolverOptions,
) *EnvironmentResolver {
	resolver := &EnvironmentResolver{repos: repos, platform: platform, opts: opts}
	resolver.stages = []environmentStage{
		resolver.typeGate,
		resolver.pathShape,
		resolver.identifiers,
		resolver.deployedRevision,
		resolver.commitDrift,
	}
	return resolver
}

// Resolve runs every stage in order until one of them terminates.
func (it *EnvironmentResolver) Resolve(
	ctx context.Context,
	decl entities.EnvironmentDeclaration,
	state entities.RepoState,
) entities.ResolvedEnvironment {
	env := entities.NewResolvedEnvironment(decl)
	for _, stage := range it.stages {
		env = stage(ctx, env, state)
		if env.IsTerminal() {
			break
		}
	}
	if !env.IsTerminal() {
		env = env.Resolve()
	}
	observe(ctx, env)
	return env
}

func (it *EnvironmentResolver) typeGate(
	_ context.Context,
	env entities.ResolvedEnvironment,
	_ entities.RepoState,
) entities.ResolvedEnvironment {
	if env.AppType == it.opts.AppType {
		return env
	}
	return env.Fail(
		entities.EnvironmentSkippedWrongType,
		entities.FailureNone,
		fmt.Sprintf("App type is %q. Only processing %q type apps here.", env.AppType, it.opts.AppType),
	)
}

func (it *EnvironmentResolver) pathShape(
	_ context.Context,
	env entities.ResolvedEnvironment,
	_ entities.RepoState,
) entities.ResolvedEnvironment {
	segments := strings.Split(env.TargetPath, "/")
	if len(segments) != targetPathSegments {
		return env.Fail(
			entities.EnvironmentInvalidPath,
			entities.FailurePermanent,
			fmt.Sprintf("Invalid app path %q: expected org/space/app", env.TargetPath),
		)
	}
	return env.WithTarget(segments[0], segments[1], segments[2])
}

func (it *EnvironmentResolver) identifiers(
	ctx context.Context,
	env entities.ResolvedEnvironment,
	_ entities.RepoState,
) entities.ResolvedEnvironment {
	notFound := func(what, name string, err error) entities.ResolvedEnvironment {
		if err != nil {
			return env.Fail(
				entities.EnvironmentAppNotFound,
				entities.ClassifyFailure(err),
				fmt.Sprintf("Cannot look up %s %q: %v", what, name, err),
			)
		}
		return env.Fail(
			entities.EnvironmentAppNotFound,
			entities.FailurePermanent,
			fmt.Sprintf("No %s named %q", what, name),
		)
	}

	orgID, err := callWithTimeout(ctx, it.opts.CallTimeout, func(callCtx context.Context) (string, error) {
		return it.platform.FindOrg(callCtx, env.OrgName)
	})
	if err != nil || orgID == "" {
		return notFound("org", env.OrgName, err)
	}
	env = env.WithOrgID(orgID)

	spaceID, err := callWithTimeout(ctx, it.opts.CallTimeout, func(callCtx context.Context) (string, error) {
		return it.platform.FindSpace(callCtx, orgID, env.SpaceName)
	})
	if err != nil || spaceID == "" {
		return notFound("space", env.SpaceName, err)
	}
	env = env.WithSpaceID(spaceID)

	appID, err := callWithTimeout(ctx, it.opts.CallTimeout, func(callCtx context.Context) (string, error) {
		return it.platform.FindApp(callCtx, orgID, spaceID, env.AppName)
	})
	if err != nil || appID == "" {
		return notFound("app", env.AppName, err)
	}
	return env.WithAppID(appID)
}

func (it *EnvironmentResolver) deployedRevision(
	ctx context.Context,
	env entities.ResolvedEnvironment,
	_ entities.RepoState,
) entities.ResolvedEnvironment {
	vars, err := callWithTimeout(ctx, it.opts.CallTimeout, func(callCtx context.Context) (map[string]string, error) {
		return it.platform.GetAppEnvVars(callCtx, env.AppID)
	})
	if err != nil {
		return env.Fail(
			entities.EnvironmentMissingGitMetadata,
			entities.ClassifyFailure(err),
			fmt.Sprintf("Cannot read environment of app %q: %v", env.AppName, err),
		)
	}

	branch, commit := vars[it.opts.BranchVariable], vars[it.opts.CommitVariable]
	if branch == "" || commit == "" {
		return env.Fail(
			entities.EnvironmentMissingGitMetadata,
			entities.FailurePermanent,
			fmt.Sprintf("No %s or %s in app environment", it.opts.BranchVariable, it.opts.CommitVariable),
		)
	}
	return env.WithDeployedRevision(branch, commit)
}

func (it *EnvironmentResolver) commitDrift(
	ctx context.Context,
	env entities.ResolvedEnvironment,
	state entities.RepoState,
) entities.ResolvedEnvironment {
	unreadable := func(step string, err error) entities.ResolvedEnvironment {
		return env.Fail(
			entities.EnvironmentCommitUnreadable,
			entities.ClassifyFailure(err),
			fmt.Sprintf("Cannot read commit %s (%s): %v", env.DeployedCommitSHA, step, err),
		)
	}
	repoID := state.SCMIdentifier

	deployed, err := callWithTimeout(ctx, it.opts.CallTimeout, func(callCtx context.Context) (entities.Commit, error) {
		return it.repos.GetCommit(callCtx, repoID, env.DeployedCommitSHA)
	})
	if err != nil {
		return unreadable("get commit", err)
	}
	env = env.WithDeployedCommit(deployed)

	count, err := callWithTimeout(ctx, it.opts.CallTimeout, func(callCtx context.Context) (int, error) {
		return it.repos.GetCommitCount(callCtx, repoID, env.DeployedCommitSHA)
	})
	if err != nil {
		return unreadable("count commits", err)
	}
	env = env.WithDeployedCommitCount(count).
		WithSimpleDrift(entities.SimpleDrift(deployed.Date, state.HeadCommitDate))

	cmp, err := callWithTimeout(ctx, it.opts.CallTimeout, func(callCtx context.Context) (entities.Comparison, error) {
		return it.repos.Compare(callCtx, repoID, state.HeadCommitSHA, env.DeployedCommitSHA)
	})
	if err != nil {
		return unreadable("compare with "+state.PrimaryBranchName, err)
	}
	if cmp.MergeBaseSHA == "" {
		return unreadable("compare with "+state.PrimaryBranchName, entities.ErrNotFound)
	}
	env = env.WithComparison(cmp)

	mergeBase, err := callWithTimeout(ctx, it.opts.CallTimeout, func(callCtx context.Context) (entities.Commit, error) {
		return it.repos.GetCommit(callCtx, repoID, cmp.MergeBaseSHA)
	})
	if err != nil {
		return unreadable("get merge-base", err)
	}
	return env.WithMergeBaseDrift(mergeBase.Date, entities.MergeBaseDrift(mergeBase.Date, state.HeadCommitDate))
}

// observe logs the terminal state of a resolution with its correlation.
func observe(ctx context.Context, env entities.ResolvedEnvironment) {
	entry := logEntry(ctx).WithField("status", env.Status.String())
	switch env.Status {
	case entities.EnvironmentResolved:
		entry.Infof("Deployed %s is %.1f days from head (ahead %d, behind %d)",
			env.DeployedCommitSHA, entities.DriftDays(*env.DriftMergeBase), *env.CompareAheadBy, *env.CompareBehindBy)
	case entities.EnvironmentSkippedWrongType:
		entry.Warn(env.Message)
	default:
		if env.FailureKind != entities.FailureNone {
			entry = entry.WithField("failure_kind", string(env.FailureKind))
		}
		entry.Error(env.Message)
	}
}
