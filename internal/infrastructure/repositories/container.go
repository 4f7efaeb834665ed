package repositories

import (
	"context"
	"net/http"

	"go.uber.org/dig"

	"github.com/rios0rios0/driftwatch/internal/domain/entities"
	domainRepos "github.com/rios0rios0/driftwatch/internal/domain/repositories"
	"github.com/rios0rios0/driftwatch/internal/infrastructure/httpclient"
	badgerRepo "github.com/rios0rios0/driftwatch/internal/infrastructure/repositories/badger"
	cfRepo "github.com/rios0rios0/driftwatch/internal/infrastructure/repositories/cloudfoundry"
	declRepo "github.com/rios0rios0/driftwatch/internal/infrastructure/repositories/declarations"
	ghRepo "github.com/rios0rios0/driftwatch/internal/infrastructure/repositories/github"
	localRepo "github.com/rios0rios0/driftwatch/internal/infrastructure/repositories/gitlocal"
	metricsRepo "github.com/rios0rios0/driftwatch/internal/infrastructure/repositories/metrics"
	objRepo "github.com/rios0rios0/driftwatch/internal/infrastructure/repositories/objectstore"
	pgRepo "github.com/rios0rios0/driftwatch/internal/infrastructure/repositories/postgres"
	"github.com/rios0rios0/driftwatch/internal/infrastructure/repositories/sinks"
)

// RegisterProviders registers all repository providers with the DIG container.
func RegisterProviders(container *dig.Container) error {
	// Register gateway registry with every source-control and platform factory
	if err := container.Provide(func() *GatewayRegistry {
		reg := NewGatewayRegistry()
		reg.RegisterSCM(entities.SCMTypeGitHub, newGitHubGateways)
		reg.RegisterSCM(entities.SCMTypeLocal, newLocalGateways)
		reg.RegisterPlatform(entities.PlatformCloudFoundry, newCloudFoundryGateway)
		return reg
	}); err != nil {
		return err
	}

	// Register output registry with every sink, store and the archiver
	if err := container.Provide(func() *OutputRegistry {
		reg := NewOutputRegistry()
		reg.RegisterSink("csv", true, func(s *entities.Settings) bool { return s.Outputs.CSVPath != "" }, newCSVSink)
		reg.RegisterSink("postgres", true,
			func(s *entities.Settings) bool { return s.Outputs.PostgresURL != "" }, newPostgresSink)
		reg.RegisterSink("badger", true,
			func(s *entities.Settings) bool { return s.Outputs.BadgerPath != "" }, newBadgerSink)
		reg.RegisterSink("pushgateway", true,
			func(s *entities.Settings) bool { return s.Metrics.PushgatewayURL != "" }, newRecorderSink)
		reg.RegisterStore(entities.StoreTypePostgres, newPostgresStore)
		reg.RegisterStore(entities.StoreTypeBadger, newBadgerStore)
		reg.SetArchiver(objRepo.NewReportArchiver)
		return reg
	}); err != nil {
		return err
	}

	return container.Provide(declRepo.NewDecoder)
}

func newGitHubGateways(
	settings *entities.Settings,
	httpClient *http.Client,
) (domainRepos.RepoGateway, domainRepos.DeclarationSource, error) {
	client, err := ghRepo.NewClient(httpClient, settings.SCM.Token, settings.SCM.BaseURL)
	if err != nil {
		return nil, nil, err
	}
	decls, err := ghRepo.NewDeclarationSource(client, settings.SCM.PipelineRepo, settings.SCM.PipelinePath)
	if err != nil {
		return nil, nil, err
	}
	return ghRepo.NewRepoGateway(client), decls, nil
}

func newLocalGateways(
	settings *entities.Settings,
	_ *http.Client,
) (domainRepos.RepoGateway, domainRepos.DeclarationSource, error) {
	return localRepo.NewRepoGateway(settings.SCM.LocalRoot), localRepo.NewDeclarationSource(settings.SCM.PipelinePath), nil
}

func newCloudFoundryGateway(
	ctx context.Context,
	settings *entities.Settings,
	httpClient *http.Client,
) (domainRepos.PlatformGateway, error) {
	return cfRepo.NewPlatformGateway(ctx, settings.Platform, httpClient)
}

func newCSVSink(_ context.Context, settings *entities.Settings, _ entities.Scan) (domainRepos.OutcomeSink, error) {
	return sinks.NewCSVSink(settings.Outputs.CSVPath)
}

func newPostgresSink(
	ctx context.Context,
	settings *entities.Settings,
	scan entities.Scan,
) (domainRepos.OutcomeSink, error) {
	db, err := pgRepo.Open(ctx, settings.Outputs.PostgresURL)
	if err != nil {
		return nil, err
	}
	return pgRepo.NewOutcomeStore(db, scan, db.Close), nil
}

func newBadgerSink(_ context.Context, settings *entities.Settings, scan entities.Scan) (domainRepos.OutcomeSink, error) {
	db, err := badgerRepo.Open(badgerRepo.Config{Path: settings.Outputs.BadgerPath})
	if err != nil {
		return nil, err
	}
	return badgerRepo.NewOutcomeStore(db, scan, true), nil
}

func newRecorderSink(_ context.Context, settings *entities.Settings, scan entities.Scan) (domainRepos.OutcomeSink, error) {
	httpClient, err := httpclient.New(settings.HTTP, "")
	if err != nil {
		return nil, err
	}
	return metricsRepo.NewRecorderSink(settings.Metrics, scan, httpClient), nil
}

func newPostgresStore(ctx context.Context, settings *entities.Settings) (domainRepos.ScanStore, error) {
	db, err := pgRepo.Open(ctx, settings.Outputs.PostgresURL)
	if err != nil {
		return nil, err
	}
	return pgRepo.NewOutcomeStore(db, entities.Scan{}, db.Close), nil
}

func newBadgerStore(_ context.Context, settings *entities.Settings) (domainRepos.ScanStore, error) {
	db, err := badgerRepo.Open(badgerRepo.Config{Path: settings.Outputs.BadgerPath})
	if err != nil {
		return nil, err
	}
	return badgerRepo.NewOutcomeStore(db, entities.Scan{}, true), nil
}
