//go:build unit

package commands_test

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rios0rios0/driftwatch/internal/domain/commands"
	"github.com/rios0rios0/driftwatch/internal/domain/entities"
	"github.com/rios0rios0/driftwatch/internal/domain/repositories"
	infraRepos "github.com/rios0rios0/driftwatch/internal/infrastructure/repositories"
	"github.com/rios0rios0/driftwatch/internal/infrastructure/repositories/declarations"
	doubles "github.com/rios0rios0/driftwatch/test/infrastructure/repositorydoubles"
)

const greatCMSDeclaration = `
scm: https://github.com/uktrade/great-cms.git
environments:
  - environment: staging
    type: gds
    app: dit/staging/great-cms
  - environment: prod
    type: docker
    app: dit/prod/great-cms
`

type reconcileFixture struct {
	source   *doubles.SpyDeclarationSource
	sink     *doubles.SpyOutcomeSink
	archiver *doubles.StubReportArchiver
	settings *entities.Settings
	command  *commands.ReconcileCommand
}

func newReconcileFixture() *reconcileFixture {
	f := &reconcileFixture{
		source: &doubles.SpyDeclarationSource{
			Files: []entities.File{
				{Path: "pipelines/great-cms.yaml"},
				{Path: "pipelines/README.md"},
				{Path: "pipelines/archive", IsDir: true},
				{Path: "pipelines/missing.yml"},
			},
			Contents: map[string]string{"pipelines/great-cms.yaml": greatCMSDeclaration},
		},
		sink:     &doubles.SpyOutcomeSink{},
		archiver: &doubles.StubReportArchiver{Location: "s3://drift/report.csv"},
		settings: newSettings(),
	}
	f.settings.Outputs.CSVPath = "report.csv"
	f.settings.Outputs.Archive = entities.ArchiveSettings{Endpoint: "minio:9000", Bucket: "drift"}

	gateways := infraRepos.NewGatewayRegistry()
	gateways.SetTransport(func(entities.HTTPSettings, string) (*http.Client, error) { return &http.Client{}, nil })
	gateways.RegisterSCM("fake", func(
		*entities.Settings, *http.Client,
	) (repositories.RepoGateway, repositories.DeclarationSource, error) {
		return newRepoGateway(), f.source, nil
	})
	gateways.RegisterPlatform("fake", func(
		context.Context, *entities.Settings, *http.Client,
	) (repositories.PlatformGateway, error) {
		return newPlatformGateway(), nil
	})

	outputs := infraRepos.NewOutputRegistry()
	outputs.RegisterSink("spy", true, func(s *entities.Settings) bool { return s.Outputs.CSVPath != "" }, func(
		context.Context, *entities.Settings, entities.Scan,
	) (repositories.OutcomeSink, error) {
		return f.sink, nil
	})
	outputs.SetArchiver(func(entities.ArchiveSettings) (repositories.ReportArchiver, error) {
		return f.archiver, nil
	})

	f.command = commands.NewReconcileCommand(gateways, outputs, declarations.NewDecoder())
	return f
}

func TestReconcileCommandExecute(t *testing.T) {
	t.Parallel()

	t.Run("should reconcile every declaration file and archive the report", func(t *testing.T) {
		t.Parallel()

		// given
		f := newReconcileFixture()

		// when
		err := f.command.Execute(context.Background(), f.settings, commands.RunOptions{})

		// then
		require.NoError(t, err)
		assert.Equal(t, []string{"pipelines/great-cms.yaml", "pipelines/missing.yml"}, f.source.FetchedPaths)
		require.Len(t, f.sink.Outcomes, 3)
		assert.Equal(t, "great-cms.yaml", f.sink.Outcomes[0].Pipeline.SourceID)
		assert.Equal(t, entities.EnvironmentResolved, f.sink.Outcomes[0].Environment.Status)
		assert.Equal(t, entities.EnvironmentSkippedWrongType, f.sink.Outcomes[1].Environment.Status)
		assert.Equal(t, "missing.yml", f.sink.Outcomes[2].Pipeline.SourceID)
		assert.Equal(t, entities.PipelineMalformedConfig, f.sink.Outcomes[2].Pipeline.Status)
		assert.Equal(t, 1, f.sink.CloseCalls)
		assert.Equal(t, []string{"report.csv"}, f.archiver.ArchivedPaths)
	})

	t.Run("should only process the requested pipeline", func(t *testing.T) {
		t.Parallel()

		// given
		f := newReconcileFixture()

		// when
		err := f.command.Execute(context.Background(), f.settings, commands.RunOptions{Pipeline: "GREAT-CMS.yaml"})

		// then
		require.NoError(t, err)
		assert.Equal(t, []string{"pipelines/great-cms.yaml"}, f.source.FetchedPaths)
		assert.Len(t, f.sink.Outcomes, 2)
	})

	t.Run("should skip durable outputs and archiving on dry runs", func(t *testing.T) {
		t.Parallel()

		// given
		f := newReconcileFixture()

		// when
		err := f.command.Execute(context.Background(), f.settings, commands.RunOptions{DryRun: true})

		// then
		require.NoError(t, err)
		assert.Empty(t, f.sink.Outcomes)
		assert.Empty(t, f.archiver.ArchivedPaths)
	})

	t.Run("should override the worker count", func(t *testing.T) {
		t.Parallel()

		// given
		f := newReconcileFixture()

		// when
		err := f.command.Execute(context.Background(), f.settings, commands.RunOptions{Workers: 7})

		// then
		require.NoError(t, err)
		assert.Equal(t, 7, f.settings.Engine.Workers)
	})

	t.Run("should fail when declarations cannot be listed", func(t *testing.T) {
		t.Parallel()

		// given
		f := newReconcileFixture()
		f.source.ListErr = errors.New("403 forbidden")

		// when
		err := f.command.Execute(context.Background(), f.settings, commands.RunOptions{})

		// then
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to list declarations")
		assert.Empty(t, f.sink.Outcomes)
	})

	t.Run("should abort and not archive when the sink fails", func(t *testing.T) {
		t.Parallel()

		// given
		f := newReconcileFixture()
		f.sink.EmitErr = errors.New("disk full")

		// when
		err := f.command.Execute(context.Background(), f.settings, commands.RunOptions{})

		// then
		require.Error(t, err)
		assert.Contains(t, err.Error(), "disk full")
		assert.Equal(t, 1, f.sink.CloseCalls)
		assert.Empty(t, f.archiver.ArchivedPaths)
	})

	t.Run("should report close failures", func(t *testing.T) {
		t.Parallel()

		// given
		f := newReconcileFixture()
		f.sink.CloseErr = errors.New("flush failed")

		// when
		err := f.command.Execute(context.Background(), f.settings, commands.RunOptions{})

		// then
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to close outputs")
	})
}
