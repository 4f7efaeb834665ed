package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/rios0rios0/driftwatch/internal/domain/entities"
	domainRepos "github.com/rios0rios0/driftwatch/internal/domain/repositories"
	"github.com/rios0rios0/driftwatch/internal/infrastructure/repositories/sinks"
)

// SinkFactory creates one outcome sink for scan.
type SinkFactory func(
	ctx context.Context,
	settings *entities.Settings,
	scan entities.Scan,
) (domainRepos.OutcomeSink, error)

// StoreFactory opens a scan store for reading.
type StoreFactory func(ctx context.Context, settings *entities.Settings) (domainRepos.ScanStore, error)

// ArchiverFactory creates the report archiver.
type ArchiverFactory func(settings entities.ArchiveSettings) (domainRepos.ReportArchiver, error)

type sinkRegistration struct {
	name    string
	enabled func(settings *entities.Settings) bool
	durable bool
	factory SinkFactory
}

// OutputRegistry manages where outcomes go and where they are read back from.
type OutputRegistry struct {
	sinks    []sinkRegistration
	stores   map[string]StoreFactory
	archiver ArchiverFactory
}

// NewOutputRegistry creates an empty output registry.
func NewOutputRegistry() *OutputRegistry {
	return &OutputRegistry{stores: make(map[string]StoreFactory)}
}

// RegisterSink adds a sink used whenever enabled reports true. Durable sinks
// write outside the process and are skipped on dry runs.
func (r *OutputRegistry) RegisterSink(
	name string,
	durable bool,
	enabled func(settings *entities.Settings) bool,
	factory SinkFactory,
) {
	r.sinks = append(r.sinks, sinkRegistration{name: name, enabled: enabled, durable: durable, factory: factory})
}

// RegisterStore adds a scan store under the given type (e.g. "postgres").
func (r *OutputRegistry) RegisterStore(name string, factory StoreFactory) {
	r.stores[name] = factory
}

// SetArchiver sets the report archiver factory.
func (r *OutputRegistry) SetArchiver(factory ArchiverFactory) {
	r.archiver = factory
}

// Sinks opens every enabled sink, in registration order, behind one
// MultiSink. The log sink always comes first.
func (r *OutputRegistry) Sinks(
	ctx context.Context,
	settings *entities.Settings,
	scan entities.Scan,
	dryRun bool,
) (domainRepos.OutcomeSink, error) {
	opened := []domainRepos.OutcomeSink{sinks.NewLogSink()}
	for _, registration := range r.sinks {
		if !registration.enabled(settings) || (dryRun && registration.durable) {
			continue
		}
		sink, err := registration.factory(ctx, settings, scan)
		if err != nil {
			_ = sinks.NewMultiSink(opened...).Close()
			return nil, fmt.Errorf("failed to open %s output: %w", registration.name, err)
		}
		opened = append(opened, sink)
	}
	return sinks.NewMultiSink(opened...), nil
}

// Store opens the scan store selected by server.store.
func (r *OutputRegistry) Store(ctx context.Context, settings *entities.Settings) (domainRepos.ScanStore, error) {
	if settings.Server.Store == "" {
		return nil, errors.New("no scan store configured: set outputs.postgres_url or outputs.badger_path")
	}
	factory, ok := r.stores[settings.Server.Store]
	if !ok {
		return nil, fmt.Errorf("unknown store type: %q (known: %v)", settings.Server.Store, sortedKeys(r.stores))
	}
	return factory(ctx, settings)
}

// Archiver returns the report archiver, or nil when archiving is not configured.
func (r *OutputRegistry) Archiver(settings *entities.Settings) (domainRepos.ReportArchiver, error) {
	if r.archiver == nil || !settings.Outputs.Archive.Enabled() {
		return nil, nil //nolint:nilnil // archiving is optional
	}
	return r.archiver(settings.Outputs.Archive)
}
