package repositories

import (
	"context"
	"fmt"
	"net/http"
	"sort"

	"github.com/rios0rios0/driftwatch/internal/domain/entities"
	domainRepos "github.com/rios0rios0/driftwatch/internal/domain/repositories"
	"github.com/rios0rios0/driftwatch/internal/infrastructure/httpclient"
)

// SCMFactory creates the repository gateway and the declaration source of
// one source-control type.
type SCMFactory func(
	settings *entities.Settings,
	httpClient *http.Client,
) (domainRepos.RepoGateway, domainRepos.DeclarationSource, error)

// PlatformFactory creates the gateway of one deployment platform type.
type PlatformFactory func(
	ctx context.Context,
	settings *entities.Settings,
	httpClient *http.Client,
) (domainRepos.PlatformGateway, error)

// TransportFactory creates the HTTP client handed to the factories.
type TransportFactory func(settings entities.HTTPSettings, proxy string) (*http.Client, error)

// Gateways groups the remote facades one scan works with.
type Gateways struct {
	Repos        domainRepos.RepoGateway
	Platform     domainRepos.PlatformGateway
	Declarations domainRepos.DeclarationSource
}

// GatewayRegistry manages all registered gateway implementations.
type GatewayRegistry struct {
	scms      map[string]SCMFactory
	platforms map[string]PlatformFactory
	transport TransportFactory
}

// NewGatewayRegistry creates an empty gateway registry using the shared
// retrying HTTP client.
func NewGatewayRegistry() *GatewayRegistry {
	return &GatewayRegistry{
		scms:      make(map[string]SCMFactory),
		platforms: make(map[string]PlatformFactory),
		transport: httpclient.New,
	}
}

// RegisterSCM adds a source-control factory under the given type (e.g. "github").
func (r *GatewayRegistry) RegisterSCM(name string, factory SCMFactory) {
	r.scms[name] = factory
}

// RegisterPlatform adds a platform factory under the given type (e.g. "cloudfoundry").
func (r *GatewayRegistry) RegisterPlatform(name string, factory PlatformFactory) {
	r.platforms[name] = factory
}

// SetTransport replaces the HTTP client factory.
func (r *GatewayRegistry) SetTransport(transport TransportFactory) {
	r.transport = transport
}

// Build creates the gateways selected by settings. The platform client goes
// through the platform proxy, if any; the source-control client never does.
func (r *GatewayRegistry) Build(ctx context.Context, settings *entities.Settings) (Gateways, error) {
	scmFactory, ok := r.scms[settings.SCM.Type]
	if !ok {
		return Gateways{}, fmt.Errorf("unknown scm type: %q (known: %v)", settings.SCM.Type, sortedKeys(r.scms))
	}
	platformFactory, ok := r.platforms[settings.Platform.Type]
	if !ok {
		return Gateways{}, fmt.Errorf(
			"unknown platform type: %q (known: %v)", settings.Platform.Type, sortedKeys(r.platforms),
		)
	}

	scmClient, err := r.transport(settings.HTTP, "")
	if err != nil {
		return Gateways{}, err
	}
	repos, decls, err := scmFactory(settings, scmClient)
	if err != nil {
		return Gateways{}, fmt.Errorf("failed to create %s gateway: %w", settings.SCM.Type, err)
	}

	platformClient, err := r.transport(settings.HTTP, settings.Platform.Proxy)
	if err != nil {
		return Gateways{}, err
	}
	platform, err := platformFactory(ctx, settings, platformClient)
	if err != nil {
		return Gateways{}, fmt.Errorf("failed to create %s gateway: %w", settings.Platform.Type, err)
	}

	return Gateways{Repos: repos, Platform: platform, Declarations: decls}, nil
}

// SCMNames returns the registered source-control types.
func (r *GatewayRegistry) SCMNames() []string {
	return sortedKeys(r.scms)
}

func sortedKeys[V any](m map[string]V) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
