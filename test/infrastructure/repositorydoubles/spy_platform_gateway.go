//go:build integration || unit || test

package repositorydoubles //nolint:revive,staticcheck // Test package naming follows established project structure

import (
	"context"
	"sync"

	"github.com/rios0rios0/driftwatch/internal/domain/repositories"
)

// SpyPlatformGateway implements repositories.PlatformGateway as a
// configurable spy. Lookups missing from the maps return an empty id.
// It is safe for concurrent use.
type SpyPlatformGateway struct {
	mu sync.Mutex

	Orgs   map[string]string // org name -> id
	Spaces map[string]string // "orgID/space name" -> id
	Apps   map[string]string // "orgID/spaceID/app name" -> id
	Envs   map[string]map[string]string

	OrgErr   error
	SpaceErr error
	AppErr   error
	EnvErr   error

	// spy: number of calls across all methods
	CallsCount int
}

var _ repositories.PlatformGateway = (*SpyPlatformGateway)(nil)

func (p *SpyPlatformGateway) count() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.CallsCount++
}

// Calls returns the number of calls received.
func (p *SpyPlatformGateway) Calls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.CallsCount
}

func (p *SpyPlatformGateway) FindOrg(_ context.Context, name string) (string, error) {
	p.count()
	if p.OrgErr != nil {
		return "", p.OrgErr
	}
	return p.Orgs[name], nil
}

func (p *SpyPlatformGateway) FindSpace(_ context.Context, orgID, name string) (string, error) {
	p.count()
	if p.SpaceErr != nil {
		return "", p.SpaceErr
	}
	return p.Spaces[orgID+"/"+name], nil
}

func (p *SpyPlatformGateway) FindApp(_ context.Context, orgID, spaceID, name string) (string, error) {
	p.count()
	if p.AppErr != nil {
		return "", p.AppErr
	}
	return p.Apps[orgID+"/"+spaceID+"/"+name], nil
}

func (p *SpyPlatformGateway) GetAppEnvVars(_ context.Context, appID string) (map[string]string, error) {
	p.count()
	if p.EnvErr != nil {
		return nil, p.EnvErr
	}
	return p.Envs[appID], nil
}
