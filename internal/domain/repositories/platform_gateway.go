package repositories

import "context"

// PlatformGateway is a read-only facade over a deployment-platform API.
// Lookups return an empty id and a nil error when nothing matches.
type PlatformGateway interface {
	FindOrg(ctx context.Context, name string) (string, error)
	FindSpace(ctx context.Context, orgID, name string) (string, error)
	FindApp(ctx context.Context, orgID, spaceID, name string) (string, error)

	// GetAppEnvVars returns the user-provided environment variables of an app.
	GetAppEnvVars(ctx context.Context, appID string) (map[string]string, error)
}
