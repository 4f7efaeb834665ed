// Package cloudfoundry implements the platform gateway against the Cloud
// Foundry v3 API.
package cloudfoundry

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"

	"golang.org/x/oauth2"

	"github.com/rios0rios0/driftwatch/internal/domain/entities"
	"github.com/rios0rios0/driftwatch/internal/domain/repositories"
)

const (
	// cfClientID is the public OAuth client every cf CLI login uses.
	cfClientID   = "cf"
	maxErrorBody = 512
)

// HTTPClient is the subset of *http.Client the gateway needs.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// PlatformGateway implements repositories.PlatformGateway for Cloud Foundry.
type PlatformGateway struct {
	endpoint string
	client   HTTPClient
}

type resourceList struct {
	Resources []struct {
		GUID string `json:"guid"`
		Name string `json:"name"`
	} `json:"resources"`
}

type appEnv struct {
	EnvironmentVariables map[string]any `json:"environment_variables"`
}

type rootLinks struct {
	Links struct {
		Login struct {
			Href string `json:"href"`
		} `json:"login"`
	} `json:"links"`
}

// NewPlatformGateway logs in with the UAA password grant and returns a
// gateway whose requests carry a refreshing bearer token. Without a username
// requests are sent unauthenticated.
func NewPlatformGateway(
	ctx context.Context,
	settings entities.PlatformSettings,
	httpClient *http.Client,
) (repositories.PlatformGateway, error) {
	endpoint := strings.TrimSuffix(settings.Endpoint, "/")
	if settings.Username == "" {
		return newPlatformGateway(endpoint, httpClient), nil
	}

	tokenURL := settings.TokenURL
	if tokenURL == "" {
		loginURL, err := discoverLogin(ctx, endpoint, httpClient)
		if err != nil {
			return nil, err
		}
		tokenURL = loginURL + "/oauth/token"
	}

	config := &oauth2.Config{
		ClientID: cfClientID,
		Endpoint: oauth2.Endpoint{TokenURL: tokenURL, AuthStyle: oauth2.AuthStyleInHeader},
	}
	loginCtx := context.WithValue(ctx, oauth2.HTTPClient, httpClient)
	token, err := config.PasswordCredentialsToken(loginCtx, settings.Username, settings.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to log in to %s: %w", tokenURL, err)
	}

	// refreshes outlive the login call, so they must not inherit its cancellation
	refreshCtx := context.WithValue(context.WithoutCancel(ctx), oauth2.HTTPClient, httpClient)
	return newPlatformGateway(endpoint, config.Client(refreshCtx, token)), nil
}

func newPlatformGateway(endpoint string, client HTTPClient) *PlatformGateway {
	return &PlatformGateway{endpoint: endpoint, client: client}
}

func (p *PlatformGateway) FindOrg(ctx context.Context, name string) (string, error) {
	return p.findFirst(ctx, "/v3/organizations", url.Values{"names": {name}})
}

func (p *PlatformGateway) FindSpace(ctx context.Context, orgID, name string) (string, error) {
	return p.findFirst(ctx, "/v3/spaces", url.Values{
		"names":              {name},
		"organization_guids": {orgID},
	})
}

func (p *PlatformGateway) FindApp(ctx context.Context, orgID, spaceID, name string) (string, error) {
	return p.findFirst(ctx, "/v3/apps", url.Values{
		"names":              {name},
		"space_guids":        {spaceID},
		"organization_guids": {orgID},
	})
}

func (p *PlatformGateway) GetAppEnvVars(ctx context.Context, appID string) (map[string]string, error) {
	var env appEnv
	if err := p.get(ctx, "/v3/apps/"+url.PathEscape(appID)+"/env", nil, &env); err != nil {
		return nil, err
	}

	vars := make(map[string]string, len(env.EnvironmentVariables))
	for key, value := range env.EnvironmentVariables {
		switch typed := value.(type) {
		case string:
			vars[key] = typed
		case nil:
			vars[key] = ""
		default:
			vars[key] = fmt.Sprint(typed)
		}
	}
	return vars, nil
}

// findFirst returns the guid of the first listed resource, or "" when the
// listing is empty.
func (p *PlatformGateway) findFirst(ctx context.Context, path string, query url.Values) (string, error) {
	var list resourceList
	if err := p.get(ctx, path, query, &list); err != nil {
		return "", err
	}
	if len(list.Resources) == 0 {
		return "", nil
	}
	return list.Resources[0].GUID, nil
}

func (p *PlatformGateway) get(ctx context.Context, path string, query url.Values, target any) error {
	requestURL := p.endpoint + path
	if len(query) > 0 {
		requestURL += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return classifyTransportError(path, err)
	}
	defer resp.Body.Close()

	if err = checkStatus(path, resp); err != nil {
		return err
	}
	if err = json.NewDecoder(resp.Body).Decode(target); err != nil {
		return fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return nil
}

func discoverLogin(ctx context.Context, endpoint string, client HTTPClient) (string, error) {
	gateway := newPlatformGateway(endpoint, client)
	var root rootLinks
	if err := gateway.get(ctx, "/", nil, &root); err != nil {
		return "", fmt.Errorf("failed to discover the login endpoint: %w", err)
	}
	if root.Links.Login.Href == "" {
		return "", fmt.Errorf("%s does not advertise a login endpoint", endpoint)
	}
	return strings.TrimSuffix(root.Links.Login.Href, "/"), nil
}

func checkStatus(path string, resp *http.Response) error {
	if resp.StatusCode >= http.StatusOK && resp.StatusCode < http.StatusMultipleChoices {
		return nil
	}

	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	err := fmt.Errorf("GET %s returned %d: %s", path, resp.StatusCode, strings.TrimSpace(string(body)))
	switch {
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("%w: %w", entities.ErrNotFound, err)
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= http.StatusInternalServerError:
		return entities.NewTransientError(err)
	default:
		return err
	}
}

func classifyTransportError(path string, err error) error {
	wrapped := fmt.Errorf("GET %s failed: %w", path, err)
	var netErr net.Error
	if errors.As(err, &netErr) || errors.Is(err, context.DeadlineExceeded) {
		return entities.NewTransientError(wrapped)
	}
	return wrapped
}
