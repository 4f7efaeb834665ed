package github

import (
	"fmt"
	"net/http"

	gh "github.com/google/go-github/v66/github"
)

const perPage = 100

// NewClient creates a go-github client on top of httpClient. A non-empty
// baseURL targets a GitHub Enterprise Server instance.
func NewClient(httpClient *http.Client, token, baseURL string) (*gh.Client, error) {
	client := gh.NewClient(httpClient).WithAuthToken(token)
	if baseURL == "" {
		return client, nil
	}

	enterprise, err := client.WithEnterpriseURLs(baseURL, baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid GitHub base URL %q: %w", baseURL, err)
	}
	return enterprise, nil
}
