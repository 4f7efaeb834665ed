package github

import (
	"errors"
	"fmt"
	"net"
	"net/http"

	gh "github.com/google/go-github/v66/github"

	"github.com/rios0rios0/driftwatch/internal/domain/entities"
)

// classifyError maps go-github failures onto the domain error kinds:
// 404 becomes entities.ErrNotFound; rate limits, 5xx and network errors
// become transient. Some calls (GetBranch with redirects) fail with a plain
// error, so the status of resp is used when err carries none.
func classifyError(op string, resp *gh.Response, err error) error {
	if err == nil {
		return nil
	}
	wrapped := fmt.Errorf("failed to %s: %w", op, err)

	var rateLimit *gh.RateLimitError
	var abuse *gh.AbuseRateLimitError
	if errors.As(err, &rateLimit) || errors.As(err, &abuse) {
		return entities.NewTransientError(wrapped)
	}

	var response *gh.ErrorResponse
	if errors.As(err, &response) && response.Response != nil {
		return classifyStatus(response.Response.StatusCode, wrapped)
	}
	if resp != nil && resp.Response != nil {
		return classifyStatus(resp.StatusCode, wrapped)
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return entities.NewTransientError(wrapped)
	}
	return wrapped
}

func classifyStatus(status int, wrapped error) error {
	switch {
	case status == http.StatusNotFound:
		return fmt.Errorf("%w: %w", entities.ErrNotFound, wrapped)
	case status == http.StatusTooManyRequests || status >= http.StatusInternalServerError:
		return entities.NewTransientError(wrapped)
	}
	return wrapped
}

func splitRepoID(repoID string) (string, string, error) {
	owner, name, ok := entities.SplitSCMIdentifier(repoID)
	if !ok {
		return "", "", fmt.Errorf("invalid repository identifier %q: expected owner/repo", repoID)
	}
	return owner, name, nil
}
