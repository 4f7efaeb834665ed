// Package httpclient builds the HTTP client shared by every remote gateway:
// pooled connections, a client-side rate limit and retries with exponential
// backoff on connection errors, 429 and 5xx responses.
package httpclient

import (
	"fmt"
	"net/http"
	"net/url"

	"github.com/hashicorp/go-cleanhttp"
	"github.com/hashicorp/go-retryablehttp"
	"golang.org/x/time/rate"

	"github.com/rios0rios0/driftwatch/internal/domain/entities"
)

// New returns an *http.Client configured from settings. A non-empty proxy
// routes every request through that URL.
func New(settings entities.HTTPSettings, proxy string) (*http.Client, error) {
	base := cleanhttp.DefaultPooledClient()
	base.Timeout = settings.Timeout

	transport, ok := base.Transport.(*http.Transport)
	if !ok {
		return nil, fmt.Errorf("unexpected transport type %T", base.Transport)
	}
	if proxy != "" {
		proxyURL, err := url.Parse(proxy)
		if err != nil {
			return nil, fmt.Errorf("invalid proxy %q: %w", proxy, err)
		}
		transport.Proxy = http.ProxyURL(proxyURL)
	}

	if settings.RequestsPerSecond > 0 {
		burst := max(settings.Burst, 1)
		base.Transport = &rateLimitedTransport{
			base:    transport,
			limiter: rate.NewLimiter(rate.Limit(settings.RequestsPerSecond), burst),
		}
	}

	client := retryablehttp.NewClient()
	client.HTTPClient = base
	client.RetryMax = settings.RetryMax
	if settings.RetryWaitMin > 0 {
		client.RetryWaitMin = settings.RetryWaitMin
	}
	if settings.RetryWaitMax > 0 {
		client.RetryWaitMax = settings.RetryWaitMax
	}
	client.Logger = NewLeveledLogger()
	// the last response is handed back unchanged so gateways can map its status
	client.ErrorHandler = retryablehttp.PassthroughErrorHandler

	return client.StandardClient(), nil
}

// rateLimitedTransport waits for a limiter token before every round trip,
// retries included.
type rateLimitedTransport struct {
	base    http.RoundTripper
	limiter *rate.Limiter
}

func (t *rateLimitedTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if err := t.limiter.Wait(req.Context()); err != nil {
		return nil, err
	}
	return t.base.RoundTrip(req)
}
