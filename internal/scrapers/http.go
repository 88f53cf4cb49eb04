package scrapers

import (
	"context"
	"fmt"
	"github.com/pkg/errors"
	"golang.org/x/time/rate"
	"io"
	"net/http"
)

// ErrRateLimited marks an anti-bot or quota rejection by the remote site.
var ErrRateLimited = errors.New("rate limited by source")

const browserUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// siteClient is the HTTP plumbing shared by all scrapers: a swappable
// transport for tests and an optional per-site rate limiter consulted
// before every request.
type siteClient struct {
	httpClient  HTTPClient
	rateLimiter *rate.Limiter
}

func newSiteClient() siteClient {
	return siteClient{httpClient: &http.Client{}}
}

func (c *siteClient) SetHTTPClient(client HTTPClient) {
	c.httpClient = client
}

func (c *siteClient) SetRateLimit(maxRequestsPerSecond float32) {
	c.rateLimiter = rate.NewLimiter(rate.Limit(maxRequestsPerSecond), 1)
}

func (c *siteClient) sendRequest(ctx context.Context, url string, header http.Header) ([]byte, error) {

	if c.rateLimiter != nil {
		if err := c.rateLimiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("error creating request: %v", err)
	}

	req.Header.Set("User-Agent", browserUserAgent)
	for key, values := range header {
		for _, value := range values {
			req.Header.Add(key, value)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error sending request: %v", err)
	}
	defer resp.Body.Close()

	return c.handleResponse(resp)
}

func (c *siteClient) handleResponse(resp *http.Response) ([]byte, error) {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("error reading response body: %v", err)
	}

	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode == http.StatusForbidden {
		return nil, errors.Wrapf(ErrRateLimited, "status %v", resp.StatusCode)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("request failed with status %v, body: %v", resp.StatusCode, string(body))
	}

	return body, nil
}
