package emissions

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/greensight/carbonscan/internal/model"
)

// DefaultGreenCheckEndpoint is the Green Web Foundation greencheck API.
const DefaultGreenCheckEndpoint = "https://api.thegreenwebfoundation.org/api/v3/greencheck"

// greencheckMaxBodySize limits the registry response size. The payload is a
// small JSON object; anything larger indicates a misbehaving endpoint.
const greencheckMaxBodySize = 64 * 1024

// GreenChecker looks up whether a hostname is on a renewable-energy
// hosting registry.
type GreenChecker interface {
	// Check returns the hosting status for the hostname. Lookup failures
	// are reported as GreenHostingUnknown with a nil error; only context
	// cancellation surfaces as an error.
	Check(ctx context.Context, hostname string) (model.GreenHostingStatus, error)
}

// GreenWebClient queries the Green Web Foundation registry over HTTP.
//
// Design decision: We require an external http.Client rather than creating
// one internally so that proxy configuration and connection pooling are
// controlled by the caller, and tests can point the client at a local
// server.
type GreenWebClient struct {
	// client is the HTTP client used for registry requests.
	client *http.Client

	// endpoint is the greencheck API base URL.
	endpoint string

	// timeout is the per-lookup timeout.
	timeout time.Duration
}

// GreenWebClientOption configures a GreenWebClient.
type GreenWebClientOption func(*GreenWebClient)

// WithEndpoint overrides the registry endpoint. Used in tests and for
// self-hosted registry mirrors.
func WithEndpoint(endpoint string) GreenWebClientOption {
	return func(c *GreenWebClient) {
		c.endpoint = endpoint
	}
}

// WithCheckTimeout sets the per-lookup timeout.
func WithCheckTimeout(timeout time.Duration) GreenWebClientOption {
	return func(c *GreenWebClient) {
		c.timeout = timeout
	}
}

// NewGreenWebClient creates a registry client using the given HTTP client.
func NewGreenWebClient(client *http.Client, opts ...GreenWebClientOption) *GreenWebClient {
	c := &GreenWebClient{
		client:   client,
		endpoint: DefaultGreenCheckEndpoint,
		timeout:  10 * time.Second,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// greencheckResponse is the registry's answer for one hostname.
type greencheckResponse struct {
	Green bool `json:"green"`
}

// Check looks up the hostname on the registry.
// Network errors, non-200 responses, and malformed payloads all degrade to
// GreenHostingUnknown: a registry outage must not block report generation.
func (c *GreenWebClient) Check(ctx context.Context, hostname string) (model.GreenHostingStatus, error) {
	if hostname == "" {
		return model.GreenHostingUnknown, nil
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	reqURL := fmt.Sprintf("%s/%s", c.endpoint, url.PathEscape(hostname))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return model.GreenHostingUnknown, nil
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		// Caller cancellation propagates; lookup timeouts degrade to Unknown.
		if ctx.Err() == context.Canceled {
			return model.GreenHostingUnknown, ctx.Err()
		}
		return model.GreenHostingUnknown, nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return model.GreenHostingUnknown, nil
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, greencheckMaxBodySize))
	if err != nil {
		return model.GreenHostingUnknown, nil
	}

	var result greencheckResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return model.GreenHostingUnknown, nil
	}

	if result.Green {
		return model.GreenHostingGreen, nil
	}
	return model.GreenHostingNotGreen, nil
}
