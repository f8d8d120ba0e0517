package renderer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/greensight/carbonscan/internal/model"
)

// ErrRenderFailed is returned when the renderer could not produce a trace
// (navigation error, collector timeout, unreachable renderer service).
// It is a recoverable "no report" outcome, never fatal to the process.
var ErrRenderFailed = errors.New("page render failed")

// Renderer loads a URL in a (possibly headless) browser context and returns
// the raw performance trace captured during the load.
type Renderer interface {
	LoadAndTrace(ctx context.Context, pageURL string) (*model.PageTrace, error)
}

// DefaultCollectorScriptPath is where the emissions collector script is
// served from on the analyzed site.
const DefaultCollectorScriptPath = "/_content/carbonscan/scripts/resource-checker.js"

// defaultRenderTimeout bounds a full render including lazy-loaded resources.
const defaultRenderTimeout = 60 * time.Second

// traceMaxBodySize limits the trace payload size. Traces for very heavy
// pages run to a few hundred kilobytes; 5MB leaves ample headroom while
// preventing memory exhaustion from a misbehaving renderer.
const traceMaxBodySize = 5 * 1024 * 1024

// Client requests traces from a headless-renderer service. The service
// navigates to the page, injects the collector script, waits for the
// emissions payload, and returns it verbatim.
//
// Design decision: The collector script path and version are explicit
// construction-time configuration rather than process-wide state, so two
// clients with different script versions can coexist (e.g. during a rolling
// upgrade of the collector).
type Client struct {
	// client is the HTTP client used to reach the renderer service.
	client *http.Client

	// endpoint is the renderer service base URL.
	endpoint string

	// scriptPath is the collector script path injected into pages.
	scriptPath string

	// scriptVersion is appended to the script URL as a cache buster.
	scriptVersion string

	// timeout is the per-render timeout.
	timeout time.Duration

	// maxBodySize limits the trace payload size.
	maxBodySize int64
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithCollectorScript sets the collector script path and version.
func WithCollectorScript(path, version string) ClientOption {
	return func(c *Client) {
		if path != "" {
			c.scriptPath = path
		}
		c.scriptVersion = version
	}
}

// WithRenderTimeout sets the per-render timeout.
func WithRenderTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		if timeout > 0 {
			c.timeout = timeout
		}
	}
}

// WithMaxBodySize sets the maximum accepted trace payload size.
func WithMaxBodySize(size int64) ClientOption {
	return func(c *Client) {
		if size > 0 {
			c.maxBodySize = size
		}
	}
}

// NewClient creates a renderer-service client.
// The endpoint is the service base URL; the client must be pre-configured
// by the caller (proxies, TLS) and is shared across renders.
func NewClient(client *http.Client, endpoint string, opts ...ClientOption) *Client {
	c := &Client{
		client:      client,
		endpoint:    endpoint,
		scriptPath:  DefaultCollectorScriptPath,
		timeout:     defaultRenderTimeout,
		maxBodySize: traceMaxBodySize,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// LoadAndTrace asks the renderer service to load pageURL and returns the
// validated trace. All acquisition failures are wrapped in ErrRenderFailed.
func (c *Client) LoadAndTrace(ctx context.Context, pageURL string) (*model.PageTrace, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	script := c.scriptPath
	if c.scriptVersion != "" {
		script = fmt.Sprintf("%s?v=%s", c.scriptPath, url.QueryEscape(c.scriptVersion))
	}

	q := url.Values{}
	q.Set("url", pageURL)
	q.Set("script", script)
	reqURL := fmt.Sprintf("%s/trace?%s", c.endpoint, q.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRenderFailed, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRenderFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: renderer returned status %d", ErrRenderFailed, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRenderFailed, err)
	}

	trace, err := ParseTrace(body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRenderFailed, err)
	}

	return trace, nil
}
