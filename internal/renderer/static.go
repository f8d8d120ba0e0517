package renderer

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"golang.org/x/net/html"
	"golang.org/x/sync/errgroup"

	"github.com/greensight/carbonscan/internal/model"
)

// StaticAnalyzer is a browser-free Renderer fallback. It fetches the page
// HTML, discovers statically referenced resources (images, scripts,
// stylesheets, preloads), downloads each to measure its transfer size, and
// synthesizes a PageTrace from the results.
//
// Compared to a real render it misses dynamically loaded resources, CSS
// background images, and compression-aware transfer sizes, so its page
// weight is a lower bound. It exists for environments where no headless
// renderer service is available.
//
// Design decision: We parse with golang.org/x/net/html rather than regex
// because it correctly handles the malformed HTML common on real pages and
// gives a proper node tree to walk.
type StaticAnalyzer struct {
	// client is the HTTP client for page and resource fetches.
	client *http.Client

	// userAgent identifies the analyzer in requests.
	userAgent string

	// maxBodySize limits each downloaded body.
	maxBodySize int64

	// concurrency limits simultaneous resource measurements.
	concurrency int

	// logger for structured logging.
	logger *slog.Logger
}

// StaticAnalyzerOption configures a StaticAnalyzer.
type StaticAnalyzerOption func(*StaticAnalyzer)

// WithStaticUserAgent sets the User-Agent header for analyzer requests.
func WithStaticUserAgent(ua string) StaticAnalyzerOption {
	return func(a *StaticAnalyzer) {
		a.userAgent = ua
	}
}

// WithStaticMaxBodySize limits each downloaded body.
func WithStaticMaxBodySize(size int64) StaticAnalyzerOption {
	return func(a *StaticAnalyzer) {
		if size > 0 {
			a.maxBodySize = size
		}
	}
}

// WithStaticConcurrency limits simultaneous resource measurements.
func WithStaticConcurrency(n int) StaticAnalyzerOption {
	return func(a *StaticAnalyzer) {
		if n > 0 {
			a.concurrency = n
		}
	}
}

// WithStaticLogger sets a custom logger.
func WithStaticLogger(logger *slog.Logger) StaticAnalyzerOption {
	return func(a *StaticAnalyzer) {
		a.logger = logger
	}
}

// NewStaticAnalyzer creates a StaticAnalyzer using the given HTTP client.
func NewStaticAnalyzer(client *http.Client, opts ...StaticAnalyzerOption) *StaticAnalyzer {
	a := &StaticAnalyzer{
		client:      client,
		userAgent:   "carbonscan/1.0 (+https://github.com/greensight/carbonscan)",
		maxBodySize: 10 * 1024 * 1024,
		concurrency: 6,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// discoveredResource is a resource reference found in the page HTML.
type discoveredResource struct {
	url       string
	initiator string
}

// LoadAndTrace fetches the page, discovers its static resources, measures
// each one, and returns the synthesized trace.
func (a *StaticAnalyzer) LoadAndTrace(ctx context.Context, pageURL string) (*model.PageTrace, error) {
	base, err := url.Parse(pageURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRenderFailed, err)
	}

	pageBytes, body, err := a.fetch(ctx, pageURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRenderFailed, err)
	}

	doc, err := html.Parse(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRenderFailed, err)
	}

	discovered := discoverResources(doc, base)

	entries := make([]model.ResourceTraceEntry, len(discovered))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.concurrency)

	var mu sync.Mutex
	var resourceBytes int64

	for i, res := range discovered {
		g.Go(func() error {
			size, _, err := a.fetch(gctx, res.url)
			if err != nil {
				// A broken resource reference is page data, not an analyzer
				// failure. Record it with zero size; the classifier drops it.
				a.logger.Debug("resource fetch failed",
					"url", res.url,
					"error", err,
				)
				size = 0
			}

			entries[i] = model.ResourceTraceEntry{
				URL:           res.url,
				InitiatorType: res.initiator,
				TransferSize:  size,
			}

			mu.Lock()
			resourceBytes += size
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRenderFailed, err)
	}

	return &model.PageTrace{
		PageWeight: pageBytes + resourceBytes,
		Resources:  entries,
	}, nil
}

// fetch downloads a URL and returns its body size and content.
func (a *StaticAnalyzer) fetch(ctx context.Context, rawURL string) (int64, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("User-Agent", a.userAgent)

	resp, err := a.client.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, nil, fmt.Errorf("status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, a.maxBodySize))
	if err != nil {
		return 0, nil, err
	}
	return int64(len(body)), body, nil
}

// discoverResources walks the HTML tree and collects resource references
// with initiator types matching what a browser would report for the
// triggering element.
func discoverResources(doc *html.Node, base *url.URL) []discoveredResource {
	var resources []discoveredResource
	seen := make(map[string]bool)

	add := func(ref, initiator string) {
		resolved := resolveRef(base, ref)
		if resolved == "" || seen[resolved] {
			return
		}
		seen[resolved] = true
		resources = append(resources, discoveredResource{url: resolved, initiator: initiator})
	}

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "img":
				add(getAttr(n, "src"), "img")
			case "script":
				if src := getAttr(n, "src"); src != "" {
					add(src, "script")
				}
			case "link":
				href := getAttr(n, "href")
				if href == "" {
					break
				}
				rel := strings.ToLower(getAttr(n, "rel"))
				switch rel {
				case "stylesheet":
					add(href, "link")
				case "preload", "prefetch", "icon", "manifest":
					add(href, "link")
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	return resources
}

// resolveRef resolves ref against the page URL. Non-HTTP schemes (data:,
// javascript:) and unparsable references return empty.
func resolveRef(base *url.URL, ref string) string {
	if ref == "" {
		return ""
	}
	u, err := url.Parse(strings.TrimSpace(ref))
	if err != nil {
		return ""
	}
	resolved := base.ResolveReference(u)
	if resolved.Scheme != "http" && resolved.Scheme != "https" {
		return ""
	}
	return resolved.String()
}

// getAttr returns the value of the named attribute, or empty when absent.
func getAttr(n *html.Node, key string) string {
	for _, attr := range n.Attr {
		if attr.Key == key {
			return attr.Val
		}
	}
	return ""
}

var (
	_ Renderer = (*StaticAnalyzer)(nil)
	_ Renderer = (*Client)(nil)
)
