// Package sportradar talks to the virtual-sports pages of the upstream
// widget host. The markup there is observed, not contracted: every consumer
// in this package assumes the page shape can change without notice and
// treats parsing as a layered sequence of attempts rather than a schema.
package sportradar

import (
	"context"
	"io"
	"net/http"
	"strings"
	"time"

	crerr "github.com/cockroachdb/errors"
	"golang.org/x/time/rate"

	"github.com/g4biGTJS/vsport-elo/internal/platform/logging"
	"github.com/g4biGTJS/vsport-elo/internal/platform/resilience"
)

const (
	// AcceptHTML asks for the full server-rendered document. The upstream
	// serves an empty application shell to clients that look like API
	// consumers, so the Accept header is functional, not cosmetic.
	AcceptHTML = "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,image/apng,*/*;q=0.8"
	AcceptJSON = "application/json,text/plain;q=0.9,*/*;q=0.8"

	maxDocumentBytes = 6 << 20
)

// browserHeaders mimic a desktop Chrome navigation; several of them change
// what the upstream renders.
var browserHeaders = map[string]string{
	"User-Agent":                "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/122.0.0.0 Safari/537.36",
	"Accept-Language":           "hu-HU,hu;q=0.9,en-US;q=0.8,en;q=0.7",
	"Sec-Fetch-Dest":            "document",
	"Sec-Fetch-Mode":            "navigate",
	"Sec-Fetch-Site":            "same-origin",
	"Sec-Fetch-User":            "?1",
	"Upgrade-Insecure-Requests": "1",
	"Cache-Control":             "no-cache",
	"Pragma":                    "no-cache",
}

// ErrFetch marks genuine I/O failures: timeout, transport error or a non-2xx
// status. A document that fetched fine but yields no records is not a fetch
// error.
var ErrFetch = crerr.New("upstream fetch failed")

// Document is one fetched page, immutable once returned.
type Document struct {
	URL         string
	Status      int
	ContentType string
	Body        string
}

func (d Document) Length() int { return len(d.Body) }

type ClientConfig struct {
	HTTPClient        *http.Client
	Timeout           time.Duration
	Referer           string
	RequestsPerSecond float64
	Logger            *logging.Logger
	CircuitEnabled    bool
	CircuitFailures   int
	CircuitOpenFor    time.Duration
}

// Client issues single-shot GETs with a browser-like header set. It never
// retries: resilience against a flaky upstream comes from trying alternative
// strategies and URLs, not from re-trying the same one.
type Client struct {
	httpClient     *http.Client
	timeout        time.Duration
	referer        string
	logger         *logging.Logger
	breaker        *resilience.CircuitBreaker
	circuitEnabled bool
	limiter        *rate.Limiter
	flight         resilience.SingleFlight
}

func NewClient(cfg ClientConfig) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: timeout}
	}

	rps := cfg.RequestsPerSecond
	if rps <= 0 {
		rps = 4
	}

	failures := cfg.CircuitFailures
	if failures < 1 {
		failures = 5
	}

	return &Client{
		httpClient:     httpClient,
		timeout:        timeout,
		referer:        strings.TrimSpace(cfg.Referer),
		logger:         logger,
		breaker:        resilience.NewCircuitBreaker(failures, cfg.CircuitOpenFor),
		circuitEnabled: cfg.CircuitEnabled,
		limiter:        rate.NewLimiter(rate.Limit(rps), 1),
	}
}

// FetchDocument GETs url with the given Accept header under a hard timeout.
// Concurrent fetches of the same url+accept pair are collapsed.
func (c *Client) FetchDocument(ctx context.Context, url, accept string) (Document, error) {
	if c.circuitEnabled {
		if err := c.breaker.Allow(); err != nil {
			c.logger.WarnContext(ctx, "upstream circuit breaker rejected fetch", "url", url, "state", c.breaker.State())
			return Document{}, crerr.Wrapf(ErrFetch, "circuit open for %s", url)
		}
	}

	out, err, _ := c.flight.Do(url+"\x00"+accept, func() (any, error) {
		doc, fetchErr := c.fetchOnce(ctx, url, accept)
		if c.circuitEnabled {
			if fetchErr != nil {
				c.breaker.RecordFailure()
			} else {
				c.breaker.RecordSuccess()
			}
		}
		return doc, fetchErr
	})
	if err != nil {
		return Document{}, err
	}

	doc, ok := out.(Document)
	if !ok {
		return Document{}, crerr.Newf("unexpected fetch result type %T", out)
	}
	return doc, nil
}

func (c *Client) fetchOnce(ctx context.Context, url, accept string) (Document, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return Document{}, crerr.Wrap(ErrFetch, err.Error())
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Document{}, crerr.Wrapf(ErrFetch, "build request for %s: %v", url, err)
	}
	for key, value := range browserHeaders {
		req.Header.Set(key, value)
	}
	if accept == "" {
		accept = AcceptHTML
	}
	req.Header.Set("Accept", accept)
	if c.referer != "" {
		req.Header.Set("Referer", c.referer)
	}

	started := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.WarnContext(ctx, "upstream fetch failed", "url", url, "error", err)
		return Document{}, crerr.Wrapf(ErrFetch, "get %s: %v", url, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxDocumentBytes))
	if err != nil {
		return Document{}, crerr.Wrapf(ErrFetch, "read %s: %v", url, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.WarnContext(ctx, "upstream returned non-2xx", "url", url, "status", resp.StatusCode)
		return Document{}, crerr.Wrapf(ErrFetch, "get %s: status %d", url, resp.StatusCode)
	}

	c.logger.DebugContext(ctx, "document fetched",
		"url", url,
		"status", resp.StatusCode,
		"length", len(body),
		"duration_ms", time.Since(started).Milliseconds(),
	)

	return Document{
		URL:         url,
		Status:      resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
		Body:        string(body),
	}, nil
}
