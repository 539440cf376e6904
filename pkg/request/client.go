package request

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"nueslify/pkg/cache"
	"nueslify/pkg/config"
	"nueslify/pkg/logging"
	"nueslify/pkg/tracker"
	"nueslify/pkg/version"
)

var defaultUserAgent = fmt.Sprintf("nueslify/%s (segment mixer)", version.Version)

// StatusError is returned for non-retryable HTTP error responses.
type StatusError struct {
	Code       int
	Body       string
	RetryAfter time.Duration // from the Retry-After header, if any
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("api error: status %d", e.Code)
	}
	return fmt.Sprintf("api error: status %d: %s", e.Code, e.Body)
}

// Client handles HTTP requests with queuing, caching, and tracking.
type Client struct {
	httpClient *http.Client
	cache      cache.Cacher
	tracker    *tracker.Tracker
	backoff    *ProviderBackoff

	maxAttempts int
	baseDelay   time.Duration
	gap         time.Duration

	// Queues per provider (domain)
	queues map[string]chan job
	mu     sync.Mutex
}

type job struct {
	req      *http.Request
	headers  map[string]string
	cacheKey string
	respChan chan jobResult
}

type jobResult struct {
	body []byte
	err  error
}

// New creates a new Client. A nil cache disables response caching.
func New(c cache.Cacher, t *tracker.Tracker, cfg config.RequestConfig) *Client {
	if c == nil {
		c = cache.Noop{}
	}
	if t == nil {
		t = tracker.New()
	}
	attempts := cfg.Retries
	if attempts <= 0 {
		attempts = 1
	}
	timeout := time.Duration(cfg.Timeout)
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	base := time.Duration(cfg.Backoff.BaseDelay)
	if base <= 0 {
		base = 500 * time.Millisecond
	}
	maxDelay := time.Duration(cfg.Backoff.MaxDelay)
	if maxDelay < base {
		maxDelay = base
	}
	return &Client{
		httpClient:  &http.Client{Timeout: timeout},
		cache:       c,
		tracker:     t,
		backoff:     NewProviderBackoff(base, maxDelay),
		maxAttempts: attempts,
		baseDelay:   base,
		gap:         100 * time.Millisecond,
		queues:      make(map[string]chan job),
	}
}

// GetWithHeaders performs a GET request with custom headers and optional caching.
func (c *Client) GetWithHeaders(ctx context.Context, u string, headers map[string]string, cacheKey string) ([]byte, error) {
	return c.do(ctx, http.MethodGet, u, nil, headers, cacheKey)
}

// PostWithHeaders performs an uncached POST request.
func (c *Client) PostWithHeaders(ctx context.Context, u string, body []byte, headers map[string]string) ([]byte, error) {
	return c.do(ctx, http.MethodPost, u, body, headers, "")
}

func (c *Client) do(ctx context.Context, method, u string, body []byte, headers map[string]string, cacheKey string) ([]byte, error) {
	parsedURL, err := url.Parse(u)
	if err != nil {
		return nil, fmt.Errorf("invalid url: %w", err)
	}
	provider := normalizeProvider(parsedURL.Host)

	if cacheKey != "" {
		if val, hit := c.cache.GetCache(ctx, cacheKey); hit {
			c.tracker.TrackCacheHit(provider)
			slog.Debug("Cache Hit", "provider", provider, "key", cacheKey)
			return val, nil
		}
		c.tracker.TrackCacheMiss(provider)
	}

	var rdr io.Reader = http.NoBody
	if body != nil {
		rdr = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, u, rdr)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		// retries need a fresh reader
		req.GetBody = func() (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader(body)), nil
		}
	}

	respChan := make(chan jobResult, 1)
	c.dispatch(provider, job{req: req, headers: headers, cacheKey: cacheKey, respChan: respChan})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-respChan:
		return res.body, res.err
	}
}

func normalizeProvider(host string) string {
	host = strings.ToLower(host)
	switch {
	case strings.HasSuffix(host, "googleapis.com"):
		return "gemini"
	case strings.HasSuffix(host, "spotify.com"):
		return "spotify"
	case strings.HasSuffix(host, "openai.com"):
		return "openai"
	case strings.HasSuffix(host, "groq.com"):
		return "groq"
	}
	return host
}

// dispatch sends the job to the provider's queue, creating the queue/worker if needed.
func (c *Client) dispatch(provider string, j job) {
	c.mu.Lock()
	q, ok := c.queues[provider]
	if !ok {
		q = make(chan job, 100)
		c.queues[provider] = q
		go c.worker(provider, q)
	}
	c.mu.Unlock()

	// Blocks when the queue is full, throttling the caller
	select {
	case q <- j:
	case <-j.req.Context().Done():
		j.respChan <- jobResult{err: j.req.Context().Err()}
	}
}

// worker processes requests for a specific provider sequentially.
func (c *Client) worker(provider string, q <-chan job) {
	for j := range q {
		if j.req.Context().Err() != nil {
			slog.Warn("Job dropped from queue (context expired)", "provider", provider, "error", j.req.Context().Err())
			j.respChan <- jobResult{err: j.req.Context().Err()}
			continue
		}

		uaSet := false
		for k, v := range j.headers {
			j.req.Header.Set(k, v)
			if http.CanonicalHeaderKey(k) == "User-Agent" {
				uaSet = true
			}
		}
		if !uaSet {
			j.req.Header.Set("User-Agent", defaultUserAgent)
		}

		if err := c.backoff.Wait(j.req.Context(), provider); err != nil {
			j.respChan <- jobResult{err: err}
			continue
		}
		start := time.Now()
		body, err := c.executeWithBackoff(j.req)
		took := time.Since(start)

		if err == nil {
			c.backoff.RecordSuccess(provider)
			c.tracker.TrackAPISuccess(provider, took)
			if j.cacheKey != "" {
				if err := c.cache.SetCache(context.Background(), j.cacheKey, body); err != nil {
					slog.Error("Failed to cache response", "url", j.req.URL, "error", err)
				}
			}
		} else {
			var retryAfter time.Duration
			var se *StatusError
			if errors.As(err, &se) {
				retryAfter = se.RetryAfter
			}
			c.backoff.RecordFailure(provider, retryAfter)
			c.tracker.TrackAPIFailure(provider)
		}
		logging.RequestLogger.Info("request",
			"provider", provider,
			"method", j.req.Method,
			"path", j.req.URL.Path,
			"took", took,
			"error", err)

		j.respChan <- jobResult{body: body, err: err}

		if c.gap > 0 {
			time.Sleep(c.gap)
		}
	}
}

// executeWithBackoff attempts the request with exponential backoff on retryable errors.
func (c *Client) executeWithBackoff(req *http.Request) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt < c.maxAttempts; attempt++ {
		if req.Context().Err() != nil {
			return nil, req.Context().Err()
		}
		if attempt > 0 && req.GetBody != nil {
			b, err := req.GetBody()
			if err != nil {
				return nil, err
			}
			req.Body = b
		}

		slog.Debug("Network Request", "host", req.URL.Host, "path", req.URL.Path, "attempt", attempt+1)
		resp, err := c.httpClient.Do(req)
		if err != nil {
			if req.Context().Err() != nil {
				return nil, req.Context().Err()
			}
			slog.Warn("Request failed, retrying", "host", req.URL.Host, "attempt", attempt+1, "error", err)
			lastErr = err
			if !c.sleep(req.Context(), attempt) {
				return nil, req.Context().Err()
			}
			continue
		}

		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			resp.Body.Close()
			slog.Warn("API Backoff", "status", resp.StatusCode, "host", req.URL.Host, "attempt", attempt+1)
			lastErr = &StatusError{
				Code:       resp.StatusCode,
				RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After"), time.Now()),
			}
			if !c.sleep(req.Context(), attempt) {
				return nil, req.Context().Err()
			}
			continue
		}

		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			return nil, fmt.Errorf("read error: %w", err)
		}
		if resp.StatusCode >= 400 {
			return nil, &StatusError{Code: resp.StatusCode, Body: truncate(string(body), 512)}
		}
		return body, nil
	}

	return nil, fmt.Errorf("max retries exceeded: %w", lastErr)
}

func (c *Client) sleep(ctx context.Context, attempt int) bool {
	select {
	case <-time.After(c.baseDelay << attempt):
		return true
	case <-ctx.Done():
		return false
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
