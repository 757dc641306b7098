package fetcher

import (
	"context"
	"io"
	"math"
	"math/rand/v2"
	"net/http"
	"net/url"
	"os"
	"sync"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// LibraryHost serves the Fama-French data library.
const LibraryHost = "mba.tuck.dartmouth.edu"

// HTTPOptions configures the HTTP fetcher.
type HTTPOptions struct {
	UserAgent  string
	Timeout    time.Duration
	MaxRetries int
	// Limiters overrides the per-host limiters from DefaultLimiters.
	Limiters map[string]*AdaptiveLimiter
}

// AdaptiveLimiter wraps a rate.Limiter with adaptive rate adjustment.
// On success it increases the rate by 20% (up to 2x initial).
// On 429 it halves the rate (down to initial/4 minimum).
type AdaptiveLimiter struct {
	mu          sync.Mutex
	limiter     *rate.Limiter
	maxRate     rate.Limit
	minRate     rate.Limit
	currentRate rate.Limit
}

// NewAdaptiveLimiter creates an adaptive rate limiter that auto-tunes.
func NewAdaptiveLimiter(initialRate rate.Limit, burst int) *AdaptiveLimiter {
	return &AdaptiveLimiter{
		limiter:     rate.NewLimiter(initialRate, burst),
		maxRate:     initialRate * 2,
		minRate:     initialRate / 4,
		currentRate: initialRate,
	}
}

// Wait blocks until the limiter allows an event.
func (a *AdaptiveLimiter) Wait(ctx context.Context) error {
	return a.limiter.Wait(ctx)
}

// OnSuccess increases the rate by 20%, up to 2x initial.
func (a *AdaptiveLimiter) OnSuccess() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.setLocked(min(a.currentRate*1.2, a.maxRate))
}

// OnRateLimit halves the rate on 429 responses.
func (a *AdaptiveLimiter) OnRateLimit() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.setLocked(max(a.currentRate*0.5, a.minRate))
	zap.L().Warn("adaptive rate limit: reducing rate after 429",
		zap.Float64("new_rate", float64(a.currentRate)),
	)
}

func (a *AdaptiveLimiter) setLocked(r rate.Limit) {
	a.currentRate = r
	a.limiter.SetLimit(r)
}

// Limit returns the current rate limit.
func (a *AdaptiveLimiter) Limit() rate.Limit {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.currentRate
}

// DefaultLimiters returns the per-host limiters for known data hosts. The
// library is a university web server, so requests are kept gentle.
func DefaultLimiters() map[string]*AdaptiveLimiter {
	return map[string]*AdaptiveLimiter{
		LibraryHost: NewAdaptiveLimiter(2, 2),
	}
}

// HTTPFetcher implements Fetcher using net/http with retry and rate limiting.
type HTTPFetcher struct {
	client *http.Client
	opts   HTTPOptions

	mu       sync.Mutex
	limiters map[string]*AdaptiveLimiter
}

// NewHTTPFetcher creates a new HTTPFetcher with the given options.
func NewHTTPFetcher(opts HTTPOptions) *HTTPFetcher {
	if opts.Timeout == 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.MaxRetries == 0 {
		opts.MaxRetries = 3
	}
	if opts.UserAgent == "" {
		opts.UserAgent = "ffindustry/1.0"
	}
	limiters := DefaultLimiters()
	for host, lim := range opts.Limiters {
		limiters[host] = lim
	}
	return &HTTPFetcher{
		client: &http.Client{
			Timeout: opts.Timeout,
			Transport: &http.Transport{
				MaxIdleConnsPerHost: 4,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		opts:     opts,
		limiters: limiters,
	}
}

// limiterFor returns the limiter for the URL's host, creating a default
// one for hosts seen for the first time.
func (f *HTTPFetcher) limiterFor(rawURL string) *AdaptiveLimiter {
	host := ""
	if u, err := url.Parse(rawURL); err == nil {
		host = u.Host
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	lim, ok := f.limiters[host]
	if !ok {
		lim = NewAdaptiveLimiter(10, 10)
		f.limiters[host] = lim
	}
	return lim
}

func (f *HTTPFetcher) doWithRetry(ctx context.Context, req *http.Request) (*http.Response, error) {
	lim := f.limiterFor(req.URL.String())

	var lastErr error
	for attempt := range f.opts.MaxRetries {
		if err := lim.Wait(ctx); err != nil {
			return nil, eris.Wrap(err, "rate limiter wait")
		}

		resp, err := f.client.Do(req.Clone(ctx))
		if err != nil {
			lastErr = err
			zap.L().Warn("http request failed, retrying",
				zap.String("url", req.URL.String()),
				zap.Int("attempt", attempt+1),
				zap.Error(err),
			)
			f.backoff(ctx, attempt)
			continue
		}

		switch {
		case resp.StatusCode == http.StatusTooManyRequests:
			_ = resp.Body.Close()
			lastErr = eris.Errorf("http 429 from %s", req.URL.String())
			lim.OnRateLimit()
		case resp.StatusCode >= 500:
			_ = resp.Body.Close()
			lastErr = eris.Errorf("http %d from %s", resp.StatusCode, req.URL.String())
			zap.L().Warn("server error, retrying",
				zap.String("url", req.URL.String()),
				zap.Int("status", resp.StatusCode),
				zap.Int("attempt", attempt+1),
			)
		default:
			lim.OnSuccess()
			return resp, nil
		}
		f.backoff(ctx, attempt)
	}

	return nil, eris.Wrap(lastErr, "all retries exhausted")
}

func (f *HTTPFetcher) backoff(ctx context.Context, attempt int) {
	const (
		base       = 500 * time.Millisecond
		maxBackoff = 15 * time.Second
	)
	d := min(time.Duration(float64(base)*math.Pow(2, float64(attempt))), maxBackoff)
	d += time.Duration(rand.Int64N(int64(d) / 2))

	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}

// Download fetches the URL and returns the response body.
func (f *HTTPFetcher) Download(ctx context.Context, rawURL string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, eris.Wrap(err, "create request")
	}
	req.Header.Set("User-Agent", f.opts.UserAgent)

	resp, err := f.doWithRetry(ctx, req)
	if err != nil {
		return nil, eris.Wrap(err, "download")
	}

	if resp.StatusCode != http.StatusOK {
		_ = resp.Body.Close()
		return nil, eris.Errorf("download: unexpected status %d from %s", resp.StatusCode, rawURL)
	}

	return resp.Body, nil
}

// DownloadToFile fetches the URL and writes it to the given path.
func (f *HTTPFetcher) DownloadToFile(ctx context.Context, rawURL string, path string) (int64, error) {
	body, err := f.Download(ctx, rawURL)
	if err != nil {
		return 0, err
	}
	defer body.Close() //nolint:errcheck

	file, err := os.Create(path)
	if err != nil {
		return 0, eris.Wrap(err, "create file")
	}
	defer file.Close() //nolint:errcheck

	n, err := io.Copy(file, body)
	if err != nil {
		return n, eris.Wrap(err, "write file")
	}

	return n, nil
}
