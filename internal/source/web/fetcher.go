// Package web fetches the deadline page over HTTP, politely: robots.txt
// is honoured, requests are rate limited, and recent documents are cached.
package web

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	cache "github.com/patrickmn/go-cache"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/nhle/deadline-harvester/internal/credential"
	"github.com/nhle/deadline-harvester/internal/metrics"
	"github.com/nhle/deadline-harvester/internal/source"
)

// ErrDisallowed is returned when robots.txt forbids fetching the page.
var ErrDisallowed = errors.New("fetching disallowed by robots.txt")

const (
	defaultUserAgent = "deadline-harvester/1.0"
	defaultTimeout   = 30 * time.Second
	maxPageBytes     = 10 << 20
	maxBackoff       = 30 * time.Second
)

// Config configures a Fetcher.
type Config struct {
	URL       string
	UserAgent string
	Timeout   time.Duration

	// CacheTTL is how long a fetched document is reused. Zero disables
	// the cache.
	CacheTTL time.Duration

	// RatePerSec bounds requests to the page host. Zero means one request
	// per second.
	RatePerSec float64

	IgnoreRobots bool

	// CredentialKey names a bearer token in the credential store. Empty
	// means anonymous requests.
	CredentialKey string

	MaxRetries int
}

// Fetcher is a source.Source for a page on the web.
type Fetcher struct {
	cfg     Config
	client  *http.Client
	robots  *RobotsChecker
	limiter *rate.Limiter
	docs    *cache.Cache
	creds   credential.Getter
	metrics *metrics.Metrics
	log     logrus.FieldLogger
	now     func() time.Time
}

// New creates a Fetcher. creds and m may be nil.
func New(cfg Config, creds credential.Getter, m *metrics.Metrics, log logrus.FieldLogger) (*Fetcher, error) {
	u, err := url.Parse(cfg.URL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("source url %q must be an absolute http(s) URL", cfg.URL)
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = defaultUserAgent
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.RatePerSec <= 0 {
		cfg.RatePerSec = 1
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if log == nil {
		log = logrus.StandardLogger()
	}

	client := &http.Client{Timeout: cfg.Timeout}
	return &Fetcher{
		cfg:     cfg,
		client:  client,
		robots:  NewRobotsChecker(cfg.UserAgent, client),
		limiter: rate.NewLimiter(rate.Limit(cfg.RatePerSec), 1),
		docs:    cache.New(cfg.CacheTTL, 10*time.Minute),
		creds:   creds,
		metrics: m,
		log:     log.WithField("source", cfg.URL),
		now:     time.Now,
	}, nil
}

// Type implements source.Source.
func (f *Fetcher) Type() source.SourceType { return source.SourceTypeWeb }

// ValidateConnection fetches the page, bypassing the cache.
func (f *Fetcher) ValidateConnection(ctx context.Context) (string, error) {
	body, status, err := f.get(ctx)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s reachable (%d, %d bytes)", f.cfg.URL, status, len(body)), nil
}

// Fetch returns the parsed page, from the cache when it is fresh.
func (f *Fetcher) Fetch(ctx context.Context) (*source.Document, error) {
	if f.cfg.CacheTTL > 0 {
		if cached, ok := f.docs.Get(f.cfg.URL); ok {
			f.metrics.RecordFetch("cached")
			return cached.(*source.Document), nil
		}
	}

	body, _, err := f.get(ctx)
	if err != nil {
		return nil, err
	}

	doc, err := source.Parse(bytes.NewReader(body), f.cfg.URL, f.now())
	if err != nil {
		f.metrics.RecordFetch("error")
		return nil, err
	}
	if f.cfg.CacheTTL > 0 {
		f.docs.Set(f.cfg.URL, doc, cache.DefaultExpiration)
	}
	return doc, nil
}

// get performs the robots check, waits for the limiter and downloads the
// page with retries.
func (f *Fetcher) get(ctx context.Context) ([]byte, int, error) {
	if !f.cfg.IgnoreRobots {
		allowed, delay, err := f.robots.CanFetch(ctx, f.cfg.URL)
		if err != nil {
			f.metrics.RecordFetch("error")
			return nil, 0, err
		}
		if !allowed {
			f.metrics.RecordFetch("disallowed")
			return nil, 0, fmt.Errorf("%s: %w", f.cfg.URL, ErrDisallowed)
		}
		if every := rate.Every(delay); every < f.limiter.Limit() {
			f.limiter.SetLimit(every)
		}
	}

	token, err := f.token()
	if err != nil {
		f.metrics.RecordFetch("error")
		return nil, 0, err
	}

	body, status, err := f.do(ctx, token)
	if err != nil {
		f.metrics.RecordFetch("error")
		return nil, status, err
	}
	f.metrics.RecordFetch("ok")
	return body, status, nil
}

func (f *Fetcher) token() (string, error) {
	if f.cfg.CredentialKey == "" || f.creds == nil {
		return "", nil
	}
	token, err := f.creds.Get(f.cfg.CredentialKey)
	if credential.IsNotFound(err) {
		f.log.WithField("key", f.cfg.CredentialKey).Warn("credential not set; fetching anonymously")
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("loading source credential: %w", err)
	}
	return token, nil
}

// do issues the GET, retrying with exponential backoff on 429 and 5xx.
func (f *Fetcher) do(ctx context.Context, token string) ([]byte, int, error) {
	var lastErr error
	for attempt := 0; attempt <= f.cfg.MaxRetries; attempt++ {
		if err := f.limiter.Wait(ctx); err != nil {
			return nil, 0, err
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.cfg.URL, nil)
		if err != nil {
			return nil, 0, fmt.Errorf("creating request: %w", err)
		}
		req.Header.Set("User-Agent", f.cfg.UserAgent)
		req.Header.Set("Accept", "text/html,application/xhtml+xml")
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}

		resp, err := f.client.Do(req)
		if err != nil {
			return nil, 0, fmt.Errorf("executing request GET %s: %w", f.cfg.URL, err)
		}

		body, readErr := io.ReadAll(io.LimitReader(resp.Body, maxPageBytes))
		resp.Body.Close()
		if readErr != nil {
			return nil, resp.StatusCode, fmt.Errorf("reading response body: %w", readErr)
		}

		switch {
		case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
			lastErr = fmt.Errorf("status %d on GET %s", resp.StatusCode, f.cfg.URL)
			wait := retryAfterDuration(resp, attempt)
			f.log.WithFields(logrus.Fields{
				"status":  resp.StatusCode,
				"attempt": attempt + 1,
				"wait":    wait.String(),
			}).Warn("retrying source fetch")

			select {
			case <-ctx.Done():
				return nil, resp.StatusCode, ctx.Err()
			case <-time.After(wait):
				continue
			}

		case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
			return nil, resp.StatusCode, &source.AuthError{
				SourceType: source.SourceTypeWeb,
				Message:    fmt.Sprintf("%d from %s: check the token stored under %q", resp.StatusCode, f.cfg.URL, f.cfg.CredentialKey),
			}

		case resp.StatusCode < 200 || resp.StatusCode >= 300:
			return nil, resp.StatusCode, fmt.Errorf("unexpected status %d on GET %s", resp.StatusCode, f.cfg.URL)
		}

		return body, resp.StatusCode, nil
	}

	return nil, 0, fmt.Errorf("max retries (%d) exceeded: %w", f.cfg.MaxRetries, lastErr)
}

// retryAfterDuration reads the Retry-After header and computes a wait
// duration. Falls back to exponential backoff if the header is missing.
func retryAfterDuration(resp *http.Response, attempt int) time.Duration {
	if header := resp.Header.Get("Retry-After"); header != "" {
		if seconds, err := strconv.Atoi(header); err == nil {
			return time.Duration(seconds) * time.Second
		}
	}

	// Exponential backoff: 1s, 2s, 4s, ...
	backoff := time.Duration(1<<uint(attempt)) * time.Second
	if backoff > maxBackoff {
		backoff = maxBackoff
	}
	return backoff
}
