package web

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	cache "github.com/patrickmn/go-cache"
	"github.com/temoto/robotstxt"
)

const (
	defaultCrawlDelay = 1 * time.Second
	maxCrawlDelay     = 10 * time.Second
	maxRobotsBytes    = 1 << 20
)

// RobotsChecker fetches robots.txt once per host and answers whether a
// URL may be fetched.
type RobotsChecker struct {
	cache     *cache.Cache
	userAgent string
	client    *http.Client
}

// NewRobotsChecker creates a checker that caches robots.txt for a day.
func NewRobotsChecker(userAgent string, client *http.Client) *RobotsChecker {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &RobotsChecker{
		cache:     cache.New(24*time.Hour, 1*time.Hour),
		userAgent: userAgent,
		client:    client,
	}
}

// CanFetch reports whether rawURL may be fetched and the crawl delay to
// honour. A missing or unreadable robots.txt allows everything.
func (rc *RobotsChecker) CanFetch(ctx context.Context, rawURL string) (bool, time.Duration, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false, 0, fmt.Errorf("invalid URL: %w", err)
	}
	host := u.Scheme + "://" + u.Host

	if cached, found := rc.cache.Get(host); found {
		return rc.test(cached.(*robotstxt.RobotsData), u)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, host+"/robots.txt", nil)
	if err != nil {
		return false, 0, fmt.Errorf("creating robots request: %w", err)
	}
	req.Header.Set("User-Agent", rc.userAgent)

	resp, err := rc.client.Do(req)
	if err != nil {
		return true, defaultCrawlDelay, nil
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxRobotsBytes))
	if err != nil {
		return true, defaultCrawlDelay, nil
	}

	// FromStatusAndBytes allows all on 4xx and disallows all on 5xx.
	data, err := robotstxt.FromStatusAndBytes(resp.StatusCode, body)
	if err != nil {
		return true, defaultCrawlDelay, nil
	}
	rc.cache.Set(host, data, cache.DefaultExpiration)

	return rc.test(data, u)
}

func (rc *RobotsChecker) test(data *robotstxt.RobotsData, u *url.URL) (bool, time.Duration, error) {
	group := data.FindGroup(rc.userAgent)
	path := u.EscapedPath()
	if path == "" {
		path = "/"
	}
	return group.Test(path), crawlDelay(group), nil
}

func crawlDelay(group *robotstxt.Group) time.Duration {
	if group.CrawlDelay <= 0 {
		return defaultCrawlDelay
	}
	if group.CrawlDelay > maxCrawlDelay {
		return maxCrawlDelay
	}
	return group.CrawlDelay
}
