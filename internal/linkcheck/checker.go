// Package linkcheck verifies external links over HTTP. It is an optional
// stage; only links with a scheme ever reach it, and every failure becomes
// report data rather than a fatal error.
package linkcheck

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sort"
	"sync"
	"time"

	"git.home.luguber.info/inful/docscheck/internal/config"
	"git.home.luguber.info/inful/docscheck/internal/logfields"
	"git.home.luguber.info/inful/docscheck/internal/validate"
)

// Checker performs bounded-concurrency HTTP verification of external links.
type Checker struct {
	client    *http.Client
	cache     *Cache
	userAgent string
	sem       chan struct{}
}

type urlResult struct {
	valid  bool
	status int
	reason string
}

// NewChecker builds a checker from the external-link configuration.
// A CachePath opens (or creates) a SQLite result cache.
func NewChecker(cfg config.ExternalConfig) (*Checker, error) {
	timeout, err := time.ParseDuration(cfg.RequestTimeout)
	if err != nil {
		return nil, fmt.Errorf("invalid request_timeout %q: %w", cfg.RequestTimeout, err)
	}

	client := &http.Client{Timeout: timeout}
	if cfg.FollowRedirects {
		maxRedirects := cfg.MaxRedirects
		client.CheckRedirect = func(req *http.Request, via []*http.Request) error {
			if len(via) >= maxRedirects {
				return fmt.Errorf("stopped after %d redirects", maxRedirects)
			}
			return nil
		}
	} else {
		client.CheckRedirect = func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		}
	}

	c := &Checker{
		client:    client,
		userAgent: cfg.UserAgent,
		sem:       make(chan struct{}, cfg.MaxConcurrent),
	}

	if cfg.CachePath != "" {
		ttl, err := time.ParseDuration(cfg.CacheTTL)
		if err != nil {
			return nil, fmt.Errorf("invalid cache_ttl %q: %w", cfg.CacheTTL, err)
		}
		cache, err := OpenCache(cfg.CachePath, ttl)
		if err != nil {
			return nil, err
		}
		c.cache = cache
	}

	return c, nil
}

// Close releases the result cache, if one is open.
func (c *Checker) Close() error {
	if c.cache != nil {
		return c.cache.Close()
	}
	return nil
}

// Check verifies every distinct URL once and maps failures back to all of the
// documents referencing them. Results are sorted by (source, target).
func (c *Checker) Check(ctx context.Context, links []validate.ExternalLink) []validate.BrokenLink {
	sources := make(map[string][]validate.ExternalLink)
	for _, l := range links {
		sources[l.URL] = append(sources[l.URL], l)
	}

	var mu sync.Mutex
	var wg sync.WaitGroup
	results := make(map[string]urlResult, len(sources))

	for url := range sources {
		wg.Add(1)
		go func(url string) {
			defer wg.Done()
			c.sem <- struct{}{}
			defer func() { <-c.sem }()

			res := c.checkURL(ctx, url)
			mu.Lock()
			results[url] = res
			mu.Unlock()
		}(url)
	}
	wg.Wait()

	var broken []validate.BrokenLink
	for url, res := range results {
		if res.valid {
			continue
		}
		for _, l := range sources[url] {
			broken = append(broken, validate.BrokenLink{
				Source:     l.Source,
				Target:     fmt.Sprintf("%s (%s)", url, res.reason),
				AnchorText: l.AnchorText,
			})
		}
	}
	sort.Slice(broken, func(i, j int) bool {
		if broken[i].Source != broken[j].Source {
			return broken[i].Source < broken[j].Source
		}
		return broken[i].Target < broken[j].Target
	})
	return broken
}

func (c *Checker) checkURL(ctx context.Context, url string) urlResult {
	if c.cache != nil {
		if entry, err := c.cache.Get(ctx, url); err == nil && c.cache.IsFresh(entry) {
			slog.Debug("External link cache hit", logfields.URL(url))
			return urlResult{valid: entry.IsValid, status: entry.Status, reason: entry.Error}
		}
	}

	res := c.request(ctx, url)

	if c.cache != nil {
		err := c.cache.Set(ctx, &CacheEntry{
			URL:         url,
			Status:      res.status,
			IsValid:     res.valid,
			Error:       res.reason,
			LastChecked: time.Now(),
		})
		if err != nil {
			slog.Warn("Failed to cache link result", logfields.URL(url), logfields.Error(err))
		}
	}
	return res
}

// request tries HEAD first and falls back to GET, since some servers reject
// or mishandle HEAD.
func (c *Checker) request(ctx context.Context, url string) urlResult {
	res, retry := c.do(ctx, http.MethodHead, url)
	if retry {
		res, _ = c.do(ctx, http.MethodGet, url)
	}
	return res
}

// do performs one request. retry reports whether a GET retry could change the
// verdict for a failed HEAD.
func (c *Checker) do(ctx context.Context, method, url string) (urlResult, bool) {
	req, err := http.NewRequestWithContext(ctx, method, url, nil)
	if err != nil {
		return urlResult{reason: fmt.Sprintf("invalid URL: %v", err)}, false
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return urlResult{reason: fmt.Sprintf("request failed: %v", err)}, method == http.MethodHead
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 400:
		return urlResult{valid: true, status: resp.StatusCode}, false
	case isAuthRequired(resp.StatusCode):
		// The resource exists; it just will not talk to an anonymous checker.
		return urlResult{valid: true, status: resp.StatusCode}, false
	default:
		r := urlResult{status: resp.StatusCode, reason: fmt.Sprintf("HTTP %d", resp.StatusCode)}
		return r, method == http.MethodHead
	}
}

func isAuthRequired(status int) bool {
	switch status {
	case http.StatusUnauthorized, http.StatusForbidden, http.StatusMethodNotAllowed:
		return true
	}
	return false
}
