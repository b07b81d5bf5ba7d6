package linkcheck

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/docscheck/internal/config"
	"git.home.luguber.info/inful/docscheck/internal/validate"
)

func testConfig() config.ExternalConfig {
	cfg := config.Default().External
	cfg.Enabled = true
	return cfg
}

func newTestChecker(t *testing.T, cfg config.ExternalConfig) *Checker {
	t.Helper()
	c, err := NewChecker(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestCheck_ValidAndBrokenLinks(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/ok" {
			w.WriteHeader(http.StatusOK)
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	checker := newTestChecker(t, testConfig())
	broken := checker.Check(context.Background(), []validate.ExternalLink{
		{Source: "index.md", URL: srv.URL + "/ok", AnchorText: "OK"},
		{Source: "index.md", URL: srv.URL + "/gone", AnchorText: "Gone"},
	})

	require.Len(t, broken, 1)
	assert.Equal(t, "index.md", broken[0].Source)
	assert.Contains(t, broken[0].Target, "/gone")
	assert.Contains(t, broken[0].Target, "HTTP 404")
}

func TestCheck_AuthProtectedCountsAsAlive(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	checker := newTestChecker(t, testConfig())
	broken := checker.Check(context.Background(), []validate.ExternalLink{
		{Source: "index.md", URL: srv.URL, AnchorText: "Private"},
	})
	assert.Empty(t, broken)
}

func TestCheck_HeadFallsBackToGet(t *testing.T) {
	var gets atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodHead {
			w.WriteHeader(http.StatusNotImplemented)
			return
		}
		gets.Add(1)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	checker := newTestChecker(t, testConfig())
	broken := checker.Check(context.Background(), []validate.ExternalLink{
		{Source: "index.md", URL: srv.URL, AnchorText: "Picky"},
	})
	assert.Empty(t, broken)
	assert.Equal(t, int32(1), gets.Load())
}

func TestCheck_DuplicateURLRequestedOnce(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	checker := newTestChecker(t, testConfig())
	broken := checker.Check(context.Background(), []validate.ExternalLink{
		{Source: "a.md", URL: srv.URL},
		{Source: "b.md", URL: srv.URL},
		{Source: "c.md", URL: srv.URL},
	})
	assert.Empty(t, broken)
	assert.Equal(t, int32(1), hits.Load())
}

func TestCheck_BrokenURLReportsAllSources(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	checker := newTestChecker(t, testConfig())
	broken := checker.Check(context.Background(), []validate.ExternalLink{
		{Source: "b.md", URL: srv.URL},
		{Source: "a.md", URL: srv.URL},
	})

	require.Len(t, broken, 2)
	assert.Equal(t, "a.md", broken[0].Source)
	assert.Equal(t, "b.md", broken[1].Source)
}

func TestCheck_CacheAvoidsRepeatRequests(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	cfg := testConfig()
	cfg.CachePath = ":memory:"
	checker := newTestChecker(t, cfg)

	links := []validate.ExternalLink{{Source: "index.md", URL: srv.URL}}
	assert.Empty(t, checker.Check(context.Background(), links))
	assert.Empty(t, checker.Check(context.Background(), links))
	assert.Equal(t, int32(1), hits.Load())
}

func TestCheck_UnreachableHostIsBroken(t *testing.T) {
	cfg := testConfig()
	cfg.RequestTimeout = "500ms"
	checker := newTestChecker(t, cfg)

	broken := checker.Check(context.Background(), []validate.ExternalLink{
		{Source: "index.md", URL: "http://127.0.0.1:1/nothing"},
	})
	require.Len(t, broken, 1)
	assert.Contains(t, broken[0].Target, "request failed")
}

func TestNewChecker_InvalidTimeoutRejected(t *testing.T) {
	cfg := testConfig()
	cfg.RequestTimeout = "not-a-duration"
	_, err := NewChecker(cfg)
	require.Error(t, err)
}

func TestCache_RoundTripAndTTL(t *testing.T) {
	cache, err := OpenCache(":memory:", time.Hour)
	require.NoError(t, err)
	defer cache.Close()

	ctx := context.Background()

	missing, err := cache.Get(ctx, "https://example.com")
	require.NoError(t, err)
	assert.Nil(t, missing)

	entry := &CacheEntry{
		URL:         "https://example.com",
		Status:      200,
		IsValid:     true,
		LastChecked: time.Now(),
	}
	require.NoError(t, cache.Set(ctx, entry))

	got, err := cache.Get(ctx, "https://example.com")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.True(t, got.IsValid)
	assert.Equal(t, 200, got.Status)
	assert.True(t, cache.IsFresh(got))

	stale := &CacheEntry{URL: "https://old.example.com", LastChecked: time.Now().Add(-2 * time.Hour)}
	require.NoError(t, cache.Set(ctx, stale))
	old, err := cache.Get(ctx, "https://old.example.com")
	require.NoError(t, err)
	assert.False(t, cache.IsFresh(old))
}
