package aws

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"riprice/internal/aws/pricing/cache"
	"riprice/internal/config"
)

var fastRetry = &config.RateLimitConfig{
	RequestsPerSecond: 100,
	MaxRetries:        2,
	BaseDelay:         time.Millisecond,
	MaxDelay:          5 * time.Millisecond,
}

func newTestFetcher(t *testing.T, srv *httptest.Server) *OfferFetcher {
	t.Helper()
	oc, err := cache.NewOfferCache(t.TempDir())
	require.NoError(t, err)

	f, err := NewOfferFetcher(FetcherConfig{
		URLTemplate: srv.URL + "/offers/%s/current/index.%s",
		Cache:       oc,
		Client:      srv.Client(),
		RateLimit:   fastRetry,
	})
	require.NoError(t, err)
	t.Cleanup(f.Close)
	return f
}

func TestFetchUsesETag(t *testing.T) {
	var requests int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&requests, 1)
		assert.Equal(t, "/offers/AmazonRDS/current/index.csv", r.URL.Path)
		if r.Header.Get("If-None-Match") == `"v1"` {
			w.WriteHeader(http.StatusNotModified)
			return
		}
		w.Header().Set("ETag", `"v1"`)
		_, _ = w.Write([]byte("\"SKU\",\"OfferTermCode\"\n"))
	}))
	defer srv.Close()

	f := newTestFetcher(t, srv)

	first, err := f.Fetch(context.Background(), "AmazonRDS", "csv")
	require.NoError(t, err)
	assert.False(t, first.FromCache)
	assert.Equal(t, "AmazonRDS", first.Service)
	assert.Equal(t, int64(22), first.Size)

	data, err := os.ReadFile(first.Path)
	require.NoError(t, err)
	assert.Equal(t, "\"SKU\",\"OfferTermCode\"\n", string(data))

	second, err := f.Fetch(context.Background(), "AmazonRDS", "csv")
	require.NoError(t, err)
	assert.True(t, second.FromCache)
	assert.Equal(t, first.Path, second.Path)
	assert.Equal(t, int32(2), atomic.LoadInt32(&requests))
}

func TestFetchRetriesServerErrors(t *testing.T) {
	var requests int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&requests, 1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte("{}"))
	}))
	defer srv.Close()

	f := newTestFetcher(t, srv)
	res, err := f.Fetch(context.Background(), "AmazonES", "json")
	require.NoError(t, err)
	assert.Equal(t, int64(2), res.Size)
	assert.Equal(t, int32(2), atomic.LoadInt32(&requests))
	assert.Equal(t, 0, f.limiter.Failures())
}

func TestFetchNotFoundIsNotRetried(t *testing.T) {
	var requests int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&requests, 1)
		http.NotFound(w, r)
	}))
	defer srv.Close()

	f := newTestFetcher(t, srv)
	_, err := f.Fetch(context.Background(), "AmazonNope", "csv")
	require.Error(t, err)

	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusNotFound, statusErr.StatusCode)
	assert.Equal(t, int32(1), atomic.LoadInt32(&requests))
}

func TestFetchGivesUp(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	f := newTestFetcher(t, srv)
	_, err := f.Fetch(context.Background(), "AmazonRDS", "csv")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "after 3 attempts")
}

func TestNewOfferFetcherRequiresCache(t *testing.T) {
	_, err := NewOfferFetcher(FetcherConfig{})
	assert.Error(t, err)
}

func TestOfferURL(t *testing.T) {
	oc, err := cache.NewOfferCache(t.TempDir())
	require.NoError(t, err)
	f, err := NewOfferFetcher(FetcherConfig{Cache: oc})
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t,
		"https://pricing.us-east-1.amazonaws.com/offers/v1.0/aws/AmazonElastiCache/current/index.json",
		f.URL("AmazonElastiCache", "json"))
}
