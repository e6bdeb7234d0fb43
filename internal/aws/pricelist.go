package aws

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/schollz/progressbar/v3"

	"riprice/internal/aws/pricing/cache"
	"riprice/internal/config"
	"riprice/internal/logging"
)

// FetcherConfig configures an OfferFetcher
type FetcherConfig struct {
	// URLTemplate receives the service code and the format, in that order
	URLTemplate  string
	Cache        *cache.OfferCache
	Client       *http.Client
	RateLimit    *config.RateLimitConfig
	ShowProgress bool
}

// FetchResult describes a fetched offer file
type FetchResult struct {
	Service   string
	Format    string
	Path      string
	URL       string
	Size      int64
	FromCache bool
}

// StatusError is returned for unexpected HTTP responses
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d fetching %s", e.StatusCode, e.URL)
}

// retryable reports whether a later attempt may succeed
func (e *StatusError) retryable() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500
}

// OfferFetcher downloads bulk offer files into the offer cache
type OfferFetcher struct {
	urlTemplate  string
	cache        *cache.OfferCache
	client       *http.Client
	limiter      *RateLimiter
	showProgress bool
}

// NewOfferFetcher creates a fetcher; the cache is required
func NewOfferFetcher(cfg FetcherConfig) (*OfferFetcher, error) {
	if cfg.Cache == nil {
		return nil, fmt.Errorf("offer fetcher requires a cache")
	}
	if cfg.URLTemplate == "" {
		cfg.URLTemplate = config.DefaultOfferURL
	}
	if cfg.Client == nil {
		// Offer files reach several hundred megabytes; the task context bounds the transfer.
		cfg.Client = &http.Client{}
	}

	return &OfferFetcher{
		urlTemplate:  cfg.URLTemplate,
		cache:        cfg.Cache,
		client:       cfg.Client,
		limiter:      NewRateLimiter(cfg.RateLimit),
		showProgress: cfg.ShowProgress,
	}, nil
}

// Close releases the fetcher's rate limiter
func (f *OfferFetcher) Close() {
	f.limiter.Stop()
}

// URL returns the offer file location for service and format
func (f *OfferFetcher) URL(service, format string) string {
	return fmt.Sprintf(f.urlTemplate, service, format)
}

// Fetch returns a local copy of the offer file, downloading it unless the cached copy is current
func (f *OfferFetcher) Fetch(ctx context.Context, service, format string) (*FetchResult, error) {
	key := cache.Key(service, format)
	url := f.URL(service, format)

	var lastErr error
	for attempt := 0; attempt <= f.limiter.MaxRetries(); attempt++ {
		if err := f.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("failed waiting for rate limiter: %w", err)
		}

		result, err := f.fetchOnce(ctx, key, url)
		if err == nil {
			f.limiter.OnSuccess()
			result.Service = service
			result.Format = format
			return result, nil
		}
		lastErr = err

		var statusErr *StatusError
		if errors.As(err, &statusErr) && !statusErr.retryable() {
			return nil, err
		}
		if ctx.Err() != nil {
			return nil, err
		}

		f.limiter.OnFailure()
		logging.Warn("Offer file download failed, retrying", map[string]interface{}{
			"service": service,
			"attempt": attempt + 1,
			"error":   err.Error(),
		})
	}

	return nil, fmt.Errorf("failed to fetch %s after %d attempts: %w", url, f.limiter.MaxRetries()+1, lastErr)
}

func (f *OfferFetcher) fetchOnce(ctx context.Context, key, url string) (*FetchResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	cached, haveCached := f.cache.Get(key)
	if haveCached && cached.ETag != "" && cached.URL == url {
		req.Header.Set("If-None-Match", cached.ETag)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusNotModified:
		if !haveCached {
			return nil, &StatusError{URL: url, StatusCode: resp.StatusCode}
		}
		logging.Debug("Offer file unchanged, using cached copy", map[string]interface{}{
			"url":  url,
			"path": cached.Path,
		})
		return &FetchResult{Path: cached.Path, URL: url, Size: cached.Size, FromCache: true}, nil
	case http.StatusOK:
	default:
		return nil, &StatusError{URL: url, StatusCode: resp.StatusCode}
	}

	path := f.cache.FilePath(key)
	size, err := f.download(resp, path, key)
	if err != nil {
		return nil, err
	}

	f.cache.Set(key, cache.Entry{
		Path:      path,
		URL:       url,
		ETag:      resp.Header.Get("ETag"),
		Size:      size,
		FetchedAt: time.Now().UTC(),
	})
	if err := f.cache.Save(); err != nil {
		logging.Error("Failed to save offer cache index", err, nil)
	}

	return &FetchResult{Path: path, URL: url, Size: size}, nil
}

// download streams the body into a temp file in the cache directory and renames it into place
func (f *OfferFetcher) download(resp *http.Response, path, key string) (int64, error) {
	tmp, err := os.CreateTemp(filepath.Dir(path), key+".*.tmp")
	if err != nil {
		return 0, fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()

	var dst io.Writer = tmp
	if f.showProgress {
		bar := progressbar.DefaultBytes(resp.ContentLength, "Downloading "+key)
		defer bar.Close()
		dst = io.MultiWriter(tmp, bar)
	}

	size, err := io.Copy(dst, resp.Body)
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(tmpName)
		return 0, fmt.Errorf("failed to download %s: %w", key, err)
	}

	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return 0, fmt.Errorf("failed to move %s into cache: %w", key, err)
	}

	return size, nil
}
