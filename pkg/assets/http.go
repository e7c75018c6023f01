// ABOUTME: HTTP asset fetcher with on-disk cache
// ABOUTME: Downloads assets from a base URL and caches them by blake3 hash
package assets

import (
	"context"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"lukechampine.com/blake3"
)

// HTTPFetcher downloads assets relative to a base URL
type HTTPFetcher struct {
	baseURL  string
	cacheDir string
	client   *http.Client
	logger   *zap.SugaredLogger
}

// HTTPOption configures an HTTPFetcher
type HTTPOption func(*HTTPFetcher)

// WithClient sets the HTTP client
func WithClient(c *http.Client) HTTPOption {
	return func(f *HTTPFetcher) { f.client = c }
}

// WithCacheDir sets the cache directory. An empty dir disables caching.
func WithCacheDir(dir string) HTTPOption {
	return func(f *HTTPFetcher) { f.cacheDir = dir }
}

// WithLogger sets the logger
func WithLogger(l *zap.SugaredLogger) HTTPOption {
	return func(f *HTTPFetcher) { f.logger = l }
}

// NewHTTPFetcher creates a fetcher for baseURL. The default cache lives
// under the system temp directory.
func NewHTTPFetcher(baseURL string, opts ...HTTPOption) (*HTTPFetcher, error) {
	f := &HTTPFetcher{
		baseURL:  strings.TrimRight(baseURL, "/"),
		cacheDir: filepath.Join(os.TempDir(), "slidesounds-assets"),
		client:   &http.Client{},
		logger:   zap.NewNop().Sugar(),
	}
	for _, opt := range opts {
		opt(f)
	}

	if f.cacheDir != "" {
		if err := os.MkdirAll(f.cacheDir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create cache directory: %w", err)
		}
	}
	return f, nil
}

// URL resolves an asset path against the base URL
func (f *HTTPFetcher) URL(p string) string {
	if IsURL(p) {
		return p
	}
	return f.baseURL + NormalizePath(p)
}

// CacheKey names the cache file for a resolved URL
func CacheKey(url string) string {
	h := blake3.New(32, nil)
	h.Write([]byte(url))
	ext := filepath.Ext(strings.Split(url, "?")[0])
	return hex.EncodeToString(h.Sum(nil)) + ext
}

// Fetch returns the asset bytes, from cache when present
func (f *HTTPFetcher) Fetch(ctx context.Context, p string) ([]byte, error) {
	url := f.URL(p)

	var cachePath string
	if f.cacheDir != "" {
		cachePath = filepath.Join(f.cacheDir, CacheKey(url))
		if data, err := os.ReadFile(cachePath); err == nil {
			f.logger.Debugw("Asset cache hit", "url", url, "path", cachePath)
			return data, nil
		}
	}

	f.logger.Debugw("Downloading asset", "url", url)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to download asset: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("%s: HTTP %d: %w", url, resp.StatusCode, ErrNotFound)
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("asset download failed: %s: HTTP %d", url, resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read asset body: %w", err)
	}

	if cachePath != "" {
		if err := writeAtomic(cachePath, data); err != nil {
			f.logger.Warnw("Failed to cache asset", "url", url, "error", err)
		}
	}
	return data, nil
}

// Cleanup removes the cache directory
func (f *HTTPFetcher) Cleanup() error {
	if f.cacheDir == "" {
		return nil
	}
	return os.RemoveAll(f.cacheDir)
}

func writeAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".asset-*")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), path)
}
