// ABOUTME: Fetcher interface and path normalization
// ABOUTME: Shared contract for asset sources
package assets

import (
	"context"
	"errors"
	"strings"
)

// ErrNotFound is returned when an asset does not exist at its source
var ErrNotFound = errors.New("asset not found")

// Fetcher returns the encoded bytes of an asset
type Fetcher interface {
	Fetch(ctx context.Context, path string) ([]byte, error)
}

// NormalizePath gives a relative asset path a leading slash. Absolute
// http(s) URLs are returned as is.
func NormalizePath(p string) string {
	if IsURL(p) {
		return p
	}
	if strings.HasPrefix(p, "/") {
		return p
	}
	return "/" + p
}

// IsURL reports whether p is an absolute http(s) URL
func IsURL(p string) bool {
	return strings.HasPrefix(p, "http://") || strings.HasPrefix(p, "https://")
}
