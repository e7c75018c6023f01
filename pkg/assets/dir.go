// ABOUTME: Local directory asset fetcher
// ABOUTME: Reads assets relative to an asset root on disk
package assets

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
)

// Dir fetches assets from a directory
type Dir struct {
	root string
}

// NewDir creates a fetcher rooted at root
func NewDir(root string) *Dir {
	return &Dir{root: root}
}

// Root returns the asset root
func (d *Dir) Root() string {
	return d.root
}

// Fetch reads the asset at p under the root
func (d *Dir) Fetch(ctx context.Context, p string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if IsURL(p) {
		return nil, fmt.Errorf("directory fetcher cannot load URL %s: %w", p, ErrNotFound)
	}

	data, err := os.ReadFile(d.Path(p))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%s: %w", NormalizePath(p), ErrNotFound)
		}
		return nil, fmt.Errorf("failed to read asset: %w", err)
	}
	return data, nil
}

// Exists reports whether the asset is present on disk
func (d *Dir) Exists(p string) bool {
	if IsURL(p) {
		return false
	}
	info, err := os.Stat(d.Path(p))
	return err == nil && !info.IsDir()
}

// Path returns the on-disk location of asset p. Cleaning the rooted path
// keeps ".." segments inside the root.
func (d *Dir) Path(p string) string {
	clean := path.Clean(NormalizePath(p))
	return filepath.Join(d.root, filepath.FromSlash(clean[1:]))
}
