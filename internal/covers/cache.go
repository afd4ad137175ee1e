// Package covers caches downloaded cover images on disk. Files are named by
// a digest of the book's stable identifier, so repeat fetches for the same
// identifier return the existing file without touching the network.
package covers

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"
)

type Cache struct {
	Dir    string
	Client *http.Client
}

func New(dir string) *Cache {
	return &Cache{
		Dir:    dir,
		Client: &http.Client{Timeout: 15 * time.Second},
	}
}

// Path returns the cache file location for an identifier, whether or not the
// file exists yet.
func (c *Cache) Path(identifier string) string {
	sum := sha1.Sum([]byte(identifier + ":orig"))
	return filepath.Join(c.Dir, hex.EncodeToString(sum[:])+".jpg")
}

// Fetch downloads the cover once and returns the local file path. A cached
// file short-circuits the download; an empty URL yields an empty path with
// no error.
func (c *Cache) Fetch(ctx context.Context, coverURL, identifier string) (string, error) {
	if coverURL == "" || identifier == "" {
		return "", nil
	}

	target := c.Path(identifier)
	if _, err := os.Stat(target); err == nil {
		return target, nil
	}

	if err := os.MkdirAll(c.Dir, 0o755); err != nil {
		return "", fmt.Errorf("ensure cover dir: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, coverURL, nil)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	resp, err := c.Client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch cover: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetch cover: status %d", resp.StatusCode)
	}

	tmp := target + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return "", fmt.Errorf("create cover file: %w", err)
	}
	if _, err := io.Copy(f, resp.Body); err != nil {
		f.Close()
		os.Remove(tmp)
		return "", fmt.Errorf("write cover file: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return "", fmt.Errorf("close cover file: %w", err)
	}
	if err := os.Rename(tmp, target); err != nil {
		os.Remove(tmp)
		return "", fmt.Errorf("finalize cover file: %w", err)
	}
	return target, nil
}

// AssetName maps a stored cover path back to the file name served over the
// API, or "" when the file is gone.
func (c *Cache) AssetName(coverPath string) string {
	if coverPath == "" {
		return ""
	}
	name := filepath.Base(coverPath)
	if _, err := os.Stat(filepath.Join(c.Dir, name)); err != nil {
		return ""
	}
	return name
}
