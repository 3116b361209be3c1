// Package provider fetches weekly rating tables and game schedules from remote sources.
package provider

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/huangsam/gridline/internal/contract"
	"github.com/huangsam/gridline/schema"
)

// CurrentSeasonTTL bounds how long a cached response for an unfinished season stays fresh.
const CurrentSeasonTTL = 12 * time.Hour

// cacheVersion is bumped when the cached payload format changes.
const cacheVersion = 1

// maxBodyBytes guards against unbounded responses.
const maxBodyBytes = 32 << 20

// fetcher performs GET requests through an optional response cache.
type fetcher struct {
	client *http.Client
	cache  contract.CacheStore
	now    func() time.Time
}

func newFetcher(timeout time.Duration, cache contract.CacheStore) fetcher {
	if timeout <= 0 {
		timeout = contract.DefaultTimeout
	}
	return fetcher{
		client: &http.Client{Timeout: timeout},
		cache:  cache,
		now:    time.Now,
	}
}

// CacheKey returns the response cache key for url.
func CacheKey(url string) string {
	sum := sha256.Sum256([]byte(url))
	return hex.EncodeToString(sum[:])
}

// get returns the body at url. A ttl of zero means a cached body never expires.
// A 404 is reported as schema.ErrNoData.
func (f fetcher) get(ctx context.Context, url string, ttl time.Duration) ([]byte, error) {
	key := CacheKey(url)
	if body, ok := f.cached(key, ttl); ok {
		return body, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("error building request: %w", err)
	}
	req.Header.Set("User-Agent", "gridline/1.0")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error fetching URL: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusNotFound {
		return nil, schema.ErrNoData
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("non-2xx status code: %d %s", resp.StatusCode, http.StatusText(resp.StatusCode))
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("error reading response body: %w", err)
	}

	if f.cache != nil {
		if err := f.cache.Set(key, body, cacheVersion, f.now().Unix()); err != nil {
			contract.LogWarn("Failed to cache response", err)
		}
	}
	return body, nil
}

func (f fetcher) cached(key string, ttl time.Duration) ([]byte, bool) {
	if f.cache == nil {
		return nil, false
	}
	body, version, ts, err := f.cache.Get(key)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			contract.LogWarn("Failed to read cached response", err)
		}
		return nil, false
	}
	if version != cacheVersion {
		return nil, false
	}
	if ttl > 0 && f.now().Sub(time.Unix(ts, 0)) > ttl {
		return nil, false
	}
	return body, true
}
