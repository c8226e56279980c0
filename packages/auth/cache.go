package auth

import (
	"context"
	"sync"
	"time"
)

type cached struct {
	token   string
	fetched time.Time
}

// Cache reuses fetched tokens for a fixed time so repeated runs skip the token endpoint.
type Cache struct {
	ttl    time.Duration
	tokens map[string]cached
	mutex  sync.Mutex
	now    func() time.Time
	fetch  func(ctx context.Context, baseURL string, cfg Config) (string, error)
}

// NewCache creates a cache. A ttl of zero disables reuse.
func NewCache(ttl time.Duration) *Cache {
	return &Cache{
		ttl:    ttl,
		tokens: make(map[string]cached),
		now:    time.Now,
		fetch:  Fetch,
	}
}

func cacheKey(baseURL string, cfg Config) string {
	return cfg.method() + " " + baseURL + " " + cfg.Endpoint
}

// Token returns a cached token for the endpoint or fetches a new one.
func (c *Cache) Token(ctx context.Context, baseURL string, cfg Config) (string, error) {
	key := cacheKey(baseURL, cfg)

	c.mutex.Lock()
	entry, ok := c.tokens[key]
	c.mutex.Unlock()
	if ok && c.now().Sub(entry.fetched) < c.ttl {
		return entry.token, nil
	}

	token, err := c.fetch(ctx, baseURL, cfg)
	if err != nil {
		return "", err
	}

	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.tokens[key] = cached{token: token, fetched: c.now()}
	return token, nil
}

// Clear drops every cached token.
func (c *Cache) Clear() {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.tokens = make(map[string]cached)
}
