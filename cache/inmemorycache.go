package cache

import (
	"context"
	"sync"
	"time"

	"github.com/sharedcode/premortem"
)

type item struct {
	data       []byte
	expiration time.Time
}

func (it item) expired(now time.Time) bool {
	return !it.expiration.IsZero() && now.After(it.expiration)
}

// InMemoryCache is a process local premortem.Cache. Values are stored marshaled so
// callers never share memory with the cache. When full it drops the least recently used entry.
type InMemoryCache struct {
	mu  sync.Mutex
	mru Cache[string, item]
	now func() time.Time
}

// DefaultCapacity is the entry count at which InMemoryCache starts evicting.
const DefaultCapacity = 10000

// NewInMemoryCache returns an empty cache holding up to capacity entries.
// A non-positive capacity uses DefaultCapacity.
func NewInMemoryCache(capacity int) *InMemoryCache {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &InMemoryCache{
		mru: NewCache[string, item](capacity),
		now: time.Now,
	}
}

// SetStruct stores value under key. A negative expiration skips caching, zero never expires.
func (c *InMemoryCache) SetStruct(ctx context.Context, key string, value any, expiration time.Duration) error {
	if expiration < 0 {
		return nil
	}
	data, err := premortem.DefaultMarshaler.Marshal(value)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	var exp time.Time
	if expiration > 0 {
		exp = c.now().Add(expiration)
	}
	c.mru.Set(key, item{data: data, expiration: exp})
	return nil
}

// GetStruct reads key into target. Expired entries are dropped and reported missing.
func (c *InMemoryCache) GetStruct(ctx context.Context, key string, target any) (bool, error) {
	c.mu.Lock()
	it, ok := c.mru.Get(key)
	if ok && it.expired(c.now()) {
		c.mru.Delete(key)
		ok = false
	}
	c.mu.Unlock()
	if !ok {
		return false, nil
	}
	if err := premortem.DefaultMarshaler.Unmarshal(it.data, target); err != nil {
		return false, err
	}
	return true, nil
}

// Delete removes keys.
func (c *InMemoryCache) Delete(ctx context.Context, keys []string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.mru.Delete(keys...)
	return true, nil
}

// Count returns the number of entries, expired ones included.
func (c *InMemoryCache) Count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mru.Count()
}
