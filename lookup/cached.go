package lookup

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	log "log/slog"
	"strings"
	"time"

	"github.com/sharedcode/premortem"
)

const keyPrefix = "premortem:lookup:"

// Cached memoizes successful lookups of the wrapped ReferenceLookup.
// Failed lookups are never cached. Cache errors are logged and otherwise ignored.
type Cached struct {
	next  premortem.ReferenceLookup
	cache premortem.Cache
	ttl   time.Duration
}

// NewCached wraps next. A nil cache returns next unchanged.
func NewCached(next premortem.ReferenceLookup, cache premortem.Cache, ttl time.Duration) premortem.ReferenceLookup {
	if cache == nil {
		return next
	}
	return &Cached{next: next, cache: cache, ttl: ttl}
}

// CacheKey returns the cache key of query: a hash of the trimmed, lowercased, capped text.
func CacheKey(query string) string {
	q := strings.ToLower(strings.TrimSpace(premortem.CapQuery(query)))
	sum := sha256.Sum256([]byte(q))
	return keyPrefix + hex.EncodeToString(sum[:])
}

func (c *Cached) Lookup(ctx context.Context, query string) (premortem.AuthoritativeLookup, error) {
	key := CacheKey(query)
	var hit premortem.AuthoritativeLookup
	if ok, err := c.cache.GetStruct(ctx, key, &hit); err != nil {
		log.Warn("lookup cache read failed", "key", key, "error", err)
	} else if ok {
		return hit, nil
	}

	r, err := c.next.Lookup(ctx, query)
	if err != nil {
		return r, err
	}
	if err := c.cache.SetStruct(ctx, key, r, c.ttl); err != nil {
		log.Warn("lookup cache write failed", "key", key, "error", err)
	}
	return r, nil
}
