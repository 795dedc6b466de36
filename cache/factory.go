package cache

import (
	"fmt"
	log "log/slog"

	"github.com/sharedcode/premortem"
	"github.com/sharedcode/premortem/redis"
)

// New creates the lookup cache selected by cfg. It returns nil for premortem.NoCache.
// The Redis backend uses the package level singleton connection.
func New(cfg premortem.CacheConfig) (premortem.Cache, error) {
	switch cfg.Type {
	case premortem.NoCache, "":
		return nil, nil
	case premortem.InMemoryCache:
		return NewInMemoryCache(DefaultCapacity), nil
	case premortem.RedisCache:
		if cfg.Redis == nil {
			return nil, fmt.Errorf("redis cache requires redis settings")
		}
		o, err := redis.OptionsFromConfig(*cfg.Redis)
		if err != nil {
			return nil, err
		}
		redis.OpenConnection(o)
		log.Info("lookup cache using redis", "address", o.Address, "db", o.DB)
		return redis.NewClient(), nil
	}
	return nil, fmt.Errorf("unknown cache type %q", cfg.Type)
}
