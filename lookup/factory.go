package lookup

import (
	"github.com/sharedcode/premortem"
	"github.com/sharedcode/premortem/cache"
)

// FromConfig assembles the lookup chain: the remote registry when configured,
// the static catalog otherwise, wrapped in the configured cache.
func FromConfig(cfg premortem.Config) (premortem.ReferenceLookup, error) {
	var base premortem.ReferenceLookup
	if cfg.Registry.BaseURL != "" {
		base = NewRegistry(cfg.Registry, nil)
	} else {
		base = CatalogFromConfig(cfg.Policy)
	}
	c, err := cache.New(cfg.Cache)
	if err != nil {
		return nil, err
	}
	return NewCached(base, c, cfg.Cache.TTL), nil
}
