// Package lookup maps free text to a citation in an authoritative reference catalog.
//
// Three ReferenceLookup implementations are provided: Catalog, a static table that
// never fails; Registry, a client for a remote reference registry that fails closed;
// and Cached, a decorator that memoizes successful answers in a premortem.Cache.
package lookup

import (
	"context"

	"github.com/sharedcode/premortem"
	"github.com/sharedcode/premortem/policy"
)

// Catalog is a static, in-process reference table. Queries matching the restricted
// matcher cite the restricted-domain catalog, everything else the general one.
type Catalog struct {
	restricted policy.Matcher
	hit        premortem.AuthoritativeLookup
	fallback   premortem.AuthoritativeLookup
}

// NewCatalog creates a catalog routing matched queries to hit and the rest to fallback.
func NewCatalog(restricted policy.Matcher, hit, fallback premortem.AuthoritativeLookup) *Catalog {
	return &Catalog{restricted: restricted, hit: hit, fallback: fallback}
}

// NewDefaultCatalog returns the catalog built from premortem.DefaultPolicyConfig.
func NewDefaultCatalog() *Catalog {
	return CatalogFromConfig(premortem.DefaultPolicyConfig())
}

// CatalogFromConfig builds a catalog from the lookup section of a policy config.
func CatalogFromConfig(cfg premortem.PolicyConfig) *Catalog {
	return NewCatalog(
		policy.NewKeywordMatcher(cfg.LookupTerms...),
		premortem.AuthoritativeLookup{Source: cfg.RestrictedSource, Found: true, Reference: cfg.RestrictedReference},
		premortem.AuthoritativeLookup{Source: cfg.GeneralSource, Found: true, Reference: cfg.GeneralReference},
	)
}

// Lookup never fails. The query is capped before matching.
func (c *Catalog) Lookup(_ context.Context, query string) (premortem.AuthoritativeLookup, error) {
	if _, ok := c.restricted.Match(premortem.CapQuery(query)); ok {
		return c.hit, nil
	}
	return c.fallback, nil
}
