package store

import (
	"context"
	"fmt"
	log "log/slog"
	"time"

	"github.com/sharedcode/premortem"
)

// Cached fronts a remote report store with a premortem.Cache. Reports are immutable
// once written, so a cached copy never goes stale; expiry only bounds cache size.
type Cached struct {
	next   premortem.ReportStore
	cache  premortem.Cache
	expiry time.Duration
}

// NewCached wraps next. A nil cache returns next unchanged.
func NewCached(next premortem.ReportStore, cache premortem.Cache, expiry time.Duration) premortem.ReportStore {
	if cache == nil {
		return next
	}
	return &Cached{next: next, cache: cache, expiry: expiry}
}

func formatKey(id string) string {
	return fmt.Sprintf("premortem:report:%s", id)
}

func (c *Cached) Put(ctx context.Context, r premortem.Report) error {
	if err := c.next.Put(ctx, r); err != nil {
		return err
	}
	if err := c.cache.SetStruct(ctx, formatKey(r.ID), r, c.expiry); err != nil {
		log.Warn(fmt.Sprintf("cache setstruct for key %s failed, details: %v", formatKey(r.ID), err))
	}
	return nil
}

func (c *Cached) Get(ctx context.Context, id string) (premortem.Report, bool, error) {
	var r premortem.Report
	if ok, err := c.cache.GetStruct(ctx, formatKey(id), &r); err == nil && ok {
		return r, true, nil
	} else if err != nil {
		log.Warn(fmt.Sprintf("cache getstruct for key %s failed, details: %v", formatKey(id), err))
	}
	r, ok, err := c.next.Get(ctx, id)
	if err != nil || !ok {
		return r, ok, err
	}
	if err := c.cache.SetStruct(ctx, formatKey(id), r, c.expiry); err != nil {
		log.Warn(fmt.Sprintf("cache setstruct for key %s failed, details: %v", formatKey(id), err))
	}
	return r, true, nil
}

// List always goes to the underlying store.
func (c *Cached) List(ctx context.Context) ([]premortem.ReportSummary, error) {
	return c.next.List(ctx)
}
