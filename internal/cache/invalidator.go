package cache

import (
	"context"

	"github.com/fortuna/ligatipp/internal/store"
)

// Invalidator drops cached season tables whenever a result settles or
// changes, so the REST layer never serves a standings table that
// predates the write.
type Invalidator struct {
	rc *RedisCache
}

// NewInvalidator wraps the cache as a reconciliation notifier.
func NewInvalidator(rc *RedisCache) *Invalidator {
	return &Invalidator{rc: rc}
}

// PublishResult invalidates the standings for the match's season and the
// all-time table.
func (iv *Invalidator) PublishResult(ctx context.Context, m *store.Match) error {
	return iv.rc.Delete(ctx, "standings:"+m.Season, "standings:alltime")
}
