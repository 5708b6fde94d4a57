// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// page.go holds the L2 cache of rendered greeting pages. Public greetings
// are rendered once and served from Valkey until the greeting is edited.
// Each hit renews the expiry, so a card that is being shared around stays
// warm while forgotten ones age out.
package cache

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// DefaultPageTTL is how long an unread page stays cached.
	DefaultPageTTL = 10 * time.Minute

	scanBatch = 100
)

// Stats counts page cache lookups since startup.
type Stats struct {
	Hits   int64 `json:"hits"`
	Misses int64 `json:"misses"`
	Errors int64 `json:"errors"`
}

// PageCache stores rendered greeting HTML in Valkey. Failures are logged
// and treated as misses; the page is then rendered from the store.
type PageCache struct {
	client *redis.Client
	ttl    time.Duration

	hits, misses, errs atomic.Int64
}

// NewPageCache creates a page cache on client. A zero ttl selects
// DefaultPageTTL.
func NewPageCache(client *redis.Client, ttl time.Duration) *PageCache {
	if ttl <= 0 {
		ttl = DefaultPageTTL
	}
	return &PageCache{client: client, ttl: ttl}
}

// Get returns the cached page for key and extends its lifetime.
func (pc *PageCache) Get(ctx context.Context, key string) ([]byte, bool) {
	val, err := pc.client.GetEx(ctx, PageKeyPrefix+key, pc.ttl).Bytes()
	switch {
	case errors.Is(err, redis.Nil):
		pc.misses.Add(1)
		return nil, false
	case err != nil:
		pc.errs.Add(1)
		slog.Warn("page cache get failed", "key", key, "error", err)
		return nil, false
	}
	pc.hits.Add(1)
	return val, true
}

// Set stores a rendered page.
func (pc *PageCache) Set(ctx context.Context, key string, html []byte) {
	if err := pc.client.Set(ctx, PageKeyPrefix+key, html, pc.ttl).Err(); err != nil {
		pc.errs.Add(1)
		slog.Warn("page cache set failed", "key", key, "error", err)
	}
}

// InvalidatePage drops one page, e.g. after its greeting was edited.
func (pc *PageCache) InvalidatePage(ctx context.Context, key string) {
	if err := pc.client.Del(ctx, PageKeyPrefix+key).Err(); err != nil {
		pc.errs.Add(1)
		slog.Warn("page cache invalidate failed", "key", key, "error", err)
	}
}

// InvalidateAll drops every cached page and returns how many were removed.
// The server calls it at startup because the embedded templates may have
// changed with the deploy.
func (pc *PageCache) InvalidateAll(ctx context.Context) int {
	var (
		cursor  uint64
		deleted int
	)
	for {
		keys, next, err := pc.client.Scan(ctx, cursor, PageKeyPrefix+"*", scanBatch).Result()
		if err != nil {
			slog.Warn("page cache scan failed", "error", err)
			return deleted
		}
		if len(keys) > 0 {
			n, err := pc.client.Unlink(ctx, keys...).Result()
			if err != nil {
				slog.Warn("page cache bulk delete failed", "error", err)
			}
			deleted += int(n)
		}
		if cursor = next; cursor == 0 {
			break
		}
	}
	if deleted > 0 {
		slog.Info("page cache cleared", "deleted", deleted)
	}
	return deleted
}

// Stats returns the lookup counters.
func (pc *PageCache) Stats() Stats {
	return Stats{Hits: pc.hits.Load(), Misses: pc.misses.Load(), Errors: pc.errs.Load()}
}
