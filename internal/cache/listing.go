// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// listing.go provides a Valkey-backed cache for public listing responses.
// The public ad listing is the hottest read in the system and changes
// only when moderation publishes or hides an ad, so the serialized JSON
// is cached and invalidated wholesale on any moderation action.
package cache

import (
	"context"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// DefaultListingTTL bounds staleness even if an invalidation is missed.
	DefaultListingTTL = 5 * time.Minute

	listingPrefix = "listing:"
)

// ListingCache stores rendered public listing payloads keyed by category
// slug ("" for the all-categories listing).
type ListingCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewListingCache creates a listing cache with the given TTL.
func NewListingCache(client *redis.Client, ttl time.Duration) *ListingCache {
	return &ListingCache{client: client, ttl: ttl}
}

// Key builds the cache key for a category slug.
func Key(categorySlug string) string {
	return listingPrefix + categorySlug
}

// Get returns the cached payload and true on a hit. Cache errors are
// logged and reported as misses — the DB path always works.
func (c *ListingCache) Get(ctx context.Context, key string) ([]byte, bool) {
	payload, err := c.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		slog.Warn("listing cache get failed", "key", key, "error", err)
		return nil, false
	}
	return payload, true
}

// Set stores a payload under the key. Best-effort.
func (c *ListingCache) Set(ctx context.Context, key string, payload []byte) {
	if err := c.client.Set(ctx, key, payload, c.ttl).Err(); err != nil {
		slog.Warn("listing cache set failed", "key", key, "error", err)
	}
}

// InvalidateAll drops every cached listing. Called after any moderation
// action or ad deletion; per-category invalidation is not worth the
// bookkeeping at this traffic level.
func (c *ListingCache) InvalidateAll(ctx context.Context) {
	iter := c.client.Scan(ctx, 0, listingPrefix+"*", 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		slog.Warn("listing cache scan failed", "error", err)
		return
	}
	if len(keys) > 0 {
		if err := c.client.Del(ctx, keys...).Err(); err != nil {
			slog.Warn("listing cache invalidate failed", "error", err)
		}
	}
}
