// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// list.go provides a Valkey-backed cache for catalog list responses.
// Book and category listings are read far more often than they change, so
// the encoded list is kept in Valkey and dropped whenever a catalog write
// or a loan changes what the list would return.
package cache

import (
	"context"
	"log/slog"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/redis/go-redis/v9"
)

const (
	// listKeyPrefix is the Valkey key prefix for cached catalog lists.
	listKeyPrefix = "catalog:"

	// DefaultListTTL is how long a cached list stays valid.
	DefaultListTTL = 5 * time.Minute
)

// Keys of the cached lists.
const (
	KeyBooks      = "books"
	KeyCategories = "categories"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// ListCache stores JSON-encoded catalog lists in Valkey. Errors are logged
// and treated as misses; the database stays the source of truth.
type ListCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewListCache creates a new list cache backed by the given Valkey client.
func NewListCache(client *redis.Client, ttl time.Duration) *ListCache {
	if ttl == 0 {
		ttl = DefaultListTTL
	}
	return &ListCache{client: client, ttl: ttl}
}

// Get decodes the cached list for key into dst. Returns false on a miss
// or when the cached value cannot be decoded.
func (lc *ListCache) Get(ctx context.Context, key string, dst any) bool {
	val, err := lc.client.Get(ctx, listKeyPrefix+key).Bytes()
	if err == redis.Nil {
		return false
	}
	if err != nil {
		slog.Warn("list cache get error", "key", key, "error", err)
		return false
	}
	if err := json.Unmarshal(val, dst); err != nil {
		slog.Warn("list cache decode error", "key", key, "error", err)
		return false
	}
	slog.Debug("list cache hit", "key", key)
	return true
}

// Set encodes v and stores it under key with the configured TTL.
func (lc *ListCache) Set(ctx context.Context, key string, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		slog.Warn("list cache encode error", "key", key, "error", err)
		return
	}
	if err := lc.client.Set(ctx, listKeyPrefix+key, data, lc.ttl).Err(); err != nil {
		slog.Warn("list cache set error", "key", key, "error", err)
	}
}

// Invalidate removes the given lists.
func (lc *ListCache) Invalidate(ctx context.Context, keys ...string) {
	if len(keys) == 0 {
		return
	}
	full := make([]string, len(keys))
	for i, k := range keys {
		full[i] = listKeyPrefix + k
	}
	if err := lc.client.Del(ctx, full...).Err(); err != nil {
		slog.Warn("list cache invalidate error", "keys", keys, "error", err)
		return
	}
	slog.Debug("list cache invalidated", "keys", keys)
}

// InvalidateAll removes every cached list by scanning for the prefix.
// Used when a category changes, since book lists embed category names.
func (lc *ListCache) InvalidateAll(ctx context.Context) {
	var cursor uint64
	var deleted int
	for {
		keys, nextCursor, err := lc.client.Scan(ctx, cursor, listKeyPrefix+"*", 100).Result()
		if err != nil {
			slog.Warn("list cache scan error", "error", err)
			return
		}
		if len(keys) > 0 {
			if err := lc.client.Del(ctx, keys...).Err(); err != nil {
				slog.Warn("list cache bulk delete error", "error", err)
			}
			deleted += len(keys)
		}
		cursor = nextCursor
		if cursor == 0 {
			break
		}
	}
	if deleted > 0 {
		slog.Info("list cache fully cleared", "deleted", deleted)
	}
}
