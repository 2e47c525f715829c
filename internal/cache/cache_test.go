// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package cache

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

// testValkeyClient returns a Redis client for tests.
// Skips if Valkey is unavailable.
func testValkeyClient(t *testing.T) *redis.Client {
	t.Helper()

	host := envOr("VALKEY_HOST", "localhost")
	port := envOr("VALKEY_PORT", "6379")
	password := os.Getenv("VALKEY_PASSWORD")

	client := redis.NewClient(&redis.Options{
		Addr:     host + ":" + port,
		Password: password,
		DB:       15, // Use DB 15 for tests.
	})

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		t.Skipf("skipping integration test: Valkey not reachable: %v", err)
	}

	t.Cleanup(func() {
		keys, _ := client.Keys(ctx, listingPrefix+"*").Result()
		if len(keys) > 0 {
			client.Del(ctx, keys...)
		}
		client.Close()
	})

	return client
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func TestConnectValkey(t *testing.T) {
	host := envOr("VALKEY_HOST", "localhost")
	port := envOr("VALKEY_PORT", "6379")

	client, err := ConnectValkey(host, port, "")
	if err != nil {
		t.Skipf("skipping: Valkey not available: %v", err)
	}
	defer client.Close()

	ctx := context.Background()
	pong, err := client.Ping(ctx).Result()
	if err != nil {
		t.Fatalf("Ping: %v", err)
	}
	if pong != "PONG" {
		t.Errorf("Ping = %q, want PONG", pong)
	}
}

func TestListingCacheSetGet(t *testing.T) {
	client := testValkeyClient(t)
	c := NewListingCache(client, time.Minute)
	ctx := context.Background()

	key := Key("used-machinery")
	if _, hit := c.Get(ctx, key); hit {
		t.Fatalf("fresh key reported a hit")
	}

	payload := []byte(`{"ads":[]}`)
	c.Set(ctx, key, payload)

	got, hit := c.Get(ctx, key)
	if !hit {
		t.Fatalf("stored key reported a miss")
	}
	if string(got) != string(payload) {
		t.Errorf("payload = %s, want %s", got, payload)
	}
}

func TestListingCacheInvalidateAll(t *testing.T) {
	client := testValkeyClient(t)
	c := NewListingCache(client, time.Minute)
	ctx := context.Background()

	c.Set(ctx, Key(""), []byte("all"))
	c.Set(ctx, Key("services"), []byte("services"))

	c.InvalidateAll(ctx)

	if _, hit := c.Get(ctx, Key("")); hit {
		t.Errorf("all-categories listing survived invalidation")
	}
	if _, hit := c.Get(ctx, Key("services")); hit {
		t.Errorf("category listing survived invalidation")
	}
}

func TestListingCacheTTL(t *testing.T) {
	client := testValkeyClient(t)
	c := NewListingCache(client, 50*time.Millisecond)
	ctx := context.Background()

	c.Set(ctx, Key("ttl-test"), []byte("x"))
	time.Sleep(100 * time.Millisecond)

	if _, hit := c.Get(ctx, Key("ttl-test")); hit {
		t.Errorf("entry survived past its TTL")
	}
}
