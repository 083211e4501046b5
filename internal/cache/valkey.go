// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// ConnectValkey creates a Valkey client and verifies the connection with a ping.
func ConnectValkey(addr, password string) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       0,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("valkey ping: %w", err)
	}

	slog.Info("valkey connected", "addr", addr)
	return client, nil
}

// Valkey stores dictionaries as JSON strings without expiry. Every key is
// prefixed with the namespace so several deployments can share a server.
type Valkey struct {
	client    *redis.Client
	namespace string
}

var _ Store = (*Valkey)(nil)

// NewValkey creates a store backed by the given Valkey client.
func NewValkey(client *redis.Client, namespace string) *Valkey {
	return &Valkey{client: client, namespace: namespace}
}

// Get retrieves a cached dictionary. A missing key is reported with ok=false.
func (v *Valkey) Get(ctx context.Context, key string) (Dictionary, bool, error) {
	raw, err := v.client.Get(ctx, v.namespace+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		slog.Warn("metadata cache get error", "key", key, "error", err)
		return nil, false, fmt.Errorf("valkey get %s: %w", key, err)
	}

	var d Dictionary
	if err := json.Unmarshal(raw, &d); err != nil {
		// A corrupt entry is treated as a miss so the caller rebuilds it.
		slog.Warn("metadata cache decode error", "key", key, "error", err)
		return nil, false, nil
	}
	slog.Debug("metadata cache hit", "key", key)
	return d, true, nil
}

// Set stores a dictionary with no expiry.
func (v *Valkey) Set(ctx context.Context, key string, d Dictionary) error {
	if d == nil {
		d = Dictionary{}
	}
	raw, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("encode dictionary %s: %w", key, err)
	}
	if err := v.client.Set(ctx, v.namespace+key, raw, 0).Err(); err != nil {
		slog.Warn("metadata cache set error", "key", key, "error", err)
		return fmt.Errorf("valkey set %s: %w", key, err)
	}
	return nil
}

// Delete removes one or more dictionaries.
func (v *Valkey) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	full := make([]string, len(keys))
	for i, k := range keys {
		full[i] = v.namespace + k
	}
	if err := v.client.Del(ctx, full...).Err(); err != nil {
		slog.Warn("metadata cache delete error", "keys", keys, "error", err)
		return fmt.Errorf("valkey delete: %w", err)
	}
	slog.Debug("metadata cache invalidated", "keys", keys)
	return nil
}

// Flush removes every key in the namespace matching pattern by scanning.
// It returns the number of deleted keys.
func (v *Valkey) Flush(ctx context.Context, pattern string) (int, error) {
	var (
		cursor  uint64
		deleted int
	)
	for {
		keys, nextCursor, err := v.client.Scan(ctx, cursor, v.namespace+pattern, 100).Result()
		if err != nil {
			return deleted, fmt.Errorf("valkey scan: %w", err)
		}
		if len(keys) > 0 {
			if err := v.client.Del(ctx, keys...).Err(); err != nil {
				return deleted, fmt.Errorf("valkey bulk delete: %w", err)
			}
			deleted += len(keys)
		}
		cursor = nextCursor
		if cursor == 0 {
			break
		}
	}
	if deleted > 0 {
		slog.Info("metadata cache cleared", "pattern", pattern, "deleted", deleted)
	}
	return deleted, nil
}
