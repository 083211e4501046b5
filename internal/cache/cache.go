// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package cache provides the key-value stores that hold per-category
// metadata dictionaries: a Valkey (Redis-compatible) backend for shared
// deployments and an in-process Memory backend. Entries never expire;
// they are replaced or deleted explicitly.
package cache

import "context"

// Record is one cached metadata value.
type Record struct {
	Value    string `json:"value"`
	PassDown bool   `json:"pass_down"`
}

// Dictionary maps metadata key names to their cached records.
type Dictionary map[string]Record

// Store is the cache contract used by the metadata cache.
type Store interface {
	// Get returns the dictionary stored under key and whether it was present.
	Get(ctx context.Context, key string) (Dictionary, bool, error)
	// Set replaces the dictionary stored under key.
	Set(ctx context.Context, key string, d Dictionary) error
	// Delete removes keys. Missing keys are ignored.
	Delete(ctx context.Context, keys ...string) error
}
