// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package cache

import (
	"context"
	"maps"
	"path"
	"sync"
)

// Memory is a concurrency-safe in-process Store. Dictionaries are copied
// on the way in and out so callers cannot mutate cached state.
type Memory struct {
	mu      sync.RWMutex
	entries map[string]Dictionary
}

var _ Store = (*Memory)(nil)

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{entries: make(map[string]Dictionary)}
}

// Get retrieves a cached dictionary.
func (m *Memory) Get(_ context.Context, key string) (Dictionary, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	d, ok := m.entries[key]
	if !ok {
		return nil, false, nil
	}
	return maps.Clone(d), true, nil
}

// Set stores a dictionary.
func (m *Memory) Set(_ context.Context, key string, d Dictionary) error {
	cp := maps.Clone(d)
	if cp == nil {
		cp = Dictionary{}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = cp
	return nil
}

// Delete removes dictionaries by key.
func (m *Memory) Delete(_ context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, k := range keys {
		delete(m.entries, k)
	}
	return nil
}

// Flush removes every key matching the glob pattern and returns the count.
func (m *Memory) Flush(_ context.Context, pattern string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for k := range m.entries {
		if ok, _ := path.Match(pattern, k); ok {
			delete(m.entries, k)
			n++
		}
	}
	return n, nil
}

// Len returns the number of cached dictionaries.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}
