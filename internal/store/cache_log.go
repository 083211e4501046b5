// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// cache_log.go records cache invalidation events in the database for
// audit and debugging purposes. Each entry captures what was invalidated,
// when, and why (set/refresh/delete).
package store

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// LogInvalidation records a cache invalidation event.
func (s *SQL) LogInvalidation(ctx context.Context, entityType string, entityID int64, action string) {
	_, err := s.q.ExecContext(ctx, `
		INSERT INTO cache_invalidation_log (entity_type, entity_id, action, invalidated_at)
		VALUES ($1, $2, $3, $4)
	`, entityType, entityID, action, time.Now().UTC())
	if err != nil {
		// Best-effort: the caller never sees logging failures.
		slog.Warn("failed to log cache invalidation",
			"entity_type", entityType,
			"entity_id", entityID,
			"action", action,
			"error", err,
		)
		return
	}
	slog.Debug("cache invalidation logged",
		"entity_type", entityType,
		"entity_id", entityID,
		"action", action,
	)
}

// RecentInvalidations returns the most recent cache invalidation events,
// newest first. Limited to the specified count.
func (s *SQL) RecentInvalidations(ctx context.Context, limit int) ([]InvalidationEntry, error) {
	rows, err := s.q.QueryContext(ctx, `
		SELECT id, entity_type, entity_id, action, invalidated_at
		FROM cache_invalidation_log
		ORDER BY invalidated_at DESC, id DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("query cache log: %w", err)
	}
	defer rows.Close()

	var entries []InvalidationEntry
	for rows.Next() {
		var e InvalidationEntry
		if err := rows.Scan(&e.ID, &e.EntityType, &e.EntityID, &e.Action, &e.InvalidatedAt); err != nil {
			return nil, fmt.Errorf("scan cache log: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
