// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package database

import (
	"database/sql"
	"fmt"
	"log/slog"
	"time"
)

// Seed creates the root category for siteID if the site has none.
// The root's slug and fullpath are both siteID.
func Seed(db *sql.DB, siteID string) error {
	// Check if the site already has a root.
	var count int
	err := db.QueryRow(`SELECT COUNT(*) FROM categories WHERE site_id = $1 AND is_root = $2`, siteID, true).Scan(&count)
	if err != nil {
		return fmt.Errorf("seed check root: %w", err)
	}

	if count > 0 {
		slog.Info("database already seeded, skipping", "site_id", siteID)
		return nil
	}

	now := time.Now().UTC()
	_, err = db.Exec(`
		INSERT INTO categories (site_id, name, slug, fullpath, parent_id, is_active,
			is_visible, display_order, is_root, type, created_at, updated_at)
		VALUES ($1, $2, $3, $4, NULL, $5, $6, $7, $8, $9, $10, $11)
	`, siteID, siteID, siteID, siteID, true, true, 0, true, "LOCAL", now, now)
	if err != nil {
		return fmt.Errorf("seed insert root: %w", err)
	}

	slog.Info("database seeded with root category", "site_id", siteID)
	return nil
}
