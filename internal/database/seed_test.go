// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package database

import (
	"testing"
)

func TestSeedIdempotent(t *testing.T) {
	db := memoryDB(t)
	if err := Migrate(db, SQLite); err != nil {
		t.Fatalf("Migrate: %v", err)
	}

	// Seed creates the root only when the site has none, so calling it
	// twice must leave exactly one root.
	if err := Seed(db, "us"); err != nil {
		t.Fatalf("first Seed: %v", err)
	}
	if err := Seed(db, "us"); err != nil {
		t.Fatalf("second Seed: %v", err)
	}

	var (
		count    int
		fullpath string
	)
	if err := db.QueryRow("SELECT COUNT(*) FROM categories WHERE site_id = $1", "us").Scan(&count); err != nil {
		t.Fatalf("count categories: %v", err)
	}
	if count != 1 {
		t.Errorf("categories for site: got %d, want 1", count)
	}
	if err := db.QueryRow("SELECT fullpath FROM categories WHERE site_id = $1 AND is_root = $2", "us", true).Scan(&fullpath); err != nil {
		t.Fatalf("read root: %v", err)
	}
	if fullpath != "us" {
		t.Errorf("root fullpath = %q, want %q", fullpath, "us")
	}
}

func TestSeedSeparateSites(t *testing.T) {
	db := memoryDB(t)
	if err := Migrate(db, SQLite); err != nil {
		t.Fatalf("Migrate: %v", err)
	}

	for _, site := range []string{"us", "uk"} {
		if err := Seed(db, site); err != nil {
			t.Fatalf("Seed(%s): %v", site, err)
		}
	}

	var roots int
	if err := db.QueryRow("SELECT COUNT(*) FROM categories WHERE is_root = $1", true).Scan(&roots); err != nil {
		t.Fatalf("count roots: %v", err)
	}
	if roots != 2 {
		t.Errorf("roots: got %d, want 2", roots)
	}
}
