// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"taxonomy/internal/models"
)

const tagColumns = `id, tag, slug, category_id, name, type, hidden`

func scanTag(row scanner) (*models.Tag, error) {
	var (
		t          models.Tag
		categoryID sql.NullInt64
	)
	if err := row.Scan(&t.ID, &t.Tag, &t.Slug, &categoryID, &t.Name, &t.Type, &t.Hidden); err != nil {
		return nil, err
	}
	t.CategoryID = int64Ptr(categoryID)
	return &t, nil
}

// TagBySlug retrieves a tag by slug. Returns nil if not found.
func (s *SQL) TagBySlug(ctx context.Context, slug string) (*models.Tag, error) {
	row := s.q.QueryRowContext(ctx, `SELECT `+tagColumns+` FROM tags WHERE slug = $1`, slug)
	t, err := scanTag(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find tag by slug: %w", err)
	}
	return t, nil
}

// TagsByCategory returns the tags owned by a category, ordered by id.
func (s *SQL) TagsByCategory(ctx context.Context, categoryID int64) ([]models.Tag, error) {
	rows, err := s.q.QueryContext(ctx,
		`SELECT `+tagColumns+` FROM tags WHERE category_id = $1 ORDER BY id ASC`, categoryID)
	if err != nil {
		return nil, fmt.Errorf("list category tags: %w", err)
	}
	defer rows.Close()

	var items []models.Tag
	for rows.Next() {
		t, err := scanTag(rows)
		if err != nil {
			return nil, fmt.Errorf("scan tag: %w", err)
		}
		items = append(items, *t)
	}
	return items, rows.Err()
}

// SaveTag inserts or updates a tag.
func (s *SQL) SaveTag(ctx context.Context, t *models.Tag) error {
	if t.ID == 0 {
		err := s.q.QueryRowContext(ctx, `
			INSERT INTO tags (tag, slug, category_id, name, type, hidden)
			VALUES ($1, $2, $3, $4, $5, $6)
			RETURNING id`,
			t.Tag, t.Slug, nullInt64(t.CategoryID), t.Name, t.Type, t.Hidden,
		).Scan(&t.ID)
		if err != nil {
			return fmt.Errorf("create tag: %w", err)
		}
		return nil
	}
	res, err := s.q.ExecContext(ctx, `
		UPDATE tags SET tag = $1, slug = $2, category_id = $3, name = $4, type = $5, hidden = $6
		WHERE id = $7`,
		t.Tag, t.Slug, nullInt64(t.CategoryID), t.Name, t.Type, t.Hidden, t.ID,
	)
	if err != nil {
		return fmt.Errorf("update tag: %w", err)
	}
	return expectRow(res, "update tag", t.ID)
}
