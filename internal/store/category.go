// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"taxonomy/internal/models"
)

const categoryColumns = `id, site_id, name, slug, fullpath, parent_id, is_active,
	is_visible, display_order, is_root, type, created_at, updated_at`

// scanCategory scans a row into a Category struct.
func scanCategory(row scanner) (*models.Category, error) {
	var (
		c        models.Category
		parentID sql.NullInt64
	)
	err := row.Scan(
		&c.ID, &c.SiteID, &c.Name, &c.Slug, &c.Fullpath, &parentID, &c.IsActive,
		&c.IsVisible, &c.DisplayOrder, &c.IsRoot, &c.Type, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	c.ParentID = int64Ptr(parentID)
	return &c, nil
}

func (s *SQL) queryCategories(ctx context.Context, query string, args ...any) ([]models.Category, error) {
	rows, err := s.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []models.Category
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		items = append(items, *c)
	}
	return items, rows.Err()
}

// CategoryByID retrieves a category by ID. Returns nil if not found.
func (s *SQL) CategoryByID(ctx context.Context, id int64) (*models.Category, error) {
	row := s.q.QueryRowContext(ctx, `SELECT `+categoryColumns+` FROM categories WHERE id = $1`, id)
	c, err := scanCategory(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find category by id: %w", err)
	}
	return c, nil
}

// FindCategories returns the categories matching f.
func (s *SQL) FindCategories(ctx context.Context, f CategoryFilter) ([]models.Category, error) {
	var (
		where []string
		args  []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if f.SiteID != "" {
		where = append(where, "site_id = "+arg(f.SiteID))
	}
	if f.Fullpath != "" {
		where = append(where, "fullpath = "+arg(f.Fullpath))
	}
	if f.FullpathPrefix != "" {
		// substr keeps the match case-sensitive on SQLite, where LIKE is not.
		p := arg(f.FullpathPrefix)
		where = append(where, fmt.Sprintf("substr(fullpath, 1, length(CAST(%s AS TEXT))) = CAST(%s AS TEXT)", p, p))
	}
	if f.Type != "" {
		where = append(where, "type = "+arg(string(f.Type)))
	}
	if f.OnlyActive {
		where = append(where, "is_active = "+arg(true))
	}
	if f.RootsOnly {
		where = append(where, "is_root = "+arg(true), "parent_id IS NULL")
	}

	query := `SELECT ` + categoryColumns + ` FROM categories`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}

	var order []string
	if f.ActiveFirst {
		order = append(order, "is_active DESC")
	}
	switch f.Order {
	case OrderFullpath:
		order = append(order, "fullpath ASC", "id ASC")
	default:
		order = append(order, "display_order ASC", "id ASC")
	}
	query += " ORDER BY " + strings.Join(order, ", ")

	if f.Limit > 0 {
		query += " LIMIT " + arg(f.Limit)
	}

	items, err := s.queryCategories(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("find categories: %w", err)
	}
	return items, nil
}

// ChildCategories returns the direct children of parentID.
func (s *SQL) ChildCategories(ctx context.Context, parentID int64) ([]models.Category, error) {
	items, err := s.queryCategories(ctx, `
		SELECT `+categoryColumns+` FROM categories
		WHERE parent_id = $1
		ORDER BY display_order ASC, id ASC`, parentID)
	if err != nil {
		return nil, fmt.Errorf("list child categories: %w", err)
	}
	return items, nil
}

// SaveCategory inserts or updates a category.
func (s *SQL) SaveCategory(ctx context.Context, c *models.Category) error {
	now := time.Now().UTC()
	if c.ID == 0 {
		c.CreatedAt, c.UpdatedAt = now, now
		err := s.q.QueryRowContext(ctx, `
			INSERT INTO categories (site_id, name, slug, fullpath, parent_id, is_active,
				is_visible, display_order, is_root, type, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
			RETURNING id`,
			c.SiteID, c.Name, c.Slug, c.Fullpath, nullInt64(c.ParentID), c.IsActive,
			c.IsVisible, c.DisplayOrder, c.IsRoot, string(c.Type), c.CreatedAt, c.UpdatedAt,
		).Scan(&c.ID)
		if err != nil {
			return fmt.Errorf("create category: %w", err)
		}
		return nil
	}

	c.UpdatedAt = now
	res, err := s.q.ExecContext(ctx, `
		UPDATE categories SET
			site_id = $1, name = $2, slug = $3, fullpath = $4, parent_id = $5,
			is_active = $6, is_visible = $7, display_order = $8, is_root = $9,
			type = $10, updated_at = $11
		WHERE id = $12`,
		c.SiteID, c.Name, c.Slug, c.Fullpath, nullInt64(c.ParentID),
		c.IsActive, c.IsVisible, c.DisplayOrder, c.IsRoot,
		string(c.Type), c.UpdatedAt, c.ID,
	)
	if err != nil {
		return fmt.Errorf("update category: %w", err)
	}
	return expectRow(res, "update category", c.ID)
}

// DeleteCategory removes a single category row. Children must be removed first.
func (s *SQL) DeleteCategory(ctx context.Context, id int64) error {
	res, err := s.q.ExecContext(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	return expectRow(res, "delete category", id)
}

func expectRow(res sql.Result, op string, id int64) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n == 0 {
		return fmt.Errorf("%s %d: %w", op, id, ErrNotFound)
	}
	return nil
}
