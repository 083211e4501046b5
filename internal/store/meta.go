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

// MetaEntryByName retrieves a metadata key by name. Returns nil if not found.
func (s *SQL) MetaEntryByName(ctx context.Context, name string) (*models.MetaEntry, error) {
	var m models.MetaEntry
	err := s.q.QueryRowContext(ctx,
		`SELECT id, name FROM meta_entries WHERE name = $1`, name,
	).Scan(&m.ID, &m.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find meta entry: %w", err)
	}
	return &m, nil
}

// SaveMetaEntry inserts or renames a metadata key.
func (s *SQL) SaveMetaEntry(ctx context.Context, m *models.MetaEntry) error {
	if m.ID == 0 {
		err := s.q.QueryRowContext(ctx,
			`INSERT INTO meta_entries (name) VALUES ($1) RETURNING id`, m.Name,
		).Scan(&m.ID)
		if err != nil {
			return fmt.Errorf("create meta entry: %w", err)
		}
		return nil
	}
	res, err := s.q.ExecContext(ctx, `UPDATE meta_entries SET name = $1 WHERE id = $2`, m.Name, m.ID)
	if err != nil {
		return fmt.Errorf("update meta entry: %w", err)
	}
	return expectRow(res, "update meta entry", m.ID)
}

const metaValueColumns = `v.id, v.meta_id, v.category_id, e.name, v.value, v.pass_down`

func scanMetaValue(row scanner) (*models.MetaValue, error) {
	var v models.MetaValue
	if err := row.Scan(&v.ID, &v.MetaID, &v.CategoryID, &v.Name, &v.Value, &v.PassDown); err != nil {
		return nil, err
	}
	return &v, nil
}

// MetaValuesByCategory returns every value owned by categoryID, ordered by key name.
func (s *SQL) MetaValuesByCategory(ctx context.Context, categoryID int64) ([]models.MetaValue, error) {
	rows, err := s.q.QueryContext(ctx, `
		SELECT `+metaValueColumns+`
		FROM meta_values v
		JOIN meta_entries e ON e.id = v.meta_id
		WHERE v.category_id = $1
		ORDER BY e.name ASC`, categoryID)
	if err != nil {
		return nil, fmt.Errorf("list meta values: %w", err)
	}
	defer rows.Close()

	var items []models.MetaValue
	for rows.Next() {
		v, err := scanMetaValue(rows)
		if err != nil {
			return nil, fmt.Errorf("scan meta value: %w", err)
		}
		items = append(items, *v)
	}
	return items, rows.Err()
}

// MetaValue retrieves the value a category holds for a metadata key. Returns nil if not found.
func (s *SQL) MetaValue(ctx context.Context, categoryID, metaID int64) (*models.MetaValue, error) {
	row := s.q.QueryRowContext(ctx, `
		SELECT `+metaValueColumns+`
		FROM meta_values v
		JOIN meta_entries e ON e.id = v.meta_id
		WHERE v.category_id = $1 AND v.meta_id = $2`, categoryID, metaID)
	v, err := scanMetaValue(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find meta value: %w", err)
	}
	return v, nil
}

// SaveMetaValue inserts or updates a category's metadata value.
func (s *SQL) SaveMetaValue(ctx context.Context, v *models.MetaValue) error {
	if v.ID == 0 {
		err := s.q.QueryRowContext(ctx, `
			INSERT INTO meta_values (meta_id, category_id, value, pass_down)
			VALUES ($1, $2, $3, $4)
			RETURNING id`,
			v.MetaID, v.CategoryID, v.Value, v.PassDown,
		).Scan(&v.ID)
		if err != nil {
			return fmt.Errorf("create meta value: %w", err)
		}
		return nil
	}
	res, err := s.q.ExecContext(ctx, `
		UPDATE meta_values SET meta_id = $1, category_id = $2, value = $3, pass_down = $4
		WHERE id = $5`,
		v.MetaID, v.CategoryID, v.Value, v.PassDown, v.ID,
	)
	if err != nil {
		return fmt.Errorf("update meta value: %w", err)
	}
	return expectRow(res, "update meta value", v.ID)
}

// DeleteMetaValues removes every value owned by categoryID.
func (s *SQL) DeleteMetaValues(ctx context.Context, categoryID int64) error {
	if _, err := s.q.ExecContext(ctx, `DELETE FROM meta_values WHERE category_id = $1`, categoryID); err != nil {
		return fmt.Errorf("delete meta values: %w", err)
	}
	return nil
}
