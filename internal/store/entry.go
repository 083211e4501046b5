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

	"github.com/google/uuid"

	"taxonomy/internal/models"
)

const entryColumns = `id, site_id, title, hero_shorter_title, basename, body,
	status, type, published_at, modified_at`

// prefixColumns qualifies a column list with a table alias.
func prefixColumns(alias, columns string) string {
	cols := strings.Split(columns, ",")
	for i, c := range cols {
		cols[i] = alias + "." + strings.TrimSpace(c)
	}
	return strings.Join(cols, ", ")
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

func timePtr(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time
	return &v
}

// EntryByID retrieves an entry and its collections. Returns nil if not found.
func (s *SQL) EntryByID(ctx context.Context, id int64) (*models.Entry, error) {
	var (
		e                   models.Entry
		published, modified sql.NullTime
	)
	err := s.q.QueryRowContext(ctx, `SELECT `+entryColumns+` FROM entries WHERE id = $1`, id).Scan(
		&e.ID, &e.SiteID, &e.Title, &e.HeroShorterTitle, &e.Basename, &e.Body,
		&e.Status, &e.Type, &published, &modified,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find entry by id: %w", err)
	}
	e.PublishedAt = timePtr(published)
	e.ModifiedAt = timePtr(modified)

	if e.Categories, err = s.entryCategories(ctx, id); err != nil {
		return nil, err
	}
	if e.Tags, err = s.entryTags(ctx, id); err != nil {
		return nil, err
	}
	if e.Assets, err = s.entryAssets(ctx, id); err != nil {
		return nil, err
	}
	if e.Sections, err = s.entrySections(ctx, id); err != nil {
		return nil, err
	}
	return &e, nil
}

func (s *SQL) entryCategories(ctx context.Context, entryID int64) ([]models.EntryCategory, error) {
	rows, err := s.q.QueryContext(ctx, `
		SELECT ec.is_primary, `+prefixColumns("c", categoryColumns)+`
		FROM entry_categories ec
		JOIN categories c ON c.id = ec.category_id
		WHERE ec.entry_id = $1
		ORDER BY c.display_order ASC, c.id ASC`, entryID)
	if err != nil {
		return nil, fmt.Errorf("list entry categories: %w", err)
	}
	defer rows.Close()

	var items []models.EntryCategory
	for rows.Next() {
		var (
			ec       models.EntryCategory
			c        models.Category
			parentID sql.NullInt64
		)
		err := rows.Scan(&ec.IsPrimary,
			&c.ID, &c.SiteID, &c.Name, &c.Slug, &c.Fullpath, &parentID, &c.IsActive,
			&c.IsVisible, &c.DisplayOrder, &c.IsRoot, &c.Type, &c.CreatedAt, &c.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan entry category: %w", err)
		}
		c.ParentID = int64Ptr(parentID)
		ec.EntryID, ec.CategoryID, ec.Category = entryID, c.ID, &c
		items = append(items, ec)
	}
	return items, rows.Err()
}

func (s *SQL) entryTags(ctx context.Context, entryID int64) ([]models.EntryTag, error) {
	rows, err := s.q.QueryContext(ctx, `
		SELECT et.is_primary, `+prefixColumns("t", tagColumns)+`
		FROM entry_tags et
		JOIN tags t ON t.id = et.tag_id
		WHERE et.entry_id = $1
		ORDER BY t.id ASC`, entryID)
	if err != nil {
		return nil, fmt.Errorf("list entry tags: %w", err)
	}
	defer rows.Close()

	var items []models.EntryTag
	for rows.Next() {
		var (
			et         models.EntryTag
			t          models.Tag
			categoryID sql.NullInt64
		)
		err := rows.Scan(&et.IsPrimary,
			&t.ID, &t.Tag, &t.Slug, &categoryID, &t.Name, &t.Type, &t.Hidden,
		)
		if err != nil {
			return nil, fmt.Errorf("scan entry tag: %w", err)
		}
		t.CategoryID = int64Ptr(categoryID)
		et.EntryID, et.TagID, et.Tag = entryID, t.ID, &t
		items = append(items, et)
	}
	return items, rows.Err()
}

func (s *SQL) entryAssets(ctx context.Context, entryID int64) ([]models.EntryAsset, error) {
	rows, err := s.q.QueryContext(ctx, `
		SELECT ea.id, ea.entry_id, ea.type, ea.display_order, ea.is_active,
		       ea.crop_x, ea.crop_y, ea.crop_w, ea.crop_h,
		       a.id, a.kind, a.source, a.title, a.media_id, a.width, a.height
		FROM entry_assets ea
		JOIN assets a ON a.id = ea.asset_id
		WHERE ea.entry_id = $1
		ORDER BY ea.display_order ASC, ea.id ASC`, entryID)
	if err != nil {
		return nil, fmt.Errorf("list entry assets: %w", err)
	}
	defer rows.Close()

	var items []models.EntryAsset
	for rows.Next() {
		var (
			ea      models.EntryAsset
			mediaID uuid.NullUUID
		)
		err := rows.Scan(
			&ea.ID, &ea.EntryID, &ea.Type, &ea.DisplayOrder, &ea.IsActive,
			&ea.Crop.X, &ea.Crop.Y, &ea.Crop.W, &ea.Crop.H,
			&ea.Asset.ID, &ea.Asset.Kind, &ea.Asset.Source, &ea.Asset.Title, &mediaID, &ea.Asset.Width, &ea.Asset.Height,
		)
		if err != nil {
			return nil, fmt.Errorf("scan entry asset: %w", err)
		}
		if mediaID.Valid {
			id := mediaID.UUID
			ea.Asset.MediaID = &id
		}
		items = append(items, ea)
	}
	return items, rows.Err()
}

func (s *SQL) entrySections(ctx context.Context, entryID int64) ([]models.EntrySection, error) {
	rows, err := s.q.QueryContext(ctx, `
		SELECT id, entry_id, placement, type, content, display_order
		FROM entry_sections
		WHERE entry_id = $1
		ORDER BY display_order ASC, id ASC`, entryID)
	if err != nil {
		return nil, fmt.Errorf("list entry sections: %w", err)
	}
	defer rows.Close()

	var items []models.EntrySection
	for rows.Next() {
		var sec models.EntrySection
		if err := rows.Scan(&sec.ID, &sec.EntryID, &sec.Placement, &sec.Type, &sec.Content, &sec.DisplayOrder); err != nil {
			return nil, fmt.Errorf("scan entry section: %w", err)
		}
		items = append(items, sec)
	}
	return items, rows.Err()
}

// SaveEntry stores the entry row and replaces its categories, tags, assets
// and sections in one transaction.
func (s *SQL) SaveEntry(ctx context.Context, e *models.Entry) error {
	return s.WithTx(ctx, func(tx Storage) error {
		return tx.(*SQL).saveEntry(ctx, e)
	})
}

func (s *SQL) saveEntry(ctx context.Context, e *models.Entry) error {
	if e.ID == 0 {
		err := s.q.QueryRowContext(ctx, `
			INSERT INTO entries (site_id, title, hero_shorter_title, basename, body,
				status, type, published_at, modified_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			RETURNING id`,
			e.SiteID, e.Title, e.HeroShorterTitle, e.Basename, e.Body,
			string(e.Status), string(e.Type), nullTime(e.PublishedAt), nullTime(e.ModifiedAt),
		).Scan(&e.ID)
		if err != nil {
			return fmt.Errorf("create entry: %w", err)
		}
	} else {
		res, err := s.q.ExecContext(ctx, `
			UPDATE entries SET site_id = $1, title = $2, hero_shorter_title = $3, basename = $4,
				body = $5, status = $6, type = $7, published_at = $8, modified_at = $9
			WHERE id = $10`,
			e.SiteID, e.Title, e.HeroShorterTitle, e.Basename, e.Body,
			string(e.Status), string(e.Type), nullTime(e.PublishedAt), nullTime(e.ModifiedAt), e.ID,
		)
		if err != nil {
			return fmt.Errorf("update entry: %w", err)
		}
		if err := expectRow(res, "update entry", e.ID); err != nil {
			return err
		}
	}

	for _, table := range []string{"entry_categories", "entry_tags", "entry_assets", "entry_sections"} {
		if _, err := s.q.ExecContext(ctx, `DELETE FROM `+table+` WHERE entry_id = $1`, e.ID); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}

	for i := range e.Categories {
		ec := &e.Categories[i]
		ec.EntryID = e.ID
		if ec.CategoryID == 0 && ec.Category != nil {
			ec.CategoryID = ec.Category.ID
		}
		_, err := s.q.ExecContext(ctx, `
			INSERT INTO entry_categories (entry_id, category_id, is_primary) VALUES ($1, $2, $3)`,
			ec.EntryID, ec.CategoryID, ec.IsPrimary)
		if err != nil {
			return fmt.Errorf("insert entry category: %w", err)
		}
	}

	for i := range e.Tags {
		et := &e.Tags[i]
		et.EntryID = e.ID
		if et.TagID == 0 && et.Tag != nil {
			et.TagID = et.Tag.ID
		}
		_, err := s.q.ExecContext(ctx, `
			INSERT INTO entry_tags (entry_id, tag_id, is_primary) VALUES ($1, $2, $3)`,
			et.EntryID, et.TagID, et.IsPrimary)
		if err != nil {
			return fmt.Errorf("insert entry tag: %w", err)
		}
	}

	for i := range e.Assets {
		ea := &e.Assets[i]
		ea.EntryID = e.ID
		if ea.Asset.ID == 0 {
			if err := s.insertAsset(ctx, &ea.Asset); err != nil {
				return err
			}
		}
		err := s.q.QueryRowContext(ctx, `
			INSERT INTO entry_assets (entry_id, asset_id, type, display_order, is_active,
				crop_x, crop_y, crop_w, crop_h)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			RETURNING id`,
			ea.EntryID, ea.Asset.ID, string(ea.Type), ea.DisplayOrder, ea.IsActive,
			ea.Crop.X, ea.Crop.Y, ea.Crop.W, ea.Crop.H,
		).Scan(&ea.ID)
		if err != nil {
			return fmt.Errorf("insert entry asset: %w", err)
		}
	}

	for i := range e.Sections {
		sec := &e.Sections[i]
		sec.EntryID = e.ID
		err := s.q.QueryRowContext(ctx, `
			INSERT INTO entry_sections (entry_id, placement, type, content, display_order)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING id`,
			sec.EntryID, sec.Placement, sec.Type, sec.Content, sec.DisplayOrder,
		).Scan(&sec.ID)
		if err != nil {
			return fmt.Errorf("insert entry section: %w", err)
		}
	}
	return nil
}

func (s *SQL) insertAsset(ctx context.Context, a *models.Asset) error {
	var mediaID uuid.NullUUID
	if a.MediaID != nil {
		mediaID = uuid.NullUUID{UUID: *a.MediaID, Valid: true}
	}
	err := s.q.QueryRowContext(ctx, `
		INSERT INTO assets (kind, source, title, media_id, width, height)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`,
		string(a.Kind), string(a.Source), a.Title, mediaID, a.Width, a.Height,
	).Scan(&a.ID)
	if err != nil {
		return fmt.Errorf("create asset: %w", err)
	}
	return nil
}

// CountCategoryEntries counts the entries associated with a category.
func (s *SQL) CountCategoryEntries(ctx context.Context, categoryID int64, primaryOnly bool) (int, error) {
	query := `SELECT COUNT(*) FROM entry_categories WHERE category_id = $1`
	args := []any{categoryID}
	if primaryOnly {
		query += ` AND is_primary = $2`
		args = append(args, true)
	}

	var n int
	if err := s.q.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count category entries: %w", err)
	}
	return n, nil
}

// NewestEntry returns the most recently published entry of a category. Returns nil if none.
func (s *SQL) NewestEntry(ctx context.Context, categoryID int64, status models.EntryStatus) (*models.Entry, error) {
	var id int64
	err := s.q.QueryRowContext(ctx, `
		SELECT e.id
		FROM entries e
		JOIN entry_categories ec ON ec.entry_id = e.id
		WHERE ec.category_id = $1 AND e.status = $2 AND e.published_at IS NOT NULL
		ORDER BY e.published_at DESC, e.id DESC
		LIMIT 1`, categoryID, string(status)).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find newest entry: %w", err)
	}
	return s.EntryByID(ctx, id)
}
