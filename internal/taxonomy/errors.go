// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package taxonomy

import (
	"errors"
	"fmt"
)

var (
	// ErrRootNotFound matches every *RootNotFoundError.
	ErrRootNotFound = errors.New("root category not found")
	// ErrCascadeDelete matches every *CascadeDeleteError.
	ErrCascadeDelete = errors.New("cascade delete failed")

	ErrDuplicateRoot       = errors.New("site already has a root category")
	ErrParentNotFound      = errors.New("parent category not found")
	ErrCrossSiteParent     = errors.New("parent category belongs to another site")
	ErrCategoryNotFound    = errors.New("category not found")
	ErrInvalidCategoryType = errors.New("invalid category type")
	ErrInvalidSlug         = errors.New("invalid category slug")
	ErrMoveRoot            = errors.New("root category cannot be moved")
)

// RootNotFoundError reports a site without a root category. Every site is
// expected to have exactly one, so this is a data integrity failure.
type RootNotFoundError struct {
	SiteID string
}

func (e *RootNotFoundError) Error() string {
	return fmt.Sprintf("root category not found for site %q", e.SiteID)
}

// Is makes errors.Is(err, ErrRootNotFound) match.
func (e *RootNotFoundError) Is(target error) bool {
	return target == ErrRootNotFound
}

// CascadeDeleteError reports the category whose removal failed during a
// cascading delete. The surrounding transaction has been rolled back.
type CascadeDeleteError struct {
	CategoryID int64
	Err        error
}

func (e *CascadeDeleteError) Error() string {
	return fmt.Sprintf("cascade delete of category %d: %v", e.CategoryID, e.Err)
}

func (e *CascadeDeleteError) Unwrap() error {
	return e.Err
}

// Is makes errors.Is(err, ErrCascadeDelete) match.
func (e *CascadeDeleteError) Is(target error) bool {
	return target == ErrCascadeDelete
}
