// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package assets picks the representative asset of an entry. Every lookup
// works on the entry's already loaded asset collection, considers active
// assets only and orders them by display order, then id. A missing asset
// is a nil result, never an error.
package assets

import (
	"cmp"
	"errors"
	"fmt"
	"slices"

	mapset "github.com/deckarep/golang-set/v2"

	"taxonomy/internal/models"
)

var (
	// ErrInvalidOpenerType matches every *InvalidOpenerTypeError.
	ErrInvalidOpenerType = errors.New("invalid opener type")
	// ErrNotSlideshow is returned by Slide for entries that are not slideshows.
	ErrNotSlideshow = errors.New("entry is not a slideshow")
)

// InvalidOpenerTypeError reports an asset type outside the opener set.
type InvalidOpenerTypeError struct {
	Type models.AssetType
}

func (e *InvalidOpenerTypeError) Error() string {
	return fmt.Sprintf("invalid opener type %q", e.Type)
}

// Is makes errors.Is(err, ErrInvalidOpenerType) match.
func (e *InvalidOpenerTypeError) Is(target error) bool {
	return target == ErrInvalidOpenerType
}

// Policy selects how the main asset of an entry is chosen.
type Policy int

const (
	// PolicyMain takes the first MAIN asset.
	PolicyMain Policy = iota
	// PolicyFallbackAltLast prefers SLIDESHOW, EMBEDDED, MAIN, then MAIN_ALT.
	PolicyFallbackAltLast
	// PolicyFallbackAltFirst prefers SLIDESHOW, EMBEDDED, MAIN_ALT, then MAIN.
	PolicyFallbackAltFirst
	// PolicyAltOnly takes the first MAIN_ALT asset.
	PolicyAltOnly
)

// PolicyFor maps the fallback and alt flags to a policy.
func PolicyFor(fallback, alt bool) Policy {
	switch {
	case fallback && alt:
		return PolicyFallbackAltLast
	case fallback:
		return PolicyFallbackAltFirst
	case alt:
		return PolicyAltOnly
	default:
		return PolicyMain
	}
}

func (p Policy) String() string {
	switch p {
	case PolicyFallbackAltLast:
		return "fallback-alt-last"
	case PolicyFallbackAltFirst:
		return "fallback-alt-first"
	case PolicyAltOnly:
		return "alt-only"
	default:
		return "main"
	}
}

// preference lists the buckets tried in order. MAIN is always tried last
// as the final fallback.
func (p Policy) preference() []models.AssetType {
	switch p {
	case PolicyFallbackAltLast:
		return []models.AssetType{models.AssetTypeSlideshow, models.AssetTypeEmbedded, models.AssetTypeMain, models.AssetTypeMainAlt}
	case PolicyFallbackAltFirst:
		return []models.AssetType{models.AssetTypeSlideshow, models.AssetTypeEmbedded, models.AssetTypeMainAlt, models.AssetTypeMain}
	case PolicyAltOnly:
		return []models.AssetType{models.AssetTypeMainAlt}
	default:
		return nil
	}
}

// Resolver answers asset lookups over entries. It holds no mutable state
// and is safe for concurrent use.
type Resolver struct {
	openers mapset.Set[models.AssetType]
}

// NewResolver creates a Resolver accepting models.OpenerTypes as openers.
func NewResolver() *Resolver {
	return &Resolver{openers: mapset.NewSet(models.OpenerTypes()...)}
}

// IsOpenerType reports whether t can be requested through OpenerByType.
func (r *Resolver) IsOpenerType(t models.AssetType) bool {
	return r.openers.Contains(t)
}

// active returns e's active assets, optionally of one type, in display order.
func active(e *models.Entry, t models.AssetType) []models.EntryAsset {
	if e == nil {
		return nil
	}
	var out []models.EntryAsset
	for _, a := range e.Assets {
		if a.IsActive && (t == "" || a.Type == t) {
			out = append(out, a)
		}
	}
	slices.SortStableFunc(out, func(a, b models.EntryAsset) int {
		return cmp.Or(cmp.Compare(a.DisplayOrder, b.DisplayOrder), cmp.Compare(a.ID, b.ID))
	})
	return out
}

func first(e *models.Entry, t models.AssetType) *models.EntryAsset {
	if found := active(e, t); len(found) > 0 {
		return &found[0]
	}
	return nil
}

// Main returns the main asset of e under policy p, or nil.
func (r *Resolver) Main(e *models.Entry, p Policy) *models.EntryAsset {
	for _, t := range p.preference() {
		if a := first(e, t); a != nil {
			return a
		}
	}
	return first(e, models.AssetTypeMain)
}

// MainAsset is Main with the policy chosen by PolicyFor(fallback, alt).
func (r *Resolver) MainAsset(e *models.Entry, fallback, alt bool) *models.EntryAsset {
	return r.Main(e, PolicyFor(fallback, alt))
}

// OpenerByType returns the first active asset of opener type t, or nil.
func (r *Resolver) OpenerByType(e *models.Entry, t models.AssetType) (*models.EntryAsset, error) {
	if !r.IsOpenerType(t) {
		return nil, &InvalidOpenerTypeError{Type: t}
	}
	return first(e, t), nil
}

// VideoPoster returns the VIDEO_POSTER opener. With allowFallback, a
// missing poster falls back to PolicyFallbackAltFirst.
func (r *Resolver) VideoPoster(e *models.Entry, allowFallback bool) *models.EntryAsset {
	if a := first(e, models.AssetTypeVideoPoster); a != nil {
		return a
	}
	if allowFallback {
		return r.Main(e, PolicyFallbackAltFirst)
	}
	return nil
}

// TopicBigOpener returns the MAIN_TOPIC_BIG opener, else the MAIN asset.
func (r *Resolver) TopicBigOpener(e *models.Entry) *models.EntryAsset {
	if a := first(e, models.AssetTypeMainTopicBig); a != nil {
		return a
	}
	return r.Main(e, PolicyMain)
}

// Slide returns the n-th (1-based) active SLIDESHOW asset of a slideshow
// entry, or nil when there is no such slide.
func (r *Resolver) Slide(e *models.Entry, n int) (*models.EntryAsset, error) {
	if e == nil {
		return nil, nil
	}
	if e.Type != models.EntryTypeSlideshow {
		return nil, fmt.Errorf("slide %d of entry %d: %w", n, e.ID, ErrNotSlideshow)
	}
	slides := active(e, models.AssetTypeSlideshow)
	if n < 1 || n > len(slides) {
		return nil, nil
	}
	return &slides[n-1], nil
}

// Assets lists active assets of type t (all types when t is empty). A
// positive limit pages the result starting at offset.
func (r *Resolver) Assets(e *models.Entry, t models.AssetType, limit, offset int) []models.EntryAsset {
	out := active(e, t)
	if limit <= 0 {
		return out
	}
	offset = max(offset, 0)
	if offset >= len(out) {
		return nil
	}
	return out[offset:min(offset+limit, len(out))]
}

// SlideshowAssets lists the active SLIDESHOW assets.
func (r *Resolver) SlideshowAssets(e *models.Entry) []models.EntryAsset {
	return r.Assets(e, models.AssetTypeSlideshow, 0, 0)
}

// VideoEntryAssets lists the active EMBEDDED assets whose payload is an
// internal video.
func (r *Resolver) VideoEntryAssets(e *models.Entry) []models.EntryAsset {
	return slices.DeleteFunc(r.Assets(e, models.AssetTypeEmbedded, 0, 0), func(a models.EntryAsset) bool {
		return !a.Asset.IsInternalVideo()
	})
}

// ListingImage returns the asset shown for e in listings. Video entries
// use their poster when preferVideoPoster is set; everything else uses
// the alt-only policy.
func (r *Resolver) ListingImage(e *models.Entry, preferVideoPoster bool) *models.EntryAsset {
	if e != nil && e.Type == models.EntryTypeVideo && preferVideoPoster {
		return r.VideoPoster(e, true)
	}
	return r.Main(e, PolicyAltOnly)
}
