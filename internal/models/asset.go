// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"fmt"

	"github.com/google/uuid"
)

// AssetType is the role an asset plays within an entry.
type AssetType string

const (
	AssetTypeMain               AssetType = "MAIN"
	AssetTypeSlideshow          AssetType = "SLIDESHOW"
	AssetTypeEmbedded           AssetType = "EMBEDDED"
	AssetTypeMainTopicBig       AssetType = "MAIN_TOPIC_BIG"
	AssetTypeVideoPoster        AssetType = "VIDEO_POSTER"
	AssetTypeOpenerArticleFull  AssetType = "OPENER_ARTICLE_FULL"
	AssetTypeOpenerSingleHero   AssetType = "OPENER_SINGLE_HERO"
	AssetTypeOpenerSingleHeroPT AssetType = "OPENER_SINGLE_HERO_PT"
	AssetTypeOpenerCircleStory  AssetType = "OPENER_CIRCLE_STORY"
	AssetTypeOpenerSmallStory   AssetType = "OPENER_SMALL_STORY"
	AssetTypeOpenerFullIntro    AssetType = "OPENER_FULL_INTRO"

	// Deprecated types, still present on older entries.
	AssetTypeMainAlt     AssetType = "MAIN_ALT"
	AssetTypeMainHotspot AssetType = "MAIN_HOTSPOT"
)

// AllAssetTypes returns every entry asset type, deprecated ones last.
func AllAssetTypes() []AssetType {
	return []AssetType{
		AssetTypeMain,
		AssetTypeSlideshow,
		AssetTypeEmbedded,
		AssetTypeMainTopicBig,
		AssetTypeVideoPoster,
		AssetTypeOpenerArticleFull,
		AssetTypeOpenerSingleHero,
		AssetTypeOpenerSingleHeroPT,
		AssetTypeOpenerCircleStory,
		AssetTypeOpenerSmallStory,
		AssetTypeOpenerFullIntro,
		AssetTypeMainAlt,
		AssetTypeMainHotspot,
	}
}

// OpenerTypes returns the asset types that may be requested as openers.
// MAIN is resolved through the main-asset policies and is not an opener.
func OpenerTypes() []AssetType {
	return []AssetType{
		AssetTypeMainTopicBig,
		AssetTypeVideoPoster,
		AssetTypeOpenerArticleFull,
		AssetTypeOpenerSingleHero,
		AssetTypeOpenerSingleHeroPT,
		AssetTypeOpenerCircleStory,
		AssetTypeOpenerSmallStory,
		AssetTypeOpenerFullIntro,
	}
}

// AssetKind is the type of the underlying payload.
type AssetKind string

const (
	AssetKindImage     AssetKind = "IMAGE"
	AssetKindProduct   AssetKind = "PRODUCT"
	AssetKindVideo     AssetKind = "VIDEO"
	AssetKindHypertext AssetKind = "HYPERTEXT"
)

// VideoSource tells where a VIDEO payload is hosted.
type VideoSource string

const (
	VideoSourceInternal VideoSource = "INTERNAL"
	VideoSourceExternal VideoSource = "EXTERNAL"
)

// Asset is the payload referenced by an entry asset. MediaID points at the
// stored media object; resolving it to a URL is the caller's concern.
type Asset struct {
	ID      int64       `json:"id"`
	Kind    AssetKind   `json:"kind"`
	Source  VideoSource `json:"source,omitempty"` // VIDEO payloads only
	Title   string      `json:"title"`
	MediaID *uuid.UUID  `json:"media_id,omitempty"`
	Width   int         `json:"width"`
	Height  int         `json:"height"`
}

// IsInternalVideo reports whether the payload is a self-hosted video.
func (a Asset) IsInternalVideo() bool {
	return a.Kind == AssetKindVideo && a.Source == VideoSourceInternal
}

// Crop is a rectangle within the payload image.
type Crop struct {
	X int `json:"x"`
	Y int `json:"y"`
	W int `json:"w"`
	H int `json:"h"`
}

// EntryAsset places an asset within an entry.
type EntryAsset struct {
	ID           int64     `json:"id"`
	EntryID      int64     `json:"entry_id"`
	Type         AssetType `json:"type"`
	DisplayOrder int       `json:"display_order"`
	IsActive     bool      `json:"is_active"`
	Crop         Crop      `json:"crop"`
	Asset        Asset     `json:"asset"`
}

// CropCode returns the crop rectangle as "x,y,w,h".
func (a *EntryAsset) CropCode() string {
	return fmt.Sprintf("%d,%d,%d,%d", a.Crop.X, a.Crop.Y, a.Crop.W, a.Crop.H)
}

// AspectRatio returns width/height of the crop, falling back to the
// payload's dimensions. Returns 0 when neither is known.
func (a *EntryAsset) AspectRatio() float64 {
	if a.Crop.W > 0 && a.Crop.H > 0 {
		return float64(a.Crop.W) / float64(a.Crop.H)
	}
	if a.Asset.Height > 0 {
		return float64(a.Asset.Width) / float64(a.Asset.Height)
	}
	return 0
}
