// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package pathindex

import "strings"

// NormalizePath trims surrounding whitespace and slashes.
func NormalizePath(p string) string {
	return strings.Trim(strings.TrimSpace(p), "/")
}

// JoinPath returns the fullpath of a node with the given slug under a
// parent with parentPath. A node under an empty path is just its slug.
func JoinPath(parentPath, slug string) string {
	parentPath = NormalizePath(parentPath)
	slug = NormalizePath(slug)
	switch {
	case parentPath == "":
		return slug
	case slug == "":
		return parentPath
	}
	return parentPath + "/" + slug
}

// JoinSegments joins path segments, skipping empty ones.
func JoinSegments(segments ...string) string {
	parts := make([]string, 0, len(segments))
	for _, s := range segments {
		if s = NormalizePath(s); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, "/")
}

// FirstSegment returns the first slug of a path.
func FirstSegment(p string) string {
	p = NormalizePath(p)
	if i := strings.IndexByte(p, '/'); i >= 0 {
		return p[:i]
	}
	return p
}
