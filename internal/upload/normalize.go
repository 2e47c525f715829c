// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package upload manages the job-ad image store: a flat directory of
// uploaded files addressed by bare filename. It owns filename
// normalization, safe deletion, public URL resolution, and saving of
// multipart uploads.
package upload

import "strings"

// Normalize canonicalizes a stored image reference into a bare filename.
// Historical records carry references in several formats — absolute
// public paths ("/uploads/a.jpg"), disk-relative ones
// ("public/uploads/a.jpg"), or already-bare filenames. Each prefix is
// stripped at most once, in order: "public/", "/", "uploads/".
//
// Normalize is pure and idempotent; empty or whitespace-only input
// yields "". The result is the identity key for image comparisons: two
// differently-formatted references to the same file normalize equally.
func Normalize(raw string) string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return ""
	}
	s = strings.TrimPrefix(s, "public/")
	s = strings.TrimPrefix(s, "/")
	s = strings.TrimPrefix(s, "uploads/")
	return s
}
