// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package upload

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

const (
	// PlaceholderURL is served for empty image references so listings
	// always have something to render.
	PlaceholderURL = "/static/placeholder.png"

	// dirPerm is the mode for the upload root when created on demand.
	dirPerm = 0o755
)

// Store is the on-disk image store for job-ad uploads. All files live
// directly under Root (flat namespace, no per-ad subdirectories) and are
// addressed only by their normalized filename.
type Store struct {
	root         string
	publicPrefix string // URL prefix files are served under, e.g. "/uploads"
}

// NewStore creates an image store rooted at dir, creating the directory
// if needed. publicPrefix is the URL path the directory is served under.
func NewStore(dir, publicPrefix string) (*Store, error) {
	if err := os.MkdirAll(dir, dirPerm); err != nil {
		return nil, fmt.Errorf("upload root: %w", err)
	}
	return &Store{
		root:         dir,
		publicPrefix: strings.TrimRight(publicPrefix, "/"),
	}, nil
}

// Root returns the filesystem path of the upload root.
func (s *Store) Root() string {
	return s.root
}

// DeleteSafe removes the file behind the given reference, best-effort.
// Empty references are a silent no-op and a missing file counts as
// success — the reference may never have been uploaded, or a previous
// cleanup already removed it. Any other I/O failure is logged and
// swallowed: file cleanup must never block the record mutation that
// triggered it.
func (s *Store) DeleteSafe(reference string) {
	name := Normalize(reference)
	if name == "" {
		return
	}

	path, err := s.resolve(name)
	if err != nil {
		slog.Warn("upload delete skipped", "reference", reference, "error", err)
		return
	}

	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		slog.Warn("upload delete failed", "file", name, "error", err)
	}
}

// PublicURL maps an image reference to the path it is served under.
// Empty references resolve to the placeholder image.
func (s *Store) PublicURL(reference string) string {
	name := Normalize(reference)
	if name == "" {
		return PlaceholderURL
	}
	return s.publicPrefix + "/" + name
}

// Save writes an uploaded file into the store under a fresh UUID-based
// name, preserving the original extension, and returns the bare filename.
func (s *Store) Save(src io.Reader, originalName string) (string, error) {
	ext := strings.ToLower(filepath.Ext(originalName))
	name := uuid.New().String() + ext

	path, err := s.resolve(name)
	if err != nil {
		return "", err
	}

	dst, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("upload create %s: %w", name, err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		// Partial write — remove the fragment so it can't be served.
		os.Remove(path)
		return "", fmt.Errorf("upload write %s: %w", name, err)
	}
	return name, nil
}

// resolve maps a normalized filename to its location under the root,
// rejecting names that would escape it.
func (s *Store) resolve(name string) (string, error) {
	if strings.Contains(name, "..") || strings.ContainsRune(name, os.PathSeparator) {
		return "", fmt.Errorf("invalid upload filename %q", name)
	}
	return filepath.Join(s.root, name), nil
}
