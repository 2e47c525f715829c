// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package ads implements the ad moderation workflow and the image
// reconciliation service. It sits between the HTTP handlers and the
// record/file stores and owns the status state machine, audit fields,
// and the diff-and-delete logic for image edits.
package ads

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"pressboard/internal/models"
	"pressboard/internal/store"
	"pressboard/internal/upload"
)

// DefaultDeleteReason is recorded when an admin deletes an ad without
// supplying a reason.
const DefaultDeleteReason = "Deleted by administrator"

// Sentinel errors returned by the service. Handlers map these onto HTTP
// statuses; anything else is a server error.
var (
	ErrNotFound     = errors.New("ad not found")
	ErrInvalidInput = errors.New("invalid input")
)

// Records is the slice of the ad store the service depends on.
// *store.AdStore satisfies it; tests substitute an in-memory fake.
type Records interface {
	FindByID(id uuid.UUID) (*models.Ad, error)
	UpdateImages(id uuid.UUID, images []string) (*models.Ad, error)
	UpdateModeration(id uuid.UUID, u models.ModerationUpdate) (*models.Ad, error)
	HardDelete(id uuid.UUID) (*models.Ad, error)
	List(f store.ListFilter, ascending bool, limit int) ([]models.Ad, error)
}

// Files is the image store surface the service needs: best-effort
// deletion only. *upload.Store satisfies it.
type Files interface {
	DeleteSafe(reference string)
}

// Config holds the service's policy knobs.
type Config struct {
	// MaxImagesPerAd caps images at ad creation.
	MaxImagesPerAd int

	// EnforceImageCapOnReconcile extends the cap to image reconciliation.
	// Off by default: historically an edit could carry more images than
	// creation allowed, and existing records depend on that.
	EnforceImageCapOnReconcile bool
}

// DefaultConfig returns the production policy: five images per ad,
// reconciliation uncapped.
func DefaultConfig() Config {
	return Config{MaxImagesPerAd: 5}
}

// Service implements moderation and image reconciliation over an ad
// record store and an image file store.
type Service struct {
	records Records
	files   Files
	cfg     Config
	now     func() time.Time
}

// New creates a Service with the given stores and policy.
func New(records Records, files Files, cfg Config) *Service {
	return &Service{records: records, files: files, cfg: cfg, now: time.Now}
}

// MaxImages returns the creation-time image cap.
func (s *Service) MaxImages() int {
	return s.cfg.MaxImagesPerAd
}

// Moderate applies an admin action to an ad. The state machine is
// deliberately permissive: every action is valid from every state and
// idempotently re-appliable, so two admins racing on the same ad cannot
// corrupt it — last write wins.
//
//	APPROVE: status=PUBLISHED, soft-delete lifted, delete audit cleared
//	REJECT:  status=REJECTED, soft-delete state untouched
//	DELETE:  is_deleted=true, status untouched, reason defaulted
//
// Role gating happens before this method is called; Moderate itself only
// records who acted.
func (s *Service) Moderate(adID, adminID uuid.UUID, action models.ModerationAction, note string) (*models.Ad, error) {
	ad, err := s.records.FindByID(adID)
	if err != nil {
		return nil, fmt.Errorf("moderate %s: %w", adID, err)
	}
	if ad == nil {
		return nil, ErrNotFound
	}

	now := s.now()
	u := models.ModerationUpdate{Status: ad.Status, IsDeleted: ad.IsDeleted}

	switch action {
	case models.ActionApprove:
		u.Status = models.AdStatusPublished
		u.IsDeleted = false
		u.SetModeration = true
		u.ModeratedByID = &adminID
		u.ModeratedAt = &now
		u.ModerationNote = optional(note)
		// APPROVE is the one action that reverses a prior DELETE.
		u.SetDeletion = true

	case models.ActionReject:
		u.Status = models.AdStatusRejected
		u.SetModeration = true
		u.ModeratedByID = &adminID
		u.ModeratedAt = &now
		u.ModerationNote = optional(note)

	case models.ActionDelete:
		u.IsDeleted = true
		u.SetDeletion = true
		u.DeletedByID = &adminID
		u.DeletedAt = &now
		reason := note
		if reason == "" {
			reason = DefaultDeleteReason
		}
		u.DeleteReason = &reason

	default:
		return nil, fmt.Errorf("%w: unknown action %q", ErrInvalidInput, action)
	}

	updated, err := s.records.UpdateModeration(adID, u)
	if err != nil {
		return nil, fmt.Errorf("moderate %s: %w", adID, err)
	}
	if updated == nil {
		return nil, ErrNotFound
	}
	return updated, nil
}

// ListForReview returns the admin moderation view. The queue is FIFO —
// oldest ads first — so no submission waits forever behind newer ones.
// Soft-deleted ads are included; the admin view is the only place they
// remain visible.
func (s *Service) ListForReview(status *models.AdStatus, categorySlug *string, limit int) ([]models.Ad, error) {
	ads, err := s.records.List(store.ListFilter{Status: status, CategorySlug: categorySlug}, true, limit)
	if err != nil {
		return nil, fmt.Errorf("list for review: %w", err)
	}
	return ads, nil
}

// ReconcileImages replaces an ad's image set with the desired list.
// Both lists are normalized to bare filenames, files present before but
// absent from the desired set are deleted from disk (by membership, not
// position) along with their thumbnails, and the desired list is
// persisted in caller order: index 0 is the main image.
//
// File deletions run concurrently and are strictly best-effort: the
// record update waits for them to settle but proceeds regardless of
// their outcome. An empty desired list is valid and clears every image.
func (s *Service) ReconcileImages(adID uuid.UUID, desired []string) (*models.Ad, error) {
	ad, err := s.records.FindByID(adID)
	if err != nil {
		return nil, fmt.Errorf("reconcile images %s: %w", adID, err)
	}
	if ad == nil {
		return nil, ErrNotFound
	}

	normalized := make([]string, 0, len(desired))
	keep := make(map[string]bool, len(desired))
	for _, ref := range desired {
		name := upload.Normalize(ref)
		normalized = append(normalized, name)
		keep[name] = true
	}

	if s.cfg.EnforceImageCapOnReconcile && len(normalized) > s.cfg.MaxImagesPerAd {
		return nil, fmt.Errorf("%w: at most %d images allowed", ErrInvalidInput, s.cfg.MaxImagesPerAd)
	}

	var toDelete []string
	for _, ref := range ad.Images {
		if name := upload.Normalize(ref); name != "" && !keep[name] {
			toDelete = append(toDelete, name, upload.ThumbName(name))
		}
	}
	s.deleteAll(toDelete)

	updated, err := s.records.UpdateImages(adID, normalized)
	if err != nil {
		return nil, fmt.Errorf("reconcile images %s: %w", adID, err)
	}
	if updated == nil {
		return nil, ErrNotFound
	}
	return updated, nil
}

// DeleteImageAt removes exactly the image at the given position from an
// ad and deletes its file and thumbnail. Unlike ReconcileImages this is
// positional: a duplicate filename elsewhere in the list is left alone.
func (s *Service) DeleteImageAt(adID uuid.UUID, index int) (*models.Ad, error) {
	ad, err := s.records.FindByID(adID)
	if err != nil {
		return nil, fmt.Errorf("delete image %s[%d]: %w", adID, index, err)
	}
	if ad == nil {
		return nil, ErrNotFound
	}
	if index < 0 || index >= len(ad.Images) {
		return nil, fmt.Errorf("%w: image index %d out of range (ad has %d images)",
			ErrInvalidInput, index, len(ad.Images))
	}

	removed := upload.Normalize(ad.Images[index])

	remaining := make([]string, 0, len(ad.Images)-1)
	for i, ref := range ad.Images {
		if i == index {
			continue
		}
		remaining = append(remaining, upload.Normalize(ref))
	}

	s.deleteAll([]string{removed, upload.ThumbName(removed)})

	updated, err := s.records.UpdateImages(adID, remaining)
	if err != nil {
		return nil, fmt.Errorf("delete image %s[%d]: %w", adID, index, err)
	}
	if updated == nil {
		return nil, ErrNotFound
	}
	return updated, nil
}

// HardDelete removes an ad row permanently and cleans up its files.
// This is the owner-initiated delete path; admin moderation only soft
// deletes.
func (s *Service) HardDelete(adID uuid.UUID) error {
	deleted, err := s.records.HardDelete(adID)
	if err != nil {
		return fmt.Errorf("hard delete %s: %w", adID, err)
	}
	if deleted == nil {
		return ErrNotFound
	}

	names := make([]string, 0, len(deleted.Images)*2)
	for _, ref := range deleted.Images {
		if name := upload.Normalize(ref); name != "" {
			names = append(names, name, upload.ThumbName(name))
		}
	}
	s.deleteAll(names)
	return nil
}

// deleteAll fires DeleteSafe for each name concurrently and waits for
// every attempt to settle. Deletions are independent of each other and
// never fail the caller.
func (s *Service) deleteAll(names []string) {
	if len(names) == 0 {
		return
	}
	var wg sync.WaitGroup
	for _, name := range names {
		wg.Add(1)
		go func(n string) {
			defer wg.Done()
			s.files.DeleteSafe(n)
		}(name)
	}
	wg.Wait()
}

// optional converts an empty string to a nil pointer.
func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
