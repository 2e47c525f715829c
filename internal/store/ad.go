// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"pressboard/internal/models"
)

// AdStore handles all ad-related database operations. Every operation is
// a single-record read or write; the moderation and image columns of an
// ad are only ever touched per-id, so no multi-record transactions are
// needed.
type AdStore struct {
	db *sql.DB
}

// NewAdStore creates a new AdStore with the given database connection.
func NewAdStore(db *sql.DB) *AdStore {
	return &AdStore{db: db}
}

const adColumns = `id, user_id, title, description, category, category_slug, phone,
	images, status, is_deleted,
	moderated_by_id, moderated_at, moderation_note,
	deleted_by_id, deleted_at, delete_reason,
	created_at, updated_at`

// scanAd scans an ad row from the result set.
func scanAd(scanner interface{ Scan(...any) error }) (*models.Ad, error) {
	var a models.Ad
	err := scanner.Scan(
		&a.ID, &a.UserID, &a.Title, &a.Description, &a.Category, &a.CategorySlug, &a.Phone,
		&a.Images, &a.Status, &a.IsDeleted,
		&a.ModeratedByID, &a.ModeratedAt, &a.ModerationNote,
		&a.DeletedByID, &a.DeletedAt, &a.DeleteReason,
		&a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// FindByID retrieves an ad by its UUID. Returns nil if not found.
func (s *AdStore) FindByID(id uuid.UUID) (*models.Ad, error) {
	row := s.db.QueryRow(`SELECT `+adColumns+` FROM ads WHERE id = $1`, id)
	a, err := scanAd(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find ad by id: %w", err)
	}
	return a, nil
}

// Create inserts a new ad and returns it with the generated ID and
// timestamps. New ads always start PENDING and not deleted.
func (s *AdStore) Create(a *models.Ad) (*models.Ad, error) {
	row := s.db.QueryRow(`
		INSERT INTO ads (user_id, title, description, category, category_slug, phone, images, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING `+adColumns,
		a.UserID, a.Title, a.Description, a.Category, a.CategorySlug, a.Phone,
		pq.StringArray(a.Images), models.AdStatusPending,
	)
	result, err := scanAd(row)
	if err != nil {
		return nil, fmt.Errorf("create ad: %w", err)
	}
	return result, nil
}

// UpdateImages replaces the ad's image list. The caller supplies
// normalized filenames in display order. Returns nil if the ad does not
// exist.
func (s *AdStore) UpdateImages(id uuid.UUID, images []string) (*models.Ad, error) {
	row := s.db.QueryRow(`
		UPDATE ads SET images = $1, updated_at = NOW()
		WHERE id = $2
		RETURNING `+adColumns,
		pq.StringArray(images), id,
	)
	a, err := scanAd(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("update ad images: %w", err)
	}
	return a, nil
}

// UpdateModeration applies a moderation transition in a single write.
// Audit column groups are only written when the corresponding Set flag
// is raised, so a REJECT leaves the delete audit untouched and a DELETE
// leaves the moderation audit untouched. Returns nil if the ad does not
// exist.
func (s *AdStore) UpdateModeration(id uuid.UUID, u models.ModerationUpdate) (*models.Ad, error) {
	set := []string{"status = $1", "is_deleted = $2", "updated_at = NOW()"}
	args := []any{u.Status, u.IsDeleted}

	if u.SetModeration {
		set = append(set,
			fmt.Sprintf("moderated_by_id = $%d", len(args)+1),
			fmt.Sprintf("moderated_at = $%d", len(args)+2),
			fmt.Sprintf("moderation_note = $%d", len(args)+3),
		)
		args = append(args, u.ModeratedByID, u.ModeratedAt, u.ModerationNote)
	}
	if u.SetDeletion {
		set = append(set,
			fmt.Sprintf("deleted_by_id = $%d", len(args)+1),
			fmt.Sprintf("deleted_at = $%d", len(args)+2),
			fmt.Sprintf("delete_reason = $%d", len(args)+3),
		)
		args = append(args, u.DeletedByID, u.DeletedAt, u.DeleteReason)
	}

	args = append(args, id)
	query := fmt.Sprintf(`UPDATE ads SET %s WHERE id = $%d RETURNING %s`,
		strings.Join(set, ", "), len(args), adColumns)

	a, err := scanAd(s.db.QueryRow(query, args...))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("update ad moderation: %w", err)
	}
	return a, nil
}

// ListFilter narrows List results. Nil fields are not applied.
type ListFilter struct {
	Status       *models.AdStatus
	CategorySlug *string
	IsDeleted    *bool
	UserID       *uuid.UUID
}

// List returns ads matching the filter, ordered by creation time.
// ascending=true gives the FIFO moderation queue (oldest first);
// ascending=false gives the public newest-first listing.
func (s *AdStore) List(f ListFilter, ascending bool, limit int) ([]models.Ad, error) {
	where := []string{"TRUE"}
	var args []any

	if f.Status != nil {
		args = append(args, *f.Status)
		where = append(where, fmt.Sprintf("status = $%d", len(args)))
	}
	if f.CategorySlug != nil {
		args = append(args, *f.CategorySlug)
		where = append(where, fmt.Sprintf("category_slug = $%d", len(args)))
	}
	if f.IsDeleted != nil {
		args = append(args, *f.IsDeleted)
		where = append(where, fmt.Sprintf("is_deleted = $%d", len(args)))
	}
	if f.UserID != nil {
		args = append(args, *f.UserID)
		where = append(where, fmt.Sprintf("user_id = $%d", len(args)))
	}

	order := "DESC"
	if ascending {
		order = "ASC"
	}
	args = append(args, limit)

	query := fmt.Sprintf(`SELECT %s FROM ads WHERE %s ORDER BY created_at %s LIMIT $%d`,
		adColumns, strings.Join(where, " AND "), order, len(args))

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list ads: %w", err)
	}
	defer rows.Close()

	var items []models.Ad
	for rows.Next() {
		a, err := scanAd(rows)
		if err != nil {
			return nil, fmt.Errorf("scan ad: %w", err)
		}
		items = append(items, *a)
	}
	return items, rows.Err()
}

// HardDelete physically removes an ad row, returning it so the caller
// can clean up the image files. Returns nil if the ad does not exist.
// This is the only path that removes an ad from the store; moderation
// DELETE merely raises the soft-delete flag.
func (s *AdStore) HardDelete(id uuid.UUID) (*models.Ad, error) {
	row := s.db.QueryRow(`DELETE FROM ads WHERE id = $1 RETURNING `+adColumns, id)
	a, err := scanAd(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("hard delete ad: %w", err)
	}
	return a, nil
}

// CountByStatus returns the number of ads in the given status, for the
// admin dashboard.
func (s *AdStore) CountByStatus(status models.AdStatus) (int, error) {
	var count int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM ads WHERE status = $1 AND NOT is_deleted`, status).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count ads: %w", err)
	}
	return count, nil
}
