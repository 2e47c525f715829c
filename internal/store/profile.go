// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"pressboard/internal/models"
)

// ProfileStore manages business profiles. A profile shares its primary
// key with the owning user, so every operation is keyed by user id.
type ProfileStore struct {
	db *sql.DB
}

// NewProfileStore returns a new ProfileStore.
func NewProfileStore(db *sql.DB) *ProfileStore {
	return &ProfileStore{db: db}
}

const profileColumns = `user_id, company_name, about, city, address, website, avatar_key, created_at, updated_at`

func scanProfile(scanner interface{ Scan(...any) error }) (*models.BusinessProfile, error) {
	var p models.BusinessProfile
	err := scanner.Scan(
		&p.UserID, &p.CompanyName, &p.About, &p.City, &p.Address,
		&p.Website, &p.AvatarKey, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// FindByUserID retrieves a business profile. Returns nil if the user has
// not created one.
func (s *ProfileStore) FindByUserID(userID uuid.UUID) (*models.BusinessProfile, error) {
	row := s.db.QueryRow(`SELECT `+profileColumns+` FROM business_profiles WHERE user_id = $1`, userID)
	p, err := scanProfile(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find profile: %w", err)
	}
	return p, nil
}

// Upsert creates or replaces the profile fields for a user. The avatar
// key is managed separately by SetAvatarKey.
func (s *ProfileStore) Upsert(p *models.BusinessProfile) (*models.BusinessProfile, error) {
	row := s.db.QueryRow(`
		INSERT INTO business_profiles (user_id, company_name, about, city, address, website)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (user_id) DO UPDATE SET
			company_name = EXCLUDED.company_name,
			about = EXCLUDED.about,
			city = EXCLUDED.city,
			address = EXCLUDED.address,
			website = EXCLUDED.website,
			updated_at = NOW()
		RETURNING `+profileColumns,
		p.UserID, p.CompanyName, p.About, p.City, p.Address, p.Website,
	)
	result, err := scanProfile(row)
	if err != nil {
		return nil, fmt.Errorf("upsert profile: %w", err)
	}
	return result, nil
}

// SetAvatarKey records where the profile's avatar is stored, returning
// the previous key so the caller can delete the replaced object.
func (s *ProfileStore) SetAvatarKey(userID uuid.UUID, key string) (previous *string, err error) {
	err = s.db.QueryRow(`
		UPDATE business_profiles bp SET avatar_key = $1, updated_at = NOW()
		FROM (SELECT avatar_key FROM business_profiles WHERE user_id = $2) old
		WHERE bp.user_id = $2
		RETURNING old.avatar_key
	`, key, userID).Scan(&previous)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("set avatar key: %w", err)
	}
	return previous, nil
}
