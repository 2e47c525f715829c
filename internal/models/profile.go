// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"time"

	"github.com/google/uuid"
)

// BusinessProfile is the public-facing company page attached to a
// freelancer, supplier, or printer account. AvatarKey points into the
// media storage (S3 key or local filename), namespaced per user —
// unlike ad images, which share a flat namespace.
type BusinessProfile struct {
	UserID      uuid.UUID `json:"user_id"`
	CompanyName string    `json:"company_name"`
	About       *string   `json:"about,omitempty"`
	City        *string   `json:"city,omitempty"`
	Address     *string   `json:"address,omitempty"`
	Website     *string   `json:"website,omitempty"`
	AvatarKey   *string   `json:"-"`
	AvatarURL   string    `json:"avatar_url,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
