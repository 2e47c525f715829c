// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"time"

	"github.com/google/uuid"
)

// Category is one entry in the closed ad taxonomy. Whether a category is
// employment-like (job offers / job seekers) is an explicit flag on the
// row, not inferred from the name at runtime.
type Category struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Slug         string    `json:"slug"`
	IsEmployment bool      `json:"is_employment"`
	SortOrder    int       `json:"sort_order"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`

	// AdCount is populated by listing queries; not a table column.
	AdCount int `json:"ad_count,omitempty"`
}
