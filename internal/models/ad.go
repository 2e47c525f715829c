// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// AdStatus is the moderation state of an ad. Every ad starts PENDING and
// an admin moves it to PUBLISHED or REJECTED; soft deletion is a
// separate flag, not a status.
type AdStatus string

const (
	AdStatusPending   AdStatus = "PENDING"
	AdStatusPublished AdStatus = "PUBLISHED"
	AdStatusRejected  AdStatus = "REJECTED"
)

// ModerationAction is an admin decision on an ad.
type ModerationAction string

const (
	ActionApprove ModerationAction = "APPROVE"
	ActionReject  ModerationAction = "REJECT"
	ActionDelete  ModerationAction = "DELETE"
)

// ParseModerationAction canonicalizes a client-supplied action string.
// Returns false for anything that is not a known action.
func ParseModerationAction(raw string) (ModerationAction, bool) {
	switch ModerationAction(strings.ToUpper(strings.TrimSpace(raw))) {
	case ActionApprove:
		return ActionApprove, true
	case ActionReject:
		return ActionReject, true
	case ActionDelete:
		return ActionDelete, true
	}
	return "", false
}

// Ad is a classified listing posted by a user. Images holds bare
// filenames in display order — index 0 is the main image — resolved
// against the flat upload root. The moderation and deletion audit
// groups record who acted and when; they are nil until the
// corresponding action happens.
type Ad struct {
	ID           uuid.UUID      `json:"id"`
	UserID       uuid.UUID      `json:"user_id"`
	Title        string         `json:"title"`
	Description  string         `json:"description"`
	Category     string         `json:"category"`
	CategorySlug string         `json:"category_slug"`
	Phone        string         `json:"phone"`
	Images       pq.StringArray `json:"images"`
	Status       AdStatus       `json:"status"`
	IsDeleted    bool           `json:"is_deleted"`

	ModeratedByID  *uuid.UUID `json:"moderated_by_id,omitempty"`
	ModeratedAt    *time.Time `json:"moderated_at,omitempty"`
	ModerationNote *string    `json:"moderation_note,omitempty"`

	DeletedByID  *uuid.UUID `json:"deleted_by_id,omitempty"`
	DeletedAt    *time.Time `json:"deleted_at,omitempty"`
	DeleteReason *string    `json:"delete_reason,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IsPubliclyVisible reports whether the ad appears on the public
// surface: published and not soft-deleted. Everything else exists only
// in the owner's and the admins' views.
func (a *Ad) IsPubliclyVisible() bool {
	return a.Status == AdStatusPublished && !a.IsDeleted
}

// MainImage returns the ad's first image filename, or "" when the ad
// has no images.
func (a *Ad) MainImage() string {
	if len(a.Images) == 0 {
		return ""
	}
	return a.Images[0]
}

// ModerationUpdate is the single-write shape for a moderation
// transition. Status and IsDeleted are always written; the audit groups
// are written only when the corresponding Set flag is raised, so one
// action never clobbers the other action's audit trail. Raising a Set
// flag with nil pointers clears that group.
type ModerationUpdate struct {
	Status    AdStatus
	IsDeleted bool

	SetModeration  bool
	ModeratedByID  *uuid.UUID
	ModeratedAt    *time.Time
	ModerationNote *string

	SetDeletion  bool
	DeletedByID  *uuid.UUID
	DeletedAt    *time.Time
	DeleteReason *string
}
