// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"pressboard/internal/ads"
	"pressboard/internal/middleware"
	"pressboard/internal/models"
	"pressboard/internal/store"
)

// reviewQueueLimit bounds the admin moderation listing.
const reviewQueueLimit = 200

// Admin groups the moderation handlers. Every route in this group sits
// behind the RequireSuperAdmin middleware, so a non-admin request is
// rejected before any of these handlers — and therefore any ad lookup —
// runs.
type Admin struct {
	service    *ads.Service
	adStore    *store.AdStore
	invalidate func(r *http.Request)
}

// NewAdmin creates a new Admin handler group.
func NewAdmin(service *ads.Service, adStore *store.AdStore, invalidate func(r *http.Request)) *Admin {
	return &Admin{service: service, adStore: adStore, invalidate: invalidate}
}

type moderateBody struct {
	Action string `json:"action" validate:"required"`
	Note   string `json:"note"`
}

// Moderate applies APPROVE, REJECT, or DELETE to an ad.
func (h *Admin) Moderate(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())

	adID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, "Invalid ad id.", http.StatusBadRequest)
		return
	}

	var body moderateBody
	if err := decodeBody(r, &body); err != nil {
		writeError(w, "An action is required.", http.StatusBadRequest)
		return
	}

	action, ok := models.ParseModerationAction(body.Action)
	if !ok {
		writeError(w, "Action must be APPROVE, REJECT, or DELETE.", http.StatusBadRequest)
		return
	}
	if msg := validateNote(body.Note); msg != "" {
		writeError(w, msg, http.StatusBadRequest)
		return
	}

	if _, err := h.service.Moderate(adID, sess.UserID, action, body.Note); err != nil {
		writeServiceError(w, err, "moderate ad", "ad_id", adID, "action", action)
		return
	}

	h.invalidate(r)

	switch action {
	case models.ActionApprove:
		writeMessage(w, "Ad published.")
	case models.ActionReject:
		writeMessage(w, "Ad rejected.")
	default:
		writeMessage(w, "Ad deleted.")
	}
}

// ListForReview returns the moderation queue, optionally filtered by
// status and category. Oldest first, so the longest-waiting ad is
// reviewed next.
func (h *Admin) ListForReview(w http.ResponseWriter, r *http.Request) {
	var status *models.AdStatus
	if s := r.URL.Query().Get("status"); s != "" {
		switch models.AdStatus(s) {
		case models.AdStatusPending, models.AdStatusPublished, models.AdStatusRejected:
			v := models.AdStatus(s)
			status = &v
		default:
			writeError(w, "Unknown status filter.", http.StatusBadRequest)
			return
		}
	}

	var categorySlug *string
	if c := r.URL.Query().Get("category"); c != "" {
		categorySlug = &c
	}

	items, err := h.service.ListForReview(status, categorySlug, reviewQueueLimit)
	if err != nil {
		slog.Error("review queue list failed", "error", err)
		writeError(w, "Something went wrong. Please try again.", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"ads": items})
}

// DeleteImage removes a single image from an ad by position.
func (h *Admin) DeleteImage(w http.ResponseWriter, r *http.Request) {
	adID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, "Invalid ad id.", http.StatusBadRequest)
		return
	}

	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		writeError(w, "Image index must be an integer.", http.StatusBadRequest)
		return
	}

	if _, err := h.service.DeleteImageAt(adID, index); err != nil {
		writeServiceError(w, err, "delete ad image", "ad_id", adID, "index", index)
		return
	}

	h.invalidate(r)
	writeMessage(w, "Image removed.")
}

// Dashboard returns moderation counters for the admin landing page.
func (h *Admin) Dashboard(w http.ResponseWriter, r *http.Request) {
	counts := map[string]int{}
	for _, status := range []models.AdStatus{models.AdStatusPending, models.AdStatusPublished, models.AdStatusRejected} {
		n, err := h.adStore.CountByStatus(status)
		if err != nil {
			slog.Error("dashboard count failed", "error", err, "status", status)
			writeError(w, "Something went wrong. Please try again.", http.StatusInternalServerError)
			return
		}
		counts[string(status)] = n
	}
	writeJSON(w, http.StatusOK, map[string]any{"counts": counts})
}
