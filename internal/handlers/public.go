// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"pressboard/internal/cache"
	"pressboard/internal/models"
	"pressboard/internal/store"
	"pressboard/internal/upload"
)

// publicListLimit bounds the public listing response.
const publicListLimit = 100

// Public groups the unauthenticated read handlers. Listing responses are
// served from the Valkey cache when possible; moderation and ad edits
// invalidate it.
type Public struct {
	adStore      *store.AdStore
	catStore     *store.CategoryStore
	fileStore    *upload.Store
	listingCache *cache.ListingCache
}

// NewPublic creates a new Public handler group.
func NewPublic(adStore *store.AdStore, catStore *store.CategoryStore, fileStore *upload.Store, listingCache *cache.ListingCache) *Public {
	return &Public{
		adStore:      adStore,
		catStore:     catStore,
		fileStore:    fileStore,
		listingCache: listingCache,
	}
}

// publicAd is the wire shape of an ad on public endpoints: resolved
// image URLs instead of bare filenames, no audit fields.
type publicAd struct {
	ID           uuid.UUID `json:"id"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	Category     string    `json:"category"`
	CategorySlug string    `json:"category_slug"`
	Phone        string    `json:"phone"`
	Images       []string  `json:"images"`
	MainImageURL string    `json:"main_image_url"`
	CreatedAt    string    `json:"created_at"`
}

func (p *Public) toPublicAd(a *models.Ad) publicAd {
	urls := make([]string, len(a.Images))
	for i, img := range a.Images {
		urls[i] = p.fileStore.PublicURL(img)
	}
	return publicAd{
		ID:           a.ID,
		Title:        a.Title,
		Description:  a.Description,
		Category:     a.Category,
		CategorySlug: a.CategorySlug,
		Phone:        a.Phone,
		Images:       urls,
		MainImageURL: p.fileStore.PublicURL(a.MainImage()),
		CreatedAt:    a.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}

// ListAds returns published, non-deleted ads, newest first, optionally
// filtered by category slug.
func (p *Public) ListAds(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	categorySlug := r.URL.Query().Get("category")

	key := cache.Key(categorySlug)
	if payload, ok := p.listingCache.Get(ctx, key); ok {
		w.Header().Set("Content-Type", "application/json")
		w.Write(payload)
		return
	}

	published := models.AdStatusPublished
	notDeleted := false
	filter := store.ListFilter{Status: &published, IsDeleted: &notDeleted}
	if categorySlug != "" {
		filter.CategorySlug = &categorySlug
	}

	items, err := p.adStore.List(filter, false, publicListLimit)
	if err != nil {
		slog.Error("public ads list failed", "error", err)
		writeError(w, "Something went wrong. Please try again.", http.StatusInternalServerError)
		return
	}

	out := make([]publicAd, 0, len(items))
	for i := range items {
		out = append(out, p.toPublicAd(&items[i]))
	}

	payload, err := json.Marshal(map[string]any{"ads": out})
	if err != nil {
		slog.Error("public ads encode failed", "error", err)
		writeError(w, "Something went wrong. Please try again.", http.StatusInternalServerError)
		return
	}
	p.listingCache.Set(ctx, key, payload)

	w.Header().Set("Content-Type", "application/json")
	w.Write(payload)
}

// GetAd returns one ad. Pending, rejected, and soft-deleted ads look
// exactly like missing ones from the outside — the record's existence is
// not revealed.
func (p *Public) GetAd(w http.ResponseWriter, r *http.Request) {
	adID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, "Ad not found.", http.StatusNotFound)
		return
	}

	ad, err := p.adStore.FindByID(adID)
	if err != nil {
		slog.Error("public ad lookup failed", "error", err, "ad_id", adID)
		writeError(w, "Something went wrong. Please try again.", http.StatusInternalServerError)
		return
	}
	if ad == nil || !ad.IsPubliclyVisible() {
		writeError(w, "Ad not found.", http.StatusNotFound)
		return
	}

	writeJSON(w, http.StatusOK, p.toPublicAd(ad))
}

// ListCategories returns the ad taxonomy with published ad counts.
func (p *Public) ListCategories(w http.ResponseWriter, r *http.Request) {
	items, err := p.catStore.List()
	if err != nil {
		slog.Error("categories list failed", "error", err)
		writeError(w, "Something went wrong. Please try again.", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"categories": items})
}
