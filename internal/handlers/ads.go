// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"pressboard/internal/ads"
	"pressboard/internal/middleware"
	"pressboard/internal/models"
	"pressboard/internal/session"
	"pressboard/internal/store"
	"pressboard/internal/upload"
)

const (
	// maxUploadSize caps a single ad-creation request body (20 MB).
	maxUploadSize = 20 << 20

	// myAdsLimit bounds the owner's ad listing.
	myAdsLimit = 100
)

// allowedImageTypes defines MIME types accepted for ad images.
var allowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
}

// Ads groups the ad handlers available to authenticated owners.
type Ads struct {
	service    *ads.Service
	adStore    *store.AdStore
	catStore   *store.CategoryStore
	fileStore  *upload.Store
	invalidate func(r *http.Request) // drops the public listing cache
}

// NewAds creates a new Ads handler group. invalidate is called after any
// mutation that can change what the public sees.
func NewAds(service *ads.Service, adStore *store.AdStore, catStore *store.CategoryStore, fileStore *upload.Store, invalidate func(r *http.Request)) *Ads {
	return &Ads{
		service:    service,
		adStore:    adStore,
		catStore:   catStore,
		fileStore:  fileStore,
		invalidate: invalidate,
	}
}

// Create handles multipart ad creation: form fields plus up to the
// configured number of image files. The new ad starts PENDING and is
// invisible to the public until an admin approves it. Thumbnails are
// generated best-effort; a failed thumbnail never fails the ad.
func (h *Ads) Create(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize+1024)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		writeError(w, "Upload too large. Maximum total size is 20 MB.", http.StatusRequestEntityTooLarge)
		return
	}

	title := r.FormValue("title")
	description := r.FormValue("description")
	if msg := validateAd(title, description); msg != "" {
		writeError(w, msg, http.StatusBadRequest)
		return
	}

	phone := validatePhone(r.FormValue("phone"))
	if phone == "" {
		phone = sess.Phone
	}

	category, err := h.catStore.FindBySlug(r.FormValue("category_slug"))
	if err != nil {
		slog.Error("category lookup failed", "error", err)
		writeError(w, "Something went wrong. Please try again.", http.StatusInternalServerError)
		return
	}
	if category == nil {
		writeError(w, "Unknown category.", http.StatusBadRequest)
		return
	}

	files := r.MultipartForm.File["images"]
	if len(files) > h.service.MaxImages() {
		writeError(w, fmt.Sprintf("At most %d images are allowed.", h.service.MaxImages()), http.StatusBadRequest)
		return
	}

	var saved []string
	cleanup := func() {
		for _, n := range saved {
			h.fileStore.DeleteSafe(n)
			h.fileStore.DeleteSafe(upload.ThumbName(n))
		}
	}

	for _, header := range files {
		name, err := h.saveImage(header)
		if err != nil {
			cleanup()
			writeError(w, "One of the images could not be processed.", http.StatusBadRequest)
			return
		}
		saved = append(saved, name)
	}

	ad, err := h.adStore.Create(&models.Ad{
		UserID:       sess.UserID,
		Title:        title,
		Description:  description,
		Category:     category.Name,
		CategorySlug: category.Slug,
		Phone:        phone,
		Images:       saved,
	})
	if err != nil {
		slog.Error("ad create failed", "error", err)
		cleanup()
		writeError(w, "Something went wrong. Please try again.", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{"ad": ad})
}

// saveImage validates one multipart image by sniffing its content,
// stores it under a fresh name, and writes a thumbnail alongside when
// the image is large enough to need one.
func (h *Ads) saveImage(header *multipart.FileHeader) (string, error) {
	file, err := header.Open()
	if err != nil {
		return "", fmt.Errorf("open upload: %w", err)
	}
	defer file.Close()

	sniffBuf := make([]byte, 512)
	n, err := file.Read(sniffBuf)
	if err != nil && err != io.EOF {
		return "", fmt.Errorf("read upload: %w", err)
	}
	contentType := http.DetectContentType(sniffBuf[:n])
	if !allowedImageTypes[contentType] {
		return "", fmt.Errorf("file type %q is not allowed", contentType)
	}

	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return "", fmt.Errorf("seek upload: %w", err)
	}

	name, err := h.fileStore.Save(file, header.Filename)
	if err != nil {
		return "", err
	}

	// Thumbnail generation is best-effort.
	if _, err := file.Seek(0, io.SeekStart); err == nil {
		if thumb, err := upload.GenerateThumbnail(file); err != nil {
			slog.Warn("thumbnail generation failed", "file", name, "error", err)
		} else if thumb != nil {
			if _, err := h.fileStore.Save(bytes.NewReader(thumb), upload.ThumbName(name)); err != nil {
				slog.Warn("thumbnail save failed", "file", name, "error", err)
			}
		}
	}

	return name, nil
}

// MyAds lists the authenticated user's own ads, newest first, including
// pending and rejected ones.
func (h *Ads) MyAds(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())

	items, err := h.adStore.List(store.ListFilter{UserID: &sess.UserID}, false, myAdsLimit)
	if err != nil {
		slog.Error("my ads list failed", "error", err, "user_id", sess.UserID)
		writeError(w, "Something went wrong. Please try again.", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ads": items})
}

type updateImagesBody struct {
	Images []string `json:"images"`
}

// UpdateImages replaces the ad's image set with the supplied list via
// the reconciliation service. Only the owner (or an admin) may edit an
// ad's images. An empty list is valid and clears all images.
func (h *Ads) UpdateImages(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())

	adID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, "Invalid ad id.", http.StatusBadRequest)
		return
	}

	var body updateImagesBody
	if err := decodeBody(r, &body); err != nil {
		writeError(w, "An images array is required.", http.StatusBadRequest)
		return
	}

	if !h.ownsAd(w, sess, adID) {
		return
	}

	updated, err := h.service.ReconcileImages(adID, body.Images)
	if err != nil {
		writeServiceError(w, err, "reconcile images", "ad_id", adID)
		return
	}

	h.invalidate(r)
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"images":  updated.Images,
	})
}

// Delete permanently removes the owner's ad and its image files.
func (h *Ads) Delete(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())

	adID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, "Invalid ad id.", http.StatusBadRequest)
		return
	}

	if !h.ownsAd(w, sess, adID) {
		return
	}

	if err := h.service.HardDelete(adID); err != nil {
		writeServiceError(w, err, "hard delete ad", "ad_id", adID)
		return
	}

	h.invalidate(r)
	writeMessage(w, "Ad deleted.")
}

// ownsAd verifies the session user owns the ad (admins pass). Writes the
// error response and returns false when access is denied or lookup fails.
func (h *Ads) ownsAd(w http.ResponseWriter, sess *session.Data, adID uuid.UUID) bool {
	ad, err := h.adStore.FindByID(adID)
	if err != nil {
		slog.Error("ad lookup failed", "error", err, "ad_id", adID)
		writeError(w, "Something went wrong. Please try again.", http.StatusInternalServerError)
		return false
	}
	if ad == nil {
		writeError(w, "Ad not found.", http.StatusNotFound)
		return false
	}
	if ad.UserID != sess.UserID && !sess.IsSuperAdmin() {
		writeError(w, "You can only edit your own ads.", http.StatusForbidden)
		return false
	}
	return true
}
