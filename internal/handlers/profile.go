// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"bytes"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"pressboard/internal/middleware"
	"pressboard/internal/models"
	"pressboard/internal/storage"
	"pressboard/internal/store"
	"pressboard/internal/upload"
)

// maxAvatarSize caps avatar uploads (5 MB).
const maxAvatarSize = 5 << 20

// Profiles groups the business-profile handlers. Avatars go to S3 when
// configured and fall back to the local upload root otherwise.
type Profiles struct {
	profileStore  *store.ProfileStore
	fileStore     *upload.Store
	storageClient *storage.Client // may be nil
}

// NewProfiles creates a new Profiles handler group.
func NewProfiles(profileStore *store.ProfileStore, fileStore *upload.Store, storageClient *storage.Client) *Profiles {
	return &Profiles{
		profileStore:  profileStore,
		fileStore:     fileStore,
		storageClient: storageClient,
	}
}

// avatarURL resolves a stored avatar key to a public URL.
func (h *Profiles) avatarURL(key *string) string {
	if key == nil || *key == "" {
		return upload.PlaceholderURL
	}
	if h.storageClient != nil && strings.HasPrefix(*key, "avatars/") {
		return h.storageClient.FileURL(*key)
	}
	return h.fileStore.PublicURL(*key)
}

// Get returns a business profile by user id. Public endpoint.
func (h *Profiles) Get(w http.ResponseWriter, r *http.Request) {
	userID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, "Profile not found.", http.StatusNotFound)
		return
	}

	profile, err := h.profileStore.FindByUserID(userID)
	if err != nil {
		slog.Error("profile lookup failed", "error", err, "user_id", userID)
		writeError(w, "Something went wrong. Please try again.", http.StatusInternalServerError)
		return
	}
	if profile == nil {
		writeError(w, "Profile not found.", http.StatusNotFound)
		return
	}

	profile.AvatarURL = h.avatarURL(profile.AvatarKey)
	writeJSON(w, http.StatusOK, map[string]any{"profile": profile})
}

type profileBody struct {
	CompanyName string  `json:"company_name" validate:"required"`
	About       *string `json:"about"`
	City        *string `json:"city"`
	Address     *string `json:"address"`
	Website     *string `json:"website"`
}

// Upsert creates or updates the authenticated user's business profile.
func (h *Profiles) Upsert(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())

	var body profileBody
	if err := decodeBody(r, &body); err != nil {
		writeError(w, "Company name is required.", http.StatusBadRequest)
		return
	}
	if utf8.RuneCountInString(body.CompanyName) > maxCompanyNameLen {
		writeError(w, "Company name is too long (max 200 characters).", http.StatusBadRequest)
		return
	}
	if body.About != nil && utf8.RuneCountInString(*body.About) > maxAboutLen {
		writeError(w, "About is too long (max 5,000 characters).", http.StatusBadRequest)
		return
	}

	profile, err := h.profileStore.Upsert(&models.BusinessProfile{
		UserID:      sess.UserID,
		CompanyName: strings.TrimSpace(body.CompanyName),
		About:       body.About,
		City:        body.City,
		Address:     body.Address,
		Website:     body.Website,
	})
	if err != nil {
		slog.Error("profile upsert failed", "error", err, "user_id", sess.UserID)
		writeError(w, "Something went wrong. Please try again.", http.StatusInternalServerError)
		return
	}

	profile.AvatarURL = h.avatarURL(profile.AvatarKey)
	writeJSON(w, http.StatusOK, map[string]any{"profile": profile})
}

// UploadAvatar replaces the profile avatar. The previous object is
// removed best-effort after the new one is stored and recorded.
func (h *Profiles) UploadAvatar(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())
	ctx := r.Context()

	existing, err := h.profileStore.FindByUserID(sess.UserID)
	if err != nil {
		slog.Error("profile lookup failed", "error", err, "user_id", sess.UserID)
		writeError(w, "Something went wrong. Please try again.", http.StatusInternalServerError)
		return
	}
	if existing == nil {
		writeError(w, "Create your business profile before uploading an avatar.", http.StatusBadRequest)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxAvatarSize+1024)
	if err := r.ParseMultipartForm(maxAvatarSize); err != nil {
		writeError(w, "File too large. Maximum size is 5 MB.", http.StatusRequestEntityTooLarge)
		return
	}

	file, header, err := r.FormFile("avatar")
	if err != nil {
		writeError(w, "No file provided.", http.StatusBadRequest)
		return
	}
	defer file.Close()

	sniffBuf := make([]byte, 512)
	n, err := file.Read(sniffBuf)
	if err != nil && err != io.EOF {
		writeError(w, "Failed to read file.", http.StatusInternalServerError)
		return
	}
	contentType := http.DetectContentType(sniffBuf[:n])
	if !allowedImageTypes[contentType] {
		writeError(w, "Only JPEG, PNG, and WebP images are allowed.", http.StatusBadRequest)
		return
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		writeError(w, "Failed to process file.", http.StatusInternalServerError)
		return
	}

	var key string
	if h.storageClient != nil {
		data, err := io.ReadAll(file)
		if err != nil {
			writeError(w, "Failed to read file.", http.StatusInternalServerError)
			return
		}
		key = storage.AvatarKey(sess.UserID, header.Filename)
		if err := h.storageClient.Upload(ctx, key, contentType, bytes.NewReader(data), int64(len(data))); err != nil {
			slog.Error("avatar upload failed", "error", err, "key", key)
			writeError(w, "Failed to upload file.", http.StatusInternalServerError)
			return
		}
	} else {
		key, err = h.fileStore.Save(file, header.Filename)
		if err != nil {
			slog.Error("avatar save failed", "error", err)
			writeError(w, "Failed to upload file.", http.StatusInternalServerError)
			return
		}
	}

	previous, err := h.profileStore.SetAvatarKey(sess.UserID, key)
	if err != nil {
		slog.Error("avatar key update failed", "error", err, "user_id", sess.UserID)
		writeError(w, "Something went wrong. Please try again.", http.StatusInternalServerError)
		return
	}

	// Best-effort cleanup of the replaced avatar.
	if previous != nil && *previous != "" && *previous != key {
		if h.storageClient != nil && strings.HasPrefix(*previous, "avatars/") {
			if err := h.storageClient.Delete(ctx, *previous); err != nil {
				slog.Warn("old avatar delete failed", "error", err, "key", *previous)
			}
		} else {
			h.fileStore.DeleteSafe(*previous)
		}
	}

	writeJSON(w, http.StatusOK, map[string]string{"avatar_url": h.avatarURL(&key)})
}
