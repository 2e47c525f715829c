// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package handlers contains the HTTP handlers for the PressBoard API.
// Handlers are grouped by concern (auth, ads, admin, public, profile)
// and receive their dependencies through the handler struct.
package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"

	"pressboard/internal/ads"
)

// validate is the shared request validator. Struct tags on the request
// DTOs define the rules.
var validate = validator.New()

// writeJSON encodes v as the response body with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("response encode failed", "error", err)
	}
}

// writeError writes a JSON error body.
func writeError(w http.ResponseWriter, msg string, status int) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeMessage writes a JSON message body.
func writeMessage(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusOK, map[string]string{"message": msg})
}

// writeServiceError maps an ads service error onto an HTTP response.
// Unexpected errors are logged with operation context and returned as a
// generic 500 — internals never leak to the client.
func writeServiceError(w http.ResponseWriter, err error, op string, args ...any) {
	switch {
	case errors.Is(err, ads.ErrNotFound):
		writeError(w, "Ad not found.", http.StatusNotFound)
	case errors.Is(err, ads.ErrInvalidInput):
		writeError(w, err.Error(), http.StatusBadRequest)
	default:
		slog.Error(op+" failed", append(args, "error", err)...)
		writeError(w, "Something went wrong. Please try again.", http.StatusInternalServerError)
	}
}

// decodeBody parses a JSON request body into dst and runs validation.
func decodeBody(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return err
	}
	return validate.Struct(dst)
}
