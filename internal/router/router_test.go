// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package router

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"pressboard/internal/middleware"
)

// Handlers are never reached by these requests, so near-zero Deps are
// enough to build the route tree and exercise the middleware chains.
func testRouter(t *testing.T) http.Handler {
	t.Helper()
	limiter := middleware.NewRateLimiter(100, time.Minute)
	t.Cleanup(limiter.Stop)
	return New(Deps{OTPLimiter: limiter})
}

func TestModerationAreaForbidsAnonymous(t *testing.T) {
	r := testRouter(t)

	for _, path := range []string{"/admin/dashboard", "/admin/ads"} {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest("GET", path, nil)

		r.ServeHTTP(rec, req)

		if rec.Code != http.StatusForbidden {
			t.Errorf("GET %s without session: status = %d, want %d", path, rec.Code, http.StatusForbidden)
		}
	}
}

func TestHealthIsOpen(t *testing.T) {
	r := testRouter(t)
	rec := httptest.NewRecorder()

	r.ServeHTTP(rec, httptest.NewRequest("GET", "/health", nil))

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q, want application/json", ct)
	}
}
