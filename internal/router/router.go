// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package router sets up all HTTP routes and middleware chains for the
// PressBoard API. It organizes routes into public, authenticated, and
// admin groups with appropriate middleware stacks.
package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"pressboard/internal/handlers"
	"pressboard/internal/middleware"
	"pressboard/internal/session"
)

// Deps carries everything the router needs wired in.
type Deps struct {
	Sessions    *session.Store
	Auth        *handlers.Auth
	Ads         *handlers.Ads
	Admin       *handlers.Admin
	Public      *handlers.Public
	Profiles    *handlers.Profiles
	OTPLimiter  *middleware.RateLimiter
	UploadDir   string
	CORSOrigins []string
}

// New creates and returns the configured Chi router with all middleware
// and route groups wired up.
func New(d Deps) chi.Router {
	r := chi.NewRouter()

	// Global middleware — applied to every request.
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   d.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-CSRF-Token"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(middleware.LoadSession(d.Sessions))

	// Health check — no auth, no CSRF.
	r.Get("/health", healthHandler)

	// Public read surface.
	r.Get("/ads", d.Public.ListAds)
	r.Get("/ads/{id}", d.Public.GetAd)
	r.Get("/categories", d.Public.ListCategories)
	r.Get("/profiles/{id}", d.Profiles.Get)

	// OTP login — rate limited per client IP.
	r.Group(func(r chi.Router) {
		r.Use(d.OTPLimiter.Middleware)
		r.Post("/auth/otp/request", d.Auth.OTPRequest)
		r.Post("/auth/otp/verify", d.Auth.OTPVerify)
	})
	r.Post("/auth/logout", d.Auth.Logout)

	// Authenticated user area.
	r.Group(func(r chi.Router) {
		r.Use(middleware.CSRF)
		r.Use(middleware.RequireAuth)

		r.Post("/ads", d.Ads.Create)
		r.Get("/me/ads", d.Ads.MyAds)
		r.Patch("/me/display-name", d.Auth.UpdateDisplayName)
		r.Patch("/ads/{id}/images", d.Ads.UpdateImages)
		r.Delete("/ads/{id}", d.Ads.Delete)

		// Business profiles — company accounts only.
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireBusinessRole)
			r.Put("/me/profile", d.Profiles.Upsert)
			r.Post("/me/profile/avatar", d.Profiles.UploadAvatar)
		})
	})

	// Admin routes — require authentication and CSRF protection.
	r.Route("/admin", func(r chi.Router) {
		r.Use(middleware.CSRF)

		// Login and 2FA — accessible before the super-admin check passes.
		r.Post("/login", d.Auth.AdminLogin)
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth)
			r.Post("/2fa/setup", d.Auth.TwoFASetup)
			r.Post("/2fa/verify", d.Auth.TwoFAVerify)
		})

		// Moderation area — 2FA-verified super admins only. Anyone else,
		// signed in or not, gets a Forbidden response from the same gate.
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireSuperAdmin)

			r.Get("/dashboard", d.Admin.Dashboard)
			r.Get("/ads", d.Admin.ListForReview)
			r.Post("/ads/{id}/moderate", d.Admin.Moderate)
			r.Delete("/ads/{id}/images/{index}", d.Admin.DeleteImage)
		})
	})

	// Uploaded ad images, served from the flat local upload root.
	fileServer(r, "/uploads", http.Dir(d.UploadDir))

	return r
}

// healthHandler responds to health checks with uptime info.
func healthHandler(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok","time":"` + time.Now().UTC().Format(time.RFC3339) + `"}`))
}

// fileServer serves static files from root under the given path prefix.
func fileServer(r chi.Router, path string, root http.FileSystem) {
	fs := http.StripPrefix(path, http.FileServer(root))
	r.Get(path+"/*", func(w http.ResponseWriter, req *http.Request) {
		fs.ServeHTTP(w, req)
	})
}
