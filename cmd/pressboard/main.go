// Package main is the entry point for the PressBoard API server.
// It loads configuration, connects to services, sets up routing, and starts
// the HTTP server with graceful shutdown support.
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"pressboard/internal/ads"
	"pressboard/internal/cache"
	"pressboard/internal/config"
	"pressboard/internal/database"
	"pressboard/internal/handlers"
	"pressboard/internal/middleware"
	"pressboard/internal/otp"
	"pressboard/internal/router"
	"pressboard/internal/session"
	"pressboard/internal/storage"
	"pressboard/internal/store"
	"pressboard/internal/upload"
)

func main() {
	// Structured logger — outputs JSON in production, text in development.
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
	slog.SetDefault(logger)

	// Load configuration from environment variables.
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	slog.Info("configuration loaded",
		"env", cfg.Env,
		"addr", cfg.Addr(),
	)

	// Connect to PostgreSQL.
	db, err := database.Connect(cfg.DSN())
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	// Run pending migrations.
	if err := database.Migrate(db); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	// Connect to Valkey (sessions, OTP codes, listing cache).
	valkeyClient, err := cache.ConnectValkey(cfg.ValkeyHost, cfg.ValkeyPort, cfg.ValkeyPassword)
	if err != nil {
		slog.Error("failed to connect to valkey", "error", err)
		os.Exit(1)
	}
	defer valkeyClient.Close()

	// Initialize session store backed by Valkey.
	// In non-development environments, mark session cookies as Secure (HTTPS-only).
	secureCookies := !cfg.IsDev()
	sessionStore := session.NewStore(valkeyClient, secureCookies)

	// Local image store for job-ad uploads. One flat directory; the
	// reconciliation logic depends on references mapping 1:1 to filenames.
	fileStore, err := upload.NewStore(cfg.UploadDir, cfg.UploadPrefix)
	if err != nil {
		slog.Error("failed to initialize upload store", "error", err)
		os.Exit(1)
	}

	// Initialize data stores.
	userStore := store.NewUserStore(db)
	adStore := store.NewAdStore(db)
	categoryStore := store.NewCategoryStore(db)
	profileStore := store.NewProfileStore(db)

	// Seed development data: the category taxonomy plus a default
	// super-admin who must set up 2FA on first login.
	if cfg.IsDev() {
		if err := database.Seed(db); err != nil {
			slog.Error("failed to seed database", "error", err)
			os.Exit(1)
		}
		admin, err := userStore.FindByEmail("admin@pressboard.local")
		if err != nil {
			slog.Error("failed to look up default admin", "error", err)
			os.Exit(1)
		}
		if admin == nil {
			if _, err := userStore.CreateAdmin("+10000000000", "admin@pressboard.local", "admin", "Admin"); err != nil {
				slog.Error("failed to create default admin", "error", err)
				os.Exit(1)
			}
			slog.Info("default super-admin created",
				"email", "admin@pressboard.local",
				"password", "admin",
			)
		}
	}

	// Connect to S3-compatible object storage for profile avatars
	// (optional — avatars fall back to the local upload root without it).
	storageClient, err := storage.New(
		cfg.S3Endpoint, cfg.S3Region, cfg.S3AccessKey, cfg.S3SecretKey,
		cfg.S3Bucket, cfg.S3PublicURL,
	)
	if err != nil {
		slog.Error("failed to initialize S3 storage", "error", err)
		os.Exit(1)
	}
	if storageClient != nil {
		slog.Info("s3 storage connected", "endpoint", cfg.S3Endpoint, "bucket", cfg.S3Bucket)
	} else {
		slog.Warn("s3 storage not configured — avatars stored on local disk")
	}

	// Moderation + image reconciliation service.
	adService := ads.New(adStore, fileStore, ads.Config{
		MaxImagesPerAd:             cfg.MaxImagesPerAd,
		EnforceImageCapOnReconcile: cfg.EnforceImageCapOnReconcile,
	})

	// OTP codes live in Valkey. TODO: replace LogSender with the SMS
	// gateway client once the account is provisioned.
	otpService := otp.New(valkeyClient, otp.LogSender{})

	// Public listing cache, invalidated wholesale on moderation actions.
	listingCache := cache.NewListingCache(valkeyClient, cache.DefaultListingTTL)
	invalidate := func(r *http.Request) {
		listingCache.InvalidateAll(r.Context())
	}

	// Rate limiter for the OTP endpoints: 10 requests per 5 minutes per IP.
	otpLimiter := middleware.NewRateLimiter(10, 5*time.Minute)
	defer otpLimiter.Stop()

	// Create handler groups with their dependencies.
	authHandlers := handlers.NewAuth(sessionStore, userStore, otpService)
	adHandlers := handlers.NewAds(adService, adStore, categoryStore, fileStore, invalidate)
	adminHandlers := handlers.NewAdmin(adService, adStore, invalidate)
	publicHandlers := handlers.NewPublic(adStore, categoryStore, fileStore, listingCache)
	profileHandlers := handlers.NewProfiles(profileStore, fileStore, storageClient)

	// Set up the Chi router with all middleware and routes.
	r := router.New(router.Deps{
		Sessions:    sessionStore,
		Auth:        authHandlers,
		Ads:         adHandlers,
		Admin:       adminHandlers,
		Public:      publicHandlers,
		Profiles:    profileHandlers,
		OTPLimiter:  otpLimiter,
		UploadDir:   cfg.UploadDir,
		CORSOrigins: cfg.CORSOrigins,
	})

	// Create the HTTP server with sensible timeouts. WriteTimeout must
	// accommodate multi-image uploads on slow mobile connections.
	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Start the server in a goroutine so we can listen for shutdown signals.
	go func() {
		slog.Info("server starting", "addr", cfg.Addr())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown: wait for SIGINT or SIGTERM, then drain connections.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	slog.Info("shutdown signal received", "signal", sig)

	// Give active requests up to 30 seconds to complete.
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("server stopped gracefully")
}
