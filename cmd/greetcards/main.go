// Package main is the entry point for the greetcards server.
// It loads configuration, connects to services, sets up routing, and starts
// the HTTP server with graceful shutdown support.
package main

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"greetcards/internal/autosave"
	"greetcards/internal/cache"
	"greetcards/internal/catalog"
	"greetcards/internal/config"
	"greetcards/internal/handlers"
	"greetcards/internal/middleware"
	"greetcards/internal/probe"
	"greetcards/internal/render"
	"greetcards/internal/router"
	"greetcards/internal/token"
	"greetcards/internal/upload"
)

// passcodeAttemptsPerMinute bounds passcode guesses per greeting and client.
const passcodeAttemptsPerMinute = 10

func main() {
	// .env files are optional; real environment variables win.
	if err := config.LoadEnvFiles(".env", ".env.local"); err != nil {
		slog.Error("failed to read .env file", "error", err)
		os.Exit(1)
	}

	// Load configuration from environment variables.
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Structured logger: JSON in production, text in development.
	slog.SetDefault(newLogger(cfg))

	slog.Info("configuration loaded",
		"env", cfg.Env,
		"addr", cfg.Addr(),
		"store", cfg.StoreBackend,
		"media", cfg.MediaBackend,
		"base_url", cfg.PublicBaseURL,
	)

	ctx := context.Background()

	// Greeting persistence: PostgreSQL, Firestore or memory.
	backend, err := openStore(ctx, cfg)
	if err != nil {
		slog.Error("failed to open greeting store", "error", err)
		os.Exit(1)
	}
	defer backend.Close()

	// Object storage for uploads (optional; the editor works with links only).
	objects, err := openObjectStore(cfg)
	if err != nil {
		slog.Error("failed to initialize object storage", "error", err)
		os.Exit(1)
	}
	if objects == nil {
		slog.Warn("object storage not configured, media uploads disabled")
	}

	// Valkey backs the page cache and the drafts. Outside production the
	// server falls back to in-memory drafts and no page cache.
	var (
		pages        render.PageCache
		pageCache    *cache.PageCache
		draftBackend autosave.Backend = autosave.NewMemoryBackend()
	)
	valkeyClient, err := cache.ConnectValkey(cfg.ValkeyHost, cfg.ValkeyPort, cfg.ValkeyPassword)
	switch {
	case err == nil:
		defer valkeyClient.Close()
		pageCache = cache.NewPageCache(valkeyClient, cache.DefaultPageTTL)
		// Pages rendered by a previous build may use stale templates.
		pageCache.InvalidateAll(ctx)
		pages = pageCache
		draftBackend = autosave.NewRedisBackend(valkeyClient)
	case cfg.IsProduction():
		slog.Error("failed to connect to valkey", "error", err)
		os.Exit(1)
	default:
		slog.Warn("valkey unavailable, using in-memory drafts without page cache", "error", err)
	}

	cat, err := catalog.Load()
	if err != nil {
		slog.Error("failed to load catalog", "error", err)
		os.Exit(1)
	}

	embedParent := "localhost"
	if u, err := url.Parse(cfg.PublicBaseURL); err == nil && u.Hostname() != "" {
		embedParent = u.Hostname()
	}

	renderer, err := render.New(cat, pages, embedParent)
	if err != nil {
		slog.Error("failed to initialize template renderer", "error", err)
		os.Exit(1)
	}

	signer, err := token.NewSigner(cfg.EditTokenSecret, token.DefaultTTL)
	if err != nil {
		slog.Error("failed to initialize edit tokens", "error", err)
		os.Exit(1)
	}

	// Upload metadata is only recorded in PostgreSQL; both interfaces stay
	// nil otherwise.
	var (
		recorder    upload.MediaRecorder
		mediaLookup handlers.MediaLookup
	)
	if backend.media != nil {
		recorder = backend.media
		mediaLookup = backend.media
	}

	saver := autosave.NewSaver(draftBackend, cfg.AutosaveDelay, cfg.DraftTTL)
	uploads := upload.NewService(objects, recorder, upload.DefaultPolicy())
	prober := probe.New(nil).WithConcurrency(cfg.ProbeConcurrency)
	limiter := middleware.NewRateLimiter(cfg.RateLimitPerMinute, time.Minute)
	defer limiter.Stop()
	// Passcode checks on the API, counted per greeting and client.
	passcodes := middleware.NewRateLimiter(passcodeAttemptsPerMinute, time.Minute)
	defer passcodes.Stop()

	secureCookies := !cfg.IsDev()
	r := router.New(router.Handlers{
		Greetings: handlers.NewGreetings(backend.greetings, signer, renderer, uploads, cat, cfg.PublicBaseURL).
			LimitPasscodeAttempts(passcodes),
		Media:     handlers.NewMedia(uploads, prober, mediaLookup, embedParent),
		Drafts:    handlers.NewDrafts(saver, secureCookies),
		Pages:     handlers.NewPages(backend.greetings, renderer, cat, cfg.PublicBaseURL),
		Catalog:   handlers.Catalog(cat),
	}, limiter, cfg.CORSOrigins)

	// WriteTimeout must accommodate uploads of the largest videos and the
	// media check endpoint, which retries slow URLs.
	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      90 * time.Second,
		IdleTimeout:       120 * time.Second,
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
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
	}

	// Write drafts still waiting for their debounce delay.
	if err := saver.Flush(shutdownCtx); err != nil {
		slog.Error("failed to flush pending drafts", "error", err)
	}

	if pageCache != nil {
		st := pageCache.Stats()
		slog.Info("page cache stats", "hits", st.Hits, "misses", st.Misses, "errors", st.Errors)
	}

	slog.Info("server stopped gracefully")
}

// newLogger returns a JSON handler in production and a text handler with
// debug output elsewhere.
func newLogger(cfg *config.Config) *slog.Logger {
	if cfg.IsProduction() {
		return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
}
