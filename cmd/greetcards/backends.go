package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"greetcards/internal/config"
	"greetcards/internal/database"
	"greetcards/internal/storage"
	"greetcards/internal/store"
	"greetcards/internal/store/firestore"
	"greetcards/internal/store/memory"
)

// backend bundles the greeting store with the resources it holds open.
// media is nil unless PostgreSQL is in use.
type backend struct {
	greetings store.Greetings
	media     *store.MediaStore
	closers   []func() error
}

// Close releases the connections opened by openStore.
func (b *backend) Close() {
	for _, c := range b.closers {
		if err := c(); err != nil {
			slog.Warn("close store failed", "error", err)
		}
	}
}

// openStore connects the greeting store selected by STORE_BACKEND.
func openStore(ctx context.Context, cfg *config.Config) (*backend, error) {
	switch cfg.StoreBackend {
	case "postgres":
		db, err := openPostgres(cfg)
		if err != nil {
			return nil, err
		}
		return &backend{
			greetings: store.NewGreetingStore(db),
			media:     store.NewMediaStore(db),
			closers:   []func() error{db.Close},
		}, nil

	case "firestore":
		fs, err := firestore.NewStore(ctx, cfg.FirestoreProject, cfg.FirestoreCollection)
		if err != nil {
			return nil, err
		}
		slog.Info("firestore connected", "project", cfg.FirestoreProject, "collection", cfg.FirestoreCollection)
		return &backend{greetings: fs, closers: []func() error{fs.Close}}, nil

	case "memory":
		slog.Warn("using in-memory greeting store, greetings are lost on restart")
		return &backend{greetings: memory.NewStore()}, nil
	}
	return nil, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
}

// openPostgres connects, migrates and, in development, seeds the database.
func openPostgres(cfg *config.Config) (*sql.DB, error) {
	db, err := database.Connect(cfg.DSN())
	if err != nil {
		return nil, err
	}

	if err := database.Migrate(db); err != nil {
		db.Close()
		return nil, err
	}

	// Seed development data (no-op if data already exists).
	if cfg.IsDev() {
		if err := database.Seed(db); err != nil {
			db.Close()
			return nil, err
		}
	}
	return db, nil
}

// openObjectStore returns the upload backend selected by MEDIA_BACKEND, or
// nil when uploads are disabled.
func openObjectStore(cfg *config.Config) (storage.ObjectStore, error) {
	switch cfg.MediaBackend {
	case "s3":
		c, err := storage.New(cfg.S3Endpoint, cfg.S3Region, cfg.S3AccessKey, cfg.S3SecretKey, cfg.S3Bucket, cfg.S3PublicURL)
		if err != nil || c == nil {
			return nil, err
		}
		slog.Info("s3 storage connected", "endpoint", cfg.S3Endpoint, "bucket", cfg.S3Bucket)
		return c, nil

	case "supabase":
		s, err := storage.NewSupabase(cfg.SupabaseURL, cfg.SupabaseServiceKey, cfg.SupabaseBucket)
		if err != nil || s == nil {
			return nil, err
		}
		slog.Info("supabase storage connected", "bucket", cfg.SupabaseBucket)
		return s, nil
	}
	return nil, nil
}
