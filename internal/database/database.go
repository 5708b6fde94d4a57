// Package database opens the PostgreSQL pool behind the greeting and media
// stores, applies the embedded goose migrations and reports what the
// database holds.
package database

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

//go:embed migrations
var embedMigrations embed.FS

// Connect opens a PostgreSQL connection pool using the provided DSN.
// It verifies the connection with a ping before returning.
func Connect(dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("database open: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	// Verify the connection is alive.
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("database ping: %w", err)
	}

	slog.Info("database connected")
	return db, nil
}

// Migrate runs all pending goose migrations from the embedded SQL files
// (greetings and media tables).
func Migrate(db *sql.DB) error {
	if err := setupGoose(); err != nil {
		return err
	}

	if err := goose.Up(db, "migrations"); err != nil {
		return fmt.Errorf("goose up: %w", err)
	}

	slog.Info("database migrations applied")
	return nil
}

func setupGoose() error {
	goose.SetBaseFS(embedMigrations)
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("goose set dialect: %w", err)
	}
	return nil
}

// Status describes the schema version and the stored greetings.
type Status struct {
	SchemaVersion    int64 `json:"schema_version"`
	Greetings        int64 `json:"greetings"`
	PublicGreetings  int64 `json:"public_greetings"`
	LockedGreetings  int64 `json:"locked_greetings"`
	TotalViews       int64 `json:"total_views"`
	MediaUploads     int64 `json:"media_uploads"`
	MediaUploadBytes int64 `json:"media_upload_bytes"`
}

// Report reads the applied migration version and aggregate counts of the
// greetings and media tables. The counts fail until Migrate has run.
func Report(ctx context.Context, db *sql.DB) (Status, error) {
	if err := setupGoose(); err != nil {
		return Status{}, err
	}
	var st Status
	version, err := goose.GetDBVersionContext(ctx, db)
	if err != nil {
		return Status{}, fmt.Errorf("schema version: %w", err)
	}
	st.SchemaVersion = version

	err = db.QueryRowContext(ctx, `
		SELECT COUNT(*),
		       COUNT(*) FILTER (WHERE is_public),
		       COUNT(*) FILTER (WHERE passcode_hash <> ''),
		       COALESCE(SUM(views), 0)
		FROM greetings`,
	).Scan(&st.Greetings, &st.PublicGreetings, &st.LockedGreetings, &st.TotalViews)
	if err != nil {
		return Status{}, fmt.Errorf("count greetings: %w", err)
	}

	err = db.QueryRowContext(ctx, `SELECT COUNT(*), COALESCE(SUM(size_bytes), 0) FROM media`).
		Scan(&st.MediaUploads, &st.MediaUploadBytes)
	if err != nil {
		return Status{}, fmt.Errorf("count media: %w", err)
	}
	return st, nil
}
