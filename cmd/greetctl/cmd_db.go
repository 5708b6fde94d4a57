package main

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"greetcards/internal/cache"
	"greetcards/internal/config"
	"greetcards/internal/database"
	"greetcards/internal/store"
)

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending PostgreSQL migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := openDB()
			if err != nil {
				return err
			}
			defer db.Close()

			if err := database.Migrate(db); err != nil {
				return fmt.Errorf("migrate: %w", err)
			}
			logger.Info("migrations applied")
			return nil
		},
	}
}

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Print the schema version and greeting counts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := openDB()
			if err != nil {
				return err
			}
			defer db.Close()

			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()
			st, err := database.Report(ctx, db)
			if err != nil {
				return fmt.Errorf("status: %w", err)
			}
			return printJSON(cmd, st)
		},
	}
}

func newCacheCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect the Valkey page and draft keyspaces",
	}

	stats := &cobra.Command{
		Use:   "stats",
		Short: "Count cached pages and stored drafts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			client, err := cache.ConnectValkey(cfg.ValkeyHost, cfg.ValkeyPort, cfg.ValkeyPassword)
			if err != nil {
				return fmt.Errorf("connect: %w", err)
			}
			defer client.Close()

			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()
			usage, err := cache.KeyUsage(ctx, client)
			if err != nil {
				return err
			}
			return printJSON(cmd, usage)
		},
	}

	purge := &cobra.Command{
		Use:   "purge",
		Short: "Drop every cached greeting page; drafts are kept",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			client, err := cache.ConnectValkey(cfg.ValkeyHost, cfg.ValkeyPort, cfg.ValkeyPassword)
			if err != nil {
				return fmt.Errorf("connect: %w", err)
			}
			defer client.Close()

			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()
			n := cache.NewPageCache(client, 0).InvalidateAll(ctx)
			logger.Info("page cache purged", zap.Int("deleted", n))
			fmt.Fprintf(cmd.OutOrStdout(), "%d pages deleted\n", n)
			return nil
		},
	}

	cmd.AddCommand(stats, purge)
	return cmd
}

func loadConfig() (*config.Config, error) {
	if err := config.LoadEnvFiles(".env", ".env.local"); err != nil {
		return nil, err
	}
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

// openDB connects with the server's configuration (environment and .env).
func openDB() (*sql.DB, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	logger.Debug("connecting to database", zap.String("host", cfg.DBHost), zap.String("name", cfg.DBName))

	db, err := database.Connect(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}
	return db, nil
}

func mediaStore(db *sql.DB) *store.MediaStore {
	return store.NewMediaStore(db)
}
