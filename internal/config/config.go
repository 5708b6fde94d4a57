// Package config handles application configuration loading from environment
// variables. It provides a centralized Config struct used across the application.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Default values that must not reach production.
const (
	defaultDBPassword  = "changeme"
	defaultTokenSecret = "dev-edit-token-secret"
)

// Config holds all application configuration values loaded from the environment.
type Config struct {
	// Server settings
	Host          string
	Port          string
	Env           string // "development", "production", "testing"
	PublicBaseURL string // origin used in share links and canonical URLs

	// Greeting persistence: "postgres" (also Supabase Postgres), "firestore" or "memory"
	StoreBackend string

	// PostgreSQL connection
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	// Firestore
	FirestoreProject    string
	FirestoreCollection string

	// Valkey (Redis-compatible cache)
	ValkeyHost     string
	ValkeyPort     string
	ValkeyPassword string

	// Media uploads: "s3", "supabase" or "none"
	MediaBackend       string
	S3Endpoint         string
	S3Region           string
	S3AccessKey        string
	S3SecretKey        string
	S3Bucket           string
	S3PublicURL        string
	SupabaseURL        string
	SupabaseServiceKey string
	SupabaseBucket     string

	// Edit tokens and HTTP surface
	EditTokenSecret    string
	CORSOrigins        []string
	RateLimitPerMinute int

	// Auto-save
	AutosaveDelay time.Duration
	DraftTTL      time.Duration

	// Media link checks
	ProbeConcurrency int
}

// LoadEnvFiles loads variables from .env files into the process
// environment. Missing files are skipped; variables that are already set
// are never overridden.
func LoadEnvFiles(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("load %s: %w", p, err)
		}
	}
	return nil
}

// Load reads configuration from environment variables, applying defaults
// for development where appropriate. Returns an error if critical values
// are missing in production mode.
func Load() (*Config, error) {
	cfg := &Config{
		Host:          envOrDefault("APP_HOST", "0.0.0.0"),
		Port:          envOrDefault("APP_PORT", "8080"),
		Env:           envOrDefault("APP_ENV", "development"),
		PublicBaseURL: strings.TrimRight(os.Getenv("PUBLIC_BASE_URL"), "/"),

		StoreBackend: strings.ToLower(envOrDefault("STORE_BACKEND", "postgres")),

		DBHost:     envOrDefault("POSTGRES_HOST", "localhost"),
		DBPort:     envOrDefault("POSTGRES_PORT", "5432"),
		DBUser:     envOrDefault("POSTGRES_USER", "greetcards"),
		DBPassword: envOrDefault("POSTGRES_PASSWORD", defaultDBPassword),
		DBName:     envOrDefault("POSTGRES_DB", "greetcards"),

		FirestoreProject:    os.Getenv("FIRESTORE_PROJECT"),
		FirestoreCollection: envOrDefault("FIRESTORE_COLLECTION", "greetings"),

		ValkeyHost:     envOrDefault("VALKEY_HOST", "localhost"),
		ValkeyPort:     envOrDefault("VALKEY_PORT", "6379"),
		ValkeyPassword: os.Getenv("VALKEY_PASSWORD"),

		MediaBackend:       strings.ToLower(envOrDefault("MEDIA_BACKEND", "none")),
		S3Endpoint:         os.Getenv("S3_ENDPOINT"),
		S3Region:           envOrDefault("S3_REGION", "us-east-1"),
		S3AccessKey:        os.Getenv("S3_ACCESS_KEY"),
		S3SecretKey:        os.Getenv("S3_SECRET_KEY"),
		S3Bucket:           envOrDefault("S3_BUCKET", "greetcards-media"),
		S3PublicURL:        os.Getenv("S3_PUBLIC_URL"),
		SupabaseURL:        os.Getenv("SUPABASE_URL"),
		SupabaseServiceKey: os.Getenv("SUPABASE_SERVICE_KEY"),
		SupabaseBucket:     envOrDefault("SUPABASE_BUCKET", "greetings"),

		EditTokenSecret: envOrDefault("EDIT_TOKEN_SECRET", defaultTokenSecret),
		CORSOrigins:     splitList(envOrDefault("CORS_ORIGINS", "*")),
	}

	var err error
	if cfg.RateLimitPerMinute, err = envInt("RATE_LIMIT_PER_MINUTE", 20); err != nil {
		return nil, err
	}
	if cfg.ProbeConcurrency, err = envInt("PROBE_CONCURRENCY", 4); err != nil {
		return nil, err
	}
	if cfg.AutosaveDelay, err = envDuration("AUTOSAVE_DELAY", time.Second); err != nil {
		return nil, err
	}
	if cfg.DraftTTL, err = envDuration("DRAFT_TTL", 24*time.Hour); err != nil {
		return nil, err
	}

	if cfg.PublicBaseURL == "" {
		cfg.PublicBaseURL = "http://localhost:" + cfg.Port
	}

	switch cfg.StoreBackend {
	case "postgres", "memory":
	case "firestore":
		if cfg.FirestoreProject == "" {
			return nil, fmt.Errorf("FIRESTORE_PROJECT must be set when STORE_BACKEND=firestore")
		}
	default:
		return nil, fmt.Errorf("unknown STORE_BACKEND %q", cfg.StoreBackend)
	}

	switch cfg.MediaBackend {
	case "none":
	case "s3":
		if cfg.S3Endpoint == "" {
			return nil, fmt.Errorf("S3_ENDPOINT must be set when MEDIA_BACKEND=s3")
		}
	case "supabase":
		if cfg.SupabaseURL == "" || cfg.SupabaseServiceKey == "" {
			return nil, fmt.Errorf("SUPABASE_URL and SUPABASE_SERVICE_KEY must be set when MEDIA_BACKEND=supabase")
		}
	default:
		return nil, fmt.Errorf("unknown MEDIA_BACKEND %q", cfg.MediaBackend)
	}

	if cfg.Env == "production" {
		if cfg.StoreBackend == "postgres" && cfg.DBPassword == defaultDBPassword {
			return nil, fmt.Errorf("POSTGRES_PASSWORD must be set in production")
		}
		if cfg.EditTokenSecret == defaultTokenSecret {
			return nil, fmt.Errorf("EDIT_TOKEN_SECRET must be set in production")
		}
		if cfg.StoreBackend == "memory" {
			return nil, fmt.Errorf("STORE_BACKEND=memory is not allowed in production")
		}
	}

	return cfg, nil
}

// DSN returns the PostgreSQL connection string.
func (c *Config) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=disable",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName,
	)
}

// Addr returns the server listen address (host:port).
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

// IsDev returns true if the application is running in development mode.
func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// IsProduction returns true in production mode.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// envOrDefault reads an environment variable, returning a fallback if unset or empty.
func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("%s must be a positive integer, got %q", key, v)
	}
	return n, nil
}

func envDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("%s must be a positive duration, got %q", key, v)
	}
	return d, nil
}

// splitList splits a comma-separated value, dropping empty entries.
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
