// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"greetcards/internal/models"
)

// uniqueViolation is the PostgreSQL error code for a duplicate key.
const uniqueViolation = "23505"

// GreetingStore keeps greetings in the PostgreSQL (or Supabase) greetings
// table. Nested objects are stored as JSONB.
type GreetingStore struct {
	db *sql.DB
}

// NewGreetingStore creates a new GreetingStore with the given database connection.
func NewGreetingStore(db *sql.DB) *GreetingStore {
	return &GreetingStore{db: db}
}

// greetingColumns lists the columns selected in greeting queries.
const greetingColumns = `slug, event_type, event_name, event_emoji, sender_name, receiver_name,
	sender_name_style, receiver_name_style, texts, media, layout_groups,
	background, border, animation, emojis, audio, is_public, passcode_hash,
	views, created_at, updated_at`

// nullableColumn marks the JSONB columns (by jsonColumns index) that accept
// NULL. The remaining ones are arrays and default to [].
var nullableColumn = [10]bool{0: true, 1: true, 9: true}

// jsonColumns returns the JSONB values of g in greetingColumns order.
func jsonColumns(g *models.Greeting) ([]any, error) {
	fields := []any{
		g.SenderNameStyle, g.ReceiverNameStyle, g.Texts, g.Media, g.LayoutGroups,
		g.Background, g.Border, g.Animation, g.Emojis, g.Audio,
	}
	out := make([]any, len(fields))
	for i, f := range fields {
		b, err := json.Marshal(f)
		if err != nil {
			return nil, fmt.Errorf("marshal greeting: %w", err)
		}
		switch {
		case string(b) != "null":
			out[i] = string(b)
		case nullableColumn[i]:
			out[i] = nil
		default:
			out[i] = "[]"
		}
	}
	return out, nil
}

// scanGreeting scans a greeting row from the result set.
func scanGreeting(scanner interface{ Scan(...any) error }) (*models.Greeting, error) {
	var (
		g   models.Greeting
		raw [10][]byte
	)
	err := scanner.Scan(
		&g.Slug, &g.EventType, &g.EventName, &g.EventEmoji, &g.SenderName, &g.ReceiverName,
		&raw[0], &raw[1], &raw[2], &raw[3], &raw[4],
		&raw[5], &raw[6], &raw[7], &raw[8], &raw[9], &g.IsPublic, &g.PasscodeHash,
		&g.Views, &g.CreatedAt, &g.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	targets := []any{
		&g.SenderNameStyle, &g.ReceiverNameStyle, &g.Texts, &g.Media, &g.LayoutGroups,
		&g.Background, &g.Border, &g.Animation, &g.Emojis, &g.Audio,
	}
	for i, b := range raw {
		if len(b) == 0 {
			continue
		}
		if err := json.Unmarshal(b, targets[i]); err != nil {
			return nil, fmt.Errorf("unmarshal greeting %s: %w", g.Slug, err)
		}
	}
	return &g, nil
}

// Create inserts a new greeting. The slug must already be set; a duplicate
// slug returns ErrSlugTaken.
func (s *GreetingStore) Create(ctx context.Context, g *models.Greeting) error {
	js, err := jsonColumns(g)
	if err != nil {
		return err
	}

	args := append([]any{g.Slug, g.EventType, g.EventName, g.EventEmoji, g.SenderName, g.ReceiverName}, js...)
	args = append(args, g.IsPublic, g.PasscodeHash)

	err = s.db.QueryRowContext(ctx, `
		INSERT INTO greetings (slug, event_type, event_name, event_emoji, sender_name, receiver_name,
			sender_name_style, receiver_name_style, texts, media, layout_groups,
			background, border, animation, emojis, audio, is_public, passcode_hash)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
		RETURNING views, created_at, updated_at`,
		args...,
	).Scan(&g.Views, &g.CreatedAt, &g.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return ErrSlugTaken
		}
		return fmt.Errorf("create greeting: %w", err)
	}
	return nil
}

// Update overwrites the editable fields of an existing greeting. Views and
// created_at are left untouched.
func (s *GreetingStore) Update(ctx context.Context, g *models.Greeting) error {
	js, err := jsonColumns(g)
	if err != nil {
		return err
	}

	args := append([]any{g.Slug, g.EventType, g.EventName, g.EventEmoji, g.SenderName, g.ReceiverName}, js...)
	args = append(args, g.IsPublic, g.PasscodeHash)

	err = s.db.QueryRowContext(ctx, `
		UPDATE greetings SET
			event_type = $2, event_name = $3, event_emoji = $4, sender_name = $5, receiver_name = $6,
			sender_name_style = $7, receiver_name_style = $8, texts = $9, media = $10,
			layout_groups = $11, background = $12, border = $13, animation = $14,
			emojis = $15, audio = $16, is_public = $17, passcode_hash = $18,
			updated_at = NOW()
		WHERE slug = $1
		RETURNING views, created_at, updated_at`,
		args...,
	).Scan(&g.Views, &g.CreatedAt, &g.UpdatedAt)
	if err == sql.ErrNoRows {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("update greeting: %w", err)
	}
	return nil
}

// FindBySlug retrieves a single greeting by its slug.
func (s *GreetingStore) FindBySlug(ctx context.Context, slug string) (*models.Greeting, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+greetingColumns+` FROM greetings WHERE slug = $1`, slug)
	g, err := scanGreeting(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find greeting by slug: %w", err)
	}
	return g, nil
}

// IncrementViews adds one view and returns the new total.
func (s *GreetingStore) IncrementViews(ctx context.Context, slug string) (int64, error) {
	var views int64
	err := s.db.QueryRowContext(ctx,
		`UPDATE greetings SET views = views + 1 WHERE slug = $1 RETURNING views`, slug,
	).Scan(&views)
	if err == sql.ErrNoRows {
		return 0, ErrNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("increment views: %w", err)
	}
	return views, nil
}

// ListPublic returns public greetings, newest first, with pagination.
func (s *GreetingStore) ListPublic(ctx context.Context, limit, offset int) ([]models.Greeting, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+greetingColumns+`
		FROM greetings
		WHERE is_public
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list public greetings: %w", err)
	}
	defer rows.Close()

	var items []models.Greeting
	for rows.Next() {
		g, err := scanGreeting(rows)
		if err != nil {
			return nil, fmt.Errorf("scan greeting: %w", err)
		}
		items = append(items, *g)
	}
	return items, rows.Err()
}
