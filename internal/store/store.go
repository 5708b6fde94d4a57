// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package store persists greetings and upload metadata. Greetings can live
// in PostgreSQL (this package), Firestore (store/firestore) or memory
// (store/memory); all three satisfy the Greetings interface and treat the
// slug as the document key.
package store

import (
	"context"
	"errors"
	"fmt"

	"greetcards/internal/models"
	"greetcards/internal/slug"
)

var (
	// ErrNotFound is returned when no greeting has the requested slug.
	ErrNotFound = errors.New("greeting not found")

	// ErrSlugTaken is returned by Create when the slug already exists.
	ErrSlugTaken = errors.New("slug already taken")
)

// MaxSlugAttempts bounds how many fresh slugs CreateWithSlug tries.
const MaxSlugAttempts = 5

// Greetings is the save/load contract shared by every backend.
type Greetings interface {
	Create(ctx context.Context, g *models.Greeting) error
	Update(ctx context.Context, g *models.Greeting) error
	FindBySlug(ctx context.Context, slug string) (*models.Greeting, error)
	IncrementViews(ctx context.Context, slug string) (int64, error)
	ListPublic(ctx context.Context, limit, offset int) ([]models.Greeting, error)
}

// CreateWithSlug assigns a generated slug to g and stores it, generating a
// new slug whenever the backend reports a collision.
func CreateWithSlug(ctx context.Context, s Greetings, g *models.Greeting) error {
	for attempt := 1; attempt <= MaxSlugAttempts; attempt++ {
		g.Slug = slug.New(g.DisplayEventName(), g.ReceiverName)

		err := s.Create(ctx, g)
		if err == nil {
			return nil
		}
		if !errors.Is(err, ErrSlugTaken) {
			return err
		}
	}
	return fmt.Errorf("create greeting: %w after %d attempts", ErrSlugTaken, MaxSlugAttempts)
}
