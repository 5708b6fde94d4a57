// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package memory is an in-process greeting store for development and tests.
package memory

import (
	"context"
	"encoding/json"
	"sort"
	"sync"
	"time"

	"greetcards/internal/models"
	"greetcards/internal/store"
)

// Store keeps greetings in a map keyed by slug. Values are deep-copied on
// the way in and out so callers never share state with the store.
type Store struct {
	mu        sync.RWMutex
	greetings map[string]*models.Greeting
	now       func() time.Time
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		greetings: make(map[string]*models.Greeting),
		now:       time.Now,
	}
}

var _ store.Greetings = (*Store)(nil)

// Create stores a new greeting. Returns store.ErrSlugTaken if the slug exists.
func (s *Store) Create(_ context.Context, g *models.Greeting) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.greetings[g.Slug]; ok {
		return store.ErrSlugTaken
	}

	now := s.now().UTC()
	g.CreatedAt = now
	g.UpdatedAt = now
	g.Views = 0

	c, err := clone(g)
	if err != nil {
		return err
	}
	s.greetings[g.Slug] = c
	return nil
}

// Update replaces an existing greeting, keeping its views and creation time.
func (s *Store) Update(_ context.Context, g *models.Greeting) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	old, ok := s.greetings[g.Slug]
	if !ok {
		return store.ErrNotFound
	}

	g.Views = old.Views
	g.CreatedAt = old.CreatedAt
	g.UpdatedAt = s.now().UTC()

	c, err := clone(g)
	if err != nil {
		return err
	}
	s.greetings[g.Slug] = c
	return nil
}

// FindBySlug returns a copy of the greeting.
func (s *Store) FindBySlug(_ context.Context, slug string) (*models.Greeting, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	g, ok := s.greetings[slug]
	if !ok {
		return nil, store.ErrNotFound
	}
	return clone(g)
}

// IncrementViews adds one view and returns the new total.
func (s *Store) IncrementViews(_ context.Context, slug string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	g, ok := s.greetings[slug]
	if !ok {
		return 0, store.ErrNotFound
	}
	g.Views++
	return int64(g.Views), nil
}

// ListPublic returns public greetings, newest first.
func (s *Store) ListPublic(_ context.Context, limit, offset int) ([]models.Greeting, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var public []*models.Greeting
	for _, g := range s.greetings {
		if g.IsPublic {
			public = append(public, g)
		}
	}
	sort.Slice(public, func(i, j int) bool {
		if public[i].CreatedAt.Equal(public[j].CreatedAt) {
			return public[i].Slug < public[j].Slug
		}
		return public[i].CreatedAt.After(public[j].CreatedAt)
	})

	if offset < 0 {
		offset = 0
	}
	if offset >= len(public) {
		return []models.Greeting{}, nil
	}
	public = public[offset:]
	if limit > 0 && limit < len(public) {
		public = public[:limit]
	}

	out := make([]models.Greeting, 0, len(public))
	for _, g := range public {
		c, err := clone(g)
		if err != nil {
			return nil, err
		}
		out = append(out, *c)
	}
	return out, nil
}

// Len returns the number of stored greetings.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.greetings)
}

// clone deep-copies g. JSON covers every exported field except the
// passcode hash, which is copied by hand.
func clone(g *models.Greeting) (*models.Greeting, error) {
	b, err := json.Marshal(g)
	if err != nil {
		return nil, err
	}
	var c models.Greeting
	if err := json.Unmarshal(b, &c); err != nil {
		return nil, err
	}
	c.PasscodeHash = g.PasscodeHash
	return &c, nil
}
