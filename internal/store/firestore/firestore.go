// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package firestore stores greetings as Firestore documents keyed by slug,
// using the same snake_case field names as the PostgreSQL columns.
package firestore

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"greetcards/internal/models"
	"greetcards/internal/store"
)

// DefaultCollection is used when no collection name is configured.
const DefaultCollection = "greetings"

// Store implements store.Greetings on top of a Firestore collection.
type Store struct {
	client     *firestore.Client
	collection string
	now        func() time.Time
}

var _ store.Greetings = (*Store)(nil)

// NewStore creates a Firestore store for the given GCP project.
func NewStore(ctx context.Context, projectID, collection string) (*Store, error) {
	if projectID == "" {
		return nil, fmt.Errorf("projectID is required for Firestore store")
	}
	if collection == "" {
		collection = DefaultCollection
	}

	client, err := firestore.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("creating firestore client: %w", err)
	}

	return &Store{client: client, collection: collection, now: time.Now}, nil
}

// Close releases the underlying client.
func (s *Store) Close() error {
	return s.client.Close()
}

func (s *Store) greetingsCol() *firestore.CollectionRef {
	return s.client.Collection(s.collection)
}

func (s *Store) greetingDoc(slug string) *firestore.DocumentRef {
	return s.greetingsCol().Doc(slug)
}

// optionalFields are omitted from the JSON form when empty and must be
// removed explicitly on update.
var optionalFields = []string{
	"event_name", "event_emoji", "sender_name_style", "receiver_name_style",
	"layout_groups", "audio",
}

// toFields converts the editable part of a greeting into Firestore fields.
// Metadata (slug, views, timestamps) is handled by the callers.
func toFields(g *models.Greeting) (map[string]any, error) {
	b, err := json.Marshal(g)
	if err != nil {
		return nil, fmt.Errorf("marshal greeting: %w", err)
	}
	var fields map[string]any
	if err := json.Unmarshal(b, &fields); err != nil {
		return nil, fmt.Errorf("unmarshal greeting fields: %w", err)
	}
	for _, k := range []string{"slug", "views", "created_at", "updated_at", "passcode"} {
		delete(fields, k)
	}
	fields["passcode_hash"] = g.PasscodeHash
	return fields, nil
}

// fromFields rebuilds a greeting from a document's data.
func fromFields(slug string, data map[string]any) (*models.Greeting, error) {
	rest := make(map[string]any, len(data))
	for k, v := range data {
		rest[k] = v
	}

	var g models.Greeting
	if t, ok := rest["created_at"].(time.Time); ok {
		g.CreatedAt = t
	}
	if t, ok := rest["updated_at"].(time.Time); ok {
		g.UpdatedAt = t
	}
	g.Views = models.Views(models.NormalizeViews(rest["views"]))
	if h, ok := rest["passcode_hash"].(string); ok {
		g.PasscodeHash = h
	}
	for _, k := range []string{"created_at", "updated_at", "views", "passcode_hash"} {
		delete(rest, k)
	}

	b, err := json.Marshal(rest)
	if err != nil {
		return nil, fmt.Errorf("marshal document %s: %w", slug, err)
	}
	if err := json.Unmarshal(b, &g); err != nil {
		return nil, fmt.Errorf("decode document %s: %w", slug, err)
	}
	g.Slug = slug
	return &g, nil
}

// Create stores a new document. An existing document with the same slug
// yields store.ErrSlugTaken.
func (s *Store) Create(ctx context.Context, g *models.Greeting) error {
	fields, err := toFields(g)
	if err != nil {
		return err
	}

	now := s.now().UTC()
	fields["views"] = int64(0)
	fields["created_at"] = now
	fields["updated_at"] = now

	if _, err := s.greetingDoc(g.Slug).Create(ctx, fields); err != nil {
		if status.Code(err) == codes.AlreadyExists {
			return store.ErrSlugTaken
		}
		return fmt.Errorf("firestore create greeting: %w", err)
	}

	g.Views = 0
	g.CreatedAt = now
	g.UpdatedAt = now
	return nil
}

// Update overwrites the editable fields of an existing document.
func (s *Store) Update(ctx context.Context, g *models.Greeting) error {
	fields, err := toFields(g)
	if err != nil {
		return err
	}

	updates := make([]firestore.Update, 0, len(fields)+len(optionalFields)+1)
	for k, v := range fields {
		updates = append(updates, firestore.Update{Path: k, Value: v})
	}
	for _, k := range optionalFields {
		if _, ok := fields[k]; !ok {
			updates = append(updates, firestore.Update{Path: k, Value: firestore.Delete})
		}
	}
	updates = append(updates, firestore.Update{Path: "updated_at", Value: s.now().UTC()})

	if _, err := s.greetingDoc(g.Slug).Update(ctx, updates); err != nil {
		if status.Code(err) == codes.NotFound {
			return store.ErrNotFound
		}
		return fmt.Errorf("firestore update greeting: %w", err)
	}

	saved, err := s.FindBySlug(ctx, g.Slug)
	if err != nil {
		return err
	}
	g.Views = saved.Views
	g.CreatedAt = saved.CreatedAt
	g.UpdatedAt = saved.UpdatedAt
	return nil
}

// FindBySlug loads one document.
func (s *Store) FindBySlug(ctx context.Context, slug string) (*models.Greeting, error) {
	snap, err := s.greetingDoc(slug).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("firestore find greeting: %w", err)
	}
	return fromFields(snap.Ref.ID, snap.Data())
}

// IncrementViews bumps the counter atomically on the server and reads back
// the new total.
func (s *Store) IncrementViews(ctx context.Context, slug string) (int64, error) {
	doc := s.greetingDoc(slug)
	_, err := doc.Update(ctx, []firestore.Update{
		{Path: "views", Value: firestore.Increment(1)},
	})
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return 0, store.ErrNotFound
		}
		return 0, fmt.Errorf("firestore increment views: %w", err)
	}

	snap, err := doc.Get(ctx)
	if err != nil {
		return 0, fmt.Errorf("firestore read views: %w", err)
	}
	v, err := snap.DataAt("views")
	if err != nil {
		return 0, fmt.Errorf("firestore read views: %w", err)
	}
	return models.NormalizeViews(v), nil
}

// ListPublic returns public greetings, newest first.
func (s *Store) ListPublic(ctx context.Context, limit, offset int) ([]models.Greeting, error) {
	q := s.greetingsCol().Where("is_public", "==", true).OrderBy("created_at", firestore.Desc)
	if offset > 0 {
		q = q.Offset(offset)
	}
	if limit > 0 {
		q = q.Limit(limit)
	}

	iter := q.Documents(ctx)
	defer iter.Stop()

	var out []models.Greeting
	for {
		snap, err := iter.Next()
		if err != nil {
			if err == iterator.Done {
				break
			}
			return nil, fmt.Errorf("firestore list public greetings: %w", err)
		}

		g, err := fromFields(snap.Ref.ID, snap.Data())
		if err != nil {
			return nil, err
		}
		out = append(out, *g)
	}
	return out, nil
}
