// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package storage

import (
	"context"
	"fmt"
	"io"
	"strings"

	storage_go "github.com/supabase-community/storage-go"
)

// Supabase stores greeting media in a public Supabase Storage bucket.
type Supabase struct {
	client    *storage_go.Client
	bucket    string
	publicURL string
}

// NewSupabase creates a Supabase Storage backend. projectURL is the
// project root (https://<ref>.supabase.co). Returns (nil, nil) when the
// URL or service key is empty.
func NewSupabase(projectURL, serviceKey, bucket string) (*Supabase, error) {
	if projectURL == "" || serviceKey == "" {
		return nil, nil
	}
	if bucket == "" {
		return nil, fmt.Errorf("supabase storage: bucket is required")
	}

	base := strings.TrimRight(projectURL, "/") + "/storage/v1"
	return &Supabase{
		client:    storage_go.NewClient(base, serviceKey, nil),
		bucket:    bucket,
		publicURL: base + "/object/public/" + bucket,
	}, nil
}

// Name identifies the backend in media records.
func (s *Supabase) Name() string {
	return "supabase"
}

// Upload stores an object. The storage-go client has no context support,
// so ctx is only checked before the request starts.
func (s *Supabase) Upload(ctx context.Context, key, contentType string, body io.Reader, _ int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	upsert := false
	cache := cacheControl
	_, err := s.client.UploadFile(s.bucket, key, body, storage_go.FileOptions{
		ContentType:  &contentType,
		CacheControl: &cache,
		Upsert:       &upsert,
	})
	if err != nil {
		return fmt.Errorf("supabase upload %s/%s: %w", s.bucket, key, err)
	}
	return nil
}

// Delete removes an object.
func (s *Supabase) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := s.client.RemoveFile(s.bucket, []string{key}); err != nil {
		return fmt.Errorf("supabase delete %s/%s: %w", s.bucket, key, err)
	}
	return nil
}

// FileURL returns the public URL of a key.
func (s *Supabase) FileURL(key string) string {
	return s.publicURL + "/" + key
}

// ExtractKey returns the object key of a URL produced by FileURL.
func (s *Supabase) ExtractKey(rawURL string) (string, bool) {
	key, ok := strings.CutPrefix(rawURL, s.publicURL+"/")
	if !ok || key == "" {
		return "", false
	}
	return key, true
}
