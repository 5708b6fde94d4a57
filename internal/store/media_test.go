package store

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"greetcards/internal/models"
)

func TestMediaStoreRecordAndFind(t *testing.T) {
	db := testDB(t)
	s := NewMediaStore(db)
	ctx := context.Background()

	key := "images/test_" + uuid.NewString()[:8] + ".jpg"
	t.Cleanup(func() { cleanMediaByKey(t, db, key) })

	duration := 12.5
	media := &models.Media{
		Kind:            models.UploadImage,
		Filename:        "test.jpg",
		OriginalName:    "original.jpg",
		ContentType:     "image/jpeg",
		SizeBytes:       1024,
		Backend:         "s3",
		StorageKey:      key,
		DurationSeconds: &duration,
		URL:             "http://localhost:9000/greetcards/" + key,
	}

	if err := s.Record(ctx, media); err != nil {
		t.Fatalf("Record: %v", err)
	}
	if media.ID == uuid.Nil {
		t.Error("expected non-nil UUID")
	}
	if media.CreatedAt.IsZero() {
		t.Error("expected created_at to be set")
	}

	found, err := s.FindByID(ctx, media.ID)
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if found == nil {
		t.Fatal("expected media, got nil")
	}
	if found.StorageKey != key || found.Kind != models.UploadImage {
		t.Errorf("found = %+v", found)
	}
	if found.DurationSeconds == nil || *found.DurationSeconds != duration {
		t.Errorf("duration = %v", found.DurationSeconds)
	}
	if found.ThumbKey != nil {
		t.Errorf("thumb key = %v, want nil", *found.ThumbKey)
	}

	count, err := s.Count(ctx)
	if err != nil || count < 1 {
		t.Errorf("Count = %d, %v", count, err)
	}

	list, err := s.List(ctx, 1000, 0)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	var listed bool
	for _, m := range list {
		if m.ID == media.ID {
			listed = true
		}
	}
	if !listed {
		t.Error("recorded media not listed")
	}
}

func TestMediaStoreForget(t *testing.T) {
	db := testDB(t)
	s := NewMediaStore(db)
	ctx := context.Background()

	key := "videos/test_" + uuid.NewString()[:8] + ".mp4"
	t.Cleanup(func() { cleanMediaByKey(t, db, key) })

	m := &models.Media{
		Kind: models.UploadVideo, Filename: "clip.mp4", ContentType: "video/mp4",
		SizeBytes: 2048, Backend: "s3", StorageKey: key, URL: "http://x/" + key,
	}
	if err := s.Record(ctx, m); err != nil {
		t.Fatalf("Record: %v", err)
	}

	deleted, err := s.Forget(ctx, key)
	if err != nil {
		t.Fatalf("Forget: %v", err)
	}
	if deleted == nil || deleted.ID != m.ID {
		t.Errorf("Forget returned %+v", deleted)
	}

	again, err := s.Forget(ctx, key)
	if err != nil || again != nil {
		t.Errorf("second Forget = %v, %v; want nil, nil", again, err)
	}

	found, err := s.FindByID(ctx, m.ID)
	if err != nil || found != nil {
		t.Errorf("FindByID after Forget = %v, %v", found, err)
	}
}
