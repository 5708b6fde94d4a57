package store

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/google/uuid"

	"greetcards/internal/models"
)

func testGreeting(slug string) *models.Greeting {
	g := models.NewGreeting()
	g.Slug = slug
	g.SenderName = "Alex"
	g.ReceiverName = "Maria"
	g.ReceiverNameStyle = &models.TextStyle{Color: "#ff0000", FontWeight: "700"}
	g.Texts = []models.TextContent{{ID: "t1", Content: "Happy day!", Style: models.TextStyle{FontSize: "2rem"}}}
	g.Media = []models.MediaItem{{
		ID: "m1", URL: "https://example.com/cake.jpg", Type: models.MediaTypeImage,
		Position: models.Position{Width: 300, Height: 200, X: 5, Y: 10},
	}}
	g.Emojis = []models.EmojiItem{{ID: "e1", Emoji: "🎉", Position: models.EmojiPosition{X: 12.5, Y: 80}}}
	g.Audio = &models.AudioSettings{URL: "https://example.com/song.mp3", Loop: true, Volume: 0.4}
	return g
}

func TestGreetingStoreCreateAndFind(t *testing.T) {
	db := testDB(t)
	s := NewGreetingStore(db)
	ctx := context.Background()

	slug := "test-greeting-" + uuid.NewString()[:8]
	t.Cleanup(func() { cleanGreetings(t, db, slug) })

	g := testGreeting(slug)
	if err := s.Create(ctx, g); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if g.CreatedAt.IsZero() || g.Views != 0 {
		t.Errorf("defaults not returned: created_at=%v views=%d", g.CreatedAt, g.Views)
	}

	found, err := s.FindBySlug(ctx, slug)
	if err != nil {
		t.Fatalf("FindBySlug: %v", err)
	}

	opts := cmpopts.IgnoreFields(models.Greeting{}, "CreatedAt", "UpdatedAt")
	if diff := cmp.Diff(g, found, opts, cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
	if found.SenderNameStyle != nil {
		t.Error("nil style must stay nil")
	}

	if err := s.Create(ctx, testGreeting(slug)); !errors.Is(err, ErrSlugTaken) {
		t.Errorf("duplicate Create = %v, want ErrSlugTaken", err)
	}
}

func TestGreetingStoreNotFound(t *testing.T) {
	db := testDB(t)
	s := NewGreetingStore(db)
	ctx := context.Background()

	if _, err := s.FindBySlug(ctx, "no-such-greeting"); !errors.Is(err, ErrNotFound) {
		t.Errorf("FindBySlug = %v, want ErrNotFound", err)
	}
	if _, err := s.IncrementViews(ctx, "no-such-greeting"); !errors.Is(err, ErrNotFound) {
		t.Errorf("IncrementViews = %v, want ErrNotFound", err)
	}
	if err := s.Update(ctx, testGreeting("no-such-greeting")); !errors.Is(err, ErrNotFound) {
		t.Errorf("Update = %v, want ErrNotFound", err)
	}
}

func TestGreetingStoreUpdateKeepsViews(t *testing.T) {
	db := testDB(t)
	s := NewGreetingStore(db)
	ctx := context.Background()

	slug := "test-greeting-" + uuid.NewString()[:8]
	t.Cleanup(func() { cleanGreetings(t, db, slug) })

	g := testGreeting(slug)
	if err := s.Create(ctx, g); err != nil {
		t.Fatalf("Create: %v", err)
	}
	for i := 1; i <= 3; i++ {
		views, err := s.IncrementViews(ctx, slug)
		if err != nil {
			t.Fatalf("IncrementViews: %v", err)
		}
		if views != int64(i) {
			t.Errorf("views = %d, want %d", views, i)
		}
	}

	g.ReceiverName = "Maria José"
	g.Audio = nil
	g.Texts = nil
	if err := s.Update(ctx, g); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if g.Views != 3 {
		t.Errorf("views after update = %d, want 3", g.Views)
	}

	found, err := s.FindBySlug(ctx, slug)
	if err != nil {
		t.Fatalf("FindBySlug: %v", err)
	}
	if found.ReceiverName != "Maria José" || found.Audio != nil || len(found.Texts) != 0 {
		t.Errorf("update not applied: %+v", found)
	}
}

func TestGreetingStoreListPublic(t *testing.T) {
	db := testDB(t)
	s := NewGreetingStore(db)
	ctx := context.Background()

	public := "test-public-" + uuid.NewString()[:8]
	private := "test-private-" + uuid.NewString()[:8]
	t.Cleanup(func() { cleanGreetings(t, db, public, private) })

	if err := s.Create(ctx, testGreeting(public)); err != nil {
		t.Fatalf("Create public: %v", err)
	}
	hidden := testGreeting(private)
	hidden.IsPublic = false
	if err := s.Create(ctx, hidden); err != nil {
		t.Fatalf("Create private: %v", err)
	}

	list, err := s.ListPublic(ctx, 1000, 0)
	if err != nil {
		t.Fatalf("ListPublic: %v", err)
	}
	var sawPublic bool
	for _, g := range list {
		if g.Slug == private {
			t.Error("private greeting listed")
		}
		if g.Slug == public {
			sawPublic = true
		}
	}
	if !sawPublic {
		t.Error("public greeting not listed")
	}
}
