package firestore

import (
	"context"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"greetcards/internal/models"
)

func TestFieldsRoundTrip(t *testing.T) {
	g := models.NewGreeting()
	g.Slug = "happy-birthday-maria-x7k2p9"
	g.SenderName = "Alex"
	g.ReceiverName = "Maria"
	g.PasscodeHash = "$2a$10$hash"
	g.Passcode = "1234"
	g.Texts = []models.TextContent{{ID: "t1", Content: "Have a great day", Style: models.TextStyle{Color: "#fff"}}}
	g.Media = []models.MediaItem{{
		ID: "m1", URL: "https://example.com/cake.jpg", Type: models.MediaTypeImage,
		Position: models.Position{Width: 300, Height: 200, X: 10, Y: -20},
	}}
	g.Audio = &models.AudioSettings{URL: "https://example.com/song.mp3", Volume: 0.5}

	fields, err := toFields(g)
	if err != nil {
		t.Fatalf("toFields: %v", err)
	}
	for _, k := range []string{"slug", "views", "created_at", "updated_at", "passcode"} {
		if _, ok := fields[k]; ok {
			t.Errorf("field %q must not be written", k)
		}
	}
	if fields["passcode_hash"] != g.PasscodeHash {
		t.Errorf("passcode_hash = %v", fields["passcode_hash"])
	}

	created := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	fields["created_at"] = created
	fields["updated_at"] = created
	fields["views"] = int64(7)

	got, err := fromFields(g.Slug, fields)
	if err != nil {
		t.Fatalf("fromFields: %v", err)
	}

	want := *g
	want.Passcode = ""
	want.Views = 7
	want.CreatedAt = created
	want.UpdatedAt = created
	if diff := cmp.Diff(want, *got, cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestFromFieldsLegacyViews(t *testing.T) {
	tests := []struct {
		name string
		raw  any
		want models.Views
	}{
		{"int", int64(3), 3},
		{"string", "12", 12},
		{"object", map[string]any{"count": int64(5)}, 5},
		{"missing", nil, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := fromFields("s", map[string]any{"event_type": "birthday", "views": tt.raw})
			if err != nil {
				t.Fatalf("fromFields: %v", err)
			}
			if g.Views != tt.want {
				t.Errorf("views = %d, want %d", g.Views, tt.want)
			}
		})
	}
}

func TestNewStoreRequiresProject(t *testing.T) {
	if _, err := NewStore(context.Background(), "", ""); err == nil {
		t.Error("expected error for empty project")
	}
}
