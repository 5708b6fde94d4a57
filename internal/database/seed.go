package database

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"

	"greetcards/internal/models"
)

// DemoSlug is the slug of the greeting created by Seed.
const DemoSlug = "happy-birthday-demo"

// Seed populates the database with a demo greeting for development. It
// does nothing when any greeting already exists.
func Seed(db *sql.DB) error {
	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM greetings").Scan(&count); err != nil {
		return fmt.Errorf("seed check greetings: %w", err)
	}

	if count > 0 {
		slog.Info("database already seeded, skipping")
		return nil
	}

	g := demoGreeting()

	cols := []any{g.Texts, g.Media, g.LayoutGroups, g.Background, g.Border, g.Animation, g.Emojis}
	payloads := make([]string, len(cols))
	for i, c := range cols {
		b, err := json.Marshal(c)
		if err != nil {
			return fmt.Errorf("seed marshal: %w", err)
		}
		payloads[i] = string(b)
	}

	_, err := db.Exec(`
		INSERT INTO greetings (slug, event_type, event_emoji, sender_name, receiver_name,
			texts, media, layout_groups, background, border, animation, emojis, is_public)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (slug) DO NOTHING
	`, g.Slug, g.EventType, g.EventEmoji, g.SenderName, g.ReceiverName,
		payloads[0], payloads[1], payloads[2], payloads[3], payloads[4], payloads[5], payloads[6],
		g.IsPublic)
	if err != nil {
		return fmt.Errorf("seed insert greeting: %w", err)
	}

	slog.Info("database seeded with demo greeting", "slug", g.Slug)
	return nil
}

func demoGreeting() *models.Greeting {
	g := models.NewGreeting()
	g.Slug = DemoSlug
	g.EventEmoji = "🎂"
	g.SenderName = "Alex"
	g.ReceiverName = "Maria"
	g.Texts = []models.TextContent{
		{
			ID:        "demo-text-1",
			Content:   "Wishing you a year full of **laughter**, adventures and cake!",
			Style:     models.TextStyle{FontSize: "1.5rem", Color: "#4a2c2a", TextAlign: "center"},
			Animation: "fade-up",
		},
	}
	g.Media = []models.MediaItem{
		{
			ID:       "demo-media-1",
			URL:      "https://images.unsplash.com/photo-1558636508-e0db3814bd1d.jpg",
			Type:     models.MediaTypeImage,
			Position: models.Position{Width: 400, Height: 300},
		},
		{
			ID:       "demo-media-2",
			URL:      "https://www.youtube.com/watch?v=dQw4w9WgXcQ",
			Type:     models.MediaTypeVideo,
			Position: models.Position{Width: 560, Height: 315},
			Priority: 1,
		},
	}
	g.Emojis = []models.EmojiItem{
		{ID: "demo-emoji-1", Emoji: "🎉", Position: models.EmojiPosition{X: 10, Y: 15}, Size: 48, Animation: "float"},
		{ID: "demo-emoji-2", Emoji: "🎈", Position: models.EmojiPosition{X: 85, Y: 70}, Size: 56, Animation: "bounce"},
	}
	g.Border = models.BorderSettings{
		Enabled: true,
		Style:   "emoji",
		Elements: []models.BorderElement{
			{ID: "demo-border-1", Emoji: "⭐", Position: 0, Revolve: true},
			{ID: "demo-border-2", Emoji: "⭐", Position: 50, Revolve: true},
		},
	}
	return g
}
