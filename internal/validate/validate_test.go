package validate

import (
	"math"
	"strings"
	"testing"

	"greetcards/internal/models"
)

func TestColor(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"#fff", true},
		{"#FFF", true},
		{"#ffff", true},
		{"#ffffff", true},
		{"#ff00ff80", true},
		{"rgb(0,0,0)", true},
		{"rgb(255, 128, 0)", true},
		{"rgba(255, 128, 0, 0.5)", true},
		{"rgba(255,128,0,.25)", true},
		{"rgb(100%, 0%, 0%)", true},
		{"hsl(120, 100%, 50%)", true},
		{"hsla(0,0%,0%,0.5)", true},
		{"hsl(210deg, 40%, 30%)", true},
		{"transparent", true},
		{"  #abc  ", true},

		{"not-a-color", false},
		{"", false},
		{"#ff", false},
		{"#fffff", false},
		{"#ggg", false},
		{"fff", false},
		{"rgb(0,0)", false},
		{"rgb(a,b,c)", false},
		{"hsl(120, 100, 50)", false},
		{"red; background: url(x)", false},
	}
	for _, tt := range tests {
		if got := Color(tt.in); got != tt.want {
			t.Errorf("Color(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestURL(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"https://example.com/a.jpg", true},
		{"http://localhost:9000/greetcards/images/1.png", true},
		{"https://youtu.be/dQw4w9WgXcQ", true},
		{"data:image/png;base64,AAAA", true},
		{"blob:https://example.com/1234", true},

		{"", false},
		{"example.com/a.jpg", false},
		{"/relative/path.png", false},
		{"ftp://example.com/a.jpg", false},
		{"javascript:alert(1)", false},
		{"https://", false},
		{"data:", false},
		{"blob:", false},
		{"not a url", false},
	}
	for _, tt := range tests {
		if got := URL(tt.in); got != tt.want {
			t.Errorf("URL(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func validGreeting() *models.Greeting {
	g := models.NewGreeting()
	g.SenderName = "Alex"
	g.ReceiverName = "Maria"
	g.Texts = []models.TextContent{
		{ID: "t1", Content: "Have a wonderful day!", Style: models.TextStyle{Color: "#333"}},
	}
	g.Media = []models.MediaItem{
		{
			ID:       "m1",
			URL:      "https://example.com/cake.jpg",
			Type:     models.MediaTypeImage,
			Position: models.Position{Width: 300, Height: 200, X: 10, Y: -20},
		},
	}
	g.Emojis = []models.EmojiItem{{ID: "e1", Emoji: "🎂", Position: models.EmojiPosition{X: 50, Y: 100}}}
	g.Border = models.BorderSettings{
		Enabled:  true,
		Style:    "emoji",
		Color:    "rgb(255,0,0)",
		Elements: []models.BorderElement{{ID: "b1", Emoji: "🎈", Position: 0}},
	}
	g.Audio = &models.AudioSettings{URL: "https://example.com/song.mp3", Volume: 0.5}
	return g
}

func TestGreetingValid(t *testing.T) {
	if errs := Greeting(validGreeting()); len(errs) != 0 {
		t.Errorf("unexpected errors: %v", errs)
	}
}

func TestGreetingNil(t *testing.T) {
	if errs := Greeting(nil); len(errs) != 1 {
		t.Errorf("errors = %v", errs)
	}
}

func TestGreetingRules(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(g *models.Greeting)
		field  string
	}{
		{"missing event type", func(g *models.Greeting) { g.EventType = "" }, "event_type"},
		{"unknown event type", func(g *models.Greeting) { g.EventType = "halloween" }, "event_type"},
		{"custom without name", func(g *models.Greeting) { g.EventType = models.EventCustom }, "event_name"},
		{"sender too long", func(g *models.Greeting) { g.SenderName = strings.Repeat("a", 101) }, "sender_name"},
		{"receiver too long", func(g *models.Greeting) { g.ReceiverName = strings.Repeat("é", 101) }, "receiver_name"},
		{"text too long", func(g *models.Greeting) { g.Texts[0].Content = strings.Repeat("x", 501) }, "texts[0].content"},
		{"text color", func(g *models.Greeting) { g.Texts[0].Style.Color = "not-a-color" }, "texts[0].style.color"},
		{"name style color", func(g *models.Greeting) {
			g.SenderNameStyle = &models.TextStyle{Color: "blue-ish"}
		}, "sender_name_style.color"},
		{"too many texts", func(g *models.Greeting) {
			g.Texts = make([]models.TextContent, MaxTexts+1)
		}, "texts"},
		{"media url missing", func(g *models.Greeting) { g.Media[0].URL = "" }, "media[0].url"},
		{"media url malformed", func(g *models.Greeting) { g.Media[0].URL = "htp:/broken" }, "media[0].url"},
		{"media type unknown", func(g *models.Greeting) { g.Media[0].Type = "audio" }, "media[0].type"},
		{"media too narrow", func(g *models.Greeting) { g.Media[0].Position.Width = 49 }, "media[0].position.width"},
		{"media too tall", func(g *models.Greeting) { g.Media[0].Position.Height = 2001 }, "media[0].position.height"},
		{"media x out of range", func(g *models.Greeting) { g.Media[0].Position.X = -1001 }, "media[0].position.x"},
		{"media y out of range", func(g *models.Greeting) { g.Media[0].Position.Y = 3001 }, "media[0].position.y"},
		{"media id duplicated", func(g *models.Greeting) {
			g.Media = append(g.Media, g.Media[0])
		}, "media[1].id"},
		{"emoji x negative", func(g *models.Greeting) { g.Emojis[0].Position.X = -1 }, "emojis[0].position.x"},
		{"emoji y over 100", func(g *models.Greeting) { g.Emojis[0].Position.Y = 100.5 }, "emojis[0].position.y"},
		{"emoji NaN", func(g *models.Greeting) { g.Emojis[0].Position.X = math.NaN() }, "emojis[0].position.x"},
		{"emoji empty", func(g *models.Greeting) { g.Emojis[0].Emoji = " " }, "emojis[0].emoji"},
		{"border color", func(g *models.Greeting) { g.Border.Color = "#12" }, "border.color"},
		{"border element position", func(g *models.Greeting) { g.Border.Elements[0].Position = 101 }, "border.elements[0].position"},
		{"background solid invalid", func(g *models.Greeting) {
			g.Background = models.BackgroundSettings{Type: "solid", Value: "nope"}
		}, "background.value"},
		{"background image invalid", func(g *models.Greeting) {
			g.Background = models.BackgroundSettings{Type: "image", Value: "nope"}
		}, "background.value"},
		{"background type unknown", func(g *models.Greeting) { g.Background.Type = "video" }, "background.type"},
		{"audio volume", func(g *models.Greeting) { g.Audio.Volume = 1.5 }, "audio.volume"},
		{"audio url", func(g *models.Greeting) { g.Audio.URL = "song.mp3" }, "audio.url"},
		{"passcode too short", func(g *models.Greeting) { g.Passcode = "123" }, "passcode"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := validGreeting()
			tt.mutate(g)
			errs := Greeting(g)
			if !hasField(errs, tt.field) {
				t.Errorf("expected error on %q, got %v", tt.field, errs)
			}
		})
	}
}

func TestGreetingCollectsAllErrors(t *testing.T) {
	g := validGreeting()
	g.EventType = ""
	g.Media[0].Position.Width = 10
	g.Emojis[0].Position.X = 200
	g.Border.Color = "bad"

	errs := Greeting(g)
	if len(errs) != 4 {
		t.Errorf("got %d errors, want 4: %v", len(errs), errs)
	}
}

func TestGreetingBoundariesAccepted(t *testing.T) {
	g := validGreeting()
	g.SenderName = strings.Repeat("a", MaxNameLen)
	g.Texts[0].Content = strings.Repeat("x", MaxTextLen)
	g.Media[0].Position = models.Position{Width: MinMediaSize, Height: MaxMediaSize, X: MinMediaPos, Y: MaxMediaPos}
	g.Emojis[0].Position = models.EmojiPosition{X: 0, Y: 100}
	g.Border.Elements[0].Position = 100
	g.Audio.Volume = 1
	g.Media = append(g.Media, models.MediaItem{URL: "https://example.com/a.jpg", Position: g.Media[0].Position},
		models.MediaItem{URL: "https://example.com/b.jpg", Position: g.Media[0].Position})
	g.EventType = models.EventCustom
	g.EventName = "Retirement"

	if errs := Greeting(g); len(errs) != 0 {
		t.Errorf("unexpected errors: %v", errs)
	}
}

func TestFieldErrorString(t *testing.T) {
	e := FieldError{Field: "media[0].url", Message: "Not a valid URL."}
	if e.Error() != "media[0].url: Not a valid URL." {
		t.Errorf("Error() = %q", e.Error())
	}
}

func hasField(errs []FieldError, field string) bool {
	for _, e := range errs {
		if e.Field == field {
			return true
		}
	}
	return false
}
