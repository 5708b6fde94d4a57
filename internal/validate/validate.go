// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package validate rejects structurally invalid greetings before they are
// persisted. All checks are pure and independent; every problem found is
// reported, not just the first one.
package validate

import (
	"fmt"
	"math"
	"net/url"
	"regexp"
	"strings"
	"unicode/utf8"

	"greetcards/internal/models"
)

// Validation limits for greeting fields.
const (
	MaxNameLen     = 100
	MaxTextLen     = 500
	MaxPasscodeLen = 64
	MinPasscodeLen = 4

	MinMediaSize = 50
	MaxMediaSize = 2000
	MinMediaPos  = -1000
	MaxMediaPos  = 3000

	MaxMediaItems = 20
	MaxEmojis     = 30
	MaxTexts      = 20
	MaxBorderElem = 24
)

// FieldError describes one invalid field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e FieldError) Error() string {
	return e.Field + ": " + e.Message
}

var (
	hexColor = regexp.MustCompile(`(?i)^#(?:[0-9a-f]{3}|[0-9a-f]{4}|[0-9a-f]{6}|[0-9a-f]{8})$`)
	rgbColor = regexp.MustCompile(`(?i)^rgba?\(\s*\d{1,3}%?\s*,\s*\d{1,3}%?\s*,\s*\d{1,3}%?\s*(?:,\s*(?:0|1|0?\.\d+|1\.0+|\d{1,3}%)\s*)?\)$`)
	hslColor = regexp.MustCompile(`(?i)^hsla?\(\s*\d{1,3}(?:\.\d+)?(?:deg)?\s*,\s*\d{1,3}(?:\.\d+)?%\s*,\s*\d{1,3}(?:\.\d+)?%\s*(?:,\s*(?:0|1|0?\.\d+|1\.0+|\d{1,3}%)\s*)?\)$`)
)

// Color reports whether s is a hex, rgb(a) or hsl(a) color, or
// "transparent".
func Color(s string) bool {
	s = strings.TrimSpace(s)
	if strings.EqualFold(s, "transparent") {
		return true
	}
	return hexColor.MatchString(s) || rgbColor.MatchString(s) || hslColor.MatchString(s)
}

// URL reports whether s is an absolute http(s) URL with a host, or an
// inline data: or blob: URI.
func URL(s string) bool {
	s = strings.TrimSpace(s)
	lower := strings.ToLower(s)
	if strings.HasPrefix(lower, "data:") {
		return len(s) > len("data:") && strings.Contains(s, ",")
	}
	if strings.HasPrefix(lower, "blob:") {
		return len(s) > len("blob:")
	}

	u, err := url.ParseRequestURI(s)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// Greeting checks g and returns every problem found. A nil result means
// the greeting is valid. It never panics.
func Greeting(g *models.Greeting) []FieldError {
	if g == nil {
		return []FieldError{{Field: "greeting", Message: "Greeting is required."}}
	}

	v := &collector{}

	switch {
	case g.EventType == "":
		v.add("event_type", "Event type is required.")
	case !g.EventType.IsKnown():
		v.add("event_type", fmt.Sprintf("Unknown event type %q.", g.EventType))
	case g.EventType == models.EventCustom && strings.TrimSpace(g.EventName) == "":
		v.add("event_name", "Event name is required for a custom event.")
	}
	v.maxLen("event_name", g.EventName, MaxNameLen)
	v.maxLen("sender_name", g.SenderName, MaxNameLen)
	v.maxLen("receiver_name", g.ReceiverName, MaxNameLen)
	v.style("sender_name_style", g.SenderNameStyle)
	v.style("receiver_name_style", g.ReceiverNameStyle)

	if n := len(g.Texts); n > MaxTexts {
		v.add("texts", fmt.Sprintf("Too many text blocks (max %d).", MaxTexts))
	}
	for i, t := range g.Texts {
		field := fmt.Sprintf("texts[%d]", i)
		v.maxLen(field+".content", t.Content, MaxTextLen)
		v.style(field+".style", &t.Style)
	}

	if n := len(g.Media); n > MaxMediaItems {
		v.add("media", fmt.Sprintf("Too many media items (max %d).", MaxMediaItems))
	}
	seen := make(map[string]bool, len(g.Media))
	for i, m := range g.Media {
		field := fmt.Sprintf("media[%d]", i)
		v.media(field, m)
		if m.ID == "" {
			continue
		}
		if seen[m.ID] {
			v.add(field+".id", fmt.Sprintf("Duplicate media id %q.", m.ID))
		}
		seen[m.ID] = true
	}

	if n := len(g.Emojis); n > MaxEmojis {
		v.add("emojis", fmt.Sprintf("Too many emojis (max %d).", MaxEmojis))
	}
	for i, e := range g.Emojis {
		field := fmt.Sprintf("emojis[%d]", i)
		if strings.TrimSpace(e.Emoji) == "" {
			v.add(field+".emoji", "Emoji is required.")
		}
		v.percent(field+".position.x", e.Position.X)
		v.percent(field+".position.y", e.Position.Y)
	}

	v.background(g.Background)
	v.border(g.Border)

	if a := g.Audio; a != nil {
		if !URL(a.URL) {
			v.add("audio.url", "Audio URL is not a valid URL.")
		}
		if a.Volume < 0 || a.Volume > 1 {
			v.add("audio.volume", "Volume must be between 0 and 1.")
		}
	}

	if g.Passcode != "" {
		n := utf8.RuneCountInString(g.Passcode)
		if n < MinPasscodeLen || n > MaxPasscodeLen {
			v.add("passcode", fmt.Sprintf("Passcode must be %d to %d characters.", MinPasscodeLen, MaxPasscodeLen))
		}
	}

	return v.errs
}

type collector struct {
	errs []FieldError
}

func (v *collector) add(field, msg string) {
	v.errs = append(v.errs, FieldError{Field: field, Message: msg})
}

func (v *collector) maxLen(field, s string, limit int) {
	if utf8.RuneCountInString(s) > limit {
		v.add(field, fmt.Sprintf("Too long (max %d characters).", limit))
	}
}

func (v *collector) color(field, s string) {
	if s != "" && !Color(s) {
		v.add(field, fmt.Sprintf("%q is not a valid color.", s))
	}
}

func (v *collector) percent(field string, f float64) {
	if math.IsNaN(f) || f < 0 || f > 100 {
		v.add(field, "Must be between 0 and 100.")
	}
}

func (v *collector) style(field string, s *models.TextStyle) {
	if s == nil {
		return
	}
	v.color(field+".color", s.Color)
}

func (v *collector) media(field string, m models.MediaItem) {
	switch {
	case strings.TrimSpace(m.URL) == "":
		v.add(field+".url", "URL is required.")
	case !URL(m.URL):
		v.add(field+".url", "Not a valid URL.")
	}

	switch m.Type {
	case "", models.MediaTypeImage, models.MediaTypeVideo, models.MediaTypeGIF:
	default:
		v.add(field+".type", fmt.Sprintf("Unknown media type %q.", m.Type))
	}

	p := m.Position
	if p.Width < MinMediaSize || p.Width > MaxMediaSize {
		v.add(field+".position.width", fmt.Sprintf("Width must be between %d and %d.", MinMediaSize, MaxMediaSize))
	}
	if p.Height < MinMediaSize || p.Height > MaxMediaSize {
		v.add(field+".position.height", fmt.Sprintf("Height must be between %d and %d.", MinMediaSize, MaxMediaSize))
	}
	if p.X < MinMediaPos || p.X > MaxMediaPos {
		v.add(field+".position.x", fmt.Sprintf("X must be between %d and %d.", MinMediaPos, MaxMediaPos))
	}
	if p.Y < MinMediaPos || p.Y > MaxMediaPos {
		v.add(field+".position.y", fmt.Sprintf("Y must be between %d and %d.", MinMediaPos, MaxMediaPos))
	}
}

func (v *collector) background(b models.BackgroundSettings) {
	switch b.Type {
	case "", "theme", "gradient", "pattern":
	case "solid":
		if b.Value == "" {
			v.add("background.value", "Background color is required.")
		} else {
			v.color("background.value", b.Value)
		}
	case "image":
		if !URL(b.Value) {
			v.add("background.value", "Background image is not a valid URL.")
		}
	default:
		v.add("background.type", fmt.Sprintf("Unknown background type %q.", b.Type))
	}
	v.color("background.overlay", b.Overlay)
	if b.Opacity < 0 || b.Opacity > 1 {
		v.add("background.opacity", "Opacity must be between 0 and 1.")
	}
}

func (v *collector) border(b models.BorderSettings) {
	v.color("border.color", b.Color)
	if b.Width < 0 || b.Width > 50 {
		v.add("border.width", "Width must be between 0 and 50.")
	}
	if len(b.Elements) > MaxBorderElem {
		v.add("border.elements", fmt.Sprintf("Too many border elements (max %d).", MaxBorderElem))
	}
	for i, e := range b.Elements {
		field := fmt.Sprintf("border.elements[%d]", i)
		v.percent(field+".position", e.Position)
		if e.RevolveSpeed < 0 {
			v.add(field+".revolve_speed", "Speed must not be negative.")
		}
	}
}
