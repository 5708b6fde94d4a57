// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package seo builds the metadata of a greeting's public page: title,
// description, keywords, canonical URL and Open Graph / Twitter tags.
package seo

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"greetcards/internal/catalog"
	"greetcards/internal/mediatype"
	"greetcards/internal/models"
)

// MaxDescription is the rune length descriptions are truncated to.
const MaxDescription = 160

// Meta is the head metadata of a greeting page.
type Meta struct {
	Title        string   `json:"title"`
	Description  string   `json:"description"`
	Keywords     []string `json:"keywords"`
	CanonicalURL string   `json:"canonical_url"`
	OGType       string   `json:"og_type"`
	OGImage      string   `json:"og_image,omitempty"`
	TwitterCard  string   `json:"twitter_card"`
	// NoIndex is set for private greetings.
	NoIndex bool `json:"no_index"`
}

// Build derives the metadata for g served under baseURL.
func Build(g *models.Greeting, baseURL string, cat *catalog.Catalog) Meta {
	event, _ := cat.Event(g.EventType)

	m := Meta{
		Title:        Title(g, event.Emoji),
		Description:  Truncate(description(g), MaxDescription),
		Keywords:     keywords(g, event),
		CanonicalURL: CanonicalURL(baseURL, g.Slug),
		OGType:       "website",
		OGImage:      ogImage(g),
		TwitterCard:  "summary",
		NoIndex:      !g.IsPublic || g.HasPasscode(),
	}
	if m.OGImage != "" {
		m.TwitterCard = "summary_large_image"
	}
	return m
}

// Title returns e.g. "Happy Birthday, Maria! 🎂 | From Alex".
func Title(g *models.Greeting, emoji string) string {
	if g.EventEmoji != "" {
		emoji = g.EventEmoji
	}

	var b strings.Builder
	b.WriteString(g.DisplayEventName())
	if name := strings.TrimSpace(g.ReceiverName); name != "" {
		b.WriteString(", ")
		b.WriteString(name)
	}
	b.WriteString("!")
	if emoji != "" {
		b.WriteString(" ")
		b.WriteString(emoji)
	}
	if sender := strings.TrimSpace(g.SenderName); sender != "" {
		b.WriteString(" | From ")
		b.WriteString(sender)
	}
	return b.String()
}

// CanonicalURL joins the public base URL and the slug.
func CanonicalURL(baseURL, slug string) string {
	return strings.TrimRight(baseURL, "/") + "/" + slug
}

// description uses the first non-empty text block, or a generated line.
func description(g *models.Greeting) string {
	for _, t := range g.Texts {
		if s := strings.Join(strings.Fields(plain(t.Content)), " "); s != "" {
			return s
		}
	}

	event := strings.ToLower(g.DisplayEventName())
	switch {
	case g.ReceiverName != "" && g.SenderName != "":
		return fmt.Sprintf("A %s greeting for %s from %s.", event, g.ReceiverName, g.SenderName)
	case g.ReceiverName != "":
		return fmt.Sprintf("A %s greeting for %s.", event, g.ReceiverName)
	default:
		return fmt.Sprintf("A %s greeting card.", event)
	}
}

// plain strips the Markdown markers allowed in text blocks.
var plain = strings.NewReplacer("**", "", "__", "", "~~", "", "*", "", "_", "", "`", "").Replace

// Truncate shortens s to at most limit runes, cutting at a word boundary
// when one is close and appending an ellipsis.
func Truncate(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	runes := []rune(s)
	cut := string(runes[:limit-1])
	if i := strings.LastIndexByte(cut, ' '); i > len(cut)*3/4 {
		cut = cut[:i]
	}
	return strings.TrimRight(cut, " ,.;:") + "…"
}

func keywords(g *models.Greeting, event catalog.Event) []string {
	seen := make(map[string]bool)
	var out []string
	add := func(k string) {
		k = strings.ToLower(strings.TrimSpace(k))
		if k != "" && !seen[k] {
			seen[k] = true
			out = append(out, k)
		}
	}
	add(g.DisplayEventName())
	for _, k := range event.Keywords {
		add(k)
	}
	add("greeting card")
	add(g.ReceiverName)
	return out
}

// ogImage picks the first shareable image: a remote image file, or the
// thumbnail of a YouTube video.
func ogImage(g *models.Greeting) string {
	for _, item := range g.Media {
		res := mediatype.Resolve(item.URL, mediatype.Options{})
		switch {
		case res.Kind == mediatype.KindImage && mediatype.IsRemote(res.URL):
			return res.URL
		case res.Kind == mediatype.KindYouTube && !res.Invalid:
			return "https://i.ytimg.com/vi/" + res.ID + "/hqdefault.jpg"
		}
	}
	if g.Background.Type == "image" && mediatype.IsRemote(g.Background.Value) {
		return g.Background.Value
	}
	return ""
}
