// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package render

import (
	"fmt"
	"html/template"
	"math"
	"sort"
	"strings"

	"greetcards/internal/markdown"
	"greetcards/internal/mediatype"
	"greetcards/internal/models"
	"greetcards/internal/retry"
	"greetcards/internal/seo"
	"greetcards/internal/share"
)

// GreetingData is passed to the greeting template.
type GreetingData struct {
	Meta        seo.Meta
	Share       share.Share
	Slug        string
	Heading     string
	EventEmoji  string
	Sender      string
	SenderCSS   template.CSS
	Receiver    string
	ReceiverCSS template.CSS
	CardCSS     template.CSS
	// BackgroundImage is set for image backgrounds, rendered as an <img>.
	BackgroundImage template.URL
	OverlayCSS      template.CSS
	Animation       string
	Texts           []TextView
	Media           []MediaView
	Groups          []GroupView
	Emojis          []EmojiView
	Border          []BorderView
	Audio           *AudioView
	MaxRetries      int
}

// TextView is one rendered text block.
type TextView struct {
	HTML       template.HTML
	CSS        template.CSS
	Animation  string
	Continuous bool
}

// MediaView is one gallery item after URL resolution.
type MediaView struct {
	ID         string
	Kind       string
	Src        template.URL
	Invalid    bool
	Retryable  bool
	CSS        template.CSS
	Animation  string
	FrameStyle string
}

// GroupView is a slideshow of media items.
type GroupView struct {
	ID       string
	Layout   string
	Interval int
	Items    []MediaView
}

// EmojiView is a floating emoji.
type EmojiView struct {
	Emoji     string
	CSS       template.CSS
	Animation string
}

// BorderView is an emoji on the card perimeter.
type BorderView struct {
	Emoji        string
	CSS          template.CSS
	Position     float64
	Revolve      bool
	RevolveSpeed float64
}

// AudioView is the background track.
type AudioView struct {
	Src      template.URL
	Autoplay bool
	Loop     bool
	Volume   float64
}

func (r *Renderer) greetingView(g *models.Greeting, meta seo.Meta, sh share.Share) GreetingData {
	d := GreetingData{
		Meta:        meta,
		Share:       sh,
		Slug:        g.Slug,
		Heading:     g.DisplayEventName(),
		EventEmoji:  g.EventEmoji,
		Sender:      g.SenderName,
		SenderCSS:   textCSS(g.SenderNameStyle),
		Receiver:    g.ReceiverName,
		ReceiverCSS: textCSS(g.ReceiverNameStyle),
		Animation:   className(g.Animation.Preset),
		MaxRetries:  retry.MaxRetries,
	}
	if d.EventEmoji == "" {
		if e, ok := r.catalog.Event(g.EventType); ok {
			d.EventEmoji = e.Emoji
		}
	}

	d.CardCSS, d.BackgroundImage, d.OverlayCSS = r.background(g)

	for _, t := range g.Texts {
		d.Texts = append(d.Texts, TextView{
			HTML:       markdown.Inline(t.Content),
			CSS:        textCSS(&t.Style),
			Animation:  className(t.Animation),
			Continuous: t.ContinuousAnimation,
		})
	}

	d.Media, d.Groups = r.media(g)

	for _, e := range g.Emojis {
		var c cssBuilder
		c.add("left", fmt.Sprintf("%.2f%%", clampPercent(e.Position.X)))
		c.add("top", fmt.Sprintf("%.2f%%", clampPercent(e.Position.Y)))
		if e.Size > 0 {
			c.add("font-size", fmt.Sprintf("%dpx", min(e.Size, 400)))
		}
		d.Emojis = append(d.Emojis, EmojiView{Emoji: e.Emoji, CSS: c.css(), Animation: className(e.Animation)})
	}

	if g.Border.Enabled {
		for _, e := range g.Border.Elements {
			d.Border = append(d.Border, borderView(e))
		}
	}

	if g.Audio != nil {
		if src, ok := mediaSrc(g.Audio.URL, "data:audio/"); ok {
			d.Audio = &AudioView{Src: src, Autoplay: g.Audio.Autoplay, Loop: g.Audio.Loop, Volume: g.Audio.Volume}
		}
	}
	return d
}

func (r *Renderer) background(g *models.Greeting) (card template.CSS, image template.URL, overlay template.CSS) {
	var c cssBuilder
	b := g.Background
	switch b.Type {
	case "solid", "gradient":
		if v, ok := safeBackground(b.Value); ok {
			c.add("background", v)
		}
	case "image":
		if src, ok := mediaSrc(b.Value, "data:image/"); ok {
			image = src
		}
	default:
		name := b.Theme
		if name == "" || name == "default" {
			name = r.catalog.EventTheme(g.EventType).Name
		}
		if th, ok := r.catalog.Theme(name); ok {
			c.add("background", th.Background)
			c.color("color", th.TextColor)
		}
	}

	if g.Border.Enabled {
		style := g.Border.Style
		if !borderStyles[style] {
			style = "solid"
		}
		width := g.Border.Width
		if width <= 0 {
			width = 4
		}
		color := g.Border.Color
		if !validateColor(color) {
			color = "currentColor"
		}
		c.add("border", fmt.Sprintf("%dpx %s %s", min(width, 50), style, color))
	}
	if g.Border.Radius > 0 {
		c.add("border-radius", fmt.Sprintf("%dpx", min(g.Border.Radius, 200)))
	}

	if b.Overlay != "" {
		var o cssBuilder
		o.color("background", b.Overlay)
		if b.Opacity > 0 && b.Opacity <= 1 {
			o.add("opacity", fmt.Sprintf("%.2f", b.Opacity))
		}
		overlay = o.css()
	}
	return c.css(), image, overlay
}

// media resolves every gallery item. Items that belong to a layout group
// are moved into that group's slideshow, in group order. Views are kept by
// position: ids are only used to look items up for groups, and an id
// shared by several items refers to the first of them.
func (r *Renderer) media(g *models.Greeting) ([]MediaView, []GroupView) {
	items := make([]models.MediaItem, len(g.Media))
	copy(items, g.Media)
	sort.SliceStable(items, func(i, j int) bool { return items[i].Priority > items[j].Priority })

	views := make([]MediaView, len(items))
	byID := make(map[string]int, len(items))
	for i, item := range items {
		views[i] = r.mediaView(item)
		if _, seen := byID[item.ID]; item.ID != "" && !seen {
			byID[item.ID] = i
		}
	}

	grouped := make([]bool, len(items))
	var groups []GroupView
	for _, lg := range g.LayoutGroups {
		gv := GroupView{ID: lg.ID, Layout: className(lg.Layout), Interval: lg.Interval}
		if gv.Interval <= 0 {
			gv.Interval = 3000
		}
		for _, id := range lg.MediaIDs {
			if i, ok := byID[id]; ok && !grouped[i] {
				gv.Items = append(gv.Items, views[i])
				grouped[i] = true
			}
		}
		if len(gv.Items) > 0 {
			groups = append(groups, gv)
		}
	}

	var loose []MediaView
	for i, v := range views {
		if !grouped[i] {
			loose = append(loose, v)
		}
	}
	return loose, groups
}

func (r *Renderer) mediaView(item models.MediaItem) MediaView {
	res := mediatype.Resolve(item.URL, mediatype.Options{Muted: true, Parent: r.embedParent})

	var c cssBuilder
	p := item.Position
	c.add("left", fmt.Sprintf("%dpx", p.X))
	c.add("top", fmt.Sprintf("%dpx", p.Y))
	c.add("width", fmt.Sprintf("%dpx", p.Width))
	c.add("height", fmt.Sprintf("%dpx", p.Height))

	v := MediaView{
		ID:         item.ID,
		Kind:       string(res.Kind),
		Invalid:    res.Invalid,
		Retryable:  res.Retryable,
		CSS:        c.css(),
		Animation:  className(item.Animation),
		FrameStyle: className(item.FrameStyle),
	}

	switch {
	case res.Kind.IsEmbed() && !res.Invalid:
		v.Src = template.URL(res.EmbedURL)
	case res.Kind == mediatype.KindImage:
		if src, ok := mediaSrc(res.URL, "data:image/"); ok {
			v.Src = src
		} else {
			v.Kind = string(mediatype.KindUnsupported)
		}
	case res.Kind == mediatype.KindVideo:
		if src, ok := mediaSrc(res.URL, "data:video/"); ok {
			v.Src = src
		} else {
			v.Kind = string(mediatype.KindUnsupported)
		}
	}
	return v
}

// mediaSrc accepts http(s) URLs and inline data URIs with the given
// prefix. blob: URLs only exist in the browser that created them.
func mediaSrc(raw, dataPrefix string) (template.URL, bool) {
	s := strings.TrimSpace(raw)
	lower := strings.ToLower(s)
	switch {
	case mediatype.IsRemote(s):
		return template.URL(s), true
	case strings.HasPrefix(lower, dataPrefix):
		return template.URL(s), true
	}
	return "", false
}

func borderView(e models.BorderElement) BorderView {
	x, y := models.PerimeterPoint(e.PositionAt(0))
	var c cssBuilder
	c.add("left", fmt.Sprintf("%.2f%%", x))
	c.add("top", fmt.Sprintf("%.2f%%", y))
	if e.Size > 0 {
		c.add("font-size", fmt.Sprintf("%dpx", min(e.Size, 200)))
	}
	speed := e.RevolveSpeed
	if e.Revolve && speed == 0 {
		speed = models.DefaultRevolveSpeed
	}
	return BorderView{
		Emoji:        e.Emoji,
		CSS:          c.css(),
		Position:     e.Position,
		Revolve:      e.Revolve,
		RevolveSpeed: speed,
	}
}

func textCSS(s *models.TextStyle) template.CSS {
	if s == nil {
		return ""
	}
	var c cssBuilder
	c.match("font-size", s.FontSize, lengthRe)
	c.match("font-weight", s.FontWeight, weightRe)
	c.match("font-family", s.FontFamily, fontRe)
	c.color("color", s.Color)
	if textAligns[s.TextAlign] {
		c.add("text-align", s.TextAlign)
	}
	if lengthRe.MatchString(s.LineHeight) || numberRe.MatchString(s.LineHeight) {
		c.add("line-height", s.LineHeight)
	}
	return c.css()
}

func clampPercent(f float64) float64 {
	switch {
	case math.IsNaN(f), f < 0:
		return 0
	case f > 100:
		return 100
	}
	return f
}
