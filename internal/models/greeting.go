// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"time"

	"github.com/google/uuid"
)

// EventType identifies the occasion a greeting is made for.
type EventType string

const (
	EventBirthday        EventType = "birthday"
	EventAnniversary     EventType = "anniversary"
	EventWedding         EventType = "wedding"
	EventGraduation      EventType = "graduation"
	EventChristmas       EventType = "christmas"
	EventNewYear         EventType = "new-year"
	EventValentines      EventType = "valentines"
	EventDiwali          EventType = "diwali"
	EventEid             EventType = "eid"
	EventHoli            EventType = "holi"
	EventThankYou        EventType = "thank-you"
	EventCongratulations EventType = "congratulations"
	EventGetWell         EventType = "get-well"
	EventCustom          EventType = "custom"
)

// MediaType is the stored hint for a gallery item. Rendering dispatches on
// the type sniffed from the URL, which may disagree with this value.
type MediaType string

const (
	MediaTypeImage MediaType = "image"
	MediaTypeVideo MediaType = "video"
	MediaTypeGIF   MediaType = "gif"
)

// Greeting is the persisted aggregate behind one shareable card. It is a
// plain value object; the slug is its only identity.
type Greeting struct {
	Slug              string             `json:"slug"`
	EventType         EventType          `json:"event_type"`
	EventName         string             `json:"event_name,omitempty"`
	EventEmoji        string             `json:"event_emoji,omitempty"`
	SenderName        string             `json:"sender_name"`
	ReceiverName      string             `json:"receiver_name"`
	SenderNameStyle   *TextStyle         `json:"sender_name_style,omitempty"`
	ReceiverNameStyle *TextStyle         `json:"receiver_name_style,omitempty"`
	Texts             []TextContent      `json:"texts"`
	Media             []MediaItem        `json:"media"`
	LayoutGroups      []LayoutGroup      `json:"layout_groups,omitempty"`
	Background        BackgroundSettings `json:"background"`
	Border            BorderSettings     `json:"border"`
	Animation         AnimationSettings  `json:"animation"`
	Emojis            []EmojiItem        `json:"emojis"`
	Audio             *AudioSettings     `json:"audio,omitempty"`
	IsPublic          bool               `json:"is_public"`
	Passcode          string             `json:"passcode,omitempty"`
	PasscodeHash      string             `json:"-"`
	Views             Views              `json:"views"`
	CreatedAt         time.Time          `json:"created_at"`
	UpdatedAt         time.Time          `json:"updated_at"`
}

// TextStyle is the per-block styling of a text element. Blocks never
// inherit style from each other.
type TextStyle struct {
	FontSize   string `json:"font_size,omitempty"`
	FontWeight string `json:"font_weight,omitempty"`
	FontFamily string `json:"font_family,omitempty"`
	Color      string `json:"color,omitempty"`
	TextAlign  string `json:"text_align,omitempty"`
	LineHeight string `json:"line_height,omitempty"`
}

// TextContent is one ordered text block of a greeting.
type TextContent struct {
	ID                  string    `json:"id"`
	Content             string    `json:"content"`
	Style               TextStyle `json:"style"`
	Animation           string    `json:"animation,omitempty"`
	ContinuousAnimation bool      `json:"continuous_animation,omitempty"`
}

// Position places a media item on the card, in pixels.
type Position struct {
	Width  int `json:"width"`
	Height int `json:"height"`
	X      int `json:"x"`
	Y      int `json:"y"`
}

// MediaItem is one entry of the greeting's gallery.
type MediaItem struct {
	ID         string    `json:"id"`
	URL        string    `json:"url"`
	Type       MediaType `json:"type"`
	Position   Position  `json:"position"`
	Animation  string    `json:"animation,omitempty"`
	FrameStyle string    `json:"frame_style,omitempty"`
	Layout     string    `json:"layout,omitempty"`
	Priority   int       `json:"priority"`
}

// LayoutGroup is a slideshow group of media items that advances every
// Interval milliseconds.
type LayoutGroup struct {
	ID       string   `json:"id"`
	Layout   string   `json:"layout"`
	MediaIDs []string `json:"media_ids"`
	Interval int      `json:"interval,omitempty"`
}

// EmojiPosition is expressed as percentages of the card's width and height.
type EmojiPosition struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// EmojiItem is a decorative emoji floating on the card.
type EmojiItem struct {
	ID        string        `json:"id"`
	Emoji     string        `json:"emoji"`
	Position  EmojiPosition `json:"position"`
	Size      int           `json:"size,omitempty"`
	Animation string        `json:"animation,omitempty"`
}

// BackgroundSettings describes the card background.
type BackgroundSettings struct {
	Type    string  `json:"type"` // solid, gradient, image, pattern, theme
	Value   string  `json:"value,omitempty"`
	Theme   string  `json:"theme,omitempty"`
	Overlay string  `json:"overlay,omitempty"`
	Opacity float64 `json:"opacity,omitempty"`
}

// AnimationSettings controls the entrance animation of the whole card.
type AnimationSettings struct {
	Preset   string `json:"preset,omitempty"`
	Duration int    `json:"duration,omitempty"` // milliseconds
	Stagger  int    `json:"stagger,omitempty"`  // milliseconds between elements
	Loop     bool   `json:"loop,omitempty"`
}

// AudioSettings attaches a background track to the card.
type AudioSettings struct {
	URL      string  `json:"url"`
	Autoplay bool    `json:"autoplay"`
	Loop     bool    `json:"loop"`
	Volume   float64 `json:"volume"`
}

// NewGreeting returns a blank greeting with the editor's defaults.
func NewGreeting() *Greeting {
	return &Greeting{
		EventType: EventBirthday,
		Texts:     []TextContent{},
		Media:     []MediaItem{},
		Emojis:    []EmojiItem{},
		Background: BackgroundSettings{
			Type:  "theme",
			Theme: "default",
		},
		Border: BorderSettings{
			Style:    "none",
			Elements: []BorderElement{},
		},
		Animation: AnimationSettings{
			Preset:   "fade",
			Duration: 800,
			Stagger:  150,
		},
		IsPublic: true,
	}
}

// NewItemID returns a fresh identifier for a text block, media item or emoji.
func NewItemID() string {
	return uuid.NewString()
}

// DisplayEventName returns the human label of the greeting's occasion,
// preferring the custom name when one is set.
func (g *Greeting) DisplayEventName() string {
	if g.EventName != "" {
		return g.EventName
	}
	if label, ok := eventLabels[g.EventType]; ok {
		return label
	}
	return string(g.EventType)
}

// HasPasscode reports whether viewing the greeting requires a passcode.
func (g *Greeting) HasPasscode() bool {
	return g.PasscodeHash != ""
}

var eventLabels = map[EventType]string{
	EventBirthday:        "Happy Birthday",
	EventAnniversary:     "Happy Anniversary",
	EventWedding:         "Happy Wedding Day",
	EventGraduation:      "Happy Graduation",
	EventChristmas:       "Merry Christmas",
	EventNewYear:         "Happy New Year",
	EventValentines:      "Happy Valentine's Day",
	EventDiwali:          "Happy Diwali",
	EventEid:             "Eid Mubarak",
	EventHoli:            "Happy Holi",
	EventThankYou:        "Thank You",
	EventCongratulations: "Congratulations",
	EventGetWell:         "Get Well Soon",
}

// KnownEventTypes lists every non-custom event type.
func KnownEventTypes() []EventType {
	return []EventType{
		EventBirthday, EventAnniversary, EventWedding, EventGraduation,
		EventChristmas, EventNewYear, EventValentines, EventDiwali,
		EventEid, EventHoli, EventThankYou, EventCongratulations,
		EventGetWell, EventCustom,
	}
}

// IsKnown reports whether e is one of the supported event types.
func (e EventType) IsKnown() bool {
	for _, k := range KnownEventTypes() {
		if e == k {
			return true
		}
	}
	return false
}
