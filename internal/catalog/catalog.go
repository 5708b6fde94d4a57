// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package catalog holds the static choices offered by the editor: event
// types, background themes, animation presets, frame and border styles,
// and emoji packs. The data ships embedded as YAML.
package catalog

import (
	_ "embed"
	"fmt"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"greetcards/internal/models"
)

//go:embed catalog.yaml
var catalogYAML []byte

// Event describes one occasion.
type Event struct {
	Type      models.EventType `yaml:"type" json:"type"`
	Label     string           `yaml:"label" json:"label"`
	Emoji     string           `yaml:"emoji" json:"emoji"`
	Theme     string           `yaml:"theme" json:"theme"`
	ShareText string           `yaml:"share_text" json:"share_text"`
	Keywords  []string         `yaml:"keywords" json:"keywords"`
}

// Theme is a named background.
type Theme struct {
	Name       string `yaml:"name" json:"name"`
	Background string `yaml:"background" json:"background"`
	TextColor  string `yaml:"text_color" json:"text_color"`
}

// EmojiPack groups emojis for the picker.
type EmojiPack struct {
	Name   string   `yaml:"name" json:"name"`
	Emojis []string `yaml:"emojis" json:"emojis"`
}

// Catalog is the full set of editor choices.
type Catalog struct {
	Events           []Event     `yaml:"events" json:"events"`
	Themes           []Theme     `yaml:"themes" json:"themes"`
	AnimationPresets []string    `yaml:"animation_presets" json:"animation_presets"`
	TextAnimations   []string    `yaml:"text_animations" json:"text_animations"`
	FrameStyles      []string    `yaml:"frame_styles" json:"frame_styles"`
	BorderStyles     []string    `yaml:"border_styles" json:"border_styles"`
	EmojiPacks       []EmojiPack `yaml:"emoji_packs" json:"emoji_packs"`
}

// Parse decodes a catalog and checks that every event refers to a known
// event type and theme.
func Parse(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}

	themes := make(map[string]bool, len(c.Themes))
	for _, t := range c.Themes {
		themes[t.Name] = true
	}
	for _, e := range c.Events {
		if !e.Type.IsKnown() {
			return nil, fmt.Errorf("parse catalog: unknown event type %q", e.Type)
		}
		if !themes[e.Theme] {
			return nil, fmt.Errorf("parse catalog: event %q uses unknown theme %q", e.Type, e.Theme)
		}
	}
	return &c, nil
}

var (
	loadOnce sync.Once
	loaded   *Catalog
	loadErr  error
)

// Load returns the embedded catalog, parsed once.
func Load() (*Catalog, error) {
	loadOnce.Do(func() {
		loaded, loadErr = Parse(catalogYAML)
	})
	return loaded, loadErr
}

// MustLoad is Load for callers that cannot continue without the catalog.
func MustLoad() *Catalog {
	c, err := Load()
	if err != nil {
		panic(err)
	}
	return c
}

// Event returns the entry for t.
func (c *Catalog) Event(t models.EventType) (Event, bool) {
	for _, e := range c.Events {
		if e.Type == t {
			return e, true
		}
	}
	return Event{}, false
}

// IsKnownEvent reports whether t is listed in the catalog.
func (c *Catalog) IsKnownEvent(t models.EventType) bool {
	_, ok := c.Event(t)
	return ok
}

// Theme returns the named theme.
func (c *Catalog) Theme(name string) (Theme, bool) {
	for _, t := range c.Themes {
		if strings.EqualFold(t.Name, name) {
			return t, true
		}
	}
	return Theme{}, false
}

// EventTheme returns the theme a greeting falls back to when its
// background type is "theme" without a theme name.
func (c *Catalog) EventTheme(t models.EventType) Theme {
	if e, ok := c.Event(t); ok {
		if th, ok := c.Theme(e.Theme); ok {
			return th
		}
	}
	th, _ := c.Theme("default")
	return th
}
