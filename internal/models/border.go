// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"math"
	"time"
)

// DefaultRevolveSpeed is how far a revolving border element travels along
// the perimeter per second, in percent.
const DefaultRevolveSpeed = 5.0

// BorderSettings describes the decorative border around the card.
type BorderSettings struct {
	Enabled   bool            `json:"enabled"`
	Style     string          `json:"style"`
	Color     string          `json:"color,omitempty"`
	Width     int             `json:"width,omitempty"`
	Radius    int             `json:"radius,omitempty"`
	Elements  []BorderElement `json:"elements"`
	Animation string          `json:"animation,omitempty"`
}

// BorderElement is an emoji placed along the card perimeter. Position is a
// percentage of the perimeter (0–100) measured clockwise from the top-left
// corner.
type BorderElement struct {
	ID           string  `json:"id"`
	Emoji        string  `json:"emoji"`
	Position     float64 `json:"position"`
	Size         int     `json:"size,omitempty"`
	Revolve      bool    `json:"revolve,omitempty"`
	RevolveSpeed float64 `json:"revolve_speed,omitempty"`
}

// PositionAt returns the element's perimeter position after elapsed wall
// clock time. Static elements always report their stored position; the
// revolve offset is never persisted.
func (e BorderElement) PositionAt(elapsed time.Duration) float64 {
	if !e.Revolve {
		return e.Position
	}
	speed := e.RevolveSpeed
	if speed == 0 {
		speed = DefaultRevolveSpeed
	}
	p := math.Mod(e.Position+elapsed.Seconds()*speed, 100)
	if p < 0 {
		p += 100
	}
	return p
}

// PerimeterPoint maps a perimeter percentage onto x/y percentages of the
// card box: 0–25 is the top edge, 25–50 the right edge, 50–75 the bottom
// edge (right to left) and 75–100 the left edge (bottom to top).
func PerimeterPoint(position float64) (x, y float64) {
	p := math.Mod(position, 100)
	if p < 0 {
		p += 100
	}
	switch {
	case p < 25:
		return p * 4, 0
	case p < 50:
		return 100, (p - 25) * 4
	case p < 75:
		return 100 - (p-50)*4, 100
	default:
		return 0, 100 - (p-75)*4
	}
}
