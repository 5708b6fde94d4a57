// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"encoding/json"
	"math"
	"testing"
	"time"
)

func TestNormalizeViews(t *testing.T) {
	tests := []struct {
		name string
		raw  any
		want int64
	}{
		{"nil", nil, 0},
		{"int", 42, 42},
		{"int64", int64(7), 7},
		{"float", 12.9, 12},
		{"negative", -5, 0},
		{"numeric string", "128", 128},
		{"padded numeric string", "  9 ", 9},
		{"non numeric string", "lots", 0},
		{"count object", map[string]any{"count": float64(31)}, 31},
		{"count object with string", map[string]any{"count": "17"}, 17},
		{"empty object", map[string]any{}, 0},
		{"json number", json.Number("55"), 55},
		{"bool", true, 0},
		{"slice", []any{1, 2}, 0},
		{"NaN", math.NaN(), 0},
		{"huge", math.Inf(1), math.MaxInt64},
		{"int64 above 2^53", int64(1<<53 + 1), 1<<53 + 1},
		{"max int64", int64(math.MaxInt64), math.MaxInt64},
		{"negative int64", int64(-1 << 60), 0},
		{"views above 2^53", Views(1<<53 + 3), 1<<53 + 3},
		{"uint64 overflow", uint64(math.MaxUint64), math.MaxInt64},
		{"json number above 2^53", json.Number("9007199254740993"), 9007199254740993},
		{"string above 2^53", "9007199254740993", 9007199254740993},
		{"json number fraction", json.Number("4.8"), 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeViews(tt.raw)
			if got != tt.want {
				t.Errorf("NormalizeViews(%v) = %d, want %d", tt.raw, got, tt.want)
			}
			if again := NormalizeViews(got); again != got {
				t.Errorf("not idempotent: NormalizeViews(%d) = %d", got, again)
			}
		})
	}
}

func TestViewsUnmarshalJSON(t *testing.T) {
	tests := []struct {
		input string
		want  Views
	}{
		{`{"views": 3}`, 3},
		{`{"views": "14"}`, 14},
		{`{"views": {"count": 8}}`, 8},
		{`{"views": null}`, 0},
		{`{"views": "abc"}`, 0},
		{`{"views": 9007199254740993}`, 9007199254740993},
		{`{"views": -4}`, 0},
		{`{"views": 2.5}`, 2},
		{`{}`, 0},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			var g Greeting
			if err := json.Unmarshal([]byte(tt.input), &g); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			if g.Views != tt.want {
				t.Errorf("Views = %d, want %d", g.Views, tt.want)
			}
		})
	}
}

func TestBorderElementPositionAt(t *testing.T) {
	static := BorderElement{Position: 40}
	if got := static.PositionAt(time.Hour); got != 40 {
		t.Errorf("static element moved: got %v, want 40", got)
	}

	revolving := BorderElement{Position: 90, Revolve: true, RevolveSpeed: 10}
	if got := revolving.PositionAt(2 * time.Second); got != 10 {
		t.Errorf("revolving element: got %v, want 10 (wraps past 100)", got)
	}

	defaultSpeed := BorderElement{Position: 0, Revolve: true}
	if got := defaultSpeed.PositionAt(4 * time.Second); got != 20 {
		t.Errorf("default speed: got %v, want 20", got)
	}
}

func TestPerimeterPoint(t *testing.T) {
	tests := []struct {
		position float64
		x, y     float64
	}{
		{0, 0, 0},
		{12.5, 50, 0},
		{25, 100, 0},
		{37.5, 100, 50},
		{50, 100, 100},
		{62.5, 50, 100},
		{75, 0, 100},
		{87.5, 0, 50},
		{100, 0, 0},
		{-25, 0, 100},
	}

	for _, tt := range tests {
		x, y := PerimeterPoint(tt.position)
		if x != tt.x || y != tt.y {
			t.Errorf("PerimeterPoint(%v) = (%v, %v), want (%v, %v)", tt.position, x, y, tt.x, tt.y)
		}
	}
}

func TestDisplayEventName(t *testing.T) {
	g := NewGreeting()
	if got := g.DisplayEventName(); got != "Happy Birthday" {
		t.Errorf("default event name = %q", got)
	}

	g.EventType = EventCustom
	g.EventName = "Happy Retirement"
	if got := g.DisplayEventName(); got != "Happy Retirement" {
		t.Errorf("custom event name = %q", got)
	}
}

func TestEventTypeIsKnown(t *testing.T) {
	if !EventDiwali.IsKnown() {
		t.Error("diwali should be known")
	}
	if EventType("halloween-party").IsKnown() {
		t.Error("unlisted event should not be known")
	}
}
