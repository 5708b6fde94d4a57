// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Views is a greeting's view counter. Older documents stored it as a
// number, a numeric string or a {"count": n} object; all of them decode
// to the same value.
type Views int64

// UnmarshalJSON accepts every historical shape of the counter and never
// fails on an unrecognised one, which decodes as zero.
func (v *Views) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var raw any
	if err := dec.Decode(&raw); err != nil {
		*v = 0
		return nil
	}
	*v = Views(NormalizeViews(raw))
	return nil
}

// NormalizeViews converts a stored view counter into a non-negative count.
// It is total (unknown shapes yield 0) and idempotent: feeding its result
// back in returns the same number. Integers keep their full precision.
func NormalizeViews(raw any) int64 {
	switch val := raw.(type) {
	case nil:
		return 0
	case int64:
		return clampInt(val)
	case int:
		return clampInt(int64(val))
	case int32:
		return clampInt(int64(val))
	case Views:
		return clampInt(int64(val))
	case uint64:
		if val > math.MaxInt64 {
			return math.MaxInt64
		}
		return int64(val)
	case float64:
		return clampViews(val)
	case float32:
		return clampViews(float64(val))
	case json.Number:
		return parseViews(string(val))
	case string:
		return parseViews(strings.TrimSpace(val))
	case map[string]any:
		return NormalizeViews(val["count"])
	default:
		return 0
	}
}

func parseViews(s string) int64 {
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return clampInt(n)
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return clampViews(f)
}

func clampInt(n int64) int64 {
	if n < 0 {
		return 0
	}
	return n
}

func clampViews(f float64) int64 {
	if math.IsNaN(f) || f <= 0 {
		return 0
	}
	if f >= math.MaxInt64 {
		return math.MaxInt64
	}
	return int64(math.Floor(f))
}
