// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package slug builds the public URL slugs of greetings from the occasion
// and the receiver's name.
package slug

import (
	"crypto/rand"
	"math/big"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	// nonAlphanumeric matches anything that isn't a letter, digit, or space.
	nonAlphanumeric = regexp.MustCompile(`[^a-z0-9\s-]`)
	// multipleHyphens collapses consecutive hyphens into one.
	multipleHyphens = regexp.MustCompile(`-{2,}`)
)

// foldMarks strips combining marks after decomposition: "Zoë" → "Zoe".
func foldMarks(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

// Generate creates a URL-friendly slug from the given string.
// Example: "Joyeux Noël, Zoë!" → "joyeux-noel-zoe"
func Generate(s string) string {
	result := strings.ToLower(strings.TrimSpace(foldMarks(s)))
	result = nonAlphanumeric.ReplaceAllString(result, "")
	result = strings.Join(strings.Fields(result), "-")
	result = multipleHyphens.ReplaceAllString(result, "-")
	result = strings.Trim(result, "-")
	return result
}

const (
	// suffixLen is the length of the random suffix appended by New.
	suffixLen = 6

	// maxPrefixLen caps the readable part of a greeting slug.
	maxPrefixLen = 40

	alphabet = "0123456789abcdefghijklmnopqrstuvwxyz"
)

// New builds a greeting slug from the occasion and the receiver's name,
// followed by a random base36 suffix.
// Example: ("Happy Birthday", "Maria") → "happy-birthday-maria-x7k2p9"
func New(event, receiver string) string {
	prefix := Generate(event + " " + receiver)
	if len(prefix) > maxPrefixLen {
		prefix = strings.TrimRight(prefix[:maxPrefixLen], "-")
	}
	suffix := randomSuffix(suffixLen)
	if prefix == "" {
		return "greeting-" + suffix
	}
	return prefix + "-" + suffix
}

// randomSuffix returns n crypto-random base36 characters.
func randomSuffix(n int) string {
	b := make([]byte, n)
	base := big.NewInt(int64(len(alphabet)))
	for i := range b {
		v, err := rand.Int(rand.Reader, base)
		if err != nil {
			panic("slug: crypto/rand failed: " + err.Error())
		}
		b[i] = alphabet[v.Int64()]
	}
	return string(b)
}
