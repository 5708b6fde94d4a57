// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package mediatype classifies gallery URLs and derives privacy-respecting
// embed URLs for the supported video platforms. Everything here is a pure
// string-in, value-out function.
package mediatype

import (
	"net/url"
	"path"
	"regexp"
	"strings"
)

// Kind is the render tag for a media URL.
type Kind string

const (
	KindImage       Kind = "image"
	KindVideo       Kind = "video"
	KindYouTube     Kind = "youtube"
	KindVimeo       Kind = "vimeo"
	KindDailymotion Kind = "dailymotion"
	KindTwitch      Kind = "twitch"
	KindFacebook    Kind = "facebook"
	KindUnsupported Kind = "unsupported"
)

// IsEmbed reports whether k is one of the iframe-embedded platforms.
func (k Kind) IsEmbed() bool {
	switch k {
	case KindYouTube, KindVimeo, KindDailymotion, KindTwitch, KindFacebook:
		return true
	}
	return false
}

// platform pairs a kind with the hostname/path pattern that recognises it.
// Order matters: the first match wins.
type platform struct {
	kind    Kind
	pattern *regexp.Regexp
}

var platforms = []platform{
	{KindYouTube, regexp.MustCompile(`(?i)^(?:https?://)?(?:[a-z0-9-]+\.)*(?:youtube\.com|youtube-nocookie\.com|youtu\.be)(?:[/:?#]|$)`)},
	{KindVimeo, regexp.MustCompile(`(?i)^(?:https?://)?(?:[a-z0-9-]+\.)*vimeo\.com(?:[/:?#]|$)`)},
	{KindDailymotion, regexp.MustCompile(`(?i)^(?:https?://)?(?:[a-z0-9-]+\.)*(?:dailymotion\.com|dai\.ly)(?:[/:?#]|$)`)},
	{KindTwitch, regexp.MustCompile(`(?i)^(?:https?://)?(?:[a-z0-9-]+\.)*twitch\.tv(?:[/:?#]|$)`)},
	{KindFacebook, regexp.MustCompile(`(?i)^(?:https?://)?(?:[a-z0-9-]+\.)*(?:facebook\.com|fb\.watch)(?:[/:?#]|$)`)},
}

var imageExtensions = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true, ".gif": true, ".webp": true,
	".svg": true, ".bmp": true, ".avif": true, ".ico": true,
}

var videoExtensions = map[string]bool{
	".mp4": true, ".webm": true, ".ogg": true, ".ogv": true, ".mov": true,
	".m4v": true, ".m3u8": true,
}

// Detect classifies a raw URL. The checks run in a fixed order: data and
// blob URIs are images; then the platform patterns; then the file
// extension; finally any URL mentioning "video" or "cdn" is assumed to be a
// video. Anything else is unsupported, never an image.
func Detect(rawURL string) Kind {
	s := strings.TrimSpace(rawURL)
	if s == "" {
		return KindUnsupported
	}

	lower := strings.ToLower(s)
	if strings.HasPrefix(lower, "data:") || strings.HasPrefix(lower, "blob:") {
		return KindImage
	}

	for _, p := range platforms {
		if p.pattern.MatchString(s) {
			return p.kind
		}
	}

	switch ext := extension(s); {
	case imageExtensions[ext]:
		return KindImage
	case videoExtensions[ext]:
		return KindVideo
	}

	if strings.Contains(lower, "video") || strings.Contains(lower, "cdn") {
		return KindVideo
	}
	return KindUnsupported
}

// extension returns the lower-cased file extension of the URL path,
// ignoring any query string or fragment.
func extension(s string) string {
	p := s
	if u, err := url.Parse(s); err == nil && u.Path != "" {
		p = u.Path
	} else {
		if i := strings.IndexAny(p, "?#"); i >= 0 {
			p = p[:i]
		}
	}
	return strings.ToLower(path.Ext(p))
}

// IsRemote reports whether the URL is fetched over HTTP(S), as opposed to
// an inline data: or blob: URI.
func IsRemote(rawURL string) bool {
	lower := strings.ToLower(strings.TrimSpace(rawURL))
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}
