// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package mediatype

import "strings"

// Resolution tells a renderer how to show one gallery URL.
type Resolution struct {
	Kind     Kind   `json:"kind"`
	URL      string `json:"url"`
	ID       string `json:"id,omitempty"`
	EmbedURL string `json:"embed_url,omitempty"`
	// Invalid is set when the URL belongs to an embeddable platform but
	// the video ID could not be extracted.
	Invalid bool `json:"invalid,omitempty"`
	// Retryable is true for HTTP(S) files whose load may be retried.
	Retryable bool `json:"retryable"`
}

// Resolve classifies rawURL and, for platform URLs, derives the embed URL.
// It never fails: extraction errors surface as Invalid.
func Resolve(rawURL string, opts Options) Resolution {
	s := strings.TrimSpace(rawURL)
	r := Resolution{Kind: Detect(s), URL: s}

	if r.Kind.IsEmbed() {
		embed, err := EmbedURL(s, opts)
		if err != nil {
			r.Invalid = true
			return r
		}
		r.ID = embed.ID
		r.EmbedURL = embed.URL
		return r
	}

	r.Retryable = (r.Kind == KindImage || r.Kind == KindVideo) && IsRemote(s)
	return r
}
