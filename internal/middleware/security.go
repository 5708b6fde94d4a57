// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package middleware

import (
	"net/http"
	"strings"
)

// embedOrigins are the players a greeting page may frame.
var embedOrigins = []string{
	"https://www.youtube.com",
	"https://www.youtube-nocookie.com",
	"https://player.vimeo.com",
	"https://www.dailymotion.com",
	"https://geo.dailymotion.com",
	"https://player.twitch.tv",
	"https://clips.twitch.tv",
	"https://www.facebook.com",
}

// contentSecurityPolicy restricts framing to the supported video players
// and forbids plugins. Media may come from any https origin or data: URLs.
var contentSecurityPolicy = strings.Join([]string{
	"default-src 'self'",
	"img-src 'self' https: http: data:",
	"media-src 'self' https: http: data:",
	"style-src 'self' 'unsafe-inline' https://fonts.googleapis.com",
	"font-src 'self' https://fonts.gstatic.com",
	"script-src 'self' 'unsafe-inline'",
	"frame-src " + strings.Join(embedOrigins, " "),
	"object-src 'none'",
	"base-uri 'self'",
}, "; ")

// SecureHeaders adds security-related HTTP headers to every response.
func SecureHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()

		// Prevent the browser from MIME-sniffing the Content-Type.
		h.Set("X-Content-Type-Options", "nosniff")

		// Prevent embedding in iframes from other origins (clickjacking).
		h.Set("X-Frame-Options", "SAMEORIGIN")

		// Disable the legacy XSS filter; CSP is used instead.
		h.Set("X-XSS-Protection", "0")

		h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		h.Set("Permissions-Policy", "interest-cohort=(), camera=(), microphone=(), geolocation=()")
		h.Set("Content-Security-Policy", contentSecurityPolicy)

		next.ServeHTTP(w, r)
	})
}
