// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package autosave

import (
	"crypto/rand"
	"encoding/hex"
	"net/http"
	"time"
)

const (
	// CookieName carries the draft id of the browser's editor session.
	CookieName = "gc_draft"

	// idLength is the byte length of a random draft id (16 bytes = 32 hex chars).
	idLength = 16
)

// DraftID returns the draft id from the request cookie, or "" when the
// browser has none.
func DraftID(r *http.Request) string {
	c, err := r.Cookie(CookieName)
	if err != nil || !validID(c.Value) {
		return ""
	}
	return c.Value
}

// SetCookie issues the draft cookie.
func SetCookie(w http.ResponseWriter, id string, ttl time.Duration, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(ttl.Seconds()),
	})
}

// ClearCookie expires the draft cookie.
func ClearCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		MaxAge:   -1,
	})
}

// NewID creates a cryptographically random draft id.
func NewID() (string, error) {
	b := make([]byte, idLength)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

func validID(s string) bool {
	if len(s) != idLength*2 {
		return false
	}
	_, err := hex.DecodeString(s)
	return err == nil
}
