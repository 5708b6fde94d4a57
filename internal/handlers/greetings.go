// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"golang.org/x/crypto/bcrypt"

	"greetcards/internal/catalog"
	"greetcards/internal/models"
	"greetcards/internal/render"
	"greetcards/internal/seo"
	"greetcards/internal/share"
	"greetcards/internal/store"
	"greetcards/internal/token"
	"greetcards/internal/upload"
	"greetcards/internal/validate"
)

// PasscodeHeader carries the passcode of a protected greeting on API reads.
const PasscodeHeader = "X-Greeting-Passcode"

// Public listing page size.
const (
	defaultListLimit = 20
	maxListLimit     = 100
)

// AttemptLimiter bounds passcode attempts per key.
type AttemptLimiter interface {
	Allow(key string) (bool, time.Duration)
}

// Greetings groups the JSON endpoints that create, read and edit greetings.
type Greetings struct {
	store    store.Greetings
	signer   *token.Signer
	renderer *render.Renderer
	uploads  *upload.Service
	catalog  *catalog.Catalog
	baseURL  string
	attempts AttemptLimiter
}

// NewGreetings creates the greeting handler group. baseURL is the public
// origin used for share links.
func NewGreetings(s store.Greetings, signer *token.Signer, renderer *render.Renderer, uploads *upload.Service, cat *catalog.Catalog, baseURL string) *Greetings {
	return &Greetings{
		store:    s,
		signer:   signer,
		renderer: renderer,
		uploads:  uploads,
		catalog:  cat,
		baseURL:  baseURL,
	}
}

// LimitPasscodeAttempts throttles passcode checks per greeting and client.
func (h *Greetings) LimitPasscodeAttempts(l AttemptLimiter) *Greetings {
	h.attempts = l
	return h
}

// createResponse is returned after a greeting is saved.
type createResponse struct {
	Slug      string `json:"slug"`
	URL       string `json:"url"`
	EditToken string `json:"edit_token"`
	ShareText string `json:"share_text"`
}

// Validate checks a greeting without saving it.
func (h *Greetings) Validate(w http.ResponseWriter, r *http.Request) {
	var g models.Greeting
	if !decodeJSON(w, r, &g) {
		return
	}
	if errs := validate.Greeting(&g); len(errs) > 0 {
		writeInvalid(w, errs)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"valid": true})
}

// Create validates and stores a new greeting under a freshly generated
// slug, and returns the edit token that authorizes later updates.
func (h *Greetings) Create(w http.ResponseWriter, r *http.Request) {
	var g models.Greeting
	if !decodeJSON(w, r, &g) {
		return
	}
	if errs := validate.Greeting(&g); len(errs) > 0 {
		writeInvalid(w, errs)
		return
	}

	g.Views = 0
	if err := applyPasscode(&g, ""); err != nil {
		slog.Error("hash passcode failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to save the greeting.")
		return
	}

	ctx := r.Context()
	if err := store.CreateWithSlug(ctx, h.store, &g); err != nil {
		slog.Error("create greeting failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to save the greeting.")
		return
	}

	editToken, err := h.signer.Issue(g.Slug)
	if err != nil {
		slog.Error("issue edit token failed", "error", err, "slug", g.Slug)
		writeError(w, http.StatusInternalServerError, "Failed to save the greeting.")
		return
	}

	slog.Info("greeting created", "slug", g.Slug, "event", g.EventType, "public", g.IsPublic)
	pageURL := seo.CanonicalURL(h.baseURL, g.Slug)
	writeJSON(w, http.StatusCreated, createResponse{
		Slug:      g.Slug,
		URL:       pageURL,
		EditToken: editToken,
		ShareText: share.Text(&g, h.catalog),
	})
}

// List returns public greetings, newest first. Query parameters limit and
// offset page through the results.
func (h *Greetings) List(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", defaultListLimit)
	if limit <= 0 || limit > maxListLimit {
		limit = defaultListLimit
	}
	offset := max(queryInt(r, "offset", 0), 0)

	items, err := h.store.ListPublic(r.Context(), limit, offset)
	if err != nil {
		slog.Error("list public greetings failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to load greetings.")
		return
	}
	if items == nil {
		items = []models.Greeting{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"greetings": items,
		"limit":     limit,
		"offset":    offset,
	})
}

// Get returns one greeting and counts the view. Protected greetings need
// the passcode in the X-Greeting-Passcode header.
func (h *Greetings) Get(w http.ResponseWriter, r *http.Request) {
	g, ok := h.load(w, r)
	if !ok {
		return
	}

	if !h.unlocked(w, r, g) {
		return
	}

	countView(r.Context(), h.store, g)
	w.Header().Set("Cache-Control", "no-store")
	writeJSON(w, http.StatusOK, g)
}

// Update replaces the editable content of a greeting. The request must
// carry the edit token issued at creation as a bearer token. Uploads that
// the new version no longer references are deleted.
func (h *Greetings) Update(w http.ResponseWriter, r *http.Request) {
	slugParam := chi.URLParam(r, "slug")

	raw, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	if !ok {
		writeError(w, http.StatusUnauthorized, "An edit token is required.")
		return
	}
	if err := h.signer.Verify(strings.TrimSpace(raw), slugParam); err != nil {
		if errors.Is(err, token.ErrMismatch) {
			writeError(w, http.StatusForbidden, "This edit token belongs to another greeting.")
			return
		}
		writeError(w, http.StatusUnauthorized, "The edit token is invalid or expired.")
		return
	}

	existing, ok := h.load(w, r)
	if !ok {
		return
	}

	var g models.Greeting
	if !decodeJSON(w, r, &g) {
		return
	}
	if errs := validate.Greeting(&g); len(errs) > 0 {
		writeInvalid(w, errs)
		return
	}

	g.Slug = existing.Slug
	if err := applyPasscode(&g, existing.PasscodeHash); err != nil {
		slog.Error("hash passcode failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to save the greeting.")
		return
	}

	ctx := r.Context()
	if err := h.store.Update(ctx, &g); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Greeting not found.")
			return
		}
		slog.Error("update greeting failed", "error", err, "slug", g.Slug)
		writeError(w, http.StatusInternalServerError, "Failed to save the greeting.")
		return
	}

	h.renderer.Invalidate(ctx, g.Slug)
	h.removeOrphans(ctx, existing, &g)

	slog.Info("greeting updated", "slug", g.Slug)
	writeJSON(w, http.StatusOK, &g)
}

// Share returns the share text, the page URL and one link per network.
// The text names sender and receiver, so protected greetings need the
// passcode.
func (h *Greetings) Share(w http.ResponseWriter, r *http.Request) {
	g, ok := h.load(w, r)
	if !ok || !h.unlocked(w, r, g) {
		return
	}
	writeJSON(w, http.StatusOK, share.Build(g, seo.CanonicalURL(h.baseURL, g.Slug), h.catalog))
}

// QRCode serves a PNG QR code of the greeting's page URL. The size query
// parameter is clamped to the supported range.
func (h *Greetings) QRCode(w http.ResponseWriter, r *http.Request) {
	g, ok := h.load(w, r)
	if !ok || !h.unlocked(w, r, g) {
		return
	}

	png, err := share.QRCode(seo.CanonicalURL(h.baseURL, g.Slug), queryInt(r, "size", 0))
	if err != nil {
		slog.Error("qr code failed", "error", err, "slug", g.Slug)
		writeError(w, http.StatusInternalServerError, "Failed to create the QR code.")
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "public, max-age=86400")
	w.Header().Set("Content-Length", strconv.Itoa(len(png)))
	w.Write(png)
}

// unlocked checks the passcode header of a protected greeting and writes
// the error response when access is denied.
func (h *Greetings) unlocked(w http.ResponseWriter, r *http.Request, g *models.Greeting) bool {
	if !g.HasPasscode() {
		return true
	}
	pass := r.Header.Get(PasscodeHeader)
	if pass == "" {
		writeError(w, http.StatusUnauthorized, "This greeting is protected with a passcode.")
		return false
	}
	if h.attempts != nil {
		if ok, wait := h.attempts.Allow(g.Slug + "|" + remoteHost(r)); !ok {
			secs := int((wait + time.Second - 1) / time.Second)
			w.Header().Set("Retry-After", strconv.Itoa(max(secs, 1)))
			writeError(w, http.StatusTooManyRequests, "Too many passcode attempts, please wait.")
			return false
		}
	}
	if !checkPasscode(g, pass) {
		slog.Info("wrong passcode", "slug", g.Slug, "remote", r.RemoteAddr)
		writeError(w, http.StatusForbidden, "Wrong passcode.")
		return false
	}
	return true
}

// remoteHost is the client address without port.
func remoteHost(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// load fetches the greeting named by the slug URL parameter and writes the
// error response when it cannot.
func (h *Greetings) load(w http.ResponseWriter, r *http.Request) (*models.Greeting, bool) {
	slugParam := chi.URLParam(r, "slug")
	g, err := h.store.FindBySlug(r.Context(), slugParam)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Greeting not found.")
		return nil, false
	}
	if err != nil {
		slog.Error("find greeting failed", "error", err, "slug", slugParam)
		writeError(w, http.StatusInternalServerError, "Failed to load the greeting.")
		return nil, false
	}
	return g, true
}

// removeOrphans deletes uploads referenced by old but not by updated.
// Failures are logged; the update itself already succeeded.
func (h *Greetings) removeOrphans(ctx context.Context, old, updated *models.Greeting) {
	if h.uploads == nil || !h.uploads.Enabled() {
		return
	}
	keep := make(map[string]bool)
	for _, u := range mediaURLs(updated) {
		keep[u] = true
	}
	for _, u := range mediaURLs(old) {
		if keep[u] || !h.uploads.Owns(u) {
			continue
		}
		if _, err := h.uploads.Remove(ctx, u); err != nil {
			slog.Warn("remove orphaned upload failed", "error", err, "url", u, "slug", updated.Slug)
			continue
		}
		slog.Info("orphaned upload removed", "url", u, "slug", updated.Slug)
	}
}

// mediaURLs lists every URL of g that may point at an upload.
func mediaURLs(g *models.Greeting) []string {
	var urls []string
	for _, m := range g.Media {
		urls = append(urls, m.URL)
	}
	if g.Audio != nil && g.Audio.URL != "" {
		urls = append(urls, g.Audio.URL)
	}
	if g.Background.Type == "image" && g.Background.Value != "" {
		urls = append(urls, g.Background.Value)
	}
	return urls
}

// applyPasscode hashes a newly submitted passcode. A protected greeting is
// never listed publicly. Without a new passcode, a private greeting keeps
// currentHash and a public one drops it.
func applyPasscode(g *models.Greeting, currentHash string) error {
	pass := g.Passcode
	g.Passcode = ""

	switch {
	case pass != "":
		hash, err := bcrypt.GenerateFromPassword([]byte(pass), bcrypt.DefaultCost)
		if err != nil {
			return err
		}
		g.PasscodeHash = string(hash)
		g.IsPublic = false
	case g.IsPublic:
		g.PasscodeHash = ""
	default:
		g.PasscodeHash = currentHash
	}
	return nil
}

// checkPasscode compares a submitted passcode with the stored hash.
func checkPasscode(g *models.Greeting, pass string) bool {
	return bcrypt.CompareHashAndPassword([]byte(g.PasscodeHash), []byte(pass)) == nil
}

// countView increments the view counter of g and stores the new total on
// it. A failing counter never blocks the read.
func countView(ctx context.Context, s store.Greetings, g *models.Greeting) {
	views, err := s.IncrementViews(ctx, g.Slug)
	if err != nil {
		slog.Warn("increment views failed", "error", err, "slug", g.Slug)
		return
	}
	g.Views = models.Views(views)
}

// queryInt parses an integer query parameter, returning fallback when it
// is absent or malformed.
func queryInt(r *http.Request, key string, fallback int) int {
	v := r.URL.Query().Get(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
