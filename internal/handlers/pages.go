// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"bytes"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"greetcards/internal/catalog"
	"greetcards/internal/models"
	"greetcards/internal/render"
	"greetcards/internal/seo"
	"greetcards/internal/share"
	"greetcards/internal/store"
)

// maxPasscodeForm bounds the passcode form body.
const maxPasscodeForm = 4 << 10

// Pages serves the public greeting pages. Rendered pages of public
// greetings come from the L2 page cache when available.
type Pages struct {
	store    store.Greetings
	renderer *render.Renderer
	catalog  *catalog.Catalog
	baseURL  string
}

// NewPages creates the page handler group.
func NewPages(s store.Greetings, renderer *render.Renderer, cat *catalog.Catalog, baseURL string) *Pages {
	return &Pages{store: s, renderer: renderer, catalog: cat, baseURL: baseURL}
}

// View renders a greeting page, or the passcode prompt for protected ones.
func (h *Pages) View(w http.ResponseWriter, r *http.Request) {
	g, ok := h.load(w, r)
	if !ok {
		return
	}

	if g.HasPasscode() {
		h.locked(w, g, false)
		return
	}
	h.greeting(w, r, g)
}

// Unlock checks the passcode posted from the prompt and renders the
// greeting when it matches.
func (h *Pages) Unlock(w http.ResponseWriter, r *http.Request) {
	g, ok := h.load(w, r)
	if !ok {
		return
	}
	if !g.HasPasscode() {
		http.Redirect(w, r, "/"+g.Slug, http.StatusSeeOther)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxPasscodeForm)
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	if !checkPasscode(g, r.PostFormValue("passcode")) {
		slog.Info("wrong passcode", "slug", g.Slug, "remote", r.RemoteAddr)
		h.locked(w, g, true)
		return
	}

	w.Header().Set("Cache-Control", "no-store")
	h.greeting(w, r, g)
}

// greeting counts the view and writes the rendered page.
func (h *Pages) greeting(w http.ResponseWriter, r *http.Request, g *models.Greeting) {
	ctx := r.Context()
	countView(ctx, h.store, g)

	meta := seo.Build(g, h.baseURL, h.catalog)
	page, err := h.renderer.Greeting(ctx, g, meta, share.Build(g, meta.CanonicalURL, h.catalog))
	if err != nil {
		slog.Error("render greeting failed", "error", err, "slug", g.Slug)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	writeHTML(w, http.StatusOK, page)
}

// locked writes the passcode prompt. A wrong attempt answers 401.
func (h *Pages) locked(w http.ResponseWriter, g *models.Greeting, wrong bool) {
	var buf bytes.Buffer
	if err := h.renderer.Locked(&buf, seo.Build(g, h.baseURL, h.catalog), g.Slug, wrong); err != nil {
		slog.Error("render passcode prompt failed", "error", err, "slug", g.Slug)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	status := http.StatusOK
	if wrong {
		status = http.StatusUnauthorized
	}
	w.Header().Set("Cache-Control", "no-store")
	writeHTML(w, status, buf.Bytes())
}

// load fetches the greeting and writes the not-found page when the slug is
// unknown.
func (h *Pages) load(w http.ResponseWriter, r *http.Request) (*models.Greeting, bool) {
	slugParam := chi.URLParam(r, "slug")
	g, err := h.store.FindBySlug(r.Context(), slugParam)
	if errors.Is(err, store.ErrNotFound) {
		h.NotFound(w, r)
		return nil, false
	}
	if err != nil {
		slog.Error("find greeting failed", "error", err, "slug", slugParam)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return nil, false
	}
	return g, true
}

// NotFound renders the friendly not-found page.
func (h *Pages) NotFound(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := h.renderer.NotFound(&buf); err != nil {
		slog.Error("render not found page failed", "error", err)
		http.NotFound(w, r)
		return
	}
	writeHTML(w, http.StatusNotFound, buf.Bytes())
}
