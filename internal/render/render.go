// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package render produces the public HTML pages of greetings: the card
// itself, the passcode prompt for private cards and the not-found page.
// Templates are embedded and parsed once; rendered cards are optionally
// cached in Valkey.
package render

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"strings"
	"time"

	"greetcards/internal/catalog"
	"greetcards/internal/models"
	"greetcards/internal/seo"
	"greetcards/internal/share"
)

//go:embed templates/*.html
var templatesFS embed.FS

// PageCache is the L2 cache of rendered greeting pages.
type PageCache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, html []byte)
	InvalidatePage(ctx context.Context, key string)
}

// Renderer executes the page templates.
type Renderer struct {
	templates map[string]*template.Template
	funcMap   template.FuncMap
	catalog   *catalog.Catalog
	pages     PageCache
	// embedParent is the host name passed to players that require one
	// (Twitch).
	embedParent string
	now         func() time.Time
}

// New parses every page template paired with the base layout. pages may
// be nil to disable the L2 cache.
func New(cat *catalog.Catalog, pages PageCache, embedParent string) (*Renderer, error) {
	r := &Renderer{
		templates:   make(map[string]*template.Template),
		catalog:     cat,
		pages:       pages,
		embedParent: embedParent,
		now:         time.Now,
	}
	r.funcMap = template.FuncMap{
		"join": strings.Join,
		"year": func() int { return r.now().Year() },
	}

	entries, err := fs.ReadDir(templatesFS, "templates")
	if err != nil {
		return nil, fmt.Errorf("read embedded templates: %w", err)
	}
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || name == "base.html" {
			continue
		}
		tmpl, err := template.New("base.html").Funcs(r.funcMap).ParseFS(
			templatesFS, "templates/base.html", "templates/"+name,
		)
		if err != nil {
			return nil, fmt.Errorf("parse template %s: %w", name, err)
		}
		r.templates[strings.TrimSuffix(name, ".html")] = tmpl
	}
	return r, nil
}

// cacheable reports whether a greeting page may be stored in the L2 cache.
// Private and passcode-protected cards are always rendered fresh.
func cacheable(g *models.Greeting) bool {
	return g.IsPublic && !g.HasPasscode()
}

// CacheKey identifies the cached page of a greeting.
func CacheKey(slug string) string {
	return "greeting:" + slug
}

// Greeting renders the card page of g.
func (r *Renderer) Greeting(ctx context.Context, g *models.Greeting, meta seo.Meta, sh share.Share) ([]byte, error) {
	useCache := r.pages != nil && cacheable(g)
	if useCache {
		if html, ok := r.pages.Get(ctx, CacheKey(g.Slug)); ok {
			return html, nil
		}
	}

	var buf bytes.Buffer
	if err := r.execute(&buf, "greeting", r.greetingView(g, meta, sh)); err != nil {
		return nil, err
	}

	if useCache {
		r.pages.Set(ctx, CacheKey(g.Slug), buf.Bytes())
	}
	return buf.Bytes(), nil
}

// Invalidate drops the cached page of slug.
func (r *Renderer) Invalidate(ctx context.Context, slug string) {
	if r.pages != nil {
		r.pages.InvalidatePage(ctx, CacheKey(slug))
	}
}

// LockedData is passed to the passcode prompt.
type LockedData struct {
	Meta  seo.Meta
	Slug  string
	Wrong bool
}

// Locked renders the passcode prompt of a protected greeting. Wrong marks
// a failed attempt.
func (r *Renderer) Locked(w io.Writer, meta seo.Meta, slug string, wrong bool) error {
	meta.NoIndex = true
	meta.OGImage = ""
	meta.Description = "This greeting is protected with a passcode."
	return r.execute(w, "locked", LockedData{Meta: meta, Slug: slug, Wrong: wrong})
}

// NotFound renders the page shown for unknown slugs.
func (r *Renderer) NotFound(w io.Writer) error {
	return r.execute(w, "notfound", LockedData{Meta: seo.Meta{
		Title:   "Greeting not found",
		NoIndex: true,
	}})
}

func (r *Renderer) execute(w io.Writer, name string, data any) error {
	tmpl, ok := r.templates[name]
	if !ok {
		return fmt.Errorf("template %q not found", name)
	}
	if err := tmpl.ExecuteTemplate(w, "base.html", data); err != nil {
		return fmt.Errorf("render %s: %w", name, err)
	}
	return nil
}
