// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// handler_test.go provides shared test infrastructure for handler tests.
// Handlers run against the in-memory greeting store and an in-memory object
// store; the PostgreSQL round trip is skipped when the database is down.
package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"greetcards/internal/autosave"
	"greetcards/internal/catalog"
	"greetcards/internal/models"
	"greetcards/internal/probe"
	"greetcards/internal/render"
	"greetcards/internal/store"
	"greetcards/internal/store/memory"
	"greetcards/internal/token"
	"greetcards/internal/upload"
)

const testBaseURL = "https://cards.example.com"

// memObjects is an in-memory storage.ObjectStore.
type memObjects struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func newMemObjects() *memObjects {
	return &memObjects{objects: map[string][]byte{}}
}

func (m *memObjects) Name() string { return "mem" }

func (m *memObjects) Upload(_ context.Context, key, _ string, body io.Reader, _ int64) error {
	b, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = b
	return nil
}

func (m *memObjects) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, key)
	return nil
}

func (m *memObjects) FileURL(key string) string { return "https://cdn.test/" + key }

func (m *memObjects) ExtractKey(rawURL string) (string, bool) {
	key, ok := strings.CutPrefix(rawURL, "https://cdn.test/")
	return key, ok && key != ""
}

func (m *memObjects) has(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.objects[key]
	return ok
}

func (m *memObjects) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.objects)
}

// testEnv wires every handler group onto a chi router, the same way the
// server does, without rate limiting.
type testEnv struct {
	store   store.Greetings
	objects *memObjects
	signer  *token.Signer
	saver   *autosave.Saver
	// greetings is exposed so tests can attach a passcode limiter.
	greetings *Greetings
	handler   http.Handler
}

func newTestEnv(t *testing.T) *testEnv {
	return newTestEnvWithStore(t, memory.NewStore())
}

func newTestEnvWithStore(t *testing.T, s store.Greetings) *testEnv {
	t.Helper()

	cat := catalog.MustLoad()
	renderer, err := render.New(cat, nil, "cards.example.com")
	if err != nil {
		t.Fatalf("render.New: %v", err)
	}
	signer, err := token.NewSigner("test-secret", 0)
	if err != nil {
		t.Fatalf("NewSigner: %v", err)
	}

	objects := newMemObjects()
	uploads := upload.NewService(objects, nil, upload.DefaultPolicy())

	saver := autosave.NewSaver(autosave.NewMemoryBackend(), time.Hour, 24*time.Hour)
	t.Cleanup(func() { saver.Flush(context.Background()) })

	greetings := NewGreetings(s, signer, renderer, uploads, cat, testBaseURL)
	media := NewMedia(uploads, probe.New(nil), nil, "cards.example.com")
	drafts := NewDrafts(saver, false)
	pages := NewPages(s, renderer, cat, testBaseURL)

	r := chi.NewRouter()
	r.Get("/api/catalog", Catalog(cat))
	r.Post("/api/validate", greetings.Validate)
	r.Post("/api/media/resolve", media.Resolve)
	r.Post("/api/media/check", media.Check)
	r.Post("/api/media", media.Upload)
	r.Get("/api/media/{id}", media.Get)
	r.Get("/api/greetings", greetings.List)
	r.Post("/api/greetings", greetings.Create)
	r.Get("/api/greetings/{slug}", greetings.Get)
	r.Put("/api/greetings/{slug}", greetings.Update)
	r.Get("/api/greetings/{slug}/share", greetings.Share)
	r.Get("/api/greetings/{slug}/qr.png", greetings.QRCode)
	r.Get("/api/drafts", drafts.Get)
	r.Put("/api/drafts", drafts.Put)
	r.Delete("/api/drafts", drafts.Delete)
	r.Get("/{slug}", pages.View)
	r.Post("/{slug}", pages.Unlock)
	r.NotFound(pages.NotFound)

	return &testEnv{store: s, objects: objects, signer: signer, saver: saver, greetings: greetings, handler: r}
}

// do sends a request with an optional JSON body and returns the recorder.
func (e *testEnv) do(t *testing.T, method, path string, body any, header http.Header) *httptest.ResponseRecorder {
	t.Helper()
	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		rdr = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, rdr)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	rr := httptest.NewRecorder()
	e.handler.ServeHTTP(rr, req)
	return rr
}

// create stores g through the API and returns the create response.
func (e *testEnv) create(t *testing.T, g *models.Greeting) createResponse {
	t.Helper()
	rr := e.do(t, http.MethodPost, "/api/greetings", g, nil)
	if rr.Code != http.StatusCreated {
		t.Fatalf("create: status %d, body %s", rr.Code, rr.Body.String())
	}
	var resp createResponse
	decode(t, rr, &resp)
	return resp
}

func decode(t *testing.T, rr *httptest.ResponseRecorder, dst any) {
	t.Helper()
	if err := json.Unmarshal(rr.Body.Bytes(), dst); err != nil {
		t.Fatalf("decode %q: %v", rr.Body.String(), err)
	}
}

func bearer(tok string) http.Header {
	return http.Header{"Authorization": {"Bearer " + tok}}
}

// validGreeting returns a greeting that passes validation.
func validGreeting() *models.Greeting {
	g := models.NewGreeting()
	g.SenderName = "Alex"
	g.ReceiverName = "Maria"
	g.Texts = []models.TextContent{
		{ID: "t1", Content: "Have a **wonderful** day!", Style: models.TextStyle{Color: "#333"}},
	}
	g.Media = []models.MediaItem{
		{ID: "m1", URL: "https://example.com/cake.jpg", Type: models.MediaTypeImage,
			Position: models.Position{Width: 300, Height: 200}},
	}
	return g
}
