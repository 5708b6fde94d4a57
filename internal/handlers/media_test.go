package handlers

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"greetcards/internal/mediatype"
	"greetcards/internal/models"
	"greetcards/internal/probe"
	"greetcards/internal/retry"
	"greetcards/internal/upload"
)

func TestResolveEndpoint(t *testing.T) {
	env := newTestEnv(t)

	rr := env.do(t, http.MethodPost, "/api/media/resolve",
		map[string]any{"url": "https://youtu.be/dQw4w9WgXcQ", "muted": true}, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("status %d", rr.Code)
	}
	var res mediatype.Resolution
	decode(t, rr, &res)
	if res.Kind != mediatype.KindYouTube || res.ID != "dQw4w9WgXcQ" {
		t.Errorf("resolution = %+v", res)
	}
	if !strings.Contains(res.EmbedURL, "youtube-nocookie.com/embed/dQw4w9WgXcQ") {
		t.Errorf("embed url = %q", res.EmbedURL)
	}

	rr = env.do(t, http.MethodPost, "/api/media/resolve", map[string]any{"url": "https://www.youtube.com/watch?v="}, nil)
	decode(t, rr, &res)
	if !res.Invalid {
		t.Errorf("missing video id should be invalid: %+v", res)
	}

	if rr := env.do(t, http.MethodPost, "/api/media/resolve", map[string]any{"url": "  "}, nil); rr.Code != http.StatusBadRequest {
		t.Errorf("blank url: status %d, want 400", rr.Code)
	}
}

func TestCheckEndpoint(t *testing.T) {
	env := newTestEnv(t)

	items := []models.MediaItem{
		{ID: "yt", URL: "https://www.youtube.com/watch?v=dQw4w9WgXcQ"},
		{ID: "page", URL: "https://example.com/page"},
		{ID: "inline", URL: "data:image/png;base64,iVBORw0KGgo="},
	}
	rr := env.do(t, http.MethodPost, "/api/media/check", map[string]any{"media": items}, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("status %d", rr.Code)
	}
	var body struct {
		Results []probe.Result `json:"results"`
	}
	decode(t, rr, &body)
	if len(body.Results) != 3 {
		t.Fatalf("results = %d, want 3", len(body.Results))
	}
	want := []retry.Status{retry.StatusLoaded, retry.StatusErrored, retry.StatusLoaded}
	for i, r := range body.Results {
		if r.ID != items[i].ID || r.State.Status != want[i] {
			t.Errorf("result %d = %s/%s, want %s/%s", i, r.ID, r.State.Status, items[i].ID, want[i])
		}
	}

	tooMany := make([]models.MediaItem, 21)
	if rr := env.do(t, http.MethodPost, "/api/media/check", map[string]any{"media": tooMany}, nil); rr.Code != http.StatusBadRequest {
		t.Errorf("too many items: status %d, want 400", rr.Code)
	}
}

func TestCheckEndpointDoesNotFetchInternalURLs(t *testing.T) {
	env := newTestEnv(t)

	var hits atomic.Int32
	internal := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
	}))
	t.Cleanup(internal.Close)

	items := []models.MediaItem{{ID: "a", URL: internal.URL + "/admin/secret.png"}}
	rr := env.do(t, http.MethodPost, "/api/media/check", map[string]any{"media": items}, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("status %d", rr.Code)
	}
	var body struct {
		Results []probe.Result `json:"results"`
	}
	decode(t, rr, &body)
	if len(body.Results) != 1 {
		t.Fatalf("results = %d", len(body.Results))
	}
	got := body.Results[0]
	if got.State.Status != retry.StatusErrored || got.HTTPStatus != 0 {
		t.Errorf("result = %+v, want errored without an http status", got)
	}
	if n := hits.Load(); n != 0 {
		t.Errorf("internal server was fetched %d times", n)
	}
}

func multipartBody(t *testing.T, filename string, data []byte, fields map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		mw.WriteField(k, v)
	}
	fw, err := mw.CreateFormFile("file", filename)
	if err != nil {
		t.Fatalf("CreateFormFile: %v", err)
	}
	fw.Write(data)
	mw.Close()
	return &buf, mw.FormDataContentType()
}

func smallPNG(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	img.Set(1, 1, color.RGBA{R: 255, A: 255})
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

func TestUploadEndpoint(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name     string
		filename string
		data     []byte
		want     int
	}{
		{"png", "cake.png", smallPNG(t), http.StatusCreated},
		{"text", "notes.txt", []byte("just some words"), http.StatusUnsupportedMediaType},
		{"empty", "empty.png", nil, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body, ct := multipartBody(t, tt.filename, tt.data, nil)
			req := httptest.NewRequest(http.MethodPost, "/api/media", body)
			req.Header.Set("Content-Type", ct)
			rr := httptest.NewRecorder()
			env.handler.ServeHTTP(rr, req)
			if rr.Code != tt.want {
				t.Fatalf("status %d, want %d: %s", rr.Code, tt.want, rr.Body.String())
			}
			if tt.want != http.StatusCreated {
				return
			}
			var m models.Media
			decode(t, rr, &m)
			if m.Kind != models.UploadImage || !strings.HasPrefix(m.URL, "https://cdn.test/images/") {
				t.Errorf("media = %+v", m)
			}
			if !env.objects.has(m.StorageKey) {
				t.Errorf("object %q not stored", m.StorageKey)
			}
		})
	}

	req := httptest.NewRequest(http.MethodPost, "/api/media", strings.NewReader("not multipart"))
	req.Header.Set("Content-Type", "text/plain")
	rr := httptest.NewRecorder()
	env.handler.ServeHTTP(rr, req)
	if rr.Code != http.StatusBadRequest {
		t.Errorf("non-multipart body: status %d, want 400", rr.Code)
	}
}

func TestUploadWithoutStorage(t *testing.T) {
	h := NewMedia(upload.NewService(nil, nil, upload.DefaultPolicy()), probe.New(nil), nil, "")
	body, ct := multipartBody(t, "cake.png", smallPNG(t), nil)
	req := httptest.NewRequest(http.MethodPost, "/api/media", body)
	req.Header.Set("Content-Type", ct)
	rr := httptest.NewRecorder()
	h.Upload(rr, req)
	if rr.Code != http.StatusServiceUnavailable {
		t.Errorf("status %d, want 503", rr.Code)
	}
}

// fakeLookup serves media records from a map.
type fakeLookup map[uuid.UUID]*models.Media

func (f fakeLookup) FindByID(_ context.Context, id uuid.UUID) (*models.Media, error) {
	return f[id], nil
}

func TestGetMedia(t *testing.T) {
	known := uuid.New()
	records := fakeLookup{known: {ID: known, Kind: models.UploadVideo, URL: "https://cdn.test/videos/1_a.mp4"}}

	r := chi.NewRouter()
	r.Get("/api/media/{id}", NewMedia(upload.NewService(nil, nil, upload.DefaultPolicy()), probe.New(nil), records, "").Get)
	noRecords := chi.NewRouter()
	noRecords.Get("/api/media/{id}", NewMedia(upload.NewService(nil, nil, upload.DefaultPolicy()), probe.New(nil), nil, "").Get)

	tests := []struct {
		name    string
		handler http.Handler
		id      string
		want    int
	}{
		{"known", r, known.String(), http.StatusOK},
		{"unknown", r, uuid.NewString(), http.StatusNotFound},
		{"malformed", r, "not-a-uuid", http.StatusBadRequest},
		{"no records", noRecords, known.String(), http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			tt.handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/media/"+tt.id, nil))
			if rr.Code != tt.want {
				t.Errorf("status %d, want %d", rr.Code, tt.want)
			}
		})
	}
}

func TestUploadErrorMapping(t *testing.T) {
	policy := upload.DefaultPolicy()
	tests := []struct {
		err  error
		want int
	}{
		{upload.ErrNoStorage, http.StatusServiceUnavailable},
		{upload.ErrEmpty, http.StatusBadRequest},
		{upload.ErrUnsupportedType, http.StatusUnsupportedMediaType},
		{upload.ErrTooLarge, http.StatusRequestEntityTooLarge},
		{upload.ErrTooLong, http.StatusUnprocessableEntity},
		{context.Canceled, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got, _ := uploadError(tt.err, policy); got != tt.want {
			t.Errorf("uploadError(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
	if _, msg := uploadError(upload.ErrTooLong, policy); !strings.Contains(msg, "30 seconds") {
		t.Errorf("duration message = %q", msg)
	}
}
