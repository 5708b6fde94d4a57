// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"greetcards/internal/mediatype"
	"greetcards/internal/models"
	"greetcards/internal/probe"
	"greetcards/internal/upload"
	"greetcards/internal/validate"
)

// multipartOverhead is the room left for form fields and boundaries on top
// of the largest accepted file.
const multipartOverhead = 1 << 20

// MediaLookup finds upload metadata by id. Returns (nil, nil) when absent.
type MediaLookup interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Media, error)
}

// Media groups the endpoints that classify, check and upload gallery media.
type Media struct {
	uploads     *upload.Service
	prober      *probe.Prober
	records     MediaLookup
	embedParent string
}

// NewMedia creates the media handler group. records may be nil when upload
// metadata is not persisted. embedParent is the host Twitch embeds are
// framed on.
func NewMedia(uploads *upload.Service, prober *probe.Prober, records MediaLookup, embedParent string) *Media {
	return &Media{
		uploads:     uploads,
		prober:      prober,
		records:     records,
		embedParent: embedParent,
	}
}

// resolveRequest is the body of POST /api/media/resolve.
type resolveRequest struct {
	URL      string `json:"url"`
	Muted    bool   `json:"muted"`
	Autoplay bool   `json:"autoplay"`
}

// Resolve classifies a media URL and returns how it should be displayed.
func (h *Media) Resolve(w http.ResponseWriter, r *http.Request) {
	var req resolveRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.URL) == "" {
		writeError(w, http.StatusBadRequest, "A url is required.")
		return
	}
	writeJSON(w, http.StatusOK, mediatype.Resolve(req.URL, mediatype.Options{
		Muted:    req.Muted,
		Autoplay: req.Autoplay,
		Parent:   h.embedParent,
	}))
}

// checkRequest is the body of POST /api/media/check.
type checkRequest struct {
	Media []models.MediaItem `json:"media"`
}

// Check probes every gallery item and reports its load state. Each item is
// retried on its own.
func (h *Media) Check(w http.ResponseWriter, r *http.Request) {
	var req checkRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if len(req.Media) > validate.MaxMediaItems {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("At most %d media items can be checked.", validate.MaxMediaItems))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"results": h.prober.Check(r.Context(), req.Media)})
}

// Upload stores a multipart file (field "file"). Videos may carry the
// duration the browser measured in the "duration" field, in seconds.
func (h *Media) Upload(w http.ResponseWriter, r *http.Request) {
	if !h.uploads.Enabled() {
		writeError(w, http.StatusServiceUnavailable, "Uploads are not available right now.")
		return
	}

	policy := h.uploads.Policy()
	r.Body = http.MaxBytesReader(w, r.Body, policy.MaxRequestBytes()+multipartOverhead)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, fmt.Sprintf("File too large. Maximum size is %d MB.", policy.MaxRequestBytes()>>20))
			return
		}
		writeError(w, http.StatusBadRequest, "Expected a multipart form upload.")
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "No file provided.")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Failed to read file.")
		return
	}

	var reported float64
	if v := r.FormValue("duration"); v != "" {
		reported, _ = strconv.ParseFloat(v, 64)
	}

	m, err := h.uploads.Upload(r.Context(), header.Filename, data, reported)
	if err != nil {
		status, msg := uploadError(err, policy)
		if status == http.StatusInternalServerError {
			slog.Error("upload failed", "error", err, "filename", header.Filename)
		}
		writeError(w, status, msg)
		return
	}

	slog.Info("media uploaded", "id", m.ID, "kind", m.Kind, "size", m.HumanSize(), "backend", m.Backend)
	writeJSON(w, http.StatusCreated, m)
}

// Get returns the metadata of one upload.
func (h *Media) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid media id.")
		return
	}
	if h.records == nil {
		writeError(w, http.StatusNotFound, "Media not found.")
		return
	}

	m, err := h.records.FindByID(r.Context(), id)
	if err != nil {
		slog.Error("find media failed", "error", err, "id", id)
		writeError(w, http.StatusInternalServerError, "Failed to load media.")
		return
	}
	if m == nil {
		writeError(w, http.StatusNotFound, "Media not found.")
		return
	}
	writeJSON(w, http.StatusOK, m)
}

// uploadError maps upload failures to a status and a user-facing message.
func uploadError(err error, policy upload.Policy) (int, string) {
	switch {
	case errors.Is(err, upload.ErrNoStorage):
		return http.StatusServiceUnavailable, "Uploads are not available right now."
	case errors.Is(err, upload.ErrEmpty):
		return http.StatusBadRequest, "The file is empty."
	case errors.Is(err, upload.ErrUnsupportedType):
		return http.StatusUnsupportedMediaType, "This file type is not supported."
	case errors.Is(err, upload.ErrTooLarge):
		return http.StatusRequestEntityTooLarge, fmt.Sprintf("File too large. Images and audio may be up to %d MB, videos up to %d MB.",
			policy.MaxImageBytes>>20, policy.MaxVideoBytes>>20)
	case errors.Is(err, upload.ErrTooLong):
		return http.StatusUnprocessableEntity, fmt.Sprintf("Videos may be at most %d seconds long.", int(policy.MaxVideoDuration.Seconds()))
	}
	return http.StatusInternalServerError, "Failed to upload file."
}
