// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"greetcards/internal/autosave"
	"greetcards/internal/models"
)

// Drafts serves the editor's auto-saved state. The draft is identified by
// a cookie so an unsaved card survives a page reload.
type Drafts struct {
	saver  *autosave.Saver
	secure bool
}

// NewDrafts creates the draft handler group. secure marks the draft cookie
// as HTTPS-only.
func NewDrafts(saver *autosave.Saver, secure bool) *Drafts {
	return &Drafts{saver: saver, secure: secure}
}

// Get returns the current draft of the browser, if any.
func (h *Drafts) Get(w http.ResponseWriter, r *http.Request) {
	id := autosave.DraftID(r)
	if id == "" {
		writeError(w, http.StatusNotFound, "No draft saved.")
		return
	}

	d, err := h.saver.Load(r.Context(), id)
	if err != nil {
		slog.Error("load draft failed", "error", err, "draft", id)
		writeError(w, http.StatusInternalServerError, "Failed to load the draft.")
		return
	}
	if d == nil {
		autosave.ClearCookie(w)
		writeError(w, http.StatusNotFound, "No draft saved.")
		return
	}
	w.Header().Set("Cache-Control", "no-store")
	writeJSON(w, http.StatusOK, d)
}

// Put schedules a save of the editor state. Writes are debounced, so the
// response only acknowledges the request.
func (h *Drafts) Put(w http.ResponseWriter, r *http.Request) {
	var g models.Greeting
	if !decodeJSON(w, r, &g) {
		return
	}

	id := autosave.DraftID(r)
	if id == "" {
		var err error
		if id, err = autosave.NewID(); err != nil {
			slog.Error("create draft id failed", "error", err)
			writeError(w, http.StatusInternalServerError, "Failed to save the draft.")
			return
		}
	}

	if err := h.saver.Schedule(id, g); err != nil {
		if errors.Is(err, autosave.ErrClosed) {
			writeError(w, http.StatusServiceUnavailable, "The server is shutting down.")
			return
		}
		slog.Error("schedule draft failed", "error", err, "draft", id)
		writeError(w, http.StatusInternalServerError, "Failed to save the draft.")
		return
	}

	autosave.SetCookie(w, id, h.saver.TTL(), h.secure)
	writeJSON(w, http.StatusAccepted, map[string]string{"id": id, "status": "pending"})
}

// Delete discards the draft and its cookie, e.g. after the card was
// published.
func (h *Drafts) Delete(w http.ResponseWriter, r *http.Request) {
	if id := autosave.DraftID(r); id != "" {
		if err := h.saver.Discard(r.Context(), id); err != nil {
			slog.Error("discard draft failed", "error", err, "draft", id)
			writeError(w, http.StatusInternalServerError, "Failed to delete the draft.")
			return
		}
	}
	autosave.ClearCookie(w)
	w.WriteHeader(http.StatusNoContent)
}
