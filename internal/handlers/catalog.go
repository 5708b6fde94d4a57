package handlers

import (
	"net/http"

	"greetcards/internal/catalog"
)

// Catalog serves the editor's choices: events, themes, animations, frame
// and border styles and emoji packs.
func Catalog(cat *catalog.Catalog) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "public, max-age=3600")
		writeJSON(w, http.StatusOK, cat)
	}
}
