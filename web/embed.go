// Package web provides the embedded static assets of the greeting pages.
// The files are served at /static/ and carry a long cache lifetime.
package web

import (
	"embed"
	"io/fs"
	"net/http"
)

// StaticFS embeds the web/static/ directory tree.
//
//go:embed all:static
var StaticFS embed.FS

// Handler serves StaticFS under /static/.
func Handler() http.Handler {
	sub, err := fs.Sub(StaticFS, "static")
	if err != nil {
		panic(err)
	}
	files := http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "public, max-age=86400")
		files.ServeHTTP(w, r)
	})
}

// Robots serves robots.txt from the embedded tree.
func Robots(w http.ResponseWriter, r *http.Request) {
	b, err := StaticFS.ReadFile("static/robots.txt")
	if err != nil {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write(b)
}
