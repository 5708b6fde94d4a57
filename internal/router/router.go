// Package router sets up all HTTP routes and middleware chains for the
// greetcards server. It organizes routes into the JSON API used by the
// editor and the public greeting pages.
package router

import (
	"net/http"
	"slices"
	"strings"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"greetcards/internal/handlers"
	"greetcards/internal/middleware"
	"greetcards/web"
)

// Handlers are the handler groups the router dispatches to.
type Handlers struct {
	Greetings *handlers.Greetings
	Media     *handlers.Media
	Drafts    *handlers.Drafts
	Pages     *handlers.Pages
	Catalog   http.HandlerFunc
}

// New creates and returns the configured Chi router with all middleware
// and route groups wired up. limiter guards the write endpoints; an empty
// corsOrigins disables cross-origin access to the API. Credentials (the
// draft cookie) are only shared with explicitly listed origins.
func New(h Handlers, limiter *middleware.RateLimiter, corsOrigins []string) chi.Router {
	r := chi.NewRouter()

	// Global middleware, applied to every request.
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)
	r.Use(middleware.SecureHeaders)

	r.Get("/health", healthHandler)
	r.Get("/robots.txt", web.Robots)
	r.Handle("/static/*", web.Handler())

	r.Route("/api", func(r chi.Router) {
		if len(corsOrigins) > 0 {
			r.Use(cors.Handler(cors.Options{
				AllowedOrigins:   corsOrigins,
				AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
				AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", handlers.PasscodeHeader},
				ExposedHeaders:   []string{"Retry-After"},
				AllowCredentials: !slices.Contains(corsOrigins, "*"),
				MaxAge:           300,
			}))
		}

		r.Get("/catalog", h.Catalog)

		// Validation is pure and cheap, so it is not rate-limited.
		r.Post("/validate", h.Greetings.Validate)

		r.Route("/media", func(r chi.Router) {
			r.Post("/resolve", h.Media.Resolve)
			r.With(limiter.Middleware).Post("/check", h.Media.Check)
			r.With(limiter.Middleware).Post("/", h.Media.Upload)
			r.Get("/{id}", h.Media.Get)
		})

		r.Route("/greetings", func(r chi.Router) {
			r.Get("/", h.Greetings.List)
			r.With(limiter.Middleware).Post("/", h.Greetings.Create)
			r.Get("/{slug}", h.Greetings.Get)
			r.Put("/{slug}", h.Greetings.Update)
			r.Get("/{slug}/share", h.Greetings.Share)
			r.Get("/{slug}/qr.png", h.Greetings.QRCode)
		})

		r.Route("/drafts", func(r chi.Router) {
			r.Get("/", h.Drafts.Get)
			r.Put("/", h.Drafts.Put)
			r.Delete("/", h.Drafts.Delete)
		})
	})

	// Public greeting pages. /create belongs to the front-end.
	r.Get("/{slug}", h.Pages.View)
	r.With(limiter.Middleware).Post("/{slug}", h.Pages.Unlock)
	r.Get("/view/{slug}", h.Pages.View)

	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		if strings.HasPrefix(req.URL.Path, "/api/") {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"error":"Not found."}`))
			return
		}
		h.Pages.NotFound(w, req)
	})

	return r
}

// healthHandler returns a simple JSON health check response.
func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}
