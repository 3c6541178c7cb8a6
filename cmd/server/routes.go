package main

import (
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/justinas/nosurf"
)

// routes sets up the HTTP router for the application.
func (app *application) routes() http.Handler {
	r := chi.NewRouter()

	// --- Middleware ---
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	// Request lines go through the std logger, which NewLogger points at the app log writer.
	r.Use(middleware.RequestLogger(&middleware.DefaultLogFormatter{Logger: log.Default(), NoColor: true}))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(app.handlerTimeout))

	// --- Static file servers ---
	app.logger.Info("Serving static files", "static", app.staticDir, "games", app.artifacts.GamesDir, "thumbnails", app.artifacts.ThumbnailsDir)
	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.Dir(app.staticDir))))
	r.Handle(app.artifacts.GamesURLPrefix+"*", sandboxed(http.StripPrefix(app.artifacts.GamesURLPrefix, http.FileServer(http.Dir(app.artifacts.GamesDir)))))
	r.Handle(app.artifacts.ThumbnailsURLPrefix+"*", http.StripPrefix(app.artifacts.ThumbnailsURLPrefix, http.FileServer(http.Dir(app.artifacts.ThumbnailsDir))))

	// --- Pages ---
	r.Get("/", app.homeHandler)
	r.Get("/search", app.searchHandler)
	r.Get("/category/{name}", app.categoryHandler)
	r.Get("/play/{id}", app.playHandler)
	r.Post("/generate", app.generateHandler)

	// --- API ---
	r.Post("/api/create-game", app.createGameHandler)
	r.Get("/api/games", app.listGamesHandler)
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		app.renderError(w, r, http.StatusNotFound, "Page not found.")
	})

	if !app.csrf {
		return r
	}

	// Form posts carry a token; the JSON API is called by our own script.
	csrfHandler := nosurf.New(r)
	csrfHandler.ExemptGlob("/api/*")
	csrfHandler.SetBaseCookie(http.Cookie{HttpOnly: true, Path: "/", SameSite: http.SameSiteLaxMode})
	csrfHandler.SetFailureHandler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		app.logger.Warn("CSRF check failed", "path", r.URL.Path, "reason", nosurf.Reason(r))
		app.renderError(w, r, http.StatusForbidden, "Your session expired. Please reload the page and try again.")
	}))
	return csrfHandler
}

// sandboxed serves generated games with the same restrictions the play page's
// iframe applies: scripts run, but in an opaque origin.
func sandboxed(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Security-Policy", "sandbox allow-scripts")
		w.Header().Set("X-Content-Type-Options", "nosniff")
		next.ServeHTTP(w, r)
	})
}
