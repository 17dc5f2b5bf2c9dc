// Package server is the HTTP glue over the store, the auth components,
// and the engine's validation helpers. It owns no invariants of its own:
// it validates request shapes, delegates to the store, and maps typed
// errors to status codes.
package server

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"menuboard/internal/auth"
	"menuboard/internal/store"
)

// Server bundles the dependencies shared by all handlers.
type Server struct {
	store     *store.Store
	sessions  *auth.SessionManager
	throttle  *auth.LoginThrottle
	log       *slog.Logger
	staticDir string
}

// New creates a Server.
func New(s *store.Store, sessions *auth.SessionManager, log *slog.Logger, staticDir string) *Server {
	return &Server{
		store:     s,
		sessions:  sessions,
		throttle:  auth.NewLoginThrottle(),
		log:       log,
		staticDir: staticDir,
	}
}

// Router assembles the chi router: public reads, session-guarded
// mutations, auth endpoints, and static files.
func (s *Server) Router() chi.Router {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(requestLogger(s.log))
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(60 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", s.handleHealth)

	r.Post("/admin/login", s.handleLogin)
	r.Post("/admin/logout", s.handleLogout)

	r.Route("/api", func(r chi.Router) {
		// Reads are public: the menu display board consumes them without
		// credentials.
		r.Get("/items", s.handleListMenuItems)
		r.Get("/notices", s.handleListNotices)
		r.Get("/presets", s.handleListPresets)
		r.Get("/presets/{id}", s.handleGetPreset)
		r.Get("/schedules", s.handleListSchedules)
		r.Get("/schedules/upcoming", s.handleUpcomingSchedules)
		r.Get("/schedules/{id}", s.handleGetSchedule)

		// Mutations require an admin session.
		r.Group(func(r chi.Router) {
			r.Use(s.requireAuth)

			r.Post("/items", s.handleCreateMenuItem)
			r.Put("/items/{id}", s.handleUpdateMenuItem)
			r.Delete("/items/{id}", s.handleDeleteMenuItem)
			r.Post("/items/reload", s.reloadHandler(s.store.MenuItems.Reload))

			r.Post("/notices", s.handleCreateNotice)
			r.Put("/notices/{id}", s.handleUpdateNotice)
			r.Delete("/notices/{id}", s.handleDeleteNotice)
			r.Post("/notices/reload", s.reloadHandler(s.store.Notices.Reload))

			r.Post("/presets", s.handleCreatePreset)
			r.Put("/presets/{id}", s.handleUpdatePreset)
			r.Delete("/presets/{id}", s.handleDeletePreset)
			r.Post("/presets/reload", s.reloadHandler(s.store.MenuPresets.Reload))

			r.Post("/schedules", s.handleCreateSchedule)
			r.Put("/schedules/{id}", s.handleUpdateSchedule)
			r.Delete("/schedules/{id}", s.handleDeleteSchedule)
			r.Post("/schedules/validate", s.handleValidateSchedule)
			r.Post("/schedules/reload", s.reloadHandler(s.store.MenuSchedules.Reload))

			r.Post("/users/reload", s.reloadHandler(s.store.AdminUsers.Reload))
		})
	})

	if s.staticDir != "" {
		r.Handle("/static/*", http.StripPrefix("/static/",
			http.FileServer(http.Dir(s.staticDir))))
	}

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// reloadHandler wraps a collection's Reload for the operator endpoints
// that re-read hand-edited snapshot files.
func (s *Server) reloadHandler(reload func() error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := reload(); err != nil {
			s.storeError(w, err)
			return
		}
		s.writeJSON(w, http.StatusOK, map[string]string{"status": "reloaded"})
	}
}
