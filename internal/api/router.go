package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/goccy/go-json"
	"github.com/meur/guideforge/internal/editor"
	"github.com/meur/guideforge/internal/logger"
	"github.com/meur/guideforge/internal/refdata"
	"github.com/meur/guideforge/internal/schema"
)

// Options tune the HTTP server.
type Options struct {
	AllowedOrigins []string
	IconTemplate   string
	FetchTimeout   time.Duration
}

// Server holds the HTTP server dependencies
type Server struct {
	sessions  *editor.Manager
	validator *schema.Validator
	catalog   *refdata.Catalog
	log       *logger.Logger
	opts      Options
	router    chi.Router
}

// New creates a new API server
func New(sessions *editor.Manager, validator *schema.Validator, catalog *refdata.Catalog, log *logger.Logger, opts Options) *Server {
	if log == nil {
		log = logger.Nop()
	}
	if opts.FetchTimeout <= 0 {
		opts.FetchTimeout = 15 * time.Second
	}
	s := &Server{
		sessions:  sessions,
		validator: validator,
		catalog:   catalog,
		log:       log,
		opts:      opts,
		router:    chi.NewRouter(),
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Router exposes the router so that callers can mount extra routes.
func (s *Server) Router() chi.Router {
	return s.router
}

func (s *Server) setupMiddleware() {
	origins := s.opts.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"http://localhost:*"}
	}
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Compress(5))
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "Authorization"},
		ExposedHeaders:   []string{"Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
}

func (s *Server) setupRoutes() {
	s.router.Route("/api", func(r chi.Router) {
		// Sessions
		r.Post("/sessions", s.handleCreateSession)
		r.Route("/sessions/{id}", func(r chi.Router) {
			r.Get("/", s.handleGetSession)
			r.Delete("/", s.handleDeleteSession)
			r.Post("/reset", s.handleResetSession)

			r.Put("/fields", s.handleSetField)
			r.Post("/items", s.handleAppendItem)
			r.Patch("/items", s.handleUpdateItem)
			r.Put("/items", s.handleReplaceItem)
			r.Delete("/items", s.handleRemoveItem)
			r.Put("/sections/{section}", s.handleEnableSection)
			r.Delete("/sections/{section}", s.handleDisableSection)

			r.Get("/preview", s.handlePreview)
			r.Get("/validation", s.handleValidation)
			r.Get("/export", s.handleExport)
			r.Post("/import", s.handleImport)
		})

		// Schema
		r.Get("/schema", s.handleGetSchema)
		r.Post("/schema/reload", s.handleReloadSchema)

		// Reference data
		r.Get("/refdata/{kind}", s.handleSearchRefdata)
		r.Post("/refdata/{kind}/refresh", s.handleRefreshRefdata)

		// Rich text
		r.Get("/markup", s.handleGetMarkup)
		r.Post("/markup/apply", s.handleApplyMarkup)
	})

	// Health check
	s.router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})
}

// --- Response helpers ---

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

func decodeJSON(r *http.Request, v any) error {
	return json.NewDecoder(r.Body).Decode(v)
}
