// It defines the API server, sets up the routes (endpoints)
// using chi, and links them to the handler functions.

package api

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"summarist/internal/billing"
	"summarist/internal/catalog"
	"summarist/internal/core"
	"summarist/internal/models"
	"summarist/internal/persist"
	"summarist/internal/player"
	"summarist/internal/state"
	"summarist/internal/store"
)

// Server holds the dependencies for our API.
type Server struct {
	app     *core.App
	db      *sql.DB
	store   *store.Store
	states  *state.Manager
	catalog *catalog.Service
	billing *billing.Client
	players *player.Manager
}

// Store returns the store instance.
func (s *Server) Store() *store.Store {
	return s.store
}

// Catalog returns the catalog service, so the CLI and jobs can share it.
func (s *Server) Catalog() *catalog.Service {
	return s.catalog
}

// States returns the per-user state manager.
func (s *Server) States() *state.Manager {
	return s.states
}

// Players returns the media session manager.
func (s *Server) Players() *player.Manager {
	return s.players
}

// NewServer creates a new Server instance.
func NewServer(app *core.App) *Server {
	cfg := app.Config()
	adapter := persist.New(app.DB())
	catalogSvc := catalog.NewService(catalog.NewClient(cfg.Catalog.BaseURL), cfg.Catalog.LocalPath)
	hub := app.WsHub()

	return &Server{
		app:     app,
		db:      app.DB(),
		store:   store.New(app.DB()),
		states:  state.NewManager(adapter),
		catalog: catalogSvc,
		billing: billing.NewClient(billing.Config{
			CheckoutURL:    cfg.Billing.CheckoutURL,
			PortalURL:      cfg.Billing.PortalURL,
			MonthlyPriceID: cfg.Billing.MonthlyPriceID,
			YearlyPriceID:  cfg.Billing.YearlyPriceID,
			TrialDays:      cfg.Billing.TrialDays,
		}),
		players: player.NewManager(cfg.Reader.FinishThreshold, func(u models.ProgressUpdate) {
			hub.Broadcast(u)
		}),
	}
}

// Router sets up and returns the main router for the application.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)    // Logs requests to the console
	r.Use(middleware.Recoverer) // Recovers from panics
	r.Use(middleware.Timeout(60 * time.Second))

	// Public auth routes
	r.Post("/api/auth/register", s.handleRegister)
	r.Post("/api/auth/login", s.handleLogin)
	r.Post("/api/auth/guest", s.handleGuestLogin)
	r.Post("/api/auth/password-reset", s.handleRequestPasswordReset)
	r.Post("/api/auth/password-reset/confirm", s.handleConfirmPasswordReset)

	r.Get("/api/version", s.handleGetVersion)
	r.Get("/api/config", s.handleGetConfig)

	// Cover proxy (image resizing needs no session; links are public)
	r.Get("/api/cover", s.handleCover)

	r.Group(func(r chi.Router) {
		r.Use(s.AuthMiddleware)

		r.Post("/api/auth/logout", s.handleLogout)
		r.Get("/api/auth/me", s.handleGetMe)

		r.Route("/api", func(r chi.Router) {
			// Catalog
			r.Get("/books", s.handleListBooks)
			r.Get("/books/selected", s.handleGetSelectedBook)
			r.Get("/books/{bookID}", s.handleGetBook)
			r.Get("/books/{bookID}/content", s.handleGetBookContent)

			// Search
			r.Get("/search", s.handleSearch)
			r.Get("/search/suggestions", s.handleSearchSuggestions)

			// Library / finished sets
			r.Get("/library", s.handleGetLibrary)
			r.Post("/library", s.handleAddToLibrary)
			r.Delete("/library/{bookID}", s.handleRemoveFromLibrary)
			r.Get("/finished", s.handleGetFinished)
			r.Delete("/finished/{bookID}", s.handleRemoveFromFinished)
			r.Post("/books/{bookID}/bookmark", s.handleToggleBookmark)

			// Media sessions
			r.Post("/player/open", s.handleOpenSession)
			r.Get("/player/{sessionID}", s.handleGetSession)
			r.Post("/player/{sessionID}/metadata", s.handleSetMetadata)
			r.Post("/player/{sessionID}/toggle", s.handleTogglePlay)
			r.Post("/player/{sessionID}/seek", s.handleSeek)
			r.Post("/player/{sessionID}/skip", s.handleSkip)
			r.Post("/player/{sessionID}/advance", s.handleAdvance)
			r.Post("/player/{sessionID}/rate", s.handleSetRate)
			r.Post("/player/{sessionID}/volume", s.handleSetVolume)
			r.Post("/player/{sessionID}/font-size", s.handleSetFontSize)
			r.Post("/player/{sessionID}/scroll", s.handleScrollSample)
			r.Post("/player/{sessionID}/ended", s.handleEnded)
			r.Post("/player/{sessionID}/bookmark", s.handleSessionBookmark)
			r.Delete("/player/{sessionID}", s.handleCloseSession)

			// Billing
			r.Post("/checkout-session", s.handleCreateCheckoutSession)
			r.Post("/portal-session", s.handleCreatePortalSession)

			// Jobs
			r.Get("/jobs/status", s.handleGetJobsStatus)
			r.Post("/jobs/run", s.handleRunJob)
		})
	})

	// WebSocket route
	r.Get("/ws/progress", func(w http.ResponseWriter, r *http.Request) {
		s.app.WsHub().ServeWs(w, r)
	})

	r.Get("/api/health", func(w http.ResponseWriter, r *http.Request) {
		if err := s.db.Ping(); err != nil {
			RespondWithError(w, http.StatusServiceUnavailable, "Database connection failed")
			return
		}
		RespondWithJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	return r
}

func (s *Server) handleGetVersion(w http.ResponseWriter, r *http.Request) {
	RespondWithJSON(w, http.StatusOK, map[string]string{"version": s.app.Version()})
}

func (s *Server) handleGetConfig(w http.ResponseWriter, r *http.Request) {
	cfg := s.app.Config()
	// Only the knobs the frontend needs, never paths or billing secrets.
	RespondWithJSON(w, http.StatusOK, map[string]interface{}{
		"suggestion_limit": cfg.Search.SuggestionLimit,
		"result_limit":     cfg.Search.ResultLimit,
		"finish_threshold": cfg.Reader.FinishThreshold,
	})
}
