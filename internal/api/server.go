// Package api provides the HTTP API server for Notely.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/notely/notely/internal/assist"
	"github.com/notely/notely/internal/auth"
	"github.com/notely/notely/internal/core"
	"github.com/notely/notely/internal/llm"
	"github.com/notely/notely/internal/logging"
	"github.com/notely/notely/internal/market"
	"github.com/notely/notely/internal/storage"
	"github.com/notely/notely/internal/templates"
	"github.com/notely/notely/internal/translate"
)

// maxBodyBytes bounds request bodies
const maxBodyBytes = 1 << 20

// Server is the HTTP API server
type Server struct {
	router     *chi.Mux
	httpServer *http.Server

	// Components
	db         *storage.DB
	notes      *storage.NoteStore
	gateway    *assist.Gateway
	translator *translate.Chain
	ai         *llm.Router
	market     *market.Client
	templates  *templates.Catalog
	verifier   *auth.Verifier
	wsHub      *WebSocketHub

	allowedOrigins []string
}

// Config for the server
type Config struct {
	Host           string
	Port           int
	AllowedOrigins []string

	DB         *storage.DB
	Gateway    *assist.Gateway
	Translator *translate.Chain
	AI         *llm.Router
	Market     *market.Client
	Templates  *templates.Catalog
	Verifier   *auth.Verifier
}

// New creates a new API server
func New(cfg Config) *Server {
	if cfg.Gateway == nil {
		var ai assist.Completer
		if cfg.AI != nil {
			ai = cfg.AI
		}
		cfg.Gateway = assist.NewGateway(ai, nil)
	}
	if cfg.Translator == nil {
		cfg.Translator = translate.NewChain(translate.ChainConfig{})
	}
	if cfg.Market == nil {
		cfg.Market = market.NewClient(market.Config{})
	}
	if cfg.Templates == nil {
		cfg.Templates = templates.Builtin()
	}
	if cfg.Verifier == nil {
		cfg.Verifier = auth.NewVerifier("")
	}
	if len(cfg.AllowedOrigins) == 0 {
		cfg.AllowedOrigins = []string{"*"}
	}

	s := &Server{
		db:             cfg.DB,
		gateway:        cfg.Gateway,
		translator:     cfg.Translator,
		ai:             cfg.AI,
		market:         cfg.Market,
		templates:      cfg.Templates,
		verifier:       cfg.Verifier,
		wsHub:          NewWebSocketHub(),
		allowedOrigins: cfg.AllowedOrigins,
	}
	if cfg.DB != nil {
		s.notes = storage.NewNoteStore(cfg.DB)
	}

	s.setupRouter()

	s.httpServer = &http.Server{
		Addr:         net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port)),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second, // AI providers may take a while
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// Handler returns the routed handler, for tests and embedding
func (s *Server) Handler() http.Handler {
	return s.router
}

// Hub returns the websocket hub, which receives reminder events
func (s *Server) Hub() *WebSocketHub {
	return s.wsHub
}

// setupRouter configures all routes
func (s *Server) setupRouter() {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)

	// CORS
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	requireUser := s.verifier.Middleware(s.respondErr)

	// AI assist and translation, also reachable at the root
	assistRoutes := func(r chi.Router) {
		r.Use(middleware.Timeout(60 * time.Second))
		r.Post("/assist", s.handleAssist)
		r.Post("/translate", s.handleTranslate)
	}
	r.Group(assistRoutes)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", s.handleHealth)

		r.Group(assistRoutes)

		// Legacy GenAI endpoints
		r.Route("/genai", func(r chi.Router) {
			r.Use(middleware.Timeout(60 * time.Second))
			r.Post("/summarize", s.handleGenAISummarize)
			r.Post("/expand", s.handleGenAIExpand)
			r.Post("/translate", s.handleTranslate)
			r.Post("/chat", s.handleAssist)
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.Timeout(30 * time.Second))

			r.Get("/market", s.handleMarket)
			r.Get("/templates", s.handleGetTemplates)
			r.Get("/templates/{templateID}", s.handleGetTemplate)
			r.Get("/tags/suggest", s.handleSuggestTags)

			// Notes
			r.Group(func(r chi.Router) {
				r.Use(requireUser)
				r.Get("/notes", s.handleListNotes)
				r.Post("/notes", s.handleCreateNote)
				r.Get("/notes/{noteID}", s.handleGetNote)
				r.Patch("/notes/{noteID}", s.handleUpdateNote)
				r.Delete("/notes/{noteID}", s.handleDeleteNote)
			})
		})
	})

	// WebSocket
	r.With(requireUser).Get("/ws", s.wsHub.ServeHTTP)

	s.router = r
}

// Start starts the HTTP server and the websocket hub. It returns
// http.ErrServerClosed after Stop.
func (s *Server) Start() error {
	go s.wsHub.Run()

	logging.Info("API server starting on http://%s", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Stop gracefully stops the server
func (s *Server) Stop(ctx context.Context) error {
	s.wsHub.Stop()
	return s.httpServer.Shutdown(ctx)
}

// Broadcast sends a message to all WebSocket clients
func (s *Server) Broadcast(msgType string, data interface{}) {
	s.wsHub.Broadcast(WebSocketMessage{
		Type:      msgType,
		Data:      data,
		Timestamp: time.Now(),
	})
}

// --- Response helpers ---

func (s *Server) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}

// respondErr maps a domain error onto its HTTP status
func (s *Server) respondErr(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		logging.Error("request failed: %v", err)
	}
	s.respondError(w, status, err.Error())
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, core.ErrInvalidInput),
		errors.Is(err, core.ErrMissingRequired),
		errors.Is(err, core.ErrUnsupportedMarket):
		return http.StatusBadRequest
	case errors.Is(err, core.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, core.ErrNoteNotFound),
		errors.Is(err, core.ErrTemplateNotFound):
		return http.StatusNotFound
	case errors.Is(err, core.ErrTranslationUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// decodeJSON reads a bounded JSON body into v
func decodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("%w: invalid JSON body", core.ErrInvalidInput)
	}
	return nil
}

// --- Health ---

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ai := map[string]bool{}
	if s.ai != nil {
		ai = s.ai.HealthCheck(r.Context())
	}

	result := map[string]interface{}{
		"status":      "ok",
		"ai":          ai,
		"translation": s.translator.Providers(),
		"websocket":   s.wsHub.ClientCount(),
	}

	if s.db != nil {
		if err := s.db.Ping(r.Context()); err != nil {
			result["status"] = "degraded"
			result["database"] = err.Error()
		} else if version, err := s.db.SchemaVersion(); err == nil {
			result["schema_version"] = version
		}
	}

	s.respondJSON(w, http.StatusOK, result)
}
