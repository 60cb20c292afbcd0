// Package server provides the HTTP server for the Deskwell wellness
// application.
package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/renderix/deskwell/internal/catalog"
	"github.com/renderix/deskwell/internal/coach"
	"github.com/renderix/deskwell/internal/companion"
	"github.com/renderix/deskwell/internal/server/api"
	"github.com/renderix/deskwell/internal/store"
)

// Config holds the server configuration. Nil components simply leave
// their routes unregistered.
type Config struct {
	StaticDir      string
	Store          *store.Store
	Catalog        *catalog.Catalog
	Coach          *coach.Coach
	Companion      *companion.Companion
	Sessions       api.SessionController
	Breaks         api.BreakRecorder
	Frames         FrameSource
	PointsPerBreak int
}

// Server is the HTTP server for the Deskwell application.
type Server struct {
	config Config
	mux    *http.ServeMux
	start  time.Time
}

// New creates a new Server with the given configuration.
func New(config Config) *Server {
	s := &Server{
		config: config,
		mux:    http.NewServeMux(),
		start:  time.Now(),
	}
	s.setupRoutes()
	return s
}

// setupRoutes configures all HTTP routes for the server.
func (s *Server) setupRoutes() {
	s.mux.HandleFunc("/api/health", s.handleHealth)

	if s.config.Catalog != nil {
		stretchHandler := api.NewStretchHandler(s.config.Catalog)
		s.mux.Handle("/api/stretches", stretchHandler)
		s.mux.Handle("/api/stretches/", stretchHandler)

		routineHandler := api.NewRoutineHandler(s.config.Catalog)
		s.mux.Handle("/api/routines", routineHandler)
		s.mux.Handle("/api/routines/", routineHandler)
	}

	if s.config.Store != nil && s.config.Coach != nil {
		userHandler := api.NewUserHandler(s.config.Store, s.config.Coach,
			s.config.Breaks, s.config.PointsPerBreak)
		s.mux.Handle("/api/users", userHandler)
		s.mux.Handle("/api/users/", userHandler)
	}

	if s.config.Sessions != nil {
		sessionHandler := api.NewSessionHandler(s.config.Sessions)
		s.mux.Handle("/api/session/", sessionHandler)

		feedbackHandler := NewFeedbackHandler(s.config.Sessions)
		s.mux.Handle("/api/feedback", feedbackHandler)
	}

	if s.config.Companion != nil {
		chatHandler := api.NewChatHandler(s.config.Companion)
		s.mux.Handle("/api/chat", chatHandler)
		s.mux.Handle("/api/chat/", chatHandler)
	}

	if s.config.Frames != nil {
		s.mux.Handle("/api/stream", NewStreamHandler(s.config.Frames))
	}

	if s.config.StaticDir != "" {
		fs := http.FileServer(http.Dir(s.config.StaticDir))
		s.mux.Handle("/", fs)
	}
}

// ServeHTTP implements the http.Handler interface.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// handleHealth handles GET requests to /api/health.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	response := map[string]interface{}{
		"status": "ok",
		"uptime": time.Since(s.start).String(),
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
		return
	}
}

// ListenAndServe starts the HTTP server on the given address.
func (s *Server) ListenAndServe(addr string) error {
	return http.ListenAndServe(addr, s)
}
